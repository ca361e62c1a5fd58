// Package wavio reads WAV files into the raw PCM form the frame classifier
// consumes and enforces VAD eligibility at that boundary.
package wavio

import (
	"encoding/binary"
	"fmt"
	"os"

	"github.com/go-audio/wav"

	"segmatic/internal/services"
)

// Descriptor describes a decoded audio stream.
type Descriptor struct {
	Channels   int
	BitDepth   int
	SampleRate int
	Samples    int
}

// DurationSeconds returns the stream duration derived from the sample count.
func (d Descriptor) DurationSeconds() float64 {
	if d.SampleRate == 0 || d.Channels == 0 {
		return 0
	}
	return float64(d.Samples) / float64(d.Channels) / float64(d.SampleRate)
}

// VADEligible reports whether the stream satisfies the classifier
// preconditions: mono, 16-bit, and a supported sample rate. Violation is a
// fatal precondition for the file.
func (d Descriptor) VADEligible() error {
	if d.Channels != 1 {
		return services.Wrap(services.ErrValidation, "wavio", "eligibility", fmt.Sprintf("%d channels, VAD requires mono", d.Channels), nil)
	}
	if d.BitDepth != 16 {
		return services.Wrap(services.ErrValidation, "wavio", "eligibility", fmt.Sprintf("%d-bit samples, VAD requires 16-bit", d.BitDepth), nil)
	}
	switch d.SampleRate {
	case 8000, 16000, 32000, 48000:
	default:
		return services.Wrap(services.ErrValidation, "wavio", "eligibility", fmt.Sprintf("sample rate %d not supported", d.SampleRate), nil)
	}
	return nil
}

// ReadPCM decodes a WAV file and returns its PCM payload as little-endian
// 16-bit bytes alongside the stream descriptor.
func ReadPCM(path string) ([]byte, Descriptor, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, Descriptor{}, services.Wrap(services.ErrIO, "wavio", "open", path, err)
	}
	defer file.Close()

	decoder := wav.NewDecoder(file)
	if !decoder.IsValidFile() {
		return nil, Descriptor{}, services.Wrap(services.ErrValidation, "wavio", "decode", fmt.Sprintf("%s is not a valid wav file", path), nil)
	}

	buf, err := decoder.FullPCMBuffer()
	if err != nil {
		return nil, Descriptor{}, services.Wrap(services.ErrIO, "wavio", "decode", path, err)
	}

	desc := Descriptor{
		Channels:   int(decoder.NumChans),
		BitDepth:   int(decoder.BitDepth),
		SampleRate: int(decoder.SampleRate),
		Samples:    len(buf.Data),
	}

	pcm := make([]byte, len(buf.Data)*2)
	for i, sample := range buf.Data {
		binary.LittleEndian.PutUint16(pcm[i*2:], uint16(int16(sample)))
	}
	return pcm, desc, nil
}

// ReadDescriptor decodes only the WAV header.
func ReadDescriptor(path string) (Descriptor, error) {
	file, err := os.Open(path)
	if err != nil {
		return Descriptor{}, services.Wrap(services.ErrIO, "wavio", "open", path, err)
	}
	defer file.Close()

	decoder := wav.NewDecoder(file)
	decoder.ReadInfo()
	if decoder.NumChans == 0 || decoder.SampleRate == 0 {
		return Descriptor{}, services.Wrap(services.ErrValidation, "wavio", "decode", fmt.Sprintf("%s is not a valid wav file", path), nil)
	}
	return Descriptor{
		Channels:   int(decoder.NumChans),
		BitDepth:   int(decoder.BitDepth),
		SampleRate: int(decoder.SampleRate),
	}, nil
}
