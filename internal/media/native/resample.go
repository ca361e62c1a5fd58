// Package native implements the secondary resample path in pure Go. It is
// the fallback when the ffmpeg invocation fails: decode the source WAV,
// mix down to mono, resample, and re-encode at the working parameters.
package native

import (
	"fmt"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	resampling "github.com/tphakala/go-audio-resampling"

	"segmatic/internal/media"
	"segmatic/internal/services"
)

// Resample decodes src, converts it to params, and writes the result to dst.
// Only WAV sources are supported; anything else must go through the primary
// backend.
func Resample(src, dst string, params media.StreamParams) error {
	in, err := os.Open(src)
	if err != nil {
		return services.Wrap(services.ErrIO, "native", "open source", src, err)
	}
	defer in.Close()

	decoder := wav.NewDecoder(in)
	if !decoder.IsValidFile() {
		return services.Wrap(services.ErrValidation, "native", "decode", fmt.Sprintf("%s is not a wav file", src), nil)
	}
	buf, err := decoder.FullPCMBuffer()
	if err != nil {
		return services.Wrap(services.ErrIO, "native", "decode", src, err)
	}

	channels := buf.Format.NumChannels
	if channels <= 0 {
		return services.Wrap(services.ErrValidation, "native", "decode", "no channels", nil)
	}
	srcRate := buf.Format.SampleRate
	bitDepth := int(decoder.BitDepth)
	if bitDepth <= 0 {
		bitDepth = 16
	}
	scale := float64(int64(1) << (bitDepth - 1))

	// Normalize and mix down to mono in one pass.
	frames := len(buf.Data) / channels
	mono := make([]float64, frames)
	for i := 0; i < frames; i++ {
		var sum float64
		for ch := 0; ch < channels; ch++ {
			sum += float64(buf.Data[i*channels+ch]) / scale
		}
		mono[i] = sum / float64(channels)
	}

	out := mono
	if srcRate != params.SampleRate {
		resampler, err := resampling.New(&resampling.Config{
			InputRate:  float64(srcRate),
			OutputRate: float64(params.SampleRate),
			Channels:   1,
			Quality:    resampling.QualitySpec{Preset: resampling.QualityHigh},
		})
		if err != nil {
			return services.Wrap(services.ErrTransient, "native", "init resampler", "", err)
		}
		out, err = resampler.Process(mono)
		if err != nil {
			return services.Wrap(services.ErrTransient, "native", "resample", "", err)
		}
	}

	samples := make([]int, len(out))
	for i, v := range out {
		if v > 1 {
			v = 1
		} else if v < -1 {
			v = -1
		}
		samples[i] = int(int16(v * 32767))
	}

	file, err := os.Create(dst)
	if err != nil {
		return services.Wrap(services.ErrIO, "native", "create destination", dst, err)
	}
	defer file.Close()

	enc := wav.NewEncoder(file, params.SampleRate, 16, 1, 1)
	if err := enc.Write(&audio.IntBuffer{
		Format:         &audio.Format{NumChannels: 1, SampleRate: params.SampleRate},
		Data:           samples,
		SourceBitDepth: 16,
	}); err != nil {
		_ = enc.Close()
		return services.Wrap(services.ErrIO, "native", "encode", dst, err)
	}
	if err := enc.Close(); err != nil {
		return services.Wrap(services.ErrIO, "native", "finalize", dst, err)
	}
	return nil
}
