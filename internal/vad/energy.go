package vad

import (
	"encoding/binary"
	"fmt"
	"math"

	"segmatic/internal/services"
)

// energyThresholds maps aggressiveness to the normalized RMS level a frame
// must reach to count as speech. Higher aggressiveness demands more energy.
var energyThresholds = [4]float64{0.005, 0.010, 0.020, 0.040}

// Energy is a pure-Go classifier based on RMS energy. It trades accuracy for
// zero native dependencies and is mainly useful for clean studio recordings
// and for tests.
type Energy struct {
	threshold float64
}

// NewEnergy constructs an energy classifier with the given aggressiveness.
func NewEnergy(aggressiveness int) *Energy {
	if aggressiveness < 0 {
		aggressiveness = 0
	}
	if aggressiveness > 3 {
		aggressiveness = 3
	}
	return &Energy{threshold: energyThresholds[aggressiveness]}
}

// IsSpeech reports whether the frame's RMS level reaches the speech
// threshold. Frame-size preconditions match the WebRTC backend.
func (e *Energy) IsSpeech(frame []byte, sampleRate int) (bool, error) {
	if !validSampleRate(sampleRate) {
		return false, services.Wrap(services.ErrValidation, "vad", "classify", fmt.Sprintf("sample rate %d not supported", sampleRate), nil)
	}
	if !validFrame(sampleRate, len(frame)) {
		return false, services.Wrap(services.ErrValidation, "vad", "classify", fmt.Sprintf("frame length %d invalid for rate %d", len(frame), sampleRate), nil)
	}
	return rms(frame) >= e.threshold, nil
}

// rms computes the root mean square of 16-bit samples normalized to [0, 1].
func rms(frame []byte) float64 {
	samples := len(frame) / 2
	if samples == 0 {
		return 0
	}
	var sum float64
	for i := 0; i < samples; i++ {
		s := int16(binary.LittleEndian.Uint16(frame[i*2:]))
		v := float64(s) / 32768.0
		sum += v * v
	}
	return math.Sqrt(sum / float64(samples))
}
