package vad

import (
	"fmt"

	"segmatic/internal/services"
)

// Classifier decides whether a fixed-size PCM window contains speech. A
// frame is raw little-endian 16-bit mono samples; implementations are pure
// functions of (frame, rate, aggressiveness) with no side effects.
type Classifier interface {
	IsSpeech(frame []byte, sampleRate int) (bool, error)
}

// New constructs the classifier backend named in configuration. Each job
// should construct its own classifier; instances are not safe for concurrent
// use.
func New(backend string, aggressiveness int) (Classifier, error) {
	if aggressiveness < 0 || aggressiveness > 3 {
		return nil, services.Wrap(services.ErrValidation, "vad", "new", fmt.Sprintf("aggressiveness %d out of range", aggressiveness), nil)
	}
	switch backend {
	case "webrtc":
		return NewWebRTC(aggressiveness)
	case "energy":
		return NewEnergy(aggressiveness), nil
	default:
		return nil, services.Wrap(services.ErrValidation, "vad", "new", fmt.Sprintf("unknown backend %q", backend), nil)
	}
}

func validSampleRate(rate int) bool {
	switch rate {
	case 8000, 16000, 32000, 48000:
		return true
	}
	return false
}

// validFrame reports whether a frame of n bytes at the given rate spans
// exactly 10, 20, or 30 ms of 16-bit samples.
func validFrame(rate, n int) bool {
	if n == 0 || n%2 != 0 {
		return false
	}
	samples := n / 2
	if samples*1000%rate != 0 {
		return false
	}
	switch samples * 1000 / rate {
	case 10, 20, 30:
		return true
	}
	return false
}
