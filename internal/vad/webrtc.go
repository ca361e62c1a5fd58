package vad

import (
	"fmt"

	webrtcvad "github.com/maxhawkins/go-webrtcvad"

	"segmatic/internal/services"
)

// WebRTC wraps the WebRTC voice activity detector.
type WebRTC struct {
	vad *webrtcvad.VAD
}

// NewWebRTC constructs a WebRTC classifier with the given aggressiveness
// (0 = most permissive, 3 = most aggressive silence detection).
func NewWebRTC(aggressiveness int) (*WebRTC, error) {
	v, err := webrtcvad.New()
	if err != nil {
		return nil, services.Wrap(services.ErrExternalTool, "vad", "init webrtc", "", err)
	}
	if err := v.SetMode(aggressiveness); err != nil {
		return nil, services.Wrap(services.ErrValidation, "vad", "set mode", fmt.Sprintf("aggressiveness %d", aggressiveness), err)
	}
	return &WebRTC{vad: v}, nil
}

// IsSpeech classifies one frame. The frame must span exactly 10, 20, or
// 30 ms of 16-bit mono samples at a supported rate.
func (w *WebRTC) IsSpeech(frame []byte, sampleRate int) (bool, error) {
	if !validSampleRate(sampleRate) {
		return false, services.Wrap(services.ErrValidation, "vad", "classify", fmt.Sprintf("sample rate %d not supported", sampleRate), nil)
	}
	if !w.vad.ValidRateAndFrameLength(sampleRate, len(frame)) {
		return false, services.Wrap(services.ErrValidation, "vad", "classify", fmt.Sprintf("frame length %d invalid for rate %d", len(frame), sampleRate), nil)
	}
	active, err := w.vad.Process(sampleRate, frame)
	if err != nil {
		return false, services.Wrap(services.ErrExternalTool, "vad", "classify", "", err)
	}
	return active, nil
}
