// Package vad wraps per-frame speech/non-speech classification behind a
// small Classifier interface with two backends: the WebRTC detector (cgo)
// and a pure-Go RMS energy detector.
package vad
