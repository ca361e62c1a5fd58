package wavio_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"segmatic/internal/audio/wavio"
	"segmatic/internal/services"
	"segmatic/internal/testsupport"
)

func TestReadPCMRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tone.wav")
	samples := testsupport.ToneSamples(16000, 0.1, 440, 12000)
	testsupport.WriteWAV(t, path, 16000, 1, 16, samples)

	pcm, desc, err := wavio.ReadPCM(path)
	if err != nil {
		t.Fatalf("ReadPCM returned error: %v", err)
	}
	if desc.Channels != 1 || desc.BitDepth != 16 || desc.SampleRate != 16000 {
		t.Fatalf("unexpected descriptor: %+v", desc)
	}
	if len(pcm) != len(samples)*2 {
		t.Fatalf("unexpected pcm length: got %d want %d", len(pcm), len(samples)*2)
	}
	if err := desc.VADEligible(); err != nil {
		t.Fatalf("expected eligible descriptor, got %v", err)
	}
	if got := desc.DurationSeconds(); got < 0.09 || got > 0.11 {
		t.Fatalf("unexpected duration: %v", got)
	}
}

func TestVADEligibleRejectsBadStreams(t *testing.T) {
	cases := []struct {
		name string
		desc wavio.Descriptor
	}{
		{"stereo", wavio.Descriptor{Channels: 2, BitDepth: 16, SampleRate: 16000}},
		{"8-bit", wavio.Descriptor{Channels: 1, BitDepth: 8, SampleRate: 16000}},
		{"44100 Hz", wavio.Descriptor{Channels: 1, BitDepth: 16, SampleRate: 44100}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.desc.VADEligible()
			if !errors.Is(err, services.ErrValidation) {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}
}

func TestReadPCMRejectsNonWAV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "garbage.wav")
	if err := os.WriteFile(path, []byte("not a riff header"), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	if _, _, err := wavio.ReadPCM(path); err == nil {
		t.Fatal("expected error for non-wav payload")
	}
}
