// Package testsupport provides shared fixtures for package tests.
package testsupport

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// WriteWAV writes a PCM WAV file with the given parameters, creating parent
// directories as needed.
func WriteWAV(t testing.TB, path string, sampleRate, channels, bitDepth int, samples []int) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", filepath.Dir(path), err)
	}
	file, err := os.Create(path)
	if err != nil {
		t.Fatalf("create %s: %v", path, err)
	}
	defer file.Close()

	enc := wav.NewEncoder(file, sampleRate, bitDepth, channels, 1)
	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: channels, SampleRate: sampleRate},
		Data:           samples,
		SourceBitDepth: bitDepth,
	}
	if err := enc.Write(buf); err != nil {
		t.Fatalf("encode %s: %v", path, err)
	}
	if err := enc.Close(); err != nil {
		t.Fatalf("close encoder %s: %v", path, err)
	}
}

// ToneSamples generates a mono sine tone of the given duration and
// amplitude, suitable for exercising the energy classifier.
func ToneSamples(sampleRate int, seconds float64, freq float64, amplitude int16) []int {
	count := int(float64(sampleRate) * seconds)
	samples := make([]int, count)
	for i := range samples {
		v := math.Sin(2 * math.Pi * freq * float64(i) / float64(sampleRate))
		samples[i] = int(float64(amplitude) * v)
	}
	return samples
}

// SilenceSamples generates a run of zero samples.
func SilenceSamples(sampleRate int, seconds float64) []int {
	return make([]int, int(float64(sampleRate)*seconds))
}
