package config

import (
	"errors"
	"fmt"
)

var validSampleRates = map[int]bool{8000: true, 16000: true, 32000: true, 48000: true}

var validFrameDurations = map[int]bool{10: true, 20: true, 30: true}

// Validate ensures the configuration is usable. Invalid combinations are
// rejected here rather than deep inside the pipeline.
func (c *Config) Validate() error {
	if err := c.validateVAD(); err != nil {
		return err
	}
	if err := c.validateProcessing(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateVAD() error {
	switch c.VAD.Backend {
	case "webrtc", "energy":
	default:
		return fmt.Errorf("vad.backend must be \"webrtc\" or \"energy\", got %q", c.VAD.Backend)
	}
	if c.VAD.Aggressiveness < 0 || c.VAD.Aggressiveness > 3 {
		return fmt.Errorf("vad.aggressiveness must be between 0 and 3, got %d", c.VAD.Aggressiveness)
	}
	if !validSampleRates[c.VAD.SampleRate] {
		return fmt.Errorf("vad.sample_rate must be one of 8000, 16000, 32000, 48000, got %d", c.VAD.SampleRate)
	}
	if !validFrameDurations[c.VAD.FrameDurationMS] {
		return fmt.Errorf("vad.frame_duration must be 10, 20, or 30 ms, got %d", c.VAD.FrameDurationMS)
	}
	if c.VAD.MinSilenceMS < c.VAD.FrameDurationMS {
		return fmt.Errorf("vad.min_silence_ms must be at least one frame (%d ms)", c.VAD.FrameDurationMS)
	}
	if c.VAD.MinSegmentMS < 0 {
		return errors.New("vad.min_segment_ms must not be negative")
	}
	if c.VAD.FileFormat == "" {
		return errors.New("vad.file_format must be set")
	}
	return nil
}

func (c *Config) validateProcessing() error {
	if c.Processing.MinLen < 0 {
		return errors.New("processing.min_len must not be negative")
	}
	if c.Processing.MaxWorkers < 0 {
		return errors.New("processing.max_workers must not be negative")
	}
	if c.Processing.BatchSize <= 0 {
		return errors.New("processing.batch_size must be positive")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be \"console\" or \"json\", got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("logging.level %q is not recognized", c.Logging.Level)
	}
	return nil
}
