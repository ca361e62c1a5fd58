package config

const (
	defaultTempDir         = "~/.local/share/segmatic/work"
	defaultLogDir          = "~/.local/share/segmatic/logs"
	defaultDBPath          = "~/.local/share/segmatic/segmatic.db"
	defaultVADBackend      = "webrtc"
	defaultAggressiveness  = 2
	defaultMinSilenceMS    = 1000
	defaultMinSegmentMS    = 200
	defaultFrameDurationMS = 30
	defaultSampleRate      = 16000
	defaultFileFormat      = "wav"
	defaultSegmentName     = "segment"
	defaultBatchSize       = 10
	defaultLogFormat       = "console"
	defaultLogLevel        = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			TempDir: defaultTempDir,
			LogDir:  defaultLogDir,
			DBPath:  defaultDBPath,
		},
		VAD: VAD{
			Backend:         defaultVADBackend,
			Aggressiveness:  defaultAggressiveness,
			MinSilenceMS:    defaultMinSilenceMS,
			MinSegmentMS:    defaultMinSegmentMS,
			FrameDurationMS: defaultFrameDurationMS,
			SampleRate:      defaultSampleRate,
			FileFormat:      defaultFileFormat,
		},
		Processing: Processing{
			MinLen:      0,
			SegmentName: defaultSegmentName,
			BatchSize:   defaultBatchSize,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
