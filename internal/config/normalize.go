package config

import (
	"fmt"
	"os"
	"runtime"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeVAD()
	c.normalizeProcessing()
	c.normalizeTools()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if value, ok := os.LookupEnv("SEGMATIC_TEMP_DIR"); ok && strings.TrimSpace(value) != "" {
		c.Paths.TempDir = value
	}
	if value, ok := os.LookupEnv("SEGMATIC_LOG_DIR"); ok && strings.TrimSpace(value) != "" {
		c.Paths.LogDir = value
	}
	if value, ok := os.LookupEnv("SEGMATIC_DB_PATH"); ok && strings.TrimSpace(value) != "" {
		c.Paths.DBPath = value
	}
	if strings.TrimSpace(c.Paths.TempDir) == "" {
		c.Paths.TempDir = defaultTempDir
	}
	if c.Paths.TempDir, err = expandPath(c.Paths.TempDir); err != nil {
		return fmt.Errorf("paths.temp_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.DBPath) == "" {
		c.Paths.DBPath = defaultDBPath
	}
	if c.Paths.DBPath, err = expandPath(c.Paths.DBPath); err != nil {
		return fmt.Errorf("paths.db_path: %w", err)
	}
	if strings.TrimSpace(c.Paths.RootDir) != "" {
		if c.Paths.RootDir, err = expandPath(c.Paths.RootDir); err != nil {
			return fmt.Errorf("paths.root_dir: %w", err)
		}
	}
	// Empty output_dir derives "<root>_segments" next to the source tree once
	// the root is known; see ResolveOutputDir.
	if strings.TrimSpace(c.Paths.OutputDir) != "" {
		if c.Paths.OutputDir, err = expandPath(c.Paths.OutputDir); err != nil {
			return fmt.Errorf("paths.output_dir: %w", err)
		}
	}
	return nil
}

// ResolveOutputDir returns the configured output directory, defaulting to a
// sibling of root named "<root>_segments" when unset.
func (c *Config) ResolveOutputDir(root string) string {
	if strings.TrimSpace(c.Paths.OutputDir) != "" {
		return c.Paths.OutputDir
	}
	return strings.TrimRight(root, "/") + "_segments"
}

func (c *Config) normalizeVAD() {
	c.VAD.Backend = strings.ToLower(strings.TrimSpace(c.VAD.Backend))
	if c.VAD.Backend == "" {
		c.VAD.Backend = defaultVADBackend
	}
	c.VAD.FileFormat = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(c.VAD.FileFormat), "."))
	if c.VAD.FileFormat == "" {
		c.VAD.FileFormat = defaultFileFormat
	}
}

func (c *Config) normalizeProcessing() {
	c.Processing.SegmentName = strings.TrimSpace(c.Processing.SegmentName)
	if c.Processing.SegmentName == "" {
		c.Processing.SegmentName = defaultSegmentName
	}
	if c.Processing.BatchSize == 0 {
		c.Processing.BatchSize = defaultBatchSize
	}
}

func (c *Config) normalizeTools() {
	c.Tools.FFmpegBinary = strings.TrimSpace(c.Tools.FFmpegBinary)
	c.Tools.FFprobeBinary = strings.TrimSpace(c.Tools.FFprobeBinary)
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}

// Workers resolves the effective worker count, defaulting to the available
// CPU parallelism when max_workers is zero.
func (c *Config) Workers() int {
	if c.Processing.MaxWorkers > 0 {
		return c.Processing.MaxWorkers
	}
	return runtime.GOMAXPROCS(0)
}
