package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"segmatic/internal/config"
)

func newConfigCommand(cmdCtx *commandContext) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration utilities",
	}

	configCmd.AddCommand(newConfigShowCommand(cmdCtx))
	configCmd.AddCommand(newConfigInitCommand())

	return configCmd
}

func newConfigShowCommand(cmdCtx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Display the effective configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cmdCtx.ensureConfig()
			if err != nil {
				return err
			}
			rows := [][]string{
				{"paths.root_dir", cfg.Paths.RootDir},
				{"paths.output_dir", cfg.Paths.OutputDir},
				{"paths.temp_dir", cfg.Paths.TempDir},
				{"paths.log_dir", cfg.Paths.LogDir},
				{"paths.db_path", cfg.Paths.DBPath},
				{"vad.backend", cfg.VAD.Backend},
				{"vad.aggressiveness", strconv.Itoa(cfg.VAD.Aggressiveness)},
				{"vad.min_silence_ms", strconv.Itoa(cfg.VAD.MinSilenceMS)},
				{"vad.min_segment_ms", strconv.Itoa(cfg.VAD.MinSegmentMS)},
				{"vad.frame_duration", strconv.Itoa(cfg.VAD.FrameDurationMS)},
				{"vad.sample_rate", strconv.Itoa(cfg.VAD.SampleRate)},
				{"vad.file_format", cfg.VAD.FileFormat},
				{"processing.min_len", strconv.FormatFloat(cfg.Processing.MinLen, 'f', -1, 64)},
				{"processing.segment_name", cfg.Processing.SegmentName},
				{"processing.segment_subfolders", yesNo(cfg.Processing.SegmentSubfolders)},
				{"processing.max_workers", strconv.Itoa(cfg.Processing.MaxWorkers)},
				{"processing.batch_size", strconv.Itoa(cfg.Processing.BatchSize)},
				{"logging.format", cfg.Logging.Format},
				{"logging.level", cfg.Logging.Level},
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"Option", "Value"}, rows))
			return nil
		},
	}
}

func newConfigInitCommand() *cobra.Command {
	var targetPath string

	cmd := &cobra.Command{
		Use:         "init",
		Short:       "Create a sample configuration file",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			target := strings.TrimSpace(targetPath)
			if target == "" {
				defaultPath, err := config.DefaultConfigPath()
				if err != nil {
					return fmt.Errorf("determine default config path: %w", err)
				}
				target = defaultPath
			} else {
				expanded, err := config.ExpandPath(target)
				if err != nil {
					return fmt.Errorf("resolve config path: %w", err)
				}
				target = expanded
			}

			dir := filepath.Dir(target)
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return fmt.Errorf("create config directory %q: %w", dir, err)
			}
			if err := config.WriteSample(target); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote sample configuration to %s\n", target)
			return nil
		},
	}

	cmd.Flags().StringVarP(&targetPath, "path", "p", "", "Destination for the configuration file")
	return cmd
}
