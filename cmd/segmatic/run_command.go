package main

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"segmatic/internal/logging"
	"segmatic/internal/media/ffmpeg"
	"segmatic/internal/pipeline"
	"segmatic/internal/runstore"
	"segmatic/internal/workspace"
)

func newRunCommand(cmdCtx *commandContext) *cobra.Command {
	var rootFlag string

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Segment every matching audio file under the source root",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cmdCtx.ensureConfig()
			if err != nil {
				return err
			}

			root := strings.TrimSpace(rootFlag)
			if root == "" {
				root = cfg.Paths.RootDir
			}
			if root == "" {
				return errors.New("no source root: pass --root or set paths.root_dir in the config")
			}

			logger, closer, err := logging.NewWithFile(logging.Options{
				Level:  cfg.Logging.Level,
				Format: cfg.Logging.Format,
			}, cfg.Paths.LogDir, "segmatic.log")
			if err != nil {
				return err
			}
			defer closer.Close()

			store, err := runstore.Open(cfg.Paths.DBPath)
			if err != nil {
				return err
			}
			defer store.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			backend := ffmpeg.NewCLI(ffmpeg.WithBinary(cfg.Tools.FFmpegBinary))
			ws := workspace.New(cfg.Paths.TempDir)

			p := pipeline.New(cfg, backend, ws, store, logger)
			summary, err := p.Run(ctx, root)
			if err != nil {
				if errors.Is(err, workspace.ErrBusy) {
					return fmt.Errorf("another segmatic run is using the workspace; wait for it to finish or check %s", cfg.Paths.TempDir)
				}
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Processed %d/%d files", summary.Succeeded, summary.Total)
			if summary.Failed > 0 {
				fmt.Fprintf(out, ", %d failed", summary.Failed)
			}
			if summary.Skipped > 0 {
				fmt.Fprintf(out, ", %d skipped", summary.Skipped)
			}
			if summary.Cancelled > 0 {
				fmt.Fprintf(out, ", %d cancelled", summary.Cancelled)
			}
			fmt.Fprintf(out, " in %s\n", summary.Elapsed.Round(summaryRounding))
			if summary.Total > 0 {
				fmt.Fprintf(out, "Output: %s\n", summary.OutputDir)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&rootFlag, "root", "", "Source directory to process (overrides paths.root_dir)")
	return cmd
}
