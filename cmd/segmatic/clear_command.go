package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"segmatic/internal/workspace"
)

func newClearTempCommand(cmdCtx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "clear-temp",
		Short: "Delete intermediate resampled audio from the workspace",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cmdCtx.ensureConfig()
			if err != nil {
				return err
			}
			ws := workspace.New(cfg.Paths.TempDir)
			if err := ws.Clear(); err != nil {
				if errors.Is(err, workspace.ErrBusy) {
					return fmt.Errorf("workspace %s is in use by a running batch", cfg.Paths.TempDir)
				}
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Cleared workspace %s\n", cfg.Paths.TempDir)
			return nil
		},
	}
}
