package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"segmatic/internal/config"
	"segmatic/internal/media/ffprobe"
)

func newProbeCommand(cmdCtx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "probe <file>",
		Short: "Inspect an audio file and report its stream parameters",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cmdCtx.ensureConfig()
			if err != nil {
				return err
			}
			path, err := config.ExpandPath(args[0])
			if err != nil {
				return err
			}

			result, err := ffprobe.Inspect(cmd.Context(), cfg.Tools.FFprobeBinary, path)
			if err != nil {
				return err
			}
			stream, ok := result.FirstAudioStream()
			if !ok {
				return fmt.Errorf("%s contains no audio stream", path)
			}

			rows := [][]string{
				{"File", result.Format.Filename},
				{"Container", result.Format.FormatName},
				{"Codec", stream.CodecName},
				{"Sample rate", stream.SampleRate},
				{"Channels", strconv.Itoa(stream.Channels)},
				{"Bits per sample", strconv.Itoa(stream.BitsPerSample)},
				{"Duration", fmt.Sprintf("%.3f s", result.DurationSeconds())},
			}
			if desc, ok := result.Descriptor(); ok {
				rows = append(rows, []string{"VAD eligible", yesNo(desc.VADEligible() == nil)})
			}

			fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"Field", "Value"}, rows))
			return nil
		},
	}
}
