// Package ffmpeg implements the media backend on top of the ffmpeg
// command-line utility.
package ffmpeg

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	"segmatic/internal/media"
	"segmatic/internal/services"
)

var commandContext = exec.CommandContext

// Option configures the CLI backend.
type Option func(*CLI)

// WithBinary overrides the default binary name.
func WithBinary(binary string) Option {
	return func(c *CLI) {
		if binary != "" {
			c.binary = binary
		}
	}
}

// CLI wraps the ffmpeg command-line tool as a media backend.
type CLI struct {
	binary string
}

// NewCLI constructs a CLI backend using defaults.
func NewCLI(opts ...Option) *CLI {
	cli := &CLI{binary: "ffmpeg"}
	for _, opt := range opts {
		opt(cli)
	}
	return cli
}

var _ media.Backend = (*CLI)(nil)

// Resample writes a mono 16-bit working copy of src at the target rate.
func (c *CLI) Resample(ctx context.Context, src, dst string, params media.StreamParams) error {
	if src == "" || dst == "" {
		return errors.New("resample: source and destination paths required")
	}
	args := []string{
		"-y", "-v", "error",
		"-i", src,
		"-acodec", "pcm_s16le",
		"-ac", strconv.Itoa(params.Channels),
		"-ar", strconv.Itoa(params.SampleRate),
		dst,
	}
	return c.run(ctx, "resample", args)
}

// Extract stream-copies one [start, end] range of src without re-encoding.
func (c *CLI) Extract(ctx context.Context, src string, target media.ExtractTarget) error {
	if src == "" || target.OutputPath == "" {
		return errors.New("extract: source and output paths required")
	}
	args := []string{
		"-y", "-v", "error",
		"-ss", formatSeconds(target.Start),
		"-to", formatSeconds(target.End),
		"-i", src,
		"-acodec", "copy",
		target.OutputPath,
	}
	return c.run(ctx, "extract", args)
}

// ExtractBatch stream-copies several ranges in a single ffmpeg invocation,
// one output leg per range. Any leg failing fails the whole call; the caller
// retries ranges individually.
func (c *CLI) ExtractBatch(ctx context.Context, src string, targets []media.ExtractTarget) error {
	if len(targets) == 0 {
		return nil
	}
	if src == "" {
		return errors.New("extract batch: source path required")
	}
	args := []string{"-y", "-v", "error", "-i", src}
	for _, target := range targets {
		if target.OutputPath == "" {
			return errors.New("extract batch: output path required")
		}
		args = append(args,
			"-ss", formatSeconds(target.Start),
			"-to", formatSeconds(target.End),
			"-acodec", "copy",
			target.OutputPath,
		)
	}
	return c.run(ctx, "extract batch", args)
}

func (c *CLI) run(ctx context.Context, operation string, args []string) error {
	cmd := commandContext(ctx, c.binary, args...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		detail := strings.TrimSpace(string(output))
		if detail == "" {
			detail = err.Error()
		}
		return services.Wrap(services.ErrExternalTool, "ffmpeg", operation, detail, err)
	}
	return nil
}

func formatSeconds(v float64) string {
	return strconv.FormatFloat(v, 'f', 3, 64)
}

// String identifies the backend in logs.
func (c *CLI) String() string {
	return fmt.Sprintf("ffmpeg(%s)", c.binary)
}
