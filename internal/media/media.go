// Package media defines the backend capability the pipeline needs from an
// external decode/encode/extract utility: format conversion to the VAD
// working parameters and stream-copy extraction of time ranges. Backends are
// swappable; the default shells out to ffmpeg.
package media

import "context"

// StreamParams describes a resample target.
type StreamParams struct {
	SampleRate int
	Channels   int
	BitDepth   int
}

// ExtractTarget is one time range to cut from a source file.
type ExtractTarget struct {
	OutputPath string
	Start      float64
	End        float64
}

// Backend abstracts the media operations the pipeline performs via an
// external utility.
type Backend interface {
	// Resample writes a working copy of src at the target parameters to dst.
	// The source file is never mutated.
	Resample(ctx context.Context, src, dst string, params StreamParams) error
	// Extract stream-copies the [start, end] range of src to dst without
	// re-encoding.
	Extract(ctx context.Context, src string, target ExtractTarget) error
	// ExtractBatch stream-copies several ranges in one invocation where the
	// tool supports it. A batch failure reports the whole call failed; the
	// caller falls back to per-range Extract.
	ExtractBatch(ctx context.Context, src string, targets []ExtractTarget) error
}
