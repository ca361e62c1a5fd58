package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"segmatic/internal/audio/wavio"
	"segmatic/internal/fileutil"
	"segmatic/internal/logging"
	"segmatic/internal/manifest"
	"segmatic/internal/media"
	"segmatic/internal/media/native"
	"segmatic/internal/segment"
	"segmatic/internal/services"
	"segmatic/internal/vad"
)

// Job is one source file scheduled for segmentation.
type Job struct {
	Source  string
	RelPath string
}

// Result is the outcome of one processed job.
type Result struct {
	Job      Job
	Segments int
	Elapsed  time.Duration
	Err      error
}

// processJob runs the per-file pipeline: resample to the working copy,
// classify and segment, merge, cut from the original, write the manifest.
// The returned count is the number of segment files actually written.
func (p *Pipeline) processJob(ctx context.Context, job Job) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, services.Wrap(services.ErrCancelled, "pipeline", "start", job.RelPath, err)
	}

	jobDir, err := p.workspace.JobDir(job.RelPath)
	if err != nil {
		return 0, err
	}
	working := filepath.Join(jobDir, fileutil.Stem(job.Source)+".wav")
	params := media.StreamParams{
		SampleRate: p.cfg.VAD.SampleRate,
		Channels:   1,
		BitDepth:   16,
	}
	if err := p.backend.Resample(ctx, job.Source, working, params); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return 0, services.Wrap(services.ErrCancelled, "pipeline", "resample", job.RelPath, ctxErr)
		}
		p.logger.Warn("primary resample failed, trying native path",
			logging.String(logging.FieldSource, job.Source),
			logging.Error(err))
		if nativeErr := native.Resample(job.Source, working, params); nativeErr != nil {
			return 0, services.Wrap(services.ErrExternalTool, "pipeline", "resample", job.RelPath, errors.Join(err, nativeErr))
		}
	}

	pcm, desc, err := wavio.ReadPCM(working)
	if err != nil {
		return 0, err
	}
	if err := desc.VADEligible(); err != nil {
		return 0, err
	}

	classifier, err := vad.New(p.cfg.VAD.Backend, p.cfg.VAD.Aggressiveness)
	if err != nil {
		return 0, err
	}
	raw, err := segment.Split(pcm, desc.SampleRate, classifier, segment.Params{
		FrameDurationMS: p.cfg.VAD.FrameDurationMS,
		MinSilenceMS:    p.cfg.VAD.MinSilenceMS,
		MinSegmentMS:    p.cfg.VAD.MinSegmentMS,
	})
	if err != nil {
		return 0, err
	}
	merged := segment.Merge(raw, p.cfg.Processing.MinLen)

	if err := ctx.Err(); err != nil {
		return 0, services.Wrap(services.ErrCancelled, "pipeline", "segment", job.RelPath, err)
	}

	outDir, err := fileutil.MirrorDir(p.root, p.outputDir, job.Source, p.cfg.Processing.SegmentName)
	if err != nil {
		return 0, services.Wrap(services.ErrIO, "pipeline", "output dir", job.RelPath, err)
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return 0, services.Wrap(services.ErrIO, "pipeline", "output dir", outDir, err)
	}

	rows, err := p.cutSegments(ctx, job.Source, outDir, merged)
	if err != nil {
		return 0, err
	}
	manifestPath := filepath.Join(outDir, manifest.Filename(p.cfg.Processing.SegmentName))
	if err := manifest.Write(manifestPath, rows); err != nil {
		return 0, err
	}
	return len(rows), nil
}

// cutSegments stream-copies each merged segment out of the original source.
// Ranges are cut in batches; a failed batch falls back to one-at-a-time
// extraction, and a range that still fails is logged and skipped without
// aborting the rest. Manifest rows cover only ranges whose extraction
// succeeded and whose output is present on disk.
func (p *Pipeline) cutSegments(ctx context.Context, source, outDir string, segments []segment.Segment) ([]manifest.Row, error) {
	targets := make([]media.ExtractTarget, 0, len(segments))
	folders := make([]string, 0, len(segments))
	for i, seg := range segments {
		folder := outDir
		if p.cfg.Processing.SegmentSubfolders {
			folder = filepath.Join(outDir, fmt.Sprintf("segment_%d", i+1))
			if err := os.MkdirAll(folder, 0o755); err != nil {
				return nil, services.Wrap(services.ErrIO, "pipeline", "segment dir", folder, err)
			}
		}
		name := fmt.Sprintf("%s_%d.%s", p.cfg.Processing.SegmentName, i+1, p.cfg.VAD.FileFormat)
		targets = append(targets, media.ExtractTarget{
			OutputPath: filepath.Join(folder, name),
			Start:      seg.Start,
			End:        seg.End,
		})
		folders = append(folders, folder)
	}

	extracted := make([]bool, len(targets))
	batchSize := p.cfg.Processing.BatchSize
	for offset := 0; offset < len(targets); offset += batchSize {
		if err := ctx.Err(); err != nil {
			return nil, services.Wrap(services.ErrCancelled, "pipeline", "cut", source, err)
		}
		end := offset + batchSize
		if end > len(targets) {
			end = len(targets)
		}
		batch := targets[offset:end]
		batchErr := p.backend.ExtractBatch(ctx, source, batch)
		if batchErr == nil {
			for i := range batch {
				extracted[offset+i] = true
			}
			continue
		}
		p.logger.Warn("batch extraction failed, retrying ranges individually",
			logging.String(logging.FieldSource, source),
			logging.Int("ranges", len(batch)),
			logging.Error(batchErr))
		for i, target := range batch {
			if err := ctx.Err(); err != nil {
				return nil, services.Wrap(services.ErrCancelled, "pipeline", "cut", source, err)
			}
			if err := p.backend.Extract(ctx, source, target); err != nil {
				p.logger.Error("segment extraction failed",
					logging.String(logging.FieldSource, source),
					logging.String("output", target.OutputPath),
					logging.Error(err))
				// The tool may have left a truncated output behind.
				_ = os.Remove(target.OutputPath)
				continue
			}
			extracted[offset+i] = true
		}
	}

	rows := make([]manifest.Row, 0, len(targets))
	for i, target := range targets {
		if !extracted[i] {
			continue
		}
		if _, err := os.Stat(target.OutputPath); err != nil {
			continue
		}
		rows = append(rows, manifest.Row{
			SegmentFolder: folders[i],
			SegmentFile:   target.OutputPath,
			Start:         segments[i].Start,
			End:           segments[i].End,
			Duration:      segments[i].Duration,
		})
	}
	return rows, nil
}
