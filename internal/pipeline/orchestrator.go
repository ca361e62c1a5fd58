package pipeline

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/mattn/go-isatty"
	"github.com/schollz/progressbar/v3"

	"segmatic/internal/config"
	"segmatic/internal/fileutil"
	"segmatic/internal/logging"
	"segmatic/internal/media"
	"segmatic/internal/runstore"
	"segmatic/internal/services"
	"segmatic/internal/workspace"
)

// Pipeline drives a batch run: discovery, the worker pool, per-file
// processing, and run bookkeeping.
type Pipeline struct {
	cfg       *config.Config
	backend   media.Backend
	workspace *workspace.Workspace
	store     *runstore.Store
	logger    *slog.Logger

	root      string
	outputDir string
}

// New constructs a Pipeline. store may be nil when run history is not
// wanted; logger may be nil for silent operation.
func New(cfg *config.Config, backend media.Backend, ws *workspace.Workspace, store *runstore.Store, logger *slog.Logger) *Pipeline {
	return &Pipeline{
		cfg:       cfg,
		backend:   backend,
		workspace: ws,
		store:     store,
		logger:    logging.NewComponentLogger(logger, "pipeline"),
	}
}

// Summary aggregates one batch run.
type Summary struct {
	RunID     string
	Total     int
	Succeeded int
	Failed    int
	Skipped   int
	Cancelled int
	OutputDir string
	Elapsed   time.Duration
}

// Run processes every matching file under root with a bounded worker pool.
// One file's failure never aborts the batch; cancellation stops dispatch and
// lets in-flight jobs wind down. An empty corpus is a zero-count summary,
// not an error.
func (p *Pipeline) Run(ctx context.Context, root string) (Summary, error) {
	started := time.Now()

	absRoot, err := filepath.Abs(root)
	if err != nil {
		return Summary{}, services.Wrap(services.ErrValidation, "pipeline", "root", root, err)
	}
	if _, err := os.Stat(absRoot); err != nil {
		return Summary{}, services.Wrap(services.ErrValidation, "pipeline", "root", absRoot, err)
	}
	p.root = absRoot
	p.outputDir = p.cfg.ResolveOutputDir(absRoot)

	files, err := fileutil.DiscoverAudio(absRoot, p.cfg.VAD.FileFormat)
	if err != nil {
		return Summary{}, services.Wrap(services.ErrIO, "pipeline", "discover", absRoot, err)
	}
	summary := Summary{Total: len(files), OutputDir: p.outputDir}
	if len(files) == 0 {
		p.logger.Info("no matching files found",
			logging.String("root", absRoot),
			logging.String("extension", p.cfg.VAD.FileFormat))
		summary.Elapsed = time.Since(started)
		return summary, nil
	}

	if err := p.workspace.Acquire(); err != nil {
		return Summary{}, err
	}
	defer func() { _ = p.workspace.Release() }()
	if err := p.workspace.Preflight(); err != nil {
		return Summary{}, err
	}

	runID := uuid.New().String()
	summary.RunID = runID
	ctx = services.WithRunID(ctx, runID)
	if p.store != nil {
		if err := p.store.BeginRun(ctx, runID, absRoot, p.outputDir, len(files)); err != nil {
			return Summary{}, err
		}
	}

	workers := p.cfg.Workers()
	if workers > len(files) {
		workers = len(files)
	}
	p.logger.Info("starting batch",
		logging.String(logging.FieldRunID, runID),
		logging.Int("files", len(files)),
		logging.Int("workers", workers),
		logging.String("output_dir", p.outputDir))

	jobs := make(chan Job)
	results := make(chan Result)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range jobs {
				jobStart := time.Now()
				segments, err := p.processJob(services.WithSource(ctx, job.Source), job)
				results <- Result{Job: job, Segments: segments, Elapsed: time.Since(jobStart), Err: err}
			}
		}()
	}

	go func() {
		defer close(jobs)
		for _, source := range files {
			rel, relErr := filepath.Rel(absRoot, source)
			if relErr != nil {
				rel = source
			}
			select {
			case <-ctx.Done():
				return
			case jobs <- Job{Source: source, RelPath: rel}:
			}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	bar := p.newProgressBar(len(files))
	processed := make(map[string]bool, len(files))
	for result := range results {
		processed[result.Job.Source] = true
		p.recordResult(ctx, runID, result, &summary)
		if bar != nil {
			_ = bar.Add(1)
		}
	}
	if bar != nil {
		_ = bar.Finish()
	}

	// Files never dispatched because of cancellation still count.
	for _, source := range files {
		if processed[source] {
			continue
		}
		summary.Cancelled++
		if p.store != nil {
			_ = p.store.RecordFile(ctx, runID, runstore.FileResult{
				SourcePath: source,
				Status:     runstore.StatusCancelled,
			})
		}
	}

	if p.store != nil {
		if err := p.store.FinishRun(ctx, runID); err != nil {
			p.logger.Error("failed to finish run record",
				logging.String(logging.FieldRunID, runID),
				logging.Error(err))
		}
	}

	summary.Elapsed = time.Since(started)
	p.logger.Info("batch finished",
		logging.String(logging.FieldRunID, runID),
		logging.Int("succeeded", summary.Succeeded),
		logging.Int("failed", summary.Failed),
		logging.Int("skipped", summary.Skipped),
		logging.Int("cancelled", summary.Cancelled),
		logging.Int("total", summary.Total),
		logging.Duration("elapsed", summary.Elapsed))
	return summary, nil
}

func (p *Pipeline) recordResult(ctx context.Context, runID string, result Result, summary *Summary) {
	status := runstore.StatusFor(result.Err)
	switch status {
	case runstore.StatusSucceeded:
		summary.Succeeded++
		p.logger.Info("file processed",
			logging.String(logging.FieldSource, result.Job.Source),
			logging.Int("segments", result.Segments),
			logging.Duration("elapsed", result.Elapsed))
	case runstore.StatusCancelled:
		summary.Cancelled++
	case runstore.StatusSkipped:
		summary.Skipped++
		p.logger.Warn("file skipped",
			logging.String(logging.FieldSource, result.Job.Source),
			logging.Error(result.Err))
	default:
		summary.Failed++
		p.logger.Error("file failed",
			logging.String(logging.FieldSource, result.Job.Source),
			logging.Error(result.Err))
	}

	if p.store == nil {
		return
	}
	record := runstore.FileResult{
		SourcePath: result.Job.Source,
		Status:     status,
		Segments:   result.Segments,
		Elapsed:    result.Elapsed,
	}
	if result.Err != nil {
		record.Error = result.Err.Error()
	}
	if err := p.store.RecordFile(ctx, runID, record); err != nil {
		p.logger.Error("failed to record file result",
			logging.String(logging.FieldSource, result.Job.Source),
			logging.Error(err))
	}
}

func (p *Pipeline) newProgressBar(total int) *progressbar.ProgressBar {
	if !isatty.IsTerminal(os.Stderr.Fd()) {
		return nil
	}
	return progressbar.NewOptions(total,
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSetDescription("segmenting"),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer: "=", SaucerHead: ">", SaucerPadding: " ", BarStart: "[", BarEnd: "]",
		}),
	)
}
