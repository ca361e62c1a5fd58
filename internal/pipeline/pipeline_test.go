package pipeline_test

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"segmatic/internal/config"
	"segmatic/internal/logging"
	"segmatic/internal/media"
	"segmatic/internal/pipeline"
	"segmatic/internal/runstore"
	"segmatic/internal/testsupport"
	"segmatic/internal/workspace"
)

// fakeBackend copies sources verbatim on resample and writes marker files on
// extraction. Sources whose path contains a configured substring fail;
// dirtyExtract additionally leaves a partial output behind before failing,
// the way a real tool does when interrupted mid-write.
type fakeBackend struct {
	mu            sync.Mutex
	failResample  string
	failBatch     bool
	failExtract   string
	dirtyExtract  string
	batchCalls    int
	extractCalls  int
	resampleCalls int
}

func (f *fakeBackend) Resample(_ context.Context, src, dst string, _ media.StreamParams) error {
	f.mu.Lock()
	f.resampleCalls++
	f.mu.Unlock()
	if f.failResample != "" && strings.Contains(src, f.failResample) {
		return errors.New("resample rejected")
	}
	data, err := os.ReadFile(src)
	if err != nil {
		return err
	}
	return os.WriteFile(dst, data, 0o644)
}

func (f *fakeBackend) Extract(_ context.Context, src string, target media.ExtractTarget) error {
	f.mu.Lock()
	f.extractCalls++
	f.mu.Unlock()
	if f.failExtract != "" && strings.Contains(target.OutputPath, f.failExtract) {
		return errors.New("extract rejected")
	}
	if f.dirtyExtract != "" && strings.Contains(target.OutputPath, f.dirtyExtract) {
		if err := os.WriteFile(target.OutputPath, []byte("trunc"), 0o644); err != nil {
			return err
		}
		return errors.New("extract interrupted")
	}
	return os.WriteFile(target.OutputPath, []byte("segment"), 0o644)
}

func (f *fakeBackend) ExtractBatch(ctx context.Context, src string, targets []media.ExtractTarget) error {
	f.mu.Lock()
	f.batchCalls++
	failBatch := f.failBatch
	f.mu.Unlock()
	if failBatch {
		return errors.New("batch rejected")
	}
	for _, target := range targets {
		if err := f.Extract(ctx, src, target); err != nil {
			return err
		}
	}
	return nil
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Paths.TempDir = filepath.Join(t.TempDir(), "work")
	cfg.Paths.OutputDir = filepath.Join(t.TempDir(), "out")
	cfg.VAD.Backend = "energy"
	cfg.VAD.MinSilenceMS = 300
	cfg.VAD.MinSegmentMS = 200
	cfg.Processing.MaxWorkers = 2
	return &cfg
}

// speechWAV writes a tone/silence/tone file that yields at least one
// segment under the test thresholds.
func speechWAV(t *testing.T, path string) {
	t.Helper()
	samples := testsupport.ToneSamples(16000, 1.0, 440, 8000)
	samples = append(samples, testsupport.SilenceSamples(16000, 0.6)...)
	samples = append(samples, testsupport.ToneSamples(16000, 0.5, 440, 8000)...)
	testsupport.WriteWAV(t, path, 16000, 1, 16, samples)
}

func newTestPipeline(t *testing.T, cfg *config.Config, backend media.Backend) *pipeline.Pipeline {
	t.Helper()
	ws := workspace.New(cfg.Paths.TempDir)
	return pipeline.New(cfg, backend, ws, nil, logging.NewNop())
}

func TestRunProcessesCorpus(t *testing.T) {
	cfg := testConfig(t)
	root := t.TempDir()
	speechWAV(t, filepath.Join(root, "a.wav"))
	speechWAV(t, filepath.Join(root, "nested", "b.wav"))

	backend := &fakeBackend{}
	p := newTestPipeline(t, cfg, backend)

	summary, err := p.Run(context.Background(), root)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if summary.Total != 2 || summary.Succeeded != 2 {
		t.Fatalf("expected 2/2 succeeded, got %+v", summary)
	}
	if summary.RunID == "" {
		t.Fatal("expected a run id")
	}

	manifestPath := filepath.Join(cfg.Paths.OutputDir, "a_segment", "segment_all.csv")
	file, err := os.Open(manifestPath)
	if err != nil {
		t.Fatalf("open manifest: %v", err)
	}
	defer file.Close()
	records, err := csv.NewReader(file).ReadAll()
	if err != nil {
		t.Fatalf("read manifest: %v", err)
	}
	if len(records) < 2 {
		t.Fatalf("expected header plus at least one row, got %d records", len(records))
	}
	if got := strings.Join(records[0], ","); got != "segment_folder,segment_file,start_sec,end_sec,duration_sec" {
		t.Fatalf("unexpected header: %s", got)
	}
	for _, record := range records[1:] {
		if _, err := os.Stat(record[1]); err != nil {
			t.Fatalf("manifest row references missing file %s: %v", record[1], err)
		}
	}

	nested := filepath.Join(cfg.Paths.OutputDir, "nested", "b_segment", "segment_all.csv")
	if _, err := os.Stat(nested); err != nil {
		t.Fatalf("nested manifest missing: %v", err)
	}
}

func TestRunIsolatesFailures(t *testing.T) {
	cfg := testConfig(t)
	root := t.TempDir()
	speechWAV(t, filepath.Join(root, "good.wav"))
	// Not a WAV at all, so both resample paths fail.
	if err := os.WriteFile(filepath.Join(root, "broken.wav"), []byte("nonsense"), 0o644); err != nil {
		t.Fatalf("write broken file: %v", err)
	}

	backend := &fakeBackend{failResample: "broken"}
	p := newTestPipeline(t, cfg, backend)

	summary, err := p.Run(context.Background(), root)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if summary.Succeeded != 1 || summary.Failed != 1 {
		t.Fatalf("expected 1 succeeded and 1 failed, got %+v", summary)
	}
}

func TestRunRecordsHistory(t *testing.T) {
	cfg := testConfig(t)
	root := t.TempDir()
	speechWAV(t, filepath.Join(root, "a.wav"))

	store, err := runstore.Open(filepath.Join(t.TempDir(), "runs.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer store.Close()

	ws := workspace.New(cfg.Paths.TempDir)
	p := pipeline.New(cfg, &fakeBackend{}, ws, store, logging.NewNop())

	summary, err := p.Run(context.Background(), root)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	runs, err := store.RecentRuns(context.Background(), 1)
	if err != nil {
		t.Fatalf("RecentRuns: %v", err)
	}
	if len(runs) != 1 || runs[0].ID != summary.RunID {
		t.Fatalf("expected recorded run %s, got %+v", summary.RunID, runs)
	}
	if runs[0].Succeeded != 1 || runs[0].Total != 1 {
		t.Fatalf("unexpected counters: %+v", runs[0])
	}
	files, err := store.RunFiles(context.Background(), summary.RunID)
	if err != nil {
		t.Fatalf("RunFiles: %v", err)
	}
	if len(files) != 1 || files[0].Status != runstore.StatusSucceeded || files[0].Segments == 0 {
		t.Fatalf("unexpected file rows: %+v", files)
	}
}

func TestRunCancelledContext(t *testing.T) {
	cfg := testConfig(t)
	root := t.TempDir()
	for i := 0; i < 4; i++ {
		speechWAV(t, filepath.Join(root, fmt.Sprintf("f%d.wav", i)))
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := newTestPipeline(t, cfg, &fakeBackend{})
	summary, err := p.Run(ctx, root)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if summary.Succeeded != 0 {
		t.Fatalf("cancelled run must not report successes: %+v", summary)
	}
	if summary.Cancelled != summary.Total {
		t.Fatalf("expected all %d files cancelled, got %+v", summary.Total, summary)
	}
}

func TestRunEmptyCorpus(t *testing.T) {
	cfg := testConfig(t)
	root := t.TempDir()

	p := newTestPipeline(t, cfg, &fakeBackend{})
	summary, err := p.Run(context.Background(), root)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if summary.Total != 0 || summary.Succeeded != 0 {
		t.Fatalf("expected an empty summary, got %+v", summary)
	}
}

func TestRunBatchFallback(t *testing.T) {
	cfg := testConfig(t)
	root := t.TempDir()
	speechWAV(t, filepath.Join(root, "a.wav"))

	backend := &fakeBackend{failBatch: true}
	p := newTestPipeline(t, cfg, backend)

	summary, err := p.Run(context.Background(), root)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if summary.Succeeded != 1 {
		t.Fatalf("expected success via per-range fallback, got %+v", summary)
	}
	if backend.batchCalls == 0 || backend.extractCalls == 0 {
		t.Fatalf("expected batch attempt then individual extracts, got batch=%d extract=%d", backend.batchCalls, backend.extractCalls)
	}
}

func TestRunExtractFailureSkipsRange(t *testing.T) {
	cfg := testConfig(t)
	cfg.Processing.BatchSize = 1
	root := t.TempDir()
	speechWAV(t, filepath.Join(root, "a.wav"))

	// The batch path fails, and the first range also fails individually;
	// the job still succeeds with the remaining ranges in the manifest.
	backend := &fakeBackend{failBatch: true, failExtract: "segment_1."}
	p := newTestPipeline(t, cfg, backend)

	summary, err := p.Run(context.Background(), root)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if summary.Succeeded != 1 {
		t.Fatalf("expected job success despite one bad range, got %+v", summary)
	}

	manifestPath := filepath.Join(cfg.Paths.OutputDir, "a_segment", "segment_all.csv")
	file, err := os.Open(manifestPath)
	if err != nil {
		t.Fatalf("open manifest: %v", err)
	}
	defer file.Close()
	records, err := csv.NewReader(file).ReadAll()
	if err != nil {
		t.Fatalf("read manifest: %v", err)
	}
	for _, record := range records[1:] {
		if strings.Contains(record[1], "segment_1.") {
			t.Fatalf("failed range must not appear in manifest: %v", record)
		}
	}
}

func TestRunFailedRangePartialOutputExcluded(t *testing.T) {
	cfg := testConfig(t)
	cfg.Processing.BatchSize = 1
	root := t.TempDir()
	speechWAV(t, filepath.Join(root, "a.wav"))

	// The failing range writes a truncated output before erroring; neither
	// the file nor a manifest row for it may survive.
	backend := &fakeBackend{failBatch: true, dirtyExtract: "segment_1."}
	p := newTestPipeline(t, cfg, backend)

	summary, err := p.Run(context.Background(), root)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if summary.Succeeded != 1 {
		t.Fatalf("expected job success despite one bad range, got %+v", summary)
	}

	outDir := filepath.Join(cfg.Paths.OutputDir, "a_segment")
	if _, err := os.Stat(filepath.Join(outDir, "segment_1.wav")); !os.IsNotExist(err) {
		t.Fatalf("truncated output must be removed, stat err = %v", err)
	}

	file, err := os.Open(filepath.Join(outDir, "segment_all.csv"))
	if err != nil {
		t.Fatalf("open manifest: %v", err)
	}
	defer file.Close()
	records, err := csv.NewReader(file).ReadAll()
	if err != nil {
		t.Fatalf("read manifest: %v", err)
	}
	for _, record := range records[1:] {
		if strings.Contains(record[1], "segment_1.") {
			t.Fatalf("interrupted range must not appear in manifest: %v", record)
		}
	}
}

func TestRunIsIdempotent(t *testing.T) {
	cfg := testConfig(t)
	root := t.TempDir()
	speechWAV(t, filepath.Join(root, "a.wav"))
	speechWAV(t, filepath.Join(root, "nested", "b.wav"))

	manifests := []string{
		filepath.Join(cfg.Paths.OutputDir, "a_segment", "segment_all.csv"),
		filepath.Join(cfg.Paths.OutputDir, "nested", "b_segment", "segment_all.csv"),
	}

	run := func() map[string][]byte {
		t.Helper()
		p := newTestPipeline(t, cfg, &fakeBackend{})
		summary, err := p.Run(context.Background(), root)
		if err != nil {
			t.Fatalf("Run: %v", err)
		}
		if summary.Succeeded != summary.Total {
			t.Fatalf("expected a clean run, got %+v", summary)
		}
		contents := make(map[string][]byte, len(manifests))
		for _, path := range manifests {
			data, err := os.ReadFile(path)
			if err != nil {
				t.Fatalf("read manifest %s: %v", path, err)
			}
			contents[path] = data
		}
		return contents
	}

	first := run()
	second := run()
	for path, data := range first {
		if !bytes.Equal(data, second[path]) {
			t.Fatalf("manifest %s changed between identical runs:\nfirst:\n%s\nsecond:\n%s", path, data, second[path])
		}
	}
}
