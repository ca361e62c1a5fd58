// Package workspace manages the shared temp directory holding intermediate
// resampled audio. The workspace lives for the duration of a batch run and
// is cleared as a separate, explicit operation; a file lock prevents a clear
// from racing an active batch.
package workspace

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"

	"segmatic/internal/services"
)

// ErrBusy indicates another process holds the workspace lock.
var ErrBusy = errors.New("workspace is in use by another process")

// Workspace is the process-wide temp directory for resampled working copies.
type Workspace struct {
	root string
	lock *flock.Flock
}

// New constructs a Workspace rooted at dir.
func New(dir string) *Workspace {
	return &Workspace{
		root: dir,
		lock: flock.New(filepath.Join(dir, ".lock")),
	}
}

// Root returns the workspace root directory.
func (w *Workspace) Root() string {
	return w.root
}

// Ensure creates the workspace root if missing.
func (w *Workspace) Ensure() error {
	if err := os.MkdirAll(w.root, 0o755); err != nil {
		return services.Wrap(services.ErrIO, "workspace", "ensure", w.root, err)
	}
	return nil
}

// Acquire takes the workspace lock without blocking. It fails with ErrBusy
// when another batch or a concurrent clear holds it.
func (w *Workspace) Acquire() error {
	if err := w.Ensure(); err != nil {
		return err
	}
	locked, err := w.lock.TryLock()
	if err != nil {
		return services.Wrap(services.ErrIO, "workspace", "lock", w.lock.Path(), err)
	}
	if !locked {
		return ErrBusy
	}
	return nil
}

// Release drops the workspace lock.
func (w *Workspace) Release() error {
	return w.lock.Unlock()
}

// JobDir returns a per-job subdirectory derived from the job's relative
// source path, so same-named files in different source subtrees never
// collide inside the shared workspace.
func (w *Workspace) JobDir(relPath string) (string, error) {
	sum := sha256.Sum256([]byte(relPath))
	dir := filepath.Join(w.root, hex.EncodeToString(sum[:8]))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", services.Wrap(services.ErrIO, "workspace", "job dir", dir, err)
	}
	return dir, nil
}

// Clear removes all workspace contents and recreates the empty root. The
// lock is taken for the duration so a clear never overlaps an active batch.
func (w *Workspace) Clear() error {
	if err := w.Acquire(); err != nil {
		return err
	}
	defer func() { _ = w.Release() }()
	return w.clearLocked()
}

// ClearLocked clears the workspace for a caller that already holds the lock.
func (w *Workspace) ClearLocked() error {
	return w.clearLocked()
}

func (w *Workspace) clearLocked() error {
	entries, err := os.ReadDir(w.root)
	if err != nil {
		if os.IsNotExist(err) {
			return w.Ensure()
		}
		return services.Wrap(services.ErrIO, "workspace", "clear", w.root, err)
	}
	for _, entry := range entries {
		if entry.Name() == ".lock" {
			continue
		}
		if err := os.RemoveAll(filepath.Join(w.root, entry.Name())); err != nil {
			return services.Wrap(services.ErrIO, "workspace", "clear", fmt.Sprintf("remove %s", entry.Name()), err)
		}
	}
	return nil
}
