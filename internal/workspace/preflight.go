package workspace

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"

	"segmatic/internal/services"
)

// minFreeBytes is the free-space floor below which a batch refuses to start;
// resampled working copies for large corpora need headroom.
const minFreeBytes = 256 << 20

// Preflight verifies the workspace root exists, is read/write accessible,
// and has enough free space for a batch run.
func (w *Workspace) Preflight() error {
	info, err := os.Stat(w.root)
	if err != nil {
		return services.Wrap(services.ErrIO, "workspace", "preflight", w.root, err)
	}
	if !info.IsDir() {
		return services.Wrap(services.ErrValidation, "workspace", "preflight", fmt.Sprintf("%s is not a directory", w.root), nil)
	}
	if err := unix.Access(w.root, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return services.Wrap(services.ErrIO, "workspace", "preflight", fmt.Sprintf("insufficient permissions on %s", w.root), err)
	}
	free, err := FreeBytes(w.root)
	if err != nil {
		return err
	}
	if free < minFreeBytes {
		return services.Wrap(services.ErrIO, "workspace", "preflight", fmt.Sprintf("only %d bytes free at %s", free, w.root), nil)
	}
	return nil
}

// FreeBytes reports the free space available to unprivileged users at path.
func FreeBytes(path string) (uint64, error) {
	var stat unix.Statfs_t
	if err := unix.Statfs(path, &stat); err != nil {
		return 0, services.Wrap(services.ErrIO, "workspace", "statfs", path, err)
	}
	return stat.Bavail * uint64(stat.Bsize), nil
}
