package runner

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gofrs/flock"

	"chronoreel/internal/services"
)

// LockPath returns the advisory lock file guarding outputDir. It sits next to
// the directory because the directory itself is deleted on reset.
func LockPath(outputDir string) string {
	return filepath.Clean(outputDir) + ".lock"
}

// OutputLock is an exclusive hold on an output directory.
type OutputLock struct {
	path string
	lock *flock.Flock
}

// AcquireOutputLock takes the lock for outputDir without blocking. A second
// holder gets an error marked services.ErrLocked.
func AcquireOutputLock(outputDir string) (*OutputLock, error) {
	if strings.TrimSpace(outputDir) == "" {
		return nil, services.Wrap(services.ErrConfiguration, "runner", "lock output", "output_dir is empty", nil)
	}
	path := LockPath(outputDir)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create lock directory: %w", err)
	}
	lock := flock.New(path)
	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return nil, services.Wrap(services.ErrLocked, "runner", "lock output",
			fmt.Sprintf("another chronoreel run holds %s", path), nil)
	}
	return &OutputLock{path: path, lock: lock}, nil
}

// Path returns the lock file path.
func (l *OutputLock) Path() string {
	return l.path
}

// Release unlocks. It is safe to call on a nil lock.
func (l *OutputLock) Release() error {
	if l == nil || l.lock == nil {
		return nil
	}
	return l.lock.Unlock()
}
