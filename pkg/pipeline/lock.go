package pipeline

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/arthur-debert/autosys/pkg/errors"
	"github.com/arthur-debert/autosys/pkg/internal/hashutil"
	"github.com/arthur-debert/autosys/pkg/logging"
	"github.com/gofrs/flock"
)

// DefaultLockDir holds the per-target lock files, outside any target
func DefaultLockDir() string {
	return filepath.Join(logging.StateDir(), "locks")
}

// LockPath is the lock file guarding target
func LockPath(lockDir, target string) string {
	abs, err := filepath.Abs(target)
	if err != nil {
		abs = target
	}
	return filepath.Join(lockDir, hashutil.PathKey(abs)+".lock")
}

// acquire takes the exclusive lock for target or fails with LOCKED
func acquire(lockDir, target string) (*flock.Flock, error) {
	if err := os.MkdirAll(lockDir, 0755); err != nil {
		return nil, errors.Wrap(err, errors.ErrInternal, "create lock directory")
	}
	fl := flock.New(LockPath(lockDir, target))
	locked, err := fl.TryLock()
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrLocked, "failed to acquire lock")
	}
	if !locked {
		return nil, errors.Newf(errors.ErrLocked, "another installation is running against %s", target).
			WithDetail("lock", fl.Path()).
			WithRemediation(fmt.Sprintf("wait for it to finish, or remove %s if no autosys process is running", fl.Path()))
	}
	return fl, nil
}
