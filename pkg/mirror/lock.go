package mirror

import (
	"os"
	"path/filepath"

	"github.com/gofrs/flock"

	"github.com/matzehuels/libmirror/pkg/errors"
)

// acquireLock takes the exclusive run lock at path without blocking.
func acquireLock(path string) (*flock.Flock, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, errors.Wrap(errors.ErrCodeFilesystem, err, "create state directory")
	}

	lock := flock.New(path)
	ok, err := lock.TryLock()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeFilesystem, err, "acquire lock")
	}
	if !ok {
		return nil, errors.New(errors.ErrCodeLocked, "another mirror run holds %s", path)
	}
	return lock, nil
}
