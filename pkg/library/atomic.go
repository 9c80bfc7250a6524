package library

import (
	"io"
	"os"
	"path/filepath"

	"github.com/matzehuels/libmirror/pkg/errors"
)

// WriteFileAtomic writes path through a temporary file in the same
// directory and renames it into place once fn returns successfully. When fn
// or any file operation fails the temporary file is removed and path is left
// untouched.
func WriteFileAtomic(path string, fn func(w io.Writer) error) (err error) {
	dir, base := filepath.Split(path)
	if dir == "" {
		dir = "."
	}
	tmp, err := os.CreateTemp(dir, "."+base+".*.part")
	if err != nil {
		return errors.Wrap(errors.ErrCodeFilesystem, err, "create temp file")
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	if err = fn(tmp); err != nil {
		return err
	}
	if err = tmp.Sync(); err != nil {
		return errors.Wrap(errors.ErrCodeFilesystem, err, "sync %s", base)
	}
	if err = tmp.Close(); err != nil {
		return errors.Wrap(errors.ErrCodeFilesystem, err, "close %s", base)
	}
	if err = os.Chmod(tmp.Name(), 0o644); err != nil {
		return errors.Wrap(errors.ErrCodeFilesystem, err, "chmod %s", base)
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return errors.Wrap(errors.ErrCodeFilesystem, err, "rename %s", base)
	}
	return nil
}
