package library

import (
	"os"
	"path/filepath"

	"github.com/matzehuels/libmirror/pkg/errors"
)

// DefaultDescriptorName is the file name of the sidecar descriptor.
const DefaultDescriptorName = "library.xml"

// Layout maps coordinates to paths under a destination root:
//
//	<Root>/<LibraryDir>/<group>-<artifact>/<version>/
//	    <group>-<artifact>-<version>.<packaging>
//	    library.xml
type Layout struct {
	Root           string // Destination root
	LibraryDir     string // Label directory (e.g., "Google")
	DescriptorName string // Defaults to DefaultDescriptorName
}

// Dir returns the version directory of a library.
func (l Layout) Dir(group, artifact, version string) string {
	return filepath.Join(l.Root, l.LibraryDir, group+"-"+artifact, version)
}

// ArtifactPath returns the path of the artifact file with extension ext.
func (l Layout) ArtifactPath(group, artifact, version, ext string) string {
	return filepath.Join(l.Dir(group, artifact, version), ArtifactName(group, artifact, version, ext))
}

// DescriptorPath returns the path of the descriptor file.
func (l Layout) DescriptorPath(group, artifact, version string) string {
	name := l.DescriptorName
	if name == "" {
		name = DefaultDescriptorName
	}
	return filepath.Join(l.Dir(group, artifact, version), name)
}

// EnsureDir creates the version directory and its parents. Creating a
// directory that already exists is not an error.
func (l Layout) EnsureDir(group, artifact, version string) (string, error) {
	dir := l.Dir(group, artifact, version)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", errors.Wrap(errors.ErrCodeFilesystem, err, "create library directory")
	}
	return dir, nil
}

// ArtifactName returns "<group>-<artifact>-<version>.<ext>".
func ArtifactName(group, artifact, version, ext string) string {
	return group + "-" + artifact + "-" + version + "." + ext
}

// Exists reports whether path exists. Errors other than "not exist" are
// returned so callers never overwrite a file they could not inspect.
func Exists(path string) (bool, error) {
	_, err := os.Stat(path)
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, errors.Wrap(errors.ErrCodeFilesystem, err, "stat %s", path)
}
