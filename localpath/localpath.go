// Package localpath adds conversions from a local filesystem path to the
// handles the dataset SDK works with.
package localpath

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/sghaida/cdk/dataset"
)

// Path is a path on the local filesystem, possibly relative or starting with "~".
type Path string

// userHomeDir is overridden in tests.
var userHomeDir = os.UserHomeDir

// Expand returns the absolute, cleaned form of p with a leading "~" replaced
// by the user's home directory.
func (p Path) Expand() (string, error) {
	s := string(p)
	if s == "~" || strings.HasPrefix(s, "~/") {
		home, err := userHomeDir()
		if err != nil {
			return "", err
		}
		s = filepath.Join(home, strings.TrimPrefix(s, "~"))
	}
	return filepath.Abs(s)
}

// ToFile returns a generic file handle for the expanded path. The file is
// not opened.
func (p Path) ToFile() (File, error) {
	abs, err := p.Expand()
	if err != nil {
		return File{}, err
	}
	return File{name: abs}, nil
}

// ToFSPath returns the expanded path as a dataset.Path on the local filesystem.
func (p Path) ToFSPath() (dataset.Path, error) {
	abs, err := p.Expand()
	if err != nil {
		return dataset.Path{}, err
	}
	return dataset.Path{Scheme: "file", Path: filepath.ToSlash(abs)}, nil
}

// File is an unopened handle on an absolute local path.
type File struct {
	name string
}

// Name returns the absolute path.
func (f File) Name() string { return f.name }

// Stat returns the file's info.
func (f File) Stat() (fs.FileInfo, error) { return os.Stat(f.name) }

// Exists reports whether the file exists.
func (f File) Exists() bool {
	_, err := os.Stat(f.name)
	return err == nil
}

// Open opens the file for reading.
func (f File) Open() (*os.File, error) { return os.Open(f.name) }
