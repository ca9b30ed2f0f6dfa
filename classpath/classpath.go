// Package classpath assembles the archives found in a vendor directory into
// one searchable set of entries.
//
// Archives are merged in lexical file-name order. When two archives contain
// the same entry, the archive merged first wins; the shadowed copy is
// recorded as a Conflict.
package classpath

import (
	"archive/zip"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/sghaida/cdk/internal/ctxlog"
)

// DefaultExtension selects archive files when no WithExtension option is given.
const DefaultExtension = ".jar"

// ErrEntryNotFound is returned by Open for entries no archive provides.
var ErrEntryNotFound = errors.New("classpath: entry not found")

// Conflict records an entry provided by more than one archive.
type Conflict struct {
	Entry    string
	Winner   string
	Shadowed string
}

// Option configures Assemble.
type Option func(*options)

type options struct {
	ext string
}

// WithExtension selects archives by extension, e.g. ".zip".
func WithExtension(ext string) Option {
	return func(o *options) { o.ext = ext }
}

// Classpath is an immutable, assembled set of archives.
type Classpath struct {
	dir       string
	archives  []string
	index     map[string]string
	conflicts []Conflict
}

// Assemble merges every archive directly inside dir. Subdirectories are not
// searched. An empty directory yields an empty Classpath.
func Assemble(ctx context.Context, dir string, opts ...Option) (*Classpath, error) {
	o := options{ext: DefaultExtension}
	for _, opt := range opts {
		opt(&o)
	}
	logger := ctxlog.FromContext(ctx).With("dir", dir)

	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("classpath: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("classpath: %s is not a directory", dir)
	}

	names, err := fs.Glob(os.DirFS(dir), "*"+o.ext)
	if err != nil {
		return nil, fmt.Errorf("classpath: bad archive extension %q: %w", o.ext, err)
	}
	sort.Strings(names)

	cp := &Classpath{dir: dir, index: map[string]string{}}
	for _, name := range names {
		archivePath := filepath.Join(dir, name)
		if fi, err := os.Stat(archivePath); err != nil || fi.IsDir() {
			continue
		}
		if err := cp.add(archivePath); err != nil {
			return nil, err
		}
		logger.Debug("Archive added.", "archive", archivePath)
	}

	for _, c := range cp.conflicts {
		logger.Debug("Entry shadowed.", "entry", c.Entry, "winner", c.Winner, "shadowed", c.Shadowed)
	}
	logger.Debug("Classpath assembled.", "archives", len(cp.archives), "entries", len(cp.index), "conflicts", len(cp.conflicts))
	return cp, nil
}

func (c *Classpath) add(archivePath string) error {
	r, err := zip.OpenReader(archivePath)
	if err != nil {
		return fmt.Errorf("classpath: open %s: %w", archivePath, err)
	}
	defer r.Close()

	for _, f := range r.File {
		if f.FileInfo().IsDir() || strings.HasSuffix(f.Name, "/") {
			continue
		}
		if winner, ok := c.index[f.Name]; ok {
			c.conflicts = append(c.conflicts, Conflict{Entry: f.Name, Winner: winner, Shadowed: archivePath})
			continue
		}
		c.index[f.Name] = archivePath
	}
	c.archives = append(c.archives, archivePath)
	return nil
}

// Dir returns the directory the classpath was assembled from.
func (c *Classpath) Dir() string { return c.dir }

// Archives returns archive paths in merge order.
func (c *Classpath) Archives() []string {
	return append([]string(nil), c.archives...)
}

// Conflicts returns shadowed entries in discovery order.
func (c *Classpath) Conflicts() []Conflict {
	return append([]Conflict(nil), c.conflicts...)
}

// Len returns the number of distinct entries.
func (c *Classpath) Len() int { return len(c.index) }

// Entries returns the distinct entry names in lexical order.
func (c *Classpath) Entries() []string {
	names := make([]string, 0, len(c.index))
	for name := range c.index {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Lookup returns the archive that provides entry.
func (c *Classpath) Lookup(entry string) (string, bool) {
	archive, ok := c.index[entry]
	return archive, ok
}

// Open opens entry from the archive that provides it.
// The caller must close the returned reader.
func (c *Classpath) Open(entry string) (io.ReadCloser, error) {
	archivePath, ok := c.index[entry]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrEntryNotFound, entry)
	}

	r, err := zip.OpenReader(archivePath)
	if err != nil {
		return nil, fmt.Errorf("classpath: open %s: %w", archivePath, err)
	}
	rc, err := r.Open(entry)
	if err != nil {
		_ = r.Close()
		return nil, fmt.Errorf("classpath: open %s in %s: %w", entry, archivePath, err)
	}
	return &entryReader{ReadCloser: rc, archive: r}, nil
}

// entryReader closes the owning archive along with the entry.
type entryReader struct {
	io.ReadCloser
	archive *zip.ReadCloser
}

func (e *entryReader) Close() error {
	return errors.Join(e.ReadCloser.Close(), e.archive.Close())
}
