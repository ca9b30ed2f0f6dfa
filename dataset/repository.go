package dataset

import (
	"maps"
	"regexp"
	"slices"
	"strconv"

	"github.com/sghaida/cdk/dsl"
)

// DefaultFileSystem is used when a repository does not name one.
const DefaultFileSystem = "file:///"

var datasetName = regexp.MustCompile(`^[A-Za-z0-9_]+$`)

// FileSystemRepository is a dataset repository rooted at a directory of a
// filesystem. Only its configuration is modelled here.
type FileSystemRepository struct {
	root       Path
	fileSystem string
	conf       map[string]string
}

// Root returns the repository root directory.
func (r *FileSystemRepository) Root() Path { return r.root }

// FileSystem returns the filesystem URI the repository lives on.
func (r *FileSystemRepository) FileSystem() string { return r.fileSystem }

// Configuration returns a copy of the filesystem client configuration.
func (r *FileSystemRepository) Configuration() map[string]string { return maps.Clone(r.conf) }

// ConfigurationKeys returns configuration keys in lexical order.
func (r *FileSystemRepository) ConfigurationKeys() []string {
	return slices.Sorted(maps.Keys(r.conf))
}

// DatasetPath returns the directory a named dataset is stored under.
// Names are restricted to letters, digits and underscores.
func (r *FileSystemRepository) DatasetPath(name string) (Path, error) {
	if !datasetName.MatchString(name) {
		return Path{}, newError(ErrRepository, "file_system_repository", "invalid dataset name "+strconv.Quote(name))
	}
	return r.root.Join(name), nil
}

// FileSystemRepositoryBuilder configures a FileSystemRepository.
type FileSystemRepositoryBuilder struct {
	dsl.Errors
	r FileSystemRepository
}

// NewFileSystemRepositoryBuilder returns a builder on DefaultFileSystem.
func NewFileSystemRepositoryBuilder() *FileSystemRepositoryBuilder {
	return &FileSystemRepositoryBuilder{r: FileSystemRepository{
		fileSystem: DefaultFileSystem,
		conf:       map[string]string{},
	}}
}

// FileSystemRepositoryBuilderFrom returns a builder seeded with base.
func FileSystemRepositoryBuilderFrom(base *FileSystemRepository) *FileSystemRepositoryBuilder {
	b := NewFileSystemRepositoryBuilder()
	if base == nil {
		return b
	}
	b.r = *base
	b.r.conf = maps.Clone(base.conf)
	if b.r.conf == nil {
		b.r.conf = map[string]string{}
	}
	return b
}

// RootDirectory sets the repository root.
func (b *FileSystemRepositoryBuilder) RootDirectory(p Path) *FileSystemRepositoryBuilder {
	b.r.root = p
	return b
}

// RootDirectoryURI parses and sets the repository root.
func (b *FileSystemRepositoryBuilder) RootDirectoryURI(uri string) *FileSystemRepositoryBuilder {
	p, err := ParsePath(uri)
	if err != nil {
		b.Fail(err)
		return b
	}
	return b.RootDirectory(p)
}

// FileSystem sets the filesystem URI.
func (b *FileSystemRepositoryBuilder) FileSystem(uri string) *FileSystemRepositoryBuilder {
	b.r.fileSystem = uri
	return b
}

// Configuration sets one filesystem client configuration entry.
func (b *FileSystemRepositoryBuilder) Configuration(key, value string) *FileSystemRepositoryBuilder {
	b.r.conf[key] = value
	return b
}

// Get returns the configured repository. A root directory is required.
func (b *FileSystemRepositoryBuilder) Get() (*FileSystemRepository, error) {
	if err := b.Err(); err != nil {
		return nil, err
	}
	if b.r.root.IsZero() {
		return nil, newError(ErrRepository, "file_system_repository", "a root directory is required")
	}
	r := b.r
	r.conf = maps.Clone(b.r.conf)
	return &r, nil
}
