package dataset

import (
	"net/url"
	"path"
	"strings"
)

// Path is a filesystem path as the SDK understands it: an optional scheme
// and authority plus a slash-separated path.
//
//	hdfs://namenode:8020/data/events
//	file:///tmp/repo
//	/data/events        (resolved against the repository filesystem)
type Path struct {
	Scheme    string
	Authority string
	Path      string
}

// ParsePath parses s into a Path. The path component is cleaned.
func ParsePath(s string) (Path, error) {
	if strings.TrimSpace(s) == "" {
		return Path{}, newError(ErrDataset, "path", "empty path")
	}
	u, err := url.Parse(s)
	if err != nil {
		return Path{}, &Error{Kind: ErrDataset, Op: "path", Msg: "invalid path " + s, Err: err}
	}
	p := Path{Scheme: u.Scheme, Authority: u.Host, Path: u.Path}
	if p.Path == "" && u.Opaque != "" {
		p.Path = u.Opaque
	}
	if p.Path != "" {
		p.Path = path.Clean(p.Path)
	}
	return p, nil
}

// MustParsePath is ParsePath that panics on error.
func MustParsePath(s string) Path {
	p, err := ParsePath(s)
	if err != nil {
		panic(err)
	}
	return p
}

// IsZero reports whether p is the zero Path.
func (p Path) IsZero() bool { return p == Path{} }

// IsAbsolute reports whether the path component is rooted.
func (p Path) IsAbsolute() bool { return strings.HasPrefix(p.Path, "/") }

// Join appends elem to the path component.
func (p Path) Join(elem ...string) Path {
	parts := append([]string{p.Path}, elem...)
	p.Path = path.Join(parts...)
	return p
}

// String renders p back into URI form.
func (p Path) String() string {
	if p.Scheme == "" && p.Authority == "" {
		return p.Path
	}
	u := url.URL{Scheme: p.Scheme, Host: p.Authority, Path: p.Path}
	return u.String()
}

// MarshalText implements encoding.TextMarshaler.
func (p Path) MarshalText() ([]byte, error) { return []byte(p.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (p *Path) UnmarshalText(b []byte) error {
	parsed, err := ParsePath(string(b))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}
