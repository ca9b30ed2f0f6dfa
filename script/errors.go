package script

import "errors"

var (
	// ErrDuplicateLabel is returned when two blocks of the same kind share a label.
	ErrDuplicateLabel = errors.New("script: duplicate label")

	// ErrUnknownBase is returned when "base" or "strategy" names no earlier object.
	ErrUnknownBase = errors.New("script: unknown reference")
)

// ArgumentError reports a script path that cannot be loaded.
type ArgumentError struct {
	// Path is the resolved path, or the raw argument if resolution failed.
	Path string

	// Reason is "no path given", "path does not exist" or "cannot read".
	Reason string

	// Err is the underlying filesystem error, if any.
	Err error
}

// Error implements the error interface.
func (e *ArgumentError) Error() string {
	// Example: script: path does not exist: /etc/cdk/missing.hcl
	if e.Path == "" {
		return "script: " + e.Reason
	}
	return "script: " + e.Reason + ": " + e.Path
}

// Unwrap returns the underlying filesystem error.
func (e *ArgumentError) Unwrap() error { return e.Err }
