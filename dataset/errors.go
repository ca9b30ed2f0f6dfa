package dataset

import (
	"errors"
	"strings"
)

// Error kinds raised by the SDK. Match them with errors.Is; every kind also
// matches ErrDataset, and the repository kinds match ErrRepository.
var (
	ErrDataset          = errors.New("dataset error")
	ErrRepository       = errors.New("dataset repository error")
	ErrDatasetExists    = errors.New("dataset already exists")
	ErrNoSuchDataset    = errors.New("no such dataset")
	ErrUnknownFormat    = errors.New("unknown format")
	ErrMetadataProvider = errors.New("metadata provider error")
	ErrReader           = errors.New("dataset reader error")
	ErrWriter           = errors.New("dataset writer error")
)

// parents encodes the kind hierarchy; ErrDataset is the root.
var parents = map[error]error{
	ErrRepository:       ErrDataset,
	ErrDatasetExists:    ErrRepository,
	ErrNoSuchDataset:    ErrRepository,
	ErrMetadataProvider: ErrRepository,
	ErrUnknownFormat:    ErrDataset,
	ErrReader:           ErrDataset,
	ErrWriter:           ErrDataset,
}

// Error is the concrete error value carrying one of the kinds above.
type Error struct {
	// Kind is one of the Err* sentinels.
	Kind error

	// Op names the operation or builder that failed, e.g. "descriptor".
	Op string

	// Msg is a human readable detail.
	Msg string

	// Err is an optional underlying cause.
	Err error
}

func newError(kind error, op, msg string) *Error {
	return &Error{Kind: kind, Op: op, Msg: msg}
}

// Error implements the error interface.
func (e *Error) Error() string {
	var sb strings.Builder
	sb.WriteString("dataset: ")
	if e.Op != "" {
		sb.WriteString(e.Op)
		sb.WriteString(": ")
	}
	if e.Kind != nil {
		sb.WriteString(e.Kind.Error())
	}
	if e.Msg != "" {
		sb.WriteString(": ")
		sb.WriteString(e.Msg)
	}
	if e.Err != nil {
		sb.WriteString(": ")
		sb.WriteString(e.Err.Error())
	}
	return sb.String()
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error { return e.Err }

// Is reports whether target is e's kind or one of its ancestors.
func (e *Error) Is(target error) bool {
	for k := e.Kind; k != nil; k = parents[k] {
		if k == target {
			return true
		}
	}
	return false
}
