package main

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

//
// -----------------------------------------------------------------------------
// Shared fixtures
// -----------------------------------------------------------------------------

// minimalSpecYAML returns a spec that passes validateSpec and matches the
// setters declared by containerSource.
func minimalSpecYAML() string {
	return `package: svc
buildables:
  - type: Strategy
    valueType: "*Strategy"
    builderType: "*StrategyBuilder"
    kind: Strategies
containers:
  - HolderBuilder
`
}

// containerSource declares a container with one matching setter and a few
// near misses that must not be wrapped.
const containerSource = `package svc

//go:generate go run ../cmd/dslgen -spec svc.dsl.yaml -out svc_dsl.gen.go

import kit "github.com/sghaida/cdk/dsl"

type Strategy struct{}

type StrategyBuilder struct{}

type HolderBuilder struct{ kit.Errors }

func (h *HolderBuilder) Strategy(s *Strategy) *HolderBuilder { return h }

func (h *HolderBuilder) Name(n string) *HolderBuilder { return h }

func (h *HolderBuilder) Strategies(s ...*Strategy) *HolderBuilder { return h }

func (h *HolderBuilder) Other(s Strategy) *HolderBuilder { return h }

type Unrelated struct{}

func (u *Unrelated) Strategy(s *Strategy) *Unrelated { return u }
`

//
// -----------------------------------------------------------------------------
// Small helpers
// -----------------------------------------------------------------------------

// writeTempFile writes a file under dir/name and returns its full path.
func writeTempFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	return p
}

// readFileString reads a file and returns its contents as string (fatal on error).
func readFileString(t *testing.T, p string) string {
	t.Helper()
	b, err := os.ReadFile(p)
	require.NoError(t, err)
	return string(b)
}

// requirePanicContains asserts fn panics and the panic message contains wantSub.
func requirePanicContains(t *testing.T, wantSub string, fn func()) {
	t.Helper()

	defer func() {
		recovered := recover()
		require.NotNil(t, recovered)

		var message string
		switch v := recovered.(type) {
		case error:
			message = v.Error()
		case string:
			message = v
		default:
			message = fmt.Sprintf("%v", v)
		}
		require.Contains(t, message, wantSub)
	}()

	fn()
}

//
// -----------------------------------------------------------------------------
// writeFileAtomic() seam helpers
// -----------------------------------------------------------------------------

// fakeTempFile is a controllable file-like object for writeFileAtomic tests.
type fakeTempFile struct {
	fileName string
	writeErr error
	closeErr error
}

func (f *fakeTempFile) Name() string { return f.fileName }

func (f *fakeTempFile) Write(p []byte) (int, error) {
	if f.writeErr != nil {
		return 0, f.writeErr
	}
	return len(p), nil
}

func (f *fakeTempFile) Close() error { return f.closeErr }

// restoreWriteFileSeams puts the real file operations back after a test.
func restoreWriteFileSeams(t *testing.T) {
	t.Helper()
	origCreate, origRemove, origChmod, origRename := createTempFile, removeFile, chmodFile, renameFile
	t.Cleanup(func() {
		createTempFile = origCreate
		removeFile = origRemove
		chmodFile = origChmod
		renameFile = origRename
	})
}
