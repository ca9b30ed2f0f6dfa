package classpath

import (
	"archive/zip"
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/sghaida/cdk/internal/ctxlog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeArchive writes a zip archive with the given entries under dir/name.
func writeArchive(t *testing.T, dir, name string, entries map[string]string) string {
	t.Helper()

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for entry, content := range entries {
		w, err := zw.Create(entry)
		require.NoError(t, err)
		_, err = io.WriteString(w, content)
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())

	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, buf.Bytes(), 0o644))
	return p
}

func TestAssemble_LexicalOrderFirstWins(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	b := writeArchive(t, dir, "b-core.jar", map[string]string{"com/x/A.class": "from b", "com/x/B.class": "b"})
	a := writeArchive(t, dir, "a-api.jar", map[string]string{"com/x/A.class": "from a", "META-INF/": ""})
	writeArchive(t, dir, "ignored.zip", map[string]string{"com/x/C.class": "c"})
	require.NoError(t, os.Mkdir(filepath.Join(dir, "nested.jar"), 0o755))

	var logs bytes.Buffer
	ctx := ctxlog.WithLogger(context.Background(), ctxlog.New("debug", "text", &logs))

	cp, err := Assemble(ctx, dir)
	require.NoError(t, err)

	assert.Equal(t, []string{a, b}, cp.Archives())
	assert.Equal(t, []string{"com/x/A.class", "com/x/B.class"}, cp.Entries())
	assert.Equal(t, 2, cp.Len())
	assert.Equal(t, dir, cp.Dir())

	winner, ok := cp.Lookup("com/x/A.class")
	require.True(t, ok)
	assert.Equal(t, a, winner)

	_, ok = cp.Lookup("com/x/C.class")
	assert.False(t, ok)

	assert.Equal(t, []Conflict{{Entry: "com/x/A.class", Winner: a, Shadowed: b}}, cp.Conflicts())
	assert.Contains(t, logs.String(), "Entry shadowed.")

	rc, err := cp.Open("com/x/A.class")
	require.NoError(t, err)
	content, err := io.ReadAll(rc)
	require.NoError(t, err)
	require.NoError(t, rc.Close())
	assert.Equal(t, "from a", string(content))
}

func TestAssemble_WithExtension(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	z := writeArchive(t, dir, "lib.zip", map[string]string{"x.txt": "x"})
	writeArchive(t, dir, "lib.jar", map[string]string{"y.txt": "y"})

	cp, err := Assemble(context.Background(), dir, WithExtension(".zip"))
	require.NoError(t, err)
	assert.Equal(t, []string{z}, cp.Archives())
	assert.Equal(t, []string{"x.txt"}, cp.Entries())
}

func TestAssemble_EmptyDirectory(t *testing.T) {
	t.Parallel()

	cp, err := Assemble(context.Background(), t.TempDir())
	require.NoError(t, err)
	assert.Empty(t, cp.Archives())
	assert.Zero(t, cp.Len())
	assert.Empty(t, cp.Conflicts())
}

func TestAssemble_Errors(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	_, err := Assemble(context.Background(), filepath.Join(dir, "missing"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)

	file := filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(file, nil, 0o644))
	_, err = Assemble(context.Background(), file)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "is not a directory")

	_, err = Assemble(context.Background(), dir, WithExtension("["))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad archive extension")

	require.NoError(t, os.WriteFile(filepath.Join(dir, "corrupt.jar"), []byte("not a zip"), 0o644))
	_, err = Assemble(context.Background(), dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "corrupt.jar")
}

func TestOpen_Missing(t *testing.T) {
	t.Parallel()

	cp, err := Assemble(context.Background(), t.TempDir())
	require.NoError(t, err)

	_, err = cp.Open("nope")
	assert.ErrorIs(t, err, ErrEntryNotFound)
}
