package main

import (
	"bytes"
	"errors"
	"go/ast"
	"go/parser"
	"go/token"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

//
// -----------------------------------------------------------------------------
// must()
// -----------------------------------------------------------------------------

func TestMust_PanicsOnError(t *testing.T) {
	t.Parallel()

	require.NotPanics(t, func() { must(nil) })
	require.PanicsWithError(t, "boom", func() { must(errors.New("boom")) })
}

//
// -----------------------------------------------------------------------------
// writeFileAtomic()
// -----------------------------------------------------------------------------

// Covers every writeFileAtomic error branch, including deferred cleanup.
func TestWriteFileAtomic_AllErrorBranches(t *testing.T) {
	// NOT parallel: mutates global seams.

	testCases := []struct {
		name                 string
		createTemp           func(dir, pattern string) (tempFile, error)
		chmodTmp             func(path string, mode os.FileMode) error
		renameTmp            func(oldpath, newpath string) error
		expectedErrSubstring string
		expectedRemoveCount  int
	}{
		{
			name: "create temp error",
			createTemp: func(dir, pattern string) (tempFile, error) {
				return nil, errors.New("create temp failed")
			},
			expectedErrSubstring: "create temp failed",
		},
		{
			name: "write error closes and removes temp",
			createTemp: func(dir, pattern string) (tempFile, error) {
				return &fakeTempFile{fileName: filepath.Join(dir, "tmpfile"), writeErr: errors.New("write failed")}, nil
			},
			expectedErrSubstring: "write failed",
			expectedRemoveCount:  1,
		},
		{
			name: "close error removes temp",
			createTemp: func(dir, pattern string) (tempFile, error) {
				return &fakeTempFile{fileName: filepath.Join(dir, "tmpfile"), closeErr: errors.New("close failed")}, nil
			},
			expectedErrSubstring: "close failed",
			expectedRemoveCount:  1,
		},
		{
			name: "chmod error removes temp",
			createTemp: func(dir, pattern string) (tempFile, error) {
				return &fakeTempFile{fileName: filepath.Join(dir, "tmpfile")}, nil
			},
			chmodTmp:             func(string, os.FileMode) error { return errors.New("chmod failed") },
			expectedErrSubstring: "chmod failed",
			expectedRemoveCount:  1,
		},
		{
			name: "rename error removes temp",
			createTemp: func(dir, pattern string) (tempFile, error) {
				return &fakeTempFile{fileName: filepath.Join(dir, "tmpfile")}, nil
			},
			renameTmp:            func(string, string) error { return errors.New("rename failed") },
			expectedErrSubstring: "rename failed",
			expectedRemoveCount:  1,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			restoreWriteFileSeams(t)

			var removed []string
			createTempFile = tc.createTemp
			removeFile = func(path string) error {
				removed = append(removed, path)
				return nil
			}
			chmodFile = func(path string, mode os.FileMode) error {
				if tc.chmodTmp != nil {
					return tc.chmodTmp(path, mode)
				}
				return nil
			}
			renameFile = func(oldpath, newpath string) error {
				if tc.renameTmp != nil {
					return tc.renameTmp(oldpath, newpath)
				}
				return nil
			}

			err := writeFileAtomic(filepath.Join(t.TempDir(), "out.go"), []byte("x"), 0o644)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.expectedErrSubstring)
			assert.Len(t, removed, tc.expectedRemoveCount)
		})
	}
}

func TestWriteFileAtomic_Success(t *testing.T) {
	outputPath := filepath.Join(t.TempDir(), "final.go")

	require.NoError(t, writeFileAtomic(outputPath, []byte("hello"), 0o644))
	assert.Equal(t, "hello", readFileString(t, outputPath))
}

//
// -----------------------------------------------------------------------------
// decodeSpec() / validateSpec() / applyDefaults()
// -----------------------------------------------------------------------------

func TestDecodeSpec_YAMLAndJSON(t *testing.T) {
	t.Parallel()

	fromYAML, err := decodeSpec("svc.dsl.yaml", []byte(minimalSpecYAML()))
	require.NoError(t, err)

	fromJSON, err := decodeSpec("svc.dsl.json", []byte(`{
  "package": "svc",
  "buildables": [
    {"type": "Strategy", "valueType": "*Strategy", "builderType": "*StrategyBuilder", "kind": "Strategies"}
  ],
  "containers": ["HolderBuilder"]
}`))
	require.NoError(t, err)

	assert.Equal(t, fromYAML, fromJSON)
	assert.Equal(t, "Strategies", fromYAML.Buildables[0].Kind)

	_, err = decodeSpec("bad.json", []byte("{"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode bad.json")

	_, err = decodeSpec("bad.yml", []byte("package: [unterminated"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode bad.yml")
}

func TestValidateSpec_AllBranches(t *testing.T) {
	t.Parallel()

	baseSpec := func() Spec {
		spec, err := decodeSpec("x.yaml", []byte(minimalSpecYAML()))
		require.NoError(t, err)
		return spec
	}

	require.NotPanics(t, func() {
		s := baseSpec()
		validateSpec(&s)
	})

	testCases := []struct {
		name    string
		mutate  func(*Spec)
		wantSub string
	}{
		{name: "missing package", mutate: func(s *Spec) { s.Package = " " }, wantSub: "package"},
		{name: "no buildables", mutate: func(s *Spec) { s.Buildables = nil }, wantSub: "buildables (must have at least 1)"},
		{name: "no containers", mutate: func(s *Spec) { s.Containers = nil }, wantSub: "containers (must have at least 1)"},
		{name: "incomplete buildable", mutate: func(s *Spec) { s.Buildables[0].Kind = "" }, wantSub: "type/valueType/builderType/kind"},
		{
			name: "short name collision",
			mutate: func(s *Spec) {
				dup := s.Buildables[0]
				dup.Kind = "Other"
				s.Buildables = append(s.Buildables, dup)
			},
			wantSub: `duplicate buildable short name "strategy"`,
		},
		{name: "empty container", mutate: func(s *Spec) { s.Containers = []string{""} }, wantSub: "empty container name"},
		{name: "duplicate container", mutate: func(s *Spec) { s.Containers = []string{"A", "A"} }, wantSub: "duplicate container: A"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			s := baseSpec()
			tc.mutate(&s)
			requirePanicContains(t, tc.wantSub, func() { validateSpec(&s) })
		})
	}
}

func TestApplyDefaults(t *testing.T) {
	t.Parallel()

	s := Spec{}
	applyDefaults(&s)
	assert.Equal(t, defaultDSLImport, s.DSLImport)
	assert.Equal(t, "Fail", s.FailMethod)

	s = Spec{DSLImport: "example.com/dsl", FailMethod: "Record"}
	applyDefaults(&s)
	assert.Equal(t, "example.com/dsl", s.DSLImport)
	assert.Equal(t, "Record", s.FailMethod)
}

//
// -----------------------------------------------------------------------------
// findOwnerGoGenerateFile() / resolveImports()
// -----------------------------------------------------------------------------

func TestFindOwnerGoGenerateFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub.go"), 0o755))
	writeTempFile(t, dir, "a_test.go", "package svc\n//go:generate go run ../cmd/dslgen\n")
	writeTempFile(t, dir, "b.gen.go", "package svc\n//go:generate go run ../cmd/dslgen\n")
	writeTempFile(t, dir, "c.go", "package svc\n")

	_, err := findOwnerGoGenerateFile(dir)
	require.Error(t, err)

	owner := writeTempFile(t, dir, "d.go", containerSource)
	got, err := findOwnerGoGenerateFile(dir)
	require.NoError(t, err)
	assert.Equal(t, owner, got)

	_, err = findOwnerGoGenerateFile(filepath.Join(dir, "missing"))
	require.Error(t, err)
}

func TestResolveImports(t *testing.T) {
	t.Parallel()

	spec := Spec{DSLImport: defaultDSLImport}
	dir := t.TempDir()

	imports, ident := resolveImports("", &spec)
	assert.Equal(t, []ImportSpec{{Path: defaultDSLImport}}, imports)
	assert.Equal(t, "dsl", ident)

	aliased := writeTempFile(t, dir, "aliased.go", containerSource)
	imports, ident = resolveImports(aliased, &spec)
	assert.Equal(t, []ImportSpec{{Alias: "kit", Path: defaultDSLImport}}, imports)
	assert.Equal(t, "kit", ident)

	blank := writeTempFile(t, dir, "blank.go", "package svc\n\nimport _ \""+defaultDSLImport+"\"\n")
	_, ident = resolveImports(blank, &spec)
	assert.Equal(t, "dsl", ident)

	broken := writeTempFile(t, dir, "broken.go", "not go")
	_, ident = resolveImports(broken, &spec)
	assert.Equal(t, "dsl", ident)
}

//
// -----------------------------------------------------------------------------
// describeMethod() / collectWrappers()
// -----------------------------------------------------------------------------

func TestDescribeMethod(t *testing.T) {
	t.Parallel()

	src := `package p
func (b *B) One(x *T) *B { return b }
func (b B) NoResult(x T) {}
func (b *B) Two(x, y *T) *B { return b }
func (b *B) Variadic(x ...*T) *B { return b }
func (b *B) Multi(x *T) (*B, error) { return b, nil }
func (b *B) Zero() *B { return b }
`
	file, err := parser.ParseFile(token.NewFileSet(), "p.go", src, 0)
	require.NoError(t, err)

	got := map[string]method{}
	for _, decl := range file.Decls {
		fn := decl.(*ast.FuncDecl)
		_, recv, ok := receiverName(fn.Recv.List[0].Type)
		require.True(t, ok)
		got[fn.Name.Name] = describeMethod(fn, recv)
	}

	assert.Equal(t, method{recvType: "*B", name: "One", paramType: "*T", resultType: "*B", wrappable: true}, got["One"])
	assert.Equal(t, method{recvType: "B", name: "NoResult", paramType: "T", wrappable: true}, got["NoResult"])
	assert.False(t, got["Two"].wrappable)
	assert.False(t, got["Variadic"].wrappable)
	assert.False(t, got["Multi"].wrappable)
	assert.False(t, got["Zero"].wrappable)
}

func TestCollectWrappers_MatchesOnlyContainerSetters(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeTempFile(t, dir, "svc.go", containerSource)

	spec, err := decodeSpec("svc.dsl.yaml", []byte(minimalSpecYAML()))
	require.NoError(t, err)

	wrappers, err := collectWrappers(dir, &spec)
	require.NoError(t, err)
	require.Len(t, wrappers, 1)
	assert.Equal(t, Wrapper{
		Container:  "HolderBuilder",
		RecvType:   "*HolderBuilder",
		Method:     "Strategy",
		ResultType: "*HolderBuilder",
		Buildable:  spec.Buildables[0],
	}, wrappers[0])
}

func TestCollectWrappers_SkipsHandWrittenWithAndMismatchedTypes(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeTempFile(t, dir, "svc.go", `package svc

type Strategy struct{}

type HolderBuilder struct{}

func (h *HolderBuilder) Strategy(s *Strategy) *HolderBuilder { return h }

func (h *HolderBuilder) StrategyWith() *HolderBuilder { return h }

type ValueHolder struct{}

func (h ValueHolder) Strategy(s Strategy) {}

type OtherResult struct{}

func (h *OtherResult) Strategy(s *Strategy) int { return 0 }
`)

	spec, err := decodeSpec("svc.dsl.yaml", []byte(minimalSpecYAML()))
	require.NoError(t, err)
	spec.Containers = []string{"HolderBuilder", "ValueHolder", "OtherResult"}

	wrappers, err := collectWrappers(dir, &spec)
	require.NoError(t, err)
	assert.Empty(t, wrappers)
}

func TestCollectWrappers_Errors(t *testing.T) {
	t.Parallel()

	spec, err := decodeSpec("svc.dsl.yaml", []byte(minimalSpecYAML()))
	require.NoError(t, err)

	_, err = collectWrappers(filepath.Join(t.TempDir(), "missing"), &spec)
	require.Error(t, err)

	dir := t.TempDir()
	writeTempFile(t, dir, "broken.go", "package svc\nfunc {")
	_, err = collectWrappers(dir, &spec)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse ")
}

//
// -----------------------------------------------------------------------------
// run()
// -----------------------------------------------------------------------------

func TestRun_GeneratesWrappers(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeTempFile(t, dir, "svc.go", containerSource)
	specPath := writeTempFile(t, dir, "svc.dsl.yaml", minimalSpecYAML())
	outPath := filepath.Join(dir, "svc_dsl.gen.go")

	var stderr bytes.Buffer
	require.Equal(t, 0, run([]string{"-spec", specPath, "-out", outPath}, &stderr))
	assert.Empty(t, stderr.String())

	want := `// Code generated by dslgen; DO NOT EDIT.

package svc

import (
	kit "github.com/sghaida/cdk/dsl"
)

// StrategyWith builds a *Strategy from procs and passes it to Strategy.
// Build errors are recorded with Fail and surface from Get.
func (c *HolderBuilder) StrategyWith(procs ...kit.Procedure[*StrategyBuilder]) *HolderBuilder {
	v, err := Strategies.Build(procs...)
	if err != nil {
		c.Fail(err)
		return c
	}
	return c.Strategy(v)
}
`
	assert.Equal(t, want, readFileString(t, outPath))

	_, err := parser.ParseFile(token.NewFileSet(), outPath, nil, 0)
	require.NoError(t, err)
}

func TestRun_NoMatchingSetters_IsNoOp(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeTempFile(t, dir, "svc.go", "package svc\n\ntype HolderBuilder struct{}\n\nfunc (h *HolderBuilder) Name(n string) *HolderBuilder { return h }\n")
	specPath := writeTempFile(t, dir, "svc.dsl.yaml", minimalSpecYAML())
	outPath := filepath.Join(dir, "svc_dsl.gen.go")

	require.Equal(t, 0, run([]string{"-spec", specPath, "-out", outPath}, &bytes.Buffer{}))
	assert.Equal(t, "// Code generated by dslgen; DO NOT EDIT.\n\npackage svc\n", readFileString(t, outPath))
}

func TestRun_UsageErrors(t *testing.T) {
	t.Parallel()

	var stderr bytes.Buffer
	assert.Equal(t, 2, run([]string{"-spec", "x.yaml"}, &stderr))
	assert.Contains(t, stderr.String(), "usage: dslgen")

	stderr.Reset()
	assert.Equal(t, 2, run([]string{"-nope"}, &stderr))
	assert.Contains(t, stderr.String(), "flag provided but not defined")
}

func TestRun_PanicsOnMissingSpecFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	assert.Panics(t, func() {
		run([]string{"-spec", filepath.Join(dir, "missing.yaml"), "-out", filepath.Join(dir, "x.gen.go")}, &bytes.Buffer{})
	})
}

// The checked-in dataset wrappers must match what the generator produces.
func TestDatasetWrappersUpToDate(t *testing.T) {
	t.Parallel()

	datasetDir := filepath.Join("..", "..", "dataset")
	specPath := filepath.Join(datasetDir, "builders.dsl.yaml")

	spec, err := decodeSpec(specPath, []byte(readFileString(t, specPath)))
	require.NoError(t, err)
	validateSpec(&spec)
	applyDefaults(&spec)

	owner, err := findOwnerGoGenerateFile(datasetDir)
	require.NoError(t, err)

	wrappers, err := collectWrappers(datasetDir, &spec)
	require.NoError(t, err)
	require.NotEmpty(t, wrappers)

	imports, ident := resolveImports(owner, &spec)

	var out strings.Builder
	require.NoError(t, genTemplate.Execute(&out, templateData{
		Spec:        spec,
		ImportsList: imports,
		DSLIdent:    ident,
		Wrappers:    wrappers,
	}))

	assert.Equal(t, readFileString(t, filepath.Join(datasetDir, "builders_dsl.gen.go")), out.String())
}
