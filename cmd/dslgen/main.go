// cmd/dslgen/main.go
package main

import (
	"bytes"
	"flag"
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"go/types"
	"io"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"text/template"

	json "github.com/goccy/go-json"
	"github.com/sghaida/cdk/dsl"
	"gopkg.in/yaml.v3"
)

// dslgen reads a spec listing buildable types and container builders, scans the
// container builders' methods in the package sources, and generates a "With"
// sibling for every setter whose name and parameter type match a buildable.
//
// Key behaviors:
// - Reads the spec as YAML (.yaml/.yml) or JSON (anything else)
// - Parses the package directory of -out, skipping _test.go and .gen.go files
// - Reuses the owner file's alias for the dsl import, if it has one
// - Output replaces the target in one rename, so a failed run leaves the old file

const defaultDSLImport = "github.com/sghaida/cdk/dsl"

// Buildable describes one registered buildable type.
type Buildable struct {
	// Type is the Go type name; its snake-cased form is the short name setters are matched against.
	Type string `json:"type" yaml:"type"`

	// ValueType is the setter parameter type, e.g. "*PartitionStrategy".
	ValueType string `json:"valueType" yaml:"valueType"`

	// BuilderType is the builder type procedures receive, e.g. "*PartitionStrategyBuilder".
	BuilderType string `json:"builderType" yaml:"builderType"`

	// Kind is the identifier of the package-level *dsl.Kind for Type.
	Kind string `json:"kind" yaml:"kind"`
}

// Spec is the decoded *.dsl.yaml / *.dsl.json file.
type Spec struct {
	Package string `json:"package" yaml:"package"`

	// DSLImport overrides the import path of the dsl package.
	DSLImport string `json:"dslImport" yaml:"dslImport"`

	// FailMethod is the container method build errors are reported to. Defaults to "Fail".
	FailMethod string `json:"failMethod" yaml:"failMethod"`

	Buildables []Buildable `json:"buildables" yaml:"buildables"`
	Containers []string    `json:"containers" yaml:"containers"`
}

// ImportSpec is one import line of the owner file.
type ImportSpec struct {
	Alias string
	Path  string
}

// Wrapper is one generated convenience method.
type Wrapper struct {
	Container string

	// RecvType is the receiver as written on the original method, e.g. "*DescriptorBuilder".
	RecvType string

	// Method is the wrapped setter.
	Method string

	// ResultType is the setter's single result type, or "" if it returns nothing.
	ResultType string

	Buildable Buildable
}

// templateData feeds genTemplate.
type templateData struct {
	Spec        Spec
	ImportsList []ImportSpec
	DSLIdent    string
	Wrappers    []Wrapper
}

// run is main without os.Exit; it returns the exit code.
func run(args []string, stderr io.Writer) int {
	flags := flag.NewFlagSet("dslgen", flag.ContinueOnError)
	flags.SetOutput(stderr)

	specPath := flags.String("spec", "", "path to builders.dsl.yaml or .json")
	outPath := flags.String("out", "", "output .gen.go file path")

	if err := flags.Parse(args); err != nil {
		return 2
	}

	if strings.TrimSpace(*specPath) == "" || strings.TrimSpace(*outPath) == "" {
		_, _ = fmt.Fprintln(stderr, "usage: dslgen -spec <file.dsl.yaml> -out <file.gen.go>")
		return 2
	}

	specBytes, err := os.ReadFile(*specPath)
	must(err)

	spec, err := decodeSpec(*specPath, specBytes)
	must(err)

	validateSpec(&spec)
	applyDefaults(&spec)

	generatedFilePath := filepath.Clean(*outPath)
	packageDir := filepath.Dir(generatedFilePath)

	ownerGoFilePath, err := findOwnerGoGenerateFile(packageDir)
	if err != nil {
		// Without an owner file the dsl package is imported under its default name.
		ownerGoFilePath = ""
	}

	wrappers, err := collectWrappers(packageDir, &spec)
	must(err)

	importsList, dslIdent := resolveImports(ownerGoFilePath, &spec)

	data := templateData{
		Spec:        spec,
		ImportsList: importsList,
		DSLIdent:    dslIdent,
		Wrappers:    wrappers,
	}

	var out strings.Builder
	must(genTemplate.Execute(&out, data))

	must(writeFileAtomic(generatedFilePath, []byte(out.String()), 0o644))
	return 0
}

func main() {
	os.Exit(run(os.Args[1:], os.Stderr))
}

// decodeSpec decodes YAML for .yaml/.yml files and JSON otherwise.
func decodeSpec(specPath string, raw []byte) (Spec, error) {
	var spec Spec
	switch strings.ToLower(filepath.Ext(specPath)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(raw, &spec); err != nil {
			return Spec{}, fmt.Errorf("decode %s: %w", specPath, err)
		}
	default:
		if err := json.Unmarshal(raw, &spec); err != nil {
			return Spec{}, fmt.Errorf("decode %s: %w", specPath, err)
		}
	}
	return spec, nil
}

// validateSpec panics on a spec that cannot produce a well-formed file.
func validateSpec(spec *Spec) {
	var missingFields []string

	if strings.TrimSpace(spec.Package) == "" {
		missingFields = append(missingFields, "package")
	}
	if len(spec.Buildables) == 0 {
		missingFields = append(missingFields, "buildables (must have at least 1)")
	}
	if len(spec.Containers) == 0 {
		missingFields = append(missingFields, "containers (must have at least 1)")
	}

	if len(missingFields) > 0 {
		panic(fmt.Errorf("spec missing required fields: %v", missingFields))
	}

	seenNames := make(map[string]string, len(spec.Buildables))
	for _, b := range spec.Buildables {
		if b.Type == "" || b.ValueType == "" || b.BuilderType == "" || b.Kind == "" {
			panic(fmt.Errorf("each buildable must have type/valueType/builderType/kind; got: %+v", b))
		}
		name := dsl.SnakeCase(b.Type)
		if prev, ok := seenNames[name]; ok {
			panic(fmt.Errorf("duplicate buildable short name %q (%s, %s)", name, prev, b.Type))
		}
		seenNames[name] = b.Type
	}

	seenContainers := make(map[string]struct{}, len(spec.Containers))
	for _, c := range spec.Containers {
		if strings.TrimSpace(c) == "" {
			panic(fmt.Errorf("empty container name"))
		}
		if _, ok := seenContainers[c]; ok {
			panic(fmt.Errorf("duplicate container: %s", c))
		}
		seenContainers[c] = struct{}{}
	}
}

func applyDefaults(spec *Spec) {
	if strings.TrimSpace(spec.DSLImport) == "" {
		spec.DSLImport = defaultDSLImport
	}
	if strings.TrimSpace(spec.FailMethod) == "" {
		spec.FailMethod = "Fail"
	}
}

// findOwnerGoGenerateFile returns the .go file in packageDir whose go:generate
// directive invokes cmd/dslgen.
func findOwnerGoGenerateFile(packageDir string) (string, error) {
	dirEntries, err := os.ReadDir(packageDir)
	if err != nil {
		return "", err
	}

	for _, entry := range dirEntries {
		if entry.IsDir() || !isSourceFile(entry.Name()) {
			continue
		}

		filePath := filepath.Join(packageDir, entry.Name())
		fileBytes, err := os.ReadFile(filePath)
		if err != nil {
			// Unreadable files are skipped.
			continue
		}

		if bytes.Contains(fileBytes, []byte("go:generate")) && bytes.Contains(fileBytes, []byte("cmd/dslgen")) {
			return filePath, nil
		}
	}

	return "", fmt.Errorf("could not find owner file with go:generate invoking cmd/dslgen in %s", packageDir)
}

func isSourceFile(name string) bool {
	return strings.HasSuffix(name, ".go") &&
		!strings.HasSuffix(name, "_test.go") &&
		!strings.HasSuffix(name, ".gen.go")
}

// readImportsFromFile returns the import block of goFilePath.
func readImportsFromFile(goFilePath string) ([]ImportSpec, error) {
	fileSet := token.NewFileSet()
	parsedFile, err := parser.ParseFile(fileSet, goFilePath, nil, parser.ImportsOnly)
	if err != nil {
		return nil, err
	}

	var imports []ImportSpec
	for _, importDecl := range parsedFile.Imports {
		importPath := strings.Trim(importDecl.Path.Value, `"`)
		importAlias := ""
		if importDecl.Name != nil {
			importAlias = importDecl.Name.Name
		}
		imports = append(imports, ImportSpec{Alias: importAlias, Path: importPath})
	}

	return imports, nil
}

func importDefaultIdent(importPath string) string {
	// Import paths use forward slashes on every OS.
	return path.Base(strings.TrimSpace(importPath))
}

// resolveImports returns the imports of the generated file and the identifier
// generated code uses for the dsl package.
//
// Rules:
// - The only import is the dsl package
// - If the owner file imports it under an alias (other than _ or .), reuse that alias
// - Otherwise import it plainly and refer to it by the base of its path
func resolveImports(ownerFilePath string, spec *Spec) ([]ImportSpec, string) {
	dslImport := ImportSpec{Path: spec.DSLImport}

	if strings.TrimSpace(ownerFilePath) != "" {
		ownerImports, err := readImportsFromFile(ownerFilePath)
		if err == nil {
			for _, imp := range ownerImports {
				if imp.Path == spec.DSLImport && imp.Alias != "" && imp.Alias != "_" && imp.Alias != "." {
					dslImport.Alias = imp.Alias
				}
			}
		}
		// If parsing fails, fall back to the plain import.
	}

	ident := dslImport.Alias
	if ident == "" {
		ident = importDefaultIdent(dslImport.Path)
	}
	return []ImportSpec{dslImport}, ident
}

// method is a parsed method declaration of a container.
type method struct {
	recvType   string
	name       string
	paramType  string
	resultType string
	wrappable  bool
}

// collectWrappers parses packageDir and returns the setters to wrap, sorted by
// container and method name.
func collectWrappers(packageDir string, spec *Spec) ([]Wrapper, error) {
	containers := make(map[string]struct{}, len(spec.Containers))
	for _, c := range spec.Containers {
		containers[c] = struct{}{}
	}

	byName := make(map[string]Buildable, len(spec.Buildables))
	for _, b := range spec.Buildables {
		byName[dsl.SnakeCase(b.Type)] = b
	}

	dirEntries, err := os.ReadDir(packageDir)
	if err != nil {
		return nil, err
	}

	fileSet := token.NewFileSet()
	methods := map[string][]method{}
	declared := map[string]map[string]struct{}{}

	for _, entry := range dirEntries {
		if entry.IsDir() || !isSourceFile(entry.Name()) {
			continue
		}

		filePath := filepath.Join(packageDir, entry.Name())
		parsedFile, err := parser.ParseFile(fileSet, filePath, nil, parser.SkipObjectResolution)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", filePath, err)
		}

		for _, declaration := range parsedFile.Decls {
			funcDecl, ok := declaration.(*ast.FuncDecl)
			if !ok || funcDecl.Recv == nil || len(funcDecl.Recv.List) != 1 {
				continue
			}

			container, recvType, ok := receiverName(funcDecl.Recv.List[0].Type)
			if !ok {
				continue
			}
			if _, ok := containers[container]; !ok {
				continue
			}

			if declared[container] == nil {
				declared[container] = map[string]struct{}{}
			}
			declared[container][funcDecl.Name.Name] = struct{}{}

			methods[container] = append(methods[container], describeMethod(funcDecl, recvType))
		}
	}

	var wrappers []Wrapper
	for container, ms := range methods {
		for _, m := range ms {
			if !m.wrappable {
				continue
			}
			b, ok := byName[dsl.SnakeCase(m.name)]
			if !ok || b.ValueType != m.paramType {
				continue
			}
			if _, exists := declared[container][m.name+"With"]; exists {
				continue
			}
			if m.resultType != "" && m.resultType != m.recvType {
				continue
			}
			wrappers = append(wrappers, Wrapper{
				Container:  container,
				RecvType:   m.recvType,
				Method:     m.name,
				ResultType: m.resultType,
				Buildable:  b,
			})
		}
	}

	sort.Slice(wrappers, func(i, j int) bool {
		if wrappers[i].Container != wrappers[j].Container {
			return wrappers[i].Container < wrappers[j].Container
		}
		return wrappers[i].Method < wrappers[j].Method
	})
	return wrappers, nil
}

// receiverName returns the base type name and the receiver as written.
// Generic receivers are not supported.
func receiverName(expr ast.Expr) (name, written string, ok bool) {
	switch t := expr.(type) {
	case *ast.Ident:
		return t.Name, t.Name, true
	case *ast.StarExpr:
		if ident, isIdent := t.X.(*ast.Ident); isIdent {
			return ident.Name, "*" + ident.Name, true
		}
	}
	return "", "", false
}

func describeMethod(funcDecl *ast.FuncDecl, recvType string) method {
	m := method{recvType: recvType, name: funcDecl.Name.Name}

	params := funcDecl.Type.Params
	if params == nil || len(params.List) != 1 || len(params.List[0].Names) > 1 {
		return m
	}
	if _, variadic := params.List[0].Type.(*ast.Ellipsis); variadic {
		return m
	}
	m.paramType = types.ExprString(params.List[0].Type)

	results := funcDecl.Type.Results
	switch {
	case results == nil || len(results.List) == 0:
	case len(results.List) == 1 && len(results.List[0].Names) <= 1:
		m.resultType = types.ExprString(results.List[0].Type)
	default:
		return m
	}

	m.wrappable = true
	return m
}

// genTemplate is the Go source template used to generate the wrappers.
var genTemplate = template.Must(
	template.New("dslgen").Parse(`// Code generated by dslgen; DO NOT EDIT.

package {{.Spec.Package}}
{{- if .Wrappers}}

import (
{{- range .ImportsList}}
	{{if .Alias}}{{.Alias}} {{end}}"{{.Path}}"
{{- end}}
)
{{- end}}
{{- range .Wrappers}}

// {{.Method}}With builds a {{.Buildable.ValueType}} from procs and passes it to {{.Method}}.
// Build errors are recorded with {{$.Spec.FailMethod}} and surface from Get.
func (c {{.RecvType}}) {{.Method}}With(procs ...{{$.DSLIdent}}.Procedure[{{.Buildable.BuilderType}}]){{if .ResultType}} {{.ResultType}}{{end}} {
	v, err := {{.Buildable.Kind}}.Build(procs...)
	if err != nil {
		c.{{$.Spec.FailMethod}}(err)
		return{{if .ResultType}} c{{end}}
	}
	{{if .ResultType}}return {{end}}c.{{.Method}}(v)
}
{{- end}}
`),
)

// tempFile is the subset of *os.File writeFileAtomic uses.
type tempFile interface {
	Name() string
	Write([]byte) (int, error)
	Close() error
}

// Overridden in tests.
var (
	createTempFile = func(dir, pattern string) (tempFile, error) { return os.CreateTemp(dir, pattern) }
	chmodFile      = os.Chmod
	renameFile     = os.Rename
	removeFile     = os.Remove
)

// writeFileAtomic writes data next to targetPath and renames it into place.
func writeFileAtomic(targetPath string, data []byte, perm os.FileMode) (err error) {
	targetDir := filepath.Dir(targetPath)

	tmpFile, err := createTempFile(targetDir, filepath.Base(targetPath)+".tmp-*")
	if err != nil {
		return err
	}
	tmpPath := tmpFile.Name()

	defer func() {
		if err != nil {
			_ = removeFile(tmpPath)
		}
	}()

	if _, err = tmpFile.Write(data); err != nil {
		_ = tmpFile.Close()
		return err
	}
	if err = tmpFile.Close(); err != nil {
		return err
	}
	if err = chmodFile(tmpPath, perm); err != nil {
		return err
	}
	if err = renameFile(tmpPath, targetPath); err != nil {
		return err
	}
	return nil
}

// must panics on err.
func must(err error) {
	if err != nil {
		panic(err)
	}
}
