package script

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/sghaida/cdk/classpath"
	"github.com/sghaida/cdk/dsl"
	"github.com/sghaida/cdk/internal/ctxlog"
	"github.com/sghaida/cdk/localpath"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/function"
	"github.com/zclconf/go-cty/cty/function/stdlib"
)

// readFile is overridden in tests.
var readFile = os.ReadFile

// Object is one built value, in evaluation order.
type Object struct {
	Kind  string `yaml:"kind" json:"kind"`
	Label string `yaml:"label" json:"label"`
	Value any    `yaml:"value" json:"value"`
}

// Result holds the objects a script built.
type Result struct {
	// Path is the absolute script path, or the name passed to Eval.
	Path string

	Objects []Object

	index map[string]int
}

func objectKey(kind, label string) string { return kind + "\x00" + label }

// Get returns the object of kind labelled label.
func (r *Result) Get(kind, label string) (any, bool) {
	i, ok := r.index[objectKey(kind, label)]
	if !ok {
		return nil, false
	}
	return r.Objects[i].Value, true
}

// Lookup is Get with a type assertion.
func Lookup[T any](r *Result, kind, label string) (T, bool) {
	v, ok := r.Get(kind, label)
	if !ok {
		var zero T
		return zero, false
	}
	t, ok := v.(T)
	return t, ok
}

// Handler turns a block body into the arguments of its kind's dsl.Entry.Build:
// an optional seed followed by at least one procedure.
type Handler func(s *Session, body hcl.Body) ([]any, error)

// Option configures an Interpreter.
type Option func(*Interpreter)

// WithEnv replaces the process environment exposed as env.<NAME>.
func WithEnv(env map[string]string) Option {
	return func(in *Interpreter) { in.env = env }
}

// WithClasspath makes "resource:" URIs resolve against cp. Without it they
// are taken as is.
func WithClasspath(cp *classpath.Classpath) Option {
	return func(in *Interpreter) { in.classpath = cp }
}

// Interpreter evaluates scripts against a dsl.Registry.
type Interpreter struct {
	registry  *dsl.Registry
	handlers  map[string]Handler
	env       map[string]string
	classpath *classpath.Classpath
}

// NewInterpreter returns an interpreter without handlers.
func NewInterpreter(reg *dsl.Registry, opts ...Option) *Interpreter {
	in := &Interpreter{registry: reg, handlers: map[string]Handler{}}
	for _, opt := range opts {
		opt(in)
	}
	if in.env == nil {
		in.env = environ()
	}
	return in
}

// Handle installs h for blocks named name. name must be registered in the
// interpreter's registry.
func (in *Interpreter) Handle(name string, h Handler) error {
	if h == nil {
		return fmt.Errorf("script: nil handler for %q", name)
	}
	if _, err := in.registry.Resolve(name); err != nil {
		return fmt.Errorf("script: handler %q: %w", name, err)
	}
	in.handlers[name] = h
	return nil
}

// Names returns the block names the interpreter accepts, sorted.
func (in *Interpreter) Names() []string {
	names := make([]string, 0, len(in.handlers))
	for name := range in.handlers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Load resolves path to an absolute location and evaluates the file.
//
// It fails with *ArgumentError if path is empty, does not exist, or cannot be read.
func (in *Interpreter) Load(ctx context.Context, path string) (*Result, error) {
	abs, src, err := readScript(path)
	if err != nil {
		return nil, err
	}
	return in.Eval(ctx, abs, src)
}

func readScript(path string) (string, []byte, error) {
	if strings.TrimSpace(path) == "" {
		return "", nil, &ArgumentError{Reason: "no path given"}
	}

	abs, err := localpath.Path(path).Expand()
	if err != nil {
		return "", nil, &ArgumentError{Path: path, Reason: "cannot read", Err: err}
	}

	info, err := os.Stat(abs)
	if errors.Is(err, fs.ErrNotExist) {
		return "", nil, &ArgumentError{Path: abs, Reason: "path does not exist", Err: err}
	}
	if err != nil {
		return "", nil, &ArgumentError{Path: abs, Reason: "cannot read", Err: err}
	}
	if info.IsDir() {
		return "", nil, &ArgumentError{Path: abs, Reason: "cannot read", Err: fmt.Errorf("%s is a directory", abs)}
	}

	src, err := readFile(abs)
	if err != nil {
		return "", nil, &ArgumentError{Path: abs, Reason: "cannot read", Err: err}
	}
	return abs, src, nil
}

// Eval evaluates src. filename is used in diagnostics and to resolve
// relative paths; names ending in ".json" are parsed as HCL JSON.
func (in *Interpreter) Eval(ctx context.Context, filename string, src []byte) (*Result, error) {
	logger := ctxlog.FromContext(ctx).With("script", filename)

	parser := hclparse.NewParser()
	var (
		file  *hcl.File
		diags hcl.Diagnostics
	)
	if strings.HasSuffix(filename, ".json") {
		file, diags = parser.ParseJSON(src, filename)
	} else {
		file, diags = parser.ParseHCL(src, filename)
	}
	if diags.HasErrors() {
		return nil, fmt.Errorf("script: failed to parse %s: %w", filename, diags)
	}

	content, diags := file.Body.Content(in.schema())
	if diags.HasErrors() {
		return nil, fmt.Errorf("script: %w", diags)
	}

	result := &Result{Path: filename, index: map[string]int{}}
	sess := &Session{
		ctx:       ctx,
		dir:       filepath.Dir(filename),
		evalCtx:   in.evalContext(),
		result:    result,
		classpath: in.classpath,
	}

	for _, block := range content.Blocks {
		label := block.Labels[0]
		key := objectKey(block.Type, label)
		if _, dup := result.index[key]; dup {
			return nil, fmt.Errorf("%w: %s %q at %s", ErrDuplicateLabel, block.Type, label, block.DefRange)
		}

		entry, err := in.registry.Resolve(block.Type)
		if err != nil {
			return nil, fmt.Errorf("script: %s %q: %w", block.Type, label, err)
		}

		sess.kind, sess.label, sess.seeded = block.Type, label, false
		args, err := in.handlers[block.Type](sess, block.Body)
		if err != nil {
			return nil, fmt.Errorf("script: %s %q: %w", block.Type, label, err)
		}

		v, err := entry.Build(args...)
		if err != nil {
			return nil, fmt.Errorf("script: %s %q: %w", block.Type, label, err)
		}

		result.index[key] = len(result.Objects)
		result.Objects = append(result.Objects, Object{Kind: block.Type, Label: label, Value: v})
		logger.Debug("Block evaluated.", "kind", block.Type, "label", label, "seeded", sess.seeded)
	}

	logger.Debug("Script evaluated.", "objects", len(result.Objects))
	return result, nil
}

func (in *Interpreter) schema() *hcl.BodySchema {
	s := &hcl.BodySchema{}
	for _, name := range in.Names() {
		s.Blocks = append(s.Blocks, hcl.BlockHeaderSchema{Type: name, LabelNames: []string{"name"}})
	}
	return s
}

func (in *Interpreter) evalContext() *hcl.EvalContext {
	env := make(map[string]cty.Value, len(in.env))
	for k, v := range in.env {
		env[k] = cty.StringVal(v)
	}
	return &hcl.EvalContext{
		Variables: map[string]cty.Value{"env": cty.ObjectVal(env)},
		Functions: map[string]function.Function{
			"upper":  stdlib.UpperFunc,
			"lower":  stdlib.LowerFunc,
			"format": stdlib.FormatFunc,
			"join":   stdlib.JoinFunc,
		},
	}
}

func environ() map[string]string {
	env := map[string]string{}
	for _, kv := range os.Environ() {
		if k, v, ok := strings.Cut(kv, "="); ok && k != "" {
			env[k] = v
		}
	}
	return env
}

// Session is the state a Handler sees while evaluating one block.
type Session struct {
	ctx       context.Context
	dir       string
	evalCtx   *hcl.EvalContext
	result    *Result
	classpath *classpath.Classpath

	kind   string
	label  string
	seeded bool
}

// Context returns the context Eval was called with.
func (s *Session) Context() context.Context { return s.ctx }

// Kind returns the block name being evaluated.
func (s *Session) Kind() string { return s.kind }

// Label returns the label of the block being evaluated.
func (s *Session) Label() string { return s.label }

// Classpath returns the classpath set with WithClasspath, or nil.
func (s *Session) Classpath() *classpath.Classpath { return s.classpath }

// Decode decodes body into val with gohcl, using the script's variables and functions.
func (s *Session) Decode(body hcl.Body, val any) error {
	if diags := gohcl.DecodeBody(body, s.evalCtx, val); diags.HasErrors() {
		return diags
	}
	return nil
}

// Lookup returns an earlier object.
func (s *Session) Lookup(kind, label string) (any, error) {
	v, ok := s.result.Get(kind, label)
	if !ok {
		return nil, fmt.Errorf("%w: no %s %s defined before %s %s", ErrUnknownBase, kind, strconv.Quote(label), s.kind, strconv.Quote(s.label))
	}
	return v, nil
}

// Args prepends the object named by base, if any, to procs.
func (s *Session) Args(base *string, procs ...any) ([]any, error) {
	if base == nil {
		return procs, nil
	}
	seed, err := s.Lookup(s.kind, *base)
	if err != nil {
		return nil, err
	}
	s.seeded = true
	return append([]any{seed}, procs...), nil
}

// Resolve returns p as an absolute local path, relative paths being taken
// from the script's directory.
func (s *Session) Resolve(p string) localpath.Path {
	if filepath.IsAbs(p) || p == "~" || strings.HasPrefix(p, "~/") {
		return localpath.Path(p)
	}
	return localpath.Path(filepath.Join(s.dir, p))
}
