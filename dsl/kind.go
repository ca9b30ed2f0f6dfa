package dsl

import (
	"errors"
	"reflect"
	"strconv"
)

var (
	// ErrNoProcedure is returned when a build is requested without any
	// configuration procedure. At minimum a final procedure is required.
	ErrNoProcedure = errors.New("dsl: at least one configuration procedure is required")

	// ErrNilProcedure is returned when one of the supplied procedures is nil.
	ErrNilProcedure = errors.New("dsl: nil configuration procedure")
)

// MissingBuilderError is returned when a buildable type has no discoverable
// builder constructor.
type MissingBuilderError struct{ Type string }

// Error implements the error interface.
func (e MissingBuilderError) Error() string {
	// Example: dsl: cannot find builder for dataset.Descriptor
	return "dsl: cannot find builder for " + e.Type
}

// ArgumentError reports an argument of the wrong shape passed to a dynamic build.
type ArgumentError struct {
	// Index is the position of the offending argument.
	Index int

	// Want describes what was expected at Index.
	Want string

	// Got is reflect.TypeOf(arg).String() for the supplied value.
	Got string
}

// Error implements the error interface.
func (e ArgumentError) Error() string {
	return "dsl: argument " + strconv.Itoa(e.Index) + ": want " + e.Want + ", got " + e.Got
}

// Builder is implemented by every builder type B that produces a T.
//
// Get finishes the build and returns the configured instance, or the
// configuration errors the builder recorded (joined, see Errors).
type Builder[T any] interface {
	Get() (T, error)
}

// Procedure configures an in-progress builder.
type Procedure[B any] func(B)

// Kind binds a buildable type T to its builder type B.
//
// A Kind is created once per type by Register or MustRegister and is safe to
// use from multiple goroutines: each build gets a fresh builder.
type Kind[T any, B Builder[T]] struct {
	name       string
	typ        reflect.Type
	newBuilder func() B
	fromBase   func(T) B
}

// Name returns the derived short name the kind is registered under.
func (k *Kind[T, B]) Name() string { return k.name }

// Type returns the reflect.Type of T.
func (k *Kind[T, B]) Type() reflect.Type { return k.typ }

// Build creates a builder with its default constructor, applies procs in
// order and returns the built instance.
//
// Build fails with ErrNoProcedure if procs is empty.
func (k *Kind[T, B]) Build(procs ...Procedure[B]) (T, error) {
	var zero T
	if k == nil || k.newBuilder == nil {
		return zero, MissingBuilderError{Type: typeName(reflect.TypeFor[T]())}
	}
	if err := checkProcedures(procs); err != nil {
		return zero, err
	}
	return apply(k.newBuilder(), procs)
}

// BuildFrom is Build with the builder seeded from base.
func (k *Kind[T, B]) BuildFrom(base T, procs ...Procedure[B]) (T, error) {
	var zero T
	if k == nil || k.fromBase == nil {
		return zero, MissingBuilderError{Type: typeName(reflect.TypeFor[T]())}
	}
	if err := checkProcedures(procs); err != nil {
		return zero, err
	}
	return apply(k.fromBase(base), procs)
}

// MustBuild is Build that panics on error.
func (k *Kind[T, B]) MustBuild(procs ...Procedure[B]) T {
	v, err := k.Build(procs...)
	if err != nil {
		panic(err)
	}
	return v
}

// buildAny implements the dynamic form used by Entry.Build:
//
//	build(baseInstance?, ...procedures, final)
//
// If args[0] is not a procedure it is taken as the seed.
func (k *Kind[T, B]) buildAny(args ...any) (any, error) {
	if len(args) == 0 {
		return nil, ErrNoProcedure
	}

	var (
		seed    T
		hasSeed bool
	)
	if _, ok := asProcedure[B](args[0]); !ok {
		s, ok := args[0].(T)
		if !ok {
			return nil, ArgumentError{Index: 0, Want: "seed " + typeName(k.typ) + " or procedure", Got: dynTypeName(args[0])}
		}
		seed, hasSeed = s, true
		args = args[1:]
	}

	procs := make([]Procedure[B], 0, len(args))
	for i, a := range args {
		p, ok := asProcedure[B](a)
		if !ok {
			idx := i
			if hasSeed {
				idx++
			}
			return nil, ArgumentError{Index: idx, Want: "procedure", Got: dynTypeName(a)}
		}
		procs = append(procs, p)
	}

	var (
		v   T
		err error
	)
	if hasSeed {
		v, err = k.BuildFrom(seed, procs...)
	} else {
		v, err = k.Build(procs...)
	}
	if err != nil {
		return nil, err
	}
	return v, nil
}

func asProcedure[B any](v any) (Procedure[B], bool) {
	switch p := v.(type) {
	case Procedure[B]:
		return p, true
	case func(B):
		return p, true
	default:
		return nil, false
	}
}

func checkProcedures[B any](procs []Procedure[B]) error {
	if len(procs) == 0 {
		return ErrNoProcedure
	}
	for _, p := range procs {
		if p == nil {
			return ErrNilProcedure
		}
	}
	return nil
}

func apply[T any, B Builder[T]](b B, procs []Procedure[B]) (T, error) {
	for _, p := range procs {
		p(b)
	}
	return b.Get()
}

func dynTypeName(v any) string {
	if v == nil {
		return "nil"
	}
	return reflect.TypeOf(v).String()
}
