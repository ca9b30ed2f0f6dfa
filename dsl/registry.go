package dsl

import (
	"reflect"
	"sort"
	"strconv"
	"sync"
)

// DuplicateNameError is returned when two distinct types derive the same
// short name. The first registration is kept.
type DuplicateNameError struct {
	Name string

	// Existing is the type already registered under Name.
	Existing string

	// Type is the type whose registration was rejected.
	Type string
}

// Error implements the error interface.
func (e DuplicateNameError) Error() string {
	// Example: dsl: name "descriptor" already registered by a.Descriptor (rejected b.Descriptor)
	return "dsl: name " + strconv.Quote(e.Name) + " already registered by " + e.Existing +
		" (rejected " + e.Type + ")"
}

// UnknownNameError is returned by Resolve when no buildable type is
// registered under a name.
type UnknownNameError struct{ Name string }

// Error implements the error interface.
func (e UnknownNameError) Error() string {
	return "dsl: no buildable registered as " + strconv.Quote(e.Name)
}

// Entry is the type-erased view of a registered Kind.
type Entry struct {
	// Name is the derived short name.
	Name string

	// Type is the buildable type.
	Type reflect.Type

	build func(args ...any) (any, error)
}

// Build runs the dynamic build form:
//
//	Build(seed?, procs...)
//
// args[0] is treated as the seed unless it is a procedure for the entry's
// builder type. Every remaining argument must be a procedure and at least one
// procedure is required.
func (e Entry) Build(args ...any) (any, error) {
	if e.build == nil {
		return nil, MissingBuilderError{Type: typeName(e.Type)}
	}
	return e.build(args...)
}

// Registry maps derived short names to buildable types.
//
// Registration normally happens once per type during package initialisation;
// lookups afterwards are read-only.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]Entry
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{entries: map[string]Entry{}}
}

// Default is the process-wide registry buildable types register into.
var Default = NewRegistry()

// Register makes T buildable through reg.
//
// newBuilder is the default (unseeded) builder constructor and is required.
// fromBase seeds a builder from an existing instance; when nil, BuildFrom on
// the returned Kind fails with MissingBuilderError.
func Register[T any, B Builder[T]](reg *Registry, newBuilder func() B, fromBase func(T) B) (*Kind[T, B], error) {
	typ := reflect.TypeFor[T]()
	if newBuilder == nil {
		return nil, MissingBuilderError{Type: typeName(typ)}
	}

	k := &Kind[T, B]{
		name:       ShortName(typ),
		typ:        typ,
		newBuilder: newBuilder,
		fromBase:   fromBase,
	}
	if err := reg.add(Entry{Name: k.name, Type: typ, build: k.buildAny}); err != nil {
		return nil, err
	}
	return k, nil
}

// MustRegister is Register that panics on error. It is meant for
// package-level variable initialisation.
func MustRegister[T any, B Builder[T]](reg *Registry, newBuilder func() B, fromBase func(T) B) *Kind[T, B] {
	k, err := Register(reg, newBuilder, fromBase)
	if err != nil {
		panic(err)
	}
	return k
}

func (r *Registry) add(e Entry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.entries == nil {
		r.entries = map[string]Entry{}
	}
	if existing, ok := r.entries[e.Name]; ok {
		return DuplicateNameError{
			Name:     e.Name,
			Existing: typeName(existing.Type),
			Type:     typeName(e.Type),
		}
	}
	r.entries[e.Name] = e
	return nil
}

// Lookup returns the entry registered under name.
func (r *Registry) Lookup(name string) (Entry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.entries[name]
	return e, ok
}

// Resolve is Lookup with a typed error for missing names.
func (r *Registry) Resolve(name string) (Entry, error) {
	e, ok := r.Lookup(name)
	if !ok {
		return Entry{}, UnknownNameError{Name: name}
	}
	return e, nil
}

// MustLookup returns the entry or panics.
// Useful in tests where a missing registration should fail fast.
func (r *Registry) MustLookup(name string) Entry {
	e, err := r.Resolve(name)
	if err != nil {
		panic(err)
	}
	return e
}

// Has reports whether name is registered.
func (r *Registry) Has(name string) bool {
	_, ok := r.Lookup(name)
	return ok
}

// Names returns the registered names in lexical order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.entries))
	for name := range r.entries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of registered types.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}
