package dsl

import "errors"

// Property pairs a container's setter with the Kind that builds its argument.
//
// It is the runtime counterpart of the methods generated by cmd/dslgen: the
// same setter can be fed a prebuilt instance (Set) or configuration
// procedures (Build).
//
//	strategy := dsl.Property[*DescriptorBuilder, *PartitionStrategy, *PartitionStrategyBuilder]{
//		Kind: PartitionStrategies,
//		Set:  (*DescriptorBuilder).PartitionStrategy,
//	}
//	strategy.Build(b, func(p *PartitionStrategyBuilder) { p.Identity("id", "id_part") })
type Property[C any, T any, B Builder[T]] struct {
	Kind *Kind[T, B]
	Set  func(C, T) C
}

// With calls the setter unchanged.
func (p Property[C, T, B]) With(c C, v T) C {
	return p.Set(c, v)
}

// Build builds a T from procs and forwards it to the setter. On a build
// error the setter is not called and c is returned as is.
func (p Property[C, T, B]) Build(c C, procs ...Procedure[B]) (C, error) {
	v, err := p.Kind.Build(procs...)
	if err != nil {
		return c, err
	}
	return p.Set(c, v), nil
}

// Errors accumulates configuration errors inside a builder so that chained
// setters can stay single-valued. Get implementations return Err().
//
// The zero value is ready to use.
type Errors struct {
	errs []error
}

// Fail records err. Nil errors are ignored.
func (e *Errors) Fail(err error) {
	if err != nil {
		e.errs = append(e.errs, err)
	}
}

// Err returns the recorded errors joined, or nil.
func (e *Errors) Err() error {
	return errors.Join(e.errs...)
}
