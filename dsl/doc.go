// Package dsl lets builder-constructed types be configured with an ordered
// list of configuration procedures instead of explicit builder chaining.
//
// A buildable type T opts in once, at package initialisation, by registering
// its builder constructors:
//
//	var Descriptors = dsl.MustRegister(dsl.Default, NewDescriptorBuilder, DescriptorBuilderFrom)
//
// Callers then build instances declaratively:
//
//	d, err := Descriptors.Build(func(b *DescriptorBuilder) {
//		b.Format("avro").Schema(schema)
//	})
//
// Procedures run strictly in the order given; later procedures override
// earlier ones on the same property. At least one procedure is required.
//
// Container builders that hold buildable values get "With" convenience
// methods generated by cmd/dslgen, or can be driven at runtime with Property.
//
// Import
//
//	"github.com/sghaida/cdk/dsl"
package dsl
