// Command dslgen generates convenience property methods for container builders.
//
// A container builder is a builder with setter methods that take a buildable
// value, e.g. DescriptorBuilder.PartitionStrategy(*PartitionStrategy). For each
// such setter, dslgen emits a sibling <Setter>With method that accepts
// configuration procedures instead of a prebuilt value:
//
//	b.PartitionStrategy(strategy)                         // unchanged
//	b.PartitionStrategyWith(func(p *PartitionStrategyBuilder) {
//		p.Hash("username", "username_part", 16)
//	})
//
// The generated method builds the value through the buildable's dsl.Kind and
// forwards it to the original setter. Build errors are recorded on the
// container with Fail (see dsl.Errors) and surface from Get.
//
// Matching
//
// A method is wrapped when all of the following hold:
//
//   - its receiver is one of the spec's containers
//   - it takes exactly one, non-variadic parameter
//   - its snake-cased name equals a buildable's short name
//   - its parameter type is that buildable's valueType
//
// A container without matching methods produces no wrappers; this is not an error.
// Methods that already have a hand-written <Name>With sibling are skipped.
//
// Spec format (*.dsl.yaml or *.dsl.json)
//
//	package: dataset
//	buildables:
//	  - type: PartitionStrategy
//	    valueType: "*PartitionStrategy"
//	    builderType: "*PartitionStrategyBuilder"
//	    kind: PartitionStrategies
//	containers:
//	  - DescriptorBuilder
//
// Typical go:generate usage
//
// Put this in the owner Go file (same package directory as the spec):
//
//	//go:generate go run ../cmd/dslgen -spec builders.dsl.yaml -out builders_dsl.gen.go
//
// If the owner file imports the dsl package under an alias, the generated
// file reuses it.
package main
