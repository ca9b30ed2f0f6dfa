// Package dataset is the construction surface of the dataset repository SDK:
// dataset descriptors, partition strategies, filesystem-backed repositories,
// the SDK's error kinds and its filesystem Path type.
//
// Every type here is built through a Builder and registered with dsl.Default,
// so it can be configured declaratively:
//
//	d, err := dataset.Descriptors.Build(func(b *dataset.DescriptorBuilder) {
//		b.SchemaURI("resource:user.avsc").
//			PartitionStrategyWith(func(p *dataset.PartitionStrategyBuilder) {
//				p.Hash("username", "username_part", 16)
//			})
//	})
//
// Storage, partition evaluation and format handling are out of scope: the
// package only models what is needed to configure them.
package dataset
