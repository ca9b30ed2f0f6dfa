// Package cdk configures dataset definitions through builder procedures.
//
// The repository is organised as a small stack:
//
//   - dsl: the builder adapter. Types register their builder constructors
//     once and are then built from an ordered list of configuration
//     procedures, optionally seeded from an existing instance.
//   - dataset: the dataset SDK (descriptors, partition strategies,
//     file system repositories) registered with dsl.Default.
//   - localpath: local path conversions to SDK handles.
//   - classpath: merges the archives of a vendor directory.
//   - script: an HCL front end that evaluates blocks through the registry.
//   - cmd/dslgen: generates <Setter>With methods for container builders.
//   - cmd/cdk: assembles the classpath, loads a script and prints the result.
//
// A minimal build:
//
//	d, err := dataset.Descriptors.Build(func(b *dataset.DescriptorBuilder) {
//		b.SchemaURI("resource:user.avsc").Format(dataset.FormatParquet)
//	})
package cdk
