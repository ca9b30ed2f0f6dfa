package dataset

//go:generate go run ../cmd/dslgen -spec builders.dsl.yaml -out builders_dsl.gen.go

import "github.com/sghaida/cdk/dsl"

// Buildable kinds, registered with dsl.Default as "partition_strategy",
// "descriptor" and "file_system_repository".
var (
	PartitionStrategies    = dsl.MustRegister(dsl.Default, NewPartitionStrategyBuilder, PartitionStrategyBuilderFrom)
	Descriptors            = dsl.MustRegister(dsl.Default, NewDescriptorBuilder, DescriptorBuilderFrom)
	FileSystemRepositories = dsl.MustRegister(dsl.Default, NewFileSystemRepositoryBuilder, FileSystemRepositoryBuilderFrom)
)

// PartitionStrategyProperty drives DescriptorBuilder.PartitionStrategy at runtime.
var PartitionStrategyProperty = dsl.Property[*DescriptorBuilder, *PartitionStrategy, *PartitionStrategyBuilder]{
	Kind: PartitionStrategies,
	Set:  (*DescriptorBuilder).PartitionStrategy,
}
