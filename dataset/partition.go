package dataset

import (
	"strconv"
	"strings"

	"github.com/sghaida/cdk/dsl"
)

// PartitionerType names the function a field partitioner applies.
type PartitionerType string

const (
	PartitionIdentity PartitionerType = "identity"
	PartitionHash     PartitionerType = "hash"
	PartitionYear     PartitionerType = "year"
	PartitionMonth    PartitionerType = "month"
	PartitionDay      PartitionerType = "day"
)

// FieldPartitioner maps one source field to one partition field.
type FieldPartitioner struct {
	Name       string          `yaml:"name" json:"name"`
	SourceName string          `yaml:"source" json:"source"`
	Type       PartitionerType `yaml:"type" json:"type"`

	// Buckets is only meaningful for PartitionHash.
	Buckets int `yaml:"buckets,omitempty" json:"buckets,omitempty"`
}

// String renders the partitioner as type(source->name[,buckets]).
func (f FieldPartitioner) String() string {
	s := string(f.Type) + "(" + f.SourceName + "->" + f.Name
	if f.Type == PartitionHash {
		s += "," + strconv.Itoa(f.Buckets)
	}
	return s + ")"
}

// PartitionStrategy is an ordered, immutable list of field partitioners.
type PartitionStrategy struct {
	fields []FieldPartitioner
}

// FieldPartitioners returns a copy of the partitioners in order.
func (p *PartitionStrategy) FieldPartitioners() []FieldPartitioner {
	out := make([]FieldPartitioner, len(p.fields))
	copy(out, p.fields)
	return out
}

// Len returns the number of partitioners.
func (p *PartitionStrategy) Len() int { return len(p.fields) }

// String implements fmt.Stringer.
func (p *PartitionStrategy) String() string {
	parts := make([]string, len(p.fields))
	for i, f := range p.fields {
		parts[i] = f.String()
	}
	return "PartitionStrategy[" + strings.Join(parts, ", ") + "]"
}

// PartitionStrategyBuilder configures a PartitionStrategy.
type PartitionStrategyBuilder struct {
	dsl.Errors
	fields []FieldPartitioner
}

// NewPartitionStrategyBuilder returns an empty builder.
func NewPartitionStrategyBuilder() *PartitionStrategyBuilder {
	return &PartitionStrategyBuilder{}
}

// PartitionStrategyBuilderFrom returns a builder seeded with base's partitioners.
func PartitionStrategyBuilderFrom(base *PartitionStrategy) *PartitionStrategyBuilder {
	b := NewPartitionStrategyBuilder()
	if base != nil {
		b.fields = base.FieldPartitioners()
	}
	return b
}

// Identity partitions by the raw value of source.
func (b *PartitionStrategyBuilder) Identity(source, name string) *PartitionStrategyBuilder {
	return b.add(FieldPartitioner{SourceName: source, Name: name, Type: PartitionIdentity})
}

// Hash partitions source into buckets hash buckets.
func (b *PartitionStrategyBuilder) Hash(source, name string, buckets int) *PartitionStrategyBuilder {
	if buckets <= 0 {
		b.Fail(newError(ErrDataset, "partition_strategy", "hash partitioner "+strconv.Quote(source)+" needs a positive bucket count"))
		return b
	}
	return b.add(FieldPartitioner{SourceName: source, Name: name, Type: PartitionHash, Buckets: buckets})
}

// Year partitions a timestamp source by year.
func (b *PartitionStrategyBuilder) Year(source, name string) *PartitionStrategyBuilder {
	return b.add(FieldPartitioner{SourceName: source, Name: name, Type: PartitionYear})
}

// Month partitions a timestamp source by month.
func (b *PartitionStrategyBuilder) Month(source, name string) *PartitionStrategyBuilder {
	return b.add(FieldPartitioner{SourceName: source, Name: name, Type: PartitionMonth})
}

// Day partitions a timestamp source by day of month.
func (b *PartitionStrategyBuilder) Day(source, name string) *PartitionStrategyBuilder {
	return b.add(FieldPartitioner{SourceName: source, Name: name, Type: PartitionDay})
}

func (b *PartitionStrategyBuilder) add(f FieldPartitioner) *PartitionStrategyBuilder {
	if strings.TrimSpace(f.SourceName) == "" {
		b.Fail(newError(ErrDataset, "partition_strategy", string(f.Type)+" partitioner needs a source field"))
		return b
	}
	if f.Name == "" {
		f.Name = f.SourceName + "_" + string(f.Type)
	}
	for _, existing := range b.fields {
		if existing.Name == f.Name {
			b.Fail(newError(ErrDataset, "partition_strategy", "duplicate partition name "+strconv.Quote(f.Name)))
			return b
		}
	}
	b.fields = append(b.fields, f)
	return b
}

// Get returns the configured strategy.
func (b *PartitionStrategyBuilder) Get() (*PartitionStrategy, error) {
	if err := b.Err(); err != nil {
		return nil, err
	}
	if len(b.fields) == 0 {
		return nil, newError(ErrDataset, "partition_strategy", "no field partitioners")
	}
	fields := make([]FieldPartitioner, len(b.fields))
	copy(fields, b.fields)
	return &PartitionStrategy{fields: fields}, nil
}
