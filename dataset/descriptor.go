package dataset

import (
	"maps"
	"slices"
	"strings"

	"github.com/sghaida/cdk/dsl"
)

// Format is a dataset storage format.
type Format string

const (
	FormatAvro    Format = "avro"
	FormatParquet Format = "parquet"
	FormatCSV     Format = "csv"
)

var formats = map[Format]struct{}{
	FormatAvro:    {},
	FormatParquet: {},
	FormatCSV:     {},
}

// ParseFormat resolves a format name case-insensitively.
// Unknown names fail with ErrUnknownFormat.
func ParseFormat(name string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(name)))
	if _, ok := formats[f]; !ok {
		return "", newError(ErrUnknownFormat, "descriptor", "unsupported format "+name)
	}
	return f, nil
}

// Descriptor describes a dataset: its schema, storage format, optional
// location and partitioning, and free-form properties.
type Descriptor struct {
	schema            string
	schemaURI         string
	format            Format
	location          Path
	partitionStrategy *PartitionStrategy
	properties        map[string]string
}

// Schema returns the literal schema, if one was set.
func (d *Descriptor) Schema() string { return d.schema }

// SchemaURI returns the schema location, if one was set.
func (d *Descriptor) SchemaURI() string { return d.schemaURI }

// Format returns the storage format.
func (d *Descriptor) Format() Format { return d.format }

// Location returns the explicit data location and whether one was set.
func (d *Descriptor) Location() (Path, bool) { return d.location, !d.location.IsZero() }

// PartitionStrategy returns the strategy or nil for unpartitioned datasets.
func (d *Descriptor) PartitionStrategy() *PartitionStrategy { return d.partitionStrategy }

// IsPartitioned reports whether a partition strategy is set.
func (d *Descriptor) IsPartitioned() bool { return d.partitionStrategy != nil }

// Property returns a named property.
func (d *Descriptor) Property(name string) (string, bool) {
	v, ok := d.properties[name]
	return v, ok
}

// PropertyNames returns property names in lexical order.
func (d *Descriptor) PropertyNames() []string {
	return slices.Sorted(maps.Keys(d.properties))
}

// DescriptorBuilder configures a Descriptor.
type DescriptorBuilder struct {
	dsl.Errors
	d Descriptor
}

// NewDescriptorBuilder returns a builder defaulting to FormatAvro.
func NewDescriptorBuilder() *DescriptorBuilder {
	return &DescriptorBuilder{d: Descriptor{format: FormatAvro, properties: map[string]string{}}}
}

// DescriptorBuilderFrom returns a builder seeded with base's configuration.
func DescriptorBuilderFrom(base *Descriptor) *DescriptorBuilder {
	b := NewDescriptorBuilder()
	if base == nil {
		return b
	}
	b.d = *base
	b.d.properties = maps.Clone(base.properties)
	if b.d.properties == nil {
		b.d.properties = map[string]string{}
	}
	return b
}

// Schema sets a literal schema and clears any schema URI.
func (b *DescriptorBuilder) Schema(schema string) *DescriptorBuilder {
	b.d.schema = schema
	b.d.schemaURI = ""
	return b
}

// SchemaURI sets the schema location and clears any literal schema.
func (b *DescriptorBuilder) SchemaURI(uri string) *DescriptorBuilder {
	b.d.schemaURI = uri
	b.d.schema = ""
	return b
}

// Format sets the storage format.
func (b *DescriptorBuilder) Format(f Format) *DescriptorBuilder {
	if _, ok := formats[f]; !ok {
		b.Fail(newError(ErrUnknownFormat, "descriptor", "unsupported format "+string(f)))
		return b
	}
	b.d.format = f
	return b
}

// FormatName sets the storage format by name.
func (b *DescriptorBuilder) FormatName(name string) *DescriptorBuilder {
	f, err := ParseFormat(name)
	if err != nil {
		b.Fail(err)
		return b
	}
	b.d.format = f
	return b
}

// Location sets an explicit data location.
func (b *DescriptorBuilder) Location(p Path) *DescriptorBuilder {
	b.d.location = p
	return b
}

// LocationURI parses and sets the data location.
func (b *DescriptorBuilder) LocationURI(uri string) *DescriptorBuilder {
	p, err := ParsePath(uri)
	if err != nil {
		b.Fail(err)
		return b
	}
	return b.Location(p)
}

// PartitionStrategy sets the partition strategy. A nil strategy makes the
// dataset unpartitioned.
func (b *DescriptorBuilder) PartitionStrategy(p *PartitionStrategy) *DescriptorBuilder {
	b.d.partitionStrategy = p
	return b
}

// Property sets a free-form property.
func (b *DescriptorBuilder) Property(name, value string) *DescriptorBuilder {
	b.d.properties[name] = value
	return b
}

// Get returns the configured descriptor. A schema or schema URI is required.
func (b *DescriptorBuilder) Get() (*Descriptor, error) {
	if err := b.Err(); err != nil {
		return nil, err
	}
	if b.d.schema == "" && b.d.schemaURI == "" {
		return nil, newError(ErrDataset, "descriptor", "a schema or schema URI is required")
	}
	d := b.d
	d.properties = maps.Clone(b.d.properties)
	return &d, nil
}
