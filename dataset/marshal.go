package dataset

import (
	json "github.com/goccy/go-json"
)

type descriptorView struct {
	Schema            string             `yaml:"schema,omitempty" json:"schema,omitempty"`
	SchemaURI         string             `yaml:"schemaUri,omitempty" json:"schemaUri,omitempty"`
	Format            Format             `yaml:"format" json:"format"`
	Location          string             `yaml:"location,omitempty" json:"location,omitempty"`
	PartitionStrategy []FieldPartitioner `yaml:"partitionStrategy,omitempty" json:"partitionStrategy,omitempty"`
	Properties        map[string]string  `yaml:"properties,omitempty" json:"properties,omitempty"`
}

func (d *Descriptor) view() descriptorView {
	v := descriptorView{
		Schema:     d.schema,
		SchemaURI:  d.schemaURI,
		Format:     d.format,
		Properties: d.properties,
	}
	if loc, ok := d.Location(); ok {
		v.Location = loc.String()
	}
	if d.partitionStrategy != nil {
		v.PartitionStrategy = d.partitionStrategy.FieldPartitioners()
	}
	return v
}

// MarshalYAML implements yaml.Marshaler.
func (d *Descriptor) MarshalYAML() (any, error) { return d.view(), nil }

// MarshalJSON implements json.Marshaler.
func (d *Descriptor) MarshalJSON() ([]byte, error) { return json.Marshal(d.view()) }

type partitionStrategyView struct {
	Fields []FieldPartitioner `yaml:"fields" json:"fields"`
}

// MarshalYAML implements yaml.Marshaler.
func (p *PartitionStrategy) MarshalYAML() (any, error) {
	return partitionStrategyView{Fields: p.FieldPartitioners()}, nil
}

// MarshalJSON implements json.Marshaler.
func (p *PartitionStrategy) MarshalJSON() ([]byte, error) {
	return json.Marshal(partitionStrategyView{Fields: p.FieldPartitioners()})
}

type repositoryView struct {
	Root          string            `yaml:"root" json:"root"`
	FileSystem    string            `yaml:"fileSystem" json:"fileSystem"`
	Configuration map[string]string `yaml:"configuration,omitempty" json:"configuration,omitempty"`
}

func (r *FileSystemRepository) view() repositoryView {
	return repositoryView{Root: r.root.String(), FileSystem: r.fileSystem, Configuration: r.conf}
}

// MarshalYAML implements yaml.Marshaler.
func (r *FileSystemRepository) MarshalYAML() (any, error) { return r.view(), nil }

// MarshalJSON implements json.Marshaler.
func (r *FileSystemRepository) MarshalJSON() ([]byte, error) { return json.Marshal(r.view()) }
