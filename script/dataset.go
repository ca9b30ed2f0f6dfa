package script

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/sghaida/cdk/classpath"
	"github.com/sghaida/cdk/dataset"
	"github.com/sghaida/cdk/dsl"
)

// Load evaluates the script at path with the dataset SDK's block handlers
// against dsl.Default.
func Load(ctx context.Context, path string, opts ...Option) (*Result, error) {
	in, err := NewDatasetInterpreter(dsl.Default, opts...)
	if err != nil {
		return nil, err
	}
	return in.Load(ctx, path)
}

// NewDatasetInterpreter returns an interpreter that understands the
// partition_strategy, descriptor and file_system_repository blocks.
func NewDatasetInterpreter(reg *dsl.Registry, opts ...Option) (*Interpreter, error) {
	in := NewInterpreter(reg, opts...)
	handlers := map[string]Handler{
		dataset.PartitionStrategies.Name():    partitionStrategyHandler,
		dataset.Descriptors.Name():            descriptorHandler,
		dataset.FileSystemRepositories.Name(): repositoryHandler,
	}
	for name, h := range handlers {
		if err := in.Handle(name, h); err != nil {
			return nil, err
		}
	}
	return in, nil
}

//
// partition_strategy
//

var partitionerSchema = &hcl.BodySchema{
	Blocks: []hcl.BlockHeaderSchema{
		{Type: string(dataset.PartitionIdentity), LabelNames: []string{"source"}},
		{Type: string(dataset.PartitionHash), LabelNames: []string{"source"}},
		{Type: string(dataset.PartitionYear), LabelNames: []string{"source"}},
		{Type: string(dataset.PartitionMonth), LabelNames: []string{"source"}},
		{Type: string(dataset.PartitionDay), LabelNames: []string{"source"}},
	},
}

type partitionerBlock struct {
	Name    *string `hcl:"name"`
	Buckets *int    `hcl:"buckets"`
}

type partitionStrategyBlock struct {
	Base   *string  `hcl:"base"`
	Remain hcl.Body `hcl:",remain"`
}

func partitionStrategyHandler(s *Session, body hcl.Body) ([]any, error) {
	var blk partitionStrategyBlock
	if err := s.Decode(body, &blk); err != nil {
		return nil, err
	}
	proc, err := partitionProcedure(s, blk.Remain)
	if err != nil {
		return nil, err
	}
	return s.Args(blk.Base, proc)
}

// partitionProcedure turns partitioner blocks into a procedure that adds them
// in source order.
func partitionProcedure(s *Session, body hcl.Body) (dsl.Procedure[*dataset.PartitionStrategyBuilder], error) {
	content, diags := body.Content(partitionerSchema)
	if diags.HasErrors() {
		return nil, diags
	}

	type step struct {
		typ     dataset.PartitionerType
		source  string
		name    string
		buckets int
	}

	steps := make([]step, 0, len(content.Blocks))
	for _, block := range content.Blocks {
		var pb partitionerBlock
		if err := s.Decode(block.Body, &pb); err != nil {
			return nil, err
		}
		st := step{typ: dataset.PartitionerType(block.Type), source: block.Labels[0]}
		if pb.Name != nil {
			st.name = *pb.Name
		}
		if pb.Buckets != nil {
			if st.typ != dataset.PartitionHash {
				return nil, fmt.Errorf("buckets is only valid for hash partitioners (%s at %s)", block.Type, block.DefRange)
			}
			st.buckets = *pb.Buckets
		}
		steps = append(steps, st)
	}

	return func(b *dataset.PartitionStrategyBuilder) {
		for _, st := range steps {
			switch st.typ {
			case dataset.PartitionIdentity:
				b.Identity(st.source, st.name)
			case dataset.PartitionHash:
				b.Hash(st.source, st.name, st.buckets)
			case dataset.PartitionYear:
				b.Year(st.source, st.name)
			case dataset.PartitionMonth:
				b.Month(st.source, st.name)
			case dataset.PartitionDay:
				b.Day(st.source, st.name)
			}
		}
	}, nil
}

//
// descriptor
//

type nestedBody struct {
	Body hcl.Body `hcl:",remain"`
}

type descriptorBlock struct {
	Base       *string           `hcl:"base"`
	Schema     *string           `hcl:"schema"`
	SchemaURI  *string           `hcl:"schema_uri"`
	SchemaFile *string           `hcl:"schema_file"`
	Format     *string           `hcl:"format"`
	Location   *string           `hcl:"location"`
	Strategy   *string           `hcl:"strategy"`
	Properties map[string]string `hcl:"properties,optional"`

	PartitionStrategy *nestedBody `hcl:"partition_strategy,block"`
}

func descriptorHandler(s *Session, body hcl.Body) ([]any, error) {
	var blk descriptorBlock
	if err := s.Decode(body, &blk); err != nil {
		return nil, err
	}

	set := 0
	for _, v := range []*string{blk.Schema, blk.SchemaURI, blk.SchemaFile} {
		if v != nil {
			set++
		}
	}
	if set > 1 {
		return nil, fmt.Errorf("schema, schema_uri and schema_file are mutually exclusive")
	}
	if blk.Strategy != nil && blk.PartitionStrategy != nil {
		return nil, fmt.Errorf("strategy and a partition_strategy block are mutually exclusive")
	}

	schema := blk.Schema
	if blk.SchemaFile != nil {
		text, err := readSchemaFile(s, *blk.SchemaFile)
		if err != nil {
			return nil, err
		}
		schema = &text
	}

	if blk.SchemaURI != nil {
		if err := checkResource(s.Classpath(), *blk.SchemaURI); err != nil {
			return nil, err
		}
	}

	var location *dataset.Path
	if blk.Location != nil {
		p, err := resolvePath(s, *blk.Location)
		if err != nil {
			return nil, err
		}
		location = &p
	}

	var strategy *dataset.PartitionStrategy
	if blk.Strategy != nil {
		v, err := s.Lookup(dataset.PartitionStrategies.Name(), *blk.Strategy)
		if err != nil {
			return nil, err
		}
		strategy = v.(*dataset.PartitionStrategy)
	}

	var nested dsl.Procedure[*dataset.PartitionStrategyBuilder]
	if blk.PartitionStrategy != nil {
		p, err := partitionProcedure(s, blk.PartitionStrategy.Body)
		if err != nil {
			return nil, err
		}
		nested = p
	}

	propNames := make([]string, 0, len(blk.Properties))
	for k := range blk.Properties {
		propNames = append(propNames, k)
	}
	sort.Strings(propNames)

	proc := dsl.Procedure[*dataset.DescriptorBuilder](func(b *dataset.DescriptorBuilder) {
		if schema != nil {
			b.Schema(*schema)
		}
		if blk.SchemaURI != nil {
			b.SchemaURI(*blk.SchemaURI)
		}
		if blk.Format != nil {
			b.FormatName(*blk.Format)
		}
		if location != nil {
			b.Location(*location)
		}
		if strategy != nil {
			b.PartitionStrategy(strategy)
		}
		if nested != nil {
			b.PartitionStrategyWith(nested)
		}
		for _, k := range propNames {
			b.Property(k, blk.Properties[k])
		}
	})
	return s.Args(blk.Base, proc)
}

// resourceScheme prefixes schema URIs served from the classpath.
const resourceScheme = "resource:"

// checkResource fails when uri names a classpath resource that cp does not
// provide. Other URIs, and every URI when cp is nil, pass.
func checkResource(cp *classpath.Classpath, uri string) error {
	name, ok := strings.CutPrefix(uri, resourceScheme)
	if !ok || cp == nil {
		return nil
	}
	if _, found := cp.Lookup(strings.TrimPrefix(name, "/")); !found {
		return &dataset.Error{
			Kind: dataset.ErrDataset,
			Op:   "descriptor",
			Msg:  "schema " + uri + " not found on classpath " + cp.Dir(),
			Err:  classpath.ErrEntryNotFound,
		}
	}
	return nil
}

func readSchemaFile(s *Session, p string) (string, error) {
	f, err := s.Resolve(p).ToFile()
	if err != nil {
		return "", err
	}
	r, err := f.Open()
	if err != nil {
		return "", fmt.Errorf("schema_file: %w", err)
	}
	defer r.Close()

	b, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("schema_file %s: %w", f.Name(), err)
	}
	return string(b), nil
}

//
// file_system_repository
//

type repositoryBlock struct {
	Base          *string           `hcl:"base"`
	Root          *string           `hcl:"root"`
	FileSystem    *string           `hcl:"file_system"`
	Configuration map[string]string `hcl:"configuration,optional"`
}

func repositoryHandler(s *Session, body hcl.Body) ([]any, error) {
	var blk repositoryBlock
	if err := s.Decode(body, &blk); err != nil {
		return nil, err
	}

	var root *dataset.Path
	if blk.Root != nil {
		p, err := resolvePath(s, *blk.Root)
		if err != nil {
			return nil, err
		}
		root = &p
	}

	keys := make([]string, 0, len(blk.Configuration))
	for k := range blk.Configuration {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	proc := dsl.Procedure[*dataset.FileSystemRepositoryBuilder](func(b *dataset.FileSystemRepositoryBuilder) {
		if root != nil {
			b.RootDirectory(*root)
		}
		if blk.FileSystem != nil {
			b.FileSystem(*blk.FileSystem)
		}
		for _, k := range keys {
			b.Configuration(k, blk.Configuration[k])
		}
	})
	return s.Args(blk.Base, proc)
}

// resolvePath parses URIs and absolute paths as is; relative local paths are
// taken from the script's directory. Used for both root and location.
func resolvePath(s *Session, p string) (dataset.Path, error) {
	if strings.Contains(p, "://") || strings.HasPrefix(p, "/") {
		return dataset.ParsePath(p)
	}
	return s.Resolve(p).ToFSPath()
}
