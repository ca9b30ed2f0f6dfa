package dsl

import (
	"reflect"
	"strings"
	"unicode"
)

// ShortName derives the registry name of a type: its simple name with every
// lower-case to upper-case boundary split by an underscore, lower-cased.
//
// Package path and pointer indirections are ignored:
//
//	ShortName(reflect.TypeFor[*dataset.PartitionStrategy]()) == "partition_strategy"
//
// Runs of capitals are not split: "HTTPServer" becomes "httpserver".
func ShortName(t reflect.Type) string {
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil {
		return ""
	}
	return SnakeCase(t.Name())
}

// SnakeCase applies the ShortName word split to an identifier.
func SnakeCase(name string) string {
	// Generic instantiations carry their type arguments in the name.
	if i := strings.IndexByte(name, '['); i >= 0 {
		name = name[:i]
	}

	var sb strings.Builder
	sb.Grow(len(name) + 4)

	var prev rune
	for i, r := range name {
		if i > 0 && unicode.IsLower(prev) && unicode.IsUpper(r) {
			sb.WriteByte('_')
		}
		sb.WriteRune(unicode.ToLower(r))
		prev = r
	}
	return sb.String()
}

// typeName renders t as "pkg.Name", dropping pointers.
func typeName(t reflect.Type) string {
	if t == nil {
		return "<nil>"
	}
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t.String()
}
