// Package pgproto is the binary-tree interchange bridge. libpg_query
// serializes parse trees into a protobuf wire format whose schema
// (pg_query.proto) ships with the library; this package compiles that schema
// at startup and converts between the length-prefixed binary form that
// crosses the native boundary and the textual JSON form exposed to callers.
//
// The schema is external by contract: this package never hardcodes node
// kinds. Mapping is driven entirely by the compiled descriptor, so a tree
// that does not fit the schema fails cleanly at translation time instead of
// reaching the native deparse path half-populated.
package pgproto

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bufbuild/protocompile"
	"google.golang.org/protobuf/reflect/protoreflect"
)

// schemaFile is the canonical name of the grammar schema definition.
const schemaFile = "pg_query.proto"

// ErrSchemaNotFound reports that pg_query.proto was not found in any search
// path.
type ErrSchemaNotFound struct {
	Paths []string
}

func (e *ErrSchemaNotFound) Error() string {
	return fmt.Sprintf("pgproto: %s not found in search paths: %s",
		schemaFile, strings.Join(e.Paths, ", "))
}

// Schema holds the compiled descriptors for the two message kinds that cross
// the native boundary. Immutable after construction.
type Schema struct {
	parse protoreflect.MessageDescriptor
	scan  protoreflect.MessageDescriptor
}

// DefaultSearchPaths returns the default directories searched for
// pg_query.proto. PGBRIDGE_PROTO_PATH (colon-separated) is searched first,
// then the conventional libpg_query install locations.
func DefaultSearchPaths() []string {
	var paths []string
	if env := os.Getenv("PGBRIDGE_PROTO_PATH"); env != "" {
		paths = append(paths, filepath.SplitList(env)...)
	}
	paths = append(paths,
		"/usr/local/include/pg_query",
		"/usr/include/pg_query",
	)
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".pgbridge", "proto"))
	}
	return paths
}

// Locate returns the directory containing pg_query.proto, or "" if none of
// the search paths has it.
func Locate(searchPaths []string) string {
	for _, dir := range searchPaths {
		if _, err := os.Stat(filepath.Join(dir, schemaFile)); err == nil {
			return dir
		}
	}
	return ""
}

// Load compiles pg_query.proto from the first search path containing it.
func Load(ctx context.Context, searchPaths []string) (*Schema, error) {
	if len(searchPaths) == 0 {
		searchPaths = DefaultSearchPaths()
	}
	dir := Locate(searchPaths)
	if dir == "" {
		return nil, &ErrSchemaNotFound{Paths: searchPaths}
	}
	return compile(ctx, &protocompile.SourceResolver{ImportPaths: []string{dir}})
}

// FromSource compiles a schema supplied as in-memory file contents, keyed by
// file name. The entry file must be named pg_query.proto.
func FromSource(files map[string]string) (*Schema, error) {
	return compile(context.Background(), &protocompile.SourceResolver{
		Accessor: protocompile.SourceAccessorFromMap(files),
	})
}

func compile(ctx context.Context, resolver protocompile.Resolver) (*Schema, error) {
	compiler := protocompile.Compiler{
		Resolver: protocompile.WithStandardImports(resolver),
	}
	files, err := compiler.Compile(ctx, schemaFile)
	if err != nil {
		return nil, fmt.Errorf("pgproto: compile %s: %w", schemaFile, err)
	}
	fd := files[0]

	s := &Schema{
		parse: fd.Messages().ByName("ParseResult"),
		scan:  fd.Messages().ByName("ScanResult"),
	}
	if s.parse == nil || s.scan == nil {
		return nil, fmt.Errorf("pgproto: %s lacks ParseResult/ScanResult message definitions", schemaFile)
	}
	return s, nil
}
