// Package pgbridge parses, normalizes, fingerprints, splits, scans and
// deparses PostgreSQL queries by bridging to the libpg_query shared library
// at runtime, without cgo. The actual grammar, the PL/pgSQL parser and
// the parse-tree schema all come from libpg_query and its pg_query.proto;
// this package supplies the call protocol, the memory-ownership discipline
// and the tree interchange around them.
//
// A Bridge is cheap to keep alive and its operations keep all decode state
// call-local. Invalid SQL is an expected outcome: it lands in the result's
// Err field, never in the returned error, which is reserved for programming
// misuse (NUL bytes in the input, use after Close) and loader failures.
//
//	b, err := pgbridge.New()
//	if err != nil { ... }
//	defer b.Close()
//
//	res, err := b.Parse("SELECT * FROM users WHERE id = 1")
//	if err != nil { ... }
//	if !res.Ok() {
//		fmt.Println("invalid:", res.Err)
//	}
package pgbridge

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/JaredMSFT/pgbridge/internal/adapters/libpgquery"
	"github.com/JaredMSFT/pgbridge/internal/adapters/pgproto"
	"github.com/JaredMSFT/pgbridge/internal/textspan"
)

var (
	// ErrClosed is returned by any operation invoked after Close.
	ErrClosed = errors.New("pgbridge: bridge is closed")

	// ErrNulByte is returned for inputs containing a NUL byte, which would
	// silently truncate at the native boundary.
	ErrNulByte = errors.New("pgbridge: input contains a NUL byte")
)

// Bridge is the operation facade over libpg_query. Construct with New,
// release with Close. Operations are independent and idempotent; Close must
// not be called concurrently with in-flight operations.
type Bridge struct {
	lib    *libpgquery.Library
	schema *pgproto.Schema
	opts   Options
	closed atomic.Bool
}

// New loads the libpg_query shared library and compiles the pg_query.proto
// schema, returning a ready Bridge. Both artifacts are located through the
// configured (or default) search paths.
func New(opts ...Option) (*Bridge, error) {
	o := buildOptions(opts)
	if !supportedDialects[o.DialectVersion] {
		return nil, fmt.Errorf("pgbridge: unsupported dialect version %d", o.DialectVersion)
	}
	lib, err := libpgquery.Open(o.LibraryPaths)
	if err != nil {
		return nil, err
	}
	schema, err := pgproto.Load(context.Background(), o.SchemaPaths)
	if err != nil {
		return nil, err
	}
	return NewWithComponents(lib, schema, opts...), nil
}

// NewWithComponents builds a Bridge over an already-loaded library and
// schema. Intended for embedders that manage loading themselves and for
// substituting the native surface in tests.
func NewWithComponents(lib *libpgquery.Library, schema *pgproto.Schema, opts ...Option) *Bridge {
	return &Bridge{lib: lib, schema: schema, opts: buildOptions(opts)}
}

// Close marks the bridge unusable. Subsequent operations fail with ErrClosed
// and perform no native calls. Close is idempotent.
func (b *Bridge) Close() error {
	b.closed.Store(true)
	return nil
}

// DialectVersion returns the configured grammar version.
func (b *Bridge) DialectVersion() int { return b.opts.DialectVersion }

// guard enforces the usage-error class before any native call: no calls on
// a closed bridge, no inputs that would truncate at the C boundary.
func (b *Bridge) guard(input string) error {
	if b.closed.Load() {
		return ErrClosed
	}
	if strings.IndexByte(input, 0) >= 0 {
		return ErrNulByte
	}
	return nil
}

// capture converts a panic escaping the native layer into a generic
// diagnostic on the result, so one malformed input cannot crash a batch.
func capture(res *Result) {
	if r := recover(); r != nil {
		res.Err = fmt.Sprintf("native library error: %v", r)
	}
}

// Parse parses query and returns its parse tree in the schema's textual
// form. The tree round-trips through Deparse.
func (b *Bridge) Parse(query string) (res *ParseResult, err error) {
	if err := b.guard(query); err != nil {
		return nil, err
	}
	res = &ParseResult{Result: Result{Query: query}}
	defer capture(&res.Result)

	buf, nerr := b.lib.ParseProtobuf(query)
	if nerr != nil {
		res.Err = nerr.Error()
		return res, nil
	}
	tree, terr := b.schema.TreeToJSON(buf, b.opts.IncludeLocations)
	if terr != nil {
		res.Err = terr.Error()
		return res, nil
	}
	res.Tree = tree
	return res, nil
}

// Normalize replaces literal constants in query with placeholders.
func (b *Bridge) Normalize(query string) (res *NormalizeResult, err error) {
	if err := b.guard(query); err != nil {
		return nil, err
	}
	res = &NormalizeResult{Result: Result{Query: query}}
	defer capture(&res.Result)

	norm, nerr := b.lib.Normalize(query)
	if nerr != nil {
		res.Err = nerr.Error()
		return res, nil
	}
	res.Normalized = norm
	return res, nil
}

// Fingerprint computes the structural hash of query. Two queries differing
// only in literal values share a fingerprint.
func (b *Bridge) Fingerprint(query string) (res *FingerprintResult, err error) {
	if err := b.guard(query); err != nil {
		return nil, err
	}
	res = &FingerprintResult{Result: Result{Query: query}}
	defer capture(&res.Result)

	fp, nerr := b.lib.Fingerprint(query)
	if nerr != nil {
		res.Err = nerr.Error()
		return res, nil
	}
	res.Fingerprint = fp.Value
	res.Hex = fp.Hex
	return res, nil
}

// Deparse reconstructs SQL text from a textual parse tree, typically one
// produced by Parse. Trees that do not map to the binary schema fail before
// any native call.
func (b *Bridge) Deparse(tree string) (res *DeparseResult, err error) {
	if err := b.guard(tree); err != nil {
		return nil, err
	}
	res = &DeparseResult{Result: Result{Query: tree}}
	defer capture(&res.Result)

	buf, terr := b.schema.JSONToTree(tree)
	if terr != nil {
		res.Err = terr.Error()
		return res, nil
	}
	sql, nerr := b.lib.DeparseProtobuf(buf)
	if nerr != nil {
		res.Err = nerr.Error()
		return res, nil
	}
	res.SQL = sql
	return res, nil
}

// Split divides a multi-statement text into individual statement spans, in
// input order. usingParser selects the parser-backed splitter, which is
// stricter; the scanner-backed one tolerates syntax errors inside
// statements.
func (b *Bridge) Split(query string, usingParser bool) (res *SplitResult, err error) {
	if err := b.guard(query); err != nil {
		return nil, err
	}
	res = &SplitResult{Result: Result{Query: query}}
	defer capture(&res.Result)

	spans, nerr := b.lib.Split(query, usingParser)
	if nerr != nil {
		res.Err = nerr.Error()
		return res, nil
	}
	res.Statements = make([]Statement, 0, len(spans))
	for _, s := range spans {
		res.Statements = append(res.Statements, Statement{
			Location: s.Location,
			Length:   s.Length,
			Text:     textspan.SliceLen(query, s.Location, s.Length),
		})
	}
	return res, nil
}

// Scan tokenizes query and reports the dialect version number the native
// scanner was built for.
func (b *Bridge) Scan(query string) (res *ScanResult, err error) {
	if err := b.guard(query); err != nil {
		return nil, err
	}
	res = &ScanResult{Result: Result{Query: query}}
	defer capture(&res.Result)

	buf, nerr := b.lib.Scan(query)
	if nerr != nil {
		res.Err = nerr.Error()
		return res, nil
	}
	out, derr := b.schema.DecodeScan(buf)
	if derr != nil {
		res.Err = derr.Error()
		return res, nil
	}
	res.Version = out.Version
	res.Tokens = make([]Token, 0, len(out.Tokens))
	for _, t := range out.Tokens {
		res.Tokens = append(res.Tokens, Token{
			Start:     t.Start,
			End:       t.End,
			Text:      textspan.Slice(query, t.Start, t.End),
			Kind:      t.Kind,
			KindValue: t.KindValue,
			Keyword:   t.Keyword,
		})
	}
	return res, nil
}

// ParsePLpgSQL parses a PL/pgSQL function definition and returns the parsed
// function bodies as a JSON array.
func (b *Bridge) ParsePLpgSQL(definition string) (res *PLpgSQLResult, err error) {
	if err := b.guard(definition); err != nil {
		return nil, err
	}
	res = &PLpgSQLResult{Result: Result{Query: definition}}
	defer capture(&res.Result)

	funcs, nerr := b.lib.ParsePlpgsql(definition)
	if nerr != nil {
		res.Err = nerr.Error()
		return res, nil
	}
	res.Functions = funcs
	return res, nil
}

// IsValid reports whether query parses under the configured grammar. Built
// on the plain parse entry point: only the error channel is needed.
func (b *Bridge) IsValid(query string) (bool, error) {
	msg, err := b.GetError(query)
	if err != nil {
		return false, err
	}
	return msg == "", nil
}

// GetError returns the parser diagnostic for query, or "" when it is valid.
func (b *Bridge) GetError(query string) (string, error) {
	if err := b.guard(query); err != nil {
		return "", err
	}
	var res Result
	func() {
		defer capture(&res)
		if _, nerr := b.lib.Parse(query); nerr != nil {
			res.Err = nerr.Error()
		}
	}()
	return res.Err, nil
}
