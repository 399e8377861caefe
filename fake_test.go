package pgbridge

import (
	"strings"
	"sync"
	"sync/atomic"
	"time"
	"unsafe"

	"github.com/JaredMSFT/pgbridge/internal/adapters/libpgquery"
	"github.com/JaredMSFT/pgbridge/internal/adapters/pgproto"
)

// miniSchema mirrors the shape of the real grammar schema closely enough to
// exercise the interchange path: same package, same entry messages, same
// naming conventions.
const miniSchema = `
syntax = "proto3";
package pg_query;

message ParseResult {
  int32 version = 1;
  repeated RawStmt stmts = 2;
}

message RawStmt {
  Node stmt = 1;
  int32 stmt_location = 2;
  int32 stmt_len = 3;
}

message Node {
  oneof node {
    SelectStmt select_stmt = 1;
    ColumnRef column_ref = 2;
  }
}

message SelectStmt {
  repeated Node target_list = 1;
}

message ColumnRef {
  repeated string fields = 1;
  int32 location = 2;
}

message ScanResult {
  int32 version = 1;
  repeated ScanToken tokens = 2;
}

message ScanToken {
  int32 start = 1;
  int32 end = 2;
  Token token = 4;
  KeywordKind keyword_kind = 5;
}

enum Token {
  NUL = 0;
  IDENT = 258;
  ICONST = 260;
  SELECT = 597;
}

enum KeywordKind {
  NO_KEYWORD = 0;
  RESERVED_KEYWORD = 4;
}
`

// testFake is a canned native call surface. Inputs containing "SELEKT"
// produce an error envelope; inputs containing "PANIC" panic the way an
// unexpected native fault would. Counters are atomic because the async
// tests drive it from many goroutines.
type testFake struct {
	calls    atomic.Int64
	frees    atomic.Int64
	inFlight atomic.Int64
	maxSeen  atomic.Int64

	// payloads injected by the test, already in the mini schema's wire form
	parseBuf []byte
	scanBuf  []byte

	deparseInput atomic.Pointer[[]byte]

	// parked allocations keep fabricated envelope targets reachable for
	// the life of the fake
	mu     sync.Mutex
	allocs [][]byte
	errs   []*libpgquery.ErrorStruct
	spans  []*libpgquery.SplitStmt
	arrays [][]uintptr
}

func newTestFake() *testFake {
	return &testFake{}
}

func (f *testFake) cstr(s string) uintptr {
	b := append([]byte(s), 0)
	f.mu.Lock()
	f.allocs = append(f.allocs, b)
	f.mu.Unlock()
	return uintptr(unsafe.Pointer(&b[0]))
}

func (f *testFake) buf(b []byte) libpgquery.Protobuf {
	if len(b) == 0 {
		return libpgquery.Protobuf{}
	}
	c := append([]byte(nil), b...)
	f.mu.Lock()
	f.allocs = append(f.allocs, c)
	f.mu.Unlock()
	return libpgquery.Protobuf{Len: uint64(len(c)), Data: uintptr(unsafe.Pointer(&c[0]))}
}

func (f *testFake) errFor(input string) uintptr {
	if !strings.Contains(input, "SELEKT") {
		return 0
	}
	es := &libpgquery.ErrorStruct{
		Message:   f.cstr(`syntax error at or near "SELEKT"`),
		Cursorpos: 1,
	}
	f.mu.Lock()
	f.errs = append(f.errs, es)
	f.mu.Unlock()
	return uintptr(unsafe.Pointer(es))
}

// enter tracks in-flight native calls so the batch-bound test can observe
// the high-water mark.
func (f *testFake) enter(input string) {
	f.calls.Add(1)
	if strings.Contains(input, "PANIC") {
		panic("segfault-adjacent condition")
	}
	n := f.inFlight.Add(1)
	for {
		m := f.maxSeen.Load()
		if n <= m || f.maxSeen.CompareAndSwap(m, n) {
			break
		}
	}
	time.Sleep(2 * time.Millisecond)
	f.inFlight.Add(-1)
}

func (f *testFake) Parse(input string) libpgquery.ParseResult {
	f.enter(input)
	r := libpgquery.ParseResult{Error: f.errFor(input)}
	if r.Error == 0 {
		r.ParseTree = f.cstr(`{"version": 170004, "stmts": []}`)
	}
	return r
}

func (f *testFake) FreeParseResult(libpgquery.ParseResult) { f.frees.Add(1) }

func (f *testFake) ParseProtobuf(input string) libpgquery.ProtobufParseResult {
	f.enter(input)
	r := libpgquery.ProtobufParseResult{Error: f.errFor(input)}
	if r.Error == 0 {
		r.ParseTree = f.buf(f.parseBuf)
	}
	return r
}

func (f *testFake) FreeProtobufParseResult(libpgquery.ProtobufParseResult) { f.frees.Add(1) }

func (f *testFake) Scan(input string) libpgquery.ScanResult {
	f.enter(input)
	r := libpgquery.ScanResult{Error: f.errFor(input)}
	if r.Error == 0 {
		r.Pbuf = f.buf(f.scanBuf)
	}
	return r
}

func (f *testFake) FreeScanResult(libpgquery.ScanResult) { f.frees.Add(1) }

func (f *testFake) Normalize(input string) libpgquery.NormalizeResult {
	f.enter(input)
	r := libpgquery.NormalizeResult{Error: f.errFor(input)}
	if r.Error == 0 {
		r.NormalizedQuery = f.cstr(strings.ReplaceAll(input, "1", "$1"))
	}
	return r
}

func (f *testFake) FreeNormalizeResult(libpgquery.NormalizeResult) { f.frees.Add(1) }

func (f *testFake) Fingerprint(input string) libpgquery.FingerprintResult {
	f.enter(input)
	r := libpgquery.FingerprintResult{Error: f.errFor(input)}
	if r.Error == 0 {
		r.Fingerprint = 0x50fde20626009aba
		r.FingerprintStr = f.cstr("50fde20626009aba")
	}
	return r
}

func (f *testFake) FreeFingerprintResult(libpgquery.FingerprintResult) { f.frees.Add(1) }

func (f *testFake) splitOn(input string) libpgquery.SplitResult {
	r := libpgquery.SplitResult{Error: f.errFor(input)}
	if r.Error != 0 {
		return r
	}
	var ptrs []uintptr
	loc := 0
	for _, part := range strings.SplitAfter(input, ";") {
		body := strings.TrimSuffix(part, ";")
		if strings.TrimSpace(body) != "" {
			s := &libpgquery.SplitStmt{StmtLocation: int32(loc), StmtLen: int32(len(body))}
			f.mu.Lock()
			f.spans = append(f.spans, s)
			f.mu.Unlock()
			ptrs = append(ptrs, uintptr(unsafe.Pointer(s)))
		}
		loc += len(part)
	}
	r.NStmts = int32(len(ptrs))
	if len(ptrs) > 0 {
		f.mu.Lock()
		f.arrays = append(f.arrays, ptrs)
		f.mu.Unlock()
		r.Stmts = uintptr(unsafe.Pointer(&ptrs[0]))
	}
	return r
}

func (f *testFake) SplitWithParser(input string) libpgquery.SplitResult {
	f.enter(input)
	return f.splitOn(input)
}

func (f *testFake) SplitWithScanner(input string) libpgquery.SplitResult {
	f.enter(input)
	return f.splitOn(input)
}

func (f *testFake) FreeSplitResult(libpgquery.SplitResult) { f.frees.Add(1) }

func (f *testFake) ParsePlpgsql(input string) libpgquery.PlpgsqlParseResult {
	f.enter(input)
	r := libpgquery.PlpgsqlParseResult{Error: f.errFor(input)}
	if r.Error == 0 {
		r.PlpgsqlFuncs = f.cstr(`[{"PLpgSQL_function": {}}]`)
	}
	return r
}

func (f *testFake) FreePlpgsqlParseResult(libpgquery.PlpgsqlParseResult) { f.frees.Add(1) }

func (f *testFake) DeparseProtobuf(tree libpgquery.Protobuf) libpgquery.DeparseResult {
	f.enter("")
	data := tree.Data
	in := make([]byte, tree.Len)
	copy(in, unsafe.Slice((*byte)(*(*unsafe.Pointer)(unsafe.Pointer(&data))), tree.Len))
	f.deparseInput.Store(&in)
	return libpgquery.DeparseResult{Query: f.cstr("SELECT a, b FROM t")}
}

func (f *testFake) FreeDeparseResult(libpgquery.DeparseResult) { f.frees.Add(1) }

// newTestBridge wires a Bridge over the fake surface and the mini schema.
func newTestBridge(opts ...Option) (*Bridge, *testFake, *pgproto.Schema) {
	schema, err := pgproto.FromSource(map[string]string{"pg_query.proto": miniSchema})
	if err != nil {
		panic(err)
	}
	f := newTestFake()

	// Canned parse payload: SELECT a, b FROM t shaped tree with locations.
	parseBuf, err := schema.JSONToTree(`{"version": 170004, "stmts": [{"stmt": {"select_stmt": {` +
		`"target_list": [{"column_ref": {"fields": ["a"], "location": 7}},` +
		`{"column_ref": {"fields": ["b"], "location": 10}}]}}, "stmt_len": 18}]}`)
	if err != nil {
		panic(err)
	}
	f.parseBuf = parseBuf
	f.scanBuf = buildScanBuf()

	b := NewWithComponents(libpgquery.NewLibrary(f), schema, opts...)
	return b, f, schema
}

// buildScanBuf hand-encodes a mini-schema ScanResult for "SELECT 1":
// version 170004, tokens SELECT[0,6) and ICONST[7,8).
func buildScanBuf() []byte {
	varint := func(dst []byte, v uint64) []byte {
		for v >= 0x80 {
			dst = append(dst, byte(v)|0x80)
			v >>= 7
		}
		return append(dst, byte(v))
	}
	field := func(dst []byte, num int, v uint64) []byte {
		dst = append(dst, byte(num<<3)) // varint wire type
		return varint(dst, v)
	}

	var tok1, tok2 []byte
	tok1 = field(tok1, 2, 6)   // end = 6 (start 0 omitted)
	tok1 = field(tok1, 4, 597) // token = SELECT
	tok1 = field(tok1, 5, 4)   // keyword_kind = RESERVED_KEYWORD
	tok2 = field(tok2, 1, 7)   // start = 7
	tok2 = field(tok2, 2, 8)   // end = 8
	tok2 = field(tok2, 4, 260) // token = ICONST

	var out []byte
	out = field(out, 1, 170004) // version
	for _, tok := range [][]byte{tok1, tok2} {
		out = append(out, 0x12) // field 2, length-delimited
		out = varint(out, uint64(len(tok)))
		out = append(out, tok...)
	}
	return out
}
