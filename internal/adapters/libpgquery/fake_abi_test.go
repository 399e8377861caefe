package libpgquery

import (
	"strings"
	"unsafe"
)

// fakeABI drives the extraction and free-pairing machinery without a real
// shared library. Envelopes are fabricated over Go-allocated buffers held in
// allocs so they stay reachable until the fake is garbage.
//
// Behavior: inputs containing "SELEKT" produce an error envelope; inputs
// containing "EMPTY" produce a success envelope with a null payload (the
// protocol-violation case); everything else succeeds with a canned payload.
type fakeABI struct {
	calls map[string]int
	frees map[string]int

	// bareError, when set, omits the message from error envelopes to
	// exercise the unknown-error sentinel.
	bareError bool

	// lastDeparseInput captures the bytes read back through the pinned
	// buffer during DeparseProtobuf.
	lastDeparseInput []byte

	allocs [][]byte
	errs   []*ErrorStruct
	stmts  [][]uintptr
	spans  []*SplitStmt
}

func newFakeABI() *fakeABI {
	return &fakeABI{calls: map[string]int{}, frees: map[string]int{}}
}

func (f *fakeABI) cstr(s string) uintptr {
	b := append([]byte(s), 0)
	f.allocs = append(f.allocs, b)
	return uintptr(unsafe.Pointer(&b[0]))
}

func (f *fakeABI) buf(b []byte) Protobuf {
	if len(b) == 0 {
		return Protobuf{}
	}
	f.allocs = append(f.allocs, b)
	return Protobuf{Len: uint64(len(b)), Data: uintptr(unsafe.Pointer(&b[0]))}
}

func (f *fakeABI) errFor(input string) uintptr {
	if !strings.Contains(input, "SELEKT") {
		return 0
	}
	es := &ErrorStruct{
		Funcname:  f.cstr("base_yyerror"),
		Filename:  f.cstr("scan.l"),
		Lineno:    1176,
		Cursorpos: int32(strings.Index(input, "SELEKT") + 1),
	}
	if !f.bareError {
		es.Message = f.cstr(`syntax error at or near "SELEKT"`)
	}
	f.errs = append(f.errs, es)
	return uintptr(unsafe.Pointer(es))
}

func (f *fakeABI) totalCalls() int {
	n := 0
	for _, c := range f.calls {
		n += c
	}
	return n
}

func (f *fakeABI) totalFrees() int {
	n := 0
	for _, c := range f.frees {
		n += c
	}
	return n
}

func (f *fakeABI) Parse(input string) ParseResult {
	f.calls["parse"]++
	r := ParseResult{Error: f.errFor(input)}
	if r.Error == 0 && !strings.Contains(input, "EMPTY") {
		r.ParseTree = f.cstr(`{"version":170004,"stmts":[{"stmt":{"SelectStmt":{}}}]}`)
	}
	return r
}

func (f *fakeABI) FreeParseResult(ParseResult) { f.frees["parse"]++ }

func (f *fakeABI) ParseProtobuf(input string) ProtobufParseResult {
	f.calls["parse_protobuf"]++
	r := ProtobufParseResult{Error: f.errFor(input)}
	if r.Error == 0 && !strings.Contains(input, "EMPTY") {
		r.ParseTree = f.buf([]byte{0x08, 0x01})
	}
	return r
}

func (f *fakeABI) FreeProtobufParseResult(ProtobufParseResult) { f.frees["parse_protobuf"]++ }

func (f *fakeABI) Scan(input string) ScanResult {
	f.calls["scan"]++
	r := ScanResult{Error: f.errFor(input)}
	if r.Error == 0 && !strings.Contains(input, "EMPTY") {
		r.Pbuf = f.buf([]byte{0x08, 0x02})
	}
	return r
}

func (f *fakeABI) FreeScanResult(ScanResult) { f.frees["scan"]++ }

func (f *fakeABI) Normalize(input string) NormalizeResult {
	f.calls["normalize"]++
	r := NormalizeResult{Error: f.errFor(input)}
	if r.Error == 0 && !strings.Contains(input, "EMPTY") {
		r.NormalizedQuery = f.cstr(strings.ReplaceAll(input, "1", "$1"))
	}
	return r
}

func (f *fakeABI) FreeNormalizeResult(NormalizeResult) { f.frees["normalize"]++ }

func (f *fakeABI) Fingerprint(input string) FingerprintResult {
	f.calls["fingerprint"]++
	r := FingerprintResult{Error: f.errFor(input)}
	if r.Error == 0 && !strings.Contains(input, "EMPTY") {
		r.Fingerprint = 0x50fde20626009aba
		r.FingerprintStr = f.cstr("50fde20626009aba")
	}
	return r
}

func (f *fakeABI) FreeFingerprintResult(FingerprintResult) { f.frees["fingerprint"]++ }

// splitOn fabricates a PgQuerySplitStmt** over semicolon-separated input.
func (f *fakeABI) splitOn(input string) SplitResult {
	r := SplitResult{Error: f.errFor(input)}
	if r.Error != 0 {
		return r
	}
	var ptrs []uintptr
	loc := 0
	for _, part := range strings.SplitAfter(input, ";") {
		body := strings.TrimSuffix(part, ";")
		if strings.TrimSpace(body) != "" {
			s := &SplitStmt{StmtLocation: int32(loc), StmtLen: int32(len(body))}
			f.spans = append(f.spans, s)
			ptrs = append(ptrs, uintptr(unsafe.Pointer(s)))
		}
		loc += len(part)
	}
	r.NStmts = int32(len(ptrs))
	if len(ptrs) > 0 {
		f.stmts = append(f.stmts, ptrs)
		r.Stmts = uintptr(unsafe.Pointer(&ptrs[0]))
	}
	return r
}

func (f *fakeABI) SplitWithParser(input string) SplitResult {
	f.calls["split"]++
	return f.splitOn(input)
}

func (f *fakeABI) SplitWithScanner(input string) SplitResult {
	f.calls["split"]++
	return f.splitOn(input)
}

func (f *fakeABI) FreeSplitResult(SplitResult) { f.frees["split"]++ }

func (f *fakeABI) ParsePlpgsql(input string) PlpgsqlParseResult {
	f.calls["plpgsql"]++
	r := PlpgsqlParseResult{Error: f.errFor(input)}
	if r.Error == 0 && !strings.Contains(input, "EMPTY") {
		r.PlpgsqlFuncs = f.cstr(`[{"PLpgSQL_function":{}}]`)
	}
	return r
}

func (f *fakeABI) FreePlpgsqlParseResult(PlpgsqlParseResult) { f.frees["plpgsql"]++ }

func (f *fakeABI) DeparseProtobuf(tree Protobuf) DeparseResult {
	f.calls["deparse"]++
	f.lastDeparseInput = goBytes(tree)
	return DeparseResult{Query: f.cstr("SELECT 1")}
}

func (f *fakeABI) FreeDeparseResult(DeparseResult) { f.frees["deparse"]++ }
