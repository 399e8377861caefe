package libpgquery

// The structs below mirror the C result layouts of libpg_query exactly.
// Native pointers are held as uintptr: they are C heap addresses, never
// Go-managed memory, and keeping them out of Go pointer types stops the GC
// and go vet from drawing wrong conclusions about them. All decoding happens
// through the helpers in decode.go while the envelope is still live; after
// the paired free call an envelope must not be touched again.

// ErrorStruct mirrors PgQueryError. Only Message reaches callers; the rest is
// diagnostic metadata. The bridge only ever reads this struct, it never
// allocates one.
type ErrorStruct struct {
	Message   uintptr // char*
	Funcname  uintptr // char*
	Filename  uintptr // char*
	Lineno    int32
	Cursorpos int32 // character offset into the offending input, 1-based
	Context   uintptr
}

// Protobuf mirrors PgQueryProtobuf, a length+pointer byte buffer.
type Protobuf struct {
	Len  uint64 // size_t
	Data uintptr
}

// ParseResult mirrors PgQueryParseResult.
type ParseResult struct {
	ParseTree    uintptr // char*, JSON
	StderrBuffer uintptr
	Error        uintptr // *ErrorStruct
}

// ProtobufParseResult mirrors PgQueryProtobufParseResult.
type ProtobufParseResult struct {
	ParseTree    Protobuf
	StderrBuffer uintptr
	Error        uintptr
}

// ScanResult mirrors PgQueryScanResult.
type ScanResult struct {
	Pbuf         Protobuf
	StderrBuffer uintptr
	Error        uintptr
}

// NormalizeResult mirrors PgQueryNormalizeResult.
type NormalizeResult struct {
	NormalizedQuery uintptr
	Error           uintptr
}

// FingerprintResult mirrors PgQueryFingerprintResult.
type FingerprintResult struct {
	Fingerprint    uint64
	FingerprintStr uintptr
	StderrBuffer   uintptr
	Error          uintptr
}

// SplitStmt mirrors PgQuerySplitStmt: a byte offset and byte length into the
// original input.
type SplitStmt struct {
	StmtLocation int32
	StmtLen      int32
}

// SplitResult mirrors PgQuerySplitResult.
type SplitResult struct {
	Stmts        uintptr // PgQuerySplitStmt**
	NStmts       int32
	StderrBuffer uintptr
	Error        uintptr
}

// PlpgsqlParseResult mirrors PgQueryPlpgsqlParseResult.
type PlpgsqlParseResult struct {
	PlpgsqlFuncs uintptr // char*, JSON array of functions
	Error        uintptr
}

// DeparseResult mirrors PgQueryDeparseResult.
type DeparseResult struct {
	Query uintptr
	Error uintptr
}

// ABI is the raw native call surface: one method per entry point plus its
// paired free. Library never inspects an envelope before the call method
// returns, and issues exactly one free per call on every path. The production
// implementation is built by the Loader; tests drive the same extraction and
// free-pairing machinery through a pure-Go fake.
type ABI interface {
	Parse(input string) ParseResult
	FreeParseResult(ParseResult)

	ParseProtobuf(input string) ProtobufParseResult
	FreeProtobufParseResult(ProtobufParseResult)

	Scan(input string) ScanResult
	FreeScanResult(ScanResult)

	Normalize(input string) NormalizeResult
	FreeNormalizeResult(NormalizeResult)

	Fingerprint(input string) FingerprintResult
	FreeFingerprintResult(FingerprintResult)

	SplitWithParser(input string) SplitResult
	SplitWithScanner(input string) SplitResult
	FreeSplitResult(SplitResult)

	ParsePlpgsql(input string) PlpgsqlParseResult
	FreePlpgsqlParseResult(PlpgsqlParseResult)

	DeparseProtobuf(tree Protobuf) DeparseResult
	FreeDeparseResult(DeparseResult)
}

// dlopenABI implements ABI over function pointers registered from the loaded
// shared library.
type dlopenABI struct {
	parse                   func(string) ParseResult
	freeParseResult         func(ParseResult)
	parseProtobuf           func(string) ProtobufParseResult
	freeProtobufParseResult func(ProtobufParseResult)
	scan                    func(string) ScanResult
	freeScanResult          func(ScanResult)
	normalize               func(string) NormalizeResult
	freeNormalizeResult     func(NormalizeResult)
	fingerprint             func(string) FingerprintResult
	freeFingerprintResult   func(FingerprintResult)
	splitWithParser         func(string) SplitResult
	splitWithScanner        func(string) SplitResult
	freeSplitResult         func(SplitResult)
	parsePlpgsql            func(string) PlpgsqlParseResult
	freePlpgsqlParseResult  func(PlpgsqlParseResult)
	deparseProtobuf         func(Protobuf) DeparseResult
	freeDeparseResult       func(DeparseResult)
}

func (a *dlopenABI) Parse(input string) ParseResult          { return a.parse(input) }
func (a *dlopenABI) FreeParseResult(r ParseResult)           { a.freeParseResult(r) }
func (a *dlopenABI) ParseProtobuf(input string) ProtobufParseResult {
	return a.parseProtobuf(input)
}
func (a *dlopenABI) FreeProtobufParseResult(r ProtobufParseResult) { a.freeProtobufParseResult(r) }
func (a *dlopenABI) Scan(input string) ScanResult                  { return a.scan(input) }
func (a *dlopenABI) FreeScanResult(r ScanResult)                   { a.freeScanResult(r) }
func (a *dlopenABI) Normalize(input string) NormalizeResult        { return a.normalize(input) }
func (a *dlopenABI) FreeNormalizeResult(r NormalizeResult)         { a.freeNormalizeResult(r) }
func (a *dlopenABI) Fingerprint(input string) FingerprintResult    { return a.fingerprint(input) }
func (a *dlopenABI) FreeFingerprintResult(r FingerprintResult)     { a.freeFingerprintResult(r) }
func (a *dlopenABI) SplitWithParser(input string) SplitResult      { return a.splitWithParser(input) }
func (a *dlopenABI) SplitWithScanner(input string) SplitResult     { return a.splitWithScanner(input) }
func (a *dlopenABI) FreeSplitResult(r SplitResult)                 { a.freeSplitResult(r) }
func (a *dlopenABI) ParsePlpgsql(input string) PlpgsqlParseResult  { return a.parsePlpgsql(input) }
func (a *dlopenABI) FreePlpgsqlParseResult(r PlpgsqlParseResult)   { a.freePlpgsqlParseResult(r) }
func (a *dlopenABI) DeparseProtobuf(t Protobuf) DeparseResult      { return a.deparseProtobuf(t) }
func (a *dlopenABI) FreeDeparseResult(r DeparseResult)             { a.freeDeparseResult(r) }
