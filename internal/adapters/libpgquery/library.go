package libpgquery

// Library wraps an ABI with the result/error extraction discipline: every
// method issues exactly one native call, defers its paired free before
// touching any envelope field, copies payload bytes into Go memory while the
// envelope is live, and reports native rejection as a *NativeError value.
type Library struct {
	abi ABI
}

// NewLibrary builds a Library over an already-loaded ABI. Exposed so tests
// and embedders can substitute the call surface; normal construction goes
// through Open.
func NewLibrary(abi ABI) *Library {
	return &Library{abi: abi}
}

// Open loads libpg_query from the given search paths (or the defaults when
// empty) and returns a Library over it.
func Open(searchPaths []string) (*Library, error) {
	abi, err := Load(searchPaths)
	if err != nil {
		return nil, err
	}
	return NewLibrary(abi), nil
}

// NativeError is a diagnostic reported by libpg_query itself: a rejected
// input or an internal failure. It is an expected outcome for invalid SQL,
// not a bridge defect.
type NativeError struct {
	Message   string
	Funcname  string
	Filename  string
	Lineno    int
	Cursorpos int // 1-based character offset into the offending input
	Context   string
}

func (e *NativeError) Error() string { return e.Message }

// nativeError decodes the multi-level error chain: envelope error pointer ->
// struct -> message, with a per-operation sentinel whenever a link is null.
func nativeError(op string, addr uintptr) *NativeError {
	es := errorAt(addr)
	if es == nil {
		return nil
	}
	msg := goString(es.Message)
	if msg == "" {
		msg = "unknown error in " + op
	}
	return &NativeError{
		Message:   msg,
		Funcname:  goString(es.Funcname),
		Filename:  goString(es.Filename),
		Lineno:    int(es.Lineno),
		Cursorpos: int(es.Cursorpos),
		Context:   goString(es.Context),
	}
}

// protocolError is the synthesized diagnostic for an envelope carrying
// neither payload nor error. It indicates a native/bridge mismatch but is
// still surfaced as an ordinary diagnostic so one bad input cannot take down
// a batch.
func protocolError(op string) *NativeError {
	return &NativeError{Message: "no result produced by " + op}
}

// Parse invokes pg_query_parse and returns the tree as native JSON text.
func (l *Library) Parse(input string) (string, error) {
	r := l.abi.Parse(input)
	defer l.abi.FreeParseResult(r)
	if err := nativeError("pg_query_parse", r.Error); err != nil {
		return "", err
	}
	tree := goString(r.ParseTree)
	if tree == "" {
		return "", protocolError("pg_query_parse")
	}
	return tree, nil
}

// ParseProtobuf invokes pg_query_parse_protobuf and returns a copy of the
// serialized tree buffer.
func (l *Library) ParseProtobuf(input string) ([]byte, error) {
	r := l.abi.ParseProtobuf(input)
	defer l.abi.FreeProtobufParseResult(r)
	if err := nativeError("pg_query_parse_protobuf", r.Error); err != nil {
		return nil, err
	}
	buf := goBytes(r.ParseTree)
	if len(buf) == 0 {
		return nil, protocolError("pg_query_parse_protobuf")
	}
	return buf, nil
}

// Scan invokes pg_query_scan and returns a copy of the serialized scan
// result buffer.
func (l *Library) Scan(input string) ([]byte, error) {
	r := l.abi.Scan(input)
	defer l.abi.FreeScanResult(r)
	if err := nativeError("pg_query_scan", r.Error); err != nil {
		return nil, err
	}
	buf := goBytes(r.Pbuf)
	if len(buf) == 0 {
		return nil, protocolError("pg_query_scan")
	}
	return buf, nil
}

// Normalize invokes pg_query_normalize. An empty normalized form for a
// non-empty input is a protocol violation; for empty input it is the answer.
func (l *Library) Normalize(input string) (string, error) {
	r := l.abi.Normalize(input)
	defer l.abi.FreeNormalizeResult(r)
	if err := nativeError("pg_query_normalize", r.Error); err != nil {
		return "", err
	}
	if r.NormalizedQuery == 0 {
		return "", protocolError("pg_query_normalize")
	}
	return goString(r.NormalizedQuery), nil
}

// FingerprintValue is the native fingerprint pair: the numeric hash and its
// canonical hex form.
type FingerprintValue struct {
	Value uint64
	Hex   string
}

// Fingerprint invokes pg_query_fingerprint.
func (l *Library) Fingerprint(input string) (FingerprintValue, error) {
	r := l.abi.Fingerprint(input)
	defer l.abi.FreeFingerprintResult(r)
	if err := nativeError("pg_query_fingerprint", r.Error); err != nil {
		return FingerprintValue{}, err
	}
	hex := goString(r.FingerprintStr)
	if hex == "" {
		return FingerprintValue{}, protocolError("pg_query_fingerprint")
	}
	return FingerprintValue{Value: r.Fingerprint, Hex: hex}, nil
}

// Span is a native-reported statement span: byte offset and byte length into
// the UTF-8 input.
type Span struct {
	Location int
	Length   int
}

// Split invokes pg_query_split_with_parser (usingParser) or
// pg_query_split_with_scanner. The scanner variant tolerates syntax errors
// inside individual statements.
func (l *Library) Split(input string, usingParser bool) ([]Span, error) {
	var r SplitResult
	op := "pg_query_split_with_scanner"
	if usingParser {
		op = "pg_query_split_with_parser"
		r = l.abi.SplitWithParser(input)
	} else {
		r = l.abi.SplitWithScanner(input)
	}
	defer l.abi.FreeSplitResult(r)
	if err := nativeError(op, r.Error); err != nil {
		return nil, err
	}
	if r.NStmts > 0 && r.Stmts == 0 {
		return nil, protocolError(op)
	}
	spans := make([]Span, 0, r.NStmts)
	for i := 0; i < int(r.NStmts); i++ {
		s := splitStmtAt(r.Stmts, i)
		spans = append(spans, Span{Location: int(s.StmtLocation), Length: int(s.StmtLen)})
	}
	return spans, nil
}

// ParsePlpgsql invokes pg_query_parse_plpgsql and returns the function list
// as native JSON text.
func (l *Library) ParsePlpgsql(input string) (string, error) {
	r := l.abi.ParsePlpgsql(input)
	defer l.abi.FreePlpgsqlParseResult(r)
	if err := nativeError("pg_query_parse_plpgsql", r.Error); err != nil {
		return "", err
	}
	funcs := goString(r.PlpgsqlFuncs)
	if funcs == "" {
		return "", protocolError("pg_query_parse_plpgsql")
	}
	return funcs, nil
}

// DeparseProtobuf invokes pg_query_deparse_protobuf with a serialized tree
// buffer and returns the reconstructed SQL. The buffer crosses the boundary
// pinned for exactly the duration of the call; pinning and the paired free
// are both scoped here.
func (l *Library) DeparseProtobuf(tree []byte) (string, error) {
	if len(tree) == 0 {
		return "", protocolError("pg_query_deparse_protobuf")
	}
	buf, unpin := pinBuffer(tree)
	defer unpin()
	r := l.abi.DeparseProtobuf(buf)
	defer l.abi.FreeDeparseResult(r)
	if err := nativeError("pg_query_deparse_protobuf", r.Error); err != nil {
		return "", err
	}
	sql := goString(r.Query)
	if sql == "" {
		return "", protocolError("pg_query_deparse_protobuf")
	}
	return sql, nil
}
