package pgbridge

// Result is the part every operation result shares: the original input and
// an optional native diagnostic. Payload and Err are mutually exclusive:
// an empty Err means the operation's payload is present and valid. Results
// are immutable once returned.
type Result struct {
	// Query is the input text the operation ran against.
	Query string

	// Err is the native diagnostic for a rejected or failed input, empty
	// on success. Invalid SQL is an expected outcome, which is why this is
	// a field rather than a Go error.
	Err string
}

// Ok reports whether the operation succeeded.
func (r Result) Ok() bool { return r.Err == "" }

// ParseResult is the outcome of Parse: the textual parse tree.
type ParseResult struct {
	Result
	// Tree is the parse tree in the schema's JSON form, suitable for
	// Deparse. Empty when Err is set.
	Tree string
}

// NormalizeResult is the outcome of Normalize.
type NormalizeResult struct {
	Result
	// Normalized is the query with literal constants replaced by
	// placeholders ($1, $2, ...).
	Normalized string
}

// FingerprintResult is the outcome of Fingerprint: a structural hash that is
// insensitive to literal values.
type FingerprintResult struct {
	Result
	Fingerprint uint64
	Hex         string
}

// Statement is one statement span produced by Split. Location and Length are
// byte offsets into the UTF-8 input; Text is the reconstructed substring,
// empty when the native offsets do not resolve to a valid range.
type Statement struct {
	Location int
	Length   int
	Text     string
}

// SplitResult is the outcome of Split, in input order.
type SplitResult struct {
	Result
	Statements []Statement
}

// Token is one lexer token from Scan. Offsets are bytes into the UTF-8
// input. Keyword is empty for non-keyword tokens.
type Token struct {
	Start     int
	End       int
	Text      string
	Kind      string
	KindValue int32
	Keyword   string
}

// ScanResult is the outcome of Scan: the token stream plus the dialect
// version number the native library reports.
type ScanResult struct {
	Result
	Version int32
	Tokens  []Token
}

// DeparseResult is the outcome of Deparse. Query holds the input tree text;
// SQL the reconstructed statement text.
type DeparseResult struct {
	Result
	SQL string
}

// PLpgSQLResult is the outcome of ParsePLpgSQL: the parsed function bodies
// as a JSON array.
type PLpgSQLResult struct {
	Result
	Functions string
}
