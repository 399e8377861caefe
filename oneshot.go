package pgbridge

// One-shot variants for callers who do not want to manage a long-lived
// Bridge: each constructs a transient Bridge, runs a single operation, and
// closes it. Loading the shared library and compiling the schema dominate
// the cost, so anything beyond occasional use should hold a Bridge instead.

func oneShot[T any](opts []Option, op func(*Bridge) (T, error)) (T, error) {
	var zero T
	b, err := New(opts...)
	if err != nil {
		return zero, err
	}
	defer b.Close()
	return op(b)
}

// Parse is the one-shot form of Bridge.Parse.
func Parse(query string, opts ...Option) (*ParseResult, error) {
	return oneShot(opts, func(b *Bridge) (*ParseResult, error) { return b.Parse(query) })
}

// Normalize is the one-shot form of Bridge.Normalize.
func Normalize(query string, opts ...Option) (*NormalizeResult, error) {
	return oneShot(opts, func(b *Bridge) (*NormalizeResult, error) { return b.Normalize(query) })
}

// Fingerprint is the one-shot form of Bridge.Fingerprint.
func Fingerprint(query string, opts ...Option) (*FingerprintResult, error) {
	return oneShot(opts, func(b *Bridge) (*FingerprintResult, error) { return b.Fingerprint(query) })
}

// Deparse is the one-shot form of Bridge.Deparse.
func Deparse(tree string, opts ...Option) (*DeparseResult, error) {
	return oneShot(opts, func(b *Bridge) (*DeparseResult, error) { return b.Deparse(tree) })
}

// Split is the one-shot form of Bridge.Split.
func Split(query string, usingParser bool, opts ...Option) (*SplitResult, error) {
	return oneShot(opts, func(b *Bridge) (*SplitResult, error) { return b.Split(query, usingParser) })
}

// Scan is the one-shot form of Bridge.Scan.
func Scan(query string, opts ...Option) (*ScanResult, error) {
	return oneShot(opts, func(b *Bridge) (*ScanResult, error) { return b.Scan(query) })
}

// ParsePLpgSQL is the one-shot form of Bridge.ParsePLpgSQL.
func ParsePLpgSQL(definition string, opts ...Option) (*PLpgSQLResult, error) {
	return oneShot(opts, func(b *Bridge) (*PLpgSQLResult, error) { return b.ParsePLpgSQL(definition) })
}

// IsValid is the one-shot form of Bridge.IsValid.
func IsValid(query string, opts ...Option) (bool, error) {
	return oneShot(opts, func(b *Bridge) (bool, error) { return b.IsValid(query) })
}

// GetError is the one-shot form of Bridge.GetError.
func GetError(query string, opts ...Option) (string, error) {
	return oneShot(opts, func(b *Bridge) (string, error) { return b.GetError(query) })
}
