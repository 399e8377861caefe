package pgbridge

// DefaultDialectVersion is the newest grammar version the bridge targets,
// expressed as a PostgreSQL version number (major * 10000).
const DefaultDialectVersion = 170000

// supportedDialects are the grammar major versions a bundled libpg_query can
// target. The native library is built against exactly one of them.
var supportedDialects = map[int]bool{
	130000: true,
	140000: true,
	150000: true,
	160000: true,
	170000: true,
}

// Options configures a Bridge. Values are immutable once the Bridge is
// constructed.
type Options struct {
	// IncludeLocations embeds source-offset metadata in textual parse
	// trees. Off by default so that tree output is position-independent.
	IncludeLocations bool

	// DialectVersion selects the grammar variant, as a PostgreSQL version
	// number rounded to the major (e.g. 170000).
	DialectVersion int

	// LibraryPaths overrides the search paths for the libpg_query shared
	// library. Empty means the platform defaults.
	LibraryPaths []string

	// SchemaPaths overrides the search paths for pg_query.proto. Empty
	// means the platform defaults.
	SchemaPaths []string
}

// Option mutates Options during construction.
type Option func(*Options)

// WithIncludeLocations embeds source-offset metadata in parse trees.
func WithIncludeLocations() Option {
	return func(o *Options) { o.IncludeLocations = true }
}

// WithDialectVersion targets a specific grammar major version.
func WithDialectVersion(version int) Option {
	return func(o *Options) { o.DialectVersion = version }
}

// WithLibraryPaths sets the directories searched for the shared library.
func WithLibraryPaths(paths ...string) Option {
	return func(o *Options) { o.LibraryPaths = paths }
}

// WithSchemaPaths sets the directories searched for pg_query.proto.
func WithSchemaPaths(paths ...string) Option {
	return func(o *Options) { o.SchemaPaths = paths }
}

func buildOptions(opts []Option) Options {
	o := Options{DialectVersion: DefaultDialectVersion}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
