// Package libpgquery is the native call surface: it loads the libpg_query
// shared library at runtime via purego and exposes each entry point together
// with its paired free function. No cgo is involved; the library is located
// in configured search paths and dlopen'd once.
//
// Memory discipline: every native call allocates a result envelope owned by
// this process until the matching free runs. Library (library.go) pairs each
// call with exactly one deferred free; nothing above this package ever sees a
// live envelope.
package libpgquery

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/ebitengine/purego"
)

// ErrLibraryNotFound reports that no libpg_query shared library was found in
// any search path.
type ErrLibraryNotFound struct {
	Paths []string
}

func (e *ErrLibraryNotFound) Error() string {
	return fmt.Sprintf("libpg_query: shared library not found in search paths: %s",
		strings.Join(e.Paths, ", "))
}

// libBaseNames are the file names tried in each search directory, most
// specific first.
var libBaseNames = []string{"libpg_query", "pg_query"}

// LibExtension returns the shared library extension for the current platform.
func LibExtension() string {
	if runtime.GOOS == "darwin" {
		return ".dylib"
	}
	return ".so"
}

// DefaultSearchPaths returns the default directories searched for the shared
// library. PGBRIDGE_LIBRARY_PATH (colon-separated) is searched first, then
// the conventional install locations.
func DefaultSearchPaths() []string {
	var paths []string
	if env := os.Getenv("PGBRIDGE_LIBRARY_PATH"); env != "" {
		paths = append(paths, filepath.SplitList(env)...)
	}
	paths = append(paths, "/usr/local/lib", "/usr/lib", "/opt/homebrew/lib")
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".pgbridge", "lib"))
	}
	return paths
}

// Locate returns the path of the first libpg_query shared library found in
// the given search paths, or "" if none exists.
func Locate(searchPaths []string) string {
	ext := LibExtension()
	for _, dir := range searchPaths {
		for _, base := range libBaseNames {
			candidate := filepath.Join(dir, base+ext)
			if _, err := os.Stat(candidate); err == nil {
				return candidate
			}
		}
	}
	return ""
}

// Load locates the shared library, dlopens it, and registers every entry
// point. The returned ABI is immutable after load and safe for concurrent
// callers; the handle stays open for the life of the process.
func Load(searchPaths []string) (ABI, error) {
	if len(searchPaths) == 0 {
		searchPaths = DefaultSearchPaths()
	}
	soPath := Locate(searchPaths)
	if soPath == "" {
		return nil, &ErrLibraryNotFound{Paths: searchPaths}
	}
	return loadFrom(soPath)
}

func loadFrom(soPath string) (ABI, error) {
	handle, err := purego.Dlopen(soPath, purego.RTLD_NOW|purego.RTLD_GLOBAL)
	if err != nil {
		return nil, fmt.Errorf("libpg_query: dlopen %s: %w", soPath, err)
	}

	abi := &dlopenABI{}
	purego.RegisterLibFunc(&abi.parse, handle, "pg_query_parse")
	purego.RegisterLibFunc(&abi.freeParseResult, handle, "pg_query_free_parse_result")
	purego.RegisterLibFunc(&abi.parseProtobuf, handle, "pg_query_parse_protobuf")
	purego.RegisterLibFunc(&abi.freeProtobufParseResult, handle, "pg_query_free_protobuf_parse_result")
	purego.RegisterLibFunc(&abi.scan, handle, "pg_query_scan")
	purego.RegisterLibFunc(&abi.freeScanResult, handle, "pg_query_free_scan_result")
	purego.RegisterLibFunc(&abi.normalize, handle, "pg_query_normalize")
	purego.RegisterLibFunc(&abi.freeNormalizeResult, handle, "pg_query_free_normalize_result")
	purego.RegisterLibFunc(&abi.fingerprint, handle, "pg_query_fingerprint")
	purego.RegisterLibFunc(&abi.freeFingerprintResult, handle, "pg_query_free_fingerprint_result")
	purego.RegisterLibFunc(&abi.splitWithParser, handle, "pg_query_split_with_parser")
	purego.RegisterLibFunc(&abi.splitWithScanner, handle, "pg_query_split_with_scanner")
	purego.RegisterLibFunc(&abi.freeSplitResult, handle, "pg_query_free_split_result")
	purego.RegisterLibFunc(&abi.parsePlpgsql, handle, "pg_query_parse_plpgsql")
	purego.RegisterLibFunc(&abi.freePlpgsqlParseResult, handle, "pg_query_free_plpgsql_parse_result")
	purego.RegisterLibFunc(&abi.deparseProtobuf, handle, "pg_query_deparse_protobuf")
	purego.RegisterLibFunc(&abi.freeDeparseResult, handle, "pg_query_free_deparse_result")

	// Optional: newer releases expose an explicit init. Resolve it by hand so
	// its absence is not fatal.
	if sym, err := purego.Dlsym(handle, "pg_query_init"); err == nil && sym != 0 {
		var initFn func()
		purego.RegisterFunc(&initFn, sym)
		initFn()
	}

	return abi, nil
}
