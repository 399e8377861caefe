// Package config loads CLI configuration for pgbridge: defaults, then an
// optional pgbridge.yaml, then PGBRIDGE_* environment variables, each layer
// overriding the previous.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Config is the resolved CLI configuration.
type Config struct {
	// LibraryPaths are extra directories searched for the libpg_query
	// shared library, ahead of the platform defaults.
	LibraryPaths []string `koanf:"library_paths"`

	// SchemaPaths are extra directories searched for pg_query.proto.
	SchemaPaths []string `koanf:"schema_paths"`

	// DialectVersion is the grammar version passed to the bridge.
	DialectVersion int `koanf:"dialect_version"`

	// IncludeLocations embeds source offsets in printed parse trees.
	IncludeLocations bool `koanf:"include_locations"`

	// StatsDB is the path of the fingerprint stats database.
	StatsDB string `koanf:"stats_db"`
}

// candidateFiles are tried in order when no explicit config path is given.
var candidateFiles = []string{"pgbridge.yaml", "pgbridge.yml"}

// Load resolves the configuration. explicitPath, when non-empty, names a
// config file that must exist; otherwise pgbridge.yaml in the working
// directory is used if present.
func Load(explicitPath string) (*Config, error) {
	k := koanf.New(".")

	defaults := map[string]any{
		"dialect_version":   170000,
		"include_locations": false,
		"stats_db":          defaultStatsDB(),
	}
	if err := k.Load(confmap.Provider(defaults, "."), nil); err != nil {
		return nil, fmt.Errorf("config: defaults: %w", err)
	}

	path := findConfigFile(explicitPath)
	if explicitPath != "" && path == "" {
		return nil, fmt.Errorf("config: file not found: %s", explicitPath)
	}
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("config: load %s: %w", path, err)
		}
	}

	// PGBRIDGE_DIALECT_VERSION -> dialect_version, etc.
	err := k.Load(env.Provider("PGBRIDGE_", ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, "PGBRIDGE_"))
	}), nil)
	if err != nil {
		return nil, fmt.Errorf("config: environment: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}
	return &cfg, nil
}

func findConfigFile(explicit string) string {
	if explicit != "" {
		if _, err := os.Stat(explicit); err == nil {
			return explicit
		}
		return ""
	}
	for _, name := range candidateFiles {
		if _, err := os.Stat(name); err == nil {
			return name
		}
	}
	return ""
}

func defaultStatsDB() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "pgbridge-stats.db"
	}
	return home + "/.pgbridge/stats.db"
}
