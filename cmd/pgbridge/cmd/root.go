package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/JaredMSFT/pgbridge"
	"github.com/JaredMSFT/pgbridge/internal/config"
)

var (
	flagConfig    string
	flagDialect   int
	flagLocations bool
	flagLibPaths  []string
	flagProtoPath []string
)

var rootCmd = &cobra.Command{
	Use:   "pgbridge",
	Short: "pgbridge — PostgreSQL query toolkit",
	Long:  "Parse, normalize, fingerprint, split, scan, and deparse PostgreSQL queries using the libpg_query native library.",
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "config file (default: pgbridge.yaml in cwd)")
	rootCmd.PersistentFlags().IntVar(&flagDialect, "dialect", 0, "grammar dialect version (e.g. 170000)")
	rootCmd.PersistentFlags().BoolVar(&flagLocations, "locations", false, "include source offsets in parse trees")
	rootCmd.PersistentFlags().StringSliceVar(&flagLibPaths, "lib-path", nil, "extra directories to search for libpg_query")
	rootCmd.PersistentFlags().StringSliceVar(&flagProtoPath, "proto-path", nil, "extra directories to search for pg_query.proto")

	rootCmd.AddCommand(parseCmd)
	rootCmd.AddCommand(normalizeCmd)
	rootCmd.AddCommand(fingerprintCmd)
	rootCmd.AddCommand(splitCmd)
	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(deparseCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(tablesCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(watchCmd)
}

// loadConfig merges the config file with command-line overrides.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return nil, err
	}
	if flagDialect != 0 {
		cfg.DialectVersion = flagDialect
	}
	if flagLocations {
		cfg.IncludeLocations = true
	}
	cfg.LibraryPaths = append(flagLibPaths, cfg.LibraryPaths...)
	cfg.SchemaPaths = append(flagProtoPath, cfg.SchemaPaths...)
	return cfg, nil
}

// openBridge builds a bridge from the resolved configuration.
func openBridge() (*pgbridge.Bridge, *config.Config, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	opts := []pgbridge.Option{
		pgbridge.WithDialectVersion(cfg.DialectVersion),
		pgbridge.WithLibraryPaths(cfg.LibraryPaths...),
		pgbridge.WithSchemaPaths(cfg.SchemaPaths...),
	}
	if cfg.IncludeLocations {
		opts = append(opts, pgbridge.WithIncludeLocations())
	}
	b, err := pgbridge.New(opts...)
	if err != nil {
		return nil, nil, err
	}
	return b, cfg, nil
}

// readQuery resolves the SQL input for a command: the joined arguments, or
// stdin when no arguments are given (or the sole argument is "-").
func readQuery(args []string) (string, error) {
	if len(args) == 0 || (len(args) == 1 && args[0] == "-") {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(data), nil
	}
	return strings.Join(args, " "), nil
}
