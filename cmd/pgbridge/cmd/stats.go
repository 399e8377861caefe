package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/JaredMSFT/pgbridge"
	"github.com/JaredMSFT/pgbridge/internal/adapters/boltstore"
)

var statsCmd = &cobra.Command{
	Use:   "stats [file.sql | sql]",
	Short: "Record query fingerprints and show the hottest query shapes",
	Long:  "With input (a .sql file or literal SQL), splits it into statements, fingerprints each and records the shapes in the stats database. Without input, prints the most frequent shapes seen so far.",
	RunE:  runStats,
}

var statsTop int

func init() {
	statsCmd.Flags().IntVar(&statsTop, "top", 10, "number of shapes to show")
}

func runStats(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if len(args) == 0 {
		return showStats(cfg.StatsDB)
	}
	return recordStats(cfg.StatsDB, args)
}

func recordStats(dbPath string, args []string) error {
	script, err := readScript(args)
	if err != nil {
		return err
	}
	b, _, err := openBridge()
	if err != nil {
		return err
	}
	defer b.Close()

	split, err := b.Split(script, false)
	if err != nil {
		return err
	}
	if !split.Ok() {
		return fmt.Errorf("split: %s", split.Err)
	}

	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return err
	}
	store, err := boltstore.Open(dbPath)
	if err != nil {
		return err
	}
	defer store.Close()

	for _, stmt := range split.Statements {
		if err := recordOne(b, store, stmt.Text); err != nil {
			return err
		}
	}
	return nil
}

func recordOne(b *pgbridge.Bridge, store *boltstore.Store, query string) error {
	fp, err := b.Fingerprint(query)
	if err != nil {
		return err
	}
	if !fp.Ok() {
		fmt.Fprintf(os.Stderr, "skipped: %s\n", fp.Err)
		return nil
	}
	norm, err := b.Normalize(query)
	if err != nil {
		return err
	}
	if !norm.Ok() {
		fmt.Fprintf(os.Stderr, "skipped: %s\n", norm.Err)
		return nil
	}
	if err := store.Record(fp.Hex, norm.Normalized); err != nil {
		return err
	}
	fmt.Printf("%s  %s\n", fp.Hex, norm.Normalized)
	return nil
}

// readScript treats a sole argument naming an existing file as a script file;
// anything else goes through the usual literal/stdin resolution.
func readScript(args []string) (string, error) {
	if len(args) == 1 {
		if st, err := os.Stat(args[0]); err == nil && !st.IsDir() {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return "", err
			}
			return string(data), nil
		}
	}
	return readQuery(args)
}

func showStats(dbPath string) error {
	store, err := boltstore.Open(dbPath)
	if err != nil {
		return err
	}
	defer store.Close()

	entries, err := store.Top(statsTop)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Println("no queries recorded")
		return nil
	}
	for _, e := range entries {
		fmt.Printf("%6d  %s  %s\n", e.Count, e.Fingerprint, e.Normalized)
	}
	return nil
}
