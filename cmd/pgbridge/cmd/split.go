package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var splitCmd = &cobra.Command{
	Use:   "split [sql]",
	Short: "Split a script into individual statements",
	RunE:  runSplit,
}

var splitScanner bool

func init() {
	splitCmd.Flags().BoolVar(&splitScanner, "scanner", false, "use the lexer-based splitter (tolerates invalid statements)")
}

func runSplit(cmd *cobra.Command, args []string) error {
	query, err := readQuery(args)
	if err != nil {
		return err
	}
	b, _, err := openBridge()
	if err != nil {
		return err
	}
	defer b.Close()

	res, err := b.Split(query, !splitScanner)
	if err != nil {
		return err
	}
	if !res.Ok() {
		return fmt.Errorf("split: %s", res.Err)
	}
	for i, stmt := range res.Statements {
		fmt.Printf("-- statement %d (offset %d, %d bytes)\n%s\n", i+1, stmt.Location, stmt.Length, stmt.Text)
	}
	return nil
}
