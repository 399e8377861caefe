package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var scanCmd = &cobra.Command{
	Use:   "scan [sql]",
	Short: "Tokenize SQL and print the lexer output",
	RunE:  runScan,
}

func runScan(cmd *cobra.Command, args []string) error {
	query, err := readQuery(args)
	if err != nil {
		return err
	}
	b, _, err := openBridge()
	if err != nil {
		return err
	}
	defer b.Close()

	res, err := b.Scan(query)
	if err != nil {
		return err
	}
	if !res.Ok() {
		return fmt.Errorf("scan: %s", res.Err)
	}
	for _, tok := range res.Tokens {
		kw := ""
		if tok.Keyword != "" {
			kw = " " + tok.Keyword
		}
		fmt.Printf("%4d..%-4d %-20s%s  %q\n", tok.Start, tok.End, tok.Kind, kw, tok.Text)
	}
	return nil
}
