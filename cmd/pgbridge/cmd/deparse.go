package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

var deparseCmd = &cobra.Command{
	Use:   "deparse [tree.json]",
	Short: "Render a JSON syntax tree back to SQL",
	Long:  "Reads a JSON parse tree (as produced by `pgbridge parse`) from a file or stdin and prints the reconstructed SQL.",
	RunE:  runDeparse,
}

func runDeparse(cmd *cobra.Command, args []string) error {
	var tree []byte
	if len(args) == 0 || (len(args) == 1 && args[0] == "-") {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return fmt.Errorf("read stdin: %w", err)
		}
		tree = data
	} else {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}
		tree = data
	}

	b, _, err := openBridge()
	if err != nil {
		return err
	}
	defer b.Close()

	res, err := b.Deparse(string(tree))
	if err != nil {
		return err
	}
	if !res.Ok() {
		return fmt.Errorf("deparse: %s", res.Err)
	}
	fmt.Println(res.SQL)
	return nil
}
