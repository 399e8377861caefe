package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var parseCmd = &cobra.Command{
	Use:   "parse [sql]",
	Short: "Parse SQL into a JSON syntax tree",
	RunE:  runParse,
}

func runParse(cmd *cobra.Command, args []string) error {
	query, err := readQuery(args)
	if err != nil {
		return err
	}
	b, _, err := openBridge()
	if err != nil {
		return err
	}
	defer b.Close()

	res, err := b.Parse(query)
	if err != nil {
		return err
	}
	if !res.Ok() {
		return fmt.Errorf("parse: %s", res.Err)
	}
	fmt.Println(res.Tree)
	return nil
}
