package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/JaredMSFT/pgbridge/internal/analysis"
)

var tablesCmd = &cobra.Command{
	Use:   "tables [sql]",
	Short: "List the relations a statement references",
	RunE:  runTables,
}

var tablesTypes bool

func init() {
	tablesCmd.Flags().BoolVar(&tablesTypes, "types", false, "also print the statement classification")
}

func runTables(cmd *cobra.Command, args []string) error {
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

	if tablesTypes {
		types, err := analysis.StatementTypes(res.Tree)
		if err != nil {
			return err
		}
		for _, t := range types {
			fmt.Println(t)
		}
	}

	tables, err := analysis.Tables(res.Tree)
	if err != nil {
		return err
	}
	for _, t := range tables {
		fmt.Println(t)
	}
	return nil
}
