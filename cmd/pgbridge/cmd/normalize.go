package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var normalizeCmd = &cobra.Command{
	Use:   "normalize [sql]",
	Short: "Replace constants with parameter placeholders",
	RunE:  runNormalize,
}

func runNormalize(cmd *cobra.Command, args []string) error {
	query, err := readQuery(args)
	if err != nil {
		return err
	}
	b, _, err := openBridge()
	if err != nil {
		return err
	}
	defer b.Close()

	res, err := b.Normalize(query)
	if err != nil {
		return err
	}
	if !res.Ok() {
		return fmt.Errorf("normalize: %s", res.Err)
	}
	fmt.Println(res.Normalized)
	return nil
}
