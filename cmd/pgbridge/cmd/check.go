package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var checkCmd = &cobra.Command{
	Use:   "check [sql]",
	Short: "Check whether SQL parses, reporting the first syntax error",
	RunE:  runCheck,
}

func runCheck(cmd *cobra.Command, args []string) error {
	query, err := readQuery(args)
	if err != nil {
		return err
	}
	b, _, err := openBridge()
	if err != nil {
		return err
	}
	defer b.Close()

	msg, err := b.GetError(query)
	if err != nil {
		return err
	}
	if msg != "" {
		return fmt.Errorf("invalid: %s", msg)
	}
	fmt.Println("ok")
	return nil
}
