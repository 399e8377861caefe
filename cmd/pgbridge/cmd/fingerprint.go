package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var fingerprintCmd = &cobra.Command{
	Use:   "fingerprint [sql]",
	Short: "Compute the structural fingerprint of a query",
	RunE:  runFingerprint,
}

var fingerprintNumeric bool

func init() {
	fingerprintCmd.Flags().BoolVar(&fingerprintNumeric, "numeric", false, "print the raw 64-bit value instead of hex")
}

func runFingerprint(cmd *cobra.Command, args []string) error {
	query, err := readQuery(args)
	if err != nil {
		return err
	}
	b, _, err := openBridge()
	if err != nil {
		return err
	}
	defer b.Close()

	res, err := b.Fingerprint(query)
	if err != nil {
		return err
	}
	if !res.Ok() {
		return fmt.Errorf("fingerprint: %s", res.Err)
	}
	if fingerprintNumeric {
		fmt.Println(res.Fingerprint)
	} else {
		fmt.Println(res.Hex)
	}
	return nil
}
