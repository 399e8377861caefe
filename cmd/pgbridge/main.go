// pgbridge is a command-line front end for the PostgreSQL query bridge.
// Parse, normalize, fingerprint, split, scan, and deparse SQL from the shell.
package main

import (
	"os"

	"github.com/JaredMSFT/pgbridge/cmd/pgbridge/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
