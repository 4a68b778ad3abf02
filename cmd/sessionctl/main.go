// sessionctl is the operator CLI for the session service: key
// generation and manual schema migration.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	root := &cobra.Command{
		Use:   "sessionctl",
		Short: "Operator tooling for the session service",
	}

	root.AddCommand(newGenkeysCmd())
	root.AddCommand(newMigrateCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
}
