// inventoryctl is the operator tool for an inventory installation: it keeps the
// store connection settings file, checks that the store answers and probes hosts.
//
// Usage:
//
//	go run ./cmd/inventoryctl settings show
//	go run ./cmd/inventoryctl settings save --host db.local --database inventory --user app
//	DB_PASSWORD=... go run ./cmd/inventoryctl settings check
//	go run ./cmd/inventoryctl probe 10.0.0.12 --port 1337
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var settingsFile string

var rootCmd = &cobra.Command{
	Use:           "inventoryctl",
	Short:         "Operator tooling for the inventory backend",
	SilenceUsage:  true,
	SilenceErrors: true,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("Nothing to do. Use sub-commands instead.")
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, failed(err.Error()))
		os.Exit(1)
	}
}
