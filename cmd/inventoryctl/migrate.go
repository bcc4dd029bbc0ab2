package main

import (
	"fmt"

	"github.com/mmdatafocus/inventory_backend/config"
	"github.com/mmdatafocus/inventory_backend/models"
	"github.com/spf13/cobra"
)

// migrateCmd creates or updates the schema; run it instead of startup migrations when SKIP_MIGRATIONS=true.
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run schema migrations against the store configured in the environment",
	RunE: func(cmd *cobra.Command, args []string) error {
		config.ConnectDatabaseWithRetry()
		if err := models.MigrateTable(config.GetDB()); err != nil {
			return err
		}
		fmt.Println(ok("MIGRATED"))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
