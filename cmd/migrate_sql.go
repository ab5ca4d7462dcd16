package cmd

import (
	"github.com/spf13/cobra"
)

// migrateSQLCmd represents the migrate sql command
var migrateSQLCmd = &cobra.Command{
	Use:   "sql [database-url]",
	Short: "Create SQL schemas and apply migration plans",
	Run:   cmdHandler.Migration.MigrateSQL,
}

func init() {
	migrateSQLCmd.Flags().Bool("down", false, "Roll back the migrations instead of applying them")
	migrateCmd.AddCommand(migrateSQLCmd)
}
