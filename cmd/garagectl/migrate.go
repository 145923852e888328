package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/iliyamo/garage-api/internal/database"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending schema migrations",
	Long: `Apply every embedded migration for the configured DB_DRIVER that has not
been recorded in schema_migrations yet.  Safe to run repeatedly.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := openEnv()
		if err != nil {
			return err
		}
		defer env.Close()

		if err := database.Migrate(cmd.Context(), env.db, env.log); err != nil {
			return fmt.Errorf("failed to migrate: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "migrations applied")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
