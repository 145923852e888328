// Command garagectl runs operational tasks against the garage database:
// applying migrations, seeding the first admin account and generating
// signing secrets.
package main

import (
	"fmt"
	"os"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/iliyamo/garage-api/internal/config"
	"github.com/iliyamo/garage-api/internal/database"
	"github.com/iliyamo/garage-api/internal/logger"
)

var rootCmd = &cobra.Command{
	Use:   "garagectl",
	Short: "Operational tasks for the garage management API",
	Long: `garagectl reads the same environment (and optional .env file) as the
API server and performs one-off maintenance tasks.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		_ = godotenv.Load()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "garagectl:", err)
		os.Exit(1)
	}
}

// env is the configuration, logger and database shared by commands that
// touch the store.
type env struct {
	cfg config.Config
	log *logger.Logger
	db  *sqlx.DB
}

func openEnv() (*env, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	log, err := logger.New(cfg.Log, "garagectl")
	if err != nil {
		return nil, err
	}
	db, err := database.Open(cfg.DB)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return &env{cfg: cfg, log: log, db: db}, nil
}

func (e *env) Close() {
	_ = e.db.Close()
	_ = e.log.Sync()
}
