package main

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"

	_ "github.com/lib/pq"
	"github.com/spf13/cobra"

	"github.com/pageza/foodgram/backend/config"
	"github.com/pageza/foodgram/backend/internal/database"
	"github.com/pageza/foodgram/backend/internal/logging"
)

var (
	version = "dev"

	dsn           string
	migrationsDir string
	logLevel      string
)

var rootCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply or roll back the Foodgram SQL migrations",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logging.SetDefaultStructuredLogger("foodgram-migrate", version, logLevel)
	},
	SilenceUsage: true,
}

var upCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply every migration that has not run yet",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := open()
		if err != nil {
			return err
		}
		defer db.Close()

		if err := database.RunMigrations(db, migrationsDir); err != nil {
			return err
		}
		slog.Info("migrations applied", "dir", migrationsDir)
		return nil
	},
}

var downCmd = &cobra.Command{
	Use:   "down",
	Short: "Roll back the most recently applied migration",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := open()
		if err != nil {
			return err
		}
		defer db.Close()

		name, err := database.RollbackLast(db, migrationsDir)
		if errors.Is(err, database.ErrNoMigrations) {
			slog.Info("nothing to roll back")
			return nil
		}
		if err != nil {
			return err
		}
		slog.Info("migration rolled back", "name", name)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dsn, "dsn", os.Getenv("DATABASE_URL"), "postgres connection string (default from DATABASE_URL, then DB_* settings)")
	rootCmd.PersistentFlags().StringVar(&migrationsDir, "dir", "migrations", "directory holding the .sql files")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.AddCommand(upCmd, downCmd)
}

func open() (*sql.DB, error) {
	if dsn == "" {
		cfg, err := config.LoadConfig()
		if err != nil {
			return nil, err
		}
		if cfg.DBDriver != "postgres" {
			return nil, fmt.Errorf("SQL migrations target postgres, DB_DRIVER is %q", cfg.DBDriver)
		}
		dsn = cfg.DSN()
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
