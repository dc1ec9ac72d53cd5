package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/pageza/foodgram/backend/config"
	"github.com/pageza/foodgram/backend/internal/database"
	"github.com/pageza/foodgram/backend/internal/logging"
	"github.com/pageza/foodgram/backend/internal/seed"
	"github.com/pageza/foodgram/backend/internal/service"
)

var (
	version = "dev"

	logLevel string
	csvFile  string
	password string
)

var rootCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load reference data and demo accounts into the Foodgram database",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logging.SetDefaultStructuredLogger("foodgram-seed", version, logLevel)
	},
	SilenceUsage: true,
}

var ingredientsCmd = &cobra.Command{
	Use:   "ingredients",
	Short: "Load ingredients from a name,measurement_unit CSV file",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withFile(csvFile, "data/ingredients.csv", func(db *gorm.DB, f *os.File) error {
			n, err := seed.LoadIngredients(cmd.Context(), service.NewIngredientService(db), f)
			if err != nil {
				return err
			}
			slog.Info("ingredients loaded", "file", f.Name(), "inserted", n)
			return nil
		})
	},
}

var tagsCmd = &cobra.Command{
	Use:   "tags",
	Short: "Load tags from a name,color,slug CSV file",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withFile(csvFile, "data/tags.csv", func(db *gorm.DB, f *os.File) error {
			n, err := seed.LoadTags(cmd.Context(), service.NewTagService(db), f)
			if err != nil {
				return err
			}
			slog.Info("tags loaded", "file", f.Name(), "inserted", n)
			return nil
		})
	},
}

var usersCmd = &cobra.Command{
	Use:   "users",
	Short: "Create demo accounts for local development",
	RunE: func(cmd *cobra.Command, args []string) error {
		if config.IsProduction() {
			return fmt.Errorf("refusing to create demo users in production")
		}
		cfg, db, err := connect()
		if err != nil {
			return err
		}
		auth := service.NewAuthService(db, cfg.JWTSecret, cfg.TokenTTL, nil)
		n, err := seed.LoadUsers(cmd.Context(), auth, password)
		if err != nil {
			return err
		}
		slog.Info("demo users created", "inserted", n)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	ingredientsCmd.Flags().StringVarP(&csvFile, "file", "f", "", "CSV file (default data/ingredients.csv)")
	tagsCmd.Flags().StringVarP(&csvFile, "file", "f", "", "CSV file (default data/tags.csv)")
	usersCmd.Flags().StringVar(&password, "password", "testpassword123", "password for every demo account")
	rootCmd.AddCommand(ingredientsCmd, tagsCmd, usersCmd)
}

func connect() (*config.Config, *gorm.DB, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, nil, err
	}
	db, err := database.New(cfg)
	if err != nil {
		return nil, nil, err
	}
	if cfg.DBDriver == "sqlite" {
		if err := database.AutoMigrate(db); err != nil {
			return nil, nil, err
		}
	}
	return cfg, db, nil
}

func withFile(path, fallback string, fn func(db *gorm.DB, f *os.File) error) error {
	if path == "" {
		path = fallback
	}
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	_, db, err := connect()
	if err != nil {
		return err
	}
	return fn(db, f)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
