package cmd

import (
	"context"
	"fmt"

	"github.com/example/vocabot/internal/config"
	"github.com/example/vocabot/internal/database"
	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "vocabot",
	Short: "Telegram bot for vocabulary practice",
	Long:  "vocabot keeps word lists per category, splits them into levels and runs short practice sessions that track mastery of every word.",
}

// Execute runs the command line
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("env-file", "", "Path to a .env file (default .env when present)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(levelsCmd)
	rootCmd.AddCommand(exportCmd)
}

// loadConfig reads configuration, honoring --env-file
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	var files []string
	if p, _ := cmd.Flags().GetString("env-file"); p != "" {
		files = append(files, p)
	}
	cfg, err := config.Load(files...)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

func newLogger(cfg config.LogConfig) *logrus.Logger {
	logger := logrus.New()
	lvl, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	logger.SetLevel(lvl)
	if cfg.Format == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	return logger
}

func openDB(cfg *config.Config) (*sqlx.DB, error) {
	db, err := database.Connect(cfg.Database.Driver, cfg.Database.DSN)
	if err != nil {
		return nil, fmt.Errorf("db connect: %w", err)
	}
	return db, nil
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
