package cmd

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/example/vocabot/internal/bot"
	"github.com/example/vocabot/internal/database"
	"github.com/example/vocabot/internal/export"
	"github.com/example/vocabot/internal/practice"
	"github.com/example/vocabot/internal/scheduler"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the Telegram bot",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if err := cfg.RequireBotToken(); err != nil {
			return err
		}

		logger := newLogger(cfg.Log)

		db, err := openDB(cfg)
		if err != nil {
			return err
		}
		defer db.Close()

		words := database.NewWordRepository(db)
		categories := database.NewCategoryRepository(db)
		results := database.NewPracticeResultRepository(db)
		sessions := practice.NewSessionStore(cfg.Session.MaxActive, nil)

		engine := practice.NewEngine(words, categories, sessions,
			practice.WithLogger(logger),
			practice.WithResultRecorder(results),
		)

		b, err := bot.New(cfg.Telegram.BotToken, bot.Deps{
			Engine:     engine,
			Words:      words,
			Categories: categories,
			Results:    results,
			Exporter:   export.NewExporter(words, categories),
			Logger:     logger,
		})
		if err != nil {
			return err
		}

		janitor := scheduler.New(cfg.Session.IdleTimeout, cfg.Session.SweepInterval, logger, sessions, b)
		if err := janitor.Start(); err != nil {
			return fmt.Errorf("start scheduler: %w", err)
		}
		defer janitor.Stop()

		ctx, stop := signal.NotifyContext(commandContext(cmd), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		logger.Info("Bot started. Press Ctrl+C to stop.")
		err = b.Start(ctx)
		b.Stop()
		if err != nil && !errors.Is(err, context.Canceled) {
			return fmt.Errorf("bot: %w", err)
		}
		logger.Info("Bot stopped successfully")
		return nil
	},
}
