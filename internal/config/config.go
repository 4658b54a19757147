package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the bot
type Config struct {
	Telegram TelegramConfig `mapstructure:"telegram"`
	Database DatabaseConfig `mapstructure:"database" validate:"required"`
	Log      LogConfig      `mapstructure:"log" validate:"required"`
	Session  SessionConfig  `mapstructure:"session" validate:"required"`
}

// TelegramConfig holds bot API settings
type TelegramConfig struct {
	BotToken string `mapstructure:"bot_token"`
}

// DatabaseConfig selects the database driver and connection string
type DatabaseConfig struct {
	Driver string `mapstructure:"driver" validate:"required,oneof=sqlite3 postgres"`
	DSN    string `mapstructure:"dsn" validate:"required"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string `mapstructure:"level" validate:"required,oneof=trace debug info warn warning error fatal panic"`
	Format string `mapstructure:"format" validate:"required,oneof=text json"`
}

// SessionConfig bounds the in-memory practice sessions
type SessionConfig struct {
	IdleTimeout   time.Duration `mapstructure:"idle_timeout" validate:"gt=0"`
	MaxActive     int           `mapstructure:"max_active" validate:"gte=0"`
	SweepInterval time.Duration `mapstructure:"sweep_interval" validate:"gt=0"`
}

// Load reads .env (when present) and the environment into a validated Config.
// Environment keys are the upper-cased config keys with "." replaced by "_",
// for example DATABASE_DSN or SESSION_IDLE_TIMEOUT.
func Load(envFiles ...string) (*Config, error) {
	if err := godotenv.Load(envFiles...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("error loading env file: %w", err)
	}

	v := viper.New()
	setDefaults(v)

	// Enable reading from environment variables
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	v.SetDefault("telegram.bot_token", "")

	v.SetDefault("database.driver", "sqlite3")
	v.SetDefault("database.dsn", "data/vocabot.db")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	v.SetDefault("session.idle_timeout", 30*time.Minute)
	v.SetDefault("session.max_active", 10000)
	v.SetDefault("session.sweep_interval", time.Minute)
}

// Validate checks field constraints
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// RequireBotToken fails when no Telegram token is configured
func (c *Config) RequireBotToken() error {
	if strings.TrimSpace(c.Telegram.BotToken) == "" {
		return errors.New("TELEGRAM_BOT_TOKEN environment variable is not set")
	}
	return nil
}
