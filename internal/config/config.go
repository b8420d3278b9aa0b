// Package config provides configuration loading, validation, and management
// for the storebot platform. It reads an optional YAML file, environment
// variables and defaults, then validates the result.
package config

import (
	"errors"
	"time"
)

// ErrConfiguration wraps every loading or validation failure.
var ErrConfiguration = errors.New("configuration error")

// Config defines the application configuration for all components.
type Config struct {
	Log       LogConfig       `mapstructure:"log"`
	HTTP      HTTPConfig      `mapstructure:"http"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Telegram  TelegramConfig  `mapstructure:"telegram"`
	Vault     VaultConfig     `mapstructure:"vault"`
	Auth      AuthConfig      `mapstructure:"auth"`
	Messages  Messages        `mapstructure:"messages"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
}

// LogConfig controls the slog handler.
type LogConfig struct {
	Level string `mapstructure:"level" validate:"oneof=debug info warn error"`
	JSON  bool   `mapstructure:"json"`
}

// HTTPConfig controls the webhook and admin HTTP server.
type HTTPConfig struct {
	Addr            string        `mapstructure:"addr"             validate:"required"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"     validate:"min=1s"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"    validate:"min=1s"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"min=1s"`
}

// DatabaseConfig selects the SQL driver and data source.
type DatabaseConfig struct {
	Driver string `mapstructure:"driver" validate:"oneof=sqlite pgx"`
	DSN    string `mapstructure:"dsn"    validate:"required"`
}

// TelegramConfig holds settings shared by every shop bot.
type TelegramConfig struct {
	// PublicBaseURL is used for webhook delivery URLs and mini-app links.
	// Empty is allowed; /start then answers with a configuration error.
	PublicBaseURL string `mapstructure:"public_base_url" validate:"omitempty,url"`
	// ServerURL overrides the Bot API endpoint (self-hosted API servers).
	ServerURL      string        `mapstructure:"server_url"      validate:"omitempty,url"`
	RequestTimeout time.Duration `mapstructure:"request_timeout" validate:"min=1s,max=5m"`
	VerifyTimeout  time.Duration `mapstructure:"verify_timeout"  validate:"min=100ms,max=1m"`
}

// VaultConfig holds the token encryption secret. It may be empty; the vault
// then fails on use instead of at startup.
type VaultConfig struct {
	Secret string `mapstructure:"secret"`
}

// AuthConfig holds the admin JWT verification secret.
type AuthConfig struct {
	JWTSecret string `mapstructure:"jwt_secret" validate:"required"`
}

// Messages holds the texts sent by every shop bot.
type Messages struct {
	Welcome         string `mapstructure:"welcome"           validate:"required"`
	OpenShopButton  string `mapstructure:"open_shop_button"  validate:"required"`
	StoreURLMissing string `mapstructure:"store_url_missing" validate:"required"`
	Help            string `mapstructure:"help"              validate:"required"`
	ChatID          string `mapstructure:"chat_id"           validate:"required"`
}

// SchedulerConfig maps task names to their schedules.
type SchedulerConfig struct {
	Tasks map[string]TaskConfig `mapstructure:"tasks" validate:"dive"`
}

// TaskConfig configures one scheduled task.
type TaskConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Schedule string `mapstructure:"schedule" validate:"required_if=Enabled true"`
}
