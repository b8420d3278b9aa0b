package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"strings"

	"github.com/spf13/viper"
)

const envPrefix = "STOREBOT"

// legacyEnv lists environment names honoured in addition to STOREBOT_*,
// so existing deployments keep working without renaming variables.
var legacyEnv = map[string][]string{
	"telegram.public_base_url": {"PUBLIC_APP_URL", "NEXT_PUBLIC_APP_URL"},
	"vault.secret":             {"ENCRYPTION_KEY"},
	"auth.jwt_secret":          {"JWT_SECRET"},
	"database.dsn":             {"DATABASE_URL"},
}

// LoadConfig loads and validates configuration from:
// 1. Default values
// 2. the YAML file at path (optional; a missing file is not an error)
// 3. STOREBOT_* and legacy environment variables
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if err := bindEnv(v); err != nil {
		return nil, fmt.Errorf("%w: failed to bind environment: %v", ErrConfiguration, err)
	}

	if err := readFile(v, path); err != nil {
		return nil, fmt.Errorf("%w: failed to load config file: %v", ErrConfiguration, err)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("%w: failed to parse config: %v", ErrConfiguration, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfiguration, err)
	}

	if cfg.Telegram.PublicBaseURL == "" {
		slog.Warn("telegram.public_base_url is not set; webhooks cannot be registered and /start replies with a configuration error")
	}
	if cfg.Vault.Secret == "" {
		slog.Warn("vault.secret is not set; bot tokens cannot be stored or decrypted")
	}

	return cfg, nil
}

func readFile(v *viper.Viper, path string) error {
	if path == "" {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	} else {
		v.SetConfigFile(path)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) || errors.Is(err, fs.ErrNotExist) {
			slog.Info("configuration file not found, using defaults and environment", "path", path)
			return nil
		}
		return err
	}
	slog.Debug("configuration file loaded", "path", v.ConfigFileUsed())
	return nil
}

func bindEnv(v *viper.Viper) error {
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for key, names := range legacyEnv {
		prefixed := envPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		if err := v.BindEnv(append([]string{key, prefixed}, names...)...); err != nil {
			return err
		}
	}
	return nil
}

// setDefaults registers every key so AutomaticEnv can override it.
func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", DefaultLogLevel)
	v.SetDefault("log.json", DefaultLogJSON)

	v.SetDefault("http.addr", DefaultHTTPAddr)
	v.SetDefault("http.read_timeout", DefaultHTTPReadTimeout)
	v.SetDefault("http.write_timeout", DefaultHTTPWriteTimeout)
	v.SetDefault("http.shutdown_timeout", DefaultHTTPShutdownTimeout)

	v.SetDefault("database.driver", DefaultDBDriver)
	v.SetDefault("database.dsn", DefaultDBDSN)

	v.SetDefault("telegram.public_base_url", "")
	v.SetDefault("telegram.server_url", "")
	v.SetDefault("telegram.request_timeout", DefaultTelegramRequestTimeout)
	v.SetDefault("telegram.verify_timeout", DefaultTelegramVerifyTimeout)

	v.SetDefault("vault.secret", "")
	v.SetDefault("auth.jwt_secret", "")

	v.SetDefault("messages.welcome", DefaultMessages.Welcome)
	v.SetDefault("messages.open_shop_button", DefaultMessages.OpenShopButton)
	v.SetDefault("messages.store_url_missing", DefaultMessages.StoreURLMissing)
	v.SetDefault("messages.help", DefaultMessages.Help)
	v.SetDefault("messages.chat_id", DefaultMessages.ChatID)

	for name, task := range DefaultTasks {
		v.SetDefault("scheduler.tasks."+name+".enabled", task.Enabled)
		v.SetDefault("scheduler.tasks."+name+".schedule", task.Schedule)
	}
}
