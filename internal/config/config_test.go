package config_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/edgard/storebot/internal/config"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("STOREBOT_AUTH_JWT_SECRET", "jwt-secret")

	cfg, err := config.LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("LoadConfig error: %v", err)
	}

	if cfg.HTTP.Addr != config.DefaultHTTPAddr {
		t.Errorf("HTTP.Addr = %q, want %q", cfg.HTTP.Addr, config.DefaultHTTPAddr)
	}
	if cfg.Database.Driver != "sqlite" {
		t.Errorf("Database.Driver = %q, want sqlite", cfg.Database.Driver)
	}
	if cfg.Telegram.VerifyTimeout != 5*time.Second {
		t.Errorf("Telegram.VerifyTimeout = %v, want 5s", cfg.Telegram.VerifyTimeout)
	}
	if cfg.Messages.Help != config.DefaultMessages.Help {
		t.Errorf("Messages.Help = %q, want default", cfg.Messages.Help)
	}
	if task, ok := cfg.Scheduler.Tasks["sql_maintenance"]; !ok || !task.Enabled {
		t.Errorf("sql_maintenance task = %+v (present %v), want enabled", task, ok)
	}
	if cfg.Auth.JWTSecret != "jwt-secret" {
		t.Errorf("Auth.JWTSecret = %q, want value from env", cfg.Auth.JWTSecret)
	}
}

func TestLoadConfigFileAndEnv(t *testing.T) {
	path := writeConfig(t, `
log:
  level: debug
  json: false
http:
  addr: ":9090"
telegram:
  public_base_url: "https://file.example.com"
  verify_timeout: 2s
auth:
  jwt_secret: from-file
scheduler:
  tasks:
    sql_maintenance:
      enabled: false
`)
	t.Setenv("STOREBOT_TELEGRAM_PUBLIC_BASE_URL", "https://env.example.com")
	t.Setenv("ENCRYPTION_KEY", "legacy-secret")

	cfg, err := config.LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig error: %v", err)
	}

	if cfg.Log.Level != "debug" || cfg.Log.JSON {
		t.Errorf("Log = %+v, want debug text", cfg.Log)
	}
	if cfg.HTTP.Addr != ":9090" {
		t.Errorf("HTTP.Addr = %q, want :9090", cfg.HTTP.Addr)
	}
	if cfg.Telegram.PublicBaseURL != "https://env.example.com" {
		t.Errorf("PublicBaseURL = %q, env should win over file", cfg.Telegram.PublicBaseURL)
	}
	if cfg.Telegram.VerifyTimeout != 2*time.Second {
		t.Errorf("VerifyTimeout = %v, want 2s", cfg.Telegram.VerifyTimeout)
	}
	if cfg.Vault.Secret != "legacy-secret" {
		t.Errorf("Vault.Secret = %q, want legacy env value", cfg.Vault.Secret)
	}
	if cfg.Scheduler.Tasks["sql_maintenance"].Enabled {
		t.Error("sql_maintenance should be disabled by the file")
	}
}

func TestLoadConfigValidation(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "missing jwt secret", body: "log:\n  level: info\n"},
		{name: "bad log level", body: "log:\n  level: loud\nauth:\n  jwt_secret: x\n"},
		{name: "bad driver", body: "database:\n  driver: oracle\nauth:\n  jwt_secret: x\n"},
		{name: "bad base url", body: "telegram:\n  public_base_url: not a url\nauth:\n  jwt_secret: x\n"},
		{name: "chat id template without placeholder", body: "messages:\n  chat_id: no placeholder\nauth:\n  jwt_secret: x\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := config.LoadConfig(writeConfig(t, tt.body))
			if !errors.Is(err, config.ErrConfiguration) {
				t.Errorf("LoadConfig error = %v, want ErrConfiguration", err)
			}
		})
	}
}
