package config

import "time"

// Default values for configuration
const (
	DefaultLogLevel = "info"
	DefaultLogJSON  = true

	DefaultHTTPAddr            = ":8080"
	DefaultHTTPReadTimeout     = 15 * time.Second
	DefaultHTTPWriteTimeout    = 30 * time.Second
	DefaultHTTPShutdownTimeout = 10 * time.Second

	DefaultDBDriver = "sqlite"
	DefaultDBDSN    = "storage.db"

	DefaultTelegramRequestTimeout = 15 * time.Second
	DefaultTelegramVerifyTimeout  = 5 * time.Second
)

// Default bot messages
var DefaultMessages = Messages{
	Welcome:         "Welcome to our shop! 🛍️\nClick the button below to browse our catalog.",
	OpenShopButton:  "Open Shop 🏪",
	StoreURLMissing: "Error: Store URL is not configured. Please contact support.",
	Help:            "Contact support if you need help!",
	ChatID:          "Your Chat ID: <code>%d</code>\n\nCopy this ID and paste it into the \"Admin Notification Chat ID\" field in your shop settings to receive order notifications.",
}

// Default scheduled tasks
var DefaultTasks = map[string]TaskConfig{
	"sql_maintenance":      {Enabled: true, Schedule: "0 0 4 * * *"},
	"session_cache_report": {Enabled: true, Schedule: "0 */15 * * * *"},
}
