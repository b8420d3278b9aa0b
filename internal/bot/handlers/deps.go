package handlers

import (
	"log/slog"

	"github.com/edgard/storebot/internal/config"
)

// HandlerDeps provides dependencies for Telegram command handlers. They are
// shared by every shop; the shop id arrives through the context.
type HandlerDeps struct {
	Logger        *slog.Logger
	Messages      config.Messages
	PublicBaseURL string
}
