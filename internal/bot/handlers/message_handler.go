package handlers

import (
	"context"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// NewMessageHandler returns the default handler for updates no command matched.
// It only logs.
func NewMessageHandler(deps HandlerDeps) bot.HandlerFunc {
	log := deps.Logger.With("handler", "message")
	return func(ctx context.Context, _ *bot.Bot, update *models.Update) {
		shopID, _ := ShopIDFromContext(ctx)
		if update.Message == nil {
			log.DebugContext(ctx, "Ignoring non-message update", "shop_id", shopID, "update_id", update.ID)
			return
		}
		log.DebugContext(ctx, "Received message", "shop_id", shopID, "chat_id", update.Message.Chat.ID)
	}
}
