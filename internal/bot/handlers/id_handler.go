package handlers

import (
	"context"
	"fmt"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// NewIDHandler returns a handler for the /id command. It replies with the
// sender's own user id, which shop owners paste into their notification settings.
func NewIDHandler(deps HandlerDeps) CommandFunc {
	return idHandler{deps}.Handle
}

type idHandler struct {
	deps HandlerDeps
}

func (h idHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) error {
	log := h.deps.Logger.With("handler", "id")

	if update.Message == nil || update.Message.From == nil {
		log.WarnContext(ctx, "ID handler received update with nil message or sender", "update_id", update.ID)
		return nil
	}

	_, err := b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:    update.Message.Chat.ID,
		Text:      fmt.Sprintf(h.deps.Messages.ChatID, update.Message.From.ID),
		ParseMode: models.ParseModeHTML,
	})
	if err != nil {
		return fmt.Errorf("failed to send chat id message: %w", err)
	}

	log.DebugContext(ctx, "Sent chat id", "user_id", update.Message.From.ID)
	return nil
}
