package handlers

import (
	"context"
	"fmt"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// NewHelpHandler returns a handler for the /help command.
func NewHelpHandler(deps HandlerDeps) CommandFunc {
	return helpHandler{deps}.Handle
}

// helpHandler processes the /help command using injected dependencies.
type helpHandler struct {
	deps HandlerDeps
}

func (h helpHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) error {
	if update.Message == nil {
		h.deps.Logger.WarnContext(ctx, "Help handler received update with nil message", "update_id", update.ID)
		return nil
	}

	_, err := b.SendMessage(ctx, &bot.SendMessageParams{ChatID: update.Message.Chat.ID, Text: h.deps.Messages.Help})
	if err != nil {
		return fmt.Errorf("failed to send help message: %w", err)
	}
	return nil
}
