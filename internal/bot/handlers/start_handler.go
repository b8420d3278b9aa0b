package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// ErrBaseURLMissing is returned by MiniAppURL when no public base URL is configured.
var ErrBaseURLMissing = errors.New("public base URL is not configured")

// MiniAppURL builds the shop's mini-app link: {base}/tma?shopId={shopID}.
func MiniAppURL(baseURL, shopID string) (string, error) {
	if baseURL == "" {
		return "", ErrBaseURLMissing
	}
	u, err := url.Parse(baseURL)
	if err != nil {
		return "", fmt.Errorf("invalid public base URL: %w", err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return "", fmt.Errorf("invalid public base URL %q: must be an absolute http(s) URL", baseURL)
	}
	u = u.JoinPath("tma")
	u.RawQuery = url.Values{"shopId": {shopID}}.Encode()
	u.Fragment = ""
	return u.String(), nil
}

// NewStartHandler returns a handler for the /start command.
func NewStartHandler(deps HandlerDeps) CommandFunc {
	return startHandler{deps}.Handle
}

// startHandler replies with the welcome text and a button opening the shop's mini-app.
type startHandler struct {
	deps HandlerDeps
}

func (h startHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) error {
	log := h.deps.Logger.With("handler", "start")

	if update.Message == nil {
		log.WarnContext(ctx, "Start handler received update with nil message", "update_id", update.ID)
		return nil
	}

	shopID, ok := ShopIDFromContext(ctx)
	if !ok {
		return ErrNoShopContext
	}
	chatID := update.Message.Chat.ID
	log = log.With("shop_id", shopID, "chat_id", chatID)

	link, err := MiniAppURL(h.deps.PublicBaseURL, shopID)
	if err != nil {
		log.ErrorContext(ctx, "Cannot build mini-app link, sending configuration error", "error", err)
		if _, sendErr := b.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: chatID,
			Text:   h.deps.Messages.StoreURLMissing,
		}); sendErr != nil {
			return fmt.Errorf("failed to send store URL error: %w", sendErr)
		}
		return nil
	}

	_, err = b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: chatID,
		Text:   h.deps.Messages.Welcome,
		ReplyMarkup: &models.InlineKeyboardMarkup{
			InlineKeyboard: [][]models.InlineKeyboardButton{
				{{Text: h.deps.Messages.OpenShopButton, WebApp: &models.WebAppInfo{URL: link}}},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to send welcome message: %w", err)
	}

	log.DebugContext(ctx, "Sent welcome message")
	return nil
}
