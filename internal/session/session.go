// Package session builds the per-shop bot that runs the command pipeline for
// one inbound update, and caches it per shop.
package session

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	tgbot "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/edgard/storebot/internal/bot/handlers"
	"github.com/edgard/storebot/internal/logger"
	"github.com/edgard/storebot/internal/telegram"
)

// Handler runs the command pipeline for one update.
type Handler interface {
	HandleUpdate(ctx context.Context, update *models.Update) error
}

// Deps holds what every session is built from. Only the shop id and token
// differ between shops.
type Deps struct {
	Logger     *slog.Logger
	Handlers   handlers.HandlerDeps
	ServerURL  string
	HTTPClient *http.Client
}

// Session is a shop's bot bound to its decrypted token. It holds no mutable
// state, so one Session may serve concurrent updates.
type Session struct {
	shopID string
	bot    *tgbot.Bot
}

// New builds a Session without contacting the Bot API. Handlers run on the
// caller's goroutine, so HandleUpdate returns only after the handler finished
// and a handler panic unwinds into the caller. extra options are applied last.
func New(shopID, token string, deps Deps, extra ...tgbot.Option) (*Session, error) {
	log := deps.Logger
	if log == nil {
		log = logger.Discard()
	}
	hDeps := deps.Handlers
	if hDeps.Logger == nil {
		hDeps.Logger = log
	}

	opts := append(telegram.BaseOptions(deps.ServerURL, deps.HTTPClient),
		tgbot.WithNotAsyncHandlers(),
		tgbot.WithMiddlewares(
			handlers.ShopContext(shopID),
			logger.Middleware(log, "shop_id", shopID),
		),
		tgbot.WithDefaultHandler(handlers.NewMessageHandler(hDeps)),
	)
	opts = append(opts, extra...)

	b, err := telegram.NewTelegramBot(token, log, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to build session for shop %s: %w", shopID, err)
	}
	if err := telegram.RegisterHandlers(b, log, handlers.RegisterAllCommands(hDeps)); err != nil {
		return nil, fmt.Errorf("failed to register handlers for shop %s: %w", shopID, err)
	}

	return &Session{shopID: shopID, bot: b}, nil
}

// ShopID returns the shop the session is bound to.
func (s *Session) ShopID() string {
	return s.shopID
}

// HandleUpdate runs update through the pipeline synchronously and returns the
// handler's error. Panics are not recovered here.
func (s *Session) HandleUpdate(ctx context.Context, update *models.Update) error {
	ctx, slot := handlers.WithErrorSlot(ctx)
	s.bot.ProcessUpdate(ctx, update)
	return slot.Err()
}
