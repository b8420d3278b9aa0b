// Package admin implements the shop owner's bot configuration flows: saving
// a token, registering the webhook, reporting status and unlinking. These run
// outside the webhook hot path and surface precise errors to the caller.
package admin

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/go-telegram/bot/models"

	"github.com/edgard/storebot/internal/database"
	"github.com/edgard/storebot/internal/logger"
	"github.com/edgard/storebot/internal/telegram"
)

// HTTPSWarning is reported when the Bot API refuses a non-HTTPS webhook URL.
const HTTPSWarning = "Webhook requires HTTPS. Bot is configured but will not receive messages on localhost."

const defaultVerifyTimeout = 5 * time.Second

// Store is the part of database.Store the admin flows use.
type Store interface {
	GetShop(ctx context.Context, shopID string) (*database.Shop, error)
	SetBotToken(ctx context.Context, shopID, ciphertext string, botID int64) error
	SetBotIdentity(ctx context.Context, shopID string, active bool, username, name string) error
	ClearBotToken(ctx context.Context, shopID string) error
	FindShopIDByBotID(ctx context.Context, botID int64) (string, error)
	SetBanned(ctx context.Context, shopID string, banned bool) error
	SetActive(ctx context.Context, shopID string, active bool) error
}

// Vault encrypts tokens for storage and decrypts them for upstream calls.
type Vault interface {
	Encrypt(plaintext string) (string, error)
	Decrypt(ciphertext string) (string, error)
}

// Invalidator drops a shop's cached session.
type Invalidator interface {
	Invalidate(shopID string)
}

// Options configures a Service.
type Options struct {
	PublicBaseURL string
	// VerifyTimeout bounds every Bot API call made by the service.
	VerifyTimeout time.Duration
}

// TokenResult is the identity of the bot behind a saved token.
type TokenResult struct {
	BotID    int64
	Username string
	Name     string
}

// WebhookResult is the outcome of a webhook registration. A non-empty
// Warning means the bot is linked but will not receive updates.
type WebhookResult struct {
	Active     bool
	Warning    string
	Message    string
	WebhookURL string
	Bot        *models.User
}

// Status summarizes a shop's bot configuration.
type Status struct {
	Configured bool   `json:"configured"`
	Active     bool   `json:"active"`
	Username   string `json:"username"`
	Name       string `json:"name"`
}

type tokenRequest struct {
	Token string `validate:"required,min=10"`
}

// Service runs the admin flows. Operations on the same shop are serialized.
type Service struct {
	store    Store
	vault    Vault
	upstream telegram.Upstream
	sessions Invalidator
	opts     Options
	logger   *slog.Logger
	validate *validator.Validate

	// shop id -> *sync.Mutex. Entries live for the process; there is one per
	// shop that ever reached an admin flow.
	locks sync.Map
}

// NewService creates a Service.
func NewService(store Store, vault Vault, upstream telegram.Upstream, sessions Invalidator, opts Options, log *slog.Logger) *Service {
	if opts.VerifyTimeout <= 0 {
		opts.VerifyTimeout = defaultVerifyTimeout
	}
	if log == nil {
		log = logger.Discard()
	}
	return &Service{
		store:    store,
		vault:    vault,
		upstream: upstream,
		sessions: sessions,
		opts:     opts,
		logger:   log.With("component", "admin"),
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

func (s *Service) lock(shopID string) func() {
	v, _ := s.locks.LoadOrStore(shopID, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

// PutToken verifies token with the Bot API, checks that no other shop holds
// the same bot, and stores it encrypted. The stored identity is reset until
// the webhook is registered again. Nothing is written on failure.
func (s *Service) PutToken(ctx context.Context, shopID, token string) (*TokenResult, error) {
	token = strings.TrimSpace(token)
	if err := s.validate.Struct(tokenRequest{Token: token}); err != nil {
		return nil, &ValidationError{Field: "token", Message: "Token is too short"}
	}

	defer s.lock(shopID)()
	log := s.logger.With("shop_id", shopID)

	if _, err := s.store.GetShop(ctx, shopID); err != nil {
		return nil, err
	}

	verifyCtx, cancel := context.WithTimeout(ctx, s.opts.VerifyTimeout)
	defer cancel()
	me, err := s.upstream.GetMe(verifyCtx, token)
	if err != nil {
		if isTimeout(verifyCtx, err) {
			log.WarnContext(ctx, "Token verification timed out", "timeout", s.opts.VerifyTimeout)
			return nil, ErrUpstreamTimeout
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		log.InfoContext(ctx, "Token rejected by Telegram", "error", err)
		return nil, ErrInvalidToken
	}

	owner, err := s.store.FindShopIDByBotID(ctx, me.ID)
	switch {
	case err == nil && owner != shopID:
		log.WarnContext(ctx, "Bot already linked to another shop", "bot_id", me.ID, "other_shop_id", owner)
		return nil, ErrBotAlreadyLinked
	case err != nil && !errors.Is(err, database.ErrShopNotFound):
		return nil, err
	}

	ciphertext, err := s.vault.Encrypt(token)
	if err != nil {
		log.ErrorContext(ctx, "Failed to encrypt bot token", "error", err)
		return nil, fmt.Errorf("failed to encrypt bot token: %w", err)
	}

	if err := s.store.SetBotToken(ctx, shopID, ciphertext, me.ID); err != nil {
		if errors.Is(err, database.ErrBotAlreadyLinked) {
			return nil, ErrBotAlreadyLinked
		}
		return nil, err
	}
	s.sessions.Invalidate(shopID)

	log.InfoContext(ctx, "Bot token saved", "bot_id", me.ID, "bot_username", me.Username)
	return &TokenResult{BotID: me.ID, Username: me.Username, Name: me.FirstName}, nil
}

// WebhookURL returns the delivery URL for shopID under baseURL.
func WebhookURL(baseURL, shopID string) (string, error) {
	if baseURL == "" {
		return "", ErrBaseURLMissing
	}
	return url.JoinPath(baseURL, "webhook", shopID)
}

// RegisterWebhook points the shop's bot at this server and records the bot
// identity. A refused non-HTTPS URL is a warning: identity is stored and the
// bot stays inactive.
func (s *Service) RegisterWebhook(ctx context.Context, shopID string) (*WebhookResult, error) {
	defer s.lock(shopID)()
	log := s.logger.With("shop_id", shopID)

	shop, err := s.store.GetShop(ctx, shopID)
	if err != nil {
		return nil, err
	}
	if shop.BotToken == "" {
		return nil, ErrNotConfigured
	}
	webhookURL, err := WebhookURL(s.opts.PublicBaseURL, shopID)
	if err != nil {
		return nil, err
	}

	token, err := s.vault.Decrypt(shop.BotToken)
	if err != nil {
		log.ErrorContext(ctx, "Failed to decrypt bot token", "error", err)
		return nil, fmt.Errorf("failed to decrypt bot token: %w", err)
	}

	callCtx, cancel := context.WithTimeout(ctx, s.opts.VerifyTimeout)
	defer cancel()

	var warning string
	if err := s.upstream.SetWebhook(callCtx, token, webhookURL); err != nil {
		switch {
		case isTimeout(callCtx, err):
			return nil, ErrUpstreamTimeout
		case telegram.IsHTTPSRequired(err):
			log.WarnContext(ctx, "Webhook refused without HTTPS", "url", webhookURL, "error", err)
			warning = HTTPSWarning
		default:
			log.ErrorContext(ctx, "Failed to set webhook", "url", webhookURL, "error", err)
			return nil, fmt.Errorf("failed to set webhook: %w", err)
		}
	}

	me, err := s.upstream.GetMe(callCtx, token)
	if err != nil {
		if isTimeout(callCtx, err) {
			return nil, ErrUpstreamTimeout
		}
		return nil, fmt.Errorf("failed to fetch bot info: %w", err)
	}

	active := warning == ""
	if err := s.store.SetBotIdentity(ctx, shopID, active, me.Username, me.FirstName); err != nil {
		return nil, err
	}

	msg := "Webhook set successfully"
	if warning != "" {
		msg = warning
	}
	log.InfoContext(ctx, "Webhook registration finished", "active", active, "bot_username", me.Username)
	return &WebhookResult{Active: active, Warning: warning, Message: msg, WebhookURL: webhookURL, Bot: me}, nil
}

// Status reports the shop's bot configuration without exposing the token.
func (s *Service) Status(ctx context.Context, shopID string) (*Status, error) {
	shop, err := s.store.GetShop(ctx, shopID)
	if err != nil {
		return nil, err
	}
	return &Status{
		Configured: shop.BotToken != "",
		Active:     shop.IsBotActive,
		Username:   shop.BotUsername.String,
		Name:       shop.BotName.String,
	}, nil
}

// Unlink removes the webhook upstream (best effort), clears the stored token
// and identity, and drops the cached session.
func (s *Service) Unlink(ctx context.Context, shopID string) error {
	defer s.lock(shopID)()
	log := s.logger.With("shop_id", shopID)

	shop, err := s.store.GetShop(ctx, shopID)
	if err != nil {
		return err
	}

	if shop.BotToken != "" {
		if token, err := s.vault.Decrypt(shop.BotToken); err != nil {
			log.WarnContext(ctx, "Cannot decrypt token, skipping webhook removal", "error", err)
		} else {
			callCtx, cancel := context.WithTimeout(ctx, s.opts.VerifyTimeout)
			if err := s.upstream.DeleteWebhook(callCtx, token); err != nil {
				log.WarnContext(ctx, "Failed to delete webhook", "error", err)
			}
			cancel()
		}
	}

	if err := s.store.ClearBotToken(ctx, shopID); err != nil {
		return err
	}
	s.sessions.Invalidate(shopID)

	log.InfoContext(ctx, "Bot unlinked")
	return nil
}

// SetBanned sets the platform ban flag. Banned shops are rejected on the
// next delivery; the dispatcher reads the flag on every update.
func (s *Service) SetBanned(ctx context.Context, shopID string, banned bool) error {
	if err := s.store.SetBanned(ctx, shopID, banned); err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "Shop ban flag updated", "shop_id", shopID, "banned", banned)
	return nil
}

// SetActive sets the tenant soft-enable flag. Deliveries to an inactive shop
// are acknowledged without running the bot.
func (s *Service) SetActive(ctx context.Context, shopID string, active bool) error {
	if err := s.store.SetActive(ctx, shopID, active); err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "Shop active flag updated", "shop_id", shopID, "active", active)
	return nil
}

func isTimeout(ctx context.Context, err error) bool {
	return errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded)
}
