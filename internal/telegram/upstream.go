package telegram

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// Upstream is the subset of the Bot API used outside the webhook hot path.
// Every call takes the token explicitly since each shop has its own bot.
type Upstream interface {
	GetMe(ctx context.Context, token string) (*models.User, error)
	SetWebhook(ctx context.Context, token, url string) error
	DeleteWebhook(ctx context.Context, token string) error
}

// Client implements Upstream on top of go-telegram/bot. It builds a
// throwaway bot per call; the HTTP client is shared.
type Client struct {
	serverURL  string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a Client. serverURL may be empty to use the public Bot API.
func NewClient(serverURL string, httpClient *http.Client, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		serverURL:  serverURL,
		httpClient: httpClient,
		logger:     logger.With("component", "telegram_upstream"),
	}
}

func (c *Client) newBot(token string) (*bot.Bot, error) {
	return NewTelegramBot(token, c.logger, BaseOptions(c.serverURL, c.httpClient)...)
}

// GetMe verifies token and returns the bot identity.
func (c *Client) GetMe(ctx context.Context, token string) (*models.User, error) {
	b, err := c.newBot(token)
	if err != nil {
		return nil, err
	}
	me, err := b.GetMe(ctx)
	if err != nil {
		return nil, fmt.Errorf("getMe failed: %w", err)
	}
	return me, nil
}

// SetWebhook registers url as the delivery endpoint for token's bot.
func (c *Client) SetWebhook(ctx context.Context, token, url string) error {
	b, err := c.newBot(token)
	if err != nil {
		return err
	}
	if _, err := b.SetWebhook(ctx, &bot.SetWebhookParams{URL: url}); err != nil {
		return fmt.Errorf("setWebhook failed: %w", err)
	}
	c.logger.InfoContext(ctx, "Webhook registered", "url", url)
	return nil
}

// DeleteWebhook removes the delivery endpoint and drops pending updates.
func (c *Client) DeleteWebhook(ctx context.Context, token string) error {
	b, err := c.newBot(token)
	if err != nil {
		return err
	}
	if _, err := b.DeleteWebhook(ctx, &bot.DeleteWebhookParams{DropPendingUpdates: true}); err != nil {
		return fmt.Errorf("deleteWebhook failed: %w", err)
	}
	return nil
}

// IsHTTPSRequired reports whether err is the Bot API refusing a non-HTTPS
// webhook URL. The Bot API only signals this through the error description.
func IsHTTPSRequired(err error) bool {
	return err != nil && strings.Contains(err.Error(), "HTTPS")
}
