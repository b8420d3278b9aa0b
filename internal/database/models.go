package database

import (
	"database/sql"
	"time"
)

// Shop is one tenant: a storefront with its own Telegram bot.
type Shop struct {
	ID      string `db:"id"`
	Name    string `db:"name"`
	OwnerID string `db:"owner_id"`

	// BotToken is the vault ciphertext of the bot token; empty means unconfigured.
	BotToken    string         `db:"bot_token"`
	BotID       sql.NullInt64  `db:"bot_id"`
	BotUsername sql.NullString `db:"bot_username"`
	BotName     sql.NullString `db:"bot_name"`
	// IsBotActive is true only after a webhook registration succeeded without warning.
	IsBotActive bool `db:"is_bot_active"`

	IsActive bool `db:"is_active"`
	IsBanned bool `db:"is_banned"`

	NotificationChatID sql.NullInt64 `db:"notification_chat_id"`

	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

// DispatchRecord is the subset of Shop read on every inbound webhook.
type DispatchRecord struct {
	EncryptedToken string `db:"bot_token"`
	IsActive       bool   `db:"is_active"`
	IsBanned       bool   `db:"is_banned"`
}
