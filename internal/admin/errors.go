package admin

import "errors"

var (
	// ErrInvalidToken is returned when the Bot API rejects a token.
	ErrInvalidToken = errors.New("invalid Telegram bot token, please check and try again")
	// ErrUpstreamTimeout is returned when the Bot API does not answer in time.
	ErrUpstreamTimeout = errors.New("telegram did not respond in time, please try again")
	// ErrBotAlreadyLinked is returned when the bot already serves another shop.
	ErrBotAlreadyLinked = errors.New("this bot is already linked to another shop")
	// ErrNotConfigured is returned when an operation needs a token and none is stored.
	ErrNotConfigured = errors.New("no bot token configured")
	// ErrBaseURLMissing is returned when the public base URL needed for the webhook is unset.
	ErrBaseURLMissing = errors.New("public base URL is not configured")
)

// ValidationError reports a malformed request.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}
