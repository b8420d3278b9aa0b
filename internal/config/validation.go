package config

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Validate checks struct constraints and the /id message template.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return err
	}
	if !strings.Contains(c.Messages.ChatID, "%d") {
		return errors.New("messages.chat_id must contain a %d placeholder for the chat id")
	}
	return nil
}
