// Package handlers contains the per-shop Telegram command handlers, the
// shop-context middleware, and their registration logic.
package handlers

import (
	tgbot "github.com/go-telegram/bot"
)

// RegisteredHandler represents a command handler with its middleware.
// It encapsulates all information needed to register a command.
type RegisteredHandler struct {
	HandlerType tgbot.HandlerType
	Pattern     string
	Handler     tgbot.HandlerFunc
	Middleware  []tgbot.Middleware
	MatchType   tgbot.MatchType
}

// RegisterAllCommands returns the commands every shop bot answers.
// Messages that match none of them go to NewMessageHandler.
func RegisterAllCommands(deps HandlerDeps) map[string]RegisteredHandler {
	handlers := make(map[string]RegisteredHandler)

	handlers["/start"] = RegisteredHandler{
		HandlerType: tgbot.HandlerTypeMessageText,
		Pattern:     "start",
		Handler:     Adapt(NewStartHandler(deps)),
		MatchType:   tgbot.MatchTypeCommandStartOnly,
	}
	handlers["/help"] = RegisteredHandler{
		HandlerType: tgbot.HandlerTypeMessageText,
		Pattern:     "help",
		Handler:     Adapt(NewHelpHandler(deps)),
		MatchType:   tgbot.MatchTypeCommandStartOnly,
	}
	handlers["/id"] = RegisteredHandler{
		HandlerType: tgbot.HandlerTypeMessageText,
		Pattern:     "id",
		Handler:     Adapt(NewIDHandler(deps)),
		MatchType:   tgbot.MatchTypeCommandStartOnly,
	}

	return handlers
}
