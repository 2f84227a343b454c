package handlers

import (
	tgbot "github.com/go-telegram/bot"

	"github.com/rsilveira/secretary-bot/internal/bot"
)

// RegisteredHandler bundles a handler with its registration details and
// middleware.
type RegisteredHandler struct {
	HandlerType tgbot.HandlerType
	Pattern     string
	Handler     tgbot.HandlerFunc
	Middleware  []tgbot.Middleware
	MatchType   tgbot.MatchType
}

// RegisterAllCommands returns all command and callback handlers keyed by
// name. Every entry is owner-only; the capture handler is the bot's default
// handler and is wired separately.
func RegisterAllCommands(deps HandlerDeps) map[string]RegisteredHandler {
	ownerOnly := []tgbot.Middleware{OwnerOnly(deps)}

	handlers := make(map[string]RegisteredHandler)

	handlers["/start"] = RegisteredHandler{
		HandlerType: tgbot.HandlerTypeMessageText,
		Pattern:     "start",
		Handler:     NewStartHandler(deps),
		MatchType:   tgbot.MatchTypeCommandStartOnly,
		Middleware:  ownerOnly,
	}
	handlers["/summary"] = RegisteredHandler{
		HandlerType: tgbot.HandlerTypeMessageText,
		Pattern:     "summary",
		Handler:     NewSummaryHandler(deps),
		MatchType:   tgbot.MatchTypeCommandStartOnly,
		Middleware:  ownerOnly,
	}
	handlers["/stats"] = RegisteredHandler{
		HandlerType: tgbot.HandlerTypeMessageText,
		Pattern:     "stats",
		Handler:     NewStatsHandler(deps),
		MatchType:   tgbot.MatchTypeCommandStartOnly,
		Middleware:  ownerOnly,
	}
	handlers["/settings"] = RegisteredHandler{
		HandlerType: tgbot.HandlerTypeMessageText,
		Pattern:     "settings",
		Handler:     NewSettingsHandler(deps),
		MatchType:   tgbot.MatchTypeCommandStartOnly,
		Middleware:  ownerOnly,
	}
	handlers["/priority_add"] = RegisteredHandler{
		HandlerType: tgbot.HandlerTypeMessageText,
		Pattern:     "priority_add",
		Handler:     NewPriorityAddHandler(deps),
		MatchType:   tgbot.MatchTypeCommandStartOnly,
		Middleware:  ownerOnly,
	}
	handlers["/priority_remove"] = RegisteredHandler{
		HandlerType: tgbot.HandlerTypeMessageText,
		Pattern:     "priority_remove",
		Handler:     NewPriorityRemoveHandler(deps),
		MatchType:   tgbot.MatchTypeCommandStartOnly,
		Middleware:  ownerOnly,
	}

	handlers["label_callback"] = RegisteredHandler{
		HandlerType: tgbot.HandlerTypeCallbackQueryData,
		Pattern:     bot.CallbackPrefix,
		Handler:     NewLabelCallbackHandler(deps),
		MatchType:   tgbot.MatchTypePrefix,
		Middleware:  ownerOnly,
	}

	return handlers
}
