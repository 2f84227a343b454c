// Package telegram handles creation of the Telegram bot instance and
// registration of the secretary's handlers.
package telegram

import (
	"context"
	"fmt"
	"log/slog"

	tgbot "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/rsilveira/secretary-bot/internal/bot/handlers"
)

// New creates the Telegram bot instance.
func New(token string, logger *slog.Logger, opts ...tgbot.Option) (*tgbot.Bot, error) {
	if token == "" {
		return nil, fmt.Errorf("telegram bot token cannot be empty")
	}
	log := logger.With("component", "telegram")

	b, err := tgbot.New(token, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}

	log.Info("Telegram bot instance created")
	return b, nil
}

// RegisterHandlers attaches the registered handlers to the bot, wrapping each
// with its middleware.
func RegisterHandlers(b *tgbot.Bot, logger *slog.Logger, registered map[string]handlers.RegisteredHandler) error {
	if b == nil {
		return fmt.Errorf("bot instance cannot be nil")
	}
	log := logger.With("component", "handler_registry")

	for name, rh := range registered {
		if rh.Handler == nil {
			return fmt.Errorf("handler %q is nil", name)
		}

		handler := rh.Handler
		for i := len(rh.Middleware) - 1; i >= 0; i-- {
			handler = rh.Middleware[i](handler)
		}

		b.RegisterHandler(rh.HandlerType, rh.Pattern, rh.MatchType, handler)
		log.Debug("Registered handler", "name", name, "pattern", rh.Pattern)
	}

	log.Info("Telegram handlers registered", "count", len(registered))
	return nil
}

// SetCommandMenu publishes the operator command menu.
func SetCommandMenu(ctx context.Context, b *tgbot.Bot) error {
	_, err := b.SetMyCommands(ctx, &tgbot.SetMyCommandsParams{
		Commands: []models.BotCommand{
			{Command: "summary", Description: "Run a review digest now"},
			{Command: "stats", Description: "Show ledger statistics"},
			{Command: "settings", Description: "Show active configuration"},
			{Command: "priority_add", Description: "Flag a sender as high priority"},
			{Command: "priority_remove", Description: "Unflag a sender"},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to set command menu: %w", err)
	}
	return nil
}
