// Package handlers contains Telegram command, callback, and capture handlers
// for the secretary bot, along with their registration logic and middleware.
package handlers

import (
	"context"

	tgbot "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// OwnerOnly restricts a handler to the configured operator. Updates from
// anyone else are dropped silently; the bot sits in shared groups and must
// not advertise itself by replying there.
func OwnerOnly(deps HandlerDeps) tgbot.Middleware {
	return func(next tgbot.HandlerFunc) tgbot.HandlerFunc {
		return func(ctx context.Context, b *tgbot.Bot, update *models.Update) {
			var userID int64
			switch {
			case update.Message != nil && update.Message.From != nil:
				userID = update.Message.From.ID
			case update.CallbackQuery != nil:
				userID = update.CallbackQuery.From.ID
			default:
				return
			}

			if userID != deps.Config.Telegram.OwnerID {
				deps.Logger.WarnContext(ctx, "Ignoring update from non-owner",
					"user_id", userID, "update_id", update.ID)
				return
			}

			next(ctx, b, update)
		}
	}
}
