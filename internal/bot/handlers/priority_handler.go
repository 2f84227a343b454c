package handlers

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	tgbot "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// NewPriorityAddHandler returns a handler for /priority_add <user_id>.
func NewPriorityAddHandler(deps HandlerDeps) tgbot.HandlerFunc {
	return priorityHandler{deps: deps, add: true}.Handle
}

// NewPriorityRemoveHandler returns a handler for /priority_remove <user_id>.
func NewPriorityRemoveHandler(deps HandlerDeps) tgbot.HandlerFunc {
	return priorityHandler{deps: deps, add: false}.Handle
}

type priorityHandler struct {
	deps HandlerDeps
	add  bool
}

func (h priorityHandler) Handle(ctx context.Context, b *tgbot.Bot, update *models.Update) {
	command := "priority_remove"
	if h.add {
		command = "priority_add"
	}
	log := h.deps.Logger.With("handler", command)

	if update.Message == nil {
		return
	}
	chatID := update.Message.Chat.ID

	userID, err := parseUserIDArg(update.Message)
	if err != nil {
		h.reply(ctx, b, log, chatID,
			fmt.Sprintf("Usage: /%s <user_id>, or reply to a message from the user.", command))
		return
	}

	if h.add {
		err = h.deps.Store.AddHighPriorityUser(ctx, userID)
	} else {
		err = h.deps.Store.RemoveHighPriorityUser(ctx, userID)
	}
	if err != nil {
		log.ErrorContext(ctx, "Failed to update high priority set", "user_id", userID, "error", err)
		h.reply(ctx, b, log, chatID, "Could not update the priority list, check the logs.")
		return
	}

	// New messages pick the change up through the registry snapshot.
	if err := h.deps.Registry.Refresh(ctx); err != nil {
		log.ErrorContext(ctx, "Failed to refresh registry", "error", err)
		h.reply(ctx, b, log, chatID, "Saved, but the running snapshot could not be refreshed.")
		return
	}

	if h.add {
		h.reply(ctx, b, log, chatID, fmt.Sprintf("User %d is now high priority.", userID))
	} else {
		h.reply(ctx, b, log, chatID, fmt.Sprintf("User %d is no longer high priority.", userID))
	}
}

func (h priorityHandler) reply(ctx context.Context, b *tgbot.Bot, log *slog.Logger, chatID int64, text string) {
	_, err := b.SendMessage(ctx, &tgbot.SendMessageParams{ChatID: chatID, Text: text})
	if err != nil {
		log.ErrorContext(ctx, "Failed to send reply", "error", err)
	}
}

// parseUserIDArg extracts the target user id from the command argument, or
// from the replied-to message's sender when the command has no argument.
func parseUserIDArg(msg *models.Message) (int64, error) {
	fields := strings.Fields(msg.Text)
	if len(fields) >= 2 {
		userID, err := strconv.ParseInt(fields[1], 10, 64)
		if err != nil || userID <= 0 {
			return 0, fmt.Errorf("invalid user id %q", fields[1])
		}
		return userID, nil
	}

	if msg.ReplyToMessage != nil && msg.ReplyToMessage.From != nil {
		return msg.ReplyToMessage.From.ID, nil
	}

	return 0, fmt.Errorf("no user id given")
}
