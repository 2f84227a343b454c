package handlers

import (
	"context"

	tgbot "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

const startText = "I'm your secretary bot. I watch the chats I'm in, score incoming messages, " +
	"alert you about urgent ones, and send a periodic review digest.\n\n" +
	"/summary - run a digest now\n" +
	"/stats - ledger statistics\n" +
	"/settings - current configuration\n" +
	"/priority_add <user_id> - boost a sender's messages\n" +
	"/priority_remove <user_id> - remove the boost"

// NewStartHandler returns a handler for the /start command.
func NewStartHandler(deps HandlerDeps) tgbot.HandlerFunc {
	return startHandler{deps}.Handle
}

type startHandler struct {
	deps HandlerDeps
}

func (h startHandler) Handle(ctx context.Context, b *tgbot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "start")

	if update.Message == nil {
		return
	}

	log.InfoContext(ctx, "Handling /start command", "chat_id", update.Message.Chat.ID)

	_, err := b.SendMessage(ctx, &tgbot.SendMessageParams{
		ChatID: update.Message.Chat.ID,
		Text:   startText,
	})
	if err != nil {
		log.ErrorContext(ctx, "Failed to send start message", "error", err)
	}
}
