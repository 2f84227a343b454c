package handlers

import (
	"context"

	tgbot "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// NewSummaryHandler returns a handler for the /summary command, which runs a
// digest pass immediately instead of waiting for the schedule.
func NewSummaryHandler(deps HandlerDeps) tgbot.HandlerFunc {
	return summaryHandler{deps}.Handle
}

type summaryHandler struct {
	deps HandlerDeps
}

func (h summaryHandler) Handle(ctx context.Context, b *tgbot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "summary")

	if update.Message == nil {
		return
	}

	log.InfoContext(ctx, "Handling /summary command", "chat_id", update.Message.Chat.ID)

	if err := h.deps.Selector.Run(ctx); err != nil {
		log.ErrorContext(ctx, "On-demand digest failed", "error", err)
		_, sendErr := b.SendMessage(ctx, &tgbot.SendMessageParams{
			ChatID: update.Message.Chat.ID,
			Text:   "Digest failed, check the logs.",
		})
		if sendErr != nil {
			log.ErrorContext(ctx, "Failed to send digest failure notice", "error", sendErr)
		}
	}
}
