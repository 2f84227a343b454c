package handlers

import (
	"context"
	"time"

	tgbot "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/rsilveira/secretary-bot/internal/bot"
)

// NewStatsHandler returns a handler for the /stats command.
func NewStatsHandler(deps HandlerDeps) tgbot.HandlerFunc {
	return statsHandler{deps}.Handle
}

type statsHandler struct {
	deps HandlerDeps
}

func (h statsHandler) Handle(ctx context.Context, b *tgbot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "stats")

	if update.Message == nil {
		return
	}

	stats, err := h.deps.Store.GetStats(ctx, time.Now().UTC())
	if err != nil {
		log.ErrorContext(ctx, "Failed to collect stats", "error", err)
		_, sendErr := b.SendMessage(ctx, &tgbot.SendMessageParams{
			ChatID: update.Message.Chat.ID,
			Text:   "Could not collect stats, check the logs.",
		})
		if sendErr != nil {
			log.ErrorContext(ctx, "Failed to send stats failure notice", "error", sendErr)
		}
		return
	}

	_, err = b.SendMessage(ctx, &tgbot.SendMessageParams{
		ChatID:    update.Message.Chat.ID,
		Text:      bot.FormatStats(stats),
		ParseMode: models.ParseModeMarkdown,
	})
	if err != nil {
		log.ErrorContext(ctx, "Failed to send stats", "error", err)
	}
}
