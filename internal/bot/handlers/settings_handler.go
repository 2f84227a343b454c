package handlers

import (
	"context"
	"fmt"
	"strings"

	tgbot "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// NewSettingsHandler returns a handler for the /settings command, which
// reports the active triage and scheduling configuration.
func NewSettingsHandler(deps HandlerDeps) tgbot.HandlerFunc {
	return settingsHandler{deps}.Handle
}

type settingsHandler struct {
	deps HandlerDeps
}

func (h settingsHandler) Handle(ctx context.Context, b *tgbot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "settings")

	if update.Message == nil {
		return
	}

	cfg := h.deps.Config

	var sb strings.Builder
	sb.WriteString("⚙️ Current settings\n\n")
	sb.WriteString(fmt.Sprintf("Summary interval: %s\n", cfg.Scheduler.SummaryInterval))
	sb.WriteString(fmt.Sprintf("Startup delay: %s\n", cfg.Scheduler.StartupDelay))
	sb.WriteString(fmt.Sprintf("Warning threshold: %d\n", cfg.Triage.WarningThreshold))
	sb.WriteString(fmt.Sprintf("Digest minimum score: %d\n", cfg.Triage.MinScore))
	sb.WriteString(fmt.Sprintf("Digest size limit: %d\n", cfg.Triage.MaxMessages))

	topicState := "disabled"
	if cfg.Topic.APIKey != "" {
		topicState = fmt.Sprintf("%s (%s timeout)", cfg.Topic.Model, cfg.Topic.Timeout)
	}
	sb.WriteString(fmt.Sprintf("Topic hints: %s", topicState))

	_, err := b.SendMessage(ctx, &tgbot.SendMessageParams{
		ChatID: update.Message.Chat.ID,
		Text:   sb.String(),
	})
	if err != nil {
		log.ErrorContext(ctx, "Failed to send settings", "error", err)
	}
}
