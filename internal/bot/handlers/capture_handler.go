package handlers

import (
	"context"
	"errors"
	"strings"
	"time"

	tgbot "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/rsilveira/secretary-bot/internal/database"
	"github.com/rsilveira/secretary-bot/internal/triage"
)

// NewCaptureHandler returns the bot's default handler. Every text message
// the bot can see that isn't a command goes through the triage pipeline.
func NewCaptureHandler(deps HandlerDeps) tgbot.HandlerFunc {
	return captureHandler{deps}.Handle
}

type captureHandler struct {
	deps HandlerDeps
}

func (h captureHandler) Handle(ctx context.Context, b *tgbot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "capture")

	msg := update.Message
	if msg == nil || msg.From == nil {
		return
	}

	text := msg.Text
	if text == "" {
		text = msg.Caption
	}
	// Commands, media without captions, and the operator's own traffic are
	// not secretary material.
	if strings.HasPrefix(text, "/") || strings.TrimSpace(text) == "" {
		return
	}
	if msg.From.IsBot || msg.From.ID == h.deps.Config.Telegram.OwnerID {
		return
	}

	captured, err := h.deps.Pipeline.Ingest(ctx, triage.Inbound{
		SourceMessageID: int64(msg.ID),
		ChatID:          msg.Chat.ID,
		ChatTitle:       msg.Chat.Title,
		ChatKind:        chatKind(msg.Chat.Type),
		SenderID:        msg.From.ID,
		SenderName:      displayName(msg.From),
		Text:            text,
		CapturedAt:      time.Unix(int64(msg.Date), 0).UTC(),
	})
	if err != nil {
		if errors.Is(err, triage.ErrEmptyText) {
			return
		}
		log.ErrorContext(ctx, "Failed to ingest message",
			"chat_id", msg.Chat.ID, "source_message_id", msg.ID, "error", err)
		return
	}

	log.DebugContext(ctx, "Message captured",
		"message_id", captured.ID, "chat_id", captured.ChatID, "score", captured.PriorityScore)
}

func chatKind(t models.ChatType) string {
	switch t {
	case models.ChatTypePrivate:
		return database.ChatKindPrivate
	case models.ChatTypeGroup:
		return database.ChatKindGroup
	case models.ChatTypeSupergroup:
		return database.ChatKindSupergroup
	case models.ChatTypeChannel:
		return database.ChatKindChannel
	}
	return database.ChatKindUnknown
}

func displayName(u *models.User) string {
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name != "" {
		return name
	}
	return u.Username
}
