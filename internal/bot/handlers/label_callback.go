package handlers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	tgbot "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/rsilveira/secretary-bot/internal/bot"
	"github.com/rsilveira/secretary-bot/internal/database"
	"github.com/rsilveira/secretary-bot/internal/triage"
)

// ParseLabelCallback splits "label:<message_id>:<value>" callback data.
func ParseLabelCallback(data string) (int64, string, error) {
	rest, ok := strings.CutPrefix(data, bot.CallbackPrefix)
	if !ok {
		return 0, "", fmt.Errorf("callback data %q has no label prefix", data)
	}

	idStr, label, ok := strings.Cut(rest, ":")
	if !ok {
		return 0, "", fmt.Errorf("callback data %q is malformed", data)
	}

	messageID, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil || messageID <= 0 {
		return 0, "", fmt.Errorf("callback data %q has invalid message id", data)
	}

	return messageID, label, nil
}

// NewLabelCallbackHandler returns the handler for label button presses. It
// applies the label, answers the callback, and rewrites the card so the
// buttons disappear.
func NewLabelCallbackHandler(deps HandlerDeps) tgbot.HandlerFunc {
	return labelCallbackHandler{deps}.Handle
}

type labelCallbackHandler struct {
	deps HandlerDeps
}

func (h labelCallbackHandler) Handle(ctx context.Context, b *tgbot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "label_callback")

	if update.CallbackQuery == nil {
		return
	}
	query := update.CallbackQuery

	messageID, label, err := ParseLabelCallback(query.Data)
	if err != nil {
		log.WarnContext(ctx, "Malformed label callback", "data", query.Data, "error", err)
		h.answer(ctx, b, log, query.ID, "Malformed label request.")
		return
	}

	result, err := h.deps.Resolver.Apply(ctx, messageID, label)
	switch {
	case errors.Is(err, database.ErrMessageNotFound):
		h.answer(ctx, b, log, query.ID, "That message is gone from the ledger.")
		return
	case err != nil:
		log.ErrorContext(ctx, "Failed to apply label",
			"message_id", messageID, "label", label, "error", err)
		h.answer(ctx, b, log, query.ID, "Labeling failed, check the logs.")
		return
	}

	if result.Applied {
		h.answer(ctx, b, log, query.ID, "Labeled "+label+".")
	} else {
		h.answer(ctx, b, log, query.ID, "Already labeled "+result.Message.Label.String+".")
	}

	h.rewriteCard(ctx, b, log, query, result)
}

func (h labelCallbackHandler) answer(ctx context.Context, b *tgbot.Bot, log *slog.Logger, queryID, text string) {
	_, err := b.AnswerCallbackQuery(ctx, &tgbot.AnswerCallbackQueryParams{
		CallbackQueryID: queryID,
		Text:            text,
	})
	if err != nil {
		log.ErrorContext(ctx, "Failed to answer callback query", "error", err)
	}
}

// rewriteCard replaces the card text with the label confirmation, dropping
// the inline keyboard. Skipped when Telegram reports the card inaccessible.
func (h labelCallbackHandler) rewriteCard(ctx context.Context, b *tgbot.Bot, log *slog.Logger, query *models.CallbackQuery, result *triage.LabelResult) {
	if query.Message.Message == nil {
		return
	}

	_, err := b.EditMessageText(ctx, &tgbot.EditMessageTextParams{
		ChatID:    query.Message.Message.Chat.ID,
		MessageID: query.Message.Message.ID,
		Text:      bot.FormatLabelConfirmation(result.Message, result.Applied),
		ParseMode: models.ParseModeMarkdown,
	})
	if err != nil {
		log.ErrorContext(ctx, "Failed to rewrite labeled card",
			"message_id", result.Message.ID, "error", err)
	}
}
