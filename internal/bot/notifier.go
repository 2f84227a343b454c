package bot

import (
	"context"
	"fmt"
	"log/slog"

	tgbot "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/rsilveira/secretary-bot/internal/database"
	"github.com/rsilveira/secretary-bot/internal/triage"
)

// Notifier delivers alerts and digests to the operator's private chat. It
// implements triage.Alerter and triage.Deliverer.
type Notifier struct {
	tgBot   *tgbot.Bot
	ownerID int64
	logger  *slog.Logger
}

// NewNotifier creates a Notifier targeting the operator.
func NewNotifier(tgBot *tgbot.Bot, ownerID int64, logger *slog.Logger) *Notifier {
	return &Notifier{
		tgBot:   tgBot,
		ownerID: ownerID,
		logger:  logger.With("component", "notifier"),
	}
}

// SendAlert pushes an immediate warning card with label buttons.
func (n *Notifier) SendAlert(ctx context.Context, msg *database.Message) error {
	_, err := n.tgBot.SendMessage(ctx, &tgbot.SendMessageParams{
		ChatID:      n.ownerID,
		Text:        FormatAlert(msg),
		ParseMode:   models.ParseModeMarkdown,
		ReplyMarkup: LabelKeyboard(msg.ID),
	})
	if err != nil {
		return fmt.Errorf("failed to send alert for message %d: %w", msg.ID, err)
	}

	n.logger.InfoContext(ctx, "Alert delivered",
		"message_id", msg.ID, "score", msg.PriorityScore)
	return nil
}

// DeliverDigest sends the digest header followed by one card per claimed
// message, each with its label buttons. A failed card aborts the rest; the
// claims stay consumed either way.
func (n *Notifier) DeliverDigest(ctx context.Context, digest *triage.Digest) error {
	_, err := n.tgBot.SendMessage(ctx, &tgbot.SendMessageParams{
		ChatID:    n.ownerID,
		Text:      FormatDigestHeader(digest),
		ParseMode: models.ParseModeMarkdown,
	})
	if err != nil {
		return fmt.Errorf("failed to send digest header: %w", err)
	}

	for i := range digest.Messages {
		msg := &digest.Messages[i]
		_, err := n.tgBot.SendMessage(ctx, &tgbot.SendMessageParams{
			ChatID:      n.ownerID,
			Text:        FormatCard(msg),
			ParseMode:   models.ParseModeMarkdown,
			ReplyMarkup: LabelKeyboard(msg.ID),
		})
		if err != nil {
			return fmt.Errorf("failed to send digest card for message %d: %w", msg.ID, err)
		}
	}

	n.logger.InfoContext(ctx, "Digest delivered", "cards", len(digest.Messages))
	return nil
}

// DeliverQuiet reports a window with no captured traffic.
func (n *Notifier) DeliverQuiet(ctx context.Context, digest *triage.Digest) error {
	return n.sendPlain(ctx, FormatQuiet(digest))
}

// DeliverAllClear reports a window with traffic but nothing to review.
func (n *Notifier) DeliverAllClear(ctx context.Context, digest *triage.Digest) error {
	return n.sendPlain(ctx, FormatAllClear(digest))
}

// SendStartupNotice tells the operator the bot is up. Best effort.
func (n *Notifier) SendStartupNotice(ctx context.Context) {
	if err := n.sendPlain(ctx, "🤖 Secretary bot is up and watching your chats\\."); err != nil {
		n.logger.WarnContext(ctx, "Failed to send startup notice", "error", err)
	}
}

func (n *Notifier) sendPlain(ctx context.Context, text string) error {
	_, err := n.tgBot.SendMessage(ctx, &tgbot.SendMessageParams{
		ChatID:    n.ownerID,
		Text:      text,
		ParseMode: models.ParseModeMarkdown,
	})
	if err != nil {
		return fmt.Errorf("failed to send notification: %w", err)
	}
	return nil
}
