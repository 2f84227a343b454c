package bot

import (
	"fmt"
	"strings"

	tgbot "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/rsilveira/secretary-bot/internal/database"
	"github.com/rsilveira/secretary-bot/internal/triage"
)

// cardTextLimit caps how much of a message's text a card shows.
const cardTextLimit = 280

// CallbackPrefix marks label callback data: "label:<message_id>:<value>".
const CallbackPrefix = "label:"

// LabelCallbackData builds the callback payload for a label button.
func LabelCallbackData(messageID int64, label string) string {
	return fmt.Sprintf("%s%d:%s", CallbackPrefix, messageID, label)
}

// LabelKeyboard builds the high/medium/low button row for a message card.
func LabelKeyboard(messageID int64) *models.InlineKeyboardMarkup {
	return &models.InlineKeyboardMarkup{
		InlineKeyboard: [][]models.InlineKeyboardButton{{
			{Text: "🔴 High", CallbackData: LabelCallbackData(messageID, database.LabelHigh)},
			{Text: "🟡 Medium", CallbackData: LabelCallbackData(messageID, database.LabelMedium)},
			{Text: "🟢 Low", CallbackData: LabelCallbackData(messageID, database.LabelLow)},
		}},
	}
}

// FormatAlert renders the immediate warning card for a high-scoring message.
func FormatAlert(msg *database.Message) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("⚠️ *Urgent message* \\(score %d\\)\n\n", msg.PriorityScore))
	writeCardBody(&sb, msg)
	return sb.String()
}

// FormatCard renders one digest entry.
func FormatCard(msg *database.Message) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%s *Score %d*\n", scoreEmoji(msg.PriorityScore), msg.PriorityScore))
	writeCardBody(&sb, msg)
	return sb.String()
}

// FormatDigestHeader renders the digest summary line.
func FormatDigestHeader(d *triage.Digest) string {
	return fmt.Sprintf(
		"📋 *Message review* — %s to %s\n%d messages across %d chats, %d selected for review\\.\n\nLabel each card: 🔴 high · 🟡 medium · 🟢 low",
		tgbot.EscapeMarkdown(d.WindowStart.Format("15:04")),
		tgbot.EscapeMarkdown(d.WindowEnd.Format("15:04")),
		d.TotalMessages,
		d.ActiveChats,
		len(d.Messages),
	)
}

// FormatQuiet renders the no-traffic signal.
func FormatQuiet(d *triage.Digest) string {
	return fmt.Sprintf("😴 Quiet period — no messages captured since %s\\.",
		tgbot.EscapeMarkdown(d.WindowStart.Format("15:04")))
}

// FormatAllClear renders the traffic-but-nothing-urgent signal.
func FormatAllClear(d *triage.Digest) string {
	return fmt.Sprintf("✅ All clear — %d messages since %s, nothing needs your attention\\.",
		d.TotalMessages,
		tgbot.EscapeMarkdown(d.WindowStart.Format("15:04")))
}

// FormatLabelConfirmation renders the text a card is edited to after labeling.
func FormatLabelConfirmation(msg *database.Message, applied bool) string {
	label := msg.Label.String
	if applied {
		return fmt.Sprintf("%s Labeled *%s*\n%s",
			labelEmoji(label), tgbot.EscapeMarkdown(label), cardSummaryLine(msg))
	}
	return fmt.Sprintf("%s Already labeled *%s*\n%s",
		labelEmoji(label), tgbot.EscapeMarkdown(label), cardSummaryLine(msg))
}

// FormatStats renders the /stats report.
func FormatStats(stats *database.Stats) string {
	return fmt.Sprintf(
		"📈 *Ledger stats*\nTotal messages: %d\nLast 24h: %d\nLabeled: %d \\(🔴 %d / 🟡 %d / 🟢 %d\\)",
		stats.Total, stats.Last24h, stats.Labeled, stats.High, stats.Medium, stats.Low)
}

func writeCardBody(sb *strings.Builder, msg *database.Message) {
	sb.WriteString(fmt.Sprintf("From *%s* in %s at %s\n",
		tgbot.EscapeMarkdown(senderName(msg)),
		tgbot.EscapeMarkdown(chatName(msg)),
		tgbot.EscapeMarkdown(msg.CapturedAt.Format("15:04"))))

	if signals := signalLine(msg); signals != "" {
		sb.WriteString(signals + "\n")
	}
	if msg.TopicHint.Valid {
		sb.WriteString("📌 " + tgbot.EscapeMarkdown(msg.TopicHint.String) + "\n")
	}

	sb.WriteString("\n" + tgbot.EscapeMarkdown(truncate(msg.Text, cardTextLimit)))
}

func cardSummaryLine(msg *database.Message) string {
	return fmt.Sprintf("_%s in %s_",
		tgbot.EscapeMarkdown(senderName(msg)),
		tgbot.EscapeMarkdown(chatName(msg)))
}

func signalLine(msg *database.Message) string {
	var parts []string
	if msg.HasMention {
		parts = append(parts, "📣 mention")
	}
	if msg.IsQuestion {
		parts = append(parts, "❓ question")
	}
	if msg.TextLength > 100 {
		parts = append(parts, "📜 long")
	}
	return strings.Join(parts, " · ")
}

func scoreEmoji(score int) string {
	switch {
	case score >= 5:
		return "🔴"
	case score >= 3:
		return "🟠"
	default:
		return "🟡"
	}
}

func labelEmoji(label string) string {
	switch label {
	case database.LabelHigh:
		return "🔴"
	case database.LabelMedium:
		return "🟡"
	case database.LabelLow:
		return "🟢"
	}
	return "🏷"
}

func senderName(msg *database.Message) string {
	if msg.SenderName.Valid && msg.SenderName.String != "" {
		return msg.SenderName.String
	}
	return fmt.Sprintf("user %d", msg.SenderID)
}

func chatName(msg *database.Message) string {
	if msg.ChatTitle.Valid && msg.ChatTitle.String != "" {
		return msg.ChatTitle.String
	}
	if msg.ChatKind == database.ChatKindPrivate {
		return "a private chat"
	}
	return fmt.Sprintf("chat %d", msg.ChatID)
}

func truncate(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen-1]) + "…"
}
