package bot

import (
	"database/sql"
	"strings"
	"testing"
	"time"

	"github.com/rsilveira/secretary-bot/internal/database"
	"github.com/rsilveira/secretary-bot/internal/triage"
)

func sampleMessage() *database.Message {
	return &database.Message{
		ID:            12,
		ChatID:        -1001,
		ChatTitle:     sql.NullString{String: "Team Chat", Valid: true},
		ChatKind:      database.ChatKindGroup,
		SenderID:      42,
		SenderName:    sql.NullString{String: "Alice", Valid: true},
		Text:          "hey @boss, can you approve the release?",
		CapturedAt:    time.Date(2025, 3, 10, 14, 30, 0, 0, time.UTC),
		HasMention:    true,
		IsQuestion:    true,
		TextLength:    39,
		PriorityScore: 5,
	}
}

func TestLabelCallbackData(t *testing.T) {
	t.Parallel()

	got := LabelCallbackData(12, database.LabelHigh)
	if got != "label:12:high" {
		t.Errorf("LabelCallbackData() = %q, want %q", got, "label:12:high")
	}
}

func TestLabelKeyboard(t *testing.T) {
	t.Parallel()

	kb := LabelKeyboard(7)
	if len(kb.InlineKeyboard) != 1 || len(kb.InlineKeyboard[0]) != 3 {
		t.Fatalf("keyboard shape = %v, want one row of three buttons", kb.InlineKeyboard)
	}

	wantData := []string{"label:7:high", "label:7:medium", "label:7:low"}
	for i, btn := range kb.InlineKeyboard[0] {
		if btn.CallbackData != wantData[i] {
			t.Errorf("button %d data = %q, want %q", i, btn.CallbackData, wantData[i])
		}
	}
}

func TestFormatAlertEscapesContent(t *testing.T) {
	t.Parallel()

	msg := sampleMessage()
	msg.Text = "is v2.1 ready? (blocking!)"

	out := FormatAlert(msg)
	if !strings.Contains(out, "score 5") {
		t.Errorf("alert missing score: %q", out)
	}
	if !strings.Contains(out, "Alice") || !strings.Contains(out, "Team Chat") {
		t.Errorf("alert missing sender or chat: %q", out)
	}
	// Markdown-sensitive characters in user content must arrive escaped.
	if !strings.Contains(out, `v2\.1`) || !strings.Contains(out, `\(blocking`) {
		t.Errorf("alert content not escaped: %q", out)
	}
}

func TestFormatCardSignals(t *testing.T) {
	t.Parallel()

	out := FormatCard(sampleMessage())
	if !strings.Contains(out, "📣 mention") || !strings.Contains(out, "❓ question") {
		t.Errorf("card missing signal line: %q", out)
	}
	if strings.Contains(out, "📜 long") {
		t.Errorf("short message should not carry the long signal: %q", out)
	}
}

func TestFormatCardTopicHint(t *testing.T) {
	t.Parallel()

	msg := sampleMessage()
	msg.TopicHint = sql.NullString{String: "release approval", Valid: true}

	out := FormatCard(msg)
	if !strings.Contains(out, "📌 release approval") {
		t.Errorf("card missing topic hint: %q", out)
	}

	msg.TopicHint = sql.NullString{}
	if strings.Contains(FormatCard(msg), "📌") {
		t.Error("card should omit the hint line when no hint is set")
	}
}

func TestFormatDigestHeader(t *testing.T) {
	t.Parallel()

	d := &triage.Digest{
		WindowStart:   time.Date(2025, 3, 10, 10, 0, 0, 0, time.UTC),
		WindowEnd:     time.Date(2025, 3, 10, 14, 0, 0, 0, time.UTC),
		TotalMessages: 40,
		ActiveChats:   3,
		Messages:      make([]database.Message, 5),
	}

	out := FormatDigestHeader(d)
	for _, want := range []string{"10:00", "14:00", "40 messages", "3 chats", "5 selected", "🔴 high"} {
		if !strings.Contains(out, want) {
			t.Errorf("digest header missing %q: %q", want, out)
		}
	}
}

func TestFormatQuietAndAllClear(t *testing.T) {
	t.Parallel()

	d := &triage.Digest{
		WindowStart:   time.Date(2025, 3, 10, 10, 0, 0, 0, time.UTC),
		WindowEnd:     time.Date(2025, 3, 10, 14, 0, 0, 0, time.UTC),
		TotalMessages: 12,
	}

	if out := FormatQuiet(d); !strings.Contains(out, "10:00") {
		t.Errorf("quiet signal missing window start: %q", out)
	}
	if out := FormatAllClear(d); !strings.Contains(out, "12 messages") {
		t.Errorf("all-clear signal missing total: %q", out)
	}
}

func TestFormatLabelConfirmation(t *testing.T) {
	t.Parallel()

	msg := sampleMessage()
	msg.Label = sql.NullString{String: database.LabelHigh, Valid: true}

	applied := FormatLabelConfirmation(msg, true)
	if !strings.Contains(applied, "Labeled *high*") {
		t.Errorf("confirmation = %q, want applied wording", applied)
	}

	repeat := FormatLabelConfirmation(msg, false)
	if !strings.Contains(repeat, "Already labeled *high*") {
		t.Errorf("confirmation = %q, want already-labeled wording", repeat)
	}
}

func TestTruncate(t *testing.T) {
	t.Parallel()

	if got := truncate("short", 10); got != "short" {
		t.Errorf("truncate() = %q, want unchanged", got)
	}

	long := strings.Repeat("a", 300)
	got := truncate(long, cardTextLimit)
	if len([]rune(got)) != cardTextLimit {
		t.Errorf("truncated length = %d, want %d", len([]rune(got)), cardTextLimit)
	}
	if !strings.HasSuffix(got, "…") {
		t.Errorf("truncated text should end with ellipsis: %q", got[len(got)-10:])
	}
}
