package database

import (
	"database/sql"
	"time"
)

// Label values the operator can assign when classifying a message.
const (
	LabelHigh   = "high"
	LabelMedium = "medium"
	LabelLow    = "low"
)

// ValidLabel reports whether s is one of the accepted label values.
func ValidLabel(s string) bool {
	switch s {
	case LabelHigh, LabelMedium, LabelLow:
		return true
	}
	return false
}

// Chat kinds as reported by the capture transport.
const (
	ChatKindPrivate    = "private"
	ChatKindGroup      = "group"
	ChatKindSupergroup = "supergroup"
	ChatKindChannel    = "channel"
	ChatKindUnknown    = "unknown"
)

// Message is one captured inbound message together with its triage state.
// AlertSent, DigestClaimed, and Label are independent facets rather than a
// single state tag: a message may be alerted, claimed, and still unlabeled,
// or labeled without ever being claimed. Each facet is set at most once.
type Message struct {
	ID              int64          `db:"id"`
	SourceMessageID int64          `db:"source_message_id"`
	ChatID          int64          `db:"chat_id"`
	ChatTitle       sql.NullString `db:"chat_title"`
	ChatKind        string         `db:"chat_kind"`
	SenderID        int64          `db:"sender_id"`
	SenderName      sql.NullString `db:"sender_name"`
	Text            string         `db:"text"`
	CapturedAt      time.Time      `db:"captured_at"`

	HasMention    bool           `db:"has_mention"`
	IsQuestion    bool           `db:"is_question"`
	TextLength    int            `db:"text_length"`
	TopicHint     sql.NullString `db:"topic_hint"`
	PriorityScore int            `db:"priority_score"`

	AlertSent       bool           `db:"alert_sent"`
	AlertSentAt     sql.NullTime   `db:"alert_sent_at"`
	DigestClaimed   bool           `db:"digest_claimed"`
	DigestClaimedAt sql.NullTime   `db:"digest_claimed_at"`
	Label           sql.NullString `db:"label"`
	LabeledAt       sql.NullTime   `db:"labeled_at"`
}

// HighPriorityUser flags a sender whose messages receive a scoring boost.
// Rows are managed through the administrative commands; the intake path only
// reads a cached snapshot of them.
type HighPriorityUser struct {
	UserID    int64     `db:"user_id"`
	CreatedAt time.Time `db:"created_at"`
}

// Stats summarizes the ledger contents for reporting.
type Stats struct {
	Total   int
	Last24h int
	Labeled int
	High    int
	Medium  int
	Low     int
}
