package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
)

// ErrMessageNotFound is returned when an operation references a message id
// that is absent from the ledger.
var ErrMessageNotFound = errors.New("message not found")

// messageColumns is the canonical column list for message selects.
const messageColumns = `id, source_message_id, chat_id, chat_title, chat_kind, sender_id, sender_name,
	text, captured_at, has_mention, is_question, text_length, topic_hint, priority_score,
	alert_sent, alert_sent_at, digest_claimed, digest_claimed_at, label, labeled_at`

// Store defines the ledger operations. Flag-setting methods are conditional
// updates that succeed only while the flag is still unset, so the once-only
// invariants hold across concurrent callers and process instances.
type Store interface {
	// Ping checks the database connection.
	Ping(ctx context.Context) error

	// InsertMessage inserts a new message row and sets message.ID.
	InsertMessage(ctx context.Context, message *Message) error

	// GetMessage retrieves a message by id. Returns ErrMessageNotFound if absent.
	GetMessage(ctx context.Context, id int64) (*Message, error)

	// MarkAlertSent sets the alert-sent flag if it is currently unset.
	// Returns false if the message was already alerted.
	MarkAlertSent(ctx context.Context, id int64, at time.Time) (bool, error)

	// ClaimForDigest selects the top unresolved messages captured at or after
	// cutoff with score >= minScore, marks them digest-claimed in the same
	// transaction, and returns them ordered by score desc, capture time desc.
	ClaimForDigest(ctx context.Context, cutoff time.Time, minScore, limit int, at time.Time) ([]Message, error)

	// SetLabelIfUnset sets label and labeled-at if the message is unlabeled.
	// Returns false if a label was already present.
	SetLabelIfUnset(ctx context.Context, id int64, label string, at time.Time) (bool, error)

	// CountMessagesSince counts all messages captured at or after cutoff,
	// regardless of label or claim state.
	CountMessagesSince(ctx context.Context, cutoff time.Time) (int, error)

	// CountChatsSince counts distinct chats with messages captured at or after cutoff.
	CountChatsSince(ctx context.Context, cutoff time.Time) (int, error)

	// GetStats returns ledger-wide counts for reporting.
	GetStats(ctx context.Context, now time.Time) (*Stats, error)

	// ListHighPriorityUserIDs returns all flagged sender ids.
	ListHighPriorityUserIDs(ctx context.Context) ([]int64, error)

	// AddHighPriorityUser flags a sender. Adding an existing entry is a no-op.
	AddHighPriorityUser(ctx context.Context, userID int64) error

	// RemoveHighPriorityUser unflags a sender. Removing a missing entry is a no-op.
	RemoveHighPriorityUser(ctx context.Context, userID int64) error
}

// sqlxStore implements Store using sqlx.
type sqlxStore struct {
	db     *sqlx.DB
	logger *slog.Logger
}

// NewStore creates a Store backed by sqlx. It requires a connected sqlx.DB
// instance and a logger.
func NewStore(db *sqlx.DB, logger *slog.Logger) Store {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &sqlxStore{
		db:     db,
		logger: logger.With("component", "store"),
	}
}

func (s *sqlxStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *sqlxStore) InsertMessage(ctx context.Context, message *Message) error {
	if message == nil {
		return fmt.Errorf("cannot insert nil message")
	}
	if message.ChatID == 0 {
		return fmt.Errorf("message must have a non-zero chat_id")
	}
	if message.SenderID == 0 {
		return fmt.Errorf("message must have a non-zero sender_id")
	}
	if message.CapturedAt.IsZero() {
		return fmt.Errorf("message must have a non-zero capture timestamp")
	}

	query := `
        INSERT INTO messages (
            source_message_id, chat_id, chat_title, chat_kind, sender_id, sender_name,
            text, captured_at, has_mention, is_question, text_length, topic_hint, priority_score,
            alert_sent, digest_claimed
        ) VALUES (
            :source_message_id, :chat_id, :chat_title, :chat_kind, :sender_id, :sender_name,
            :text, :captured_at, :has_mention, :is_question, :text_length, :topic_hint, :priority_score,
            0, 0
        );
    `

	result, err := s.db.NamedExecContext(ctx, query, message)
	if err != nil {
		s.logger.ErrorContext(ctx, "Error inserting message",
			"chat_id", message.ChatID, "sender_id", message.SenderID, "error", err)
		return fmt.Errorf("failed to insert message (chat %d, sender %d): %w",
			message.ChatID, message.SenderID, err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to retrieve inserted message id: %w", err)
	}
	message.ID = id

	s.logger.DebugContext(ctx, "Message inserted",
		"message_id", id, "chat_id", message.ChatID, "score", message.PriorityScore)
	return nil
}

func (s *sqlxStore) GetMessage(ctx context.Context, id int64) (*Message, error) {
	var message Message
	query := `SELECT ` + messageColumns + ` FROM messages WHERE id = ?`

	err := s.db.GetContext(ctx, &message, query, id)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return nil, ErrMessageNotFound
	case err != nil:
		s.logger.ErrorContext(ctx, "Error getting message", "message_id", id, "error", err)
		return nil, fmt.Errorf("failed to get message %d: %w", id, err)
	}

	return &message, nil
}

func (s *sqlxStore) MarkAlertSent(ctx context.Context, id int64, at time.Time) (bool, error) {
	query := `UPDATE messages SET alert_sent = 1, alert_sent_at = ? WHERE id = ? AND alert_sent = 0`

	result, err := s.db.ExecContext(ctx, query, at, id)
	if err != nil {
		s.logger.ErrorContext(ctx, "Error marking alert sent", "message_id", id, "error", err)
		return false, fmt.Errorf("failed to mark alert sent for message %d: %w", id, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get affected rows for message %d: %w", id, err)
	}

	return affected == 1, nil
}

func (s *sqlxStore) ClaimForDigest(ctx context.Context, cutoff time.Time, minScore, limit int, at time.Time) ([]Message, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to begin transaction for digest claim", "error", err)
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if tx != nil {
			if rollbackErr := tx.Rollback(); rollbackErr != nil && !errors.Is(rollbackErr, sql.ErrTxDone) {
				s.logger.WarnContext(ctx, "Error rolling back transaction", "error", rollbackErr)
			}
		}
	}()

	var candidates []Message
	query := `
        SELECT ` + messageColumns + `
        FROM messages
        WHERE captured_at >= ?
          AND label IS NULL
          AND digest_claimed = 0
          AND priority_score >= ?
        ORDER BY priority_score DESC, captured_at DESC
        LIMIT ?;
    `
	if err := tx.SelectContext(ctx, &candidates, query, cutoff, minScore, limit); err != nil {
		s.logger.ErrorContext(ctx, "Error selecting digest candidates", "error", err)
		return nil, fmt.Errorf("failed to select digest candidates: %w", err)
	}

	// Conditional per-row update: a candidate claimed by a concurrent run
	// between the select and this update drops out instead of being
	// double-claimed.
	claimed := make([]Message, 0, len(candidates))
	for i := range candidates {
		result, err := tx.ExecContext(ctx,
			`UPDATE messages SET digest_claimed = 1, digest_claimed_at = ? WHERE id = ? AND digest_claimed = 0`,
			at, candidates[i].ID)
		if err != nil {
			s.logger.ErrorContext(ctx, "Error claiming message for digest",
				"message_id", candidates[i].ID, "error", err)
			return nil, fmt.Errorf("failed to claim message %d: %w", candidates[i].ID, err)
		}

		affected, err := result.RowsAffected()
		if err != nil {
			return nil, fmt.Errorf("failed to get affected rows for message %d: %w", candidates[i].ID, err)
		}
		if affected != 1 {
			s.logger.WarnContext(ctx, "Message already claimed by a concurrent run, skipping",
				"message_id", candidates[i].ID)
			continue
		}

		candidates[i].DigestClaimed = true
		candidates[i].DigestClaimedAt = sql.NullTime{Time: at, Valid: true}
		claimed = append(claimed, candidates[i])
	}

	if err := tx.Commit(); err != nil {
		s.logger.ErrorContext(ctx, "Failed to commit digest claim transaction", "error", err)
		return nil, fmt.Errorf("failed to commit digest claim: %w", err)
	}
	tx = nil

	s.logger.DebugContext(ctx, "Claimed messages for digest",
		"count", len(claimed), "cutoff", cutoff, "min_score", minScore)
	return claimed, nil
}

func (s *sqlxStore) SetLabelIfUnset(ctx context.Context, id int64, label string, at time.Time) (bool, error) {
	if !ValidLabel(label) {
		return false, fmt.Errorf("invalid label value %q", label)
	}

	query := `UPDATE messages SET label = ?, labeled_at = ? WHERE id = ? AND label IS NULL`

	result, err := s.db.ExecContext(ctx, query, label, at, id)
	if err != nil {
		s.logger.ErrorContext(ctx, "Error setting label", "message_id", id, "label", label, "error", err)
		return false, fmt.Errorf("failed to set label for message %d: %w", id, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get affected rows for message %d: %w", id, err)
	}

	return affected == 1, nil
}

func (s *sqlxStore) CountMessagesSince(ctx context.Context, cutoff time.Time) (int, error) {
	var count int
	err := s.db.GetContext(ctx, &count,
		`SELECT COUNT(id) FROM messages WHERE captured_at >= ?`, cutoff)
	if err != nil {
		s.logger.ErrorContext(ctx, "Error counting messages", "error", err)
		return 0, fmt.Errorf("failed to count messages: %w", err)
	}
	return count, nil
}

func (s *sqlxStore) CountChatsSince(ctx context.Context, cutoff time.Time) (int, error) {
	var count int
	err := s.db.GetContext(ctx, &count,
		`SELECT COUNT(DISTINCT chat_id) FROM messages WHERE captured_at >= ?`, cutoff)
	if err != nil {
		s.logger.ErrorContext(ctx, "Error counting chats", "error", err)
		return 0, fmt.Errorf("failed to count chats: %w", err)
	}
	return count, nil
}

func (s *sqlxStore) GetStats(ctx context.Context, now time.Time) (*Stats, error) {
	stats := &Stats{}
	dayAgo := now.Add(-24 * time.Hour)

	queries := []struct {
		dest  *int
		query string
		args  []any
	}{
		{&stats.Total, `SELECT COUNT(id) FROM messages`, nil},
		{&stats.Last24h, `SELECT COUNT(id) FROM messages WHERE captured_at >= ?`, []any{dayAgo}},
		{&stats.Labeled, `SELECT COUNT(id) FROM messages WHERE label IS NOT NULL`, nil},
		{&stats.High, `SELECT COUNT(id) FROM messages WHERE label = ?`, []any{LabelHigh}},
		{&stats.Medium, `SELECT COUNT(id) FROM messages WHERE label = ?`, []any{LabelMedium}},
		{&stats.Low, `SELECT COUNT(id) FROM messages WHERE label = ?`, []any{LabelLow}},
	}

	for _, q := range queries {
		if err := s.db.GetContext(ctx, q.dest, q.query, q.args...); err != nil {
			s.logger.ErrorContext(ctx, "Error collecting stats", "error", err)
			return nil, fmt.Errorf("failed to collect stats: %w", err)
		}
	}

	return stats, nil
}

func (s *sqlxStore) ListHighPriorityUserIDs(ctx context.Context) ([]int64, error) {
	var ids []int64
	err := s.db.SelectContext(ctx, &ids, `SELECT user_id FROM high_priority_users`)
	if err != nil {
		s.logger.ErrorContext(ctx, "Error listing high priority users", "error", err)
		return nil, fmt.Errorf("failed to list high priority users: %w", err)
	}
	return ids, nil
}

func (s *sqlxStore) AddHighPriorityUser(ctx context.Context, userID int64) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO high_priority_users (user_id, created_at) VALUES (?, ?)
         ON CONFLICT(user_id) DO NOTHING`,
		userID, time.Now().UTC())
	if err != nil {
		s.logger.ErrorContext(ctx, "Error adding high priority user", "user_id", userID, "error", err)
		return fmt.Errorf("failed to add high priority user %d: %w", userID, err)
	}

	s.logger.InfoContext(ctx, "High priority user added", "user_id", userID)
	return nil
}

func (s *sqlxStore) RemoveHighPriorityUser(ctx context.Context, userID int64) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM high_priority_users WHERE user_id = ?`, userID)
	if err != nil {
		s.logger.ErrorContext(ctx, "Error removing high priority user", "user_id", userID, "error", err)
		return fmt.Errorf("failed to remove high priority user %d: %w", userID, err)
	}

	s.logger.InfoContext(ctx, "High priority user removed", "user_id", userID)
	return nil
}
