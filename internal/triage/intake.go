// Package triage contains the message triage core: feature extraction and
// priority scoring, the intake pipeline that persists and alerts, the
// periodic digest selector, and operator labeling.
package triage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/rsilveira/secretary-bot/internal/database"
)

// ErrEmptyText is returned when an inbound message carries no usable text.
var ErrEmptyText = errors.New("message text is empty")

// Alerter delivers an immediate warning for a single high-scoring message.
type Alerter interface {
	SendAlert(ctx context.Context, msg *database.Message) error
}

// TopicHinter produces a short topic summary for a message's text. The hint
// is decorative: any error or timeout folds to "no hint" at intake.
type TopicHinter interface {
	TopicHint(ctx context.Context, text string) (string, error)
}

// Inbound is a captured message before triage.
type Inbound struct {
	SourceMessageID int64
	ChatID          int64
	ChatTitle       string
	ChatKind        string
	SenderID        int64
	SenderName      string
	Text            string
	CapturedAt      time.Time
}

// PipelineConfig holds the intake tunables.
type PipelineConfig struct {
	// WarningThreshold is the minimum score that triggers an immediate alert.
	WarningThreshold int
	// TopicTimeout bounds the topic hint call per message.
	TopicTimeout time.Duration
}

// Pipeline scores and persists inbound messages and dispatches immediate
// alerts for those at or above the warning threshold.
type Pipeline struct {
	store     database.Store
	registry  *Registry
	extractor *FeatureExtractor
	topics    TopicHinter
	alerter   Alerter
	config    PipelineConfig
	logger    *slog.Logger
}

// NewPipeline creates the intake pipeline. topics and alerter may be nil, in
// which case hints are skipped and alerts are recorded but not delivered.
func NewPipeline(
	store database.Store,
	registry *Registry,
	extractor *FeatureExtractor,
	topics TopicHinter,
	alerter Alerter,
	config PipelineConfig,
	logger *slog.Logger,
) *Pipeline {
	return &Pipeline{
		store:     store,
		registry:  registry,
		extractor: extractor,
		topics:    topics,
		alerter:   alerter,
		config:    config,
		logger:    logger.With("component", "intake"),
	}
}

// Ingest triages one inbound message: extracts features, scores it, persists
// it, and fires the immediate alert when the score reaches the warning
// threshold. The message is durably stored before any alert goes out; an
// alert delivery failure is logged and does not fail the intake.
func (p *Pipeline) Ingest(ctx context.Context, in Inbound) (*database.Message, error) {
	if strings.TrimSpace(in.Text) == "" {
		return nil, ErrEmptyText
	}

	features := p.extractor.Extract(in.Text)
	prioritySender := p.registry.IsMember(in.SenderID)
	score := Score(ScoreInput{
		HasMention:     features.HasMention,
		IsQuestion:     features.IsQuestion,
		TextLength:     features.TextLength,
		PrioritySender: prioritySender,
	})

	msg := &database.Message{
		SourceMessageID: in.SourceMessageID,
		ChatID:          in.ChatID,
		ChatTitle:       nullString(in.ChatTitle),
		ChatKind:        chatKindOrUnknown(in.ChatKind),
		SenderID:        in.SenderID,
		SenderName:      nullString(in.SenderName),
		Text:            in.Text,
		CapturedAt:      in.CapturedAt.UTC(),
		HasMention:      features.HasMention,
		IsQuestion:      features.IsQuestion,
		TextLength:      features.TextLength,
		TopicHint:       nullString(p.topicHint(ctx, in.Text)),
		PriorityScore:   score,
	}

	if err := p.store.InsertMessage(ctx, msg); err != nil {
		return nil, fmt.Errorf("failed to persist inbound message: %w", err)
	}

	p.logger.DebugContext(ctx, "Message triaged",
		"message_id", msg.ID,
		"chat_id", msg.ChatID,
		"score", score,
		"mention", features.HasMention,
		"question", features.IsQuestion)

	if score >= p.config.WarningThreshold {
		p.dispatchAlert(ctx, msg)
	}

	return msg, nil
}

// dispatchAlert delivers the warning and records alert-sent only on
// successful delivery. The flag write is conditional, so even a racing
// duplicate attempt records it once; a delivery failure is logged and the
// alert is skipped, never retried.
func (p *Pipeline) dispatchAlert(ctx context.Context, msg *database.Message) {
	if p.alerter == nil {
		return
	}

	if err := p.alerter.SendAlert(ctx, msg); err != nil {
		p.logger.WarnContext(ctx, "Alert delivery failed",
			"message_id", msg.ID, "error", err)
		return
	}

	now := time.Now().UTC()
	ok, err := p.store.MarkAlertSent(ctx, msg.ID, now)
	if err != nil {
		p.logger.ErrorContext(ctx, "Failed to mark alert sent",
			"message_id", msg.ID, "error", err)
		return
	}
	if ok {
		msg.AlertSent = true
		msg.AlertSentAt = sql.NullTime{Time: now, Valid: true}
	}
}

// topicHint asks the hinter for a topic under the configured budget. Every
// failure mode, including a nil hinter, folds to the empty hint.
func (p *Pipeline) topicHint(ctx context.Context, text string) string {
	if p.topics == nil {
		return ""
	}

	hintCtx := ctx
	if p.config.TopicTimeout > 0 {
		var cancel context.CancelFunc
		hintCtx, cancel = context.WithTimeout(ctx, p.config.TopicTimeout)
		defer cancel()
	}

	hint, err := p.topics.TopicHint(hintCtx, text)
	if err != nil {
		p.logger.DebugContext(ctx, "Topic hint unavailable", "error", err)
		return ""
	}
	return strings.TrimSpace(hint)
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func chatKindOrUnknown(kind string) string {
	switch kind {
	case database.ChatKindPrivate, database.ChatKindGroup,
		database.ChatKindSupergroup, database.ChatKindChannel:
		return kind
	}
	return database.ChatKindUnknown
}
