package triage

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/rsilveira/secretary-bot/internal/database"
)

// Digest is the outcome of one selection run over a review window.
type Digest struct {
	WindowStart   time.Time
	WindowEnd     time.Time
	TotalMessages int
	ActiveChats   int
	Messages      []database.Message
}

// Deliverer presents a selection outcome to the operator. Exactly one of the
// three methods is called per run.
type Deliverer interface {
	// DeliverDigest presents claimed messages for review.
	DeliverDigest(ctx context.Context, digest *Digest) error
	// DeliverQuiet reports a window with no captured messages at all.
	DeliverQuiet(ctx context.Context, digest *Digest) error
	// DeliverAllClear reports a window with traffic but nothing worth review.
	DeliverAllClear(ctx context.Context, digest *Digest) error
}

// SelectorConfig holds the digest selection tunables.
type SelectorConfig struct {
	// Window is how far back a run looks for candidates.
	Window time.Duration
	// MinScore is the lowest priority score eligible for a digest.
	MinScore int
	// MaxMessages caps how many messages one digest claims.
	MaxMessages int
}

// Selector runs the periodic digest: it counts the window's traffic, claims
// the top unresolved messages, and hands the outcome to the deliverer.
type Selector struct {
	store     database.Store
	deliverer Deliverer
	config    SelectorConfig
	logger    *slog.Logger
}

// NewSelector creates a digest selector.
func NewSelector(store database.Store, deliverer Deliverer, config SelectorConfig, logger *slog.Logger) *Selector {
	return &Selector{
		store:     store,
		deliverer: deliverer,
		config:    config,
		logger:    logger.With("component", "selector"),
	}
}

// Run performs one selection pass. Storage failures abort the run and are
// returned; delivery failures are logged only, because claimed messages stay
// claimed regardless of whether the digest reached the operator.
func (s *Selector) Run(ctx context.Context) error {
	now := time.Now().UTC()
	cutoff := now.Add(-s.config.Window)

	digest := &Digest{WindowStart: cutoff, WindowEnd: now}

	total, err := s.store.CountMessagesSince(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("failed to count window messages: %w", err)
	}
	digest.TotalMessages = total

	if total == 0 {
		s.logger.InfoContext(ctx, "Digest window is quiet", "window_start", cutoff)
		s.deliver(ctx, "quiet", digest, s.deliverer.DeliverQuiet)
		return nil
	}

	chats, err := s.store.CountChatsSince(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("failed to count window chats: %w", err)
	}
	digest.ActiveChats = chats

	claimed, err := s.store.ClaimForDigest(ctx, cutoff, s.config.MinScore, s.config.MaxMessages, now)
	if err != nil {
		return fmt.Errorf("failed to claim digest messages: %w", err)
	}
	digest.Messages = claimed

	if len(claimed) == 0 {
		s.logger.InfoContext(ctx, "Digest window all clear",
			"window_start", cutoff, "total", total)
		s.deliver(ctx, "all-clear", digest, s.deliverer.DeliverAllClear)
		return nil
	}

	s.logger.InfoContext(ctx, "Digest claimed",
		"count", len(claimed), "total", total, "chats", chats)
	s.deliver(ctx, "digest", digest, s.deliverer.DeliverDigest)
	return nil
}

func (s *Selector) deliver(ctx context.Context, kind string, digest *Digest, fn func(context.Context, *Digest) error) {
	if err := fn(ctx, digest); err != nil {
		s.logger.WarnContext(ctx, "Digest delivery failed", "kind", kind, "error", err)
	}
}
