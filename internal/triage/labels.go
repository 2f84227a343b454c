package triage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/rsilveira/secretary-bot/internal/database"
)

// ErrInvalidLabel is returned for a label value outside the accepted set.
var ErrInvalidLabel = errors.New("invalid label value")

// LabelResult reports the outcome of a labeling attempt. Applied is false
// when the message already carried a label, in which case Message reflects
// the existing label.
type LabelResult struct {
	Message *database.Message
	Applied bool
}

// Resolver applies operator labels to messages. A message's label is set at
// most once; repeated attempts are reported as already-labeled rather than
// failing.
type Resolver struct {
	store  database.Store
	logger *slog.Logger
}

// NewResolver creates a label resolver.
func NewResolver(store database.Store, logger *slog.Logger) *Resolver {
	return &Resolver{
		store:  store,
		logger: logger.With("component", "labels"),
	}
}

// Apply labels the message, or reports its existing label if one is already
// set. Returns ErrInvalidLabel for an unknown value and
// database.ErrMessageNotFound for an unknown id. Labeling is permitted
// whether or not the message was ever claimed into a digest.
func (r *Resolver) Apply(ctx context.Context, messageID int64, label string) (*LabelResult, error) {
	if !database.ValidLabel(label) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidLabel, label)
	}

	msg, err := r.store.GetMessage(ctx, messageID)
	if err != nil {
		return nil, err
	}
	if msg.Label.Valid {
		return &LabelResult{Message: msg, Applied: false}, nil
	}

	ok, err := r.store.SetLabelIfUnset(ctx, messageID, label, time.Now().UTC())
	if err != nil {
		return nil, fmt.Errorf("failed to apply label: %w", err)
	}

	// Lost a race with another labeling attempt, or applied successfully;
	// either way the row is authoritative now.
	msg, err = r.store.GetMessage(ctx, messageID)
	if err != nil {
		return nil, err
	}

	if ok {
		r.logger.InfoContext(ctx, "Message labeled", "message_id", messageID, "label", label)
	}
	return &LabelResult{Message: msg, Applied: ok}, nil
}
