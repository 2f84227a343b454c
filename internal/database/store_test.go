package database_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/rsilveira/secretary-bot/internal/database"

	_ "modernc.org/sqlite"
)

func newTestStore(t *testing.T) database.Store {
	t.Helper()

	db, err := sqlx.Connect("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("failed to open in-memory database: %v", err)
	}
	// A second connection to :memory: would be a different database.
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	if err := database.ApplyMigrations(db.DB, "test"); err != nil {
		t.Fatalf("failed to apply migrations: %v", err)
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return database.NewStore(db, logger)
}

func newTestMessage(capturedAt time.Time, score int) *database.Message {
	return &database.Message{
		SourceMessageID: 100,
		ChatID:          -1001,
		ChatKind:        database.ChatKindGroup,
		SenderID:        42,
		Text:            "hello there",
		CapturedAt:      capturedAt,
		TextLength:      11,
		PriorityScore:   score,
	}
}

func TestInsertAndGetMessage(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Second)

	msg := newTestMessage(now, 3)
	msg.HasMention = true
	if err := store.InsertMessage(ctx, msg); err != nil {
		t.Fatalf("InsertMessage() error = %v", err)
	}
	if msg.ID == 0 {
		t.Fatal("InsertMessage() did not set message ID")
	}

	got, err := store.GetMessage(ctx, msg.ID)
	if err != nil {
		t.Fatalf("GetMessage() error = %v", err)
	}
	if got.Text != msg.Text {
		t.Errorf("GetMessage() text = %q, want %q", got.Text, msg.Text)
	}
	if !got.HasMention {
		t.Error("GetMessage() has_mention = false, want true")
	}
	if got.PriorityScore != 3 {
		t.Errorf("GetMessage() score = %d, want 3", got.PriorityScore)
	}
	if got.AlertSent || got.DigestClaimed || got.Label.Valid {
		t.Error("new message should have no flags set")
	}
}

func TestInsertMessageValidation(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	ctx := context.Background()
	now := time.Now().UTC()

	tests := []struct {
		name    string
		mutate  func(*database.Message)
		wantErr bool
	}{
		{"valid", func(m *database.Message) {}, false},
		{"zero chat id", func(m *database.Message) { m.ChatID = 0 }, true},
		{"zero sender id", func(m *database.Message) { m.SenderID = 0 }, true},
		{"zero capture time", func(m *database.Message) { m.CapturedAt = time.Time{} }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := newTestMessage(now, 1)
			tt.mutate(msg)
			err := store.InsertMessage(ctx, msg)
			if (err != nil) != tt.wantErr {
				t.Errorf("InsertMessage() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}

	if err := store.InsertMessage(ctx, nil); err == nil {
		t.Error("InsertMessage(nil) should fail")
	}
}

func TestGetMessageNotFound(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)

	_, err := store.GetMessage(context.Background(), 9999)
	if !errors.Is(err, database.ErrMessageNotFound) {
		t.Errorf("GetMessage() error = %v, want ErrMessageNotFound", err)
	}
}

func TestMarkAlertSentOnce(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Second)

	msg := newTestMessage(now, 6)
	if err := store.InsertMessage(ctx, msg); err != nil {
		t.Fatalf("InsertMessage() error = %v", err)
	}

	ok, err := store.MarkAlertSent(ctx, msg.ID, now)
	if err != nil {
		t.Fatalf("MarkAlertSent() error = %v", err)
	}
	if !ok {
		t.Fatal("first MarkAlertSent() = false, want true")
	}

	ok, err = store.MarkAlertSent(ctx, msg.ID, now.Add(time.Minute))
	if err != nil {
		t.Fatalf("second MarkAlertSent() error = %v", err)
	}
	if ok {
		t.Error("second MarkAlertSent() = true, want false")
	}

	got, err := store.GetMessage(ctx, msg.ID)
	if err != nil {
		t.Fatalf("GetMessage() error = %v", err)
	}
	if !got.AlertSent {
		t.Error("alert_sent not persisted")
	}
	if !got.AlertSentAt.Valid || !got.AlertSentAt.Time.Equal(now) {
		t.Errorf("alert_sent_at = %v, want %v (first write wins)", got.AlertSentAt, now)
	}
}

func TestSetLabelIfUnset(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Second)

	msg := newTestMessage(now, 2)
	if err := store.InsertMessage(ctx, msg); err != nil {
		t.Fatalf("InsertMessage() error = %v", err)
	}

	t.Run("rejects invalid value", func(t *testing.T) {
		if _, err := store.SetLabelIfUnset(ctx, msg.ID, "urgent", now); err == nil {
			t.Error("SetLabelIfUnset() with invalid label should fail")
		}
	})

	t.Run("first label sticks", func(t *testing.T) {
		ok, err := store.SetLabelIfUnset(ctx, msg.ID, database.LabelHigh, now)
		if err != nil {
			t.Fatalf("SetLabelIfUnset() error = %v", err)
		}
		if !ok {
			t.Fatal("first SetLabelIfUnset() = false, want true")
		}
	})

	t.Run("second label is a no-op", func(t *testing.T) {
		ok, err := store.SetLabelIfUnset(ctx, msg.ID, database.LabelLow, now.Add(time.Minute))
		if err != nil {
			t.Fatalf("SetLabelIfUnset() error = %v", err)
		}
		if ok {
			t.Error("second SetLabelIfUnset() = true, want false")
		}

		got, err := store.GetMessage(ctx, msg.ID)
		if err != nil {
			t.Fatalf("GetMessage() error = %v", err)
		}
		if got.Label.String != database.LabelHigh {
			t.Errorf("label = %q, want %q", got.Label.String, database.LabelHigh)
		}
	})
}

func TestClaimForDigest(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Second)
	cutoff := now.Add(-4 * time.Hour)

	insert := func(t *testing.T, capturedAt time.Time, score int) int64 {
		t.Helper()
		msg := newTestMessage(capturedAt, score)
		if err := store.InsertMessage(ctx, msg); err != nil {
			t.Fatalf("InsertMessage() error = %v", err)
		}
		return msg.ID
	}

	oldID := insert(t, cutoff.Add(-time.Hour), 9) // before the window
	lowID := insert(t, now.Add(-time.Minute), 0)  // below min score
	midID := insert(t, now.Add(-30*time.Minute), 3)
	topID := insert(t, now.Add(-2*time.Hour), 5) // higher score, older
	labeledID := insert(t, now.Add(-10*time.Minute), 7)
	if _, err := store.SetLabelIfUnset(ctx, labeledID, database.LabelMedium, now); err != nil {
		t.Fatalf("SetLabelIfUnset() error = %v", err)
	}

	claimed, err := store.ClaimForDigest(ctx, cutoff, 1, 10, now)
	if err != nil {
		t.Fatalf("ClaimForDigest() error = %v", err)
	}

	if len(claimed) != 2 {
		t.Fatalf("ClaimForDigest() returned %d messages, want 2", len(claimed))
	}
	if claimed[0].ID != topID || claimed[1].ID != midID {
		t.Errorf("ClaimForDigest() order = [%d %d], want [%d %d] (score desc)",
			claimed[0].ID, claimed[1].ID, topID, midID)
	}
	for _, m := range claimed {
		if !m.DigestClaimed || !m.DigestClaimedAt.Valid {
			t.Errorf("message %d returned without claim flags set", m.ID)
		}
	}

	t.Run("claims persist", func(t *testing.T) {
		got, err := store.GetMessage(ctx, topID)
		if err != nil {
			t.Fatalf("GetMessage() error = %v", err)
		}
		if !got.DigestClaimed {
			t.Error("digest_claimed not persisted")
		}
	})

	t.Run("claimed messages never reappear", func(t *testing.T) {
		again, err := store.ClaimForDigest(ctx, cutoff, 1, 10, now.Add(time.Minute))
		if err != nil {
			t.Fatalf("ClaimForDigest() error = %v", err)
		}
		if len(again) != 0 {
			t.Errorf("second ClaimForDigest() returned %d messages, want 0", len(again))
		}
	})

	t.Run("excluded messages untouched", func(t *testing.T) {
		for _, id := range []int64{oldID, lowID, labeledID} {
			got, err := store.GetMessage(ctx, id)
			if err != nil {
				t.Fatalf("GetMessage(%d) error = %v", id, err)
			}
			if got.DigestClaimed {
				t.Errorf("message %d was claimed but should have been excluded", id)
			}
		}
	})
}

func TestClaimForDigestLimit(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Second)

	for i := range 5 {
		msg := newTestMessage(now.Add(-time.Duration(i)*time.Minute), i+1)
		if err := store.InsertMessage(ctx, msg); err != nil {
			t.Fatalf("InsertMessage() error = %v", err)
		}
	}

	claimed, err := store.ClaimForDigest(ctx, now.Add(-time.Hour), 1, 3, now)
	if err != nil {
		t.Fatalf("ClaimForDigest() error = %v", err)
	}
	if len(claimed) != 3 {
		t.Fatalf("ClaimForDigest() returned %d messages, want 3", len(claimed))
	}
	for i := 1; i < len(claimed); i++ {
		if claimed[i-1].PriorityScore < claimed[i].PriorityScore {
			t.Errorf("claim order not score-descending at index %d", i)
		}
	}
}

func TestCounts(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Second)
	cutoff := now.Add(-time.Hour)

	inWindow := newTestMessage(now.Add(-time.Minute), 0)
	if err := store.InsertMessage(ctx, inWindow); err != nil {
		t.Fatalf("InsertMessage() error = %v", err)
	}

	otherChat := newTestMessage(now.Add(-2*time.Minute), 0)
	otherChat.ChatID = -2002
	if err := store.InsertMessage(ctx, otherChat); err != nil {
		t.Fatalf("InsertMessage() error = %v", err)
	}

	outside := newTestMessage(cutoff.Add(-time.Minute), 0)
	if err := store.InsertMessage(ctx, outside); err != nil {
		t.Fatalf("InsertMessage() error = %v", err)
	}

	msgs, err := store.CountMessagesSince(ctx, cutoff)
	if err != nil {
		t.Fatalf("CountMessagesSince() error = %v", err)
	}
	if msgs != 2 {
		t.Errorf("CountMessagesSince() = %d, want 2", msgs)
	}

	chats, err := store.CountChatsSince(ctx, cutoff)
	if err != nil {
		t.Fatalf("CountChatsSince() error = %v", err)
	}
	if chats != 2 {
		t.Errorf("CountChatsSince() = %d, want 2", chats)
	}
}

func TestGetStats(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Second)

	recent := newTestMessage(now.Add(-time.Hour), 2)
	old := newTestMessage(now.Add(-48*time.Hour), 2)
	for _, m := range []*database.Message{recent, old} {
		if err := store.InsertMessage(ctx, m); err != nil {
			t.Fatalf("InsertMessage() error = %v", err)
		}
	}
	if _, err := store.SetLabelIfUnset(ctx, recent.ID, database.LabelHigh, now); err != nil {
		t.Fatalf("SetLabelIfUnset() error = %v", err)
	}

	stats, err := store.GetStats(ctx, now)
	if err != nil {
		t.Fatalf("GetStats() error = %v", err)
	}
	if stats.Total != 2 {
		t.Errorf("Total = %d, want 2", stats.Total)
	}
	if stats.Last24h != 1 {
		t.Errorf("Last24h = %d, want 1", stats.Last24h)
	}
	if stats.Labeled != 1 || stats.High != 1 || stats.Medium != 0 || stats.Low != 0 {
		t.Errorf("label counts = %+v, want labeled=1 high=1", stats)
	}
}

func TestHighPriorityUsers(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	ctx := context.Background()

	ids, err := store.ListHighPriorityUserIDs(ctx)
	if err != nil {
		t.Fatalf("ListHighPriorityUserIDs() error = %v", err)
	}
	if len(ids) != 0 {
		t.Fatalf("expected empty list, got %v", ids)
	}

	if err := store.AddHighPriorityUser(ctx, 42); err != nil {
		t.Fatalf("AddHighPriorityUser() error = %v", err)
	}
	// Duplicate add is a no-op.
	if err := store.AddHighPriorityUser(ctx, 42); err != nil {
		t.Fatalf("duplicate AddHighPriorityUser() error = %v", err)
	}
	if err := store.AddHighPriorityUser(ctx, 77); err != nil {
		t.Fatalf("AddHighPriorityUser() error = %v", err)
	}

	ids, err = store.ListHighPriorityUserIDs(ctx)
	if err != nil {
		t.Fatalf("ListHighPriorityUserIDs() error = %v", err)
	}
	if len(ids) != 2 {
		t.Fatalf("expected 2 users, got %v", ids)
	}

	if err := store.RemoveHighPriorityUser(ctx, 42); err != nil {
		t.Fatalf("RemoveHighPriorityUser() error = %v", err)
	}
	// Removing a missing user is a no-op.
	if err := store.RemoveHighPriorityUser(ctx, 42); err != nil {
		t.Fatalf("repeat RemoveHighPriorityUser() error = %v", err)
	}

	ids, err = store.ListHighPriorityUserIDs(ctx)
	if err != nil {
		t.Fatalf("ListHighPriorityUserIDs() error = %v", err)
	}
	if len(ids) != 1 || ids[0] != 77 {
		t.Errorf("ListHighPriorityUserIDs() = %v, want [77]", ids)
	}
}
