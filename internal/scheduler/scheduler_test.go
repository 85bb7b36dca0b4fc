package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/drawmaster/hub/internal/model"
	"github.com/drawmaster/hub/internal/store"
	"github.com/drawmaster/hub/internal/testutil"
)

func TestPurgeExpiredTokens(t *testing.T) {
	db := testutil.TestDB(t)
	queries := store.New(db)
	user := testutil.CreateUser(t, db, "user@test.com", model.RoleUser)
	ctx := context.Background()

	now := time.Now()
	for _, expiry := range []time.Time{now.Add(-time.Hour), now.Add(-time.Minute), now.Add(time.Hour)} {
		raw, err := model.GenerateToken()
		if err != nil {
			t.Fatalf("GenerateToken: %v", err)
		}
		if _, err := queries.CreateAuthToken(ctx, store.CreateAuthTokenParams{
			TokenHash: model.HashToken(raw),
			UserID:    user.ID,
			ExpiresAt: expiry,
			CreatedAt: now,
		}); err != nil {
			t.Fatalf("CreateAuthToken: %v", err)
		}
	}

	s := New(db, testutil.TestLogger())
	if err := s.purgeExpiredTokens(); err != nil {
		t.Fatalf("purgeExpiredTokens: %v", err)
	}

	var remaining int
	if err := db.QueryRow("SELECT COUNT(*) FROM auth_tokens").Scan(&remaining); err != nil {
		t.Fatalf("counting tokens: %v", err)
	}
	if remaining != 1 {
		t.Errorf("remaining tokens = %d, want 1", remaining)
	}
}

func TestPruneEvents(t *testing.T) {
	db := testutil.TestDB(t)
	queries := store.New(db)
	ctx := context.Background()

	for _, age := range []time.Duration{0, 24 * time.Hour, EventRetention + 24*time.Hour} {
		if _, err := queries.CreateEvent(ctx, store.CreateEventParams{
			Level:     model.EventLevelInfo,
			Category:  model.EventCategorySystem,
			Message:   "test event",
			Metadata:  "{}",
			CreatedAt: time.Now().Add(-age),
		}); err != nil {
			t.Fatalf("CreateEvent: %v", err)
		}
	}

	s := New(db, testutil.TestLogger())
	if err := s.pruneEvents(); err != nil {
		t.Fatalf("pruneEvents: %v", err)
	}

	events, err := queries.ListRecentEvents(ctx, 10)
	if err != nil {
		t.Fatalf("ListRecentEvents: %v", err)
	}
	if len(events) != 2 {
		t.Errorf("remaining events = %d, want 2", len(events))
	}
}

func TestSchedulerStartStop(t *testing.T) {
	db := testutil.TestDB(t)
	s := New(db, testutil.TestLogger())

	if err := s.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	s.Stop()
}
