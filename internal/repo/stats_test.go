package repo

import (
	"context"
	"testing"
	"time"
)

func TestCouponsStats_EmptyAndSeeded(t *testing.T) {
	db := newCouponRepoDB(t)
	ctx := context.Background()

	count, maxTS, err := CouponsStats(ctx, db)
	if err != nil {
		t.Fatalf("CouponsStats empty: %v", err)
	}
	if count != 0 || maxTS != nil {
		t.Fatalf("expected (0, nil), got (%d, %v)", count, maxTS)
	}

	future := time.Now().UTC().AddDate(0, 1, 0)
	seedCoupon(t, db, "alice", "Steam", "gaming", future, false)
	seedCoupon(t, db, "bob", "Uber", "food", future, false)

	count, maxTS, err = CouponsStats(ctx, db)
	if err != nil {
		t.Fatalf("CouponsStats: %v", err)
	}
	if count != 2 {
		t.Fatalf("expected count 2, got %d", count)
	}
	if maxTS == nil || maxTS.IsZero() {
		t.Fatalf("expected a max updated_at, got %v", maxTS)
	}
}

func TestConversationStats(t *testing.T) {
	db := newChatRepoDB(t)
	ctx := context.Background()
	seedProfile(t, db, "alice")
	seedProfile(t, db, "bob")

	count, maxTS, err := ConversationStats(ctx, db, "alice", "bob")
	if err != nil {
		t.Fatalf("ConversationStats empty: %v", err)
	}
	if count != 0 || maxTS != nil {
		t.Fatalf("expected (0, nil), got (%d, %v)", count, maxTS)
	}

	if _, err := CreateMessage(db, "alice", "bob", "hi", nil); err != nil {
		t.Fatalf("create: %v", err)
	}
	last, err := CreateMessage(db, "bob", "alice", "hey", nil)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	count, maxTS, err = ConversationStats(ctx, db, "alice", "bob")
	if err != nil {
		t.Fatalf("ConversationStats: %v", err)
	}
	if count != 2 {
		t.Fatalf("expected count 2, got %d", count)
	}
	if maxTS == nil || maxTS.Before(last.Timestamp.Add(-time.Second)) {
		t.Fatalf("expected max timestamp near %v, got %v", last.Timestamp, maxTS)
	}
}
