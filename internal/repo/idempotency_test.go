package repo

import (
	"context"
	"fmt"
	"net/http"
	"path/filepath"
	"testing"
	"time"

	sqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/couponhub/go-coupon-backend/internal/domain"
)

func newIdemDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), fmt.Sprintf("idem_test_%d.db", time.Now().UnixNano()))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	if err := db.AutoMigrate(&domain.Idempotency{}); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	return db
}

func TestIdempotency_CreateAndGet(t *testing.T) {
	db := newIdemDB(t)
	ctx := context.Background()

	rec, err := CreateIdempotency(ctx, db, "alice", "7", "k-1",
		"Coupon added to availed coupons successfully", http.StatusCreated, time.Hour)
	if err != nil {
		t.Fatalf("CreateIdempotency: %v", err)
	}
	if rec.ID == "" || rec.ExpiresAt.Before(rec.CreatedAt) {
		t.Fatalf("unexpected record: %+v", rec)
	}

	got, err := GetIdempotency(ctx, db, "alice", "7", "k-1", time.Now().UTC())
	if err != nil {
		t.Fatalf("GetIdempotency: %v", err)
	}
	if got.Status != http.StatusCreated || got.Detail != rec.Detail {
		t.Fatalf("replay payload mismatch: %+v", got)
	}

	// Different key, coupon, or user each miss.
	if _, err := GetIdempotency(ctx, db, "alice", "7", "k-2", time.Now().UTC()); err != ErrNotFound {
		t.Fatalf("expected miss on different key, got %v", err)
	}
	if _, err := GetIdempotency(ctx, db, "bob", "7", "k-1", time.Now().UTC()); err != ErrNotFound {
		t.Fatalf("expected miss on different user, got %v", err)
	}
}

func TestIdempotency_ExpiredIsInvisible(t *testing.T) {
	db := newIdemDB(t)
	ctx := context.Background()

	if _, err := CreateIdempotency(ctx, db, "alice", "7", "k-1", "ok", http.StatusOK, time.Minute); err != nil {
		t.Fatalf("CreateIdempotency: %v", err)
	}

	future := time.Now().UTC().Add(2 * time.Minute)
	if _, err := GetIdempotency(ctx, db, "alice", "7", "k-1", future); err != ErrNotFound {
		t.Fatalf("expected expired record to be invisible, got %v", err)
	}
}

func TestIdempotency_DuplicateKey(t *testing.T) {
	db := newIdemDB(t)
	ctx := context.Background()

	if _, err := CreateIdempotency(ctx, db, "alice", "7", "k-1", "ok", http.StatusOK, time.Hour); err != nil {
		t.Fatalf("first create: %v", err)
	}
	if _, err := CreateIdempotency(ctx, db, "alice", "7", "k-1", "ok", http.StatusOK, time.Hour); err != ErrDuplicate {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}
	// Same key under another coupon is a distinct tuple.
	if _, err := CreateIdempotency(ctx, db, "alice", "8", "k-1", "ok", http.StatusOK, time.Hour); err != nil {
		t.Fatalf("distinct tuple should insert: %v", err)
	}
}

func TestIdempotency_BlankCouponID(t *testing.T) {
	db := newIdemDB(t)
	if _, err := GetIdempotency(context.Background(), db, "alice", "", "k", time.Now().UTC()); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound for blank coupon id, got %v", err)
	}
}
