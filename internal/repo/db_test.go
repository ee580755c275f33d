package repo

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/couponhub/go-coupon-backend/internal/domain"
)

func TestOpenSQLite_MissingParentDir(t *testing.T) {
	_, err := OpenSQLite(filepath.Join(t.TempDir(), "no-such-dir", "app.db"))
	if err == nil {
		t.Fatalf("expected error for missing parent directory")
	}
}

func TestOpenSQLite_AndMigrate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.db")
	db, err := OpenSQLite(path)
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	if err := AutoMigrate(db); err != nil {
		t.Fatalf("AutoMigrate: %v", err)
	}

	// All tables exist and accept writes.
	p := &domain.UserProfile{UserID: "alice", UserName: "Alice", Email: "alice@example.com", Password: "x"}
	if err := CreateProfile(context.Background(), db, p); err != nil {
		t.Fatalf("create profile after migrate: %v", err)
	}
	for _, table := range []string{"user_profiles", "coupons", "chat_messages", "idempotency", "availed_coupons", "uploaded_coupons"} {
		if !db.Migrator().HasTable(table) {
			t.Fatalf("expected table %s to exist", table)
		}
	}
}
