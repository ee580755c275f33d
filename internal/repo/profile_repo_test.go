package repo

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	sqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/couponhub/go-coupon-backend/internal/domain"
)

func newProfileRepoDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), fmt.Sprintf("profile_repo_test_%d.db", time.Now().UnixNano()))
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
	if err := db.AutoMigrate(&domain.UserProfile{}, &domain.Coupon{}, &domain.ChatMessage{}); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	return db
}

func TestCreateProfile_And_GetByEmail(t *testing.T) {
	db := newProfileRepoDB(t)
	ctx := context.Background()

	p := &domain.UserProfile{UserID: "alice", UserName: "Alice", Email: "alice@example.com", Password: "hash"}
	if err := CreateProfile(ctx, db, p); err != nil {
		t.Fatalf("CreateProfile: %v", err)
	}
	if p.CreatedAt.IsZero() {
		t.Fatalf("CreatedAt not set")
	}

	got, err := GetProfileByEmail(ctx, db, "alice@example.com")
	if err != nil {
		t.Fatalf("GetProfileByEmail: %v", err)
	}
	if got.UserID != "alice" || got.UserName != "Alice" {
		t.Fatalf("round-trip mismatch: %+v", got)
	}

	if _, err := GetProfileByEmail(ctx, db, "nobody@example.com"); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestListProfiles_OrderByCreation(t *testing.T) {
	db := newProfileRepoDB(t)
	ctx := context.Background()

	// Seed with explicit, distinct creation times so the order is deterministic.
	base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	for i, id := range []string{"carol", "alice", "bob"} {
		p := domain.UserProfile{
			UserID:    id,
			UserName:  id,
			Email:     id + "@example.com",
			Password:  "x",
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}
		if err := db.Create(&p).Error; err != nil {
			t.Fatalf("seed %s: %v", id, err)
		}
	}

	got, err := ListProfiles(ctx, db)
	if err != nil {
		t.Fatalf("ListProfiles: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 profiles, got %d", len(got))
	}
	want := []string{"carol", "alice", "bob"}
	for i, id := range want {
		if got[i].UserID != id {
			t.Fatalf("position %d: want %s, got %s", i, id, got[i].UserID)
		}
	}
}

func TestGetProfile_PreloadsCouponSets(t *testing.T) {
	db := newProfileRepoDB(t)
	ctx := context.Background()

	p := seedProfile(t, db, "alice")
	future := time.Now().UTC().AddDate(0, 1, 0)
	uploaded := seedCoupon(t, db, "alice", "Steam", "gaming", future, false)
	claimed := seedCoupon(t, db, "bob", "Uber", "food", future, false)

	if err := AppendUploaded(ctx, db, p, uploaded); err != nil {
		t.Fatalf("append uploaded: %v", err)
	}
	if err := AppendAvailed(ctx, db, p, claimed); err != nil {
		t.Fatalf("append availed: %v", err)
	}

	got, err := GetProfile(ctx, db, "alice", time.Now().UTC())
	if err != nil {
		t.Fatalf("GetProfile: %v", err)
	}
	if len(got.UploadedCoupons) != 1 || got.UploadedCoupons[0].ID != uploaded.ID {
		t.Fatalf("uploaded set mismatch: %+v", got.UploadedCoupons)
	}
	if len(got.AvailedCoupons) != 1 || got.AvailedCoupons[0].ID != claimed.ID {
		t.Fatalf("availed set mismatch: %+v", got.AvailedCoupons)
	}

	lean, err := GetProfileLean(ctx, db, "alice")
	if err != nil {
		t.Fatalf("GetProfileLean: %v", err)
	}
	if len(lean.UploadedCoupons) != 0 || len(lean.AvailedCoupons) != 0 {
		t.Fatalf("lean fetch should not preload associations: %+v", lean)
	}
}

func TestGetProfile_ExcludesExpiredCoupons(t *testing.T) {
	db := newProfileRepoDB(t)
	ctx := context.Background()

	p := seedProfile(t, db, "alice")
	future := time.Now().UTC().AddDate(0, 1, 0)
	past := time.Now().UTC().AddDate(0, 0, -2)
	fresh := seedCoupon(t, db, "alice", "Steam", "gaming", future, false)
	stale := seedCoupon(t, db, "alice", "Uber", "food", past, false)
	staleClaim := seedCoupon(t, db, "bob", "Zomato", "food", past, false)

	for _, c := range []*domain.Coupon{fresh, stale} {
		if err := AppendUploaded(ctx, db, p, c); err != nil {
			t.Fatalf("append uploaded: %v", err)
		}
	}
	if err := AppendAvailed(ctx, db, p, staleClaim); err != nil {
		t.Fatalf("append availed: %v", err)
	}

	// Expired rows must not surface even before the sweeper has run.
	got, err := GetProfile(ctx, db, "alice", time.Now().UTC())
	if err != nil {
		t.Fatalf("GetProfile: %v", err)
	}
	if len(got.UploadedCoupons) != 1 || got.UploadedCoupons[0].ID != fresh.ID {
		t.Fatalf("expired coupon leaked into uploaded set: %+v", got.UploadedCoupons)
	}
	if len(got.AvailedCoupons) != 0 {
		t.Fatalf("expired coupon leaked into availed set: %+v", got.AvailedCoupons)
	}
}

func TestDeleteProfile_RemovesLinksAndMessages(t *testing.T) {
	db := newProfileRepoDB(t)
	ctx := context.Background()

	alice := seedProfile(t, db, "alice")
	seedProfile(t, db, "bob")
	future := time.Now().UTC().AddDate(0, 1, 0)
	c := seedCoupon(t, db, "bob", "Steam", "gaming", future, false)
	if err := AppendAvailed(ctx, db, alice, c); err != nil {
		t.Fatalf("append availed: %v", err)
	}
	if _, err := CreateMessage(db, "alice", "bob", "hi", nil); err != nil {
		t.Fatalf("create message: %v", err)
	}
	if _, err := CreateMessage(db, "bob", "alice", "hello", nil); err != nil {
		t.Fatalf("create message: %v", err)
	}

	if err := DeleteProfile(ctx, db, "alice"); err != nil {
		t.Fatalf("DeleteProfile: %v", err)
	}

	if _, err := GetProfileLean(ctx, db, "alice"); err != ErrNotFound {
		t.Fatalf("expected profile gone, got %v", err)
	}
	var links int64
	if err := db.Table("availed_coupons").Where("user_profile_user_id = ?", "alice").Count(&links).Error; err != nil {
		t.Fatalf("count links: %v", err)
	}
	if links != 0 {
		t.Fatalf("expected membership links removed, found %d", links)
	}
	var msgs int64
	if err := db.Model(&domain.ChatMessage{}).Count(&msgs).Error; err != nil {
		t.Fatalf("count messages: %v", err)
	}
	if msgs != 0 {
		t.Fatalf("expected all of alice's messages removed, found %d", msgs)
	}
	// The coupon itself and the other participant survive.
	if _, err := GetCoupon(ctx, db, c.ID); err != nil {
		t.Fatalf("coupon should survive: %v", err)
	}
	if _, err := GetProfileLean(ctx, db, "bob"); err != nil {
		t.Fatalf("bob should survive: %v", err)
	}
}

func TestDeleteProfile_NotFound(t *testing.T) {
	db := newProfileRepoDB(t)
	if err := DeleteProfile(context.Background(), db, "ghost"); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
