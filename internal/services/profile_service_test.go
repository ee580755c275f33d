package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/couponhub/go-coupon-backend/internal/domain"
)

func TestProfileCreate_DefaultsUserIDToEmail(t *testing.T) {
	db := newServiceDB(t)
	svc := NewProfileService(db, bcrypt.MinCost)
	ctx := context.Background()

	p, err := svc.Create(ctx, ProfileInput{
		UserName: "Alice",
		Email:    "  Alice@Example.COM ",
		Password: "s3cret",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if p.UserID != "alice@example.com" || p.Email != "alice@example.com" {
		t.Fatalf("identity not normalized: %+v", p)
	}
	if p.Password == "s3cret" || p.Password == "" {
		t.Fatalf("password stored in plaintext or empty")
	}
}

func TestProfileCreate_ExplicitUserID(t *testing.T) {
	db := newServiceDB(t)
	svc := NewProfileService(db, bcrypt.MinCost)

	p, err := svc.Create(context.Background(), ProfileInput{
		UserID:   "alice",
		UserName: "Alice",
		Email:    "alice@example.com",
		Password: "s3cret",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if p.UserID != "alice" {
		t.Fatalf("explicit userId not honored: %+v", p)
	}
}

func TestProfileCreate_DuplicateEmail(t *testing.T) {
	db := newServiceDB(t)
	svc := NewProfileService(db, bcrypt.MinCost)
	ctx := context.Background()

	in := ProfileInput{UserID: "alice", UserName: "Alice", Email: "alice@example.com", Password: "s3cret"}
	if _, err := svc.Create(ctx, in); err != nil {
		t.Fatalf("first create: %v", err)
	}

	in.UserID = "alice2"
	if _, err := svc.Create(ctx, in); !errors.Is(err, ErrDuplicateEmail) {
		t.Fatalf("expected ErrDuplicateEmail, got %v", err)
	}

	// Existing profile unchanged.
	got, err := svc.Get(ctx, "alice")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.UserName != "Alice" {
		t.Fatalf("existing profile mutated: %+v", got)
	}
}

func TestProfileCreate_DuplicateUserID(t *testing.T) {
	db := newServiceDB(t)
	svc := NewProfileService(db, bcrypt.MinCost)
	ctx := context.Background()

	if _, err := svc.Create(ctx, ProfileInput{UserID: "alice", UserName: "A", Email: "a@example.com", Password: "x12345"}); err != nil {
		t.Fatalf("first create: %v", err)
	}
	_, err := svc.Create(ctx, ProfileInput{UserID: "alice", UserName: "B", Email: "b@example.com", Password: "x12345"})
	if !errors.Is(err, ErrDuplicateUserID) {
		t.Fatalf("expected ErrDuplicateUserID, got %v", err)
	}
}

func TestProfileUpdate_EmailUniquenessAndRehash(t *testing.T) {
	db := newServiceDB(t)
	svc := NewProfileService(db, bcrypt.MinCost)
	ctx := context.Background()

	if _, err := svc.Create(ctx, ProfileInput{UserID: "alice", UserName: "Alice", Email: "alice@example.com", Password: "s3cret"}); err != nil {
		t.Fatalf("create alice: %v", err)
	}
	if _, err := svc.Create(ctx, ProfileInput{UserID: "bob", UserName: "Bob", Email: "bob@example.com", Password: "s3cret"}); err != nil {
		t.Fatalf("create bob: %v", err)
	}

	taken := "bob@example.com"
	if _, err := svc.Update(ctx, "alice", ProfileUpdate{Email: &taken}); !errors.Is(err, ErrDuplicateEmail) {
		t.Fatalf("expected ErrDuplicateEmail, got %v", err)
	}

	newPass := "n3wpass"
	updated, err := svc.Update(ctx, "alice", ProfileUpdate{Password: &newPass})
	if err != nil {
		t.Fatalf("Update password: %v", err)
	}
	if updated.Password == newPass {
		t.Fatalf("password stored in plaintext")
	}
	if _, err := svc.Login(ctx, "alice@example.com", "n3wpass"); err != nil {
		t.Fatalf("login with new password: %v", err)
	}
	if _, err := svc.Login(ctx, "alice@example.com", "s3cret"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("old password should be rejected, got %v", err)
	}
}

func TestProfileUpdate_NotFound(t *testing.T) {
	db := newServiceDB(t)
	svc := NewProfileService(db, bcrypt.MinCost)
	name := "X"
	if _, err := svc.Update(context.Background(), "ghost", ProfileUpdate{UserName: &name}); !errors.Is(err, ErrProfileNotFound) {
		t.Fatalf("expected ErrProfileNotFound, got %v", err)
	}
}

func TestLogin_UnknownEmailAndWrongPassword(t *testing.T) {
	db := newServiceDB(t)
	svc := NewProfileService(db, bcrypt.MinCost)
	ctx := context.Background()

	if _, err := svc.Create(ctx, ProfileInput{UserID: "alice", UserName: "Alice", Email: "alice@example.com", Password: "s3cret"}); err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err := svc.Login(ctx, "nobody@example.com", "s3cret"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("unknown email: expected ErrInvalidCredentials, got %v", err)
	}
	if _, err := svc.Login(ctx, "alice@example.com", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("wrong password: expected ErrInvalidCredentials, got %v", err)
	}

	p, err := svc.Login(ctx, " ALICE@example.com ", "s3cret")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if p.UserID != "alice" {
		t.Fatalf("unexpected profile: %+v", p)
	}
}

func TestProfileGet_ExcludesExpiredCoupons(t *testing.T) {
	db := newServiceDB(t)
	couponSvc := NewCouponService(db)
	profileSvc := NewProfileService(db, bcrypt.MinCost)
	ctx := context.Background()

	mustProfile(t, db, "alice")
	c, err := couponSvc.Create(ctx, validInput("alice"))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	// Age the coupon past its validity without touching anything else,
	// simulating midnight passing before the next sweep.
	yesterday := dayStart(time.Now()).AddDate(0, 0, -1)
	if err := db.Model(&domain.Coupon{}).Where("id = ?", c.ID).
		Update("validity_date", yesterday).Error; err != nil {
		t.Fatalf("age coupon: %v", err)
	}

	p, err := profileSvc.Get(ctx, "alice")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if len(p.UploadedCoupons) != 0 {
		t.Fatalf("profile detail exposes expired coupon: %+v", p.UploadedCoupons)
	}
}

func TestProfileDelete_NotFound(t *testing.T) {
	db := newServiceDB(t)
	svc := NewProfileService(db, bcrypt.MinCost)
	if err := svc.Delete(context.Background(), "ghost"); !errors.Is(err, ErrProfileNotFound) {
		t.Fatalf("expected ErrProfileNotFound, got %v", err)
	}
}
