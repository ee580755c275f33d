// Package services – CouponService
//
// This file implements the CouponService, which owns the coupon lifecycle:
// browsing with composed filters, creation (direct upload with a code or
// screenshot-backed upload), detail read/update/delete, the "latest" feed,
// and the claim/unclaim state transitions.
//
// The claim transitions are the one place where two writes must move in
// lockstep (the is_availed flag and the availed membership link); both run
// inside a single transaction so either both succeed or neither does.
//
// Service-level errors (e.g. ErrCouponNotFound, ErrAlreadyAvailed) are
// returned for predictable cases so handlers can map them to HTTP results
// consistently.
package services

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"time"

	"gorm.io/gorm"

	// OpenTelemetry
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/couponhub/go-coupon-backend/internal/domain"
	"github.com/couponhub/go-coupon-backend/internal/repo"
)

// CouponService coordinates coupon persistence and the claim membership
// links.
type CouponService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB

	// DefaultLatestLimit caps the latest feed when the client does not
	// specify a limit.
	DefaultLatestLimit int

	// CompanyLocale selects the casing rules for company-name normalization.
	CompanyLocale language.Tag
}

// NewCouponService constructs a CouponService with sane defaults.
func NewCouponService(db *gorm.DB) *CouponService {
	return &CouponService{
		DB:                 db,
		DefaultLatestLimit: 20,
		CompanyLocale:      language.English,
	}
}

// CouponInput carries the validated payload for Create.
type CouponInput struct {
	UserID       string
	CompanyName  string
	Description  string
	Category     string
	ValidityDate time.Time
	DirectUpload bool
	CouponCode   string
	Screenshots  *string
}

// CouponUpdate carries a partial or full update for a coupon. Nil fields are
// left unchanged, which serves both PUT (all fields set) and PATCH.
type CouponUpdate struct {
	CompanyName  *string
	Description  *string
	Category     *string
	ValidityDate *time.Time
	DirectUpload *bool
	CouponCode   *string
	Screenshots  *string
}

// List returns unclaimed, unexpired coupons matching the composed filters.
func (s *CouponService) List(ctx context.Context, f repo.CouponFilter) ([]domain.Coupon, error) {
	return repo.ListCoupons(ctx, s.DB, f, dayStart(time.Now()))
}

// Create validates the owner, normalizes the payload, persists the coupon,
// and links it into the owner's uploaded set in one transaction.
//
// When DirectUpload is false the coupon code defaults to the empty string and
// the screenshot reference stays absent unless supplied; the two upload paths
// are mutually exclusive by convention, not by constraint.
func (s *CouponService) Create(ctx context.Context, in CouponInput) (*domain.Coupon, error) {
	tr := otel.Tracer("services/CouponService")
	ctx, span := tr.Start(ctx, "Create",
		trace.WithAttributes(attribute.String("user.id", in.UserID)),
	)
	defer span.End()

	if in.ValidityDate.Before(dayStart(time.Now())) {
		return nil, ErrExpiredCoupon
	}

	owner, err := repo.GetProfileLean(ctx, s.DB, in.UserID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrProfileNotFound
		}
		return nil, err
	}

	if !in.DirectUpload && strings.TrimSpace(in.CouponCode) == "" {
		in.CouponCode = ""
	}

	c := &domain.Coupon{
		UserID:       owner.UserID,
		CompanyName:  s.normalizeCompany(in.CompanyName),
		Description:  strings.TrimSpace(in.Description),
		Category:     strings.TrimSpace(in.Category),
		IsAvailed:    false,
		ValidityDate: in.ValidityDate,
		DirectUpload: in.DirectUpload,
		CouponCode:   strings.TrimSpace(in.CouponCode),
		Screenshots:  in.Screenshots,
	}

	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := repo.CreateCoupon(ctx, tx, c); err != nil {
			return err
		}
		return repo.AppendUploaded(ctx, tx, owner, c)
	})
	if err != nil {
		return nil, err
	}
	return c, nil
}

// Get fetches a coupon by id.
func (s *CouponService) Get(ctx context.Context, id uint) (*domain.Coupon, error) {
	c, err := repo.GetCoupon(ctx, s.DB, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrCouponNotFound
		}
		return nil, err
	}
	return c, nil
}

// Update applies a partial or full update to a coupon. The owning user and
// the claimed flag are not updatable through this path; the flag only moves
// through Avail/Disavail.
func (s *CouponService) Update(ctx context.Context, id uint, upd CouponUpdate) (*domain.Coupon, error) {
	c, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if upd.CompanyName != nil {
		c.CompanyName = s.normalizeCompany(*upd.CompanyName)
	}
	if upd.Description != nil {
		c.Description = strings.TrimSpace(*upd.Description)
	}
	if upd.Category != nil {
		c.Category = strings.TrimSpace(*upd.Category)
	}
	if upd.ValidityDate != nil {
		c.ValidityDate = *upd.ValidityDate
	}
	if upd.DirectUpload != nil {
		c.DirectUpload = *upd.DirectUpload
	}
	if upd.CouponCode != nil {
		c.CouponCode = strings.TrimSpace(*upd.CouponCode)
	}
	if upd.Screenshots != nil {
		c.Screenshots = upd.Screenshots
	}
	if err := repo.SaveCoupon(ctx, s.DB, c); err != nil {
		return nil, err
	}
	return c, nil
}

// Delete removes a coupon and its membership links.
func (s *CouponService) Delete(ctx context.Context, id uint) error {
	err := repo.DeleteCoupon(ctx, s.DB, id)
	if errors.Is(err, repo.ErrNotFound) {
		return ErrCouponNotFound
	}
	return err
}

// Latest returns up to limit of the newest unclaimed, unexpired coupons,
// optionally excluding those uploaded by excludeUserID. A non-positive limit
// falls back to DefaultLatestLimit.
func (s *CouponService) Latest(ctx context.Context, limit int, excludeUserID string) ([]domain.Coupon, error) {
	if limit <= 0 {
		limit = s.DefaultLatestLimit
	}
	return repo.LatestCoupons(ctx, s.DB, limit, excludeUserID, dayStart(time.Now()))
}

// Avail claims the coupon for userID. The claimed flag and the membership
// link move together in one transaction.
//
// Returns ErrCouponNotFound / ErrProfileNotFound for missing entities and
// ErrAlreadyAvailed when the coupon is already claimed.
func (s *CouponService) Avail(ctx context.Context, couponID uint, userID string) error {
	tr := otel.Tracer("services/CouponService")
	ctx, span := tr.Start(ctx, "Avail",
		trace.WithAttributes(
			attribute.Int64("coupon.id", int64(couponID)),
			attribute.String("user.id", userID),
		),
	)
	defer span.End()

	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		c, err := repo.GetCoupon(ctx, tx, couponID)
		if err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return ErrCouponNotFound
			}
			return err
		}
		p, err := repo.GetProfileLean(ctx, tx, userID)
		if err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return ErrProfileNotFound
			}
			return err
		}
		if c.IsAvailed {
			return ErrAlreadyAvailed
		}
		if err := repo.AppendAvailed(ctx, tx, p, c); err != nil {
			return err
		}
		return repo.SetAvailed(ctx, tx, couponID, true)
	})
}

// Disavail releases a previously claimed coupon. Mirror of Avail.
//
// Returns ErrNotAvailed when the coupon is not currently claimed.
func (s *CouponService) Disavail(ctx context.Context, couponID uint, userID string) error {
	tr := otel.Tracer("services/CouponService")
	ctx, span := tr.Start(ctx, "Disavail",
		trace.WithAttributes(
			attribute.Int64("coupon.id", int64(couponID)),
			attribute.String("user.id", userID),
		),
	)
	defer span.End()

	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		c, err := repo.GetCoupon(ctx, tx, couponID)
		if err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return ErrCouponNotFound
			}
			return err
		}
		p, err := repo.GetProfileLean(ctx, tx, userID)
		if err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return ErrProfileNotFound
			}
			return err
		}
		if !c.IsAvailed {
			return ErrNotAvailed
		}
		if err := repo.RemoveAvailed(ctx, tx, p, c); err != nil {
			return err
		}
		return repo.SetAvailed(ctx, tx, couponID, false)
	})
}

// normalizeCompany trims and collapses whitespace; names submitted entirely
// in lower case are title-cased for consistent display.
func (s *CouponService) normalizeCompany(name string) string {
	name = whitespaceRE.ReplaceAllString(strings.TrimSpace(name), " ")
	if name != "" && name == strings.ToLower(name) {
		name = cases.Title(s.CompanyLocale).String(name)
	}
	return name
}

// dayStart truncates a time to midnight UTC; "expired" means the validity
// date is strictly before this boundary.
func dayStart(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// whitespaceRE collapses consecutive whitespace to a single space.
var whitespaceRE = regexp.MustCompile(`\s+`)
