// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the Coupon
// model, including the browse filters and the claim membership links.
//
// All functions are context-aware and accept a *gorm.DB handle, making them
// safe for use within transactions. They follow the "thin repository"
// approach: no business logic, only CRUD persistence and query composition.
//
// Error semantics:
//   - When a coupon is not found, functions return gorm.ErrRecordNotFound
//     (also exported here as ErrNotFound for convenience).
//   - On DB errors the raw gorm error is propagated.
package repo

import (
	"context"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/couponhub/go-coupon-backend/internal/domain"
)

// ErrNotFound is returned when a requested record does not exist.
// It aliases gorm.ErrRecordNotFound for convenience and consistency
// across the service layer and handlers.
var ErrNotFound = gorm.ErrRecordNotFound

// CouponFilter carries the optional browse predicates for ListCoupons.
// Zero values disable the corresponding predicate.
type CouponFilter struct {
	// CompanyName matches as a case-insensitive substring.
	CompanyName string
	// Category matches exactly.
	Category string
	// ExcludeUserID removes coupons uploaded by this user from the result.
	ExcludeUserID string
}

// CreateCoupon inserts a new coupon row. The numeric ID is assigned by the
// database.
func CreateCoupon(ctx context.Context, db *gorm.DB, c *domain.Coupon) error {
	c.CreatedAt = time.Now().UTC()
	return db.WithContext(ctx).Create(c).Error
}

// GetCoupon fetches a coupon by its numeric id, or ErrNotFound.
func GetCoupon(ctx context.Context, db *gorm.DB, id uint) (*domain.Coupon, error) {
	var c domain.Coupon
	if err := db.WithContext(ctx).First(&c, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

// SaveCoupon persists every field of an existing coupon row.
func SaveCoupon(ctx context.Context, db *gorm.DB, c *domain.Coupon) error {
	return db.WithContext(ctx).Save(c).Error
}

// DeleteCoupon removes a coupon row together with its membership links.
// The owning profile is never touched. Returns ErrNotFound when no row
// matched.
func DeleteCoupon(ctx context.Context, db *gorm.DB, id uint) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		c := domain.Coupon{ID: id}
		if err := tx.Exec("DELETE FROM availed_coupons WHERE coupon_id = ?", id).Error; err != nil {
			return err
		}
		if err := tx.Exec("DELETE FROM uploaded_coupons WHERE coupon_id = ?", id).Error; err != nil {
			return err
		}
		res := tx.Delete(&c)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}

// ListCoupons returns unclaimed, unexpired coupons matching the filter.
// Expired rows are excluded by predicate so they never surface between
// background sweeps. Results are ordered by id ascending.
func ListCoupons(ctx context.Context, db *gorm.DB, f CouponFilter, today time.Time) ([]domain.Coupon, error) {
	q := db.WithContext(ctx).
		Where("is_availed = ?", false).
		Where("validity_date >= ?", today)
	if f.CompanyName != "" {
		q = q.Where("LOWER(company_name) LIKE ?", "%"+strings.ToLower(f.CompanyName)+"%")
	}
	if f.Category != "" {
		q = q.Where("category = ?", f.Category)
	}
	if f.ExcludeUserID != "" {
		q = q.Where("user_id <> ?", f.ExcludeUserID)
	}
	var out []domain.Coupon
	err := q.Order("id ASC").Find(&out).Error
	return out, err
}

// LatestCoupons returns up to limit of the most recently created unclaimed,
// unexpired coupons, ordered by id descending. When excludeUserID is
// non-empty, coupons uploaded by that user are removed from the candidate
// set before the limit applies.
func LatestCoupons(ctx context.Context, db *gorm.DB, limit int, excludeUserID string, today time.Time) ([]domain.Coupon, error) {
	q := db.WithContext(ctx).
		Where("is_availed = ?", false).
		Where("validity_date >= ?", today)
	if excludeUserID != "" {
		q = q.Where("user_id <> ?", excludeUserID)
	}
	if limit > 0 {
		q = q.Limit(limit)
	}
	var out []domain.Coupon
	err := q.Order("id DESC").Find(&out).Error
	return out, err
}

// AppendUploaded links a coupon into the profile's uploaded set. The join
// table has a composite primary key, so repeating the call is a no-op.
func AppendUploaded(ctx context.Context, db *gorm.DB, p *domain.UserProfile, c *domain.Coupon) error {
	return db.WithContext(ctx).Model(p).Association("UploadedCoupons").Append(c)
}

// AppendAvailed links a coupon into the profile's availed set (idempotent).
func AppendAvailed(ctx context.Context, db *gorm.DB, p *domain.UserProfile, c *domain.Coupon) error {
	return db.WithContext(ctx).Model(p).Association("AvailedCoupons").Append(c)
}

// RemoveAvailed unlinks a coupon from the profile's availed set.
func RemoveAvailed(ctx context.Context, db *gorm.DB, p *domain.UserProfile, c *domain.Coupon) error {
	return db.WithContext(ctx).Model(p).Association("AvailedCoupons").Delete(c)
}

// SetAvailed flips the claimed flag of a coupon row. Returns ErrNotFound
// when the coupon does not exist.
func SetAvailed(ctx context.Context, db *gorm.DB, id uint, availed bool) error {
	res := db.WithContext(ctx).
		Model(&domain.Coupon{}).
		Where("id = ?", id).
		Update("is_availed", availed)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteExpiredCoupons removes every coupon whose validity date is strictly
// earlier than today, together with the membership links of the removed
// rows. It returns the number of coupon rows deleted; running it twice in
// succession deletes nothing the second time.
func DeleteExpiredCoupons(ctx context.Context, db *gorm.DB, today time.Time) (int64, error) {
	var removed int64
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		sub := "SELECT id FROM coupons WHERE validity_date < ?"
		if err := tx.Exec("DELETE FROM availed_coupons WHERE coupon_id IN ("+sub+")", today).Error; err != nil {
			return err
		}
		if err := tx.Exec("DELETE FROM uploaded_coupons WHERE coupon_id IN ("+sub+")", today).Error; err != nil {
			return err
		}
		res := tx.Where("validity_date < ?", today).Delete(&domain.Coupon{})
		if res.Error != nil {
			return res.Error
		}
		removed = res.RowsAffected
		return nil
	})
	return removed, err
}
