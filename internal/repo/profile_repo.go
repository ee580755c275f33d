// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the
// UserProfile model.
package repo

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/couponhub/go-coupon-backend/internal/domain"
)

// CreateProfile inserts a new profile row.
func CreateProfile(ctx context.Context, db *gorm.DB, p *domain.UserProfile) error {
	p.CreatedAt = time.Now().UTC()
	return db.WithContext(ctx).Create(p).Error
}

// ListProfiles returns all profiles ordered by creation time ascending.
// Associations are not preloaded; the list view only projects identity
// fields.
func ListProfiles(ctx context.Context, db *gorm.DB) ([]domain.UserProfile, error) {
	var out []domain.UserProfile
	err := db.WithContext(ctx).Order("created_at ASC").Find(&out).Error
	return out, err
}

// GetProfile fetches a profile by its userId together with the availed and
// uploaded coupon sets, or ErrNotFound. Expired coupons are excluded from
// both sets by predicate so they never surface between background sweeps.
func GetProfile(ctx context.Context, db *gorm.DB, userID string, today time.Time) (*domain.UserProfile, error) {
	var p domain.UserProfile
	err := db.WithContext(ctx).
		Preload("AvailedCoupons", "validity_date >= ?", today).
		Preload("UploadedCoupons", "validity_date >= ?", today).
		First(&p, "user_id = ?", userID).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// GetProfileLean fetches a profile without association preloads. Used on
// write paths where only the row itself is needed.
func GetProfileLean(ctx context.Context, db *gorm.DB, userID string) (*domain.UserProfile, error) {
	var p domain.UserProfile
	if err := db.WithContext(ctx).First(&p, "user_id = ?", userID).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

// GetProfileByEmail fetches a profile by email, or ErrNotFound.
func GetProfileByEmail(ctx context.Context, db *gorm.DB, email string) (*domain.UserProfile, error) {
	var p domain.UserProfile
	if err := db.WithContext(ctx).First(&p, "email = ?", email).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

// SaveProfile persists every field of an existing profile row.
func SaveProfile(ctx context.Context, db *gorm.DB, p *domain.UserProfile) error {
	return db.WithContext(ctx).Save(p).Error
}

// DeleteProfile removes a profile row, its coupon membership links, and all
// messages the user sent or received. Remote entities (the coupons
// themselves, the other participants) are never deleted. Returns ErrNotFound
// when no row matched.
func DeleteProfile(ctx context.Context, db *gorm.DB, userID string) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM availed_coupons WHERE user_profile_user_id = ?", userID).Error; err != nil {
			return err
		}
		if err := tx.Exec("DELETE FROM uploaded_coupons WHERE user_profile_user_id = ?", userID).Error; err != nil {
			return err
		}
		// Explicit even though the FK constraints cascade: the behavior must
		// not depend on the connection's foreign_keys pragma.
		if err := tx.Where("sender_id = ? OR receiver_id = ?", userID, userID).
			Delete(&domain.ChatMessage{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&domain.UserProfile{UserID: userID})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}
