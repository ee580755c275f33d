// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides small aggregate/statistics queries used
// primarily for conditional responses (e.g., ETag generation) in the HTTP
// layer.
package repo

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/couponhub/go-coupon-backend/internal/domain"
)

// CouponsStats returns aggregate metadata for the coupons table: the total
// number of rows and the maximum UpdatedAt timestamp among them. When the
// table is empty, the returned count is 0 and maxUpdatedAt is nil.
func CouponsStats(ctx context.Context, db *gorm.DB) (count int64, maxUpdatedAt *time.Time, err error) {
	q := db.WithContext(ctx).Model(&domain.Coupon{})

	if err = q.Count(&count).Error; err != nil {
		return 0, nil, err
	}
	if count == 0 {
		return 0, nil, nil
	}

	// Get latest updated_at (avoid MAX() -> TEXT in SQLite)
	var row struct {
		UpdatedAt time.Time
	}
	if err = q.Select("updated_at").Order("updated_at DESC").Limit(1).Scan(&row).Error; err != nil {
		return 0, nil, err
	}
	return count, &row.UpdatedAt, nil
}

// ConversationStats returns aggregate metadata for the messages between two
// users: the total number of rows and the greatest message timestamp. When no
// messages exist, the count is 0 and maxTimestamp is nil.
func ConversationStats(ctx context.Context, db *gorm.DB, userID, otherUserID string) (count int64, maxTimestamp *time.Time, err error) {
	q := db.WithContext(ctx).
		Model(&domain.ChatMessage{}).
		Where("(sender_id = ? AND receiver_id = ?) OR (sender_id = ? AND receiver_id = ?)",
			userID, otherUserID, otherUserID, userID)

	if err = q.Count(&count).Error; err != nil {
		return 0, nil, err
	}
	if count == 0 {
		return 0, nil, nil
	}

	var row struct {
		Timestamp time.Time
	}
	if err = q.Select("timestamp").Order("timestamp DESC").Limit(1).Scan(&row).Error; err != nil {
		return 0, nil, err
	}
	return count, &row.Timestamp, nil
}
