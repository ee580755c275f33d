package domain

import "time"

// Idempotency represents a recorded result of a previously processed claim or
// unclaim request, keyed by (user_id, coupon_id, key). It enables safe retries
// of the avail/disavail POST endpoints by returning the originally produced
// response without re-executing side effects.
type Idempotency struct {
	ID        string    `gorm:"type:TEXT NOT NULL;primaryKey"`
	UserID    string    `gorm:"type:TEXT NOT NULL;uniqueIndex:ux_user_coupon_key,priority:1"`
	CouponID  string    `gorm:"type:TEXT NOT NULL;uniqueIndex:ux_user_coupon_key,priority:2"`
	Key       string    `gorm:"type:TEXT NOT NULL;uniqueIndex:ux_user_coupon_key,priority:3"`
	Status    int       `gorm:"type:INTEGER NOT NULL"`
	Detail    string    `gorm:"type:TEXT NOT NULL"`
	CreatedAt time.Time `gorm:"type:DATETIME NOT NULL;autoCreateTime"`
	ExpiresAt time.Time `gorm:"type:DATETIME NOT NULL;index"`
}

// TableName implements the GORM tabler interface.
func (Idempotency) TableName() string { return "idempotency" }
