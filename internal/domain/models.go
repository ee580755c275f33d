// Package domain defines the persistence models for user profiles, coupons,
// and chat messages. These types are mapped with GORM and form the core data
// layer of the coupon-sharing application.
package domain

import "time"

// UserProfile represents a registered user. The primary key is a user-chosen
// string identifier; when left blank at creation time it defaults to the
// email address, which is unique across profiles.
//
// Fields:
//   - UserID: immutable string primary key (defaults to Email when blank).
//   - UserName: display name.
//   - Email: unique contact address, also the login credential.
//   - Password: bcrypt hash; never serialized.
//   - UserImage: optional reference to an uploaded profile image.
//   - CreatedAt / UpdatedAt: timestamps managed by GORM.
type UserProfile struct {
	UserID    string    `json:"userId"    gorm:"type:varchar(255);primaryKey"`
	UserName  string    `json:"userName"  gorm:"type:varchar(255);not null"`
	Email     string    `json:"email"     gorm:"type:varchar(255);not null;uniqueIndex:ux_profiles_email"`
	Password  string    `json:"-"         gorm:"type:varchar(255);not null"`
	UserImage *string   `json:"userImage,omitempty" gorm:"type:varchar(512)"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// AvailedCoupons are coupons this user has claimed. The join table uses a
	// composite primary key, so repeating an Append is a no-op.
	AvailedCoupons []Coupon `json:"availedCoupons,omitempty" gorm:"many2many:availed_coupons;constraint:OnDelete:CASCADE"`

	// UploadedCoupons are coupons this user created.
	UploadedCoupons []Coupon `json:"uploadedCoupons,omitempty" gorm:"many2many:uploaded_coupons;constraint:OnDelete:CASCADE"`
}

// TableName returns the database table name for UserProfile.
func (UserProfile) TableName() string { return "user_profiles" }

// Coupon represents an offer shared by one user and claimable by another.
//
// Fields:
//   - ID: auto-assigned numeric primary key.
//   - UserID: identifier of the uploading profile. Validated against the
//     profile store at write time by the service layer rather than enforced
//     as a free-text column.
//   - CompanyName / Description / Category: descriptive attributes.
//   - IsAvailed: true while exactly one other user holds the claim.
//   - ValidityDate: expiry date; a coupon whose date is strictly before
//     "today" is expired and eligible for removal.
//   - DirectUpload: true when the coupon carries a usable code at upload
//     time; false when it requires screenshot proof instead.
//   - CouponCode: redeemable code (direct uploads).
//   - Screenshots: optional reference to an uploaded proof image.
type Coupon struct {
	ID           uint      `json:"id"           gorm:"primaryKey;autoIncrement"`
	UserID       string    `json:"userId"       gorm:"type:varchar(255);not null;index:idx_coupons_owner"`
	CompanyName  string    `json:"companyName"  gorm:"type:varchar(255);not null"`
	Description  string    `json:"description"  gorm:"type:varchar(255)"`
	Category     string    `json:"category"     gorm:"type:varchar(255);index:idx_coupons_category"`
	IsAvailed    bool      `json:"isAvailed"    gorm:"not null;default:false"`
	ValidityDate time.Time `json:"validityDate" gorm:"not null;index:idx_coupons_validity"`
	DirectUpload bool      `json:"directUpload" gorm:"not null;default:true"`
	CouponCode   string    `json:"couponCode"   gorm:"type:varchar(255)"`
	Screenshots  *string   `json:"screenshots,omitempty" gorm:"type:varchar(512)"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// TableName returns the database table name for Coupon.
func (Coupon) TableName() string { return "coupons" }

// ChatMessage is a single direct message between two profiles. Messages are
// never updated; they are removed only when a participant profile is deleted
// (cascade through the sender/receiver foreign keys).
//
// Conversation membership is derived from the sender/receiver columns, so no
// separate membership table is needed.
type ChatMessage struct {
	ID         uint      `json:"id"        gorm:"primaryKey;autoIncrement"`
	SenderID   string    `json:"sender"    gorm:"type:varchar(255);not null;index:idx_msgs_sender"`
	ReceiverID string    `json:"receiver"  gorm:"type:varchar(255);not null;index:idx_msgs_receiver"`
	Content    string    `json:"content"   gorm:"type:text"`
	Image      *string   `json:"image,omitempty" gorm:"type:varchar(512)"`
	Timestamp  time.Time `json:"timestamp" gorm:"not null;index:idx_msgs_ts"`

	// Sender and Receiver enforce that every message references two existing
	// profiles and cascade-delete messages when a participant is removed.
	Sender   UserProfile `json:"-" gorm:"foreignKey:SenderID;references:UserID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	Receiver UserProfile `json:"-" gorm:"foreignKey:ReceiverID;references:UserID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for ChatMessage.
func (ChatMessage) TableName() string { return "chat_messages" }
