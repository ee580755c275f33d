// Package services defines the business logic for coupons, user profiles,
// and chat. This file centralizes common service-level error values so that
// they can be consistently returned by service methods and checked by
// callers.
//
// These errors are intended for internal use by the service layer; translation
// into user-facing messages or HTTP status codes is performed at the handler
// layer.
package services

import "errors"

// Coupon-related errors.
var (
	// ErrCouponNotFound indicates that the requested coupon does not exist.
	ErrCouponNotFound = errors.New("coupon not found")

	// ErrAlreadyAvailed is returned when a user attempts to claim a coupon
	// that is already claimed.
	ErrAlreadyAvailed = errors.New("coupon is already availed")

	// ErrNotAvailed is returned when a user attempts to unclaim a coupon
	// that is not currently claimed.
	ErrNotAvailed = errors.New("coupon is not availed")

	// ErrExpiredCoupon is returned when a coupon is created with a validity
	// date already in the past.
	ErrExpiredCoupon = errors.New("validity date is in the past")
)

// Profile-related errors.
var (
	// ErrProfileNotFound indicates that the referenced user profile does not
	// exist.
	ErrProfileNotFound = errors.New("user profile not found")

	// ErrDuplicateEmail is returned when a profile is created with an email
	// that already belongs to another profile.
	ErrDuplicateEmail = errors.New("email already registered")

	// ErrDuplicateUserID is returned when a profile is created with an
	// identifier that is already taken.
	ErrDuplicateUserID = errors.New("user id already taken")

	// ErrInvalidCredentials is returned by Login when the email is unknown
	// or the password does not match the stored hash.
	ErrInvalidCredentials = errors.New("invalid email or password")
)

// Chat-related errors.
var (
	// ErrEmptyMessage is returned when a sent message carries neither text
	// content nor an image.
	ErrEmptyMessage = errors.New("message has no content")
)
