// Package services – ProfileService
//
// This file implements the ProfileService, which manages the lifecycle of
// user profiles: listing, creation with email uniqueness and password
// hashing, detail retrieval keyed by the immutable userId, partial/full
// updates, deletion with cascades, and the stateless login check.
package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/couponhub/go-coupon-backend/internal/domain"
	"github.com/couponhub/go-coupon-backend/internal/repo"
	"github.com/couponhub/go-coupon-backend/internal/security"
)

// ProfileService provides profile-level operations. It enforces identity
// rules (userId defaults to email, email uniqueness) and owns credential
// hashing; plaintext passwords never reach the repository layer.
type ProfileService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB
	// Hasher hashes and verifies passwords.
	Hasher *security.PasswordHasher
}

// NewProfileService constructs a ProfileService with the given bcrypt cost.
func NewProfileService(db *gorm.DB, bcryptCost int) *ProfileService {
	return &ProfileService{
		DB:     db,
		Hasher: security.NewPasswordHasher(bcryptCost),
	}
}

// ProfileInput carries the validated payload for Create.
type ProfileInput struct {
	UserID    string
	UserName  string
	Email     string
	Password  string
	UserImage *string
}

// ProfileUpdate carries a partial or full update. Nil fields are left
// unchanged. The userId itself is immutable.
type ProfileUpdate struct {
	UserName  *string
	Email     *string
	Password  *string
	UserImage *string
}

// List returns all profiles. Callers project the identity subset; the
// service never exposes credentials regardless.
func (s *ProfileService) List(ctx context.Context) ([]domain.UserProfile, error) {
	return repo.ListProfiles(ctx, s.DB)
}

// Create registers a new profile. The identifier defaults to the email when
// blank. Duplicate emails are rejected with ErrDuplicateEmail and leave the
// existing profile unmodified; duplicate identifiers with ErrDuplicateUserID.
func (s *ProfileService) Create(ctx context.Context, in ProfileInput) (*domain.UserProfile, error) {
	email := strings.TrimSpace(strings.ToLower(in.Email))
	userID := strings.TrimSpace(in.UserID)
	if userID == "" {
		userID = email
	}

	hash, err := s.Hasher.Hash(in.Password)
	if err != nil {
		return nil, err
	}

	p := &domain.UserProfile{
		UserID:    userID,
		UserName:  strings.TrimSpace(in.UserName),
		Email:     email,
		Password:  hash,
		UserImage: in.UserImage,
	}

	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := repo.GetProfileByEmail(ctx, tx, email); err == nil {
			return ErrDuplicateEmail
		} else if !errors.Is(err, repo.ErrNotFound) {
			return err
		}
		if _, err := repo.GetProfileLean(ctx, tx, userID); err == nil {
			return ErrDuplicateUserID
		} else if !errors.Is(err, repo.ErrNotFound) {
			return err
		}
		return repo.CreateProfile(ctx, tx, p)
	})
	if err != nil {
		return nil, err
	}
	return p, nil
}

// Get fetches a profile by userId, including its availed and uploaded
// coupon sets. Expired coupons are excluded from both sets.
func (s *ProfileService) Get(ctx context.Context, userID string) (*domain.UserProfile, error) {
	p, err := repo.GetProfile(ctx, s.DB, userID, dayStart(time.Now()))
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrProfileNotFound
		}
		return nil, err
	}
	return p, nil
}

// Update applies a partial or full update. A new email must remain unique;
// a new password is re-hashed before storage.
func (s *ProfileService) Update(ctx context.Context, userID string, upd ProfileUpdate) (*domain.UserProfile, error) {
	var out *domain.UserProfile
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		p, err := repo.GetProfileLean(ctx, tx, userID)
		if err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return ErrProfileNotFound
			}
			return err
		}
		if upd.UserName != nil {
			p.UserName = strings.TrimSpace(*upd.UserName)
		}
		if upd.Email != nil {
			email := strings.TrimSpace(strings.ToLower(*upd.Email))
			if email != p.Email {
				if _, err := repo.GetProfileByEmail(ctx, tx, email); err == nil {
					return ErrDuplicateEmail
				} else if !errors.Is(err, repo.ErrNotFound) {
					return err
				}
				p.Email = email
			}
		}
		if upd.Password != nil && *upd.Password != "" {
			hash, err := s.Hasher.Hash(*upd.Password)
			if err != nil {
				return err
			}
			p.Password = hash
		}
		if upd.UserImage != nil {
			p.UserImage = upd.UserImage
		}
		if err := repo.SaveProfile(ctx, tx, p); err != nil {
			return err
		}
		out = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Delete removes a profile, its membership links, and all messages it sent
// or received. Coupons it uploaded remain (their owner field keeps the
// departed identifier).
func (s *ProfileService) Delete(ctx context.Context, userID string) error {
	err := repo.DeleteProfile(ctx, s.DB, userID)
	if errors.Is(err, repo.ErrNotFound) {
		return ErrProfileNotFound
	}
	return err
}

// Login verifies the email/password pair against the stored hash and returns
// the full profile on success. No session or token is issued. Unknown emails
// and wrong passwords are indistinguishable to the caller.
func (s *ProfileService) Login(ctx context.Context, email, password string) (*domain.UserProfile, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	p, err := repo.GetProfileByEmail(ctx, s.DB, email)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if err := s.Hasher.Verify(password, p.Password); err != nil {
		return nil, ErrInvalidCredentials
	}
	return s.Get(ctx, p.UserID)
}
