// User profile HTTP handlers.
//
// This file exposes REST endpoints for profile resources:
//   - GET    /user-profiles            (list, identity projection only)
//   - POST   /user-profiles            (create)
//   - GET    /user-profile/{user_id}   (detail with coupon sets)
//   - PUT    /user-profile/{user_id}   PATCH (full / partial update)
//   - DELETE /user-profile/{user_id}   (delete with cascades)
//   - POST   /login                    (stateless credential check)
//
// Profiles are keyed uniformly by their immutable userId, which defaults to
// the email address when left blank at creation time.
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/couponhub/go-coupon-backend/internal/domain"
	"github.com/couponhub/go-coupon-backend/internal/services"
)

//
// DTOs
//

// CreateProfileRequest is the JSON payload for registering a profile.
type CreateProfileRequest struct {
	// UserID optionally fixes the identifier; defaults to the email.
	UserID   string `json:"userId" example:"alice@example.com"`
	UserName string `json:"userName" binding:"required,min=1,max=255" example:"Alice"`
	Email    string `json:"email" binding:"required,email" example:"alice@example.com"`
	// Password is hashed before storage and never returned.
	Password  string  `json:"password" binding:"required,min=6"`
	UserImage *string `json:"userImage,omitempty"`
}

// UpdateProfileRequest is the JSON payload for PUT/PATCH on a profile.
// Absent fields are left unchanged; the userId itself is immutable.
type UpdateProfileRequest struct {
	UserName  *string `json:"userName"`
	Email     *string `json:"email"`
	Password  *string `json:"password"`
	UserImage *string `json:"userImage"`
}

// LoginRequest is the JSON payload for the credential check.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// ProfileSummary is the identity projection used by the profile list and the
// conversation partner list. Relationship data and credentials are never
// exposed here.
type ProfileSummary struct {
	UserID    string  `json:"userId"`
	UserName  string  `json:"userName"`
	UserImage *string `json:"userImage"`
}

// summarize projects profiles to the identity subset.
func summarize(profiles []domain.UserProfile) []ProfileSummary {
	out := make([]ProfileSummary, 0, len(profiles))
	for _, p := range profiles {
		out = append(out, ProfileSummary{
			UserID:    p.UserID,
			UserName:  p.UserName,
			UserImage: p.UserImage,
		})
	}
	return out
}

//
// Handlers
//

// ListProfiles godoc
// @ID          listProfiles
// @Summary     List user profiles
// @Description Returns all profiles projected to userId, userName, and userImage.
// @Tags        Profiles
// @Produce     json
// @Success     200  {array}  handlers.ProfileSummary
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /user-profiles [get]
func (h *Handlers) ListProfiles(c *gin.Context) {
	profiles, err := h.profileSvc.List(c.Request.Context())
	if err != nil {
		failService(c, err)
		return
	}
	ok(c, http.StatusOK, summarize(profiles))
}

// CreateProfile godoc
// @ID          createProfile
// @Summary     Register a profile
// @Description Creates a profile. The email must be unique; a duplicate returns a client error naming the conflict. The password is hashed before storage.
// @Tags        Profiles
// @Accept      json
// @Produce     json
// @Param       body  body  handlers.CreateProfileRequest  true  "Profile payload"
// @Success     201  {object} domain.UserProfile
// @Failure     400  {object} handlers.ErrorResponse "Bad request / duplicate email"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /user-profiles [post]
func (h *Handlers) CreateProfile(c *gin.Context) {
	var req CreateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, err.Error())
		return
	}
	p, err := h.profileSvc.Create(c.Request.Context(), services.ProfileInput{
		UserID:    req.UserID,
		UserName:  req.UserName,
		Email:     req.Email,
		Password:  req.Password,
		UserImage: req.UserImage,
	})
	if err != nil {
		if errors.Is(err, services.ErrDuplicateEmail) {
			fail(c, http.StatusBadRequest, ErrCodeDuplicateEmail,
				"a profile with email "+req.Email+" already exists")
			return
		}
		failService(c, err)
		return
	}
	ok(c, http.StatusCreated, p)
}

// GetProfile godoc
// @ID          getProfile
// @Summary     Profile detail
// @Description Returns the profile with its availed and uploaded coupon sets.
// @Tags        Profiles
// @Produce     json
// @Param       user_id  path  string  true  "Profile identifier"
// @Success     200  {object} domain.UserProfile
// @Failure     404  {object} handlers.ErrorResponse "Profile not found"
// @Router      /user-profile/{user_id} [get]
func (h *Handlers) GetProfile(c *gin.Context) {
	p, err := h.profileSvc.Get(c.Request.Context(), c.Param("user_id"))
	if err != nil {
		failService(c, err)
		return
	}
	ok(c, http.StatusOK, p)
}

// UpdateProfile godoc
// @ID          updateProfile
// @Summary     Update a profile
// @Description PUT and PATCH apply the fields present in the body and leave absent fields unchanged. A new email must remain unique; a new password is re-hashed.
// @Tags        Profiles
// @Accept      json
// @Produce     json
// @Param       user_id  path  string                          true  "Profile identifier"
// @Param       body     body  handlers.UpdateProfileRequest   true  "Fields to update"
// @Success     200  {object} domain.UserProfile
// @Failure     400  {object} handlers.ErrorResponse "Bad request / duplicate email"
// @Failure     404  {object} handlers.ErrorResponse "Profile not found"
// @Router      /user-profile/{user_id} [put]
func (h *Handlers) UpdateProfile(c *gin.Context) {
	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, err.Error())
		return
	}
	p, err := h.profileSvc.Update(c.Request.Context(), c.Param("user_id"), services.ProfileUpdate{
		UserName:  req.UserName,
		Email:     req.Email,
		Password:  req.Password,
		UserImage: req.UserImage,
	})
	if err != nil {
		failService(c, err)
		return
	}
	ok(c, http.StatusOK, p)
}

// DeleteProfile godoc
// @ID          deleteProfile
// @Summary     Delete a profile
// @Description Removes the profile, its coupon membership links, and every message it sent or received.
// @Tags        Profiles
// @Param       user_id  path  string  true  "Profile identifier"
// @Success     204  {string} string "No Content"
// @Failure     404  {object} handlers.ErrorResponse "Profile not found"
// @Router      /user-profile/{user_id} [delete]
func (h *Handlers) DeleteProfile(c *gin.Context) {
	if err := h.profileSvc.Delete(c.Request.Context(), c.Param("user_id")); err != nil {
		failService(c, err)
		return
	}
	noContent(c)
}

// Login godoc
// @ID          login
// @Summary     Verify credentials
// @Description Checks the email/password pair against the stored hash and returns the full profile. No session or token is issued.
// @Tags        Profiles
// @Accept      json
// @Produce     json
// @Param       body  body  handlers.LoginRequest  true  "Credentials"
// @Success     200  {object} domain.UserProfile
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Failure     401  {object} handlers.ErrorResponse "Invalid credentials"
// @Router      /login [post]
func (h *Handlers) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, err.Error())
		return
	}
	p, err := h.profileSvc.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		failService(c, err)
		return
	}
	ok(c, http.StatusOK, p)
}
