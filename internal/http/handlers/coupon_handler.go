// Coupon HTTP handlers.
//
// This file exposes REST endpoints for coupon resources:
//   - GET    /coupons                       (browse with composed filters)
//   - POST   /coupons                       (upload)
//   - GET    /coupons/{id}                  (detail)
//   - PUT    /coupons/{id}  PATCH           (full / partial update)
//   - DELETE /coupons/{id}                  (remove)
//   - GET    /coupons/latest                (newest unclaimed, limit + exclude-owner)
//   - POST   /coupons/{id}/avail/{user_id}  (claim)
//   - POST   /coupons/{id}/disavail/{user_id} (unclaim)
//
// Handlers are transport-thin: they validate input, call application
// services, and translate results into HTTP responses. The claim endpoints
// honor Idempotency-Key replays.
package handlers

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/couponhub/go-coupon-backend/internal/domain"
	"github.com/couponhub/go-coupon-backend/internal/http/middleware"
	"github.com/couponhub/go-coupon-backend/internal/repo"
	"github.com/couponhub/go-coupon-backend/internal/services"
	"github.com/couponhub/go-coupon-backend/internal/utils"
)

//
// Service contracts (context-aware)
//

// CouponService defines the coupon operations consumed by HTTP handlers.
//
// Implementations should be safe for concurrent use and must honor the
// provided context for cancellation and timeouts.
type CouponService interface {
	// List returns unclaimed, unexpired coupons matching the filter.
	List(ctx context.Context, f repo.CouponFilter) ([]domain.Coupon, error)
	// Create uploads a new coupon owned by the input's user.
	Create(ctx context.Context, in services.CouponInput) (*domain.Coupon, error)
	// Get fetches a coupon by id.
	Get(ctx context.Context, id uint) (*domain.Coupon, error)
	// Update applies a partial or full update.
	Update(ctx context.Context, id uint, upd services.CouponUpdate) (*domain.Coupon, error)
	// Delete removes a coupon and its membership links.
	Delete(ctx context.Context, id uint) error
	// Latest returns the newest unclaimed coupons.
	Latest(ctx context.Context, limit int, excludeUserID string) ([]domain.Coupon, error)
	// Avail claims the coupon for userID.
	Avail(ctx context.Context, couponID uint, userID string) error
	// Disavail releases a claimed coupon.
	Disavail(ctx context.Context, couponID uint, userID string) error
}

// ProfileService defines the user-profile operations consumed by handlers.
type ProfileService interface {
	List(ctx context.Context) ([]domain.UserProfile, error)
	Create(ctx context.Context, in services.ProfileInput) (*domain.UserProfile, error)
	Get(ctx context.Context, userID string) (*domain.UserProfile, error)
	Update(ctx context.Context, userID string, upd services.ProfileUpdate) (*domain.UserProfile, error)
	Delete(ctx context.Context, userID string) error
	Login(ctx context.Context, email, password string) (*domain.UserProfile, error)
}

// ChatService defines the messaging operations consumed by handlers.
type ChatService interface {
	Partners(ctx context.Context, userID string) ([]domain.UserProfile, error)
	Conversation(ctx context.Context, userID, otherUserID string) ([]domain.ChatMessage, error)
	Send(ctx context.Context, senderID, receiverID, content string, image *string) (*domain.ChatMessage, error)
}

//
// Handler wiring
//

// Handlers groups HTTP endpoints for coupons, profiles, and chat. It depends
// on abstract service interfaces to keep transport concerns separate from
// business logic.
type Handlers struct {
	couponSvc  CouponService
	profileSvc ProfileService
	chatSvc    ChatService

	// IdempotencyTTL bounds how long recorded claim results are replayable.
	IdempotencyTTL time.Duration
}

// New constructs and returns a Handlers instance bound to the given services.
func New(couponSvc CouponService, profileSvc ProfileService, chatSvc ChatService) *Handlers {
	return &Handlers{
		couponSvc:      couponSvc,
		profileSvc:     profileSvc,
		chatSvc:        chatSvc,
		IdempotencyTTL: 24 * time.Hour,
	}
}

// db exposes the GORM handle of the concrete coupon service when available.
// Used for best-effort extras (ETags, idempotency records) that are skipped
// when handlers are wired with stubs.
func (h *Handlers) db() *gorm.DB {
	if svc, ok := h.couponSvc.(*services.CouponService); ok {
		return svc.DB
	}
	return nil
}

//
// DTOs
//

// CreateCouponRequest is the JSON payload for uploading a coupon.
type CreateCouponRequest struct {
	// UserID identifies the uploading profile; it must exist.
	UserID string `json:"userId" binding:"required" example:"alice@example.com"`
	// CompanyName is the issuing company (1–255 chars).
	CompanyName string `json:"companyName" binding:"required,min=1,max=255" example:"Steam"`
	Description string `json:"description" example:"20% off any game"`
	Category    string `json:"category" example:"gaming"`
	// ValidityDate is the expiry date in YYYY-MM-DD form.
	ValidityDate string `json:"validityDate" binding:"required" example:"2027-01-31"`
	// DirectUpload defaults to true (code supplied at upload time).
	DirectUpload *bool   `json:"directUpload"`
	CouponCode   string  `json:"couponCode" example:"STEAM-20-OFF"`
	Screenshots  *string `json:"screenshots,omitempty"`
}

// UpdateCouponRequest is the JSON payload for PUT/PATCH on a coupon. Absent
// fields are left unchanged, which serves both full and partial updates.
type UpdateCouponRequest struct {
	CompanyName  *string `json:"companyName"`
	Description  *string `json:"description"`
	Category     *string `json:"category"`
	ValidityDate *string `json:"validityDate"`
	DirectUpload *bool   `json:"directUpload"`
	CouponCode   *string `json:"couponCode"`
	Screenshots  *string `json:"screenshots"`
}

//
// Helpers
//

// couponID parses the :id path parameter. The boolean is false after an
// error response has been written.
func couponID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "coupon id must be numeric")
		return 0, false
	}
	return uint(id), true
}

// parseValidityDate accepts YYYY-MM-DD or RFC 3339 and normalizes to
// midnight UTC.
func parseValidityDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if t, err := time.Parse("2006-01-02", raw); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, err
	}
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), nil
}

//
// Handlers
//

// ListCoupons godoc
// @ID          listCoupons
// @Summary     Browse coupons
// @Description Returns unclaimed, unexpired coupons. Supports companyName substring, category equality, and exclude-owner filters. Supports weak ETag via If-None-Match.
// @Tags        Coupons
// @Produce     json
//
// @Param       companyName  query  string  false "Case-insensitive substring match"
// @Param       category     query  string  false "Exact category match"
// @Param       userId       query  string  false "Exclude coupons uploaded by this user"
//
// @Success     200  {array}  domain.Coupon
// @Header      200  {string} ETag "Weak ETag for current result"
// @Success     304  {string} string "Not Modified"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /coupons [get]
func (h *Handlers) ListCoupons(c *gin.Context) {
	ctx := c.Request.Context()

	// ETag pre-check (best effort). The current date is part of the tag:
	// the result set shrinks at midnight when coupons expire, without any
	// row being written.
	if db := h.db(); db != nil {
		count, maxTS, err := repo.CouponsStats(ctx, db)
		if err == nil {
			var ts int64
			if maxTS != nil {
				ts = maxTS.Unix()
			}
			day := time.Now().UTC().Format("2006-01-02")
			etag := fmt.Sprintf(`W/"coupons:%d:%d:%s"`, count, ts, day)
			c.Header("ETag", etag)
			if inm := c.GetHeader("If-None-Match"); inm != "" && inm == etag {
				c.Status(http.StatusNotModified)
				return
			}
		}
	}

	f := repo.CouponFilter{
		CompanyName:   strings.TrimSpace(c.Query("companyName")),
		Category:      strings.TrimSpace(c.Query("category")),
		ExcludeUserID: strings.TrimSpace(c.Query("userId")),
	}
	items, err := h.couponSvc.List(ctx, f)
	if err != nil {
		failService(c, err)
		return
	}
	if items == nil {
		items = []domain.Coupon{}
	}
	ok(c, http.StatusOK, items)
}

// CreateCoupon godoc
// @ID          createCoupon
// @Summary     Upload a coupon
// @Description Creates a coupon owned by an existing profile and links it into the owner's uploaded set.
// @Tags        Coupons
// @Accept      json
// @Produce     json
//
// @Param       body  body  handlers.CreateCouponRequest  true  "Coupon payload"
//
// @Success     201  {object} domain.Coupon
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Failure     404  {object} handlers.ErrorResponse "Owner profile not found"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /coupons [post]
func (h *Handlers) CreateCoupon(c *gin.Context) {
	var req CreateCouponRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, err.Error())
		return
	}
	validity, err := parseValidityDate(req.ValidityDate)
	if err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "validityDate must be YYYY-MM-DD")
		return
	}
	directUpload := true
	if req.DirectUpload != nil {
		directUpload = *req.DirectUpload
	}

	coupon, err := h.couponSvc.Create(c.Request.Context(), services.CouponInput{
		UserID:       req.UserID,
		CompanyName:  req.CompanyName,
		Description:  req.Description,
		Category:     req.Category,
		ValidityDate: validity,
		DirectUpload: directUpload,
		CouponCode:   req.CouponCode,
		Screenshots:  req.Screenshots,
	})
	if err != nil {
		failService(c, err)
		return
	}
	ok(c, http.StatusCreated, coupon)
}

// GetCoupon godoc
// @ID          getCoupon
// @Summary     Coupon detail
// @Tags        Coupons
// @Produce     json
// @Param       id  path  int  true  "Coupon ID"
// @Success     200  {object} domain.Coupon
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Failure     404  {object} handlers.ErrorResponse "Coupon not found"
// @Router      /coupons/{id} [get]
func (h *Handlers) GetCoupon(c *gin.Context) {
	id, okID := couponID(c)
	if !okID {
		return
	}
	coupon, err := h.couponSvc.Get(c.Request.Context(), id)
	if err != nil {
		failService(c, err)
		return
	}
	ok(c, http.StatusOK, coupon)
}

// UpdateCoupon godoc
// @ID          updateCoupon
// @Summary     Update a coupon
// @Description PUT and PATCH apply the fields present in the body and leave absent fields unchanged. The claimed flag moves only through the claim endpoints.
// @Tags        Coupons
// @Accept      json
// @Produce     json
// @Param       id    path  int                            true  "Coupon ID"
// @Param       body  body  handlers.UpdateCouponRequest   true  "Fields to update"
// @Success     200  {object} domain.Coupon
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Failure     404  {object} handlers.ErrorResponse "Coupon not found"
// @Router      /coupons/{id} [put]
func (h *Handlers) UpdateCoupon(c *gin.Context) {
	id, okID := couponID(c)
	if !okID {
		return
	}
	var req UpdateCouponRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, err.Error())
		return
	}

	upd := services.CouponUpdate{
		CompanyName:  req.CompanyName,
		Description:  req.Description,
		Category:     req.Category,
		DirectUpload: req.DirectUpload,
		CouponCode:   req.CouponCode,
		Screenshots:  req.Screenshots,
	}
	if req.ValidityDate != nil {
		validity, err := parseValidityDate(*req.ValidityDate)
		if err != nil {
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, "validityDate must be YYYY-MM-DD")
			return
		}
		upd.ValidityDate = &validity
	}

	coupon, err := h.couponSvc.Update(c.Request.Context(), id, upd)
	if err != nil {
		failService(c, err)
		return
	}
	ok(c, http.StatusOK, coupon)
}

// DeleteCoupon godoc
// @ID          deleteCoupon
// @Summary     Delete a coupon
// @Tags        Coupons
// @Param       id  path  int  true  "Coupon ID"
// @Success     204  {string} string "No Content"
// @Failure     404  {object} handlers.ErrorResponse "Coupon not found"
// @Router      /coupons/{id} [delete]
func (h *Handlers) DeleteCoupon(c *gin.Context) {
	id, okID := couponID(c)
	if !okID {
		return
	}
	if err := h.couponSvc.Delete(c.Request.Context(), id); err != nil {
		failService(c, err)
		return
	}
	noContent(c)
}

// LatestCoupons godoc
// @ID          latestCoupons
// @Summary     Newest unclaimed coupons
// @Description Returns up to limit (default 20) of the most recently created unclaimed coupons, optionally excluding a given owner. An empty result is a success with an explicit message.
// @Tags        Coupons
// @Produce     json
// @Param       limit   query  int     false "Maximum results" minimum(1) default(20)
// @Param       userId  query  string  false "Exclude coupons uploaded by this user"
// @Success     200  {array}  domain.Coupon
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /coupons/latest [get]
func (h *Handlers) LatestCoupons(c *gin.Context) {
	limit := utils.AtoiDefault(c.Query("limit"), 0)
	excludeUserID := strings.TrimSpace(c.Query("userId"))

	items, err := h.couponSvc.Latest(c.Request.Context(), limit, excludeUserID)
	if err != nil {
		failService(c, err)
		return
	}
	if len(items) == 0 {
		// Empty-but-valid is distinguished from failure.
		detail(c, http.StatusOK, "No coupons found")
		return
	}
	ok(c, http.StatusOK, items)
}

// AvailCoupon godoc
// @ID          availCoupon
// @Summary     Claim a coupon
// @Description Flips the claimed flag and links the coupon into the claimer's availed set in one transaction. Honors Idempotency-Key replays.
// @Tags        Coupons
// @Produce     json
// @Param       id               path    int     true  "Coupon ID"
// @Param       user_id          path    string  true  "Claiming user"
// @Param       Idempotency-Key  header  string  false "Safe-retry key"
// @Success     201  {object} handlers.DetailResponse
// @Failure     400  {object} handlers.ErrorResponse "Already availed"
// @Failure     404  {object} handlers.ErrorResponse "Coupon or profile not found"
// @Router      /coupons/{id}/avail/{user_id} [post]
func (h *Handlers) AvailCoupon(c *gin.Context) {
	h.claimTransition(c, true)
}

// DisavailCoupon godoc
// @ID          disavailCoupon
// @Summary     Release a claimed coupon
// @Tags        Coupons
// @Produce     json
// @Param       id       path  int     true  "Coupon ID"
// @Param       user_id  path  string  true  "Releasing user"
// @Success     200  {object} handlers.DetailResponse
// @Failure     400  {object} handlers.ErrorResponse "Not availed"
// @Failure     404  {object} handlers.ErrorResponse "Coupon or profile not found"
// @Router      /coupons/{id}/disavail/{user_id} [post]
func (h *Handlers) DisavailCoupon(c *gin.Context) {
	h.claimTransition(c, false)
}

// claimTransition runs the shared avail/disavail transport logic: replay
// detection, the service call, and best-effort idempotency recording.
func (h *Handlers) claimTransition(c *gin.Context, avail bool) {
	id, okID := couponID(c)
	if !okID {
		return
	}
	userID := c.Param("user_id")
	ctx := c.Request.Context()

	// Serve recorded results for replayed keys without re-executing.
	if key, hasKey := middleware.GetIdempotencyKey(c); hasKey && middleware.IsReplay(c) {
		if db := h.db(); db != nil {
			rec, err := repo.GetIdempotency(ctx, db, userID, c.Param("id"), key, time.Now().UTC())
			if err == nil && rec != nil {
				c.Header("Idempotency-Replayed", "true")
				detail(c, rec.Status, rec.Detail)
				return
			}
		}
	}

	var err error
	status := http.StatusCreated
	msg := "Coupon added to availed coupons successfully"
	if avail {
		err = h.couponSvc.Avail(ctx, id, userID)
	} else {
		err = h.couponSvc.Disavail(ctx, id, userID)
		status = http.StatusOK
		msg = "Coupon removed from availed coupons successfully"
	}
	if err != nil {
		failService(c, err)
		return
	}

	// Record the outcome for future replays (best effort).
	if key, hasKey := middleware.GetIdempotencyKey(c); hasKey {
		if db := h.db(); db != nil {
			_, _ = repo.CreateIdempotency(ctx, db, userID, c.Param("id"), key, msg, status, h.IdempotencyTTL)
		}
	}

	detail(c, status, msg)
}
