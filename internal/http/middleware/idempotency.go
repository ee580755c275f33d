// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file implements idempotency support for the coupon claim endpoints
// (avail/disavail). It validates an Idempotency-Key request header, optionally
// performs a user-defined lookup to detect previously completed claims, and
// annotates the request context so downstream handlers can:
//   - read the normalized key (GetIdempotencyKey)
//   - detect replayed requests (IsReplay)
//   - bypass rate limiting when a replay is served
//
// Persistence is decoupled behind the narrow IdempotencyLookup function type;
// the middleware never returns a cached payload itself, handlers decide how to
// serve replays.
package middleware

import (
	"context"
	"net/http"
	"regexp"
	"time"

	"github.com/gin-gonic/gin"
)

// HeaderIdempotencyKey is the request header clients use to convey an
// idempotency key for claim operations. The value is expected to be stable for
// a given semantic operation so retries can be safely deduplicated.
const HeaderIdempotencyKey = "Idempotency-Key"

// Context keys used internally to stash idempotency state. Referenced only via
// the accessor helpers below.
const (
	ctxKeyIdemKey    = "idem.key"
	ctxKeyIdemReplay = "idem.replay" // bool: true when a stored replay exists
	ctxKeyRateBypass = "rate.bypass" // bool: true to skip rate limiting
)

// GetIdempotencyKey returns the validated idempotency key stored in the Gin
// context by IdempotencyValidator. The second return value indicates presence.
// Handlers should prefer this over reading the header directly.
func GetIdempotencyKey(c *gin.Context) (string, bool) {
	v, ok := c.Get(ctxKeyIdemKey)
	if !ok {
		return "", false
	}
	s, _ := v.(string)
	return s, s != ""
}

// IsReplay reports whether this request would replay a previously completed
// claim for the same (user, coupon, key) triple.
func IsReplay(c *gin.Context) bool {
	v, ok := c.Get(ctxKeyIdemReplay)
	if !ok {
		return false
	}
	b, _ := v.(bool)
	return b
}

// IdempotencyOptions configures header validation for IdempotencyValidator.
// TTL enforcement belongs inside the supplied lookup, not here.
type IdempotencyOptions struct {
	// MaxLen caps the accepted key length. Values <= 0 default to 200.
	MaxLen int
	// Pattern restricts allowed characters. If nil, a conservative RFC7230-like
	// token pattern is used: ^[A-Za-z0-9._~\-:]+$
	Pattern *regexp.Regexp
}

// IdempotencyLookup answers whether a successful, still-valid result exists
// for (userID, couponID, key) at the given time. Implementations typically
// consult a stored record carrying the previous response metadata and TTL
// window. Return an error only for lookup failures; those must not block
// normal processing.
type IdempotencyLookup func(ctx context.Context, userID, couponID, key string, now time.Time) (exists bool, err error)

// IdempotencyValidator validates the Idempotency-Key header (if present),
// stashes it in the request context, and optionally checks for a prior
// completed claim via the supplied lookup. On a detected replay it sets the
// replay and rate-bypass flags; handlers remain in control of serving the
// stored result.
//
// An absent header makes the middleware a no-op. A malformed header is
// rejected with 400 and a compact error body.
func IdempotencyValidator(opts IdempotencyOptions, lookup IdempotencyLookup) gin.HandlerFunc {
	maxLen := opts.MaxLen
	if maxLen <= 0 {
		maxLen = 200
	}
	pat := opts.Pattern
	if pat == nil {
		pat = regexp.MustCompile(`^[A-Za-z0-9._~\-:]+$`)
	}

	return func(c *gin.Context) {
		key := c.GetHeader(HeaderIdempotencyKey)
		if key == "" {
			c.Next()
			return
		}
		if len(key) > maxLen || !pat.MatchString(key) {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
				"code":    "bad_idempotency_key",
				"message": "invalid Idempotency-Key",
			})
			return
		}

		c.Set(ctxKeyIdemKey, key)

		// The claim routes carry both the coupon and the acting profile in the
		// path: POST /coupons/:id/avail/:user_id and .../disavail/:user_id.
		if lookup != nil {
			uid := c.Param("user_id")
			couponID := c.Param("id")
			now := time.Now().UTC()

			if exists, _ := lookup(c.Request.Context(), uid, couponID, key, now); exists {
				c.Set(ctxKeyIdemReplay, true)
				c.Set(ctxKeyRateBypass, true)
			}
		}

		c.Next()
	}
}
