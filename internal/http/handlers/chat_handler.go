// Chat HTTP handlers.
//
// This file exposes REST endpoints for direct messaging:
//   - GET  /chat/messages/{user_id}                  (conversation partner list)
//   - GET  /chat/messages/{user_id}/{other_user_id}  (conversation, oldest first)
//   - POST /chat/messages/{user_id}/{other_user_id}  (send)
//
// The conversation GET never returns an empty list for two existing users:
// the service persists a single empty placeholder on first contact. Invalid
// send payloads fail uniformly; there is no degraded-write fallback.
package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/couponhub/go-coupon-backend/internal/repo"
)

//
// DTOs
//

// SendMessageRequest is the JSON payload for sending a message. Sender and
// receiver come from the URL, not the body.
type SendMessageRequest struct {
	Content string  `json:"content" example:"Is the Steam coupon still available?"`
	Image   *string `json:"image,omitempty"`
}

//
// Handlers
//

// ListChatPartners godoc
// @ID          listChatPartners
// @Summary     Conversation partner list
// @Description Returns the distinct profiles that share at least one message with the given user, excluding the user itself, projected to identity fields.
// @Tags        Chat
// @Produce     json
// @Param       user_id  path  string  true  "Requesting user"
// @Success     200  {array}  handlers.ProfileSummary
// @Failure     404  {object} handlers.ErrorResponse "Profile not found"
// @Router      /chat/messages/{user_id} [get]
func (h *Handlers) ListChatPartners(c *gin.Context) {
	partners, err := h.chatSvc.Partners(c.Request.Context(), c.Param("user_id"))
	if err != nil {
		failService(c, err)
		return
	}
	ok(c, http.StatusOK, summarize(partners))
}

// GetConversation godoc
// @ID          getConversation
// @Summary     Conversation messages
// @Description Returns all messages between the two users ordered by timestamp ascending. The first fetch of an empty conversation persists one empty placeholder message. Supports weak ETag via If-None-Match.
// @Tags        Chat
// @Produce     json
// @Param       user_id        path    string  true  "First participant"
// @Param       other_user_id  path    string  true  "Second participant"
// @Param       If-None-Match  header  string  false "Return 304 if ETag matches"
// @Success     200  {array}  domain.ChatMessage
// @Success     304  {string} string "Not Modified"
// @Failure     404  {object} handlers.ErrorResponse "Profile not found"
// @Router      /chat/messages/{user_id}/{other_user_id} [get]
func (h *Handlers) GetConversation(c *gin.Context) {
	ctx := c.Request.Context()
	userID := c.Param("user_id")
	otherUserID := c.Param("other_user_id")

	// ETag pre-check (best effort). Only short-circuits for non-empty
	// conversations; an empty one must still synthesize its placeholder.
	if db := h.db(); db != nil {
		count, maxTS, err := repo.ConversationStats(ctx, db, userID, otherUserID)
		if err == nil && count > 0 {
			etag := fmt.Sprintf(`W/"chat:%s:%s:%d:%d"`, userID, otherUserID, count, maxTS.Unix())
			c.Header("ETag", etag)
			if inm := c.GetHeader("If-None-Match"); inm != "" && inm == etag {
				c.Status(http.StatusNotModified)
				return
			}
		}
	}

	msgs, err := h.chatSvc.Conversation(ctx, userID, otherUserID)
	if err != nil {
		failService(c, err)
		return
	}
	ok(c, http.StatusOK, msgs)
}

// SendMessage godoc
// @ID          sendMessage
// @Summary     Send a message
// @Description Persists a message from user_id to other_user_id. The message must carry text content or an image.
// @Tags        Chat
// @Accept      json
// @Produce     json
// @Param       user_id        path  string                       true  "Sender"
// @Param       other_user_id  path  string                       true  "Receiver"
// @Param       body           body  handlers.SendMessageRequest  true  "Message payload"
// @Success     201  {object} domain.ChatMessage
// @Failure     400  {object} handlers.ErrorResponse "Bad request / empty message"
// @Failure     404  {object} handlers.ErrorResponse "Profile not found"
// @Router      /chat/messages/{user_id}/{other_user_id} [post]
func (h *Handlers) SendMessage(c *gin.Context) {
	var req SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, err.Error())
		return
	}
	msg, err := h.chatSvc.Send(c.Request.Context(),
		c.Param("user_id"), c.Param("other_user_id"), req.Content, req.Image)
	if err != nil {
		failService(c, err)
		return
	}
	ok(c, http.StatusCreated, msg)
}
