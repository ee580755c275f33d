// Package services – ChatService
//
// This file implements the ChatService, which owns direct messaging between
// two profiles: the conversation partner listing, conversation retrieval
// with placeholder synthesis, and message sending.
//
// Placeholder synthesis: the first time a conversation between two linked
// users is fetched and no messages exist, exactly one empty message is
// persisted so the conversation view is never empty. The check and the
// insert run in one transaction, so concurrent first fetches still produce
// at most one placeholder.
package services

import (
	"context"
	"errors"

	"gorm.io/gorm"

	// OpenTelemetry
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/couponhub/go-coupon-backend/internal/domain"
	"github.com/couponhub/go-coupon-backend/internal/repo"
)

// ChatService provides the messaging use-cases. Messages are immutable once
// written; they disappear only when a participant profile is deleted.
type ChatService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB
}

// NewChatService constructs a ChatService.
func NewChatService(db *gorm.DB) *ChatService {
	return &ChatService{DB: db}
}

// Partners returns the distinct profiles that share at least one message
// with userID, excluding userID itself.
func (s *ChatService) Partners(ctx context.Context, userID string) ([]domain.UserProfile, error) {
	if _, err := repo.GetProfileLean(ctx, s.DB, userID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrProfileNotFound
		}
		return nil, err
	}
	return repo.ListConversationPartners(ctx, s.DB, userID)
}

// Conversation returns all messages between userID and otherUserID ordered
// by timestamp ascending. When the conversation is empty, a single empty
// placeholder message is persisted first, so the result is never empty for
// two existing users.
func (s *ChatService) Conversation(ctx context.Context, userID, otherUserID string) ([]domain.ChatMessage, error) {
	tr := otel.Tracer("services/ChatService")
	ctx, span := tr.Start(ctx, "Conversation",
		trace.WithAttributes(
			attribute.String("user.id", userID),
			attribute.String("peer.id", otherUserID),
		),
	)
	defer span.End()

	if err := s.requireProfiles(ctx, userID, otherUserID); err != nil {
		return nil, err
	}

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		n, err := repo.CountConversation(ctx, tx, userID, otherUserID)
		if err != nil {
			return err
		}
		if n > 0 {
			return nil
		}
		_, err = repo.CreateMessage(tx, userID, otherUserID, "", nil)
		return err
	})
	if err != nil {
		return nil, err
	}

	return repo.ListConversation(ctx, s.DB, userID, otherUserID)
}

// Send persists a message from senderID to receiverID. A message must carry
// text content or an image; there is no degraded-write fallback for invalid
// payloads.
func (s *ChatService) Send(ctx context.Context, senderID, receiverID, content string, image *string) (*domain.ChatMessage, error) {
	if content == "" && image == nil {
		return nil, ErrEmptyMessage
	}
	if err := s.requireProfiles(ctx, senderID, receiverID); err != nil {
		return nil, err
	}
	return repo.CreateMessage(s.DB.WithContext(ctx), senderID, receiverID, content, image)
}

// requireProfiles verifies that both participants exist.
func (s *ChatService) requireProfiles(ctx context.Context, a, b string) error {
	for _, id := range []string{a, b} {
		if _, err := repo.GetProfileLean(ctx, s.DB, id); err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return ErrProfileNotFound
			}
			return err
		}
	}
	return nil
}
