// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the
// ChatMessage model and the conversation queries built on it.
package repo

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/couponhub/go-coupon-backend/internal/domain"
)

// CreateMessage inserts a new chat message row.
func CreateMessage(db *gorm.DB, senderID, receiverID, content string, image *string) (*domain.ChatMessage, error) {
	m := &domain.ChatMessage{
		SenderID:   senderID,
		ReceiverID: receiverID,
		Content:    content,
		Image:      image,
		Timestamp:  time.Now().UTC(),
	}
	return m, db.Create(m).Error
}

// ListConversation returns all messages exchanged between two users ordered
// deterministically (Timestamp ASC, ID ASC).
func ListConversation(ctx context.Context, db *gorm.DB, userID, otherUserID string) ([]domain.ChatMessage, error) {
	var out []domain.ChatMessage
	err := db.WithContext(ctx).
		Where("(sender_id = ? AND receiver_id = ?) OR (sender_id = ? AND receiver_id = ?)",
			userID, otherUserID, otherUserID, userID).
		Order("timestamp ASC, id ASC").
		Find(&out).Error
	return out, err
}

// CountConversation returns the number of messages exchanged between two
// users. A raw COUNT is used so a missing table surfaces as an error.
func CountConversation(ctx context.Context, db *gorm.DB, userID, otherUserID string) (int64, error) {
	var total int64
	err := db.WithContext(ctx).
		Raw(`SELECT COUNT(*) FROM chat_messages
		     WHERE (sender_id = ? AND receiver_id = ?) OR (sender_id = ? AND receiver_id = ?)`,
			userID, otherUserID, otherUserID, userID).
		Scan(&total).Error
	return total, err
}

// ListConversationPartners returns the distinct profiles that share at least
// one message with userID, as sender or receiver, excluding userID itself.
func ListConversationPartners(ctx context.Context, db *gorm.DB, userID string) ([]domain.UserProfile, error) {
	var out []domain.UserProfile
	err := db.WithContext(ctx).
		Where(`user_id <> ? AND user_id IN (
			SELECT sender_id FROM chat_messages WHERE receiver_id = ?
			UNION
			SELECT receiver_id FROM chat_messages WHERE sender_id = ?)`,
			userID, userID, userID).
		Order("user_id ASC").
		Find(&out).Error
	return out, err
}
