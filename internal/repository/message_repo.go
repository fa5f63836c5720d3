package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/emberdate/ember/internal/db"
)

// MessageRepository is the durable side of the conversation store.
// Messages are append-only; ordering is (created_at, id) ascending.
type MessageRepository struct {
	db *gorm.DB
}

// NewMessageRepository creates a new repository bound to the given DB connection.
func NewMessageRepository(database *gorm.DB) *MessageRepository {
	return &MessageRepository{db: database}
}

// Append inserts one message and fills in its assigned id and timestamp.
func (r *MessageRepository) Append(ctx context.Context, msg *db.Message) error {
	return r.db.WithContext(ctx).Create(msg).Error
}

// ListByConversation returns the full history for a conversation ordered by
// created_at ASC (id breaks ties). Pure read, callable repeatedly.
func (r *MessageRepository) ListByConversation(
	ctx context.Context,
	conversationID uint64,
) ([]db.Message, error) {
	var messages []db.Message
	err := r.db.WithContext(ctx).
		Where("match_id = ?", conversationID).
		Order("created_at ASC, id ASC").
		Find(&messages).Error
	return messages, err
}

// LastMessage returns the most recent message of a conversation, or nil if
// the conversation has none yet.
func (r *MessageRepository) LastMessage(
	ctx context.Context,
	conversationID uint64,
) (*db.Message, error) {
	var msg db.Message
	err := r.db.WithContext(ctx).
		Where("match_id = ?", conversationID).
		Order("created_at DESC, id DESC").
		First(&msg).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &msg, nil
}
