package chat

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/emberdate/ember/internal/app"
	"github.com/emberdate/ember/internal/db"
	svcErr "github.com/emberdate/ember/internal/errors"
	"github.com/emberdate/ember/internal/realtime"
	"github.com/emberdate/ember/internal/repository"
)

// Session presents one match's conversation: an ordered, live-updating
// message list plus outgoing sends. Conversations are 1:1 with matches and
// keyed by the match id.
type Session struct {
	conversationID uint64
	userID         uint64
	messages       *repository.MessageRepository
	broker         *realtime.Broker
	log            *slog.Logger
}

// NewSession opens a conversation session for the given match.
func NewSession(appCtx *app.AppContext, broker *realtime.Broker, conversationID, userID uint64) *Session {
	return &Session{
		conversationID: conversationID,
		userID:         userID,
		messages:       repository.NewMessageRepository(appCtx.DB),
		broker:         broker,
		log:            appCtx.Logger,
	}
}

// LoadHistory returns all messages ordered by created_at ascending.
// Pure read: callable repeatedly, idempotent.
func (s *Session) LoadHistory(ctx context.Context) ([]db.Message, error) {
	msgs, err := s.messages.ListByConversation(ctx, s.conversationID)
	if err != nil {
		return nil, fmt.Errorf("failed to load history: %w", svcErr.Map(err))
	}
	return msgs, nil
}

// Subscribe registers for newly created messages in this conversation. The
// caller owns the returned handle and must Close it on every exit path.
func (s *Session) Subscribe(ctx context.Context) (*realtime.Subscription, error) {
	return s.broker.Subscribe(ctx, s.conversationID)
}

// Send appends one outgoing message.
//
// Empty or whitespace-only content is rejected locally with ErrEmptyMessage
// before any store call. Once the message is durable, a failed realtime
// publish is reported as ErrSyncFailed alongside the stored message: delivery
// is degraded, the send itself succeeded.
func (s *Session) Send(ctx context.Context, content string) (*db.Message, error) {
	if strings.TrimSpace(content) == "" {
		return nil, svcErr.ErrEmptyMessage
	}

	msg := &db.Message{
		MatchID:  s.conversationID,
		SenderID: s.userID,
		Content:  content,
	}
	if err := s.messages.Append(ctx, msg); err != nil {
		return nil, fmt.Errorf("failed to append message: %w", svcErr.Map(err))
	}

	if err := s.broker.Publish(ctx, *msg); err != nil {
		s.log.Warn("realtime publish failed", "conversation", s.conversationID, "message", msg.ID, "err", err)
		return msg, svcErr.SyncFailed(err)
	}
	return msg, nil
}

// Stream delivers the conversation to onMessage: full history first, then
// live messages until ctx is cancelled or the subscription drops.
//
// Messages are deduplicated by id, so the subscription's delivery of the
// client's own sends (and any at-least-once replays) surface exactly once.
// The subscription is always released on return.
func (s *Session) Stream(ctx context.Context, onMessage func(db.Message)) error {
	// subscribe before reading history so no message falls in the gap
	sub, err := s.Subscribe(ctx)
	if err != nil {
		return err
	}
	defer sub.Close()

	history, err := s.LoadHistory(ctx)
	if err != nil {
		return err
	}

	seen := make(map[uint64]struct{}, len(history))
	deliver := func(msg db.Message) {
		if _, dup := seen[msg.ID]; dup {
			return
		}
		seen[msg.ID] = struct{}{}
		onMessage(msg)
	}

	for _, msg := range history {
		deliver(msg)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-sub.Messages():
			if !ok {
				return sub.Err()
			}
			deliver(msg)
		}
	}
}
