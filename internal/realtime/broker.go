package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/redis/go-redis/v9"

	"github.com/emberdate/ember/internal/cache"
	"github.com/emberdate/ember/internal/db"
	svcErr "github.com/emberdate/ember/internal/errors"
)

// Broker fans newly appended messages out to conversation subscribers over
// Redis Pub/Sub. Delivery is at-least-once and includes messages published by
// the same client; consumers deduplicate by message id.
type Broker struct {
	cache *cache.RedisCache
	log   *slog.Logger
}

// NewBroker creates a broker on top of the shared Redis client.
func NewBroker(c *cache.RedisCache, log *slog.Logger) *Broker {
	return &Broker{cache: c, log: log}
}

func channelFor(conversationID uint64) string {
	return fmt.Sprintf("chat:conv:%d", conversationID)
}

// Publish broadcasts an appended message to the conversation's channel.
func (b *Broker) Publish(ctx context.Context, msg db.Message) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}
	return b.cache.Publish(ctx, channelFor(msg.MatchID), payload)
}

// Subscribe registers interest in new messages for one conversation.
//
// The returned Subscription is a scoped handle: the caller must Close it on
// every exit path. Messages arrive on Messages() in publish order; when the
// channel closes, Err() reports ErrSubscriptionClosed for a dropped
// connection and nil for a caller-initiated Close.
func (b *Broker) Subscribe(ctx context.Context, conversationID uint64) (*Subscription, error) {
	pubsub := b.cache.Client.Subscribe(ctx, channelFor(conversationID))

	// wait for confirmation that the subscription is established
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, fmt.Errorf("failed to subscribe to conversation %d: %w", conversationID, err)
	}

	sub := &Subscription{
		msgs:   make(chan db.Message, 16),
		pubsub: pubsub,
		done:   make(chan struct{}),
	}
	go sub.listen(ctx, b.log)
	return sub, nil
}

// Subscription is a cancellable handle on one conversation's live messages.
type Subscription struct {
	msgs   chan db.Message
	pubsub *redis.PubSub
	done   chan struct{}
	once   sync.Once

	mu  sync.Mutex
	err error
}

// Messages is the delivery channel. It closes when the subscription ends;
// check Err() afterwards to distinguish a drop from a clean Close.
func (s *Subscription) Messages() <-chan db.Message {
	return s.msgs
}

// Err reports why delivery stopped. Nil while live or after a clean Close.
func (s *Subscription) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Close releases the subscription. Safe to call multiple times.
func (s *Subscription) Close() {
	s.once.Do(func() {
		close(s.done)
		_ = s.pubsub.Close()
	})
}

func (s *Subscription) setErr(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err == nil {
		s.err = err
	}
}

func (s *Subscription) closedByCaller() bool {
	select {
	case <-s.done:
		return true
	default:
		return false
	}
}

func (s *Subscription) listen(ctx context.Context, log *slog.Logger) {
	defer close(s.msgs)

	// Closing the pubsub is the only way to interrupt a blocked receive, so
	// context cancellation is watched on the side.
	go func() {
		select {
		case <-ctx.Done():
			s.setErr(ctx.Err())
			_ = s.pubsub.Close()
		case <-s.done:
		}
	}()

	// ReceiveMessage rather than Channel(): Channel() reconnects internally
	// and never closes on a broken connection, which would leave a dropped
	// subscription indistinguishable from an idle one.
	for {
		raw, err := s.pubsub.ReceiveMessage(ctx)
		if err != nil {
			if !s.closedByCaller() {
				if ctx.Err() != nil {
					s.setErr(ctx.Err())
				} else {
					s.setErr(fmt.Errorf("%w: %v", svcErr.ErrSubscriptionClosed, err))
				}
				_ = s.pubsub.Close()
			}
			return
		}

		var msg db.Message
		if err := json.Unmarshal([]byte(raw.Payload), &msg); err != nil {
			log.Warn("dropping malformed realtime payload", "channel", raw.Channel, "err", err)
			continue
		}

		select {
		case s.msgs <- msg:
		case <-s.done:
			return
		case <-ctx.Done():
			s.setErr(ctx.Err())
			return
		}
	}
}
