package realtime_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emberdate/ember/internal/cache"
	"github.com/emberdate/ember/internal/config"
	"github.com/emberdate/ember/internal/db"
	svcErr "github.com/emberdate/ember/internal/errors"
	"github.com/emberdate/ember/internal/realtime"
)

// setupBroker starts a miniredis and wires a Broker on top of it.
// The miniredis handle is returned so tests can kill the server.
func setupBroker(t *testing.T) (*realtime.Broker, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	cfg := config.New()
	cfg.Redis.Addr = mr.Addr()

	redisCache := cache.NewRedisCache(cfg)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil)) // discard logs in tests

	return realtime.NewBroker(redisCache, logger), mr
}

// recvOne reads a single message off the subscription or fails the test.
func recvOne(t *testing.T, sub *realtime.Subscription) db.Message {
	t.Helper()

	select {
	case msg, ok := <-sub.Messages():
		require.True(t, ok, "delivery channel closed unexpectedly")
		return msg
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for message")
		return db.Message{}
	}
}

// TestPublishSubscribe checks basic fan-out: a published message reaches a
// live subscriber on the conversation's channel.
func TestPublishSubscribe(t *testing.T) {
	ctx := context.Background()
	broker, _ := setupBroker(t)

	sub, err := broker.Subscribe(ctx, 7)
	require.NoError(t, err)
	defer sub.Close()

	msg := db.Message{ID: 1, MatchID: 7, SenderID: 2, Content: "hey"}
	require.NoError(t, broker.Publish(ctx, msg))

	got := recvOne(t, sub)
	assert.Equal(t, msg.ID, got.ID)
	assert.Equal(t, msg.Content, got.Content)
}

// TestSubscriptionDroppedConnection verifies that a broken connection is
// surfaced: the delivery channel closes and Err reports
// ErrSubscriptionClosed, so a drop is never mistaken for an idle channel.
func TestSubscriptionDroppedConnection(t *testing.T) {
	ctx := context.Background()
	broker, mr := setupBroker(t)

	sub, err := broker.Subscribe(ctx, 7)
	require.NoError(t, err)
	defer sub.Close()

	// prove the subscription is live first
	msg := db.Message{ID: 1, MatchID: 7, SenderID: 2, Content: "hey"}
	require.NoError(t, broker.Publish(ctx, msg))
	recvOne(t, sub)

	// kill the server under the live subscription
	mr.Close()

	select {
	case _, ok := <-sub.Messages():
		require.False(t, ok, "expected delivery channel to close on a dropped connection")
	case <-time.After(3 * time.Second):
		t.Fatal("delivery channel still open after connection drop")
	}
	assert.ErrorIs(t, sub.Err(), svcErr.ErrSubscriptionClosed)
}
