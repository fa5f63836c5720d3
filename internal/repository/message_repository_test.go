package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emberdate/ember/internal/db"
	"github.com/emberdate/ember/internal/repository"
)

func TestListByConversationOrder(t *testing.T) {
	ctx := context.Background()
	dbase := setupTestDB(t)
	repo := repository.NewMessageRepository(dbase)

	base := time.Now().UTC().Truncate(time.Millisecond)

	// insert out of creation order: t3, t1, t2
	msgs := []db.Message{
		{MatchID: 1, SenderID: 1, Content: "third", CreatedAt: base.Add(3 * time.Second)},
		{MatchID: 1, SenderID: 2, Content: "first", CreatedAt: base.Add(1 * time.Second)},
		{MatchID: 1, SenderID: 1, Content: "second", CreatedAt: base.Add(2 * time.Second)},
		{MatchID: 2, SenderID: 9, Content: "other conversation", CreatedAt: base},
	}
	for i := range msgs {
		require.NoError(t, repo.Append(ctx, &msgs[i]))
	}

	history, err := repo.ListByConversation(ctx, 1)
	require.NoError(t, err)
	require.Len(t, history, 3)
	assert.Equal(t, "first", history[0].Content)
	assert.Equal(t, "second", history[1].Content)
	assert.Equal(t, "third", history[2].Content)

	// idempotent pure read
	again, err := repo.ListByConversation(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, history, again)
}

func TestLastMessage(t *testing.T) {
	ctx := context.Background()
	dbase := setupTestDB(t)
	repo := repository.NewMessageRepository(dbase)

	// empty conversation → nil, not an error
	last, err := repo.LastMessage(ctx, 42)
	require.NoError(t, err)
	assert.Nil(t, last)

	base := time.Now().UTC().Truncate(time.Millisecond)
	older := db.Message{MatchID: 42, SenderID: 1, Content: "older", CreatedAt: base}
	newer := db.Message{MatchID: 42, SenderID: 2, Content: "newer", CreatedAt: base.Add(time.Second)}
	require.NoError(t, repo.Append(ctx, &newer))
	require.NoError(t, repo.Append(ctx, &older))

	last, err = repo.LastMessage(ctx, 42)
	require.NoError(t, err)
	require.NotNil(t, last)
	assert.Equal(t, "newer", last.Content)
}
