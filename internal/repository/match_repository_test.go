package repository_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emberdate/ember/internal/db"
	svcErr "github.com/emberdate/ember/internal/errors"
	"github.com/emberdate/ember/internal/repository"
)

func TestCreateIfAbsentIdempotent(t *testing.T) {
	ctx := context.Background()
	dbase := setupTestDB(t)
	repo := repository.NewMatchRepository(dbase)

	first, err := repo.CreateIfAbsent(ctx, 7, 3)
	require.NoError(t, err)
	require.NotZero(t, first.ID)

	// reversed member order hits the same row
	second, err := repo.CreateIfAbsent(ctx, 3, 7)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	// re-running with the original order is also a no-op
	third, err := repo.CreateIfAbsent(ctx, 7, 3)
	require.NoError(t, err)
	assert.Equal(t, first.ID, third.ID)

	var count int64
	dbase.Model(&db.Match{}).Count(&count)
	assert.Equal(t, int64(1), count)

	// members are stored normalized
	assert.Equal(t, uint64(3), first.MemberLowID)
	assert.Equal(t, uint64(7), first.MemberHighID)
}

func TestCreateIfAbsentSelfMatch(t *testing.T) {
	ctx := context.Background()
	dbase := setupTestDB(t)
	repo := repository.NewMatchRepository(dbase)

	_, err := repo.CreateIfAbsent(ctx, 5, 5)
	assert.ErrorIs(t, err, svcErr.ErrInvalidArgument)
}

func TestListForUser(t *testing.T) {
	ctx := context.Background()
	dbase := setupTestDB(t)
	repo := repository.NewMatchRepository(dbase)

	m1, err := repo.CreateIfAbsent(ctx, 1, 2)
	require.NoError(t, err)
	m2, err := repo.CreateIfAbsent(ctx, 3, 1)
	require.NoError(t, err)
	_, err = repo.CreateIfAbsent(ctx, 2, 3) // user 1 not a member
	require.NoError(t, err)

	matches, err := repo.ListForUser(ctx, 1)
	require.NoError(t, err)
	require.Len(t, matches, 2)
	assert.Equal(t, m1.ID, matches[0].ID)
	assert.Equal(t, m2.ID, matches[1].ID)
}
