package repository_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emberdate/ember/internal/db"
	"github.com/emberdate/ember/internal/repository"
)

func TestListCandidatesExcludesAndOrders(t *testing.T) {
	ctx := context.Background()
	dbase := setupTestDB(t)
	repo := repository.NewProfileRepository(dbase)

	profiles := []db.Profile{
		{ID: 1, FirstName: "Me", Email: "me@test.com", PasswordHash: "x", Gender: "male", Active: true},
		{ID: 2, FirstName: "Sarah", Email: "sarah@test.com", PasswordHash: "x", Gender: "female", Active: true},
		{ID: 3, FirstName: "Emily", Email: "emily@test.com", PasswordHash: "x", Gender: "female", Active: true},
		{ID: 4, FirstName: "Gone", Email: "gone@test.com", PasswordHash: "x", Gender: "female", Active: false},
		{ID: 5, FirstName: "Olivia", Email: "olivia@test.com", PasswordHash: "x", Gender: "female", Active: true},
	}
	require.NoError(t, dbase.Create(&profiles).Error)

	// exclude self + already-decided id 3; inactive id 4 is filtered store-side
	candidates, err := repo.ListCandidates(ctx, []uint64{1, 3}, 20)
	require.NoError(t, err)
	require.Len(t, candidates, 2)
	assert.Equal(t, uint64(2), candidates[0].ID)
	assert.Equal(t, uint64(5), candidates[1].ID)

	// deterministic: same data set, same deck
	again, err := repo.ListCandidates(ctx, []uint64{1, 3}, 20)
	require.NoError(t, err)
	assert.Equal(t, candidates, again)

	// limit applies after exclusion
	limited, err := repo.ListCandidates(ctx, []uint64{1}, 2)
	require.NoError(t, err)
	require.Len(t, limited, 2)
	assert.Equal(t, uint64(2), limited[0].ID)
}

func TestListCandidatesEmptyResult(t *testing.T) {
	ctx := context.Background()
	dbase := setupTestDB(t)
	repo := repository.NewProfileRepository(dbase)

	// empty store: valid, non-error outcome
	candidates, err := repo.ListCandidates(ctx, []uint64{1}, 20)
	require.NoError(t, err)
	assert.Empty(t, candidates)
}

func TestGetByID(t *testing.T) {
	ctx := context.Background()
	dbase := setupTestDB(t)
	repo := repository.NewProfileRepository(dbase)

	seeded := db.Profile{
		ID: 7, FirstName: "Priya", Email: "priya@test.com", PasswordHash: "x",
		Gender: "female", Seed: true, Active: true,
		Photos:    []string{"https://images.example.com/priya-1.jpg"},
		Interests: []string{"Coffee", "Design"},
	}
	require.NoError(t, dbase.Create(&seeded).Error)

	got, err := repo.GetByID(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, "Priya", got.FirstName)
	assert.True(t, got.Seed)
	assert.Equal(t, []string{"Coffee", "Design"}, got.Interests)
}
