package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/emberdate/ember/internal/db"
	"github.com/emberdate/ember/internal/repository"
)

// setup in-memory DB
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	database, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		NowFunc: func() time.Time { return time.Now().UTC().Truncate(time.Millisecond) },
	})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	if err := database.AutoMigrate(&db.Profile{}, &db.Decision{}, &db.Match{}, &db.Message{}); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	return database
}

func TestRecordDecision(t *testing.T) {
	ctx := context.Background()
	dbase := setupTestDB(t)
	repo := repository.NewDecisionRepository(dbase)

	// insert like
	err := repo.Record(ctx, 1, 2, true)
	assert.NoError(t, err)

	// duplicate recording overwrites, never duplicates
	err = repo.Record(ctx, 1, 2, false)
	assert.NoError(t, err)

	var count int64
	dbase.Model(&db.Decision{}).Count(&count)
	assert.Equal(t, int64(1), count)

	var d db.Decision
	_ = dbase.First(&d).Error
	assert.Equal(t, false, d.Liked)
}

func TestHasLiked(t *testing.T) {
	ctx := context.Background()
	dbase := setupTestDB(t)
	repo := repository.NewDecisionRepository(dbase)

	_ = repo.Record(ctx, 2, 1, true)
	_ = repo.Record(ctx, 3, 1, false)

	liked, err := repo.HasLiked(ctx, 2, 1)
	assert.NoError(t, err)
	assert.True(t, liked)

	// a pass is not a like
	liked, err = repo.HasLiked(ctx, 3, 1)
	assert.NoError(t, err)
	assert.False(t, liked)

	// no decision at all
	liked, err = repo.HasLiked(ctx, 4, 1)
	assert.NoError(t, err)
	assert.False(t, liked)
}

func TestDecidedTargets(t *testing.T) {
	ctx := context.Background()
	dbase := setupTestDB(t)
	repo := repository.NewDecisionRepository(dbase)

	// likes and passes both count as decided
	_ = repo.Record(ctx, 1, 5, true)
	_ = repo.Record(ctx, 1, 3, false)
	_ = repo.Record(ctx, 2, 9, true) // different actor

	ids, err := repo.DecidedTargets(ctx, 1)
	assert.NoError(t, err)
	assert.Equal(t, []uint64{3, 5}, ids)
}

func TestGetLikersAndPagination(t *testing.T) {
	ctx := context.Background()
	dbase := setupTestDB(t)
	repo := repository.NewDecisionRepository(dbase)

	// actors 1,2 liked recipient 99
	_ = repo.Record(ctx, 1, 99, true)
	_ = repo.Record(ctx, 2, 99, true)
	// recipient passed actor 2 → exclude
	_ = repo.Record(ctx, 99, 2, false)

	decisions, _, err := repo.GetLikers(ctx, 99, nil, 10)
	assert.NoError(t, err)
	assert.Len(t, decisions, 1)
	assert.Equal(t, uint64(1), decisions[0].ActorID)
}

func TestGetNewLikers(t *testing.T) {
	ctx := context.Background()
	dbase := setupTestDB(t)
	repo := repository.NewDecisionRepository(dbase)

	// actor 1 liked 99, and 99 liked back → mutual
	_ = repo.Record(ctx, 1, 99, true)
	_ = repo.Record(ctx, 99, 1, true)

	// actor 2 liked 99, but not mutual
	_ = repo.Record(ctx, 2, 99, true)

	decisions, _, err := repo.GetNewLikers(ctx, 99, nil, 10)
	assert.NoError(t, err)
	assert.Len(t, decisions, 1)
	assert.Equal(t, uint64(2), decisions[0].ActorID)
}
