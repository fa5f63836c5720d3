package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/emberdate/ember/internal/db"
)

// ProfileRepository is the profile directory: it answers "who can this user
// still swipe on" and fetches display data for match/chat screens.
type ProfileRepository struct {
	db *gorm.DB
}

// NewProfileRepository creates a new repository bound to the given DB connection.
func NewProfileRepository(database *gorm.DB) *ProfileRepository {
	return &ProfileRepository{db: database}
}

// ListCandidates returns active profiles eligible for a deck load.
//
// Behavior:
//   - Every id in excludeIDs is filtered out store-side (the caller passes
//     the current user plus all previously decided targets).
//   - Ordered by id ASC so a fixed data set always yields the same deck.
//   - An empty result is valid and means the deck is exhausted.
func (r *ProfileRepository) ListCandidates(
	ctx context.Context,
	excludeIDs []uint64,
	limit int,
) ([]db.Profile, error) {
	var profiles []db.Profile
	query := r.db.WithContext(ctx).
		Where("active = ?", true)
	if len(excludeIDs) > 0 {
		query = query.Where("id NOT IN ?", excludeIDs)
	}
	err := query.
		Order("id ASC").
		Limit(limit).
		Find(&profiles).Error
	if err != nil {
		return nil, err
	}
	return profiles, nil
}

// GetByID fetches a single profile.
func (r *ProfileRepository) GetByID(ctx context.Context, id uint64) (db.Profile, error) {
	var profile db.Profile
	err := r.db.WithContext(ctx).First(&profile, id).Error
	return profile, err
}
