package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/emberdate/ember/internal/db"
	svcErr "github.com/emberdate/ember/internal/errors"
)

// MatchRepository provides data access methods for the Match model.
// Matches are symmetric: member order never matters.
type MatchRepository struct {
	db *gorm.DB
}

// NewMatchRepository creates a new repository bound to the given DB connection.
func NewMatchRepository(database *gorm.DB) *MatchRepository {
	return &MatchRepository{db: database}
}

// CreateIfAbsent forms the match between two members, creating the row only
// if none exists for the unordered pair.
//
// Behavior:
//   - Members are normalized (low id first) before lookup/insert, so
//     CreateIfAbsent(A, B) and CreateIfAbsent(B, A) hit the same row.
//   - Re-running is a no-op that returns the same match identity.
//   - A concurrent duplicate insert is absorbed by the unique pair index
//     (ON CONFLICT DO NOTHING) and resolved with a follow-up read.
func (r *MatchRepository) CreateIfAbsent(
	ctx context.Context,
	memberA, memberB uint64,
) (db.Match, error) {
	if memberA == memberB {
		return db.Match{}, svcErr.InvalidArgument("cannot match a user with themselves")
	}
	low, high := memberA, memberB
	if low > high {
		low, high = high, low
	}

	var match db.Match
	err := r.db.WithContext(ctx).
		Where("member_low_id = ? AND member_high_id = ?", low, high).
		First(&match).Error
	if err == nil {
		return match, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return db.Match{}, err
	}

	match = db.Match{MemberLowID: low, MemberHighID: high}
	err = r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "member_low_id"}, {Name: "member_high_id"}},
			DoNothing: true,
		}).
		Create(&match).Error
	if err != nil {
		return db.Match{}, err
	}

	// lost the insert race: fetch the winner's row
	if match.ID == 0 {
		err = r.db.WithContext(ctx).
			Where("member_low_id = ? AND member_high_id = ?", low, high).
			First(&match).Error
	}
	return match, err
}

// Get fetches a single match by id.
func (r *MatchRepository) Get(ctx context.Context, id uint64) (db.Match, error) {
	var match db.Match
	err := r.db.WithContext(ctx).First(&match, id).Error
	return match, err
}

// ListForUser returns every match the user is a member of, ordered by id ASC
// (creation order, stable for a fixed data set).
func (r *MatchRepository) ListForUser(ctx context.Context, userID uint64) ([]db.Match, error) {
	var matches []db.Match
	err := r.db.WithContext(ctx).
		Where("member_low_id = ? OR member_high_id = ?", userID, userID).
		Order("id ASC").
		Find(&matches).Error
	return matches, err
}
