package likes

import (
	"context"
	"strconv"
	"time"

	"github.com/emberdate/ember/internal/app"
	"github.com/emberdate/ember/internal/repository"
)

// pageSize bounds the likers listings per page.
const pageSize = 5

// Liker is one entry of a "liked you" listing.
type Liker struct {
	ActorID   uint64
	DecidedAt time.Time
}

// Service backs the "Liked You" tab: who liked the user, who liked them
// without a like back yet, and how many in total. It sits on top of the
// decision repository with a Redis counter cache in front of the count.
type Service struct {
	appCtx    *app.AppContext
	decisions *repository.DecisionRepository
}

// NewService creates a likes service with dependencies from AppContext.
func NewService(appCtx *app.AppContext) *Service {
	return &Service{
		appCtx:    appCtx,
		decisions: repository.NewDecisionRepository(appCtx.DB),
	}
}

// ListLikedYou returns users who liked the recipient.
//
// Behavior:
//   - Excludes users that the recipient explicitly passed.
//   - Ordered by updated_at DESC, actor_id DESC.
//   - Cursor-based pagination via pageToken.
func (s *Service) ListLikedYou(ctx context.Context, recipientID uint64, pageToken *string) ([]Liker, *string, error) {
	s.appCtx.Logger.Debug("ListLikedYou called", "recipient", recipientID)

	decisions, nextToken, err := s.decisions.GetLikers(ctx, recipientID, pageToken, pageSize)
	if err != nil {
		s.appCtx.Logger.Error("GetLikers failed", "err", err)
		return nil, nil, err
	}

	likers := make([]Liker, 0, len(decisions))
	for _, d := range decisions {
		likers = append(likers, Liker{ActorID: d.ActorID, DecidedAt: d.UpdatedAt})
	}

	s.appCtx.Logger.Debug("ListLikedYou result", "liker_count", len(likers))
	return likers, nextToken, nil
}

// ListNewLikedYou returns users who liked the recipient but have not been
// liked back (mutual likes are excluded).
func (s *Service) ListNewLikedYou(ctx context.Context, recipientID uint64, pageToken *string) ([]Liker, *string, error) {
	s.appCtx.Logger.Debug("ListNewLikedYou called", "recipient", recipientID)

	decisions, nextToken, err := s.decisions.GetNewLikers(ctx, recipientID, pageToken, pageSize)
	if err != nil {
		return nil, nil, err
	}

	likers := make([]Liker, 0, len(decisions))
	for _, d := range decisions {
		likers = append(likers, Liker{ActorID: d.ActorID, DecidedAt: d.UpdatedAt})
	}
	return likers, nextToken, nil
}

// CountLikedYou returns how many users liked the recipient.
// Cache-first strategy:
//  1. Attempts to read from Redis (likes:count:userID).
//  2. If cache miss or parse error, falls back to DB via repository.CountLikers.
//  3. On DB fetch, updates Redis with a 1h TTL.
func (s *Service) CountLikedYou(ctx context.Context, recipientID uint64) (uint64, error) {
	s.appCtx.Logger.Debug("CountLikedYou called", "recipient", recipientID)

	key := s.appCtx.RedisCache.KeyForLikeCount(recipientID)

	// try cache first
	if cached, _ := s.appCtx.RedisCache.Get(ctx, key); cached != "" {
		if n, err := strconv.ParseUint(cached, 10, 64); err == nil {
			// refresh TTL since this user is active
			_ = s.appCtx.RedisCache.Client.Expire(ctx, key, time.Hour).Err()
			return n, nil
		}
	}

	// fallback: DB
	count, err := s.decisions.CountLikers(ctx, recipientID)
	if err != nil {
		return 0, err
	}

	// write back with TTL refresh
	if err := s.appCtx.RedisCache.UpdateLikeCount(ctx, recipientID, count); err != nil {
		s.appCtx.Logger.Warn("like count write-back failed", "err", err)
	}

	return uint64(count), nil
}
