package chat

import (
	"context"
	"fmt"
	"sort"

	"github.com/emberdate/ember/internal/app"
	"github.com/emberdate/ember/internal/db"
	svcErr "github.com/emberdate/ember/internal/errors"
	"github.com/emberdate/ember/internal/repository"
)

// Summary is one row of the conversation list: the match, the other member's
// display data, and the latest message if any.
type Summary struct {
	MatchID     uint64
	Partner     db.Profile
	LastMessage *db.Message
	Pinned      bool
}

// ListConversations returns the user's conversations for display.
//
// Ordering: pinned conversations (seed/bot partner) sort first; within each
// group the order is match id ascending, which is stable for a fixed data
// set. No recency sort is applied.
func ListConversations(ctx context.Context, appCtx *app.AppContext, userID uint64) ([]Summary, error) {
	matchRepo := repository.NewMatchRepository(appCtx.DB)
	profileRepo := repository.NewProfileRepository(appCtx.DB)
	messageRepo := repository.NewMessageRepository(appCtx.DB)

	matches, err := matchRepo.ListForUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list matches: %w", svcErr.Map(err))
	}

	summaries := make([]Summary, 0, len(matches))
	for _, m := range matches {
		partnerID := m.MemberLowID
		if partnerID == userID {
			partnerID = m.MemberHighID
		}

		partner, err := profileRepo.GetByID(ctx, partnerID)
		if err != nil {
			return nil, fmt.Errorf("failed to load partner %d: %w", partnerID, svcErr.Map(err))
		}

		last, err := messageRepo.LastMessage(ctx, m.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to load last message for match %d: %w", m.ID, svcErr.Map(err))
		}

		summaries = append(summaries, Summary{
			MatchID:     m.ID,
			Partner:     partner,
			LastMessage: last,
			Pinned:      partner.Seed,
		})
	}

	// input is already match-id ascending; a stable sort on the pinned flag
	// preserves that as the secondary order
	sort.SliceStable(summaries, func(i, j int) bool {
		return summaries[i].Pinned && !summaries[j].Pinned
	})

	return summaries, nil
}
