package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/emberdate/ember/internal/app"
	"github.com/emberdate/ember/internal/cache"
	"github.com/emberdate/ember/internal/db"
	svcErr "github.com/emberdate/ember/internal/errors"
	"github.com/emberdate/ember/internal/repository"
)

// State is the controller's position in the per-session swipe lifecycle:
//
//	Loading → Ready(cursor) → Deciding → Advancing → Ready(cursor+1) | Exhausted
//
// Exhausted is terminal until an explicit LoadDeck re-enters Loading.
type State int

const (
	StateLoading State = iota
	StateReady
	StateDeciding
	StateAdvancing
	StateExhausted
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	case StateDeciding:
		return "deciding"
	case StateAdvancing:
		return "advancing"
	case StateExhausted:
		return "exhausted"
	default:
		return "unknown"
	}
}

// Action is the user's decision on a candidate.
type Action string

const (
	ActionLike Action = "like"
	ActionPass Action = "pass"
)

// Identity supplies the current user id and a signed-out event. The
// controller discards all session state when the event fires.
type Identity interface {
	UserID() uint64
	SignedOut() <-chan struct{}
}

// MatchEvent signals that a decision completed mutuality. It carries the
// match identity plus the candidate's display data so the caller can render
// the celebration screen without another fetch.
type MatchEvent struct {
	MatchID   uint64
	Candidate db.Profile
}

// Controller turns a linear deck of candidates into a sequence of recorded
// decisions and, on mutuality, into match formation.
//
// The cursor is a local, synchronous effect: it advances exactly once per
// RecordDecision call whether or not persistence succeeded. Persistence
// failures come back wrapped in ErrSyncFailed and never block the deck.
//
// Callers serialize gesture-driven calls; the internal mutex only guards
// against misuse, it is not a concurrency feature.
type Controller struct {
	userID    uint64
	profiles  *repository.ProfileRepository
	decisions *repository.DecisionRepository
	matches   *repository.MatchRepository
	cache     *cache.RedisCache
	log       *slog.Logger
	deckLimit int

	mu     sync.Mutex
	state  State
	deck   []db.Profile
	cursor int
	closed bool
	done   chan struct{}
}

// NewController creates a session for the identity's user. Session state is
// explicit and owned by the returned controller; it is discarded when the
// identity signs out or Close is called.
func NewController(appCtx *app.AppContext, id Identity, deckLimit int) *Controller {
	c := &Controller{
		userID:    id.UserID(),
		profiles:  repository.NewProfileRepository(appCtx.DB),
		decisions: repository.NewDecisionRepository(appCtx.DB),
		matches:   repository.NewMatchRepository(appCtx.DB),
		cache:     appCtx.RedisCache,
		log:       appCtx.Logger,
		deckLimit: deckLimit,
		state:     StateLoading,
		done:      make(chan struct{}),
	}

	if signedOut := id.SignedOut(); signedOut != nil {
		go func() {
			select {
			case <-signedOut:
				c.Close()
			case <-c.done:
			}
		}()
	}

	return c
}

// LoadDeck fetches a fresh deck of candidates, excluding the current user and
// every target already decided on (any action), and resets the cursor.
//
// An empty result is not an error: the session goes straight to Exhausted.
// A fetch failure is reported as an error and the controller stays in
// Loading, reloadable, so callers can tell "no candidates" from "could not
// fetch candidates".
func (c *Controller) LoadDeck(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return svcErr.ErrSessionClosed
	}

	c.state = StateLoading
	c.deck = nil
	c.cursor = 0

	decided, err := c.decisions.DecidedTargets(ctx, c.userID)
	if err != nil {
		return fmt.Errorf("failed to load decided targets: %w", err)
	}

	exclude := append(decided, c.userID)
	deck, err := c.profiles.ListCandidates(ctx, exclude, c.deckLimit)
	if err != nil {
		return fmt.Errorf("failed to load candidates: %w", err)
	}

	c.deck = deck
	if len(deck) == 0 {
		c.state = StateExhausted
	} else {
		c.state = StateReady
	}

	c.log.Debug("deck loaded", "user", c.userID, "size", len(deck), "state", c.state.String())
	return nil
}

// RecordDecision appends one decision for the candidate at the current cursor
// and advances the cursor exactly once.
//
// Behavior on accept:
//  1. A seed/bot candidate always reciprocates: a match is formed
//     unconditionally.
//  2. Otherwise the decision store is queried for a reciprocal prior like;
//     if found, a match is formed.
//  3. Match formation is idempotent per unordered pair; the returned
//     MatchEvent carries the match id and candidate display data.
//
// A candidateID that is not at the cursor fails fast with ErrStaleCandidate
// and does not advance: that is a caller bug (stale or duplicate gesture
// callback), not a runtime condition.
//
// Persistence failures (decision write, reciprocal lookup, match insert) are
// reported wrapped in ErrSyncFailed after the cursor has already advanced;
// the swipe happened from the user's perspective and local state never rolls
// back.
func (c *Controller) RecordDecision(ctx context.Context, candidateID uint64, action Action) (*MatchEvent, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil, svcErr.ErrSessionClosed
	}
	if c.state != StateReady {
		return nil, fmt.Errorf("record decision in state %q: %w", c.state.String(), svcErr.ErrInvalidState)
	}
	if action != ActionLike && action != ActionPass {
		return nil, svcErr.InvalidArgument(fmt.Sprintf("unknown action %q", action))
	}

	candidate := c.deck[c.cursor]
	if candidate.ID != candidateID {
		return nil, fmt.Errorf("candidate %d at cursor %d, got %d: %w",
			candidate.ID, c.cursor, candidateID, svcErr.ErrStaleCandidate)
	}

	c.state = StateDeciding
	liked := action == ActionLike

	var syncErr error
	if err := c.decisions.Record(ctx, c.userID, candidate.ID, liked); err != nil {
		c.log.Warn("decision write failed", "user", c.userID, "candidate", candidate.ID, "err", err)
		syncErr = err
	}

	// keep the candidate's like counter warm; best effort
	if c.cache != nil {
		key := c.cache.KeyForLikeCount(candidate.ID)
		if liked {
			_, _ = c.cache.Incr(ctx, key)
		} else {
			_, _ = c.cache.Decr(ctx, key)
		}
		_ = c.cache.Client.Expire(ctx, key, time.Hour).Err()
	}

	var event *MatchEvent
	if liked {
		// Seed/bot profiles always reciprocate. This guarantees new users an
		// active conversation immediately; it is not a general matching rule.
		form := candidate.Seed
		if !form {
			reciprocal, err := c.decisions.HasLiked(ctx, candidate.ID, c.userID)
			if err != nil {
				c.log.Warn("reciprocal lookup failed", "user", c.userID, "candidate", candidate.ID, "err", err)
				syncErr = errors.Join(syncErr, err)
			} else {
				form = reciprocal
			}
		}

		if form {
			match, err := c.matches.CreateIfAbsent(ctx, c.userID, candidate.ID)
			if err != nil {
				c.log.Warn("match creation failed", "user", c.userID, "candidate", candidate.ID, "err", err)
				syncErr = errors.Join(syncErr, err)
			} else {
				event = &MatchEvent{MatchID: match.ID, Candidate: candidate}
				c.log.Debug("match formed", "match", match.ID, "user", c.userID, "candidate", candidate.ID)
			}
		}
	}

	// Cursor advancement is local and unconditional: never skipped, even when
	// persistence failed above.
	c.state = StateAdvancing
	c.cursor++
	if c.cursor >= len(c.deck) {
		c.state = StateExhausted
	} else {
		c.state = StateReady
	}

	if syncErr != nil {
		return event, svcErr.SyncFailed(syncErr)
	}
	return event, nil
}

// State returns the controller's current lifecycle state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Current returns the candidate at the cursor, if any.
func (c *Controller) Current() (db.Profile, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || c.state != StateReady || c.cursor >= len(c.deck) {
		return db.Profile{}, false
	}
	return c.deck[c.cursor], true
}

// Remaining returns how many candidates are left including the current one.
func (c *Controller) Remaining() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || c.cursor >= len(c.deck) {
		return 0
	}
	return len(c.deck) - c.cursor
}

// Close discards all session state. Subsequent operations return
// ErrSessionClosed. Safe to call multiple times; triggered automatically on
// sign-out.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	c.deck = nil
	c.cursor = 0
	c.state = StateExhausted
	close(c.done)
}
