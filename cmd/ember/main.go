package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/emberdate/ember/internal/app"
	"github.com/emberdate/ember/internal/cache"
	"github.com/emberdate/ember/internal/chat"
	"github.com/emberdate/ember/internal/config"
	"github.com/emberdate/ember/internal/db"
	svcErr "github.com/emberdate/ember/internal/errors"
	"github.com/emberdate/ember/internal/identity"
	"github.com/emberdate/ember/internal/logger"
	"github.com/emberdate/ember/internal/realtime"
	"github.com/emberdate/ember/internal/session"
)

// Interactive driver for the swipe/match/chat core: loads a deck for one
// user, reads like/pass from stdin, prints match events, and shows the
// conversation list on exit.
func main() {
	cfg := config.New()

	// Init logger (global singleton)
	logger.InitFromConfig(cfg)
	log := logger.L()

	// Init DB
	database, err := db.NewDB(cfg)
	if err != nil {
		log.Error("failed to init db", "err", err)
		return
	}

	// Init Redis
	redisCache := cache.NewRedisCache(cfg)
	if err := redisCache.Ping(context.Background()); err != nil {
		log.Error("failed to connect to redis", "err", err)
		return
	}

	appCtx := app.New(database, redisCache, log)

	if cfg.App.ENV == "development" {
		if err := db.SeedDemoData(database); err != nil {
			log.Error("failed to seed", "err", err)
		}
	}

	userID := uint64(1)
	if raw := os.Getenv("EMBER_USER_ID"); raw != "" {
		if parsed, err := strconv.ParseUint(raw, 10, 64); err == nil {
			userID = parsed
		}
	}

	ctx := context.Background()
	id := identity.NewProvider(userID)
	ctrl := session.NewController(appCtx, id, cfg.Session.DeckLimit)
	defer ctrl.Close()

	if err := ctrl.LoadDeck(ctx); err != nil {
		log.Error("failed to load deck", "err", err)
		return
	}
	log.Info("session started", "user", userID, "remaining", ctrl.Remaining())

	broker := realtime.NewBroker(redisCache, logger.Named("realtime"))
	scanner := bufio.NewScanner(os.Stdin)

	for {
		candidate, ok := ctrl.Current()
		if !ok {
			fmt.Println("No more profiles nearby!")
			break
		}

		fmt.Printf("%s, %s — %s [l=like p=pass q=quit] ", candidate.FirstName, candidate.Job, candidate.Bio)
		if !scanner.Scan() {
			break
		}

		var action session.Action
		switch scanner.Text() {
		case "l":
			action = session.ActionLike
		case "p":
			action = session.ActionPass
		case "q":
			id.SignOut()
			return
		default:
			continue
		}

		event, err := ctrl.RecordDecision(ctx, candidate.ID, action)
		if err != nil && !errors.Is(err, svcErr.ErrSyncFailed) {
			log.Error("decision failed", "err", err)
			return
		}
		if err != nil {
			log.Warn("decision recorded locally, sync failed", "err", err)
		}
		if event != nil {
			fmt.Printf("It's a match with %s!\n", event.Candidate.FirstName)

			conv := chat.NewSession(appCtx, broker, event.MatchID, userID)
			if _, err := conv.Send(ctx, fmt.Sprintf("Hey %s!", event.Candidate.FirstName)); err != nil {
				log.Warn("opening message failed", "err", err)
			}
		}
	}

	summaries, err := chat.ListConversations(ctx, appCtx, userID)
	if err != nil {
		log.Error("failed to list conversations", "err", err)
		return
	}
	for _, s := range summaries {
		pin := ""
		if s.Pinned {
			pin = " [pinned]"
		}
		last := "Start chatting!"
		if s.LastMessage != nil {
			last = s.LastMessage.Content
		}
		fmt.Printf("%s%s: %s\n", s.Partner.FirstName, pin, last)
	}
}
