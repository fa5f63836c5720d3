package db

import (
	"time"
)

// Profile table. Display attributes are immutable from the session's point of
// view once a deck is loaded.
//
// Seed marks a seed/bot profile that always reciprocates a like, so every new
// user gets an active conversation immediately.
type Profile struct {
	ID           uint64 `gorm:"primaryKey;autoIncrement"`
	FirstName    string `gorm:"size:64;not null"`
	Email        string `gorm:"uniqueIndex;size:128;not null"`
	PasswordHash string `gorm:"size:255;not null"`
	BirthDate    time.Time
	Bio          string    `gorm:"size:512"`
	Job          string    `gorm:"size:64"`
	Gender       string    `gorm:"size:16;not null"`
	Photos       []string  `gorm:"serializer:json"`
	Interests    []string  `gorm:"serializer:json"`
	Seed         bool      `gorm:"default:false"`
	Active       bool      `gorm:"default:true"`
	CreatedAt    time.Time `gorm:"autoCreateTime"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime"`
}

// Decision represents an actor's like/pass decision on a recipient.
//
// Composite PK: (ActorID, RecipientID)
//   - Ensures a single row per pair (duplicate recording is idempotent).
//
// Indexes:
//   - idx_recipient_liked_updated_actor(recipient_id, liked, updated_at DESC, actor_id)
//     Optimizes "who liked me" lists with pagination.
//   - idx_actor_recipient_liked(actor_id, recipient_id, liked)
//     Optimizes O(1) reciprocal-like lookups.
type Decision struct {
	ActorID     uint64    `gorm:"primaryKey;index:idx_actor_recipient_liked,priority:1"`
	RecipientID uint64    `gorm:"primaryKey;index:idx_recipient_liked_updated_actor,priority:1;index:idx_actor_recipient_liked,priority:2"`
	Liked       bool      `gorm:"not null;index:idx_recipient_liked_updated_actor,priority:2;index:idx_actor_recipient_liked,priority:3"`
	CreatedAt   time.Time `gorm:"autoCreateTime"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime;index:idx_recipient_liked_updated_actor,priority:3,sort:desc"`
}

// Match pairs two members once both accepted each other (or one is a seed
// profile). Members are stored normalized (MemberLowID < MemberHighID) so the
// unique index enforces at-most-one match per unordered pair.
//
// Conversations are 1:1 with matches and are keyed by the match id.
type Match struct {
	ID           uint64    `gorm:"primaryKey;autoIncrement"`
	MemberLowID  uint64    `gorm:"not null;uniqueIndex:idx_match_pair,priority:1"`
	MemberHighID uint64    `gorm:"not null;uniqueIndex:idx_match_pair,priority:2;index"`
	CreatedAt    time.Time `gorm:"autoCreateTime"`
}

// Message is one append-only chat message in a match's conversation.
// History ordering is (created_at, id) ascending.
type Message struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement"`
	MatchID   uint64    `gorm:"not null;index:idx_match_created,priority:1"`
	SenderID  uint64    `gorm:"not null"`
	Content   string    `gorm:"size:2000;not null"`
	CreatedAt time.Time `gorm:"autoCreateTime;index:idx_match_created,priority:2"`
}
