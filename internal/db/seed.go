package db

import (
	"fmt"
	"log"
	"math/rand"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SeedDemoData resets the database and populates it with demo profiles and
// decisions.
//
// Behavior:
//  1. Clears existing data in messages, matches, decisions and profiles.
//  2. Creates the pinned seed/bot profile ("Priya") plus the demo roster.
//  3. Generates decisions with ~70% likes, and every 3rd ensures a mutual like.
//
// Compatible with both MySQL and SQLite (AUTO_INCREMENT reset skipped for SQLite).
func SeedDemoData(db *gorm.DB) error {
	r := rand.New(rand.NewSource(time.Now().UnixNano()))

	// --- Fresh start ---
	for _, table := range []string{"messages", "matches", "decisions", "profiles"} {
		if err := db.Exec("DELETE FROM " + table).Error; err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}

	// Reset auto-increment sequences
	switch db.Dialector.Name() {
	case "mysql":
		for _, table := range []string{"messages", "matches", "profiles"} {
			db.Exec("ALTER TABLE " + table + " AUTO_INCREMENT = 1")
		}
	case "sqlite":
		db.Exec("DELETE FROM sqlite_sequence WHERE name IN ('messages', 'matches', 'profiles')")
	}

	log.Println("Cleared existing data")

	hash, err := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	// --- Seed profiles ---
	// Priya is the seed/bot profile: she always reciprocates a like, so every
	// new user lands an active conversation and her thread pins to the top of
	// the conversation list.
	profiles := []Profile{
		{
			FirstName: "Priya", Gender: "female", Job: "Product Designer",
			Bio:       "Here to show you around. Say hi!",
			Interests: []string{"Coffee", "Design", "Travel"},
			Photos:    []string{"https://images.example.com/priya-1.jpg"},
			Seed:      true,
		},
		{
			FirstName: "Sarah", Gender: "female", Job: "Graphic Designer",
			Bio:       "Adventure seeker and coffee enthusiast. Let's find the best latte in town!",
			Interests: []string{"Coffee", "Design", "Travel"},
		},
		{
			FirstName: "Jessica", Gender: "female", Job: "Marketing Manager",
			Bio:       "Marketing manager by day, aspiring chef by night.",
			Interests: []string{"Cooking", "Marketing", "Yoga"},
		},
		{
			FirstName: "Emily", Gender: "female", Job: "Teacher",
			Bio:       "Love hiking and outdoors. Looking for a partner in crime.",
			Interests: []string{"Hiking", "Nature", "Dogs"},
		},
		{
			FirstName: "Michael", Gender: "male", Job: "Software Engineer",
			Bio:       "Probably debugging something right now.",
			Interests: []string{"Coding", "Gaming", "Sci-Fi"},
		},
		{
			FirstName: "David", Gender: "male", Job: "Entrepreneur",
			Bio:       "Building things, lifting things.",
			Interests: []string{"Business", "Startups", "Gym"},
		},
		{
			FirstName: "Olivia", Gender: "female", Job: "Curator",
			Bio:       "Art, museums and a good glass of wine.",
			Interests: []string{"Art", "Museums", "Wine"},
		},
		{
			FirstName: "Daniel", Gender: "male", Job: "Architect",
			Bio:       "I design buildings and photograph them.",
			Interests: []string{"Architecture", "Travel", "Photography"},
		},
		{
			FirstName: "Sophia", Gender: "female", Job: "Librarian",
			Bio:       "Always mid-book. Recommendations welcome.",
			Interests: []string{"Books", "Learning", "Music"},
		},
		{
			FirstName: "James", Gender: "male", Job: "Musician",
			Bio:       "Musician. Let's jam.",
			Interests: []string{"Music", "Guitar", "Concerts"},
		},
		{
			FirstName: "Isabella", Gender: "female", Job: "Chef",
			Bio:       "Foodie. Always hungry.",
			Interests: []string{"Food", "Cooking", "Restaurants"},
		},
	}

	for i := range profiles {
		p := &profiles[i]
		p.Email = fmt.Sprintf("%s%d@example.com", p.FirstName, i+1)
		p.PasswordHash = string(hash)
		p.Active = true
		p.BirthDate = time.Now().AddDate(-22-r.Intn(12), 0, -r.Intn(365))
		if len(p.Photos) == 0 {
			p.Photos = []string{fmt.Sprintf("https://images.example.com/%s.jpg", p.FirstName)}
		}
		if err := db.Create(p).Error; err != nil {
			return fmt.Errorf("failed to seed profile: %w", err)
		}
	}
	log.Printf("Seeded %d profiles.", len(profiles))

	// --- Seed decisions among the non-bot roster ---
	counter := 0
	for _, actor := range profiles {
		if actor.Seed {
			continue
		}
		for j := 0; j < 5; j++ {
			recipient := profiles[r.Intn(len(profiles))]
			if recipient.ID == actor.ID || recipient.Seed || recipient.Gender == actor.Gender {
				continue
			}

			// like probability 70%
			liked := r.Intn(100) < 70

			// guarantee mutual likes every 3rd pair
			if counter%3 == 0 {
				liked = true
				recip := Decision{
					ActorID:     recipient.ID,
					RecipientID: actor.ID,
					Liked:       true,
				}
				db.Clauses(clause.OnConflict{
					Columns:   []clause.Column{{Name: "actor_id"}, {Name: "recipient_id"}},
					DoUpdates: clause.AssignmentColumns([]string{"liked", "updated_at"}),
				}).Create(&recip)
			}

			decision := Decision{
				ActorID:     actor.ID,
				RecipientID: recipient.ID,
				Liked:       liked,
			}
			if err := db.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "actor_id"}, {Name: "recipient_id"}},
				DoUpdates: clause.AssignmentColumns([]string{"liked", "updated_at"}),
			}).Create(&decision).Error; err != nil {
				return fmt.Errorf("failed to seed decision: %w", err)
			}

			counter++
		}
	}

	return nil
}
