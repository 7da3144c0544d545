// Package seed provides database seeding utilities for development and testing.
package seed

import (
	cryptorand "crypto/rand"
	"encoding/hex"
	"fmt"
	"log"
	"math/rand"
	"strings"
	"time"

	"bucketlist/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Options configuration for the seeder
type Options struct {
	NumUsers     int
	ItemsPerUser int
	ShouldClean  bool
}

// DefaultPassword is the login password for every seeded demo account.
const DefaultPassword = "DemoPassword123"

var bucketVerbs = []string{
	"Visit", "Hike", "See", "Try", "Learn", "Swim in", "Road trip through",
	"Photograph", "Camp at", "Kayak down",
}

// Run populates the database with demo users, items and likes. It is meant
// for development environments only.
func Run(db *gorm.DB, opts Options) error {
	if opts.NumUsers <= 0 {
		opts.NumUsers = 10
	}
	if opts.ItemsPerUser <= 0 {
		opts.ItemsPerUser = 5
	}

	gofakeit.Seed(time.Now().UnixNano())
	r := rand.New(rand.NewSource(time.Now().UnixNano()))

	if opts.ShouldClean {
		if err := clean(db); err != nil {
			return fmt.Errorf("clean: %w", err)
		}
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(DefaultPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash demo password: %w", err)
	}

	users := make([]*models.User, 0, opts.NumUsers)
	for i := 0; i < opts.NumUsers; i++ {
		// Index keeps generated addresses unique within one run. The token
		// columns carry unique indexes, so each row needs its own pair; the
		// sessions start out expired and accounts log in normally.
		user := &models.User{
			Email:        fmt.Sprintf("%s%d@%s", strings.ToLower(gofakeit.Username()), i, gofakeit.DomainName()),
			Password:     string(hashed),
			SessionToken: randomToken(),
			UpdateToken:  randomToken(),
		}
		if err := db.Create(user).Error; err != nil {
			// Random emails can collide across runs; skip and move on.
			log.Printf("seed: skipping user %q: %v", user.Email, err)
			continue
		}
		users = append(users, user)
	}

	var items []*models.Item
	for _, user := range users {
		for i := 0; i < opts.ItemsPerUser; i++ {
			item := buildItem(r, user.ID)
			if err := db.Create(item).Error; err != nil {
				return fmt.Errorf("seed item: %w", err)
			}
			items = append(items, item)
		}
	}

	// Sprinkle likes across other users' items.
	for _, user := range users {
		for _, item := range items {
			if item.UserID == user.ID || r.Intn(4) != 0 {
				continue
			}
			like := &models.Like{UserID: user.ID, ItemID: item.ID}
			if err := db.Create(like).Error; err != nil {
				return fmt.Errorf("seed like: %w", err)
			}
		}
	}

	log.Printf("seed: created %d users and %d items", len(users), len(items))
	return nil
}

func buildItem(r *rand.Rand, userID uint) *models.Item {
	verb := bucketVerbs[r.Intn(len(bucketVerbs))]
	city := gofakeit.City()
	country := gofakeit.Country()

	item := &models.Item{
		Name:         fmt.Sprintf("%s %s", verb, city),
		Location:     fmt.Sprintf("%s, %s", city, country),
		Note:         gofakeit.Sentence(8),
		IsExperience: r.Intn(3) == 0,
		UserID:       userID,
	}

	if r.Intn(2) == 0 {
		start := time.Now().AddDate(0, r.Intn(18), r.Intn(28))
		item.Date = &start
		if r.Intn(2) == 0 {
			end := start.AddDate(0, 0, 1+r.Intn(14))
			item.EndDate = &end
		}
	}
	return item
}

// randomToken returns a 64-character hex string, matching the width of real
// session tokens.
func randomToken() string {
	buf := make([]byte, 32)
	if _, err := cryptorand.Read(buf); err != nil {
		panic(err)
	}
	return hex.EncodeToString(buf)
}

func clean(db *gorm.DB) error {
	// Delete in dependency order; Unscoped skips gorm soft deletes.
	for _, model := range []any{&models.Like{}, &models.Photo{}, &models.Item{}, &models.User{}} {
		if err := db.Unscoped().Where("1 = 1").Delete(model).Error; err != nil {
			return err
		}
	}
	return nil
}
