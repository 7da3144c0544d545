// Command seed runs the database seeder for the bucket list backend.
package main

import (
	"flag"
	"log"

	"bucketlist/internal/config"
	"bucketlist/internal/database"
	"bucketlist/internal/seed"
)

func main() {
	numUsers := flag.Int("users", 10, "Number of users to create")
	itemsPerUser := flag.Int("items", 5, "Number of items per user")
	shouldClean := flag.Bool("clean", true, "Clean database before seeding")
	flag.Parse()

	log.Println("🌱 Database Seeder")
	log.Println("==================")
	log.Printf("Target: %d users, %d items each, clean=%v\n", *numUsers, *itemsPerUser, *shouldClean)

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	if err := seed.Run(db, seed.Options{
		NumUsers:     *numUsers,
		ItemsPerUser: *itemsPerUser,
		ShouldClean:  *shouldClean,
	}); err != nil {
		log.Fatalf("❌ Seeding failed: %v", err)
	}

	log.Println("✨ All done! Your database is now populated with test data.")
	log.Printf("📧 All test users have the password: %s", seed.DefaultPassword)
}
