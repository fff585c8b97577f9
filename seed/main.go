package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/uandi-projects/game-platform/seed/seeders"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	var (
		seedType = flag.String("type", "all", "Type of seeding: all, users, games")
		dsn      = flag.String("dsn", "", "Postgres DSN (overrides DATABASE_URL env var)")
		help     = flag.Bool("help", false, "Show help message")
	)
	flag.Parse()

	if *help {
		showHelp()
		return
	}

	databaseURL := *dsn
	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
		if databaseURL == "" {
			databaseURL = fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
				envOr("DB_HOST", "localhost"),
				envOr("DB_USER", "postgres"),
				envOr("DB_PASSWORD", "postgres"),
				envOr("DB_NAME", "game_platform"),
				envOr("DB_PORT", "5432"))
		}
	}

	db, err := gorm.Open(postgres.Open(databaseURL), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Info),
	})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	mainSeeder := seeders.NewMainSeeder(db)

	switch *seedType {
	case "all":
		log.Println("Running complete database seeding...")
		if err := mainSeeder.SeedAll(); err != nil {
			log.Fatalf("Failed to seed database: %v", err)
		}
	case "users":
		log.Println("Seeding demo users only...")
		if err := mainSeeder.SeedUsersOnly(); err != nil {
			log.Fatalf("Failed to seed users: %v", err)
		}
	case "games":
		log.Println("Seeding demo games only...")
		if err := mainSeeder.SeedGamesOnly(); err != nil {
			log.Fatalf("Failed to seed games: %v", err)
		}
	default:
		log.Fatalf("Unknown seed type: %s. Use 'all', 'users' or 'games'", *seedType)
	}

	log.Println("Seeding operation completed successfully!")
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func showHelp() {
	log.Println(`
Demo data seeding tool

Usage: go run ./seed [flags]

Flags:
  -type string
        Type of seeding to perform (default "all")
        Options: all, users, games
  -dsn string
        Postgres DSN (overrides DATABASE_URL environment variable)
  -help
        Show this help message

Examples:
  # Seed everything
  go run ./seed

  # Seed only demo users
  go run ./seed -type=users

Environment Variables:
  DATABASE_URL - Postgres connection string
  DB_HOST, DB_USER, DB_PASSWORD, DB_NAME, DB_PORT - used when DATABASE_URL is unset`)
}
