package seeders

import (
	"log"

	"gorm.io/gorm"
)

// MainSeeder coordinates all seeding operations
type MainSeeder struct {
	db *gorm.DB
}

// NewMainSeeder creates a new main seeder
func NewMainSeeder(db *gorm.DB) *MainSeeder {
	return &MainSeeder{db: db}
}

// SeedAll runs all seeders in the correct order
func (s *MainSeeder) SeedAll() error {
	log.Println("Starting database seeding...")

	// 1. Seed users first (games reference their creator)
	userSeeder := NewUserSeeder(s.db)
	if err := userSeeder.SeedUsers(); err != nil {
		log.Printf("User seeding failed: %v", err)
		return err
	}

	// 2. Seed demo games (depends on users)
	gameSeeder := NewGameSeeder(s.db)
	if err := gameSeeder.SeedGames(); err != nil {
		log.Printf("Game seeding failed: %v", err)
		return err
	}

	log.Println("Database seeding completed successfully!")
	return nil
}

func (s *MainSeeder) SeedUsersOnly() error {
	return NewUserSeeder(s.db).SeedUsers()
}

func (s *MainSeeder) SeedGamesOnly() error {
	return NewGameSeeder(s.db).SeedGames()
}
