package seeders

import (
	"encoding/json"
	"log"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/uandi-projects/game-platform/model"
	"github.com/uandi-projects/game-platform/services"
	"github.com/uandi-projects/game-platform/shared"
)

// GameSeeder creates one joinable demo game so the frontend has a lobby to
// point at immediately after seeding.
type GameSeeder struct {
	db *gorm.DB
}

func NewGameSeeder(db *gorm.DB) *GameSeeder {
	return &GameSeeder{db: db}
}

const demoGameCode = "DEMO42"

func (s *GameSeeder) SeedGames() error {
	if err := s.db.AutoMigrate(&model.GameInstance{}, &model.GameParticipant{}, &model.GameGuest{}); err != nil {
		return err
	}

	var count int64
	if err := s.db.Model(&model.GameInstance{}).Where("code = ?", demoGameCode).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		log.Printf("Demo game %s already exists, skipping", demoGameCode)
		return nil
	}

	teacher, err := NewUserSeeder(s.db).DemoUser("teacher@game-platform.local")
	if err != nil {
		return err
	}

	cfg := model.GameConfig{
		QuestionCount: 10,
		TimeLimit:     300,
		Questions:     services.GenerateMathQuestions(10),
	}
	raw, err := json.Marshal(cfg)
	if err != nil {
		return err
	}

	game := model.GameInstance{
		ID:           uuid.New().String(),
		Code:         demoGameCode,
		GameKind:     "multi-player-math",
		Type:         shared.GameTypeMultiplayer,
		CreatedBy:    teacher.ID,
		Status:       shared.GameStatusWaiting,
		CustomConfig: raw,
	}
	if err := s.db.Create(&game).Error; err != nil {
		return err
	}

	log.Printf("Seeded demo game %s (created by %s)", demoGameCode, teacher.Email)
	return nil
}
