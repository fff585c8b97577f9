package seeders

import (
	"log"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/uandi-projects/game-platform/model"
	"github.com/uandi-projects/game-platform/shared"
)

// UserSeeder creates the demo accounts used by local development and the
// frontend walkthrough. Passwords match the usernames with a "123!" suffix.
type UserSeeder struct {
	db *gorm.DB
}

func NewUserSeeder(db *gorm.DB) *UserSeeder {
	return &UserSeeder{db: db}
}

type demoUser struct {
	Email    string
	Username string
	Name     string
	Role     string
	Password string
}

var demoUsers = []demoUser{
	{"teacher@game-platform.local", "teacher", "Demo Teacher", shared.RoleTeacher, "teacher123!"},
	{"alice@game-platform.local", "alice", "Alice", shared.RoleStudent, "alice123!"},
	{"bob@game-platform.local", "bob", "Bob", shared.RoleStudent, "bob123!"},
	{"carol@game-platform.local", "carol", "Carol", shared.RoleStudent, "carol123!"},
}

func (s *UserSeeder) SeedUsers() error {
	if err := s.db.AutoMigrate(&model.User{}); err != nil {
		return err
	}

	for _, du := range demoUsers {
		var count int64
		if err := s.db.Model(&model.User{}).Where("email = ?", du.Email).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			log.Printf("User %s already exists, skipping", du.Email)
			continue
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(du.Password), bcrypt.DefaultCost)
		if err != nil {
			return err
		}

		user := model.User{
			ID:       uuid.New().String(),
			Email:    du.Email,
			Username: du.Username,
			Name:     du.Name,
			Password: string(hash),
			Role:     du.Role,
			IsActive: true,
		}
		if err := s.db.Create(&user).Error; err != nil {
			return err
		}
		log.Printf("Seeded user %s (%s)", du.Email, du.Role)
	}

	return nil
}

// DemoUser returns the seeded account for an email, for the game seeder.
func (s *UserSeeder) DemoUser(email string) (*model.User, error) {
	var user model.User
	if err := s.db.Where("email = ?", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}
