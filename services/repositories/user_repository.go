package repositories

import (
	"strings"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/uandi-projects/game-platform/dto"
	"github.com/uandi-projects/game-platform/model"
	"github.com/uandi-projects/game-platform/shared"
)

// UserRepository handles user-related database operations
type UserRepository struct {
	BaseRepository
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{
		BaseRepository: NewBaseRepository(db),
	}
}

func (ds *UserRepository) GetUser(userID string) (*model.User, error) {
	var user model.User
	if err := ds.db.Where("id = ?", userID).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (ds *UserRepository) GetUserByEmail(email string) (*model.User, error) {
	var user model.User
	if err := ds.db.Where("LOWER(email) = LOWER(?)", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (ds *UserRepository) GetUserByEmailOrUsername(emailOrUsername string) (*model.User, error) {
	var user model.User
	if err := ds.db.Where("LOWER(email) = LOWER(?) OR username = ?", emailOrUsername, emailOrUsername).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (ds *UserRepository) CreateUser(req dto.RegisterRequest, hashedPassword, role string) (*model.User, error) {
	user := &model.User{
		ID:        uuid.New().String(),
		Email:     strings.ToLower(req.Email),
		Username:  req.Username,
		Password:  hashedPassword,
		Name:      req.Name,
		Role:      role,
		IsActive:  true,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	if err := ds.db.Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

func (ds *UserRepository) UpdateUser(user *model.User) error {
	user.UpdatedAt = time.Now()
	return ds.db.Save(user).Error
}

func (ds *UserRepository) UpdateUserPassword(userID, hashedPassword string) error {
	return ds.db.Model(&model.User{}).Where("id = ?", userID).Updates(map[string]interface{}{
		"password":   hashedPassword,
		"updated_at": time.Now(),
	}).Error
}

func (ds *UserRepository) UpdateLastLogin(userID, ip string) error {
	now := time.Now()
	return ds.db.Model(&model.User{}).Where("id = ?", userID).Updates(map[string]interface{}{
		"last_login_at": &now,
		"last_login_ip": ip,
		"updated_at":    now,
	}).Error
}

func (ds *UserRepository) UpdateUserProfile(userID string, updates map[string]interface{}) error {
	updates["updated_at"] = time.Now()
	return ds.db.Model(&model.User{}).Where("id = ?", userID).Updates(updates).Error
}

func (ds *UserRepository) IsUsernameAvailable(username string) (bool, error) {
	var count int64
	err := ds.db.Model(&model.User{}).Where("LOWER(username) = LOWER(?)", username).Count(&count).Error
	if err != nil {
		return false, err
	}
	return count == 0, nil
}

func (ds *UserRepository) IsEmailAvailable(email string) (bool, error) {
	var count int64
	err := ds.db.Model(&model.User{}).Where("LOWER(email) = LOWER(?)", email).Count(&count).Error
	if err != nil {
		return false, err
	}
	return count == 0, nil
}

// ==================== ADMIN USER MANAGEMENT ====================

func (ds *UserRepository) AdminGetUsers(page, limit int, search string) ([]model.User, int64, error) {
	var users []model.User
	var total int64

	query := ds.db.Model(&model.User{})

	if search != "" {
		searchPattern := "%" + strings.ToLower(search) + "%"
		query = query.Where("LOWER(username) LIKE ? OR LOWER(email) LIKE ? OR LOWER(name) LIKE ?",
			searchPattern, searchPattern, searchPattern)
	}

	query.Count(&total)

	err := query.Order("created_at DESC").
		Scopes(Paginate(page, limit)).
		Find(&users).Error
	if err != nil {
		return nil, 0, err
	}

	return users, total, nil
}

func (ds *UserRepository) AdminUpdateUser(userID string, updates map[string]interface{}) error {
	updates["updated_at"] = time.Now()
	return ds.db.Model(&model.User{}).Where("id = ?", userID).Updates(updates).Error
}

func (ds *UserRepository) AdminDeactivateUser(userID string) error {
	return ds.db.Model(&model.User{}).Where("id = ?", userID).Updates(map[string]interface{}{
		"is_active":  false,
		"updated_at": time.Now(),
	}).Error
}

func (ds *UserRepository) CountAdmins() (int64, error) {
	var count int64
	err := ds.db.Model(&model.User{}).Where("role = ? AND is_active = ?", shared.RoleAdmin, true).Count(&count).Error
	return count, err
}

// ==================== SEEDING ====================

func (ds *UserRepository) SeedInitialData() error {
	return ds.createDefaultAdmin()
}

// Create default admin user
func (ds *UserRepository) createDefaultAdmin() error {
	var count int64
	ds.db.Model(&model.User{}).Where("role = ?", shared.RoleAdmin).Count(&count)

	if count == 0 {
		// Hash default password (CHANGE THIS IN PRODUCTION!)
		hashedPassword, err := bcrypt.GenerateFromPassword([]byte("admin123"), 12)
		if err != nil {
			return err
		}

		admin := &model.User{
			ID:        uuid.New().String(),
			Username:  "admin",
			Email:     "admin@game-platform.local",
			Password:  string(hashedPassword),
			Name:      "Platform Admin",
			Role:      shared.RoleAdmin,
			IsActive:  true,
			CreatedAt: time.Now(),
			UpdatedAt: time.Now(),
		}

		err = ds.db.Create(admin).Error
		if err != nil {
			log.Printf("Failed to create admin user: %v", err)
			return err
		}

		log.Println("Default admin user created - Username: admin, Password: admin123 (CHANGE THIS!)")
	}

	return nil
}
