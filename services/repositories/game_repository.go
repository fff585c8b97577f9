package repositories

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/uandi-projects/game-platform/model"
	"github.com/uandi-projects/game-platform/shared"
)

// GameRepository handles game instance and participant persistence.
type GameRepository struct {
	BaseRepository
}

func NewGameRepository(db *gorm.DB) *GameRepository {
	return &GameRepository{
		BaseRepository: NewBaseRepository(db),
	}
}

// ==================== GAME INSTANCES ====================

func (ds *GameRepository) CreateGame(game *model.GameInstance) error {
	if game.ID == "" {
		game.ID = uuid.New().String()
	}
	game.CreatedAt = time.Now()
	game.UpdatedAt = game.CreatedAt
	return ds.db.Create(game).Error
}

func (ds *GameRepository) GetGameByCode(code string) (*model.GameInstance, error) {
	var game model.GameInstance
	if err := ds.db.Where("code = ?", code).First(&game).Error; err != nil {
		return nil, err
	}
	return &game, nil
}

// GetGameWithParticipants loads the instance together with both participant
// lists, which callers need for the completion denominator.
func (ds *GameRepository) GetGameWithParticipants(code string) (*model.GameInstance, error) {
	var game model.GameInstance
	err := ds.db.Preload("Participants").Preload("Guests").
		Where("code = ?", code).First(&game).Error
	if err != nil {
		return nil, err
	}
	return &game, nil
}

func (ds *GameRepository) CodeExists(code string) (bool, error) {
	var count int64
	err := ds.db.Model(&model.GameInstance{}).Where("code = ?", code).Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (ds *GameRepository) StartGame(code string, startedAt time.Time) error {
	return ds.db.Model(&model.GameInstance{}).
		Where("code = ? AND status = ?", code, shared.GameStatusWaiting).
		Updates(map[string]interface{}{
			"status":     shared.GameStatusActive,
			"started_at": &startedAt,
			"updated_at": time.Now(),
		}).Error
}

func (ds *GameRepository) ListGamesByCreator(createdBy string, page, limit int) ([]model.GameInstance, int64, error) {
	var games []model.GameInstance
	var total int64

	query := ds.db.Model(&model.GameInstance{}).Where("created_by = ?", createdBy)
	query.Count(&total)

	err := query.Order("created_at DESC").
		Scopes(Paginate(page, limit)).
		Find(&games).Error
	if err != nil {
		return nil, 0, err
	}

	return games, total, nil
}

// ==================== PARTICIPANTS ====================

func (ds *GameRepository) AddParticipant(gameInstanceID, userID string) (*model.GameParticipant, error) {
	participant := &model.GameParticipant{
		ID:             uuid.New().String(),
		GameInstanceID: gameInstanceID,
		UserID:         userID,
		JoinedAt:       time.Now(),
	}

	if err := ds.db.Create(participant).Error; err != nil {
		return nil, err
	}
	return participant, nil
}

func (ds *GameRepository) GetParticipant(gameInstanceID, userID string) (*model.GameParticipant, error) {
	var participant model.GameParticipant
	err := ds.db.Where("game_instance_id = ? AND user_id = ?", gameInstanceID, userID).
		First(&participant).Error
	if err != nil {
		return nil, err
	}
	return &participant, nil
}

func (ds *GameRepository) AddGuest(gameInstanceID, guestID, displayName string) (*model.GameGuest, error) {
	guest := &model.GameGuest{
		ID:             uuid.New().String(),
		GameInstanceID: gameInstanceID,
		GuestID:        guestID,
		DisplayName:    displayName,
		JoinedAt:       time.Now(),
	}

	if err := ds.db.Create(guest).Error; err != nil {
		return nil, err
	}
	return guest, nil
}

func (ds *GameRepository) GetGuest(gameInstanceID, guestID string) (*model.GameGuest, error) {
	var guest model.GameGuest
	err := ds.db.Where("game_instance_id = ? AND guest_id = ?", gameInstanceID, guestID).
		First(&guest).Error
	if err != nil {
		return nil, err
	}
	return &guest, nil
}
