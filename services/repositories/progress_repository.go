package repositories

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/uandi-projects/game-platform/model"
)

// ProgressRepository handles per-participant progress rows and the
// server-side answer log.
type ProgressRepository struct {
	BaseRepository
}

func NewProgressRepository(db *gorm.DB) *ProgressRepository {
	return &ProgressRepository{
		BaseRepository: NewBaseRepository(db),
	}
}

// Transaction runs fn against a repository bound to a single database
// transaction. Completion must read and flip inside one of these.
func (ds *ProgressRepository) Transaction(fn func(tx *ProgressRepository) error) error {
	return ds.db.Transaction(func(tx *gorm.DB) error {
		return fn(NewProgressRepository(tx))
	})
}

// ==================== PROGRESS ROWS ====================

// UpsertProgress writes the participant's counters. One row per
// (game_code, participant_id); a second write replaces the counters of the
// first. IsCompleted is deliberately not touched here.
func (ds *ProgressRepository) UpsertProgress(progress *model.GameProgress) error {
	if progress.ID == "" {
		progress.ID = uuid.New().String()
	}
	progress.LastUpdated = time.Now()

	return ds.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "game_code"}, {Name: "participant_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"participant_name", "questions_answered", "total_questions",
			"score", "is_active", "last_updated",
		}),
	}).Create(progress).Error
}

func (ds *ProgressRepository) GetProgress(gameCode, participantID string) (*model.GameProgress, error) {
	var progress model.GameProgress
	err := ds.db.Where("game_code = ? AND participant_id = ?", gameCode, participantID).
		First(&progress).Error
	if err != nil {
		return nil, err
	}
	return &progress, nil
}

func (ds *ProgressRepository) GetGameProgress(gameCode string) ([]model.GameProgress, error) {
	var rows []model.GameProgress
	err := ds.db.Where("game_code = ?", gameCode).Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// GetActiveProgress returns rows for the leaderboard, pre-sorted: most
// questions answered first, score breaking ties.
func (ds *ProgressRepository) GetActiveProgress(gameCode string) ([]model.GameProgress, error) {
	var rows []model.GameProgress
	err := ds.db.Where("game_code = ? AND is_active = ?", gameCode, true).
		Order("questions_answered DESC, score DESC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (ds *ProgressRepository) MarkCompleted(gameCode, participantID string) error {
	return ds.db.Model(&model.GameProgress{}).
		Where("game_code = ? AND participant_id = ?", gameCode, participantID).
		Updates(map[string]interface{}{
			"is_completed": true,
			"is_active":    false,
			"last_updated": time.Now(),
		}).Error
}

func (ds *ProgressRepository) CountCompleted(gameCode string) (int64, error) {
	var count int64
	err := ds.db.Model(&model.GameProgress{}).
		Where("game_code = ? AND is_completed = ?", gameCode, true).
		Count(&count).Error
	return count, err
}

// ==================== ANSWER LOG ====================

// RecordAnswer appends one answer. The unique index on
// (game_code, participant_id, question_id) makes the first write win;
// a duplicate reports recorded=false and changes nothing.
func (ds *ProgressRepository) RecordAnswer(answer *model.GameAnswer) (bool, error) {
	if answer.ID == "" {
		answer.ID = uuid.New().String()
	}
	answer.AnsweredAt = time.Now()

	result := ds.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "game_code"}, {Name: "participant_id"}, {Name: "question_id"}},
		DoNothing: true,
	}).Create(answer)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (ds *ProgressRepository) GetAnswers(gameCode, participantID string) ([]model.GameAnswer, error) {
	var answers []model.GameAnswer
	err := ds.db.Where("game_code = ? AND participant_id = ?", gameCode, participantID).
		Order("question_id ASC").
		Find(&answers).Error
	if err != nil {
		return nil, err
	}
	return answers, nil
}

// AnswerTotals derives the authoritative counters from the answer log.
func (ds *ProgressRepository) AnswerTotals(gameCode, participantID string) (answered int, correct int, err error) {
	var total, right int64

	err = ds.db.Model(&model.GameAnswer{}).
		Where("game_code = ? AND participant_id = ?", gameCode, participantID).
		Count(&total).Error
	if err != nil {
		return 0, 0, err
	}

	err = ds.db.Model(&model.GameAnswer{}).
		Where("game_code = ? AND participant_id = ? AND is_correct = ?", gameCode, participantID, true).
		Count(&right).Error
	if err != nil {
		return 0, 0, err
	}

	return int(total), int(right), nil
}

// ==================== COMPLETION ====================

// CompleteGameInstance flips the instance to completed. Callers run this
// inside Transaction together with the participant-count check.
func (ds *ProgressRepository) CompleteGameInstance(gameCode string) error {
	return ds.db.Model(&model.GameInstance{}).
		Where("code = ? AND status != ?", gameCode, "completed").
		Updates(map[string]interface{}{
			"status":     "completed",
			"updated_at": time.Now(),
		}).Error
}

func (ds *ProgressRepository) GetGameInstance(gameCode string) (*model.GameInstance, error) {
	var game model.GameInstance
	err := ds.db.Preload("Participants").Preload("Guests").
		Where("code = ?", gameCode).First(&game).Error
	if err != nil {
		return nil, err
	}
	return &game, nil
}
