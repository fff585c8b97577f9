package services

import (
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/uandi-projects/game-platform/model"
	"github.com/uandi-projects/game-platform/services/repositories"
	"github.com/uandi-projects/game-platform/shared"
)

// newTestSQL builds a PostgresService backed by a fresh in-memory sqlite
// database, migrated and with all repositories wired.
func newTestSQL(t *testing.T) *PostgresService {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.New().String())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&model.User{},
		&model.InviteToken{},
		&model.PasswordResetToken{},
		&model.GameInstance{},
		&model.GameParticipant{},
		&model.GameGuest{},
		&model.GameProgress{},
		&model.GameAnswer{},
	))

	return &PostgresService{
		db:       db,
		users:    repositories.NewUserRepository(db),
		invites:  repositories.NewInviteRepository(db),
		games:    repositories.NewGameRepository(db),
		progress: repositories.NewProgressRepository(db),
	}
}

func newTestProgressService(sql *PostgresService) *ProgressService {
	return &ProgressService{sqlSvc: sql, redisSvc: &RedisService{}}
}

func newTestGameService(sql *PostgresService) *GameService {
	return &GameService{sqlSvc: sql, redisSvc: &RedisService{}, aiSvc: &AIService{}}
}

type testGameOpts struct {
	Type      string
	Status    string
	Questions []model.GameQuestion
	TimeLimit int
	StartedAt *time.Time
	CreatedBy string
}

func seedGame(t *testing.T, sql *PostgresService, opts testGameOpts) *model.GameInstance {
	t.Helper()

	if opts.Type == "" {
		opts.Type = shared.GameTypeMultiplayer
	}
	if opts.Status == "" {
		opts.Status = shared.GameStatusActive
	}
	if opts.Status == shared.GameStatusActive && opts.StartedAt == nil {
		now := time.Now()
		opts.StartedAt = &now
	}
	if opts.CreatedBy == "" {
		opts.CreatedBy = uuid.New().String()
	}

	raw, err := json.Marshal(model.GameConfig{
		QuestionCount: len(opts.Questions),
		TimeLimit:     opts.TimeLimit,
		Questions:     opts.Questions,
	})
	require.NoError(t, err)

	game := &model.GameInstance{
		ID:           uuid.New().String(),
		Code:         randomTestCode(t),
		GameKind:     "multi-player-math",
		Type:         opts.Type,
		CreatedBy:    opts.CreatedBy,
		Status:       opts.Status,
		StartedAt:    opts.StartedAt,
		CustomConfig: raw,
	}
	require.NoError(t, sql.Games().CreateGame(game))
	return game
}

func seedGuest(t *testing.T, sql *PostgresService, game *model.GameInstance, name string) string {
	t.Helper()

	guestID := "guest-" + uuid.New().String()
	_, err := sql.Games().AddGuest(game.ID, guestID, name)
	require.NoError(t, err)
	return guestID
}

func mathSet() []model.GameQuestion {
	return []model.GameQuestion{
		{ID: 0, Question: "2 + 2", Answer: "4"},
		{ID: 1, Question: "7 - 3", Answer: "4"},
	}
}

func randomTestCode(t *testing.T) string {
	t.Helper()

	code, err := randomCode(codeLength)
	require.NoError(t, err)
	return code
}
