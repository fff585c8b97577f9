package services

import (
	ctx "context"
	"crypto/rand"
	"encoding/json"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/alphabatem/common/context"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/uandi-projects/game-platform/dto"
	"github.com/uandi-projects/game-platform/model"
	"github.com/uandi-projects/game-platform/shared"
)

// GameService owns the game catalog, instance lifecycle and join flows.
type GameService struct {
	context.DefaultService

	sqlSvc   *PostgresService
	redisSvc *RedisService
	aiSvc    *AIService
}

const GAME_SVC = "game_svc"

// Code alphabet omits characters players misread over a shoulder (0/O, 1/I).
const codeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
const codeLength = 6

const gameCacheTTL = 30 * time.Minute

func (svc GameService) Id() string {
	return GAME_SVC
}

func (svc *GameService) Configure(ctx *context.Context) error {
	return svc.DefaultService.Configure(ctx)
}

func (svc *GameService) Start() error {
	svc.sqlSvc = svc.Service(POSTGRES_SVC).(*PostgresService)
	svc.redisSvc = svc.Service(REDIS_SVC).(*RedisService)
	svc.aiSvc = svc.Service(AI_SVC).(*AIService)
	return nil
}

// ==================== CATALOG ====================

type gameKindSpec struct {
	dto.GameKind

	// MinCreateRole gates creation; every kind is joinable by anyone who
	// has the code.
	MinCreateRole string
}

var gameKinds = []gameKindSpec{
	{
		GameKind: dto.GameKind{
			ID:          "single-player-math",
			Name:        "Math Sprint",
			Type:        shared.GameTypeSinglePlayer,
			Description: "Ten arithmetic questions against the clock.",
			ShowTimer:   true,
			MaxTime:     120,
		},
		MinCreateRole: shared.RoleStudent,
	},
	{
		GameKind: dto.GameKind{
			ID:          "multi-player-math",
			Name:        "Math Race",
			Type:        shared.GameTypeMultiplayer,
			Description: "Race other players through the same set of arithmetic questions.",
			ShowTimer:   true,
			MaxTime:     300,
		},
		MinCreateRole: shared.RoleTeacher,
	},
	{
		GameKind: dto.GameKind{
			ID:          "custom-math-quiz",
			Name:        "Custom Math Quiz",
			Type:        shared.GameTypeSinglePlayer,
			Description: "Arithmetic practice with your own question count and time limit.",
			ShowTimer:   true,
			MaxTime:     600,
			IsCustom:    true,
		},
		MinCreateRole: shared.RoleStudent,
	},
	{
		GameKind: dto.GameKind{
			ID:          "custom-math-race",
			Name:        "Custom Math Race",
			Type:        shared.GameTypeMultiplayer,
			Description: "A math race with a configurable question count and time limit.",
			ShowTimer:   true,
			MaxTime:     600,
			IsCustom:    true,
		},
		MinCreateRole: shared.RoleTeacher,
	},
	{
		GameKind: dto.GameKind{
			ID:          "ai-quiz",
			Name:        "AI Quiz",
			Type:        shared.GameTypeMultiplayer,
			Description: "Multiple-choice questions generated from a prompt.",
			ShowTimer:   true,
			MaxTime:     900,
			IsCustom:    true,
		},
		MinCreateRole: shared.RoleTeacher,
	},
}

// Catalog lists the kinds the given role may create.
func (svc *GameService) Catalog(role string) []dto.GameKind {
	out := make([]dto.GameKind, 0, len(gameKinds))
	for _, kind := range gameKinds {
		if shared.RoleLevel(role) >= shared.RoleLevel(kind.MinCreateRole) {
			out = append(out, kind.GameKind)
		}
	}
	return out
}

func (svc *GameService) kindByID(id string) (*gameKindSpec, bool) {
	for i := range gameKinds {
		if gameKinds[i].ID == id {
			return &gameKinds[i], true
		}
	}
	return nil, false
}

// ==================== CREATE ====================

func (svc *GameService) CreateGame(creatorID, creatorRole string, req dto.CreateGameRequest) (*dto.CreateGameResponse, error) {
	kind, ok := svc.kindByID(req.GameKind)
	if !ok {
		return nil, shared.ErrBadRequest("Unknown game kind")
	}
	if shared.RoleLevel(creatorRole) < shared.RoleLevel(kind.MinCreateRole) {
		return nil, shared.ErrForbidden("Your role cannot create this game kind")
	}

	cfg, err := svc.buildConfig(kind, req.CustomConfig)
	if err != nil {
		return nil, err
	}

	rawCfg, err := json.Marshal(cfg)
	if err != nil {
		return nil, err
	}

	code, err := svc.generateCode()
	if err != nil {
		return nil, err
	}

	game := &model.GameInstance{
		ID:                   uuid.New().String(),
		Code:                 code,
		GameKind:             kind.ID,
		Type:                 kind.Type,
		CreatedBy:            creatorID,
		CreatorParticipating: kind.Type == shared.GameTypeSinglePlayer,
		Status:               shared.GameStatusWaiting,
		CustomConfig:         rawCfg,
	}

	if err := svc.sqlSvc.Games().CreateGame(game); err != nil {
		return nil, svc.sqlSvc.HandleError(err)
	}

	// Single-player games play solo: the creator is the only participant
	// and the game starts the moment it exists.
	if game.IsSinglePlayer() {
		if _, err := svc.sqlSvc.Games().AddParticipant(game.ID, creatorID); err != nil {
			return nil, svc.sqlSvc.HandleError(err)
		}
		if err := svc.sqlSvc.Games().StartGame(game.Code, time.Now()); err != nil {
			return nil, svc.sqlSvc.HandleError(err)
		}
	}

	svc.invalidateCache(game.Code)
	log.WithFields(log.Fields{"code": game.Code, "kind": kind.ID, "creator": creatorID}).Info("Game created")

	return &dto.CreateGameResponse{
		InstanceID: game.ID,
		Code:       game.Code,
		GameKind:   game.GameKind,
		Type:       game.Type,
	}, nil
}

func (svc *GameService) buildConfig(kind *gameKindSpec, raw json.RawMessage) (*model.GameConfig, error) {
	cfg := &model.GameConfig{
		QuestionCount: 10,
		TimeLimit:     kind.MaxTime,
	}

	if kind.IsCustom && len(raw) > 0 {
		if err := json.Unmarshal(raw, cfg); err != nil {
			return nil, shared.ErrBadRequest("Invalid custom config")
		}
		if cfg.QuestionCount < 1 || cfg.QuestionCount > 50 {
			return nil, shared.ErrBadRequest("Question count must be between 1 and 50")
		}
		if cfg.TimeLimit < 0 || cfg.TimeLimit > 3600 {
			return nil, shared.ErrBadRequest("Time limit must be between 0 and 3600 seconds")
		}
	}

	switch kind.ID {
	case "ai-quiz":
		if cfg.Prompt == "" {
			return nil, shared.ErrBadRequest("AI quiz requires a prompt")
		}
		if cfg.Difficulty < 1 || cfg.Difficulty > 20 {
			return nil, shared.ErrBadRequest("Difficulty must be between 1 and 20")
		}
		questions, err := svc.aiSvc.GenerateQuestions(ctx.Background(), cfg.Prompt, cfg.Difficulty, cfg.QuestionCount, cfg.Language)
		if err != nil {
			return nil, err
		}
		cfg.Questions = questions
	default:
		cfg.Questions = GenerateMathQuestions(cfg.QuestionCount)
	}

	return cfg, nil
}

// generateCode draws short join codes until one is free.
func (svc *GameService) generateCode() (string, error) {
	for attempt := 0; attempt < 10; attempt++ {
		code, err := randomCode(codeLength)
		if err != nil {
			return "", err
		}

		exists, err := svc.sqlSvc.Games().CodeExists(code)
		if err != nil {
			return "", svc.sqlSvc.HandleError(err)
		}
		if !exists {
			return code, nil
		}
	}

	return "", fmt.Errorf("failed to generate a unique game code")
}

func randomCode(length int) (string, error) {
	out := make([]byte, length)
	max := big.NewInt(int64(len(codeAlphabet)))
	for i := range out {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		out[i] = codeAlphabet[n.Int64()]
	}
	return string(out), nil
}

// ==================== MATH QUESTION GENERATION ====================

// GenerateMathQuestions builds count addition/subtraction questions.
// Subtraction operands are ordered so answers are never negative.
func GenerateMathQuestions(count int) []model.GameQuestion {
	questions := make([]model.GameQuestion, 0, count)

	for i := 0; i < count; i++ {
		num1 := randomInt(50) + 1 // 1..50
		num2 := randomInt(30) + 1 // 1..30
		add := randomInt(2) == 0

		var question string
		var answer int
		if add {
			question = fmt.Sprintf("%d + %d", num1, num2)
			answer = num1 + num2
		} else {
			if num2 > num1 {
				num1, num2 = num2, num1
			}
			question = fmt.Sprintf("%d - %d", num1, num2)
			answer = num1 - num2
		}

		questions = append(questions, model.GameQuestion{
			ID:       i,
			Question: question,
			Answer:   fmt.Sprintf("%d", answer),
		})
	}

	return questions
}

func randomInt(n int) int {
	v, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		return 0
	}
	return int(v.Int64())
}

// ==================== LOOKUP & JOIN ====================

func (svc *GameService) GetGame(code string) (*model.GameInstance, error) {
	game, err := svc.sqlSvc.Games().GetGameWithParticipants(code)
	if err != nil {
		return nil, svc.sqlSvc.HandleError(err)
	}
	return game, nil
}

func (svc *GameService) GetGameResponse(code string) (*dto.GameInstanceResponse, error) {
	cached := &dto.GameInstanceResponse{}
	cacheKey := svc.cacheKey(code)
	if err := svc.redisSvc.GetJSON(ctx.Background(), cacheKey, cached); err == nil && cached.Code == code {
		return cached, nil
	}

	game, err := svc.GetGame(code)
	if err != nil {
		return nil, err
	}

	resp := GameToResponse(game)
	if err := svc.redisSvc.Set(ctx.Background(), cacheKey, resp, gameCacheTTL); err != nil {
		log.WithError(err).WithField("code", code).Warn("Failed to cache game")
	}

	return &resp, nil
}

// JoinGame adds an authenticated user to a multiplayer game that has not
// finished yet. Joining twice is a no-op.
func (svc *GameService) JoinGame(code, userID string) (*model.GameInstance, error) {
	game, err := svc.GetGame(code)
	if err != nil {
		return nil, err
	}

	if game.IsSinglePlayer() {
		return nil, shared.ErrUnprocessable("Single-player games cannot be joined")
	}
	if game.Status == shared.GameStatusCompleted {
		return nil, shared.ErrUnprocessable("Game has already finished")
	}

	if progress, err := svc.sqlSvc.Progress().GetProgress(game.Code, userID); err == nil && progress.IsCompleted {
		return nil, shared.ErrConflict("You have already completed this game")
	}

	if _, err := svc.sqlSvc.Games().GetParticipant(game.ID, userID); err == nil {
		return game, nil
	}

	// Late joins into a running game are allowed; the completion
	// threshold recomputes against the grown roster.
	if _, err := svc.sqlSvc.Games().AddParticipant(game.ID, userID); err != nil {
		return nil, svc.sqlSvc.HandleError(err)
	}

	svc.invalidateCache(code)
	return svc.GetGame(code)
}

// JoinGameAsGuest registers an unauthenticated player under a fresh opaque
// guest id. The display name must be free within the game; the identity is
// the generated id, never the name.
func (svc *GameService) JoinGameAsGuest(code string, req dto.JoinGuestRequest) (*model.GameInstance, string, error) {
	game, err := svc.GetGame(code)
	if err != nil {
		return nil, "", err
	}

	if game.IsSinglePlayer() {
		return nil, "", shared.ErrUnprocessable("Single-player games cannot be joined")
	}
	if game.Status == shared.GameStatusCompleted {
		return nil, "", shared.ErrUnprocessable("Game has already finished")
	}

	for _, g := range game.Guests {
		if strings.EqualFold(g.DisplayName, req.GuestName) {
			return nil, "", shared.ErrConflict("That name is already taken in this game")
		}
	}

	guestID := "guest-" + uuid.New().String()
	if _, err := svc.sqlSvc.Games().AddGuest(game.ID, guestID, req.GuestName); err != nil {
		return nil, "", svc.sqlSvc.HandleError(err)
	}

	svc.invalidateCache(code)

	game, err = svc.GetGame(code)
	return game, guestID, err
}

// StartGame flips a waiting game to active. Multiplayer games start on the
// creator's call only; starting an already running game is a no-op so the
// started timestamp is set exactly once.
func (svc *GameService) StartGame(code, userID string) (*model.GameInstance, error) {
	game, err := svc.GetGame(code)
	if err != nil {
		return nil, err
	}

	if game.Status == shared.GameStatusCompleted {
		return nil, shared.ErrUnprocessable("Game has already finished")
	}
	if game.Status == shared.GameStatusActive {
		return game, nil
	}
	if !game.IsSinglePlayer() && game.CreatedBy != userID {
		return nil, shared.ErrForbidden("Only the game creator can start the game")
	}
	if game.ParticipantCount() == 0 {
		return nil, shared.ErrUnprocessable("Cannot start a game with no players")
	}

	if err := svc.sqlSvc.Games().StartGame(code, time.Now()); err != nil {
		return nil, svc.sqlSvc.HandleError(err)
	}

	svc.invalidateCache(code)
	log.WithField("code", code).Info("Game started")

	return svc.GetGame(code)
}

// ==================== QUESTION VIEWS ====================

// Questions serves the question set with answers stripped. Available once
// the game is active.
func (svc *GameService) Questions(code string) (*dto.GameQuestionsResponse, error) {
	game, err := svc.GetGame(code)
	if err != nil {
		return nil, err
	}

	if game.Status == shared.GameStatusWaiting {
		return nil, shared.ErrUnprocessable("Game has not started yet")
	}

	cfg, err := game.Config()
	if err != nil {
		return nil, err
	}

	views := make([]dto.QuestionView, 0, len(cfg.Questions))
	for _, q := range cfg.Questions {
		views = append(views, dto.QuestionView{
			ID:       q.ID,
			Question: q.Question,
			Options:  q.Options,
		})
	}

	return &dto.GameQuestionsResponse{
		Code:           game.Code,
		TotalQuestions: len(cfg.Questions),
		TimeLimit:      cfg.TimeLimit,
		Questions:      views,
	}, nil
}

// Participants assembles the lobby view.
func (svc *GameService) Participants(code string) (*dto.GameParticipantsResponse, error) {
	game, err := svc.GetGame(code)
	if err != nil {
		return nil, err
	}

	out := make([]dto.ParticipantInfo, 0, game.ParticipantCount())
	for _, p := range game.Participants {
		name := p.UserID
		if user, err := svc.sqlSvc.Users().GetUser(p.UserID); err == nil {
			name = user.DisplayName()
		}
		out = append(out, dto.ParticipantInfo{
			ID:       p.UserID,
			Name:     name,
			Type:     shared.ParticipantTypeAuthenticated,
			IsHost:   p.UserID == game.CreatedBy,
			JoinedAt: p.JoinedAt,
		})
	}
	for _, g := range game.Guests {
		out = append(out, dto.ParticipantInfo{
			ID:       g.GuestID,
			Name:     g.DisplayName,
			Type:     shared.ParticipantTypeGuest,
			JoinedAt: g.JoinedAt,
		})
	}

	resp := GameToResponse(game)
	return &dto.GameParticipantsResponse{Game: resp, Participants: out}, nil
}

func (svc *GameService) ListMyGames(userID string, page, limit int) ([]dto.GameInstanceResponse, int64, error) {
	games, total, err := svc.sqlSvc.Games().ListGamesByCreator(userID, page, limit)
	if err != nil {
		return nil, 0, svc.sqlSvc.HandleError(err)
	}

	out := make([]dto.GameInstanceResponse, 0, len(games))
	for i := range games {
		out = append(out, GameToResponse(&games[i]))
	}
	return out, total, nil
}

// ==================== HELPERS ====================

func (svc *GameService) cacheKey(code string) string {
	return "game:" + code
}

func (svc *GameService) invalidateCache(code string) {
	if err := svc.redisSvc.Delete(ctx.Background(), svc.cacheKey(code)); err != nil {
		log.WithError(err).WithField("code", code).Warn("Failed to invalidate game cache")
	}
}

// GameToResponse maps an instance onto its public shape. The stored config
// holds the answer key, so only a sanitized view of it is exposed.
func GameToResponse(game *model.GameInstance) dto.GameInstanceResponse {
	resp := dto.GameInstanceResponse{
		ID:                   game.ID,
		Code:                 game.Code,
		GameKind:             game.GameKind,
		Type:                 game.Type,
		Status:               game.Status,
		CreatedBy:            game.CreatedBy,
		CreatorParticipating: game.CreatorParticipating,
		StartedAt:            game.StartedAt,
		CreatedAt:            game.CreatedAt,
	}

	if cfg, err := game.Config(); err == nil {
		count := cfg.QuestionCount
		if len(cfg.Questions) > 0 {
			count = len(cfg.Questions)
		}
		resp.Config = &dto.GameConfigView{
			QuestionCount: count,
			TimeLimit:     cfg.TimeLimit,
			Difficulty:    cfg.Difficulty,
		}
	}

	return resp
}
