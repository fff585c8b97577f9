package dto

import (
	"encoding/json"
	"time"
)

// GameKind is one entry of the fixed game catalog.
type GameKind struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Type        string `json:"type"` // single-player | multiplayer
	Description string `json:"description"`
	ShowTimer   bool   `json:"show_timer"`
	MaxTime     int    `json:"max_time"` // seconds
	IsCustom    bool   `json:"is_custom,omitempty"`
}

type CreateGameRequest struct {
	GameKind     string          `json:"game_kind" validate:"required" example:"multi-player-math"`
	CustomConfig json.RawMessage `json:"custom_config,omitempty"`
}

func (c CreateGameRequest) Validate() error {
	return GetValidator().Struct(c)
}

type CreateGameResponse struct {
	InstanceID string `json:"instance_id"`
	Code       string `json:"code"`
	GameKind   string `json:"game_kind"`
	Type       string `json:"type"`
}

// GameConfigView is the publicly visible slice of a game's config. The
// question set and its answer key stay server-side; questions are served
// answer-free through GameQuestionsResponse once the game is active.
type GameConfigView struct {
	QuestionCount int `json:"question_count,omitempty"`
	TimeLimit     int `json:"time_limit,omitempty"` // seconds
	Difficulty    int `json:"difficulty,omitempty"` // ai-quiz only
}

type GameInstanceResponse struct {
	ID                   string          `json:"id"`
	Code                 string          `json:"code"`
	GameKind             string          `json:"game_kind"`
	Type                 string          `json:"type"`
	Status               string          `json:"status"`
	CreatedBy            string          `json:"created_by"`
	CreatorName          string          `json:"creator_name,omitempty"`
	CreatorParticipating bool            `json:"creator_participating"`
	StartedAt            *time.Time      `json:"started_at,omitempty"`
	Config               *GameConfigView `json:"config,omitempty"`
	CreatedAt            time.Time       `json:"created_at"`
}

type JoinGuestRequest struct {
	GuestName string `json:"guest_name" validate:"required,min=1,max=50" example:"speedy"`
}

func (j JoinGuestRequest) Validate() error {
	return GetValidator().Struct(j)
}

type JoinGuestResponse struct {
	Game    GameInstanceResponse `json:"game"`
	GuestID string               `json:"guest_id"`
}

type ParticipantInfo struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	Type     string    `json:"type"` // authenticated | guest
	IsHost   bool      `json:"is_host"`
	JoinedAt time.Time `json:"joined_at"`
}

type GameParticipantsResponse struct {
	Game         GameInstanceResponse `json:"game"`
	Participants []ParticipantInfo    `json:"participants"`
}

// QuestionView is a question as served to players: the answer is withheld
// while the game is running.
type QuestionView struct {
	ID       int      `json:"id"`
	Question string   `json:"question"`
	Options  []string `json:"options,omitempty"`
}

type GameQuestionsResponse struct {
	Code           string         `json:"code"`
	TotalQuestions int            `json:"total_questions"`
	TimeLimit      int            `json:"time_limit,omitempty"`
	Questions      []QuestionView `json:"questions"`
}

// ==================== AI QUIZ DTOs ====================

type GenerateQuizRequest struct {
	Prompt        string `json:"prompt" validate:"required,min=3,max=2000"`
	Difficulty    int    `json:"difficulty" validate:"required,min=1,max=20"`
	QuestionCount int    `json:"question_count" validate:"required,min=1,max=50"`
	Language      string `json:"language" validate:"omitempty,max=50"`
}

func (g GenerateQuizRequest) Validate() error {
	return GetValidator().Struct(g)
}
