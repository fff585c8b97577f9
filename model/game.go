package model

import (
	"encoding/json"
	"time"
)

// GameInstance is one playable session of a game kind, identified by a
// short human-enterable code. Status only moves forward:
// waiting -> active -> completed.
type GameInstance struct {
	ID       string `json:"id" gorm:"primaryKey"`
	Code     string `json:"code" gorm:"uniqueIndex;not null;size:12"`
	GameKind string `json:"game_kind" gorm:"index;not null;size:50"`
	Type     string `json:"type" gorm:"not null;size:20"` // single-player | multiplayer

	CreatedBy            string `json:"created_by" gorm:"index;not null"`
	CreatorParticipating bool   `json:"creator_participating" gorm:"default:false"`

	Status    string     `json:"status" gorm:"not null;default:waiting;size:20"`
	StartedAt *time.Time `json:"started_at,omitempty"`

	// CustomConfig carries variant-specific settings: time limit, question
	// count and the generated question set. Fixed at creation.
	CustomConfig json.RawMessage `json:"custom_config,omitempty" gorm:"type:jsonb"`

	Participants []GameParticipant `json:"participants,omitempty" gorm:"foreignKey:GameInstanceID"`
	Guests       []GameGuest       `json:"guests,omitempty" gorm:"foreignKey:GameInstanceID"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (g *GameInstance) IsSinglePlayer() bool {
	return g.Type == "single-player"
}

// ParticipantCount is the completion denominator: every registered player,
// authenticated or guest.
func (g *GameInstance) ParticipantCount() int {
	return len(g.Participants) + len(g.Guests)
}

type GameParticipant struct {
	ID             string    `json:"id" gorm:"primaryKey"`
	GameInstanceID string    `json:"game_instance_id" gorm:"uniqueIndex:idx_game_user;not null"`
	UserID         string    `json:"user_id" gorm:"uniqueIndex:idx_game_user;not null"`
	JoinedAt       time.Time `json:"joined_at" gorm:"not null"`
}

// GameGuest is an unauthenticated joiner. GuestID is a generated opaque id
// and is the storage key for progress; the display name is presentational.
type GameGuest struct {
	ID             string    `json:"id" gorm:"primaryKey"`
	GameInstanceID string    `json:"game_instance_id" gorm:"uniqueIndex:idx_game_guest;not null"`
	GuestID        string    `json:"guest_id" gorm:"uniqueIndex:idx_game_guest;not null"`
	DisplayName    string    `json:"display_name" gorm:"not null"`
	JoinedAt       time.Time `json:"joined_at" gorm:"not null"`
}

// GameQuestion is one entry of a generated question set, stored inside
// GameInstance.CustomConfig.
type GameQuestion struct {
	ID       int      `json:"id"`
	Question string   `json:"question"`
	Answer   string   `json:"answer"`
	Options  []string `json:"options,omitempty"` // MCQ kinds only
}

// GameConfig is the decoded shape of GameInstance.CustomConfig.
type GameConfig struct {
	QuestionCount int            `json:"question_count,omitempty"`
	TimeLimit     int            `json:"time_limit,omitempty"` // seconds
	Difficulty    int            `json:"difficulty,omitempty"` // 1..20, ai-quiz only
	Prompt        string         `json:"prompt,omitempty"`     // ai-quiz only
	Language      string         `json:"language,omitempty"`   // ai-quiz only
	Questions     []GameQuestion `json:"questions,omitempty"`
}

func (g *GameInstance) Config() (*GameConfig, error) {
	cfg := &GameConfig{}
	if len(g.CustomConfig) == 0 {
		return cfg, nil
	}
	if err := json.Unmarshal(g.CustomConfig, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
