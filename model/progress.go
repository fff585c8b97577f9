package model

import "time"

// GameProgress is the per-participant progress record for one game
// instance. At most one row exists per (game_code, participant_id);
// writes are upserts.
type GameProgress struct {
	ID              string `json:"id" gorm:"primaryKey"`
	GameCode        string `json:"game_code" gorm:"uniqueIndex:idx_progress_participant;index;not null;size:12"`
	ParticipantID   string `json:"participant_id" gorm:"uniqueIndex:idx_progress_participant;not null"`
	ParticipantName string `json:"participant_name" gorm:"not null"`
	ParticipantType string `json:"participant_type" gorm:"not null;size:20"` // authenticated | guest

	QuestionsAnswered int `json:"questions_answered" gorm:"not null;default:0"`
	TotalQuestions    int `json:"total_questions" gorm:"not null;default:0"`
	Score             int `json:"score" gorm:"not null;default:0"`

	IsActive    bool `json:"is_active" gorm:"not null;default:true"`
	IsCompleted bool `json:"is_completed" gorm:"not null;default:false"`

	LastUpdated time.Time `json:"last_updated" gorm:"not null"`
	CreatedAt   time.Time `json:"created_at"`
}

// GameAnswer is the server-side answer log. Score and progress are derived
// from these rows, never taken from client-reported totals. One row per
// (game_code, participant_id, question_id); the first write wins.
type GameAnswer struct {
	ID            string    `json:"id" gorm:"primaryKey"`
	GameCode      string    `json:"game_code" gorm:"uniqueIndex:idx_answer_question;index;not null;size:12"`
	ParticipantID string    `json:"participant_id" gorm:"uniqueIndex:idx_answer_question;not null"`
	QuestionID    int       `json:"question_id" gorm:"uniqueIndex:idx_answer_question;not null"`
	Answer        string    `json:"answer" gorm:"not null"`
	IsCorrect     bool      `json:"is_correct" gorm:"not null"`
	AnsweredAt    time.Time `json:"answered_at" gorm:"not null"`
}
