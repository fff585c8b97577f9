package dto

import "time"

type UpdateProgressRequest struct {
	QuestionsAnswered int `json:"questions_answered" validate:"min=0"`
	Score             int `json:"score" validate:"min=0"`
	TotalQuestions    int `json:"total_questions" validate:"min=1"`
}

func (u UpdateProgressRequest) Validate() error {
	return GetValidator().Struct(u)
}

type SubmitAnswerRequest struct {
	QuestionID int    `json:"question_id" validate:"min=0"`
	Answer     string `json:"answer" validate:"required,max=500"`
}

func (s SubmitAnswerRequest) Validate() error {
	return GetValidator().Struct(s)
}

type SubmitAnswerResponse struct {
	Correct           bool `json:"correct"`
	Score             int  `json:"score"`
	QuestionsAnswered int  `json:"questions_answered"`
	TotalQuestions    int  `json:"total_questions"`
	GameCompleted     bool `json:"game_completed"`
}

type ProgressResponse struct {
	GameCode          string    `json:"game_code"`
	ParticipantID     string    `json:"participant_id"`
	ParticipantName   string    `json:"participant_name"`
	ParticipantType   string    `json:"participant_type"`
	QuestionsAnswered int       `json:"questions_answered"`
	TotalQuestions    int       `json:"total_questions"`
	Score             int       `json:"score"`
	IsActive          bool      `json:"is_active"`
	IsCompleted       bool      `json:"is_completed"`
	LastUpdated       time.Time `json:"last_updated"`
}

type CompleteGameResponse struct {
	Completed    bool   `json:"completed"`
	GameStatus   string `json:"game_status"`
	FinalScore   int    `json:"final_score"`
	FinalAnswers int    `json:"final_answers"`
}

// LeaderboardEntry carries a dense competition rank: tied entries share a
// rank and the next distinct entry takes rank position+1 in the tie order.
type LeaderboardEntry struct {
	Rank              int    `json:"rank"`
	ParticipantID     string `json:"participant_id"`
	ParticipantName   string `json:"participant_name"`
	ParticipantType   string `json:"participant_type"`
	QuestionsAnswered int    `json:"questions_answered"`
	Score             int    `json:"score"`
	IsCompleted       bool   `json:"is_completed"`
}

type LeaderboardResponse struct {
	GameCode   string             `json:"game_code"`
	GameStatus string             `json:"game_status"`
	Entries    []LeaderboardEntry `json:"entries"`
}
