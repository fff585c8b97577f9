package services

import (
	gocontext "context"
	"sort"
	"strings"
	"time"

	"github.com/alphabatem/common/context"
	log "github.com/sirupsen/logrus"

	"github.com/uandi-projects/game-platform/dto"
	"github.com/uandi-projects/game-platform/model"
	"github.com/uandi-projects/game-platform/services/repositories"
	"github.com/uandi-projects/game-platform/shared"
)

// ProgressService tracks per-participant progress, grades answers on the
// server, resolves game completion and ranks the leaderboard.
type ProgressService struct {
	context.DefaultService

	sqlSvc   *PostgresService
	redisSvc *RedisService
}

const PROGRESS_SVC = "progress_svc"

func (svc ProgressService) Id() string {
	return PROGRESS_SVC
}

func (svc *ProgressService) Configure(ctx *context.Context) error {
	return svc.DefaultService.Configure(ctx)
}

func (svc *ProgressService) Start() error {
	svc.sqlSvc = svc.Service(POSTGRES_SVC).(*PostgresService)
	svc.redisSvc = svc.Service(REDIS_SVC).(*RedisService)
	return nil
}

// ==================== PARTICIPANT RESOLUTION ====================

// resolveParticipant checks the caller really belongs to the game and
// returns the display name and participant type for the progress row.
func (svc *ProgressService) resolveParticipant(game *model.GameInstance, participantID string) (name, ptype string, err error) {
	if strings.HasPrefix(participantID, "guest-") {
		guest, err := svc.sqlSvc.Games().GetGuest(game.ID, participantID)
		if err != nil {
			return "", "", shared.ErrForbidden("Not a participant of this game")
		}
		return guest.DisplayName, shared.ParticipantTypeGuest, nil
	}

	if _, err := svc.sqlSvc.Games().GetParticipant(game.ID, participantID); err != nil {
		return "", "", shared.ErrForbidden("Not a participant of this game")
	}

	name = participantID
	if user, err := svc.sqlSvc.Users().GetUser(participantID); err == nil {
		name = user.DisplayName()
	}
	return name, shared.ParticipantTypeAuthenticated, nil
}

func (svc *ProgressService) activeGame(gameCode string) (*model.GameInstance, error) {
	game, err := svc.sqlSvc.Games().GetGameWithParticipants(gameCode)
	if err != nil {
		return nil, svc.sqlSvc.HandleError(err)
	}

	switch game.Status {
	case shared.GameStatusWaiting:
		return nil, shared.ErrUnprocessable("Game has not started yet")
	case shared.GameStatusCompleted:
		return nil, shared.ErrUnprocessable("Game has already finished")
	}

	return game, nil
}

// withinTimeLimit enforces the configured limit from the server clock.
func withinTimeLimit(game *model.GameInstance, cfg *model.GameConfig, now time.Time) bool {
	if cfg.TimeLimit <= 0 || game.StartedAt == nil {
		return true
	}
	deadline := game.StartedAt.Add(time.Duration(cfg.TimeLimit) * time.Second)
	return !now.After(deadline)
}

// ==================== PROGRESS UPDATER ====================

// UpdateProgress upserts the caller's counters. Reported values must obey
// score <= questions answered <= total questions; the graded SubmitAnswer
// path is authoritative and this write never resurrects a completed row.
func (svc *ProgressService) UpdateProgress(gameCode, participantID string, req dto.UpdateProgressRequest) (*dto.ProgressResponse, error) {
	game, err := svc.activeGame(gameCode)
	if err != nil {
		return nil, err
	}

	name, ptype, err := svc.resolveParticipant(game, participantID)
	if err != nil {
		return nil, err
	}

	cfg, err := game.Config()
	if err != nil {
		return nil, err
	}

	if existing, err := svc.sqlSvc.Progress().GetProgress(gameCode, participantID); err == nil && existing.IsCompleted {
		return nil, shared.ErrUnprocessable("Progress is final after completion")
	}

	total := len(cfg.Questions)
	if total == 0 {
		total = req.TotalQuestions
	}
	if req.QuestionsAnswered > total {
		return nil, shared.ErrBadRequest("Questions answered cannot exceed total questions")
	}
	if req.Score > req.QuestionsAnswered {
		return nil, shared.ErrBadRequest("Score cannot exceed questions answered")
	}

	progress := &model.GameProgress{
		GameCode:          gameCode,
		ParticipantID:     participantID,
		ParticipantName:   name,
		ParticipantType:   ptype,
		QuestionsAnswered: req.QuestionsAnswered,
		TotalQuestions:    total,
		Score:             req.Score,
		IsActive:          true,
	}

	if err := svc.sqlSvc.Progress().UpsertProgress(progress); err != nil {
		return nil, svc.sqlSvc.HandleError(err)
	}

	svc.publishLeaderboard(gameCode)

	return svc.GetProgress(gameCode, participantID)
}

func (svc *ProgressService) GetProgress(gameCode, participantID string) (*dto.ProgressResponse, error) {
	progress, err := svc.sqlSvc.Progress().GetProgress(gameCode, participantID)
	if err != nil {
		return nil, svc.sqlSvc.HandleError(err)
	}
	resp := progressToResponse(progress)
	return &resp, nil
}

// ==================== ANSWER SUBMISSION ====================

// SubmitAnswer grades one answer on the server and derives the caller's
// counters from the stored answer log. Re-submitting a question keeps the
// first answer. Submissions after the time limit are rejected.
func (svc *ProgressService) SubmitAnswer(gameCode, participantID string, req dto.SubmitAnswerRequest) (*dto.SubmitAnswerResponse, error) {
	game, err := svc.activeGame(gameCode)
	if err != nil {
		return nil, err
	}

	name, ptype, err := svc.resolveParticipant(game, participantID)
	if err != nil {
		return nil, err
	}

	cfg, err := game.Config()
	if err != nil {
		return nil, err
	}

	if !withinTimeLimit(game, cfg, time.Now()) {
		return nil, shared.ErrUnprocessable("Time limit exceeded")
	}

	var question *model.GameQuestion
	for i := range cfg.Questions {
		if cfg.Questions[i].ID == req.QuestionID {
			question = &cfg.Questions[i]
			break
		}
	}
	if question == nil {
		return nil, shared.ErrBadRequest("Unknown question")
	}

	correct := gradeAnswer(question.Answer, req.Answer)

	answer := &model.GameAnswer{
		GameCode:      gameCode,
		ParticipantID: participantID,
		QuestionID:    req.QuestionID,
		Answer:        req.Answer,
		IsCorrect:     correct,
	}

	// The answer write, the recount and the progress upsert commit
	// together so concurrent submissions cannot persist stale counters.
	var answered, right int
	err = svc.sqlSvc.Progress().Transaction(func(tx *repositories.ProgressRepository) error {
		recorded, err := tx.RecordAnswer(answer)
		if err != nil {
			return err
		}
		if !recorded {
			// First write wins: report the standing state untouched.
			stored, err := tx.GetAnswers(gameCode, participantID)
			if err == nil {
				for _, a := range stored {
					if a.QuestionID == req.QuestionID {
						correct = a.IsCorrect
						break
					}
				}
			}
		}

		answered, right, err = tx.AnswerTotals(gameCode, participantID)
		if err != nil {
			return err
		}

		return tx.UpsertProgress(&model.GameProgress{
			GameCode:          gameCode,
			ParticipantID:     participantID,
			ParticipantName:   name,
			ParticipantType:   ptype,
			QuestionsAnswered: answered,
			TotalQuestions:    len(cfg.Questions),
			Score:             right,
			IsActive:          true,
		})
	})
	if err != nil {
		return nil, svc.sqlSvc.HandleError(err)
	}

	resp := &dto.SubmitAnswerResponse{
		Correct:           correct,
		Score:             right,
		QuestionsAnswered: answered,
		TotalQuestions:    len(cfg.Questions),
	}

	if answered >= len(cfg.Questions) {
		if _, err := svc.CompleteGame(gameCode, participantID); err != nil {
			log.WithError(err).WithFields(log.Fields{"code": gameCode, "participant": participantID}).
				Warn("Auto-completion failed")
		} else {
			resp.GameCompleted = true
		}
	}

	svc.publishLeaderboard(gameCode)

	return resp, nil
}

// gradeAnswer compares loosely: case and surrounding whitespace never make
// an answer wrong.
func gradeAnswer(expected, got string) bool {
	return strings.EqualFold(strings.TrimSpace(expected), strings.TrimSpace(got))
}

// ==================== COMPLETION RESOLVER ====================

// CompleteGame finalizes the caller's run and, when the game's completion
// condition is met, flips the instance to completed. The participant flag,
// the count and the status flip happen in one transaction.
func (svc *ProgressService) CompleteGame(gameCode, participantID string) (*dto.CompleteGameResponse, error) {
	game, err := svc.sqlSvc.Games().GetGameWithParticipants(gameCode)
	if err != nil {
		return nil, svc.sqlSvc.HandleError(err)
	}
	if game.Status == shared.GameStatusWaiting {
		return nil, shared.ErrUnprocessable("Game has not started yet")
	}

	if _, _, err := svc.resolveParticipant(game, participantID); err != nil {
		return nil, err
	}

	var final *model.GameProgress
	gameStatus := game.Status

	err = svc.sqlSvc.Progress().Transaction(func(tx *repositories.ProgressRepository) error {
		if err := tx.MarkCompleted(gameCode, participantID); err != nil {
			return err
		}

		row, err := tx.GetProgress(gameCode, participantID)
		if err != nil {
			return err
		}
		final = row

		done := false
		if game.IsSinglePlayer() {
			// Single-player: the only run finishing finishes the game.
			done = true
		} else {
			completed, err := tx.CountCompleted(gameCode)
			if err != nil {
				return err
			}
			done = completed >= int64(game.ParticipantCount())
		}

		if done {
			if err := tx.CompleteGameInstance(gameCode); err != nil {
				return err
			}
			gameStatus = shared.GameStatusCompleted
		}

		return nil
	})
	if err != nil {
		return nil, svc.sqlSvc.HandleError(err)
	}

	svc.publishLeaderboard(gameCode)
	log.WithFields(log.Fields{"code": gameCode, "participant": participantID, "status": gameStatus}).
		Info("Participant completed")

	return &dto.CompleteGameResponse{
		Completed:    true,
		GameStatus:   gameStatus,
		FinalScore:   final.Score,
		FinalAnswers: final.QuestionsAnswered,
	}, nil
}

// ExitGame withdraws the caller from the running game. The run is closed
// without a final score, the row leaves the leaderboard and the
// participant cannot rejoin.
func (svc *ProgressService) ExitGame(gameCode, participantID string) error {
	game, err := svc.sqlSvc.Games().GetGameWithParticipants(gameCode)
	if err != nil {
		return svc.sqlSvc.HandleError(err)
	}

	name, ptype, err := svc.resolveParticipant(game, participantID)
	if err != nil {
		return err
	}

	err = svc.sqlSvc.Progress().Transaction(func(tx *repositories.ProgressRepository) error {
		if _, err := tx.GetProgress(gameCode, participantID); err != nil {
			// No progress yet: record the abandoned run at zero.
			row := &model.GameProgress{
				GameCode:        gameCode,
				ParticipantID:   participantID,
				ParticipantName: name,
				ParticipantType: ptype,
			}
			if cfg, err := game.Config(); err == nil {
				row.TotalQuestions = len(cfg.Questions)
			}
			if err := tx.UpsertProgress(row); err != nil {
				return err
			}
		}
		return tx.MarkCompleted(gameCode, participantID)
	})
	if err != nil {
		return svc.sqlSvc.HandleError(err)
	}

	svc.publishLeaderboard(gameCode)
	return nil
}

// ==================== LEADERBOARD RANKER ====================

// GetLeaderboard ranks active progress rows. Completed and exited
// participants have is_active false and drop off; ties on both counters
// share a rank and the next distinct row takes its positional rank.
func (svc *ProgressService) GetLeaderboard(gameCode string) (*dto.LeaderboardResponse, error) {
	game, err := svc.sqlSvc.Games().GetGameByCode(gameCode)
	if err != nil {
		return nil, svc.sqlSvc.HandleError(err)
	}

	rows, err := svc.sqlSvc.Progress().GetActiveProgress(gameCode)
	if err != nil {
		return nil, svc.sqlSvc.HandleError(err)
	}

	return &dto.LeaderboardResponse{
		GameCode:   gameCode,
		GameStatus: game.Status,
		Entries:    RankProgress(rows),
	}, nil
}

// RankProgress assigns competition ranks to pre-sorted rows: equal
// (questions answered, score) pairs tie, the row after a tie of n takes
// rank position+1.
func RankProgress(rows []model.GameProgress) []dto.LeaderboardEntry {
	entries := make([]dto.LeaderboardEntry, 0, len(rows))

	rank := 0
	for i, row := range rows {
		if i == 0 || row.QuestionsAnswered != rows[i-1].QuestionsAnswered || row.Score != rows[i-1].Score {
			rank = i + 1
		}
		entries = append(entries, dto.LeaderboardEntry{
			Rank:              rank,
			ParticipantID:     row.ParticipantID,
			ParticipantName:   row.ParticipantName,
			ParticipantType:   row.ParticipantType,
			QuestionsAnswered: row.QuestionsAnswered,
			Score:             row.Score,
			IsCompleted:       row.IsCompleted,
		})
	}

	return entries
}

// GetResults is the post-game view: every progress row ranked, including
// finished and exited players.
func (svc *ProgressService) GetResults(gameCode string) (*dto.LeaderboardResponse, error) {
	game, err := svc.sqlSvc.Games().GetGameByCode(gameCode)
	if err != nil {
		return nil, svc.sqlSvc.HandleError(err)
	}
	if game.Status != shared.GameStatusCompleted {
		return nil, shared.ErrUnprocessable("Results are available once the game finishes")
	}

	rows, err := svc.sqlSvc.Progress().GetGameProgress(gameCode)
	if err != nil {
		return nil, svc.sqlSvc.HandleError(err)
	}

	SortProgress(rows)

	return &dto.LeaderboardResponse{
		GameCode:   gameCode,
		GameStatus: game.Status,
		Entries:    RankProgress(rows),
	}, nil
}

// SortProgress orders rows the way the ranker expects: questions answered
// descending, score breaking ties.
func SortProgress(rows []model.GameProgress) {
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].QuestionsAnswered != rows[j].QuestionsAnswered {
			return rows[i].QuestionsAnswered > rows[j].QuestionsAnswered
		}
		return rows[i].Score > rows[j].Score
	})
}

// ==================== LIVE UPDATES ====================

// LeaderboardChannel is the redis pub/sub channel for one game's pushes.
func LeaderboardChannel(gameCode string) string {
	return "leaderboard:" + gameCode
}

// LeaderboardCacheKey holds the latest snapshot for websocket replay.
func LeaderboardCacheKey(gameCode string) string {
	return "game:" + gameCode + ":leaderboard"
}

const leaderboardCacheTTL = 10 * time.Minute

// CachedLeaderboard returns the last published snapshot, if any.
func (svc *ProgressService) CachedLeaderboard(gameCode string) (*dto.LeaderboardResponse, bool) {
	board := &dto.LeaderboardResponse{}
	err := svc.redisSvc.GetJSON(gocontext.Background(), LeaderboardCacheKey(gameCode), board)
	if err != nil || board.GameCode != gameCode {
		return nil, false
	}
	return board, true
}

func (svc *ProgressService) publishLeaderboard(gameCode string) {
	board, err := svc.GetLeaderboard(gameCode)
	if err != nil {
		log.WithError(err).WithField("code", gameCode).Warn("Failed to build leaderboard for publish")
		return
	}

	bg := gocontext.Background()
	if err := svc.redisSvc.Set(bg, LeaderboardCacheKey(gameCode), board, leaderboardCacheTTL); err != nil {
		log.WithError(err).WithField("code", gameCode).Warn("Failed to cache leaderboard")
	}
	if err := svc.redisSvc.Publish(bg, LeaderboardChannel(gameCode), board); err != nil {
		log.WithError(err).WithField("code", gameCode).Warn("Failed to publish leaderboard")
	}
}

func progressToResponse(progress *model.GameProgress) dto.ProgressResponse {
	return dto.ProgressResponse{
		GameCode:          progress.GameCode,
		ParticipantID:     progress.ParticipantID,
		ParticipantName:   progress.ParticipantName,
		ParticipantType:   progress.ParticipantType,
		QuestionsAnswered: progress.QuestionsAnswered,
		TotalQuestions:    progress.TotalQuestions,
		Score:             progress.Score,
		IsActive:          progress.IsActive,
		IsCompleted:       progress.IsCompleted,
		LastUpdated:       progress.LastUpdated,
	}
}
