package services

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/uandi-projects/game-platform/dto"
	"github.com/uandi-projects/game-platform/model"
	"github.com/uandi-projects/game-platform/services/repositories"
	"github.com/uandi-projects/game-platform/shared"
)

func TestRankProgressTiesShareRank(t *testing.T) {
	rows := []model.GameProgress{
		{ParticipantID: "a", QuestionsAnswered: 5, Score: 5},
		{ParticipantID: "b", QuestionsAnswered: 5, Score: 5},
		{ParticipantID: "c", QuestionsAnswered: 5, Score: 4},
		{ParticipantID: "d", QuestionsAnswered: 3, Score: 2},
	}

	entries := RankProgress(rows)
	require.Len(t, entries, 4)
	assert.Equal(t, []int{1, 1, 3, 4}, []int{entries[0].Rank, entries[1].Rank, entries[2].Rank, entries[3].Rank})
}

func TestSortProgressOrdersByAnsweredThenScore(t *testing.T) {
	rows := []model.GameProgress{
		{ParticipantID: "low", QuestionsAnswered: 1, Score: 1},
		{ParticipantID: "tiebreak", QuestionsAnswered: 4, Score: 2},
		{ParticipantID: "top", QuestionsAnswered: 4, Score: 4},
	}

	SortProgress(rows)

	assert.Equal(t, "top", rows[0].ParticipantID)
	assert.Equal(t, "tiebreak", rows[1].ParticipantID)
	assert.Equal(t, "low", rows[2].ParticipantID)
}

func TestUpdateProgressUpsertsLastWriteWins(t *testing.T) {
	sql := newTestSQL(t)
	svc := newTestProgressService(sql)

	game := seedGame(t, sql, testGameOpts{Questions: mathSet()})
	guestID := seedGuest(t, sql, game, "speedy")

	first, err := svc.UpdateProgress(game.Code, guestID, dto.UpdateProgressRequest{QuestionsAnswered: 1, Score: 1, TotalQuestions: 2})
	require.NoError(t, err)
	assert.Equal(t, 1, first.QuestionsAnswered)
	assert.Equal(t, "speedy", first.ParticipantName)
	assert.Equal(t, shared.ParticipantTypeGuest, first.ParticipantType)

	second, err := svc.UpdateProgress(game.Code, guestID, dto.UpdateProgressRequest{QuestionsAnswered: 2, Score: 1, TotalQuestions: 2})
	require.NoError(t, err)
	assert.Equal(t, 2, second.QuestionsAnswered)
	assert.Equal(t, 1, second.Score)

	rows, err := sql.Progress().GetGameProgress(game.Code)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

func TestUpdateProgressRejectsInvariantViolations(t *testing.T) {
	sql := newTestSQL(t)
	svc := newTestProgressService(sql)

	game := seedGame(t, sql, testGameOpts{Questions: mathSet()})
	guestID := seedGuest(t, sql, game, "speedy")

	_, err := svc.UpdateProgress(game.Code, guestID, dto.UpdateProgressRequest{QuestionsAnswered: 3, Score: 0, TotalQuestions: 2})
	assertAppError(t, err, 400)

	_, err = svc.UpdateProgress(game.Code, guestID, dto.UpdateProgressRequest{QuestionsAnswered: 1, Score: 2, TotalQuestions: 2})
	assertAppError(t, err, 400)
}

func TestUpdateProgressRejectsOutsiders(t *testing.T) {
	sql := newTestSQL(t)
	svc := newTestProgressService(sql)

	game := seedGame(t, sql, testGameOpts{Questions: mathSet()})

	_, err := svc.UpdateProgress(game.Code, "guest-stranger", dto.UpdateProgressRequest{QuestionsAnswered: 1, Score: 1, TotalQuestions: 2})
	assertAppError(t, err, 403)
}

func TestUpdateProgressRequiresActiveGame(t *testing.T) {
	sql := newTestSQL(t)
	svc := newTestProgressService(sql)

	game := seedGame(t, sql, testGameOpts{Status: shared.GameStatusWaiting, Questions: mathSet()})
	guestID := seedGuest(t, sql, game, "early")

	_, err := svc.UpdateProgress(game.Code, guestID, dto.UpdateProgressRequest{QuestionsAnswered: 1, Score: 1, TotalQuestions: 2})
	assertAppError(t, err, 422)
}

func TestUpdateProgressIsFinalAfterCompletion(t *testing.T) {
	sql := newTestSQL(t)
	svc := newTestProgressService(sql)

	game := seedGame(t, sql, testGameOpts{Questions: mathSet()})
	guestID := seedGuest(t, sql, game, "done")

	_, err := svc.UpdateProgress(game.Code, guestID, dto.UpdateProgressRequest{QuestionsAnswered: 2, Score: 2, TotalQuestions: 2})
	require.NoError(t, err)
	require.NoError(t, sql.Progress().MarkCompleted(game.Code, guestID))

	_, err = svc.UpdateProgress(game.Code, guestID, dto.UpdateProgressRequest{QuestionsAnswered: 1, Score: 0, TotalQuestions: 2})
	assertAppError(t, err, 422)
}

func TestSubmitAnswerDerivesScoreFromAnswerLog(t *testing.T) {
	sql := newTestSQL(t)
	svc := newTestProgressService(sql)

	game := seedGame(t, sql, testGameOpts{Questions: mathSet()})
	guestID := seedGuest(t, sql, game, "player")

	resp, err := svc.SubmitAnswer(game.Code, guestID, dto.SubmitAnswerRequest{QuestionID: 0, Answer: " 4 "})
	require.NoError(t, err)
	assert.True(t, resp.Correct)
	assert.Equal(t, 1, resp.Score)
	assert.Equal(t, 1, resp.QuestionsAnswered)
	assert.False(t, resp.GameCompleted)

	resp, err = svc.SubmitAnswer(game.Code, guestID, dto.SubmitAnswerRequest{QuestionID: 1, Answer: "99"})
	require.NoError(t, err)
	assert.False(t, resp.Correct)
	assert.Equal(t, 1, resp.Score)
	assert.Equal(t, 2, resp.QuestionsAnswered)
	assert.True(t, resp.GameCompleted)

	game2, err := sql.Games().GetGameByCode(game.Code)
	require.NoError(t, err)
	assert.Equal(t, shared.GameStatusCompleted, game2.Status)
}

func TestSubmitAnswerFirstWriteWins(t *testing.T) {
	sql := newTestSQL(t)
	svc := newTestProgressService(sql)

	game := seedGame(t, sql, testGameOpts{Questions: mathSet()})
	guestID := seedGuest(t, sql, game, "player")

	resp, err := svc.SubmitAnswer(game.Code, guestID, dto.SubmitAnswerRequest{QuestionID: 0, Answer: "9"})
	require.NoError(t, err)
	assert.False(t, resp.Correct)

	// The later, correct answer must not overwrite the recorded one.
	resp, err = svc.SubmitAnswer(game.Code, guestID, dto.SubmitAnswerRequest{QuestionID: 0, Answer: "4"})
	require.NoError(t, err)
	assert.False(t, resp.Correct)
	assert.Equal(t, 0, resp.Score)
	assert.Equal(t, 1, resp.QuestionsAnswered)
}

func TestSubmitAnswerEnforcesTimeLimit(t *testing.T) {
	sql := newTestSQL(t)
	svc := newTestProgressService(sql)

	started := time.Now().Add(-10 * time.Minute)
	game := seedGame(t, sql, testGameOpts{Questions: mathSet(), TimeLimit: 60, StartedAt: &started})
	guestID := seedGuest(t, sql, game, "late")

	_, err := svc.SubmitAnswer(game.Code, guestID, dto.SubmitAnswerRequest{QuestionID: 0, Answer: "4"})
	assertAppError(t, err, 422)
}

func TestSubmitAnswerUnknownQuestion(t *testing.T) {
	sql := newTestSQL(t)
	svc := newTestProgressService(sql)

	game := seedGame(t, sql, testGameOpts{Questions: mathSet()})
	guestID := seedGuest(t, sql, game, "player")

	_, err := svc.SubmitAnswer(game.Code, guestID, dto.SubmitAnswerRequest{QuestionID: 42, Answer: "4"})
	assertAppError(t, err, 400)
}

func TestCompleteGameMultiplayerThreshold(t *testing.T) {
	sql := newTestSQL(t)
	svc := newTestProgressService(sql)

	game := seedGame(t, sql, testGameOpts{Questions: mathSet()})
	g1 := seedGuest(t, sql, game, "one")
	g2 := seedGuest(t, sql, game, "two")
	g3 := seedGuest(t, sql, game, "three")

	for _, id := range []string{g1, g2, g3} {
		_, err := svc.UpdateProgress(game.Code, id, dto.UpdateProgressRequest{QuestionsAnswered: 2, Score: 1, TotalQuestions: 2})
		require.NoError(t, err)
	}

	resp, err := svc.CompleteGame(game.Code, g1)
	require.NoError(t, err)
	assert.Equal(t, shared.GameStatusActive, resp.GameStatus)

	resp, err = svc.CompleteGame(game.Code, g2)
	require.NoError(t, err)
	assert.Equal(t, shared.GameStatusActive, resp.GameStatus)

	resp, err = svc.CompleteGame(game.Code, g3)
	require.NoError(t, err)
	assert.Equal(t, shared.GameStatusCompleted, resp.GameStatus)

	game2, err := sql.Games().GetGameByCode(game.Code)
	require.NoError(t, err)
	assert.Equal(t, shared.GameStatusCompleted, game2.Status)
}

func TestCompleteGameSinglePlayerFinishesImmediately(t *testing.T) {
	sql := newTestSQL(t)
	svc := newTestProgressService(sql)

	userID := "player-1"
	game := seedGame(t, sql, testGameOpts{Type: shared.GameTypeSinglePlayer, Questions: mathSet(), CreatedBy: userID})
	_, err := sql.Games().AddParticipant(game.ID, userID)
	require.NoError(t, err)

	_, err = svc.UpdateProgress(game.Code, userID, dto.UpdateProgressRequest{QuestionsAnswered: 2, Score: 2, TotalQuestions: 2})
	require.NoError(t, err)

	resp, err := svc.CompleteGame(game.Code, userID)
	require.NoError(t, err)
	assert.Equal(t, shared.GameStatusCompleted, resp.GameStatus)
	assert.Equal(t, 2, resp.FinalScore)
}

func TestLeaderboardDropsCompletedAndExited(t *testing.T) {
	sql := newTestSQL(t)
	svc := newTestProgressService(sql)

	game := seedGame(t, sql, testGameOpts{Questions: mathSet()})
	g1 := seedGuest(t, sql, game, "active")
	g2 := seedGuest(t, sql, game, "finished")

	for _, id := range []string{g1, g2} {
		_, err := svc.UpdateProgress(game.Code, id, dto.UpdateProgressRequest{QuestionsAnswered: 1, Score: 1, TotalQuestions: 2})
		require.NoError(t, err)
	}

	_, err := svc.CompleteGame(game.Code, g2)
	require.NoError(t, err)

	board, err := svc.GetLeaderboard(game.Code)
	require.NoError(t, err)
	require.Len(t, board.Entries, 1)
	assert.Equal(t, g1, board.Entries[0].ParticipantID)
	assert.Equal(t, 1, board.Entries[0].Rank)
}

func TestResultsIncludeEveryParticipant(t *testing.T) {
	sql := newTestSQL(t)
	svc := newTestProgressService(sql)

	game := seedGame(t, sql, testGameOpts{Questions: mathSet()})
	g1 := seedGuest(t, sql, game, "winner")
	g2 := seedGuest(t, sql, game, "runner-up")

	_, err := svc.UpdateProgress(game.Code, g1, dto.UpdateProgressRequest{QuestionsAnswered: 2, Score: 2, TotalQuestions: 2})
	require.NoError(t, err)
	_, err = svc.UpdateProgress(game.Code, g2, dto.UpdateProgressRequest{QuestionsAnswered: 2, Score: 1, TotalQuestions: 2})
	require.NoError(t, err)

	_, err = svc.GetResults(game.Code)
	assertAppError(t, err, 422)

	_, err = svc.CompleteGame(game.Code, g1)
	require.NoError(t, err)
	_, err = svc.CompleteGame(game.Code, g2)
	require.NoError(t, err)

	results, err := svc.GetResults(game.Code)
	require.NoError(t, err)
	require.Len(t, results.Entries, 2)
	assert.Equal(t, g1, results.Entries[0].ParticipantID)
	assert.Equal(t, 1, results.Entries[0].Rank)
	assert.Equal(t, g2, results.Entries[1].ParticipantID)
	assert.Equal(t, 2, results.Entries[1].Rank)
}

func TestExitGameClosesRunWithoutScore(t *testing.T) {
	sql := newTestSQL(t)
	svc := newTestProgressService(sql)

	game := seedGame(t, sql, testGameOpts{Questions: mathSet()})
	guestID := seedGuest(t, sql, game, "quitter")

	require.NoError(t, svc.ExitGame(game.Code, guestID))

	progress, err := sql.Progress().GetProgress(game.Code, guestID)
	require.NoError(t, err)
	assert.True(t, progress.IsCompleted)
	assert.False(t, progress.IsActive)
	assert.Equal(t, 0, progress.Score)

	board, err := svc.GetLeaderboard(game.Code)
	require.NoError(t, err)
	assert.Empty(t, board.Entries)
}

func assertAppError(t *testing.T, err error, status int) {
	t.Helper()

	require.Error(t, err)
	appErr, ok := shared.GetAppError(err)
	require.True(t, ok, "expected AppError, got %v", err)
	assert.Equal(t, status, appErr.StatusCode)
}

func TestCompleteGameRecountsAfterLateJoin(t *testing.T) {
	sql := newTestSQL(t)
	svc := newTestProgressService(sql)
	gameSvc := newTestGameService(sql)

	game := seedGame(t, sql, testGameOpts{Questions: mathSet()})
	g1 := seedGuest(t, sql, game, "one")
	g2 := seedGuest(t, sql, game, "two")

	for _, id := range []string{g1, g2} {
		_, err := svc.UpdateProgress(game.Code, id, dto.UpdateProgressRequest{QuestionsAnswered: 2, Score: 1, TotalQuestions: 2})
		require.NoError(t, err)
	}

	resp, err := svc.CompleteGame(game.Code, g1)
	require.NoError(t, err)
	assert.Equal(t, shared.GameStatusActive, resp.GameStatus)

	// A player joins the running game after the first completion; the
	// completion threshold grows with the roster.
	_, err = gameSvc.JoinGame(game.Code, "late")
	require.NoError(t, err)

	resp, err = svc.CompleteGame(game.Code, g2)
	require.NoError(t, err)
	assert.Equal(t, shared.GameStatusActive, resp.GameStatus)

	_, err = svc.UpdateProgress(game.Code, "late", dto.UpdateProgressRequest{QuestionsAnswered: 2, Score: 2, TotalQuestions: 2})
	require.NoError(t, err)

	resp, err = svc.CompleteGame(game.Code, "late")
	require.NoError(t, err)
	assert.Equal(t, shared.GameStatusCompleted, resp.GameStatus)
}

func TestAnswerWritesRollBackTogether(t *testing.T) {
	sql := newTestSQL(t)

	game := seedGame(t, sql, testGameOpts{Questions: mathSet()})
	guestID := seedGuest(t, sql, game, "one")

	boom := errors.New("boom")
	err := sql.Progress().Transaction(func(tx *repositories.ProgressRepository) error {
		recorded, err := tx.RecordAnswer(&model.GameAnswer{
			GameCode:      game.Code,
			ParticipantID: guestID,
			QuestionID:    0,
			Answer:        "4",
			IsCorrect:     true,
		})
		require.NoError(t, err)
		require.True(t, recorded)
		return boom
	})
	require.ErrorIs(t, err, boom)

	// The aborted transaction leaves no trace in the answer log.
	answered, correct, err := sql.Progress().AnswerTotals(game.Code, guestID)
	require.NoError(t, err)
	assert.Zero(t, answered)
	assert.Zero(t, correct)
}
