package services

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/uandi-projects/game-platform/dto"
	"github.com/uandi-projects/game-platform/model"
	"github.com/uandi-projects/game-platform/shared"
)

func TestGenerateMathQuestions(t *testing.T) {
	questions := GenerateMathQuestions(25)
	require.Len(t, questions, 25)

	for _, q := range questions {
		parts := strings.Fields(q.Question)
		require.Len(t, parts, 3, "unexpected question shape: %q", q.Question)

		a, err := strconv.Atoi(parts[0])
		require.NoError(t, err)
		b, err := strconv.Atoi(parts[2])
		require.NoError(t, err)

		want := a + b
		if parts[1] == "-" {
			want = a - b
		}
		assert.Equal(t, fmt.Sprintf("%d", want), q.Answer)
		assert.GreaterOrEqual(t, want, 0, "math answers stay non-negative")
	}
}

func TestRandomCodeShape(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		code, err := randomCode(codeLength)
		require.NoError(t, err)
		require.Len(t, code, codeLength)
		for _, r := range code {
			assert.Contains(t, codeAlphabet, string(r))
		}
		seen[code] = true
	}
	assert.Greater(t, len(seen), 45, "codes should rarely collide")
}

func TestCatalogFiltersByRole(t *testing.T) {
	svc := newTestGameService(newTestSQL(t))

	studentKinds := svc.Catalog(shared.RoleStudent)
	ids := map[string]bool{}
	for _, k := range studentKinds {
		ids[k.ID] = true
	}
	assert.True(t, ids["single-player-math"])
	assert.True(t, ids["custom-math-quiz"])
	assert.False(t, ids["multi-player-math"])
	assert.False(t, ids["ai-quiz"])

	teacherKinds := svc.Catalog(shared.RoleTeacher)
	assert.Len(t, teacherKinds, len(gameKinds))
}

func TestCreateGameSinglePlayerStartsImmediately(t *testing.T) {
	sql := newTestSQL(t)
	svc := newTestGameService(sql)

	resp, err := svc.CreateGame("student-1", shared.RoleStudent, dto.CreateGameRequest{GameKind: "single-player-math"})
	require.NoError(t, err)
	require.Len(t, resp.Code, codeLength)

	game, err := sql.Games().GetGameWithParticipants(resp.Code)
	require.NoError(t, err)
	assert.Equal(t, shared.GameStatusActive, game.Status)
	assert.NotNil(t, game.StartedAt)
	assert.True(t, game.CreatorParticipating)
	require.Len(t, game.Participants, 1)
	assert.Equal(t, "student-1", game.Participants[0].UserID)

	cfg, err := game.Config()
	require.NoError(t, err)
	assert.Len(t, cfg.Questions, 10)
}

func TestCreateGameEnforcesRole(t *testing.T) {
	svc := newTestGameService(newTestSQL(t))

	_, err := svc.CreateGame("student-1", shared.RoleStudent, dto.CreateGameRequest{GameKind: "multi-player-math"})
	assertAppError(t, err, 403)

	_, err = svc.CreateGame("student-1", shared.RoleStudent, dto.CreateGameRequest{GameKind: "no-such-kind"})
	assertAppError(t, err, 400)
}

func TestCreateGameValidatesCustomConfig(t *testing.T) {
	sql := newTestSQL(t)
	svc := newTestGameService(sql)

	badCount, _ := json.Marshal(map[string]int{"question_count": 0})
	_, err := svc.CreateGame("s", shared.RoleStudent, dto.CreateGameRequest{GameKind: "custom-math-quiz", CustomConfig: badCount})
	assertAppError(t, err, 400)

	badLimit, _ := json.Marshal(map[string]int{"question_count": 5, "time_limit": 7200})
	_, err = svc.CreateGame("s", shared.RoleStudent, dto.CreateGameRequest{GameKind: "custom-math-quiz", CustomConfig: badLimit})
	assertAppError(t, err, 400)

	good, _ := json.Marshal(map[string]int{"question_count": 5, "time_limit": 90})
	resp, err := svc.CreateGame("s", shared.RoleStudent, dto.CreateGameRequest{GameKind: "custom-math-quiz", CustomConfig: good})
	require.NoError(t, err)

	game, err := sql.Games().GetGameByCode(resp.Code)
	require.NoError(t, err)
	cfg, err := game.Config()
	require.NoError(t, err)
	assert.Len(t, cfg.Questions, 5)
	assert.Equal(t, 90, cfg.TimeLimit)
}

func TestJoinGameRules(t *testing.T) {
	sql := newTestSQL(t)
	svc := newTestGameService(sql)

	game := seedGame(t, sql, testGameOpts{Status: shared.GameStatusWaiting, Questions: mathSet()})

	_, err := svc.JoinGame(game.Code, "user-a")
	require.NoError(t, err)

	// Rejoining is a no-op, not an error.
	joined, err := svc.JoinGame(game.Code, "user-a")
	require.NoError(t, err)
	assert.Len(t, joined.Participants, 1)

	single := seedGame(t, sql, testGameOpts{Type: shared.GameTypeSinglePlayer, Status: shared.GameStatusWaiting, Questions: mathSet()})
	_, err = svc.JoinGame(single.Code, "user-a")
	assertAppError(t, err, 422)
}

func TestJoinGameAllowedWhileActive(t *testing.T) {
	sql := newTestSQL(t)
	svc := newTestGameService(sql)

	game := seedGame(t, sql, testGameOpts{Questions: mathSet()})

	joined, err := svc.JoinGame(game.Code, "latecomer")
	require.NoError(t, err)
	assert.Len(t, joined.Participants, 1)

	finished := seedGame(t, sql, testGameOpts{Status: shared.GameStatusCompleted, Questions: mathSet()})
	_, err = svc.JoinGame(finished.Code, "latecomer")
	assertAppError(t, err, 422)
}

func TestJoinGameRejectedAfterCompletion(t *testing.T) {
	sql := newTestSQL(t)
	svc := newTestGameService(sql)
	progressSvc := newTestProgressService(sql)

	game := seedGame(t, sql, testGameOpts{Status: shared.GameStatusWaiting, Questions: mathSet()})
	_, err := svc.JoinGame(game.Code, "user-a")
	require.NoError(t, err)
	_, err = svc.JoinGame(game.Code, "user-b")
	require.NoError(t, err)

	_, err = svc.StartGame(game.Code, game.CreatedBy)
	require.NoError(t, err)

	_, err = progressSvc.UpdateProgress(game.Code, "user-a", dto.UpdateProgressRequest{QuestionsAnswered: 2, Score: 2, TotalQuestions: 2})
	require.NoError(t, err)
	_, err = progressSvc.CompleteGame(game.Code, "user-a")
	require.NoError(t, err)

	_, err = svc.JoinGame(game.Code, "user-a")
	assertAppError(t, err, 409)
}

func TestJoinGuestAssignsOpaqueID(t *testing.T) {
	sql := newTestSQL(t)
	svc := newTestGameService(sql)

	game := seedGame(t, sql, testGameOpts{Status: shared.GameStatusWaiting, Questions: mathSet()})

	_, guestID, err := svc.JoinGameAsGuest(game.Code, dto.JoinGuestRequest{GuestName: "speedy"})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(guestID, "guest-"))
	assert.NotContains(t, guestID, "speedy", "identity must not derive from the display name")
}

func TestJoinGuestAllowedWhileActive(t *testing.T) {
	sql := newTestSQL(t)
	svc := newTestGameService(sql)

	game := seedGame(t, sql, testGameOpts{Questions: mathSet()})

	_, guestID, err := svc.JoinGameAsGuest(game.Code, dto.JoinGuestRequest{GuestName: "late"})
	require.NoError(t, err)
	assert.NotEmpty(t, guestID)

	finished := seedGame(t, sql, testGameOpts{Status: shared.GameStatusCompleted, Questions: mathSet()})
	_, _, err = svc.JoinGameAsGuest(finished.Code, dto.JoinGuestRequest{GuestName: "late"})
	assertAppError(t, err, 422)
}

func TestJoinGuestRejectsDuplicateName(t *testing.T) {
	sql := newTestSQL(t)
	svc := newTestGameService(sql)

	game := seedGame(t, sql, testGameOpts{Status: shared.GameStatusWaiting, Questions: mathSet()})

	_, _, err := svc.JoinGameAsGuest(game.Code, dto.JoinGuestRequest{GuestName: "speedy"})
	require.NoError(t, err)

	_, _, err = svc.JoinGameAsGuest(game.Code, dto.JoinGuestRequest{GuestName: "Speedy"})
	assertAppError(t, err, 409)
}

func TestStartGameLifecycle(t *testing.T) {
	sql := newTestSQL(t)
	svc := newTestGameService(sql)

	game := seedGame(t, sql, testGameOpts{Status: shared.GameStatusWaiting, Questions: mathSet()})

	_, err := svc.StartGame(game.Code, game.CreatedBy)
	assertAppError(t, err, 422) // no players yet

	seedGuest(t, sql, game, "speedy")

	_, err = svc.StartGame(game.Code, "not-the-creator")
	assertAppError(t, err, 403)

	started, err := svc.StartGame(game.Code, game.CreatedBy)
	require.NoError(t, err)
	assert.Equal(t, shared.GameStatusActive, started.Status)
	require.NotNil(t, started.StartedAt)
	firstStart := *started.StartedAt

	// Restart is a no-op: the started timestamp is set exactly once.
	again, err := svc.StartGame(game.Code, game.CreatedBy)
	require.NoError(t, err)
	require.NotNil(t, again.StartedAt)
	assert.Equal(t, firstStart.Unix(), again.StartedAt.Unix())
}

func TestGameResponseWithholdsAnswerKey(t *testing.T) {
	sql := newTestSQL(t)

	game := seedGame(t, sql, testGameOpts{Questions: mathSet(), TimeLimit: 120})

	resp := GameToResponse(game)
	require.NotNil(t, resp.Config)
	assert.Equal(t, 2, resp.Config.QuestionCount)
	assert.Equal(t, 120, resp.Config.TimeLimit)

	raw, err := json.Marshal(resp)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), `"answer"`)
	assert.NotContains(t, string(raw), `"questions"`)
}

func TestQuestionsWithholdAnswers(t *testing.T) {
	sql := newTestSQL(t)
	svc := newTestGameService(sql)

	game := seedGame(t, sql, testGameOpts{Questions: []model.GameQuestion{
		{ID: 0, Question: "Capital of France?", Answer: "Paris", Options: []string{"Paris", "Lyon"}},
	}})

	resp, err := svc.Questions(game.Code)
	require.NoError(t, err)
	require.Len(t, resp.Questions, 1)
	assert.Equal(t, "Capital of France?", resp.Questions[0].Question)
	assert.Equal(t, []string{"Paris", "Lyon"}, resp.Questions[0].Options)

	raw, err := json.Marshal(resp)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), `"answer"`)
}

func TestQuestionsUnavailableBeforeStart(t *testing.T) {
	sql := newTestSQL(t)
	svc := newTestGameService(sql)

	game := seedGame(t, sql, testGameOpts{Status: shared.GameStatusWaiting, Questions: mathSet()})

	_, err := svc.Questions(game.Code)
	assertAppError(t, err, 422)
}
