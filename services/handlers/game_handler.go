package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/uandi-projects/game-platform/dto"
	"github.com/uandi-projects/game-platform/shared"
)

type GameHandler struct {
	gameSvc GameServiceInterface
	aiSvc   AIServiceInterface
}

func NewGameHandler(gameSvc GameServiceInterface, aiSvc AIServiceInterface) *GameHandler {
	return &GameHandler{
		gameSvc: gameSvc,
		aiSvc:   aiSvc,
	}
}

func gameCode(c *fiber.Ctx) string {
	return strings.ToUpper(strings.TrimSpace(c.Params("code")))
}

// @Summary List game kinds
// @Description Return the game catalog available to the caller's role
// @Tags games
// @Produce json
// @Security Bearer
// @Param Authorization header string true "User Bearer Token" default(Bearer <user_token>)
// @Success 200 {object} shared.Response{data=[]dto.GameKind}
// @Router /api/v1/games/kinds [get]
func (h *GameHandler) Catalog(c *fiber.Ctx) error {
	role := c.Locals(shared.UserRole).(string)
	return shared.ResponseJSON(c, http.StatusOK, "Success", h.gameSvc.Catalog(role))
}

// @Summary Create game
// @Description Create a new game instance and return its join code
// @Tags games
// @Accept json
// @Produce json
// @Security Bearer
// @Param Authorization header string true "User Bearer Token" default(Bearer <user_token>)
// @Param createGameRequest body dto.CreateGameRequest true "Game kind and optional custom configuration"
// @Success 201 {object} shared.Response{data=dto.CreateGameResponse}
// @Router /api/v1/games [post]
func (h *GameHandler) CreateGame(c *fiber.Ctx) error {
	userID := c.Locals(shared.UserID).(string)
	role := c.Locals(shared.UserRole).(string)

	var req dto.CreateGameRequest
	if err := c.BodyParser(&req); err != nil {
		return err
	}

	if err := req.Validate(); err != nil {
		validationResp := dto.CreateValidationErrorResponse(err)
		return c.Status(fiber.StatusBadRequest).JSON(validationResp)
	}

	resp, err := h.gameSvc.CreateGame(userID, role, req)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, http.StatusCreated, "Game created successfully", resp)
}

// @Summary List own games
// @Description List games created by the authenticated user
// @Tags games
// @Produce json
// @Security Bearer
// @Param Authorization header string true "User Bearer Token" default(Bearer <user_token>)
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Success 200 {object} shared.Response{data=[]dto.GameInstanceResponse}
// @Router /api/v1/games [get]
func (h *GameHandler) ListMyGames(c *fiber.Ctx) error {
	userID := c.Locals(shared.UserID).(string)

	page, _ := strconv.Atoi(c.Query("page", "1"))
	limit, _ := strconv.Atoi(c.Query("limit", "20"))

	games, total, err := h.gameSvc.ListMyGames(userID, page, limit)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, http.StatusOK, "Success", fiber.Map{
		"games": games,
		"total": total,
		"page":  page,
		"limit": limit,
	})
}

// @Summary Get game
// @Description Return a game instance by its join code
// @Tags games
// @Produce json
// @Param code path string true "Game code"
// @Success 200 {object} shared.Response{data=dto.GameInstanceResponse}
// @Router /api/v1/games/{code} [get]
func (h *GameHandler) GetGame(c *fiber.Ctx) error {
	resp, err := h.gameSvc.GetGameResponse(gameCode(c))
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, http.StatusOK, "Success", resp)
}

// @Summary Join game
// @Description Join a multiplayer game as an authenticated user
// @Tags games
// @Produce json
// @Security Bearer
// @Param Authorization header string true "User Bearer Token" default(Bearer <user_token>)
// @Param code path string true "Game code"
// @Success 200 {object} shared.Response{data=dto.GameInstanceResponse}
// @Router /api/v1/games/{code}/join [post]
func (h *GameHandler) JoinGame(c *fiber.Ctx) error {
	userID := c.Locals(shared.UserID).(string)
	code := gameCode(c)

	if _, err := h.gameSvc.JoinGame(code, userID); err != nil {
		return err
	}

	resp, err := h.gameSvc.GetGameResponse(code)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, http.StatusOK, "Joined game successfully", resp)
}

// @Summary Join game as guest
// @Description Join a multiplayer game without an account. Returns the guest ID to use for progress calls.
// @Tags games
// @Accept json
// @Produce json
// @Param code path string true "Game code"
// @Param joinGuestRequest body dto.JoinGuestRequest true "Guest display name"
// @Success 200 {object} shared.Response{data=dto.JoinGuestResponse}
// @Router /api/v1/games/{code}/guests [post]
func (h *GameHandler) JoinGameAsGuest(c *fiber.Ctx) error {
	code := gameCode(c)

	var req dto.JoinGuestRequest
	if err := c.BodyParser(&req); err != nil {
		return err
	}

	if err := req.Validate(); err != nil {
		validationResp := dto.CreateValidationErrorResponse(err)
		return c.Status(fiber.StatusBadRequest).JSON(validationResp)
	}

	_, guestID, err := h.gameSvc.JoinGameAsGuest(code, req)
	if err != nil {
		return err
	}

	game, err := h.gameSvc.GetGameResponse(code)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, http.StatusOK, "Joined game successfully", dto.JoinGuestResponse{
		Game:    *game,
		GuestID: guestID,
	})
}

// @Summary Start game
// @Description Start a waiting multiplayer game. Only the creator can start it.
// @Tags games
// @Produce json
// @Security Bearer
// @Param Authorization header string true "User Bearer Token" default(Bearer <user_token>)
// @Param code path string true "Game code"
// @Success 200 {object} shared.Response{data=dto.GameInstanceResponse}
// @Router /api/v1/games/{code}/start [post]
func (h *GameHandler) StartGame(c *fiber.Ctx) error {
	userID := c.Locals(shared.UserID).(string)
	code := gameCode(c)

	if _, err := h.gameSvc.StartGame(code, userID); err != nil {
		return err
	}

	resp, err := h.gameSvc.GetGameResponse(code)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, http.StatusOK, "Game started", resp)
}

// @Summary Get game questions
// @Description Return the question set of an active game. Answers are withheld.
// @Tags games
// @Produce json
// @Param code path string true "Game code"
// @Success 200 {object} shared.Response{data=dto.GameQuestionsResponse}
// @Router /api/v1/games/{code}/questions [get]
func (h *GameHandler) Questions(c *fiber.Ctx) error {
	resp, err := h.gameSvc.Questions(gameCode(c))
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, http.StatusOK, "Success", resp)
}

// @Summary Preview an AI-generated quiz
// @Description Generate a question set from a prompt without creating a game. Answers are included so the quiz can be reviewed before use.
// @Tags games
// @Accept json
// @Produce json
// @Security Bearer
// @Param Authorization header string true "User Bearer Token" default(Bearer <user_token>)
// @Param generateQuizRequest body dto.GenerateQuizRequest true "Prompt, difficulty and question count"
// @Success 200 {object} shared.Response{data=[]model.GameQuestion}
// @Router /api/v1/quizzes/preview [post]
func (h *GameHandler) PreviewQuiz(c *fiber.Ctx) error {
	if !h.aiSvc.Enabled() {
		return shared.ErrUnprocessable("Quiz generation is not configured")
	}

	var req dto.GenerateQuizRequest
	if err := c.BodyParser(&req); err != nil {
		return err
	}

	if err := req.Validate(); err != nil {
		validationResp := dto.CreateValidationErrorResponse(err)
		return c.Status(fiber.StatusBadRequest).JSON(validationResp)
	}

	questions, err := h.aiSvc.GenerateQuestions(c.Context(), req.Prompt, req.Difficulty, req.QuestionCount, req.Language)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, http.StatusOK, "Quiz generated", questions)
}

// @Summary Get game participants
// @Description Return the lobby view of a game: every joined user and guest
// @Tags games
// @Produce json
// @Param code path string true "Game code"
// @Success 200 {object} shared.Response{data=dto.GameParticipantsResponse}
// @Router /api/v1/games/{code}/participants [get]
func (h *GameHandler) Participants(c *fiber.Ctx) error {
	resp, err := h.gameSvc.Participants(gameCode(c))
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, http.StatusOK, "Success", resp)
}
