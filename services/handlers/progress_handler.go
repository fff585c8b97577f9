package handlers

import (
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/uandi-projects/game-platform/dto"
	"github.com/uandi-projects/game-platform/shared"
)

type ProgressHandler struct {
	progressSvc ProgressServiceInterface
}

func NewProgressHandler(progressSvc ProgressServiceInterface) *ProgressHandler {
	return &ProgressHandler{progressSvc: progressSvc}
}

// participantID returns the participant the caller may act as. Guests
// identify themselves with their opaque guest ID; authenticated users can
// only act as themselves.
func (h *ProgressHandler) participantID(c *fiber.Ctx) (string, error) {
	id := strings.TrimSpace(c.Params("participantId"))
	if id == "" {
		return "", shared.ErrBadRequest("Participant ID is required")
	}

	if strings.HasPrefix(id, "guest-") {
		return id, nil
	}

	userID, ok := c.Locals(shared.UserID).(string)
	if !ok {
		return "", shared.ErrNotAuthenticated()
	}
	if userID != id {
		return "", shared.ErrForbidden("Cannot act for another participant")
	}

	return id, nil
}

// @Summary Update progress
// @Description Report client-side progress for a participant. Server-graded counters take precedence once answers are submitted.
// @Tags progress
// @Accept json
// @Produce json
// @Param code path string true "Game code"
// @Param participantId path string true "Participant ID (user ID or guest ID)"
// @Param updateProgressRequest body dto.UpdateProgressRequest true "Progress counters"
// @Success 200 {object} shared.Response{data=dto.ProgressResponse}
// @Router /api/v1/games/{code}/participants/{participantId}/progress [put]
func (h *ProgressHandler) UpdateProgress(c *fiber.Ctx) error {
	participantID, err := h.participantID(c)
	if err != nil {
		return err
	}

	var req dto.UpdateProgressRequest
	if err := c.BodyParser(&req); err != nil {
		return err
	}

	if err := req.Validate(); err != nil {
		validationResp := dto.CreateValidationErrorResponse(err)
		return c.Status(fiber.StatusBadRequest).JSON(validationResp)
	}

	resp, err := h.progressSvc.UpdateProgress(gameCode(c), participantID, req)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, http.StatusOK, "Progress updated", resp)
}

// @Summary Get progress
// @Description Return the stored progress of a participant
// @Tags progress
// @Produce json
// @Param code path string true "Game code"
// @Param participantId path string true "Participant ID (user ID or guest ID)"
// @Success 200 {object} shared.Response{data=dto.ProgressResponse}
// @Router /api/v1/games/{code}/participants/{participantId}/progress [get]
func (h *ProgressHandler) GetProgress(c *fiber.Ctx) error {
	participantID, err := h.participantID(c)
	if err != nil {
		return err
	}

	resp, err := h.progressSvc.GetProgress(gameCode(c), participantID)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, http.StatusOK, "Success", resp)
}

// @Summary Submit answer
// @Description Grade an answer server-side and update the participant's score
// @Tags progress
// @Accept json
// @Produce json
// @Param code path string true "Game code"
// @Param participantId path string true "Participant ID (user ID or guest ID)"
// @Param submitAnswerRequest body dto.SubmitAnswerRequest true "Question ID and answer"
// @Success 200 {object} shared.Response{data=dto.SubmitAnswerResponse}
// @Router /api/v1/games/{code}/participants/{participantId}/answers [post]
func (h *ProgressHandler) SubmitAnswer(c *fiber.Ctx) error {
	participantID, err := h.participantID(c)
	if err != nil {
		return err
	}

	var req dto.SubmitAnswerRequest
	if err := c.BodyParser(&req); err != nil {
		return err
	}

	if err := req.Validate(); err != nil {
		validationResp := dto.CreateValidationErrorResponse(err)
		return c.Status(fiber.StatusBadRequest).JSON(validationResp)
	}

	resp, err := h.progressSvc.SubmitAnswer(gameCode(c), participantID, req)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, http.StatusOK, "Answer recorded", resp)
}

// @Summary Complete game
// @Description Mark a participant as finished. The game completes when every participant is done.
// @Tags progress
// @Produce json
// @Param code path string true "Game code"
// @Param participantId path string true "Participant ID (user ID or guest ID)"
// @Success 200 {object} shared.Response{data=dto.CompleteGameResponse}
// @Router /api/v1/games/{code}/participants/{participantId}/complete [post]
func (h *ProgressHandler) CompleteGame(c *fiber.Ctx) error {
	participantID, err := h.participantID(c)
	if err != nil {
		return err
	}

	resp, err := h.progressSvc.CompleteGame(gameCode(c), participantID)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, http.StatusOK, "Completion recorded", resp)
}

// @Summary Exit game
// @Description Deactivate a participant so they no longer appear on the live leaderboard
// @Tags progress
// @Produce json
// @Param code path string true "Game code"
// @Param participantId path string true "Participant ID (user ID or guest ID)"
// @Success 200 {object} shared.Response{data=nil}
// @Router /api/v1/games/{code}/participants/{participantId} [delete]
func (h *ProgressHandler) ExitGame(c *fiber.Ctx) error {
	participantID, err := h.participantID(c)
	if err != nil {
		return err
	}

	if err := h.progressSvc.ExitGame(gameCode(c), participantID); err != nil {
		return err
	}

	return shared.ResponseJSON(c, http.StatusOK, "Left game", nil)
}

// @Summary Get leaderboard
// @Description Return the live leaderboard of active participants, ranked by questions answered then score
// @Tags progress
// @Produce json
// @Param code path string true "Game code"
// @Success 200 {object} shared.Response{data=dto.LeaderboardResponse}
// @Router /api/v1/games/{code}/leaderboard [get]
func (h *ProgressHandler) GetLeaderboard(c *fiber.Ctx) error {
	resp, err := h.progressSvc.GetLeaderboard(gameCode(c))
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, http.StatusOK, "Success", resp)
}

// @Summary Get final results
// @Description Return the final standings of a completed game, including every participant
// @Tags progress
// @Produce json
// @Param code path string true "Game code"
// @Success 200 {object} shared.Response{data=dto.LeaderboardResponse}
// @Router /api/v1/games/{code}/results [get]
func (h *ProgressHandler) GetResults(c *fiber.Ctx) error {
	resp, err := h.progressSvc.GetResults(gameCode(c))
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, http.StatusOK, "Success", resp)
}
