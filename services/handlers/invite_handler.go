package handlers

import (
	"net/http"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/uandi-projects/game-platform/dto"
	"github.com/uandi-projects/game-platform/shared"
)

type InviteHandler struct {
	inviteSvc InviteServiceInterface
}

func NewInviteHandler(inviteSvc InviteServiceInterface) *InviteHandler {
	return &InviteHandler{inviteSvc: inviteSvc}
}

// @Summary Create invite
// @Description Invite a new user by email. Teachers can invite students, admins can invite anyone.
// @Tags invites
// @Accept json
// @Produce json
// @Security Bearer
// @Param Authorization header string true "User Bearer Token" default(Bearer <user_token>)
// @Param createInviteRequest body dto.CreateInviteRequest true "Invitee email and role"
// @Success 201 {object} shared.Response{data=dto.CreateInviteResponse}
// @Router /api/v1/invites [post]
func (h *InviteHandler) CreateInvite(c *fiber.Ctx) error {
	userID := c.Locals(shared.UserID).(string)
	role := c.Locals(shared.UserRole).(string)

	var req dto.CreateInviteRequest
	if err := c.BodyParser(&req); err != nil {
		return err
	}

	if err := req.Validate(); err != nil {
		validationResp := dto.CreateValidationErrorResponse(err)
		return c.Status(fiber.StatusBadRequest).JSON(validationResp)
	}

	resp, err := h.inviteSvc.CreateInvite(userID, role, req)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, http.StatusCreated, "Invite created successfully", resp)
}

// @Summary Validate invite
// @Description Check whether an invite token is valid for an email before registering
// @Tags invites
// @Accept json
// @Produce json
// @Param validateInviteRequest body dto.ValidateInviteRequest true "Email and invite token"
// @Success 200 {object} shared.Response{data=dto.ValidateInviteResponse}
// @Router /api/v1/invites/validate [post]
func (h *InviteHandler) ValidateInvite(c *fiber.Ctx) error {
	var req dto.ValidateInviteRequest
	if err := c.BodyParser(&req); err != nil {
		return err
	}

	if err := req.Validate(); err != nil {
		validationResp := dto.CreateValidationErrorResponse(err)
		return c.Status(fiber.StatusBadRequest).JSON(validationResp)
	}

	return shared.ResponseJSON(c, http.StatusOK, "Success", h.inviteSvc.ValidateInvite(req))
}

// @Summary List invites
// @Description List invites created by the caller. Admins see every invite.
// @Tags invites
// @Produce json
// @Security Bearer
// @Param Authorization header string true "User Bearer Token" default(Bearer <user_token>)
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Success 200 {object} shared.Response{data=[]dto.InviteResponse}
// @Router /api/v1/invites [get]
func (h *InviteHandler) ListInvites(c *fiber.Ctx) error {
	userID := c.Locals(shared.UserID).(string)
	role := c.Locals(shared.UserRole).(string)

	page, _ := strconv.Atoi(c.Query("page", "1"))
	limit, _ := strconv.Atoi(c.Query("limit", "20"))

	invites, total, err := h.inviteSvc.ListInvites(userID, role, page, limit)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, http.StatusOK, "Success", fiber.Map{
		"invites": invites,
		"total":   total,
		"page":    page,
		"limit":   limit,
	})
}

// @Summary Revoke invite
// @Description Delete a pending invite. Only the creator or an admin can revoke it.
// @Tags invites
// @Produce json
// @Security Bearer
// @Param Authorization header string true "User Bearer Token" default(Bearer <user_token>)
// @Param id path string true "Invite ID"
// @Success 200 {object} shared.Response{data=nil}
// @Router /api/v1/invites/{id} [delete]
func (h *InviteHandler) RevokeInvite(c *fiber.Ctx) error {
	userID := c.Locals(shared.UserID).(string)
	role := c.Locals(shared.UserRole).(string)
	inviteID := c.Params("id")

	if err := h.inviteSvc.RevokeInvite(userID, role, inviteID); err != nil {
		return err
	}

	return shared.ResponseJSON(c, http.StatusOK, "Invite revoked successfully", nil)
}
