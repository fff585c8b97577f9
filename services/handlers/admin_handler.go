package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/uandi-projects/game-platform/dto"
	"github.com/uandi-projects/game-platform/shared"
)

type AdminHandler struct {
	userSvc UserServiceInterface
}

func NewAdminHandler(userSvc UserServiceInterface) *AdminHandler {
	return &AdminHandler{userSvc: userSvc}
}

// @Summary List users
// @Description List all users with optional search over username, email and name
// @Tags admin
// @Produce json
// @Security Bearer
// @Param Authorization header string true "Admin Bearer Token" default(Bearer <admin_token>)
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Param search query string false "Search term"
// @Success 200 {object} shared.Response{data=dto.AdminUserListResponse}
// @Router /api/v1/admin/users [get]
func (h *AdminHandler) ListUsers(c *fiber.Ctx) error {
	var req dto.AdminUserListRequest
	if err := c.QueryParser(&req); err != nil {
		return err
	}

	resp, err := h.userSvc.AdminListUsers(req)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, http.StatusOK, "Success", resp)
}

// @Summary Update user
// @Description Update a user's name, role or active flag. The last active admin cannot be demoted or deactivated.
// @Tags admin
// @Accept json
// @Produce json
// @Security Bearer
// @Param Authorization header string true "Admin Bearer Token" default(Bearer <admin_token>)
// @Param id path string true "User ID"
// @Param adminUpdateUserRequest body dto.AdminUpdateUserRequest true "Fields to update"
// @Success 200 {object} shared.Response{data=dto.UserResponse}
// @Router /api/v1/admin/users/{id} [put]
func (h *AdminHandler) UpdateUser(c *fiber.Ctx) error {
	actorID := c.Locals(shared.UserID).(string)
	userID := c.Params("id")

	var req dto.AdminUpdateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return err
	}

	if err := req.Validate(); err != nil {
		validationResp := dto.CreateValidationErrorResponse(err)
		return c.Status(fiber.StatusBadRequest).JSON(validationResp)
	}

	resp, err := h.userSvc.AdminUpdateUser(actorID, userID, req)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, http.StatusOK, "User updated successfully", resp)
}

// @Summary Deactivate user
// @Description Deactivate a user account. Admins cannot deactivate themselves.
// @Tags admin
// @Produce json
// @Security Bearer
// @Param Authorization header string true "Admin Bearer Token" default(Bearer <admin_token>)
// @Param id path string true "User ID"
// @Success 200 {object} shared.Response{data=nil}
// @Router /api/v1/admin/users/{id} [delete]
func (h *AdminHandler) DeactivateUser(c *fiber.Ctx) error {
	actorID := c.Locals(shared.UserID).(string)
	userID := c.Params("id")

	if err := h.userSvc.AdminDeactivateUser(actorID, userID); err != nil {
		return err
	}

	return shared.ResponseJSON(c, http.StatusOK, "User deactivated successfully", nil)
}
