package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/uandi-projects/game-platform/dto"
	"github.com/uandi-projects/game-platform/shared"
)

type UserHandler struct {
	userSvc  UserServiceInterface
	mediaSvc MediaServiceInterface
}

func NewUserHandler(userSvc UserServiceInterface, mediaSvc MediaServiceInterface) *UserHandler {
	return &UserHandler{
		userSvc:  userSvc,
		mediaSvc: mediaSvc,
	}
}

// @Summary Get own profile
// @Description Return the profile of the authenticated user
// @Tags users
// @Produce json
// @Security Bearer
// @Param Authorization header string true "User Bearer Token" default(Bearer <user_token>)
// @Success 200 {object} shared.Response{data=dto.UserResponse}
// @Router /api/v1/users/me [get]
func (h *UserHandler) GetProfile(c *fiber.Ctx) error {
	userID := c.Locals(shared.UserID).(string)

	resp, err := h.userSvc.GetProfile(userID)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, http.StatusOK, "Success", resp)
}

// @Summary Update own profile
// @Description Update display name or username of the authenticated user
// @Tags users
// @Accept json
// @Produce json
// @Security Bearer
// @Param Authorization header string true "User Bearer Token" default(Bearer <user_token>)
// @Param updateProfileRequest body dto.UpdateProfileRequest true "Profile fields to update"
// @Success 200 {object} shared.Response{data=dto.UserResponse}
// @Router /api/v1/users/me [put]
func (h *UserHandler) UpdateProfile(c *fiber.Ctx) error {
	userID := c.Locals(shared.UserID).(string)

	var req dto.UpdateProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return err
	}

	if err := req.Validate(); err != nil {
		validationResp := dto.CreateValidationErrorResponse(err)
		return c.Status(fiber.StatusBadRequest).JSON(validationResp)
	}

	resp, err := h.userSvc.UpdateProfile(userID, req)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, http.StatusOK, "Profile updated successfully", resp)
}

// @Summary Upload avatar
// @Description Upload a profile picture for the authenticated user
// @Tags users
// @Accept multipart/form-data
// @Produce json
// @Security Bearer
// @Param Authorization header string true "User Bearer Token" default(Bearer <user_token>)
// @Param avatar formData file true "Avatar image (JPEG, PNG or WebP, max 5MB)"
// @Success 200 {object} shared.Response{data=dto.AvatarResponse}
// @Router /api/v1/users/me/avatar [post]
func (h *UserHandler) UploadAvatar(c *fiber.Ctx) error {
	userID := c.Locals(shared.UserID).(string)

	fileHeader, err := c.FormFile("avatar")
	if err != nil {
		return shared.ErrBadRequest("Avatar file is required")
	}

	resp, err := h.mediaSvc.UploadAvatar(userID, fileHeader)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, http.StatusOK, "Avatar uploaded successfully", resp)
}

// @Summary Get avatar
// @Description Return a download URL for the authenticated user's avatar
// @Tags users
// @Produce json
// @Security Bearer
// @Param Authorization header string true "User Bearer Token" default(Bearer <user_token>)
// @Success 200 {object} shared.Response{data=dto.AvatarResponse}
// @Router /api/v1/users/me/avatar [get]
func (h *UserHandler) GetAvatar(c *fiber.Ctx) error {
	userID := c.Locals(shared.UserID).(string)

	resp, err := h.mediaSvc.GetAvatar(userID)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, http.StatusOK, "Success", resp)
}

// @Summary Delete avatar
// @Description Remove the authenticated user's avatar
// @Tags users
// @Produce json
// @Security Bearer
// @Param Authorization header string true "User Bearer Token" default(Bearer <user_token>)
// @Success 200 {object} shared.Response{data=nil}
// @Router /api/v1/users/me/avatar [delete]
func (h *UserHandler) DeleteAvatar(c *fiber.Ctx) error {
	userID := c.Locals(shared.UserID).(string)

	if err := h.mediaSvc.DeleteAvatar(userID); err != nil {
		return err
	}

	return shared.ResponseJSON(c, http.StatusOK, "Avatar deleted successfully", nil)
}
