package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/uandi-projects/game-platform/dto"
	"github.com/uandi-projects/game-platform/shared"
)

type AuthHandler struct {
	authSvc AuthServiceInterface
}

func NewAuthHandler(authSvc AuthServiceInterface) *AuthHandler {
	return &AuthHandler{authSvc: authSvc}
}

// @Summary Register a new user
// @Description Create a user account from a pending invite token
// @Tags auth
// @Accept json
// @Produce json
// @Param registerRequest body dto.RegisterRequest true "Registration details including the invite token"
// @Success 201 {object} shared.Response{data=dto.RegisterResponse}
// @Router /api/v1/register [post]
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return err
	}

	if err := req.Validate(); err != nil {
		validationResp := dto.CreateValidationErrorResponse(err)
		return c.Status(fiber.StatusBadRequest).JSON(validationResp)
	}

	resp, err := h.authSvc.Register(req)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, http.StatusCreated, "User registered successfully", resp)
}

// @Summary Login user
// @Description Authenticate user and return access token
// @Tags auth
// @Accept json
// @Produce json
// @Param loginRequest body dto.LoginRequest true "Login credentials"
// @Success 200 {object} shared.Response{data=dto.LoginResponse}
// @Router /api/v1/login [post]
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return err
	}

	if err := req.Validate(); err != nil {
		validationResp := dto.CreateValidationErrorResponse(err)
		return c.Status(fiber.StatusBadRequest).JSON(validationResp)
	}

	resp, err := h.authSvc.Login(req, c.IP())
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, http.StatusOK, "Login successful", resp)
}

// @Summary Request password reset
// @Description Send a password reset email if the address is registered
// @Tags auth
// @Accept json
// @Produce json
// @Param forgotPasswordRequest body dto.ForgotPasswordRequest true "Account email"
// @Success 200 {object} shared.Response{data=nil}
// @Router /api/v1/forgot_password [post]
func (h *AuthHandler) ForgotPassword(c *fiber.Ctx) error {
	var req dto.ForgotPasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return err
	}

	if err := req.Validate(); err != nil {
		validationResp := dto.CreateValidationErrorResponse(err)
		return c.Status(fiber.StatusBadRequest).JSON(validationResp)
	}

	if err := h.authSvc.ForgotPassword(req); err != nil {
		return err
	}

	return shared.ResponseJSON(c, http.StatusOK, "If the email exists, a reset link has been sent", nil)
}

// @Summary Reset password
// @Description Set a new password using a reset token
// @Tags auth
// @Accept json
// @Produce json
// @Param resetPasswordRequest body dto.ResetPasswordRequest true "Reset token and new password"
// @Success 200 {object} shared.Response{data=nil}
// @Router /api/v1/reset_password [post]
func (h *AuthHandler) ResetPassword(c *fiber.Ctx) error {
	var req dto.ResetPasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return err
	}

	if err := req.Validate(); err != nil {
		validationResp := dto.CreateValidationErrorResponse(err)
		return c.Status(fiber.StatusBadRequest).JSON(validationResp)
	}

	if err := h.authSvc.ResetPassword(req); err != nil {
		return err
	}

	return shared.ResponseJSON(c, http.StatusOK, "Password reset successfully", nil)
}

// @Summary Change password
// @Description Change the password of the authenticated user
// @Tags auth
// @Accept json
// @Produce json
// @Security Bearer
// @Param Authorization header string true "User Bearer Token" default(Bearer <user_token>)
// @Param changePasswordRequest body dto.ChangePasswordRequest true "Current and new password"
// @Success 200 {object} shared.Response{data=nil}
// @Router /api/v1/change_password [post]
func (h *AuthHandler) ChangePassword(c *fiber.Ctx) error {
	userID := c.Locals(shared.UserID).(string)

	var req dto.ChangePasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return err
	}

	if err := req.Validate(); err != nil {
		validationResp := dto.CreateValidationErrorResponse(err)
		return c.Status(fiber.StatusBadRequest).JSON(validationResp)
	}

	if err := h.authSvc.ChangePassword(userID, req); err != nil {
		return err
	}

	return shared.ResponseJSON(c, http.StatusOK, "Password changed successfully", nil)
}
