package dto

import "time"

// ==================== AUTHENTICATION REQUEST DTOs ====================

type RegisterRequest struct {
	Email       string `json:"email" validate:"required,email" example:"user@example.com"`
	Username    string `json:"username" validate:"required,min=3,max=30,alphanum" example:"johndoe"`
	Name        string `json:"name" validate:"omitempty,max=100" example:"John Doe"`
	Password    string `json:"password" validate:"required,strong_password" example:"SecurePass123!"`
	InviteToken string `json:"invite_token" validate:"required" example:"7b0c2b1e-..."`
}

func (r RegisterRequest) Validate() error {
	return GetValidator().Struct(r)
}

type LoginRequest struct {
	EmailOrUsername string `json:"email_or_username" validate:"required,email_or_username" example:"user@example.com"`
	Password        string `json:"password" validate:"required" example:"SecurePass123!"`
}

func (l LoginRequest) Validate() error {
	return GetValidator().Struct(l)
}

type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email" example:"user@example.com"`
}

func (f ForgotPasswordRequest) Validate() error {
	return GetValidator().Struct(f)
}

type ResetPasswordRequest struct {
	Email       string `json:"email" validate:"required,email" example:"user@example.com"`
	Token       string `json:"token" validate:"required" example:"f3a9c4d2-..."`
	NewPassword string `json:"new_password" validate:"required,strong_password" example:"NewPass123!"`
}

func (r ResetPasswordRequest) Validate() error {
	return GetValidator().Struct(r)
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required" example:"OldPass123!"`
	NewPassword     string `json:"new_password" validate:"required,strong_password" example:"NewPass123!"`
}

func (c ChangePasswordRequest) Validate() error {
	return GetValidator().Struct(c)
}

// ==================== AUTHENTICATION RESPONSE DTOs ====================

type RegisterResponse struct {
	UserID   string `json:"user_id"`
	Email    string `json:"email"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

type LoginResponse struct {
	AccessToken string       `json:"access_token"`
	ExpiresIn   int64        `json:"expires_in"`
	User        UserResponse `json:"user"`
}

// ==================== VALIDATION DTOs ====================

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type ValidationErrorResponse struct {
	Code    int               `json:"code"`
	Message string            `json:"message"`
	Errors  []ValidationError `json:"errors"`
}

// AuthAuditEntry captures the outcome of one auth-sensitive action.
type AuthAuditEntry struct {
	UserID    string    `json:"user_id,omitempty"`
	Action    string    `json:"action"`
	IP        string    `json:"ip"`
	UserAgent string    `json:"user_agent"`
	Success   bool      `json:"success"`
	Timestamp time.Time `json:"timestamp"`
}
