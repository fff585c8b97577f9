package dto

import "time"

type CreateInviteRequest struct {
	Email string `json:"email" validate:"required,email" example:"newuser@example.com"`
	Role  string `json:"role" validate:"required,oneof=student teacher admin" example:"student"`
}

func (c CreateInviteRequest) Validate() error {
	return GetValidator().Struct(c)
}

type InviteResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	ExpiresAt time.Time `json:"expires_at"`
	Used      bool      `json:"used"`
	CreatedAt time.Time `json:"created_at"`
}

type CreateInviteResponse struct {
	Invite    InviteResponse `json:"invite"`
	InviteURL string         `json:"invite_url"`
}

type ValidateInviteRequest struct {
	Email string `json:"email" validate:"required,email"`
	Token string `json:"token" validate:"required"`
}

func (v ValidateInviteRequest) Validate() error {
	return GetValidator().Struct(v)
}

type ValidateInviteResponse struct {
	Valid bool   `json:"valid"`
	Role  string `json:"role,omitempty"`
}
