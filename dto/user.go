package dto

import "time"

type UserResponse struct {
	ID        string     `json:"id"`
	Email     string     `json:"email"`
	Username  string     `json:"username"`
	Name      string     `json:"name,omitempty"`
	AvatarURL string     `json:"avatar_url,omitempty"`
	Role      string     `json:"role"`
	IsActive  bool       `json:"is_active"`
	JoinedAt  time.Time  `json:"joined_at"`
	LastLogin *time.Time `json:"last_login,omitempty"`
}

type UpdateProfileRequest struct {
	Name     string `json:"name" validate:"omitempty,max=100"`
	Username string `json:"username" validate:"omitempty,min=3,max=30,alphanum"`
}

func (u UpdateProfileRequest) Validate() error {
	return GetValidator().Struct(u)
}

// ==================== ADMIN DTOs ====================

type AdminUserListRequest struct {
	Page   int    `query:"page"`
	Limit  int    `query:"limit"`
	Search string `query:"search"`
}

type AdminUserListResponse struct {
	Users []UserResponse `json:"users"`
	Total int64          `json:"total"`
	Page  int            `json:"page"`
	Limit int            `json:"limit"`
}

type AdminUpdateUserRequest struct {
	Name     *string `json:"name,omitempty" validate:"omitempty,max=100"`
	Role     *string `json:"role,omitempty" validate:"omitempty,oneof=student teacher admin"`
	IsActive *bool   `json:"is_active,omitempty"`
}

func (a AdminUpdateUserRequest) Validate() error {
	return GetValidator().Struct(a)
}

type AvatarResponse struct {
	AvatarURL string `json:"avatar_url"`
}
