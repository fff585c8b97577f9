package model

import "time"

type InviteToken struct {
	ID        string    `json:"id" gorm:"primaryKey"`
	Email     string    `json:"email" gorm:"index:idx_invite_email_token;not null"`
	Token     string    `json:"-" gorm:"index:idx_invite_email_token;not null"`
	Role      string    `json:"role" gorm:"not null;size:20"`
	CreatedBy string    `json:"created_by" gorm:"index;not null"`
	ExpiresAt time.Time `json:"expires_at" gorm:"not null"`
	Used      bool      `json:"used" gorm:"default:false;not null"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (t *InviteToken) Expired(now time.Time) bool {
	return now.After(t.ExpiresAt)
}

type PasswordResetToken struct {
	ID        string    `json:"id" gorm:"primaryKey"`
	Email     string    `json:"email" gorm:"index:idx_reset_email_token;not null"`
	Token     string    `json:"-" gorm:"index:idx_reset_email_token;not null"`
	ExpiresAt time.Time `json:"expires_at" gorm:"not null"`
	Used      bool      `json:"used" gorm:"default:false;not null"`
	CreatedAt time.Time `json:"created_at"`
}
