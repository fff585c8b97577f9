package model

import "time"

type User struct {
	ID        string `json:"id" gorm:"primaryKey"`
	Email     string `json:"email" gorm:"uniqueIndex;not null"`
	Username  string `json:"username" gorm:"uniqueIndex;not null"`
	Password  string `json:"-"`
	Name      string `json:"name"`
	AvatarURL string `json:"avatar_url"`
	Role      string `json:"role" gorm:"not null;default:student;size:20"`
	IsActive  bool   `json:"is_active" gorm:"default:true;not null"`

	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
	LastLoginIP string     `json:"-"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

func (u *User) DisplayName() string {
	if u.Name != "" {
		return u.Name
	}
	return u.Email
}
