package model

import "time"

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User 用户；PasswordHash 为空表示仅支持 OAuth 登录
type User struct {
	ID           string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	Email        string    `gorm:"type:varchar(255);uniqueIndex:idx_user_email;not null" json:"email"`
	PasswordHash *string   `gorm:"type:varchar(255)" json:"-"`
	GoogleID     *string   `gorm:"type:varchar(255);uniqueIndex:idx_user_google" json:"-"`
	Pseudo       string    `gorm:"type:varchar(50);not null" json:"pseudo"`
	Role         string    `gorm:"type:varchar(16);not null;default:user" json:"role"`
	IsActive     bool      `gorm:"not null;default:true" json:"isActive"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"-"`
}

func (User) TableName() string { return "users" }

// HasPassword reports whether the account can log in with a password.
func (u *User) HasPassword() bool { return u.PasswordHash != nil && *u.PasswordHash != "" }
