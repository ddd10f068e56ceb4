package model

import "time"

// Session DB-backed login session, used when Redis is not configured.
// ID is the SHA-256 of the cookie token, never the token itself.
type Session struct {
	ID        string    `gorm:"primaryKey;type:varchar(64)"`
	UserID    string    `gorm:"type:varchar(36);index:idx_session_user;not null"`
	ExpiresAt time.Time `gorm:"index;not null"`
	CreatedAt time.Time
}

func (Session) TableName() string { return "sessions" }

// All returns every model for auto-migration.
func All() []interface{} {
	return []interface{}{
		&User{},
		&Room{},
		&Item{},
		&Vote{},
		&PushSubscription{},
		&Session{},
	}
}
