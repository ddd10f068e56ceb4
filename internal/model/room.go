package model

import "time"

// Room 房间：独立的投票作用域，通过 Hash 分享
type Room struct {
	ID          string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	Hash        string    `gorm:"type:varchar(12);uniqueIndex:idx_room_hash;not null" json:"hash"`
	Name        string    `gorm:"type:varchar(100);not null" json:"name"`
	Description *string   `gorm:"type:text" json:"description"`
	UserID      string    `gorm:"type:varchar(36);index:idx_room_user;not null" json:"userId"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"-"`
}

func (Room) TableName() string { return "rooms" }

// GlobalScope is the scope value of rows that belong to no room.
const GlobalScope = ""

// ScopeOf returns the non-null scope key for an optional room id. Unique
// indexes include the scope column so the global scope takes part in them.
func ScopeOf(roomID *string) string {
	if roomID == nil {
		return GlobalScope
	}
	return *roomID
}

// RoomIDOf is the inverse of ScopeOf.
func RoomIDOf(scope string) *string {
	if scope == GlobalScope {
		return nil
	}
	s := scope
	return &s
}
