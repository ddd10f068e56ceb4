package model

import (
	"strings"
	"time"
)

const MaxItemNameLength = 64

// Item 可投票条目；名称在所属作用域内大小写不敏感唯一
type Item struct {
	ID      string  `gorm:"primaryKey;type:varchar(36)" json:"id"`
	Name    string  `gorm:"type:varchar(64);not null" json:"name"`
	NameKey string  `gorm:"type:varchar(64);not null;uniqueIndex:idx_item_scope_name,priority:2" json:"-"`
	Scope   string  `gorm:"type:varchar(36);not null;uniqueIndex:idx_item_scope_name,priority:1" json:"-"`
	RoomID  *string `gorm:"type:varchar(36);index:idx_item_room" json:"roomId"`
	UserID  string  `gorm:"type:varchar(36);index:idx_item_user;not null" json:"userId"`
	// CreatedAt orders "newest first" listings.
	CreatedAt time.Time `gorm:"index" json:"createdAt"`
}

func (Item) TableName() string { return "items" }

// NormalizeItemName returns the case-folded key used for uniqueness.
func NormalizeItemName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
