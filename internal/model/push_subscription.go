package model

import "time"

// PushSubscription 浏览器推送订阅，每个 endpoint 一行
type PushSubscription struct {
	ID       string `gorm:"primaryKey;type:varchar(36)" json:"id"`
	Endpoint string `gorm:"type:varchar(1024);uniqueIndex:idx_push_endpoint;not null" json:"endpoint"`
	UserID   string `gorm:"type:varchar(36);index:idx_push_user;not null" json:"userId"`
	P256dh   string `gorm:"type:varchar(255);not null" json:"p256dh"`
	Auth     string `gorm:"type:varchar(255);not null" json:"auth"`
	// LastNotifiedAt is the debounce stamp; nil means never notified.
	LastNotifiedAt *time.Time `gorm:"index" json:"lastNotifiedAt"`
	CreatedAt      time.Time  `json:"createdAt"`
	UpdatedAt      time.Time  `json:"updatedAt"`
}

func (PushSubscription) TableName() string { return "push_subscriptions" }
