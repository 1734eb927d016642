package models

import (
	"time"

	"github.com/google/uuid"
)

type BroadcastNotification struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey"`
	Title          string    `gorm:"type:varchar(120);not null"`
	Message        string    `gorm:"type:text;not null"`
	SenderID       uuid.UUID `gorm:"type:uuid;not null"`
	RecipientCount int       `gorm:"not null;default:0"`
	CreatedAt      time.Time
}

func (BroadcastNotification) TableName() string {
	return "broadcast_notifications"
}

type Notification struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey"`
	UserID      uuid.UUID  `gorm:"type:uuid;index;not null"`
	BroadcastID *uuid.UUID `gorm:"type:uuid"`
	Title       string     `gorm:"type:varchar(120);not null"`
	Message     string     `gorm:"type:text;not null"`
	IsRead      bool       `gorm:"not null;default:false"`
	CreatedAt   time.Time
}

func (Notification) TableName() string {
	return "notifications"
}
