package models

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID            uuid.UUID  `gorm:"type:uuid;primaryKey"`
	FirebaseID    string     `gorm:"column:firebase_id;type:varchar(128);uniqueIndex;not null"`
	Email         string     `gorm:"type:varchar(255);index;not null"`
	FirstName     *string    `gorm:"type:varchar(100)"`
	LastName      *string    `gorm:"type:varchar(100)"`
	Role          string     `gorm:"type:varchar(20);not null;default:''"`
	XP            int64      `gorm:"column:xp;not null;default:0"`
	Level         int        `gorm:"not null;default:0"`
	StreakCount   int        `gorm:"not null;default:0"`
	LastSavedDate *time.Time `gorm:"type:timestamptz"`
	PushToken     *string    `gorm:"type:varchar(255)"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (User) TableName() string {
	return "users"
}
