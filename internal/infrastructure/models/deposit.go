package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Deposit struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey"`
	UserID    uuid.UUID       `gorm:"type:uuid;index:idx_deposits_user_created,priority:1;not null"`
	Amount    decimal.Decimal `gorm:"type:numeric(24,8);not null"`
	Symbol    string          `gorm:"type:varchar(16);not null"`
	Quantity  decimal.Decimal `gorm:"type:numeric(48,18);not null"`
	UnitPrice decimal.Decimal `gorm:"type:numeric(36,18);not null"`
	CreatedAt time.Time       `gorm:"index:idx_deposits_user_created,priority:2"`
}

func (Deposit) TableName() string {
	return "deposits"
}

// UserTotal is the row shape of the per-user savings aggregate
type UserTotal struct {
	UserID     uuid.UUID
	Email      string
	FirstName  *string
	LastName   *string
	TotalSaved decimal.Decimal
}
