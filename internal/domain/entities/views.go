package entities

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/volatiletech/null/v8"
)

// HoldingBreakdown is the live valuation of one held symbol
type HoldingBreakdown struct {
	Symbol         string          `json:"symbol"`
	AmountUSD      decimal.Decimal `json:"amountUsd"`
	LiveQuantity   decimal.Decimal `json:"liveQuantity"`
	UnitPriceUSD   decimal.Decimal `json:"unitPriceUsd"`
	SecondaryValue decimal.Decimal `json:"secondaryValue"`
	Change24h      *float64        `json:"change24h,omitempty"`
	Priced         bool            `json:"priced"`
}

// ProfileView is the computed profile returned to the owner
type ProfileView struct {
	ID                uuid.UUID                  `json:"id"`
	Email             string                     `json:"email"`
	FirstName         null.String                `json:"firstName"`
	LastName          null.String                `json:"lastName"`
	Role              UserRole                   `json:"role"`
	XP                int64                      `json:"xp"`
	Level             int                        `json:"level"`
	StreakCount       int                        `json:"streakCount"`
	LastSavedDate     null.Time                  `json:"lastSavedDate"`
	Holdings          map[string]decimal.Decimal `json:"holdings"`
	Breakdown         []HoldingBreakdown         `json:"breakdown"`
	TotalUSD          decimal.Decimal            `json:"totalUsd"`
	TotalSecondary    decimal.Decimal            `json:"totalSecondary"`
	SecondaryCurrency string                     `json:"secondaryCurrency"`
	PriceError        bool                       `json:"priceError"`
	UnpricedSymbols   []string                   `json:"unpricedSymbols,omitempty"`
	History           []Deposit                  `json:"history"`
}

// UserTotal is one row of the bulk savings aggregate
type UserTotal struct {
	UserID     uuid.UUID
	Email      string
	FirstName  null.String
	LastName   null.String
	TotalSaved decimal.Decimal
}

// DisplayName applies the same rule as User.DisplayName
func (t UserTotal) DisplayName() string {
	return displayName(t.FirstName, t.LastName, t.Email)
}

// LeaderboardEntry is one ranked saver
type LeaderboardEntry struct {
	Rank        int             `json:"rank"`
	UserID      uuid.UUID       `json:"userId"`
	DisplayName string          `json:"displayName"`
	TotalSaved  decimal.Decimal `json:"totalSaved"`
}

// PriceListing is one row of the public price list
type PriceListing struct {
	Symbol      string          `json:"symbol"`
	Name        string          `json:"name"`
	PriceUSD    decimal.Decimal `json:"priceUsd"`
	Price       decimal.Decimal `json:"price"`
	Currency    string          `json:"currency"`
	Change24h   *float64        `json:"change24h,omitempty"`
	Available   bool            `json:"available"`
	RefreshedAt time.Time       `json:"refreshedAt"`
}
