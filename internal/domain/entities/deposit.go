package entities

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// QuantityPrecision is the number of fractional digits kept for asset quantities
const QuantityPrecision = 18

// Deposit is one immutable ledger entry: a USD amount saved into an asset,
// converted to a quantity at the price seen when it was recorded.
type Deposit struct {
	ID        uuid.UUID       `json:"id"`
	UserID    uuid.UUID       `json:"userId"`
	Amount    decimal.Decimal `json:"amount"`
	Symbol    string          `json:"symbol"`
	Quantity  decimal.Decimal `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	CreatedAt time.Time       `json:"createdAt"`
}

// RecordDepositInput is the body of the save call. Older clients send the
// symbol as "crypto".
type RecordDepositInput struct {
	Amount decimal.Decimal `json:"amount"`
	Symbol string          `json:"symbol"`
	Crypto string          `json:"crypto"`
}

// AssetSymbol returns the requested symbol, preferring "symbol" over "crypto"
func (in RecordDepositInput) AssetSymbol() string {
	if s := strings.TrimSpace(in.Symbol); s != "" {
		return s
	}
	return strings.TrimSpace(in.Crypto)
}

// DepositResult is returned by record_deposit
type DepositResult struct {
	Deposit     *Deposit `json:"deposit"`
	XP          int64    `json:"xp"`
	Level       int      `json:"level"`
	StreakCount int      `json:"streakCount"`
	XPEarned    int64    `json:"xpEarned"`
}

// ConvertToQuantity divides a USD amount by the unit price
func ConvertToQuantity(amount, unitPrice decimal.Decimal) decimal.Decimal {
	if !unitPrice.IsPositive() {
		return decimal.Zero
	}
	return amount.DivRound(unitPrice, QuantityPrecision)
}
