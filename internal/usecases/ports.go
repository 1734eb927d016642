package usecases

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"savingz.backend/internal/domain/entities"
)

// PriceOracle resolves asset prices. Symbols it cannot price are omitted
// from the result rather than reported as an error.
type PriceOracle interface {
	GetPrices(ctx context.Context, symbols []string, currencies []string) (map[string]entities.AssetQuote, error)
}

// PushGateway delivers device notifications
type PushGateway interface {
	Send(ctx context.Context, messages []entities.PushMessage) (entities.PushReport, error)
}

// Cache is a string key-value store with expiry
type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
	IsMiss(err error) bool
}

// SavingsMetrics records ledger activity
type SavingsMetrics interface {
	RecordDeposit(symbol string, amountUSD decimal.Decimal)
}

// PushMetrics records push dispatch outcomes
type PushMetrics interface {
	RecordPush(sent, failed int)
}

// LeaderboardInvalidator drops cached rankings after the ledger changes
type LeaderboardInvalidator interface {
	Invalidate(ctx context.Context)
}

func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}
