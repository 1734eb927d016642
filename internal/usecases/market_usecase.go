package usecases

import (
	"context"
	"fmt"
	"time"

	"savingz.backend/internal/domain/entities"
	domainerrors "savingz.backend/internal/domain/errors"
)

// MarketUsecase lists prices of the supported assets
type MarketUsecase struct {
	oracle            PriceOracle
	secondaryCurrency string
	oracleTimeout     time.Duration
	now               func() time.Time
}

// NewMarketUsecase creates a new market usecase
func NewMarketUsecase(oracle PriceOracle, secondaryCurrency string, oracleTimeout time.Duration) *MarketUsecase {
	if secondaryCurrency == "" {
		secondaryCurrency = entities.CurrencyNGN
	}
	return &MarketUsecase{
		oracle:            oracle,
		secondaryCurrency: secondaryCurrency,
		oracleTimeout:     oracleTimeout,
		now:               time.Now,
	}
}

// ListPrices returns one listing per supported asset in table order.
// Assets the oracle could not price are listed as unavailable.
func (u *MarketUsecase) ListPrices(ctx context.Context) ([]entities.PriceListing, error) {
	priceCtx, cancel := withTimeout(ctx, u.oracleTimeout)
	defer cancel()

	quotes, err := u.oracle.GetPrices(priceCtx, entities.SupportedSymbols(), quoteCurrencies(u.secondaryCurrency))
	if err != nil {
		return nil, domainerrors.Upstream(fmt.Errorf("list prices: %w", err))
	}

	refreshedAt := u.now().UTC()
	listings := make([]entities.PriceListing, 0, len(entities.SupportedAssets))
	for _, asset := range entities.SupportedAssets {
		listing := entities.PriceListing{
			Symbol:      asset.Symbol,
			Name:        asset.Name,
			Currency:    u.secondaryCurrency,
			RefreshedAt: refreshedAt,
		}
		quote := quotes[asset.Symbol]
		if usd, ok := quote.Price(entities.CurrencyUSD); ok {
			listing.PriceUSD = usd
			listing.Available = true
		}
		if price, ok := quote.Price(u.secondaryCurrency); ok {
			listing.Price = price
		}
		if change, ok := quote.Change(entities.CurrencyUSD); ok {
			listing.Change24h = &change
		}
		listings = append(listings, listing)
	}
	return listings, nil
}
