package usecases

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"savingz.backend/internal/domain/entities"
	"savingz.backend/internal/domain/repositories"
	"savingz.backend/pkg/logger"
	"savingz.backend/pkg/utils"
)

// PortfolioUsecase values a saver's holdings at live prices
type PortfolioUsecase struct {
	userRepo          repositories.UserRepository
	depositRepo       repositories.DepositRepository
	oracle            PriceOracle
	secondaryCurrency string
	oracleTimeout     time.Duration
}

// NewPortfolioUsecase creates a new portfolio usecase
func NewPortfolioUsecase(
	userRepo repositories.UserRepository,
	depositRepo repositories.DepositRepository,
	oracle PriceOracle,
	secondaryCurrency string,
	oracleTimeout time.Duration,
) *PortfolioUsecase {
	if secondaryCurrency == "" {
		secondaryCurrency = entities.CurrencyNGN
	}
	return &PortfolioUsecase{
		userRepo:          userRepo,
		depositRepo:       depositRepo,
		oracle:            oracle,
		secondaryCurrency: secondaryCurrency,
		oracleTimeout:     oracleTimeout,
	}
}

// GetProfileView aggregates the saver's deposits and values them. Price
// failures never fail the view: affected symbols fall back to a unit price
// of 1 with no secondary value and the view is flagged with PriceError.
func (u *PortfolioUsecase) GetProfileView(ctx context.Context, firebaseUID string) (*entities.ProfileView, error) {
	user, err := u.userRepo.GetByFirebaseID(ctx, firebaseUID)
	if err != nil {
		return nil, err
	}

	deposits, _, err := u.depositRepo.ListByUserID(ctx, user.ID, utils.PaginationParams{Page: 1})
	if err != nil {
		return nil, err
	}
	if deposits == nil {
		deposits = []entities.Deposit{}
	}

	holdings := SumHoldings(deposits)
	view := &entities.ProfileView{
		ID:                user.ID,
		Email:             user.Email,
		FirstName:         user.FirstName,
		LastName:          user.LastName,
		Role:              user.Role,
		XP:                user.XP,
		Level:             user.Level,
		StreakCount:       user.StreakCount,
		LastSavedDate:     user.LastSavedDate,
		Holdings:          holdings,
		Breakdown:         []entities.HoldingBreakdown{},
		TotalUSD:          decimal.Zero,
		TotalSecondary:    decimal.Zero,
		SecondaryCurrency: u.secondaryCurrency,
		History:           deposits,
	}
	if len(holdings) == 0 {
		return view, nil
	}

	symbols := make([]string, 0, len(holdings))
	for symbol := range holdings {
		symbols = append(symbols, symbol)
	}
	sort.Strings(symbols)

	quotes := u.quotes(ctx, symbols)
	for _, symbol := range symbols {
		line := valueHolding(symbol, holdings[symbol], quotes[symbol], u.secondaryCurrency)
		if !line.Priced {
			view.PriceError = true
			view.UnpricedSymbols = append(view.UnpricedSymbols, symbol)
		}
		view.TotalUSD = view.TotalUSD.Add(line.AmountUSD)
		view.TotalSecondary = view.TotalSecondary.Add(line.SecondaryValue)
		view.Breakdown = append(view.Breakdown, line)
	}
	return view, nil
}

func (u *PortfolioUsecase) quotes(ctx context.Context, symbols []string) map[string]entities.AssetQuote {
	priceCtx, cancel := withTimeout(ctx, u.oracleTimeout)
	defer cancel()

	quotes, err := u.oracle.GetPrices(priceCtx, symbols, quoteCurrencies(u.secondaryCurrency))
	if err != nil {
		logger.Warn(ctx, "Valuing profile without live prices", zap.Strings("symbols", symbols), zap.Error(err))
		return nil
	}
	return quotes
}

// SumHoldings totals stored USD amounts per symbol
func SumHoldings(deposits []entities.Deposit) map[string]decimal.Decimal {
	holdings := make(map[string]decimal.Decimal)
	for _, d := range deposits {
		holdings[d.Symbol] = holdings[d.Symbol].Add(d.Amount)
	}
	return holdings
}

func valueHolding(symbol string, amountUSD decimal.Decimal, quote entities.AssetQuote, secondary string) entities.HoldingBreakdown {
	line := entities.HoldingBreakdown{
		Symbol:       symbol,
		AmountUSD:    amountUSD,
		UnitPriceUSD: decimal.NewFromInt(1),
		LiveQuantity: amountUSD,
	}
	if change, ok := quote.Change(entities.CurrencyUSD); ok {
		line.Change24h = &change
	}

	usdPrice, ok := quote.Price(entities.CurrencyUSD)
	if !ok {
		return line
	}
	line.UnitPriceUSD = usdPrice
	line.LiveQuantity = entities.ConvertToQuantity(amountUSD, usdPrice)

	secondaryPrice, ok := quote.Price(secondary)
	if !ok {
		return line
	}
	line.SecondaryValue = line.LiveQuantity.Mul(secondaryPrice).Round(2)
	line.Priced = true
	return line
}

func quoteCurrencies(secondary string) []string {
	if secondary == entities.CurrencyUSD {
		return []string{entities.CurrencyUSD}
	}
	return []string{entities.CurrencyUSD, secondary}
}
