package usecases

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"savingz.backend/internal/domain/entities"
	domainerrors "savingz.backend/internal/domain/errors"
	"savingz.backend/internal/domain/repositories"
	"savingz.backend/pkg/logger"
	"savingz.backend/pkg/utils"
)

// maxDepositAmount bounds a single deposit to what the ledger column holds
var maxDepositAmount = decimal.New(1, 12)

// depositAttempts is the number of times a conflicting deposit is tried
const depositAttempts = 2

// SavingsUsecase records deposits and updates the saver's progression
type SavingsUsecase struct {
	uow           repositories.UnitOfWork
	userRepo      repositories.UserRepository
	depositRepo   repositories.DepositRepository
	oracle        PriceOracle
	leaderboard   LeaderboardInvalidator
	metrics       SavingsMetrics
	oracleTimeout time.Duration
	now           func() time.Time
}

// NewSavingsUsecase creates a new savings usecase
func NewSavingsUsecase(
	uow repositories.UnitOfWork,
	userRepo repositories.UserRepository,
	depositRepo repositories.DepositRepository,
	oracle PriceOracle,
	leaderboard LeaderboardInvalidator,
	metrics SavingsMetrics,
	oracleTimeout time.Duration,
) *SavingsUsecase {
	return &SavingsUsecase{
		uow:           uow,
		userRepo:      userRepo,
		depositRepo:   depositRepo,
		oracle:        oracle,
		leaderboard:   leaderboard,
		metrics:       metrics,
		oracleTimeout: oracleTimeout,
		now:           time.Now,
	}
}

// RecordDeposit converts a USD amount into the chosen asset at the current
// price and appends it to the saver's ledger.
func (u *SavingsUsecase) RecordDeposit(ctx context.Context, firebaseUID string, input *entities.RecordDepositInput) (*entities.DepositResult, error) {
	if input == nil || !input.Amount.IsPositive() {
		return nil, domainerrors.Invalid("amount must be a positive number")
	}
	if input.Amount.GreaterThan(maxDepositAmount) {
		return nil, domainerrors.Invalid("amount is too large")
	}
	asset, ok := entities.LookupAsset(input.AssetSymbol())
	if !ok {
		return nil, domainerrors.Invalid("unsupported symbol")
	}

	user, err := u.userRepo.GetByFirebaseID(ctx, firebaseUID)
	if err != nil {
		return nil, err
	}

	unitPrice, err := u.unitPrice(ctx, asset.Symbol)
	if err != nil {
		return nil, err
	}

	var result *entities.DepositResult
	for attempt := 1; attempt <= depositAttempts; attempt++ {
		result, err = u.recordOnce(ctx, user.ID, asset.Symbol, input.Amount, unitPrice)
		if !errors.Is(err, domainerrors.ErrConflict) {
			break
		}
		logger.Warn(ctx, "Deposit conflicted with a concurrent update",
			zap.String("user_id", user.ID.String()),
			zap.Int("attempt", attempt),
		)
	}
	if errors.Is(err, domainerrors.ErrConflict) {
		return nil, fmt.Errorf("%w: %v", domainerrors.ErrUpstreamUnavailable, err)
	}
	if err != nil {
		return nil, err
	}

	if u.leaderboard != nil {
		u.leaderboard.Invalidate(ctx)
	}
	if u.metrics != nil {
		u.metrics.RecordDeposit(asset.Symbol, input.Amount)
	}

	logger.Info(ctx, "Deposit recorded",
		zap.String("deposit_id", result.Deposit.ID.String()),
		zap.String("symbol", asset.Symbol),
		zap.String("amount", input.Amount.String()),
		zap.Int64("xp", result.XP),
	)
	return result, nil
}

func (u *SavingsUsecase) unitPrice(ctx context.Context, symbol string) (decimal.Decimal, error) {
	priceCtx, cancel := withTimeout(ctx, u.oracleTimeout)
	defer cancel()

	quotes, err := u.oracle.GetPrices(priceCtx, []string{symbol}, []string{entities.CurrencyUSD})
	if err != nil {
		return decimal.Zero, domainerrors.Upstream(fmt.Errorf("price lookup for %s: %w", symbol, err))
	}
	price, ok := quotes[symbol].Price(entities.CurrencyUSD)
	if !ok {
		return decimal.Zero, fmt.Errorf("%w: no price for %s", domainerrors.ErrUpstreamUnavailable, symbol)
	}
	return price, nil
}

func (u *SavingsUsecase) recordOnce(ctx context.Context, userID uuid.UUID, symbol string, amount, unitPrice decimal.Decimal) (*entities.DepositResult, error) {
	var result *entities.DepositResult

	err := u.uow.Do(ctx, func(txCtx context.Context) error {
		user, err := u.userRepo.GetByID(u.uow.WithLock(txCtx), userID)
		if err != nil {
			return err
		}

		now := u.now().UTC()
		deposit := &entities.Deposit{
			UserID:    user.ID,
			Amount:    amount,
			Symbol:    symbol,
			Quantity:  entities.ConvertToQuantity(amount, unitPrice),
			UnitPrice: unitPrice,
			CreatedAt: now,
		}
		if err := u.depositRepo.Create(txCtx, deposit); err != nil {
			return err
		}

		previousXP := user.XP
		earned := user.ApplyDeposit(amount, now)
		if err := u.userRepo.UpdateProgress(txCtx, user, previousXP); err != nil {
			return err
		}

		result = &entities.DepositResult{
			Deposit:     deposit,
			XP:          user.XP,
			Level:       user.Level,
			StreakCount: user.StreakCount,
			XPEarned:    earned,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// ListDeposits returns the saver's raw deposit history, newest first
func (u *SavingsUsecase) ListDeposits(ctx context.Context, firebaseUID string, pagination utils.PaginationParams) ([]entities.Deposit, *utils.PaginationMeta, error) {
	user, err := u.userRepo.GetByFirebaseID(ctx, firebaseUID)
	if err != nil {
		return nil, nil, err
	}

	deposits, total, err := u.depositRepo.ListByUserID(ctx, user.ID, pagination)
	if err != nil {
		return nil, nil, err
	}
	if deposits == nil {
		deposits = []entities.Deposit{}
	}

	meta := utils.CalculateMeta(total, pagination.Page, pagination.Limit)
	return deposits, &meta, nil
}
