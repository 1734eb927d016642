package repositories

import (
	"context"

	"github.com/google/uuid"
	"savingz.backend/internal/domain/entities"
	"savingz.backend/pkg/utils"
)

// DepositRepository defines ledger operations
type DepositRepository interface {
	Create(ctx context.Context, deposit *entities.Deposit) error
	// ListByUserID returns deposits newest first, ties by id descending
	ListByUserID(ctx context.Context, userID uuid.UUID, pagination utils.PaginationParams) ([]entities.Deposit, int64, error)
	// SumByUser aggregates saved amounts for every user, including users with no deposits
	SumByUser(ctx context.Context) ([]entities.UserTotal, error)
}
