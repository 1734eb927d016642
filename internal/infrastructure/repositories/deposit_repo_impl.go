package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
	"gorm.io/gorm"
	"savingz.backend/internal/domain/entities"
	"savingz.backend/internal/infrastructure/models"
	"savingz.backend/pkg/utils"
)

// DepositRepository implements the savings ledger
type DepositRepository struct {
	db *gorm.DB
}

// NewDepositRepository creates a new deposit repository
func NewDepositRepository(db *gorm.DB) *DepositRepository {
	return &DepositRepository{db: db}
}

// Create appends a deposit
func (r *DepositRepository) Create(ctx context.Context, deposit *entities.Deposit) error {
	if deposit.ID == uuid.Nil {
		deposit.ID = utils.GenerateUUIDv7()
	}
	if deposit.CreatedAt.IsZero() {
		deposit.CreatedAt = time.Now().UTC()
	}
	m := &models.Deposit{
		ID:        deposit.ID,
		UserID:    deposit.UserID,
		Amount:    deposit.Amount,
		Symbol:    deposit.Symbol,
		Quantity:  deposit.Quantity,
		UnitPrice: deposit.UnitPrice,
		CreatedAt: deposit.CreatedAt.UTC(),
	}
	return GetDB(ctx, r.db).Create(m).Error
}

// ListByUserID lists a user's deposits newest first
func (r *DepositRepository) ListByUserID(ctx context.Context, userID uuid.UUID, pagination utils.PaginationParams) ([]entities.Deposit, int64, error) {
	var totalCount int64
	query := GetDB(ctx, r.db).Model(&models.Deposit{}).Where("user_id = ?", userID)
	if err := query.Count(&totalCount).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.Deposit
	query = GetDB(ctx, r.db).Where("user_id = ?", userID).Order("created_at DESC").Order("id DESC")
	if pagination.Limit > 0 {
		query = query.Limit(pagination.Limit).Offset(pagination.CalculateOffset())
	}
	if err := query.Find(&rows).Error; err != nil {
		return nil, 0, err
	}

	deposits := make([]entities.Deposit, 0, len(rows))
	for i := range rows {
		deposits = append(deposits, toDepositEntity(&rows[i]))
	}
	return deposits, totalCount, nil
}

// SumByUser returns every user's saved total in one aggregate query
func (r *DepositRepository) SumByUser(ctx context.Context) ([]entities.UserTotal, error) {
	var rows []models.UserTotal
	err := GetDB(ctx, r.db).
		Table("users AS u").
		Select("u.id AS user_id, u.email, u.first_name, u.last_name, COALESCE(SUM(d.amount), 0) AS total_saved").
		Joins("LEFT JOIN deposits d ON d.user_id = u.id").
		Group("u.id, u.email, u.first_name, u.last_name").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	totals := make([]entities.UserTotal, 0, len(rows))
	for _, row := range rows {
		totals = append(totals, entities.UserTotal{
			UserID:     row.UserID,
			Email:      row.Email,
			FirstName:  null.StringFromPtr(row.FirstName),
			LastName:   null.StringFromPtr(row.LastName),
			TotalSaved: row.TotalSaved,
		})
	}
	return totals, nil
}

func toDepositEntity(m *models.Deposit) entities.Deposit {
	return entities.Deposit{
		ID:        m.ID,
		UserID:    m.UserID,
		Amount:    m.Amount,
		Symbol:    m.Symbol,
		Quantity:  m.Quantity,
		UnitPrice: m.UnitPrice,
		CreatedAt: m.CreatedAt,
	}
}
