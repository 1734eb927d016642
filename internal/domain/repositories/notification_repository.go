package repositories

import (
	"context"

	"github.com/google/uuid"
	"savingz.backend/internal/domain/entities"
	"savingz.backend/pkg/utils"
)

// NotificationRepository defines inbox and broadcast operations
type NotificationRepository interface {
	CreateBroadcast(ctx context.Context, broadcast *entities.BroadcastNotification) error
	CreateBatch(ctx context.Context, notifications []*entities.Notification) error
	ListByUserID(ctx context.Context, userID uuid.UUID, pagination utils.PaginationParams) ([]entities.Notification, int64, error)
	CountUnread(ctx context.Context, userID uuid.UUID) (int64, error)
	// MarkRead marks ids of userID as read, or all of them when ids is empty
	MarkRead(ctx context.Context, userID uuid.UUID, ids []uuid.UUID) (int64, error)
}
