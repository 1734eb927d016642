package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"savingz.backend/internal/domain/entities"
	"savingz.backend/internal/infrastructure/models"
	"savingz.backend/pkg/utils"
)

const notificationBatchSize = 500

// NotificationRepository implements broadcast and inbox storage
type NotificationRepository struct {
	db *gorm.DB
}

// NewNotificationRepository creates a new notification repository
func NewNotificationRepository(db *gorm.DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

// CreateBroadcast stores the broadcast record
func (r *NotificationRepository) CreateBroadcast(ctx context.Context, broadcast *entities.BroadcastNotification) error {
	if broadcast.ID == uuid.Nil {
		broadcast.ID = utils.GenerateUUIDv7()
	}
	if broadcast.CreatedAt.IsZero() {
		broadcast.CreatedAt = time.Now().UTC()
	}
	return GetDB(ctx, r.db).Create(&models.BroadcastNotification{
		ID:             broadcast.ID,
		Title:          broadcast.Title,
		Message:        broadcast.Message,
		SenderID:       broadcast.SenderID,
		RecipientCount: broadcast.RecipientCount,
		CreatedAt:      broadcast.CreatedAt.UTC(),
	}).Error
}

// CreateBatch inserts inbox rows in chunks
func (r *NotificationRepository) CreateBatch(ctx context.Context, notifications []*entities.Notification) error {
	if len(notifications) == 0 {
		return nil
	}
	now := time.Now().UTC()
	rows := make([]models.Notification, 0, len(notifications))
	for _, n := range notifications {
		if n.ID == uuid.Nil {
			n.ID = utils.GenerateUUIDv7()
		}
		if n.CreatedAt.IsZero() {
			n.CreatedAt = now
		}
		rows = append(rows, models.Notification{
			ID:          n.ID,
			UserID:      n.UserID,
			BroadcastID: n.BroadcastID,
			Title:       n.Title,
			Message:     n.Message,
			IsRead:      n.IsRead,
			CreatedAt:   n.CreatedAt.UTC(),
		})
	}
	return GetDB(ctx, r.db).CreateInBatches(rows, notificationBatchSize).Error
}

// ListByUserID lists a user's notifications newest first
func (r *NotificationRepository) ListByUserID(ctx context.Context, userID uuid.UUID, pagination utils.PaginationParams) ([]entities.Notification, int64, error) {
	var totalCount int64
	if err := GetDB(ctx, r.db).Model(&models.Notification{}).Where("user_id = ?", userID).Count(&totalCount).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.Notification
	query := GetDB(ctx, r.db).Where("user_id = ?", userID).Order("created_at DESC").Order("id DESC")
	if pagination.Limit > 0 {
		query = query.Limit(pagination.Limit).Offset(pagination.CalculateOffset())
	}
	if err := query.Find(&rows).Error; err != nil {
		return nil, 0, err
	}

	out := make([]entities.Notification, 0, len(rows))
	for _, m := range rows {
		out = append(out, entities.Notification{
			ID:          m.ID,
			UserID:      m.UserID,
			BroadcastID: m.BroadcastID,
			Title:       m.Title,
			Message:     m.Message,
			IsRead:      m.IsRead,
			CreatedAt:   m.CreatedAt,
		})
	}
	return out, totalCount, nil
}

// CountUnread counts unread notifications of a user
func (r *NotificationRepository) CountUnread(ctx context.Context, userID uuid.UUID) (int64, error) {
	var count int64
	err := GetDB(ctx, r.db).Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Count(&count).Error
	return count, err
}

// MarkRead marks notifications as read; ids of other users never match
func (r *NotificationRepository) MarkRead(ctx context.Context, userID uuid.UUID, ids []uuid.UUID) (int64, error) {
	query := GetDB(ctx, r.db).Model(&models.Notification{}).Where("user_id = ? AND is_read = ?", userID, false)
	if len(ids) > 0 {
		query = query.Where("id IN ?", ids)
	}
	result := query.Update("is_read", true)
	return result.RowsAffected, result.Error
}
