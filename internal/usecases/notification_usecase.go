package usecases

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"savingz.backend/internal/domain/entities"
	domainerrors "savingz.backend/internal/domain/errors"
	"savingz.backend/internal/domain/repositories"
	"savingz.backend/pkg/logger"
	"savingz.backend/pkg/utils"
)

// NotificationUsecase handles admin broadcasts and user inboxes
type NotificationUsecase struct {
	uow              repositories.UnitOfWork
	userRepo         repositories.UserRepository
	notificationRepo repositories.NotificationRepository
	push             PushGateway
	metrics          PushMetrics
}

// NewNotificationUsecase creates a new notification usecase; push may be nil
func NewNotificationUsecase(
	uow repositories.UnitOfWork,
	userRepo repositories.UserRepository,
	notificationRepo repositories.NotificationRepository,
	push PushGateway,
	metrics PushMetrics,
) *NotificationUsecase {
	return &NotificationUsecase{
		uow:              uow,
		userRepo:         userRepo,
		notificationRepo: notificationRepo,
		push:             push,
		metrics:          metrics,
	}
}

// Broadcast stores a notification from sender for every user and then pushes
// it to every registered device. Senders without the admin role are refused. Push failures are reported in the result and
// never undo the stored notifications.
func (u *NotificationUsecase) Broadcast(ctx context.Context, sender *entities.User, input *entities.BroadcastInput) (*entities.BroadcastResult, error) {
	if !sender.IsAdmin() {
		return nil, domainerrors.ErrForbidden
	}

	if input == nil {
		return nil, domainerrors.Invalid("title and message are required")
	}
	if reason, ok := input.Normalize(); !ok {
		return nil, domainerrors.Invalid(reason)
	}

	broadcast := &entities.BroadcastNotification{
		Title:    input.Title,
		Message:  input.Message,
		SenderID: sender.ID,
	}
	err := u.uow.Do(ctx, func(txCtx context.Context) error {
		userIDs, err := u.userRepo.ListIDs(txCtx)
		if err != nil {
			return err
		}
		broadcast.RecipientCount = len(userIDs)
		if err := u.notificationRepo.CreateBroadcast(txCtx, broadcast); err != nil {
			return err
		}

		inbox := make([]*entities.Notification, 0, len(userIDs))
		for _, id := range userIDs {
			inbox = append(inbox, &entities.Notification{
				UserID:      id,
				BroadcastID: &broadcast.ID,
				Title:       broadcast.Title,
				Message:     broadcast.Message,
			})
		}
		return u.notificationRepo.CreateBatch(txCtx, inbox)
	})
	if err != nil {
		return nil, err
	}

	result := &entities.BroadcastResult{Broadcast: broadcast, Count: broadcast.RecipientCount}
	u.dispatch(ctx, broadcast, result)

	logger.Info(ctx, "Broadcast stored",
		zap.String("broadcast_id", broadcast.ID.String()),
		zap.Int("recipients", result.Count),
		zap.Int("push_sent", result.PushSent),
		zap.Int("push_failed", result.PushFailed),
	)
	return result, nil
}

func (u *NotificationUsecase) dispatch(ctx context.Context, broadcast *entities.BroadcastNotification, result *entities.BroadcastResult) {
	if u.push == nil {
		return
	}
	tokens, err := u.userRepo.ListPushTokens(ctx)
	if err != nil {
		logger.Error(ctx, "Push dispatch skipped, could not load device tokens", zap.Error(err))
		result.PushError = true
		return
	}
	messages := BuildPushBatch(tokens, broadcast.Title, broadcast.Message)
	if len(messages) == 0 {
		return
	}

	report, err := u.push.Send(ctx, messages)
	result.PushSent = report.Sent
	result.PushFailed = report.Failed
	if err != nil {
		logger.Error(ctx, "Push dispatch failed",
			zap.String("broadcast_id", broadcast.ID.String()),
			zap.Int("failed", report.Failed),
			zap.Error(err),
		)
		result.PushError = true
	}
	if u.metrics != nil {
		u.metrics.RecordPush(report.Sent, report.Failed)
	}
}

// BuildPushBatch makes one message per distinct non-empty token
func BuildPushBatch(tokens []string, title, body string) []entities.PushMessage {
	seen := make(map[string]struct{}, len(tokens))
	messages := make([]entities.PushMessage, 0, len(tokens))
	for _, token := range tokens {
		token = strings.TrimSpace(token)
		if token == "" {
			continue
		}
		if _, dup := seen[token]; dup {
			continue
		}
		seen[token] = struct{}{}
		messages = append(messages, entities.PushMessage{To: token, Title: title, Body: body})
	}
	return messages
}

// List returns the caller's notifications, newest first
func (u *NotificationUsecase) List(ctx context.Context, firebaseUID string, pagination utils.PaginationParams) ([]entities.Notification, *utils.PaginationMeta, error) {
	user, err := u.userRepo.GetByFirebaseID(ctx, firebaseUID)
	if err != nil {
		return nil, nil, err
	}
	items, total, err := u.notificationRepo.ListByUserID(ctx, user.ID, pagination)
	if err != nil {
		return nil, nil, err
	}
	if items == nil {
		items = []entities.Notification{}
	}
	meta := utils.CalculateMeta(total, pagination.Page, pagination.Limit)
	return items, &meta, nil
}

// UnreadCount returns how many of the caller's notifications are unread
func (u *NotificationUsecase) UnreadCount(ctx context.Context, firebaseUID string) (int64, error) {
	user, err := u.userRepo.GetByFirebaseID(ctx, firebaseUID)
	if err != nil {
		return 0, err
	}
	return u.notificationRepo.CountUnread(ctx, user.ID)
}

// MarkRead marks the given notifications, or all of them, as read
func (u *NotificationUsecase) MarkRead(ctx context.Context, firebaseUID string, input *entities.MarkReadInput) (int64, error) {
	user, err := u.userRepo.GetByFirebaseID(ctx, firebaseUID)
	if err != nil {
		return 0, err
	}
	var ids []uuid.UUID
	if input != nil {
		ids = input.IDs
	}
	return u.notificationRepo.MarkRead(ctx, user.ID, ids)
}
