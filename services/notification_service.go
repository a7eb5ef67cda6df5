package services

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"supply-service/models"
	"supply-service/realtime"
	"supply-service/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// NotificationService persists notification records and fans them out to
// connected clients.
type NotificationService interface {
	// Dispatch turns a domain event into a persisted notification and a
	// best-effort push. It never returns an error: persistence and push
	// failures are logged and swallowed so the triggering transition is
	// never aborted. The returned slice is empty when the daily low-stock
	// dedup suppressed the insert.
	Dispatch(ctx context.Context, event models.NotificationEvent) []models.Notification
	List(ctx context.Context, userID uuid.UUID, isAdmin bool, page, limit int) ([]models.Notification, int64, *ServiceError)
	MarkRead(ctx context.Context, id int64, userID uuid.UUID, isAdmin bool) *ServiceError
	Delete(ctx context.Context, id int64, userID uuid.UUID, isAdmin bool) *ServiceError
	DeleteMany(ctx context.Context, ids []int64, userID uuid.UUID, isAdmin bool) (int64, *ServiceError)
}

type notificationServiceImpl struct {
	repo      repository.NotificationRepository
	publisher realtime.Publisher
	logger    *zap.Logger
}

// NewNotificationService creates a new NotificationService.
func NewNotificationService(repo repository.NotificationRepository, publisher realtime.Publisher, logger *zap.Logger) NotificationService {
	return &notificationServiceImpl{repo: repo, publisher: publisher, logger: logger}
}

func (s *notificationServiceImpl) Dispatch(ctx context.Context, event models.NotificationEvent) []models.Notification {
	n := models.Notification{
		ItemID:          event.ItemID,
		SupplyRequestID: event.SupplyRequestID,
		RecipientID:     event.RecipientID,
		Message:         event.Message,
		Type:            event.Type,
		NotifyDate:      time.Now().Format("2006-01-02"),
	}

	created, err := s.repo.Insert(ctx, &n)
	if err != nil {
		s.logger.Error("notification persist failed",
			zap.String("type", event.Type),
			zap.Error(err),
		)
		return nil
	}
	if !created {
		// Daily dedup suppressed the insert; nothing to push.
		s.logger.Debug("duplicate notification suppressed",
			zap.String("type", event.Type),
			zap.String("message", event.Message),
		)
		return nil
	}

	payload, err := json.Marshal(n)
	if err != nil {
		s.logger.Error("notification payload marshal failed", zap.Error(err))
		return []models.Notification{n}
	}
	if event.RecipientID == nil {
		s.publisher.PublishBroadcast(ctx, payload)
	} else {
		s.publisher.PublishToUser(ctx, event.RecipientID.String(), payload)
	}

	return []models.Notification{n}
}

func (s *notificationServiceImpl) List(ctx context.Context, userID uuid.UUID, isAdmin bool, page, limit int) ([]models.Notification, int64, *ServiceError) {
	notifications, total, err := s.repo.ListForUser(ctx, userID, isAdmin, page, limit)
	if err != nil {
		s.logger.Error("failed to list notifications", zap.Error(err))
		return nil, 0, internalError("Failed to fetch notifications")
	}
	return notifications, total, nil
}

func (s *notificationServiceImpl) MarkRead(ctx context.Context, id int64, userID uuid.UUID, isAdmin bool) *ServiceError {
	if err := s.repo.MarkRead(ctx, id, userID, isAdmin); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return notFoundError("Notification")
		}
		s.logger.Error("failed to mark notification read", zap.Int64("id", id), zap.Error(err))
		return internalError("Failed to update notification")
	}
	return nil
}

func (s *notificationServiceImpl) Delete(ctx context.Context, id int64, userID uuid.UUID, isAdmin bool) *ServiceError {
	if err := s.repo.Delete(ctx, id, userID, isAdmin); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return notFoundError("Notification")
		}
		s.logger.Error("failed to delete notification", zap.Int64("id", id), zap.Error(err))
		return internalError("Failed to delete notification")
	}
	return nil
}

func (s *notificationServiceImpl) DeleteMany(ctx context.Context, ids []int64, userID uuid.UUID, isAdmin bool) (int64, *ServiceError) {
	deleted, err := s.repo.DeleteMany(ctx, ids, userID, isAdmin)
	if err != nil {
		s.logger.Error("failed to bulk delete notifications", zap.Error(err))
		return 0, internalError("Failed to delete notifications")
	}
	return deleted, nil
}
