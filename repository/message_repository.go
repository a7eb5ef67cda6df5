package repository

import (
	"context"
	"time"

	"supply-service/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MessageRepository defines data access for per-request message threads.
type MessageRepository interface {
	Append(ctx context.Context, msg *models.SupplyRequestMessage) error
	ListByRequest(ctx context.Context, requestID uuid.UUID) ([]models.SupplyRequestMessage, error)
	// MarkRead flips is_read for every unread message in the thread not
	// authored by the reader. Returns the number of rows flipped.
	MarkRead(ctx context.Context, requestID, readerID uuid.UUID) (int64, error)
	DeleteByRequest(ctx context.Context, requestID uuid.UUID) (int64, error)
}

// GormMessageRepository implements MessageRepository using GORM.
type GormMessageRepository struct {
	db *gorm.DB
}

// NewGormMessageRepository creates a new GormMessageRepository.
func NewGormMessageRepository(db *gorm.DB) *GormMessageRepository {
	return &GormMessageRepository{db: db}
}

func (r *GormMessageRepository) Append(ctx context.Context, msg *models.SupplyRequestMessage) error {
	return r.db.WithContext(ctx).Create(msg).Error
}

func (r *GormMessageRepository) ListByRequest(ctx context.Context, requestID uuid.UUID) ([]models.SupplyRequestMessage, error) {
	var msgs []models.SupplyRequestMessage
	err := r.db.WithContext(ctx).
		Where("supply_request_id = ?", requestID).
		Order("created_at ASC").
		Find(&msgs).Error
	return msgs, err
}

func (r *GormMessageRepository) MarkRead(ctx context.Context, requestID, readerID uuid.UUID) (int64, error) {
	now := time.Now()
	res := r.db.WithContext(ctx).Model(&models.SupplyRequestMessage{}).
		Where("supply_request_id = ? AND author_id <> ? AND is_read = ?", requestID, readerID, false).
		Updates(map[string]interface{}{
			"is_read": true,
			"read_at": now,
		})
	return res.RowsAffected, res.Error
}

func (r *GormMessageRepository) DeleteByRequest(ctx context.Context, requestID uuid.UUID) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("supply_request_id = ?", requestID).
		Delete(&models.SupplyRequestMessage{})
	return res.RowsAffected, res.Error
}
