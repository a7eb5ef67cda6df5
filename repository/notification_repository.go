package repository

import (
	"context"

	"supply-service/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// NotificationRepository defines data access for persisted notifications.
type NotificationRepository interface {
	// Insert persists a notification. For low-stock notifications the
	// (item_id, message, type, notify_date) unique index plus ON CONFLICT
	// DO NOTHING make repeated inserts within one calendar day a no-op;
	// every other type inserts unconditionally. The bool reports whether a
	// row was actually created.
	Insert(ctx context.Context, n *models.Notification) (bool, error)
	// ListForUser returns the user's own notifications plus admin
	// broadcasts when the user is an admin.
	ListForUser(ctx context.Context, userID uuid.UUID, includeBroadcast bool, page, limit int) ([]models.Notification, int64, error)
	MarkRead(ctx context.Context, id int64, userID uuid.UUID, isAdmin bool) error
	Delete(ctx context.Context, id int64, userID uuid.UUID, isAdmin bool) error
	DeleteMany(ctx context.Context, ids []int64, userID uuid.UUID, isAdmin bool) (int64, error)
}

// GormNotificationRepository implements NotificationRepository using GORM.
type GormNotificationRepository struct {
	db *gorm.DB
}

// NewGormNotificationRepository creates a new GormNotificationRepository.
func NewGormNotificationRepository(db *gorm.DB) *GormNotificationRepository {
	return &GormNotificationRepository{db: db}
}

func (r *GormNotificationRepository) Insert(ctx context.Context, n *models.Notification) (bool, error) {
	query := r.db.WithContext(ctx)
	// Only scanner output is deduplicated; lifecycle notifications must
	// never be swallowed by the daily unique index.
	if n.Type == models.TypeLowStock {
		query = query.Clauses(clause.OnConflict{DoNothing: true})
	}
	res := query.Create(n)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *GormNotificationRepository) ListForUser(ctx context.Context, userID uuid.UUID, includeBroadcast bool, page, limit int) ([]models.Notification, int64, error) {
	var notifications []models.Notification
	var total int64

	query := r.db.WithContext(ctx).Model(&models.Notification{})
	if includeBroadcast {
		query = query.Where("recipient_id = ? OR recipient_id IS NULL", userID)
	} else {
		query = query.Where("recipient_id = ?", userID)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	if err := query.
		Offset(offset).
		Limit(limit).
		Order("created_at DESC").
		Find(&notifications).Error; err != nil {
		return nil, 0, err
	}
	return notifications, total, nil
}

// recipientScope restricts mutations to rows the user may touch: their own
// notifications, plus broadcasts for admins.
func recipientScope(query *gorm.DB, userID uuid.UUID, isAdmin bool) *gorm.DB {
	if isAdmin {
		return query.Where("recipient_id = ? OR recipient_id IS NULL", userID)
	}
	return query.Where("recipient_id = ?", userID)
}

func (r *GormNotificationRepository) MarkRead(ctx context.Context, id int64, userID uuid.UUID, isAdmin bool) error {
	res := recipientScope(r.db.WithContext(ctx).Model(&models.Notification{}).Where("id = ?", id), userID, isAdmin).
		Update("is_read", true)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *GormNotificationRepository) Delete(ctx context.Context, id int64, userID uuid.UUID, isAdmin bool) error {
	res := recipientScope(r.db.WithContext(ctx).Where("id = ?", id), userID, isAdmin).
		Delete(&models.Notification{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *GormNotificationRepository) DeleteMany(ctx context.Context, ids []int64, userID uuid.UUID, isAdmin bool) (int64, error) {
	res := recipientScope(r.db.WithContext(ctx).Where("id IN ?", ids), userID, isAdmin).
		Delete(&models.Notification{})
	return res.RowsAffected, res.Error
}
