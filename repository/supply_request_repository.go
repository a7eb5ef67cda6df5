package repository

import (
	"context"
	"time"

	"supply-service/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SupplyRequestRepository defines data access for supply requests and their
// line items.
type SupplyRequestRepository interface {
	Create(ctx context.Context, req *models.SupplyRequest) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.SupplyRequest, error)
	FindByRequester(ctx context.Context, requesterID uuid.UUID, page, limit int) ([]models.SupplyRequest, int64, error)
	FindAll(ctx context.Context, page, limit int) ([]models.SupplyRequest, int64, error)
	// UpdateWithStatusCheck persists the request's mutated fields only if
	// the stored row is still in one of fromStatuses. Returns
	// ErrStaleStatus when a concurrent transition got there first.
	UpdateWithStatusCheck(ctx context.Context, req *models.SupplyRequest, fromStatuses ...string) error
	// Fulfill runs the status transition and the stock debits as one
	// transaction: the primary item plus every non-rejected line. Returns
	// ErrInsufficientStock (request untouched) when any debit would drive
	// that item's quantity negative.
	Fulfill(ctx context.Context, req *models.SupplyRequest, quantity int, fromStatuses ...string) error
	FindLine(ctx context.Context, requestID, lineID uuid.UUID) (*models.SupplyRequestItem, error)
	RejectLine(ctx context.Context, line *models.SupplyRequestItem) error
	UsageByPeriod(ctx context.Context, since time.Time) ([]models.ItemUsage, error)
}

// GormSupplyRequestRepository implements SupplyRequestRepository using GORM.
type GormSupplyRequestRepository struct {
	db *gorm.DB
}

// NewGormSupplyRequestRepository creates a new GormSupplyRequestRepository.
func NewGormSupplyRequestRepository(db *gorm.DB) *GormSupplyRequestRepository {
	return &GormSupplyRequestRepository{db: db}
}

func (r *GormSupplyRequestRepository) Create(ctx context.Context, req *models.SupplyRequest) error {
	return r.db.WithContext(ctx).Create(req).Error
}

func (r *GormSupplyRequestRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.SupplyRequest, error) {
	var req models.SupplyRequest
	if err := r.db.WithContext(ctx).
		Preload("Items").
		Where("id = ?", id).
		First(&req).Error; err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *GormSupplyRequestRepository) FindByRequester(ctx context.Context, requesterID uuid.UUID, page, limit int) ([]models.SupplyRequest, int64, error) {
	return r.list(ctx, r.db.WithContext(ctx).
		Model(&models.SupplyRequest{}).
		Where("requester_id = ?", requesterID), page, limit)
}

func (r *GormSupplyRequestRepository) FindAll(ctx context.Context, page, limit int) ([]models.SupplyRequest, int64, error) {
	return r.list(ctx, r.db.WithContext(ctx).Model(&models.SupplyRequest{}), page, limit)
}

func (r *GormSupplyRequestRepository) list(ctx context.Context, query *gorm.DB, page, limit int) ([]models.SupplyRequest, int64, error) {
	var requests []models.SupplyRequest
	var total int64

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	if err := query.
		Preload("Items").
		Offset(offset).
		Limit(limit).
		Order("created_at DESC").
		Find(&requests).Error; err != nil {
		return nil, 0, err
	}
	return requests, total, nil
}

func (r *GormSupplyRequestRepository) UpdateWithStatusCheck(ctx context.Context, req *models.SupplyRequest, fromStatuses ...string) error {
	return updateWithStatusCheck(r.db.WithContext(ctx), req, fromStatuses)
}

func (r *GormSupplyRequestRepository) Fulfill(ctx context.Context, req *models.SupplyRequest, quantity int, fromStatuses ...string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := decrementStock(tx, req.ItemID, quantity); err != nil {
			return err
		}
		for i := range req.Items {
			line := &req.Items[i]
			if line.Status == models.LineStatusRejected {
				continue
			}
			if err := decrementStock(tx, line.ItemID, line.Quantity); err != nil {
				return err
			}
		}
		return updateWithStatusCheck(tx, req, fromStatuses)
	})
}

// updateWithStatusCheck writes the full row guarded by the expected stored
// status, so stale or duplicate transition attempts match nothing.
func updateWithStatusCheck(tx *gorm.DB, req *models.SupplyRequest, fromStatuses []string) error {
	res := tx.Model(&models.SupplyRequest{}).
		Where("id = ? AND status IN ?", req.ID, fromStatuses).
		Select("*").
		Omit("id", "created_at", "Items").
		Updates(req)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrStaleStatus
	}
	return nil
}

func (r *GormSupplyRequestRepository) FindLine(ctx context.Context, requestID, lineID uuid.UUID) (*models.SupplyRequestItem, error) {
	var line models.SupplyRequestItem
	if err := r.db.WithContext(ctx).
		Where("id = ? AND supply_request_id = ?", lineID, requestID).
		First(&line).Error; err != nil {
		return nil, err
	}
	return &line, nil
}

func (r *GormSupplyRequestRepository) RejectLine(ctx context.Context, line *models.SupplyRequestItem) error {
	res := r.db.WithContext(ctx).Model(&models.SupplyRequestItem{}).
		Where("id = ? AND status = ?", line.ID, models.LineStatusPending).
		Updates(map[string]interface{}{
			"status":           models.LineStatusRejected,
			"rejection_reason": line.RejectionReason,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrStaleStatus
	}
	return nil
}

// UsageByPeriod buckets fulfilled requests by month per item. Feeds the
// stock-overview and reporting exports.
func (r *GormSupplyRequestRepository) UsageByPeriod(ctx context.Context, since time.Time) ([]models.ItemUsage, error) {
	var usage []models.ItemUsage
	err := r.db.WithContext(ctx).
		Model(&models.SupplyRequest{}).
		Select(`supply_requests.item_id,
			items.name AS item_name,
			to_char(supply_requests.fulfilled_at, 'YYYY-MM') AS period,
			SUM(supply_requests.quantity) AS quantity_drawn,
			COUNT(*) AS request_count,
			MAX(items.quantity) AS remaining`).
		Joins("JOIN items ON items.id = supply_requests.item_id").
		Where("supply_requests.status = ? AND supply_requests.fulfilled_at >= ?", models.StatusFulfilled, since).
		Group("supply_requests.item_id, items.name, period").
		Order("period DESC").
		Scan(&usage).Error
	return usage, err
}
