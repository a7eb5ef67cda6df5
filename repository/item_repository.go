package repository

import (
	"context"
	"errors"

	"supply-service/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Sentinel errors surfaced by the storage layer. Services translate them
// into their HTTP-facing taxonomy.
var (
	// ErrInsufficientStock means a decrement would have driven the
	// quantity negative; the row was left untouched.
	ErrInsufficientStock = errors.New("insufficient stock")
	// ErrStaleStatus means a guarded status update matched no row because
	// the request was no longer in the expected status.
	ErrStaleStatus = errors.New("request status changed concurrently")
)

// ItemRepository defines data access for inventory items.
type ItemRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Item, error)
	FindByLegacyID(ctx context.Context, legacyID int64) (*models.Item, error)
	ResolveRef(ctx context.Context, ref models.ItemRef) (*models.Item, error)
	FindLowStock(ctx context.Context, categoryClass string, threshold int) ([]models.Item, error)
	FindDurable(ctx context.Context) ([]models.Item, error)
	Restock(ctx context.Context, id uuid.UUID, quantity int) error
	UpdateLifespan(ctx context.Context, id uuid.UUID, remainingYears float64, estimate string) error
}

// GormItemRepository implements ItemRepository using GORM.
type GormItemRepository struct {
	db *gorm.DB
}

// NewGormItemRepository creates a new GormItemRepository.
func NewGormItemRepository(db *gorm.DB) *GormItemRepository {
	return &GormItemRepository{db: db}
}

func (r *GormItemRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.Item, error) {
	var item models.Item
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&item).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *GormItemRepository) FindByLegacyID(ctx context.Context, legacyID int64) (*models.Item, error) {
	var item models.Item
	if err := r.db.WithContext(ctx).Where("legacy_id = ?", legacyID).First(&item).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

// ResolveRef resolves a tagged item reference to its canonical row once, at
// the write path's entry. Nothing downstream handles legacy keys.
func (r *GormItemRepository) ResolveRef(ctx context.Context, ref models.ItemRef) (*models.Item, error) {
	if ref.ByLegacy() {
		return r.FindByLegacyID(ctx, ref.LegacyID)
	}
	return r.FindByID(ctx, ref.UUID)
}

// FindLowStock returns items of the given category class whose quantity is
// below the threshold.
func (r *GormItemRepository) FindLowStock(ctx context.Context, categoryClass string, threshold int) ([]models.Item, error) {
	var items []models.Item
	err := r.db.WithContext(ctx).
		Where("category_class = ? AND quantity < ?", categoryClass, threshold).
		Order("quantity ASC").
		Find(&items).Error
	return items, err
}

// FindDurable returns all non-deleted items outside the consumable class,
// the population the lifespan estimator batches.
func (r *GormItemRepository) FindDurable(ctx context.Context) ([]models.Item, error) {
	var items []models.Item
	err := r.db.WithContext(ctx).
		Where("category_class <> ?", models.CategoryClassSupply).
		Find(&items).Error
	return items, err
}

// Restock atomically increments the quantity.
func (r *GormItemRepository) Restock(ctx context.Context, id uuid.UUID, quantity int) error {
	res := r.db.WithContext(ctx).Model(&models.Item{}).
		Where("id = ?", id).
		Update("quantity", gorm.Expr("quantity + ?", quantity))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// UpdateLifespan writes a prediction back to the item row.
func (r *GormItemRepository) UpdateLifespan(ctx context.Context, id uuid.UUID, remainingYears float64, estimate string) error {
	res := r.db.WithContext(ctx).Model(&models.Item{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"remaining_years":   remainingYears,
			"lifespan_estimate": estimate,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// decrementStock runs the oversell-safe debit inside the given handle. The
// guard in the WHERE clause makes the check and the decrement one statement,
// so two concurrent fulfillments cannot race past the stock check.
func decrementStock(tx *gorm.DB, itemID uuid.UUID, quantity int) error {
	res := tx.Model(&models.Item{}).
		Where("id = ? AND quantity >= ?", itemID, quantity).
		Update("quantity", gorm.Expr("quantity - ?", quantity))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrInsufficientStock
	}
	return nil
}
