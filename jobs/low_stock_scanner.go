package jobs

import (
	"context"
	"fmt"
	"time"

	"supply-service/models"
	"supply-service/repository"
	"supply-service/services"

	"go.uber.org/zap"
)

// LowStockScanner periodically flags consumable items whose quantity fell
// below the configured threshold. Duplicate suppression within one calendar
// day is the notification table's unique constraint, so running the scan
// twice is harmless.
type LowStockScanner struct {
	items         repository.ItemRepository
	notifications services.NotificationService
	categoryClass string
	threshold     int
	interval      time.Duration
	logger        *zap.Logger
}

// NewLowStockScanner creates a scanner. Threshold and category class are
// configuration inputs, not compile-time constants.
func NewLowStockScanner(
	items repository.ItemRepository,
	notifications services.NotificationService,
	categoryClass string,
	threshold int,
	interval time.Duration,
	logger *zap.Logger,
) *LowStockScanner {
	return &LowStockScanner{
		items:         items,
		notifications: notifications,
		categoryClass: categoryClass,
		threshold:     threshold,
		interval:      interval,
		logger:        logger,
	}
}

// Start runs the scanner until the context is cancelled.
func (s *LowStockScanner) Start(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		s.logger.Info("low stock scanner started",
			zap.Duration("interval", s.interval),
			zap.Int("threshold", s.threshold),
		)
		for {
			select {
			case <-ctx.Done():
				s.logger.Info("low stock scanner stopping")
				return
			case <-ticker.C:
				s.RunOnce(ctx)
			}
		}
	}()
}

// RunOnce performs a single scan. A failure on one item is logged and the
// scan continues; a failure to list the category aborts the whole tick.
func (s *LowStockScanner) RunOnce(ctx context.Context) int {
	items, err := s.items.FindLowStock(ctx, s.categoryClass, s.threshold)
	if err != nil {
		s.logger.Error("low stock scan aborted", zap.Error(err))
		return 0
	}

	dispatched := 0
	for i := range items {
		item := items[i]
		created := s.notifications.Dispatch(ctx, models.NotificationEvent{
			Type:    models.TypeLowStock,
			Message: LowStockMessage(&item),
			ItemID:  &item.ID,
		})
		if len(created) > 0 {
			dispatched++
		}
	}

	s.logger.Info("low stock scan finished",
		zap.Int("below_threshold", len(items)),
		zap.Int("alerts", dispatched),
	)
	return dispatched
}

// LowStockMessage composes the deterministic alert text. The text doubles as
// part of the dedup key, so it must stay stable for a given item and count.
func LowStockMessage(item *models.Item) string {
	return fmt.Sprintf("%s is low on stock (%d %s remaining)", item.Name, item.Quantity, item.Unit)
}
