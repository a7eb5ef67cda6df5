package jobs

import (
	"context"
	"time"

	"supply-service/models"
	"supply-service/predictor"
	"supply-service/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Predictor is the slice of the prediction client the estimator needs.
type Predictor interface {
	Predict(ctx context.Context, items []predictor.ItemInput) ([]predictor.Prediction, error)
}

// LifespanEstimator periodically batches all durable assets into one call
// to the external prediction service and writes the predicted remaining
// lifespan back to each item.
type LifespanEstimator struct {
	items    repository.ItemRepository
	client   Predictor
	interval time.Duration
	logger   *zap.Logger
	now      func() time.Time
}

// NewLifespanEstimator creates an estimator.
func NewLifespanEstimator(items repository.ItemRepository, client Predictor, interval time.Duration, logger *zap.Logger) *LifespanEstimator {
	return &LifespanEstimator{
		items:    items,
		client:   client,
		interval: interval,
		logger:   logger,
		now:      time.Now,
	}
}

// Start runs the estimator until the context is cancelled.
func (e *LifespanEstimator) Start(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(e.interval)
		defer ticker.Stop()

		e.logger.Info("lifespan estimator started", zap.Duration("interval", e.interval))
		for {
			select {
			case <-ctx.Done():
				e.logger.Info("lifespan estimator stopping")
				return
			case <-ticker.C:
				e.RunOnce(ctx)
			}
		}
	}()
}

// RunOnce performs one batch. A failed service call aborts the whole batch
// with no writes; a single failed write-back is logged and the remaining
// predictions still land. Returns the number of items updated.
func (e *LifespanEstimator) RunOnce(ctx context.Context) int {
	items, err := e.items.FindDurable(ctx)
	if err != nil {
		e.logger.Error("lifespan batch aborted: listing durable items failed", zap.Error(err))
		return 0
	}
	if len(items) == 0 {
		return 0
	}

	now := e.now()
	byID := make(map[string]*models.Item, len(items))
	inputs := make([]predictor.ItemInput, 0, len(items))
	for i := range items {
		item := &items[i]
		byID[item.ID.String()] = item
		inputs = append(inputs, predictor.ItemInput{
			ItemID:           item.ID.String(),
			Category:         item.Category,
			YearsInUse:       item.YearsInUse(now),
			MaintenanceCount: item.MaintenanceCount,
			ConditionNumber:  models.ConditionNumber(item.Condition),
			ConditionStatus:  item.Condition,
			Condition:        item.Condition,
			LastReason:       item.LastReason,
		})
	}

	predictions, err := e.client.Predict(ctx, inputs)
	if err != nil {
		e.logger.Error("lifespan batch aborted: prediction call failed",
			zap.Int("items", len(inputs)),
			zap.Error(err),
		)
		return 0
	}

	updated := 0
	for _, p := range predictions {
		item, ok := byID[p.ItemID]
		if !ok {
			e.logger.Warn("prediction for unknown item", zap.String("item_id", p.ItemID))
			continue
		}
		if err := e.writeBack(ctx, item.ID, p); err != nil {
			e.logger.Error("lifespan write-back failed",
				zap.String("item_id", p.ItemID),
				zap.Error(err),
			)
			continue
		}
		updated++
	}

	e.logger.Info("lifespan batch finished",
		zap.Int("items", len(items)),
		zap.Int("predictions", len(predictions)),
		zap.Int("updated", updated),
	)
	return updated
}

// writeBack persists one prediction and re-reads the row to verify the
// values actually landed, guarding against another process overwriting the
// same row between the update and the read.
func (e *LifespanEstimator) writeBack(ctx context.Context, id uuid.UUID, p predictor.Prediction) error {
	if err := e.items.UpdateLifespan(ctx, id, p.RemainingYears, p.LifespanEstimate); err != nil {
		return err
	}
	item, err := e.items.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if item.RemainingYears == nil || *item.RemainingYears != p.RemainingYears {
		e.logger.Warn("lifespan verification mismatch after write",
			zap.String("item_id", id.String()),
			zap.Float64("expected", p.RemainingYears),
		)
	}
	return nil
}
