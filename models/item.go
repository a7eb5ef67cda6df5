package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Category classes split the inventory into consumable supplies (tracked by
// quantity, subject to low-stock alerts) and durable assets (tracked by
// condition, subject to lifespan prediction).
const (
	CategoryClassSupply = "supply"
	CategoryClassAsset  = "asset"
)

// Condition codes normalized for the lifespan predictor.
const (
	ConditionGood    = "good"
	ConditionFair    = "fair"
	ConditionPoor    = "poor"
	ConditionDamaged = "damaged"
)

// ConditionNumber maps a condition status to the normalized code the
// prediction service expects.
func ConditionNumber(condition string) int {
	switch condition {
	case ConditionGood:
		return 1
	case ConditionFair:
		return 2
	case ConditionPoor:
		return 3
	case ConditionDamaged:
		return 4
	default:
		return 0
	}
}

// Item is the GORM model for one stock-keeping unit.
type Item struct {
	ID            uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	LegacyID      *int64    `gorm:"uniqueIndex" json:"legacy_id,omitempty"`
	Name          string    `gorm:"type:varchar(256);not null" json:"name"`
	Unit          string    `gorm:"type:varchar(32);not null;default:'pcs'" json:"unit"`
	Quantity      int       `gorm:"not null;default:0" json:"quantity"`
	Category      string    `gorm:"type:varchar(128);index" json:"category"`
	CategoryClass string    `gorm:"type:varchar(16);not null;index" json:"category_class"`
	Location      string    `gorm:"type:varchar(256)" json:"location"`
	Condition     string    `gorm:"type:varchar(32)" json:"condition"`
	LastReason    string    `gorm:"type:varchar(512)" json:"last_reason,omitempty"`

	AcquiredAt       *time.Time `json:"acquired_at,omitempty"`
	MaintenanceCount int        `gorm:"not null;default:0" json:"maintenance_count"`

	// Written back by the lifespan estimator job.
	RemainingYears   *float64 `json:"remaining_years,omitempty"`
	LifespanEstimate *string  `gorm:"type:varchar(128)" json:"lifespan_estimate,omitempty"`

	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// YearsInUse derives the item's age from its acquisition date. Items with no
// acquisition date count as brand new.
func (i *Item) YearsInUse(now time.Time) float64 {
	if i.AcquiredAt == nil || i.AcquiredAt.After(now) {
		return 0
	}
	return now.Sub(*i.AcquiredAt).Hours() / (24 * 365.25)
}
