package models

import (
	"time"

	"github.com/google/uuid"
)

// Notification type tags. These strings are a stable contract with the
// frontend and must round-trip unchanged.
const (
	TypeLowStock                     = "low_stock"
	TypeBorrowRequest                = "borrow_request"
	TypeSupplyRequestCreated         = "supply_request_created"
	TypeSupplyRequestApproved        = "supply_request_approved"
	TypeSupplyRequestAdminApproved   = "supply_request_admin_approved"
	TypeSupplyRequestRejected        = "supply_request_rejected"
	TypeSupplyRequestAdminRejected   = "supply_request_admin_rejected"
	TypeSupplyRequestReadyForPickup  = "supply_request_ready_for_pickup"
	TypeSupplyRequestReadyPickup     = "supply_request_ready_pickup"
	TypeItemLostDamagedReport        = "item_lost_damaged_report"
	TypeItemRecovered                = "item_recovered"
	TypeItemLostReturned             = "item_lost_returned"
	TypeItemMisplaced                = "item_misplaced"
)

// Notification is a persisted fan-out record. A nil RecipientID means the
// notification is broadcast to all admins.
//
// NotifyDate backs the unique index that keeps the low-stock scanner from
// inserting the same (item, message, type) row twice on one calendar day.
// Only low-stock inserts go through ON CONFLICT DO NOTHING; lifecycle
// notifications are never deduplicated.
type Notification struct {
	ID              int64      `gorm:"primaryKey;autoIncrement" json:"id"`
	ItemID          *uuid.UUID `gorm:"type:uuid;index;uniqueIndex:idx_item_message_type_date" json:"item_id,omitempty"`
	SupplyRequestID *uuid.UUID `gorm:"type:uuid;index" json:"supply_request_id,omitempty"`
	RecipientID     *uuid.UUID `gorm:"type:uuid;index" json:"recipient_id,omitempty"`
	Message         string     `gorm:"type:varchar(512);not null;uniqueIndex:idx_item_message_type_date" json:"message"`
	Type            string     `gorm:"type:varchar(64);not null;index;uniqueIndex:idx_item_message_type_date" json:"type"`
	NotifyDate      string     `gorm:"type:varchar(10);not null;uniqueIndex:idx_item_message_type_date" json:"notify_date"`
	IsRead          bool       `gorm:"not null;default:false" json:"is_read"`
	CreatedAt       time.Time  `gorm:"autoCreateTime" json:"created_at"`
}

// NotificationEvent is the dispatcher input produced by a state transition,
// a low-stock detection or a lost/damaged report.
type NotificationEvent struct {
	Type            string
	Message         string
	ItemID          *uuid.UUID
	SupplyRequestID *uuid.UUID
	// RecipientID nil = broadcast to all admins.
	RecipientID *uuid.UUID
}
