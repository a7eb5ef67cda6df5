package models

import (
	"time"

	"github.com/google/uuid"
)

// Supply request statuses. Transitions only move along the edges in
// services.TransitionTable; fulfilled, rejected and cancelled are terminal.
const (
	StatusPending        = "pending"
	StatusSupplyApproved = "supply_approved"
	StatusAdminAssigned  = "admin_assigned"
	StatusAdminAccepted  = "admin_accepted"
	StatusApproved       = "approved"
	StatusReadyForPickup = "ready_for_pickup"
	StatusForClaiming    = "for_claiming"
	StatusFulfilled      = "fulfilled"
	StatusRejected       = "rejected"
	StatusCancelled      = "cancelled"
)

// Urgency levels.
const (
	UrgencyLow    = "low"
	UrgencyMedium = "medium"
	UrgencyHigh   = "high"
)

// Line item statuses. A rejected line never changes the parent request's
// status on its own.
const (
	LineStatusPending  = "pending"
	LineStatusRejected = "rejected"
)

// SupplyRequest is one user's ask for N units of an item. Rows are never
// deleted; terminal requests stay as the audit trail.
type SupplyRequest struct {
	ID            uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	RequestNumber string    `gorm:"type:varchar(32);uniqueIndex;not null" json:"request_number"`
	RequesterID   uuid.UUID `gorm:"type:uuid;not null;index" json:"requester_id"`
	ItemID        uuid.UUID `gorm:"type:uuid;not null;index" json:"item_id"`
	Quantity      int       `gorm:"not null" json:"quantity"`
	Urgency       string    `gorm:"type:varchar(16);not null;default:'low'" json:"urgency"`
	Notes         string    `gorm:"type:text" json:"notes,omitempty"`
	Status        string    `gorm:"type:varchar(32);not null;default:'pending';index" json:"status"`

	ApprovedBy         *uuid.UUID `gorm:"type:uuid" json:"approved_by,omitempty"`
	ForwardedToAdminID *uuid.UUID `gorm:"type:uuid" json:"forwarded_to_admin_id,omitempty"`
	ForwardComments    string     `gorm:"type:text" json:"forward_comments,omitempty"`
	AssignedToAdminID  *uuid.UUID `gorm:"type:uuid" json:"assigned_to_admin_id,omitempty"`
	FulfilledBy        *uuid.UUID `gorm:"type:uuid" json:"fulfilled_by,omitempty"`

	ApprovedAt        *time.Time `json:"approved_at,omitempty"`
	ForwardedAt       *time.Time `json:"forwarded_at,omitempty"`
	AssignedAt        *time.Time `json:"assigned_at,omitempty"`
	AdminAcceptedAt   *time.Time `json:"admin_accepted_at,omitempty"`
	RejectedAt        *time.Time `json:"rejected_at,omitempty"`
	CancelledAt       *time.Time `json:"cancelled_at,omitempty"`
	FulfilledAt       *time.Time `json:"fulfilled_at,omitempty"`
	PickupScheduledAt *time.Time `json:"pickup_scheduled_at,omitempty"`
	PickupNotifiedAt  *time.Time `json:"pickup_notified_at,omitempty"`

	RejectionReason    string `gorm:"type:text" json:"rejection_reason,omitempty"`
	CancellationReason string `gorm:"type:text" json:"cancellation_reason,omitempty"`
	FulfillmentNotes   string `gorm:"type:text" json:"fulfillment_notes,omitempty"`

	Items []SupplyRequestItem `gorm:"foreignKey:SupplyRequestID;constraint:OnDelete:CASCADE" json:"items,omitempty"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// IsTerminal reports whether the request can no longer change.
func (r *SupplyRequest) IsTerminal() bool {
	return IsTerminalStatus(r.Status)
}

// IsTerminalStatus reports whether a status value is terminal.
func IsTerminalStatus(status string) bool {
	switch status {
	case StatusFulfilled, StatusRejected, StatusCancelled:
		return true
	}
	return false
}

// SupplyRequestItem is one line of a multi-item request. Lines carry an
// independent rejection status so part of a basket can be refused while the
// rest proceeds.
type SupplyRequestItem struct {
	ID              uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	SupplyRequestID uuid.UUID `gorm:"type:uuid;not null;index" json:"supply_request_id"`
	ItemID          uuid.UUID `gorm:"type:uuid;not null" json:"item_id"`
	Quantity        int       `gorm:"not null" json:"quantity"`
	Status          string    `gorm:"type:varchar(16);not null;default:'pending'" json:"status"`
	RejectionReason string    `gorm:"type:text" json:"rejection_reason,omitempty"`
	CreatedAt       time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// SupplyRequestMessage is one entry of the per-request conversation between
// the requester and the fulfiller. Its lifecycle is independent of the
// request's status.
type SupplyRequestMessage struct {
	ID              uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	SupplyRequestID uuid.UUID  `gorm:"type:uuid;not null;index" json:"supply_request_id"`
	AuthorID        uuid.UUID  `gorm:"type:uuid;not null" json:"author_id"`
	Body            string     `gorm:"type:text;not null" json:"body"`
	IsRead          bool       `gorm:"not null;default:false" json:"is_read"`
	ReadAt          *time.Time `json:"read_at,omitempty"`
	CreatedAt       time.Time  `gorm:"autoCreateTime" json:"created_at"`
}

// ItemUsage is one bucket of the period aggregation derived from fulfilled
// requests. Read-only shape feeding the reporting exports.
type ItemUsage struct {
	ItemID        uuid.UUID `json:"item_id"`
	ItemName      string    `json:"item_name"`
	Period        string    `json:"period"`
	QuantityDrawn int       `json:"quantity_drawn"`
	RequestCount  int       `json:"request_count"`
	Remaining     int       `json:"remaining"`
}
