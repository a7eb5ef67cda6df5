package models

// CreateSupplyRequestLine is one line of a multi-item submission.
type CreateSupplyRequestLine struct {
	ItemID   string `json:"item_id" binding:"required"`
	Quantity int    `json:"quantity" binding:"required,gt=0"`
}

// CreateSupplyRequest is the payload for POST /supply-requests. ItemID
// accepts either a uuid or the legacy integer key.
type CreateSupplyRequest struct {
	ItemID   string                    `json:"item_id" binding:"required"`
	Quantity int                       `json:"quantity" binding:"required,gt=0"`
	Urgency  string                    `json:"urgency" binding:"required,oneof=low medium high"`
	Notes    string                    `json:"notes"`
	Items    []CreateSupplyRequestLine `json:"items" binding:"omitempty,dive"`
}

// RejectRequest carries the mandatory rejection reason.
type RejectRequest struct {
	Reason string `json:"reason" binding:"required"`
}

// CancelRequest carries the mandatory cancellation reason.
type CancelRequest struct {
	Reason string `json:"reason" binding:"required"`
}

// ForwardRequest names the admin a supply officer forwards a request to.
type ForwardRequest struct {
	AdminID  string `json:"admin_id" binding:"required,uuid"`
	Comments string `json:"comments"`
}

// AssignAdminRequest sets the working admin without advancing the status.
type AssignAdminRequest struct {
	AdminID string `json:"admin_id" binding:"required,uuid"`
}

// FulfillRequest carries optional fulfillment notes.
type FulfillRequest struct {
	Notes string `json:"notes"`
}

// SchedulePickupRequest carries an optional pickup slot description.
type SchedulePickupRequest struct {
	PickupNotes string `json:"pickup_notes"`
}

// SendMessageRequest is the payload for posting into a request's thread.
type SendMessageRequest struct {
	Body string `json:"body" binding:"required"`
}

// RestockRequest is the payload for POST /items/:id/restock.
type RestockRequest struct {
	Quantity int `json:"quantity" binding:"required,gt=0"`
}

// DeleteNotificationsRequest is the payload for bulk notification deletion.
type DeleteNotificationsRequest struct {
	IDs []int64 `json:"ids" binding:"required,min=1"`
}
