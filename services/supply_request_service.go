package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"supply-service/models"
	"supply-service/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// TransitionTable is the single source of legality for status transitions.
// Terminal statuses have no outgoing edges, so a terminal request rejects
// every further transition regardless of actor.
var TransitionTable = map[string][]string{
	models.StatusPending:        {models.StatusSupplyApproved, models.StatusRejected, models.StatusCancelled},
	models.StatusSupplyApproved: {models.StatusAdminAssigned, models.StatusRejected, models.StatusCancelled},
	models.StatusAdminAssigned:  {models.StatusAdminAccepted, models.StatusRejected, models.StatusCancelled},
	models.StatusAdminAccepted:  {models.StatusApproved, models.StatusReadyForPickup, models.StatusFulfilled, models.StatusRejected, models.StatusCancelled},
	models.StatusApproved:       {models.StatusReadyForPickup, models.StatusFulfilled, models.StatusRejected, models.StatusCancelled},
	models.StatusReadyForPickup: {models.StatusForClaiming, models.StatusFulfilled, models.StatusRejected},
	models.StatusForClaiming:    {models.StatusFulfilled, models.StatusRejected},
	models.StatusFulfilled:      {},
	models.StatusRejected:       {},
	models.StatusCancelled:      {},
}

// CanTransition reports whether the edge from → to exists.
func CanTransition(from, to string) bool {
	for _, next := range TransitionTable[from] {
		if next == to {
			return true
		}
	}
	return false
}

// cancellableStatuses are the pre-pickup states a requester may cancel from.
var cancellableStatuses = []string{
	models.StatusPending,
	models.StatusSupplyApproved,
	models.StatusAdminAssigned,
	models.StatusAdminAccepted,
	models.StatusApproved,
}

// fulfillableStatuses are the states a fulfillment may start from.
var fulfillableStatuses = []string{
	models.StatusAdminAccepted,
	models.StatusApproved,
	models.StatusReadyForPickup,
	models.StatusForClaiming,
}

// SupplyRequestService drives the request lifecycle. Every transition
// validates the current status, applies the status + timestamp + actor
// update guarded by that status, and dispatches a notification on success.
type SupplyRequestService interface {
	Submit(ctx context.Context, requesterID uuid.UUID, req *models.CreateSupplyRequest) (*models.SupplyRequest, *ServiceError)
	Approve(ctx context.Context, id, approverID uuid.UUID) (*models.SupplyRequest, *ServiceError)
	Reject(ctx context.Context, id, actorID uuid.UUID, reason string, byAdmin bool) (*models.SupplyRequest, *ServiceError)
	ForwardToAdmin(ctx context.Context, id, actorID, adminID uuid.UUID, comments string) (*models.SupplyRequest, *ServiceError)
	AssignToAdmin(ctx context.Context, id, adminID uuid.UUID) (*models.SupplyRequest, *ServiceError)
	AcceptByAdmin(ctx context.Context, id, adminID uuid.UUID) (*models.SupplyRequest, *ServiceError)
	Fulfill(ctx context.Context, id, adminID uuid.UUID, notes string) (*models.SupplyRequest, *ServiceError)
	SchedulePickup(ctx context.Context, id, actorID uuid.UUID, pickupNotes string) (*models.SupplyRequest, *ServiceError)
	NotifyReadyForPickup(ctx context.Context, id, actorID uuid.UUID) (*models.SupplyRequest, *ServiceError)
	Cancel(ctx context.Context, id, requesterID uuid.UUID, reason string) (*models.SupplyRequest, *ServiceError)
	RejectLine(ctx context.Context, requestID, lineID, actorID uuid.UUID, reason string) (*models.SupplyRequestItem, *ServiceError)
	GetByID(ctx context.Context, id uuid.UUID) (*models.SupplyRequest, *ServiceError)
	ListByRequester(ctx context.Context, requesterID uuid.UUID, page, limit int) ([]models.SupplyRequest, int64, *ServiceError)
	ListAll(ctx context.Context, page, limit int) ([]models.SupplyRequest, int64, *ServiceError)
	StockOverview(ctx context.Context, months int) ([]models.ItemUsage, *ServiceError)
	Restock(ctx context.Context, itemID uuid.UUID, quantity int) (*models.Item, *ServiceError)
}

type supplyRequestServiceImpl struct {
	requests      repository.SupplyRequestRepository
	items         repository.ItemRepository
	notifications NotificationService
	logger        *zap.Logger
	now           func() time.Time
}

// NewSupplyRequestService creates a new SupplyRequestService.
func NewSupplyRequestService(
	requests repository.SupplyRequestRepository,
	items repository.ItemRepository,
	notifications NotificationService,
	logger *zap.Logger,
) SupplyRequestService {
	return &supplyRequestServiceImpl{
		requests:      requests,
		items:         items,
		notifications: notifications,
		logger:        logger,
		now:           time.Now,
	}
}

// newRequestNumber builds the system-generated unique request number.
func newRequestNumber(now time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:6])
	return fmt.Sprintf("SR-%s-%s", now.Format("20060102"), suffix)
}

func (s *supplyRequestServiceImpl) Submit(ctx context.Context, requesterID uuid.UUID, req *models.CreateSupplyRequest) (*models.SupplyRequest, *ServiceError) {
	if req.Quantity <= 0 {
		return nil, validationError("quantity must be greater than zero")
	}

	ref, err := models.ParseItemRef(req.ItemID)
	if err != nil {
		return nil, validationError("%s", err.Error())
	}
	item, err := s.items.ResolveRef(ctx, ref)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFoundError("Item")
		}
		s.logger.Error("item lookup failed", zap.String("ref", ref.String()), zap.Error(err))
		return nil, internalError("Failed to resolve item")
	}

	request := &models.SupplyRequest{
		RequestNumber: newRequestNumber(s.now()),
		RequesterID:   requesterID,
		ItemID:        item.ID,
		Quantity:      req.Quantity,
		Urgency:       req.Urgency,
		Notes:         req.Notes,
		Status:        models.StatusPending,
	}

	for _, line := range req.Items {
		lineRef, err := models.ParseItemRef(line.ItemID)
		if err != nil {
			return nil, validationError("%s", err.Error())
		}
		lineItem, err := s.items.ResolveRef(ctx, lineRef)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, notFoundError("Item " + line.ItemID)
			}
			return nil, internalError("Failed to resolve item")
		}
		request.Items = append(request.Items, models.SupplyRequestItem{
			ItemID:   lineItem.ID,
			Quantity: line.Quantity,
			Status:   models.LineStatusPending,
		})
	}

	if err := s.requests.Create(ctx, request); err != nil {
		s.logger.Error("failed to create supply request", zap.Error(err))
		return nil, internalError("Failed to create supply request")
	}

	s.logger.Info("supply request submitted",
		zap.String("request_number", request.RequestNumber),
		zap.String("item", item.Name),
		zap.Int("quantity", request.Quantity),
		zap.String("urgency", request.Urgency),
	)

	s.notifications.Dispatch(ctx, models.NotificationEvent{
		Type:            models.TypeSupplyRequestCreated,
		Message:         fmt.Sprintf("New supply request %s: %d %s of %s (%s urgency)", request.RequestNumber, request.Quantity, item.Unit, item.Name, request.Urgency),
		ItemID:          &item.ID,
		SupplyRequestID: &request.ID,
	})

	return request, nil
}

// Approve advances the request one approval stage: a pending request becomes
// supply_approved, an admin_accepted one becomes approved.
func (s *supplyRequestServiceImpl) Approve(ctx context.Context, id, approverID uuid.UUID) (*models.SupplyRequest, *ServiceError) {
	request, svcErr := s.load(ctx, id)
	if svcErr != nil {
		return nil, svcErr
	}

	now := s.now()
	fromStatus := request.Status
	var eventType, message string
	switch fromStatus {
	case models.StatusPending:
		request.Status = models.StatusSupplyApproved
		request.ApprovedBy = &approverID
		request.ApprovedAt = &now
		eventType = models.TypeSupplyRequestApproved
		message = fmt.Sprintf("Your supply request %s has been approved by the supply office", request.RequestNumber)
	case models.StatusAdminAccepted:
		request.Status = models.StatusApproved
		request.ApprovedBy = &approverID
		request.ApprovedAt = &now
		eventType = models.TypeSupplyRequestAdminApproved
		message = fmt.Sprintf("Your supply request %s has been approved for release", request.RequestNumber)
	default:
		return nil, invalidStateError(fromStatus, models.StatusPending, models.StatusAdminAccepted)
	}

	// Guard the update with the status observed at load so a concurrent
	// stage change fails here instead of silently rewinding the row.
	if svcErr := s.persist(ctx, request, fromStatus); svcErr != nil {
		return nil, svcErr
	}

	s.notifyRequester(ctx, request, eventType, message)
	return request, nil
}

func (s *supplyRequestServiceImpl) Reject(ctx context.Context, id, actorID uuid.UUID, reason string, byAdmin bool) (*models.SupplyRequest, *ServiceError) {
	if strings.TrimSpace(reason) == "" {
		return nil, validationError("rejection reason is required")
	}

	request, svcErr := s.load(ctx, id)
	if svcErr != nil {
		return nil, svcErr
	}
	if !CanTransition(request.Status, models.StatusRejected) {
		return nil, invalidStateError(request.Status, "any non-terminal status")
	}

	fromStatus := request.Status
	now := s.now()
	request.Status = models.StatusRejected
	request.RejectionReason = reason
	request.RejectedAt = &now

	if svcErr := s.persist(ctx, request, fromStatus); svcErr != nil {
		return nil, svcErr
	}

	eventType := models.TypeSupplyRequestRejected
	if byAdmin {
		eventType = models.TypeSupplyRequestAdminRejected
	}
	s.notifyRequester(ctx, request, eventType,
		fmt.Sprintf("Your supply request %s was rejected: %s", request.RequestNumber, reason))
	return request, nil
}

func (s *supplyRequestServiceImpl) ForwardToAdmin(ctx context.Context, id, actorID, adminID uuid.UUID, comments string) (*models.SupplyRequest, *ServiceError) {
	request, svcErr := s.load(ctx, id)
	if svcErr != nil {
		return nil, svcErr
	}
	if request.Status != models.StatusSupplyApproved {
		return nil, invalidStateError(request.Status, models.StatusSupplyApproved)
	}

	now := s.now()
	request.Status = models.StatusAdminAssigned
	request.ForwardedToAdminID = &adminID
	request.ForwardComments = comments
	request.ForwardedAt = &now

	if svcErr := s.persist(ctx, request, models.StatusSupplyApproved); svcErr != nil {
		return nil, svcErr
	}
	return request, nil
}

// AssignToAdmin records the working admin. Assignment is a parallel
// dimension: the status value does not advance.
func (s *supplyRequestServiceImpl) AssignToAdmin(ctx context.Context, id, adminID uuid.UUID) (*models.SupplyRequest, *ServiceError) {
	request, svcErr := s.load(ctx, id)
	if svcErr != nil {
		return nil, svcErr
	}
	if request.IsTerminal() {
		return nil, invalidStateError(request.Status, "any non-terminal status")
	}

	now := s.now()
	request.AssignedToAdminID = &adminID
	request.AssignedAt = &now

	if svcErr := s.persist(ctx, request, request.Status); svcErr != nil {
		return nil, svcErr
	}
	return request, nil
}

func (s *supplyRequestServiceImpl) AcceptByAdmin(ctx context.Context, id, adminID uuid.UUID) (*models.SupplyRequest, *ServiceError) {
	request, svcErr := s.load(ctx, id)
	if svcErr != nil {
		return nil, svcErr
	}
	if request.Status != models.StatusAdminAssigned {
		return nil, invalidStateError(request.Status, models.StatusAdminAssigned)
	}

	now := s.now()
	request.Status = models.StatusAdminAccepted
	request.AdminAcceptedAt = &now
	if request.AssignedToAdminID == nil {
		request.AssignedToAdminID = &adminID
		request.AssignedAt = &now
	}

	if svcErr := s.persist(ctx, request, models.StatusAdminAssigned); svcErr != nil {
		return nil, svcErr
	}

	s.notifyRequester(ctx, request, models.TypeSupplyRequestAdminApproved,
		fmt.Sprintf("Your supply request %s was accepted by the property office", request.RequestNumber))
	return request, nil
}

// Fulfill commits the request: the stock debit and the status transition
// run in one transaction and succeed or fail together.
func (s *supplyRequestServiceImpl) Fulfill(ctx context.Context, id, adminID uuid.UUID, notes string) (*models.SupplyRequest, *ServiceError) {
	request, svcErr := s.load(ctx, id)
	if svcErr != nil {
		return nil, svcErr
	}
	if !statusIn(request.Status, fulfillableStatuses) {
		return nil, invalidStateError(request.Status, fulfillableStatuses...)
	}

	fromStatus := request.Status
	now := s.now()
	request.Status = models.StatusFulfilled
	request.FulfilledBy = &adminID
	request.FulfilledAt = &now
	request.FulfillmentNotes = notes

	if err := s.requests.Fulfill(ctx, request, request.Quantity, fromStatus); err != nil {
		// Roll the in-memory copy back so callers never observe a
		// half-applied transition.
		request.Status = fromStatus
		request.FulfilledBy = nil
		request.FulfilledAt = nil
		request.FulfillmentNotes = ""

		switch {
		case errors.Is(err, repository.ErrInsufficientStock):
			available, requested := s.availability(ctx, request)
			return nil, insufficientStockError(s.itemName(ctx, request.ItemID), available, requested)
		case errors.Is(err, repository.ErrStaleStatus):
			return nil, invalidStateError(request.Status, fulfillableStatuses...)
		default:
			s.logger.Error("fulfillment failed", zap.String("request", request.RequestNumber), zap.Error(err))
			return nil, internalError("Failed to fulfill supply request")
		}
	}

	s.logger.Info("supply request fulfilled",
		zap.String("request_number", request.RequestNumber),
		zap.Int("quantity", request.Quantity),
	)

	s.notifyRequester(ctx, request, models.TypeSupplyRequestApproved,
		fmt.Sprintf("Your supply request %s has been fulfilled", request.RequestNumber))
	return request, nil
}

func (s *supplyRequestServiceImpl) SchedulePickup(ctx context.Context, id, actorID uuid.UUID, pickupNotes string) (*models.SupplyRequest, *ServiceError) {
	request, svcErr := s.load(ctx, id)
	if svcErr != nil {
		return nil, svcErr
	}
	if request.Status != models.StatusAdminAccepted && request.Status != models.StatusApproved {
		return nil, invalidStateError(request.Status, models.StatusAdminAccepted, models.StatusApproved)
	}

	fromStatus := request.Status
	now := s.now()
	request.Status = models.StatusReadyForPickup
	request.PickupScheduledAt = &now
	if pickupNotes != "" {
		request.FulfillmentNotes = pickupNotes
	}

	if svcErr := s.persist(ctx, request, fromStatus); svcErr != nil {
		return nil, svcErr
	}

	s.notifyRequester(ctx, request, models.TypeSupplyRequestReadyForPickup,
		fmt.Sprintf("Your supply request %s is ready for pickup", request.RequestNumber))
	return request, nil
}

func (s *supplyRequestServiceImpl) NotifyReadyForPickup(ctx context.Context, id, actorID uuid.UUID) (*models.SupplyRequest, *ServiceError) {
	request, svcErr := s.load(ctx, id)
	if svcErr != nil {
		return nil, svcErr
	}
	if request.Status != models.StatusReadyForPickup {
		return nil, invalidStateError(request.Status, models.StatusReadyForPickup)
	}

	now := s.now()
	request.Status = models.StatusForClaiming
	request.PickupNotifiedAt = &now

	if svcErr := s.persist(ctx, request, models.StatusReadyForPickup); svcErr != nil {
		return nil, svcErr
	}

	s.notifyRequester(ctx, request, models.TypeSupplyRequestReadyPickup,
		fmt.Sprintf("Supply request %s: please claim your items", request.RequestNumber))
	return request, nil
}

func (s *supplyRequestServiceImpl) Cancel(ctx context.Context, id, requesterID uuid.UUID, reason string) (*models.SupplyRequest, *ServiceError) {
	if strings.TrimSpace(reason) == "" {
		return nil, validationError("cancellation reason is required")
	}

	request, svcErr := s.load(ctx, id)
	if svcErr != nil {
		return nil, svcErr
	}
	if request.RequesterID != requesterID {
		return nil, &ServiceError{StatusCode: 403, Code: CodeValidation, Message: "Only the requester may cancel a request"}
	}
	if !statusIn(request.Status, cancellableStatuses) {
		return nil, invalidStateError(request.Status, cancellableStatuses...)
	}

	fromStatus := request.Status
	now := s.now()
	request.Status = models.StatusCancelled
	request.CancellationReason = reason
	request.CancelledAt = &now

	if svcErr := s.persist(ctx, request, fromStatus); svcErr != nil {
		return nil, svcErr
	}
	return request, nil
}

// RejectLine rejects one line of a multi-item request. The parent status is
// deliberately left alone: the request only becomes rejected when the
// fulfiller rejects it as a whole.
func (s *supplyRequestServiceImpl) RejectLine(ctx context.Context, requestID, lineID, actorID uuid.UUID, reason string) (*models.SupplyRequestItem, *ServiceError) {
	if strings.TrimSpace(reason) == "" {
		return nil, validationError("rejection reason is required")
	}

	request, svcErr := s.load(ctx, requestID)
	if svcErr != nil {
		return nil, svcErr
	}
	if request.IsTerminal() {
		return nil, invalidStateError(request.Status, "any non-terminal status")
	}

	line, err := s.requests.FindLine(ctx, requestID, lineID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFoundError("Request line")
		}
		return nil, internalError("Failed to load request line")
	}

	line.RejectionReason = reason
	if err := s.requests.RejectLine(ctx, line); err != nil {
		if errors.Is(err, repository.ErrStaleStatus) {
			return nil, invalidStateError(models.LineStatusRejected, models.LineStatusPending)
		}
		return nil, internalError("Failed to reject request line")
	}
	line.Status = models.LineStatusRejected
	return line, nil
}

func (s *supplyRequestServiceImpl) GetByID(ctx context.Context, id uuid.UUID) (*models.SupplyRequest, *ServiceError) {
	return s.load(ctx, id)
}

func (s *supplyRequestServiceImpl) ListByRequester(ctx context.Context, requesterID uuid.UUID, page, limit int) ([]models.SupplyRequest, int64, *ServiceError) {
	requests, total, err := s.requests.FindByRequester(ctx, requesterID, page, limit)
	if err != nil {
		s.logger.Error("failed to list own requests", zap.Error(err))
		return nil, 0, internalError("Failed to fetch supply requests")
	}
	return requests, total, nil
}

func (s *supplyRequestServiceImpl) ListAll(ctx context.Context, page, limit int) ([]models.SupplyRequest, int64, *ServiceError) {
	requests, total, err := s.requests.FindAll(ctx, page, limit)
	if err != nil {
		s.logger.Error("failed to list requests", zap.Error(err))
		return nil, 0, internalError("Failed to fetch supply requests")
	}
	return requests, total, nil
}

func (s *supplyRequestServiceImpl) StockOverview(ctx context.Context, months int) ([]models.ItemUsage, *ServiceError) {
	if months <= 0 {
		months = 12
	}
	since := s.now().AddDate(0, -months, 0)
	usage, err := s.requests.UsageByPeriod(ctx, since)
	if err != nil {
		s.logger.Error("failed to aggregate usage", zap.Error(err))
		return nil, internalError("Failed to build stock overview")
	}
	return usage, nil
}

func (s *supplyRequestServiceImpl) Restock(ctx context.Context, itemID uuid.UUID, quantity int) (*models.Item, *ServiceError) {
	if quantity <= 0 {
		return nil, validationError("restock quantity must be greater than zero")
	}
	if err := s.items.Restock(ctx, itemID, quantity); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFoundError("Item")
		}
		s.logger.Error("restock failed", zap.String("item_id", itemID.String()), zap.Error(err))
		return nil, internalError("Failed to restock item")
	}
	item, err := s.items.FindByID(ctx, itemID)
	if err != nil {
		return nil, internalError("Failed to reload item")
	}
	return item, nil
}

// ---- helpers ----

func (s *supplyRequestServiceImpl) load(ctx context.Context, id uuid.UUID) (*models.SupplyRequest, *ServiceError) {
	request, err := s.requests.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFoundError("Supply request")
		}
		s.logger.Error("failed to load supply request", zap.String("id", id.String()), zap.Error(err))
		return nil, internalError("Failed to load supply request")
	}
	return request, nil
}

func (s *supplyRequestServiceImpl) persist(ctx context.Context, request *models.SupplyRequest, fromStatuses ...string) *ServiceError {
	if err := s.requests.UpdateWithStatusCheck(ctx, request, fromStatuses...); err != nil {
		if errors.Is(err, repository.ErrStaleStatus) {
			return invalidStateError(request.Status, fromStatuses...)
		}
		s.logger.Error("failed to persist transition",
			zap.String("request", request.RequestNumber),
			zap.String("to", request.Status),
			zap.Error(err),
		)
		return internalError("Failed to update supply request")
	}
	return nil
}

// notifyRequester dispatches a requester-targeted notification. Dispatch
// failures never abort the transition that triggered them.
func (s *supplyRequestServiceImpl) notifyRequester(ctx context.Context, request *models.SupplyRequest, eventType, message string) {
	recipient := request.RequesterID
	s.notifications.Dispatch(ctx, models.NotificationEvent{
		Type:            eventType,
		Message:         message,
		ItemID:          &request.ItemID,
		SupplyRequestID: &request.ID,
		RecipientID:     &recipient,
	})
}

func (s *supplyRequestServiceImpl) itemName(ctx context.Context, itemID uuid.UUID) string {
	item, err := s.items.FindByID(ctx, itemID)
	if err != nil {
		return "Item"
	}
	return item.Name
}

func (s *supplyRequestServiceImpl) availability(ctx context.Context, request *models.SupplyRequest) (available, requested int) {
	requested = request.Quantity
	item, err := s.items.FindByID(ctx, request.ItemID)
	if err != nil {
		return 0, requested
	}
	return item.Quantity, requested
}

func statusIn(status string, set []string) bool {
	for _, s := range set {
		if s == status {
			return true
		}
	}
	return false
}
