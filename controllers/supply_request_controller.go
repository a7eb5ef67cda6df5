package controllers

import (
	"net/http"
	"strconv"

	"supply-service/middleware"
	"supply-service/models"
	"supply-service/services"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	maxPageSize     = 100
	defaultPage     = 1
	defaultPageSize = 20
)

func parsePaginationParams(ctx *gin.Context) (int, int) {
	page := defaultPage
	pageSize := defaultPageSize

	if p, err := strconv.Atoi(ctx.DefaultQuery("page", "1")); err == nil && p > 0 {
		page = p
	}
	if l, err := strconv.Atoi(ctx.DefaultQuery("page_size", "20")); err == nil && l > 0 {
		pageSize = l
		if pageSize > maxPageSize {
			pageSize = maxPageSize
		}
	}
	return page, pageSize
}

func pathUUID(ctx *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(ctx.Param(name))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return uuid.Nil, false
	}
	return id, true
}

// SupplyRequestController handles HTTP requests for the supply-request
// lifecycle.
type SupplyRequestController struct {
	requestService services.SupplyRequestService
}

// NewSupplyRequestController creates a new SupplyRequestController.
func NewSupplyRequestController(requestService services.SupplyRequestService) *SupplyRequestController {
	return &SupplyRequestController{requestService: requestService}
}

func respondError(ctx *gin.Context, svcErr *services.ServiceError) {
	ctx.JSON(svcErr.StatusCode, gin.H{"error": svcErr.Message, "code": svcErr.Code})
}

// Submit handles POST /supply-requests.
func (sc *SupplyRequestController) Submit(ctx *gin.Context) {
	var req models.CreateSupplyRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}

	request, svcErr := sc.requestService.Submit(ctx.Request.Context(), middleware.GetUserID(ctx), &req)
	if svcErr != nil {
		respondError(ctx, svcErr)
		return
	}
	ctx.JSON(http.StatusCreated, gin.H{"request": request})
}

// GetByID handles GET /supply-requests/:id.
func (sc *SupplyRequestController) GetByID(ctx *gin.Context) {
	id, ok := pathUUID(ctx, "id")
	if !ok {
		return
	}
	request, svcErr := sc.requestService.GetByID(ctx.Request.Context(), id)
	if svcErr != nil {
		respondError(ctx, svcErr)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"request": request})
}

// MyRequests handles GET /supply-requests/my-requests.
func (sc *SupplyRequestController) MyRequests(ctx *gin.Context) {
	page, limit := parsePaginationParams(ctx)
	requests, total, svcErr := sc.requestService.ListByRequester(ctx.Request.Context(), middleware.GetUserID(ctx), page, limit)
	if svcErr != nil {
		respondError(ctx, svcErr)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"requests": requests, "total": total, "page": page, "page_size": limit})
}

// AllRequests handles GET /supply-requests/all.
func (sc *SupplyRequestController) AllRequests(ctx *gin.Context) {
	page, limit := parsePaginationParams(ctx)
	requests, total, svcErr := sc.requestService.ListAll(ctx.Request.Context(), page, limit)
	if svcErr != nil {
		respondError(ctx, svcErr)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"requests": requests, "total": total, "page": page, "page_size": limit})
}

// StockOverview handles GET /supply-requests/stock-overview.
func (sc *SupplyRequestController) StockOverview(ctx *gin.Context) {
	months := 12
	if m, err := strconv.Atoi(ctx.DefaultQuery("months", "12")); err == nil && m > 0 {
		months = m
	}
	usage, svcErr := sc.requestService.StockOverview(ctx.Request.Context(), months)
	if svcErr != nil {
		respondError(ctx, svcErr)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"usage": usage})
}

// Approve handles POST /supply-requests/:id/approve.
func (sc *SupplyRequestController) Approve(ctx *gin.Context) {
	id, ok := pathUUID(ctx, "id")
	if !ok {
		return
	}
	request, svcErr := sc.requestService.Approve(ctx.Request.Context(), id, middleware.GetUserID(ctx))
	if svcErr != nil {
		respondError(ctx, svcErr)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"request": request})
}

// Reject handles POST /supply-requests/:id/reject.
func (sc *SupplyRequestController) Reject(ctx *gin.Context) {
	id, ok := pathUUID(ctx, "id")
	if !ok {
		return
	}
	var req models.RejectRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Rejection reason is required", "details": err.Error()})
		return
	}

	request, svcErr := sc.requestService.Reject(ctx.Request.Context(), id, middleware.GetUserID(ctx), req.Reason, middleware.IsAdmin(ctx))
	if svcErr != nil {
		respondError(ctx, svcErr)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"request": request})
}

// Forward handles POST /supply-requests/:id/forward.
func (sc *SupplyRequestController) Forward(ctx *gin.Context) {
	id, ok := pathUUID(ctx, "id")
	if !ok {
		return
	}
	var req models.ForwardRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}
	adminID, _ := uuid.Parse(req.AdminID)

	request, svcErr := sc.requestService.ForwardToAdmin(ctx.Request.Context(), id, middleware.GetUserID(ctx), adminID, req.Comments)
	if svcErr != nil {
		respondError(ctx, svcErr)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"request": request})
}

// AssignAdmin handles POST /supply-requests/:id/assign-admin.
func (sc *SupplyRequestController) AssignAdmin(ctx *gin.Context) {
	id, ok := pathUUID(ctx, "id")
	if !ok {
		return
	}
	var req models.AssignAdminRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}
	adminID, _ := uuid.Parse(req.AdminID)

	request, svcErr := sc.requestService.AssignToAdmin(ctx.Request.Context(), id, adminID)
	if svcErr != nil {
		respondError(ctx, svcErr)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"request": request})
}

// AcceptAdmin handles POST /supply-requests/:id/accept-admin.
func (sc *SupplyRequestController) AcceptAdmin(ctx *gin.Context) {
	id, ok := pathUUID(ctx, "id")
	if !ok {
		return
	}
	request, svcErr := sc.requestService.AcceptByAdmin(ctx.Request.Context(), id, middleware.GetUserID(ctx))
	if svcErr != nil {
		respondError(ctx, svcErr)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"request": request})
}

// Fulfill handles POST /supply-requests/:id/fulfill.
func (sc *SupplyRequestController) Fulfill(ctx *gin.Context) {
	id, ok := pathUUID(ctx, "id")
	if !ok {
		return
	}
	// The body is optional; only bind when the caller actually sent one.
	var req models.FulfillRequest
	if ctx.Request.ContentLength > 0 {
		if err := ctx.ShouldBindJSON(&req); err != nil {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
			return
		}
	}

	request, svcErr := sc.requestService.Fulfill(ctx.Request.Context(), id, middleware.GetUserID(ctx), req.Notes)
	if svcErr != nil {
		respondError(ctx, svcErr)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"request": request})
}

// SchedulePickup handles POST /supply-requests/:id/schedule-pickup.
func (sc *SupplyRequestController) SchedulePickup(ctx *gin.Context) {
	id, ok := pathUUID(ctx, "id")
	if !ok {
		return
	}
	// Same optional-body contract as Fulfill.
	var req models.SchedulePickupRequest
	if ctx.Request.ContentLength > 0 {
		if err := ctx.ShouldBindJSON(&req); err != nil {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
			return
		}
	}

	request, svcErr := sc.requestService.SchedulePickup(ctx.Request.Context(), id, middleware.GetUserID(ctx), req.PickupNotes)
	if svcErr != nil {
		respondError(ctx, svcErr)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"request": request})
}

// NotifyReadyPickup handles POST /supply-requests/:id/notify-ready-pickup.
func (sc *SupplyRequestController) NotifyReadyPickup(ctx *gin.Context) {
	id, ok := pathUUID(ctx, "id")
	if !ok {
		return
	}
	request, svcErr := sc.requestService.NotifyReadyForPickup(ctx.Request.Context(), id, middleware.GetUserID(ctx))
	if svcErr != nil {
		respondError(ctx, svcErr)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"request": request})
}

// Cancel handles DELETE /supply-requests/:id/cancel.
func (sc *SupplyRequestController) Cancel(ctx *gin.Context) {
	id, ok := pathUUID(ctx, "id")
	if !ok {
		return
	}
	var req models.CancelRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Cancellation reason is required", "details": err.Error()})
		return
	}

	request, svcErr := sc.requestService.Cancel(ctx.Request.Context(), id, middleware.GetUserID(ctx), req.Reason)
	if svcErr != nil {
		respondError(ctx, svcErr)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"request": request})
}

// RejectLine handles POST /supply-requests/:id/items/:lineId/reject.
func (sc *SupplyRequestController) RejectLine(ctx *gin.Context) {
	id, ok := pathUUID(ctx, "id")
	if !ok {
		return
	}
	lineID, ok := pathUUID(ctx, "lineId")
	if !ok {
		return
	}
	var req models.RejectRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Rejection reason is required", "details": err.Error()})
		return
	}

	line, svcErr := sc.requestService.RejectLine(ctx.Request.Context(), id, lineID, middleware.GetUserID(ctx), req.Reason)
	if svcErr != nil {
		respondError(ctx, svcErr)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"line": line})
}

// Restock handles POST /items/:id/restock.
func (sc *SupplyRequestController) Restock(ctx *gin.Context) {
	id, ok := pathUUID(ctx, "id")
	if !ok {
		return
	}
	var req models.RestockRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}

	item, svcErr := sc.requestService.Restock(ctx.Request.Context(), id, req.Quantity)
	if svcErr != nil {
		respondError(ctx, svcErr)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"item": item})
}
