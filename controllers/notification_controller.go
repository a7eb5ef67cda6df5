package controllers

import (
	"math"
	"net/http"
	"strconv"

	"supply-service/middleware"
	"supply-service/models"
	"supply-service/services"

	"github.com/gin-gonic/gin"
)

// NotificationController handles HTTP requests for the notification inbox.
type NotificationController struct {
	notificationService services.NotificationService
}

// NewNotificationController creates a new NotificationController.
func NewNotificationController(notificationService services.NotificationService) *NotificationController {
	return &NotificationController{notificationService: notificationService}
}

// List handles GET /notifications.
func (nc *NotificationController) List(ctx *gin.Context) {
	page, pageSize := parsePaginationParams(ctx)

	notifications, total, svcErr := nc.notificationService.List(
		ctx.Request.Context(), middleware.GetUserID(ctx), middleware.IsAdmin(ctx), page, pageSize)
	if svcErr != nil {
		respondError(ctx, svcErr)
		return
	}

	totalPages := int(math.Ceil(float64(total) / float64(pageSize)))
	ctx.JSON(http.StatusOK, gin.H{
		"data":        notifications,
		"total":       total,
		"page":        page,
		"page_size":   pageSize,
		"total_pages": totalPages,
	})
}

// MarkRead handles PUT /notifications/:id/read.
func (nc *NotificationController) MarkRead(ctx *gin.Context) {
	id, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid notification id"})
		return
	}

	if svcErr := nc.notificationService.MarkRead(ctx.Request.Context(), id, middleware.GetUserID(ctx), middleware.IsAdmin(ctx)); svcErr != nil {
		respondError(ctx, svcErr)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"message": "Notification marked as read"})
}

// Delete handles DELETE /notifications/:id.
func (nc *NotificationController) Delete(ctx *gin.Context) {
	id, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid notification id"})
		return
	}

	if svcErr := nc.notificationService.Delete(ctx.Request.Context(), id, middleware.GetUserID(ctx), middleware.IsAdmin(ctx)); svcErr != nil {
		respondError(ctx, svcErr)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"message": "Notification deleted"})
}

// DeleteMany handles POST /notifications/delete-multiple.
func (nc *NotificationController) DeleteMany(ctx *gin.Context) {
	var req models.DeleteNotificationsRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}

	deleted, svcErr := nc.notificationService.DeleteMany(ctx.Request.Context(), req.IDs, middleware.GetUserID(ctx), middleware.IsAdmin(ctx))
	if svcErr != nil {
		respondError(ctx, svcErr)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"deleted": deleted})
}
