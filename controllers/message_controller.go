package controllers

import (
	"net/http"

	"supply-service/middleware"
	"supply-service/models"
	"supply-service/services"

	"github.com/gin-gonic/gin"
)

// MessageController handles HTTP requests for per-request message threads.
type MessageController struct {
	messageService services.MessageService
}

// NewMessageController creates a new MessageController.
func NewMessageController(messageService services.MessageService) *MessageController {
	return &MessageController{messageService: messageService}
}

// List handles GET /supply-requests/:id/messages.
func (mc *MessageController) List(ctx *gin.Context) {
	id, ok := pathUUID(ctx, "id")
	if !ok {
		return
	}
	msgs, svcErr := mc.messageService.List(ctx.Request.Context(), id)
	if svcErr != nil {
		respondError(ctx, svcErr)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"messages": msgs})
}

// Send handles POST /supply-requests/:id/messages.
func (mc *MessageController) Send(ctx *gin.Context) {
	id, ok := pathUUID(ctx, "id")
	if !ok {
		return
	}
	var req models.SendMessageRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Message body is required", "details": err.Error()})
		return
	}

	msg, svcErr := mc.messageService.Send(ctx.Request.Context(), id, middleware.GetUserID(ctx), req.Body)
	if svcErr != nil {
		respondError(ctx, svcErr)
		return
	}
	ctx.JSON(http.StatusCreated, gin.H{"message": msg})
}

// MarkRead handles POST /supply-requests/:id/messages/mark-read.
func (mc *MessageController) MarkRead(ctx *gin.Context) {
	id, ok := pathUUID(ctx, "id")
	if !ok {
		return
	}
	flipped, svcErr := mc.messageService.MarkRead(ctx.Request.Context(), id, middleware.GetUserID(ctx))
	if svcErr != nil {
		respondError(ctx, svcErr)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"marked_read": flipped})
}

// Cleanup handles POST /supply-requests/:id/messages/cleanup (admin only,
// terminal requests only).
func (mc *MessageController) Cleanup(ctx *gin.Context) {
	id, ok := pathUUID(ctx, "id")
	if !ok {
		return
	}
	deleted, svcErr := mc.messageService.CleanupTerminal(ctx.Request.Context(), id)
	if svcErr != nil {
		respondError(ctx, svcErr)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"deleted": deleted})
}
