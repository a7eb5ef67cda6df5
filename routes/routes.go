package routes

import (
	"net/http"

	"supply-service/controllers"
	"supply-service/middleware"

	"github.com/gin-gonic/gin"
)

// RegisterRoutes wires the HTTP surface.
func RegisterRoutes(
	router *gin.Engine,
	requests *controllers.SupplyRequestController,
	messages *controllers.MessageController,
	notifications *controllers.NotificationController,
) {
	// Public
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "OK", "service": "supply-service"})
	})

	auth := router.Group("", middleware.AuthMiddleware())

	sr := auth.Group("/supply-requests")
	{
		sr.POST("", requests.Submit)
		sr.GET("/my-requests", requests.MyRequests)
		sr.GET("/all", middleware.SupplyOrAdmin(), requests.AllRequests)
		sr.GET("/stock-overview", middleware.SupplyOrAdmin(), requests.StockOverview)
		sr.GET("/:id", requests.GetByID)

		sr.POST("/:id/approve", middleware.SupplyOrAdmin(), requests.Approve)
		sr.POST("/:id/reject", middleware.SupplyOrAdmin(), requests.Reject)
		sr.POST("/:id/forward", middleware.SupplyOrAdmin(), requests.Forward)
		sr.POST("/:id/assign-admin", middleware.SupplyOrAdmin(), requests.AssignAdmin)
		sr.POST("/:id/accept-admin", middleware.AdminOnly(), requests.AcceptAdmin)
		sr.POST("/:id/fulfill", middleware.AdminOnly(), requests.Fulfill)
		sr.POST("/:id/schedule-pickup", middleware.AdminOnly(), requests.SchedulePickup)
		sr.POST("/:id/notify-ready-pickup", middleware.AdminOnly(), requests.NotifyReadyPickup)
		sr.POST("/:id/items/:lineId/reject", middleware.SupplyOrAdmin(), requests.RejectLine)
		sr.DELETE("/:id/cancel", requests.Cancel)

		sr.GET("/:id/messages", messages.List)
		sr.POST("/:id/messages", messages.Send)
		sr.POST("/:id/messages/mark-read", messages.MarkRead)
		sr.POST("/:id/messages/cleanup", middleware.AdminOnly(), messages.Cleanup)
	}

	items := auth.Group("/items")
	{
		items.POST("/:id/restock", middleware.SupplyOrAdmin(), requests.Restock)
	}

	n := auth.Group("/notifications")
	{
		n.GET("", notifications.List)
		n.PUT("/:id/read", notifications.MarkRead)
		n.DELETE("/:id", notifications.Delete)
		n.POST("/delete-multiple", notifications.DeleteMany)
	}
}
