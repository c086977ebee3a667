package routes

import (
	"github.com/gin-gonic/gin"

	"rentiva/handlers"
)

// RegisterCheckoutRoutes registers all endpoints for the checkout engine.
func RegisterCheckoutRoutes(r *gin.Engine, h *handlers.CheckoutHandler) {
	co := r.Group("/api/checkout")
	{
		co.GET("/session", h.GetSession)
		co.POST("/validate-stock", h.ValidateStock)
		co.PUT("/schedule/:itemID", h.UpdateSchedule)
		co.POST("/schedule/:itemID/group", h.JoinSyncGroup)
		co.DELETE("/schedule/:itemID/group", h.LeaveSyncGroup)
		co.POST("/step", h.Step)
		co.POST("/confirm", h.Confirm)
		co.POST("/payment/start-polling", h.StartPolling)
		co.POST("/payment/confirm", h.ConfirmPayment)
		co.POST("/payment/retry", h.RetryPayment)
	}
}
