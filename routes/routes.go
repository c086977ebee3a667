package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"rentiva/handlers"
)

// RegisterRoutes wires every endpoint onto the router.
func RegisterRoutes(r *gin.Engine, checkoutHandler *handlers.CheckoutHandler) {
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	RegisterCheckoutRoutes(r, checkoutHandler)
}
