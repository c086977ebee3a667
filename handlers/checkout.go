package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"rentiva/clients"
	"rentiva/models"
	"rentiva/services/checkout"
	"rentiva/utils"
)

// CheckoutHandler exposes the checkout engine over HTTP.
type CheckoutHandler struct {
	Service checkout.CheckoutService
	Logger  *zap.Logger
}

// NewCheckoutHandler returns a CheckoutHandler.
func NewCheckoutHandler(svc checkout.CheckoutService, logger *zap.Logger) *CheckoutHandler {
	return &CheckoutHandler{Service: svc, Logger: logger}
}

// userID reads the caller identity injected by the upstream auth layer.
func userID(c *gin.Context) string {
	return c.GetHeader("X-User-ID")
}

// respondError maps the error taxonomy onto status codes: validation 422,
// collaborator rejection 409, collaborator unreachable 502.
func (h *CheckoutHandler) respondError(c *gin.Context, err error) {
	switch {
	case checkout.IsValidation(err):
		utils.JSONError(c, http.StatusUnprocessableEntity, "Validation failed", err.Error())
	case clients.IsBusiness(err):
		utils.JSONError(c, http.StatusConflict, "Request rejected", err.Error())
	case clients.IsNetwork(err):
		utils.JSONError(c, http.StatusBadGateway, "A required service is unavailable", err.Error())
	case err == checkout.ErrSessionNotFound:
		utils.JSONError(c, http.StatusNotFound, "Checkout session not found", "")
	case err == checkout.ErrOperationInFlight:
		utils.JSONError(c, http.StatusConflict, "Another checkout operation is in progress", "")
	default:
		utils.JSONError(c, http.StatusInternalServerError, "Checkout failed", err.Error())
	}
}

// GetSession loads or creates the checkout session for the caller.
func (h *CheckoutHandler) GetSession(c *gin.Context) {
	session, err := h.Service.LoadSession(c.Request.Context(), userID(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"session": session})
}

// ValidateStock runs the advisory availability check.
func (h *CheckoutHandler) ValidateStock(c *gin.Context) {
	report, err := h.Service.ValidateStock(c.Request.Context(), userID(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

// UpdateSchedule applies one schedule mutation to an item.
func (h *CheckoutHandler) UpdateSchedule(c *gin.Context) {
	var upd checkout.ScheduleUpdate
	if err := c.ShouldBindJSON(&upd); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return
	}
	session, err := h.Service.UpdateSchedule(c.Request.Context(), userID(c), c.Param("itemID"), upd)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"session": session})
}

// JoinSyncGroup flags an item as synchronized.
func (h *CheckoutHandler) JoinSyncGroup(c *gin.Context) {
	session, err := h.Service.JoinSyncGroup(c.Request.Context(), userID(c), c.Param("itemID"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"session": session})
}

// LeaveSyncGroup detaches an item from the synchronized group.
func (h *CheckoutHandler) LeaveSyncGroup(c *gin.Context) {
	session, err := h.Service.LeaveSyncGroup(c.Request.Context(), userID(c), c.Param("itemID"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"session": session})
}

// Step moves the session forward or backward through the checkout sequence.
func (h *CheckoutHandler) Step(c *gin.Context) {
	var input struct {
		To   models.CheckoutStep `json:"to" binding:"required"`
		Back bool                `json:"back"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return
	}

	var (
		session *models.CheckoutSession
		err     error
	)
	if input.Back {
		session, err = h.Service.Back(c.Request.Context(), userID(c), input.To)
	} else {
		session, err = h.Service.Advance(c.Request.Context(), userID(c), input.To)
	}
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"session": session})
}

// Confirm creates the booking intents and the aggregate payment handle.
func (h *CheckoutHandler) Confirm(c *gin.Context) {
	session, err := h.Service.Confirm(c.Request.Context(), userID(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"session":       session,
		"payment":       session.Payment,
		"checkoutTotal": session.CheckoutTotal,
	})
}

// StartPolling begins the payment reconciliation run.
func (h *CheckoutHandler) StartPolling(c *gin.Context) {
	if err := h.Service.StartPolling(c.Request.Context(), userID(c)); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"polling": true})
}

// ConfirmPayment is the manual "I have paid" fallback.
func (h *CheckoutHandler) ConfirmPayment(c *gin.Context) {
	session, err := h.Service.ConfirmPaymentManually(c.Request.Context(), userID(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"paymentStatus": session.PaymentStatus,
		"session":       session,
	})
}

// RetryPayment resets a failed attempt back to the payment-type step.
func (h *CheckoutHandler) RetryPayment(c *gin.Context) {
	session, err := h.Service.RetryPayment(c.Request.Context(), userID(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"session": session})
}
