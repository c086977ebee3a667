package clients

import (
	"context"
	"time"

	"rentiva/models"
)

// InventoryClient reads the live catalog: the user's cart working set and
// current availability. It never mutates stock.
type InventoryClient interface {
	CartItems(ctx context.Context, userID string) ([]models.CartItem, error)
	Availability(ctx context.Context, items []models.CartItem) (*models.StockReport, error)
}

// ProfileClient answers whether the user's delivery address is complete.
type ProfileClient interface {
	AddressComplete(ctx context.Context, userID string) (bool, error)
}

// IntentRequest is the payload for creating one booking intent.
type IntentRequest struct {
	ServiceID   string    `json:"serviceId"`
	Quantity    int       `json:"quantity"`
	BookingDate time.Time `json:"bookingDate"`
	Notes       string    `json:"notes,omitempty"`
	Duration    int       `json:"duration"`
	DailyRate   float64   `json:"dailyRate"`
}

// IntentResponse carries the reserved intent and its payment fragment.
type IntentResponse struct {
	Intent  models.BookingIntent   `json:"bookingIntent"`
	Payment models.PaymentFragment `json:"payment"`
}

// ReservationClient reserves and releases booking intents. CreateIntent is
// the authoritative, atomic stock check; a rejection here is final.
type ReservationClient interface {
	CreateIntent(ctx context.Context, req IntentRequest) (*IntentResponse, error)
	ReleaseIntent(ctx context.Context, intentID string) error
}

// PaymentClient queries and verifies the aggregate QR payment.
type PaymentClient interface {
	Status(ctx context.Context, referenceNumber string) (string, error)
	Verify(ctx context.Context, referenceNumber string, amount float64) (string, error)
}

// Provider status vocabulary shared by Status and Verify.
const (
	ProviderStatusUnpaid     = "unpaid"
	ProviderStatusProcessing = "processing"
	ProviderStatusCompleted  = "completed"
	ProviderStatusFailed     = "failed"
)
