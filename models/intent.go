package models

import "time"

// PaymentFragment is the per-intent payment payload returned by the
// reservation collaborator alongside each created intent.
type PaymentFragment struct {
	QRCode          string `bson:"qr_code" json:"qrCode"`
	Instructions    string `bson:"instructions" json:"instructions"`
	ReferenceNumber string `bson:"reference_number" json:"referenceNumber"`
	TransactionID   string `bson:"transaction_id" json:"transactionId"`
}

// BookingIntent is a server-reserved, not-yet-paid placeholder for one cart
// item's rental.
type BookingIntent struct {
	ID           string          `bson:"id" json:"id"`
	ServiceID    string          `bson:"service_id" json:"serviceId"`
	Quantity     int             `bson:"quantity" json:"quantity"`
	Delivery     time.Time       `bson:"delivery" json:"delivery"`
	DurationDays int             `bson:"duration_days" json:"durationDays"`
	TotalPrice   float64         `bson:"total_price" json:"totalPrice"`
	Payment      PaymentFragment `bson:"payment" json:"payment"`
	CreatedAt    time.Time       `bson:"created_at" json:"createdAt"`
}

// PaymentHandle identifies the single aggregate payment covering every intent
// of a confirmed session. Amount is the summed checkout total.
type PaymentHandle struct {
	ReferenceNumber string  `json:"referenceNumber"`
	TransactionID   string  `json:"transactionId"`
	QRCode          string  `json:"qrCode"`
	Instructions    string  `json:"instructions"`
	Amount          float64 `json:"amount"`
}
