package models

import "time"

// IntentAuditStatus tracks what happened to one created intent.
type IntentAuditStatus string

const (
	IntentAuditReserved IntentAuditStatus = "reserved"
	IntentAuditReleased IntentAuditStatus = "released"
	IntentAuditPaid     IntentAuditStatus = "paid"
)

// IntentAuditRecord is the durable trail of one intent created during confirm.
type IntentAuditRecord struct {
	ID              string            `bson:"id" json:"id"`
	SessionID       string            `bson:"session_id" json:"sessionId"`
	IntentID        string            `bson:"intent_id" json:"intentId"`
	ServiceID       string            `bson:"service_id" json:"serviceId"`
	ReferenceNumber string            `bson:"reference_number" json:"referenceNumber"`
	Amount          float64           `bson:"amount" json:"amount"`
	Status          IntentAuditStatus `bson:"status" json:"status"`
	CreatedAt       time.Time         `bson:"created_at" json:"createdAt"`
	UpdatedAt       time.Time         `bson:"updated_at" json:"updatedAt"`
}
