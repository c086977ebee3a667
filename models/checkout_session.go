package models

import "time"

// CheckoutStep is one of the five ordered checkout states.
type CheckoutStep string

const (
	StepReview      CheckoutStep = "review"
	StepSchedule    CheckoutStep = "schedule"
	StepConfirm     CheckoutStep = "confirm"
	StepPaymentType CheckoutStep = "payment-type"
	StepPayment     CheckoutStep = "payment"
)

// PaymentStatus is the reconciliation state of the aggregate payment.
type PaymentStatus string

const (
	PaymentUnpaid     PaymentStatus = "unpaid"
	PaymentProcessing PaymentStatus = "processing"
	PaymentPaid       PaymentStatus = "paid"
	PaymentFailed     PaymentStatus = "failed"
)

// Terminal reports whether the status ends a reconciliation run.
func (s PaymentStatus) Terminal() bool {
	return s == PaymentPaid || s == PaymentFailed
}

// SessionSchemaVersion is bumped whenever the persisted session shape changes.
// Decoding rejects any other version instead of silently drifting.
const SessionSchemaVersion = 1

// CheckoutSession is the aggregate root owning the cart snapshot, schedules,
// created intents, the payment handle and the current step.
type CheckoutSession struct {
	SchemaVersion int                       `json:"schemaVersion"`
	SessionID     string                    `json:"sessionId"`
	UserID        string                    `json:"userId"`
	Items         []CartItem                `json:"items"`
	Schedules     map[string]*ScheduleEntry `json:"schedules"`
	Groups        map[string]*ScheduleGroup `json:"groups"`
	Intents       []BookingIntent           `json:"intents,omitempty"`
	Payment       *PaymentHandle            `json:"payment,omitempty"`
	CheckoutTotal float64                   `json:"checkoutTotal"`
	Step          CheckoutStep              `json:"step"`
	PaymentStatus PaymentStatus             `json:"paymentStatus"`
	CreatedAt     time.Time                 `json:"createdAt"`
	UpdatedAt     time.Time                 `json:"updatedAt"`
}

// Entry returns the schedule entry for an item, or nil when the item has not
// been scheduled yet.
func (s *CheckoutSession) Entry(itemID string) *ScheduleEntry {
	if s.Schedules == nil {
		return nil
	}
	return s.Schedules[itemID]
}

// Group returns the schedule group referenced by an entry, or nil.
func (s *CheckoutSession) Group(groupID string) *ScheduleGroup {
	if s.Groups == nil {
		return nil
	}
	return s.Groups[groupID]
}

// Item returns the cart item with the given id, or nil.
func (s *CheckoutSession) Item(itemID string) *CartItem {
	for i := range s.Items {
		if s.Items[i].ID == itemID {
			return &s.Items[i]
		}
	}
	return nil
}

// Subtotal sums every item's total price at its current duration.
func (s *CheckoutSession) Subtotal() float64 {
	var sum float64
	for _, it := range s.Items {
		sum += it.TotalPrice()
	}
	return sum
}
