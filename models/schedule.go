package models

import "time"

// ScheduleEntry holds the per-item delivery/pickup schedule. Entries flagged
// Synchronized do not carry their own shared fields; they reference a
// ScheduleGroup by GroupID and read delivery, pickup and notes from it.
type ScheduleEntry struct {
	ItemID         string     `json:"itemId"`
	Delivery       time.Time  `json:"delivery"`
	Pickup         *time.Time `json:"pickup,omitempty"`
	Notes          string     `json:"notes,omitempty"`
	PickupNotes    string     `json:"pickupNotes,omitempty"`
	Synchronized   bool       `json:"synchronized"`
	GroupID        string     `json:"groupId,omitempty"`
	ExtendDuration bool       `json:"extendDuration"`
	ExtendedDays   int        `json:"extendedDays,omitempty"`
}

// ScheduleGroup is the single record shared by all synchronized members of a
// session. A mutation to the group is observed by every member at once.
type ScheduleGroup struct {
	ID             string     `json:"id"`
	Delivery       time.Time  `json:"delivery"`
	Pickup         *time.Time `json:"pickup,omitempty"`
	Notes          string     `json:"notes,omitempty"`
	PickupNotes    string     `json:"pickupNotes,omitempty"`
	ExtendDuration bool       `json:"extendDuration"`
	ExtendedDays   int        `json:"extendedDays,omitempty"`
}
