package checkout

import (
	"context"
	"fmt"
	"math"
	"time"

	"rentiva/models"

	"github.com/google/uuid"
)

const (
	minExtendedDays = 1
	maxExtendedDays = 30
)

// ComputeDuration returns the rental duration in days between two instants,
// never less than one day.
func ComputeDuration(delivery time.Time, pickup time.Time) int {
	hours := pickup.Sub(delivery).Hours()
	days := int(math.Ceil(hours / 24))
	if days < 1 {
		return 1
	}
	return days
}

// ScheduleUpdate carries one mutation to an item's schedule. Nil fields are
// left untouched.
type ScheduleUpdate struct {
	Delivery       *time.Time `json:"delivery,omitempty"`
	Pickup         *time.Time `json:"pickup,omitempty"`
	Notes          *string    `json:"notes,omitempty"`
	PickupNotes    *string    `json:"pickupNotes,omitempty"`
	ExtendDuration *bool      `json:"extendDuration,omitempty"`
	ExtendedDays   *int       `json:"extendedDays,omitempty"`
}

// resolvedSchedule is the effective schedule of an item: its own entry for
// individual items, the shared group record for synchronized ones.
type resolvedSchedule struct {
	Delivery       time.Time
	Pickup         *time.Time
	Notes          string
	PickupNotes    string
	ExtendDuration bool
	ExtendedDays   int
}

func resolve(session *models.CheckoutSession, entry *models.ScheduleEntry) resolvedSchedule {
	if entry.Synchronized {
		if g := session.Group(entry.GroupID); g != nil {
			return resolvedSchedule{
				Delivery:       g.Delivery,
				Pickup:         g.Pickup,
				Notes:          g.Notes,
				PickupNotes:    g.PickupNotes,
				ExtendDuration: g.ExtendDuration,
				ExtendedDays:   g.ExtendedDays,
			}
		}
	}
	return resolvedSchedule{
		Delivery:       entry.Delivery,
		Pickup:         entry.Pickup,
		Notes:          entry.Notes,
		PickupNotes:    entry.PickupNotes,
		ExtendDuration: entry.ExtendDuration,
		ExtendedDays:   entry.ExtendedDays,
	}
}

// durationFor computes the duration of one resolved schedule. The explicit
// additional-days selector wins; otherwise the duration follows the
// delivery/pickup pair whenever both instants are known, and defaults to a
// single day.
func durationFor(rs resolvedSchedule) int {
	if rs.ExtendDuration && rs.ExtendedDays > 0 {
		return 1 + rs.ExtendedDays
	}
	if rs.Pickup != nil && !rs.Delivery.IsZero() {
		return ComputeDuration(rs.Delivery, *rs.Pickup)
	}
	return 1
}

// refreshDurations recomputes every item's duration (and therefore its total
// price) from its resolved schedule. Called after every duration-affecting
// mutation.
func (s *DefaultCheckoutService) refreshDurations(session *models.CheckoutSession) {
	for i := range session.Items {
		item := &session.Items[i]
		entry := session.Entry(item.ID)
		if entry == nil {
			item.Duration = 1
			continue
		}
		item.Duration = durationFor(resolve(session, entry))
	}
}

// applySchedule applies an update to a mutable schedule view and validates
// the result. Dates are never auto-corrected: an invalid pair rejects the
// whole mutation. individual selects the auto-derived 24h pickup; a shared
// group's pickup instant is always explicit.
func applySchedule(itemName string, rs *resolvedSchedule, upd ScheduleUpdate, individual bool) error {
	if upd.Delivery != nil {
		rs.Delivery = *upd.Delivery
	}
	if upd.Pickup != nil {
		rs.Pickup = upd.Pickup
	}
	if upd.Notes != nil {
		rs.Notes = *upd.Notes
	}
	if upd.PickupNotes != nil {
		rs.PickupNotes = *upd.PickupNotes
	}
	extendToggledOff := false
	extendToggledOn := false
	if upd.ExtendDuration != nil {
		if rs.ExtendDuration && !*upd.ExtendDuration {
			extendToggledOff = true
		}
		if !rs.ExtendDuration && *upd.ExtendDuration {
			extendToggledOn = true
		}
		rs.ExtendDuration = *upd.ExtendDuration
		if !rs.ExtendDuration {
			rs.ExtendedDays = 0
		}
	}
	if upd.ExtendedDays != nil {
		if *upd.ExtendedDays < minExtendedDays || *upd.ExtendedDays > maxExtendedDays {
			return NewValidationError(itemName,
				fmt.Sprintf("additional days must be between %d and %d", minExtendedDays, maxExtendedDays))
		}
		rs.ExtendedDays = *upd.ExtendedDays
	}

	// Switching the extension on invalidates a previously derived one-day
	// pickup: an extended rental needs an explicit pickup or a days selection,
	// not a leftover delivery+24h.
	if extendToggledOn && upd.Pickup == nil {
		rs.Pickup = nil
	}

	// Derived pickups. Without an extension no explicit pickup entry is
	// required: delivery + 24h is filled in whenever delivery moves or the
	// extension is switched off. With the additional-days selector the
	// pickup follows the selected span.
	if !rs.Delivery.IsZero() && upd.Pickup == nil {
		if individual && !rs.ExtendDuration && (upd.Delivery != nil || extendToggledOff || rs.Pickup == nil) {
			derived := rs.Delivery.Add(24 * time.Hour)
			rs.Pickup = &derived
		} else if rs.ExtendDuration && rs.ExtendedDays > 0 {
			derived := rs.Delivery.Add(time.Duration(1+rs.ExtendedDays) * 24 * time.Hour)
			rs.Pickup = &derived
		}
	}

	if rs.Pickup != nil && !rs.Delivery.IsZero() && !rs.Pickup.After(rs.Delivery) {
		return NewValidationError(itemName, "pickup must be after delivery")
	}
	return nil
}

// UpdateSchedule mutates one item's schedule. For a synchronized item the
// mutation is a single write to the shared group record, so every member
// observes it at once.
func (s *DefaultCheckoutService) UpdateSchedule(ctx context.Context, userID, itemID string, upd ScheduleUpdate) (*models.CheckoutSession, error) {
	session, err := s.Sessions.Load(ctx, userID)
	if err != nil {
		return nil, err
	}

	item := session.Item(itemID)
	if item == nil {
		return nil, NewValidationError(itemID, "item is not in the cart")
	}

	entry := session.Entry(itemID)
	if entry == nil {
		entry = &models.ScheduleEntry{ItemID: itemID}
		session.Schedules[itemID] = entry
	}

	if entry.Synchronized {
		if err := s.applyToGroup(session, entry.GroupID, item.Name, upd); err != nil {
			return nil, err
		}
	} else {
		rs := resolve(session, entry)
		if err := applySchedule(item.Name, &rs, upd, true); err != nil {
			return nil, err
		}
		entry.Delivery = rs.Delivery
		entry.Pickup = rs.Pickup
		entry.Notes = rs.Notes
		entry.PickupNotes = rs.PickupNotes
		entry.ExtendDuration = rs.ExtendDuration
		entry.ExtendedDays = rs.ExtendedDays
	}

	s.refreshDurations(session)
	if err := s.Sessions.Save(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

// applyToGroup validates the mutation against a copy of the group record and
// commits it as one write. There is no per-member loop to partially fail.
func (s *DefaultCheckoutService) applyToGroup(session *models.CheckoutSession, groupID, itemName string, upd ScheduleUpdate) error {
	group := session.Group(groupID)
	if group == nil {
		return fmt.Errorf("schedule group %s not found", groupID)
	}

	rs := resolvedSchedule{
		Delivery:       group.Delivery,
		Pickup:         group.Pickup,
		Notes:          group.Notes,
		PickupNotes:    group.PickupNotes,
		ExtendDuration: group.ExtendDuration,
		ExtendedDays:   group.ExtendedDays,
	}
	if err := applySchedule(itemName, &rs, upd, false); err != nil {
		return err
	}

	group.Delivery = rs.Delivery
	group.Pickup = rs.Pickup
	group.Notes = rs.Notes
	group.PickupNotes = rs.PickupNotes
	group.ExtendDuration = rs.ExtendDuration
	group.ExtendedDays = rs.ExtendedDays
	return nil
}

// syncGroupID returns the session's one synchronized group, if any.
func syncGroupID(session *models.CheckoutSession) string {
	for id := range session.Groups {
		return id
	}
	return ""
}

// JoinSyncGroup flags an item as synchronized. The first joiner seeds the
// group record from its own entry; later joiners adopt the shared schedule.
func (s *DefaultCheckoutService) JoinSyncGroup(ctx context.Context, userID, itemID string) (*models.CheckoutSession, error) {
	session, err := s.Sessions.Load(ctx, userID)
	if err != nil {
		return nil, err
	}
	item := session.Item(itemID)
	if item == nil {
		return nil, NewValidationError(itemID, "item is not in the cart")
	}

	entry := session.Entry(itemID)
	if entry == nil {
		entry = &models.ScheduleEntry{ItemID: itemID}
		session.Schedules[itemID] = entry
	}
	if entry.Synchronized {
		return session, nil
	}

	groupID := syncGroupID(session)
	if groupID == "" {
		groupID = uuid.New().String()
		session.Groups[groupID] = &models.ScheduleGroup{
			ID:             groupID,
			Delivery:       entry.Delivery,
			Pickup:         entry.Pickup,
			Notes:          entry.Notes,
			PickupNotes:    entry.PickupNotes,
			ExtendDuration: entry.ExtendDuration,
			ExtendedDays:   entry.ExtendedDays,
		}
	}
	entry.Synchronized = true
	entry.GroupID = groupID

	s.refreshDurations(session)
	if err := s.Sessions.Save(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

// LeaveSyncGroup detaches an item from the group, keeping a copy of the
// shared schedule as its individual one. An emptied group is removed.
func (s *DefaultCheckoutService) LeaveSyncGroup(ctx context.Context, userID, itemID string) (*models.CheckoutSession, error) {
	session, err := s.Sessions.Load(ctx, userID)
	if err != nil {
		return nil, err
	}
	entry := session.Entry(itemID)
	if entry == nil || !entry.Synchronized {
		return session, nil
	}

	rs := resolve(session, entry)
	groupID := entry.GroupID
	entry.Synchronized = false
	entry.GroupID = ""
	entry.Delivery = rs.Delivery
	entry.Pickup = rs.Pickup
	entry.Notes = rs.Notes
	entry.PickupNotes = rs.PickupNotes
	entry.ExtendDuration = rs.ExtendDuration
	entry.ExtendedDays = rs.ExtendedDays

	stillUsed := false
	for _, e := range session.Schedules {
		if e.Synchronized && e.GroupID == groupID {
			stillUsed = true
			break
		}
	}
	if !stillUsed {
		delete(session.Groups, groupID)
	}

	s.refreshDurations(session)
	if err := s.Sessions.Save(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

// validateSchedules re-checks every stored schedule and returns the first
// blocking condition, attributed to the offending item.
func validateSchedules(session *models.CheckoutSession) error {
	for _, item := range session.Items {
		entry := session.Entry(item.ID)
		if entry == nil {
			return NewValidationError(item.Name, "delivery date is required")
		}
		rs := resolve(session, entry)
		if rs.Delivery.IsZero() {
			return NewValidationError(item.Name, "delivery date is required")
		}
		if rs.ExtendDuration && rs.Pickup == nil {
			return NewValidationError(item.Name, "pickup date is required for an extended rental")
		}
		if rs.Pickup != nil && !rs.Pickup.After(rs.Delivery) {
			return NewValidationError(item.Name, "pickup must be after delivery")
		}
	}
	return nil
}
