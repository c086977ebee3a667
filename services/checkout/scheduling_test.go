package checkout

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeDuration(t *testing.T) {
	base := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

	tests := []struct {
		name   string
		pickup time.Time
		want   int
	}{
		{"exactly one day", base.Add(24 * time.Hour), 1},
		{"just over one day rounds up", base.Add(25 * time.Hour), 2},
		{"two days", base.Add(48 * time.Hour), 2},
		{"a few hours still counts as a day", base.Add(3 * time.Hour), 1},
		{"same instant clamps to one day", base, 1},
		{"pickup before delivery clamps to one day", base.Add(-4 * time.Hour), 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ComputeDuration(base, tt.pickup))
		})
	}
}

func TestIndividualScheduleDefaultsToOneDay(t *testing.T) {
	env := newTestEnv(tentItem())
	ctx := context.Background()
	_, err := env.svc.LoadSession(ctx, "u1")
	require.NoError(t, err)

	delivery := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	session, err := env.svc.UpdateSchedule(ctx, "u1", "svc-tent", ScheduleUpdate{Delivery: &delivery})
	require.NoError(t, err)

	entry := session.Entry("svc-tent")
	require.NotNil(t, entry)
	require.NotNil(t, entry.Pickup)
	assert.Equal(t, delivery.Add(24*time.Hour), *entry.Pickup)
	assert.Equal(t, 1, session.Item("svc-tent").Duration)

	// No explicit pickup entry is needed to reach the confirm step.
	assert.NoError(t, validateSchedules(session))
}

func TestPickupMustBeAfterDelivery(t *testing.T) {
	env := newTestEnv(tentItem())
	ctx := context.Background()
	_, err := env.svc.LoadSession(ctx, "u1")
	require.NoError(t, err)

	delivery := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	extend := true
	_, err = env.svc.UpdateSchedule(ctx, "u1", "svc-tent", ScheduleUpdate{
		Delivery:       &delivery,
		ExtendDuration: &extend,
		Pickup:         &delivery,
	})
	require.Error(t, err)
	assert.True(t, IsValidation(err))
	assert.Contains(t, err.Error(), "Canvas Tent")

	// The rejected mutation must not have been applied.
	session, err := env.svc.LoadSession(ctx, "u1")
	require.NoError(t, err)
	entry := session.Entry("svc-tent")
	if entry != nil {
		assert.True(t, entry.Delivery.IsZero())
	}
}

func TestExtendedDaysSelector(t *testing.T) {
	env := newTestEnv(tentItem())
	ctx := context.Background()
	_, err := env.svc.LoadSession(ctx, "u1")
	require.NoError(t, err)

	delivery := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	extend := true
	days := 3
	session, err := env.svc.UpdateSchedule(ctx, "u1", "svc-tent", ScheduleUpdate{
		Delivery:       &delivery,
		ExtendDuration: &extend,
		ExtendedDays:   &days,
	})
	require.NoError(t, err)

	item := session.Item("svc-tent")
	assert.Equal(t, 4, item.Duration)
	assert.Equal(t, 40.0*4*2, item.TotalPrice())

	// Out-of-range selector is rejected.
	tooMany := 31
	_, err = env.svc.UpdateSchedule(ctx, "u1", "svc-tent", ScheduleUpdate{ExtendedDays: &tooMany})
	require.Error(t, err)
	assert.True(t, IsValidation(err))
}

func TestExtendToggleInvalidatesDerivedPickup(t *testing.T) {
	env := newTestEnv(tentItem())
	ctx := context.Background()
	_, err := env.svc.LoadSession(ctx, "u1")
	require.NoError(t, err)

	delivery := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	session, err := env.svc.UpdateSchedule(ctx, "u1", "svc-tent", ScheduleUpdate{Delivery: &delivery})
	require.NoError(t, err)
	require.NotNil(t, session.Entry("svc-tent").Pickup)

	// Turning the extension on in a later update drops the derived one-day
	// pickup; it cannot satisfy the extended-rental gate on its own.
	extend := true
	session, err = env.svc.UpdateSchedule(ctx, "u1", "svc-tent", ScheduleUpdate{ExtendDuration: &extend})
	require.NoError(t, err)
	assert.Nil(t, session.Entry("svc-tent").Pickup)

	err = validateSchedules(session)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "pickup")

	// An explicit pickup restores a valid schedule.
	pickup := delivery.Add(72 * time.Hour)
	session, err = env.svc.UpdateSchedule(ctx, "u1", "svc-tent", ScheduleUpdate{Pickup: &pickup})
	require.NoError(t, err)
	assert.Equal(t, 3, session.Item("svc-tent").Duration)
	assert.NoError(t, validateSchedules(session))
}

func TestTotalPriceRecomputedOnDurationChange(t *testing.T) {
	env := newTestEnv(speakerItem())
	ctx := context.Background()
	_, err := env.svc.LoadSession(ctx, "u1")
	require.NoError(t, err)

	delivery := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	extend := true
	pickup := delivery.Add(72 * time.Hour)
	session, err := env.svc.UpdateSchedule(ctx, "u1", "svc-speaker", ScheduleUpdate{
		Delivery:       &delivery,
		ExtendDuration: &extend,
		Pickup:         &pickup,
	})
	require.NoError(t, err)

	item := session.Item("svc-speaker")
	assert.Equal(t, 3, item.Duration)
	assert.Equal(t, 25.0*3*1, item.TotalPrice())

	// Toggling the extension off snaps back to a single day.
	off := false
	session, err = env.svc.UpdateSchedule(ctx, "u1", "svc-speaker", ScheduleUpdate{ExtendDuration: &off})
	require.NoError(t, err)
	item = session.Item("svc-speaker")
	assert.Equal(t, 1, item.Duration)
	assert.Equal(t, 25.0, item.TotalPrice())
}

func TestSynchronizedGroupSharesSchedule(t *testing.T) {
	env := newTestEnv(tentItem(), speakerItem())
	ctx := context.Background()
	_, err := env.svc.LoadSession(ctx, "u1")
	require.NoError(t, err)

	_, err = env.svc.JoinSyncGroup(ctx, "u1", "svc-tent")
	require.NoError(t, err)
	_, err = env.svc.JoinSyncGroup(ctx, "u1", "svc-speaker")
	require.NoError(t, err)

	delivery := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	pickup := delivery.Add(48 * time.Hour)
	notes := "Deliver to the back gate"
	session, err := env.svc.UpdateSchedule(ctx, "u1", "svc-tent", ScheduleUpdate{
		Delivery: &delivery,
		Pickup:   &pickup,
		Notes:    &notes,
	})
	require.NoError(t, err)

	// A single-member edit is observable on every member immediately.
	for _, itemID := range []string{"svc-tent", "svc-speaker"} {
		entry := session.Entry(itemID)
		require.NotNil(t, entry, itemID)
		rs := resolve(session, entry)
		assert.Equal(t, delivery, rs.Delivery, itemID)
		require.NotNil(t, rs.Pickup, itemID)
		assert.Equal(t, pickup, *rs.Pickup, itemID)
		assert.Equal(t, notes, rs.Notes, itemID)
	}

	// Both items report duration 2 and the subtotal follows.
	assert.Equal(t, 2, session.Item("svc-tent").Duration)
	assert.Equal(t, 2, session.Item("svc-speaker").Duration)
	assert.Equal(t, 40.0*2*2+25.0*2*1, session.Subtotal())

	// One group record backs both entries.
	assert.Len(t, session.Groups, 1)
}

func TestSynchronizedGroupExtendAppliesToAllMembers(t *testing.T) {
	env := newTestEnv(tentItem(), speakerItem())
	ctx := context.Background()
	_, err := env.svc.LoadSession(ctx, "u1")
	require.NoError(t, err)

	_, err = env.svc.JoinSyncGroup(ctx, "u1", "svc-tent")
	require.NoError(t, err)
	_, err = env.svc.JoinSyncGroup(ctx, "u1", "svc-speaker")
	require.NoError(t, err)

	delivery := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	extend := true
	days := 2
	session, err := env.svc.UpdateSchedule(ctx, "u1", "svc-speaker", ScheduleUpdate{
		Delivery:       &delivery,
		ExtendDuration: &extend,
		ExtendedDays:   &days,
	})
	require.NoError(t, err)

	assert.Equal(t, 3, session.Item("svc-tent").Duration)
	assert.Equal(t, 3, session.Item("svc-speaker").Duration)
}

func TestLeaveSyncGroupKeepsScheduleCopy(t *testing.T) {
	env := newTestEnv(tentItem(), speakerItem())
	ctx := context.Background()
	_, err := env.svc.LoadSession(ctx, "u1")
	require.NoError(t, err)

	_, err = env.svc.JoinSyncGroup(ctx, "u1", "svc-tent")
	require.NoError(t, err)
	_, err = env.svc.JoinSyncGroup(ctx, "u1", "svc-speaker")
	require.NoError(t, err)

	delivery := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	_, err = env.svc.UpdateSchedule(ctx, "u1", "svc-tent", ScheduleUpdate{Delivery: &delivery})
	require.NoError(t, err)

	session, err := env.svc.LeaveSyncGroup(ctx, "u1", "svc-speaker")
	require.NoError(t, err)

	entry := session.Entry("svc-speaker")
	require.NotNil(t, entry)
	assert.False(t, entry.Synchronized)
	assert.Equal(t, delivery, entry.Delivery)

	// The remaining member still references the group.
	assert.True(t, session.Entry("svc-tent").Synchronized)
	assert.Len(t, session.Groups, 1)

	// Last member leaving removes the group record.
	session, err = env.svc.LeaveSyncGroup(ctx, "u1", "svc-tent")
	require.NoError(t, err)
	assert.Len(t, session.Groups, 0)
}
