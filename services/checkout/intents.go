package checkout

import (
	"context"
	"fmt"
	"time"

	"rentiva/clients"
	"rentiva/models"

	"go.uber.org/zap"
)

// Confirm reserves one booking intent per cart item, strictly sequentially,
// and aggregates them into a single payment handle. The first failure aborts
// the batch: every already-created intent is released (best effort) before
// the item-attributed error is surfaced. Re-entering Confirm after a
// successful run is a no-op; intents are never re-created within a session.
func (s *DefaultCheckoutService) Confirm(ctx context.Context, userID string) (*models.CheckoutSession, error) {
	if !s.setInFlight(userID) {
		return nil, ErrOperationInFlight
	}
	defer s.clearInFlight(userID)

	session, err := s.Sessions.Load(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(session.Intents) > 0 && session.Payment != nil {
		return session, nil
	}

	s.refreshDurations(session)

	var (
		created       []models.BookingIntent
		checkoutTotal float64
		payment       *models.PaymentHandle
	)

	for _, item := range session.Items {
		entry := session.Entry(item.ID)
		var rs resolvedSchedule
		if entry != nil {
			rs = resolve(session, entry)
		}
		if entry == nil || rs.Delivery.IsZero() {
			s.releaseIntents(created)
			return nil, NewValidationError(item.Name, "delivery date is required")
		}

		resp, err := s.Reservation.CreateIntent(ctx, intentRequestFor(item, rs))
		if err != nil {
			s.releaseIntents(created)
			return nil, fmt.Errorf("failed to reserve %s: %w", item.Name, err)
		}

		intent := resp.Intent
		intent.Payment = resp.Payment
		created = append(created, intent)
		checkoutTotal += intent.TotalPrice

		if _, auditErr := s.AuditRepo.Create(ctx, models.IntentAuditRecord{
			SessionID:       session.SessionID,
			IntentID:        intent.ID,
			ServiceID:       intent.ServiceID,
			ReferenceNumber: resp.Payment.ReferenceNumber,
			Amount:          intent.TotalPrice,
			Status:          models.IntentAuditReserved,
		}); auditErr != nil {
			s.Logger.Error("failed to record intent audit trail",
				zap.String("intentId", intent.ID), zap.Error(auditErr))
		}

		// The first intent's payment fragment is adopted as the session's
		// single handle; the amount is overwritten with the aggregate total
		// once the batch completes.
		if payment == nil {
			payment = &models.PaymentHandle{
				ReferenceNumber: resp.Payment.ReferenceNumber,
				TransactionID:   resp.Payment.TransactionID,
				QRCode:          resp.Payment.QRCode,
				Instructions:    resp.Payment.Instructions,
			}
		}
	}

	if payment == nil {
		return nil, NewValidationError("cart", "there are no items to confirm")
	}
	payment.Amount = checkoutTotal

	session.Intents = created
	session.Payment = payment
	session.CheckoutTotal = checkoutTotal
	session.PaymentStatus = models.PaymentUnpaid

	if err := s.Sessions.Save(ctx, session); err != nil {
		return nil, err
	}

	s.Logger.Info("booking intents created",
		zap.String("sessionId", session.SessionID),
		zap.Int("intents", len(created)),
		zap.Float64("total", checkoutTotal),
		zap.String("reference", payment.ReferenceNumber))
	return session, nil
}

func intentRequestFor(item models.CartItem, rs resolvedSchedule) clients.IntentRequest {
	return clients.IntentRequest{
		ServiceID:   item.ID,
		Quantity:    item.Quantity,
		BookingDate: rs.Delivery,
		Notes:       rs.Notes,
		Duration:    durationFor(rs),
		DailyRate:   item.DailyRate,
	}
}

// releaseIntents issues compensation calls for every intent created before a
// mid-batch failure. Release failures are logged, never surfaced: the user
// sees the original item-attributed error.
func (s *DefaultCheckoutService) releaseIntents(created []models.BookingIntent) {
	if len(created) == 0 {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	for _, intent := range created {
		if err := s.Reservation.ReleaseIntent(ctx, intent.ID); err != nil {
			s.Logger.Error("failed to release booking intent",
				zap.String("intentId", intent.ID), zap.Error(err))
			continue
		}
		if err := s.AuditRepo.MarkReleased(ctx, intent.ID); err != nil {
			s.Logger.Warn("failed to mark intent released",
				zap.String("intentId", intent.ID), zap.Error(err))
		}
	}
}
