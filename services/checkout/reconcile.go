package checkout

import (
	"context"
	"time"

	"rentiva/clients"
	"rentiva/models"

	"go.uber.org/zap"
)

// poller is one reconciliation run for a session. Cancelling it and waiting
// on done is the only way a second run may start for the same session.
type poller struct {
	cancel context.CancelFunc
	done   chan struct{}
}

// StartPolling begins a reconciliation run for the session's payment handle.
// Any prior run for the session is cancelled and awaited first, so at most
// one polling timer is ever active per session. The run lives on a background
// context with an absolute timeout; it is not tied to the caller's request.
func (s *DefaultCheckoutService) StartPolling(ctx context.Context, userID string) error {
	session, err := s.Sessions.Load(ctx, userID)
	if err != nil {
		return err
	}
	if session.Payment == nil {
		return NewValidationError("payment", "there is no payment to reconcile")
	}
	if session.PaymentStatus.Terminal() {
		return nil
	}

	s.mu.Lock()
	if prev, ok := s.pollers[userID]; ok {
		prev.cancel()
		s.mu.Unlock()
		<-prev.done
		s.mu.Lock()
	}
	pollCtx, cancel := context.WithTimeout(context.Background(), s.PollTimeout)
	p := &poller{cancel: cancel, done: make(chan struct{})}
	s.pollers[userID] = p
	s.mu.Unlock()

	go s.runPoll(pollCtx, p, userID, session.Payment.ReferenceNumber)

	if s.Expiry != nil {
		if err := s.Expiry.ScheduleExpiry(ctx, userID, s.PaymentWindow); err != nil {
			s.Logger.Warn("failed to schedule session expiry",
				zap.String("userId", userID), zap.Error(err))
		}
	}
	return nil
}

// StopPolling cancels the session's reconciliation run, if any, and waits
// for it to wind down.
func (s *DefaultCheckoutService) StopPolling(userID string) {
	s.mu.Lock()
	p, ok := s.pollers[userID]
	if ok {
		delete(s.pollers, userID)
		p.cancel()
	}
	s.mu.Unlock()
	if ok {
		<-p.done
	}
}

func (s *DefaultCheckoutService) runPoll(ctx context.Context, p *poller, userID, reference string) {
	defer close(p.done)
	defer func() {
		s.mu.Lock()
		if s.pollers[userID] == p {
			delete(s.pollers, userID)
		}
		s.mu.Unlock()
	}()

	ticker := time.NewTicker(s.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			// Timeout or cancellation: stop silently, state stays as it was.
			return
		case <-ticker.C:
			status, err := s.Payment.Status(ctx, reference)
			if err != nil {
				// A failed tick is never a failed payment. Log and keep going.
				s.Logger.Warn("payment status poll failed",
					zap.String("reference", reference), zap.Error(err))
				continue
			}
			if stop := s.applyProviderStatus(userID, status); stop {
				return
			}
		}
	}
}

// applyProviderStatus maps one observed provider status onto the session's
// reconciliation state and reports whether the run should stop. A terminal
// state already on the session is never downgraded.
func (s *DefaultCheckoutService) applyProviderStatus(userID, status string) bool {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	s.mu.Lock()
	defer s.mu.Unlock()

	session, err := s.Sessions.Load(ctx, userID)
	if err != nil {
		s.Logger.Warn("failed to load session while applying payment status",
			zap.String("userId", userID), zap.Error(err))
		return true
	}
	if session.PaymentStatus.Terminal() {
		return true
	}

	switch status {
	case clients.ProviderStatusCompleted:
		session.PaymentStatus = models.PaymentPaid
		if err := s.Sessions.Save(ctx, session); err != nil {
			s.Logger.Error("failed to persist paid status", zap.Error(err))
			return true
		}
		if err := s.AuditRepo.MarkPaid(ctx, session.SessionID); err != nil {
			s.Logger.Warn("failed to mark intents paid",
				zap.String("sessionId", session.SessionID), zap.Error(err))
		}
		s.Logger.Info("payment reconciled",
			zap.String("sessionId", session.SessionID),
			zap.Float64("amount", session.CheckoutTotal))
		// Grace delay before the session is cleared, so the client can
		// observe the paid state and route to the success view.
		time.AfterFunc(s.GraceDelay, func() {
			cleanupCtx, cleanupCancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cleanupCancel()
			if err := s.Sessions.Delete(cleanupCtx, userID); err != nil {
				s.Logger.Warn("failed to clear paid session",
					zap.String("userId", userID), zap.Error(err))
			}
		})
		return true

	case clients.ProviderStatusFailed:
		session.PaymentStatus = models.PaymentFailed
		if err := s.Sessions.Save(ctx, session); err != nil {
			s.Logger.Error("failed to persist failed status", zap.Error(err))
		}
		return true

	case clients.ProviderStatusUnpaid:
		return false

	default:
		// Processing or anything unrecognized: record it and stop; the loop
		// does not resume on its own after a non-terminal observation.
		session.PaymentStatus = models.PaymentProcessing
		if err := s.Sessions.Save(ctx, session); err != nil {
			s.Logger.Error("failed to persist processing status", zap.Error(err))
		}
		return true
	}
}

// ConfirmPaymentManually verifies the payment directly with the provider,
// independent of the polling timer, and applies the same transitions as a
// successful poll tick. Once the session is terminal this is a no-op.
func (s *DefaultCheckoutService) ConfirmPaymentManually(ctx context.Context, userID string) (*models.CheckoutSession, error) {
	if !s.setInFlight(userID) {
		return nil, ErrOperationInFlight
	}
	defer s.clearInFlight(userID)

	session, err := s.Sessions.Load(ctx, userID)
	if err != nil {
		return nil, err
	}
	if session.Payment == nil {
		return nil, NewValidationError("payment", "there is no payment to verify")
	}
	if session.PaymentStatus.Terminal() {
		return session, nil
	}

	status, err := s.Payment.Verify(ctx, session.Payment.ReferenceNumber, session.Payment.Amount)
	if err != nil {
		return nil, err
	}
	s.applyProviderStatus(userID, status)

	updated, err := s.Sessions.Load(ctx, userID)
	if err == ErrSessionNotFound {
		// Cleared already; report the last known state.
		session.PaymentStatus = models.PaymentPaid
		return session, nil
	}
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// RetryPayment resets a failed or timed-out payment attempt back to the
// payment-type step without discarding already-entered schedules or the
// created intents.
func (s *DefaultCheckoutService) RetryPayment(ctx context.Context, userID string) (*models.CheckoutSession, error) {
	s.StopPolling(userID)

	session, err := s.Sessions.Load(ctx, userID)
	if err != nil {
		return nil, err
	}
	if session.PaymentStatus == models.PaymentPaid {
		return nil, NewValidationError("payment", "payment is already complete")
	}

	session.PaymentStatus = models.PaymentUnpaid
	session.Step = models.StepPaymentType
	if err := s.Sessions.Save(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

// ExpireSession releases a still-unpaid session once its payment window has
// lapsed. Invoked by the background expiry worker.
func (s *DefaultCheckoutService) ExpireSession(ctx context.Context, userID string) error {
	session, err := s.Sessions.Load(ctx, userID)
	if err == ErrSessionNotFound {
		return nil
	}
	if err != nil {
		return err
	}
	if session.PaymentStatus == models.PaymentPaid {
		return nil
	}

	s.StopPolling(userID)
	s.releaseIntents(session.Intents)
	if err := s.Sessions.Delete(ctx, userID); err != nil {
		return err
	}
	s.Logger.Info("expired unpaid checkout session",
		zap.String("sessionId", session.SessionID), zap.String("userId", userID))
	return nil
}
