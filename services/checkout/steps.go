package checkout

import (
	"context"
	"fmt"

	"rentiva/models"
)

var stepOrder = []models.CheckoutStep{
	models.StepReview,
	models.StepSchedule,
	models.StepConfirm,
	models.StepPaymentType,
	models.StepPayment,
}

func stepIndex(step models.CheckoutStep) int {
	for i, s := range stepOrder {
		if s == step {
			return i
		}
	}
	return -1
}

// Advance moves the session forward by exactly one step, gated on the
// predicates of the components behind it.
func (s *DefaultCheckoutService) Advance(ctx context.Context, userID string, to models.CheckoutStep) (*models.CheckoutSession, error) {
	if s.isInFlight(userID) {
		return nil, ErrOperationInFlight
	}

	session, err := s.Sessions.Load(ctx, userID)
	if err != nil {
		return nil, err
	}

	from := stepIndex(session.Step)
	target := stepIndex(to)
	if target == -1 {
		return nil, fmt.Errorf("unknown checkout step %q", to)
	}
	if target != from+1 {
		return nil, NewValidationError(string(to),
			fmt.Sprintf("cannot skip from %s to %s", session.Step, to))
	}

	if err := s.gate(ctx, session, to); err != nil {
		return nil, err
	}

	session.Step = to
	if err := s.Sessions.Save(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

// gate checks the forward-transition predicate for one target step.
func (s *DefaultCheckoutService) gate(ctx context.Context, session *models.CheckoutSession, to models.CheckoutStep) error {
	switch to {
	case models.StepSchedule:
		report, err := s.ValidateStock(ctx, session.UserID)
		if err != nil {
			return err
		}
		if !report.Valid {
			issue := "stock validation failed"
			if len(report.Issues) > 0 {
				issue = report.Issues[0]
			}
			return NewValidationError("stock", issue)
		}
		complete, err := s.Profile.AddressComplete(ctx, session.UserID)
		if err != nil {
			return err
		}
		if !complete {
			return NewValidationError("address", "delivery address is incomplete")
		}
		return nil

	case models.StepConfirm:
		return validateSchedules(session)

	case models.StepPaymentType, models.StepPayment:
		if len(session.Intents) == 0 || session.Payment == nil {
			return NewValidationError("intents", "booking has not been confirmed yet")
		}
		return nil

	default:
		return nil
	}
}

// Back navigates to an earlier step. It is permitted at any time except while
// an intent-creation or payment-confirmation call is in flight.
func (s *DefaultCheckoutService) Back(ctx context.Context, userID string, to models.CheckoutStep) (*models.CheckoutSession, error) {
	if s.isInFlight(userID) {
		return nil, ErrOperationInFlight
	}

	session, err := s.Sessions.Load(ctx, userID)
	if err != nil {
		return nil, err
	}

	target := stepIndex(to)
	if target == -1 {
		return nil, fmt.Errorf("unknown checkout step %q", to)
	}
	if target >= stepIndex(session.Step) {
		return nil, NewValidationError(string(to), "not a backward step")
	}

	session.Step = to
	if err := s.Sessions.Save(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}
