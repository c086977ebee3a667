package checkout

import (
	"context"

	"rentiva/models"

	"go.uber.org/zap"
)

// ValidateStock performs a read-only availability check against the inventory
// collaborator. It is advisory only; the authoritative, atomic check happens
// at intent creation inside the reservation service. When the collaborator is
// unreachable the check fails closed with a single synthetic issue instead of
// letting an unchecked checkout through.
func (s *DefaultCheckoutService) ValidateStock(ctx context.Context, userID string) (*models.StockReport, error) {
	session, err := s.Sessions.Load(ctx, userID)
	if err != nil {
		return nil, err
	}

	report, err := s.Inventory.Availability(ctx, session.Items)
	if err != nil {
		s.Logger.Warn("stock validation failed closed",
			zap.String("userId", userID), zap.Error(err))
		return &models.StockReport{
			Valid:  false,
			Issues: []string{"Stock availability could not be verified. Please try again."},
		}, nil
	}
	return report, nil
}
