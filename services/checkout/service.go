package checkout

import (
	"context"
	"errors"
	"sync"
	"time"

	"rentiva/clients"
	intentRepo "rentiva/database/repository/intent"
	"rentiva/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CheckoutService drives the whole checkout flow: cart snapshot, stock
// validation, scheduling, intent creation and payment reconciliation.
type CheckoutService interface {
	LoadSession(ctx context.Context, userID string) (*models.CheckoutSession, error)
	ValidateStock(ctx context.Context, userID string) (*models.StockReport, error)

	UpdateSchedule(ctx context.Context, userID, itemID string, upd ScheduleUpdate) (*models.CheckoutSession, error)
	JoinSyncGroup(ctx context.Context, userID, itemID string) (*models.CheckoutSession, error)
	LeaveSyncGroup(ctx context.Context, userID, itemID string) (*models.CheckoutSession, error)

	Advance(ctx context.Context, userID string, to models.CheckoutStep) (*models.CheckoutSession, error)
	Back(ctx context.Context, userID string, to models.CheckoutStep) (*models.CheckoutSession, error)

	Confirm(ctx context.Context, userID string) (*models.CheckoutSession, error)

	StartPolling(ctx context.Context, userID string) error
	StopPolling(userID string)
	ConfirmPaymentManually(ctx context.Context, userID string) (*models.CheckoutSession, error)
	RetryPayment(ctx context.Context, userID string) (*models.CheckoutSession, error)
	ExpireSession(ctx context.Context, userID string) error
}

// ExpiryScheduler queues a deferred expiry for a session whose payment window
// has opened. Implemented by the asynq worker package.
type ExpiryScheduler interface {
	ScheduleExpiry(ctx context.Context, userID string, delay time.Duration) error
}

// DefaultCheckoutService implements CheckoutService.
type DefaultCheckoutService struct {
	Inventory   clients.InventoryClient
	Profile     clients.ProfileClient
	Reservation clients.ReservationClient
	Payment     clients.PaymentClient
	Sessions    SessionStore
	AuditRepo   intentRepo.IntentAuditRepository
	Expiry      ExpiryScheduler
	Logger      *zap.Logger

	PollInterval  time.Duration
	PollTimeout   time.Duration
	GraceDelay    time.Duration
	PaymentWindow time.Duration

	mu       sync.Mutex
	pollers  map[string]*poller
	inFlight map[string]bool
}

// NewCheckoutService wires a DefaultCheckoutService with its collaborators.
func NewCheckoutService(
	inventory clients.InventoryClient,
	profile clients.ProfileClient,
	reservation clients.ReservationClient,
	payment clients.PaymentClient,
	sessions SessionStore,
	auditRepo intentRepo.IntentAuditRepository,
	logger *zap.Logger,
) *DefaultCheckoutService {
	return &DefaultCheckoutService{
		Inventory:     inventory,
		Profile:       profile,
		Reservation:   reservation,
		Payment:       payment,
		Sessions:      sessions,
		AuditRepo:     auditRepo,
		Logger:        logger,
		PollInterval:  3 * time.Second,
		PollTimeout:   5 * time.Minute,
		GraceDelay:    2 * time.Second,
		PaymentWindow: 30 * time.Minute,
		pollers:       make(map[string]*poller),
		inFlight:      make(map[string]bool),
	}
}

// LoadSession materializes the working set of cart items and restores any
// persisted schedules. A fresh session starts at the review step; a persisted
// blob written by another schema version is discarded the same way a missing
// one is, never surfaced as an error.
func (s *DefaultCheckoutService) LoadSession(ctx context.Context, userID string) (*models.CheckoutSession, error) {
	items, err := s.Inventory.CartItems(ctx, userID)
	if err != nil {
		return nil, err
	}

	session, err := s.Sessions.Load(ctx, userID)
	if err == ErrSessionNotFound || errors.Is(err, ErrSchemaVersion) {
		session = &models.CheckoutSession{
			SessionID:     uuid.New().String(),
			UserID:        userID,
			Schedules:     make(map[string]*models.ScheduleEntry),
			Groups:        make(map[string]*models.ScheduleGroup),
			Step:          models.StepReview,
			PaymentStatus: models.PaymentUnpaid,
			CreatedAt:     time.Now(),
		}
	} else if err != nil {
		return nil, err
	}

	// The live cart is authoritative for items; schedules for items no longer
	// in the cart are dropped, and a group left without members goes with them
	// so a later joiner cannot inherit its stale schedule.
	session.Items = items
	for id := range session.Schedules {
		if session.Item(id) == nil {
			delete(session.Schedules, id)
		}
	}
	for groupID := range session.Groups {
		used := false
		for _, e := range session.Schedules {
			if e.Synchronized && e.GroupID == groupID {
				used = true
				break
			}
		}
		if !used {
			delete(session.Groups, groupID)
		}
	}
	s.refreshDurations(session)

	if err := s.Sessions.Save(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

func (s *DefaultCheckoutService) setInFlight(userID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.inFlight[userID] {
		return false
	}
	s.inFlight[userID] = true
	return true
}

func (s *DefaultCheckoutService) clearInFlight(userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.inFlight, userID)
}

func (s *DefaultCheckoutService) isInFlight(userID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inFlight[userID]
}
