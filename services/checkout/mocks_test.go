package checkout

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"rentiva/clients"
	"rentiva/models"
)

// memSessionStore implements SessionStore in memory for tests. It goes through
// the same versioned codec as the redis store, so Load returns a deep copy and
// rejects blobs from other schema versions.
type memSessionStore struct {
	mu       sync.Mutex
	sessions map[string][]byte
}

func newMemSessionStore() *memSessionStore {
	return &memSessionStore{sessions: make(map[string][]byte)}
}

func (m *memSessionStore) Load(_ context.Context, userID string) (*models.CheckoutSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.sessions[userID]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return decodeSession(data)
}

func (m *memSessionStore) Save(_ context.Context, session *models.CheckoutSession) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, err := encodeSession(session)
	if err != nil {
		return err
	}
	m.sessions[session.UserID] = data
	return nil
}

// seedRaw stores a blob verbatim, bypassing the codec.
func (m *memSessionStore) seedRaw(userID string, data []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[userID] = data
}

func (m *memSessionStore) Delete(_ context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, userID)
	return nil
}

func (m *memSessionStore) has(userID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.sessions[userID]
	return ok
}

// fakeInventory implements clients.InventoryClient.
type fakeInventory struct {
	items     []models.CartItem
	itemsErr  error
	report    *models.StockReport
	reportErr error
}

func (f *fakeInventory) CartItems(context.Context, string) ([]models.CartItem, error) {
	return f.items, f.itemsErr
}

func (f *fakeInventory) Availability(context.Context, []models.CartItem) (*models.StockReport, error) {
	if f.reportErr != nil {
		return nil, f.reportErr
	}
	if f.report != nil {
		return f.report, nil
	}
	return &models.StockReport{Valid: true}, nil
}

// fakeProfile implements clients.ProfileClient.
type fakeProfile struct {
	complete bool
	err      error
}

func (f *fakeProfile) AddressComplete(context.Context, string) (bool, error) {
	return f.complete, f.err
}

// fakeReservation implements clients.ReservationClient. failAt is the 1-based
// index of the CreateIntent call that returns failWith.
type fakeReservation struct {
	mu       sync.Mutex
	created  []clients.IntentRequest
	released []string
	failAt   int
	failWith error
}

func (f *fakeReservation) CreateIntent(_ context.Context, req clients.IntentRequest) (*clients.IntentResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	call := len(f.created) + 1
	if f.failAt != 0 && call == f.failAt {
		return nil, f.failWith
	}
	f.created = append(f.created, req)

	total := req.DailyRate * float64(req.Duration) * float64(req.Quantity)
	return &clients.IntentResponse{
		Intent: models.BookingIntent{
			ID:           fmt.Sprintf("intent-%d", call),
			ServiceID:    req.ServiceID,
			Quantity:     req.Quantity,
			Delivery:     req.BookingDate,
			DurationDays: req.Duration,
			TotalPrice:   total,
			CreatedAt:    time.Now(),
		},
		Payment: models.PaymentFragment{
			QRCode:          fmt.Sprintf("qr-%d", call),
			Instructions:    "Scan to pay",
			ReferenceNumber: fmt.Sprintf("REF-%d", call),
			TransactionID:   fmt.Sprintf("TXN-%d", call),
		},
	}, nil
}

func (f *fakeReservation) ReleaseIntent(_ context.Context, intentID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.released = append(f.released, intentID)
	return nil
}

func (f *fakeReservation) releasedIDs() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.released...)
}

// statusTick scripts one poll observation.
type statusTick struct {
	status string
	err    error
}

// fakePayment implements clients.PaymentClient with a scripted status
// sequence; the last tick repeats.
type fakePayment struct {
	mu           sync.Mutex
	script       []statusTick
	statusCalls  int
	verifyStatus string
	verifyErr    error
	verifyCalls  int
}

func (f *fakePayment) Status(context.Context, string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	idx := f.statusCalls
	if idx >= len(f.script) {
		idx = len(f.script) - 1
	}
	f.statusCalls++
	if idx < 0 {
		return clients.ProviderStatusUnpaid, nil
	}
	tick := f.script[idx]
	return tick.status, tick.err
}

func (f *fakePayment) Verify(context.Context, string, float64) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.verifyCalls++
	return f.verifyStatus, f.verifyErr
}

func (f *fakePayment) calls() (status, verify int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.statusCalls, f.verifyCalls
}

// fakeAudit implements intentRepo.IntentAuditRepository.
type fakeAudit struct {
	mu       sync.Mutex
	records  []models.IntentAuditRecord
	released []string
	paid     []string
}

func (f *fakeAudit) Create(_ context.Context, record models.IntentAuditRecord) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.records = append(f.records, record)
	return record.IntentID, nil
}

func (f *fakeAudit) GetBySessionID(_ context.Context, sessionID string) ([]models.IntentAuditRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.IntentAuditRecord
	for _, r := range f.records {
		if r.SessionID == sessionID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeAudit) MarkReleased(_ context.Context, intentID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.released = append(f.released, intentID)
	return nil
}

func (f *fakeAudit) MarkPaid(_ context.Context, sessionID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.paid = append(f.paid, sessionID)
	return nil
}

func (f *fakeAudit) paidSessions() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.paid...)
}

// testEnv bundles a service with its fakes.
type testEnv struct {
	svc         *DefaultCheckoutService
	store       *memSessionStore
	inventory   *fakeInventory
	profile     *fakeProfile
	reservation *fakeReservation
	payment     *fakePayment
	audit       *fakeAudit
}

func newTestEnv(items ...models.CartItem) *testEnv {
	env := &testEnv{
		store:       newMemSessionStore(),
		inventory:   &fakeInventory{items: items},
		profile:     &fakeProfile{complete: true},
		reservation: &fakeReservation{},
		payment:     &fakePayment{},
		audit:       &fakeAudit{},
	}
	svc := NewCheckoutService(
		env.inventory, env.profile, env.reservation, env.payment,
		env.store, env.audit, zap.NewNop(),
	)
	svc.PollInterval = 5 * time.Millisecond
	svc.PollTimeout = 250 * time.Millisecond
	svc.GraceDelay = 5 * time.Millisecond
	env.svc = svc
	return env
}

// seedSession stores a session directly, bypassing the loader.
func (env *testEnv) seedSession(session *models.CheckoutSession) {
	if session.Schedules == nil {
		session.Schedules = make(map[string]*models.ScheduleEntry)
	}
	if session.Groups == nil {
		session.Groups = make(map[string]*models.ScheduleGroup)
	}
	if session.Step == "" {
		session.Step = models.StepReview
	}
	if session.PaymentStatus == "" {
		session.PaymentStatus = models.PaymentUnpaid
	}
	_ = env.store.Save(context.Background(), session)
}

func tentItem() models.CartItem {
	return models.CartItem{
		ID: "svc-tent", Name: "Canvas Tent", UnitPrice: 120, Quantity: 2,
		Category: "tents", DailyRate: 40, Duration: 1,
	}
}

func speakerItem() models.CartItem {
	return models.CartItem{
		ID: "svc-speaker", Name: "PA Speaker", UnitPrice: 80, Quantity: 1,
		Category: "audio", DailyRate: 25, Duration: 1,
	}
}

func lightItem() models.CartItem {
	return models.CartItem{
		ID: "svc-light", Name: "Stage Light", UnitPrice: 60, Quantity: 3,
		Category: "lighting", DailyRate: 15, Duration: 1,
	}
}
