package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	logrustest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/mock"

	"quickpark/internal/db"
	"quickpark/internal/entities"
	apperrors "quickpark/internal/errors"
	"quickpark/internal/utils"
)

func quietLogger() *logrus.Logger {
	log, _ := logrustest.NewNullLogger()
	return log
}

type mockGarageStore struct{ mock.Mock }

func (m *mockGarageStore) GetByID(ctx context.Context, id int64) (*db.Garage, error) {
	args := m.Called(ctx, id)
	g, _ := args.Get(0).(*db.Garage)
	return g, args.Error(1)
}

func (m *mockGarageStore) GetWithOwner(ctx context.Context, id int64) (*db.GarageWithOwner, error) {
	args := m.Called(ctx, id)
	g, _ := args.Get(0).(*db.GarageWithOwner)
	return g, args.Error(1)
}

func (m *mockGarageStore) IsAvailable(ctx context.Context, garageID int64, start, end time.Time) (bool, error) {
	args := m.Called(ctx, garageID, start, end)
	return args.Bool(0), args.Error(1)
}

func (m *mockGarageStore) ListAvailable(ctx context.Context, start, end time.Time) ([]db.Garage, error) {
	args := m.Called(ctx, start, end)
	gs, _ := args.Get(0).([]db.Garage)
	return gs, args.Error(1)
}

func (m *mockGarageStore) ListByOwner(ctx context.Context, ownerID int64) ([]db.Garage, error) {
	args := m.Called(ctx, ownerID)
	gs, _ := args.Get(0).([]db.Garage)
	return gs, args.Error(1)
}

func (m *mockGarageStore) Create(ctx context.Context, g *db.Garage) error {
	return m.Called(ctx, g).Error(0)
}

func (m *mockGarageStore) Update(ctx context.Context, id int64, fields map[string]interface{}) (*db.Garage, error) {
	args := m.Called(ctx, id, fields)
	g, _ := args.Get(0).(*db.Garage)
	return g, args.Error(1)
}

func (m *mockGarageStore) Delete(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

type mockUserStore struct{ mock.Mock }

func (m *mockUserStore) GetByID(ctx context.Context, id int64) (*db.User, error) {
	args := m.Called(ctx, id)
	u, _ := args.Get(0).(*db.User)
	return u, args.Error(1)
}

func (m *mockUserStore) SetStripeAccountIfAbsent(ctx context.Context, userID int64, accountID string) (string, error) {
	args := m.Called(ctx, userID, accountID)
	return args.String(0), args.Error(1)
}

func (m *mockUserStore) SetOnboardingCompleted(ctx context.Context, accountID string, completed bool) error {
	return m.Called(ctx, accountID, completed).Error(0)
}

type mockProvider struct{ mock.Mock }

func (m *mockProvider) CreateAccount(ctx context.Context, email string) (string, error) {
	args := m.Called(ctx, email)
	return args.String(0), args.Error(1)
}

func (m *mockProvider) GetAccount(ctx context.Context, accountID string) (*entities.PayoutAccountStatus, error) {
	args := m.Called(ctx, accountID)
	st, _ := args.Get(0).(*entities.PayoutAccountStatus)
	return st, args.Error(1)
}

func (m *mockProvider) CreateAccountLink(ctx context.Context, accountID, refreshURL, returnURL string) (string, error) {
	args := m.Called(ctx, accountID, refreshURL, returnURL)
	return args.String(0), args.Error(1)
}

func (m *mockProvider) CreatePaymentIntent(ctx context.Context, params entities.PaymentIntentParams) (*entities.Authorization, error) {
	args := m.Called(ctx, params)
	a, _ := args.Get(0).(*entities.Authorization)
	return a, args.Error(1)
}

func (m *mockProvider) GetPaymentIntent(ctx context.Context, id string) (*entities.Authorization, error) {
	args := m.Called(ctx, id)
	a, _ := args.Get(0).(*entities.Authorization)
	return a, args.Error(1)
}

func (m *mockProvider) RefundPaymentIntent(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

type mockPayments struct{ mock.Mock }

func (m *mockPayments) Verify(ctx context.Context, id string) (*entities.Authorization, error) {
	args := m.Called(ctx, id)
	a, _ := args.Get(0).(*entities.Authorization)
	return a, args.Error(1)
}

func (m *mockPayments) Compensate(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

type mockJobStore struct{ mock.Mock }

func (m *mockJobStore) GetActiveReservationIDsPastEndTime(ctx context.Context) ([]int64, error) {
	args := m.Called(ctx)
	ids, _ := args.Get(0).([]int64)
	return ids, args.Error(1)
}

func (m *mockJobStore) UpdateReservationStatuses(ctx context.Context, ids []int64, fromStatus, toStatus string) (int64, error) {
	args := m.Called(ctx, ids, fromStatus, toStatus)
	return args.Get(0).(int64), args.Error(1)
}

type mockEmail struct{ mock.Mock }

func (m *mockEmail) SendEmail(ctx context.Context, toEmail, toName, subject, plainText, html string) error {
	return m.Called(ctx, toEmail, toName, subject, plainText, html).Error(0)
}

type mockSMS struct{ mock.Mock }

func (m *mockSMS) SendSMS(ctx context.Context, toNumber, body string) error {
	return m.Called(ctx, toNumber, body).Error(0)
}

// recordingNotifier collects notifications sent from background goroutines.
type recordingNotifier struct {
	mu        sync.Mutex
	confirmed []int64
	cancelled []int64
	done      chan struct{}
}

func newRecordingNotifier() *recordingNotifier {
	return &recordingNotifier{done: make(chan struct{}, 16)}
}

func (n *recordingNotifier) ReservationConfirmed(_ context.Context, res db.Reservation) {
	n.mu.Lock()
	n.confirmed = append(n.confirmed, res.ID)
	n.mu.Unlock()
	n.done <- struct{}{}
}

func (n *recordingNotifier) ReservationCancelled(_ context.Context, res db.Reservation) {
	n.mu.Lock()
	n.cancelled = append(n.cancelled, res.ID)
	n.mu.Unlock()
	n.done <- struct{}{}
}

// memReservationStore serializes writes with one lock, standing in for the
// garage row lock taken by the SQL store.
type memReservationStore struct {
	mu       sync.Mutex
	nextID   int64
	rows     map[int64]*db.Reservation
	owners   map[int64]int64
	payments map[string]bool
	refunded map[string]bool
}

func newMemReservationStore(garageOwners map[int64]int64) *memReservationStore {
	return &memReservationStore{
		rows:     make(map[int64]*db.Reservation),
		owners:   garageOwners,
		payments: make(map[string]bool),
		refunded: make(map[string]bool),
	}
}

func (s *memReservationStore) CreateExclusive(_ context.Context, res *db.Reservation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.owners[res.GarageID]; !ok {
		return fmt.Errorf("%w: id %d", apperrors.ErrGarageNotFound, res.GarageID)
	}
	if s.refunded[res.PaymentIntentID] {
		return fmt.Errorf("%w: %s was refunded", apperrors.ErrPaymentAlreadyUsed, res.PaymentIntentID)
	}
	for _, r := range s.rows {
		live := r.Status == db.StatusPending || r.Status == db.StatusActive
		if r.GarageID == res.GarageID && live && utils.Overlaps(r.StartTime, r.EndTime, res.StartTime, res.EndTime) {
			return fmt.Errorf("%w: garage %d", apperrors.ErrSlotUnavailable, res.GarageID)
		}
	}
	if s.payments[res.PaymentIntentID] {
		return fmt.Errorf("%w: %s", apperrors.ErrPaymentAlreadyUsed, res.PaymentIntentID)
	}
	s.nextID++
	res.ID = s.nextID
	res.CreatedAt = time.Now()
	stored := *res
	s.rows[res.ID] = &stored
	s.payments[res.PaymentIntentID] = true
	return nil
}

func (s *memReservationStore) MarkCompensated(_ context.Context, paymentIntentID string, _ int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.refunded[paymentIntentID] = true
	return nil
}

func (s *memReservationStore) GetWithOwner(_ context.Context, id int64) (*db.Reservation, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.rows[id]
	if !ok {
		return nil, 0, fmt.Errorf("%w: id %d", apperrors.ErrReservationNotFound, id)
	}
	out := *r
	return &out, s.owners[r.GarageID], nil
}

func (s *memReservationStore) ListByRenter(_ context.Context, renterID int64) ([]db.Reservation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []db.Reservation
	for _, r := range s.rows {
		if r.RenterID == renterID {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (s *memReservationStore) ListByOwner(_ context.Context, ownerID int64) ([]db.Reservation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []db.Reservation
	for _, r := range s.rows {
		if s.owners[r.GarageID] == ownerID {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (s *memReservationStore) Cancel(_ context.Context, id int64) (*db.Reservation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.rows[id]
	if !ok {
		return nil, fmt.Errorf("%w: id %d", apperrors.ErrReservationNotFound, id)
	}
	if r.Status == db.StatusCompleted {
		return nil, fmt.Errorf("%w: id %d", apperrors.ErrNotCancellable, id)
	}
	r.Status = db.StatusCancelled
	out := *r
	return &out, nil
}

func (s *memReservationStore) liveCount(garageID int64) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, r := range s.rows {
		if r.GarageID == garageID && r.Status == db.StatusActive {
			n++
		}
	}
	return n
}
