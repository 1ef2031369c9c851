package service

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"quickpark/internal/db"
	apperrors "quickpark/internal/errors"
)

func testReservation() db.Reservation {
	return db.Reservation{
		ID:         17,
		RenterID:   testRenter,
		GarageID:   testGarage,
		StartTime:  time.Date(2025, 11, 20, 9, 0, 0, 0, time.UTC),
		EndTime:    time.Date(2025, 11, 20, 11, 30, 0, 0, time.UTC),
		TotalPrice: 3000,
		Status:     db.StatusActive,
	}
}

func TestNotify_SendsEmailAndSMS(t *testing.T) {
	users := &mockUserStore{}
	garages := &mockGarageStore{}
	email := &mockEmail{}
	sms := &mockSMS{}
	users.On("GetByID", mock.Anything, testRenter).
		Return(&db.User{ID: testRenter, Name: "Lucía", Email: "lucia@example.com", Phone: "+34600000000"}, nil)
	garages.On("GetByID", mock.Anything, testGarage).Return(&db.Garage{ID: testGarage, Address: "Calle Mayor 1"}, nil)

	email.On("SendEmail", mock.Anything, "lucia@example.com", "Lucía",
		mock.MatchedBy(func(s string) bool { return strings.Contains(s, "confirmada") && strings.Contains(s, "#17") }),
		mock.MatchedBy(func(s string) bool { return strings.Contains(s, "Calle Mayor 1") && strings.Contains(s, "30.00") }),
		mock.MatchedBy(func(s string) bool { return strings.Contains(s, "<strong>#17</strong>") }),
	).Return(nil)
	sms.On("SendSMS", mock.Anything, "+34600000000",
		mock.MatchedBy(func(s string) bool { return strings.Contains(s, "#17") })).Return(nil)

	svc := NewNotifyService(users, garages, email, sms, quietLogger())
	svc.ReservationConfirmed(context.Background(), testReservation())

	email.AssertExpectations(t)
	sms.AssertExpectations(t)
}

func TestNotify_SenderFailureIsSwallowed(t *testing.T) {
	users := &mockUserStore{}
	garages := &mockGarageStore{}
	email := &mockEmail{}
	users.On("GetByID", mock.Anything, testRenter).Return(&db.User{ID: testRenter, Email: "a@example.com"}, nil)
	garages.On("GetByID", mock.Anything, testGarage).Return(nil, fmt.Errorf("%w: id 5", apperrors.ErrGarageNotFound))
	email.On("SendEmail", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(fmt.Errorf("sendgrid returned 401"))

	svc := NewNotifyService(users, garages, email, nil, quietLogger())
	assert.NotPanics(t, func() {
		svc.ReservationCancelled(context.Background(), testReservation())
	})
	email.AssertNumberOfCalls(t, "SendEmail", 1)
}

func TestNotify_UnknownRenterSkips(t *testing.T) {
	users := &mockUserStore{}
	email := &mockEmail{}
	users.On("GetByID", mock.Anything, testRenter).Return(nil, fmt.Errorf("%w: user 9", apperrors.ErrUnauthorized))

	svc := NewNotifyService(users, &mockGarageStore{}, email, nil, quietLogger())
	svc.ReservationConfirmed(context.Background(), testReservation())
	email.AssertNotCalled(t, "SendEmail", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}
