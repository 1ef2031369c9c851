package service

import (
	"context"
	"time"

	"quickpark/internal/db"
	"quickpark/internal/entities"
)

// GarageStore is the garaje table as seen by the services.
type GarageStore interface {
	GetByID(ctx context.Context, id int64) (*db.Garage, error)
	GetWithOwner(ctx context.Context, id int64) (*db.GarageWithOwner, error)
	IsAvailable(ctx context.Context, garageID int64, start, end time.Time) (bool, error)
	ListAvailable(ctx context.Context, start, end time.Time) ([]db.Garage, error)
	ListByOwner(ctx context.Context, ownerID int64) ([]db.Garage, error)
	Create(ctx context.Context, g *db.Garage) error
	Update(ctx context.Context, id int64, fields map[string]interface{}) (*db.Garage, error)
	Delete(ctx context.Context, id int64) error
}

// ReservationStore is the reserva table. CreateExclusive must reject, atomically
// with the insert, any reservation overlapping a live one of the same garage and
// any payment intent already recorded by MarkCompensated.
type ReservationStore interface {
	CreateExclusive(ctx context.Context, res *db.Reservation) error
	MarkCompensated(ctx context.Context, paymentIntentID string, garageID int64) error
	GetWithOwner(ctx context.Context, id int64) (*db.Reservation, int64, error)
	ListByRenter(ctx context.Context, renterID int64) ([]db.Reservation, error)
	ListByOwner(ctx context.Context, ownerID int64) ([]db.Reservation, error)
	Cancel(ctx context.Context, id int64) (*db.Reservation, error)
}

type UserStore interface {
	GetByID(ctx context.Context, id int64) (*db.User, error)
	SetStripeAccountIfAbsent(ctx context.Context, userID int64, accountID string) (string, error)
	SetOnboardingCompleted(ctx context.Context, accountID string, completed bool) error
}

type JobStore interface {
	GetActiveReservationIDsPastEndTime(ctx context.Context) ([]int64, error)
	UpdateReservationStatuses(ctx context.Context, ids []int64, fromStatus, toStatus string) (int64, error)
}

// PaymentProvider is the external payment processor.
type PaymentProvider interface {
	CreateAccount(ctx context.Context, email string) (string, error)
	GetAccount(ctx context.Context, accountID string) (*entities.PayoutAccountStatus, error)
	CreateAccountLink(ctx context.Context, accountID, refreshURL, returnURL string) (string, error)
	CreatePaymentIntent(ctx context.Context, params entities.PaymentIntentParams) (*entities.Authorization, error)
	GetPaymentIntent(ctx context.Context, id string) (*entities.Authorization, error)
	RefundPaymentIntent(ctx context.Context, id string) error
}

// Notifier tells renters about reservation state changes. Best effort.
type Notifier interface {
	ReservationConfirmed(ctx context.Context, res db.Reservation)
	ReservationCancelled(ctx context.Context, res db.Reservation)
}
