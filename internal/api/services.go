package api

import (
	"context"
	"time"

	"quickpark/internal/db"
	"quickpark/internal/entities"
)

type AvailabilityChecker interface {
	IsAvailable(ctx context.Context, garageID int64, start, end time.Time) (bool, error)
	ListAvailableGarages(ctx context.Context, start, end time.Time) ([]db.Garage, error)
}

type GarageManager interface {
	CreateGarage(ctx context.Context, ownerID int64, req entities.CreateGarageRequest) (*entities.CreateGarageResponse, error)
	ListOwnGarages(ctx context.Context, ownerID int64) ([]db.Garage, error)
	UpdateGarage(ctx context.Context, ownerID, garageID int64, fields map[string]interface{}) (*db.Garage, error)
	DeleteGarage(ctx context.Context, ownerID, garageID int64) error
}

type PaymentCoordinator interface {
	CreateAuthorization(ctx context.Context, garageID int64, start, end time.Time, renterID int64) (*entities.CreatePaymentIntentResponse, error)
}

type PayoutManager interface {
	ResolveOnboardingLink(ctx context.Context, accountID string, owner *db.User) (string, error)
	MarkOnboarding(ctx context.Context, accountID string, complete bool) error
}

type ReservationManager interface {
	Create(ctx context.Context, in entities.CreateReservationInput) (*db.Reservation, error)
	ListForRenter(ctx context.Context, renterID int64) ([]db.Reservation, error)
	ListForOwner(ctx context.Context, ownerID int64) ([]db.Reservation, error)
	Cancel(ctx context.Context, reservationID, actorID int64) (*db.Reservation, error)
}
