package db

import (
	"time"

	"quickpark/internal/money"
)

// Reservation states as stored in reserva.estado.
const (
	StatusPending   = "pendiente"
	StatusActive    = "activa"
	StatusCompleted = "completada"
	StatusCancelled = "cancelada"
)

// Vehicle classes as stored in reserva.tipo_vehiculo.
const (
	VehicleTwoWheel = "moto"
	VehicleCar      = "coche"
	VehicleVan      = "furgoneta"
)

type User struct {
	ID                  int64
	Name                string
	Email               string
	Phone               string
	StripeAccountID     string
	OnboardingCompleted bool
}

type Garage struct {
	ID          int64
	OwnerID     int64
	Address     string
	Description string
	HourlyRate  money.Cents
	Available   bool
	CreatedAt   time.Time
}

// GarageWithOwner is a garage joined with the payout data of its owner.
type GarageWithOwner struct {
	Garage
	OwnerStripeAccountID string
	OwnerOnboarded       bool
}

type Reservation struct {
	ID              int64
	RenterID        int64
	GarageID        int64
	StartTime       time.Time
	EndTime         time.Time
	VehicleClass    string
	TotalPrice      money.Cents
	PaymentIntentID string
	Status          string
	CreatedAt       time.Time
}
