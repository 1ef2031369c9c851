package entities

import (
	"time"

	"quickpark/internal/money"
)

// CreateReservationRequest is the body of POST /api/reservas.
// precio_total is accepted for compatibility and never used as the charged amount.
type CreateReservationRequest struct {
	GarageID        int64        `json:"garaje_id" validate:"required,gt=0"`
	StartTime       string       `json:"fecha_inicio" validate:"required"`
	EndTime         string       `json:"fecha_fin" validate:"required"`
	VehicleClass    string       `json:"tipo_vehiculo" validate:"required"`
	TotalPrice      *money.Cents `json:"precio_total"`
	PaymentIntentID string       `json:"payment_intent_id" validate:"required"`
}

// CreateReservationInput is the validated form handed to the reservation service.
type CreateReservationInput struct {
	RenterID        int64
	GarageID        int64
	StartTime       time.Time
	EndTime         time.Time
	VehicleClass    string
	PaymentIntentID string
	ClientTotal     *money.Cents
}

type ReservationResponse struct {
	ID              int64       `json:"id"`
	RenterID        int64       `json:"usuario_id"`
	GarageID        int64       `json:"garaje_id"`
	StartTime       time.Time   `json:"fecha_inicio"`
	EndTime         time.Time   `json:"fecha_fin"`
	VehicleClass    string      `json:"tipo_vehiculo,omitempty"`
	TotalPrice      money.Cents `json:"precio_total"`
	PaymentIntentID string      `json:"payment_intent_id,omitempty"`
	Status          string      `json:"estado"`
}
