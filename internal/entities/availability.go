package entities

import (
	"time"

	"quickpark/internal/money"
)

type AvailabilityResponse struct {
	GarageID           int64     `json:"garaje_id"`
	IsAvailable        bool      `json:"disponible"`
	RequestedStartTime time.Time `json:"fecha_inicio"`
	RequestedEndTime   time.Time `json:"fecha_fin"`
}

type GarageResponse struct {
	ID          int64       `json:"id"`
	OwnerID     int64       `json:"propietario_id"`
	Address     string      `json:"direccion"`
	Description string      `json:"descripcion,omitempty"`
	HourlyRate  money.Cents `json:"precio"`
	Available   bool        `json:"disponible"`
	CreatedAt   time.Time   `json:"fecha_creacion"`
}

type CreateGarageRequest struct {
	Address     string      `json:"direccion" validate:"required"`
	Description string      `json:"descripcion"`
	HourlyRate  money.Cents `json:"precio" validate:"gt=0"`
}

type CreateGarageResponse struct {
	GarageResponse
	NeedsOnboarding bool   `json:"needs_onboarding"`
	StripeAccountID string `json:"stripe_account_id,omitempty"`
}
