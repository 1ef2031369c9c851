package entities

import (
	"time"

	"quickpark/internal/money"
)

// Authorization statuses exposed by the payment coordinator.
const (
	AuthorizationRequiresAction = "requires_action"
	AuthorizationSucceeded      = "succeeded"
	AuthorizationFailed         = "failed"
	// AuthorizationRefunded is a succeeded intent whose charge was refunded in whole or part.
	AuthorizationRefunded = "refunded"
)

// Metadata keys binding a payment intent to a reservation window.
const (
	MetaGarageID  = "garage_id"
	MetaUserID    = "user_id"
	MetaStartDate = "start_date"
	MetaEndDate   = "end_date"
	MetaHours     = "hours"
)

type CreatePaymentIntentRequest struct {
	GarageID  int64  `json:"garageId" validate:"required,gt=0"`
	StartDate string `json:"startDate" validate:"required"`
	EndDate   string `json:"endDate" validate:"required"`
}

type CreatePaymentIntentResponse struct {
	ClientSecret    string      `json:"clientSecret"`
	PaymentIntentID string      `json:"paymentIntentId"`
	TotalPrice      money.Cents `json:"totalPrice"`
	Hours           int64       `json:"hours"`
	ApplicationFee  money.Cents `json:"applicationFee"`
}

// PaymentIntentParams is what the coordinator asks the provider to create.
type PaymentIntentParams struct {
	Amount             money.Cents
	Currency           string
	ApplicationFee     money.Cents
	DestinationAccount string
	Metadata           map[string]string
}

// Authorization is the provider's view of a payment intent.
type Authorization struct {
	ID                 string
	ClientSecret       string
	Amount             money.Cents
	AmountRefunded     money.Cents
	Currency           string
	ApplicationFee     money.Cents
	DestinationAccount string
	Status             string
	ProviderStatus     string
	Metadata           map[string]string
}

// WindowMetadata binds a payment intent to a garage, renter and window.
func WindowMetadata(garageID, renterID int64, start, end time.Time, hours int64) map[string]string {
	return map[string]string{
		MetaGarageID:  formatID(garageID),
		MetaUserID:    formatID(renterID),
		MetaStartDate: start.UTC().Format(time.RFC3339Nano),
		MetaEndDate:   end.UTC().Format(time.RFC3339Nano),
		MetaHours:     formatID(hours),
	}
}

// MatchesWindow reports whether the authorization was created for this garage, renter and window.
func (a *Authorization) MatchesWindow(garageID, renterID int64, start, end time.Time) bool {
	if a.Metadata == nil {
		return false
	}
	if a.Metadata[MetaGarageID] != formatID(garageID) || a.Metadata[MetaUserID] != formatID(renterID) {
		return false
	}
	metaStart, err := time.Parse(time.RFC3339, a.Metadata[MetaStartDate])
	if err != nil || !metaStart.Equal(start) {
		return false
	}
	metaEnd, err := time.Parse(time.RFC3339, a.Metadata[MetaEndDate])
	if err != nil || !metaEnd.Equal(end) {
		return false
	}
	return true
}

type PayoutAccountStatus struct {
	AccountID        string `json:"accountId"`
	NeedsOnboarding  bool   `json:"needsOnboarding"`
	DetailsSubmitted bool   `json:"-"`
	ChargesEnabled   bool   `json:"-"`
}

type OnboardLinkRequest struct {
	AccountID string `json:"accountId" validate:"required"`
}
