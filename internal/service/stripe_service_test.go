package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stripe/stripe-go/v82"

	"quickpark/internal/entities"
	"quickpark/internal/money"
)

func TestAuthorizationStatus(t *testing.T) {
	cases := map[stripe.PaymentIntentStatus]string{
		stripe.PaymentIntentStatusSucceeded:             entities.AuthorizationSucceeded,
		stripe.PaymentIntentStatusCanceled:              entities.AuthorizationFailed,
		stripe.PaymentIntentStatusRequiresPaymentMethod: entities.AuthorizationRequiresAction,
		stripe.PaymentIntentStatusRequiresConfirmation:  entities.AuthorizationRequiresAction,
		stripe.PaymentIntentStatusRequiresAction:        entities.AuthorizationRequiresAction,
		stripe.PaymentIntentStatusProcessing:            entities.AuthorizationRequiresAction,
		stripe.PaymentIntentStatusRequiresCapture:       entities.AuthorizationRequiresAction,
	}
	for in, want := range cases {
		assert.Equal(t, want, authorizationStatus(in), string(in))
	}
}

func TestToAuthorization(t *testing.T) {
	pi := &stripe.PaymentIntent{
		ID:                   "pi_123",
		ClientSecret:         "pi_123_secret",
		Amount:               3000,
		Currency:             stripe.CurrencyEUR,
		ApplicationFeeAmount: 300,
		Status:               stripe.PaymentIntentStatusSucceeded,
		Metadata:             map[string]string{entities.MetaGarageID: "5"},
		TransferData:         &stripe.PaymentIntentTransferData{Destination: &stripe.Account{ID: "acct_owner"}},
	}

	auth := toAuthorization(pi)
	assert.Equal(t, "pi_123", auth.ID)
	assert.Equal(t, money.Cents(3000), auth.Amount)
	assert.Equal(t, money.Cents(300), auth.ApplicationFee)
	assert.Equal(t, "eur", auth.Currency)
	assert.Equal(t, "acct_owner", auth.DestinationAccount)
	assert.Equal(t, entities.AuthorizationSucceeded, auth.Status)
	assert.Equal(t, "succeeded", auth.ProviderStatus)
	assert.Equal(t, "5", auth.Metadata[entities.MetaGarageID])
}

func TestToAuthorization_RefundedChargeIsNotSucceeded(t *testing.T) {
	cases := []struct {
		name   string
		charge *stripe.Charge
		want   string
	}{
		{"no charge expanded", nil, entities.AuthorizationSucceeded},
		{"charge untouched", &stripe.Charge{ID: "ch_1", Amount: 3000}, entities.AuthorizationSucceeded},
		{"fully refunded", &stripe.Charge{ID: "ch_1", Amount: 3000, AmountRefunded: 3000, Refunded: true}, entities.AuthorizationRefunded},
		{"partially refunded", &stripe.Charge{ID: "ch_1", Amount: 3000, AmountRefunded: 500}, entities.AuthorizationRefunded},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			auth := toAuthorization(&stripe.PaymentIntent{
				ID:           "pi_123",
				Amount:       3000,
				Status:       stripe.PaymentIntentStatusSucceeded,
				LatestCharge: tc.charge,
			})
			assert.Equal(t, tc.want, auth.Status)
			assert.Equal(t, "succeeded", auth.ProviderStatus)
		})
	}
}
