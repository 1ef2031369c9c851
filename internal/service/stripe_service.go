package service

import (
	"context"
	"fmt"

	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/client"

	"quickpark/internal/entities"
	apperrors "quickpark/internal/errors"
	"quickpark/internal/money"
)

// StripeService implements PaymentProvider on Stripe Connect with destination charges.
type StripeService struct {
	api           *client.API
	PayoutCountry string
}

func NewStripeService(secretKey, payoutCountry string) *StripeService {
	sc := &client.API{}
	sc.Init(secretKey, nil)
	return &StripeService{api: sc, PayoutCountry: payoutCountry}
}

func providerErr(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", apperrors.ErrPaymentProvider, op, err)
}

// CreateAccount opens an Express account for an individual owner.
func (s *StripeService) CreateAccount(ctx context.Context, email string) (string, error) {
	params := &stripe.AccountParams{
		Type:         stripe.String(string(stripe.AccountTypeExpress)),
		Country:      stripe.String(s.PayoutCountry),
		Email:        stripe.String(email),
		BusinessType: stripe.String(string(stripe.AccountBusinessTypeIndividual)),
		Capabilities: &stripe.AccountCapabilitiesParams{
			CardPayments: &stripe.AccountCapabilitiesCardPaymentsParams{Requested: stripe.Bool(true)},
			Transfers:    &stripe.AccountCapabilitiesTransfersParams{Requested: stripe.Bool(true)},
		},
	}
	params.Context = ctx
	acct, err := s.api.Accounts.New(params)
	if err != nil {
		return "", providerErr("create account", err)
	}
	return acct.ID, nil
}

func (s *StripeService) GetAccount(ctx context.Context, accountID string) (*entities.PayoutAccountStatus, error) {
	params := &stripe.AccountParams{}
	params.Context = ctx
	acct, err := s.api.Accounts.GetByID(accountID, params)
	if err != nil {
		return nil, providerErr("get account", err)
	}
	return &entities.PayoutAccountStatus{
		AccountID:        acct.ID,
		DetailsSubmitted: acct.DetailsSubmitted,
		ChargesEnabled:   acct.ChargesEnabled,
		NeedsOnboarding:  !acct.DetailsSubmitted || !acct.ChargesEnabled,
	}, nil
}

func (s *StripeService) CreateAccountLink(ctx context.Context, accountID, refreshURL, returnURL string) (string, error) {
	params := &stripe.AccountLinkParams{
		Account:    stripe.String(accountID),
		RefreshURL: stripe.String(refreshURL),
		ReturnURL:  stripe.String(returnURL),
		Type:       stripe.String("account_onboarding"),
	}
	params.Context = ctx
	link, err := s.api.AccountLinks.New(params)
	if err != nil {
		return "", providerErr("create account link", err)
	}
	return link.URL, nil
}

func (s *StripeService) CreatePaymentIntent(ctx context.Context, in entities.PaymentIntentParams) (*entities.Authorization, error) {
	params := &stripe.PaymentIntentParams{
		Amount:               stripe.Int64(int64(in.Amount)),
		Currency:             stripe.String(in.Currency),
		ApplicationFeeAmount: stripe.Int64(int64(in.ApplicationFee)),
		TransferData: &stripe.PaymentIntentTransferDataParams{
			Destination: stripe.String(in.DestinationAccount),
		},
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	for k, v := range in.Metadata {
		params.AddMetadata(k, v)
	}
	params.Context = ctx
	pi, err := s.api.PaymentIntents.New(params)
	if err != nil {
		return nil, providerErr("create payment intent", err)
	}
	return toAuthorization(pi), nil
}

// GetPaymentIntent expands the latest charge so refunds are visible: Stripe
// keeps a refunded intent in status succeeded.
func (s *StripeService) GetPaymentIntent(ctx context.Context, id string) (*entities.Authorization, error) {
	params := &stripe.PaymentIntentParams{}
	params.AddExpand("latest_charge")
	params.Context = ctx
	pi, err := s.api.PaymentIntents.Get(id, params)
	if err != nil {
		return nil, providerErr("get payment intent", err)
	}
	return toAuthorization(pi), nil
}

// RefundPaymentIntent refunds in full, pulling the transfer back from the
// owner and returning the platform fee.
func (s *StripeService) RefundPaymentIntent(ctx context.Context, id string) error {
	params := &stripe.RefundParams{
		PaymentIntent:        stripe.String(id),
		ReverseTransfer:      stripe.Bool(true),
		RefundApplicationFee: stripe.Bool(true),
	}
	params.Context = ctx
	if _, err := s.api.Refunds.New(params); err != nil {
		return providerErr("refund payment intent", err)
	}
	return nil
}

func toAuthorization(pi *stripe.PaymentIntent) *entities.Authorization {
	auth := &entities.Authorization{
		ID:             pi.ID,
		ClientSecret:   pi.ClientSecret,
		Amount:         money.Cents(pi.Amount),
		Currency:       string(pi.Currency),
		ApplicationFee: money.Cents(pi.ApplicationFeeAmount),
		Status:         authorizationStatus(pi.Status),
		ProviderStatus: string(pi.Status),
		Metadata:       pi.Metadata,
	}
	if pi.TransferData != nil && pi.TransferData.Destination != nil {
		auth.DestinationAccount = pi.TransferData.Destination.ID
	}
	if ch := pi.LatestCharge; ch != nil && (ch.Refunded || ch.AmountRefunded > 0) {
		auth.AmountRefunded = money.Cents(ch.AmountRefunded)
		if auth.Status == entities.AuthorizationSucceeded {
			auth.Status = entities.AuthorizationRefunded
		}
	}
	return auth
}

// authorizationStatus collapses Stripe's intent lifecycle to three states.
func authorizationStatus(status stripe.PaymentIntentStatus) string {
	switch status {
	case stripe.PaymentIntentStatusSucceeded:
		return entities.AuthorizationSucceeded
	case stripe.PaymentIntentStatusCanceled:
		return entities.AuthorizationFailed
	default:
		return entities.AuthorizationRequiresAction
	}
}
