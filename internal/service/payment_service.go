package service

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"quickpark/internal/entities"
	apperrors "quickpark/internal/errors"
	"quickpark/internal/metrics"
	"quickpark/internal/utils"
)

type PaymentService struct {
	Garages  GarageStore
	Provider PaymentProvider
	Payouts  *PayoutService
	Pricing  *PricingService
	Currency string
	metrics  *metrics.Metrics
	log      *logrus.Logger
}

func NewPaymentService(garages GarageStore, provider PaymentProvider, payouts *PayoutService, pricing *PricingService,
	currency string, m *metrics.Metrics, log *logrus.Logger) *PaymentService {
	return &PaymentService{
		Garages:  garages,
		Provider: provider,
		Payouts:  payouts,
		Pricing:  pricing,
		Currency: currency,
		metrics:  m,
		log:      log,
	}
}

// CreateAuthorization prices the window server side and opens a payment intent
// routed to the garage owner, minus the platform fee.
func (s *PaymentService) CreateAuthorization(ctx context.Context, garageID int64, start, end time.Time, renterID int64) (*entities.CreatePaymentIntentResponse, error) {
	if err := utils.ValidateRange(start, end); err != nil {
		return nil, err
	}
	garage, err := s.Garages.GetWithOwner(ctx, garageID)
	if err != nil {
		return nil, err
	}
	ready, err := s.Payouts.AccountReady(ctx, garage.OwnerStripeAccountID, garage.OwnerOnboarded)
	if err != nil {
		return nil, err
	}
	if !ready {
		s.metrics.PaymentIntent("payout_not_configured")
		return nil, fmt.Errorf("%w: owner of garage %d", apperrors.ErrPayoutNotConfigured, garageID)
	}

	free, err := s.Garages.IsAvailable(ctx, garageID, start, end)
	if err != nil {
		return nil, err
	}
	if !free {
		s.metrics.PaymentIntent("slot_unavailable")
		return nil, fmt.Errorf("%w: garage %d", apperrors.ErrSlotUnavailable, garageID)
	}

	quote, err := s.Pricing.Quote(garage.HourlyRate, start, end)
	if err != nil {
		return nil, err
	}
	auth, err := s.Provider.CreatePaymentIntent(ctx, entities.PaymentIntentParams{
		Amount:             quote.Total,
		Currency:           s.Currency,
		ApplicationFee:     quote.Fee,
		DestinationAccount: garage.OwnerStripeAccountID,
		Metadata:           entities.WindowMetadata(garageID, renterID, start, end, quote.Hours),
	})
	if err != nil {
		s.metrics.PaymentIntent("provider_error")
		return nil, err
	}
	s.metrics.PaymentIntent("created")
	s.log.WithFields(logrus.Fields{
		"garage_id":         garageID,
		"user_id":           renterID,
		"payment_intent_id": auth.ID,
		"amount":            quote.Total.String(),
		"fee":               quote.Fee.String(),
	}).Info("payment intent created")

	return &entities.CreatePaymentIntentResponse{
		ClientSecret:    auth.ClientSecret,
		PaymentIntentID: auth.ID,
		TotalPrice:      quote.Total,
		Hours:           quote.Hours,
		ApplicationFee:  quote.Fee,
	}, nil
}

// Verify reads the current state of a payment intent from the provider.
func (s *PaymentService) Verify(ctx context.Context, paymentIntentID string) (*entities.Authorization, error) {
	if paymentIntentID == "" {
		return nil, fmt.Errorf("%w: missing payment_intent_id", apperrors.ErrInvalidInput)
	}
	return s.Provider.GetPaymentIntent(ctx, paymentIntentID)
}

// Compensate refunds a succeeded payment that could not become a reservation.
func (s *PaymentService) Compensate(ctx context.Context, paymentIntentID string) error {
	logger := s.log.WithField("payment_intent_id", paymentIntentID)
	if err := s.Provider.RefundPaymentIntent(ctx, paymentIntentID); err != nil {
		s.metrics.Compensation("failed")
		logger.WithError(err).Error("compensating refund failed, manual follow-up required")
		return err
	}
	s.metrics.Compensation("refunded")
	logger.Warn("payment refunded because its slot was taken")
	return nil
}
