package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"quickpark/internal/db"
	"quickpark/internal/entities"
	apperrors "quickpark/internal/errors"
	"quickpark/internal/metrics"
	"quickpark/internal/utils"
)

// transitions lists the allowed moves of the reservation lifecycle.
var transitions = map[string][]string{
	db.StatusPending: {db.StatusActive, db.StatusCancelled},
	db.StatusActive:  {db.StatusCompleted, db.StatusCancelled},
}

// CanTransition reports whether a reservation may move from one state to another.
func CanTransition(from, to string) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// PaymentVerifier is the part of the payment coordinator reservations depend on.
type PaymentVerifier interface {
	Verify(ctx context.Context, paymentIntentID string) (*entities.Authorization, error)
	Compensate(ctx context.Context, paymentIntentID string) error
}

type ReservationService struct {
	Repo     ReservationStore
	Payments PaymentVerifier
	Notifier Notifier
	metrics  *metrics.Metrics
	log      *logrus.Logger
}

func NewReservationService(repo ReservationStore, payments PaymentVerifier, notifier Notifier, m *metrics.Metrics, log *logrus.Logger) *ReservationService {
	return &ReservationService{
		Repo:     repo,
		Payments: payments,
		Notifier: notifier,
		metrics:  m,
		log:      log,
	}
}

func validateReservationInput(in entities.CreateReservationInput) (string, error) {
	if in.RenterID <= 0 {
		return "", fmt.Errorf("%w: missing renter", apperrors.ErrUnauthorized)
	}
	if in.GarageID <= 0 {
		return "", fmt.Errorf("%w: missing garaje_id", apperrors.ErrInvalidInput)
	}
	if in.PaymentIntentID == "" {
		return "", fmt.Errorf("%w: missing payment_intent_id", apperrors.ErrInvalidInput)
	}
	if err := utils.ValidateRange(in.StartTime, in.EndTime); err != nil {
		return "", err
	}
	class, ok := utils.NormalizeVehicleClass(in.VehicleClass)
	if !ok {
		return "", fmt.Errorf("%w: unknown tipo_vehiculo %q", apperrors.ErrInvalidInput, in.VehicleClass)
	}
	return class, nil
}

// Create turns a succeeded payment into an active reservation. The charged
// amount is the one the provider holds, never the client's figure.
func (s *ReservationService) Create(ctx context.Context, in entities.CreateReservationInput) (*db.Reservation, error) {
	class, err := validateReservationInput(in)
	if err != nil {
		s.metrics.ReservationAttempt("invalid")
		return nil, err
	}
	logger := s.log.WithFields(logrus.Fields{
		"garage_id":         in.GarageID,
		"user_id":           in.RenterID,
		"payment_intent_id": in.PaymentIntentID,
	})

	auth, err := s.Payments.Verify(ctx, in.PaymentIntentID)
	if err != nil {
		s.metrics.ReservationAttempt("provider_error")
		return nil, err
	}
	if auth.Status != entities.AuthorizationSucceeded {
		s.metrics.ReservationAttempt("payment_not_confirmed")
		return nil, fmt.Errorf("%w: payment %s is %s", apperrors.ErrPaymentNotConfirmed, auth.ID, auth.Status)
	}
	if !auth.MatchesWindow(in.GarageID, in.RenterID, in.StartTime, in.EndTime) {
		s.metrics.ReservationAttempt("payment_mismatch")
		logger.WithField("metadata", auth.Metadata).Warn("payment presented for a different reservation")
		return nil, fmt.Errorf("%w: payment %s", apperrors.ErrPaymentMismatch, auth.ID)
	}
	if in.ClientTotal != nil && *in.ClientTotal != auth.Amount {
		logger.WithFields(logrus.Fields{
			"client_total": in.ClientTotal.String(),
			"charged":      auth.Amount.String(),
		}).Warn("ignoring client supplied total")
	}

	res := &db.Reservation{
		RenterID:        in.RenterID,
		GarageID:        in.GarageID,
		StartTime:       in.StartTime,
		EndTime:         in.EndTime,
		VehicleClass:    class,
		TotalPrice:      auth.Amount,
		PaymentIntentID: auth.ID,
		Status:          db.StatusActive,
	}
	if err := s.Repo.CreateExclusive(ctx, res); err != nil {
		switch {
		case errors.Is(err, apperrors.ErrSlotUnavailable), errors.Is(err, apperrors.ErrGarageNotFound):
			s.metrics.ReservationAttempt("slot_unavailable")
			logger.WithError(err).Warn("paid slot could not be booked, refunding")
			// Recorded before the refund so the intent can never back a reservation later.
			if merr := s.Repo.MarkCompensated(ctx, auth.ID, in.GarageID); merr != nil {
				logger.WithError(merr).Error("could not record compensated payment")
			}
			if cerr := s.Payments.Compensate(ctx, auth.ID); cerr != nil {
				logger.WithError(cerr).Error("refund after lost slot failed")
			}
		case errors.Is(err, apperrors.ErrPaymentAlreadyUsed):
			s.metrics.ReservationAttempt("payment_reused")
			logger.Warn("payment already backs a reservation")
		default:
			s.metrics.ReservationAttempt("storage_error")
		}
		return nil, err
	}

	s.metrics.ReservationAttempt("created")
	logger.WithField("reservation_id", res.ID).Info("reservation created")
	s.notify(ctx, *res, true)
	return res, nil
}

func (s *ReservationService) ListForRenter(ctx context.Context, renterID int64) ([]db.Reservation, error) {
	return s.Repo.ListByRenter(ctx, renterID)
}

func (s *ReservationService) ListForOwner(ctx context.Context, ownerID int64) ([]db.Reservation, error) {
	return s.Repo.ListByOwner(ctx, ownerID)
}

// Cancel lets the renter or the garage owner cancel a reservation that has not
// completed. Cancelling twice is accepted and changes nothing. No refund is issued.
func (s *ReservationService) Cancel(ctx context.Context, reservationID, actorID int64) (*db.Reservation, error) {
	current, ownerID, err := s.Repo.GetWithOwner(ctx, reservationID)
	if err != nil {
		return nil, err
	}
	if actorID != current.RenterID && actorID != ownerID {
		return nil, fmt.Errorf("%w: user %d cannot cancel reservation %d", apperrors.ErrForbidden, actorID, reservationID)
	}
	if current.Status == db.StatusCancelled {
		return current, nil
	}
	if !CanTransition(current.Status, db.StatusCancelled) {
		return nil, fmt.Errorf("%w: reservation %d is %s", apperrors.ErrNotCancellable, reservationID, current.Status)
	}

	cancelled, err := s.Repo.Cancel(ctx, reservationID)
	if err != nil {
		return nil, err
	}
	s.log.WithFields(logrus.Fields{
		"reservation_id": reservationID,
		"actor_id":       actorID,
	}).Info("reservation cancelled")
	s.notify(ctx, *cancelled, false)
	return cancelled, nil
}

// notify runs detached from the request so a slow sender never delays the response.
func (s *ReservationService) notify(ctx context.Context, res db.Reservation, confirmed bool) {
	if s.Notifier == nil {
		return
	}
	bg := context.WithoutCancel(ctx)
	go func() {
		if confirmed {
			s.Notifier.ReservationConfirmed(bg, res)
			return
		}
		s.Notifier.ReservationCancelled(bg, res)
	}()
}
