package errors

import stderrors "errors"

var (
	// ErrInvalidRange is returned when end is not after start or a timestamp is malformed.
	ErrInvalidRange = stderrors.New("invalid range")

	// ErrInvalidInput is returned for missing or unexpected request fields.
	ErrInvalidInput = stderrors.New("invalid input")

	ErrGarageNotFound      = stderrors.New("garage not found")
	ErrReservationNotFound = stderrors.New("reservation not found")

	// ErrPayoutNotConfigured is returned when the garage owner cannot receive payouts yet.
	ErrPayoutNotConfigured = stderrors.New("payout account not configured")

	// ErrPaymentNotConfirmed is returned when a reservation is attempted without a succeeded payment.
	ErrPaymentNotConfirmed = stderrors.New("payment not confirmed")

	// ErrPaymentMismatch is returned when a payment was authorized for a different garage, renter or window.
	ErrPaymentMismatch = stderrors.New("payment does not match reservation")

	// ErrPaymentAlreadyUsed is returned when a payment already backs another reservation.
	ErrPaymentAlreadyUsed = stderrors.New("payment already used")

	ErrForbidden    = stderrors.New("forbidden")
	ErrUnauthorized = stderrors.New("unauthorized")

	// ErrNotCancellable is returned when the reservation already reached a terminal state.
	ErrNotCancellable = stderrors.New("reservation not cancellable")

	// ErrGarageHasReservations is returned when deleting a garage that still has upcoming bookings.
	ErrGarageHasReservations = stderrors.New("garage has live reservations")

	// ErrSlotUnavailable is returned when the garage is taken for the requested window.
	ErrSlotUnavailable = stderrors.New("slot unavailable")

	// ErrPaymentProvider wraps failures of the external payment processor. Not retried internally.
	ErrPaymentProvider = stderrors.New("payment provider error")

	// ErrStorage wraps failures of the relational store. Not retried internally.
	ErrStorage = stderrors.New("storage error")
)
