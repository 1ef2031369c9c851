package errors

import (
	stderrors "errors"
	"net/http"
)

// HTTPError represents an error with an associated HTTP status code.
type HTTPError struct {
	Code    int               `json:"-"`
	Kind    string            `json:"code"`
	Message string            `json:"error"`
	Details map[string]string `json:"details,omitempty"`
}

func (e *HTTPError) Error() string {
	return e.Message
}

// NewHTTPError creates a new HTTPError with the given code and message.
func NewHTTPError(code int, message string) *HTTPError {
	return &HTTPError{
		Code:    code,
		Kind:    kindForStatus(code),
		Message: message,
	}
}

// Helper for common errors
var (
	ErrUnauthorizedHTTP = func(msg string) *HTTPError { return NewHTTPError(http.StatusUnauthorized, msg) }
	ErrBadRequestHTTP   = func(msg string) *HTTPError { return NewHTTPError(http.StatusBadRequest, msg) }
)

type mapping struct {
	target  error
	code    int
	kind    string
	message string
}

// Order matters: the more specific sentinels come first.
var mappings = []mapping{
	{ErrInvalidRange, http.StatusBadRequest, "invalid_range", "fecha_fin debe ser posterior a fecha_inicio"},
	{ErrInvalidInput, http.StatusBadRequest, "invalid_input", "datos de entrada inválidos"},
	{ErrPaymentNotConfirmed, http.StatusBadRequest, "payment_not_confirmed", "el pago no ha sido completado exitosamente"},
	{ErrPayoutNotConfigured, http.StatusBadRequest, "payout_not_configured", "el propietario del garaje no tiene configurado Stripe"},
	{ErrUnauthorized, http.StatusUnauthorized, "unauthorized", "no autorizado"},
	{ErrPaymentMismatch, http.StatusForbidden, "payment_mismatch", "el pago no corresponde a esta reserva"},
	{ErrForbidden, http.StatusForbidden, "forbidden", "no tienes permiso para acceder a este recurso"},
	{ErrGarageNotFound, http.StatusNotFound, "garage_not_found", "garaje no encontrado"},
	{ErrReservationNotFound, http.StatusNotFound, "reservation_not_found", "reserva no encontrada"},
	{ErrNotCancellable, http.StatusConflict, "not_cancellable", "la reserva no es cancelable"},
	{ErrGarageHasReservations, http.StatusConflict, "garage_has_reservations", "el garaje tiene reservas activas"},
	{ErrSlotUnavailable, http.StatusConflict, "slot_unavailable", "el garaje no está disponible en esas fechas"},
	{ErrPaymentAlreadyUsed, http.StatusConflict, "payment_already_used", "el pago ya está asociado a otra reserva"},
	{ErrPaymentProvider, http.StatusBadGateway, "payment_provider_error", "error del proveedor de pagos"},
	{ErrStorage, http.StatusInternalServerError, "storage_error", "error de almacenamiento"},
}

// FromError maps a service error onto the HTTP response the API returns.
// Unknown errors become a generic 500.
func FromError(err error) *HTTPError {
	var httpErr *HTTPError
	if stderrors.As(err, &httpErr) {
		return httpErr
	}
	for _, m := range mappings {
		if stderrors.Is(err, m.target) {
			return &HTTPError{Code: m.code, Kind: m.kind, Message: m.message}
		}
	}
	return &HTTPError{Code: http.StatusInternalServerError, Kind: "internal", Message: "error interno"}
}

func kindForStatus(code int) string {
	switch code {
	case http.StatusBadRequest:
		return "invalid_input"
	case http.StatusUnauthorized:
		return "unauthorized"
	case http.StatusForbidden:
		return "forbidden"
	case http.StatusNotFound:
		return "not_found"
	case http.StatusConflict:
		return "conflict"
	default:
		return "internal"
	}
}
