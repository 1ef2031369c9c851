package api

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"quickpark/internal/auth"
	"quickpark/internal/metrics"
)

type Handlers struct {
	Garages      *GarageHandler
	Stripe       *StripeHandler
	Reservations *ReservationHandler
}

// NewRouter wires every route. metricsHandler may be nil to leave /metrics out.
func NewRouter(h Handlers, authMW *auth.Middleware, m *metrics.Metrics, metricsHandler http.Handler, log *logrus.Logger) *mux.Router {
	r := mux.NewRouter()
	r.Use(RequestID, AccessLog(log), m.Middleware)

	if metricsHandler != nil {
		r.Handle("/metrics", metricsHandler).Methods(http.MethodGet)
	}

	api := r.PathPrefix("/api").Subrouter()

	// Public
	api.HandleFunc("/garages/available", h.Garages.ListAvailable).Methods(http.MethodGet)
	api.HandleFunc("/garages/{id:[0-9]+}/availability", h.Garages.CheckAvailability).Methods(http.MethodGet)
	api.HandleFunc("/stripe/webhook", h.Stripe.HandleWebhook).Methods(http.MethodPost)

	// Session required
	private := api.NewRoute().Subrouter()
	private.Use(authMW.RequireUser)
	private.HandleFunc("/garages", h.Garages.Create).Methods(http.MethodPost)
	private.HandleFunc("/garages/mine", h.Garages.Mine).Methods(http.MethodGet)
	private.HandleFunc("/garages/{id:[0-9]+}", h.Garages.Update).Methods(http.MethodPatch)
	private.HandleFunc("/garages/{id:[0-9]+}", h.Garages.Delete).Methods(http.MethodDelete)
	private.HandleFunc("/stripe/onboard-link", h.Stripe.OnboardLink).Methods(http.MethodPost)
	private.HandleFunc("/stripe/create-payment-intent", h.Stripe.CreatePaymentIntent).Methods(http.MethodPost)
	private.HandleFunc("/reservas", h.Reservations.Create).Methods(http.MethodPost)
	private.HandleFunc("/reservas/my-bookings", h.Reservations.MyBookings).Methods(http.MethodGet)
	private.HandleFunc("/reservas/received", h.Reservations.Received).Methods(http.MethodGet)
	private.HandleFunc("/reservas/{id:[0-9]+}/cancel", h.Reservations.Cancel).Methods(http.MethodPut)

	return r
}

// PrometheusHandler exposes the default registry.
func PrometheusHandler() http.Handler {
	return promhttp.Handler()
}
