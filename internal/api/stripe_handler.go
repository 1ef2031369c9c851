package api

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/sirupsen/logrus"
	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/webhook"

	"quickpark/internal/auth"
	"quickpark/internal/entities"
	"quickpark/internal/utils"
)

const maxWebhookBytes = int64(65536)

type StripeHandler struct {
	Payments      PaymentCoordinator
	Payouts       PayoutManager
	WebhookSecret string
	log           *logrus.Logger
}

func NewStripeHandler(payments PaymentCoordinator, payouts PayoutManager, webhookSecret string, log *logrus.Logger) *StripeHandler {
	return &StripeHandler{Payments: payments, Payouts: payouts, WebhookSecret: webhookSecret, log: log}
}

// OnboardLink handles POST /api/stripe/onboard-link.
func (h *StripeHandler) OnboardLink(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.UserFromContext(r.Context())
	var req entities.OnboardLinkRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeError(w, r, h.log, err)
		return
	}
	url, err := h.Payouts.ResolveOnboardingLink(r.Context(), req.AccountID, user)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"url": url})
}

// CreatePaymentIntent handles POST /api/stripe/create-payment-intent.
// The amount is always computed here from the garage rate.
func (h *StripeHandler) CreatePaymentIntent(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.UserFromContext(r.Context())
	var req entities.CreatePaymentIntentRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeError(w, r, h.log, err)
		return
	}
	start, end, err := utils.ParseRange(req.StartDate, req.EndDate)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	out, err := h.Payments.CreateAuthorization(r.Context(), req.GarageID, start, end, user.ID)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// HandleWebhook verifies the Stripe signature and keeps the cached onboarding
// state of connected accounts in sync.
func (h *StripeHandler) HandleWebhook(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxWebhookBytes)
	payload, err := io.ReadAll(r.Body)
	if err != nil {
		h.log.WithError(err).Warn("webhook: reading body")
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}

	event, err := webhook.ConstructEventWithOptions(payload, r.Header.Get("Stripe-Signature"), h.WebhookSecret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true})
	if err != nil {
		h.log.WithError(err).Warn("webhook: signature verification failed")
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	switch event.Type {
	case "account.updated":
		var acct stripe.Account
		if err := json.Unmarshal(event.Data.Raw, &acct); err != nil || acct.ID == "" {
			h.log.WithError(err).Warn("webhook: unreadable account.updated payload")
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		if err := h.Payouts.MarkOnboarding(r.Context(), acct.ID, acct.DetailsSubmitted && acct.ChargesEnabled); err != nil {
			writeError(w, r, h.log, err)
			return
		}
	default:
		h.log.WithField("event_type", event.Type).Debug("webhook: unhandled event type")
	}
	w.WriteHeader(http.StatusOK)
}
