package api

import (
	"net/http"

	"github.com/sirupsen/logrus"

	"quickpark/internal/auth"
	"quickpark/internal/entities"
	"quickpark/internal/utils"
)

type ReservationHandler struct {
	Service ReservationManager
	log     *logrus.Logger
}

func NewReservationHandler(svc ReservationManager, log *logrus.Logger) *ReservationHandler {
	return &ReservationHandler{Service: svc, log: log}
}

// Create handles POST /api/reservas. The renter is the session user.
func (h *ReservationHandler) Create(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.UserFromContext(r.Context())
	var req entities.CreateReservationRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeError(w, r, h.log, err)
		return
	}
	start, end, err := utils.ParseRange(req.StartTime, req.EndTime)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	res, err := h.Service.Create(r.Context(), entities.CreateReservationInput{
		RenterID:        user.ID,
		GarageID:        req.GarageID,
		StartTime:       start,
		EndTime:         end,
		VehicleClass:    req.VehicleClass,
		PaymentIntentID: req.PaymentIntentID,
		ClientTotal:     req.TotalPrice,
	})
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusCreated, entities.ToReservationResponse(*res))
}

func (h *ReservationHandler) MyBookings(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.UserFromContext(r.Context())
	list, err := h.Service.ListForRenter(r.Context(), user.ID)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, entities.ToReservationList(list))
}

func (h *ReservationHandler) Received(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.UserFromContext(r.Context())
	list, err := h.Service.ListForOwner(r.Context(), user.ID)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, entities.ToReservationList(list))
}

// Cancel handles PUT /api/reservas/{id}/cancel.
func (h *ReservationHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.UserFromContext(r.Context())
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	res, err := h.Service.Cancel(r.Context(), id, user.ID)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, entities.ToReservationResponse(*res))
}
