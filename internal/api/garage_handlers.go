package api

import (
	"encoding/json"
	"net/http"

	"github.com/sirupsen/logrus"

	"quickpark/internal/auth"
	"quickpark/internal/entities"
	apperrors "quickpark/internal/errors"
	"quickpark/internal/utils"
)

type GarageHandler struct {
	Availability AvailabilityChecker
	Garages      GarageManager
	log          *logrus.Logger
}

func NewGarageHandler(availability AvailabilityChecker, garages GarageManager, log *logrus.Logger) *GarageHandler {
	return &GarageHandler{Availability: availability, Garages: garages, log: log}
}

func queryRange(r *http.Request) (startRaw, endRaw string) {
	return firstQuery(r, "start", "fecha_inicio"), firstQuery(r, "end", "fecha_fin")
}

// ListAvailable handles GET /api/garages/available.
func (h *GarageHandler) ListAvailable(w http.ResponseWriter, r *http.Request) {
	startRaw, endRaw := queryRange(r)
	if startRaw == "" || endRaw == "" {
		writeError(w, r, h.log, apperrors.ErrBadRequestHTTP("fecha_inicio y fecha_fin son requeridos"))
		return
	}
	start, end, err := utils.ParseRange(startRaw, endRaw)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	garages, err := h.Availability.ListAvailableGarages(r.Context(), start, end)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, entities.ToGarageList(garages))
}

// CheckAvailability handles GET /api/garages/{id}/availability.
func (h *GarageHandler) CheckAvailability(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	start, end, err := utils.ParseRange(queryRange(r))
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	ok, err := h.Availability.IsAvailable(r.Context(), id, start, end)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, entities.AvailabilityResponse{
		GarageID:           id,
		IsAvailable:        ok,
		RequestedStartTime: start,
		RequestedEndTime:   end,
	})
}

func (h *GarageHandler) Create(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.UserFromContext(r.Context())
	var req entities.CreateGarageRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeError(w, r, h.log, err)
		return
	}
	out, err := h.Garages.CreateGarage(r.Context(), user.ID, req)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusCreated, out)
}

// Mine handles GET /api/garages/mine.
func (h *GarageHandler) Mine(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.UserFromContext(r.Context())
	garages, err := h.Garages.ListOwnGarages(r.Context(), user.ID)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, entities.ToGarageList(garages))
}

func (h *GarageHandler) Update(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.UserFromContext(r.Context())
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	var fields map[string]interface{}
	if err := json.NewDecoder(r.Body).Decode(&fields); err != nil {
		writeError(w, r, h.log, apperrors.ErrBadRequestHTTP("cuerpo JSON inválido"))
		return
	}
	g, err := h.Garages.UpdateGarage(r.Context(), user.ID, id, fields)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, entities.ToGarageResponse(*g))
}

func (h *GarageHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.UserFromContext(r.Context())
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	if err := h.Garages.DeleteGarage(r.Context(), user.ID, id); err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Garaje eliminado correctamente"})
}
