package service

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"quickpark/internal/db"
	"quickpark/internal/utils"
)

type AvailabilityService struct {
	Garages GarageStore
	log     *logrus.Logger
}

func NewAvailabilityService(garages GarageStore, log *logrus.Logger) *AvailabilityService {
	return &AvailabilityService{Garages: garages, log: log}
}

// IsAvailable reports whether the garage is listed and free for [start, end).
func (s *AvailabilityService) IsAvailable(ctx context.Context, garageID int64, start, end time.Time) (bool, error) {
	if err := utils.ValidateRange(start, end); err != nil {
		return false, err
	}
	ok, err := s.Garages.IsAvailable(ctx, garageID, start, end)
	if err != nil {
		return false, err
	}
	s.log.WithFields(logrus.Fields{
		"garage_id": garageID,
		"start":     start,
		"end":       end,
		"available": ok,
	}).Debug("availability checked")
	return ok, nil
}

// ListAvailableGarages returns every listed garage free for [start, end), newest first.
func (s *AvailabilityService) ListAvailableGarages(ctx context.Context, start, end time.Time) ([]db.Garage, error) {
	if err := utils.ValidateRange(start, end); err != nil {
		return nil, err
	}
	return s.Garages.ListAvailable(ctx, start, end)
}
