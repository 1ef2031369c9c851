package service

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"quickpark/internal/db"
	"quickpark/internal/entities"
	apperrors "quickpark/internal/errors"
	"quickpark/internal/money"
)

type GarageService struct {
	Repo    GarageStore
	Payouts *PayoutService
	log     *logrus.Logger
}

func NewGarageService(repo GarageStore, payouts *PayoutService, log *logrus.Logger) *GarageService {
	return &GarageService{Repo: repo, Payouts: payouts, log: log}
}

// CreateGarage lists a new garage and makes sure its owner can be paid.
func (s *GarageService) CreateGarage(ctx context.Context, ownerID int64, req entities.CreateGarageRequest) (*entities.CreateGarageResponse, error) {
	if req.Address == "" {
		return nil, fmt.Errorf("%w: direccion is required", apperrors.ErrInvalidInput)
	}
	if req.HourlyRate <= 0 {
		return nil, fmt.Errorf("%w: precio must be positive", apperrors.ErrInvalidInput)
	}
	// The payout account comes first so a provider failure leaves no listing behind.
	status, err := s.Payouts.EnsurePayoutAccount(ctx, ownerID)
	if err != nil {
		s.log.WithError(err).WithField("user_id", ownerID).Error("payout account could not be prepared, garage not created")
		return nil, err
	}

	g := &db.Garage{
		OwnerID:     ownerID,
		Address:     req.Address,
		Description: req.Description,
		HourlyRate:  req.HourlyRate,
		Available:   true,
	}
	if err := s.Repo.Create(ctx, g); err != nil {
		return nil, err
	}
	s.log.WithFields(logrus.Fields{"garage_id": g.ID, "user_id": ownerID}).Info("garage created")

	out := &entities.CreateGarageResponse{
		GarageResponse:  entities.ToGarageResponse(*g),
		NeedsOnboarding: status.NeedsOnboarding,
	}
	if status.NeedsOnboarding {
		out.StripeAccountID = status.AccountID
	}
	return out, nil
}

// ListOwnGarages returns the listings of one owner, newest first.
func (s *GarageService) ListOwnGarages(ctx context.Context, ownerID int64) ([]db.Garage, error) {
	return s.Repo.ListByOwner(ctx, ownerID)
}

// UpdateGarage applies an owner's partial update. Only allow-listed fields are accepted.
func (s *GarageService) UpdateGarage(ctx context.Context, ownerID, garageID int64, fields map[string]interface{}) (*db.Garage, error) {
	if err := s.requireOwner(ctx, ownerID, garageID); err != nil {
		return nil, err
	}
	clean, err := normalizeGarageFields(fields)
	if err != nil {
		return nil, err
	}
	return s.Repo.Update(ctx, garageID, clean)
}

func (s *GarageService) DeleteGarage(ctx context.Context, ownerID, garageID int64) error {
	if err := s.requireOwner(ctx, ownerID, garageID); err != nil {
		return err
	}
	if err := s.Repo.Delete(ctx, garageID); err != nil {
		return err
	}
	s.log.WithFields(logrus.Fields{"garage_id": garageID, "user_id": ownerID}).Info("garage deleted")
	return nil
}

func (s *GarageService) requireOwner(ctx context.Context, ownerID, garageID int64) error {
	g, err := s.Repo.GetByID(ctx, garageID)
	if err != nil {
		return err
	}
	if g.OwnerID != ownerID {
		return fmt.Errorf("%w: garage %d belongs to another owner", apperrors.ErrForbidden, garageID)
	}
	return nil
}

// normalizeGarageFields checks types of a decoded JSON patch and converts the price to cents.
func normalizeGarageFields(fields map[string]interface{}) (map[string]interface{}, error) {
	if len(fields) == 0 {
		return nil, fmt.Errorf("%w: no fields to update", apperrors.ErrInvalidInput)
	}
	out := make(map[string]interface{}, len(fields))
	for k, v := range fields {
		switch k {
		case "direccion", "descripcion":
			str, ok := v.(string)
			if !ok || (k == "direccion" && str == "") {
				return nil, fmt.Errorf("%w: %s must be a non-empty string", apperrors.ErrInvalidInput, k)
			}
			out[k] = str
		case "disponible":
			b, ok := v.(bool)
			if !ok {
				return nil, fmt.Errorf("%w: disponible must be a boolean", apperrors.ErrInvalidInput)
			}
			out[k] = b
		case "precio":
			rate, err := priceFromJSON(v)
			if err != nil {
				return nil, err
			}
			out[k] = rate
		default:
			return nil, fmt.Errorf("%w: field %q cannot be modified", apperrors.ErrInvalidInput, k)
		}
	}
	return out, nil
}

func priceFromJSON(v interface{}) (money.Cents, error) {
	var rate money.Cents
	var err error
	switch p := v.(type) {
	case float64:
		rate = money.FromMajor(p)
	case string:
		rate, err = money.ParseMajor(p)
	case money.Cents:
		rate = p
	default:
		err = fmt.Errorf("unsupported type %T", v)
	}
	if err != nil || rate <= 0 {
		return 0, fmt.Errorf("%w: precio must be a positive amount", apperrors.ErrInvalidInput)
	}
	return rate, nil
}
