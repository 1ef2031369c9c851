package service

import (
	"fmt"
	"time"

	"quickpark/internal/entities"
	apperrors "quickpark/internal/errors"
	"quickpark/internal/money"
)

// DefaultCommissionBPS is the platform fee: 10%.
const DefaultCommissionBPS int64 = 1000

type PricingService struct {
	CommissionBPS int64
}

func NewPricingService(commissionBPS int64) *PricingService {
	return &PricingService{CommissionBPS: commissionBPS}
}

// Quote charges every started hour of [start, end) at the hourly rate and
// takes the commission from the total, rounding half-up to the cent.
func (s *PricingService) Quote(rate money.Cents, start, end time.Time) (entities.Quote, error) {
	hours := BillableHours(start, end)
	if hours <= 0 {
		return entities.Quote{}, fmt.Errorf("%w: %s to %s is not a positive duration", apperrors.ErrInvalidRange,
			start.Format(time.RFC3339), end.Format(time.RFC3339))
	}
	if rate <= 0 {
		return entities.Quote{}, fmt.Errorf("%w: hourly rate %s", apperrors.ErrInvalidInput, rate)
	}
	total := rate * money.Cents(hours)
	return entities.Quote{
		Hours: hours,
		Total: total,
		Fee:   total.MulBasisPoints(s.CommissionBPS),
	}, nil
}

// BillableHours is ceil((end-start)/1h); zero or negative when end <= start.
func BillableHours(start, end time.Time) int64 {
	d := end.Sub(start)
	if d <= 0 {
		return 0
	}
	return int64((d + time.Hour - 1) / time.Hour)
}
