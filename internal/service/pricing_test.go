package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "quickpark/internal/errors"
	"quickpark/internal/money"
)

func day(hhmm string) time.Time {
	t, err := time.Parse("2006-01-02T15:04", "2025-11-20T"+hhmm)
	if err != nil {
		panic(err)
	}
	return t
}

func TestQuote_ReferenceExample(t *testing.T) {
	pricing := NewPricingService(DefaultCommissionBPS)

	q, err := pricing.Quote(money.Cents(1000), day("10:00"), day("12:30"))
	require.NoError(t, err)
	assert.Equal(t, int64(3), q.Hours)
	assert.Equal(t, money.Cents(3000), q.Total)
	assert.Equal(t, money.Cents(300), q.Fee)
}

func TestQuote_Table(t *testing.T) {
	pricing := NewPricingService(DefaultCommissionBPS)
	cases := []struct {
		name      string
		rate      money.Cents
		start     time.Time
		end       time.Time
		wantHours int64
		wantTotal money.Cents
		wantFee   money.Cents
	}{
		{"exact hour", 250, day("10:00"), day("11:00"), 1, 250, 25},
		{"one minute starts an hour", 250, day("10:00"), day("10:01"), 1, 250, 25},
		{"one second past two hours", 199, day("10:00"), day("12:00").Add(time.Second), 3, 597, 60},
		{"fee rounds half up", 5, day("10:00"), day("11:00"), 1, 5, 1},
		{"overnight", 1000, day("22:00"), day("22:00").Add(10 * time.Hour), 10, 10000, 1000},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			q, err := pricing.Quote(tc.rate, tc.start, tc.end)
			require.NoError(t, err)
			assert.Equal(t, tc.wantHours, q.Hours)
			assert.Equal(t, tc.wantTotal, q.Total)
			assert.Equal(t, tc.wantFee, q.Fee)
		})
	}
}

func TestQuote_Deterministic(t *testing.T) {
	pricing := NewPricingService(DefaultCommissionBPS)
	first, err := pricing.Quote(1234, day("09:15"), day("17:40"))
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		again, err := pricing.Quote(1234, day("09:15"), day("17:40"))
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestQuote_InvalidRange(t *testing.T) {
	pricing := NewPricingService(DefaultCommissionBPS)

	_, err := pricing.Quote(1000, day("12:00"), day("12:00"))
	assert.ErrorIs(t, err, apperrors.ErrInvalidRange)

	_, err = pricing.Quote(1000, day("12:00"), day("10:00"))
	assert.ErrorIs(t, err, apperrors.ErrInvalidRange)
}

func TestQuote_CustomCommission(t *testing.T) {
	pricing := NewPricingService(1500)
	q, err := pricing.Quote(1000, day("10:00"), day("12:00"))
	require.NoError(t, err)
	assert.Equal(t, money.Cents(300), q.Fee)
}
