package repository

import (
	"database/sql"
	"errors"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"

	apperrors "quickpark/internal/errors"
)

func TestMapReservationWriteError(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want error
	}{
		{"exclusion", &pq.Error{Code: pgExclusionViolation, Constraint: "reserva_sin_solape"}, apperrors.ErrSlotUnavailable},
		{"unique payment", &pq.Error{Code: pgUniqueViolation, Constraint: "reserva_payment_intent_id_key"}, apperrors.ErrPaymentAlreadyUsed},
		{"missing garage", &pq.Error{Code: pgForeignKeyViolation}, apperrors.ErrGarageNotFound},
		{"check", &pq.Error{Code: pgCheckViolation}, apperrors.ErrInvalidInput},
		{"other pq", &pq.Error{Code: "40001"}, apperrors.ErrStorage},
		{"connection", errors.New("connection refused"), apperrors.ErrStorage},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.ErrorIs(t, mapReservationWriteError("insert", tc.err), tc.want)
		})
	}
}

func TestIsNoRows(t *testing.T) {
	assert.True(t, isNoRows(sql.ErrNoRows))
	assert.False(t, isNoRows(errors.New("boom")))
}
