package repository

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/lib/pq"

	apperrors "quickpark/internal/errors"
)

// PostgreSQL error codes the repositories translate.
const (
	pgExclusionViolation  = "23P01"
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgCheckViolation      = "23514"
)

// psql builds queries with $n placeholders.
var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

// storageErr wraps a driver error as ErrStorage with the failing operation.
func storageErr(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", apperrors.ErrStorage, op, err)
}

// mapReservationWriteError turns constraint violations on reserva into domain errors.
func mapReservationWriteError(op string, err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case pgExclusionViolation:
			return fmt.Errorf("%w: %s: %s", apperrors.ErrSlotUnavailable, op, pqErr.Constraint)
		case pgUniqueViolation:
			return fmt.Errorf("%w: %s: %s", apperrors.ErrPaymentAlreadyUsed, op, pqErr.Constraint)
		case pgForeignKeyViolation:
			return fmt.Errorf("%w: %s: %s", apperrors.ErrGarageNotFound, op, pqErr.Constraint)
		case pgCheckViolation:
			return fmt.Errorf("%w: %s: %s", apperrors.ErrInvalidInput, op, pqErr.Constraint)
		}
	}
	return storageErr(op, err)
}

func isNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}
