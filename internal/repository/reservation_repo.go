package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"

	"quickpark/internal/db"
	apperrors "quickpark/internal/errors"
	"quickpark/internal/money"
)

var reservationColumns = []string{
	"r.id", "r.usuario_id", "r.garaje_id", "r.fecha_inicio", "r.fecha_fin",
	"r.tipo_vehiculo", "r.precio_total", "r.payment_intent_id", "r.estado", "r.created_at",
}

type ReservationRepository struct {
	DB *sql.DB
}

func NewReservationRepository(db *sql.DB) *ReservationRepository {
	return &ReservationRepository{DB: db}
}

func scanReservation(row rowScanner, extra ...interface{}) (*db.Reservation, error) {
	var res db.Reservation
	var total string
	dest := append([]interface{}{
		&res.ID, &res.RenterID, &res.GarageID, &res.StartTime, &res.EndTime,
		&res.VehicleClass, &total, &res.PaymentIntentID, &res.Status, &res.CreatedAt,
	}, extra...)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	amount, err := money.ParseMajor(total)
	if err != nil {
		return nil, fmt.Errorf("reservation %d has unreadable total %q: %w", res.ID, total, err)
	}
	res.TotalPrice = amount
	return &res, nil
}

// CreateExclusive inserts the reservation only if no live reservation of the
// same garage overlaps it. The garage row is locked for the duration of the
// check and insert so concurrent bookings of one garage are serialized; the
// reserva_sin_solape exclusion constraint backs this up at commit.
func (r *ReservationRepository) CreateExclusive(ctx context.Context, res *db.Reservation) (err error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return storageErr("begin reservation tx", err)
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	var locked int64
	if err = tx.QueryRowContext(ctx, `SELECT id FROM garaje WHERE id = $1 FOR UPDATE`, res.GarageID).Scan(&locked); err != nil {
		if isNoRows(err) {
			return fmt.Errorf("%w: id %d", apperrors.ErrGarageNotFound, res.GarageID)
		}
		return storageErr("lock garage", err)
	}

	var refunded bool
	err = tx.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM pago_compensado WHERE payment_intent_id = $1)`, res.PaymentIntentID).Scan(&refunded)
	if err != nil {
		return storageErr("check compensated payment", err)
	}
	if refunded {
		err = fmt.Errorf("%w: payment %s was refunded", apperrors.ErrPaymentAlreadyUsed, res.PaymentIntentID)
		return err
	}

	var taken bool
	err = tx.QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM reserva
			WHERE garaje_id = $1
			AND estado IN ($2, $3)
			AND fecha_inicio < $5
			AND $4 < fecha_fin
		)`, res.GarageID, db.StatusPending, db.StatusActive, res.StartTime, res.EndTime).Scan(&taken)
	if err != nil {
		return storageErr("re-check overlap", err)
	}
	if taken {
		err = fmt.Errorf("%w: garage %d between %s and %s", apperrors.ErrSlotUnavailable,
			res.GarageID, res.StartTime.Format(time.RFC3339), res.EndTime.Format(time.RFC3339))
		return err
	}

	query, args, err := psql.Insert("reserva").
		Columns("usuario_id", "garaje_id", "fecha_inicio", "fecha_fin", "tipo_vehiculo", "precio_total", "payment_intent_id", "estado").
		Values(res.RenterID, res.GarageID, res.StartTime, res.EndTime, res.VehicleClass, res.TotalPrice.String(), res.PaymentIntentID, res.Status).
		Suffix("RETURNING id, created_at").
		ToSql()
	if err != nil {
		return storageErr("build reservation insert", err)
	}
	if err = tx.QueryRowContext(ctx, query, args...).Scan(&res.ID, &res.CreatedAt); err != nil {
		return mapReservationWriteError("insert reservation", err)
	}
	if err = tx.Commit(); err != nil {
		return mapReservationWriteError("commit reservation", err)
	}
	return nil
}

// MarkCompensated records a payment intent refunded because its slot was lost.
// Recording the same intent twice is a no-op.
func (r *ReservationRepository) MarkCompensated(ctx context.Context, paymentIntentID string, garageID int64) error {
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO pago_compensado (payment_intent_id, garaje_id)
		VALUES ($1, $2)
		ON CONFLICT (payment_intent_id) DO NOTHING`, paymentIntentID, garageID)
	if err != nil {
		return storageErr("record compensated payment", err)
	}
	return nil
}

// GetWithOwner returns the reservation and the owner id of its garage.
func (r *ReservationRepository) GetWithOwner(ctx context.Context, id int64) (*db.Reservation, int64, error) {
	query, args, err := psql.Select(reservationColumns...).
		Column("g.propietario_id").
		From("reserva r").
		Join("garaje g ON r.garaje_id = g.id").
		Where(squirrel.Eq{"r.id": id}).
		ToSql()
	if err != nil {
		return nil, 0, storageErr("build reservation select", err)
	}
	var ownerID int64
	res, err := scanReservation(r.DB.QueryRowContext(ctx, query, args...), &ownerID)
	if err != nil {
		if isNoRows(err) {
			return nil, 0, fmt.Errorf("%w: id %d", apperrors.ErrReservationNotFound, id)
		}
		return nil, 0, storageErr("get reservation", err)
	}
	return res, ownerID, nil
}

// ListByRenter returns the reservations made by a renter, latest start first.
func (r *ReservationRepository) ListByRenter(ctx context.Context, renterID int64) ([]db.Reservation, error) {
	return r.list(ctx, "list renter reservations", psql.Select(reservationColumns...).
		From("reserva r").
		Where(squirrel.Eq{"r.usuario_id": renterID}).
		OrderBy("r.fecha_inicio DESC"))
}

// ListByOwner returns the reservations received on all garages of an owner, latest start first.
func (r *ReservationRepository) ListByOwner(ctx context.Context, ownerID int64) ([]db.Reservation, error) {
	return r.list(ctx, "list owner reservations", psql.Select(reservationColumns...).
		From("reserva r").
		Join("garaje g ON r.garaje_id = g.id").
		Where(squirrel.Eq{"g.propietario_id": ownerID}).
		OrderBy("r.fecha_inicio DESC"))
}

func (r *ReservationRepository) list(ctx context.Context, op string, b squirrel.SelectBuilder) ([]db.Reservation, error) {
	query, args, err := b.ToSql()
	if err != nil {
		return nil, storageErr(op, err)
	}
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, storageErr(op, err)
	}
	defer rows.Close()

	reservations := []db.Reservation{}
	for rows.Next() {
		res, err := scanReservation(rows)
		if err != nil {
			return nil, storageErr(op, err)
		}
		reservations = append(reservations, *res)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr(op, err)
	}
	return reservations, nil
}

// Cancel moves a reservation to cancelada unless it is completada. Cancelling
// an already cancelled reservation matches the condition and is a no-op.
func (r *ReservationRepository) Cancel(ctx context.Context, id int64) (*db.Reservation, error) {
	query, args, err := psql.Update("reserva r").
		Set("estado", db.StatusCancelled).
		Where(squirrel.Eq{"r.id": id}).
		Where(squirrel.NotEq{"r.estado": db.StatusCompleted}).
		Suffix("RETURNING " + strings.Join(reservationColumns, ", ")).
		ToSql()
	if err != nil {
		return nil, storageErr("build cancel", err)
	}
	res, err := scanReservation(r.DB.QueryRowContext(ctx, query, args...))
	if err == nil {
		return res, nil
	}
	if !isNoRows(err) {
		return nil, storageErr("cancel reservation", err)
	}

	var exists bool
	if err := r.DB.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM reserva WHERE id = $1)`, id).Scan(&exists); err != nil {
		return nil, storageErr("cancel reservation", err)
	}
	if !exists {
		return nil, fmt.Errorf("%w: id %d", apperrors.ErrReservationNotFound, id)
	}
	return nil, fmt.Errorf("%w: reservation %d is %s", apperrors.ErrNotCancellable, id, db.StatusCompleted)
}
