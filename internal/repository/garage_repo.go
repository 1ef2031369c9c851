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

var garageColumns = []string{"g.id", "g.propietario_id", "g.direccion", "COALESCE(g.descripcion, '')", "g.precio", "g.disponible", "g.fecha_creacion"}

// GarageMutableFields is the allow-list of columns an owner may change on a listing.
var GarageMutableFields = map[string]bool{
	"direccion":   true,
	"descripcion": true,
	"precio":      true,
	"disponible":  true,
}

type GarageRepository struct {
	DB *sql.DB
}

func NewGarageRepository(db *sql.DB) *GarageRepository {
	return &GarageRepository{DB: db}
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanGarage(row rowScanner, extra ...interface{}) (*db.Garage, error) {
	var g db.Garage
	var price string
	dest := append([]interface{}{&g.ID, &g.OwnerID, &g.Address, &g.Description, &price, &g.Available, &g.CreatedAt}, extra...)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	rate, err := money.ParseMajor(price)
	if err != nil {
		return nil, fmt.Errorf("garage %d has unreadable price %q: %w", g.ID, price, err)
	}
	g.HourlyRate = rate
	return &g, nil
}

func (r *GarageRepository) GetByID(ctx context.Context, id int64) (*db.Garage, error) {
	query, args, err := psql.Select(garageColumns...).From("garaje g").Where(squirrel.Eq{"g.id": id}).ToSql()
	if err != nil {
		return nil, storageErr("build garage select", err)
	}
	g, err := scanGarage(r.DB.QueryRowContext(ctx, query, args...))
	if err != nil {
		if isNoRows(err) {
			return nil, fmt.Errorf("%w: id %d", apperrors.ErrGarageNotFound, id)
		}
		return nil, storageErr("get garage", err)
	}
	return g, nil
}

// GetWithOwner loads a garage together with its owner's payout account data.
func (r *GarageRepository) GetWithOwner(ctx context.Context, id int64) (*db.GarageWithOwner, error) {
	cols := append(append([]string{}, garageColumns...), "COALESCE(u.stripe_account_id, '')", "u.stripe_onboarding_completo")
	query, args, err := psql.Select(cols...).
		From("garaje g").
		Join("usuario u ON g.propietario_id = u.id").
		Where(squirrel.Eq{"g.id": id}).
		ToSql()
	if err != nil {
		return nil, storageErr("build garage owner select", err)
	}
	var out db.GarageWithOwner
	g, err := scanGarage(r.DB.QueryRowContext(ctx, query, args...), &out.OwnerStripeAccountID, &out.OwnerOnboarded)
	if err != nil {
		if isNoRows(err) {
			return nil, fmt.Errorf("%w: id %d", apperrors.ErrGarageNotFound, id)
		}
		return nil, storageErr("get garage with owner", err)
	}
	out.Garage = *g
	return &out, nil
}

// overlapExists matches live reservations sharing an instant with [$start, $end).
func overlapExists(start, end time.Time) squirrel.Sqlizer {
	return squirrel.Expr(`EXISTS (
		SELECT 1 FROM reserva r
		WHERE r.garaje_id = g.id
		AND r.estado != ?
		AND r.fecha_inicio < ?
		AND ? < r.fecha_fin
	)`, db.StatusCancelled, end, start)
}

// IsAvailable reports whether the garage is listed as available and has no
// non-cancelled reservation overlapping [start, end).
func (r *GarageRepository) IsAvailable(ctx context.Context, garageID int64, start, end time.Time) (bool, error) {
	query, args, err := psql.Select("g.disponible").
		Column(squirrel.Alias(overlapExists(start, end), "ocupado")).
		From("garaje g").
		Where(squirrel.Eq{"g.id": garageID}).
		ToSql()
	if err != nil {
		return false, storageErr("build availability query", err)
	}
	var listed, taken bool
	if err := r.DB.QueryRowContext(ctx, query, args...).Scan(&listed, &taken); err != nil {
		if isNoRows(err) {
			return false, fmt.Errorf("%w: id %d", apperrors.ErrGarageNotFound, garageID)
		}
		return false, storageErr("check availability", err)
	}
	return listed && !taken, nil
}

// ListAvailable returns listed garages free for [start, end), newest listing first.
func (r *GarageRepository) ListAvailable(ctx context.Context, start, end time.Time) ([]db.Garage, error) {
	query, args, err := psql.Select(garageColumns...).
		From("garaje g").
		Where(squirrel.Eq{"g.disponible": true}).
		Where(squirrel.Expr("NOT ?", overlapExists(start, end))).
		OrderBy("g.fecha_creacion DESC").
		ToSql()
	if err != nil {
		return nil, storageErr("build available garages query", err)
	}
	return r.queryGarages(ctx, "list available garages", query, args)
}

func (r *GarageRepository) ListByOwner(ctx context.Context, ownerID int64) ([]db.Garage, error) {
	query, args, err := psql.Select(garageColumns...).
		From("garaje g").
		Where(squirrel.Eq{"g.propietario_id": ownerID}).
		OrderBy("g.fecha_creacion DESC").
		ToSql()
	if err != nil {
		return nil, storageErr("build owner garages query", err)
	}
	return r.queryGarages(ctx, "list owner garages", query, args)
}

func (r *GarageRepository) queryGarages(ctx context.Context, op, query string, args []interface{}) ([]db.Garage, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, storageErr(op, err)
	}
	defer rows.Close()

	garages := []db.Garage{}
	for rows.Next() {
		g, err := scanGarage(rows)
		if err != nil {
			return nil, storageErr(op, err)
		}
		garages = append(garages, *g)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr(op, err)
	}
	return garages, nil
}

func (r *GarageRepository) Create(ctx context.Context, g *db.Garage) error {
	query, args, err := psql.Insert("garaje").
		Columns("propietario_id", "direccion", "descripcion", "precio", "disponible").
		Values(g.OwnerID, g.Address, g.Description, g.HourlyRate.String(), g.Available).
		Suffix("RETURNING id, fecha_creacion").
		ToSql()
	if err != nil {
		return storageErr("build garage insert", err)
	}
	if err := r.DB.QueryRowContext(ctx, query, args...).Scan(&g.ID, &g.CreatedAt); err != nil {
		return storageErr("insert garage", err)
	}
	return nil
}

// buildGarageUpdate rejects any field outside GarageMutableFields.
func buildGarageUpdate(id int64, fields map[string]interface{}) (string, []interface{}, error) {
	if len(fields) == 0 {
		return "", nil, fmt.Errorf("%w: no fields to update", apperrors.ErrInvalidInput)
	}
	set := make(map[string]interface{}, len(fields))
	for k, v := range fields {
		if !GarageMutableFields[k] {
			return "", nil, fmt.Errorf("%w: field %q cannot be modified", apperrors.ErrInvalidInput, k)
		}
		if c, ok := v.(money.Cents); ok {
			v = c.String()
		}
		set[k] = v
	}
	return psql.Update("garaje g").
		SetMap(set).
		Where(squirrel.Eq{"g.id": id}).
		Suffix("RETURNING " + strings.Join(garageColumns, ", ")).
		ToSql()
}

// Update applies an allow-listed partial update and returns the stored garage.
func (r *GarageRepository) Update(ctx context.Context, id int64, fields map[string]interface{}) (*db.Garage, error) {
	query, args, err := buildGarageUpdate(id, fields)
	if err != nil {
		return nil, err
	}
	g, err := scanGarage(r.DB.QueryRowContext(ctx, query, args...))
	if err != nil {
		if isNoRows(err) {
			return nil, fmt.Errorf("%w: id %d", apperrors.ErrGarageNotFound, id)
		}
		return nil, storageErr("update garage", err)
	}
	return g, nil
}

// Delete removes a garage unless a pending or active reservation has not ended
// yet. It takes the same row lock as CreateExclusive, so no booking can slip in
// between the check and the delete.
func (r *GarageRepository) Delete(ctx context.Context, id int64) (err error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return storageErr("begin garage delete", err)
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	var locked int64
	if err = tx.QueryRowContext(ctx, `SELECT id FROM garaje WHERE id = $1 FOR UPDATE`, id).Scan(&locked); err != nil {
		if isNoRows(err) {
			return fmt.Errorf("%w: id %d", apperrors.ErrGarageNotFound, id)
		}
		return storageErr("lock garage", err)
	}

	var live bool
	err = tx.QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM reserva
			WHERE garaje_id = $1
			AND estado IN ($2, $3)
			AND fecha_fin > NOW()
		)`, id, db.StatusPending, db.StatusActive).Scan(&live)
	if err != nil {
		return storageErr("check live reservations", err)
	}
	if live {
		err = fmt.Errorf("%w: garage %d", apperrors.ErrGarageHasReservations, id)
		return err
	}

	if _, err = tx.ExecContext(ctx, `DELETE FROM garaje WHERE id = $1`, id); err != nil {
		return storageErr("delete garage", err)
	}
	if err = tx.Commit(); err != nil {
		return storageErr("commit garage delete", err)
	}
	return nil
}
