package repository

import (
	"context"
	"database/sql"

	"github.com/lib/pq"

	"quickpark/internal/db"
)

type JobRepository struct {
	DB *sql.DB
}

func NewJobRepository(db *sql.DB) *JobRepository {
	return &JobRepository{DB: db}
}

// GetActiveReservationIDsPastEndTime returns active reservations whose end time has passed.
func (r *JobRepository) GetActiveReservationIDsPastEndTime(ctx context.Context) ([]int64, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT id FROM reserva WHERE estado = $1 AND fecha_fin <= NOW()`, db.StatusActive)
	if err != nil {
		return nil, storageErr("query active reservations past end time", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, storageErr("scan reservation id", err)
		}
		ids = append(ids, id)
	}
	if err = rows.Err(); err != nil {
		return nil, storageErr("iterate reservation ids", err)
	}
	return ids, nil
}

// UpdateReservationStatuses moves reservations still in fromStatus to toStatus.
// Rows that changed state in between (e.g. cancelled) are left alone.
func (r *JobRepository) UpdateReservationStatuses(ctx context.Context, ids []int64, fromStatus, toStatus string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res, err := r.DB.ExecContext(ctx,
		`UPDATE reserva SET estado = $1 WHERE id = ANY($2) AND estado = $3`,
		toStatus, pq.Array(ids), fromStatus)
	if err != nil {
		return 0, storageErr("update reservation statuses", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, storageErr("rows affected", err)
	}
	return n, nil
}
