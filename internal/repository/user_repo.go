package repository

import (
	"context"
	"database/sql"
	"fmt"

	"quickpark/internal/db"
	apperrors "quickpark/internal/errors"
)

type UserRepository struct {
	DB *sql.DB
}

func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{DB: db}
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (*db.User, error) {
	var u db.User
	err := r.DB.QueryRowContext(ctx, `
		SELECT id, nombre, email, COALESCE(telefono, ''), COALESCE(stripe_account_id, ''), stripe_onboarding_completo
		FROM usuario WHERE id = $1`, id).
		Scan(&u.ID, &u.Name, &u.Email, &u.Phone, &u.StripeAccountID, &u.OnboardingCompleted)
	if err != nil {
		if isNoRows(err) {
			return nil, fmt.Errorf("%w: user %d", apperrors.ErrUnauthorized, id)
		}
		return nil, storageErr("get user", err)
	}
	return &u, nil
}

// SetStripeAccountIfAbsent stores the payout account id only when the user has none yet.
// It returns the account id that ended up stored, which differs from accountID
// when a concurrent request stored its own first.
func (r *UserRepository) SetStripeAccountIfAbsent(ctx context.Context, userID int64, accountID string) (string, error) {
	res, err := r.DB.ExecContext(ctx,
		`UPDATE usuario SET stripe_account_id = $1 WHERE id = $2 AND stripe_account_id IS NULL`,
		accountID, userID)
	if err != nil {
		return "", storageErr("set stripe account", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return "", storageErr("set stripe account", err)
	}
	if n == 1 {
		return accountID, nil
	}

	var stored sql.NullString
	if err := r.DB.QueryRowContext(ctx, `SELECT stripe_account_id FROM usuario WHERE id = $1`, userID).Scan(&stored); err != nil {
		if isNoRows(err) {
			return "", fmt.Errorf("%w: user %d", apperrors.ErrUnauthorized, userID)
		}
		return "", storageErr("read stripe account", err)
	}
	return stored.String, nil
}

// SetOnboardingCompleted caches the onboarding state of a payout account.
func (r *UserRepository) SetOnboardingCompleted(ctx context.Context, accountID string, completed bool) error {
	_, err := r.DB.ExecContext(ctx,
		`UPDATE usuario SET stripe_onboarding_completo = $1 WHERE stripe_account_id = $2`,
		completed, accountID)
	if err != nil {
		return storageErr("set onboarding state", err)
	}
	return nil
}
