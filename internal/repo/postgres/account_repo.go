package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// AccountRepo touches the platform's user accounts for the one thing
// the review flow owns: the suspension flag.
type AccountRepo struct {
	pool *pgxpool.Pool
}

func NewAccountRepo(pool *pgxpool.Pool) *AccountRepo {
	return &AccountRepo{pool: pool}
}

// ClearSuspensionTx lifts the suspension inside the reactivation
// transaction, so the flag and the case status cannot diverge.
func (r *AccountRepo) ClearSuspensionTx(ctx context.Context, tx pgx.Tx, userID string) error {
	if _, err := tx.Exec(ctx, `
UPDATE users
SET suspended = FALSE, reactivated_at = NOW()
WHERE id = $1
`, userID); err != nil {
		return fmt.Errorf("clear suspension flag: %w", err)
	}
	return nil
}
