package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ivanholub/giveline/backend/internal/domain/model"
)

var ErrReviewerNotFound = errors.New("reviewer not found")

// ReviewerRepo mirrors staff accounts from the identity provider.
// Roles on tokens stay authoritative; this table only supplies
// display names and an upsert point for the IdP sync.
type ReviewerRepo struct {
	pool *pgxpool.Pool
}

func NewReviewerRepo(pool *pgxpool.Pool) *ReviewerRepo {
	return &ReviewerRepo{pool: pool}
}

func (r *ReviewerRepo) Upsert(ctx context.Context, reviewer model.Reviewer) error {
	if r.pool == nil {
		return fmt.Errorf("postgres pool is nil")
	}
	if reviewer.ID == "" {
		return fmt.Errorf("reviewer id is required")
	}

	if _, err := r.pool.Exec(ctx, `
INSERT INTO reviewers (id, display_name, role, created_at)
VALUES ($1, $2, $3, NOW())
ON CONFLICT (id) DO UPDATE SET display_name = EXCLUDED.display_name, role = EXCLUDED.role
`, reviewer.ID, reviewer.DisplayName, reviewer.Role); err != nil {
		return fmt.Errorf("upsert reviewer: %w", err)
	}

	return nil
}

func (r *ReviewerRepo) GetByID(ctx context.Context, reviewerID string) (model.Reviewer, error) {
	if r.pool == nil {
		return model.Reviewer{}, fmt.Errorf("postgres pool is nil")
	}

	var reviewer model.Reviewer
	err := r.pool.QueryRow(ctx, `
SELECT id, display_name, role, created_at
FROM reviewers
WHERE id = $1
`, reviewerID).Scan(&reviewer.ID, &reviewer.DisplayName, &reviewer.Role, &reviewer.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Reviewer{}, ErrReviewerNotFound
		}
		return model.Reviewer{}, fmt.Errorf("get reviewer: %w", err)
	}

	return reviewer, nil
}

func (r *ReviewerRepo) DisplayNames(ctx context.Context, ids []string) (map[string]string, error) {
	if r.pool == nil {
		return nil, fmt.Errorf("postgres pool is nil")
	}
	if len(ids) == 0 {
		return map[string]string{}, nil
	}

	rows, err := r.pool.Query(ctx, `
SELECT id, display_name
FROM reviewers
WHERE id = ANY($1)
`, ids)
	if err != nil {
		return nil, fmt.Errorf("list reviewer names: %w", err)
	}
	defer rows.Close()

	names := make(map[string]string, len(ids))
	for rows.Next() {
		var id, name string
		if err := rows.Scan(&id, &name); err != nil {
			return nil, fmt.Errorf("scan reviewer name row: %w", err)
		}
		names[id] = name
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate reviewer name rows: %w", err)
	}

	return names, nil
}
