package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ivanholub/giveline/backend/internal/domain/model"
)

type AuditRepo struct {
	pool *pgxpool.Pool
}

func NewAuditRepo(pool *pgxpool.Pool) *AuditRepo {
	return &AuditRepo{pool: pool}
}

// activityGroup maps audit rows onto the two leaderboard groups:
// identity decisions and report resolutions. Other rows fall out of
// the aggregate entirely.
const activityGroup = `
CASE
	WHEN item_type = 'identity_submission' AND action IN ('APPROVE', 'REJECT') THEN 'kyc_decision'
	WHEN item_type IN ('document_report', 'campaign_report', 'creator_report', 'volunteer_report', 'transaction_report')
		AND action IN ('APPROVE', 'REJECT') THEN 'report_resolved'
END`

func (r *AuditRepo) AppendTx(ctx context.Context, tx pgx.Tx, entry model.AuditEntry) error {
	if _, err := tx.Exec(ctx, `
INSERT INTO audit_entries (item_id, item_type, actor_id, action, from_status, to_status, reason, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
`,
		entry.ItemID,
		entry.ItemType,
		entry.ActorID,
		entry.Action,
		entry.FromStatus,
		entry.ToStatus,
		entry.Reason,
	); err != nil {
		return fmt.Errorf("append audit entry: %w", err)
	}
	return nil
}

func (r *AuditRepo) ListForItem(ctx context.Context, itemID uuid.UUID, limit int) ([]model.AuditEntry, error) {
	if r.pool == nil {
		return nil, fmt.Errorf("postgres pool is nil")
	}
	if limit <= 0 {
		limit = 100
	}

	rows, err := r.pool.Query(ctx, `
SELECT id, item_id, item_type, actor_id, action, from_status, to_status, reason, created_at
FROM audit_entries
WHERE item_id = $1
ORDER BY created_at ASC, id ASC
LIMIT $2
`, itemID, limit)
	if err != nil {
		return nil, fmt.Errorf("list audit entries: %w", err)
	}
	defer rows.Close()

	entries := make([]model.AuditEntry, 0, limit)
	for rows.Next() {
		var entry model.AuditEntry
		if err := rows.Scan(
			&entry.ID,
			&entry.ItemID,
			&entry.ItemType,
			&entry.ActorID,
			&entry.Action,
			&entry.FromStatus,
			&entry.ToStatus,
			&entry.Reason,
			&entry.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan audit entry row: %w", err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate audit entry rows: %w", err)
	}

	return entries, nil
}

// Leaderboard recomputes per-reviewer decision counts straight from
// the audit log. It is the source of truth; the redis snapshot is
// only an advisory cache of this query.
func (r *AuditRepo) Leaderboard(ctx context.Context) ([]model.LeaderboardRow, error) {
	if r.pool == nil {
		return nil, fmt.Errorf("postgres pool is nil")
	}

	rows, err := r.pool.Query(ctx, `
SELECT actor_id, grp, COUNT(*)
FROM (
	SELECT actor_id, `+activityGroup+` AS grp
	FROM audit_entries
) activity
WHERE grp IS NOT NULL
GROUP BY actor_id, grp
ORDER BY COUNT(*) DESC, actor_id ASC
`)
	if err != nil {
		return nil, fmt.Errorf("aggregate leaderboard: %w", err)
	}
	defer rows.Close()

	result := make([]model.LeaderboardRow, 0, 16)
	for rows.Next() {
		var row model.LeaderboardRow
		if err := rows.Scan(&row.ReviewerID, &row.Group, &row.Count); err != nil {
			return nil, fmt.Errorf("scan leaderboard row: %w", err)
		}
		result = append(result, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate leaderboard rows: %w", err)
	}

	return result, nil
}

// CountForActor returns the actor's decision count within one
// activity group, for milestone progress.
func (r *AuditRepo) CountForActor(ctx context.Context, actorID, group string) (int64, error) {
	if r.pool == nil {
		return 0, fmt.Errorf("postgres pool is nil")
	}

	var count int64
	if err := r.pool.QueryRow(ctx, `
SELECT COUNT(*)
FROM (
	SELECT actor_id, `+activityGroup+` AS grp
	FROM audit_entries
	WHERE actor_id = $1
) activity
WHERE grp = $2
`, actorID, group).Scan(&count); err != nil {
		return 0, fmt.Errorf("count actor activity: %w", err)
	}

	return count, nil
}
