package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ivanholub/giveline/backend/internal/domain/enums"
	"github.com/ivanholub/giveline/backend/internal/domain/model"
)

var (
	ErrItemNotFound = errors.New("review item not found")
	// ErrAlreadyClaimed means another reviewer holds the live claim.
	ErrAlreadyClaimed = errors.New("review item already claimed")
	// ErrAlreadyHeld means the caller already holds the claim; callers
	// treat this as an idempotent success.
	ErrAlreadyHeld = errors.New("review item already held by caller")
	// ErrStaleStatus means a conditional write matched no row because
	// the observed status changed underneath the caller.
	ErrStaleStatus = errors.New("review item status changed concurrently")
)

const itemColumns = `id, item_type, subject_id, status, claimed_by, claimed_at,
processed_by, processed_at, resolution_reason, evidence_keys, created_at, updated_at`

// priorityOrder is generated from enums.ReviewStatus.Tier so SQL
// listing and in-memory sorting cannot drift apart.
var priorityOrder = buildPriorityOrder()

func buildPriorityOrder() string {
	var b strings.Builder
	b.WriteString("\nCASE status\n")
	for _, status := range enums.TieredStatuses() {
		fmt.Fprintf(&b, "\tWHEN '%s' THEN %d\n", status, status.Tier())
	}
	b.WriteString("\tELSE 3\nEND ASC, created_at DESC, id DESC")
	return b.String()
}

type ItemRepo struct {
	pool *pgxpool.Pool
}

func NewItemRepo(pool *pgxpool.Pool) *ItemRepo {
	return &ItemRepo{pool: pool}
}

type ListFilter struct {
	ItemType enums.ItemType
	Statuses []enums.ReviewStatus
	Limit    int
}

type ResolveParams struct {
	ItemID     uuid.UUID
	From       enums.ReviewStatus
	To         enums.ReviewStatus
	ReviewerID string
	Reason     string
}

func (r *ItemRepo) Create(ctx context.Context, itemType enums.ItemType, subjectID string, status enums.ReviewStatus, evidenceKeys []string) (model.ReviewItem, error) {
	if r.pool == nil {
		return model.ReviewItem{}, fmt.Errorf("postgres pool is nil")
	}
	if !itemType.Valid() || strings.TrimSpace(subjectID) == "" {
		return model.ReviewItem{}, fmt.Errorf("invalid review item payload")
	}
	if evidenceKeys == nil {
		evidenceKeys = []string{}
	}

	row := r.pool.QueryRow(ctx, `
INSERT INTO review_items (id, item_type, subject_id, status, evidence_keys, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
RETURNING `+itemColumns, uuid.New(), itemType, subjectID, status, evidenceKeys)

	item, err := scanItem(row)
	if err != nil {
		return model.ReviewItem{}, fmt.Errorf("create review item: %w", err)
	}
	return item, nil
}

func (r *ItemRepo) GetByID(ctx context.Context, itemID uuid.UUID) (model.ReviewItem, error) {
	if r.pool == nil {
		return model.ReviewItem{}, fmt.Errorf("postgres pool is nil")
	}
	return getItem(ctx, r.pool, itemID)
}

func (r *ItemRepo) GetBySubject(ctx context.Context, itemType enums.ItemType, subjectID string) (model.ReviewItem, error) {
	if r.pool == nil {
		return model.ReviewItem{}, fmt.Errorf("postgres pool is nil")
	}
	if strings.TrimSpace(subjectID) == "" {
		return model.ReviewItem{}, fmt.Errorf("subject id is required")
	}

	row := r.pool.QueryRow(ctx, `
SELECT `+itemColumns+`
FROM review_items
WHERE item_type = $1 AND subject_id = $2
ORDER BY created_at DESC, id DESC
LIMIT 1
`, itemType, subjectID)

	item, err := scanItem(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.ReviewItem{}, ErrItemNotFound
		}
		return model.ReviewItem{}, fmt.Errorf("get review item by subject: %w", err)
	}
	return item, nil
}

// List returns items in queue priority order: active tiers first,
// newest first within a tier.
func (r *ItemRepo) List(ctx context.Context, filter ListFilter) ([]model.ReviewItem, error) {
	if r.pool == nil {
		return nil, fmt.Errorf("postgres pool is nil")
	}

	limit := filter.Limit
	if limit <= 0 || limit > 500 {
		limit = 100
	}

	conds := make([]string, 0, 2)
	args := make([]any, 0, 3)
	if filter.ItemType != "" {
		args = append(args, filter.ItemType)
		conds = append(conds, fmt.Sprintf("item_type = $%d", len(args)))
	}
	if len(filter.Statuses) > 0 {
		statuses := make([]string, 0, len(filter.Statuses))
		for _, s := range filter.Statuses {
			statuses = append(statuses, string(s))
		}
		args = append(args, statuses)
		conds = append(conds, fmt.Sprintf("status = ANY($%d)", len(args)))
	}

	query := `SELECT ` + itemColumns + ` FROM review_items`
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	args = append(args, limit)
	query += " ORDER BY " + priorityOrder + fmt.Sprintf(" LIMIT $%d", len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list review items: %w", err)
	}
	defer rows.Close()

	items := make([]model.ReviewItem, 0, limit)
	for rows.Next() {
		item, scanErr := scanItem(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("scan review item row: %w", scanErr)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate review item rows: %w", err)
	}

	return items, nil
}

func (r *ItemRepo) CountPendingByType(ctx context.Context) (model.QueueCounts, error) {
	if r.pool == nil {
		return model.QueueCounts{}, fmt.Errorf("postgres pool is nil")
	}

	rows, err := r.pool.Query(ctx, `
SELECT item_type, COUNT(*)
FROM review_items
WHERE status = 'pending'
GROUP BY item_type
`)
	if err != nil {
		return model.QueueCounts{}, fmt.Errorf("count pending review items: %w", err)
	}
	defer rows.Close()

	counts := model.QueueCounts{ByType: make(map[string]int64)}
	for rows.Next() {
		var itemType string
		var count int64
		if err := rows.Scan(&itemType, &count); err != nil {
			return model.QueueCounts{}, fmt.Errorf("scan pending count row: %w", err)
		}
		counts.ByType[itemType] = count
		counts.Total += count
	}
	if err := rows.Err(); err != nil {
		return model.QueueCounts{}, fmt.Errorf("iterate pending count rows: %w", err)
	}

	return counts, nil
}

// ClaimTx is the single conditional write that enforces claim
// exclusivity: under concurrent attempts exactly one matches the
// claimed_by IS NULL predicate. The losers are classified afterwards.
func (r *ItemRepo) ClaimTx(ctx context.Context, tx pgx.Tx, itemID uuid.UUID, reviewerID string) (model.ReviewItem, error) {
	row := tx.QueryRow(ctx, `
UPDATE review_items
SET status = 'in_progress', claimed_by = $2, claimed_at = NOW(), updated_at = NOW()
WHERE id = $1 AND claimed_by IS NULL AND status = 'pending'
RETURNING `+itemColumns, itemID, reviewerID)

	item, err := scanItem(row)
	if err == nil {
		return item, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return model.ReviewItem{}, fmt.Errorf("claim review item: %w", err)
	}

	current, getErr := getItem(ctx, tx, itemID)
	if getErr != nil {
		return model.ReviewItem{}, getErr
	}
	if current.HeldBy(reviewerID) {
		return current, ErrAlreadyHeld
	}
	if current.ClaimedBy != nil {
		return current, ErrAlreadyClaimed
	}
	return current, ErrStaleStatus
}

func (r *ItemRepo) ResolveTx(ctx context.Context, tx pgx.Tx, p ResolveParams) (model.ReviewItem, error) {
	row := tx.QueryRow(ctx, `
UPDATE review_items
SET
	status = $4,
	processed_by = $3,
	processed_at = NOW(),
	resolution_reason = $5,
	claimed_by = NULL,
	claimed_at = NULL,
	updated_at = NOW()
WHERE id = $1 AND status = $2 AND claimed_by = $3
RETURNING `+itemColumns, p.ItemID, p.From, p.ReviewerID, p.To, p.Reason)

	return classifyConditional(ctx, tx, row, p.ItemID, "resolve review item")
}

// EscalateTx moves the item to escalated while keeping the claim with
// its current holder.
func (r *ItemRepo) EscalateTx(ctx context.Context, tx pgx.Tx, itemID uuid.UUID, from enums.ReviewStatus) (model.ReviewItem, error) {
	row := tx.QueryRow(ctx, `
UPDATE review_items
SET status = 'escalated', updated_at = NOW()
WHERE id = $1 AND status = $2 AND claimed_by IS NOT NULL
RETURNING `+itemColumns, itemID, from)

	return classifyConditional(ctx, tx, row, itemID, "escalate review item")
}

// ReassignTx clears the claim and returns the item to the pending
// pool. The CAS on the observed status makes a late approve on a
// reassigned item fail instead of overwriting it.
func (r *ItemRepo) ReassignTx(ctx context.Context, tx pgx.Tx, itemID uuid.UUID, from enums.ReviewStatus) (model.ReviewItem, error) {
	row := tx.QueryRow(ctx, `
UPDATE review_items
SET status = 'pending', claimed_by = NULL, claimed_at = NULL, updated_at = NOW()
WHERE id = $1 AND status = $2
RETURNING `+itemColumns, itemID, from)

	return classifyConditional(ctx, tx, row, itemID, "reassign review item")
}

func (r *ItemRepo) ReleaseTx(ctx context.Context, tx pgx.Tx, itemID uuid.UUID, reviewerID string) (model.ReviewItem, error) {
	row := tx.QueryRow(ctx, `
UPDATE review_items
SET status = 'pending', claimed_by = NULL, claimed_at = NULL, updated_at = NOW()
WHERE id = $1 AND status = 'in_progress' AND claimed_by = $2
RETURNING `+itemColumns, itemID, reviewerID)

	return classifyConditional(ctx, tx, row, itemID, "release review item")
}

// SubmitTx promotes an identity submission from basic to pending once
// the profile is complete.
func (r *ItemRepo) SubmitTx(ctx context.Context, tx pgx.Tx, itemID uuid.UUID) (model.ReviewItem, error) {
	row := tx.QueryRow(ctx, `
UPDATE review_items
SET status = 'pending', updated_at = NOW()
WHERE id = $1 AND status = 'basic'
RETURNING `+itemColumns, itemID)

	return classifyConditional(ctx, tx, row, itemID, "submit review item")
}

// PurgeTx removes the item row and returns the evidence keys so the
// caller can delete the stored objects. The audit trail keeps its
// entries for the purged id.
func (r *ItemRepo) PurgeTx(ctx context.Context, tx pgx.Tx, itemID uuid.UUID) (model.ReviewItem, error) {
	row := tx.QueryRow(ctx, `
DELETE FROM review_items
WHERE id = $1
RETURNING `+itemColumns, itemID)

	item, err := scanItem(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.ReviewItem{}, ErrItemNotFound
		}
		return model.ReviewItem{}, fmt.Errorf("purge review item: %w", err)
	}
	return item, nil
}

// ListClaimsOlderThan returns items whose live claim predates the
// cutoff. The result is advisory: nothing expires a claim, reviewers
// and managers act on the report themselves.
func (r *ItemRepo) ListClaimsOlderThan(ctx context.Context, cutoff time.Time) ([]model.ReviewItem, error) {
	if r.pool == nil {
		return nil, fmt.Errorf("postgres pool is nil")
	}

	rows, err := r.pool.Query(ctx, `
SELECT `+itemColumns+`
FROM review_items
WHERE claimed_by IS NOT NULL AND claimed_at < $1
ORDER BY claimed_at ASC, id ASC
`, cutoff)
	if err != nil {
		return nil, fmt.Errorf("list stale claims: %w", err)
	}
	defer rows.Close()

	var items []model.ReviewItem
	for rows.Next() {
		item, scanErr := scanItem(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("scan stale claim row: %w", scanErr)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate stale claim rows: %w", err)
	}

	return items, nil
}

func (r *ItemRepo) InsertClaimTx(ctx context.Context, tx pgx.Tx, itemID uuid.UUID, reviewerID string) error {
	if _, err := tx.Exec(ctx, `
INSERT INTO review_claims (item_id, reviewer_id, claimed_at)
VALUES ($1, $2, NOW())
`, itemID, reviewerID); err != nil {
		return fmt.Errorf("insert claim row: %w", err)
	}
	return nil
}

// ReleaseClaimTx marks the live claim row released. Claim rows are
// never deleted.
func (r *ItemRepo) ReleaseClaimTx(ctx context.Context, tx pgx.Tx, itemID uuid.UUID) error {
	if _, err := tx.Exec(ctx, `
UPDATE review_claims
SET released_at = NOW()
WHERE item_id = $1 AND released_at IS NULL
`, itemID); err != nil {
		return fmt.Errorf("release claim row: %w", err)
	}
	return nil
}

type rowQuerier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func getItem(ctx context.Context, q rowQuerier, itemID uuid.UUID) (model.ReviewItem, error) {
	row := q.QueryRow(ctx, `
SELECT `+itemColumns+`
FROM review_items
WHERE id = $1
`, itemID)

	item, err := scanItem(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.ReviewItem{}, ErrItemNotFound
		}
		return model.ReviewItem{}, fmt.Errorf("get review item: %w", err)
	}
	return item, nil
}

// classifyConditional turns an empty conditional-update result into
// the precise sentinel: missing row or stale status.
func classifyConditional(ctx context.Context, tx pgx.Tx, row pgx.Row, itemID uuid.UUID, op string) (model.ReviewItem, error) {
	item, err := scanItem(row)
	if err == nil {
		return item, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return model.ReviewItem{}, fmt.Errorf("%s: %w", op, err)
	}

	current, getErr := getItem(ctx, tx, itemID)
	if getErr != nil {
		return model.ReviewItem{}, getErr
	}
	return current, ErrStaleStatus
}

func scanItem(row pgx.Row) (model.ReviewItem, error) {
	var item model.ReviewItem
	err := row.Scan(
		&item.ID,
		&item.ItemType,
		&item.SubjectID,
		&item.Status,
		&item.ClaimedBy,
		&item.ClaimedAt,
		&item.ProcessedBy,
		&item.ProcessedAt,
		&item.ResolutionReason,
		&item.EvidenceKeys,
		&item.CreatedAt,
		&item.UpdatedAt,
	)
	if err != nil {
		return model.ReviewItem{}, err
	}
	return item, nil
}
