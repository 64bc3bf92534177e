package claims

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/ivanholub/giveline/backend/internal/domain/enums"
	"github.com/ivanholub/giveline/backend/internal/domain/model"
	"github.com/ivanholub/giveline/backend/internal/domain/rules"
	"github.com/ivanholub/giveline/backend/internal/repo/postgres"
	"github.com/ivanholub/giveline/backend/internal/services/auth"
)

var (
	ErrAlreadyClaimed = postgres.ErrAlreadyClaimed
	ErrItemNotFound   = postgres.ErrItemNotFound
)

type ItemStore interface {
	ClaimTx(ctx context.Context, tx pgx.Tx, itemID uuid.UUID, reviewerID string) (model.ReviewItem, error)
	ReleaseTx(ctx context.Context, tx pgx.Tx, itemID uuid.UUID, reviewerID string) (model.ReviewItem, error)
	InsertClaimTx(ctx context.Context, tx pgx.Tx, itemID uuid.UUID, reviewerID string) error
	ReleaseClaimTx(ctx context.Context, tx pgx.Tx, itemID uuid.UUID) error
}

type AuditStore interface {
	AppendTx(ctx context.Context, tx pgx.Tx, entry model.AuditEntry) error
}

// TxFunc runs fn inside a database transaction.
type TxFunc func(ctx context.Context, fn func(context.Context, pgx.Tx) error) error

// Service owns claim exclusivity: taking an item off the shared queue
// and handing it back. Every state change lands in the audit log in
// the same transaction.
type Service struct {
	items ItemStore
	audit AuditStore
	inTx  TxFunc
	log   *zap.Logger
}

func NewService(items ItemStore, audit AuditStore, inTx TxFunc, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{items: items, audit: audit, inTx: inTx, log: log}
}

// Claim moves a pending item to in_progress under the caller's
// exclusive hold. Re-claiming an item the caller already holds is an
// idempotent no-op: same item back, no second claim row, no audit
// entry.
func (s *Service) Claim(ctx context.Context, itemID uuid.UUID, ident auth.Identity) (model.ReviewItem, error) {
	var claimed model.ReviewItem

	err := s.inTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		item, err := s.items.ClaimTx(ctx, tx, itemID, ident.ReviewerID)
		if errors.Is(err, postgres.ErrAlreadyHeld) {
			claimed = item
			return nil
		}
		if errors.Is(err, postgres.ErrStaleStatus) {
			return rules.ErrInvalidTransition
		}
		if err != nil {
			return err
		}

		if err := s.items.InsertClaimTx(ctx, tx, itemID, ident.ReviewerID); err != nil {
			return err
		}
		if err := s.audit.AppendTx(ctx, tx, model.AuditEntry{
			ItemID:     item.ID,
			ItemType:   item.ItemType,
			ActorID:    ident.ReviewerID,
			Action:     enums.AuditActionClaim,
			FromStatus: enums.StatusPending,
			ToStatus:   item.Status,
		}); err != nil {
			return err
		}

		claimed = item
		return nil
	})
	if err != nil {
		return model.ReviewItem{}, err
	}

	s.log.Info("review item claimed",
		zap.String("item_id", itemID.String()),
		zap.String("reviewer_id", ident.ReviewerID),
	)
	return claimed, nil
}

// Release hands a held item back to the pending pool. The current
// holder may release; managers and administrators may release another
// reviewer's hold.
func (s *Service) Release(ctx context.Context, itemID uuid.UUID, ident auth.Identity) (model.ReviewItem, error) {
	var released model.ReviewItem

	err := s.inTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		item, err := s.items.ReleaseTx(ctx, tx, itemID, ident.ReviewerID)
		if errors.Is(err, postgres.ErrStaleStatus) && item.ClaimedBy != nil && !item.HeldBy(ident.ReviewerID) {
			if !ident.Role.CanReassign() {
				return rules.ErrNotHolder
			}
			item, err = s.items.ReleaseTx(ctx, tx, itemID, *item.ClaimedBy)
		}
		if errors.Is(err, postgres.ErrStaleStatus) {
			return rules.ErrInvalidTransition
		}
		if err != nil {
			return err
		}

		if err := s.items.ReleaseClaimTx(ctx, tx, itemID); err != nil {
			return err
		}
		if err := s.audit.AppendTx(ctx, tx, model.AuditEntry{
			ItemID:     item.ID,
			ItemType:   item.ItemType,
			ActorID:    ident.ReviewerID,
			Action:     enums.AuditActionRelease,
			FromStatus: enums.StatusInProgress,
			ToStatus:   item.Status,
		}); err != nil {
			return err
		}

		released = item
		return nil
	})
	if err != nil {
		return model.ReviewItem{}, err
	}

	s.log.Info("review item released",
		zap.String("item_id", itemID.String()),
		zap.String("reviewer_id", ident.ReviewerID),
	)
	return released, nil
}
