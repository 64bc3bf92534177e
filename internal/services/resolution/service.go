package resolution

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/ivanholub/giveline/backend/internal/domain/enums"
	"github.com/ivanholub/giveline/backend/internal/domain/model"
	"github.com/ivanholub/giveline/backend/internal/domain/rules"
	"github.com/ivanholub/giveline/backend/internal/repo/postgres"
	"github.com/ivanholub/giveline/backend/internal/services/auth"
)

var ErrItemNotFound = postgres.ErrItemNotFound

type ItemStore interface {
	GetByID(ctx context.Context, itemID uuid.UUID) (model.ReviewItem, error)
	ResolveTx(ctx context.Context, tx pgx.Tx, p postgres.ResolveParams) (model.ReviewItem, error)
	EscalateTx(ctx context.Context, tx pgx.Tx, itemID uuid.UUID, from enums.ReviewStatus) (model.ReviewItem, error)
	ReassignTx(ctx context.Context, tx pgx.Tx, itemID uuid.UUID, from enums.ReviewStatus) (model.ReviewItem, error)
	ClaimTx(ctx context.Context, tx pgx.Tx, itemID uuid.UUID, reviewerID string) (model.ReviewItem, error)
	InsertClaimTx(ctx context.Context, tx pgx.Tx, itemID uuid.UUID, reviewerID string) error
	ReleaseClaimTx(ctx context.Context, tx pgx.Tx, itemID uuid.UUID) error
	PurgeTx(ctx context.Context, tx pgx.Tx, itemID uuid.UUID) (model.ReviewItem, error)
}

type AuditStore interface {
	AppendTx(ctx context.Context, tx pgx.Tx, entry model.AuditEntry) error
}

// Effects applies the domain consequences of a terminal decision.
// InTx effects commit or roll back with the status change; PostCommit
// effects run after, and their failure never undoes the decision.
type Effects interface {
	ApplyInTx(ctx context.Context, tx pgx.Tx, item model.ReviewItem, action enums.AuditAction) error
	ApplyPostCommit(ctx context.Context, item model.ReviewItem, action enums.AuditAction) error
}

// Notifier announces recorded decisions. Implementations must not
// block; failures are their own problem.
type Notifier interface {
	ResolutionRecorded(item model.ReviewItem, action enums.AuditAction, actorID string)
}

// EvidenceStore deletes stored evidence objects after a purge.
type EvidenceStore interface {
	Delete(ctx context.Context, key string) error
}

type TxFunc func(ctx context.Context, fn func(context.Context, pgx.Tx) error) error

// Service applies reason-coded decisions to claimed items. All writes
// are conditional on the status observed before the transaction, so a
// decision racing a reassign loses cleanly.
type Service struct {
	items    ItemStore
	audit    AuditStore
	effects  Effects
	notifier Notifier
	evidence EvidenceStore
	inTx     TxFunc
	log      *zap.Logger
}

func NewService(items ItemStore, audit AuditStore, effects Effects, notifier Notifier, evidence EvidenceStore, inTx TxFunc, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		items:    items,
		audit:    audit,
		effects:  effects,
		notifier: notifier,
		evidence: evidence,
		inTx:     inTx,
		log:      log,
	}
}

func (s *Service) Approve(ctx context.Context, itemID uuid.UUID, ident auth.Identity, reason string) (model.ReviewItem, error) {
	return s.resolve(ctx, itemID, ident, reason, rules.EventApprove, enums.AuditActionApprove)
}

func (s *Service) Reject(ctx context.Context, itemID uuid.UUID, ident auth.Identity, reason string) (model.ReviewItem, error) {
	return s.resolve(ctx, itemID, ident, reason, rules.EventReject, enums.AuditActionReject)
}

// resolve is the shared approve/reject path. The transition table is
// consulted on the observed status before the holder check, so an
// unclaimed or already-terminal item reports InvalidTransition rather
// than NotHolder.
func (s *Service) resolve(ctx context.Context, itemID uuid.UUID, ident auth.Identity, reason string, event rules.TransitionEvent, action enums.AuditAction) (model.ReviewItem, error) {
	if strings.TrimSpace(reason) == "" {
		return model.ReviewItem{}, rules.ErrReasonRequired
	}

	item, err := s.items.GetByID(ctx, itemID)
	if err != nil {
		return model.ReviewItem{}, err
	}
	next, err := rules.NextStatus(item.ItemType, item.Status, event)
	if err != nil {
		return model.ReviewItem{}, err
	}
	if !item.HeldBy(ident.ReviewerID) {
		return model.ReviewItem{}, rules.ErrNotHolder
	}

	var resolved model.ReviewItem
	err = s.inTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		updated, err := s.items.ResolveTx(ctx, tx, postgres.ResolveParams{
			ItemID:     itemID,
			From:       item.Status,
			To:         next,
			ReviewerID: ident.ReviewerID,
			Reason:     reason,
		})
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
			ItemID:     updated.ID,
			ItemType:   updated.ItemType,
			ActorID:    ident.ReviewerID,
			Action:     action,
			FromStatus: item.Status,
			ToStatus:   updated.Status,
			Reason:     reason,
		}); err != nil {
			return err
		}
		if s.effects != nil {
			if err := s.effects.ApplyInTx(ctx, tx, updated, action); err != nil {
				return err
			}
		}

		resolved = updated
		return nil
	})
	if err != nil {
		return model.ReviewItem{}, err
	}

	s.log.Info("review item resolved",
		zap.String("item_id", itemID.String()),
		zap.String("action", string(action)),
		zap.String("reviewer_id", ident.ReviewerID),
	)
	s.notify(resolved, action, ident.ReviewerID)

	// The decision is durable at this point. A failed post-commit
	// effect is surfaced distinctly so operators can reconcile it
	// without re-running the resolution.
	if s.effects != nil {
		if err := s.effects.ApplyPostCommit(ctx, resolved, action); err != nil {
			s.log.Error("post-commit effect failed",
				zap.String("item_id", itemID.String()),
				zap.String("action", string(action)),
				zap.Error(err),
			)
			return resolved, rules.ErrDomainEffectFailed
		}
	}

	return resolved, nil
}

// Escalate flags a held item for supervisory review. Ownership does
// not change: the original holder keeps the claim and may still
// resolve. The holder, a manager, or an administrator may escalate.
func (s *Service) Escalate(ctx context.Context, itemID uuid.UUID, ident auth.Identity, reason string) (model.ReviewItem, error) {
	if strings.TrimSpace(reason) == "" {
		return model.ReviewItem{}, rules.ErrReasonRequired
	}

	item, err := s.items.GetByID(ctx, itemID)
	if err != nil {
		return model.ReviewItem{}, err
	}
	if _, err := rules.NextStatus(item.ItemType, item.Status, rules.EventEscalate); err != nil {
		return model.ReviewItem{}, err
	}
	if !item.HeldBy(ident.ReviewerID) && !ident.Role.CanReassign() {
		return model.ReviewItem{}, rules.ErrNotHolder
	}

	var escalated model.ReviewItem
	err = s.inTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		updated, err := s.items.EscalateTx(ctx, tx, itemID, item.Status)
		if errors.Is(err, postgres.ErrStaleStatus) {
			return rules.ErrInvalidTransition
		}
		if err != nil {
			return err
		}

		if err := s.audit.AppendTx(ctx, tx, model.AuditEntry{
			ItemID:     updated.ID,
			ItemType:   updated.ItemType,
			ActorID:    ident.ReviewerID,
			Action:     enums.AuditActionEscalate,
			FromStatus: item.Status,
			ToStatus:   updated.Status,
			Reason:     reason,
		}); err != nil {
			return err
		}

		escalated = updated
		return nil
	})
	if err != nil {
		return model.ReviewItem{}, err
	}

	s.log.Info("review item escalated",
		zap.String("item_id", itemID.String()),
		zap.String("actor_id", ident.ReviewerID),
	)
	s.notify(escalated, enums.AuditActionEscalate, ident.ReviewerID)
	return escalated, nil
}

type ReassignParams struct {
	ItemID uuid.UUID
	Reason string
	// TargetReviewerID, when set, claims the item for that reviewer in
	// the same transaction instead of returning it to the pool.
	TargetReviewerID string
}

// Reassign clears the current claim. Anyone may hand back their own
// claim; taking over another reviewer's claim needs a manager or
// administrator.
func (s *Service) Reassign(ctx context.Context, p ReassignParams, ident auth.Identity) (model.ReviewItem, error) {
	if strings.TrimSpace(p.Reason) == "" {
		return model.ReviewItem{}, rules.ErrReasonRequired
	}

	item, err := s.items.GetByID(ctx, p.ItemID)
	if err != nil {
		return model.ReviewItem{}, err
	}
	if _, err := rules.NextStatus(item.ItemType, item.Status, rules.EventReassign); err != nil {
		return model.ReviewItem{}, err
	}
	if !item.HeldBy(ident.ReviewerID) && !ident.Role.CanReassign() {
		return model.ReviewItem{}, rules.ErrNotAuthorized
	}

	var reassigned model.ReviewItem
	err = s.inTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		updated, err := s.items.ReassignTx(ctx, tx, p.ItemID, item.Status)
		if errors.Is(err, postgres.ErrStaleStatus) {
			return rules.ErrInvalidTransition
		}
		if err != nil {
			return err
		}

		if err := s.items.ReleaseClaimTx(ctx, tx, p.ItemID); err != nil {
			return err
		}
		if err := s.audit.AppendTx(ctx, tx, model.AuditEntry{
			ItemID:     updated.ID,
			ItemType:   updated.ItemType,
			ActorID:    ident.ReviewerID,
			Action:     enums.AuditActionReassign,
			FromStatus: item.Status,
			ToStatus:   updated.Status,
			Reason:     p.Reason,
		}); err != nil {
			return err
		}

		if target := strings.TrimSpace(p.TargetReviewerID); target != "" {
			claimed, err := s.items.ClaimTx(ctx, tx, p.ItemID, target)
			if err != nil {
				return err
			}
			if err := s.items.InsertClaimTx(ctx, tx, p.ItemID, target); err != nil {
				return err
			}
			if err := s.audit.AppendTx(ctx, tx, model.AuditEntry{
				ItemID:     claimed.ID,
				ItemType:   claimed.ItemType,
				ActorID:    target,
				Action:     enums.AuditActionClaim,
				FromStatus: enums.StatusPending,
				ToStatus:   claimed.Status,
			}); err != nil {
				return err
			}
			updated = claimed
		}

		reassigned = updated
		return nil
	})
	if err != nil {
		return model.ReviewItem{}, err
	}

	s.log.Info("review item reassigned",
		zap.String("item_id", p.ItemID.String()),
		zap.String("actor_id", ident.ReviewerID),
		zap.String("target_reviewer_id", p.TargetReviewerID),
	)
	return reassigned, nil
}

// Purge removes an item and its stored evidence. Administrators only.
// The audit trail keeps every entry for the purged id, and the purge
// itself is recorded before the row goes away.
func (s *Service) Purge(ctx context.Context, itemID uuid.UUID, ident auth.Identity, reason string) error {
	if !ident.Role.CanPurge() {
		return rules.ErrNotAuthorized
	}

	var purged model.ReviewItem
	err := s.inTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		item, err := s.items.PurgeTx(ctx, tx, itemID)
		if err != nil {
			return err
		}
		if err := s.audit.AppendTx(ctx, tx, model.AuditEntry{
			ItemID:     item.ID,
			ItemType:   item.ItemType,
			ActorID:    ident.ReviewerID,
			Action:     enums.AuditActionPurge,
			FromStatus: item.Status,
			ToStatus:   item.Status,
			Reason:     reason,
		}); err != nil {
			return err
		}
		purged = item
		return nil
	})
	if err != nil {
		return err
	}

	for _, key := range purged.EvidenceKeys {
		if s.evidence == nil {
			break
		}
		if err := s.evidence.Delete(ctx, key); err != nil {
			s.log.Warn("evidence object not deleted",
				zap.String("item_id", itemID.String()),
				zap.String("key", key),
				zap.Error(err),
			)
		}
	}

	s.log.Info("review item purged",
		zap.String("item_id", itemID.String()),
		zap.String("actor_id", ident.ReviewerID),
	)
	return nil
}

func (s *Service) notify(item model.ReviewItem, action enums.AuditAction, actorID string) {
	if s.notifier == nil {
		return
	}
	s.notifier.ResolutionRecorded(item, action, actorID)
}
