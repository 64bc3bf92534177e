package suspension

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

var ErrCaseNotFound = errors.New("suspension case not found")

const defaultReactivateReason = "account reactivated"

type ItemStore interface {
	GetBySubject(ctx context.Context, itemType enums.ItemType, subjectID string) (model.ReviewItem, error)
	ResolveTx(ctx context.Context, tx pgx.Tx, p postgres.ResolveParams) (model.ReviewItem, error)
	ReassignTx(ctx context.Context, tx pgx.Tx, itemID uuid.UUID, from enums.ReviewStatus) (model.ReviewItem, error)
	ReleaseClaimTx(ctx context.Context, tx pgx.Tx, itemID uuid.UUID) error
}

type AuditStore interface {
	AppendTx(ctx context.Context, tx pgx.Tx, entry model.AuditEntry) error
}

// AccountStore clears the platform-side suspension flag.
type AccountStore interface {
	ClearSuspensionTx(ctx context.Context, tx pgx.Tx, userID string) error
}

type TxFunc func(ctx context.Context, fn func(context.Context, pgx.Tx) error) error

// Service is the restricted resolution flow for suspended accounts.
// Cases are addressed by the suspended user's id, not the item id,
// because that is what the admin console knows.
type Service struct {
	items    ItemStore
	audit    AuditStore
	accounts AccountStore
	inTx     TxFunc
	log      *zap.Logger
}

func NewService(items ItemStore, audit AuditStore, accounts AccountStore, inTx TxFunc, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{items: items, audit: audit, accounts: accounts, inTx: inTx, log: log}
}

// Reactivate lifts the suspension and closes the case. Reactivating an
// already-reactivated case is a no-op success with no audit entry, so
// a retried request cannot fail or double-log.
func (s *Service) Reactivate(ctx context.Context, userID string, ident auth.Identity, reason string) (model.ReviewItem, error) {
	item, err := s.caseFor(ctx, userID)
	if err != nil {
		return model.ReviewItem{}, err
	}
	if item.Status == enums.StatusReactivated {
		return item, nil
	}

	if _, err := rules.NextStatus(item.ItemType, item.Status, rules.EventReactivate); err != nil {
		return model.ReviewItem{}, err
	}
	if !item.HeldBy(ident.ReviewerID) {
		return model.ReviewItem{}, rules.ErrNotHolder
	}

	if strings.TrimSpace(reason) == "" {
		reason = defaultReactivateReason
	}

	var reactivated model.ReviewItem
	err = s.inTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		updated, err := s.items.ResolveTx(ctx, tx, postgres.ResolveParams{
			ItemID:     item.ID,
			From:       item.Status,
			To:         enums.StatusReactivated,
			ReviewerID: ident.ReviewerID,
			Reason:     reason,
		})
		if errors.Is(err, postgres.ErrStaleStatus) {
			return rules.ErrInvalidTransition
		}
		if err != nil {
			return err
		}

		if err := s.items.ReleaseClaimTx(ctx, tx, item.ID); err != nil {
			return err
		}
		if err := s.audit.AppendTx(ctx, tx, model.AuditEntry{
			ItemID:     updated.ID,
			ItemType:   updated.ItemType,
			ActorID:    ident.ReviewerID,
			Action:     enums.AuditActionReactivate,
			FromStatus: item.Status,
			ToStatus:   updated.Status,
			Reason:     reason,
		}); err != nil {
			return err
		}
		if err := s.accounts.ClearSuspensionTx(ctx, tx, userID); err != nil {
			return err
		}

		reactivated = updated
		return nil
	})
	if err != nil {
		return model.ReviewItem{}, err
	}

	s.log.Info("suspended account reactivated",
		zap.String("user_id", userID),
		zap.String("reviewer_id", ident.ReviewerID),
	)
	return reactivated, nil
}

// Reassign hands the case back to the unclaimed pool for a different
// reviewer. The holder may hand back their own case; overriding
// another reviewer's hold needs a manager or administrator.
func (s *Service) Reassign(ctx context.Context, userID string, ident auth.Identity, reason string) (model.ReviewItem, error) {
	item, err := s.caseFor(ctx, userID)
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
		updated, err := s.items.ReassignTx(ctx, tx, item.ID, item.Status)
		if errors.Is(err, postgres.ErrStaleStatus) {
			return rules.ErrInvalidTransition
		}
		if err != nil {
			return err
		}

		if err := s.items.ReleaseClaimTx(ctx, tx, item.ID); err != nil {
			return err
		}
		if err := s.audit.AppendTx(ctx, tx, model.AuditEntry{
			ItemID:     updated.ID,
			ItemType:   updated.ItemType,
			ActorID:    ident.ReviewerID,
			Action:     enums.AuditActionReassign,
			FromStatus: item.Status,
			ToStatus:   updated.Status,
			Reason:     reason,
		}); err != nil {
			return err
		}

		reassigned = updated
		return nil
	})
	if err != nil {
		return model.ReviewItem{}, err
	}

	s.log.Info("suspension case reassigned",
		zap.String("user_id", userID),
		zap.String("actor_id", ident.ReviewerID),
	)
	return reassigned, nil
}

func (s *Service) caseFor(ctx context.Context, userID string) (model.ReviewItem, error) {
	if strings.TrimSpace(userID) == "" {
		return model.ReviewItem{}, ErrCaseNotFound
	}

	item, err := s.items.GetBySubject(ctx, enums.ItemTypeSuspendedAccount, userID)
	if errors.Is(err, postgres.ErrItemNotFound) {
		return model.ReviewItem{}, ErrCaseNotFound
	}
	if err != nil {
		return model.ReviewItem{}, err
	}
	return item, nil
}
