package resolution

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/ivanholub/giveline/backend/internal/domain/enums"
	"github.com/ivanholub/giveline/backend/internal/domain/model"
)

// LedgerClient credits a released transaction report back to the
// creator's balance on the external ledger service.
type LedgerClient interface {
	CreditRelease(ctx context.Context, idempotencyKey, subjectID string) error
}

// DomainEffects wires decisions to the rest of the platform. Campaign
// approvals flip the campaign live inside the decision transaction;
// approved transaction reports credit the ledger after commit, keyed
// by item id so a retried call cannot double-credit.
type DomainEffects struct {
	ledger LedgerClient
	log    *zap.Logger
}

func NewDomainEffects(ledger LedgerClient, log *zap.Logger) *DomainEffects {
	if log == nil {
		log = zap.NewNop()
	}
	return &DomainEffects{ledger: ledger, log: log}
}

func (e *DomainEffects) ApplyInTx(ctx context.Context, tx pgx.Tx, item model.ReviewItem, action enums.AuditAction) error {
	if item.ItemType != enums.ItemTypeCampaign {
		return nil
	}

	var campaignStatus string
	switch action {
	case enums.AuditActionApprove:
		campaignStatus = "live"
	case enums.AuditActionReject:
		campaignStatus = "declined"
	default:
		return nil
	}

	if _, err := tx.Exec(ctx, `
UPDATE campaigns
SET review_status = $2, reviewed_at = NOW()
WHERE id = $1
`, item.SubjectID, campaignStatus); err != nil {
		return fmt.Errorf("update campaign review status: %w", err)
	}
	return nil
}

func (e *DomainEffects) ApplyPostCommit(ctx context.Context, item model.ReviewItem, action enums.AuditAction) error {
	if item.ItemType != enums.ItemTypeTransactionReport || action != enums.AuditActionApprove {
		return nil
	}
	if e.ledger == nil {
		e.log.Warn("ledger client not configured, skipping balance credit",
			zap.String("item_id", item.ID.String()),
		)
		return nil
	}

	if err := e.ledger.CreditRelease(ctx, item.ID.String(), item.SubjectID); err != nil {
		return fmt.Errorf("credit release for transaction report: %w", err)
	}
	return nil
}
