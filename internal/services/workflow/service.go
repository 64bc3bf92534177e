package workflow

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
)

var (
	ErrItemNotFound   = postgres.ErrItemNotFound
	ErrUnknownType    = errors.New("unknown review item type")
	ErrMissingSubject = errors.New("subject id is required")
)

type ItemStore interface {
	Create(ctx context.Context, itemType enums.ItemType, subjectID string, status enums.ReviewStatus, evidenceKeys []string) (model.ReviewItem, error)
	GetByID(ctx context.Context, itemID uuid.UUID) (model.ReviewItem, error)
	GetBySubject(ctx context.Context, itemType enums.ItemType, subjectID string) (model.ReviewItem, error)
	List(ctx context.Context, filter postgres.ListFilter) ([]model.ReviewItem, error)
	CountPendingByType(ctx context.Context) (model.QueueCounts, error)
	SubmitTx(ctx context.Context, tx pgx.Tx, itemID uuid.UUID) (model.ReviewItem, error)
}

type AuditStore interface {
	ListForItem(ctx context.Context, itemID uuid.UUID, limit int) ([]model.AuditEntry, error)
}

type TxFunc func(ctx context.Context, fn func(context.Context, pgx.Tx) error) error

// Service is the read and intake side of the review queue: items
// enter it from the platform, reviewers browse it in priority order.
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

type IntakeParams struct {
	ItemType     enums.ItemType
	SubjectID    string
	EvidenceKeys []string
	// ProfileComplete gates identity submissions: incomplete profiles
	// enter as basic and only surface in the queue after Submit.
	ProfileComplete bool
}

// Intake registers a new unit of review work.
func (s *Service) Intake(ctx context.Context, p IntakeParams) (model.ReviewItem, error) {
	if !p.ItemType.Valid() {
		return model.ReviewItem{}, ErrUnknownType
	}
	if strings.TrimSpace(p.SubjectID) == "" {
		return model.ReviewItem{}, ErrMissingSubject
	}

	status := enums.StatusPending
	if p.ItemType == enums.ItemTypeIdentitySubmission && !p.ProfileComplete {
		status = enums.StatusBasic
	}

	item, err := s.items.Create(ctx, p.ItemType, p.SubjectID, status, p.EvidenceKeys)
	if err != nil {
		return model.ReviewItem{}, err
	}

	s.log.Info("review item enqueued",
		zap.String("item_id", item.ID.String()),
		zap.String("item_type", string(item.ItemType)),
		zap.String("status", string(item.Status)),
	)
	return item, nil
}

// Submit promotes a basic identity submission into the pending queue
// once the subject's profile is complete. The platform calls this, not
// a reviewer, so no audit entry is written.
func (s *Service) Submit(ctx context.Context, itemID uuid.UUID) (model.ReviewItem, error) {
	var submitted model.ReviewItem

	err := s.inTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		item, err := s.items.SubmitTx(ctx, tx, itemID)
		if errors.Is(err, postgres.ErrStaleStatus) {
			return rules.ErrInvalidTransition
		}
		if err != nil {
			return err
		}
		submitted = item
		return nil
	})
	if err != nil {
		return model.ReviewItem{}, err
	}

	return submitted, nil
}

func (s *Service) Get(ctx context.Context, itemID uuid.UUID) (model.ReviewItem, error) {
	return s.items.GetByID(ctx, itemID)
}

// List returns queue items in priority order, optionally narrowed to
// one item type and a status set.
func (s *Service) List(ctx context.Context, filter postgres.ListFilter) ([]model.ReviewItem, error) {
	if filter.ItemType != "" && !filter.ItemType.Valid() {
		return nil, ErrUnknownType
	}
	return s.items.List(ctx, filter)
}

func (s *Service) QueueCounts(ctx context.Context) (model.QueueCounts, error) {
	return s.items.CountPendingByType(ctx)
}

// History returns the audit trail for an item, oldest first. Entries
// outlive the item itself, so a purged id still answers.
func (s *Service) History(ctx context.Context, itemID uuid.UUID, limit int) ([]model.AuditEntry, error) {
	return s.audit.ListForItem(ctx, itemID, limit)
}
