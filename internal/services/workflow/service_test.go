package workflow

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/ivanholub/giveline/backend/internal/domain/enums"
	"github.com/ivanholub/giveline/backend/internal/domain/model"
	"github.com/ivanholub/giveline/backend/internal/domain/rules"
	"github.com/ivanholub/giveline/backend/internal/repo/postgres"
)

type fakeItemStore struct {
	byID map[uuid.UUID]model.ReviewItem
}

func newFakeItemStore() *fakeItemStore {
	return &fakeItemStore{byID: make(map[uuid.UUID]model.ReviewItem)}
}

func (f *fakeItemStore) Create(_ context.Context, itemType enums.ItemType, subjectID string, status enums.ReviewStatus, evidenceKeys []string) (model.ReviewItem, error) {
	item := model.ReviewItem{
		ID:           uuid.New(),
		ItemType:     itemType,
		SubjectID:    subjectID,
		Status:       status,
		EvidenceKeys: evidenceKeys,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
	f.byID[item.ID] = item
	return item, nil
}

func (f *fakeItemStore) GetByID(_ context.Context, itemID uuid.UUID) (model.ReviewItem, error) {
	item, ok := f.byID[itemID]
	if !ok {
		return model.ReviewItem{}, postgres.ErrItemNotFound
	}
	return item, nil
}

func (f *fakeItemStore) GetBySubject(_ context.Context, itemType enums.ItemType, subjectID string) (model.ReviewItem, error) {
	for _, item := range f.byID {
		if item.ItemType == itemType && item.SubjectID == subjectID {
			return item, nil
		}
	}
	return model.ReviewItem{}, postgres.ErrItemNotFound
}

func (f *fakeItemStore) List(_ context.Context, filter postgres.ListFilter) ([]model.ReviewItem, error) {
	items := make([]model.ReviewItem, 0, len(f.byID))
	for _, item := range f.byID {
		if filter.ItemType != "" && item.ItemType != filter.ItemType {
			continue
		}
		items = append(items, item)
	}
	rules.SortQueue(items)
	return items, nil
}

func (f *fakeItemStore) CountPendingByType(_ context.Context) (model.QueueCounts, error) {
	counts := model.QueueCounts{ByType: make(map[string]int64)}
	for _, item := range f.byID {
		if item.Status == enums.StatusPending {
			counts.ByType[string(item.ItemType)]++
			counts.Total++
		}
	}
	return counts, nil
}

func (f *fakeItemStore) SubmitTx(_ context.Context, _ pgx.Tx, itemID uuid.UUID) (model.ReviewItem, error) {
	item, ok := f.byID[itemID]
	if !ok {
		return model.ReviewItem{}, postgres.ErrItemNotFound
	}
	if item.Status != enums.StatusBasic {
		return item, postgres.ErrStaleStatus
	}
	item.Status = enums.StatusPending
	f.byID[itemID] = item
	return item, nil
}

type fakeAuditStore struct {
	entries []model.AuditEntry
}

func (f *fakeAuditStore) ListForItem(_ context.Context, itemID uuid.UUID, _ int) ([]model.AuditEntry, error) {
	out := make([]model.AuditEntry, 0, len(f.entries))
	for _, e := range f.entries {
		if e.ItemID == itemID {
			out = append(out, e)
		}
	}
	return out, nil
}

func passthroughTx(ctx context.Context, fn func(context.Context, pgx.Tx) error) error {
	return fn(ctx, nil)
}

func newTestService(items *fakeItemStore, audit *fakeAuditStore) *Service {
	return NewService(items, audit, passthroughTx, nil)
}

func TestIntakeDefaultsToPending(t *testing.T) {
	svc := newTestService(newFakeItemStore(), &fakeAuditStore{})

	item, err := svc.Intake(context.Background(), IntakeParams{
		ItemType:  enums.ItemTypeCampaignReport,
		SubjectID: "campaign-1",
	})
	if err != nil {
		t.Fatalf("Intake: %v", err)
	}
	if item.Status != enums.StatusPending {
		t.Fatalf("expected pending, got %q", item.Status)
	}
}

func TestIntakeIncompleteIdentityEntersBasic(t *testing.T) {
	svc := newTestService(newFakeItemStore(), &fakeAuditStore{})

	item, err := svc.Intake(context.Background(), IntakeParams{
		ItemType:  enums.ItemTypeIdentitySubmission,
		SubjectID: "user-1",
	})
	if err != nil {
		t.Fatalf("Intake: %v", err)
	}
	if item.Status != enums.StatusBasic {
		t.Fatalf("expected basic, got %q", item.Status)
	}

	complete, err := svc.Intake(context.Background(), IntakeParams{
		ItemType:        enums.ItemTypeIdentitySubmission,
		SubjectID:       "user-2",
		ProfileComplete: true,
	})
	if err != nil {
		t.Fatalf("Intake: %v", err)
	}
	if complete.Status != enums.StatusPending {
		t.Fatalf("expected pending, got %q", complete.Status)
	}
}

func TestIntakeValidation(t *testing.T) {
	svc := newTestService(newFakeItemStore(), &fakeAuditStore{})

	if _, err := svc.Intake(context.Background(), IntakeParams{ItemType: "mystery", SubjectID: "x"}); !errors.Is(err, ErrUnknownType) {
		t.Fatalf("expected ErrUnknownType, got %v", err)
	}
	if _, err := svc.Intake(context.Background(), IntakeParams{ItemType: enums.ItemTypeCampaign, SubjectID: "  "}); !errors.Is(err, ErrMissingSubject) {
		t.Fatalf("expected ErrMissingSubject, got %v", err)
	}
}

func TestSubmitPromotesBasicOnly(t *testing.T) {
	items := newFakeItemStore()
	svc := newTestService(items, &fakeAuditStore{})

	item, err := svc.Intake(context.Background(), IntakeParams{
		ItemType:  enums.ItemTypeIdentitySubmission,
		SubjectID: "user-1",
	})
	if err != nil {
		t.Fatalf("Intake: %v", err)
	}

	promoted, err := svc.Submit(context.Background(), item.ID)
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if promoted.Status != enums.StatusPending {
		t.Fatalf("expected pending, got %q", promoted.Status)
	}

	if _, err := svc.Submit(context.Background(), item.ID); !errors.Is(err, rules.ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition on double submit, got %v", err)
	}
}

func TestListOrdersByPriority(t *testing.T) {
	items := newFakeItemStore()
	svc := newTestService(items, &fakeAuditStore{})
	base := time.Now()

	statuses := []enums.ReviewStatus{
		enums.StatusApproved,
		enums.StatusPending,
		enums.StatusEscalated,
	}
	for i, status := range statuses {
		item := model.ReviewItem{
			ID:        uuid.New(),
			ItemType:  enums.ItemTypeSupportTicket,
			SubjectID: "t",
			Status:    status,
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}
		items.byID[item.ID] = item
	}

	got, err := svc.List(context.Background(), postgres.ListFilter{})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 items, got %d", len(got))
	}
	want := []enums.ReviewStatus{enums.StatusPending, enums.StatusEscalated, enums.StatusApproved}
	for i, status := range want {
		if got[i].Status != status {
			t.Fatalf("position %d: expected %q, got %q", i, status, got[i].Status)
		}
	}
}

func TestQueueCounts(t *testing.T) {
	items := newFakeItemStore()
	svc := newTestService(items, &fakeAuditStore{})

	for i := 0; i < 3; i++ {
		if _, err := svc.Intake(context.Background(), IntakeParams{ItemType: enums.ItemTypeCampaign, SubjectID: "c"}); err != nil {
			t.Fatalf("Intake: %v", err)
		}
	}
	if _, err := svc.Intake(context.Background(), IntakeParams{ItemType: enums.ItemTypeSupportTicket, SubjectID: "t"}); err != nil {
		t.Fatalf("Intake: %v", err)
	}

	counts, err := svc.QueueCounts(context.Background())
	if err != nil {
		t.Fatalf("QueueCounts: %v", err)
	}
	if counts.Total != 4 {
		t.Fatalf("expected total 4, got %d", counts.Total)
	}
	if counts.ByType["campaign"] != 3 {
		t.Fatalf("expected 3 campaigns, got %d", counts.ByType["campaign"])
	}
}

func TestHistoryAnswersForPurgedItem(t *testing.T) {
	itemID := uuid.New()
	audit := &fakeAuditStore{entries: []model.AuditEntry{
		{ItemID: itemID, ItemType: enums.ItemTypeCampaign, Action: enums.AuditActionApprove},
	}}
	svc := newTestService(newFakeItemStore(), audit)

	entries, err := svc.History(context.Background(), itemID, 10)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(entries) != 1 || entries[0].Action != enums.AuditActionApprove {
		t.Fatalf("unexpected history %+v", entries)
	}
}
