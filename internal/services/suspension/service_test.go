package suspension

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
	"github.com/ivanholub/giveline/backend/internal/services/auth"
)

type fakeItemStore struct {
	item     model.ReviewItem
	released int
}

func (f *fakeItemStore) GetBySubject(_ context.Context, itemType enums.ItemType, subjectID string) (model.ReviewItem, error) {
	if f.item.ItemType != itemType || f.item.SubjectID != subjectID {
		return model.ReviewItem{}, postgres.ErrItemNotFound
	}
	return f.item, nil
}

func (f *fakeItemStore) ResolveTx(_ context.Context, _ pgx.Tx, p postgres.ResolveParams) (model.ReviewItem, error) {
	if f.item.ID != p.ItemID {
		return model.ReviewItem{}, postgres.ErrItemNotFound
	}
	if f.item.Status != p.From || !f.item.HeldBy(p.ReviewerID) {
		return f.item, postgres.ErrStaleStatus
	}

	now := time.Now()
	f.item.Status = p.To
	f.item.ProcessedBy = &p.ReviewerID
	f.item.ProcessedAt = &now
	f.item.ResolutionReason = &p.Reason
	f.item.ClaimedBy = nil
	f.item.ClaimedAt = nil
	return f.item, nil
}

func (f *fakeItemStore) ReassignTx(_ context.Context, _ pgx.Tx, itemID uuid.UUID, from enums.ReviewStatus) (model.ReviewItem, error) {
	if f.item.ID != itemID {
		return model.ReviewItem{}, postgres.ErrItemNotFound
	}
	if f.item.Status != from {
		return f.item, postgres.ErrStaleStatus
	}
	f.item.Status = enums.StatusPending
	f.item.ClaimedBy = nil
	f.item.ClaimedAt = nil
	return f.item, nil
}

func (f *fakeItemStore) ReleaseClaimTx(_ context.Context, _ pgx.Tx, _ uuid.UUID) error {
	f.released++
	return nil
}

type fakeAuditStore struct {
	entries []model.AuditEntry
}

func (f *fakeAuditStore) AppendTx(_ context.Context, _ pgx.Tx, entry model.AuditEntry) error {
	f.entries = append(f.entries, entry)
	return nil
}

type fakeAccountStore struct {
	cleared []string
}

func (f *fakeAccountStore) ClearSuspensionTx(_ context.Context, _ pgx.Tx, userID string) error {
	f.cleared = append(f.cleared, userID)
	return nil
}

func passthroughTx(ctx context.Context, fn func(context.Context, pgx.Tx) error) error {
	return fn(ctx, nil)
}

func heldCase(userID, reviewerID string) model.ReviewItem {
	now := time.Now()
	return model.ReviewItem{
		ID:        uuid.New(),
		ItemType:  enums.ItemTypeSuspendedAccount,
		SubjectID: userID,
		Status:    enums.StatusInProgress,
		ClaimedBy: &reviewerID,
		ClaimedAt: &now,
		CreatedAt: now,
	}
}

func TestReactivateHeldCase(t *testing.T) {
	items := &fakeItemStore{item: heldCase("user-1", "rev-1")}
	audit := &fakeAuditStore{}
	accounts := &fakeAccountStore{}
	svc := NewService(items, audit, accounts, passthroughTx, nil)

	got, err := svc.Reactivate(context.Background(), "user-1", auth.Identity{ReviewerID: "rev-1"}, "appeal accepted")
	if err != nil {
		t.Fatalf("Reactivate: %v", err)
	}
	if got.Status != enums.StatusReactivated {
		t.Fatalf("expected reactivated, got %q", got.Status)
	}
	if got.ClaimedBy != nil {
		t.Fatal("expected claim cleared")
	}
	if items.released != 1 {
		t.Fatalf("expected claim row released, got %d", items.released)
	}
	if len(accounts.cleared) != 1 || accounts.cleared[0] != "user-1" {
		t.Fatalf("expected suspension flag cleared for user-1, got %v", accounts.cleared)
	}
	if len(audit.entries) != 1 || audit.entries[0].Action != enums.AuditActionReactivate {
		t.Fatalf("expected REACTIVATE audit entry, got %+v", audit.entries)
	}
}

func TestReactivateIsIdempotent(t *testing.T) {
	c := heldCase("user-1", "rev-1")
	c.Status = enums.StatusReactivated
	c.ClaimedBy = nil
	c.ClaimedAt = nil
	items := &fakeItemStore{item: c}
	audit := &fakeAuditStore{}
	accounts := &fakeAccountStore{}
	svc := NewService(items, audit, accounts, passthroughTx, nil)

	got, err := svc.Reactivate(context.Background(), "user-1", auth.Identity{ReviewerID: "rev-2"}, "")
	if err != nil {
		t.Fatalf("Reactivate on reactivated case must be a no-op success, got %v", err)
	}
	if got.Status != enums.StatusReactivated {
		t.Fatalf("expected reactivated, got %q", got.Status)
	}
	if len(audit.entries) != 0 {
		t.Fatalf("no-op reactivation must not write audit entries, got %d", len(audit.entries))
	}
	if len(accounts.cleared) != 0 {
		t.Fatal("no-op reactivation must not touch the account")
	}
}

func TestReactivateUnclaimedCase(t *testing.T) {
	c := heldCase("user-1", "rev-1")
	c.Status = enums.StatusPending
	c.ClaimedBy = nil
	c.ClaimedAt = nil
	svc := NewService(&fakeItemStore{item: c}, &fakeAuditStore{}, &fakeAccountStore{}, passthroughTx, nil)

	if _, err := svc.Reactivate(context.Background(), "user-1", auth.Identity{ReviewerID: "rev-1"}, ""); !errors.Is(err, rules.ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}
}

func TestReactivateByNonHolder(t *testing.T) {
	svc := NewService(&fakeItemStore{item: heldCase("user-1", "rev-1")}, &fakeAuditStore{}, &fakeAccountStore{}, passthroughTx, nil)

	if _, err := svc.Reactivate(context.Background(), "user-1", auth.Identity{ReviewerID: "rev-2"}, ""); !errors.Is(err, rules.ErrNotHolder) {
		t.Fatalf("expected ErrNotHolder, got %v", err)
	}
}

func TestReactivateUnknownUser(t *testing.T) {
	svc := NewService(&fakeItemStore{item: heldCase("user-1", "rev-1")}, &fakeAuditStore{}, &fakeAccountStore{}, passthroughTx, nil)

	if _, err := svc.Reactivate(context.Background(), "user-9", auth.Identity{ReviewerID: "rev-1"}, ""); !errors.Is(err, ErrCaseNotFound) {
		t.Fatalf("expected ErrCaseNotFound, got %v", err)
	}
}

func TestReassignReturnsCaseToPool(t *testing.T) {
	items := &fakeItemStore{item: heldCase("user-1", "rev-1")}
	audit := &fakeAuditStore{}
	svc := NewService(items, audit, &fakeAccountStore{}, passthroughTx, nil)

	got, err := svc.Reassign(context.Background(), "user-1", auth.Identity{ReviewerID: "mgr-1", Role: enums.RoleManager}, "handing off")
	if err != nil {
		t.Fatalf("Reassign: %v", err)
	}
	if got.Status != enums.StatusPending {
		t.Fatalf("expected pending, got %q", got.Status)
	}
	if got.ClaimedBy != nil {
		t.Fatal("expected claim cleared")
	}
	if len(audit.entries) != 1 || audit.entries[0].Action != enums.AuditActionReassign {
		t.Fatalf("expected REASSIGN audit entry, got %+v", audit.entries)
	}
}

func TestReassignForeignCaseNeedsManager(t *testing.T) {
	svc := NewService(&fakeItemStore{item: heldCase("user-1", "rev-1")}, &fakeAuditStore{}, &fakeAccountStore{}, passthroughTx, nil)

	if _, err := svc.Reassign(context.Background(), "user-1", auth.Identity{ReviewerID: "rev-2", Role: enums.RoleSupport}, ""); !errors.Is(err, rules.ErrNotAuthorized) {
		t.Fatalf("expected ErrNotAuthorized, got %v", err)
	}
}
