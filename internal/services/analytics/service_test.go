package analytics

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ivanholub/giveline/backend/internal/domain/model"
)

type fakeAuditStore struct {
	rows    []model.LeaderboardRow
	counts  map[string]map[string]int64
	rowsErr error
}

func (f *fakeAuditStore) Leaderboard(_ context.Context) ([]model.LeaderboardRow, error) {
	return f.rows, f.rowsErr
}

func (f *fakeAuditStore) CountForActor(_ context.Context, actorID, group string) (int64, error) {
	return f.counts[actorID][group], nil
}

type fakeReviewerStore struct {
	names map[string]string
}

func (f *fakeReviewerStore) DisplayNames(_ context.Context, _ []string) (map[string]string, error) {
	return f.names, nil
}

type fakeCache struct {
	snapshot model.LeaderboardSnapshot
	hit      bool
	getErr   error
	sets     int
}

func (f *fakeCache) Get(_ context.Context) (model.LeaderboardSnapshot, bool, error) {
	return f.snapshot, f.hit, f.getErr
}

func (f *fakeCache) Set(_ context.Context, snapshot model.LeaderboardSnapshot, _ time.Duration) error {
	f.snapshot = snapshot
	f.sets++
	return nil
}

type fakeItemStore struct {
	counts model.QueueCounts
}

func (f *fakeItemStore) CountPendingByType(_ context.Context) (model.QueueCounts, error) {
	return f.counts, nil
}

func testTargets() []MilestoneTarget {
	return []MilestoneTarget{
		{ID: "kyc-10", Title: "10 KYC verifications", Group: GroupKYCDecision, Target: 10},
		{ID: "kyc-50", Title: "50 KYC verifications", Group: GroupKYCDecision, Target: 50},
		{ID: "reports-25", Title: "25 reports resolved", Group: GroupReportResolved, Target: 25},
	}
}

func TestLeaderboardRecomputesOnCacheMiss(t *testing.T) {
	audit := &fakeAuditStore{rows: []model.LeaderboardRow{
		{ReviewerID: "rev-1", Group: GroupKYCDecision, Count: 12},
		{ReviewerID: "rev-2", Group: GroupReportResolved, Count: 4},
	}}
	cache := &fakeCache{}
	svc := NewService(audit, &fakeReviewerStore{names: map[string]string{"rev-1": "Dana"}}, cache, nil, nil, time.Minute, nil)

	snapshot, err := svc.Leaderboard(context.Background())
	if err != nil {
		t.Fatalf("Leaderboard: %v", err)
	}
	if len(snapshot.Rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(snapshot.Rows))
	}
	if snapshot.Rows[0].ReviewerName != "Dana" {
		t.Fatalf("expected display name attached, got %q", snapshot.Rows[0].ReviewerName)
	}
	if cache.sets != 1 {
		t.Fatalf("expected snapshot cached once, got %d", cache.sets)
	}
}

func TestLeaderboardServesCachedSnapshot(t *testing.T) {
	cached := model.LeaderboardSnapshot{
		Rows:       []model.LeaderboardRow{{ReviewerID: "rev-9", Group: GroupKYCDecision, Count: 99}},
		ComputedAt: time.Now(),
	}
	audit := &fakeAuditStore{rowsErr: errors.New("must not recompute on cache hit")}
	svc := NewService(audit, &fakeReviewerStore{}, &fakeCache{snapshot: cached, hit: true}, nil, nil, time.Minute, nil)

	snapshot, err := svc.Leaderboard(context.Background())
	if err != nil {
		t.Fatalf("Leaderboard: %v", err)
	}
	if len(snapshot.Rows) != 1 || snapshot.Rows[0].ReviewerID != "rev-9" {
		t.Fatalf("expected cached rows, got %+v", snapshot.Rows)
	}
}

func TestLeaderboardFallsBackWhenCacheFails(t *testing.T) {
	audit := &fakeAuditStore{rows: []model.LeaderboardRow{{ReviewerID: "rev-1", Group: GroupKYCDecision, Count: 3}}}
	svc := NewService(audit, &fakeReviewerStore{}, &fakeCache{getErr: errors.New("redis down")}, nil, nil, time.Minute, nil)

	snapshot, err := svc.Leaderboard(context.Background())
	if err != nil {
		t.Fatalf("Leaderboard: %v", err)
	}
	if len(snapshot.Rows) != 1 {
		t.Fatalf("expected recomputed rows, got %+v", snapshot.Rows)
	}
}

func TestLeaderboardToleratesZeroData(t *testing.T) {
	svc := NewService(&fakeAuditStore{}, &fakeReviewerStore{}, nil, nil, nil, time.Minute, nil)

	snapshot, err := svc.Leaderboard(context.Background())
	if err != nil {
		t.Fatalf("Leaderboard: %v", err)
	}
	if snapshot.Rows == nil || len(snapshot.Rows) != 0 {
		t.Fatalf("expected empty non-nil rows, got %#v", snapshot.Rows)
	}
}

func TestMilestonesOrderUnmetFirst(t *testing.T) {
	audit := &fakeAuditStore{counts: map[string]map[string]int64{
		"rev-1": {GroupKYCDecision: 12, GroupReportResolved: 5},
	}}
	svc := NewService(audit, &fakeReviewerStore{}, nil, nil, testTargets(), time.Minute, nil)

	milestones, err := svc.Milestones(context.Background(), "rev-1")
	if err != nil {
		t.Fatalf("Milestones: %v", err)
	}
	if len(milestones) != 3 {
		t.Fatalf("expected 3 milestones, got %d", len(milestones))
	}

	// kyc-10 is achieved (12/10); kyc-50 (24%) and reports-25 (20%)
	// are unmet, higher progress first.
	if milestones[0].ID != "kyc-50" || milestones[1].ID != "reports-25" {
		t.Fatalf("unexpected unmet ordering: %s, %s", milestones[0].ID, milestones[1].ID)
	}
	if milestones[2].ID != "kyc-10" || !milestones[2].Achieved {
		t.Fatalf("expected achieved kyc-10 last, got %+v", milestones[2])
	}
	if milestones[2].Progress != 1 {
		t.Fatalf("achieved progress must cap at 1, got %v", milestones[2].Progress)
	}
}

func TestMilestonesZeroActivity(t *testing.T) {
	svc := NewService(&fakeAuditStore{}, &fakeReviewerStore{}, nil, nil, testTargets(), time.Minute, nil)

	milestones, err := svc.Milestones(context.Background(), "rev-new")
	if err != nil {
		t.Fatalf("Milestones: %v", err)
	}
	if len(milestones) != 3 {
		t.Fatalf("expected full list, got %d", len(milestones))
	}
	for _, m := range milestones {
		if m.Current != 0 || m.Achieved || m.Progress != 0 {
			t.Fatalf("expected zero progress, got %+v", m)
		}
	}
}

func TestQueueCounts(t *testing.T) {
	items := &fakeItemStore{counts: model.QueueCounts{ByType: map[string]int64{"campaign": 2}, Total: 2}}
	svc := NewService(&fakeAuditStore{}, &fakeReviewerStore{}, nil, items, nil, time.Minute, nil)

	counts, err := svc.QueueCounts(context.Background())
	if err != nil {
		t.Fatalf("QueueCounts: %v", err)
	}
	if counts.Total != 2 || counts.ByType["campaign"] != 2 {
		t.Fatalf("unexpected counts %+v", counts)
	}
}
