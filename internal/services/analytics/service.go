package analytics

import (
	"context"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/ivanholub/giveline/backend/internal/domain/model"
)

// Activity groups the aggregator recognizes. They match the CASE
// mapping in the audit repo.
const (
	GroupKYCDecision    = "kyc_decision"
	GroupReportResolved = "report_resolved"
)

type AuditStore interface {
	Leaderboard(ctx context.Context) ([]model.LeaderboardRow, error)
	CountForActor(ctx context.Context, actorID, group string) (int64, error)
}

type ReviewerStore interface {
	DisplayNames(ctx context.Context, ids []string) (map[string]string, error)
}

// SnapshotCache is the advisory leaderboard cache. A miss or a cache
// failure falls back to recomputing from the audit log.
type SnapshotCache interface {
	Get(ctx context.Context) (model.LeaderboardSnapshot, bool, error)
	Set(ctx context.Context, snapshot model.LeaderboardSnapshot, ttl time.Duration) error
}

type ItemStore interface {
	CountPendingByType(ctx context.Context) (model.QueueCounts, error)
}

// MilestoneTarget is a configured activity goal.
type MilestoneTarget struct {
	ID     string
	Title  string
	Group  string
	Target int64
}

// Service is the pure read path over the audit log: leaderboards,
// milestone progress, queue depths. Nothing here is a source of
// truth, so every answer can be recomputed from scratch.
type Service struct {
	audit     AuditStore
	reviewers ReviewerStore
	cache     SnapshotCache
	items     ItemStore
	targets   []MilestoneTarget
	cacheTTL  time.Duration
	log       *zap.Logger
	now       func() time.Time
}

func NewService(audit AuditStore, reviewers ReviewerStore, cache SnapshotCache, items ItemStore, targets []MilestoneTarget, cacheTTL time.Duration, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	if cacheTTL <= 0 {
		cacheTTL = 5 * time.Minute
	}
	return &Service{
		audit:     audit,
		reviewers: reviewers,
		cache:     cache,
		items:     items,
		targets:   targets,
		cacheTTL:  cacheTTL,
		log:       log,
		now:       time.Now,
	}
}

// Leaderboard returns per-reviewer decision counts, highest first.
// The redis snapshot is consulted first; on a miss the board is
// recomputed from the audit log and the snapshot refreshed.
func (s *Service) Leaderboard(ctx context.Context) (model.LeaderboardSnapshot, error) {
	if s.cache != nil {
		snapshot, ok, err := s.cache.Get(ctx)
		if err != nil {
			s.log.Warn("leaderboard cache read failed", zap.Error(err))
		} else if ok {
			return snapshot, nil
		}
	}

	snapshot, err := s.Recompute(ctx)
	if err != nil {
		return model.LeaderboardSnapshot{}, err
	}
	return snapshot, nil
}

// Recompute rebuilds the leaderboard from the audit log and refreshes
// the advisory cache. The recompute job calls this on a timer.
func (s *Service) Recompute(ctx context.Context) (model.LeaderboardSnapshot, error) {
	rows, err := s.audit.Leaderboard(ctx)
	if err != nil {
		return model.LeaderboardSnapshot{}, err
	}
	if rows == nil {
		rows = []model.LeaderboardRow{}
	}

	s.attachNames(ctx, rows)
	snapshot := model.LeaderboardSnapshot{Rows: rows, ComputedAt: s.now().UTC()}

	if s.cache != nil {
		if err := s.cache.Set(ctx, snapshot, s.cacheTTL); err != nil {
			s.log.Warn("leaderboard cache write failed", zap.Error(err))
		}
	}
	return snapshot, nil
}

// Milestones reports the reviewer's progress toward each configured
// target. Unmet milestones come first; within each half, higher
// progress sorts earlier. A reviewer with no activity gets the full
// list at zero progress.
func (s *Service) Milestones(ctx context.Context, reviewerID string) ([]model.Milestone, error) {
	counts := make(map[string]int64, 2)
	for _, group := range []string{GroupKYCDecision, GroupReportResolved} {
		count, err := s.audit.CountForActor(ctx, reviewerID, group)
		if err != nil {
			return nil, err
		}
		counts[group] = count
	}

	milestones := make([]model.Milestone, 0, len(s.targets))
	for _, target := range s.targets {
		current := counts[target.Group]
		milestone := model.Milestone{
			ID:      target.ID,
			Title:   target.Title,
			Group:   target.Group,
			Target:  target.Target,
			Current: current,
		}
		if target.Target > 0 {
			milestone.Progress = float64(current) / float64(target.Target)
			if milestone.Progress > 1 {
				milestone.Progress = 1
			}
			milestone.Achieved = current >= target.Target
		}
		milestones = append(milestones, milestone)
	}

	sort.SliceStable(milestones, func(i, j int) bool {
		if milestones[i].Achieved != milestones[j].Achieved {
			return !milestones[i].Achieved
		}
		return milestones[i].Progress > milestones[j].Progress
	})
	return milestones, nil
}

func (s *Service) QueueCounts(ctx context.Context) (model.QueueCounts, error) {
	return s.items.CountPendingByType(ctx)
}

func (s *Service) attachNames(ctx context.Context, rows []model.LeaderboardRow) {
	if s.reviewers == nil || len(rows) == 0 {
		return
	}

	ids := make([]string, 0, len(rows))
	seen := make(map[string]bool, len(rows))
	for _, row := range rows {
		if !seen[row.ReviewerID] {
			seen[row.ReviewerID] = true
			ids = append(ids, row.ReviewerID)
		}
	}

	names, err := s.reviewers.DisplayNames(ctx, ids)
	if err != nil {
		s.log.Warn("reviewer names lookup failed", zap.Error(err))
		return
	}
	for i := range rows {
		rows[i].ReviewerName = names[rows[i].ReviewerID]
	}
}
