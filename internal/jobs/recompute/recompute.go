package recompute

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/ivanholub/giveline/backend/internal/domain/model"
)

// Job refreshes the cached leaderboard snapshot and reports claims
// that have been held past the stale age. Claims are never expired
// automatically, the report is advisory.
type Job struct {
	analytics snapshotRefresher
	claims    staleClaimLister
	staleAge  time.Duration
	now       func() time.Time
	logger    *zap.Logger
}

type snapshotRefresher interface {
	Recompute(ctx context.Context) (model.LeaderboardSnapshot, error)
}

type staleClaimLister interface {
	ListClaimsOlderThan(ctx context.Context, cutoff time.Time) ([]model.ReviewItem, error)
}

func New(analytics snapshotRefresher, claims staleClaimLister, staleAge time.Duration, logger *zap.Logger) *Job {
	if staleAge <= 0 {
		staleAge = 4 * time.Hour
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Job{
		analytics: analytics,
		claims:    claims,
		staleAge:  staleAge,
		now:       time.Now,
		logger:    logger,
	}
}

func (j *Job) Run(ctx context.Context) error {
	if j.analytics != nil {
		snapshot, err := j.analytics.Recompute(ctx)
		if err != nil {
			return fmt.Errorf("recompute leaderboard snapshot: %w", err)
		}
		j.logger.Info("leaderboard snapshot refreshed", zap.Int("rows", len(snapshot.Rows)))
	}

	if j.claims == nil {
		return nil
	}

	cutoff := j.now().Add(-j.staleAge)
	stale, err := j.claims.ListClaimsOlderThan(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("list stale claims: %w", err)
	}

	for _, item := range stale {
		fields := []zap.Field{
			zap.String("item_id", item.ID.String()),
			zap.String("item_type", string(item.ItemType)),
		}
		if item.ClaimedBy != nil {
			fields = append(fields, zap.String("claimed_by", *item.ClaimedBy))
		}
		if item.ClaimedAt != nil {
			fields = append(fields, zap.Duration("held_for", j.now().Sub(*item.ClaimedAt)))
		}
		j.logger.Warn("claim held past stale age", fields...)
	}
	if len(stale) > 0 {
		j.logger.Info("stale claim report completed", zap.Int("stale", len(stale)))
	}

	return nil
}

// RunLoop runs the job once immediately, then on every tick until the
// context is cancelled.
func (j *Job) RunLoop(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		interval = 10 * time.Minute
	}

	if err := j.Run(ctx); err != nil {
		j.logger.Error("recompute job failed", zap.Error(err))
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := j.Run(ctx); err != nil {
				j.logger.Error("recompute job failed", zap.Error(err))
			}
		}
	}
}
