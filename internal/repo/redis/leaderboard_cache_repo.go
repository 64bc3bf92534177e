package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/ivanholub/giveline/backend/internal/domain/model"
)

const leaderboardSnapshotKey = "analytics:leaderboard:snapshot"

// LeaderboardCacheRepo holds an advisory snapshot of the leaderboard
// aggregate. A miss or a stale value is never an error condition; the
// caller falls back to recomputing from the audit log.
type LeaderboardCacheRepo struct {
	client *goredis.Client
}

func NewLeaderboardCacheRepo(client *goredis.Client) *LeaderboardCacheRepo {
	return &LeaderboardCacheRepo{client: client}
}

func (r *LeaderboardCacheRepo) Get(ctx context.Context) (model.LeaderboardSnapshot, bool, error) {
	if r.client == nil {
		return model.LeaderboardSnapshot{}, false, nil
	}

	raw, err := r.client.Get(ctx, leaderboardSnapshotKey).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return model.LeaderboardSnapshot{}, false, nil
		}
		return model.LeaderboardSnapshot{}, false, fmt.Errorf("get leaderboard snapshot: %w", err)
	}

	var snapshot model.LeaderboardSnapshot
	if err := json.Unmarshal(raw, &snapshot); err != nil {
		return model.LeaderboardSnapshot{}, false, nil
	}

	return snapshot, true, nil
}

func (r *LeaderboardCacheRepo) Set(ctx context.Context, snapshot model.LeaderboardSnapshot, ttl time.Duration) error {
	if r.client == nil {
		return nil
	}
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}

	raw, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("marshal leaderboard snapshot: %w", err)
	}

	if err := r.client.Set(ctx, leaderboardSnapshotKey, raw, ttl).Err(); err != nil {
		return fmt.Errorf("set leaderboard snapshot: %w", err)
	}

	return nil
}
