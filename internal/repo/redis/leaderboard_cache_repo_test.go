package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"

	"github.com/ivanholub/giveline/backend/internal/domain/model"
)

func newMiniRedisClient(t *testing.T) (*miniredis.Miniredis, *goredis.Client) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}

	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	return mr, client
}

func TestLeaderboardCacheRoundTrip(t *testing.T) {
	mr, client := newMiniRedisClient(t)
	defer mr.Close()
	defer func() { _ = client.Close() }()

	repo := NewLeaderboardCacheRepo(client)
	ctx := context.Background()

	if _, ok, err := repo.Get(ctx); err != nil || ok {
		t.Fatalf("expected empty cache miss, got ok=%v err=%v", ok, err)
	}

	snapshot := model.LeaderboardSnapshot{
		Rows: []model.LeaderboardRow{
			{ReviewerID: "rev-1", Group: "kyc_decision", Count: 12},
			{ReviewerID: "rev-2", Group: "report_resolved", Count: 7},
		},
		ComputedAt: time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC),
	}
	if err := repo.Set(ctx, snapshot, time.Minute); err != nil {
		t.Fatalf("set snapshot: %v", err)
	}

	got, ok, err := repo.Get(ctx)
	if err != nil {
		t.Fatalf("get snapshot: %v", err)
	}
	if !ok {
		t.Fatalf("expected cache hit")
	}
	if len(got.Rows) != 2 || got.Rows[0].ReviewerID != "rev-1" || got.Rows[0].Count != 12 {
		t.Fatalf("unexpected snapshot rows: %+v", got.Rows)
	}
	if !got.ComputedAt.Equal(snapshot.ComputedAt) {
		t.Fatalf("unexpected computed_at: %v", got.ComputedAt)
	}
}

func TestLeaderboardCacheExpires(t *testing.T) {
	mr, client := newMiniRedisClient(t)
	defer mr.Close()
	defer func() { _ = client.Close() }()

	repo := NewLeaderboardCacheRepo(client)
	ctx := context.Background()

	if err := repo.Set(ctx, model.LeaderboardSnapshot{ComputedAt: time.Now().UTC()}, time.Minute); err != nil {
		t.Fatalf("set snapshot: %v", err)
	}

	mr.FastForward(2 * time.Minute)

	if _, ok, err := repo.Get(ctx); err != nil || ok {
		t.Fatalf("expected miss after expiry, got ok=%v err=%v", ok, err)
	}
}

func TestLeaderboardCacheNilClientIsAdvisory(t *testing.T) {
	repo := NewLeaderboardCacheRepo(nil)
	ctx := context.Background()

	if err := repo.Set(ctx, model.LeaderboardSnapshot{}, time.Minute); err != nil {
		t.Fatalf("nil client set should be a no-op, got %v", err)
	}
	if _, ok, err := repo.Get(ctx); err != nil || ok {
		t.Fatalf("nil client get should miss silently, got ok=%v err=%v", ok, err)
	}
}
