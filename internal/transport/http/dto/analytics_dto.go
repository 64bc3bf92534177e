package dto

import (
	"time"

	"github.com/ivanholub/giveline/backend/internal/domain/model"
)

type LeaderboardResponse struct {
	Rows       []model.LeaderboardRow `json:"rows"`
	ComputedAt time.Time              `json:"computed_at"`
}

type MilestonesResponse struct {
	Milestones []model.Milestone `json:"milestones"`
}

type QueueCountsResponse struct {
	ByType map[string]int64 `json:"by_type"`
	Total  int64            `json:"total"`
}
