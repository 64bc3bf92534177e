package model

import "time"

// LeaderboardRow is one reviewer's decision count within an activity
// group ("kyc_decision" or "report_resolved").
type LeaderboardRow struct {
	ReviewerID   string `json:"reviewer_id"`
	ReviewerName string `json:"reviewer_name,omitempty"`
	Group        string `json:"group"`
	Count        int64  `json:"count"`
}

type LeaderboardSnapshot struct {
	Rows       []LeaderboardRow `json:"rows"`
	ComputedAt time.Time        `json:"computed_at"`
}

// Milestone is a fixed activity target with the reviewer's current
// progress toward it.
type Milestone struct {
	ID       string  `json:"id"`
	Title    string  `json:"title"`
	Group    string  `json:"group"`
	Target   int64   `json:"target"`
	Current  int64   `json:"current"`
	Achieved bool    `json:"achieved"`
	Progress float64 `json:"progress"`
}

type QueueCounts struct {
	ByType map[string]int64 `json:"by_type"`
	Total  int64            `json:"total"`
}
