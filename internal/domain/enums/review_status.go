package enums

type ReviewStatus string

const (
	// StatusBasic marks an identity submission whose profile is still
	// incomplete. It is not a reviewable candidate yet.
	StatusBasic       ReviewStatus = "basic"
	StatusPending     ReviewStatus = "pending"
	StatusInProgress  ReviewStatus = "in_progress"
	StatusEscalated   ReviewStatus = "escalated"
	StatusApproved    ReviewStatus = "approved"
	StatusRejected    ReviewStatus = "rejected"
	StatusReactivated ReviewStatus = "reactivated"
)

// Legacy statuses the upstream platform still emits for old rows.
// They never enter the workflow machines; they only need a place in
// the queue ordering.
const (
	LegacyStatusFlagged ReviewStatus = "flagged"
	LegacyStatusClaimed ReviewStatus = "claimed"
	LegacyStatusFailed  ReviewStatus = "failed"
)

// TieredStatuses lists every status with an explicit queue tier, in
// tier order. Anything outside this list sorts last.
func TieredStatuses() []ReviewStatus {
	return []ReviewStatus{
		StatusPending,
		StatusInProgress,
		StatusEscalated,
		LegacyStatusFlagged,
		LegacyStatusClaimed,
		StatusRejected,
		LegacyStatusFailed,
	}
}

func (s ReviewStatus) Terminal() bool {
	switch s {
	case StatusApproved, StatusRejected, StatusReactivated:
		return true
	}
	return false
}

// Claimed reports whether the status implies a live claim on the item.
func (s ReviewStatus) Claimed() bool {
	return s == StatusInProgress || s == StatusEscalated
}

// Tier buckets statuses for queue ordering: active work first, then
// items needing supervisory attention, then rejected/failed, then the
// rest. Legacy statuses sort with their nearest modern equivalent.
func (s ReviewStatus) Tier() int {
	switch s {
	case StatusPending, StatusInProgress:
		return 0
	case StatusEscalated, LegacyStatusFlagged, LegacyStatusClaimed:
		return 1
	case StatusRejected, LegacyStatusFailed:
		return 2
	default:
		return 3
	}
}
