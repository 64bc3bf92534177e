package model

import (
	"time"

	"github.com/google/uuid"
)

// Claim is the ownership record for a review item. Claims are released
// on resolution or reassignment, never deleted.
type Claim struct {
	ID         int64      `json:"id"`
	ItemID     uuid.UUID  `json:"item_id"`
	ReviewerID string     `json:"reviewer_id"`
	ClaimedAt  time.Time  `json:"claimed_at"`
	ReleasedAt *time.Time `json:"released_at,omitempty"`
}

func (c Claim) Live() bool {
	return c.ReleasedAt == nil
}
