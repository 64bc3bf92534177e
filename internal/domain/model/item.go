package model

import (
	"time"

	"github.com/google/uuid"

	"github.com/ivanholub/giveline/backend/internal/domain/enums"
)

// ReviewItem is a unit of moderation work: an identity submission, a
// campaign, one of the report kinds, a support ticket, or a
// suspended-account case.
type ReviewItem struct {
	ID               uuid.UUID          `json:"id"`
	ItemType         enums.ItemType     `json:"item_type"`
	SubjectID        string             `json:"subject_id"`
	Status           enums.ReviewStatus `json:"status"`
	ClaimedBy        *string            `json:"claimed_by,omitempty"`
	ClaimedAt        *time.Time         `json:"claimed_at,omitempty"`
	ProcessedBy      *string            `json:"processed_by,omitempty"`
	ProcessedAt      *time.Time         `json:"processed_at,omitempty"`
	ResolutionReason *string            `json:"resolution_reason,omitempty"`
	EvidenceKeys     []string           `json:"evidence_keys,omitempty"`
	CreatedAt        time.Time          `json:"created_at"`
	UpdatedAt        time.Time          `json:"updated_at"`
}

func (i ReviewItem) HeldBy(reviewerID string) bool {
	return i.ClaimedBy != nil && *i.ClaimedBy == reviewerID
}
