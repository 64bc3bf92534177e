package dto

import (
	"time"

	"github.com/ivanholub/giveline/backend/internal/domain/model"
)

type ReviewItemResponse struct {
	ID               string     `json:"id"`
	ItemType         string     `json:"item_type"`
	SubjectID        string     `json:"subject_id"`
	Status           string     `json:"status"`
	ClaimedBy        *string    `json:"claimed_by,omitempty"`
	ClaimedAt        *time.Time `json:"claimed_at,omitempty"`
	ProcessedBy      *string    `json:"processed_by,omitempty"`
	ProcessedAt      *time.Time `json:"processed_at,omitempty"`
	ResolutionReason *string    `json:"resolution_reason,omitempty"`
	EvidenceURLs     []string   `json:"evidence_urls,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

func NewReviewItemResponse(item model.ReviewItem) ReviewItemResponse {
	return ReviewItemResponse{
		ID:               item.ID.String(),
		ItemType:         string(item.ItemType),
		SubjectID:        item.SubjectID,
		Status:           string(item.Status),
		ClaimedBy:        item.ClaimedBy,
		ClaimedAt:        item.ClaimedAt,
		ProcessedBy:      item.ProcessedBy,
		ProcessedAt:      item.ProcessedAt,
		ResolutionReason: item.ResolutionReason,
		CreatedAt:        item.CreatedAt,
		UpdatedAt:        item.UpdatedAt,
	}
}

type ReviewItemListResponse struct {
	Items []ReviewItemResponse `json:"items"`
}

type IntakeRequest struct {
	ItemType        string   `json:"item_type"`
	SubjectID       string   `json:"subject_id"`
	EvidenceKeys    []string `json:"evidence_keys,omitempty"`
	ProfileComplete bool     `json:"profile_complete,omitempty"`
}

type ResolveRequest struct {
	Reason string `json:"reason"`
}

type ReassignRequest struct {
	Reason           string `json:"reason"`
	TargetReviewerID string `json:"target_reviewer_id,omitempty"`
}

type AuditEntryResponse struct {
	ID         int64     `json:"id"`
	ItemID     string    `json:"item_id"`
	ItemType   string    `json:"item_type"`
	ActorID    string    `json:"actor_id"`
	Action     string    `json:"action"`
	FromStatus string    `json:"from_status"`
	ToStatus   string    `json:"to_status"`
	Reason     string    `json:"reason,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

func NewAuditEntryResponse(entry model.AuditEntry) AuditEntryResponse {
	return AuditEntryResponse{
		ID:         entry.ID,
		ItemID:     entry.ItemID.String(),
		ItemType:   string(entry.ItemType),
		ActorID:    entry.ActorID,
		Action:     string(entry.Action),
		FromStatus: string(entry.FromStatus),
		ToStatus:   string(entry.ToStatus),
		Reason:     entry.Reason,
		CreatedAt:  entry.CreatedAt,
	}
}

type AuditTrailResponse struct {
	Entries []AuditEntryResponse `json:"entries"`
}
