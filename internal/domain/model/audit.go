package model

import (
	"time"

	"github.com/google/uuid"

	"github.com/ivanholub/giveline/backend/internal/domain/enums"
)

// AuditEntry records a single state-changing action. Entries are
// append-only and survive item purges, so they carry the item type
// alongside the item id.
type AuditEntry struct {
	ID         int64              `json:"id"`
	ItemID     uuid.UUID          `json:"item_id"`
	ItemType   enums.ItemType     `json:"item_type"`
	ActorID    string             `json:"actor_id"`
	Action     enums.AuditAction  `json:"action"`
	FromStatus enums.ReviewStatus `json:"from_status"`
	ToStatus   enums.ReviewStatus `json:"to_status"`
	Reason     string             `json:"reason,omitempty"`
	CreatedAt  time.Time          `json:"created_at"`
}
