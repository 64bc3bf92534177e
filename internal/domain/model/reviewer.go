package model

import (
	"time"

	"github.com/ivanholub/giveline/backend/internal/domain/enums"
)

// Reviewer is a staff account mirrored from the identity provider.
type Reviewer struct {
	ID          string     `json:"id"`
	DisplayName string     `json:"display_name"`
	Role        enums.Role `json:"role"`
	CreatedAt   time.Time  `json:"created_at"`
}
