package rules

import (
	"sort"

	"github.com/ivanholub/giveline/backend/internal/domain/model"
)

// Less is the queue ordering: status tier first, newest first within a
// tier. It is a pure function of status and created_at, so any two
// readers produce the same order for the same rows.
func Less(a, b model.ReviewItem) bool {
	ta, tb := a.Status.Tier(), b.Status.Tier()
	if ta != tb {
		return ta < tb
	}
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.After(b.CreatedAt)
	}
	return a.ID.String() < b.ID.String()
}

func SortQueue(items []model.ReviewItem) {
	sort.SliceStable(items, func(i, j int) bool {
		return Less(items[i], items[j])
	})
}
