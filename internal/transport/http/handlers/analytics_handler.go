package handlers

import (
	"net/http"
	"strings"

	analyticssvc "github.com/ivanholub/giveline/backend/internal/services/analytics"
	authsvc "github.com/ivanholub/giveline/backend/internal/services/auth"
	"github.com/ivanholub/giveline/backend/internal/transport/http/dto"
	httperrors "github.com/ivanholub/giveline/backend/internal/transport/http/errors"
)

type AnalyticsHandler struct {
	service *analyticssvc.Service
}

func NewAnalyticsHandler(service *analyticssvc.Service) *AnalyticsHandler {
	return &AnalyticsHandler{service: service}
}

func (h *AnalyticsHandler) Leaderboard(w http.ResponseWriter, r *http.Request) {
	if _, ok := authsvc.IdentityFromContext(r.Context()); !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}

	snapshot, err := h.service.Leaderboard(r.Context())
	if err != nil {
		writeInternal(w, "INTERNAL_ERROR", "internal server error")
		return
	}

	httperrors.Write(w, http.StatusOK, dto.LeaderboardResponse{
		Rows:       snapshot.Rows,
		ComputedAt: snapshot.ComputedAt,
	})
}

// Milestones answers for the calling reviewer unless an explicit
// reviewer_id query parameter names someone else.
func (h *AnalyticsHandler) Milestones(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}

	reviewerID := strings.TrimSpace(r.URL.Query().Get("reviewer_id"))
	if reviewerID == "" {
		reviewerID = identity.ReviewerID
	}

	milestones, err := h.service.Milestones(r.Context(), reviewerID)
	if err != nil {
		writeInternal(w, "INTERNAL_ERROR", "internal server error")
		return
	}

	httperrors.Write(w, http.StatusOK, dto.MilestonesResponse{Milestones: milestones})
}

func (h *AnalyticsHandler) Queues(w http.ResponseWriter, r *http.Request) {
	if _, ok := authsvc.IdentityFromContext(r.Context()); !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}

	counts, err := h.service.QueueCounts(r.Context())
	if err != nil {
		writeInternal(w, "INTERNAL_ERROR", "internal server error")
		return
	}

	httperrors.Write(w, http.StatusOK, dto.QueueCountsResponse{
		ByType: counts.ByType,
		Total:  counts.Total,
	})
}
