package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	authsvc "github.com/ivanholub/giveline/backend/internal/services/auth"
	suspensionsvc "github.com/ivanholub/giveline/backend/internal/services/suspension"
	"github.com/ivanholub/giveline/backend/internal/transport/http/dto"
	httperrors "github.com/ivanholub/giveline/backend/internal/transport/http/errors"
)

// SuspensionsHandler addresses cases by the suspended user's id,
// which is what the admin console shows.
type SuspensionsHandler struct {
	service *suspensionsvc.Service
}

func NewSuspensionsHandler(service *suspensionsvc.Service) *SuspensionsHandler {
	return &SuspensionsHandler{service: service}
}

func (h *SuspensionsHandler) Reactivate(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	userID := chi.URLParam(r, "userID")

	var req dto.ResolveRequest
	if err := decodeJSON(r, &req); err != nil {
		req = dto.ResolveRequest{}
	}

	item, err := h.service.Reactivate(r.Context(), userID, identity, req.Reason)
	if err != nil {
		handleReviewError(w, err)
		return
	}

	httperrors.Write(w, http.StatusOK, dto.NewReviewItemResponse(item))
}

func (h *SuspensionsHandler) Reassign(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	userID := chi.URLParam(r, "userID")

	var req dto.ResolveRequest
	if err := decodeJSON(r, &req); err != nil {
		req = dto.ResolveRequest{}
	}

	item, err := h.service.Reassign(r.Context(), userID, identity, req.Reason)
	if err != nil {
		handleReviewError(w, err)
		return
	}

	httperrors.Write(w, http.StatusOK, dto.NewReviewItemResponse(item))
}
