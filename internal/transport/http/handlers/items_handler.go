package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ivanholub/giveline/backend/internal/domain/enums"
	"github.com/ivanholub/giveline/backend/internal/domain/model"
	"github.com/ivanholub/giveline/backend/internal/domain/rules"
	"github.com/ivanholub/giveline/backend/internal/repo/postgres"
	authsvc "github.com/ivanholub/giveline/backend/internal/services/auth"
	claimssvc "github.com/ivanholub/giveline/backend/internal/services/claims"
	evidencesvc "github.com/ivanholub/giveline/backend/internal/services/evidence"
	resolutionsvc "github.com/ivanholub/giveline/backend/internal/services/resolution"
	workflowsvc "github.com/ivanholub/giveline/backend/internal/services/workflow"
	"github.com/ivanholub/giveline/backend/internal/transport/http/dto"
	httperrors "github.com/ivanholub/giveline/backend/internal/transport/http/errors"
)

const evidenceURLTTL = 15 * time.Minute

type ItemsHandler struct {
	workflow   *workflowsvc.Service
	claims     *claimssvc.Service
	resolution *resolutionsvc.Service
	evidence   *evidencesvc.Storage
	log        *zap.Logger
}

func NewItemsHandler(workflow *workflowsvc.Service, claims *claimssvc.Service, resolution *resolutionsvc.Service, evidence *evidencesvc.Storage, log *zap.Logger) *ItemsHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &ItemsHandler{
		workflow:   workflow,
		claims:     claims,
		resolution: resolution,
		evidence:   evidence,
		log:        log,
	}
}

func (h *ItemsHandler) List(w http.ResponseWriter, r *http.Request) {
	if _, ok := authsvc.IdentityFromContext(r.Context()); !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}

	filter := postgres.ListFilter{
		ItemType: enums.ItemType(strings.TrimSpace(r.URL.Query().Get("type"))),
	}
	for _, status := range r.URL.Query()["status"] {
		if status != "" {
			filter.Statuses = append(filter.Statuses, enums.ReviewStatus(status))
		}
	}
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil {
			writeBadRequest(w, "VALIDATION_ERROR", "limit must be an integer")
			return
		}
		filter.Limit = limit
	}

	items, err := h.workflow.List(r.Context(), filter)
	if err != nil {
		handleReviewError(w, err)
		return
	}

	resp := dto.ReviewItemListResponse{Items: make([]dto.ReviewItemResponse, 0, len(items))}
	for _, item := range items {
		resp.Items = append(resp.Items, dto.NewReviewItemResponse(item))
	}
	httperrors.Write(w, http.StatusOK, resp)
}

func (h *ItemsHandler) Get(w http.ResponseWriter, r *http.Request) {
	if _, ok := authsvc.IdentityFromContext(r.Context()); !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	itemID, ok := itemIDParam(w, r)
	if !ok {
		return
	}

	item, err := h.workflow.Get(r.Context(), itemID)
	if err != nil {
		handleReviewError(w, err)
		return
	}

	httperrors.Write(w, http.StatusOK, h.itemResponse(r, item))
}

func (h *ItemsHandler) Intake(w http.ResponseWriter, r *http.Request) {
	if _, ok := authsvc.IdentityFromContext(r.Context()); !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}

	var req dto.IntakeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid json body")
		return
	}

	item, err := h.workflow.Intake(r.Context(), workflowsvc.IntakeParams{
		ItemType:        enums.ItemType(req.ItemType),
		SubjectID:       req.SubjectID,
		EvidenceKeys:    req.EvidenceKeys,
		ProfileComplete: req.ProfileComplete,
	})
	if err != nil {
		handleReviewError(w, err)
		return
	}

	httperrors.Write(w, http.StatusCreated, dto.NewReviewItemResponse(item))
}

func (h *ItemsHandler) Submit(w http.ResponseWriter, r *http.Request) {
	if _, ok := authsvc.IdentityFromContext(r.Context()); !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	itemID, ok := itemIDParam(w, r)
	if !ok {
		return
	}

	item, err := h.workflow.Submit(r.Context(), itemID)
	if err != nil {
		handleReviewError(w, err)
		return
	}

	httperrors.Write(w, http.StatusOK, dto.NewReviewItemResponse(item))
}

func (h *ItemsHandler) Claim(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	itemID, ok := itemIDParam(w, r)
	if !ok {
		return
	}

	item, err := h.claims.Claim(r.Context(), itemID, identity)
	if err != nil {
		handleReviewError(w, err)
		return
	}

	httperrors.Write(w, http.StatusOK, dto.NewReviewItemResponse(item))
}

func (h *ItemsHandler) Release(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	itemID, ok := itemIDParam(w, r)
	if !ok {
		return
	}

	item, err := h.claims.Release(r.Context(), itemID, identity)
	if err != nil {
		handleReviewError(w, err)
		return
	}

	httperrors.Write(w, http.StatusOK, dto.NewReviewItemResponse(item))
}

func (h *ItemsHandler) Approve(w http.ResponseWriter, r *http.Request) {
	h.resolve(w, r, h.resolution.Approve)
}

func (h *ItemsHandler) Reject(w http.ResponseWriter, r *http.Request) {
	h.resolve(w, r, h.resolution.Reject)
}

func (h *ItemsHandler) Escalate(w http.ResponseWriter, r *http.Request) {
	h.resolve(w, r, h.resolution.Escalate)
}

func (h *ItemsHandler) Reassign(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	itemID, ok := itemIDParam(w, r)
	if !ok {
		return
	}

	var req dto.ReassignRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid json body")
		return
	}

	item, err := h.resolution.Reassign(r.Context(), resolutionsvc.ReassignParams{
		ItemID:           itemID,
		Reason:           req.Reason,
		TargetReviewerID: req.TargetReviewerID,
	}, identity)
	if err != nil {
		handleReviewError(w, err)
		return
	}

	httperrors.Write(w, http.StatusOK, dto.NewReviewItemResponse(item))
}

func (h *ItemsHandler) Purge(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	itemID, ok := itemIDParam(w, r)
	if !ok {
		return
	}

	var req dto.ResolveRequest
	if err := decodeJSON(r, &req); err != nil {
		req = dto.ResolveRequest{}
	}

	if err := h.resolution.Purge(r.Context(), itemID, identity, req.Reason); err != nil {
		handleReviewError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *ItemsHandler) History(w http.ResponseWriter, r *http.Request) {
	if _, ok := authsvc.IdentityFromContext(r.Context()); !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	itemID, ok := itemIDParam(w, r)
	if !ok {
		return
	}

	entries, err := h.workflow.History(r.Context(), itemID, 0)
	if err != nil {
		handleReviewError(w, err)
		return
	}

	resp := dto.AuditTrailResponse{Entries: make([]dto.AuditEntryResponse, 0, len(entries))}
	for _, entry := range entries {
		resp.Entries = append(resp.Entries, dto.NewAuditEntryResponse(entry))
	}
	httperrors.Write(w, http.StatusOK, resp)
}

type resolveFunc func(ctx context.Context, itemID uuid.UUID, ident authsvc.Identity, reason string) (model.ReviewItem, error)

func (h *ItemsHandler) resolve(w http.ResponseWriter, r *http.Request, fn resolveFunc) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	itemID, ok := itemIDParam(w, r)
	if !ok {
		return
	}

	var req dto.ResolveRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid json body")
		return
	}

	item, err := fn(r.Context(), itemID, identity, req.Reason)
	if errors.Is(err, rules.ErrDomainEffectFailed) {
		// The decision is committed; the caller gets the resolved item
		// so the console can show it while operators reconcile.
		httperrors.Write(w, http.StatusBadGateway, dto.NewReviewItemResponse(item))
		return
	}
	if err != nil {
		handleReviewError(w, err)
		return
	}

	httperrors.Write(w, http.StatusOK, dto.NewReviewItemResponse(item))
}

// itemResponse attaches presigned evidence URLs when the object store
// is configured.
func (h *ItemsHandler) itemResponse(r *http.Request, item model.ReviewItem) dto.ReviewItemResponse {
	resp := dto.NewReviewItemResponse(item)
	if h.evidence == nil || len(item.EvidenceKeys) == 0 {
		return resp
	}

	urls, err := h.evidence.PresignAll(r.Context(), item.EvidenceKeys, evidenceURLTTL)
	if err != nil {
		h.log.Warn("evidence presign failed",
			zap.String("item_id", item.ID.String()),
			zap.Error(err),
		)
		return resp
	}
	resp.EvidenceURLs = urls
	return resp
}

func itemIDParam(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	itemID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeBadRequest(w, "VALIDATION_ERROR", "item id must be a uuid")
		return uuid.UUID{}, false
	}
	return itemID, true
}
