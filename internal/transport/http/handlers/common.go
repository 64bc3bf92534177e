package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/ivanholub/giveline/backend/internal/domain/rules"
	"github.com/ivanholub/giveline/backend/internal/repo/postgres"
	suspensionsvc "github.com/ivanholub/giveline/backend/internal/services/suspension"
	workflowsvc "github.com/ivanholub/giveline/backend/internal/services/workflow"
	httperrors "github.com/ivanholub/giveline/backend/internal/transport/http/errors"
)

func decodeJSON(r *http.Request, target any) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(target)
}

func writeBadRequest(w http.ResponseWriter, code, message string) {
	httperrors.Write(w, http.StatusBadRequest, httperrors.APIError{Code: code, Message: message})
}

func writeUnauthorized(w http.ResponseWriter, code, message string) {
	httperrors.Write(w, http.StatusUnauthorized, httperrors.APIError{Code: code, Message: message})
}

func writeInternal(w http.ResponseWriter, code, message string) {
	httperrors.Write(w, http.StatusInternalServerError, httperrors.APIError{Code: code, Message: message})
}

// handleReviewError maps the workflow error taxonomy onto HTTP
// statuses. Conflicts (409) are retryable by picking another item;
// 403 means the caller lacks the claim or the role.
func handleReviewError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, postgres.ErrAlreadyClaimed):
		httperrors.Write(w, http.StatusConflict, httperrors.APIError{
			Code: "ALREADY_CLAIMED", Message: "item is claimed by another reviewer",
		})
	case errors.Is(err, rules.ErrInvalidTransition):
		httperrors.Write(w, http.StatusConflict, httperrors.APIError{
			Code: "INVALID_TRANSITION", Message: "operation is not valid for the item's current status",
		})
	case errors.Is(err, rules.ErrNotHolder):
		httperrors.Write(w, http.StatusForbidden, httperrors.APIError{
			Code: "NOT_HOLDER", Message: "caller does not hold the claim",
		})
	case errors.Is(err, rules.ErrNotAuthorized):
		httperrors.Write(w, http.StatusForbidden, httperrors.APIError{
			Code: "NOT_AUTHORIZED", Message: "role does not permit this operation",
		})
	case errors.Is(err, rules.ErrReasonRequired):
		writeBadRequest(w, "REASON_REQUIRED", "a reason is required")
	case errors.Is(err, postgres.ErrItemNotFound), errors.Is(err, suspensionsvc.ErrCaseNotFound):
		httperrors.Write(w, http.StatusNotFound, httperrors.APIError{
			Code: "NOT_FOUND", Message: "item not found",
		})
	case errors.Is(err, rules.ErrDomainEffectFailed):
		httperrors.Write(w, http.StatusBadGateway, httperrors.APIError{
			Code: "DOMAIN_EFFECT_FAILED", Message: "decision recorded, side effect pending reconciliation",
		})
	case errors.Is(err, workflowsvc.ErrUnknownType), errors.Is(err, workflowsvc.ErrMissingSubject):
		writeBadRequest(w, "VALIDATION_ERROR", "request validation failed")
	default:
		writeInternal(w, "INTERNAL_ERROR", "internal server error")
	}
}
