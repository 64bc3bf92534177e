package handlers

import (
	"errors"
	"net/http"
	"time"

	authsvc "github.com/ivanholub/giveline/backend/internal/services/auth"
	"github.com/ivanholub/giveline/backend/internal/transport/http/dto"
	httperrors "github.com/ivanholub/giveline/backend/internal/transport/http/errors"
)

type AuthHandler struct {
	service *authsvc.Service
}

func NewAuthHandler(service *authsvc.Service) *AuthHandler {
	return &AuthHandler{service: service}
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeInternal(w, "AUTH_SERVICE_UNAVAILABLE", "auth service is unavailable")
		return
	}

	var req dto.LoginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "INVALID_REQUEST", "invalid request body")
		return
	}

	res, err := h.service.Login(r.Context(), req.ReviewerID)
	if err != nil {
		if errors.Is(err, authsvc.ErrUnauthorized) {
			writeUnauthorized(w, "UNAUTHORIZED", "unknown reviewer")
			return
		}
		writeInternal(w, "INTERNAL_ERROR", "internal error")
		return
	}

	expiresIn := int64(time.Until(res.AccessExpires).Seconds())
	if expiresIn < 0 {
		expiresIn = 0
	}

	httperrors.Write(w, http.StatusOK, dto.AuthTokenResponse{
		AccessToken:  res.AccessToken,
		ExpiresInSec: expiresIn,
		Me: dto.AuthMeResponse{
			ID:          res.Reviewer.ID,
			Role:        string(res.Reviewer.Role),
			DisplayName: res.Reviewer.DisplayName,
		},
	})
}
