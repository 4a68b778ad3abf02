package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/choosyhq/sessiond/internal/session/service"
	"github.com/choosyhq/sessiond/pkg/httpx"
	"github.com/choosyhq/sessiond/pkg/slogx"
)

// RefreshHandler rotates a refresh token into a fresh pair.
type RefreshHandler struct {
	Sessions *service.SessionService
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

func (h *RefreshHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req refreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.RefreshToken == "" {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "refresh_token required")
		return
	}

	pair, err := h.Sessions.Refresh(ctx, req.RefreshToken)
	if err != nil {
		if errors.Is(err, service.ErrUnauthenticated) {
			httpx.WriteError(w, http.StatusUnauthorized, "invalid_grant", "refresh token invalid or expired")
			return
		}
		slogx.FromContext(ctx).Error("refresh failed", "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "server_error", "could not refresh session")
		return
	}

	httpx.WriteJSON(w, http.StatusOK, pair)
}
