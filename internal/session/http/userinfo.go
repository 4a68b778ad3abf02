package http

import (
	"net/http"

	"github.com/choosyhq/sessiond/pkg/httpx"
)

// UserInfoHandler returns the authenticated caller's identity. The
// contact is deliberately omitted: it lives sealed inside the token and
// this service never echoes it back in plaintext.
type UserInfoHandler struct{}

type userInfoResponse struct {
	Platform   string `json:"platform"`
	Subject    string `json:"subject"`
	SubjectKey string `json:"subject_key"`
	Name       string `json:"name,omitempty"`
	Avatar     string `json:"avatar,omitempty"`
}

func (h *UserInfoHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	caller := identityFromContext(r.Context())
	if caller == nil {
		writeBearerError(w, "missing bearer token")
		return
	}

	httpx.WriteJSON(w, http.StatusOK, userInfoResponse{
		Platform:   caller.Platform,
		Subject:    caller.Subject,
		SubjectKey: caller.SubjectKey,
		Name:       caller.Name,
		Avatar:     caller.Avatar,
	})
}
