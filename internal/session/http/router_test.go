package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/choosyhq/sessiond/internal/session/denylist"
	"github.com/choosyhq/sessiond/internal/session/domain"
	sessionhttp "github.com/choosyhq/sessiond/internal/session/http"
	"github.com/choosyhq/sessiond/internal/session/idp"
	"github.com/choosyhq/sessiond/internal/session/service"
	"github.com/choosyhq/sessiond/internal/session/store/drivers/sqlite"
	"github.com/choosyhq/sessiond/internal/session/token"
	"github.com/choosyhq/sessiond/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

// stubProvider accepts one hard-coded credential pair.
type stubProvider struct{}

func (stubProvider) Name() string { return "wx" }

func (stubProvider) Exchange(_ context.Context, creds idp.Credentials) (domain.Identity, error) {
	if creds.LoginCode != "good-login" || creds.PhoneCode != "good-phone" {
		return domain.Identity{}, fmt.Errorf("%w: bad codes", idp.ErrExchange)
	}
	return domain.Identity{
		Platform: "wx",
		Subject:  "openid-abc",
		Contact:  "13800000000",
		Name:     "Alice",
	}, nil
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	signJWK, err := jwtx.GenerateSigningJWK()
	require.NoError(t, err)
	signMaterial, err := signJWK.Encode()
	require.NoError(t, err)
	sealJWK, err := jwtx.GenerateSealJWK()
	require.NoError(t, err)
	sealMaterial, err := sealJWK.Encode()
	require.NoError(t, err)
	ring := jwtx.NewKeyring(signMaterial, sealMaterial)

	st, err := sqlite.NewStore(filepath.Join(t.TempDir(), "sessions.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.ApplyMigrations())

	sealer := &token.Sealer{Keys: ring}
	sessions := &service.SessionService{
		Store: st,
		Tokens: &token.AccessTokens{
			Keys:   ring,
			Sealer: sealer,
			Issuer: "choosy-api",
			TTL:    2 * time.Hour,
		},
		Sealer:                sealer,
		Denylist:              denylist.Noop(),
		RefreshTTL:            365 * 24 * time.Hour,
		MaxSessionsPerSubject: 10,
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	router := sessionhttp.NewRouter(ring, "test", st, sessions, idp.NewRegistry(stubProvider{}), logger)
	router.ApplyRoutes()

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv
}

func postJSON(t *testing.T, url string, body any, headers map[string]string) (*http.Response, map[string]json.RawMessage) {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)

	req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(payload))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })

	var decoded map[string]json.RawMessage
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&decoded))
	return resp, decoded
}

func login(t *testing.T, srv *httptest.Server) domain.TokenPair {
	t.Helper()
	resp, body := postJSON(t, srv.URL+"/v1/auth/login", map[string]string{
		"login_code": "good-login",
		"phone_code": "good-phone",
	}, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var pair domain.TokenPair
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(raw, &pair))
	require.NotEmpty(t, pair.AccessToken)
	require.NotEmpty(t, pair.RefreshToken)
	return pair
}

func TestLoginEndpoint(t *testing.T) {
	srv := newTestServer(t)
	pair := login(t, srv)
	require.Equal(t, "Bearer", pair.TokenType)
	require.EqualValues(t, 7200, pair.ExpiresIn)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	srv := newTestServer(t)
	resp, _ := postJSON(t, srv.URL+"/v1/auth/login", map[string]string{
		"login_code": "bad",
		"phone_code": "bad",
	}, nil)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestLoginRejectsUnknownPlatform(t *testing.T) {
	srv := newTestServer(t)
	resp, _ := postJSON(t, srv.URL+"/v1/auth/login", map[string]string{
		"platform":   "nope",
		"login_code": "good-login",
		"phone_code": "good-phone",
	}, nil)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestRefreshEndpoint(t *testing.T) {
	srv := newTestServer(t)
	pair := login(t, srv)

	resp, body := postJSON(t, srv.URL+"/v1/auth/refresh", map[string]string{
		"refresh_token": pair.RefreshToken,
	}, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Contains(t, body, "access_token")

	// The spent token is dead now.
	resp, _ = postJSON(t, srv.URL+"/v1/auth/refresh", map[string]string{
		"refresh_token": pair.RefreshToken,
	}, nil)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestLogoutEndpointIsIdempotent(t *testing.T) {
	srv := newTestServer(t)
	pair := login(t, srv)

	for range 2 {
		resp, _ := postJSON(t, srv.URL+"/v1/auth/logout", map[string]string{
			"refresh_token": pair.RefreshToken,
		}, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
	}
}

func TestLogoutAllEndpoint(t *testing.T) {
	srv := newTestServer(t)
	first := login(t, srv)
	second := login(t, srv)

	resp, body := postJSON(t, srv.URL+"/v1/auth/logout-all", map[string]string{},
		map[string]string{"Authorization": "Bearer " + second.AccessToken})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var revoked int64
	require.NoError(t, json.Unmarshal(body["revoked_sessions"], &revoked))
	require.EqualValues(t, 2, revoked)

	resp, _ = postJSON(t, srv.URL+"/v1/auth/refresh", map[string]string{
		"refresh_token": first.RefreshToken,
	}, nil)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestLogoutAllRequiresAuth(t *testing.T) {
	srv := newTestServer(t)

	req, err := http.NewRequest(http.MethodPost, srv.URL+"/v1/auth/logout-all", bytes.NewReader([]byte("{}")))
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestUserInfoEndpoint(t *testing.T) {
	srv := newTestServer(t)
	pair := login(t, srv)

	req, err := http.NewRequest(http.MethodGet, srv.URL+"/v1/userinfo", nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+pair.AccessToken)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var info map[string]string
	require.NoError(t, json.Unmarshal(raw, &info))
	require.Equal(t, "wx", info["platform"])
	require.Equal(t, "openid-abc", info["subject"])
	require.Equal(t, "Alice", info["name"])

	// The contact never appears in a response body.
	require.NotContains(t, string(raw), "13800000000")
}

func TestJWKSEndpoint(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/.well-known/jwks.json")
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var set jwtx.JWKS
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&set))
	require.Len(t, set.Keys, 1)
	require.Empty(t, set.Keys[0].D)
}

func TestHealthEndpoints(t *testing.T) {
	srv := newTestServer(t)

	for _, path := range []string{"/livez", "/readyz"} {
		resp, err := http.Get(srv.URL + path)
		require.NoError(t, err)
		_ = resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode, path)
	}
}
