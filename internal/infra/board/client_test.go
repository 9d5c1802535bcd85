package board

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"jobtrack/config"
	domainerrors "jobtrack/internal/domain/errors"
	mockSvc "jobtrack/internal/mocks/service"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, now time.Time, tokenURL, apiBaseURL string) *Client {
	t.Helper()

	cfg := &config.Config{Board: &config.BoardConfig{
		ClientID:       "client-id",
		ClientSecret:   "client-secret",
		RedirectURI:    "https://app.example.com/board/callback",
		Scopes:         "applications:read",
		AuthURL:        "https://board.example.com/oauth/authorize",
		TokenURL:       tokenURL,
		APIBaseURL:     apiBaseURL,
		RequestTimeout: 5 * time.Second,
	}}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	return NewClient(cfg, mockSvc.NewFakeClock(now), logger).(*Client)
}

func TestClient_AuthorizationURL(t *testing.T) {
	client := newTestClient(t, time.Now(), "", "")

	raw := client.AuthorizationURL("opaque-state")

	parsed, err := url.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "board.example.com", parsed.Host)
	assert.Equal(t, "code", parsed.Query().Get("response_type"))
	assert.Equal(t, "client-id", parsed.Query().Get("client_id"))
	assert.Equal(t, "https://app.example.com/board/callback", parsed.Query().Get("redirect_uri"))
	assert.Equal(t, "opaque-state", parsed.Query().Get("state"))
}

func TestClient_ExchangeCode(t *testing.T) {
	now := time.Date(2026, 7, 1, 16, 0, 0, 0, time.UTC)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "authorization_code", r.PostForm.Get("grant_type"))
		assert.Equal(t, "auth-code", r.PostForm.Get("code"))
		assert.Equal(t, "client-secret", r.PostForm.Get("client_secret"))

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"access_token":  "access-token",
			"refresh_token": "refresh-token",
			"expires_in":    3600,
			"token_type":    "bearer",
		})
	}))
	defer server.Close()

	client := newTestClient(t, now, server.URL, "")

	cred, err := client.ExchangeCode(context.Background(), "auth-code")
	require.NoError(t, err)
	assert.Equal(t, "access-token", cred.AccessToken)
	assert.Equal(t, "refresh-token", cred.RefreshToken)
	assert.Equal(t, now.Add(time.Hour), cred.ExpiresAt)
}

func TestClient_ExchangeCode_InvalidGrant(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "invalid_grant"})
	}))
	defer server.Close()

	client := newTestClient(t, time.Now(), server.URL, "")

	_, err := client.ExchangeCode(context.Background(), "spent-code")
	assert.True(t, errors.Is(err, domainerrors.ErrOAuthCodeInvalid))
}

func TestClient_Refresh_InvalidGrant(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "refresh_token", r.PostForm.Get("grant_type"))

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "invalid_grant"})
	}))
	defer server.Close()

	client := newTestClient(t, time.Now(), server.URL, "")

	_, err := client.Refresh(context.Background(), "dead-refresh-token")
	assert.True(t, errors.Is(err, domainerrors.ErrBoardReauthRequired))
}

func TestClient_Refresh_ServerErrorIsTransient(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := newTestClient(t, time.Now(), server.URL, "")

	_, err := client.Refresh(context.Background(), "refresh-token")
	assert.True(t, errors.Is(err, domainerrors.ErrBoardUnavailable))
}

func TestClient_Refresh_NetworkErrorIsTransient(t *testing.T) {
	// A closed server makes the request fail before any HTTP response.
	server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	server.Close()

	client := newTestClient(t, time.Now(), server.URL, "")

	_, err := client.Refresh(context.Background(), "refresh-token")
	assert.True(t, errors.Is(err, domainerrors.ErrBoardUnavailable))
}

func TestClient_Refresh_RejectsIncompleteResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"access_token": "access-token",
			// no refresh_token, no expires_in
		})
	}))
	defer server.Close()

	client := newTestClient(t, time.Now(), server.URL, "")

	_, err := client.Refresh(context.Background(), "refresh-token")
	assert.Error(t, err)
}

func TestClient_ListApplications(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/applications/mine", r.URL.Path)
		assert.Equal(t, "Bearer access-token", r.Header.Get("Authorization"))

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"items": []map[string]string{
				{"id": "app-1", "vacancy_id": "vacancy-1", "state": "viewed"},
				{"id": "app-2", "vacancy_id": "vacancy-2", "state": "under_committee_review"},
			},
		})
	}))
	defer server.Close()

	client := newTestClient(t, time.Now(), "", server.URL)

	records, err := client.ListApplications(context.Background(), "access-token")
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "app-1", records[0].ID)
	assert.Equal(t, "vacancy-1", records[0].VacancyID)
	assert.Equal(t, "viewed", records[0].State)
	// Unknown states pass through untouched; mapping is the sync engine's job.
	assert.Equal(t, "under_committee_review", records[1].State)
}

func TestClient_ListApplications_UnauthorizedMeansReauth(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	client := newTestClient(t, time.Now(), "", server.URL)

	_, err := client.ListApplications(context.Background(), "revoked-token")
	assert.True(t, errors.Is(err, domainerrors.ErrBoardReauthRequired))
}

func TestClient_ListApplications_ServerErrorIsTransient(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client := newTestClient(t, time.Now(), "", server.URL)

	_, err := client.ListApplications(context.Background(), "access-token")
	assert.True(t, errors.Is(err, domainerrors.ErrBoardUnavailable))
}
