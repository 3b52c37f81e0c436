package authsdk

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestLoginAndRefresh(t *testing.T) {
	t.Parallel()

	var refreshes atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1/auth/login", func(w http.ResponseWriter, r *http.Request) {
		var req LoginRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		if req.Password != "right" {
			writeJSON(w, http.StatusUnauthorized, ErrorResponse{Code: ErrorCodeUnauthorized, Message: "Invalid email or password"})
			return
		}
		http.SetCookie(w, &http.Cookie{Name: RefreshCookieName, Value: "refresh-1", HttpOnly: true, MaxAge: 60})
		// Already expired so the first call through the session refreshes.
		writeJSON(w, http.StatusOK, AuthResponse{
			Success:     true,
			AccessToken: "access-0",
			ExpiresAt:   time.Now().Add(-time.Minute),
			User:        Account{ID: "u1", Username: "alice"},
		})
	})
	mux.HandleFunc("POST /v1/auth/refresh", func(w http.ResponseWriter, r *http.Request) {
		var req RefreshRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Equal(t, "refresh-1", req.RefreshToken)
		refreshes.Add(1)
		writeJSON(w, http.StatusOK, RefreshResponse{Success: true, AccessToken: "access-1", ExpiresAt: time.Now().Add(15 * time.Minute)})
	})
	mux.HandleFunc("GET /v1/me/dashboard", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "Bearer access-1", r.Header.Get("Authorization"))
		writeJSON(w, http.StatusOK, DashboardResponse{Success: true, Data: DashboardStats{Projects: 2, Posts: 1}})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	client := NewSDKClient(srv.URL + "/")
	ctx := context.Background()

	t.Run("bad password", func(t *testing.T) {
		_, err := client.AuthenticateWithPassword(ctx, "alice@example.com", "wrong")
		require.True(t, IsCode(err, ErrorCodeUnauthorized))
		require.Equal(t, http.StatusUnauthorized, StatusCode(err))
	})

	t.Run("session refreshes expired access token", func(t *testing.T) {
		s, err := client.AuthenticateWithPassword(ctx, "alice@example.com", "right")
		require.NoError(t, err)
		require.Equal(t, "refresh-1", s.RefreshToken())
		require.Equal(t, "alice", s.User().Username)

		stats, err := s.GetDashboard(ctx)
		require.NoError(t, err)
		require.Equal(t, int64(2), stats.Projects)

		_, err = s.GetDashboard(ctx)
		require.NoError(t, err)
		require.Equal(t, int32(1), refreshes.Load())
	})
}

func TestSessionWithoutRefreshToken(t *testing.T) {
	t.Parallel()

	client := NewSDKClient("http://127.0.0.1:1")
	s := client.NewSessionFromTokens("access", time.Now().Add(-time.Hour), "")
	_, err := s.GetPortfolio(context.Background())
	require.ErrorIs(t, err, ErrNoRefreshToken)
}

func TestParseErrorResponse(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		status   int
		body     string
		wantCode string
		wantMsg  string
	}{
		{
			name:     "error envelope",
			status:   http.StatusBadRequest,
			body:     `{"success":false,"code":"validation_error","message":"Validation failed","details":{"email":"must be a valid email"}}`,
			wantCode: ErrorCodeValidation,
			wantMsg:  "Validation failed",
		},
		{
			name:     "non json body",
			status:   http.StatusBadGateway,
			body:     `<html>bad gateway</html>`,
			wantCode: ErrorCodeInternal,
			wantMsg:  "HTTP 502: Bad Gateway",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := parseErrorResponse(&http.Response{StatusCode: tt.status}, []byte(tt.body))
			var apiErr *APIError
			require.ErrorAs(t, err, &apiErr)
			require.Equal(t, tt.status, apiErr.StatusCode)
			require.Equal(t, tt.wantCode, apiErr.Code)
			require.Equal(t, tt.wantMsg, apiErr.Message)
		})
	}

	require.NoError(t, parseErrorResponse(&http.Response{StatusCode: http.StatusOK}, nil))
}

func TestGetReadinessDegraded(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/readyz", r.URL.Path)
		writeJSON(w, http.StatusServiceUnavailable, HealthResponse{
			Status: "degraded",
			Checks: &HealthChecks{Database: "ok", Blacklist: "error: dial tcp: connection refused"},
		})
	}))
	t.Cleanup(srv.Close)

	health, err := NewSDKClient(srv.URL).GetReadiness(context.Background())
	require.Error(t, err)
	require.Equal(t, http.StatusServiceUnavailable, StatusCode(err))
	require.True(t, IsCode(err, ErrorCodeUnavailable))
	require.NotNil(t, health)
	require.Equal(t, "degraded", health.Status)
	require.Contains(t, health.Checks.Blacklist, "connection refused")
}
