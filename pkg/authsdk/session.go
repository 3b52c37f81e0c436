package authsdk

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"
)

// expiryBuffer refreshes the access token shortly before it actually
// expires.
const expiryBuffer = 30 * time.Second

// Session represents an authenticated session with automatic token refresh.
// All Session methods automatically handle token expiration and refresh when needed.
type Session struct {
	client *SDKClient

	mu           sync.RWMutex
	accessToken  string
	refreshToken string
	expiresAt    time.Time
	user         Account
}

// newSession creates a new authenticated session from a login response.
func newSession(client *SDKClient, auth *AuthResponse, refreshToken string) *Session {
	return &Session{
		client:       client,
		accessToken:  auth.AccessToken,
		refreshToken: refreshToken,
		expiresAt:    auth.ExpiresAt.Add(-expiryBuffer),
		user:         auth.User,
	}
}

// getValidToken returns a valid access token, automatically refreshing if expired.
func (s *Session) getValidToken(ctx context.Context) (string, error) {
	s.mu.RLock()
	if time.Now().Before(s.expiresAt) {
		token := s.accessToken
		s.mu.RUnlock()
		return token, nil
	}
	s.mu.RUnlock()

	s.mu.Lock()
	defer s.mu.Unlock()

	// Double-check after acquiring write lock (another goroutine may have refreshed)
	if time.Now().Before(s.expiresAt) {
		return s.accessToken, nil
	}

	if s.refreshToken == "" {
		return "", ErrNoRefreshToken
	}

	out, err := s.client.Refresh(ctx, s.refreshToken)
	if err != nil {
		return "", fmt.Errorf("failed to refresh token: %w", err)
	}

	s.accessToken = out.AccessToken
	s.expiresAt = out.ExpiresAt.Add(-expiryBuffer)

	return s.accessToken, nil
}

// AccessToken returns the current access token without checking expiration.
func (s *Session) AccessToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.accessToken
}

// RefreshToken returns the refresh token received at login.
func (s *Session) RefreshToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.refreshToken
}

// User returns the account returned at login.
func (s *Session) User() Account {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user
}

// Logout revokes the access token and drops the session's refresh token on
// the server. The session is unusable afterwards.
func (s *Session) Logout(ctx context.Context) error {
	s.mu.Lock()
	access, refresh := s.accessToken, s.refreshToken
	s.accessToken, s.refreshToken, s.expiresAt = "", "", time.Time{}
	s.mu.Unlock()

	resp, err := s.client.doRequest(ctx, http.MethodPost, "/v1/auth/logout", LogoutRequest{RefreshToken: refresh}, access)
	if err != nil {
		return err
	}
	return decodeJSON(resp, nil, http.StatusOK)
}

// ChangePassword changes the password. Every refresh token of the account
// is revoked, including this session's.
func (s *Session) ChangePassword(ctx context.Context, current, next string) error {
	resp, err := s.doAuthRequest(ctx, http.MethodPost, "/v1/auth/change-password", ChangePasswordRequest{
		CurrentPassword: current,
		NewPassword:     next,
	})
	if err != nil {
		return err
	}
	if err := decodeJSON(resp, nil, http.StatusOK); err != nil {
		return err
	}

	s.mu.Lock()
	s.refreshToken = ""
	s.mu.Unlock()
	return nil
}
