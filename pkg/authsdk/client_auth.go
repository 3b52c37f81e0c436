package authsdk

import (
	"context"
	"net/http"
	"net/url"
)

// Register creates a local account. The account must verify its email
// before the verification flag is set, but may log in immediately.
func (c *SDKClient) Register(ctx context.Context, req RegisterRequest) (*RegisterResponse, error) {
	resp, err := c.doRequest(ctx, http.MethodPost, "/v1/auth/register", req, "")
	if err != nil {
		return nil, err
	}

	var out RegisterResponse
	if err := decodeJSON(resp, &out, http.StatusCreated); err != nil {
		return nil, err
	}
	return &out, nil
}

// Login authenticates and returns the login response together with the
// refresh token taken from the refreshToken cookie.
func (c *SDKClient) Login(ctx context.Context, req LoginRequest) (*AuthResponse, string, error) {
	resp, err := c.doRequest(ctx, http.MethodPost, "/v1/auth/login", req, "")
	if err != nil {
		return nil, "", err
	}
	refresh := refreshCookie(resp)

	var out AuthResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, "", err
	}
	return &out, refresh, nil
}

// Refresh exchanges a refresh token for a new access token.
func (c *SDKClient) Refresh(ctx context.Context, refreshToken string) (*RefreshResponse, error) {
	resp, err := c.doRequest(ctx, http.MethodPost, "/v1/auth/refresh", RefreshRequest{RefreshToken: refreshToken}, "")
	if err != nil {
		return nil, err
	}

	var out RefreshResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// ForgotPassword requests a reset email. The response message is the same
// whether or not the account exists.
func (c *SDKClient) ForgotPassword(ctx context.Context, email string) (*MessageResponse, error) {
	return c.postMessage(ctx, "/v1/auth/forgot-password", ForgotPasswordRequest{Email: email})
}

// ResetPassword sets a new password using the emailed reset token.
func (c *SDKClient) ResetPassword(ctx context.Context, token, password string) (*MessageResponse, error) {
	return c.postMessage(ctx, "/v1/auth/reset-password/"+url.PathEscape(token), ResetPasswordRequest{Password: password})
}

// VerifyEmail consumes an emailed verification token.
func (c *SDKClient) VerifyEmail(ctx context.Context, token string) (*MessageResponse, error) {
	return c.postMessage(ctx, "/v1/auth/verify-email/"+url.PathEscape(token), nil)
}

// ResendVerification requests a new verification email.
func (c *SDKClient) ResendVerification(ctx context.Context, email string) (*MessageResponse, error) {
	return c.postMessage(ctx, "/v1/auth/resend-verification", ResendVerificationRequest{Email: email})
}

// GetPublicPortfolio fetches the public portfolio of username.
func (c *SDKClient) GetPublicPortfolio(ctx context.Context, username string) (*PublicPortfolio, error) {
	resp, err := c.doRequest(ctx, http.MethodGet, "/v1/portfolio/"+url.PathEscape(username), nil, "")
	if err != nil {
		return nil, err
	}

	var out PublicPortfolioResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out.Data, nil
}

func (c *SDKClient) postMessage(ctx context.Context, path string, payload any) (*MessageResponse, error) {
	resp, err := c.doRequest(ctx, http.MethodPost, path, payload, "")
	if err != nil {
		return nil, err
	}

	var out MessageResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}
