package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/aussiebroadwan/folio/internal/folio/service"
	"github.com/aussiebroadwan/folio/pkg/authsdk"
	"github.com/aussiebroadwan/folio/pkg/httpx"
	"github.com/aussiebroadwan/folio/pkg/slogx"
)

const (
	msgRegistered      = "Registration successful. Please check your email to verify your account."
	msgLoggedIn        = "Login successful"
	msgLoggedOut       = "Logout successful"
	msgPasswordReset   = "Password reset successful. You can now login with your new password."
	msgEmailVerified   = "Email verified successfully"
	msgPasswordChanged = "Password changed successfully. Please login again."
)

type AuthHandler struct {
	AuthService *service.AuthService
}

// HandleRegister creates a local account.
//
//	@Summary		Register a new account
//	@Description	Creates a local account and emails a verification link. Duplicate usernames or emails produce the same generic failure as any other registration problem.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		authsdk.RegisterRequest		true	"Registration details"
//	@Success		201		{object}	authsdk.RegisterResponse	"Account created"
//	@Failure		400		{object}	authsdk.ErrorResponse		"Validation failed, weak password or registration refused"
//	@Failure		429		{object}	authsdk.ErrorResponse		"Too many registration attempts"
//	@Failure		500		{object}	authsdk.ErrorResponse		"Internal error"
//	@Router			/v1/auth/register [post].
func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req authsdk.RegisterRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	res, err := h.AuthService.Register(r.Context(), service.RegisterInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, authsdk.RegisterResponse{
		Success: true,
		Message: msgRegistered,
		User:    toAccount(res.Account),
	})
}

// HandleLogin authenticates with email and password.
//
//	@Summary		Log in
//	@Description	Verifies the password and returns an access token. The refresh token is set as the HttpOnly refreshToken cookie. Five failed attempts lock the account for the lockout period.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		authsdk.LoginRequest	true	"Credentials"
//	@Success		200		{object}	authsdk.AuthResponse	"Logged in"
//	@Failure		400		{object}	authsdk.ErrorResponse	"Validation failed"
//	@Failure		401		{object}	authsdk.ErrorResponse	"Invalid credentials, locked or inactive account"
//	@Failure		429		{object}	authsdk.ErrorResponse	"Too many login attempts"
//	@Failure		503		{object}	authsdk.ErrorResponse	"Password verification unavailable"
//	@Router			/v1/auth/login [post].
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req authsdk.LoginRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	res, err := h.AuthService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	setRefreshCookie(w, res.RefreshToken, h.AuthService.Tokens.RefreshTTL())
	httpx.WriteJSON(w, http.StatusOK, authsdk.AuthResponse{
		Success:     true,
		Message:     msgLoggedIn,
		AccessToken: res.AccessToken,
		ExpiresAt:   res.AccessExpiresAt,
		User:        toAccount(res.Account),
	})
}

// HandleRefresh issues a new access token.
//
//	@Summary		Refresh the access token
//	@Description	Reads the refresh token from the refreshToken cookie, or from the JSON body when no cookie is sent. The refresh token is not rotated.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		authsdk.RefreshRequest	false	"Refresh token for clients without cookies"
//	@Success		200		{object}	authsdk.RefreshResponse	"New access token"
//	@Failure		401		{object}	authsdk.ErrorResponse	"Missing, invalid, expired or revoked refresh token"
//	@Router			/v1/auth/refresh [post].
func (h *AuthHandler) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	var req authsdk.RefreshRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	res, err := h.AuthService.Refresh(r.Context(), refreshTokenFrom(r, req.RefreshToken))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, authsdk.RefreshResponse{
		Success:     true,
		AccessToken: res.AccessToken,
		ExpiresAt:   res.AccessExpiresAt,
	})
}

// HandleLogout revokes the caller's tokens.
//
//	@Summary		Log out
//	@Description	Blacklists the bearer access token until it expires and drops the refresh token from the account. Always succeeds for an authenticated caller.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			request	body		authsdk.LogoutRequest	false	"Refresh token for clients without cookies"
//	@Success		200		{object}	authsdk.MessageResponse	"Logged out"
//	@Failure		401		{object}	authsdk.ErrorResponse	"Missing or invalid access token"
//	@Router			/v1/auth/logout [post].
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	// The body is optional. A bad one must not keep the tokens alive.
	var req authsdk.LogoutRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		slogx.FromContext(r.Context()).Debug("ignoring unreadable logout body", "err", err)
		req = authsdk.LogoutRequest{}
	}

	access := httpx.AccessTokenFromContext(r.Context())
	_ = h.AuthService.Logout(r.Context(), access, refreshTokenFrom(r, req.RefreshToken))

	clearRefreshCookie(w)
	httpx.WriteJSON(w, http.StatusOK, authsdk.MessageResponse{Success: true, Message: msgLoggedOut})
}

// HandleForgotPassword starts a password reset.
//
//	@Summary		Request a password reset
//	@Description	Emails a reset link to local accounts. The response is identical whether or not the account exists.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		authsdk.ForgotPasswordRequest	true	"Account email"
//	@Success		200		{object}	authsdk.MessageResponse			"Request accepted"
//	@Failure		400		{object}	authsdk.ErrorResponse			"Validation failed"
//	@Failure		429		{object}	authsdk.ErrorResponse			"Too many reset requests"
//	@Router			/v1/auth/forgot-password [post].
func (h *AuthHandler) HandleForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req authsdk.ForgotPasswordRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	msg, err := h.AuthService.ForgotPassword(r.Context(), req.Email)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, authsdk.MessageResponse{Success: true, Message: msg})
}

// HandleResetPassword completes a password reset.
//
//	@Summary		Reset the password
//	@Description	Consumes the emailed reset token and sets a new password. All refresh tokens of the account are revoked.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			token	path		string							true	"Reset token from the email"
//	@Param			request	body		authsdk.ResetPasswordRequest	true	"New password"
//	@Success		200		{object}	authsdk.MessageResponse			"Password changed"
//	@Failure		400		{object}	authsdk.ErrorResponse			"Invalid or expired token, or weak password"
//	@Failure		429		{object}	authsdk.ErrorResponse			"Too many reset attempts"
//	@Router			/v1/auth/reset-password/{token} [post].
func (h *AuthHandler) HandleResetPassword(w http.ResponseWriter, r *http.Request) {
	var req authsdk.ResetPasswordRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := h.AuthService.ResetPassword(r.Context(), r.PathValue("token"), req.Password); err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, authsdk.MessageResponse{Success: true, Message: msgPasswordReset})
}

// HandleVerifyEmail marks the account's email as verified.
//
//	@Summary		Verify email address
//	@Tags			Auth
//	@Produce		json
//	@Param			token	path		string					true	"Verification token from the email"
//	@Success		200		{object}	authsdk.MessageResponse	"Email verified"
//	@Failure		400		{object}	authsdk.ErrorResponse	"Invalid or expired token"
//	@Router			/v1/auth/verify-email/{token} [post].
func (h *AuthHandler) HandleVerifyEmail(w http.ResponseWriter, r *http.Request) {
	if err := h.AuthService.VerifyEmail(r.Context(), r.PathValue("token")); err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, authsdk.MessageResponse{Success: true, Message: msgEmailVerified})
}

// HandleResendVerification sends a fresh verification link.
//
//	@Summary		Resend the verification email
//	@Description	The response is identical whether or not an unverified account exists.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		authsdk.ResendVerificationRequest	true	"Account email"
//	@Success		200		{object}	authsdk.MessageResponse				"Request accepted"
//	@Failure		400		{object}	authsdk.ErrorResponse				"Validation failed"
//	@Router			/v1/auth/resend-verification [post].
func (h *AuthHandler) HandleResendVerification(w http.ResponseWriter, r *http.Request) {
	var req authsdk.ResendVerificationRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	msg, err := h.AuthService.ResendVerification(r.Context(), req.Email)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, authsdk.MessageResponse{Success: true, Message: msg})
}

// HandleChangePassword changes the caller's password.
//
//	@Summary		Change password
//	@Description	Requires the current password. Every refresh token of the account is revoked.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			request	body		authsdk.ChangePasswordRequest	true	"Current and new password"
//	@Success		200		{object}	authsdk.MessageResponse			"Password changed"
//	@Failure		400		{object}	authsdk.ErrorResponse			"Weak password"
//	@Failure		401		{object}	authsdk.ErrorResponse			"Current password is incorrect"
//	@Router			/v1/auth/change-password [post].
func (h *AuthHandler) HandleChangePassword(w http.ResponseWriter, r *http.Request) {
	var req authsdk.ChangePasswordRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	id, _ := httpx.UserIDFromContext(r.Context())
	if err := h.AuthService.ChangePassword(r.Context(), id, req.CurrentPassword, req.NewPassword); err != nil {
		writeServiceError(w, r, err)
		return
	}

	clearRefreshCookie(w)
	httpx.WriteJSON(w, http.StatusOK, authsdk.MessageResponse{Success: true, Message: msgPasswordChanged})
}
