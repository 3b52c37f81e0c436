package service

import (
	"errors"
	"fmt"
)

// Kind classifies a service error. The HTTP layer maps kinds to status codes.
type Kind string

const (
	KindValidation    Kind = "validation_error"
	KindUnauthorized  Kind = "unauthorized"
	KindForbidden     Kind = "forbidden"
	KindNotFound      Kind = "not_found"
	KindConflict      Kind = "conflict"
	KindConfiguration Kind = "configuration_error"
	KindUnavailable   Kind = "unavailable"
	KindInternal      Kind = "internal_error"
)

// Error is what every service operation returns on failure. Message is safe
// to show to clients; Err is for logs only.
type Error struct {
	Kind    Kind
	Message string
	Details map[string]string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// Sentinel causes. Callers match them with errors.Is through *Error.
var (
	ErrInvalidCredentials = errors.New("invalid_credentials")
	ErrAccountLocked      = errors.New("account_locked")
	ErrAccountInactive    = errors.New("account_inactive")
	ErrInvalidToken       = errors.New("invalid_token")
	ErrTokenExpired       = errors.New("token_expired")
	ErrRegistrationFailed = errors.New("registration_failed")
	ErrPasswordPolicy     = errors.New("password_policy")
	ErrHashUnavailable    = errors.New("hash_unavailable")
	ErrCipherUnavailable  = errors.New("cipher_unavailable")
	ErrNotOwner           = errors.New("not_owner")
	ErrNotFound           = errors.New("not_found")
	ErrSelfAction         = errors.New("self_action")
	ErrProviderConflict   = errors.New("provider_conflict")
)

// Client-facing messages.
const (
	MsgInvalidCredentials = "Invalid email or password"
	MsgAccountInactive    = "Account is deactivated"
	MsgRegistrationFailed = "Registration failed. Please check your information and try again."
	MsgResetRequested     = "If an account exists, a password reset link has been sent."
	MsgVerificationResent = "If an unverified account exists, a verification link has been sent."
	MsgResetTokenInvalid  = "Password reset token is invalid or has expired"
	MsgVerifyTokenInvalid = "Verification token is invalid or has expired"
	MsgRefreshInvalid     = "Invalid refresh token"
	MsgRefreshExpired     = "Refresh token expired. Please login again."
	MsgRefreshMissing     = "Refresh token not found"
	MsgNotOwner           = "You can only access your own resources."
	MsgUnavailable        = "Service temporarily unavailable. Please try again."
	MsgInternal           = "An internal error occurred"
	MsgCurrentPassword    = "Current password is incorrect"
	MsgCipherUnavailable  = "Sensitive profile fields cannot be saved: encryption is not configured"
)

func newError(kind Kind, msg string, err error) *Error {
	return &Error{Kind: kind, Message: msg, Err: err}
}

func invalidCredentials() *Error {
	return newError(KindUnauthorized, MsgInvalidCredentials, ErrInvalidCredentials)
}

func internal(err error) *Error {
	return newError(KindInternal, MsgInternal, err)
}

func notFound(what string) *Error {
	return newError(KindNotFound, what+" not found", ErrNotFound)
}

func validation(msg string, details map[string]string) *Error {
	return &Error{Kind: KindValidation, Message: msg, Details: details}
}

// AsError returns err as an *Error, wrapping unknown errors as internal.
func AsError(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return internal(err)
}
