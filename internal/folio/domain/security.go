package domain

import "time"

// SecurityState holds the credential lifecycle fields of an Account.
type SecurityState struct {
	IsVerified          bool
	IsActive            bool
	FailedLoginAttempts int
	LockedUntil         *time.Time
	LastLogin           *time.Time

	PasswordResetTokenHash string
	PasswordResetExpires   *time.Time
	VerificationTokenHash  string
	VerificationExpires    *time.Time

	RefreshTokens RefreshTokenRing
}

// ClearLockout resets the failed-login counter and any lock.
func (s *SecurityState) ClearLockout() {
	s.FailedLoginAttempts = 0
	s.LockedUntil = nil
}
