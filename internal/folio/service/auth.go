package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/aussiebroadwan/folio/internal/folio/domain"
	"github.com/aussiebroadwan/folio/internal/folio/store"
	"github.com/aussiebroadwan/folio/pkg/cryptox"
	"github.com/aussiebroadwan/folio/pkg/idx"
	"github.com/aussiebroadwan/folio/pkg/jwtx"
	"github.com/aussiebroadwan/folio/pkg/slogx"
)

const DefaultHashTimeout = 10 * time.Second

// AuthService owns registration, login, session tokens and the password
// lifecycle.
type AuthService struct {
	Store        store.Store
	Blacklist    store.Blacklist
	Hasher       *cryptox.Hasher
	Policy       *cryptox.PasswordPolicy
	Tokens       *TokenIssuer
	Lock         *LockGuard
	Reset        *OneTimeTokens
	Verification *OneTimeTokens
	Roles        AdminRoleResolver
	Notifier     *Notifier
	Clock        Clock

	// HashTimeout bounds a single hash or verify call.
	HashTimeout time.Duration
}

type RegisterInput struct {
	Username string
	Email    string
	Password string
}

type RegisterResult struct {
	Account AccountSummary
}

type LoginResult struct {
	Account         AccountSummary
	AccessToken     string
	AccessExpiresAt time.Time
	RefreshToken    string
}

type RefreshResult struct {
	AccessToken     string
	AccessExpiresAt time.Time
}

// FederatedIdentity is what an external identity provider vouches for.
type FederatedIdentity struct {
	Subject        string
	Email          string
	FirstName      string
	LastName       string
	ProfilePicture string
}

// Register creates a local account and sends the verification email.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (RegisterResult, error) {
	l := slogx.FromContext(ctx)

	username := strings.TrimSpace(in.Username)
	details := map[string]string{}
	if err := domain.ValidateUsername(username); err != nil {
		details["username"] = domain.MsgUsernameInvalid
	}
	email, err := domain.NormalizeEmail(in.Email)
	if err != nil {
		details["email"] = domain.MsgEmailInvalid
	}
	if res := s.Policy.Validate(in.Password); !res.Valid {
		details["password"] = strings.Join(res.Errors, ", ")
	}
	if len(details) > 0 {
		return RegisterResult{}, validation("Validation failed", details)
	}

	if taken, err := s.identityTaken(ctx, username, email); err != nil {
		return RegisterResult{}, internal(err)
	} else if taken {
		l.Info("registration rejected: identity in use")
		return RegisterResult{}, newError(KindConflict, MsgRegistrationFailed, ErrRegistrationFailed)
	}

	hash, err := s.hash(ctx, in.Password)
	if err != nil {
		return RegisterResult{}, err
	}

	now := s.Clock.Now()
	a := domain.Account{
		ID:           idx.NewAt(now).String(),
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		Role:         s.Roles.RoleForEmail(email),
		AuthProvider: domain.ProviderLocal,
		Security:     domain.SecurityState{IsActive: true},
		Preferences:  domain.DefaultPreferences(),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := a.Validate(); err != nil {
		return RegisterResult{}, internal(err)
	}
	raw, err := s.Verification.Generate(&a.Security)
	if err != nil {
		return RegisterResult{}, internal(err)
	}

	if err := s.Store.Accounts().Create(ctx, a); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return RegisterResult{}, newError(KindConflict, MsgRegistrationFailed, ErrRegistrationFailed)
		}
		return RegisterResult{}, internal(err)
	}

	l.Info("account registered", slog.String("account_id", a.ID), slog.String("role", string(a.Role)))
	s.Notifier.VerificationEmail(a.Email, raw)

	return RegisterResult{Account: Summarize(a)}, nil
}

func (s *AuthService) identityTaken(ctx context.Context, username, email string) (bool, error) {
	if _, err := s.Store.Accounts().GetByEmail(ctx, email); err == nil {
		return true, nil
	} else if !errors.Is(err, store.ErrNotFound) {
		return false, err
	}
	if _, err := s.Store.Accounts().GetByUsername(ctx, username); err == nil {
		return true, nil
	} else if !errors.Is(err, store.ErrNotFound) {
		return false, err
	}
	return false, nil
}

// Login checks a password and issues an access and refresh token. Unknown
// emails, wrong passwords and federated accounts all get the same answer.
func (s *AuthService) Login(ctx context.Context, email, password string) (LoginResult, error) {
	l := slogx.FromContext(ctx)

	email, err := domain.NormalizeEmail(email)
	if err != nil || password == "" {
		return LoginResult{}, invalidCredentials()
	}

	a, err := s.Store.Accounts().GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return LoginResult{}, invalidCredentials()
		}
		return LoginResult{}, internal(err)
	}
	if !a.IsLocal() {
		l.Info("password login attempted on federated account", slog.String("account_id", a.ID))
		return LoginResult{}, invalidCredentials()
	}
	if s.Lock.IsLocked(&a.Security) {
		return LoginResult{}, s.lockedError(&a.Security)
	}
	if !a.Security.IsActive {
		return LoginResult{}, newError(KindUnauthorized, MsgAccountInactive, ErrAccountInactive)
	}

	ok, err := s.verify(ctx, a.PasswordHash, password)
	if err != nil {
		// The comparison never finished, so it does not count as a failure.
		return LoginResult{}, err
	}

	var (
		result LoginResult
		failed bool
		locked *domain.SecurityState
	)
	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		fresh, err := tx.Accounts().GetByID(ctx, a.ID)
		if err != nil {
			return err
		}
		sec := &fresh.Security

		if !ok {
			failed = true
			if s.Lock.RecordFailure(sec) {
				l.Warn("account locked after failed logins",
					slog.String("account_id", fresh.ID),
					slog.Int("attempts", sec.FailedLoginAttempts))
			}
			return tx.Accounts().UpdateSecurity(ctx, fresh.ID, *sec)
		}

		if s.Lock.IsLocked(sec) {
			locked = sec
			return nil
		}

		s.Lock.RecordSuccess(sec)
		if err := tx.Accounts().UpdateSecurity(ctx, fresh.ID, *sec); err != nil {
			return err
		}

		result, err = s.issueSession(ctx, tx.Accounts(), &fresh)
		return err
	})
	switch {
	case err != nil:
		return LoginResult{}, AsError(err)
	case failed:
		return LoginResult{}, invalidCredentials()
	case locked != nil:
		return LoginResult{}, s.lockedError(locked)
	}

	l.Info("login succeeded", slog.String("account_id", a.ID))
	return result, nil
}

func (s *AuthService) lockedError(sec *domain.SecurityState) *Error {
	msg := "Account locked. Try again in " + strconv.Itoa(s.Lock.RemainingMinutes(sec)) + " minute(s)"
	return newError(KindUnauthorized, msg, ErrAccountLocked)
}

// issueSession signs both tokens and persists the refresh ring through
// accounts.
func (s *AuthService) issueSession(ctx context.Context, accounts store.Accounts, a *domain.Account) (LoginResult, error) {
	access, claims, err := s.Tokens.IssueAccess(*a)
	if err != nil {
		return LoginResult{}, err
	}
	refresh, err := s.Tokens.IssueRefreshFor(ctx, accounts, a)
	if err != nil {
		return LoginResult{}, err
	}
	return LoginResult{
		Account:         Summarize(*a),
		AccessToken:     access,
		AccessExpiresAt: claims.ExpiresAt.Time,
		RefreshToken:    refresh,
	}, nil
}

// Refresh trades a live refresh token for a new access token. The refresh
// token itself is not rotated.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (RefreshResult, error) {
	if refreshToken == "" {
		return RefreshResult{}, newError(KindUnauthorized, MsgRefreshMissing, ErrInvalidToken)
	}

	claims, err := s.Tokens.VerifyRefresh(refreshToken)
	if err != nil {
		if errors.Is(err, jwtx.ErrExpired) {
			return RefreshResult{}, newError(KindUnauthorized, MsgRefreshExpired, ErrTokenExpired)
		}
		return RefreshResult{}, newError(KindUnauthorized, MsgRefreshInvalid, fmt.Errorf("%w: %w", ErrInvalidToken, err))
	}

	a, err := s.Store.Accounts().GetByID(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return RefreshResult{}, newError(KindUnauthorized, MsgRefreshInvalid, ErrInvalidToken)
		}
		return RefreshResult{}, internal(err)
	}
	if !a.Security.RefreshTokens.Contains(cryptox.FingerprintToken(refreshToken), s.Clock.Now()) {
		return RefreshResult{}, newError(KindUnauthorized, MsgRefreshInvalid, ErrInvalidToken)
	}
	if !a.Security.IsActive {
		return RefreshResult{}, newError(KindUnauthorized, MsgAccountInactive, ErrAccountInactive)
	}

	access, ac, err := s.Tokens.IssueAccess(a)
	if err != nil {
		return RefreshResult{}, internal(err)
	}
	return RefreshResult{AccessToken: access, AccessExpiresAt: ac.ExpiresAt.Time}, nil
}

// Logout drops the refresh session and blacklists the access token until it
// expires. Failures are logged; the client always sees success.
func (s *AuthService) Logout(ctx context.Context, accessToken, refreshToken string) error {
	l := slogx.FromContext(ctx)

	if refreshToken != "" {
		if err := s.dropRefresh(ctx, refreshToken); err != nil {
			l.Error("logout: dropping refresh session failed", slog.Any("error", err))
		}
	}

	if accessToken != "" {
		exp, ok := s.Tokens.AccessExpiry(accessToken)
		switch {
		case !ok:
			l.Warn("logout: access token could not be decoded")
		case !exp.After(s.Clock.Now()):
			// Already expired; nothing to revoke.
		default:
			if err := s.Blacklist.Add(ctx, accessToken, exp); err != nil {
				l.Error("logout: blacklisting access token failed", slog.Any("error", err))
			}
		}
	}
	return nil
}

func (s *AuthService) dropRefresh(ctx context.Context, refreshToken string) error {
	claims, err := s.Tokens.JWT.Decode(refreshToken)
	if err != nil || claims.Subject == "" {
		return nil
	}
	fp := cryptox.FingerprintToken(refreshToken)
	return s.Store.WithTx(ctx, func(tx store.Tx) error {
		a, err := tx.Accounts().GetByID(ctx, claims.Subject)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return nil
			}
			return err
		}
		if !a.Security.RefreshTokens.Remove(fp) {
			return nil
		}
		return tx.Accounts().ReplaceRefreshTokens(ctx, a.ID, a.Security.RefreshTokens.Records())
	})
}

// ForgotPassword starts a reset for local accounts. The returned message is
// the same whatever happened.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) (string, error) {
	l := slogx.FromContext(ctx)

	email, err := domain.NormalizeEmail(email)
	if err != nil {
		return MsgResetRequested, nil
	}

	var (
		raw string
		to  string
	)
	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		a, err := tx.Accounts().GetByEmail(ctx, email)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return nil
			}
			return err
		}
		if !a.IsLocal() {
			l.Info("password reset requested for federated account", slog.String("account_id", a.ID))
			return nil
		}
		raw, err = s.Reset.Generate(&a.Security)
		if err != nil {
			return err
		}
		to = a.Email
		return tx.Accounts().UpdateSecurity(ctx, a.ID, a.Security)
	})
	if err != nil {
		l.Error("password reset request failed", slog.Any("error", err))
		return MsgResetRequested, nil
	}
	if raw != "" {
		s.Notifier.PasswordResetEmail(to, raw)
	}
	return MsgResetRequested, nil
}

// ResetPassword sets a new password from a reset token, ending every
// session and any lockout.
func (s *AuthService) ResetPassword(ctx context.Context, rawToken, newPassword string) error {
	l := slogx.FromContext(ctx)
	invalid := newError(KindValidation, MsgResetTokenInvalid, ErrInvalidToken)

	if rawToken == "" {
		return invalid
	}
	if _, err := s.Reset.Lookup(ctx, s.Store.Accounts(), rawToken); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return invalid
		}
		return internal(err)
	}

	if res := s.Policy.Validate(newPassword); !res.Valid {
		return &Error{
			Kind:    KindValidation,
			Message: strings.Join(res.Errors, ", "),
			Details: map[string]string{"password": strings.Join(res.Errors, ", ")},
			Err:     ErrPasswordPolicy,
		}
	}

	hash, err := s.hash(ctx, newPassword)
	if err != nil {
		return err
	}

	var to string
	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		// Re-read under the transaction so a concurrent reset cannot reuse
		// the token.
		a, err := s.Reset.Lookup(ctx, tx.Accounts(), rawToken)
		if err != nil {
			return err
		}
		if !a.IsLocal() {
			return store.ErrNotFound
		}
		if err := tx.Accounts().UpdatePasswordHash(ctx, a.ID, hash); err != nil {
			return err
		}
		s.Reset.Consume(&a.Security)
		a.Security.ClearLockout()
		a.Security.RefreshTokens.Clear()
		if err := tx.Accounts().UpdateSecurity(ctx, a.ID, a.Security); err != nil {
			return err
		}
		to = a.Email
		return tx.Accounts().ReplaceRefreshTokens(ctx, a.ID, nil)
	})
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return invalid
		}
		return internal(err)
	}

	l.Info("password reset completed")
	s.Notifier.PasswordChangedNotice(to)
	return nil
}

// VerifyEmail marks the account holding rawToken as verified.
func (s *AuthService) VerifyEmail(ctx context.Context, rawToken string) error {
	invalid := newError(KindValidation, MsgVerifyTokenInvalid, ErrInvalidToken)
	if rawToken == "" {
		return invalid
	}
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		a, err := s.Verification.Lookup(ctx, tx.Accounts(), rawToken)
		if err != nil {
			return err
		}
		s.Verification.Consume(&a.Security)
		a.Security.IsVerified = true
		return tx.Accounts().UpdateSecurity(ctx, a.ID, a.Security)
	})
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return invalid
		}
		return internal(err)
	}
	return nil
}

// ResendVerification issues a fresh verification token to an unverified
// local account. The message never reveals whether one exists.
func (s *AuthService) ResendVerification(ctx context.Context, email string) (string, error) {
	l := slogx.FromContext(ctx)

	email, err := domain.NormalizeEmail(email)
	if err != nil {
		return MsgVerificationResent, nil
	}

	var raw, to string
	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		a, err := tx.Accounts().GetByEmail(ctx, email)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return nil
			}
			return err
		}
		if !a.IsLocal() || a.Security.IsVerified {
			return nil
		}
		if raw, err = s.Verification.Generate(&a.Security); err != nil {
			return err
		}
		to = a.Email
		return tx.Accounts().UpdateSecurity(ctx, a.ID, a.Security)
	})
	if err != nil {
		l.Error("resend verification failed", slog.Any("error", err))
		return MsgVerificationResent, nil
	}
	if raw != "" {
		s.Notifier.VerificationEmail(to, raw)
	}
	return MsgVerificationResent, nil
}

// ChangePassword replaces the password of a signed-in local account and
// revokes all of its refresh sessions.
func (s *AuthService) ChangePassword(ctx context.Context, accountID, current, next string) error {
	a, err := s.Store.Accounts().GetByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return notFound("Account")
		}
		return internal(err)
	}
	if !a.IsLocal() {
		return validation("Password change is not available for federated accounts", nil)
	}

	ok, err := s.verify(ctx, a.PasswordHash, current)
	if err != nil {
		return err
	}
	if !ok {
		return newError(KindUnauthorized, MsgCurrentPassword, ErrInvalidCredentials)
	}
	if res := s.Policy.Validate(next); !res.Valid {
		return &Error{
			Kind:    KindValidation,
			Message: strings.Join(res.Errors, ", "),
			Details: map[string]string{"newPassword": strings.Join(res.Errors, ", ")},
			Err:     ErrPasswordPolicy,
		}
	}

	hash, err := s.hash(ctx, next)
	if err != nil {
		return err
	}

	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Accounts().UpdatePasswordHash(ctx, a.ID, hash); err != nil {
			return err
		}
		return tx.Accounts().ReplaceRefreshTokens(ctx, a.ID, nil)
	})
	if err != nil {
		return internal(err)
	}

	slogx.FromContext(ctx).Info("password changed", slog.String("account_id", a.ID))
	s.Notifier.PasswordChangedNotice(a.Email)
	return nil
}

var usernameStrip = regexp.MustCompile(`[^a-zA-Z0-9._-]`)

// ProvisionFederated signs in an externally authenticated identity,
// creating a verified federated account on first use. An email already
// owned by another account is refused.
func (s *AuthService) ProvisionFederated(ctx context.Context, id FederatedIdentity) (LoginResult, error) {
	l := slogx.FromContext(ctx)

	subject := strings.TrimSpace(id.Subject)
	if subject == "" {
		return LoginResult{}, validation("Federated subject is required", map[string]string{"subject": "required"})
	}
	email, err := domain.NormalizeEmail(id.Email)
	if err != nil {
		return LoginResult{}, validation(domain.MsgEmailInvalid, map[string]string{"email": domain.MsgEmailInvalid})
	}

	var result LoginResult
	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		a, err := tx.Accounts().GetByFederatedSubject(ctx, subject)
		switch {
		case err == nil:
			if !a.Security.IsActive {
				return newError(KindUnauthorized, MsgAccountInactive, ErrAccountInactive)
			}
		case errors.Is(err, store.ErrNotFound):
			if _, err := tx.Accounts().GetByEmail(ctx, email); err == nil {
				return newError(KindConflict, "Email already registered with another sign-in method", ErrProviderConflict)
			} else if !errors.Is(err, store.ErrNotFound) {
				return err
			}
			a, err = s.newFederatedAccount(ctx, tx.Accounts(), subject, email, id)
			if err != nil {
				return err
			}
			l.Info("federated account created", slog.String("account_id", a.ID))
		default:
			return err
		}

		s.Lock.RecordSuccess(&a.Security)
		if err := tx.Accounts().UpdateSecurity(ctx, a.ID, a.Security); err != nil {
			return err
		}
		result, err = s.issueSession(ctx, tx.Accounts(), &a)
		return err
	})
	if err != nil {
		return LoginResult{}, AsError(err)
	}
	return result, nil
}

func (s *AuthService) newFederatedAccount(
	ctx context.Context,
	accounts store.Accounts,
	subject, email string,
	id FederatedIdentity,
) (domain.Account, error) {
	base := usernameStrip.ReplaceAllString(email[:strings.LastIndex(email, "@")], "")
	if len(base) > 24 {
		base = base[:24]
	}
	for len(base) < 3 {
		base += "0"
	}

	username := base
	for i := 1; ; i++ {
		_, err := accounts.GetByUsername(ctx, username)
		if errors.Is(err, store.ErrNotFound) {
			break
		}
		if err != nil {
			return domain.Account{}, err
		}
		if i > 100 {
			return domain.Account{}, errors.New("service: no free username for federated account")
		}
		username = base + strconv.Itoa(i)
	}

	now := s.Clock.Now()
	a := domain.Account{
		ID:               idx.NewAt(now).String(),
		Username:         username,
		Email:            email,
		Role:             s.Roles.RoleForEmail(email),
		AuthProvider:     domain.ProviderFederated,
		FederatedSubject: subject,
		Security:         domain.SecurityState{IsActive: true, IsVerified: true},
		Profile: domain.Profile{
			FirstName:      strings.TrimSpace(id.FirstName),
			LastName:       strings.TrimSpace(id.LastName),
			ProfilePicture: strings.TrimSpace(id.ProfilePicture),
		},
		Preferences: domain.DefaultPreferences(),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := a.Validate(); err != nil {
		return domain.Account{}, err
	}
	if err := accounts.Create(ctx, a); err != nil {
		return domain.Account{}, err
	}
	return a, nil
}

func (s *AuthService) hashTimeout() time.Duration {
	if s.HashTimeout > 0 {
		return s.HashTimeout
	}
	return DefaultHashTimeout
}

func (s *AuthService) hash(ctx context.Context, password string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.hashTimeout())
	defer cancel()
	h, err := s.Hasher.Hash(ctx, password)
	if err != nil {
		if errors.Is(err, cryptox.ErrHashCanceled) {
			return "", newError(KindUnavailable, MsgUnavailable, fmt.Errorf("%w: %w", ErrHashUnavailable, err))
		}
		return "", internal(err)
	}
	return h, nil
}

func (s *AuthService) verify(ctx context.Context, encoded, password string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, s.hashTimeout())
	defer cancel()
	ok, err := s.Hasher.Verify(ctx, encoded, password)
	if err != nil {
		return false, newError(KindUnavailable, MsgUnavailable, fmt.Errorf("%w: %w", ErrHashUnavailable, err))
	}
	return ok, nil
}
