package service

import (
	"bytes"
	"context"
	"encoding/base64"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/aussiebroadwan/folio/internal/folio/domain"
	"github.com/aussiebroadwan/folio/internal/folio/store/drivers/sqlite"
	"github.com/aussiebroadwan/folio/pkg/cryptox"
	"github.com/aussiebroadwan/folio/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

const (
	strongPassword = "Str0ng!Passw0rd"
	otherPassword  = "An0ther!Secret9"
	adminEmail     = "admin@example.com"
)

var testArgon2 = cryptox.Argon2Params{Memory: 1024, Iterations: 1, Parallelism: 1, SaltLength: 16, KeyLength: 32}

type sentMail struct {
	Kind  string
	To    string
	Token string
}

type captureMailer struct {
	mu   sync.Mutex
	sent []sentMail
}

func (m *captureMailer) record(kind, to, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, sentMail{Kind: kind, To: to, Token: token})
	return nil
}

func (m *captureMailer) SendVerificationEmail(_ context.Context, to, token string) error {
	return m.record("verification", to, token)
}

func (m *captureMailer) SendPasswordResetEmail(_ context.Context, to, token string) error {
	return m.record("password_reset", to, token)
}

func (m *captureMailer) SendPasswordChangedNotice(_ context.Context, to string) error {
	return m.record("password_changed", to, "")
}

// last returns the most recent mail of kind sent to to.
func (m *captureMailer) last(kind, to string) (sentMail, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := len(m.sent) - 1; i >= 0; i-- {
		if m.sent[i].Kind == kind && m.sent[i].To == to {
			return m.sent[i], true
		}
	}
	return sentMail{}, false
}

func (m *captureMailer) count(kind string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, s := range m.sent {
		if s.Kind == kind {
			n++
		}
	}
	return n
}

type harness struct {
	store     *sqlite.Store
	clock     *FakeClock
	mailer    *captureMailer
	notifier  *Notifier
	jwt       *jwtx.HS256Issuer
	cipher    *cryptox.FieldCipher
	auth      *AuthService
	profiles  *ProfileService
	portfolio *PortfolioService
	admin     *AdminService
}

type harnessOption func(*harnessConfig)

type harnessConfig struct {
	cipherKey string
}

func withoutCipher() harnessOption {
	return func(c *harnessConfig) { c.cipherKey = "" }
}

func testCipherKey() string {
	return base64.StdEncoding.EncodeToString(bytes.Repeat([]byte{7}, 32))
}

func newHarness(t *testing.T, opts ...harnessOption) *harness {
	t.Helper()

	cfg := harnessConfig{cipherKey: testCipherKey()}
	for _, o := range opts {
		o(&cfg)
	}

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.ApplyMigrations())

	// Token expiry is compared against wall time by the blacklist, so the
	// fake clock starts at the real present.
	clock := NewFakeClock(time.Now().Truncate(time.Second))
	issuer, err := jwtx.NewHS256Issuer(jwtx.HS256Config{
		AccessSecret:  "access-secret-access-secret-0123456789",
		RefreshSecret: "refresh-secret-refresh-secret-0123456789",
		Issuer:        "folio-test",
		AccessTTL:     15 * time.Minute,
		RefreshTTL:    7 * 24 * time.Hour,
		Now:           clock.Now,
	})
	require.NoError(t, err)

	cipher, err := cryptox.NewFieldCipher(cfg.cipherKey)
	require.NoError(t, err)

	mailer := &captureMailer{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	notifier := NewNotifier(mailer, logger, time.Second)

	profiles := &ProfileService{Store: st, Cipher: cipher, Clock: clock}
	h := &harness{
		store:    st,
		clock:    clock,
		mailer:   mailer,
		notifier: notifier,
		jwt:      issuer,
		cipher:   cipher,
		auth: &AuthService{
			Store:        st,
			Blacklist:    st.Blacklist(),
			Hasher:       cryptox.NewHasher(func() cryptox.Argon2Params { return testArgon2 }, ""),
			Policy:       cryptox.NewPasswordPolicy(cryptox.DefaultPolicyConfig()),
			Tokens:       &TokenIssuer{JWT: issuer, Clock: clock, RingCap: domain.DefaultRefreshRingCap},
			Lock:         NewLockGuard(clock, DefaultMaxLoginAttempts, DefaultLockDuration),
			Reset:        NewPasswordResetTokens(clock, DefaultPasswordResetTTL),
			Verification: NewEmailVerificationTokens(clock, DefaultEmailVerificationTTL),
			Roles:        NewStaticAdminList(adminEmail),
			Notifier:     notifier,
			Clock:        clock,
		},
		profiles:  profiles,
		portfolio: &PortfolioService{Store: st, Clock: clock},
		admin:     &AdminService{Store: st, Profiles: profiles, Clock: clock},
	}
	t.Cleanup(notifier.Wait)
	return h
}

// register creates a local account and returns its summary.
func (h *harness) register(t *testing.T, username string) AccountSummary {
	t.Helper()
	res, err := h.auth.Register(context.Background(), RegisterInput{
		Username: username,
		Email:    username + "@example.com",
		Password: strongPassword,
	})
	require.NoError(t, err)
	return res.Account
}

func (h *harness) login(t *testing.T, email, password string) LoginResult {
	t.Helper()
	res, err := h.auth.Login(context.Background(), email, password)
	require.NoError(t, err)
	return res
}

func (h *harness) account(t *testing.T, id string) domain.Account {
	t.Helper()
	a, err := h.store.Accounts().GetByID(context.Background(), id)
	require.NoError(t, err)
	return a
}

// requireKind asserts err is a service error of kind.
func requireKind(t *testing.T, err error, kind Kind) *Error {
	t.Helper()
	require.Error(t, err)
	se := AsError(err)
	require.Equal(t, kind, se.Kind, "error: %v", err)
	return se
}
