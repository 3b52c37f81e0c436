package jwtx_test

import (
	"strings"
	"testing"
	"time"

	"github.com/aussiebroadwan/folio/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

const (
	accessSecret  = "access-secret-access-secret-0123456789"
	refreshSecret = "refresh-secret-refresh-secret-0123456789"
)

type fakeClock struct{ now time.Time }

func (c *fakeClock) Now() time.Time { return c.now }

func newIssuer(t *testing.T, clock *fakeClock) *jwtx.HS256Issuer {
	t.Helper()
	i, err := jwtx.NewHS256Issuer(jwtx.HS256Config{
		AccessSecret:  accessSecret,
		RefreshSecret: refreshSecret,
		Issuer:        "folio",
		Now:           clock.Now,
	})
	require.NoError(t, err)
	return i
}

func TestNewHS256Issuer_Secrets(t *testing.T) {
	tests := []struct {
		name    string
		access  string
		refresh string
		wantErr bool
	}{
		{"valid", accessSecret, refreshSecret, false},
		{"short access", "short", refreshSecret, true},
		{"short refresh", accessSecret, strings.Repeat("r", 31), true},
		{"same secret", accessSecret, accessSecret, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := jwtx.NewHS256Issuer(jwtx.HS256Config{AccessSecret: tt.access, RefreshSecret: tt.refresh})
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestIssueAndVerifyAccess(t *testing.T) {
	clock := &fakeClock{now: time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)}
	i := newIssuer(t, clock)

	token, issued, err := i.IssueAccess(jwtx.AccessSubject{ID: "acc-1", Username: "alice", Email: "a@example.com", Role: "admin"})
	require.NoError(t, err)
	require.Equal(t, clock.now.Add(jwtx.DefaultAccessTokenTTL), issued.ExpiresAtTime())

	claims, err := i.Verify(token, jwtx.KindAccess)
	require.NoError(t, err)
	require.Equal(t, "acc-1", claims.Subject)
	require.Equal(t, "alice", claims.Username)
	require.Equal(t, "a@example.com", claims.Email)
	require.Equal(t, "admin", claims.Role)
	require.Equal(t, jwtx.KindAccess, claims.Type)
	require.Equal(t, "folio", claims.Issuer)
	require.NotEmpty(t, claims.ID)

	v := jwtx.AccessVerifier{HS256Issuer: i}
	_, err = v.Verify(token)
	require.NoError(t, err)
}

func TestUniqueJTI(t *testing.T) {
	clock := &fakeClock{now: time.Now()}
	i := newIssuer(t, clock)

	a, _, err := i.IssueRefresh("acc-1")
	require.NoError(t, err)
	b, _, err := i.IssueRefresh("acc-1")
	require.NoError(t, err)
	require.NotEqual(t, a, b, "tokens issued in the same instant must differ")
}

func TestVerify_Expired(t *testing.T) {
	clock := &fakeClock{now: time.Now()}
	i := newIssuer(t, clock)

	token, _, err := i.IssueRefresh("acc-1")
	require.NoError(t, err)

	clock.now = clock.now.Add(jwtx.DefaultRefreshTokenTTL + time.Second)
	_, err = i.Verify(token, jwtx.KindRefresh)
	require.ErrorIs(t, err, jwtx.ErrExpired)
	require.NotErrorIs(t, err, jwtx.ErrInvalid)
}

func TestVerify_Invalid(t *testing.T) {
	clock := &fakeClock{now: time.Now()}
	i := newIssuer(t, clock)

	access, _, err := i.IssueAccess(jwtx.AccessSubject{ID: "acc-1"})
	require.NoError(t, err)
	refresh, _, err := i.IssueRefresh("acc-1")
	require.NoError(t, err)

	other, err := jwtx.NewHS256Issuer(jwtx.HS256Config{
		AccessSecret:  strings.Repeat("x", 32),
		RefreshSecret: strings.Repeat("y", 32),
		Issuer:        "folio",
	})
	require.NoError(t, err)
	forged, _, err := other.IssueAccess(jwtx.AccessSubject{ID: "acc-1"})
	require.NoError(t, err)

	foreignIssuer, err := jwtx.NewHS256Issuer(jwtx.HS256Config{
		AccessSecret:  accessSecret,
		RefreshSecret: refreshSecret,
		Issuer:        "someone-else",
	})
	require.NoError(t, err)
	wrongIss, _, err := foreignIssuer.IssueAccess(jwtx.AccessSubject{ID: "acc-1"})
	require.NoError(t, err)

	parts := strings.Split(access, ".")
	flipped := "A"
	if parts[2][0] == 'A' {
		flipped = "B"
	}
	tampered := parts[0] + "." + parts[1] + "." + flipped + parts[2][1:]

	tests := []struct {
		name  string
		token string
		kind  jwtx.Kind
		cause error
	}{
		{"garbage", "not.a.jwt", jwtx.KindAccess, jwtx.ErrMalformed},
		{"empty", "", jwtx.KindAccess, jwtx.ErrMalformed},
		{"access as refresh", access, jwtx.KindRefresh, jwtx.ErrInvalidSig},
		{"refresh as access", refresh, jwtx.KindAccess, jwtx.ErrInvalidSig},
		{"foreign secret", forged, jwtx.KindAccess, jwtx.ErrInvalidSig},
		{"tampered", tampered, jwtx.KindAccess, jwtx.ErrInvalidSig},
		{"wrong issuer", wrongIss, jwtx.KindAccess, jwtx.ErrIssuer},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := i.Verify(tt.token, tt.kind)
			require.ErrorIs(t, err, jwtx.ErrInvalid)
			require.ErrorIs(t, err, tt.cause)
		})
	}
}

func TestDecode(t *testing.T) {
	clock := &fakeClock{now: time.Now()}
	i := newIssuer(t, clock)

	token, issued, err := i.IssueAccess(jwtx.AccessSubject{ID: "acc-1"})
	require.NoError(t, err)

	// Decode ignores expiry.
	clock.now = clock.now.Add(24 * time.Hour)
	claims, err := i.Decode(token)
	require.NoError(t, err)
	require.Equal(t, issued.ExpiresAtTime().Unix(), claims.ExpiresAtTime().Unix())

	_, err = i.Decode("garbage")
	require.ErrorIs(t, err, jwtx.ErrMalformed)
}
