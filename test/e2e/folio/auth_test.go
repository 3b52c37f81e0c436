package folio_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/aussiebroadwan/folio/internal/folio/mail"
	"github.com/aussiebroadwan/folio/pkg/authsdk"
)

func TestSessionLifecycle(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		setup func(*testing.T) *folioContainer
	}{
		{name: "sqlite blacklist", setup: func(t *testing.T) *folioContainer { return setupFolioContainer(t) }},
		{name: "redis blacklist", setup: setupFolioWithRedis},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			folio := tt.setup(t)
			client := authsdk.NewSDKClient(folio.BaseURL)
			ctx := context.Background()

			session := registerAndLogin(t, client, "alice", "alice@example.com")
			require.NotEmpty(t, session.AccessToken())
			require.NotEmpty(t, session.RefreshToken(), "refresh token should arrive as a cookie")
			require.Equal(t, "user", session.User().Role)
			require.False(t, session.User().IsVerified)

			refreshed, err := client.Refresh(ctx, session.RefreshToken())
			require.NoError(t, err)
			require.NotEmpty(t, refreshed.AccessToken)

			access, refresh := session.AccessToken(), session.RefreshToken()
			require.NoError(t, session.Logout(ctx))

			stale := client.NewSessionFromTokens(access, time.Now().Add(time.Hour), "")
			_, err = stale.GetPortfolio(ctx)
			assertStatus(t, err, http.StatusUnauthorized, "revoked access token")

			_, err = client.Refresh(ctx, refresh)
			assertStatus(t, err, http.StatusUnauthorized, "dropped refresh token")
		})
	}
}

func TestEmailVerification(t *testing.T) {
	t.Parallel()
	folio := setupFolioContainer(t)
	client := authsdk.NewSDKClient(folio.BaseURL)
	ctx := context.Background()

	_, err := client.Register(ctx, authsdk.RegisterRequest{
		Username: "bob",
		Email:    "bob@example.com",
		Password: testPassword,
	})
	require.NoError(t, err)

	token := folio.mailToken(t, "bob@example.com", mail.SubjectVerification)

	_, err = client.VerifyEmail(ctx, "not-a-real-token")
	assertStatus(t, err, http.StatusBadRequest, "unknown verification token")

	_, err = client.VerifyEmail(ctx, token)
	require.NoError(t, err)

	session, err := client.AuthenticateWithPassword(ctx, "bob@example.com", testPassword)
	require.NoError(t, err)
	require.True(t, session.User().IsVerified)

	_, err = client.ResendVerification(ctx, "bob@example.com")
	require.NoError(t, err, "resend answers generically for verified accounts")
}

func TestPasswordReset(t *testing.T) {
	t.Parallel()
	folio := setupFolioContainer(t)
	client := authsdk.NewSDKClient(folio.BaseURL)
	ctx := context.Background()

	session := registerAndLogin(t, client, "carol", "carol@example.com")

	known, err := client.ForgotPassword(ctx, "carol@example.com")
	require.NoError(t, err)
	unknown, err := client.ForgotPassword(ctx, "nobody@example.com")
	require.NoError(t, err)
	require.Equal(t, known.Message, unknown.Message, "responses must not reveal which emails exist")

	token := folio.mailToken(t, "carol@example.com", mail.SubjectPasswordReset)
	const next = "N3w!Passw0rd-42"

	_, err = client.ResetPassword(ctx, token, next)
	require.NoError(t, err)

	_, err = client.ResetPassword(ctx, token, "An0ther!Passw0rd")
	assertStatus(t, err, http.StatusBadRequest, "consumed reset token")

	_, err = client.Refresh(ctx, session.RefreshToken())
	assertStatus(t, err, http.StatusUnauthorized, "reset revokes refresh tokens")

	_, err = client.AuthenticateWithPassword(ctx, "carol@example.com", testPassword)
	assertStatus(t, err, http.StatusUnauthorized, "old password")

	_, err = client.AuthenticateWithPassword(ctx, "carol@example.com", next)
	require.NoError(t, err)
}

func TestChangePassword(t *testing.T) {
	t.Parallel()
	folio := setupFolioContainer(t)
	client := authsdk.NewSDKClient(folio.BaseURL)
	ctx := context.Background()

	session := registerAndLogin(t, client, "dave", "dave@example.com")
	refresh := session.RefreshToken()

	err := session.ChangePassword(ctx, "wrong-password", "N3w!Passw0rd-42")
	assertStatus(t, err, http.StatusUnauthorized, "wrong current password")

	err = session.ChangePassword(ctx, testPassword, "weak")
	assertStatus(t, err, http.StatusBadRequest, "policy violation")

	require.NoError(t, session.ChangePassword(ctx, testPassword, "N3w!Passw0rd-42"))

	_, err = client.Refresh(ctx, refresh)
	assertStatus(t, err, http.StatusUnauthorized, "change revokes refresh tokens")

	_, err = client.AuthenticateWithPassword(ctx, "dave@example.com", "N3w!Passw0rd-42")
	require.NoError(t, err)
}

func TestAccountLockout(t *testing.T) {
	t.Parallel()
	folio := setupFolioContainer(t, withEnv("MAX_LOGIN_ATTEMPTS", "3"))
	client := authsdk.NewSDKClient(folio.BaseURL)
	ctx := context.Background()

	registerAndLogin(t, client, "erin", "erin@example.com")

	for range 3 {
		_, err := client.AuthenticateWithPassword(ctx, "erin@example.com", "Wr0ng!Password")
		assertStatus(t, err, http.StatusUnauthorized, "failed attempt")
	}

	_, err := client.AuthenticateWithPassword(ctx, "erin@example.com", testPassword)
	assertStatus(t, err, http.StatusUnauthorized, "locked account rejects the right password")

	var apiErr *authsdk.APIError
	require.ErrorAs(t, err, &apiErr)
	require.Contains(t, apiErr.Message, "Account locked")
}
