package folio_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/aussiebroadwan/folio/pkg/authsdk"
)

func TestLoginRateLimit(t *testing.T) {
	t.Parallel()
	folio := setupFolioContainer(t, withDefaultRateLimits())
	client := authsdk.NewSDKClient(folio.BaseURL)
	ctx := context.Background()

	registerAndLogin(t, client, "ivan", "ivan@example.com")

	// Successful logins are not counted.
	for range 5 {
		_, err := client.AuthenticateWithPassword(ctx, "ivan@example.com", testPassword)
		require.NoError(t, err)
	}

	for range 5 {
		_, err := client.AuthenticateWithPassword(ctx, "ivan@example.com", "Wr0ng!Password")
		assertStatus(t, err, http.StatusUnauthorized, "failed login within the limit")
	}

	_, err := client.AuthenticateWithPassword(ctx, "ivan@example.com", testPassword)
	assertStatus(t, err, http.StatusTooManyRequests, "login over the limit")
	require.True(t, authsdk.IsCode(err, authsdk.ErrorCodeRateLimited))

	// The limit is keyed on the email too, so other accounts are unaffected.
	_, err = client.AuthenticateWithPassword(ctx, "someone@example.com", testPassword)
	assertStatus(t, err, http.StatusUnauthorized, "different email")
}
