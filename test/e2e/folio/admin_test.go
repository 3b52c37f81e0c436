package folio_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/aussiebroadwan/folio/pkg/authsdk"
)

func TestAdminAccountManagement(t *testing.T) {
	t.Parallel()
	folio := setupFolioContainer(t)
	client := authsdk.NewSDKClient(folio.BaseURL)
	ctx := context.Background()

	admin := registerAndLogin(t, client, adminUsername, adminEmail)
	require.Equal(t, "admin", admin.User().Role, "configured admin emails register as admin")

	user := registerAndLogin(t, client, "heidi", "heidi@example.com")
	_, err := user.CreateProject(ctx, authsdk.ProjectRequest{Title: "Toy", Description: "Small project"})
	require.NoError(t, err)

	_, err = user.ListAccounts(ctx, 10, 0)
	assertStatus(t, err, http.StatusForbidden, "non-admin listing accounts")

	list, err := admin.ListAccounts(ctx, 1, 0)
	require.NoError(t, err)
	require.EqualValues(t, 2, list.Total)
	require.Len(t, list.Data, 1)

	userID := user.User().ID

	portfolio, err := admin.GetAccountPortfolio(ctx, userID)
	require.NoError(t, err)
	require.Len(t, portfolio.Projects, 1)

	t.Run("self protection", func(t *testing.T) {
		adminID := admin.User().ID

		_, err := admin.DeleteAccount(ctx, adminID)
		assertStatus(t, err, http.StatusBadRequest, "admin deleting itself")

		_, err = admin.SetAccountActive(ctx, adminID, false)
		assertStatus(t, err, http.StatusBadRequest, "admin deactivating itself")

		_, err = admin.SetAccountRole(ctx, adminID, "user")
		assertStatus(t, err, http.StatusBadRequest, "admin demoting itself")
	})

	t.Run("deactivate and reactivate", func(t *testing.T) {
		acct, err := admin.SetAccountActive(ctx, userID, false)
		require.NoError(t, err)
		require.False(t, acct.IsActive)

		_, err = client.AuthenticateWithPassword(ctx, "heidi@example.com", testPassword)
		assertStatus(t, err, http.StatusUnauthorized, "login of a deactivated account")

		acct, err = admin.SetAccountActive(ctx, userID, true)
		require.NoError(t, err)
		require.True(t, acct.IsActive)
	})

	t.Run("role change", func(t *testing.T) {
		_, err := admin.SetAccountRole(ctx, userID, "superuser")
		assertStatus(t, err, http.StatusBadRequest, "unknown role")

		acct, err := admin.SetAccountRole(ctx, userID, "admin")
		require.NoError(t, err)
		require.Equal(t, "admin", acct.Role)
	})

	t.Run("delete cascades", func(t *testing.T) {
		res, err := admin.DeleteAccount(ctx, userID)
		require.NoError(t, err)
		require.EqualValues(t, 1, res.DeletedProjects)

		_, err = admin.GetAccount(ctx, userID)
		assertStatus(t, err, http.StatusNotFound, "deleted account")

		_, err = client.GetPublicPortfolio(ctx, "heidi")
		assertStatus(t, err, http.StatusNotFound, "portfolio of a deleted account")
	})
}
