package folio_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/aussiebroadwan/folio/pkg/authsdk"
)

func TestHealthEndpoints(t *testing.T) {
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

			health, err := client.GetLiveness(ctx)
			assertHealthy(t, health, err)
			require.NotEmpty(t, health.Version)

			ready, err := client.GetReadiness(ctx)
			assertHealthy(t, ready, err)
			require.NotNil(t, ready.Checks)
			require.Equal(t, "ok", ready.Checks.Database)
			require.Equal(t, "ok", ready.Checks.Blacklist)
			require.Equal(t, "ok", ready.Checks.Cipher)
		})
	}
}
