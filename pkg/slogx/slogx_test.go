package slogx_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/aussiebroadwan/folio/pkg/slogx"
	"github.com/stretchr/testify/require"
)

func TestNew_RedactsSensitiveAttrs(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	var buf bytes.Buffer
	log := slogx.New(slogx.Config{Service: "folio", Level: "debug", Output: &buf})

	log.Info("login",
		"email", "alice@example.com",
		"password", "hunter2",
		"refresh_token", "eyJ...",
		"Authorization", "Bearer abc",
	)

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	require.Equal(t, "alice@example.com", line["email"])
	require.Equal(t, slogx.Redacted, line["password"])
	require.Equal(t, slogx.Redacted, line["refresh_token"])
	require.Equal(t, slogx.Redacted, line["Authorization"])
	require.Equal(t, "folio", line["service"])
}

func TestNew_Level(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	var buf bytes.Buffer
	log := slogx.New(slogx.Config{Level: "warn", Format: "text", Output: &buf})
	log.Info("hidden")
	require.Empty(t, buf.String())
	log.Warn("shown")
	require.Contains(t, buf.String(), "shown")
}

func TestHTTPMiddleware_AttachesLogger(t *testing.T) {
	var buf bytes.Buffer
	base := slog.New(slog.NewJSONHandler(&buf, nil))

	var got *slog.Logger
	h := slogx.HTTPMiddleware(base)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = slogx.FromContext(r.Context())
		w.WriteHeader(http.StatusTeapot)
		_, _ = w.Write([]byte("short and stout"))
	}))

	req := httptest.NewRequest(http.MethodGet, "/v1/me/portfolio", nil)
	req.Header.Set(slogx.RequestIDHeader, "req-123")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.NotNil(t, got)
	require.NotSame(t, slog.Default(), got)
	require.Equal(t, "req-123", rec.Header().Get(slogx.RequestIDHeader))
	require.Contains(t, buf.String(), `"req_id":"req-123"`)
	require.Contains(t, buf.String(), `"status":418`)
	require.Contains(t, buf.String(), `"bytes":15`)
	require.Contains(t, buf.String(), `"level":"WARN"`)
}

func TestHTTPMiddleware_Levels(t *testing.T) {
	tests := []struct {
		name   string
		path   string
		status int
		want   string
	}{
		{"probe is quiet", "/livez", http.StatusOK, ""},
		{"success", "/v1/auth/login", http.StatusOK, `"level":"INFO"`},
		{"client error", "/v1/auth/login", http.StatusUnauthorized, `"level":"WARN"`},
		{"server error", "/readyz", http.StatusServiceUnavailable, `"level":"ERROR"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			base := slog.New(slog.NewJSONHandler(&buf, nil))
			h := slogx.HTTPMiddleware(base)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			}))

			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))

			require.NotEmpty(t, rec.Header().Get(slogx.RequestIDHeader), "request ID is always generated")
			if tt.want == "" {
				require.Empty(t, buf.String())
				return
			}
			require.Contains(t, buf.String(), tt.want)
		})
	}
}

func TestWithAccount(t *testing.T) {
	var buf bytes.Buffer
	ctx := slogx.WithContext(context.Background(), slog.New(slog.NewJSONHandler(&buf, nil)))

	ctx = slogx.WithAccount(ctx, "01HZY3", "admin")
	slogx.FromContext(ctx).Info("deleted account")

	require.Contains(t, buf.String(), `"account_id":"01HZY3"`)
	require.Contains(t, buf.String(), `"role":"admin"`)
}
