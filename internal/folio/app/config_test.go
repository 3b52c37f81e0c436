package app

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

const (
	accessSecret  = "access-secret-access-secret-0123456789"
	refreshSecret = "refresh-secret-refresh-secret-0123456789"
)

func environ(vars ...string) func() []string {
	return func() []string { return vars }
}

func TestLoadConfigDefaults(t *testing.T) {
	t.Parallel()

	cfg, err := loadConfig("", "", environ(
		"FOLIO_JWT__ACCESSSECRET="+accessSecret,
		"FOLIO_JWT__REFRESH_SECRET="+refreshSecret,
	))
	require.NoError(t, err)

	require.Equal(t, "dev", cfg.Env)
	require.Equal(t, 8080, cfg.HTTP.Port)
	require.Equal(t, accessSecret, cfg.JWT.AccessSecret)
	require.Equal(t, refreshSecret, cfg.JWT.RefreshSecret)
	require.Equal(t, 15*time.Minute, cfg.JWT.AccessTTL)
	require.Equal(t, 5, cfg.Security.MaxLoginAttempts)
	require.Equal(t, BlacklistSQLite, cfg.Blacklist.Driver)
	require.Equal(t, MailLog, cfg.Mail.Driver)
	require.Equal(t, 5, cfg.RateLimit.Login.RequestsPerWindow)
	require.Empty(t, cfg.Encryption.Key)
}

func TestLoadConfigLegacyEnv(t *testing.T) {
	t.Parallel()

	cfg, err := loadConfig("", "", environ(
		"JWT_SECRET="+accessSecret,
		"JWT_REFRESH_SECRET="+refreshSecret,
		"ENCRYPTION_KEY=0707070707070707070707070707070707070707070707070707070707070707",
		"MAX_LOGIN_ATTEMPTS=3",
		"LOCKOUT_DURATION_MINUTES=45",
		"PASSWORD_RESET_EXPIRY_HOURS=2",
		"ADMIN_EMAILS=root@example.com, ops@example.com",
		"PORT=9090",
		"UNRELATED=1",
	))
	require.NoError(t, err)

	require.Equal(t, accessSecret, cfg.JWT.AccessSecret)
	require.NotEmpty(t, cfg.Encryption.Key)
	require.Equal(t, 3, cfg.Security.MaxLoginAttempts)
	require.Equal(t, 45*time.Minute, cfg.Security.LockoutDuration)
	require.Equal(t, 2*time.Hour, cfg.Security.PasswordResetTTL)
	require.Equal(t, []string{"root@example.com", "ops@example.com"}, cfg.Admin.Emails)
	require.Equal(t, 9090, cfg.HTTP.Port)
}

func TestLoadConfigLayering(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	yaml := `
http:
  port: 7000
jwt:
  accessSecret: ` + accessSecret + `
  refreshSecret: ` + refreshSecret + `
blacklist:
  driver: redis
  redis:
    addr: cache:6379
rateLimit:
  login:
    requests: 10
    window: 1m
security:
  maxLoginAttempts: 4
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "staging.yaml"), []byte(yaml), 0o600))

	cfg, err := loadConfig(dir, "staging", environ(
		"MAX_LOGIN_ATTEMPTS=6",
		"FOLIO_HTTP__PORT=7100",
		"FOLIO_RATELIMIT__LOGIN__REQUESTS=20",
	))
	require.NoError(t, err)

	require.Equal(t, "staging", cfg.Env)
	require.Equal(t, 7100, cfg.HTTP.Port, "prefixed env wins over the file")
	require.Equal(t, 6, cfg.Security.MaxLoginAttempts, "legacy env wins over the file")
	require.Equal(t, BlacklistRedis, cfg.Blacklist.Driver)
	require.Equal(t, "cache:6379", cfg.Blacklist.Redis.Addr)
	require.Equal(t, 20, cfg.RateLimit.Login.RequestsPerWindow)
	require.Equal(t, time.Minute, cfg.RateLimit.Login.Window)
	require.Equal(t, 3, cfg.RateLimit.Register.RequestsPerWindow, "untouched limits keep defaults")
}

func TestBrowserPolicy(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	yaml := `
http:
  cors:
    allowedOrigins: [https://a.example, https://b.example]
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "prod.yaml"), []byte(yaml), 0o600))

	tests := []struct {
		name    string
		dir     string
		env     string
		vars    []string
		origins []string
	}{
		{
			name:    "defaults to the frontend",
			origins: []string{"http://localhost:3000"},
		},
		{
			name:    "legacy frontend url",
			vars:    []string{"FRONTEND_URL=https://folio.example/"},
			origins: []string{"https://folio.example"},
		},
		{
			name:    "explicit origins win",
			dir:     dir,
			env:     "prod",
			vars:    []string{"FRONTEND_URL=https://folio.example"},
			origins: []string{"https://a.example", "https://b.example"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := loadConfig(tt.dir, tt.env, environ(tt.vars...))
			require.NoError(t, err)

			policy := cfg.browserPolicy()
			require.Equal(t, tt.origins, policy.CORS.AllowedOrigins)
			require.True(t, policy.CORS.AllowCredentials)
			require.Equal(t, 365*24*time.Hour, policy.Headers.HSTSMaxAge)
		})
	}
}

func TestConfigValidate(t *testing.T) {
	t.Parallel()

	valid := func() Config {
		cfg := DefaultConfig()
		cfg.JWT.AccessSecret = accessSecret
		cfg.JWT.RefreshSecret = refreshSecret
		return cfg
	}
	require.NoError(t, valid().Validate())

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"missing access secret", func(c *Config) { c.JWT.AccessSecret = "" }},
		{"short refresh secret", func(c *Config) { c.JWT.RefreshSecret = "short" }},
		{"identical secrets", func(c *Config) { c.JWT.RefreshSecret = c.JWT.AccessSecret }},
		{"bad encryption key", func(c *Config) { c.Encryption.Key = "not-a-key" }},
		{"port out of range", func(c *Config) { c.HTTP.Port = 70000 }},
		{"zero attempts", func(c *Config) { c.Security.MaxLoginAttempts = 0 }},
		{"unknown blacklist", func(c *Config) { c.Blacklist.Driver = "memcached" }},
		{"redis without addr", func(c *Config) {
			c.Blacklist.Driver = BlacklistRedis
			c.Blacklist.Redis.Addr = ""
		}},
		{"smtp without host", func(c *Config) { c.Mail.Driver = MailSMTP }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			require.Error(t, cfg.Validate())
		})
	}
}

func TestExpiryText(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   time.Duration
		want string
	}{
		{time.Hour, "1 hour"},
		{24 * time.Hour, "24 hours"},
		{30 * time.Minute, "30 minutes"},
		{time.Minute, "1 minute"},
		{0, ""},
	}
	for _, tt := range tests {
		t.Run(tt.in.String(), func(t *testing.T) {
			require.Equal(t, tt.want, expiryText(tt.in))
		})
	}
}
