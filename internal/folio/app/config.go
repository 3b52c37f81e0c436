package app

import (
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/pkg/errors"

	"github.com/aussiebroadwan/folio/internal/folio/domain"
	httpapi "github.com/aussiebroadwan/folio/internal/folio/http"
	"github.com/aussiebroadwan/folio/internal/folio/mail"
	"github.com/aussiebroadwan/folio/internal/folio/service"
	"github.com/aussiebroadwan/folio/pkg/cryptox"
	"github.com/aussiebroadwan/folio/pkg/httpx"
	"github.com/aussiebroadwan/folio/pkg/jwtx"
)

// EnvPrefix marks the structured environment overrides, e.g.
// FOLIO_JWT__ACCESSSECRET or FOLIO_BLACKLIST__REDIS__ADDR.
const EnvPrefix = "FOLIO_"

const (
	BlacklistSQLite = "sqlite"
	BlacklistRedis  = "redis"

	MailLog  = "log"
	MailSMTP = "smtp"
)

type Config struct {
	Env string    `koanf:"env"`
	Log LogConfig `koanf:"log"`

	HTTP         HTTPConfig         `koanf:"http"`
	Database     DatabaseConfig     `koanf:"database"`
	Blacklist    BlacklistConfig    `koanf:"blacklist"`
	JWT          JWTConfig          `koanf:"jwt"`
	Encryption   EncryptionConfig   `koanf:"encryption"`
	Password     PasswordConfig     `koanf:"password"`
	Security     SecurityConfig     `koanf:"security"`
	Admin        AdminConfig        `koanf:"admin"`
	Mail         MailConfig         `koanf:"mail"`
	RateLimit    httpapi.RateLimits `koanf:"rateLimit"`
	Housekeeping HousekeepingConfig `koanf:"housekeeping"`
}

type LogConfig struct {
	Level  string `koanf:"level"`  // debug, info, warn, error
	Format string `koanf:"format"` // json, text
}

type HTTPConfig struct {
	Port                int           `koanf:"port"`
	ReadHeaderTimeout   time.Duration `koanf:"readHeaderTimeout"`
	ShutdownGracePeriod time.Duration `koanf:"shutdownGracePeriod"`

	// CORS origins default to mail.frontendURL when unset.
	CORS    httpx.CORSConfig            `koanf:"cors"`
	Headers httpx.SecurityHeadersConfig `koanf:"headers"`
}

type DatabaseConfig struct {
	Path string `koanf:"path"`
}

type BlacklistConfig struct {
	Driver string      `koanf:"driver"` // sqlite or redis
	Redis  RedisConfig `koanf:"redis"`
}

type RedisConfig struct {
	Addr     string `koanf:"addr"`
	Password string `koanf:"password"`
	DB       int    `koanf:"db"`
	// Prefix defaults to the driver prefix when empty.
	Prefix string `koanf:"prefix"`
}

type JWTConfig struct {
	AccessSecret  string        `koanf:"accessSecret"`
	RefreshSecret string        `koanf:"refreshSecret"`
	Issuer        string        `koanf:"issuer"`
	AccessTTL     time.Duration `koanf:"accessTTL"`
	RefreshTTL    time.Duration `koanf:"refreshTTL"`
	Leeway        time.Duration `koanf:"leeway"`
}

type EncryptionConfig struct {
	// Key is 32 bytes as base64 or hex. Empty disables the sensitive
	// profile fields.
	Key string `koanf:"key"`
}

type PasswordConfig struct {
	Policy     cryptox.PolicyConfig `koanf:"policy"`
	Argon2     cryptox.Argon2Params `koanf:"argon2"`
	PepperFile string               `koanf:"pepperFile"`
	// HashTimeout bounds a single hash or verify call.
	HashTimeout time.Duration `koanf:"hashTimeout"`
}

type SecurityConfig struct {
	MaxLoginAttempts     int           `koanf:"maxLoginAttempts"`
	LockoutDuration      time.Duration `koanf:"lockoutDuration"`
	PasswordResetTTL     time.Duration `koanf:"passwordResetTTL"`
	EmailVerificationTTL time.Duration `koanf:"emailVerificationTTL"`
	RefreshRingCap       int           `koanf:"refreshRingCap"`
}

type AdminConfig struct {
	Emails []string `koanf:"emails"`
}

type MailConfig struct {
	Driver      string          `koanf:"driver"` // log or smtp
	FrontendURL string          `koanf:"frontendURL"`
	Timeout     time.Duration   `koanf:"timeout"`
	SMTP        mail.SMTPConfig `koanf:"smtp"`
}

type HousekeepingConfig struct {
	Interval time.Duration `koanf:"interval"`
}

// DefaultConfig returns the settings used when nothing overrides them.
func DefaultConfig() Config {
	return Config{
		Env: "dev",
		Log: LogConfig{Level: "info", Format: "json"},
		HTTP: HTTPConfig{
			Port:                8080,
			ReadHeaderTimeout:   3 * time.Second,
			ShutdownGracePeriod: 10 * time.Second,
			CORS:                httpx.CORSConfig{AllowCredentials: true, MaxAge: 10 * time.Minute},
			Headers:             httpx.SecurityHeadersConfig{HSTSMaxAge: httpx.DefaultHSTSMaxAge},
		},
		Database:  DatabaseConfig{Path: "folio.db"},
		Blacklist: BlacklistConfig{Driver: BlacklistSQLite, Redis: RedisConfig{Addr: "localhost:6379"}},
		JWT: JWTConfig{
			Issuer:     "folio",
			AccessTTL:  jwtx.DefaultAccessTokenTTL,
			RefreshTTL: jwtx.DefaultRefreshTokenTTL,
		},
		Password: PasswordConfig{
			Policy:      cryptox.DefaultPolicyConfig(),
			Argon2:      cryptox.DefaultArgon2Params,
			PepperFile:  "pepper",
			HashTimeout: service.DefaultHashTimeout,
		},
		Security: SecurityConfig{
			MaxLoginAttempts:     service.DefaultMaxLoginAttempts,
			LockoutDuration:      service.DefaultLockDuration,
			PasswordResetTTL:     service.DefaultPasswordResetTTL,
			EmailVerificationTTL: service.DefaultEmailVerificationTTL,
			RefreshRingCap:       domain.DefaultRefreshRingCap,
		},
		Mail: MailConfig{
			Driver:      MailLog,
			FrontendURL: "http://localhost:3000",
			Timeout:     10 * time.Second,
		},
		RateLimit:    httpapi.DefaultRateLimits(),
		Housekeeping: HousekeepingConfig{Interval: service.DefaultHousekeepingInterval},
	}
}

// browserPolicy resolves the CORS origins against the frontend URL.
func (c Config) browserPolicy() httpapi.BrowserPolicy {
	policy := httpapi.BrowserPolicy{CORS: c.HTTP.CORS, Headers: c.HTTP.Headers}
	if len(policy.CORS.AllowedOrigins) == 0 && c.Mail.FrontendURL != "" {
		policy.CORS.AllowedOrigins = []string{strings.TrimRight(c.Mail.FrontendURL, "/")}
	}
	return policy
}

// legacyEnv maps the flat variable names older deployments use onto config
// keys. Values may be rewritten on the way in.
var legacyEnv = map[string]func(v string) (string, any){
	"JWT_SECRET":         func(v string) (string, any) { return "jwt.accessSecret", v },
	"JWT_REFRESH_SECRET": func(v string) (string, any) { return "jwt.refreshSecret", v },
	"ENCRYPTION_KEY":     func(v string) (string, any) { return "encryption.key", v },
	"MAX_LOGIN_ATTEMPTS": func(v string) (string, any) { return "security.maxLoginAttempts", v },
	"LOCKOUT_DURATION_MINUTES": func(v string) (string, any) {
		return "security.lockoutDuration", strings.TrimSpace(v) + "m"
	},
	"PASSWORD_RESET_EXPIRY_HOURS": func(v string) (string, any) {
		return "security.passwordResetTTL", strings.TrimSpace(v) + "h"
	},
	"ADMIN_EMAILS": func(v string) (string, any) { return "admin.emails", splitList(v) },
	"PORT":         func(v string) (string, any) { return "http.port", v },
	"FRONTEND_URL": func(v string) (string, any) { return "mail.frontendURL", v },
	"LOG_LEVEL":    func(v string) (string, any) { return "log.level", v },
}

// LoadConfig layers the defaults, an optional <env>.yaml from configDir,
// the legacy flat variables and finally FOLIO_ variables.
func LoadConfig(configDir, env string) (Config, error) {
	return loadConfig(configDir, env, os.Environ)
}

func loadConfig(configDir, currEnv string, environ func() []string) (Config, error) {
	cfg := DefaultConfig()
	if currEnv != "" {
		cfg.Env = currEnv
	}
	k := koanf.New(".")

	if configDir != "" {
		path := filepath.Join(configDir, cfg.Env+".yaml")
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
				return Config{}, errors.Wrapf(err, "read %s config failed", path)
			}
		} else if !os.IsNotExist(err) {
			return Config{}, errors.Wrapf(err, "stat %s", path)
		}
	}

	if err := k.Load(env.Provider(".", env.Opt{
		EnvironFunc: environ,
		TransformFunc: func(key, v string) (string, any) {
			if fn, ok := legacyEnv[key]; ok && v != "" {
				return fn(v)
			}
			return "", nil
		},
	}), nil); err != nil {
		return Config{}, errors.Wrap(err, "load legacy env variables failed")
	}

	existing := k.Raw()
	if err := k.Load(env.Provider(".", env.Opt{
		Prefix:      EnvPrefix,
		EnvironFunc: environ,
		TransformFunc: func(key, v string) (string, any) {
			key = strings.TrimPrefix(key, EnvPrefix)
			if key == "ADMIN__EMAILS" {
				return canonicalizeEnvKey(key, existing), splitList(v)
			}
			return canonicalizeEnvKey(key, existing), v
		},
	}), nil); err != nil {
		return Config{}, errors.Wrap(err, "load env variables failed")
	}

	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{
		Tag: "koanf",
		DecoderConfig: &mapstructure.DecoderConfig{
			Result:           &cfg,
			WeaklyTypedInput: true,
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToTimeDurationHookFunc(),
				mapstructure.StringToSliceHookFunc(","),
			),
			MatchName: func(mapKey, fieldName string) bool {
				return strings.EqualFold(mapKey, fieldName)
			},
		},
	}); err != nil {
		return Config{}, errors.Wrapf(err, "unmarshal %s config failed", cfg.Env)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports settings the service cannot start with. The encryption
// key is optional.
func (c Config) Validate() error {
	if len(c.JWT.AccessSecret) < jwtx.MinSecretLength {
		return errors.Errorf("jwt.accessSecret must be at least %d characters", jwtx.MinSecretLength)
	}
	if len(c.JWT.RefreshSecret) < jwtx.MinSecretLength {
		return errors.Errorf("jwt.refreshSecret must be at least %d characters", jwtx.MinSecretLength)
	}
	if c.JWT.AccessSecret == c.JWT.RefreshSecret {
		return errors.New("jwt.accessSecret and jwt.refreshSecret must differ")
	}
	if c.Encryption.Key != "" {
		if _, err := cryptox.ParseFieldKey(c.Encryption.Key); err != nil {
			return errors.Wrap(err, "encryption.key")
		}
	}
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return errors.Errorf("http.port %d out of range", c.HTTP.Port)
	}
	if c.Security.MaxLoginAttempts <= 0 {
		return errors.New("security.maxLoginAttempts must be positive")
	}
	if c.Security.LockoutDuration <= 0 {
		return errors.New("security.lockoutDuration must be positive")
	}
	switch c.Blacklist.Driver {
	case BlacklistSQLite:
	case BlacklistRedis:
		if c.Blacklist.Redis.Addr == "" {
			return errors.New("blacklist.redis.addr is required for the redis driver")
		}
	default:
		return errors.Errorf("unknown blacklist.driver %q", c.Blacklist.Driver)
	}
	switch c.Mail.Driver {
	case MailLog:
	case MailSMTP:
		if c.Mail.SMTP.Host == "" || c.Mail.SMTP.From == "" {
			return errors.New("mail.smtp.host and mail.smtp.from are required for the smtp driver")
		}
	default:
		return errors.Errorf("unknown mail.driver %q", c.Mail.Driver)
	}
	return nil
}

func splitList(v string) []string {
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// canonicalizeEnvKey turns JWT__ACCESS_SECRET into a dotted path, reusing
// the spelling of keys already loaded so the override lands on them.
func canonicalizeEnvKey(rawKey string, existing map[string]any) string {
	segments := strings.Split(strings.ToLower(rawKey), "__")
	canonical := make([]string, 0, len(segments))
	current := existing

	for _, segment := range segments {
		if segment == "" {
			continue
		}
		if matched, next, ok := findExistingSegment(current, segment); ok {
			canonical = append(canonical, matched)
			current = next
		} else {
			canonical = append(canonical, strings.ReplaceAll(segment, "_", ""))
			current = nil
		}
	}
	return strings.Join(canonical, ".")
}

func findExistingSegment(current map[string]any, segment string) (string, map[string]any, bool) {
	needle := normalizeToken(segment)
	for key, value := range current {
		if normalizeToken(key) != needle {
			continue
		}
		child, _ := value.(map[string]any)
		return key, child, true
	}
	return "", nil, false
}

func normalizeToken(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(unicode.ToLower(r))
		}
	}
	return b.String()
}
