package cryptox

import (
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// DefaultPolicySymbols is the accepted set of special characters.
const DefaultPolicySymbols = `!@#$%^&*()_+-=[]{};':"\|,.<>/?`

// DefaultCommonPasswords is the built-in deny list. Comparison is
// case-insensitive.
var DefaultCommonPasswords = []string{"password", "12345678", "qwerty", "abc123", "password123"}

// PolicyConfig describes the password strength rules.
type PolicyConfig struct {
	MinLength       int      `koanf:"minLength"`
	MaxLength       int      `koanf:"maxLength"`
	RequireUpper    bool     `koanf:"requireUpper"`
	RequireLower    bool     `koanf:"requireLower"`
	RequireDigit    bool     `koanf:"requireDigit"`
	RequireSymbol   bool     `koanf:"requireSymbol"`
	Symbols         string   `koanf:"symbols"`
	CommonPasswords []string `koanf:"commonPasswords"`
}

// DefaultPolicyConfig returns the production password rules.
func DefaultPolicyConfig() PolicyConfig {
	return PolicyConfig{
		MinLength:       8,
		MaxLength:       128,
		RequireUpper:    true,
		RequireLower:    true,
		RequireDigit:    true,
		RequireSymbol:   true,
		Symbols:         DefaultPolicySymbols,
		CommonPasswords: DefaultCommonPasswords,
	}
}

// PolicyResult lists every rule a password failed, in a stable order.
type PolicyResult struct {
	Valid  bool
	Errors []string
}

// PasswordPolicy evaluates passwords against a PolicyConfig.
type PasswordPolicy struct {
	cfg    PolicyConfig
	common map[string]struct{}
}

func NewPasswordPolicy(cfg PolicyConfig) *PasswordPolicy {
	if cfg.Symbols == "" {
		cfg.Symbols = DefaultPolicySymbols
	}
	common := make(map[string]struct{}, len(cfg.CommonPasswords))
	for _, p := range cfg.CommonPasswords {
		common[strings.ToLower(p)] = struct{}{}
	}
	return &PasswordPolicy{cfg: cfg, common: common}
}

// Validate returns all violations at once so the caller can show them
// together. An empty password only reports that it is required.
func (p *PasswordPolicy) Validate(password string) PolicyResult {
	if password == "" {
		return PolicyResult{Errors: []string{"Password is required"}}
	}

	var errs []string
	n := utf8.RuneCountInString(password)

	if p.cfg.MinLength > 0 && n < p.cfg.MinLength {
		errs = append(errs, "Password must be at least "+strconv.Itoa(p.cfg.MinLength)+" characters long")
	}
	if p.cfg.MaxLength > 0 && n > p.cfg.MaxLength {
		errs = append(errs, "Password must be less than "+strconv.Itoa(p.cfg.MaxLength)+" characters")
	}

	var upper, lower, digit, symbol bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r) && r < utf8.RuneSelf:
			upper = true
		case unicode.IsLower(r) && r < utf8.RuneSelf:
			lower = true
		case r >= '0' && r <= '9':
			digit = true
		}
		if strings.ContainsRune(p.cfg.Symbols, r) {
			symbol = true
		}
	}

	if p.cfg.RequireUpper && !upper {
		errs = append(errs, "Password must contain at least one uppercase letter")
	}
	if p.cfg.RequireLower && !lower {
		errs = append(errs, "Password must contain at least one lowercase letter")
	}
	if p.cfg.RequireDigit && !digit {
		errs = append(errs, "Password must contain at least one number")
	}
	if p.cfg.RequireSymbol && !symbol {
		errs = append(errs, "Password must contain at least one special character")
	}
	if _, ok := p.common[strings.ToLower(password)]; ok {
		errs = append(errs, "This password is too common. Please choose a stronger password")
	}

	return PolicyResult{Valid: len(errs) == 0, Errors: errs}
}
