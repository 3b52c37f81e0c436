package app

import (
	"fmt"
	"log/slog"

	"github.com/aussiebroadwan/folio/pkg/cryptox"
	"github.com/aussiebroadwan/folio/pkg/jwtx"
)

// Keys holds the secrets read once at startup.
type Keys struct {
	JWT    *jwtx.HS256Issuer
	Cipher *cryptox.FieldCipher
	Pepper string
}

// InitKeys builds the token issuer, the profile field cipher and the
// password pepper.
//
// The JWT secrets are required. The encryption key is optional: without it
// the cipher reports itself unconfigured and sensitive profile fields cannot
// be written. The pepper file is created on first start when missing.
func InitKeys(cfg Config, logger *slog.Logger) (*Keys, error) {
	issuer, err := jwtx.NewHS256Issuer(jwtx.HS256Config{
		AccessSecret:  cfg.JWT.AccessSecret,
		RefreshSecret: cfg.JWT.RefreshSecret,
		Issuer:        cfg.JWT.Issuer,
		AccessTTL:     cfg.JWT.AccessTTL,
		RefreshTTL:    cfg.JWT.RefreshTTL,
		Leeway:        cfg.JWT.Leeway,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize token issuer: %w", err)
	}

	cipher, err := cryptox.NewFieldCipher(cfg.Encryption.Key)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize field cipher: %w", err)
	}
	if !cipher.Configured() {
		logger.Warn("encryption key not set; sensitive profile fields are disabled")
	}

	var pepper string
	if cfg.Password.PepperFile != "" {
		pepper, err = cryptox.LoadOrCreatePepper(cfg.Password.PepperFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load pepper: %w", err)
		}
		logger.Info("password pepper loaded", "path", cfg.Password.PepperFile)
	}

	return &Keys{JWT: issuer, Cipher: cipher, Pepper: pepper}, nil
}
