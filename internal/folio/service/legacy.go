package service

import (
	"context"
	"log/slog"

	"github.com/aussiebroadwan/folio/internal/folio/store"
	"github.com/aussiebroadwan/folio/pkg/cryptox"
	"github.com/aussiebroadwan/folio/pkg/slogx"
)

// LegacyReport describes accounts still holding plaintext in the
// pre-encryption columns.
type LegacyReport struct {
	Accounts []LegacyAccount
}

type LegacyAccount struct {
	AccountID      string
	Username       string
	HasBio         bool
	HasPublicEmail bool
}

// LegacyMigration summarises an EncryptLegacy run.
type LegacyMigration struct {
	Encrypted int
	// Discarded counts plaintext values dropped because an encrypted value
	// was already present.
	Discarded int
	Failed    int
}

// CheckLegacy lists accounts with plaintext sensitive data. Only the
// presence of each field is reported.
func (s *ProfileService) CheckLegacy(ctx context.Context) (LegacyReport, error) {
	rows, err := s.Store.Accounts().ListLegacyPlaintext(ctx)
	if err != nil {
		return LegacyReport{}, internal(err)
	}
	report := LegacyReport{Accounts: make([]LegacyAccount, 0, len(rows))}
	for _, r := range rows {
		report.Accounts = append(report.Accounts, LegacyAccount{
			AccountID:      r.AccountID,
			Username:       r.Username,
			HasBio:         r.Bio != "",
			HasPublicEmail: r.PublicEmail != "",
		})
	}
	return report, nil
}

// EncryptLegacy moves plaintext bio and public email into the encrypted
// columns and clears the legacy ones. Each account is migrated in its own
// transaction; a failure is logged and the run continues.
func (s *ProfileService) EncryptLegacy(ctx context.Context) (LegacyMigration, error) {
	l := slogx.FromContext(ctx)

	if !s.Cipher.Configured() {
		return LegacyMigration{}, newError(KindConfiguration, MsgCipherUnavailable, cryptox.ErrCipherNotConfigured)
	}

	rows, err := s.Store.Accounts().ListLegacyPlaintext(ctx)
	if err != nil {
		return LegacyMigration{}, internal(err)
	}

	var res LegacyMigration
	for _, r := range rows {
		encrypted, discarded, err := s.migrateOne(ctx, r)
		if err != nil {
			res.Failed++
			l.Error("legacy profile migration failed",
				slog.String("account_id", r.AccountID), slog.Any("error", err))
			continue
		}
		res.Encrypted += encrypted
		res.Discarded += discarded
	}

	l.Info("legacy profile migration finished",
		slog.Int("encrypted", res.Encrypted),
		slog.Int("discarded", res.Discarded),
		slog.Int("failed", res.Failed))
	return res, nil
}

func (s *ProfileService) migrateOne(ctx context.Context, r store.LegacyPlaintext) (encrypted, discarded int, err error) {
	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		a, err := tx.Accounts().GetByID(ctx, r.AccountID)
		if err != nil {
			return err
		}

		encrypted, discarded = 0, 0
		move := func(dst *string, plain string, clean func(string) string) error {
			if plain == "" {
				return nil
			}
			if *dst != "" {
				discarded++
				return nil
			}
			if err := s.seal(dst, &plain, clean); err != nil {
				return err
			}
			if *dst == "" {
				discarded++
				return nil
			}
			encrypted++
			return nil
		}
		if err := move(&a.Profile.BioEncrypted, r.Bio, Sanitize); err != nil {
			return err
		}
		if err := move(&a.Profile.PublicEmailEncrypted, r.PublicEmail, normalizePublicEmail); err != nil {
			return err
		}

		if encrypted > 0 {
			a.UpdatedAt = s.Clock.Now()
			if err := tx.Accounts().UpdateProfile(ctx, a); err != nil {
				return err
			}
		}
		return tx.Accounts().ClearLegacyPlaintext(ctx, r.AccountID)
	})
	return encrypted, discarded, err
}
