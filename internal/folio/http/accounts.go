package http

import (
	"context"
	"errors"

	"github.com/aussiebroadwan/folio/internal/folio/store"
	"github.com/aussiebroadwan/folio/pkg/httpx"
)

// accountChecker lets the authn middleware see deactivations, deletions and
// role changes made after a token was issued.
type accountChecker struct {
	accounts store.Accounts
}

func (c accountChecker) LookupAccount(ctx context.Context, id string) (httpx.AccountState, error) {
	a, err := c.accounts.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return httpx.AccountState{}, httpx.ErrAccountNotFound
		}
		return httpx.AccountState{}, err
	}
	return httpx.AccountState{Role: string(a.Role), Active: a.Security.IsActive}, nil
}
