package authsdk

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
)

// ListAccounts pages through all accounts. Requires the admin role.
func (s *Session) ListAccounts(ctx context.Context, limit, offset int) (*AccountListResponse, error) {
	q := url.Values{}
	if limit > 0 {
		q.Set("limit", fmt.Sprint(limit))
	}
	if offset > 0 {
		q.Set("offset", fmt.Sprint(offset))
	}
	path := "/v1/admin/users"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	resp, err := s.doAuthRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}

	var out AccountListResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Session) GetAccount(ctx context.Context, id string) (*Account, error) {
	resp, err := s.doAuthRequest(ctx, http.MethodGet, "/v1/admin/users/"+url.PathEscape(id), nil)
	if err != nil {
		return nil, err
	}

	var out AccountResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out.Data, nil
}

func (s *Session) GetAccountPortfolio(ctx context.Context, id string) (*Portfolio, error) {
	resp, err := s.doAuthRequest(ctx, http.MethodGet, "/v1/admin/users/"+url.PathEscape(id)+"/portfolio", nil)
	if err != nil {
		return nil, err
	}

	var out PortfolioResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out.Data, nil
}

// DeleteAccount removes an account with all of its projects and posts.
func (s *Session) DeleteAccount(ctx context.Context, id string) (*DeleteAccountResponse, error) {
	resp, err := s.doAuthRequest(ctx, http.MethodDelete, "/v1/admin/users/"+url.PathEscape(id), nil)
	if err != nil {
		return nil, err
	}

	var out DeleteAccountResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Session) SetAccountRole(ctx context.Context, id, role string) (*Account, error) {
	resp, err := s.doAuthRequest(ctx, http.MethodPut, "/v1/admin/users/"+url.PathEscape(id)+"/role", SetRoleRequest{Role: role})
	if err != nil {
		return nil, err
	}

	var out AccountResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out.Data, nil
}

func (s *Session) SetAccountActive(ctx context.Context, id string, active bool) (*Account, error) {
	resp, err := s.doAuthRequest(ctx, http.MethodPut, "/v1/admin/users/"+url.PathEscape(id)+"/active", SetActiveRequest{Active: &active})
	if err != nil {
		return nil, err
	}

	var out AccountResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out.Data, nil
}
