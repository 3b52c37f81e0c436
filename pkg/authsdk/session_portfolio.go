package authsdk

import (
	"context"
	"net/http"
	"net/url"
)

// GetPortfolio returns the caller's full portfolio.
func (s *Session) GetPortfolio(ctx context.Context) (*Portfolio, error) {
	resp, err := s.doAuthRequest(ctx, http.MethodGet, "/v1/me/portfolio", nil)
	if err != nil {
		return nil, err
	}

	var out PortfolioResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out.Data, nil
}

// UpdatePortfolio applies a partial update and returns the new portfolio.
func (s *Session) UpdatePortfolio(ctx context.Context, req PortfolioRequest) (*Portfolio, error) {
	resp, err := s.doAuthRequest(ctx, http.MethodPut, "/v1/me/portfolio", req)
	if err != nil {
		return nil, err
	}

	var out PortfolioResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out.Data, nil
}

// GetDashboard returns content counts for the caller.
func (s *Session) GetDashboard(ctx context.Context) (*DashboardStats, error) {
	resp, err := s.doAuthRequest(ctx, http.MethodGet, "/v1/me/dashboard", nil)
	if err != nil {
		return nil, err
	}

	var out DashboardResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out.Data, nil
}

func (s *Session) ListProjects(ctx context.Context) ([]Project, error) {
	resp, err := s.doAuthRequest(ctx, http.MethodGet, "/v1/me/projects", nil)
	if err != nil {
		return nil, err
	}

	var out ProjectListResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return out.Data, nil
}

func (s *Session) CreateProject(ctx context.Context, req ProjectRequest) (*Project, error) {
	resp, err := s.doAuthRequest(ctx, http.MethodPost, "/v1/me/projects", req)
	if err != nil {
		return nil, err
	}

	var out ProjectResponse
	if err := decodeJSON(resp, &out, http.StatusCreated); err != nil {
		return nil, err
	}
	return &out.Data, nil
}

func (s *Session) UpdateProject(ctx context.Context, id string, req ProjectRequest) (*Project, error) {
	resp, err := s.doAuthRequest(ctx, http.MethodPut, "/v1/me/projects/"+url.PathEscape(id), req)
	if err != nil {
		return nil, err
	}

	var out ProjectResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out.Data, nil
}

func (s *Session) DeleteProject(ctx context.Context, id string) error {
	resp, err := s.doAuthRequest(ctx, http.MethodDelete, "/v1/me/projects/"+url.PathEscape(id), nil)
	if err != nil {
		return err
	}
	return decodeJSON(resp, nil, http.StatusOK)
}

func (s *Session) ListPosts(ctx context.Context) ([]Post, error) {
	resp, err := s.doAuthRequest(ctx, http.MethodGet, "/v1/me/posts", nil)
	if err != nil {
		return nil, err
	}

	var out PostListResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return out.Data, nil
}

func (s *Session) CreatePost(ctx context.Context, req PostRequest) (*Post, error) {
	resp, err := s.doAuthRequest(ctx, http.MethodPost, "/v1/me/posts", req)
	if err != nil {
		return nil, err
	}

	var out PostResponse
	if err := decodeJSON(resp, &out, http.StatusCreated); err != nil {
		return nil, err
	}
	return &out.Data, nil
}

func (s *Session) UpdatePost(ctx context.Context, id string, req PostRequest) (*Post, error) {
	resp, err := s.doAuthRequest(ctx, http.MethodPut, "/v1/me/posts/"+url.PathEscape(id), req)
	if err != nil {
		return nil, err
	}

	var out PostResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out.Data, nil
}

func (s *Session) DeletePost(ctx context.Context, id string) error {
	resp, err := s.doAuthRequest(ctx, http.MethodDelete, "/v1/me/posts/"+url.PathEscape(id), nil)
	if err != nil {
		return err
	}
	return decodeJSON(resp, nil, http.StatusOK)
}
