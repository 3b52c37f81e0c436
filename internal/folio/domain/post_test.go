package domain_test

import (
	"strings"
	"testing"
	"time"

	"github.com/aussiebroadwan/folio/internal/folio/domain"
	"github.com/stretchr/testify/require"
)

func TestSlugify(t *testing.T) {
	tests := map[string]string{
		"Hello World":                 "hello-world",
		"  Go 1.25: What's New?!  ":   "go-125-whats-new",
		"multiple   spaces -- dashes": "multiple-spaces-dashes",
		"!!!":                         "",
	}
	for in, want := range tests {
		require.Equal(t, want, domain.Slugify(in), in)
	}
}

func TestReadTime(t *testing.T) {
	require.Equal(t, 1, domain.ReadTime(""))
	require.Equal(t, 1, domain.ReadTime(strings.Repeat("word ", 200)))
	require.Equal(t, 2, domain.ReadTime(strings.Repeat("word ", 201)))
}

func TestPostPrepare(t *testing.T) {
	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

	p := domain.Post{Title: "My First Post", Excerpt: "x", Content: "hello", Tags: []string{" Go "}, Status: domain.PostPublished}
	p.Prepare(now)
	require.Equal(t, "my-first-post", p.Slug)
	require.Equal(t, []string{"go"}, p.Tags)
	require.Equal(t, 1, p.ReadTime)
	require.NotNil(t, p.PublishedAt)
	require.Equal(t, now, *p.PublishedAt)
	require.NoError(t, p.Validate())

	// Re-preparing keeps the original publish time.
	p.Prepare(now.Add(time.Hour))
	require.Equal(t, now, *p.PublishedAt)

	draft := domain.Post{Title: "Draft", Excerpt: "x", Content: "y"}
	draft.Prepare(now)
	require.Equal(t, domain.PostDraft, draft.Status)
	require.Nil(t, draft.PublishedAt)
}

func TestPostValidate(t *testing.T) {
	p := domain.Post{Title: "!!!", Status: "bogus"}
	p.Prepare(time.Now())
	p.Status = "bogus"

	err := p.Validate()
	ve, ok := domain.AsValidationError(err)
	require.True(t, ok)
	require.Contains(t, ve.Fields, "slug")
	require.Contains(t, ve.Fields, "excerpt")
	require.Contains(t, ve.Fields, "content")
	require.Contains(t, ve.Fields, "status")
}

func TestProjectValidate(t *testing.T) {
	p := domain.Project{Title: "Folio", Description: "Portfolio backend"}
	p.ApplyDefaults()
	require.Equal(t, domain.ProjectPlanning, p.Status)
	require.Equal(t, "web-app", p.Category)
	require.Equal(t, 5, p.Priority)
	require.Equal(t, domain.VisibilityPublic, p.Visibility)
	require.NoError(t, p.Validate())

	p.Links.GitHub = "https://gitlab.com/x"
	p.Links.Live = "ftp://x"
	p.Priority = 11
	ve, ok := domain.AsValidationError(p.Validate())
	require.True(t, ok)
	require.Equal(t, "GitHub URL must start with https://github.com/", ve.Fields["links.github"])
	require.Contains(t, ve.Fields, "links.live")
	require.Contains(t, ve.Fields, "priority")
}
