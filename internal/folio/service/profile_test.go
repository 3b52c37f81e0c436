package service

import (
	"bytes"
	"context"
	"encoding/base64"
	"strings"
	"testing"

	"github.com/aussiebroadwan/folio/internal/folio/domain"
	"github.com/aussiebroadwan/folio/pkg/cryptox"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

func TestSanitize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		clean  func(string) string
		in     string
		want   string
		absent []string
	}{
		{name: "plain text", clean: Sanitize, in: "  Hello world  ", want: "Hello world"},
		{name: "script block", clean: Sanitize, in: "<script>alert(1)</script>Hello", want: "Hello"},
		{name: "multiline script", clean: Sanitize, in: "a<SCRIPT type=\"x\">\nsteal()\n</script >b", want: "ab"},
		{name: "dangling script tag", clean: Sanitize, in: "x<script src=evil.js>", want: "x"},
		{name: "markup becomes text", clean: Sanitize, in: `<img src=x onerror="alert(1)">R&D <b>team</b>`, want: "R&D team"},
		{name: "quotes survive", clean: Sanitize, in: `Alice's "notes"`, want: `Alice's "notes"`},
		{name: "keeps ordinary words", clean: Sanitize, in: "online presence", want: "online presence"},
		{
			name:  "iframe srcdoc",
			clean: Sanitize,
			in:    `before<iframe srcdoc="<script>alert(1)</script>">hidden</iframe>after`,
			want:  "beforeafter",
		},
		{name: "object data", clean: Sanitize, in: `a<object data="javascript:alert(1)"></object>b`, want: "ab"},

		{name: "formatting kept", clean: SanitizeHTML, in: `<b onmouseover="x()">Building</b>`, want: "<b>Building</b>"},
		{
			name:  "safe links kept",
			clean: SanitizeHTML,
			in:    `<p>Hello <a href="https://example.com">there</a></p>`,
			want:  `<p>Hello <a href="https://example.com" rel="nofollow">there</a></p>`,
		},
		{
			name:   "entity encoded scheme in href",
			clean:  SanitizeHTML,
			in:     `<a href="javascript&#58;alert(1)">x</a>`,
			absent: []string{"javascript", "href"},
		},
		{
			name:   "iframe srcdoc in rich text",
			clean:  SanitizeHTML,
			in:     `<iframe srcdoc="&lt;script&gt;alert(1)&lt;/script&gt;"></iframe><p>ok</p>`,
			absent: []string{"iframe", "srcdoc", "script"},
		},
		{
			name:   "object in rich text",
			clean:  SanitizeHTML,
			in:     `<object data="data:text/html;base64,PHNjcmlwdD4="></object><p>ok</p>`,
			absent: []string{"object", "data:"},
		},

		{name: "web url", clean: SanitizeURL, in: " https://github.com/alice?tab=repos&q=go ", want: "https://github.com/alice?tab=repos&q=go"},
		{name: "mailto", clean: SanitizeURL, in: "mailto:alice@example.com", want: "mailto:alice@example.com"},
		{name: "handle without scheme", clean: SanitizeURL, in: "alice", want: "alice"},
		{name: "javascript scheme", clean: SanitizeURL, in: "JaVaScRiPt:alert(1)", want: ""},
		{name: "entity encoded javascript scheme", clean: SanitizeURL, in: "javascript&#58;alert(1)", want: ""},
		{name: "data scheme", clean: SanitizeURL, in: "data:text/html,<script>alert(1)</script>", want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.clean(tt.in)
			if tt.absent == nil {
				require.Equal(t, tt.want, got)
				return
			}
			for _, s := range tt.absent {
				require.NotContains(t, strings.ToLower(got), s)
			}
		})
	}
}

func TestProfileUpdateEncryptsSensitiveFields(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	sum := h.register(t, "alice")

	view, err := h.profiles.Update(ctx, sum.ID, ProfileUpdate{
		Profile: &ProfilePatch{
			FirstName:    ptr("Alice"),
			LastName:     ptr("Liddell"),
			Bio:          ptr("Curious <script>x()</script>engineer"),
			PublicEmail:  ptr(" Hello@Alice.dev "),
			Headline:     ptr("Full Stack Developer"),
			Subheadlines: []string{"Go", "<script>bad()</script>", "SQL"},
			AboutCards:   []domain.AboutCard{{Category: "Now", Content: `<b onmouseover="x()">Building</b>`}},
		},
		Skills:      []domain.SkillGroup{{Category: "Languages", Items: []string{"Go", "TypeScript"}}},
		Social:      &domain.Social{Github: "https://github.com/alice"},
		Preferences: &domain.Preferences{EmailNotifications: false, PublicProfile: true},
	})
	require.NoError(t, err)

	require.Equal(t, "Curious engineer", view.Account.Profile.Bio)
	require.Equal(t, "hello@alice.dev", view.Account.Profile.PublicEmail)
	require.Equal(t, "Alice Liddell", view.Account.FullName)
	require.Equal(t, []string{"Go", "SQL"}, view.Account.Profile.Subheadlines)
	require.Equal(t, "<b>Building</b>", view.Account.Profile.AboutCards[0].Content)
	require.Equal(t, "https://github.com/alice", view.Social.Github)
	require.False(t, view.Preferences.EmailNotifications)

	a := h.account(t, sum.ID)
	require.True(t, cryptox.LooksEncrypted(a.Profile.BioEncrypted))
	require.True(t, cryptox.LooksEncrypted(a.Profile.PublicEmailEncrypted))
	require.NotContains(t, a.Profile.BioEncrypted, "engineer")

	t.Run("partial update leaves other fields", func(t *testing.T) {
		view, err := h.profiles.Update(ctx, sum.ID, ProfileUpdate{
			Profile: &ProfilePatch{Location: ptr("Sydney")},
		})
		require.NoError(t, err)
		require.Equal(t, "Sydney", view.Account.Profile.Location)
		require.Equal(t, "Curious engineer", view.Account.Profile.Bio)
		require.Len(t, view.Skills, 1)
	})

	t.Run("empty sensitive value clears it", func(t *testing.T) {
		view, err := h.profiles.Update(ctx, sum.ID, ProfileUpdate{
			Profile: &ProfilePatch{Bio: ptr("")},
		})
		require.NoError(t, err)
		require.Empty(t, view.Account.Profile.Bio)
		require.Empty(t, h.account(t, sum.ID).Profile.BioEncrypted)
	})
}

func TestProfileUpdateValidation(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	sum := h.register(t, "alice")

	_, err := h.profiles.Update(ctx, sum.ID, ProfileUpdate{
		Profile: &ProfilePatch{
			Website:     ptr("javascript:alert(1)"),
			PublicEmail: ptr("not-an-email"),
		},
	})
	se := requireKind(t, err, KindValidation)
	require.Contains(t, se.Details, "profile.website")
	require.Contains(t, se.Details, "profile.publicEmail")

	_, err = h.profiles.Update(ctx, "missing", ProfileUpdate{Profile: &ProfilePatch{Location: ptr("x")}})
	requireKind(t, err, KindNotFound)
}

func TestProfileUpdateWithoutCipherFailsClosed(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, withoutCipher())
	sum := h.register(t, "alice")

	_, err := h.profiles.Update(ctx, sum.ID, ProfileUpdate{
		Profile: &ProfilePatch{Headline: ptr("Hi"), Bio: ptr("secret bio")},
	})
	requireKind(t, err, KindConfiguration)
	require.ErrorIs(t, err, ErrCipherUnavailable)

	a := h.account(t, sum.ID)
	require.Empty(t, a.Profile.Headline)
	require.Empty(t, a.Profile.BioEncrypted)

	// Non-sensitive updates still work.
	view, err := h.profiles.Update(ctx, sum.ID, ProfileUpdate{Profile: &ProfilePatch{Headline: ptr("Hi")}})
	require.NoError(t, err)
	require.Equal(t, "Hi", view.Account.Profile.Headline)
}

func TestProfileGetDegradesOnCipherProblems(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	sum := h.register(t, "alice")
	_, err := h.profiles.Update(ctx, sum.ID, ProfileUpdate{
		Profile: &ProfilePatch{Bio: ptr("hidden"), Headline: ptr("Visible")},
	})
	require.NoError(t, err)

	t.Run("cipher not configured", func(t *testing.T) {
		unconfigured, err := cryptox.NewFieldCipher("")
		require.NoError(t, err)
		svc := &ProfileService{Store: h.store, Cipher: unconfigured, Clock: h.clock}

		view, err := svc.Get(ctx, sum.ID)
		require.NoError(t, err)
		require.Empty(t, view.Account.Profile.Bio)
		require.Equal(t, "Visible", view.Account.Profile.Headline)
	})

	t.Run("wrong key fails integrity", func(t *testing.T) {
		other, err := cryptox.NewFieldCipher(base64.StdEncoding.EncodeToString(bytes.Repeat([]byte{9}, 32)))
		require.NoError(t, err)
		svc := &ProfileService{Store: h.store, Cipher: other, Clock: h.clock}

		view, err := svc.Get(ctx, sum.ID)
		require.NoError(t, err)
		require.Empty(t, view.Account.Profile.Bio)
		require.Equal(t, "Visible", view.Account.Profile.Headline)
	})
}

func TestPublicPortfolio(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	sum := h.register(t, "alice")
	actor := Actor{AccountID: sum.ID, Role: domain.RoleUser}

	_, err := h.profiles.Update(ctx, sum.ID, ProfileUpdate{
		Profile: &ProfilePatch{Bio: ptr("Hello"), PublicEmail: ptr("contact@alice.dev")},
	})
	require.NoError(t, err)

	for _, in := range []ProjectInput{
		{Title: "Shipped", Description: "done", Status: domain.ProjectCompleted},
		{Title: "Secret", Description: "done", Status: domain.ProjectCompleted, Visibility: domain.VisibilityPrivate},
		{Title: "WIP", Description: "not yet", Status: domain.ProjectInProgress},
	} {
		_, err := h.portfolio.CreateProject(ctx, actor, in)
		require.NoError(t, err)
	}
	for _, in := range []PostInput{
		{Title: "Live post", Excerpt: "e", Content: "body", Status: domain.PostPublished},
		{Title: "Draft post", Excerpt: "e", Content: "body"},
	} {
		_, err := h.portfolio.CreatePost(ctx, actor, in)
		require.NoError(t, err)
	}

	pub, err := h.profiles.PublicPortfolio(ctx, "alice")
	require.NoError(t, err)
	require.Equal(t, "alice", pub.Username)
	require.Equal(t, "Hello", pub.Profile.Bio)
	require.Equal(t, "contact@alice.dev", pub.Profile.PublicEmail)
	require.Len(t, pub.Projects, 1)
	require.Equal(t, "Shipped", pub.Projects[0].Title)
	require.Len(t, pub.Posts, 1)
	require.Equal(t, "live-post", pub.Posts[0].Slug)

	t.Run("hidden portfolio is not found", func(t *testing.T) {
		_, err := h.profiles.Update(ctx, sum.ID, ProfileUpdate{
			Preferences: &domain.Preferences{PublicProfile: false},
		})
		require.NoError(t, err)
		_, err = h.profiles.PublicPortfolio(ctx, "alice")
		requireKind(t, err, KindNotFound)
	})

	t.Run("unknown user is not found", func(t *testing.T) {
		_, err := h.profiles.PublicPortfolio(ctx, "nobody")
		requireKind(t, err, KindNotFound)
	})
}

func TestDashboard(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	sum := h.register(t, "alice")
	actor := Actor{AccountID: sum.ID, Role: domain.RoleUser}

	_, err := h.portfolio.CreateProject(ctx, actor, ProjectInput{Title: "One", Description: "d"})
	require.NoError(t, err)
	_, err = h.portfolio.CreatePost(ctx, actor, PostInput{Title: "A", Excerpt: "e", Content: "c"})
	require.NoError(t, err)
	_, err = h.portfolio.CreatePost(ctx, actor, PostInput{Title: "B", Excerpt: "e", Content: "c"})
	require.NoError(t, err)

	stats, err := h.profiles.Dashboard(ctx, sum.ID)
	require.NoError(t, err)
	require.Equal(t, int64(1), stats.Projects)
	require.Equal(t, int64(2), stats.Posts)
	require.Equal(t, "alice", stats.Account.Username)
}
