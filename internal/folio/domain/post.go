package domain

import (
	"math"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"
)

type PostStatus string

const (
	PostDraft     PostStatus = "draft"
	PostPublished PostStatus = "published"
	PostArchived  PostStatus = "archived"
)

const wordsPerMinute = 200

type Post struct {
	ID          string
	AccountID   string
	Title       string
	Slug        string
	Excerpt     string
	Content     string
	Tags        []string
	Categories  []string
	Status      PostStatus
	PublishedAt *time.Time
	ReadTime    int
	Featured    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

var (
	slugStrip = regexp.MustCompile(`[^a-z0-9\s-]`)
	slugSpace = regexp.MustCompile(`\s+`)
	slugDash  = regexp.MustCompile(`-+`)
)

// Slugify lowercases title, drops anything outside [a-z0-9 -] and joins
// words with single dashes.
func Slugify(title string) string {
	s := slugStrip.ReplaceAllString(strings.ToLower(title), "")
	s = slugSpace.ReplaceAllString(strings.TrimSpace(s), "-")
	s = slugDash.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// ReadTime estimates minutes at 200 words per minute, at least 1.
func ReadTime(content string) int {
	words := len(strings.Fields(content))
	return max(1, int(math.Ceil(float64(words)/wordsPerMinute)))
}

// Prepare normalises the post before it is stored. now is used for the
// first transition to published.
func (p *Post) Prepare(now time.Time) {
	p.Title = strings.TrimSpace(p.Title)
	p.Excerpt = strings.TrimSpace(p.Excerpt)
	p.Content = strings.TrimSpace(p.Content)
	if p.Status == "" {
		p.Status = PostDraft
	}
	if p.Slug == "" {
		p.Slug = Slugify(p.Title)
	} else {
		p.Slug = strings.ToLower(strings.TrimSpace(p.Slug))
	}
	for i, t := range p.Tags {
		p.Tags[i] = strings.ToLower(strings.TrimSpace(t))
	}
	for i, c := range p.Categories {
		p.Categories[i] = strings.ToLower(strings.TrimSpace(c))
	}
	p.ReadTime = ReadTime(p.Content)
	if p.Status == PostPublished && p.PublishedAt == nil {
		t := now.UTC()
		p.PublishedAt = &t
	}
}

func (p *Post) Validate() error {
	ve := &ValidationError{}
	switch n := utf8.RuneCountInString(p.Title); {
	case n == 0:
		ve.add("title", "Blog post title is required")
	case n > 200:
		ve.add("title", "Title cannot exceed 200 characters")
	}
	if p.Slug == "" {
		ve.add("slug", "Slug could not be derived from the title")
	} else if utf8.RuneCountInString(p.Slug) > 250 {
		ve.add("slug", "Slug cannot exceed 250 characters")
	}
	switch n := utf8.RuneCountInString(p.Excerpt); {
	case n == 0:
		ve.add("excerpt", "Blog post excerpt is required")
	case n > 300:
		ve.add("excerpt", "Excerpt cannot exceed 300 characters")
	}
	if p.Content == "" {
		ve.add("content", "Blog post content is required")
	}
	switch p.Status {
	case PostDraft, PostPublished, PostArchived:
	default:
		ve.add("status", "Status must be draft, published or archived")
	}
	return ve.orNil()
}
