package domain

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"
	"unicode/utf8"
)

type ProjectStatus string

const (
	ProjectPlanning   ProjectStatus = "planning"
	ProjectInProgress ProjectStatus = "in-progress"
	ProjectCompleted  ProjectStatus = "completed"
	ProjectOnHold     ProjectStatus = "on-hold"
	ProjectArchived   ProjectStatus = "archived"
)

var projectStatuses = []ProjectStatus{ProjectPlanning, ProjectInProgress, ProjectCompleted, ProjectOnHold, ProjectArchived}

var projectCategories = []string{"web-app", "mobile-app", "desktop-app", "api", "library", "tool", "game", "other"}

type Visibility string

const (
	VisibilityPublic   Visibility = "public"
	VisibilityPrivate  Visibility = "private"
	VisibilityUnlisted Visibility = "unlisted"
)

var visibilities = []Visibility{VisibilityPublic, VisibilityPrivate, VisibilityUnlisted}

type ProjectLinks struct {
	GitHub string `json:"github,omitempty"`
	Live   string `json:"live,omitempty"`
	Demo   string `json:"demo,omitempty"`
}

type Project struct {
	ID                  string
	AccountID           string
	Title               string
	Description         string
	DetailedDescription string
	Technologies        []string
	Links               ProjectLinks
	Status              ProjectStatus
	Category            string
	Featured            bool
	Priority            int
	Visibility          Visibility
	Tags                []string
	StartDate           *time.Time
	EndDate             *time.Time
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// ValidationError lists field problems by field name.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for k, v := range e.Fields {
		parts = append(parts, k+": "+v)
	}
	slices.Sort(parts)
	return "domain: validation failed: " + strings.Join(parts, "; ")
}

func (e *ValidationError) add(field, msg string) {
	if e.Fields == nil {
		e.Fields = map[string]string{}
	}
	e.Fields[field] = msg
}

func (e *ValidationError) orNil() error {
	if len(e.Fields) == 0 {
		return nil
	}
	return e
}

// AsValidationError unwraps err into a *ValidationError when it is one.
func AsValidationError(err error) (*ValidationError, bool) {
	var ve *ValidationError
	ok := errors.As(err, &ve)
	return ve, ok
}

// ApplyDefaults fills status, category, priority and visibility.
func (p *Project) ApplyDefaults() {
	p.Title = strings.TrimSpace(p.Title)
	p.Description = strings.TrimSpace(p.Description)
	p.DetailedDescription = strings.TrimSpace(p.DetailedDescription)
	if p.Status == "" {
		p.Status = ProjectPlanning
	}
	if p.Category == "" {
		p.Category = "web-app"
	}
	if p.Priority == 0 {
		p.Priority = 5
	}
	if p.Visibility == "" {
		p.Visibility = VisibilityPublic
	}
}

func (p *Project) Validate() error {
	ve := &ValidationError{}
	switch n := utf8.RuneCountInString(p.Title); {
	case n == 0:
		ve.add("title", "Project title is required")
	case n > 100:
		ve.add("title", "Title cannot exceed 100 characters")
	}
	switch n := utf8.RuneCountInString(p.Description); {
	case n == 0:
		ve.add("description", "Project description is required")
	case n > 500:
		ve.add("description", "Description cannot exceed 500 characters")
	}
	if utf8.RuneCountInString(p.DetailedDescription) > 2000 {
		ve.add("detailedDescription", "Detailed description cannot exceed 2000 characters")
	}
	if p.Links.GitHub != "" && !strings.HasPrefix(p.Links.GitHub, "https://github.com/") {
		ve.add("links.github", "GitHub URL must start with https://github.com/")
	}
	if p.Links.Live != "" && !isHTTPURL(p.Links.Live) {
		ve.add("links.live", "Live URL must be a valid URL")
	}
	if p.Links.Demo != "" && !isHTTPURL(p.Links.Demo) {
		ve.add("links.demo", "Demo URL must be a valid URL")
	}
	if !slices.Contains(projectStatuses, p.Status) {
		ve.add("status", fmt.Sprintf("Status must be one of %v", projectStatuses))
	}
	if !slices.Contains(projectCategories, p.Category) {
		ve.add("category", fmt.Sprintf("Category must be one of %v", projectCategories))
	}
	if p.Priority < 1 || p.Priority > 10 {
		ve.add("priority", "Priority must be between 1 and 10")
	}
	if !slices.Contains(visibilities, p.Visibility) {
		ve.add("visibility", "Visibility must be public, private or unlisted")
	}
	return ve.orNil()
}

func isHTTPURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}
