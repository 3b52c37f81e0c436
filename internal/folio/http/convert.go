package http

import (
	"github.com/aussiebroadwan/folio/internal/folio/domain"
	"github.com/aussiebroadwan/folio/internal/folio/service"
	"github.com/aussiebroadwan/folio/pkg/authsdk"
)

// Conversions between service views and wire types. Slices are never nil
// so clients always receive arrays.

func toAccount(a service.AccountSummary) authsdk.Account {
	return authsdk.Account{
		ID:           a.ID,
		Username:     a.Username,
		Email:        a.Email,
		Role:         string(a.Role),
		AuthProvider: string(a.AuthProvider),
		IsVerified:   a.IsVerified,
		IsActive:     a.IsActive,
		FullName:     a.FullName,
		Profile:      toProfile(a.Profile),
		LastLogin:    a.LastLogin,
		CreatedAt:    a.CreatedAt,
		UpdatedAt:    a.UpdatedAt,
	}
}

func toProfile(p service.PublicProfile) authsdk.Profile {
	cards := make([]authsdk.AboutCard, 0, len(p.AboutCards))
	for _, c := range p.AboutCards {
		cards = append(cards, authsdk.AboutCard{Category: c.Category, Content: c.Content})
	}
	return authsdk.Profile{
		FirstName:      p.FirstName,
		LastName:       p.LastName,
		ProfilePicture: p.ProfilePicture,
		Location:       p.Location,
		Website:        p.Website,
		GithubURL:      p.GithubURL,
		LinkedinURL:    p.LinkedinURL,
		Headline:       p.Headline,
		Subheadlines:   p.Subheadlines,
		AboutTitle:     p.AboutTitle,
		AboutContent:   p.AboutContent,
		AboutCards:     cards,
		Phone:          p.Phone,
		Bio:            p.Bio,
		PublicEmail:    p.PublicEmail,
	}
}

func toSkills(in []domain.SkillGroup) []authsdk.SkillGroup {
	out := make([]authsdk.SkillGroup, 0, len(in))
	for _, g := range in {
		items := g.Items
		if items == nil {
			items = []string{}
		}
		out = append(out, authsdk.SkillGroup{Category: g.Category, Items: items})
	}
	return out
}

func toSocial(s domain.Social) authsdk.Social {
	return authsdk.Social{Github: s.Github, Linkedin: s.Linkedin, Twitter: s.Twitter, Website: s.Website}
}

func toPortfolio(v service.PortfolioView) authsdk.Portfolio {
	return authsdk.Portfolio{
		User:   toAccount(v.Account),
		Skills: toSkills(v.Skills),
		Social: toSocial(v.Social),
		Preferences: authsdk.Preferences{
			EmailNotifications: v.Preferences.EmailNotifications,
			PublicProfile:      v.Preferences.PublicProfile,
		},
		Projects: toProjects(v.Projects),
		Posts:    toPosts(v.Posts),
	}
}

func toPublicPortfolio(p service.PublicPortfolio) authsdk.PublicPortfolio {
	return authsdk.PublicPortfolio{
		Username: p.Username,
		FullName: p.FullName,
		Profile:  toProfile(p.Profile),
		Skills:   toSkills(p.Skills),
		Social:   toSocial(p.Social),
		Projects: toProjects(p.Projects),
		Posts:    toPosts(p.Posts),
	}
}

func toProject(p domain.Project) authsdk.Project {
	return authsdk.Project{
		ID:                  p.ID,
		UserID:              p.AccountID,
		Title:               p.Title,
		Description:         p.Description,
		DetailedDescription: p.DetailedDescription,
		Technologies:        nonNil(p.Technologies),
		Links:               authsdk.ProjectLinks{GitHub: p.Links.GitHub, Live: p.Links.Live, Demo: p.Links.Demo},
		Status:              string(p.Status),
		Category:            p.Category,
		Featured:            p.Featured,
		Priority:            p.Priority,
		Visibility:          string(p.Visibility),
		Tags:                nonNil(p.Tags),
		StartDate:           p.StartDate,
		EndDate:             p.EndDate,
		CreatedAt:           p.CreatedAt,
		UpdatedAt:           p.UpdatedAt,
	}
}

func toProjects(in []domain.Project) []authsdk.Project {
	out := make([]authsdk.Project, 0, len(in))
	for _, p := range in {
		out = append(out, toProject(p))
	}
	return out
}

func toPost(p domain.Post) authsdk.Post {
	return authsdk.Post{
		ID:          p.ID,
		UserID:      p.AccountID,
		Title:       p.Title,
		Slug:        p.Slug,
		Excerpt:     p.Excerpt,
		Content:     p.Content,
		Tags:        nonNil(p.Tags),
		Categories:  nonNil(p.Categories),
		Status:      string(p.Status),
		PublishedAt: p.PublishedAt,
		ReadTime:    p.ReadTime,
		Featured:    p.Featured,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

func toPosts(in []domain.Post) []authsdk.Post {
	out := make([]authsdk.Post, 0, len(in))
	for _, p := range in {
		out = append(out, toPost(p))
	}
	return out
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// Request mapping.

func fromPortfolioRequest(req authsdk.PortfolioRequest) service.ProfileUpdate {
	var u service.ProfileUpdate
	if p := req.Profile; p != nil {
		patch := &service.ProfilePatch{
			FirstName:      p.FirstName,
			LastName:       p.LastName,
			Bio:            p.Bio,
			ProfilePicture: p.ProfilePicture,
			Location:       p.Location,
			Website:        p.Website,
			GithubURL:      p.GithubURL,
			LinkedinURL:    p.LinkedinURL,
			Headline:       p.Headline,
			Subheadlines:   p.Subheadlines,
			AboutTitle:     p.AboutTitle,
			AboutContent:   p.AboutContent,
			Phone:          p.Phone,
			PublicEmail:    p.PublicEmail,
		}
		if p.AboutCards != nil {
			patch.AboutCards = make([]domain.AboutCard, 0, len(p.AboutCards))
			for _, c := range p.AboutCards {
				patch.AboutCards = append(patch.AboutCards, domain.AboutCard{Category: c.Category, Content: c.Content})
			}
		}
		u.Profile = patch
	}
	if req.Skills != nil {
		u.Skills = make([]domain.SkillGroup, 0, len(req.Skills))
		for _, g := range req.Skills {
			u.Skills = append(u.Skills, domain.SkillGroup{Category: g.Category, Items: g.Items})
		}
	}
	if s := req.Social; s != nil {
		u.Social = &domain.Social{Github: s.Github, Linkedin: s.Linkedin, Twitter: s.Twitter, Website: s.Website}
	}
	if p := req.Preferences; p != nil {
		u.Preferences = &domain.Preferences{EmailNotifications: p.EmailNotifications, PublicProfile: p.PublicProfile}
	}
	return u
}

func fromProjectRequest(req authsdk.ProjectRequest) service.ProjectInput {
	return service.ProjectInput{
		Title:               req.Title,
		Description:         req.Description,
		DetailedDescription: req.DetailedDescription,
		Technologies:        req.Technologies,
		Links:               domain.ProjectLinks{GitHub: req.Links.GitHub, Live: req.Links.Live, Demo: req.Links.Demo},
		Status:              domain.ProjectStatus(req.Status),
		Category:            req.Category,
		Featured:            req.Featured,
		Priority:            req.Priority,
		Visibility:          domain.Visibility(req.Visibility),
		Tags:                req.Tags,
		StartDate:           req.StartDate,
		EndDate:             req.EndDate,
	}
}

func fromPostRequest(req authsdk.PostRequest) service.PostInput {
	return service.PostInput{
		Title:      req.Title,
		Slug:       req.Slug,
		Excerpt:    req.Excerpt,
		Content:    req.Content,
		Tags:       req.Tags,
		Categories: req.Categories,
		Status:     domain.PostStatus(req.Status),
		Featured:   req.Featured,
	}
}
