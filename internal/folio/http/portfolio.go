package http

import (
	"net/http"

	"github.com/aussiebroadwan/folio/internal/folio/domain"
	"github.com/aussiebroadwan/folio/internal/folio/service"
	"github.com/aussiebroadwan/folio/pkg/authsdk"
	"github.com/aussiebroadwan/folio/pkg/httpx"
)

const msgPortfolioUpdated = "Portfolio updated successfully"

// actorFrom builds the service Actor from the authenticated request.
func actorFrom(r *http.Request) service.Actor {
	id, _ := httpx.UserIDFromContext(r.Context())
	return service.Actor{AccountID: id, Role: domain.Role(httpx.RoleFromContext(r.Context()))}
}

type PortfolioHandler struct {
	ProfileService *service.ProfileService
}

// HandleGet returns the caller's portfolio.
//
//	@Summary		Get my portfolio
//	@Description	Returns the caller's account, profile (with bio and public email decrypted), skills, social links, preferences, projects and posts.
//	@Tags			Portfolio
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{object}	authsdk.PortfolioResponse	"Portfolio"
//	@Failure		401	{object}	authsdk.ErrorResponse		"Missing or invalid access token"
//	@Failure		404	{object}	authsdk.ErrorResponse		"Account not found"
//	@Router			/v1/me/portfolio [get].
func (h *PortfolioHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	view, err := h.ProfileService.Get(r.Context(), actorFrom(r).AccountID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, authsdk.PortfolioResponse{Success: true, Data: toPortfolio(view)})
}

// HandleUpdate applies a partial portfolio update.
//
//	@Summary		Update my portfolio
//	@Description	Text fields are stripped of script content. Bio and public email are stored encrypted; saving them fails when encryption is not configured.
//	@Tags			Portfolio
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			request	body		authsdk.PortfolioRequest	true	"Sections to change"
//	@Success		200		{object}	authsdk.PortfolioResponse	"Updated portfolio"
//	@Failure		400		{object}	authsdk.ErrorResponse		"Validation failed"
//	@Failure		401		{object}	authsdk.ErrorResponse		"Missing or invalid access token"
//	@Failure		500		{object}	authsdk.ErrorResponse		"Encryption not configured"
//	@Router			/v1/me/portfolio [put].
func (h *PortfolioHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	var req authsdk.PortfolioRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	view, err := h.ProfileService.Update(r.Context(), actorFrom(r).AccountID, fromPortfolioRequest(req))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, authsdk.PortfolioResponse{
		Success: true,
		Message: msgPortfolioUpdated,
		Data:    toPortfolio(view),
	})
}

// HandleDashboard returns content counts.
//
//	@Summary		Get my dashboard
//	@Tags			Portfolio
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{object}	authsdk.DashboardResponse	"Account and content counts"
//	@Failure		401	{object}	authsdk.ErrorResponse		"Missing or invalid access token"
//	@Router			/v1/me/dashboard [get].
func (h *PortfolioHandler) HandleDashboard(w http.ResponseWriter, r *http.Request) {
	stats, err := h.ProfileService.Dashboard(r.Context(), actorFrom(r).AccountID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, authsdk.DashboardResponse{
		Success: true,
		Data: authsdk.DashboardStats{
			User:     toAccount(stats.Account),
			Projects: stats.Projects,
			Posts:    stats.Posts,
		},
	})
}

// HandlePublic returns a public portfolio.
//
//	@Summary		Get a public portfolio
//	@Description	Returns completed public projects and published posts of an active account whose profile is public. The login email is never included.
//	@Tags			Portfolio
//	@Produce		json
//	@Param			username	path		string							true	"Username"
//	@Success		200			{object}	authsdk.PublicPortfolioResponse	"Public portfolio"
//	@Failure		404			{object}	authsdk.ErrorResponse			"Portfolio not found"
//	@Router			/v1/portfolio/{username} [get].
func (h *PortfolioHandler) HandlePublic(w http.ResponseWriter, r *http.Request) {
	p, err := h.ProfileService.PublicPortfolio(r.Context(), r.PathValue("username"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, authsdk.PublicPortfolioResponse{Success: true, Data: toPublicPortfolio(p)})
}
