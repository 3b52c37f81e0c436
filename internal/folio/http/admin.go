package http

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/aussiebroadwan/folio/internal/folio/domain"
	"github.com/aussiebroadwan/folio/internal/folio/service"
	"github.com/aussiebroadwan/folio/internal/folio/store"
	"github.com/aussiebroadwan/folio/pkg/authsdk"
	"github.com/aussiebroadwan/folio/pkg/httpx"
)

// AdminHandler serves the account management endpoints. Every route
// requires the admin role.
type AdminHandler struct {
	AdminService *service.AdminService
}

// pageFrom reads limit and offset from the query. Unparseable values become
// zero and the service applies its defaults.
func pageFrom(r *http.Request) store.Page {
	q := r.URL.Query()
	limit, _ := strconv.Atoi(q.Get("limit"))
	offset, _ := strconv.Atoi(q.Get("offset"))
	return store.Page{Limit: limit, Offset: offset}
}

// HandleList godoc
//
//	@Summary	List accounts
//	@Tags		Admin
//	@Produce	json
//	@Security	BearerAuth
//	@Param		limit	query		int							false	"Page size (default 50, max 200)"
//	@Param		offset	query		int							false	"Offset"
//	@Success	200		{object}	authsdk.AccountListResponse	"Accounts, newest first"
//	@Failure	401		{object}	authsdk.ErrorResponse		"Missing or invalid access token"
//	@Failure	403		{object}	authsdk.ErrorResponse		"Admin role required"
//	@Router		/v1/admin/users [get].
func (h *AdminHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	res, err := h.AdminService.ListAccounts(r.Context(), pageFrom(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	accounts := make([]authsdk.Account, 0, len(res.Accounts))
	for _, a := range res.Accounts {
		accounts = append(accounts, toAccount(a))
	}
	httpx.WriteJSON(w, http.StatusOK, authsdk.AccountListResponse{
		Success: true,
		Data:    accounts,
		Total:   res.Total,
		Limit:   res.Limit,
		Offset:  res.Offset,
	})
}

// HandleGet godoc
//
//	@Summary	Get an account
//	@Tags		Admin
//	@Produce	json
//	@Security	BearerAuth
//	@Param		id	path		string					true	"Account ID"
//	@Success	200	{object}	authsdk.AccountResponse	"Account"
//	@Failure	403	{object}	authsdk.ErrorResponse	"Admin role required"
//	@Failure	404	{object}	authsdk.ErrorResponse	"Account not found"
//	@Router		/v1/admin/users/{id} [get].
func (h *AdminHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id", "User")
	if !ok {
		return
	}
	a, err := h.AdminService.GetAccount(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, authsdk.AccountResponse{Success: true, Data: toAccount(a)})
}

// HandleDelete godoc
//
//	@Summary		Delete an account
//	@Description	Removes the account with all of its projects and posts. Admins cannot delete themselves.
//	@Tags			Admin
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id	path		string							true	"Account ID"
//	@Success		200	{object}	authsdk.DeleteAccountResponse	"Deleted"
//	@Failure		400	{object}	authsdk.ErrorResponse			"Cannot delete your own account"
//	@Failure		403	{object}	authsdk.ErrorResponse			"Admin role required"
//	@Failure		404	{object}	authsdk.ErrorResponse			"Account not found"
//	@Router			/v1/admin/users/{id} [delete].
func (h *AdminHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id", "User")
	if !ok {
		return
	}
	res, err := h.AdminService.DeleteAccount(r.Context(), actorFrom(r), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, authsdk.DeleteAccountResponse{
		Success:         true,
		Message:         "User and all associated data deleted successfully",
		DeletedProjects: res.Projects,
		DeletedPosts:    res.Posts,
	})
}

// HandleGetPortfolio godoc
//
//	@Summary	Get an account's portfolio
//	@Tags		Admin
//	@Produce	json
//	@Security	BearerAuth
//	@Param		id	path		string						true	"Account ID"
//	@Success	200	{object}	authsdk.PortfolioResponse	"Portfolio"
//	@Failure	403	{object}	authsdk.ErrorResponse		"Admin role required"
//	@Failure	404	{object}	authsdk.ErrorResponse		"Account not found"
//	@Router		/v1/admin/users/{id}/portfolio [get].
func (h *AdminHandler) HandleGetPortfolio(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id", "User")
	if !ok {
		return
	}
	view, err := h.AdminService.GetPortfolio(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, authsdk.PortfolioResponse{Success: true, Data: toPortfolio(view)})
}

// HandleUpdatePortfolio godoc
//
//	@Summary	Update an account's portfolio
//	@Tags		Admin
//	@Accept		json
//	@Produce	json
//	@Security	BearerAuth
//	@Param		id		path		string						true	"Account ID"
//	@Param		request	body		authsdk.PortfolioRequest	true	"Sections to change"
//	@Success	200		{object}	authsdk.PortfolioResponse	"Updated portfolio"
//	@Failure	400		{object}	authsdk.ErrorResponse		"Validation failed"
//	@Failure	403		{object}	authsdk.ErrorResponse		"Admin role required"
//	@Failure	404		{object}	authsdk.ErrorResponse		"Account not found"
//	@Router		/v1/admin/users/{id}/portfolio [put].
func (h *AdminHandler) HandleUpdatePortfolio(w http.ResponseWriter, r *http.Request) {
	var req authsdk.PortfolioRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	id, ok := pathID(w, r, "id", "User")
	if !ok {
		return
	}
	view, err := h.AdminService.UpdatePortfolio(r.Context(), actorFrom(r), id, fromPortfolioRequest(req))
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

// HandleDeleteProject godoc
//
//	@Summary	Delete a project of an account
//	@Tags		Admin
//	@Produce	json
//	@Security	BearerAuth
//	@Param		id			path		string					true	"Account ID"
//	@Param		projectID	path		string					true	"Project ID"
//	@Success	200			{object}	authsdk.MessageResponse	"Deleted"
//	@Failure	403			{object}	authsdk.ErrorResponse	"Admin role required"
//	@Failure	404			{object}	authsdk.ErrorResponse	"Project not found for this account"
//	@Router		/v1/admin/users/{id}/projects/{projectID} [delete].
func (h *AdminHandler) HandleDeleteProject(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id", "User")
	if !ok {
		return
	}
	projectID, ok := pathID(w, r, "projectID", "Project")
	if !ok {
		return
	}
	err := h.AdminService.DeleteProject(r.Context(), actorFrom(r), id, projectID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, authsdk.MessageResponse{Success: true, Message: "Project deleted successfully"})
}

// HandleDeletePost godoc
//
//	@Summary	Delete a blog post of an account
//	@Tags		Admin
//	@Produce	json
//	@Security	BearerAuth
//	@Param		id		path		string					true	"Account ID"
//	@Param		postID	path		string					true	"Post ID"
//	@Success	200		{object}	authsdk.MessageResponse	"Deleted"
//	@Failure	403		{object}	authsdk.ErrorResponse	"Admin role required"
//	@Failure	404		{object}	authsdk.ErrorResponse	"Post not found for this account"
//	@Router		/v1/admin/users/{id}/posts/{postID} [delete].
func (h *AdminHandler) HandleDeletePost(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id", "User")
	if !ok {
		return
	}
	postID, ok := pathID(w, r, "postID", "Post")
	if !ok {
		return
	}
	err := h.AdminService.DeletePost(r.Context(), actorFrom(r), id, postID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, authsdk.MessageResponse{Success: true, Message: "Post deleted successfully"})
}

// HandleSetActive godoc
//
//	@Summary		Activate or deactivate an account
//	@Description	Deactivated accounts cannot log in or refresh. Admins cannot deactivate themselves.
//	@Tags			Admin
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id		path		string						true	"Account ID"
//	@Param			request	body		authsdk.SetActiveRequest	true	"New state"
//	@Success		200		{object}	authsdk.AccountResponse		"Updated account"
//	@Failure		400		{object}	authsdk.ErrorResponse		"Validation failed or self deactivation"
//	@Failure		403		{object}	authsdk.ErrorResponse		"Admin role required"
//	@Failure		404		{object}	authsdk.ErrorResponse		"Account not found"
//	@Router			/v1/admin/users/{id}/active [put].
func (h *AdminHandler) HandleSetActive(w http.ResponseWriter, r *http.Request) {
	var req authsdk.SetActiveRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	id, ok := pathID(w, r, "id", "User")
	if !ok {
		return
	}
	a, err := h.AdminService.SetActive(r.Context(), actorFrom(r), id, *req.Active)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	state := "deactivated"
	if a.IsActive {
		state = "activated"
	}
	httpx.WriteJSON(w, http.StatusOK, authsdk.AccountResponse{
		Success: true,
		Message: "User " + state,
		Data:    toAccount(a),
	})
}

// HandleSetRole godoc
//
//	@Summary		Change an account's role
//	@Description	Role must be "user" or "admin". Admins cannot change their own role.
//	@Tags			Admin
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id		path		string					true	"Account ID"
//	@Param			request	body		authsdk.SetRoleRequest	true	"New role"
//	@Success		200		{object}	authsdk.AccountResponse	"Updated account"
//	@Failure		400		{object}	authsdk.ErrorResponse	"Invalid role or self change"
//	@Failure		403		{object}	authsdk.ErrorResponse	"Admin role required"
//	@Failure		404		{object}	authsdk.ErrorResponse	"Account not found"
//	@Router			/v1/admin/users/{id}/role [put].
func (h *AdminHandler) HandleSetRole(w http.ResponseWriter, r *http.Request) {
	var req authsdk.SetRoleRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	id, ok := pathID(w, r, "id", "User")
	if !ok {
		return
	}
	a, err := h.AdminService.SetRole(r.Context(), actorFrom(r), id, domain.Role(req.Role))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, authsdk.AccountResponse{
		Success: true,
		Message: fmt.Sprintf("User role updated to %s", a.Role),
		Data:    toAccount(a),
	})
}
