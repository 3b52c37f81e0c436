package http

import (
	"net/http"

	"github.com/aussiebroadwan/folio/internal/folio/service"
	"github.com/aussiebroadwan/folio/pkg/authsdk"
	"github.com/aussiebroadwan/folio/pkg/httpx"
)

// ContentHandler serves the caller's projects and blog posts.
type ContentHandler struct {
	PortfolioService *service.PortfolioService
}

// HandleListProjects godoc
//
//	@Summary	List my projects
//	@Tags		Projects
//	@Produce	json
//	@Security	BearerAuth
//	@Success	200	{object}	authsdk.ProjectListResponse	"Projects ordered by priority"
//	@Failure	401	{object}	authsdk.ErrorResponse		"Missing or invalid access token"
//	@Router		/v1/me/projects [get].
func (h *ContentHandler) HandleListProjects(w http.ResponseWriter, r *http.Request) {
	projects, err := h.PortfolioService.ListProjects(r.Context(), actorFrom(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, authsdk.ProjectListResponse{Success: true, Data: toProjects(projects)})
}

// HandleCreateProject godoc
//
//	@Summary	Create a project
//	@Tags		Projects
//	@Accept		json
//	@Produce	json
//	@Security	BearerAuth
//	@Param		request	body		authsdk.ProjectRequest	true	"Project"
//	@Success	201		{object}	authsdk.ProjectResponse	"Created project"
//	@Failure	400		{object}	authsdk.ErrorResponse	"Validation failed"
//	@Failure	401		{object}	authsdk.ErrorResponse	"Missing or invalid access token"
//	@Router		/v1/me/projects [post].
func (h *ContentHandler) HandleCreateProject(w http.ResponseWriter, r *http.Request) {
	var req authsdk.ProjectRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	p, err := h.PortfolioService.CreateProject(r.Context(), actorFrom(r), fromProjectRequest(req))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, authsdk.ProjectResponse{
		Success: true,
		Message: "Project created successfully",
		Data:    toProject(p),
	})
}

// HandleUpdateProject godoc
//
//	@Summary	Replace a project
//	@Tags		Projects
//	@Accept		json
//	@Produce	json
//	@Security	BearerAuth
//	@Param		id		path		string					true	"Project ID"
//	@Param		request	body		authsdk.ProjectRequest	true	"Project"
//	@Success	200		{object}	authsdk.ProjectResponse	"Updated project"
//	@Failure	400		{object}	authsdk.ErrorResponse	"Validation failed"
//	@Failure	403		{object}	authsdk.ErrorResponse	"Not the owner"
//	@Failure	404		{object}	authsdk.ErrorResponse	"Project not found"
//	@Router		/v1/me/projects/{id} [put].
func (h *ContentHandler) HandleUpdateProject(w http.ResponseWriter, r *http.Request) {
	var req authsdk.ProjectRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	id, ok := pathID(w, r, "id", "Project")
	if !ok {
		return
	}
	p, err := h.PortfolioService.UpdateProject(r.Context(), actorFrom(r), id, fromProjectRequest(req))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, authsdk.ProjectResponse{
		Success: true,
		Message: "Project updated successfully",
		Data:    toProject(p),
	})
}

// HandleDeleteProject godoc
//
//	@Summary	Delete a project
//	@Tags		Projects
//	@Produce	json
//	@Security	BearerAuth
//	@Param		id	path		string					true	"Project ID"
//	@Success	200	{object}	authsdk.MessageResponse	"Deleted"
//	@Failure	403	{object}	authsdk.ErrorResponse	"Not the owner"
//	@Failure	404	{object}	authsdk.ErrorResponse	"Project not found"
//	@Router		/v1/me/projects/{id} [delete].
func (h *ContentHandler) HandleDeleteProject(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id", "Project")
	if !ok {
		return
	}
	if err := h.PortfolioService.DeleteProject(r.Context(), actorFrom(r), id); err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, authsdk.MessageResponse{Success: true, Message: "Project deleted successfully"})
}

// HandleListPosts godoc
//
//	@Summary	List my blog posts
//	@Tags		Posts
//	@Produce	json
//	@Security	BearerAuth
//	@Success	200	{object}	authsdk.PostListResponse	"Posts, newest first"
//	@Failure	401	{object}	authsdk.ErrorResponse		"Missing or invalid access token"
//	@Router		/v1/me/posts [get].
func (h *ContentHandler) HandleListPosts(w http.ResponseWriter, r *http.Request) {
	posts, err := h.PortfolioService.ListPosts(r.Context(), actorFrom(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, authsdk.PostListResponse{Success: true, Data: toPosts(posts)})
}

// HandleCreatePost godoc
//
//	@Summary		Create a blog post
//	@Description	An empty slug is derived from the title. Publishing sets publishedAt once.
//	@Tags			Posts
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			request	body		authsdk.PostRequest		true	"Post"
//	@Success		201		{object}	authsdk.PostResponse	"Created post"
//	@Failure		400		{object}	authsdk.ErrorResponse	"Validation failed"
//	@Failure		409		{object}	authsdk.ErrorResponse	"Slug already used"
//	@Router			/v1/me/posts [post].
func (h *ContentHandler) HandleCreatePost(w http.ResponseWriter, r *http.Request) {
	var req authsdk.PostRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	p, err := h.PortfolioService.CreatePost(r.Context(), actorFrom(r), fromPostRequest(req))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, authsdk.PostResponse{
		Success: true,
		Message: "Blog post created successfully",
		Data:    toPost(p),
	})
}

// HandleUpdatePost godoc
//
//	@Summary	Replace a blog post
//	@Tags		Posts
//	@Accept		json
//	@Produce	json
//	@Security	BearerAuth
//	@Param		id		path		string					true	"Post ID"
//	@Param		request	body		authsdk.PostRequest		true	"Post"
//	@Success	200		{object}	authsdk.PostResponse	"Updated post"
//	@Failure	400		{object}	authsdk.ErrorResponse	"Validation failed"
//	@Failure	403		{object}	authsdk.ErrorResponse	"Not the owner"
//	@Failure	404		{object}	authsdk.ErrorResponse	"Post not found"
//	@Failure	409		{object}	authsdk.ErrorResponse	"Slug already used"
//	@Router		/v1/me/posts/{id} [put].
func (h *ContentHandler) HandleUpdatePost(w http.ResponseWriter, r *http.Request) {
	var req authsdk.PostRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	id, ok := pathID(w, r, "id", "Post")
	if !ok {
		return
	}
	p, err := h.PortfolioService.UpdatePost(r.Context(), actorFrom(r), id, fromPostRequest(req))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, authsdk.PostResponse{
		Success: true,
		Message: "Blog post updated successfully",
		Data:    toPost(p),
	})
}

// HandleDeletePost godoc
//
//	@Summary	Delete a blog post
//	@Tags		Posts
//	@Produce	json
//	@Security	BearerAuth
//	@Param		id	path		string					true	"Post ID"
//	@Success	200	{object}	authsdk.MessageResponse	"Deleted"
//	@Failure	403	{object}	authsdk.ErrorResponse	"Not the owner"
//	@Failure	404	{object}	authsdk.ErrorResponse	"Post not found"
//	@Router		/v1/me/posts/{id} [delete].
func (h *ContentHandler) HandleDeletePost(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id", "Post")
	if !ok {
		return
	}
	if err := h.PortfolioService.DeletePost(r.Context(), actorFrom(r), id); err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, authsdk.MessageResponse{Success: true, Message: "Blog post deleted successfully"})
}
