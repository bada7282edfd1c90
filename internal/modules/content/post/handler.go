package post

import (
	"github.com/gin-gonic/gin"
	"github.com/portfolio-space/core/internal/middleware"
	"github.com/portfolio-space/core/internal/pkg/markdown"
	"github.com/portfolio-space/core/internal/pkg/pagination"
	"github.com/portfolio-space/core/internal/pkg/response"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	posts := rg.Group("/posts")
	posts.GET("", h.list)
	posts.GET("/:slug", h.getBySlug)

	authed := posts.Group("", authMW)
	authed.POST("", h.create)
	authed.PUT("/:slug", h.update)
	authed.PATCH("/:slug", h.update)
	authed.DELETE("/:slug", h.delete)
}

func (h *Handler) list(c *gin.Context) {
	filter := ListQuery{
		Category: c.Query("category"),
		Tag:      c.Query("tag"),
	}
	// Drafts are only listable by the owner.
	if c.Query("drafts") == "true" && middleware.IsAuthenticated(c) {
		filter.Drafts = true
	}

	posts, pg, err := h.svc.List(pagination.FromContext(c), filter)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.Paged(c, posts, pg)
}

func (h *Handler) getBySlug(c *gin.Context) {
	post, err := h.svc.GetBySlug(c.Param("slug"))
	if err != nil {
		response.InternalError(c, err)
		return
	}
	if post == nil || (!post.IsPublished && !middleware.IsAuthenticated(c)) {
		response.NotFound(c)
		return
	}
	response.OK(c, gin.H{
		"post": post,
		"html": markdown.Render(post.Text),
	})
}

func (h *Handler) create(c *gin.Context) {
	var dto CreatePostDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	post, err := h.svc.Create(c.Request.Context(), &dto)
	if err != nil {
		if err.Error() == "slug already exists" {
			response.Conflict(c, err.Error())
			return
		}
		response.InternalError(c, err)
		return
	}
	response.Created(c, post)
}

func (h *Handler) update(c *gin.Context) {
	var dto UpdatePostDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	existing, err := h.svc.GetBySlug(c.Param("slug"))
	if err != nil {
		response.InternalError(c, err)
		return
	}
	if existing == nil {
		response.NotFound(c)
		return
	}

	post, err := h.svc.Update(c.Request.Context(), existing.ID, &dto)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	if post == nil {
		response.NotFound(c)
		return
	}
	response.OK(c, post)
}

func (h *Handler) delete(c *gin.Context) {
	existing, err := h.svc.GetBySlug(c.Param("slug"))
	if err != nil {
		response.InternalError(c, err)
		return
	}
	if existing == nil {
		response.NotFound(c)
		return
	}
	if err := h.svc.Delete(existing.ID); err != nil {
		response.InternalError(c, err)
		return
	}
	response.NoContent(c)
}
