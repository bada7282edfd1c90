package comment

import (
	"errors"

	"github.com/gin-gonic/gin"
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
	rg.GET("/posts/:slug/comments", h.listApproved)
	rg.POST("/posts/:slug/comments", h.create)

	authed := rg.Group("/comments", authMW)
	authed.GET("", h.listAll)
	authed.PATCH("/:id/approve", h.approve)
	authed.DELETE("/:id", h.delete)
}

func (h *Handler) listApproved(c *gin.Context) {
	comments, err := h.svc.ListApproved(c.Param("slug"))
	if err != nil {
		if errors.Is(err, ErrPostNotFound) {
			response.NotFound(c)
			return
		}
		response.InternalError(c, err)
		return
	}
	response.OK(c, gin.H{"data": comments})
}

func (h *Handler) create(c *gin.Context) {
	var dto CreateCommentDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	comment, err := h.svc.Create(c.Param("slug"), &dto, c.ClientIP(), c.Request.UserAgent())
	if err != nil {
		if errors.Is(err, ErrPostNotFound) {
			response.NotFound(c)
			return
		}
		response.InternalError(c, err)
		return
	}
	response.Created(c, comment)
}

func (h *Handler) listAll(c *gin.Context) {
	comments, pg, err := h.svc.ListAll(pagination.FromContext(c), c.Query("pending") == "true")
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.Paged(c, comments, pg)
}

func (h *Handler) approve(c *gin.Context) {
	comment, err := h.svc.Approve(c.Param("id"))
	if err != nil {
		response.InternalError(c, err)
		return
	}
	if comment == nil {
		response.NotFound(c)
		return
	}
	response.OK(c, comment)
}

func (h *Handler) delete(c *gin.Context) {
	if err := h.svc.Delete(c.Param("id")); err != nil {
		response.InternalError(c, err)
		return
	}
	response.NoContent(c)
}
