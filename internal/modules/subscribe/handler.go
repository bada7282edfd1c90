package subscribe

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/portfolio-space/core/internal/pkg/pagination"
	"github.com/portfolio-space/core/internal/pkg/response"
)

type SubscribeDTO struct {
	Email string `json:"email" binding:"required,email"`
}

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	grp := rg.Group("/subscribe")
	grp.POST("", h.subscribe)
	grp.GET("/verify/:token", h.verify)
	grp.GET("/unsubscribe/:token", h.unsubscribe)
	grp.POST("/unsubscribe/:token", h.unsubscribe)

	authed := rg.Group("/subscribers", authMW)
	authed.GET("", h.list)
	authed.POST("", h.add)
	authed.PATCH("/:id/toggle", h.toggle)
	authed.DELETE("/:id", h.delete)
}

func (h *Handler) subscribe(c *gin.Context) {
	var dto SubscribeDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	sub, err := h.svc.Subscribe(dto.Email)
	if err != nil {
		if errors.Is(err, ErrAlreadySubscribed) {
			response.Conflict(c, err.Error())
			return
		}
		response.InternalError(c, err)
		return
	}
	response.Created(c, gin.H{"email": sub.Email, "active": sub.Active})
}

func (h *Handler) verify(c *gin.Context) {
	sub, err := h.svc.VerifyByToken(c.Param("token"))
	if err != nil {
		response.InternalError(c, err)
		return
	}
	if sub == nil {
		response.NotFound(c)
		return
	}
	response.OK(c, gin.H{"email": sub.Email, "verified_at": sub.VerifiedAt})
}

func (h *Handler) unsubscribe(c *gin.Context) {
	sub, err := h.svc.UnsubscribeByToken(c.Param("token"))
	if err != nil {
		response.InternalError(c, err)
		return
	}
	if sub == nil {
		response.NotFound(c)
		return
	}
	response.OK(c, gin.H{"email": sub.Email, "active": sub.Active})
}

func (h *Handler) list(c *gin.Context) {
	subs, pg, err := h.svc.List(pagination.FromContext(c))
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.Paged(c, subs, pg)
}

func (h *Handler) add(c *gin.Context) {
	var dto SubscribeDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	sub, err := h.svc.Add(dto.Email)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.Created(c, sub)
}

func (h *Handler) toggle(c *gin.Context) {
	sub, err := h.svc.Toggle(c.Param("id"))
	if err != nil {
		response.InternalError(c, err)
		return
	}
	if sub == nil {
		response.NotFound(c)
		return
	}
	response.OK(c, sub)
}

func (h *Handler) delete(c *gin.Context) {
	if err := h.svc.Delete(c.Param("id")); err != nil {
		response.InternalError(c, err)
		return
	}
	response.NoContent(c)
}
