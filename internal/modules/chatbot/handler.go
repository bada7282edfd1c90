package chatbot

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/portfolio-space/core/internal/pkg/pagination"
	"github.com/portfolio-space/core/internal/pkg/response"
)

type MessageDTO struct {
	Message string `json:"message"`
}

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes mounts the chat endpoint behind the per-IP rate limiter.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, rateLimitMW, authMW gin.HandlerFunc) {
	grp := rg.Group("/chatbot")
	grp.POST("/message", rateLimitMW, h.message)

	authed := grp.Group("", authMW)
	authed.GET("/history", h.history)
}

func (h *Handler) message(c *gin.Context) {
	var dto MessageDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	message := strings.TrimSpace(dto.Message)
	if message == "" {
		response.BadRequest(c, "message must not be empty")
		return
	}
	if len([]rune(message)) > MaxMessageLen {
		response.BadRequest(c, "message is too long")
		return
	}

	reply, fellBack := h.svc.Chat(c.Request.Context(), c.ClientIP(), message)
	response.OK(c, gin.H{"reply": reply, "fallback": fellBack})
}

func (h *Handler) history(c *gin.Context) {
	rows, pg, err := h.svc.History(pagination.FromContext(c))
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.Paged(c, rows, pg)
}
