package notify

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
	authed := rg.Group("/notifications", authMW)
	authed.GET("/logs", h.logs)
	authed.POST("/posts/:id/dispatch", h.dispatch)
}

// dispatch re-runs notification for a post. Subscribers already in the
// ledger are skipped, so this is safe to call repeatedly.
func (h *Handler) dispatch(c *gin.Context) {
	result, err := h.svc.DispatchPostNotification(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, ErrPostNotFound) {
			response.NotFound(c)
			return
		}
		response.InternalError(c, err)
		return
	}
	response.OK(c, result)
}

func (h *Handler) logs(c *gin.Context) {
	logs, pg, err := h.svc.Logs(pagination.FromContext(c), c.Query("post_id"))
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.Paged(c, logs, pg)
}
