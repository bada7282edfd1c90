package portfolio

import (
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
	rg.GET("/profile", h.getProfile)
	rg.GET("/projects", h.listProjects)
	rg.GET("/skills", h.listSkills)
	rg.GET("/education", h.listEducation)
	rg.POST("/contact", h.createContact)

	authed := rg.Group("", authMW)
	authed.PUT("/profile", h.upsertProfile)
	authed.POST("/projects", h.createProject)
	authed.PUT("/projects/:id", h.updateProject)
	authed.DELETE("/projects/:id", h.deleteProject)
	authed.POST("/skills", h.createSkill)
	authed.DELETE("/skills/:id", h.deleteSkill)
	authed.POST("/education", h.createEducation)
	authed.DELETE("/education/:id", h.deleteEducation)
	authed.GET("/contact", h.listContact)
	authed.PATCH("/contact/:id/read", h.markContactRead)
	authed.DELETE("/contact/:id", h.deleteContact)
}

func (h *Handler) getProfile(c *gin.Context) {
	profile, err := h.svc.Profile()
	if err != nil {
		response.InternalError(c, err)
		return
	}
	if profile == nil {
		response.NotFound(c)
		return
	}
	response.OK(c, profile)
}

func (h *Handler) upsertProfile(c *gin.Context) {
	var dto UpdateProfileDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	profile, err := h.svc.UpsertProfile(&dto)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.OK(c, profile)
}

func (h *Handler) listProjects(c *gin.Context) {
	projects, err := h.svc.ListProjects(c.Query("featured") == "true")
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.OK(c, gin.H{"data": projects})
}

func (h *Handler) createProject(c *gin.Context) {
	var dto ProjectDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	project, err := h.svc.CreateProject(&dto)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.Created(c, project)
}

func (h *Handler) updateProject(c *gin.Context) {
	var dto ProjectDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	project, err := h.svc.UpdateProject(c.Param("id"), &dto)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	if project == nil {
		response.NotFound(c)
		return
	}
	response.OK(c, project)
}

func (h *Handler) deleteProject(c *gin.Context) {
	if err := h.svc.DeleteProject(c.Param("id")); err != nil {
		response.InternalError(c, err)
		return
	}
	response.NoContent(c)
}

func (h *Handler) listSkills(c *gin.Context) {
	skills, err := h.svc.ListSkills()
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.OK(c, gin.H{"data": skills})
}

func (h *Handler) createSkill(c *gin.Context) {
	var dto SkillDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	skill, err := h.svc.CreateSkill(&dto)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.Created(c, skill)
}

func (h *Handler) deleteSkill(c *gin.Context) {
	if err := h.svc.DeleteSkill(c.Param("id")); err != nil {
		response.InternalError(c, err)
		return
	}
	response.NoContent(c)
}

func (h *Handler) listEducation(c *gin.Context) {
	entries, err := h.svc.ListEducation()
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.OK(c, gin.H{"data": entries})
}

func (h *Handler) createEducation(c *gin.Context) {
	var dto EducationDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	entry, err := h.svc.CreateEducation(&dto)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.Created(c, entry)
}

func (h *Handler) deleteEducation(c *gin.Context) {
	if err := h.svc.DeleteEducation(c.Param("id")); err != nil {
		response.InternalError(c, err)
		return
	}
	response.NoContent(c)
}

func (h *Handler) createContact(c *gin.Context) {
	var dto ContactDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	msg, err := h.svc.CreateContactMessage(&dto)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.Created(c, msg)
}

func (h *Handler) listContact(c *gin.Context) {
	msgs, pg, err := h.svc.ListContactMessages(pagination.FromContext(c), c.Query("unread") == "true")
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.Paged(c, msgs, pg)
}

func (h *Handler) markContactRead(c *gin.Context) {
	msg, err := h.svc.MarkContactRead(c.Param("id"))
	if err != nil {
		response.InternalError(c, err)
		return
	}
	if msg == nil {
		response.NotFound(c)
		return
	}
	response.OK(c, msg)
}

func (h *Handler) deleteContact(c *gin.Context) {
	if err := h.svc.DeleteContactMessage(c.Param("id")); err != nil {
		response.InternalError(c, err)
		return
	}
	response.NoContent(c)
}
