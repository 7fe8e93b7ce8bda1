package httpapi

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/nvoloshin/folio/internal/server/repositories/projects"
	"github.com/nvoloshin/folio/internal/server/services"
)

// listProjects is reachable without auth, so it defaults to published
// rows; the admin frontend opts out with published=false.
func (h *Handler) listProjects(c *gin.Context) {
	filter := projects.ListFilter{
		PublishedOnly: c.DefaultQuery("published", "true") != "false",
		FeaturedOnly:  c.Query("featured") == "true",
		Offset:        intQuery(c, "offset", 0),
		Limit:         intQuery(c, "limit", 50),
	}
	if sectionID := c.Query("section_id"); sectionID != "" {
		filter.SectionID = &sectionID
	}

	list, total, err := h.content.ListProjects(c.Request.Context(), filter)
	if err != nil {
		h.abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"projects": list, "total": total})
}

func (h *Handler) listProjectsBySection(c *gin.Context) {
	publishedOnly := c.DefaultQuery("published", "true") != "false"

	list, total, err := h.content.ListProjectsBySectionSlug(c.Request.Context(), c.Param("slug"), publishedOnly)
	if err != nil {
		h.abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"projects": list, "total": total})
}

func intQuery(c *gin.Context, key string, fallback int) int {
	if raw := c.Query(key); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n >= 0 {
			return n
		}
	}
	return fallback
}

func (h *Handler) createProject(c *gin.Context) {
	var in services.ProjectInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, "invalid body")
		return
	}

	project, err := h.content.CreateProject(c.Request.Context(), in)
	if err != nil {
		h.abortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, project)
}

func (h *Handler) getProject(c *gin.Context) {
	project, err := h.content.GetProject(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, project)
}

func (h *Handler) updateProject(c *gin.Context) {
	var upd services.ProjectUpdate
	if err := c.ShouldBindJSON(&upd); err != nil {
		badRequest(c, "invalid body")
		return
	}

	project, err := h.content.UpdateProject(c.Request.Context(), c.Param("id"), upd)
	if err != nil {
		h.abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, project)
}

func (h *Handler) deleteProject(c *gin.Context) {
	if err := h.content.DeleteProject(c.Request.Context(), c.Param("id")); err != nil {
		h.abortWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) publishProject(c *gin.Context) {
	project, err := h.content.PublishProject(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, project)
}

func (h *Handler) unpublishProject(c *gin.Context) {
	project, err := h.content.UnpublishProject(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, project)
}

type reorderReq struct {
	ProjectIDs []string `json:"project_ids" binding:"required"`
}

func (h *Handler) reorderProjects(c *gin.Context) {
	var req reorderReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid body")
		return
	}

	if err := h.content.ReorderProjects(c.Request.Context(), req.ProjectIDs); err != nil {
		h.abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"reordered": len(req.ProjectIDs)})
}
