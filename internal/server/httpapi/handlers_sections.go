package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nvoloshin/folio/internal/server/services"
)

func (h *Handler) listSections(c *gin.Context) {
	includeInactive := c.Query("include_inactive") == "true"

	sections, err := h.content.ListSections(c.Request.Context(), includeInactive)
	if err != nil {
		h.abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"sections": sections})
}

func (h *Handler) createSection(c *gin.Context) {
	var in services.SectionInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, "invalid body")
		return
	}

	section, err := h.content.CreateSection(c.Request.Context(), in)
	if err != nil {
		h.abortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, section)
}

func (h *Handler) getSection(c *gin.Context) {
	section, err := h.content.GetSection(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, section)
}

func (h *Handler) updateSection(c *gin.Context) {
	var upd services.SectionUpdate
	if err := c.ShouldBindJSON(&upd); err != nil {
		badRequest(c, "invalid body")
		return
	}

	section, err := h.content.UpdateSection(c.Request.Context(), c.Param("id"), upd)
	if err != nil {
		h.abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, section)
}

func (h *Handler) deleteSection(c *gin.Context) {
	if err := h.content.DeleteSection(c.Request.Context(), c.Param("id")); err != nil {
		h.abortWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
