package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nvoloshin/folio/internal/server/models"
)

// getAllContent serves the aggregated public view as an object keyed
// by section slug: active sections in display order, published
// projects nested with their assets.
func (h *Handler) getAllContent(c *gin.Context) {
	views, err := h.content.AggregateAll(c.Request.Context())
	if err != nil {
		h.abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.ContentMap(views))
}

func (h *Handler) getSectionContent(c *gin.Context) {
	view, err := h.content.AggregateSection(c.Request.Context(), c.Param("slug"))
	if err != nil {
		h.abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, view)
}
