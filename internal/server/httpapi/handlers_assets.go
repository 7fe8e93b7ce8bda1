package httpapi

import (
	"mime"
	"net/http"
	"path/filepath"

	"github.com/gin-gonic/gin"

	"github.com/nvoloshin/folio/internal/server/repositories/assets"
	"github.com/nvoloshin/folio/internal/server/services"
)

func (h *Handler) listAssets(c *gin.Context) {
	filter := assets.ListFilter{
		FileType: c.Query("file_type"),
		Offset:   intQuery(c, "offset", 0),
		Limit:    intQuery(c, "limit", 50),
	}
	if projectID := c.Query("project_id"); projectID != "" {
		filter.ProjectID = &projectID
	}

	list, total, err := h.assets.List(c.Request.Context(), filter)
	if err != nil {
		h.abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"assets": list, "total": total})
}

func (h *Handler) uploadAsset(c *gin.Context) {
	// Cap the whole multipart body before parsing starts.
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxBody)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		badRequest(c, "missing file")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		badRequest(c, "unreadable file")
		return
	}
	defer file.Close()

	mimeType := fileHeader.Header.Get("Content-Type")
	if mimeType == "" {
		mimeType = mime.TypeByExtension(filepath.Ext(fileHeader.Filename))
	}

	in := services.UploadInput{
		Filename: fileHeader.Filename,
		MimeType: mimeType,
		Size:     fileHeader.Size,
		Body:     file,
	}
	if projectID := c.PostForm("project_id"); projectID != "" {
		in.ProjectID = &projectID
	}
	if altText := c.PostForm("alt_text"); altText != "" {
		in.AltText = &altText
	}
	if caption := c.PostForm("caption"); caption != "" {
		in.Caption = &caption
	}

	asset, err := h.assets.Upload(c.Request.Context(), in)
	if err != nil {
		h.abortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, asset)
}

func (h *Handler) getAsset(c *gin.Context) {
	asset, err := h.assets.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, asset)
}

func (h *Handler) updateAsset(c *gin.Context) {
	var upd services.AssetUpdate
	if err := c.ShouldBindJSON(&upd); err != nil {
		badRequest(c, "invalid body")
		return
	}

	asset, err := h.assets.Update(c.Request.Context(), c.Param("id"), upd)
	if err != nil {
		h.abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, asset)
}

func (h *Handler) deleteAsset(c *gin.Context) {
	if err := h.assets.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.abortWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
