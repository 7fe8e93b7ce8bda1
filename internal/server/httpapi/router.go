// Package httpapi exposes the application services over HTTP: an
// authenticated admin API under /api/v1 and a public, read-only
// content endpoint for the frontend.
package httpapi

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/nvoloshin/folio/internal/logging"
	"github.com/nvoloshin/folio/internal/server/config"
	"github.com/nvoloshin/folio/internal/server/services"
)

type Handler struct {
	users   *services.UserService
	content *services.ContentService
	assets  *services.AssetService
	logger  logging.Logger
	maxBody int64
}

func NewHandler(users *services.UserService, content *services.ContentService, assets *services.AssetService, cfg *config.Config, logger logging.Logger) *Handler {
	return &Handler{
		users:   users,
		content: content,
		assets:  assets,
		logger:  logger.With("module", "httpapi"),
		maxBody: cfg.MaxUploadSize,
	}
}

// Router builds the gin engine with all routes registered.
func (h *Handler) Router(cfg *config.Config) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	corsCfg := cors.DefaultConfig()
	corsCfg.AllowOrigins = cfg.CORSAllowedOrigins
	corsCfg.AllowHeaders = append(corsCfg.AllowHeaders, "Authorization")
	r.Use(cors.New(corsCfg))

	r.GET("/healthz", h.healthz)

	v1 := r.Group("/api/v1")

	// Public read paths, no auth. Project listings default to
	// published rows only.
	v1.GET("/content", h.getAllContent)
	v1.GET("/content/:slug", h.getSectionContent)
	v1.GET("/projects", h.listProjects)
	v1.GET("/projects/by-section/:slug", h.listProjectsBySection)
	v1.GET("/projects/:id", h.getProject)

	v1.POST("/auth/login", h.login)
	v1.POST("/auth/refresh", h.refresh)

	admin := v1.Group("", h.requireAuth())
	admin.GET("/auth/me", h.me)

	admin.GET("/sections", h.listSections)
	admin.POST("/sections", h.createSection)
	admin.GET("/sections/:id", h.getSection)
	admin.PATCH("/sections/:id", h.updateSection)
	admin.DELETE("/sections/:id", h.deleteSection)

	admin.POST("/projects", h.createProject)
	admin.PATCH("/projects/:id", h.updateProject)
	admin.DELETE("/projects/:id", h.deleteProject)
	admin.POST("/projects/:id/publish", h.publishProject)
	admin.POST("/projects/:id/unpublish", h.unpublishProject)
	admin.POST("/projects/reorder", h.reorderProjects)

	admin.GET("/assets", h.listAssets)
	admin.POST("/assets", h.uploadAsset)
	admin.GET("/assets/:id", h.getAsset)
	admin.PATCH("/assets/:id", h.updateAsset)
	admin.DELETE("/assets/:id", h.deleteAsset)

	return r
}

func (h *Handler) healthz(c *gin.Context) {
	c.JSON(200, gin.H{"status": "ok"})
}
