package httpapi

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/nvoloshin/folio/internal/server/models"
)

const ctxKeyUser = "current_user"

// requireAuth resolves the bearer access token to a user and stores it
// on the request context for downstream handlers.
func (h *Handler) requireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractBearer(c)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		user, err := h.users.CurrentUser(c.Request.Context(), token)
		if err != nil {
			h.abortWithError(c, err)
			return
		}

		c.Set(ctxKeyUser, user)
		c.Next()
	}
}

func extractBearer(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return header[len("Bearer "):]
	}
	return ""
}

func currentUser(c *gin.Context) *models.User {
	if v, ok := c.Get(ctxKeyUser); ok {
		if u, ok := v.(*models.User); ok {
			return u
		}
	}
	return nil
}
