package middleware

import (
	"net/http"

	"sygil/config"

	"github.com/gin-gonic/gin"
)

// AdminRequired checks the authenticated email against the static allow-list
// from ADMIN_EMAILS. Must run after AuthRequired.
func AdminRequired(cfg *config.AdminConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		email := GetEmail(c)
		if email == "" || !cfg.IsAdmin(email) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "admin access required"})
			return
		}
		c.Next()
	}
}
