package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"github.com/volt-campus/VoltRentalAPI/internal/security"
	"github.com/volt-campus/VoltRentalAPI/internal/users"
)

// Context keys set by the auth middlewares.
const (
	ContextUserUID   = "userUID"
	ContextUserEmail = "userEmail"
	ContextAdminName = "adminName"
)

func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if header == "" {
		return ""
	}
	return strings.TrimPrefix(header, "Bearer ")
}

// UserAuthMiddleware verifies the identity provider token and lazily
// provisions the user record with a zero wallet on first sight.
func UserAuthMiddleware(secret string, svc *users.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing authorization token"})
			return
		}

		claims, err := security.ParseIdentityToken(secret, token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
			return
		}

		if err := svc.EnsureUser(c.Request.Context(), claims.UID, claims.Email); err != nil {
			log.WithError(err).WithField("uid", claims.UID).Error("failed to provision user")
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}

		c.Set(ContextUserUID, claims.UID)
		c.Set(ContextUserEmail, claims.Email)
		c.Next()
	}
}

// AdminAuthMiddleware verifies tokens minted by the admin login endpoint.
func AdminAuthMiddleware(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing authorization token"})
			return
		}

		claims, err := security.ParseAdminToken(secret, token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
			return
		}

		c.Set(ContextAdminName, claims.Username)
		c.Next()
	}
}
