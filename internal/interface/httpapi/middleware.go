package httpapi

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"txapp-service/internal/domain/entity"
	"txapp-service/pkg/logger"
)

const identityKey = "identity"

// IdentityResolver turns a bearer token into the caller identity
type IdentityResolver interface {
	Resolve(token string) (entity.Identity, error)
}

// RequestLogger logs every request with its status and duration
func RequestLogger(log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		fields := []interface{}{
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", status,
			"duration", time.Since(start).String(),
			"clientIP", c.ClientIP(),
		}
		if status >= http.StatusInternalServerError {
			log.Warn("Request served with error", fields...)
			return
		}
		log.Debug("Request served", fields...)
	}
}

// JWTMiddleware resolves the Authorization bearer token once per request
func JWTMiddleware(resolver IdentityResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing authorization"})
			return
		}
		parts := strings.Fields(header)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid authorization header"})
			return
		}
		identity, err := resolver.Resolve(parts[1])
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}
		c.Set(identityKey, identity)
		c.Next()
	}
}

// RequireCapability rejects callers whose role lacks action
func RequireCapability(action entity.Action) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !identityFrom(c).Can(action) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": entity.ErrForbidden.Error()})
			return
		}
		c.Next()
	}
}

func identityFrom(c *gin.Context) entity.Identity {
	if v, ok := c.Get(identityKey); ok {
		if identity, ok := v.(entity.Identity); ok {
			return identity
		}
	}
	return entity.Identity{}
}
