package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"siteforge/internal/models"
	"siteforge/internal/services"
)

// Context keys set by the middleware chain.
const (
	RequestIDKey = "request_id"
	UserIDKey    = "user_id"
	TenantIDKey  = "tenant_id"
	UserRoleKey  = "user_role"
)

// RequestID middleware generates or extracts correlation IDs for request tracing
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = uuid.New().String()
		}

		c.Set(RequestIDKey, requestID)
		c.Header("X-Request-ID", requestID)

		c.Next()
	}
}

// StructuredLogger logs every request with structured fields.
func StructuredLogger(log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		requestID, _ := c.Get(RequestIDKey)
		log.WithFields(logrus.Fields{
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
			"status":     c.Writer.Status(),
			"duration":   time.Since(start).String(),
			"ip":         c.ClientIP(),
			"request_id": requestID,
		}).Info("request completed")
	}
}

// JWTAuth validates the bearer token and stores its claims on the context.
func JWTAuth(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"message": "Authorization token required",
			})
			return
		}

		claims, err := services.VerifyToken(secret, strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"message": "Invalid or expired token",
			})
			return
		}

		c.Set(UserIDKey, claims.UserID)
		c.Set(TenantIDKey, claims.TenantID)
		c.Set(UserRoleKey, claims.Role)

		c.Next()
	}
}

// RequireTenantAccess allows a request through only when the caller's tenant
// matches the tenant addressed by the :id path parameter, or the caller is a
// platform admin. Both identifiers are compared in canonical string form; a
// mismatch is always a hard 403, never a silently narrowed scope.
func RequireTenantAccess() gin.HandlerFunc {
	return func(c *gin.Context) {
		if GetUserRole(c) == models.RoleAdmin {
			c.Next()
			return
		}

		pathTenant := canonicalTenantID(c.Param("id"))
		callerTenant := canonicalTenantID(GetTenantID(c))

		if pathTenant == "" || callerTenant == "" || pathTenant != callerTenant {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"success": false,
				"message": "Access denied for this tenant",
			})
			return
		}

		c.Next()
	}
}

// canonicalTenantID normalizes a tenant identifier to the lowercase string
// form used in comparisons.
func canonicalTenantID(id string) string {
	return strings.ToLower(strings.TrimSpace(id))
}

// GetRequestID extracts the request id from gin context.
func GetRequestID(c *gin.Context) string {
	if id, exists := c.Get(RequestIDKey); exists {
		return id.(string)
	}
	return ""
}

// GetUserID extracts the authenticated user id from gin context.
func GetUserID(c *gin.Context) string {
	if id, exists := c.Get(UserIDKey); exists {
		return id.(string)
	}
	return ""
}

// GetTenantID extracts the caller's tenant id from gin context.
func GetTenantID(c *gin.Context) string {
	if id, exists := c.Get(TenantIDKey); exists {
		return id.(string)
	}
	return ""
}

// GetUserRole extracts the caller's role from gin context.
func GetUserRole(c *gin.Context) string {
	if role, exists := c.Get(UserRoleKey); exists {
		return role.(string)
	}
	return ""
}
