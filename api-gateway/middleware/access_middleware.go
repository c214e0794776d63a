package middleware

import (
	"net/http"
	"strings"

	"agencyops-backend/shared/clients"
	auth "agencyops-backend/shared/utils/auth"

	"github.com/gin-gonic/gin"
)

// RequireResourceAccess checks the caller's permission for one resource kind
// and action before the request is proxied. The decision comes from the
// authorization service; the gateway only translates reasons into HTTP
// statuses. Cross-tenant denials surface as 404 so row existence never leaks.
func RequireResourceAccess(resource, action string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, err := extractClaims(c)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "Invalid or missing token",
				"code":  "UNAUTHORIZED",
			})
			c.Abort()
			return
		}

		allowed, reason, err := clients.CheckAccess(claims.UserID, resource, action)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Failed to check access",
				"code":  "ACCESS_CHECK_FAILED",
			})
			c.Abort()
			return
		}

		if !allowed {
			status := http.StatusForbidden
			if reason == "TENANT_MISMATCH" {
				status = http.StatusNotFound
			}
			c.JSON(status, gin.H{
				"error": "Access denied",
				"code":  reason,
				"details": gin.H{
					"required_resource": resource,
					"required_action":   action,
				},
			})
			c.Abort()
			return
		}

		forwardIdentity(c, claims)
		c.Set("resource", resource)
		c.Set("action", action)
		c.Set("access_checked", true)

		c.Next()
	}
}

// RequireAnyResourceAccess passes when the caller holds ANY of the listed
// permissions, resolved in one batch round trip.
func RequireAnyResourceAccess(checks []clients.ResourceActionCheck) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, err := extractClaims(c)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "Invalid or missing token",
				"code":  "UNAUTHORIZED",
			})
			c.Abort()
			return
		}

		results, err := clients.BatchCheckAccess(claims.UserID, checks)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Failed to check access",
				"code":  "ACCESS_CHECK_FAILED",
			})
			c.Abort()
			return
		}

		for _, allowed := range results {
			if allowed {
				forwardIdentity(c, claims)
				c.Set("access_checked", true)
				c.Next()
				return
			}
		}

		c.JSON(http.StatusForbidden, gin.H{
			"error": "Access denied",
			"code":  "PERMISSION_DENIED",
			"details": gin.H{
				"required_any_of": checks,
			},
		})
		c.Abort()
	}
}

// RequireAuthentication only verifies the token and forwards the identity.
// Used for routes the downstream service guards itself (hierarchy checks on
// management endpoints).
func RequireAuthentication() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, err := extractClaims(c)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "Invalid or missing token",
				"code":  "UNAUTHORIZED",
			})
			c.Abort()
			return
		}

		forwardIdentity(c, claims)
		c.Next()
	}
}

// extractClaims validates the bearer token and returns its typed claims.
func extractClaims(c *gin.Context) (*auth.Claims, error) {
	authHeader := c.GetHeader("Authorization")
	tokenString := strings.TrimPrefix(authHeader, "Bearer ")
	if tokenString == "" || tokenString == authHeader {
		return nil, auth.ErrInvalidToken
	}
	return auth.ValidateJWT(tokenString)
}

// forwardIdentity stamps the verified identity onto the proxied request.
// Downstream services trust these headers because only the gateway is
// reachable from outside.
func forwardIdentity(c *gin.Context, claims *auth.Claims) {
	c.Request.Header.Set("X-User-ID", claims.UserID)
	c.Request.Header.Set("X-Organization-ID", claims.OrganizationID)
	c.Set("user_id", claims.UserID)
}
