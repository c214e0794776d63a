package main

import (
	"log"
	"net/http"
	"strings"
	"time"

	"agencyops-backend/api-gateway/middleware"
	"agencyops-backend/api-gateway/routes"
	"agencyops-backend/shared/clients"
	"agencyops-backend/shared/config"

	_ "agencyops-backend/docs"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// @title AgencyOps API
// @version 1.0
// @description API documentation for the AgencyOps multi-tenant agency platform

// @contact.name API Support
// @contact.email support@agencyops.dev

// @license.name Apache 2.0
// @license.url http://www.apache.org/licenses/LICENSE-2.0.html

// @host localhost:8000
// @BasePath /api
// @schemes http https

// @tag.name users
// @tag.description User management operations

// @tag.name roles
// @tag.description Role management operations

// @tag.name assignments
// @tag.description Role assignment operations

// @tag.name organizations
// @tag.description Organization management operations

// @tag.name authorization
// @tag.description Authorization decision operations

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the JWT token.

func main() {
	// Load configuration
	config.LoadConfig()

	// Initialize authorization client with config-based URL
	clients.InitAuthzClient()

	// Initialize global rate limiter
	rateLimiter := middleware.NewRateLimiter(5 * time.Minute) // Cleanup every 5 minutes

	// Global rate limit configuration from environment variables
	globalRateConfig := middleware.NewRateLimitConfig()

	router := gin.Default()

	// Add CORS middleware
	router.Use(cors.Default())

	// Global rate limiter middleware
	router.Use(rateLimiter.GlobalRateLimitMiddleware(globalRateConfig))

	// Add unified response middleware (transforms all service responses)
	router.Use(middleware.UnifiedResponseMiddleware())

	// Health check endpoint
	router.GET("/health", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{"status": "API Gateway is running", "Port": "8000"})
	})

	// Test endpoint
	router.GET("/api/test", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "API Gateway working!",
			"service": "gateway",
		})
	})

	// Authorization decision routes. Check endpoints only need a verified
	// identity; the decision itself is the response.
	router.POST("/api/authz/check",
		middleware.RequireAuthentication(),
		routes.ProxyToService("authz"))
	router.POST("/api/authz/batch-check",
		middleware.RequireAuthentication(),
		routes.ProxyToService("authz"))
	router.POST("/api/authz/filter",
		middleware.RequireAuthentication(),
		routes.ProxyToService("authz"))

	// Cache operations require settings access. Stats only need read,
	// invalidation needs update; the service does not distinguish further.
	router.Any("/api/authz/cache/*path",
		middleware.RequireAnyResourceAccess([]clients.ResourceActionCheck{
			{Resource: "settings", Action: "read"},
			{Resource: "settings", Action: "update"},
		}),
		routes.ProxyToService("authz"))

	// User routes
	router.GET("/api/users",
		middleware.RequireResourceAccess("users", "read"),
		routes.ProxyToService("core"))
	router.POST("/api/users",
		middleware.RequireResourceAccess("users", "create"),
		routes.ProxyToService("core"))
	router.GET("/api/users/:id",
		middleware.RequireResourceAccess("users", "read"),
		routes.ProxyToService("core"))
	router.PUT("/api/users/:id",
		middleware.RequireResourceAccess("users", "update"),
		routes.ProxyToService("core"))
	router.DELETE("/api/users/:id",
		middleware.RequireResourceAccess("users", "delete"),
		routes.ProxyToService("core"))

	// Role assignment routes. Granting a role is an update on the user;
	// the core service enforces the level hierarchy on top.
	router.GET("/api/users/:id/roles",
		middleware.RequireResourceAccess("users", "read"),
		routes.ProxyToService("core"))
	router.POST("/api/users/:id/roles",
		middleware.RequireResourceAccess("users", "update"),
		routes.ProxyToService("core"))
	router.DELETE("/api/users/:id/roles/:role_id",
		middleware.RequireResourceAccess("users", "update"),
		routes.ProxyToService("core"))

	// Role routes
	router.GET("/api/roles",
		middleware.RequireResourceAccess("roles", "read"),
		routes.ProxyToService("core"))
	router.POST("/api/roles",
		middleware.RequireResourceAccess("roles", "create"),
		routes.ProxyToService("core"))
	router.GET("/api/roles/:id",
		middleware.RequireResourceAccess("roles", "read"),
		routes.ProxyToService("core"))
	router.PUT("/api/roles/:id",
		middleware.RequireResourceAccess("roles", "update"),
		routes.ProxyToService("core"))
	router.DELETE("/api/roles/:id",
		middleware.RequireResourceAccess("roles", "delete"),
		routes.ProxyToService("core"))

	// Organization routes
	router.GET("/api/organizations",
		middleware.RequireResourceAccess("organizations", "read"),
		routes.ProxyToService("core"))
	router.POST("/api/organizations",
		middleware.RequireResourceAccess("organizations", "create"),
		routes.ProxyToService("core"))
	router.GET("/api/organizations/:id",
		middleware.RequireResourceAccess("organizations", "read"),
		routes.ProxyToService("core"))
	router.PUT("/api/organizations/:id",
		middleware.RequireResourceAccess("organizations", "update"),
		routes.ProxyToService("core"))
	router.DELETE("/api/organizations/:id",
		middleware.RequireResourceAccess("organizations", "delete"),
		routes.ProxyToService("core"))

	// Swagger documentation UI, development only
	router.GET("/swagger/*any", func(c *gin.Context) {
		if gin.Mode() == gin.DebugMode {
			ginSwagger.WrapHandler(swaggerFiles.Handler)(c)
		} else {
			c.JSON(http.StatusNotFound, gin.H{
				"message": "Swagger documentation not available in production",
			})
		}
	})

	// Server Start
	port := strings.Split(config.GetConfig().APIGatewayURL, ":")[2]
	log.Printf("🚀 API Gateway is running on port %s", port)
	if err := router.Run(":" + port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
