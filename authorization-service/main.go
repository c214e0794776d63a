package main

import (
	"log"
	"net/http"

	"agencyops-backend/authorization-service/handlers"
	"agencyops-backend/shared/config"
	"agencyops-backend/shared/database"
	"agencyops-backend/shared/utils/cache"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "agencyops-backend/docs"
)

func main() {

	// Load configuration
	config.LoadConfig()

	// Initialize database
	if err := database.InitDatabase(); err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer database.CloseDatabase()

	// Initialize Redis Cache Manager
	if err := cache.InitCacheManager(); err != nil {
		log.Printf("⚠️  Warning: Redis cache not available: %v", err)
		log.Println("🔄 Service will continue without caching...")
	} else {
		cacheManager := cache.GetCacheManager()
		if cacheManager != nil {
			if err := cacheManager.TestConnection(); err != nil {
				log.Printf("⚠️  Warning: Redis connection test failed: %v", err)
			}
		}
	}

	router := gin.Default()

	// Decision Routes
	router.POST("/api/authz/check", handlers.CheckAccess)
	router.POST("/api/authz/batch-check", handlers.BatchCheckAccess)
	router.POST("/api/authz/filter", handlers.FilterRows)

	// Cache Management Routes
	router.GET("/api/authz/cache/stats", handlers.GetCacheStats)
	router.POST("/api/authz/cache/invalidate/org/:org_id", handlers.InvalidateOrgDecisions)
	router.POST("/api/authz/cache/invalidate/org/:org_id/user/:user_id", handlers.InvalidateUserDecisions)
	router.POST("/api/authz/cache/invalidate/all", handlers.InvalidateAllDecisions)

	// Test endpoint
	router.GET("/api/authz/test", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message":  "Authorization service working!",
			"service":  "authorization",
			"port":     "8002",
			"database": "connected",
		})
	})

	// Swagger documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	log.Println("🚀 Authorization Service starting on port 8002...")
	if err := router.Run(":8002"); err != nil {
		log.Fatalf("Failed to start authorization service: %v", err)
	}
}
