// Package docs AgencyOps API documentation
package docs

// Swagger documentation info
// @title AgencyOps API
// @version 1.0
// @description Central API documentation - For all AgencyOps services

// @contact.name API Support
// @contact.email support@agencyops.dev

// @license.name Apache 2.0
// @license.url http://www.apache.org/licenses/LICENSE-2.0.html

// @host localhost:8000
// @BasePath /api
// @schemes http https

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the JWT token.

// Core Service Endpoints
// @tag.name users
// @tag.description User management
// @tag.name roles
// @tag.description Role management
// @tag.name assignments
// @tag.description Role assignment management
// @tag.name organizations
// @tag.description Organization management

// Authorization Service Endpoints
// @tag.name authorization
// @tag.description Authorization decisions and row filtering
// @tag.name cache
// @tag.description Decision cache management
