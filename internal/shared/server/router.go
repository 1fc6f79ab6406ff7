package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"vault-backend/internal/activity"
	"vault-backend/internal/documents"
	"vault-backend/internal/shared/config"
	"vault-backend/internal/shared/server/middleware"
	"vault-backend/internal/stats"
	"vault-backend/internal/users"
)

// RouterDeps carries everything the router mounts.
type RouterDeps struct {
	Config     config.Config
	Documents  *documents.Handler
	Activities *activity.Handler
	Users      *users.Handler
	Stats      *stats.Handler
	// UploadsDir, when set, is served at /uploads for local object storage.
	UploadsDir string
}

// NewRouter builds the gin engine with the full middleware chain and all
// API routes mounted under /api.
func NewRouter(deps RouterDeps) *gin.Engine {
	if deps.Config.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(middleware.RequestID())
	r.Use(middleware.Logging())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS(deps.Config.CORSAllowOrigin))
	r.Use(middleware.RateLimit(middleware.RateLimitConfig{
		Rules: map[string]middleware.RateLimitRule{
			"DEFAULT": {Rate: 20, Burst: 40},
			"UPLOAD":  {Rate: 1, Burst: 5},
		},
		GroupFor: func(c *gin.Context) string {
			if c.Request.Method == http.MethodPost && c.FullPath() == "/api/documents" {
				return "UPLOAD"
			}
			return ""
		},
	}))
	r.Use(middleware.Auth([]byte(deps.Config.JWTSecret)))

	r.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api")
	deps.Users.RegisterRoutes(api)
	deps.Documents.RegisterRoutes(api)
	deps.Activities.RegisterRoutes(api)
	deps.Stats.RegisterRoutes(api)

	if deps.UploadsDir != "" {
		r.Static("/uploads", deps.UploadsDir)
	}

	return r
}

// Addr formats a port for http.Server.
func Addr(port string) string {
	return ":" + port
}
