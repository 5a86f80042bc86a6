package server

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"docvault-backend/internal/documents"
	"docvault-backend/internal/files"
	"docvault-backend/internal/shared/config"
	"docvault-backend/internal/shared/server/middleware"
	"docvault-backend/internal/shared/server/respond"
)

// RouterDeps carries the handlers the router wires up. SignedFiles is nil
// when the object store is S3 (presigned URLs dereference against AWS).
type RouterDeps struct {
	Config           config.Config
	DocumentsHandler *documents.Handler
	SignedFiles      *files.Handler
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.Metrics(),
		cors.New(cors.Config{
			AllowOrigins:  deps.Config.CORSAllowOrigin,
			AllowMethods:  []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:  []string{"Origin", "Content-Type", "X-Request-Id"},
			ExposeHeaders: []string{"Content-Disposition", "X-Request-Id"},
		}),
	)

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api/v1")
	api.GET("/health", func(c *gin.Context) {
		respond.JSON(c, http.StatusOK, gin.H{"ok": true})
	})
	deps.DocumentsHandler.RegisterRoutes(api)

	if deps.SignedFiles != nil {
		deps.SignedFiles.RegisterRoutes(r)
	}

	return r
}

// Addr normalizes the listen address.
func Addr(port string) string {
	if port == "" {
		return ":8080"
	}
	if port[0] == ':' {
		return port
	}
	return ":" + port
}
