package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/imrishuroy/go-tailor-orderflow/internal/auth"
)

// NewRouter builds the API engine: /health is open, everything else needs an
// admin bearer token.
func NewRouter(cfg HandlerConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	d := newDeps(cfg)
	api := r.Group("/", auth.RequireAuth(cfg.JWTSecret), auth.RequireRoles(auth.RoleAdmin))
	RegisterCustomersRoutes(api, d)
	RegisterOrdersRoutes(api, d)
	RegisterPaymentsRoutes(api, d)
	RegisterDashboardRoutes(api, d)
	return r
}

func respond(c *gin.Context, status int, data interface{}) {
	c.JSON(status, gin.H{"success": true, "data": data})
}

func fail(c *gin.Context, status int, code, message string) {
	c.JSON(status, gin.H{"success": false, "error": code, "message": message})
}
