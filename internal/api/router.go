package api

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// NewRouter assembles the HTTP surface. metrics is served outside the rate
// limiter so scrapes are never answered with 429; a nil metrics handler
// leaves /metrics unregistered.
func NewRouter(h *Handler, metrics http.Handler, rps int) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: false, // Set to false when using wildcard origins
	}))

	if metrics != nil {
		router.GET("/metrics", gin.WrapH(metrics))
	}

	limited := router.Group("/")
	limited.Use(RateLimitMiddleware(rps))
	h.RegisterRoutes(limited)

	return router
}
