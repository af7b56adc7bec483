// Package api exposes deck browsing, enrollment and learning sessions over HTTP.
package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/example/cardlearn/internal/logger"
)

type RouterConfig struct {
	Log         *logger.Logger
	Auth        *Authenticator
	CORSOrigins []string

	HealthHandler *HealthHandler
	DeckHandler   *DeckHandler
	LearnHandler  *LearnHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestID())
	r.Use(RequestLogger(cfg.Log))
	r.Use(CORS(cfg.CORSOrigins))

	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}

	api := r.Group("/api")
	if cfg.Auth != nil {
		api.Use(RequireAuth(cfg.Auth))
	}
	{
		if cfg.DeckHandler != nil {
			api.GET("/decks", cfg.DeckHandler.List)
			api.POST("/decks/:id/enroll", cfg.DeckHandler.Enroll)
			api.GET("/decks/:id/stats", cfg.DeckHandler.Stats)
		}
		if cfg.LearnHandler != nil {
			api.GET("/learn/:deck_id", cfg.LearnHandler.Next)
			api.POST("/learn/:deck_id", cfg.LearnHandler.Submit)
		}
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, ErrorEnvelope{Error: APIError{Message: "route not found", Code: "not_found"}})
	})
	return r
}
