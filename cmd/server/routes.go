package main

import (
	"strings"

	"github.com/gin-gonic/gin"
	"write-space.backend/internal/config"
	"write-space.backend/internal/interfaces/http/handlers"
	"write-space.backend/internal/interfaces/http/middleware"
	"write-space.backend/pkg/metrics"
)

const unroutedContentPrefix = "/api/posts/"

type routeDeps struct {
	postHandler   *handlers.PostHandler
	tagHandler    *handlers.TagHandler
	userHandler   *handlers.UserHandler
	apiKeyHandler *handlers.ApiKeyHandler
	apiGate       gin.HandlerFunc
	sessionAuth   gin.HandlerFunc
}

func registerAPIRoutes(r *gin.Engine, server config.ServerConfig, d routeDeps) {
	api := r.Group("/api")
	api.Use(
		middleware.ConcurrencyLimit(server.MaxInFlight, server.QueueTimeout),
		middleware.TimeoutMiddleware(server.RequestTimeout),
	)
	{
		// Public read API (API key)
		content := api.Group("")
		content.Use(d.apiGate)
		{
			content.GET("/posts", d.postHandler.ListPosts)
			content.GET("/posts/:username", d.postHandler.ListPostsByAuthor)
			content.GET("/posts/:username/:slug", d.postHandler.GetPost)
			content.GET("/tags", d.tagHandler.ListTags)
			content.GET("/users/:username", d.userHandler.GetUser)
		}

		// API key management (dashboard session)
		keys := api.Group("/keys")
		keys.Use(d.sessionAuth)
		{
			keys.POST("", d.apiKeyHandler.CreateApiKey)
			keys.GET("", d.apiKeyHandler.ListApiKeys)
			keys.POST("/:id/regenerate", d.apiKeyHandler.RegenerateApiKey)
			keys.PATCH("/:id", d.apiKeyHandler.UpdateApiKey)
			keys.DELETE("/:id", d.apiKeyHandler.DeleteApiKey)
		}
	}
}

func registerSystemRoutes(r *gin.Engine, h *handlers.SystemHandler, apiGate gin.HandlerFunc) {
	r.GET("/health", h.Health)
	r.GET("/metrics", gin.WrapH(metrics.Handler()))
	r.NoRoute(gateUnroutedContent(apiGate), h.NotFound)
}

// gateUnroutedContent authenticates and charges unknown paths below /api/posts/
// before they fall through to the 404, the same as the routed post endpoints.
func gateUnroutedContent(apiGate gin.HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		if strings.HasPrefix(c.Request.URL.Path, unroutedContentPrefix) {
			apiGate(c)
			return
		}
		c.Next()
	}
}

func applyCORSMiddleware(r *gin.Engine) {
	r.Use(middleware.CORSMiddleware())
}
