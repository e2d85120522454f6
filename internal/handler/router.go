package handler

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/xxxsen/docreader/internal/middleware"
	"github.com/xxxsen/docreader/internal/pkg/response"
)

type RouterDeps struct {
	Reader *ReadHandler
	// RateLimitWindow throttles the ingestion endpoints only; health stays
	// reachable regardless. Zero disables throttling.
	RateLimitWindow time.Duration
}

func RegisterRoutes(api *gin.RouterGroup, deps RouterDeps) {
	api.GET("/health", Health)

	readGroup := api.Group("")
	if deps.RateLimitWindow > 0 {
		readGroup.Use(middleware.RateLimit(deps.RateLimitWindow))
	}
	readGroup.POST("/read/file", deps.Reader.ReadFile)
	readGroup.POST("/read/url", deps.Reader.ReadURL)
}

func Health(c *gin.Context) {
	response.Success(c, map[string]string{"status": "ok"})
}
