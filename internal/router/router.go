package router // package router defines how HTTP routes are registered for the API

import (
	"context"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/iliyamo/gig-board/internal/handler"
	"github.com/iliyamo/gig-board/internal/metrics"
	"github.com/iliyamo/gig-board/internal/middleware"
)

// RegisterRoutes registers the unauthenticated operational endpoints:
// liveness, readiness (store ping) and prometheus metrics.
func RegisterRoutes(e *echo.Echo, m *metrics.Metrics, ping func(ctx context.Context) error) {
	e.GET("/healthz", handler.Health)
	e.GET("/readyz", handler.Ready(ping))
	if m != nil {
		e.GET("/metrics", echo.WrapHandler(m.Handler()))
	}
}

// maxBody caps request bodies on every /v1 route.
const maxBody = "1M"

// RegisterGigs registers the gig API under /v1. The typed operation
// endpoint and the REST mirror share the body limit and the rate limiter;
// only the GET list routes go through the response cache.
func RegisterGigs(e *echo.Echo, h *handler.GigHandler, cache *middleware.ResponseCache, limiter echo.MiddlewareFunc) {
	g := e.Group("/v1", echomw.BodyLimit(maxBody), limiter)

	// Single typed endpoint: {"operation": "...", "variables": {...}}
	g.POST("/operations", h.Execute)

	g.POST("/gigs", h.CreateGig)
	g.GET("/gigs", h.GetAllGigs, cache.Middleware())
	g.GET("/gigs/location", h.GetGigsByLocation, cache.Middleware())
	g.GET("/gigs/category", h.GetGigsByCategory, cache.Middleware())
}
