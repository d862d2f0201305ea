package server

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"
)

const metricsPath = "/metrics"

// RegisterRoutes configures all API routes, middleware, and error handlers
func RegisterRoutes(e *echo.Echo, h *Handlers, cfg ServerConfig) {
	e.HTTPErrorHandler = NotFoundJSON()

	e.Use(SetJSONContentType)
	e.Use(SetNoCacheHeaders)

	// Optional API key authentication; metrics stay scrapeable without it.
	if cfg.APIKey != "" {
		e.Use(middleware.KeyAuthWithConfig(middleware.KeyAuthConfig{
			Skipper: func(c echo.Context) bool {
				return c.Path() == metricsPath
			},
			KeyLookup: "header:X-API-Key",
			Validator: func(key string, c echo.Context) (bool, error) {
				return key == cfg.APIKey, nil
			},
		}))
	}

	e.GET(metricsPath, echo.WrapHandler(promhttp.Handler()))

	v1 := e.Group("/v1")
	v1.GET("/health", h.Health)
	v1.GET("/quote", h.Quote)

	// Building re-reads the pool and may simulate, so it is rate limited per client.
	limit := cfg.SwapRateLimit
	if limit <= 0 {
		limit = 5
	}
	swapGroup := v1.Group("/swap")
	swapGroup.Use(middleware.RateLimiter(middleware.NewRateLimiterMemoryStoreWithConfig(middleware.RateLimiterMemoryStoreConfig{
		Rate:      rate.Limit(limit),
		Burst:     int(limit * 2),
		ExpiresIn: 2 * time.Minute,
	})))
	swapGroup.POST("/instructions", h.SwapInstructions)
	swapGroup.POST("/transaction", h.SwapTransaction)

	cfgGroup := v1.Group("/config")
	cfgGroup.GET("", h.GetConfig)
	cfgGroup.PUT("", h.UpdateConfig)
	cfgGroup.GET("/profiles", h.ListProfiles)
	cfgGroup.DELETE("/profiles/:profile", h.DeleteProfile)

	e.RouteNotFound("/*", func(c echo.Context) error {
		return c.JSON(http.StatusNotFound, ErrorResponse{Error: "not found", Code: http.StatusNotFound})
	})
}
