package router // router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/storelane/catalog-api/internal/config"
	"github.com/storelane/catalog-api/internal/handler"
	"github.com/storelane/catalog-api/internal/middleware"
)

// RegisterRoutes registers routes that do not require authentication on the
// provided Echo instance. Currently it exposes only a health check.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers the authentication and profile routes. Register,
// login, refresh and logout live under /api/auth and are rate limited per
// client; the profile endpoints require a valid access token.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, cfg config.Config, rdb *redis.Client) {
	g := e.Group("/api/auth")
	if rdb != nil {
		g.Use(middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb))
	}
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	g.POST("/refresh", a.Refresh)
	g.POST("/logout", a.Logout)

	me := e.Group("/api/auth", middleware.JWTAuth(cfg.JWTSecret))
	me.GET("/me", a.Me)
	me.PUT("/me", a.UpdateMe)
	me.PATCH("/me", a.UpdateMe)
	me.POST("/change-password", a.ChangePassword)
}

// RegisterCategories registers the category routes. Reads are public and
// served through the Redis response cache when one is configured; writes
// require a staff access token.
func RegisterCategories(e *echo.Echo, h *handler.CategoryHandler, cfg config.Config, rdb *redis.Client) {
	reads := e.Group("/api/categories")
	if rdb != nil {
		reads.Use(middleware.NewRedisCache(config.LoadCacheConfig(), rdb))
	}
	reads.GET("", h.List)
	reads.GET("/:slug", h.Get)

	writes := e.Group("/api/categories",
		middleware.JWTAuth(cfg.JWTSecret),
		middleware.RequireStaff(),
	)
	writes.POST("", h.Create)
	writes.PUT("/:slug", h.Update)
	writes.PATCH("/:slug", h.Update)
	writes.DELETE("/:slug", h.Delete)
}

// RegisterProducts registers the product routes. Reads accept an optional
// token so staff see inactive products while guests browse anonymously.
// Writes require authentication; ownership is enforced in the handlers.
func RegisterProducts(e *echo.Echo, h *handler.ProductHandler, cfg config.Config) {
	reads := e.Group("/api/products", middleware.OptionalJWTAuth(cfg.JWTSecret))
	reads.GET("", h.List)
	reads.GET("/by-category/:slug", h.ByCategory)
	reads.GET("/:slug", h.Get)

	writes := e.Group("/api/products", middleware.JWTAuth(cfg.JWTSecret))
	writes.POST("", h.Create)
	writes.PUT("/:slug", h.Update)
	writes.PATCH("/:slug", h.Update)
	writes.DELETE("/:slug", h.Delete)
}
