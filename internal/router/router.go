// Package router defines how HTTP routes are registered for the API.
package router

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/bookwormhq/bookworm-api/internal/config"
	"github.com/bookwormhq/bookworm-api/internal/handler"
	"github.com/bookwormhq/bookworm-api/internal/middleware"
	"github.com/bookwormhq/bookworm-api/internal/repository"
)

// Register wires every route of the service onto the Echo instance.
//
// /api/auth/* is public but rate-limited; everything under /api/books runs
// behind the JWT middleware, which resolves the token to a stored user
// before any handler executes.  The shared feed additionally sits behind a
// short-TTL Redis response cache (a cached page is identical for every
// authenticated reader; the per-user route is never cached).
func Register(e *echo.Echo, cfg config.Config, users *repository.UserRepo, a *handler.AuthHandler, b *handler.BookHandler, rdb *redis.Client) {
	e.GET("/healthz", handler.Health)

	limiter := middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb)
	auth := e.Group("/api/auth", limiter)
	auth.POST("/register", a.Register)
	auth.POST("/login", a.Login)

	books := e.Group("/api/books")
	books.Use(middleware.JWTAuth(cfg.JWTSecret, users))
	books.POST("", b.Create)
	books.GET("", b.List, middleware.NewRedisCache(config.LoadCacheConfig(), rdb))
	books.GET("/user", b.ListMine)
	books.DELETE("/:id", b.Delete)
}
