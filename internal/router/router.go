package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4" // Echo web framework used to handle routing

	"github.com/iliyamo/sweet-shop-api/internal/handler"    // handlers implementing the endpoints
	"github.com/iliyamo/sweet-shop-api/internal/middleware" // JWT authentication and role enforcement
	"github.com/iliyamo/sweet-shop-api/internal/repository" // user repository needed to resolve principals
)

// RegisterRoutes registers routes that do not require authentication on
// the provided Echo instance. Currently it exposes only a health check
// for load balancers and monitoring.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers the authentication endpoints. Unauthenticated
// operations live under /v1/auth and sit behind the rate limiter so
// credential stuffing and reset-token guessing are slowed down; /v1/me
// requires a valid token.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, users *repository.UserRepo, jwtSecret string, limiter echo.MiddlewareFunc) {
	g := e.Group("/v1/auth")
	g.Use(limiter)
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	g.POST("/forgot-password", a.ForgotPassword)
	g.POST("/reset-password", a.ResetPassword)

	auth := e.Group("/v1")
	auth.Use(middleware.JWTAuth(jwtSecret, users))
	auth.GET("/me", a.Me)
}

// RegisterSweets registers the catalog endpoints. Every route requires
// an authenticated principal; the mutating catalog operations are
// additionally gated on the admin role, which is re-read from the
// users table per request. The read endpoints sit behind the response
// cache since their payload is the same for every caller.
func RegisterSweets(e *echo.Echo, s *handler.SweetHandler, adm *handler.AdminHandler, users *repository.UserRepo, jwtSecret string, cache echo.MiddlewareFunc) {
	auth := e.Group("/v1", middleware.JWTAuth(jwtSecret, users))

	// Read endpoints available to every authenticated user.
	auth.GET("/sweets", s.List, cache)
	auth.GET("/sweets/search", s.Search, cache)
	auth.POST("/sweets/:id/purchase", s.Purchase)
	auth.GET("/purchase-history", s.History)

	// Admin-gated catalog management. RequireAdmin runs after JWTAuth,
	// so the role it checks is the stored one, not the token claim.
	admin := auth.Group("", middleware.RequireAdmin())
	admin.POST("/sweets", adm.Create)
	admin.PUT("/sweets/:id", adm.Update)
	admin.DELETE("/sweets/:id", adm.Delete)
	admin.POST("/sweets/:id/restock", adm.Restock)
	admin.GET("/admin/purchase-history", adm.History)
}
