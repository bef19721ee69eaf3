package main // Entry point package

import (
	"log" // Logging library

	"github.com/joho/godotenv"    // Loads .env files into the environment
	"github.com/labstack/echo/v4" // Echo web framework

	"github.com/iliyamo/sweet-shop-api/internal/config"     // Internal config loader
	"github.com/iliyamo/sweet-shop-api/internal/database"   // MySQL pool constructor
	"github.com/iliyamo/sweet-shop-api/internal/handler"    // HTTP handlers
	"github.com/iliyamo/sweet-shop-api/internal/middleware" // Redis-backed middleware
	"github.com/iliyamo/sweet-shop-api/internal/repository" // Data access layer
	"github.com/iliyamo/sweet-shop-api/internal/router"     // Route registration
)

func main() {
	// Load .env when present; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := config.Load() // Load environment config

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	// Redis is optional: a nil client disables the cache and limiter.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Println("redis unavailable; cache and rate limiting disabled")
	}
	limiter := middleware.NewRateLimiter(config.LoadRateLimitConfig(), rdb)
	cache := middleware.NewResponseCache(config.LoadCacheConfig(), rdb)

	users := repository.NewUserRepo(db)
	sweets := repository.NewSweetRepo(db)
	purchases := repository.NewPurchaseRepo(db)

	authH := handler.NewAuthHandler(cfg, users)
	sweetH := handler.NewSweetHandler(sweets, purchases)
	adminH := handler.NewAdminHandler(sweets, purchases)

	e := echo.New()                      // Create Echo instance
	e.Validator = handler.NewValidator() // Request DTO validation hook
	router.RegisterRoutes(e)             // Health check
	router.RegisterAuth(e, authH, users, cfg.JWTSecret, limiter)
	router.RegisterSweets(e, sweetH, adminH, users, cfg.JWTSecret, cache)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)

	if err := e.Start(addr); err != nil { // Start HTTP server
		log.Fatal(err)
	}
}
