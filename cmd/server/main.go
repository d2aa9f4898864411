package main

import (
	"log"
	"net/http"

	_ "auratask/docs" // swagger docs

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"auratask/internal/auth"
	"auratask/internal/cache"
	"auratask/internal/config"
	"auratask/internal/db"
	"auratask/internal/handler"
	"auratask/internal/repository"
	"auratask/internal/router"
	"auratask/internal/service"
)

// @title Aura Task API
// @version 1.0
// @description Task management API with cookie and bearer token authentication.
// @host localhost:8080
// @BasePath /api
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the signed token.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	e := echo.New()
	e.Use(middleware.RequestID())

	gormDB, err := db.NewMySQL(cfg.MySQLDSN)
	if err != nil {
		log.Fatalf("database init: %v", err)
	}

	// Apply the ordered migration list
	if err := db.Migrate(gormDB); err != nil {
		log.Fatalf("migrate: %v", err)
	}

	cacheClient := cache.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)

	// Initialize repositories
	userRepo := repository.NewUserRepository(gormDB)
	sessionRepo := repository.NewSessionRepository(gormDB)
	taskRepo := repository.NewTaskRepository(gormDB)

	// Initialize auth components
	codec := auth.NewTokenCodec(cfg.AuthSecret)
	resolver := auth.NewResolver(codec, userRepo, sessionRepo, cacheClient)

	// Initialize services
	authService := service.NewAuthService(userRepo, sessionRepo, codec)
	taskService := service.NewTaskService(taskRepo, cacheClient)

	// Initialize handlers
	authHandler := handler.NewAuthHandler(authService)
	taskHandler := handler.NewTaskHandler(taskService)
	healthHandler := handler.NewHealthHandler(gormDB, cacheClient)

	// Register routes
	router.Register(e, cfg, resolver, authHandler, taskHandler, healthHandler)

	addr := ":" + cfg.ServerPort
	if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
		log.Fatalf("server start: %v", err)
	}
}
