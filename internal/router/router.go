package router

import (
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	echoSwagger "github.com/swaggo/echo-swagger"

	"auratask/internal/auth"
	"auratask/internal/config"
	"auratask/internal/handler"
)

// Register wires routes and middleware.
func Register(
	e *echo.Echo,
	cfg *config.Config,
	resolver *auth.Resolver,
	authHandler *handler.AuthHandler,
	taskHandler *handler.TaskHandler,
	healthHandler *handler.HealthHandler,
) {
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     cfg.CORSOrigins(),
		AllowCredentials: true,
		AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAuthorization},
		ExposeHeaders:    []string{"Set-Cookie", echo.HeaderAuthorization},
	}))

	// Add validator
	e.Validator = &CustomValidator{validator: validator.New()}

	e.GET("/health", healthHandler.Check)
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	api := e.Group("/api")

	// Public auth routes
	api.POST("/auth/sign-up/email", authHandler.SignUp)
	api.POST("/auth/sign-in/email", authHandler.SignIn)
	api.GET("/auth/get-session", authHandler.GetSession)

	// Task routes require a resolved identity
	tasks := api.Group("/tasks", resolver.Middleware())
	tasks.GET("/", taskHandler.List)
	tasks.GET("/stats", taskHandler.Stats)
	tasks.GET("/stats/summary", taskHandler.StatsSummary)
	tasks.POST("/", taskHandler.Create)
	tasks.GET("/:id", taskHandler.Get)
	tasks.PUT("/:id", taskHandler.Update)
	tasks.DELETE("/:id", taskHandler.Delete)
	tasks.PATCH("/:id/complete", taskHandler.ToggleComplete)
}

// CustomValidator wraps validator for Echo.
type CustomValidator struct {
	validator *validator.Validate
}

// Validate implements echo.Validator interface.
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}
