package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"

	"github.com/HSouheill/menuqr_backend/config"
	"github.com/HSouheill/menuqr_backend/controllers"
	"github.com/HSouheill/menuqr_backend/middleware"
	"github.com/HSouheill/menuqr_backend/repositories"
	"github.com/HSouheill/menuqr_backend/routes"
	"github.com/HSouheill/menuqr_backend/services"
)

// CustomValidator is a custom validator for Echo
type CustomValidator struct {
	validator *validator.Validate
}

// Validate validates the request body
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}

func main() {
	// Load .env file
	err := godotenv.Load()
	if err != nil {
		log.Println("Warning: .env file not found")
	}

	// Connect to Redis (optional; menu reads fall back to the store)
	redisClient := config.ConnectRedis()

	// Connect to database
	client := config.ConnectDB()
	db := client.Database(config.DBName())

	// Create a new Echo instance
	e := echo.New()

	// Initialize custom validator
	customValidator := &CustomValidator{validator: validator.New()}
	e.Validator = customValidator

	// Initialize rate limiter
	rateLimiter := middleware.NewRateLimiter()

	// Middleware
	e.Use(echoMiddleware.Logger())
	e.Use(echoMiddleware.Recover())
	e.Use(middleware.GlobalCORS())
	e.Use(echoMiddleware.Secure())
	e.Use(rateLimiter.RateLimit())
	e.Use(middleware.SecurityHeadersWithConfig(middleware.SecurityConfig{
		AllowedDomains: []string{"*"},
		AllowInlineJS:  false,
		AllowEval:      false,
	}))

	e.Match([]string{"GET", "HEAD"}, "/", func(c echo.Context) error {
		return c.JSON(200, map[string]string{
			"status":  "OK",
			"message": "MenuQR Backend is running",
			"version": "1.0",
		})
	})

	e.Match([]string{"GET", "HEAD"}, "/health", func(c echo.Context) error {
		return c.JSON(200, map[string]string{
			"status":   "healthy",
			"database": "connected",
		})
	})

	// Initialize repositories
	restaurantRepo := repositories.NewRestaurantRepository(db)
	brandRepo := repositories.NewBrandRepository(db)
	adRepo := repositories.NewAdRepository(db)

	// Initialize services
	rotationPeriod := config.RotationPeriod()
	rotationService := services.NewRotationService(adRepo, rotationPeriod)
	menuService := services.NewMenuService(restaurantRepo, redisClient)
	renderService := services.NewRenderService(config.GeneratedFilesDir(), config.BaseURL())

	// Initialize controllers
	restaurantController := controllers.NewRestaurantController(restaurantRepo, menuService)
	dishController := controllers.NewDishController(menuService)
	menuController := controllers.NewMenuController(menuService, rotationService, renderService)
	brandController := controllers.NewBrandController(brandRepo, adRepo, rotationService)
	adsController := controllers.NewAdsController(adRepo, rotationService)

	// Register routes
	routes.RegisterRestaurantRoutes(e, restaurantController, dishController, menuController)
	routes.RegisterMenuRoutes(e, menuController)
	routes.RegisterBrandRoutes(e, brandController)
	routes.RegisterAdRoutes(e, adsController)

	// Best-effort TTL sweep for expired ads; failures are logged, never fatal
	go func() {
		ticker := time.NewTicker(rotationPeriod)
		defer ticker.Stop()
		for range ticker.C {
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			deleted, err := rotationService.ExpireAds(ctx)
			cancel()
			if err != nil {
				log.Printf("TTL cleanup failed: %v", err)
				continue
			}
			if deleted > 0 {
				log.Printf("TTL cleanup removed %d expired ads", deleted)
			}
		}
	}()

	// Start server
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	e.Logger.Fatal(e.Start(":" + port))
}
