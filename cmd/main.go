package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/MicahParks/keyfunc/v2"
	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "marketmedia/docs"
	"marketmedia/internal/bootstrap"
	"marketmedia/internal/config"
	"marketmedia/internal/handlers"
	"marketmedia/internal/jobs/background"
	"marketmedia/internal/middleware"
	"marketmedia/internal/repositories"
	"marketmedia/internal/services"
	"marketmedia/pkg/database"
)

const version = "1.0.0"

// @title Marketplace Media API
// @version 1.0
// @description Entity scoped image resolution for products, stores, promotions and reservations.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger := bootstrap.NewLogger("marketmedia", cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := database.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.ClosePool(pool)

	objectStore, err := bootstrap.NewObjectStore(ctx, cfg.Storage, logger)
	if err != nil {
		log.Fatalf("Failed to initialize object store: %v", err)
	}
	cacheSvc := bootstrap.NewCache(cfg.Redis, logger)

	// JWT verification: JWKS when configured, shared secret otherwise
	jwtConfig := middleware.JWTConfig{Secret: cfg.Auth.JWTSecret}
	if cfg.Auth.JWKSURL != "" {
		jwks, err := keyfunc.Get(cfg.Auth.JWKSURL, keyfunc.Options{
			RefreshInterval: time.Hour,
			RefreshErrorHandler: func(err error) {
				logger.Warnf("jwks refresh failed: %v", err)
			},
		})
		if err != nil {
			log.Fatalf("Failed to load JWKS from %s: %v", cfg.Auth.JWKSURL, err)
		}
		defer jwks.EndBackground()
		jwtConfig.JWKS = jwks
	}

	// Create repositories
	productRepo := repositories.NewProductRepo(pool)
	productImageRepo := repositories.NewProductImageRepo(pool)
	storeRepo := repositories.NewStoreRepo(pool)
	storeImageRepo := repositories.NewStoreImageRepo(pool)
	promotionRepo := repositories.NewPromotionRepo(pool)
	reservationRepo := repositories.NewReservationRepo(pool)

	// Create services
	pathGuard := services.NewPathGuard(objectStore, logger)
	resolver := services.NewImageResolver(pathGuard, logger)
	ownershipSvc := services.NewOwnershipService(productRepo, productImageRepo, storeRepo, cacheSvc, cfg.Redis.TTL, logger)
	mediaSvc := services.NewMediaService(ownershipSvc, resolver, productImageRepo, storeImageRepo, objectStore)
	promotionSvc := services.NewPromotionImageService(promotionRepo, ownershipSvc)
	reservationSvc := services.NewReservationImageService(reservationRepo, promotionRepo, nil, logger)
	driftAuditSvc := services.NewDriftAuditService(productImageRepo, storeImageRepo, pathGuard, logger)

	scheduler, err := background.NewJobScheduler(driftAuditSvc, cfg.Media.DriftAuditInterval, logger)
	if err != nil {
		log.Fatalf("Failed to create job scheduler: %v", err)
	}

	// Create handlers
	placeholderHandlers, err := handlers.NewPlaceholderHandlers(cfg.Media.PlaceholderPath)
	if err != nil {
		log.Fatalf("Failed to load placeholder image: %v", err)
	}
	mediaHandlers := handlers.NewMediaHandlers(mediaSvc, handlers.PlaceholderURL, logger)
	routes := handlers.Routes{
		Media:        mediaHandlers,
		Promotions:   handlers.NewPromotionHandlers(mediaHandlers, promotionSvc, cfg.Media.PromotionMaxAge),
		Reservations: handlers.NewReservationHandlers(reservationSvc, handlers.PlaceholderURL, logger),
		Placeholder:  placeholderHandlers,
		Health:       handlers.NewHealthHandlers(pool, cacheSvc, objectStore, version),
		Jobs:         handlers.NewJobHandlers(scheduler),
		Ownership:    middleware.NewOwnershipMiddleware(ownershipSvc, handlers.PlaceholderURL, logger),
		Admin:        middleware.NewAdminMiddleware(cfg.Auth.AdminUserIDs),
		Auth:         middleware.JWTMiddleware(jwtConfig),
	}

	scheduler.Start()
	defer func() {
		if err := scheduler.Stop(); err != nil {
			logger.Errorf("scheduler shutdown: %v", err)
		}
	}()

	e := echo.New()
	e.HideBanner = true
	e.Logger = logger
	e.Use(echoMiddleware.Logger())
	e.Use(echoMiddleware.Recover())
	e.Use(echoMiddleware.RemoveTrailingSlash())

	routes.Register(e)
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	go func() {
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("server stopped: %v", err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("server shutdown: %v", err)
	}
}
