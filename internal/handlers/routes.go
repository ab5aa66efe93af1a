package handlers

import (
	"marketmedia/internal/middleware"

	"github.com/labstack/echo/v4"
)

// Routes groups the handlers and middleware that make up the public media API.
type Routes struct {
	Media        *MediaHandlers
	Promotions   *PromotionHandlers
	Reservations *ReservationHandlers
	Placeholder  *PlaceholderHandlers
	Health       *HealthHandlers
	Jobs         *JobHandlers
	Ownership    *middleware.OwnershipMiddleware
	Admin        *middleware.AdminMiddleware
	Auth         echo.MiddlewareFunc
}

func (r *Routes) Register(e *echo.Echo) {
	if r.Health != nil {
		e.GET("/health", r.Health.HealthCheck)
		e.GET("/health/ready", r.Health.ReadinessCheck)
		e.GET("/health/live", r.Health.LivenessCheck)
	}

	e.GET(PlaceholderURL, r.Placeholder.Placeholder)

	api := e.Group("/api")

	products := api.Group("/products")
	products.GET("/:id/primary-image", r.Media.ProductPrimaryImage, r.Ownership.Product())
	products.GET("/:id/thumbnail", r.Media.ProductThumbnail, r.Ownership.Product())
	products.GET("/:id/images", r.Media.ProductImages)
	products.GET("/:id/image/:imageId", r.Media.ProductSpecificImage, r.Ownership.ProductImage())

	stores := api.Group("/stores")
	stores.GET("/:id/primary-image", r.Media.StorePrimaryImage, r.Ownership.Store())
	stores.GET("/:id/thumbnail", r.Media.StoreThumbnail, r.Ownership.Store())
	stores.GET("/:id/images", r.Media.StoreImages)

	promotions := api.Group("/promotions")
	promotions.GET("/:id/image", r.Promotions.PromotionImage)
	promotions.GET("/:id/flash-image", r.Promotions.PromotionFlashImage)

	reservations := api.Group("/reservations", r.Auth)
	reservations.GET("/:id/image", r.Reservations.ReservationImage)

	if r.Jobs != nil && r.Admin != nil {
		admin := api.Group("/admin", r.Auth, r.Admin.RequireAdmin())
		admin.GET("/jobs", r.Jobs.JobStatus)
		admin.GET("/jobs/drift-audit", r.Jobs.LastDriftReport)
		admin.POST("/jobs/drift-audit", r.Jobs.RunDriftAudit)
	}
}
