package middleware

import (
	"errors"
	"net/http"

	"marketmedia/internal/common"
	"marketmedia/internal/services"

	"github.com/labstack/echo/v4"
	"github.com/labstack/gommon/log"
)

// OwnershipMiddleware validates path ids before any image handler runs. The
// validated owner is attached to the request context; on any failure the
// client is redirected to the placeholder so valid and invalid ids look alike.
type OwnershipMiddleware struct {
	ownershipService services.OwnershipService
	placeholderURL   string
	logger           *log.Logger
}

func NewOwnershipMiddleware(ownershipService services.OwnershipService, placeholderURL string, logger *log.Logger) *OwnershipMiddleware {
	return &OwnershipMiddleware{
		ownershipService: ownershipService,
		placeholderURL:   placeholderURL,
		logger:           logger,
	}
}

// Product validates the :id path param as a product.
func (m *OwnershipMiddleware) Product() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			productID, ok := common.ParseID(c.Param("id"))
			if !ok {
				return m.reject(c, services.ErrResourceNotFound)
			}
			owner, err := m.ownershipService.ValidateProduct(c.Request().Context(), productID)
			if err != nil {
				return m.reject(c, err)
			}
			c.SetRequest(c.Request().WithContext(common.WithOwnership(c.Request().Context(), owner)))
			return next(c)
		}
	}
}

// ProductImage validates :id as a product and :imageId as one of its images.
func (m *OwnershipMiddleware) ProductImage() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			productID, ok := common.ParseID(c.Param("id"))
			if !ok {
				return m.reject(c, services.ErrResourceNotFound)
			}
			imageID, ok := common.ParseID(c.Param("imageId"))
			if !ok {
				return m.reject(c, services.ErrResourceNotFound)
			}
			owner, image, err := m.ownershipService.ValidateProductImage(c.Request().Context(), productID, imageID)
			if err != nil {
				return m.reject(c, err)
			}
			ctx := common.WithOwnership(c.Request().Context(), owner)
			ctx = common.WithProductImage(ctx, image)
			c.SetRequest(c.Request().WithContext(ctx))
			return next(c)
		}
	}
}

// Store validates the :id path param as a store.
func (m *OwnershipMiddleware) Store() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			storeID, ok := common.ParseID(c.Param("id"))
			if !ok {
				return m.reject(c, services.ErrResourceNotFound)
			}
			owner, err := m.ownershipService.ValidateStore(c.Request().Context(), storeID)
			if err != nil {
				return m.reject(c, err)
			}
			c.SetRequest(c.Request().WithContext(common.WithOwnership(c.Request().Context(), owner)))
			return next(c)
		}
	}
}

func (m *OwnershipMiddleware) reject(c echo.Context, err error) error {
	if !errors.Is(err, services.ErrResourceNotFound) {
		m.logger.Errorf("ownership validation failed for %s: %v", c.Request().URL.Path, err)
	}
	return PlaceholderRedirect(c, m.placeholderURL)
}

// PlaceholderRedirect sends the client to the shared placeholder image. The
// redirect itself is not cached so a later upload shows up immediately.
func PlaceholderRedirect(c echo.Context, placeholderURL string) error {
	c.Response().Header().Set("Cache-Control", "no-store")
	return c.Redirect(http.StatusFound, placeholderURL)
}
