package handlers

import (
	"errors"
	"net/http"
	"path"

	"marketmedia/internal/common"
	"marketmedia/internal/middleware"
	"marketmedia/internal/services"

	"github.com/labstack/echo/v4"
	"github.com/labstack/gommon/log"
)

// MediaHandlers serves product and store images. Ownership has already been
// validated by middleware; handlers only read ids from the validated value.
type MediaHandlers struct {
	mediaService   services.MediaService
	placeholderURL string
	logger         *log.Logger
}

func NewMediaHandlers(mediaService services.MediaService, placeholderURL string, logger *log.Logger) *MediaHandlers {
	return &MediaHandlers{
		mediaService:   mediaService,
		placeholderURL: placeholderURL,
		logger:         logger,
	}
}

// ProductPrimaryImage godoc
// @Summary      Primary image of a product
// @Tags         products
// @Produce      jpeg,png,gif,webp
// @Param        id   path  int  true  "Product ID"
// @Success      200
// @Success      302  "Redirect to the placeholder image"
// @Router       /api/products/{id}/primary-image [get]
func (h *MediaHandlers) ProductPrimaryImage(c echo.Context) error {
	return h.serveProduct(c, services.VariantFull)
}

// ProductThumbnail godoc
// @Summary      Primary thumbnail of a product
// @Tags         products
// @Produce      jpeg,png,gif,webp
// @Param        id   path  int  true  "Product ID"
// @Success      200
// @Success      302  "Redirect to the placeholder image"
// @Router       /api/products/{id}/thumbnail [get]
func (h *MediaHandlers) ProductThumbnail(c echo.Context) error {
	return h.serveProduct(c, services.VariantThumbnail)
}

func (h *MediaHandlers) serveProduct(c echo.Context, variant services.Variant) error {
	owner, ok := common.GetOwnershipFromContext(c.Request().Context())
	if !ok {
		return middleware.PlaceholderRedirect(c, h.placeholderURL)
	}
	res, err := h.mediaService.ProductImage(c.Request().Context(), owner, variant)
	return h.serve(c, res, err, "")
}

// ProductSpecificImage godoc
// @Summary      One image of a product
// @Tags         products
// @Produce      jpeg,png,gif,webp
// @Param        id       path  int  true  "Product ID"
// @Param        imageId  path  int  true  "Image ID"
// @Success      200
// @Success      302  "Redirect to the placeholder image"
// @Router       /api/products/{id}/image/{imageId} [get]
func (h *MediaHandlers) ProductSpecificImage(c echo.Context) error {
	ctx := c.Request().Context()
	owner, ok := common.GetOwnershipFromContext(ctx)
	if !ok {
		return middleware.PlaceholderRedirect(c, h.placeholderURL)
	}
	image, ok := common.GetProductImageFromContext(ctx)
	if !ok {
		return middleware.PlaceholderRedirect(c, h.placeholderURL)
	}
	res, err := h.mediaService.SpecificProductImage(ctx, owner, image, services.VariantFull)
	return h.serve(c, res, err, "")
}

// ProductImages godoc
// @Summary      List the images of a product
// @Tags         products
// @Produce      json
// @Param        id   path  int  true  "Product ID"
// @Success      200  {array}  services.ImageView
// @Router       /api/products/{id}/images [get]
func (h *MediaHandlers) ProductImages(c echo.Context) error {
	productID, ok := common.ParseID(c.Param("id"))
	if !ok {
		return c.JSON(http.StatusOK, []services.ImageView{})
	}
	views, err := h.mediaService.ListProductImages(c.Request().Context(), productID)
	if err != nil {
		h.logger.Errorf("failed to list images for product %d: %v", productID, err)
		return c.JSON(http.StatusOK, []services.ImageView{})
	}
	return c.JSON(http.StatusOK, views)
}

// StorePrimaryImage godoc
// @Summary      Primary image of a store
// @Tags         stores
// @Produce      jpeg,png,gif,webp
// @Param        id   path  int  true  "Store ID"
// @Success      200
// @Success      302  "Redirect to the placeholder image"
// @Router       /api/stores/{id}/primary-image [get]
func (h *MediaHandlers) StorePrimaryImage(c echo.Context) error {
	return h.serveStore(c, services.VariantFull)
}

// StoreThumbnail godoc
// @Summary      Primary thumbnail of a store
// @Tags         stores
// @Produce      jpeg,png,gif,webp
// @Param        id   path  int  true  "Store ID"
// @Success      200
// @Success      302  "Redirect to the placeholder image"
// @Router       /api/stores/{id}/thumbnail [get]
func (h *MediaHandlers) StoreThumbnail(c echo.Context) error {
	return h.serveStore(c, services.VariantThumbnail)
}

func (h *MediaHandlers) serveStore(c echo.Context, variant services.Variant) error {
	owner, ok := common.GetOwnershipFromContext(c.Request().Context())
	if !ok {
		return middleware.PlaceholderRedirect(c, h.placeholderURL)
	}
	res, err := h.mediaService.StoreImage(c.Request().Context(), owner, variant)
	return h.serve(c, res, err, "")
}

// StoreImages godoc
// @Summary      List the images of a store
// @Tags         stores
// @Produce      json
// @Param        id   path  int  true  "Store ID"
// @Success      200  {array}  services.ImageView
// @Router       /api/stores/{id}/images [get]
func (h *MediaHandlers) StoreImages(c echo.Context) error {
	storeID, ok := common.ParseID(c.Param("id"))
	if !ok {
		return c.JSON(http.StatusOK, []services.ImageView{})
	}
	views, err := h.mediaService.ListStoreImages(c.Request().Context(), storeID)
	if err != nil {
		h.logger.Errorf("failed to list images for store %d: %v", storeID, err)
		return c.JSON(http.StatusOK, []services.ImageView{})
	}
	return c.JSON(http.StatusOK, views)
}

// serve streams a resolved image or falls back to the placeholder. Errors never
// reach the client as a status code.
func (h *MediaHandlers) serve(c echo.Context, res *services.Resolution, err error, cacheControl string) error {
	if err != nil {
		if !errors.Is(err, services.ErrResourceNotFound) {
			h.logger.Errorf("image resolution failed for %s: %v", c.Request().URL.Path, err)
		}
		return middleware.PlaceholderRedirect(c, h.placeholderURL)
	}
	if res.Tier == services.TierPlaceholder {
		return middleware.PlaceholderRedirect(c, h.placeholderURL)
	}

	body, info, err := h.mediaService.Open(c.Request().Context(), res)
	if err != nil {
		h.logger.Errorf("failed to open %s: %v", res.Path.Key, err)
		return middleware.PlaceholderRedirect(c, h.placeholderURL)
	}
	defer body.Close()

	header := c.Response().Header()
	if info.ContentType != "" {
		header.Set(echo.HeaderContentType, info.ContentType)
	}
	if cacheControl != "" {
		header.Set("Cache-Control", cacheControl)
	}
	header.Set("X-Image-Tier", res.Tier.String())
	http.ServeContent(c.Response(), c.Request(), path.Base(res.Path.Key), info.ModTime, body)
	return nil
}

