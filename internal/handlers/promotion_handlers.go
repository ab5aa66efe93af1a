package handlers

import (
	"fmt"
	"time"

	"marketmedia/internal/common"
	"marketmedia/internal/middleware"
	"marketmedia/internal/models"
	"marketmedia/internal/services"

	"github.com/labstack/echo/v4"
)

// PromotionHandlers give every promotion a stable image URL per promotion type.
type PromotionHandlers struct {
	*MediaHandlers
	promotionService services.PromotionImageService
	cacheControl     string
}

func NewPromotionHandlers(media *MediaHandlers, promotionService services.PromotionImageService, maxAge time.Duration) *PromotionHandlers {
	return &PromotionHandlers{
		MediaHandlers:    media,
		promotionService: promotionService,
		cacheControl:     fmt.Sprintf("public, max-age=%d", int(maxAge.Seconds())),
	}
}

// PromotionImage godoc
// @Summary      Image of a regular promotion
// @Tags         promotions
// @Produce      jpeg,png,gif,webp
// @Param        id   path  int  true  "Promotion ID"
// @Success      200
// @Success      302  "Redirect to the placeholder image"
// @Router       /api/promotions/{id}/image [get]
func (h *PromotionHandlers) PromotionImage(c echo.Context) error {
	return h.servePromotion(c, models.PromotionTypeRegular)
}

// PromotionFlashImage godoc
// @Summary      Image of a flash promotion
// @Tags         promotions
// @Produce      jpeg,png,gif,webp
// @Param        id   path  int  true  "Promotion ID"
// @Success      200
// @Success      302  "Redirect to the placeholder image"
// @Router       /api/promotions/{id}/flash-image [get]
func (h *PromotionHandlers) PromotionFlashImage(c echo.Context) error {
	return h.servePromotion(c, models.PromotionTypeFlash)
}

func (h *PromotionHandlers) servePromotion(c echo.Context, promotionType string) error {
	promotionID, ok := common.ParseID(c.Param("id"))
	if !ok {
		return middleware.PlaceholderRedirect(c, h.placeholderURL)
	}
	ctx := c.Request().Context()
	owner, _, err := h.promotionService.ValidatePromotion(ctx, promotionID, promotionType)
	if err != nil {
		return h.serve(c, nil, err, "")
	}
	res, err := h.mediaService.ProductImage(ctx, owner, services.VariantFull)
	return h.serve(c, res, err, h.cacheControl)
}
