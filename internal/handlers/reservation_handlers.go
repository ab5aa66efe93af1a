package handlers

import (
	"errors"
	"net/http"

	"marketmedia/internal/common"
	"marketmedia/internal/middleware"
	"marketmedia/internal/services"

	"github.com/labstack/echo/v4"
	"github.com/labstack/gommon/log"
)

// ReservationHandlers route a reserving user to the image that matches the
// reserved product's current promotion state.
type ReservationHandlers struct {
	reservationService services.ReservationImageService
	placeholderURL     string
	logger             *log.Logger
}

func NewReservationHandlers(reservationService services.ReservationImageService, placeholderURL string, logger *log.Logger) *ReservationHandlers {
	return &ReservationHandlers{
		reservationService: reservationService,
		placeholderURL:     placeholderURL,
		logger:             logger,
	}
}

// ReservationImage godoc
// @Summary      Image for one of the caller's reservations
// @Tags         reservations
// @Param        id   path  int  true  "Reservation ID"
// @Security     BearerAuth
// @Success      302  "Redirect to a promotion or product image, or the placeholder"
// @Failure      401  {object}  common.ErrorResponse
// @Router       /api/reservations/{id}/image [get]
func (h *ReservationHandlers) ReservationImage(c echo.Context) error {
	userID, ok := common.GetUserIDFromContext(c.Request().Context())
	if !ok {
		return common.SendUnauthorizedError(c)
	}
	reservationID, ok := common.ParseID(c.Param("id"))
	if !ok {
		return middleware.PlaceholderRedirect(c, h.placeholderURL)
	}

	target, err := h.reservationService.RedirectFor(c.Request().Context(), reservationID, userID)
	if err != nil {
		if !errors.Is(err, services.ErrResourceNotFound) {
			h.logger.Errorf("reservation image lookup failed for reservation %d: %v", reservationID, err)
		}
		return middleware.PlaceholderRedirect(c, h.placeholderURL)
	}
	// The target depends on the promotion window, so the redirect is not cached.
	c.Response().Header().Set("Cache-Control", "no-store")
	return c.Redirect(http.StatusFound, target)
}
