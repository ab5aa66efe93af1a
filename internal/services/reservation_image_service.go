package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"marketmedia/internal/repositories"

	"github.com/labstack/gommon/log"
)

// ReservationImageService picks the image URL a reserving user should see.
type ReservationImageService interface {
	RedirectFor(ctx context.Context, reservationID, userID int64) (string, error)
}

type reservationImageService struct {
	reservationRepo repositories.ReservationRepository
	promotionRepo   repositories.PromotionRepository
	now             func() time.Time
	logger          *log.Logger
}

func NewReservationImageService(reservationRepo repositories.ReservationRepository, promotionRepo repositories.PromotionRepository, now func() time.Time, logger *log.Logger) ReservationImageService {
	if now == nil {
		now = time.Now
	}
	return &reservationImageService{
		reservationRepo: reservationRepo,
		promotionRepo:   promotionRepo,
		now:             now,
		logger:          logger,
	}
}

// RedirectFor returns the promotion image URL when the reserved product has an
// active promotion, the product image URL otherwise. Reservations of other
// users are reported exactly like missing ones.
func (s *reservationImageService) RedirectFor(ctx context.Context, reservationID, userID int64) (string, error) {
	if reservationID <= 0 || userID <= 0 {
		return "", ErrResourceNotFound
	}
	reservation, err := s.reservationRepo.GetForUser(ctx, reservationID, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return "", fmt.Errorf("reservation %d: %w", reservationID, ErrResourceNotFound)
		}
		return "", fmt.Errorf("failed to load reservation: %w", err)
	}

	promotion, err := s.promotionRepo.GetActiveForProduct(ctx, reservation.ProductID, s.now())
	if err != nil {
		if !errors.Is(err, repositories.ErrNotFound) {
			return "", fmt.Errorf("failed to load active promotion: %w", err)
		}
		promotion = nil
	}

	if promotion != nil {
		s.logger.Debugf("reservation %d routed through %s promotion %d", reservation.ID, promotion.Type, promotion.ID)
		return PromotionImagePath(promotion), nil
	}
	return ProductImagePath(reservation.ProductID), nil
}
