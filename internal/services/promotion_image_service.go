package services

import (
	"context"
	"errors"
	"fmt"

	"marketmedia/internal/models"
	"marketmedia/internal/repositories"
)

// PromotionImageService maps a promotion URL onto its product's image. The
// promotion itself stores no image data.
type PromotionImageService interface {
	ValidatePromotion(ctx context.Context, promotionID int64, promotionType string) (models.Ownership, *models.Promotion, error)
}

type promotionImageService struct {
	promotionRepo    repositories.PromotionRepository
	ownershipService OwnershipService
}

func NewPromotionImageService(promotionRepo repositories.PromotionRepository, ownershipService OwnershipService) PromotionImageService {
	return &promotionImageService{
		promotionRepo:    promotionRepo,
		ownershipService: ownershipService,
	}
}

// ValidatePromotion loads the promotion and validates its product. A promotion
// of another type than the route serves is reported as not found.
func (s *promotionImageService) ValidatePromotion(ctx context.Context, promotionID int64, promotionType string) (models.Ownership, *models.Promotion, error) {
	if promotionID <= 0 {
		return models.Ownership{}, nil, ErrResourceNotFound
	}
	promotion, err := s.promotionRepo.GetByID(ctx, promotionID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return models.Ownership{}, nil, fmt.Errorf("promotion %d: %w", promotionID, ErrResourceNotFound)
		}
		return models.Ownership{}, nil, fmt.Errorf("failed to load promotion: %w", err)
	}
	if promotion.Type != promotionType {
		return models.Ownership{}, nil, fmt.Errorf("promotion %d is %s, not %s: %w", promotionID, promotion.Type, promotionType, ErrResourceNotFound)
	}

	owner, err := s.ownershipService.ValidateProduct(ctx, promotion.ProductID)
	if err != nil {
		return models.Ownership{}, nil, err
	}
	return owner, promotion, nil
}

// PromotionImagePath is the stable public URL of a promotion's image.
func PromotionImagePath(promotion *models.Promotion) string {
	if promotion.IsFlash() {
		return fmt.Sprintf("/api/promotions/%d/flash-image", promotion.ID)
	}
	return fmt.Sprintf("/api/promotions/%d/image", promotion.ID)
}

// ProductImagePath is the public URL of a product's primary image.
func ProductImagePath(productID int64) string {
	return fmt.Sprintf("/api/products/%d/primary-image", productID)
}
