package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"marketmedia/internal/caching"
	"marketmedia/internal/models"
	"marketmedia/internal/repositories"

	"github.com/labstack/gommon/log"
)

// OwnershipService proves that requested ids chain together before any image
// is looked up. All failures wrap ErrResourceNotFound so callers cannot tell a
// missing entity from a foreign one.
type OwnershipService interface {
	ValidateProduct(ctx context.Context, productID int64) (models.Ownership, error)
	ValidateProductImage(ctx context.Context, productID, imageID int64) (models.Ownership, *models.ProductImage, error)
	ValidateStore(ctx context.Context, storeID int64) (models.Ownership, error)
}

type ownershipService struct {
	productRepo      repositories.ProductRepository
	productImageRepo repositories.ProductImageRepository
	storeRepo        repositories.StoreRepository
	cacheService     caching.CacheService
	cacheTTL         time.Duration
	logger           *log.Logger
}

func NewOwnershipService(productRepo repositories.ProductRepository, productImageRepo repositories.ProductImageRepository, storeRepo repositories.StoreRepository, cacheService caching.CacheService, cacheTTL time.Duration, logger *log.Logger) OwnershipService {
	return &ownershipService{
		productRepo:      productRepo,
		productImageRepo: productImageRepo,
		storeRepo:        storeRepo,
		cacheService:     cacheService,
		cacheTTL:         cacheTTL,
		logger:           logger,
	}
}

func (s *ownershipService) ValidateProduct(ctx context.Context, productID int64) (models.Ownership, error) {
	if productID <= 0 {
		return models.Ownership{}, ErrResourceNotFound
	}
	owner, err := s.productOwner(ctx, productID)
	if err != nil {
		return models.Ownership{}, err
	}
	return models.Ownership{
		Kind:      models.EntityProduct,
		StoreID:   owner.StoreID,
		ProductID: owner.ProductID,
		OwnerName: owner.StoreName,
	}, nil
}

func (s *ownershipService) ValidateProductImage(ctx context.Context, productID, imageID int64) (models.Ownership, *models.ProductImage, error) {
	ownership, err := s.ValidateProduct(ctx, productID)
	if err != nil {
		return models.Ownership{}, nil, err
	}
	if imageID <= 0 {
		return models.Ownership{}, nil, ErrResourceNotFound
	}

	image, err := s.productImageRepo.GetByID(ctx, imageID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return models.Ownership{}, nil, fmt.Errorf("product image %d: %w", imageID, ErrResourceNotFound)
		}
		return models.Ownership{}, nil, fmt.Errorf("failed to load product image: %w", err)
	}
	if image.ProductID != productID {
		s.logger.Warnj(log.JSON{"event": "ownership-mismatch", "product_id": productID, "image_id": imageID})
		return models.Ownership{}, nil, fmt.Errorf("image %d claimed for product %d: %w", imageID, productID, ErrOwnershipMismatch)
	}

	ownership.ImageID = image.ID
	return ownership, image, nil
}

func (s *ownershipService) ValidateStore(ctx context.Context, storeID int64) (models.Ownership, error) {
	if storeID <= 0 {
		return models.Ownership{}, ErrResourceNotFound
	}
	store, err := s.storeRepo.GetByID(ctx, storeID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return models.Ownership{}, fmt.Errorf("store %d: %w", storeID, ErrResourceNotFound)
		}
		return models.Ownership{}, fmt.Errorf("failed to load store: %w", err)
	}
	return models.Ownership{
		Kind:      models.EntityStore,
		StoreID:   store.ID,
		OwnerName: store.Name,
	}, nil
}

// productOwner reads the product -> store chain, preferring the cache.
func (s *ownershipService) productOwner(ctx context.Context, productID int64) (*models.ProductOwner, error) {
	cached, err := s.cacheService.GetProductOwner(ctx, productID)
	switch {
	case err != nil:
		s.logger.Warnf("ownership cache read failed for product %d: %v", productID, err)
	case cached != nil && cached.ProductID == productID && cached.StoreID > 0:
		return cached, nil
	case cached != nil:
		s.logger.Warnf("evicting invalid ownership cache entry for product %d", productID)
		if err := s.cacheService.DeleteProductOwner(ctx, productID); err != nil {
			s.logger.Warnf("ownership cache eviction failed for product %d: %v", productID, err)
		}
	}

	owner, err := s.productRepo.GetOwner(ctx, productID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("product %d: %w", productID, ErrResourceNotFound)
		}
		return nil, fmt.Errorf("failed to load product owner: %w", err)
	}

	if err := s.cacheService.SetProductOwner(ctx, owner, s.cacheTTL); err != nil {
		s.logger.Warnf("ownership cache write failed for product %d: %v", productID, err)
	}
	return owner, nil
}
