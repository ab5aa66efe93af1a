package services

import (
	"context"
	"errors"
	"fmt"
	"io"

	"marketmedia/internal/models"
	"marketmedia/internal/repositories"
)

// ImageView is one entry of an owner's public image list.
type ImageView struct {
	ID           int64  `json:"id"`
	URL          string `json:"url"`
	ThumbnailURL string `json:"thumbnail_url"`
	APIURL       string `json:"api_url,omitempty"`
	IsPrimary    bool   `json:"is_primary"`
	DisplayOrder int    `json:"display_order"`
}

// MediaService resolves images for owners that have already been validated.
type MediaService interface {
	ProductImage(ctx context.Context, owner models.Ownership, variant Variant) (*Resolution, error)
	StoreImage(ctx context.Context, owner models.Ownership, variant Variant) (*Resolution, error)
	SpecificProductImage(ctx context.Context, owner models.Ownership, image *models.ProductImage, variant Variant) (*Resolution, error)
	ListProductImages(ctx context.Context, productID int64) ([]ImageView, error)
	ListStoreImages(ctx context.Context, storeID int64) ([]ImageView, error)
	Open(ctx context.Context, res *Resolution) (io.ReadSeekCloser, *ObjectInfo, error)
}

type mediaService struct {
	ownershipService OwnershipService
	resolver         ImageResolver
	products         ImageSource
	stores           ImageSource
	productImageRepo repositories.ProductImageRepository
	storeImageRepo   repositories.StoreImageRepository
	objectStore      ObjectStore
}

func NewMediaService(ownershipService OwnershipService, resolver ImageResolver, productImageRepo repositories.ProductImageRepository, storeImageRepo repositories.StoreImageRepository, objectStore ObjectStore) MediaService {
	return &mediaService{
		ownershipService: ownershipService,
		resolver:         resolver,
		products:         NewProductImageSource(productImageRepo),
		stores:           NewStoreImageSource(storeImageRepo),
		productImageRepo: productImageRepo,
		storeImageRepo:   storeImageRepo,
		objectStore:      objectStore,
	}
}

func (s *mediaService) ProductImage(ctx context.Context, owner models.Ownership, variant Variant) (*Resolution, error) {
	if owner.Kind != models.EntityProduct {
		return nil, fmt.Errorf("%w: expected product ownership, got %s", ErrResourceNotFound, owner.Kind)
	}
	return s.resolver.Resolve(ctx, s.products, owner, variant)
}

func (s *mediaService) StoreImage(ctx context.Context, owner models.Ownership, variant Variant) (*Resolution, error) {
	if owner.Kind != models.EntityStore {
		return nil, fmt.Errorf("%w: expected store ownership, got %s", ErrResourceNotFound, owner.Kind)
	}
	return s.resolver.Resolve(ctx, s.stores, owner, variant)
}

func (s *mediaService) SpecificProductImage(ctx context.Context, owner models.Ownership, image *models.ProductImage, variant Variant) (*Resolution, error) {
	if owner.Kind != models.EntityProduct || image == nil || image.ProductID != owner.ProductID || image.ID != owner.ImageID {
		return nil, ErrOwnershipMismatch
	}
	return s.resolver.ResolveRecord(ctx, s.products, owner, image.Record(), variant)
}

// ListProductImages returns canonical URLs for every image of a product. An
// unknown product yields an empty list.
func (s *mediaService) ListProductImages(ctx context.Context, productID int64) ([]ImageView, error) {
	owner, err := s.ownershipService.ValidateProduct(ctx, productID)
	if err != nil {
		if errors.Is(err, ErrResourceNotFound) {
			return []ImageView{}, nil
		}
		return nil, err
	}
	images, err := s.productImageRepo.ListByProductID(ctx, owner.ProductID)
	if err != nil {
		return nil, fmt.Errorf("failed to list product images: %w", err)
	}

	views := make([]ImageView, 0, len(images))
	for _, image := range images {
		view, ok := s.view(s.products, owner, image.Record())
		if !ok {
			continue
		}
		view.APIURL = fmt.Sprintf("/api/products/%d/image/%d", owner.ProductID, image.ID)
		views = append(views, view)
	}
	return views, nil
}

func (s *mediaService) ListStoreImages(ctx context.Context, storeID int64) ([]ImageView, error) {
	owner, err := s.ownershipService.ValidateStore(ctx, storeID)
	if err != nil {
		if errors.Is(err, ErrResourceNotFound) {
			return []ImageView{}, nil
		}
		return nil, err
	}
	images, err := s.storeImageRepo.ListByStoreID(ctx, owner.StoreID)
	if err != nil {
		return nil, fmt.Errorf("failed to list store images: %w", err)
	}

	views := make([]ImageView, 0, len(images))
	for _, image := range images {
		if view, ok := s.view(s.stores, owner, image.Record()); ok {
			views = append(views, view)
		}
	}
	return views, nil
}

// view canonicalizes a row without touching storage. Rows without a usable
// filename are left out.
func (s *mediaService) view(src ImageSource, owner models.Ownership, record models.ImageRecord) (ImageView, bool) {
	full, _, err := CanonicalizeURL(candidateURL(record, VariantFull), src.CanonicalTarget(owner, VariantFull))
	if err != nil {
		return ImageView{}, false
	}
	thumb, _, err := CanonicalizeURL(candidateURL(record, VariantThumbnail), src.CanonicalTarget(owner, VariantThumbnail))
	if err != nil {
		thumb = full
	}
	return ImageView{
		ID:           record.ID,
		URL:          full,
		ThumbnailURL: thumb,
		IsPrimary:    record.IsPrimary,
		DisplayOrder: record.DisplayOrder,
	}, true
}

func (s *mediaService) Open(ctx context.Context, res *Resolution) (io.ReadSeekCloser, *ObjectInfo, error) {
	if res == nil || res.Path == nil {
		return nil, nil, ErrImageNotFound
	}
	return s.objectStore.Open(ctx, res.Path.Key)
}
