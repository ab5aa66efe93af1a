package services

import (
	"context"

	"marketmedia/internal/common"
	"marketmedia/internal/models"
	"marketmedia/internal/repositories"
)

// ImageSource is what the resolver needs to know about one kind of image
// owner. Implementations exist for products and stores.
type ImageSource interface {
	Kind() models.EntityKind
	LookupPrimary(ctx context.Context, owner models.Ownership) ([]models.ImageRecord, error)
	LookupAny(ctx context.Context, owner models.Ownership) ([]models.ImageRecord, error)
	CanonicalTarget(owner models.Ownership, variant Variant) PathTarget
	DefaultFilePath(owner models.Ownership, variant Variant) string
}

type productImageSource struct {
	repo repositories.ProductImageRepository
}

func NewProductImageSource(repo repositories.ProductImageRepository) ImageSource {
	return &productImageSource{repo: repo}
}

func (s *productImageSource) Kind() models.EntityKind { return models.EntityProduct }

func (s *productImageSource) LookupPrimary(ctx context.Context, owner models.Ownership) ([]models.ImageRecord, error) {
	return s.lookup(ctx, owner, true)
}

func (s *productImageSource) LookupAny(ctx context.Context, owner models.Ownership) ([]models.ImageRecord, error) {
	return s.lookup(ctx, owner, false)
}

func (s *productImageSource) lookup(ctx context.Context, owner models.Ownership, primaryOnly bool) ([]models.ImageRecord, error) {
	images, err := s.repo.ListForResolution(ctx, owner.ProductID, primaryOnly)
	if err != nil {
		return nil, err
	}
	records := make([]models.ImageRecord, 0, len(images))
	for _, image := range images {
		records = append(records, image.Record())
	}
	return records, nil
}

func (s *productImageSource) CanonicalTarget(owner models.Ownership, variant Variant) PathTarget {
	return PathTarget{StoreID: owner.StoreID, ProductID: owner.ProductID, Variant: variant}
}

func (s *productImageSource) DefaultFilePath(owner models.Ownership, variant Variant) string {
	return FormatCanonicalPath(s.CanonicalTarget(owner, variant).PathFor(DefaultFilename))
}

type storeImageSource struct {
	repo repositories.StoreImageRepository
}

func NewStoreImageSource(repo repositories.StoreImageRepository) ImageSource {
	return &storeImageSource{repo: repo}
}

func (s *storeImageSource) Kind() models.EntityKind { return models.EntityStore }

func (s *storeImageSource) LookupPrimary(ctx context.Context, owner models.Ownership) ([]models.ImageRecord, error) {
	return s.lookup(ctx, owner, true)
}

func (s *storeImageSource) LookupAny(ctx context.Context, owner models.Ownership) ([]models.ImageRecord, error) {
	return s.lookup(ctx, owner, false)
}

func (s *storeImageSource) lookup(ctx context.Context, owner models.Ownership, primaryOnly bool) ([]models.ImageRecord, error) {
	images, err := s.repo.ListForResolution(ctx, owner.StoreID, primaryOnly)
	if err != nil {
		return nil, err
	}
	records := make([]models.ImageRecord, 0, len(images))
	for _, image := range images {
		records = append(records, image.Record())
	}
	return records, nil
}

func (s *storeImageSource) CanonicalTarget(owner models.Ownership, variant Variant) PathTarget {
	return PathTarget{StoreID: owner.StoreID, Variant: variant}
}

func (s *storeImageSource) DefaultFilePath(owner models.Ownership, variant Variant) string {
	return FormatCanonicalPath(s.CanonicalTarget(owner, variant).PathFor(DefaultFilename))
}

// candidateURL picks the stored URL a record offers for variant. Rows without
// a thumbnail fall back to the conventional name next to the full image.
func candidateURL(record models.ImageRecord, variant Variant) string {
	if variant == VariantThumbnail {
		if thumb := common.SafeString(record.ThumbnailURL); thumb != "" {
			return thumb
		}
		return ThumbnailURLFor(record.ImageURL)
	}
	return record.ImageURL
}
