package repositories

import (
	"context"

	"marketmedia/internal/models"

	"github.com/jackc/pgx/v5"
)

type ProductImageRepository interface {
	GetByID(ctx context.Context, id int64) (*models.ProductImage, error)
	ListByProductID(ctx context.Context, productID int64) ([]*models.ProductImage, error)
	ListForResolution(ctx context.Context, productID int64, primaryOnly bool) ([]*models.ProductImage, error)
	ListAuditPage(ctx context.Context, afterID int64, limit int) ([]*models.AuditImage, error)
}

type productImageRepo struct {
	db DBTX
}

func NewProductImageRepo(db DBTX) ProductImageRepository {
	return &productImageRepo{db: db}
}

const productImageColumns = `id, product_id, image_url, thumbnail_url, is_primary, display_order, created_at`

func (r *productImageRepo) GetByID(ctx context.Context, id int64) (*models.ProductImage, error) {
	query := `
		SELECT ` + productImageColumns + `
		FROM product_images
		WHERE id = $1
	`
	image := &models.ProductImage{}
	err := r.db.QueryRow(ctx, query, id).Scan(&image.ID, &image.ProductID, &image.ImageURL, &image.ThumbnailURL, &image.IsPrimary, &image.DisplayOrder, &image.CreatedAt)
	if err != nil {
		return nil, translateErr(err)
	}
	return image, nil
}

// ListByProductID returns images in display order, ties broken by id ascending.
func (r *productImageRepo) ListByProductID(ctx context.Context, productID int64) ([]*models.ProductImage, error) {
	query := `
		SELECT ` + productImageColumns + `
		FROM product_images
		WHERE product_id = $1
		ORDER BY display_order ASC, id ASC
	`
	rows, err := r.db.Query(ctx, query, productID)
	if err != nil {
		return nil, err
	}
	return scanProductImages(rows)
}

// ListForResolution returns candidate rows for the image resolver: display order
// ascending, most recent id first on ties.
func (r *productImageRepo) ListForResolution(ctx context.Context, productID int64, primaryOnly bool) ([]*models.ProductImage, error) {
	query := `
		SELECT ` + productImageColumns + `
		FROM product_images
		WHERE product_id = $1`
	if primaryOnly {
		query += ` AND is_primary = TRUE`
	}
	query += `
		ORDER BY display_order ASC, id DESC
	`
	rows, err := r.db.Query(ctx, query, productID)
	if err != nil {
		return nil, err
	}
	return scanProductImages(rows)
}

func (r *productImageRepo) ListAuditPage(ctx context.Context, afterID int64, limit int) ([]*models.AuditImage, error) {
	query := `
		SELECT pi.id, pi.product_id, p.store_id, pi.image_url, pi.thumbnail_url
		FROM product_images pi
		JOIN products p ON p.id = pi.product_id
		WHERE pi.id > $1
		ORDER BY pi.id ASC
		LIMIT $2
	`
	rows, err := r.db.Query(ctx, query, afterID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var images []*models.AuditImage
	for rows.Next() {
		image := &models.AuditImage{Kind: "product"}
		if err := rows.Scan(&image.ID, &image.ProductID, &image.StoreID, &image.ImageURL, &image.ThumbnailURL); err != nil {
			return nil, err
		}
		images = append(images, image)
	}
	return images, rows.Err()
}

func scanProductImages(rows pgx.Rows) ([]*models.ProductImage, error) {
	defer rows.Close()

	var images []*models.ProductImage
	for rows.Next() {
		image := &models.ProductImage{}
		if err := rows.Scan(&image.ID, &image.ProductID, &image.ImageURL, &image.ThumbnailURL, &image.IsPrimary, &image.DisplayOrder, &image.CreatedAt); err != nil {
			return nil, err
		}
		images = append(images, image)
	}
	return images, rows.Err()
}
