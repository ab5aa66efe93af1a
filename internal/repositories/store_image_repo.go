package repositories

import (
	"context"

	"marketmedia/internal/models"

	"github.com/jackc/pgx/v5"
)

type StoreImageRepository interface {
	ListByStoreID(ctx context.Context, storeID int64) ([]*models.StoreImage, error)
	ListForResolution(ctx context.Context, storeID int64, primaryOnly bool) ([]*models.StoreImage, error)
	ListAuditPage(ctx context.Context, afterID int64, limit int) ([]*models.AuditImage, error)
}

type storeImageRepo struct {
	db DBTX
}

func NewStoreImageRepo(db DBTX) StoreImageRepository {
	return &storeImageRepo{db: db}
}

const storeImageColumns = `id, store_id, image_url, thumbnail_url, is_primary, display_order, created_at`

func (r *storeImageRepo) ListByStoreID(ctx context.Context, storeID int64) ([]*models.StoreImage, error) {
	query := `
		SELECT ` + storeImageColumns + `
		FROM store_images
		WHERE store_id = $1
		ORDER BY display_order ASC, id ASC
	`
	rows, err := r.db.Query(ctx, query, storeID)
	if err != nil {
		return nil, err
	}
	return scanStoreImages(rows)
}

func (r *storeImageRepo) ListForResolution(ctx context.Context, storeID int64, primaryOnly bool) ([]*models.StoreImage, error) {
	query := `
		SELECT ` + storeImageColumns + `
		FROM store_images
		WHERE store_id = $1`
	if primaryOnly {
		query += ` AND is_primary = TRUE`
	}
	query += `
		ORDER BY display_order ASC, id DESC
	`
	rows, err := r.db.Query(ctx, query, storeID)
	if err != nil {
		return nil, err
	}
	return scanStoreImages(rows)
}

func (r *storeImageRepo) ListAuditPage(ctx context.Context, afterID int64, limit int) ([]*models.AuditImage, error) {
	query := `
		SELECT id, store_id, image_url, thumbnail_url
		FROM store_images
		WHERE id > $1
		ORDER BY id ASC
		LIMIT $2
	`
	rows, err := r.db.Query(ctx, query, afterID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var images []*models.AuditImage
	for rows.Next() {
		image := &models.AuditImage{Kind: "store"}
		if err := rows.Scan(&image.ID, &image.StoreID, &image.ImageURL, &image.ThumbnailURL); err != nil {
			return nil, err
		}
		images = append(images, image)
	}
	return images, rows.Err()
}

func scanStoreImages(rows pgx.Rows) ([]*models.StoreImage, error) {
	defer rows.Close()

	var images []*models.StoreImage
	for rows.Next() {
		image := &models.StoreImage{}
		if err := rows.Scan(&image.ID, &image.StoreID, &image.ImageURL, &image.ThumbnailURL, &image.IsPrimary, &image.DisplayOrder, &image.CreatedAt); err != nil {
			return nil, err
		}
		images = append(images, image)
	}
	return images, rows.Err()
}
