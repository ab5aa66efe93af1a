package models

import "time"

type ProductImage struct {
	ID           int64     `json:"id" db:"id"`
	ProductID    int64     `json:"product_id" db:"product_id"`
	ImageURL     string    `json:"image_url" db:"image_url"`
	ThumbnailURL *string   `json:"thumbnail_url" db:"thumbnail_url"`
	IsPrimary    bool      `json:"is_primary" db:"is_primary"`
	DisplayOrder int       `json:"display_order" db:"display_order"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

// Record flattens the row into the owner-agnostic shape the resolver works on.
func (i *ProductImage) Record() ImageRecord {
	return ImageRecord{
		ID:           i.ID,
		OwnerID:      i.ProductID,
		ImageURL:     i.ImageURL,
		ThumbnailURL: i.ThumbnailURL,
		IsPrimary:    i.IsPrimary,
		DisplayOrder: i.DisplayOrder,
	}
}

type StoreImage struct {
	ID           int64     `json:"id" db:"id"`
	StoreID      int64     `json:"store_id" db:"store_id"`
	ImageURL     string    `json:"image_url" db:"image_url"`
	ThumbnailURL *string   `json:"thumbnail_url" db:"thumbnail_url"`
	IsPrimary    bool      `json:"is_primary" db:"is_primary"`
	DisplayOrder int       `json:"display_order" db:"display_order"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

func (i *StoreImage) Record() ImageRecord {
	return ImageRecord{
		ID:           i.ID,
		OwnerID:      i.StoreID,
		ImageURL:     i.ImageURL,
		ThumbnailURL: i.ThumbnailURL,
		IsPrimary:    i.IsPrimary,
		DisplayOrder: i.DisplayOrder,
	}
}

// ImageRecord is an image row of either owner kind.
type ImageRecord struct {
	ID           int64
	OwnerID      int64
	ImageURL     string
	ThumbnailURL *string
	IsPrimary    bool
	DisplayOrder int
}

// AuditImage is an image row joined with its owning store, used by the drift audit.
type AuditImage struct {
	Kind         string  `json:"kind"`
	ID           int64   `json:"id"`
	StoreID      int64   `json:"store_id"`
	ProductID    int64   `json:"product_id,omitempty"`
	ImageURL     string  `json:"image_url"`
	ThumbnailURL *string `json:"thumbnail_url,omitempty"`
}
