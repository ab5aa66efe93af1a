package models

import "time"

type Product struct {
	ID         int64     `json:"id" db:"id"`
	StoreID    int64     `json:"store_id" db:"store_id"`
	Name       string    `json:"name" db:"name"`
	Price      float64   `json:"price" db:"price"`
	SalePrice  *float64  `json:"sale_price" db:"sale_price"`
	Stock      int       `json:"stock" db:"stock"`
	CategoryID *int64    `json:"category_id" db:"category_id"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time `json:"updated_at" db:"updated_at"`
}

// ProductOwner is the immutable product -> store chain used for ownership checks.
type ProductOwner struct {
	ProductID int64  `json:"product_id"`
	StoreID   int64  `json:"store_id"`
	StoreName string `json:"store_name"`
}
