package repositories

import (
	"context"

	"marketmedia/internal/models"
)

type ProductRepository interface {
	GetByID(ctx context.Context, id int64) (*models.Product, error)
	GetOwner(ctx context.Context, productID int64) (*models.ProductOwner, error)
}

type productRepo struct {
	db DBTX
}

func NewProductRepo(db DBTX) ProductRepository {
	return &productRepo{db: db}
}

func (r *productRepo) GetByID(ctx context.Context, id int64) (*models.Product, error) {
	product := &models.Product{}
	query := `
		SELECT id, store_id, name, price, sale_price, stock, category_id, created_at, updated_at
		FROM products
		WHERE id = $1
	`
	err := r.db.QueryRow(ctx, query, id).Scan(
		&product.ID, &product.StoreID, &product.Name, &product.Price, &product.SalePrice,
		&product.Stock, &product.CategoryID, &product.CreatedAt, &product.UpdatedAt,
	)
	if err != nil {
		return nil, translateErr(err)
	}
	return product, nil
}

// GetOwner resolves the product -> store chain in one round trip.
func (r *productRepo) GetOwner(ctx context.Context, productID int64) (*models.ProductOwner, error) {
	owner := &models.ProductOwner{}
	query := `
		SELECT p.id, p.store_id, s.name
		FROM products p
		JOIN stores s ON s.id = p.store_id
		WHERE p.id = $1
	`
	err := r.db.QueryRow(ctx, query, productID).Scan(&owner.ProductID, &owner.StoreID, &owner.StoreName)
	if err != nil {
		return nil, translateErr(err)
	}
	return owner, nil
}
