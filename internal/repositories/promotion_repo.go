package repositories

import (
	"context"
	"time"

	"marketmedia/internal/models"
)

type PromotionRepository interface {
	GetByID(ctx context.Context, id int64) (*models.Promotion, error)
	// GetActiveForProduct returns the promotion shown for a product at the given
	// instant: flash promotions first, then the most recently created one.
	GetActiveForProduct(ctx context.Context, productID int64, at time.Time) (*models.Promotion, error)
}

type promotionRepo struct {
	db DBTX
}

func NewPromotionRepo(db DBTX) PromotionRepository {
	return &promotionRepo{db: db}
}

func (r *promotionRepo) GetByID(ctx context.Context, id int64) (*models.Promotion, error) {
	query := `
		SELECT id, product_id, type, discount_percent, discount_price, starts_at, ends_at, created_at
		FROM promotions
		WHERE id = $1
	`
	promo := &models.Promotion{}
	err := r.db.QueryRow(ctx, query, id).Scan(&promo.ID, &promo.ProductID, &promo.Type, &promo.DiscountPercent, &promo.DiscountPrice, &promo.StartsAt, &promo.EndsAt, &promo.CreatedAt)
	if err != nil {
		return nil, translateErr(err)
	}
	return promo, nil
}

func (r *promotionRepo) GetActiveForProduct(ctx context.Context, productID int64, at time.Time) (*models.Promotion, error) {
	query := `
		SELECT id, product_id, type, discount_percent, discount_price, starts_at, ends_at, created_at
		FROM promotions
		WHERE product_id = $1
		  AND starts_at <= $2
		  AND (ends_at IS NULL OR ends_at > $2)
		ORDER BY CASE WHEN type = 'flash' THEN 0 ELSE 1 END, id DESC
		LIMIT 1
	`
	promo := &models.Promotion{}
	err := r.db.QueryRow(ctx, query, productID, at).Scan(&promo.ID, &promo.ProductID, &promo.Type, &promo.DiscountPercent, &promo.DiscountPrice, &promo.StartsAt, &promo.EndsAt, &promo.CreatedAt)
	if err != nil {
		return nil, translateErr(err)
	}
	return promo, nil
}
