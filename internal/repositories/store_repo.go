package repositories

import (
	"context"

	"marketmedia/internal/models"
)

type StoreRepository interface {
	GetByID(ctx context.Context, id int64) (*models.Store, error)
}

type storeRepo struct {
	db DBTX
}

func NewStoreRepo(db DBTX) StoreRepository {
	return &storeRepo{db: db}
}

func (r *storeRepo) GetByID(ctx context.Context, id int64) (*models.Store, error) {
	store := &models.Store{}
	query := `
		SELECT id, name, created_at
		FROM stores
		WHERE id = $1
	`
	err := r.db.QueryRow(ctx, query, id).Scan(&store.ID, &store.Name, &store.CreatedAt)
	if err != nil {
		return nil, translateErr(err)
	}
	return store, nil
}
