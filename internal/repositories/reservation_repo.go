package repositories

import (
	"context"

	"marketmedia/internal/models"
)

type ReservationRepository interface {
	// GetForUser only matches reservations owned by userID; a foreign
	// reservation is reported as ErrNotFound.
	GetForUser(ctx context.Context, id, userID int64) (*models.Reservation, error)
}

type reservationRepo struct {
	db DBTX
}

func NewReservationRepo(db DBTX) ReservationRepository {
	return &reservationRepo{db: db}
}

func (r *reservationRepo) GetForUser(ctx context.Context, id, userID int64) (*models.Reservation, error) {
	query := `
		SELECT id, user_id, product_id, created_at
		FROM reservations
		WHERE id = $1 AND user_id = $2
	`
	res := &models.Reservation{}
	err := r.db.QueryRow(ctx, query, id, userID).Scan(&res.ID, &res.UserID, &res.ProductID, &res.CreatedAt)
	if err != nil {
		return nil, translateErr(err)
	}
	return res, nil
}
