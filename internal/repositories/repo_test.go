package repositories

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type ReadReposTestSuite struct {
	suite.Suite
	mock    pgxmock.PgxPoolIface
	ctx     context.Context
	created time.Time
}

func (suite *ReadReposTestSuite) SetupTest() {
	mock, err := pgxmock.NewPool()
	require.NoError(suite.T(), err)
	suite.mock = mock
	suite.ctx = context.Background()
	suite.created = time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
}

func (suite *ReadReposTestSuite) TearDownTest() {
	assert.NoError(suite.T(), suite.mock.ExpectationsWereMet())
	suite.mock.Close()
}

func TestReadReposTestSuite(t *testing.T) {
	suite.Run(t, new(ReadReposTestSuite))
}

func stringPtr(s string) *string { return &s }

func (suite *ReadReposTestSuite) TestProductGetOwner_Success() {
	suite.mock.ExpectQuery(`FROM products p\s+JOIN stores s ON s.id = p.store_id\s+WHERE p.id = \$1`).
		WithArgs(int64(19)).
		WillReturnRows(pgxmock.NewRows([]string{"id", "store_id", "name"}).AddRow(int64(19), int64(9), "Corner Shop"))

	owner, err := NewProductRepo(suite.mock).GetOwner(suite.ctx, 19)
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), int64(19), owner.ProductID)
	assert.Equal(suite.T(), int64(9), owner.StoreID)
	assert.Equal(suite.T(), "Corner Shop", owner.StoreName)
}

func (suite *ReadReposTestSuite) TestProductGetOwner_NotFound() {
	suite.mock.ExpectQuery(`FROM products p`).
		WithArgs(int64(404)).
		WillReturnError(pgx.ErrNoRows)

	owner, err := NewProductRepo(suite.mock).GetOwner(suite.ctx, 404)
	assert.Nil(suite.T(), owner)
	assert.ErrorIs(suite.T(), err, ErrNotFound)
}

func (suite *ReadReposTestSuite) TestStoreGetByID_NotFound() {
	suite.mock.ExpectQuery(`FROM stores\s+WHERE id = \$1`).
		WithArgs(int64(3)).
		WillReturnError(pgx.ErrNoRows)

	store, err := NewStoreRepo(suite.mock).GetByID(suite.ctx, 3)
	assert.Nil(suite.T(), store)
	assert.ErrorIs(suite.T(), err, ErrNotFound)
}

func (suite *ReadReposTestSuite) TestProductImageGetByID_Success() {
	suite.mock.ExpectQuery(`FROM product_images\s+WHERE id = \$1`).
		WithArgs(int64(999)).
		WillReturnRows(pgxmock.NewRows([]string{"id", "product_id", "image_url", "thumbnail_url", "is_primary", "display_order", "created_at"}).
			AddRow(int64(999), int64(20), "/uploads/stores/4/products/20/b.jpg", stringPtr("/uploads/stores/4/products/20/thumb-b.jpg"), false, 2, suite.created))

	image, err := NewProductImageRepo(suite.mock).GetByID(suite.ctx, 999)
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), int64(20), image.ProductID)
	assert.Equal(suite.T(), 2, image.DisplayOrder)
	require.NotNil(suite.T(), image.ThumbnailURL)
}

func (suite *ReadReposTestSuite) TestProductImageListForResolution_PrimaryOnly() {
	suite.mock.ExpectQuery(`WHERE product_id = \$1 AND is_primary = TRUE\s+ORDER BY display_order ASC, id DESC`).
		WithArgs(int64(19)).
		WillReturnRows(pgxmock.NewRows([]string{"id", "product_id", "image_url", "thumbnail_url", "is_primary", "display_order", "created_at"}).
			AddRow(int64(7), int64(19), "/uploads/stores/9/products/19/b.jpg", stringPtr(""), true, 0, suite.created).
			AddRow(int64(5), int64(19), "/uploads/stores/9/products/19/a.jpg", stringPtr(""), true, 0, suite.created))

	images, err := NewProductImageRepo(suite.mock).ListForResolution(suite.ctx, 19, true)
	require.NoError(suite.T(), err)
	require.Len(suite.T(), images, 2)
	assert.Equal(suite.T(), int64(7), images[0].ID)
	assert.True(suite.T(), images[1].IsPrimary)
}

func (suite *ReadReposTestSuite) TestProductImageListForResolution_AnyRow() {
	suite.mock.ExpectQuery(`WHERE product_id = \$1\s+ORDER BY display_order ASC, id DESC`).
		WithArgs(int64(19)).
		WillReturnRows(pgxmock.NewRows([]string{"id", "product_id", "image_url", "thumbnail_url", "is_primary", "display_order", "created_at"}))

	images, err := NewProductImageRepo(suite.mock).ListForResolution(suite.ctx, 19, false)
	require.NoError(suite.T(), err)
	assert.Empty(suite.T(), images)
}

func (suite *ReadReposTestSuite) TestProductImageListAuditPage() {
	suite.mock.ExpectQuery(`JOIN products p ON p.id = pi.product_id\s+WHERE pi.id > \$1`).
		WithArgs(int64(0), 2).
		WillReturnRows(pgxmock.NewRows([]string{"id", "product_id", "store_id", "image_url", "thumbnail_url"}).
			AddRow(int64(1), int64(19), int64(9), "a.jpg", stringPtr("thumb-a.jpg")))

	page, err := NewProductImageRepo(suite.mock).ListAuditPage(suite.ctx, 0, 2)
	require.NoError(suite.T(), err)
	require.Len(suite.T(), page, 1)
	assert.Equal(suite.T(), "product", page[0].Kind)
	assert.Equal(suite.T(), int64(9), page[0].StoreID)
}

func (suite *ReadReposTestSuite) TestStoreImageListByStoreID_DisplayOrder() {
	suite.mock.ExpectQuery(`FROM store_images\s+WHERE store_id = \$1\s+ORDER BY display_order ASC, id ASC`).
		WithArgs(int64(9)).
		WillReturnRows(pgxmock.NewRows([]string{"id", "store_id", "image_url", "thumbnail_url", "is_primary", "display_order", "created_at"}).
			AddRow(int64(1), int64(9), "/uploads/stores/9/logo.png", stringPtr(""), true, 0, suite.created))

	images, err := NewStoreImageRepo(suite.mock).ListByStoreID(suite.ctx, 9)
	require.NoError(suite.T(), err)
	require.Len(suite.T(), images, 1)
	assert.Equal(suite.T(), int64(9), images[0].StoreID)
}

func (suite *ReadReposTestSuite) TestPromotionGetActiveForProduct_FlashFirst() {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	suite.mock.ExpectQuery(`ORDER BY CASE WHEN type = 'flash' THEN 0 ELSE 1 END, id DESC\s+LIMIT 1`).
		WithArgs(int64(19), now).
		WillReturnRows(pgxmock.NewRows([]string{"id", "product_id", "type", "discount_percent", "discount_price", "starts_at", "ends_at", "created_at"}).
			AddRow(int64(31), int64(19), "flash", (*float64)(nil), (*float64)(nil), now.Add(-time.Hour), (*time.Time)(nil), suite.created))

	promo, err := NewPromotionRepo(suite.mock).GetActiveForProduct(suite.ctx, 19, now)
	require.NoError(suite.T(), err)
	assert.True(suite.T(), promo.IsFlash())
	assert.Nil(suite.T(), promo.EndsAt)
}

func (suite *ReadReposTestSuite) TestPromotionGetActiveForProduct_None() {
	now := time.Now()
	suite.mock.ExpectQuery(`FROM promotions`).
		WithArgs(int64(19), now).
		WillReturnError(pgx.ErrNoRows)

	promo, err := NewPromotionRepo(suite.mock).GetActiveForProduct(suite.ctx, 19, now)
	assert.Nil(suite.T(), promo)
	assert.ErrorIs(suite.T(), err, ErrNotFound)
}

func (suite *ReadReposTestSuite) TestReservationGetForUser_ForeignUser() {
	suite.mock.ExpectQuery(`FROM reservations\s+WHERE id = \$1 AND user_id = \$2`).
		WithArgs(int64(5), int64(77)).
		WillReturnError(pgx.ErrNoRows)

	res, err := NewReservationRepo(suite.mock).GetForUser(suite.ctx, 5, 77)
	assert.Nil(suite.T(), res)
	assert.ErrorIs(suite.T(), err, ErrNotFound)
}
