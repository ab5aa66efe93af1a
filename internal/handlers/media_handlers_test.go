package handlers

import (
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"marketmedia/internal/caching"
	"marketmedia/internal/middleware"
	"marketmedia/internal/repositories"
	"marketmedia/internal/services"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jackc/pgx/v5"
	"github.com/labstack/echo/v4"
	"github.com/labstack/gommon/log"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

const testJWTSecret = "test-secret"

var (
	imageColumns     = []string{"id", "product_id", "image_url", "thumbnail_url", "is_primary", "display_order", "created_at"}
	promotionColumns = []string{"id", "product_id", "type", "discount_percent", "discount_price", "starts_at", "ends_at", "created_at"}
)

type MediaHandlersTestSuite struct {
	suite.Suite
	mock    pgxmock.PgxPoolIface
	uploads string
	e       *echo.Echo
	created time.Time
}

func (suite *MediaHandlersTestSuite) SetupTest() {
	mock, err := pgxmock.NewPool()
	require.NoError(suite.T(), err)
	suite.mock = mock
	suite.uploads = suite.T().TempDir()
	suite.created = time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)

	logger := log.New("test")
	logger.SetOutput(io.Discard)

	productRepo := repositories.NewProductRepo(mock)
	productImageRepo := repositories.NewProductImageRepo(mock)
	storeRepo := repositories.NewStoreRepo(mock)
	storeImageRepo := repositories.NewStoreImageRepo(mock)
	promotionRepo := repositories.NewPromotionRepo(mock)
	reservationRepo := repositories.NewReservationRepo(mock)

	objectStore := services.NewLocalObjectStore(suite.uploads)
	ownershipSvc := services.NewOwnershipService(productRepo, productImageRepo, storeRepo, caching.NewNoopCacheService(), time.Minute, logger)
	resolver := services.NewImageResolver(services.NewPathGuard(objectStore, logger), logger)
	mediaSvc := services.NewMediaService(ownershipSvc, resolver, productImageRepo, storeImageRepo, objectStore)

	placeholder, err := NewPlaceholderHandlers("")
	require.NoError(suite.T(), err)
	media := NewMediaHandlers(mediaSvc, PlaceholderURL, logger)
	routes := &Routes{
		Media:        media,
		Promotions:   NewPromotionHandlers(media, services.NewPromotionImageService(promotionRepo, ownershipSvc), 5*time.Minute),
		Reservations: NewReservationHandlers(services.NewReservationImageService(reservationRepo, promotionRepo, nil, logger), PlaceholderURL, logger),
		Placeholder:  placeholder,
		Ownership:    middleware.NewOwnershipMiddleware(ownershipSvc, PlaceholderURL, logger),
		Auth:         middleware.JWTMiddleware(middleware.JWTConfig{Secret: testJWTSecret}),
	}
	suite.e = echo.New()
	routes.Register(suite.e)
}

func (suite *MediaHandlersTestSuite) TearDownTest() {
	assert.NoError(suite.T(), suite.mock.ExpectationsWereMet())
	suite.mock.Close()
}

func TestMediaHandlersTestSuite(t *testing.T) {
	suite.Run(t, new(MediaHandlersTestSuite))
}

func (suite *MediaHandlersTestSuite) putFile(urlPath, content string) {
	full := filepath.Join(suite.uploads, filepath.FromSlash(urlPath[len("/uploads/"):]))
	require.NoError(suite.T(), os.MkdirAll(filepath.Dir(full), 0o755))
	require.NoError(suite.T(), os.WriteFile(full, []byte(content), 0o644))
}

func (suite *MediaHandlersTestSuite) get(target string, header ...string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	rec := httptest.NewRecorder()
	suite.e.ServeHTTP(rec, req)
	return rec
}

func (suite *MediaHandlersTestSuite) expectProductOwner(productID, storeID int64) {
	suite.mock.ExpectQuery(`FROM products p\s+JOIN stores s`).
		WithArgs(productID).
		WillReturnRows(pgxmock.NewRows([]string{"id", "store_id", "name"}).AddRow(productID, storeID, "Corner Shop"))
}

func (suite *MediaHandlersTestSuite) expectMissingProduct(productID int64) {
	suite.mock.ExpectQuery(`FROM products p\s+JOIN stores s`).
		WithArgs(productID).
		WillReturnError(pgx.ErrNoRows)
}

func (suite *MediaHandlersTestSuite) expectImages(primaryOnly bool, rows *pgxmock.Rows) {
	query := `FROM product_images\s+WHERE product_id = \$1\s+ORDER BY`
	if primaryOnly {
		query = `FROM product_images\s+WHERE product_id = \$1 AND is_primary = TRUE`
	}
	suite.mock.ExpectQuery(query).WithArgs(int64(19)).WillReturnRows(rows)
}

func (suite *MediaHandlersTestSuite) imageRows() *pgxmock.Rows {
	return pgxmock.NewRows(imageColumns)
}

func (suite *MediaHandlersTestSuite) assertPlaceholderRedirect(rec *httptest.ResponseRecorder) {
	assert.Equal(suite.T(), http.StatusFound, rec.Code)
	assert.Equal(suite.T(), PlaceholderURL, rec.Header().Get(echo.HeaderLocation))
	assert.Equal(suite.T(), "no-store", rec.Header().Get("Cache-Control"))
}

func (suite *MediaHandlersTestSuite) TestProductPrimaryImageStreamsCanonicalFile() {
	suite.putFile("/uploads/stores/9/products/19/a.jpg", "product-19-a")
	suite.expectProductOwner(19, 9)
	suite.expectImages(true, suite.imageRows().
		AddRow(int64(1), int64(19), "/uploads/stores/9/products/19/a.jpg", (*string)(nil), true, 0, suite.created))

	rec := suite.get("/api/products/19/primary-image")
	assert.Equal(suite.T(), http.StatusOK, rec.Code)
	assert.Equal(suite.T(), "product-19-a", rec.Body.String())
	assert.Equal(suite.T(), "image/jpeg", rec.Header().Get(echo.HeaderContentType))
	assert.Equal(suite.T(), "primary", rec.Header().Get("X-Image-Tier"))
}

func (suite *MediaHandlersTestSuite) TestProductPrimaryImageRecoversDriftedFilename() {
	suite.putFile("/uploads/stores/9/products/19/a.jpg", "product-19-a")
	suite.expectProductOwner(19, 9)
	suite.expectImages(true, suite.imageRows().
		AddRow(int64(1), int64(19), "a.jpg", (*string)(nil), true, 0, suite.created))

	rec := suite.get("/api/products/19/primary-image")
	assert.Equal(suite.T(), http.StatusOK, rec.Code)
	assert.Equal(suite.T(), "product-19-a", rec.Body.String())
}

func (suite *MediaHandlersTestSuite) TestProductThumbnail() {
	suite.putFile("/uploads/stores/9/products/19/thumb-a.jpg", "thumb")
	suite.expectProductOwner(19, 9)
	suite.expectImages(true, suite.imageRows().
		AddRow(int64(1), int64(19), "/uploads/stores/9/products/19/a.jpg", (*string)(nil), true, 0, suite.created))

	rec := suite.get("/api/products/19/thumbnail")
	assert.Equal(suite.T(), http.StatusOK, rec.Code)
	assert.Equal(suite.T(), "thumb", rec.Body.String())
}

func (suite *MediaHandlersTestSuite) TestDefaultConventionFile() {
	suite.putFile("/uploads/stores/9/products/19/main.jpg", "default")
	suite.expectProductOwner(19, 9)
	suite.expectImages(true, suite.imageRows())
	suite.expectImages(false, suite.imageRows())

	rec := suite.get("/api/products/19/primary-image")
	assert.Equal(suite.T(), http.StatusOK, rec.Code)
	assert.Equal(suite.T(), "default", rec.Body.String())
	assert.Equal(suite.T(), "default", rec.Header().Get("X-Image-Tier"))
}

func (suite *MediaHandlersTestSuite) TestMissingAndEmptyProductsLookIdentical() {
	suite.expectMissingProduct(404)
	missing := suite.get("/api/products/404/primary-image")

	suite.expectProductOwner(19, 9)
	suite.expectImages(true, suite.imageRows())
	suite.expectImages(false, suite.imageRows())
	empty := suite.get("/api/products/19/primary-image")

	suite.assertPlaceholderRedirect(missing)
	suite.assertPlaceholderRedirect(empty)
	assert.Equal(suite.T(), missing.Code, empty.Code)
	assert.Equal(suite.T(), missing.Header(), empty.Header())
	assert.Equal(suite.T(), missing.Body.String(), empty.Body.String())
}

func (suite *MediaHandlersTestSuite) TestInvalidIDRedirectsWithoutQuery() {
	for _, id := range []string{"abc", "0", "-3", "019"} {
		suite.assertPlaceholderRedirect(suite.get("/api/products/" + id + "/primary-image"))
	}
}

func (suite *MediaHandlersTestSuite) TestForeignImageIDRedirectsToPlaceholder() {
	suite.putFile("/uploads/stores/4/products/20/secret.jpg", "other tenant")
	suite.expectProductOwner(19, 9)
	suite.mock.ExpectQuery(`FROM product_images\s+WHERE id = \$1`).
		WithArgs(int64(999)).
		WillReturnRows(suite.imageRows().
			AddRow(int64(999), int64(20), "/uploads/stores/4/products/20/secret.jpg", (*string)(nil), true, 0, suite.created))

	rec := suite.get("/api/products/19/image/999")
	suite.assertPlaceholderRedirect(rec)
	assert.NotContains(suite.T(), rec.Body.String(), "secret")
	assert.NotContains(suite.T(), rec.Body.String(), "other tenant")
}

func (suite *MediaHandlersTestSuite) TestSpecificImage() {
	suite.putFile("/uploads/stores/9/products/19/b.jpg", "b")
	suite.expectProductOwner(19, 9)
	suite.mock.ExpectQuery(`FROM product_images\s+WHERE id = \$1`).
		WithArgs(int64(3)).
		WillReturnRows(suite.imageRows().
			AddRow(int64(3), int64(19), "/uploads/stores/9/products/19/b.jpg", (*string)(nil), false, 1, suite.created))

	rec := suite.get("/api/products/19/image/3")
	assert.Equal(suite.T(), http.StatusOK, rec.Code)
	assert.Equal(suite.T(), "b", rec.Body.String())
}

func (suite *MediaHandlersTestSuite) TestProductImagesUnknownProduct() {
	suite.expectMissingProduct(404)

	rec := suite.get("/api/products/404/images")
	assert.Equal(suite.T(), http.StatusOK, rec.Code)
	assert.JSONEq(suite.T(), `[]`, rec.Body.String())
}

func (suite *MediaHandlersTestSuite) TestProductImagesList() {
	suite.expectProductOwner(19, 9)
	suite.mock.ExpectQuery(`FROM product_images\s+WHERE product_id = \$1\s+ORDER BY display_order ASC, id ASC`).
		WithArgs(int64(19)).
		WillReturnRows(suite.imageRows().
			AddRow(int64(1), int64(19), "a.jpg", (*string)(nil), true, 0, suite.created))

	rec := suite.get("/api/products/19/images")
	assert.Equal(suite.T(), http.StatusOK, rec.Code)
	assert.JSONEq(suite.T(), `[{
		"id": 1,
		"url": "/uploads/stores/9/products/19/a.jpg",
		"thumbnail_url": "/uploads/stores/9/products/19/thumb-a.jpg",
		"api_url": "/api/products/19/image/1",
		"is_primary": true,
		"display_order": 0
	}]`, rec.Body.String())
}

func (suite *MediaHandlersTestSuite) TestStorePrimaryImage() {
	suite.putFile("/uploads/stores/9/logo.png", "logo")
	suite.mock.ExpectQuery(`FROM stores\s+WHERE id = \$1`).
		WithArgs(int64(9)).
		WillReturnRows(pgxmock.NewRows([]string{"id", "name", "created_at"}).AddRow(int64(9), "Corner Shop", suite.created))
	suite.mock.ExpectQuery(`FROM store_images\s+WHERE store_id = \$1 AND is_primary = TRUE`).
		WithArgs(int64(9)).
		WillReturnRows(pgxmock.NewRows([]string{"id", "store_id", "image_url", "thumbnail_url", "is_primary", "display_order", "created_at"}).
			AddRow(int64(4), int64(9), "logo.png", (*string)(nil), true, 0, suite.created))

	rec := suite.get("/api/stores/9/primary-image")
	assert.Equal(suite.T(), http.StatusOK, rec.Code)
	assert.Equal(suite.T(), "logo", rec.Body.String())
	assert.Equal(suite.T(), "image/png", rec.Header().Get(echo.HeaderContentType))
}

func (suite *MediaHandlersTestSuite) TestFlashPromotionImage() {
	suite.putFile("/uploads/stores/9/products/19/a.jpg", "product-19-a")
	suite.mock.ExpectQuery(`FROM promotions\s+WHERE id = \$1`).
		WithArgs(int64(5)).
		WillReturnRows(pgxmock.NewRows(promotionColumns).
			AddRow(int64(5), int64(19), "flash", (*float64)(nil), (*float64)(nil), suite.created, (*time.Time)(nil), suite.created))
	suite.expectProductOwner(19, 9)
	suite.expectImages(true, suite.imageRows().
		AddRow(int64(1), int64(19), "/uploads/stores/9/products/19/a.jpg", (*string)(nil), true, 0, suite.created))

	rec := suite.get("/api/promotions/5/flash-image")
	assert.Equal(suite.T(), http.StatusOK, rec.Code)
	assert.Equal(suite.T(), "product-19-a", rec.Body.String())
	assert.Equal(suite.T(), "public, max-age=300", rec.Header().Get("Cache-Control"))
}

func (suite *MediaHandlersTestSuite) TestPromotionTypeMismatch() {
	suite.mock.ExpectQuery(`FROM promotions\s+WHERE id = \$1`).
		WithArgs(int64(5)).
		WillReturnRows(pgxmock.NewRows(promotionColumns).
			AddRow(int64(5), int64(19), "flash", (*float64)(nil), (*float64)(nil), suite.created, (*time.Time)(nil), suite.created))

	suite.assertPlaceholderRedirect(suite.get("/api/promotions/5/image"))
}

func (suite *MediaHandlersTestSuite) signedToken(sub string) string {
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   sub,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}).SignedString([]byte(testJWTSecret))
	require.NoError(suite.T(), err)
	return "Bearer " + token
}

func (suite *MediaHandlersTestSuite) TestReservationWithFlashPromotion() {
	suite.mock.ExpectQuery(`FROM reservations\s+WHERE id = \$1 AND user_id = \$2`).
		WithArgs(int64(42), int64(7)).
		WillReturnRows(pgxmock.NewRows([]string{"id", "user_id", "product_id", "created_at"}).AddRow(int64(42), int64(7), int64(19), suite.created))
	suite.mock.ExpectQuery(`FROM promotions\s+WHERE product_id = \$1`).
		WithArgs(int64(19), pgxmock.AnyArg()).
		WillReturnRows(pgxmock.NewRows(promotionColumns).
			AddRow(int64(5), int64(19), "flash", (*float64)(nil), (*float64)(nil), suite.created, (*time.Time)(nil), suite.created))

	rec := suite.get("/api/reservations/42/image", echo.HeaderAuthorization, suite.signedToken("7"))
	assert.Equal(suite.T(), http.StatusFound, rec.Code)
	assert.Equal(suite.T(), "/api/promotions/5/flash-image", rec.Header().Get(echo.HeaderLocation))
}

func (suite *MediaHandlersTestSuite) TestReservationWithoutPromotion() {
	suite.mock.ExpectQuery(`FROM reservations`).
		WithArgs(int64(42), int64(7)).
		WillReturnRows(pgxmock.NewRows([]string{"id", "user_id", "product_id", "created_at"}).AddRow(int64(42), int64(7), int64(19), suite.created))
	suite.mock.ExpectQuery(`FROM promotions\s+WHERE product_id = \$1`).
		WithArgs(int64(19), pgxmock.AnyArg()).
		WillReturnError(pgx.ErrNoRows)

	rec := suite.get("/api/reservations/42/image", echo.HeaderAuthorization, suite.signedToken("7"))
	assert.Equal(suite.T(), http.StatusFound, rec.Code)
	assert.Equal(suite.T(), "/api/products/19/primary-image", rec.Header().Get(echo.HeaderLocation))
}

func (suite *MediaHandlersTestSuite) TestReservationOfAnotherUser() {
	suite.mock.ExpectQuery(`FROM reservations`).
		WithArgs(int64(42), int64(8)).
		WillReturnError(pgx.ErrNoRows)

	suite.assertPlaceholderRedirect(suite.get("/api/reservations/42/image", echo.HeaderAuthorization, suite.signedToken("8")))
}

func (suite *MediaHandlersTestSuite) TestReservationRequiresToken() {
	assert.Equal(suite.T(), http.StatusUnauthorized, suite.get("/api/reservations/42/image").Code)
	assert.Equal(suite.T(), http.StatusUnauthorized, suite.get("/api/reservations/42/image", echo.HeaderAuthorization, "Bearer nonsense").Code)
	assert.Equal(suite.T(), http.StatusUnauthorized, suite.get("/api/reservations/42/image", echo.HeaderAuthorization, suite.signedToken("alice")).Code)
}

func (suite *MediaHandlersTestSuite) TestReservationHandlerWithoutUser() {
	handler := NewReservationHandlers(nil, PlaceholderURL, log.New("test"))
	rec := httptest.NewRecorder()
	c := suite.e.NewContext(httptest.NewRequest(http.MethodGet, "/api/reservations/42/image", nil), rec)
	c.SetParamNames("id")
	c.SetParamValues("42")

	require.NoError(suite.T(), handler.ReservationImage(c))
	assert.Equal(suite.T(), http.StatusUnauthorized, rec.Code)
	assert.Contains(suite.T(), rec.Body.String(), `"UNAUTHORIZED"`)
}

func (suite *MediaHandlersTestSuite) TestPlaceholderAsset() {
	rec := suite.get(PlaceholderURL)
	assert.Equal(suite.T(), http.StatusOK, rec.Code)
	assert.Equal(suite.T(), "image/jpeg", rec.Header().Get(echo.HeaderContentType))
	assert.Equal(suite.T(), defaultPlaceholder, rec.Body.Bytes())
}
