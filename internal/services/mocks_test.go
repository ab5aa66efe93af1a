package services

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"marketmedia/internal/models"

	"github.com/labstack/gommon/log"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// Mock repositories and services
type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) GetByID(ctx context.Context, id int64) (*models.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Product), args.Error(1)
}

func (m *MockProductRepository) GetOwner(ctx context.Context, productID int64) (*models.ProductOwner, error) {
	args := m.Called(ctx, productID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ProductOwner), args.Error(1)
}

type MockProductImageRepository struct {
	mock.Mock
}

func (m *MockProductImageRepository) GetByID(ctx context.Context, id int64) (*models.ProductImage, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ProductImage), args.Error(1)
}

func (m *MockProductImageRepository) ListByProductID(ctx context.Context, productID int64) ([]*models.ProductImage, error) {
	args := m.Called(ctx, productID)
	return args.Get(0).([]*models.ProductImage), args.Error(1)
}

func (m *MockProductImageRepository) ListForResolution(ctx context.Context, productID int64, primaryOnly bool) ([]*models.ProductImage, error) {
	args := m.Called(ctx, productID, primaryOnly)
	return args.Get(0).([]*models.ProductImage), args.Error(1)
}

func (m *MockProductImageRepository) ListAuditPage(ctx context.Context, afterID int64, limit int) ([]*models.AuditImage, error) {
	args := m.Called(ctx, afterID, limit)
	return args.Get(0).([]*models.AuditImage), args.Error(1)
}

type MockStoreRepository struct {
	mock.Mock
}

func (m *MockStoreRepository) GetByID(ctx context.Context, id int64) (*models.Store, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Store), args.Error(1)
}

type MockStoreImageRepository struct {
	mock.Mock
}

func (m *MockStoreImageRepository) ListByStoreID(ctx context.Context, storeID int64) ([]*models.StoreImage, error) {
	args := m.Called(ctx, storeID)
	return args.Get(0).([]*models.StoreImage), args.Error(1)
}

func (m *MockStoreImageRepository) ListForResolution(ctx context.Context, storeID int64, primaryOnly bool) ([]*models.StoreImage, error) {
	args := m.Called(ctx, storeID, primaryOnly)
	return args.Get(0).([]*models.StoreImage), args.Error(1)
}

func (m *MockStoreImageRepository) ListAuditPage(ctx context.Context, afterID int64, limit int) ([]*models.AuditImage, error) {
	args := m.Called(ctx, afterID, limit)
	return args.Get(0).([]*models.AuditImage), args.Error(1)
}

type MockPromotionRepository struct {
	mock.Mock
}

func (m *MockPromotionRepository) GetByID(ctx context.Context, id int64) (*models.Promotion, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Promotion), args.Error(1)
}

func (m *MockPromotionRepository) GetActiveForProduct(ctx context.Context, productID int64, at time.Time) (*models.Promotion, error) {
	args := m.Called(ctx, productID, at)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Promotion), args.Error(1)
}

type MockReservationRepository struct {
	mock.Mock
}

func (m *MockReservationRepository) GetForUser(ctx context.Context, id, userID int64) (*models.Reservation, error) {
	args := m.Called(ctx, id, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Reservation), args.Error(1)
}

type MockCacheService struct {
	mock.Mock
}

func (m *MockCacheService) GetProductOwner(ctx context.Context, productID int64) (*models.ProductOwner, error) {
	args := m.Called(ctx, productID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ProductOwner), args.Error(1)
}

func (m *MockCacheService) SetProductOwner(ctx context.Context, owner *models.ProductOwner, ttl time.Duration) error {
	args := m.Called(ctx, owner, ttl)
	return args.Error(0)
}

func (m *MockCacheService) DeleteProductOwner(ctx context.Context, productID int64) error {
	args := m.Called(ctx, productID)
	return args.Error(0)
}

func (m *MockCacheService) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// uploadsFixture is an uploads root on disk.
type uploadsFixture struct {
	t    *testing.T
	root string
}

func newUploadsFixture(t *testing.T) *uploadsFixture {
	return &uploadsFixture{t: t, root: t.TempDir()}
}

// put writes a file at a public URL path such as /uploads/stores/9/a.jpg.
func (f *uploadsFixture) put(urlPath, content string) {
	rel := filepath.FromSlash(urlPath[len(UploadsURLPrefix):])
	full := filepath.Join(f.root, rel)
	require.NoError(f.t, os.MkdirAll(filepath.Dir(full), 0o755))
	require.NoError(f.t, os.WriteFile(full, []byte(content), 0o644))
}

func (f *uploadsFixture) store() ObjectStore {
	return NewLocalObjectStore(f.root)
}

func quietLogger() *log.Logger {
	l := log.New("test")
	l.SetOutput(io.Discard)
	return l
}

func capturingLogger(w io.Writer) *log.Logger {
	l := log.New("test")
	l.SetOutput(w)
	l.SetLevel(log.DEBUG)
	return l
}

func stringPtr(s string) *string { return &s }
