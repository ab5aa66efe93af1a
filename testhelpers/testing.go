// Package testhelpers starts a disposable Postgres for integration tests and
// seeds it with marketplace fixtures.
package testhelpers

import (
	"context"
	_ "embed"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

//go:embed schema.sql
var schema string

// TestDB holds the database connection for testing
type TestDB struct {
	Pool    *pgxpool.Pool
	Cleanup func()
}

// SetupTestDB starts a Postgres container, applies the schema and returns a
// pool connected to it. Cleanup is registered with t.
func SetupTestDB(t *testing.T) *TestDB {
	t.Helper()
	ctx := context.Background()

	container, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("marketmedia_test"),
		postgres.WithUsername("postgres"),
		postgres.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	if err != nil {
		t.Fatalf("Failed to start PostgreSQL container: %v", err)
	}

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("Failed to get connection string: %v", err)
	}

	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}
	if _, err := pool.Exec(ctx, schema); err != nil {
		t.Fatalf("Failed to apply schema: %v", err)
	}

	db := &TestDB{
		Pool: pool,
		Cleanup: func() {
			pool.Close()
			if err := container.Terminate(ctx); err != nil {
				t.Logf("Failed to terminate container: %v", err)
			}
		},
	}
	t.Cleanup(db.Cleanup)
	return db
}

// SetupTestStore creates a store with a fixed id.
func SetupTestStore(t *testing.T, db *TestDB, id int64, name string) {
	t.Helper()
	mustExec(t, db, `INSERT INTO stores (id, name) VALUES ($1, $2)`, id, name)
}

// SetupTestProduct creates a product with a fixed id under storeID.
func SetupTestProduct(t *testing.T, db *TestDB, id, storeID int64, name string) {
	t.Helper()
	mustExec(t, db, `INSERT INTO products (id, store_id, name, price) VALUES ($1, $2, $3, 10)`, id, storeID, name)
}

// SetupTestProductImage inserts a product image row and returns its id.
func SetupTestProductImage(t *testing.T, db *TestDB, productID int64, imageURL string, thumbnailURL *string, primary bool, order int) int64 {
	t.Helper()
	var id int64
	err := db.Pool.QueryRow(context.Background(), `
		INSERT INTO product_images (product_id, image_url, thumbnail_url, is_primary, display_order)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`, productID, imageURL, thumbnailURL, primary, order).Scan(&id)
	if err != nil {
		t.Fatalf("Failed to create product image: %v", err)
	}
	return id
}

// SetupTestStoreImage inserts a store image row and returns its id.
func SetupTestStoreImage(t *testing.T, db *TestDB, storeID int64, imageURL string, primary bool) int64 {
	t.Helper()
	var id int64
	err := db.Pool.QueryRow(context.Background(), `
		INSERT INTO store_images (store_id, image_url, is_primary)
		VALUES ($1, $2, $3)
		RETURNING id`, storeID, imageURL, primary).Scan(&id)
	if err != nil {
		t.Fatalf("Failed to create store image: %v", err)
	}
	return id
}

// SetupTestPromotion inserts a promotion and returns its id. A nil endsAt is
// open ended.
func SetupTestPromotion(t *testing.T, db *TestDB, productID int64, promotionType string, startsAt time.Time, endsAt *time.Time) int64 {
	t.Helper()
	var id int64
	err := db.Pool.QueryRow(context.Background(), `
		INSERT INTO promotions (product_id, type, starts_at, ends_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id`, productID, promotionType, startsAt, endsAt).Scan(&id)
	if err != nil {
		t.Fatalf("Failed to create promotion: %v", err)
	}
	return id
}

// SetupTestReservation inserts a reservation and returns its id.
func SetupTestReservation(t *testing.T, db *TestDB, userID, productID int64) int64 {
	t.Helper()
	var id int64
	err := db.Pool.QueryRow(context.Background(), `
		INSERT INTO reservations (user_id, product_id) VALUES ($1, $2) RETURNING id`, userID, productID).Scan(&id)
	if err != nil {
		t.Fatalf("Failed to create reservation: %v", err)
	}
	return id
}

func mustExec(t *testing.T, db *TestDB, query string, args ...any) {
	t.Helper()
	if _, err := db.Pool.Exec(context.Background(), query, args...); err != nil {
		t.Fatalf("Failed to exec %q: %v", query, err)
	}
}
