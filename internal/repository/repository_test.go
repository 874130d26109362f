package repository

import (
	"context"
	"testing"
	"time"

	"storefront/internal/database"
	"storefront/internal/model"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// setupTestDB starts a PostgreSQL container with the storefront schema applied.
func setupTestDB(t *testing.T) *pgxpool.Pool {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}

	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("postgres"),
		postgres.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err)

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	pool, err := pgxpool.New(ctx, connStr)
	require.NoError(t, err)

	require.NoError(t, database.Migrate(ctx, pool, zerolog.Nop()))

	t.Cleanup(func() {
		pool.Close()
		_ = pgContainer.Terminate(ctx)
	})

	return pool
}

func seedUser(t *testing.T, pool *pgxpool.Pool, email string) *model.User {
	t.Helper()

	user := &model.User{Name: "Test User", Email: email, Phone: "08123456789", PasswordHash: "hash"}
	require.NoError(t, NewUserRepository(pool, zerolog.Nop()).Create(context.Background(), user))
	return user
}

func seedProducts(t *testing.T, pool *pgxpool.Pool, n int) []model.Product {
	t.Helper()

	products := make([]model.Product, n)
	for i := range products {
		products[i] = model.Product{
			ID:    int64(i + 1),
			Name:  "Product " + string(rune('A'+i)),
			Price: decimal.NewFromInt(int64((i + 1) * 100)),
			Image: "/img/p.png",
		}
	}
	require.NoError(t, NewProductRepository(pool, zerolog.Nop()).UpsertMany(context.Background(), products))
	return products
}

func countRows(t *testing.T, pool *pgxpool.Pool, table string) int {
	t.Helper()

	var n int
	require.NoError(t, pool.QueryRow(context.Background(), "SELECT COUNT(*) FROM "+table).Scan(&n))
	return n
}
