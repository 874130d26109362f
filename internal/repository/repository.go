package repository

import (
	"context"

	"storefront/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// UserRepository defines the interface for user account storage.
type UserRepository interface {
	// Create inserts a user and fills in its generated ID and CreatedAt.
	// Returns model.ErrDuplicateEmail when the email is already registered.
	Create(ctx context.Context, user *model.User) error

	// GetByEmail returns nil, nil when no user has the email.
	GetByEmail(ctx context.Context, email string) (*model.User, error)
}

// ProductRepository defines the interface for product data access operations.
type ProductRepository interface {
	// GetAll retrieves every product ordered by ID.
	GetAll(ctx context.Context) ([]model.Product, error)

	// GetByID returns nil, nil when the product does not exist.
	GetByID(ctx context.Context, id int64) (*model.Product, error)

	// UpsertMany inserts or updates the products by ID in a single transaction.
	UpsertMany(ctx context.Context, products []model.Product) error
}

// OrderRepository defines the interface for order data access operations.
type OrderRepository interface {
	// BeginTx starts a new database transaction.
	BeginTx(ctx context.Context) (pgx.Tx, error)

	// CreateOrder inserts the order row within tx and sets its ID and CreatedAt.
	CreateOrder(ctx context.Context, tx pgx.Tx, order *model.Order) error

	// CreateOrderItems inserts the items one at a time, in order, within tx.
	// The first failing insert aborts the remaining ones.
	CreateOrderItems(ctx context.Context, tx pgx.Tx, items []model.OrderItem) error

	// GetByID retrieves an order and its items. Returns nil when not found.
	GetByID(ctx context.Context, id int64) (*model.Order, []model.OrderItem, error)

	// ListByUser returns the user's orders, newest first.
	ListByUser(ctx context.Context, userID int64) ([]model.Order, error)
}

// OutboxRepository stores integration events next to the rows they describe.
type OutboxRepository interface {
	// Enqueue writes the event within tx.
	Enqueue(ctx context.Context, tx pgx.Tx, event *model.OutboxEvent) error

	// FetchPending returns up to limit unsent events, oldest first.
	FetchPending(ctx context.Context, limit int) ([]model.OutboxEvent, error)

	// MarkSent records that the event was published.
	MarkSent(ctx context.Context, id uuid.UUID) error
}
