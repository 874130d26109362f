package service

import (
	"context"
	"time"

	"storefront/internal/model"
)

// TokenIssuer signs access tokens for authenticated users.
type TokenIssuer interface {
	Issue(userID int64) (token string, expiresAt time.Time, err error)
}

// AuthService defines account registration and login.
type AuthService interface {
	// Register creates an account with a hashed password.
	Register(ctx context.Context, req *model.RegisterRequest) (*model.User, error)

	// Login checks the credentials and issues a bearer token.
	Login(ctx context.Context, req *model.LoginRequest) (*model.LoginResponse, error)
}

// ProductService defines the catalog read path.
type ProductService interface {
	// GetAll retrieves every product.
	GetAll(ctx context.Context) ([]model.Product, error)

	// GetByID retrieves a single product by ID.
	GetByID(ctx context.Context, id int64) (*model.Product, error)
}

// CheckoutService turns a cart into a persisted order.
type CheckoutService interface {
	// Checkout validates the request and stores the order and its items
	// atomically on behalf of userID.
	Checkout(ctx context.Context, userID int64, req *model.CheckoutRequest) (*model.CheckoutResponse, error)
}

// OrderService defines read access to a user's order history.
type OrderService interface {
	// ListOrders returns the user's orders, newest first.
	ListOrders(ctx context.Context, userID int64) ([]model.Order, error)

	// GetOrder returns one of the user's orders with its items.
	GetOrder(ctx context.Context, userID, orderID int64) (*model.OrderDetail, error)
}
