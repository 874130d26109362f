package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentMethod is the payment option chosen at checkout.
type PaymentMethod string

const (
	PaymentCreditCard PaymentMethod = "creditCard"
	PaymentPayPal     PaymentMethod = "paypal"
)

// Valid reports whether p is one of the accepted payment methods.
func (p PaymentMethod) Valid() bool {
	switch p {
	case PaymentCreditCard, PaymentPayPal:
		return true
	default:
		return false
	}
}

// Order represents a completed checkout. Rows live in the list_order table.
type Order struct {
	ID            int64           `json:"id" db:"id"`
	UserID        int64           `json:"userId" db:"user_id"`
	Name          string          `json:"name" db:"name"`
	Email         string          `json:"email" db:"email"`
	Address       string          `json:"address" db:"address"`
	City          string          `json:"city" db:"city"`
	PostalCode    string          `json:"postalCode" db:"postal_code"`
	Phone         string          `json:"phone" db:"phone"`
	PaymentMethod PaymentMethod   `json:"paymentMethod" db:"payment_method"`
	TotalAmount   decimal.Decimal `json:"totalAmount" db:"total_amount"`
	CreatedAt     time.Time       `json:"createdAt" db:"created_at"`
}

// OrderItem represents a line item in an order.
type OrderItem struct {
	ID          int64           `json:"id" db:"id"`
	OrderID     int64           `json:"orderId" db:"order_id"`
	ProductID   int64           `json:"productId" db:"product_id"`
	ProductName string          `json:"productName" db:"product_name"`
	Quantity    int             `json:"quantity" db:"quantity"`
	Price       decimal.Decimal `json:"price" db:"price"`
}

// CartItem is one line of the client-held cart.
// The SPA sends the product id as "id"; "productId" is accepted as well.
type CartItem struct {
	ID        int64           `json:"id,omitempty"`
	ProductID int64           `json:"productId,omitempty"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
	Size      string          `json:"size,omitempty"`
}

// ProductRef returns the referenced product id.
func (c CartItem) ProductRef() int64 {
	if c.ProductID != 0 {
		return c.ProductID
	}
	return c.ID
}

// CheckoutRequest represents the request payload for POST /checkout.
type CheckoutRequest struct {
	Name          string              `json:"name"`
	Email         string              `json:"email"`
	Address       string              `json:"address"`
	City          string              `json:"city"`
	PostalCode    string              `json:"postalCode"`
	Phone         string              `json:"phone"`
	PaymentMethod PaymentMethod       `json:"paymentMethod"`
	CartItems     []CartItem          `json:"cartItems"`
	TotalAmount   decimal.NullDecimal `json:"totalAmount"`
}

// CheckoutResponse is returned once the order has been committed.
type CheckoutResponse struct {
	Message string `json:"message"`
	OrderID int64  `json:"orderId"`
}

// OrderDetail is an order with its line items.
type OrderDetail struct {
	Order Order       `json:"order"`
	Items []OrderItem `json:"items"`
}
