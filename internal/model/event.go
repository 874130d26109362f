package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// EventOrderCreated is the routing key used for committed orders.
const EventOrderCreated = "order.created"

// OutboxEvent is a domain event stored alongside the write that produced it.
type OutboxEvent struct {
	ID          uuid.UUID       `json:"id" db:"id"`
	AggregateID int64           `json:"aggregateId" db:"aggregate_id"`
	EventType   string          `json:"eventType" db:"event_type"`
	Payload     json.RawMessage `json:"payload" db:"payload"`
	CreatedAt   time.Time       `json:"createdAt" db:"created_at"`
	SentAt      *time.Time      `json:"sentAt,omitempty" db:"sent_at"`
}

// OrderCreatedItem is a line of OrderCreatedPayload.
type OrderCreatedItem struct {
	ProductID int64           `json:"productId"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
}

// OrderCreatedPayload is the body of an order.created event.
type OrderCreatedPayload struct {
	OrderID       int64              `json:"orderId"`
	UserID        int64              `json:"userId"`
	Email         string             `json:"email"`
	PaymentMethod PaymentMethod      `json:"paymentMethod"`
	TotalAmount   decimal.Decimal    `json:"totalAmount"`
	Items         []OrderCreatedItem `json:"items"`
	CreatedAt     time.Time          `json:"createdAt"`
}

// NewOrderCreatedEvent builds the outbox record for a freshly inserted order.
func NewOrderCreatedEvent(order *Order, items []OrderItem) (*OutboxEvent, error) {
	payload := OrderCreatedPayload{
		OrderID:       order.ID,
		UserID:        order.UserID,
		Email:         order.Email,
		PaymentMethod: order.PaymentMethod,
		TotalAmount:   order.TotalAmount,
		Items:         make([]OrderCreatedItem, 0, len(items)),
		CreatedAt:     order.CreatedAt,
	}
	for _, it := range items {
		payload.Items = append(payload.Items, OrderCreatedItem{
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
			Price:     it.Price,
		})
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	return &OutboxEvent{
		ID:          uuid.New(),
		AggregateID: order.ID,
		EventType:   EventOrderCreated,
		Payload:     data,
		CreatedAt:   order.CreatedAt,
	}, nil
}
