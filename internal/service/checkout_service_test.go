package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"storefront/internal/model"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func validCheckoutRequest() *model.CheckoutRequest {
	return &model.CheckoutRequest{
		Name:          "A",
		Email:         "a@x.com",
		Address:       "1 Main St",
		City:          "Jakarta",
		PostalCode:    "12345",
		Phone:         "08123456789",
		PaymentMethod: model.PaymentCreditCard,
		CartItems: []model.CartItem{
			{ID: 1, Name: "Widget", Price: decimal.NewFromInt(1000), Quantity: 2},
		},
		TotalAmount: decimal.NewNullDecimal(decimal.NewFromInt(2000)),
	}
}

type checkoutMocks struct {
	orders *MockOrderRepository
	outbox *MockOutboxRepository
	tx     *MockTx
}

func newCheckoutService() (CheckoutService, *checkoutMocks) {
	m := &checkoutMocks{
		orders: new(MockOrderRepository),
		outbox: new(MockOutboxRepository),
		tx:     new(MockTx),
	}
	return NewCheckoutService(m.orders, m.outbox, 5*time.Second, zerolog.Nop()), m
}

func (m *checkoutMocks) assertNoWrites(t *testing.T) {
	t.Helper()
	m.orders.AssertNotCalled(t, "BeginTx", mock.Anything)
	m.orders.AssertNotCalled(t, "CreateOrder", mock.Anything, mock.Anything, mock.Anything)
	m.orders.AssertNotCalled(t, "CreateOrderItems", mock.Anything, mock.Anything, mock.Anything)
	m.outbox.AssertNotCalled(t, "Enqueue", mock.Anything, mock.Anything, mock.Anything)
}

func TestCheckoutService_Checkout_Success(t *testing.T) {
	svc, m := newCheckoutService()
	req := validCheckoutRequest()
	req.CartItems = append(req.CartItems, model.CartItem{ProductID: 3, Name: "Gadget", Price: decimal.RequireFromString("2.50"), Quantity: 4})
	req.TotalAmount = decimal.NewNullDecimal(decimal.NewFromInt(2010))

	m.orders.On("BeginTx", mock.Anything).Return(m.tx, nil)
	m.orders.On("CreateOrder", mock.Anything, m.tx, mock.AnythingOfType("*model.Order")).
		Run(func(args mock.Arguments) {
			order := args.Get(2).(*model.Order)
			order.ID = 77
			order.CreatedAt = time.Now()
		}).
		Return(nil)
	m.orders.On("CreateOrderItems", mock.Anything, m.tx, mock.MatchedBy(func(items []model.OrderItem) bool {
		return len(items) == 2 &&
			items[0].OrderID == 77 && items[0].ProductID == 1 && items[0].Quantity == 2 &&
			items[1].ProductID == 3 && items[1].Price.Equal(decimal.RequireFromString("2.5"))
	})).Return(nil)
	m.outbox.On("Enqueue", mock.Anything, m.tx, mock.MatchedBy(func(ev *model.OutboxEvent) bool {
		var payload model.OrderCreatedPayload
		return ev.EventType == model.EventOrderCreated &&
			ev.AggregateID == 77 &&
			json.Unmarshal(ev.Payload, &payload) == nil &&
			payload.UserID == 5 && len(payload.Items) == 2
	})).Return(nil)
	m.tx.On("Commit", mock.Anything).Return(nil)

	resp, err := svc.Checkout(context.Background(), 5, req)

	require.NoError(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, int64(77), resp.OrderID)
	assert.NotEmpty(t, resp.Message)

	m.orders.AssertExpectations(t)
	m.outbox.AssertExpectations(t)
	m.tx.AssertExpectations(t)
	m.tx.AssertNotCalled(t, "Rollback", mock.Anything)
}

func TestCheckoutService_Checkout_StoresOrderHeader(t *testing.T) {
	svc, m := newCheckoutService()
	req := validCheckoutRequest()
	req.Name = "  A  "
	req.PaymentMethod = model.PaymentPayPal

	var stored *model.Order
	m.orders.On("BeginTx", mock.Anything).Return(m.tx, nil)
	m.orders.On("CreateOrder", mock.Anything, m.tx, mock.Anything).
		Run(func(args mock.Arguments) {
			stored = args.Get(2).(*model.Order)
			stored.ID = 1
		}).
		Return(nil)
	m.orders.On("CreateOrderItems", mock.Anything, m.tx, mock.Anything).Return(nil)
	m.outbox.On("Enqueue", mock.Anything, m.tx, mock.Anything).Return(nil)
	m.tx.On("Commit", mock.Anything).Return(nil)

	_, err := svc.Checkout(context.Background(), 9, req)
	require.NoError(t, err)

	require.NotNil(t, stored)
	assert.Equal(t, int64(9), stored.UserID)
	assert.Equal(t, "A", stored.Name)
	assert.Equal(t, model.PaymentPayPal, stored.PaymentMethod)
	assert.True(t, decimal.NewFromInt(2000).Equal(stored.TotalAmount))
}

func TestCheckoutService_Checkout_TrustsMismatchedTotal(t *testing.T) {
	svc, m := newCheckoutService()
	req := validCheckoutRequest()
	req.TotalAmount = decimal.NewNullDecimal(decimal.NewFromInt(1))

	m.orders.On("BeginTx", mock.Anything).Return(m.tx, nil)
	m.orders.On("CreateOrder", mock.Anything, m.tx, mock.MatchedBy(func(o *model.Order) bool {
		return o.TotalAmount.Equal(decimal.NewFromInt(1))
	})).Return(nil)
	m.orders.On("CreateOrderItems", mock.Anything, m.tx, mock.Anything).Return(nil)
	m.outbox.On("Enqueue", mock.Anything, m.tx, mock.Anything).Return(nil)
	m.tx.On("Commit", mock.Anything).Return(nil)

	_, err := svc.Checkout(context.Background(), 1, req)
	require.NoError(t, err)
	m.orders.AssertExpectations(t)
}

func TestCheckoutService_Checkout_ValidationErrors(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(r *model.CheckoutRequest)
		wantCode string
	}{
		{name: "Empty cart", mutate: func(r *model.CheckoutRequest) { r.CartItems = []model.CartItem{} }, wantCode: model.ErrCodeEmptyCart},
		{name: "Nil cart", mutate: func(r *model.CheckoutRequest) { r.CartItems = nil }, wantCode: model.ErrCodeEmptyCart},
		{name: "Blank name", mutate: func(r *model.CheckoutRequest) { r.Name = "   " }, wantCode: model.ErrCodeMissingField},
		{name: "Missing postal code", mutate: func(r *model.CheckoutRequest) { r.PostalCode = "" }, wantCode: model.ErrCodeMissingField},
		{name: "Malformed email", mutate: func(r *model.CheckoutRequest) { r.Email = "not-an-email" }, wantCode: model.ErrCodeInvalidField},
		{name: "Unknown payment method", mutate: func(r *model.CheckoutRequest) { r.PaymentMethod = "cash" }, wantCode: model.ErrCodeInvalidPayment},
		{name: "Missing total", mutate: func(r *model.CheckoutRequest) { r.TotalAmount = decimal.NullDecimal{} }, wantCode: model.ErrCodeMissingField},
		{name: "Negative total", mutate: func(r *model.CheckoutRequest) { r.TotalAmount = decimal.NewNullDecimal(decimal.NewFromInt(-1)) }, wantCode: model.ErrCodeInvalidPrice},
		{name: "Zero quantity", mutate: func(r *model.CheckoutRequest) { r.CartItems[0].Quantity = 0 }, wantCode: model.ErrCodeInvalidQuantity},
		{name: "Negative price", mutate: func(r *model.CheckoutRequest) { r.CartItems[0].Price = decimal.NewFromInt(-5) }, wantCode: model.ErrCodeInvalidPrice},
		{name: "Quantity beyond integer column", mutate: func(r *model.CheckoutRequest) { r.CartItems[0].Quantity = 1 << 40 }, wantCode: model.ErrCodeInvalidQuantity},
		{name: "Price with sub-cent digits", mutate: func(r *model.CheckoutRequest) { r.CartItems[0].Price = decimal.RequireFromString("0.001") }, wantCode: model.ErrCodeInvalidPrice},
		{name: "Price too large", mutate: func(r *model.CheckoutRequest) { r.CartItems[0].Price = decimal.New(1, 10) }, wantCode: model.ErrCodeInvalidPrice},
		{name: "Total with sub-cent digits", mutate: func(r *model.CheckoutRequest) {
			r.TotalAmount = decimal.NewNullDecimal(decimal.RequireFromString("2000.005"))
		}, wantCode: model.ErrCodeInvalidPrice},
		{name: "Total too large", mutate: func(r *model.CheckoutRequest) {
			r.TotalAmount = decimal.NewNullDecimal(decimal.RequireFromString("99999999999"))
		}, wantCode: model.ErrCodeInvalidPrice},
		{name: "Missing product id", mutate: func(r *model.CheckoutRequest) { r.CartItems[0].ID = 0 }, wantCode: model.ErrCodeInvalidField},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, m := newCheckoutService()
			req := validCheckoutRequest()
			tt.mutate(req)

			resp, err := svc.Checkout(context.Background(), 1, req)

			require.Error(t, err)
			assert.Nil(t, resp)
			var domainErr *model.DomainError
			require.True(t, errors.As(err, &domainErr))
			assert.Equal(t, tt.wantCode, domainErr.Code)
			m.assertNoWrites(t)
		})
	}
}

func TestCheckoutService_Checkout_ItemErrorNamesIndex(t *testing.T) {
	svc, _ := newCheckoutService()
	req := validCheckoutRequest()
	req.CartItems = append(req.CartItems, model.CartItem{ID: 2, Name: "x", Price: decimal.NewFromInt(1), Quantity: 0})

	_, err := svc.Checkout(context.Background(), 1, req)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "cartItems[1].quantity")
}

func TestCheckoutService_Validate_MoneyLimits(t *testing.T) {
	tests := []struct {
		name   string
		price  string
		reject bool
	}{
		{name: "Whole amount", price: "1000"},
		{name: "Cents", price: "19.90"},
		{name: "Trailing zeros", price: "5.5000"},
		{name: "Largest storable", price: "9999999999.99"},
		{name: "Sub-cent", price: "0.001", reject: true},
		{name: "Ten billion", price: "10000000000", reject: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &checkoutService{logger: zerolog.Nop()}
			req := validCheckoutRequest()
			req.CartItems[0].Price = decimal.RequireFromString(tt.price)

			err := svc.validate(req)

			if tt.reject {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "cartItems[0].price")
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestCheckoutService_Checkout_RequiresIdentity(t *testing.T) {
	svc, m := newCheckoutService()

	_, err := svc.Checkout(context.Background(), 0, validCheckoutRequest())

	assert.ErrorIs(t, err, model.ErrNoCredential)
	m.assertNoWrites(t)
}

func TestCheckoutService_Checkout_RollsBackOnFailure(t *testing.T) {
	dbErr := errors.New("insert or update on table \"order_items\" violates foreign key constraint")

	tests := []struct {
		name  string
		setup func(m *checkoutMocks)
	}{
		{
			name: "Order insert fails",
			setup: func(m *checkoutMocks) {
				m.orders.On("CreateOrder", mock.Anything, m.tx, mock.Anything).Return(dbErr)
			},
		},
		{
			name: "Item insert fails",
			setup: func(m *checkoutMocks) {
				m.orders.On("CreateOrder", mock.Anything, m.tx, mock.Anything).Return(nil)
				m.orders.On("CreateOrderItems", mock.Anything, m.tx, mock.Anything).Return(dbErr)
			},
		},
		{
			name: "Outbox insert fails",
			setup: func(m *checkoutMocks) {
				m.orders.On("CreateOrder", mock.Anything, m.tx, mock.Anything).Return(nil)
				m.orders.On("CreateOrderItems", mock.Anything, m.tx, mock.Anything).Return(nil)
				m.outbox.On("Enqueue", mock.Anything, m.tx, mock.Anything).Return(dbErr)
			},
		},
		{
			name: "Commit fails",
			setup: func(m *checkoutMocks) {
				m.orders.On("CreateOrder", mock.Anything, m.tx, mock.Anything).Return(nil)
				m.orders.On("CreateOrderItems", mock.Anything, m.tx, mock.Anything).Return(nil)
				m.outbox.On("Enqueue", mock.Anything, m.tx, mock.Anything).Return(nil)
				m.tx.On("Commit", mock.Anything).Return(dbErr)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, m := newCheckoutService()
			m.orders.On("BeginTx", mock.Anything).Return(m.tx, nil)
			m.tx.On("Rollback", mock.Anything).Return(nil)
			tt.setup(m)

			resp, err := svc.Checkout(context.Background(), 1, validCheckoutRequest())

			require.Error(t, err)
			assert.Nil(t, resp)
			assert.ErrorIs(t, err, model.ErrPersistence)

			var domainErr *model.DomainError
			require.True(t, errors.As(err, &domainErr))
			assert.NotContains(t, domainErr.Message, "foreign key")

			m.tx.AssertCalled(t, "Rollback", mock.Anything)
			m.orders.AssertExpectations(t)
		})
	}
}

func TestCheckoutService_Checkout_BeginTxFails(t *testing.T) {
	svc, m := newCheckoutService()
	m.orders.On("BeginTx", mock.Anything).Return(nil, errors.New("pool closed"))

	_, err := svc.Checkout(context.Background(), 1, validCheckoutRequest())

	assert.ErrorIs(t, err, model.ErrPersistence)
	m.orders.AssertNotCalled(t, "CreateOrder", mock.Anything, mock.Anything, mock.Anything)
}

func TestCheckoutService_Checkout_BoundsContext(t *testing.T) {
	orders := new(MockOrderRepository)
	svc := NewCheckoutService(orders, new(MockOutboxRepository), 50*time.Millisecond, zerolog.Nop())

	orders.On("BeginTx", mock.MatchedBy(func(ctx context.Context) bool {
		deadline, ok := ctx.Deadline()
		return ok && time.Until(deadline) <= 50*time.Millisecond
	})).Return(nil, context.DeadlineExceeded)

	_, err := svc.Checkout(context.Background(), 1, validCheckoutRequest())

	assert.ErrorIs(t, err, model.ErrPersistence)
	orders.AssertExpectations(t)
}
