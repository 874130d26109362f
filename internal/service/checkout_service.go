package service

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"storefront/internal/metrics"
	"storefront/internal/model"
	"storefront/internal/repository"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

const checkoutSuccessMessage = "Order placed successfully"

// Money columns are NUMERIC(12,2).
var maxMoney = decimal.New(1, 10)

type checkoutService struct {
	orderRepo  repository.OrderRepository
	outboxRepo repository.OutboxRepository
	timeout    time.Duration
	logger     zerolog.Logger
}

// NewCheckoutService creates a checkout service whose database work is
// bounded by timeout.
func NewCheckoutService(
	orderRepo repository.OrderRepository,
	outboxRepo repository.OutboxRepository,
	timeout time.Duration,
	logger zerolog.Logger,
) CheckoutService {
	return &checkoutService{
		orderRepo:  orderRepo,
		outboxRepo: outboxRepo,
		timeout:    timeout,
		logger:     logger.With().Str("service", "checkout").Logger(),
	}
}

func (s *checkoutService) Checkout(ctx context.Context, userID int64, req *model.CheckoutRequest) (*model.CheckoutResponse, error) {
	if userID < 1 {
		return nil, model.ErrNoCredential
	}

	if err := s.validate(req); err != nil {
		metrics.CheckoutsTotal.WithLabelValues(metrics.CheckoutRejected).Inc()
		s.logger.Debug().Err(err).Int64("user_id", userID).Msg("checkout rejected")
		return nil, err
	}

	s.checkTotal(userID, req)

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	order, err := s.placeOrder(ctx, userID, req)
	if err != nil {
		metrics.CheckoutsTotal.WithLabelValues(metrics.CheckoutFailed).Inc()
		return nil, fmt.Errorf("%w: %v", model.ErrPersistence, err)
	}

	metrics.CheckoutsTotal.WithLabelValues(metrics.CheckoutCreated).Inc()
	s.logger.Info().
		Int64("order_id", order.ID).
		Int64("user_id", userID).
		Int("item_count", len(req.CartItems)).
		Str("total", order.TotalAmount.StringFixed(2)).
		Msg("order created successfully")

	return &model.CheckoutResponse{
		Message: checkoutSuccessMessage,
		OrderID: order.ID,
	}, nil
}

// placeOrder writes the order, its items and the order.created event in one
// transaction. Nothing is persisted unless every step succeeds.
func (s *checkoutService) placeOrder(ctx context.Context, userID int64, req *model.CheckoutRequest) (*model.Order, error) {
	tx, err := s.orderRepo.BeginTx(ctx)
	if err != nil {
		return nil, err
	}

	committed := false
	defer func() {
		if committed {
			return
		}
		// The request context may already be done; rollback still has to run.
		rbCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), time.Second)
		defer cancel()
		if rbErr := tx.Rollback(rbCtx); rbErr != nil {
			s.logger.Error().Err(rbErr).Msg("failed to rollback transaction")
		}
	}()

	order := &model.Order{
		UserID:        userID,
		Name:          strings.TrimSpace(req.Name),
		Email:         strings.TrimSpace(req.Email),
		Address:       strings.TrimSpace(req.Address),
		City:          strings.TrimSpace(req.City),
		PostalCode:    strings.TrimSpace(req.PostalCode),
		Phone:         strings.TrimSpace(req.Phone),
		PaymentMethod: req.PaymentMethod,
		TotalAmount:   req.TotalAmount.Decimal,
	}

	if err := s.orderRepo.CreateOrder(ctx, tx, order); err != nil {
		s.logger.Error().Err(err).Int64("user_id", userID).Msg("failed to create order")
		return nil, err
	}

	items := make([]model.OrderItem, len(req.CartItems))
	for i, c := range req.CartItems {
		items[i] = model.OrderItem{
			OrderID:     order.ID,
			ProductID:   c.ProductRef(),
			ProductName: c.Name,
			Quantity:    c.Quantity,
			Price:       c.Price,
		}
	}

	if err := s.orderRepo.CreateOrderItems(ctx, tx, items); err != nil {
		s.logger.Error().
			Err(err).
			Int64("order_id", order.ID).
			Int("item_count", len(items)).
			Msg("failed to create order items")
		return nil, err
	}

	event, err := model.NewOrderCreatedEvent(order, items)
	if err != nil {
		return nil, fmt.Errorf("failed to build order event: %w", err)
	}
	if err := s.outboxRepo.Enqueue(ctx, tx, event); err != nil {
		s.logger.Error().Err(err).Int64("order_id", order.ID).Msg("failed to enqueue order event")
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		s.logger.Error().Err(err).Int64("order_id", order.ID).Msg("failed to commit transaction")
		return nil, fmt.Errorf("failed to commit order: %w", err)
	}
	committed = true

	return order, nil
}

func (s *checkoutService) validate(req *model.CheckoutRequest) error {
	if req == nil || len(req.CartItems) == 0 {
		return model.ErrEmptyCart
	}

	err := requireFields(
		"name", req.Name,
		"email", req.Email,
		"address", req.Address,
		"city", req.City,
		"postalCode", req.PostalCode,
		"phone", req.Phone,
	)
	if err != nil {
		return err
	}

	if !validEmail(strings.TrimSpace(req.Email)) {
		return model.NewFieldError(model.ErrCodeInvalidField, "email", "is not a valid address")
	}

	if !req.PaymentMethod.Valid() {
		return model.ErrInvalidPayment
	}

	if !req.TotalAmount.Valid {
		return model.NewFieldError(model.ErrCodeMissingField, "totalAmount", "is required")
	}
	if req.TotalAmount.Decimal.IsNegative() {
		return model.NewFieldError(model.ErrCodeInvalidPrice, "totalAmount", "must not be negative")
	}
	if reason := moneyOutOfRange(req.TotalAmount.Decimal); reason != "" {
		return model.NewFieldError(model.ErrCodeInvalidPrice, "totalAmount", reason)
	}

	for i, item := range req.CartItems {
		if item.ProductRef() < 1 {
			return model.NewFieldError(model.ErrCodeInvalidField, fmt.Sprintf("cartItems[%d].id", i), "must be a positive product id")
		}
		if item.Quantity < 1 {
			return model.NewFieldError(model.ErrCodeInvalidQuantity, fmt.Sprintf("cartItems[%d].quantity", i), "must be at least 1")
		}
		if item.Quantity > math.MaxInt32 {
			return model.NewFieldError(model.ErrCodeInvalidQuantity, fmt.Sprintf("cartItems[%d].quantity", i), "is too large")
		}
		if item.Price.IsNegative() {
			return model.NewFieldError(model.ErrCodeInvalidPrice, fmt.Sprintf("cartItems[%d].price", i), "must not be negative")
		}
		if reason := moneyOutOfRange(item.Price); reason != "" {
			return model.NewFieldError(model.ErrCodeInvalidPrice, fmt.Sprintf("cartItems[%d].price", i), reason)
		}
	}

	return nil
}

// moneyOutOfRange reports why d cannot be stored unchanged, or "" if it can.
func moneyOutOfRange(d decimal.Decimal) string {
	if !d.Equal(d.Truncate(2)) {
		return "must have at most 2 decimal places"
	}
	if d.Abs().GreaterThanOrEqual(maxMoney) {
		return "is too large"
	}
	return ""
}

// checkTotal logs when the client total disagrees with its own line items.
// Client pricing is trusted, so the order is stored as submitted.
func (s *checkoutService) checkTotal(userID int64, req *model.CheckoutRequest) {
	sum := decimal.Zero
	for _, item := range req.CartItems {
		sum = sum.Add(item.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}

	if !sum.Equal(req.TotalAmount.Decimal) {
		s.logger.Warn().
			Int64("user_id", userID).
			Str("total_amount", req.TotalAmount.Decimal.String()).
			Str("items_total", sum.String()).
			Msg("checkout total does not match line items")
	}
}
