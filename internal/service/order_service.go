package service

import (
	"context"
	"fmt"

	"storefront/internal/model"
	"storefront/internal/repository"

	"github.com/rs/zerolog"
)

// orderService implements OrderService.
type orderService struct {
	orderRepo repository.OrderRepository
	logger    zerolog.Logger
}

// NewOrderService creates a new order history service.
func NewOrderService(orderRepo repository.OrderRepository, logger zerolog.Logger) OrderService {
	return &orderService{
		orderRepo: orderRepo,
		logger:    logger.With().Str("service", "order").Logger(),
	}
}

func (s *orderService) ListOrders(ctx context.Context, userID int64) ([]model.Order, error) {
	orders, err := s.orderRepo.ListByUser(ctx, userID)
	if err != nil {
		s.logger.Error().Err(err).Int64("user_id", userID).Msg("failed to list orders")
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	return orders, nil
}

// GetOrder reports orders owned by someone else as not found.
func (s *orderService) GetOrder(ctx context.Context, userID, orderID int64) (*model.OrderDetail, error) {
	if orderID < 1 {
		return nil, model.ErrOrderNotFound
	}

	order, items, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		s.logger.Error().Err(err).Int64("order_id", orderID).Msg("failed to get order")
		return nil, fmt.Errorf("failed to get order: %w", err)
	}

	if order == nil || order.UserID != userID {
		s.logger.Debug().Int64("order_id", orderID).Int64("user_id", userID).Msg("order not found")
		return nil, model.ErrOrderNotFound
	}

	if items == nil {
		items = []model.OrderItem{}
	}

	return &model.OrderDetail{Order: *order, Items: items}, nil
}
