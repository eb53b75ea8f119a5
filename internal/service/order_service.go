package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"storefront/internal/entity"
	"storefront/internal/repository"
)

// OrderService serves a user's placed orders.
type OrderService struct {
	db          repository.DBTX
	orderRepo   OrderStore
	billingRepo BillingStore
}

func NewOrderService(db repository.DBTX, orderRepo OrderStore, billingRepo BillingStore) *OrderService {
	return &OrderService{
		db:          db,
		orderRepo:   orderRepo,
		billingRepo: billingRepo,
	}
}

// OrderHistory lists the user's orders, newest first.
func (s *OrderService) OrderHistory(ctx context.Context, userID int) ([]entity.Order, error) {
	orders, err := s.orderRepo.ListOrdersByUser(ctx, s.db, userID)
	if err != nil {
		logger.Error().Err(err).Msgf("Error listing orders of user %d", userID)
		return nil, err
	}
	return orders, nil
}

// GetOrder returns one of the user's orders with its billing record.
func (s *OrderService) GetOrder(ctx context.Context, userID, orderID int) (*entity.Order, error) {
	order, err := s.orderRepo.GetOrderByID(ctx, s.db, userID, orderID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("order %d: %w", orderID, ErrNotFound)
	}
	if err != nil {
		logger.Error().Err(err).Msgf("Error getting order by ID %d", orderID)
		return nil, err
	}

	billing, err := s.billingRepo.GetBillingByID(ctx, s.db, order.BillingID)
	if err != nil {
		logger.Error().Err(err).Msgf("Error getting billing details %d", order.BillingID)
		return nil, err
	}
	order.Billing = billing

	return order, nil
}
