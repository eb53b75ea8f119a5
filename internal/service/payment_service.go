package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"storefront/internal/entity"
	"storefront/internal/repository"
	"storefront/internal/validation"
)

// PaymentService collects payment for orders through the gateway and
// settles their status from the gateway's signed callback.
//
// An order moves Pending -> Paid or Pending -> Payment Failed exactly once;
// the status column is the only part of an order written after checkout.
type PaymentService struct {
	db       repository.DBTX
	orders   *OrderService
	repo     OrderStore
	gateway  Gateway
	currency string
	events   orderEvents
}

func NewPaymentService(db repository.DBTX, orders *OrderService, repo OrderStore, gateway Gateway, currency string, writer EventWriter) *PaymentService {
	return &PaymentService{
		db:       db,
		orders:   orders,
		repo:     repo,
		gateway:  gateway,
		currency: currency,
		events:   orderEvents{writer: writer},
	}
}

// Confirmation carries what the checkout widget needs to collect payment.
type Confirmation struct {
	Order          *entity.Order `json:"order"`
	GatewayOrderID string        `json:"gateway_order_id"`
	Amount         int64         `json:"amount"`
	Currency       string        `json:"currency"`
	KeyID          string        `json:"key_id"`
}

// CreateIntent opens a gateway order for the full order total. Gateway
// failures come back wrapped in ErrGateway.
func (s *PaymentService) CreateIntent(ctx context.Context, userID, orderID int) (*Confirmation, error) {
	order, err := s.orders.GetOrder(ctx, userID, orderID)
	if err != nil {
		return nil, err
	}
	if order.IsTerminal() {
		return nil, fmt.Errorf("order %d is %s: %w", order.ID, order.Status, ErrOrderNotPending)
	}

	amount := entity.MinorUnits(order.TotalPrice)
	receipt := fmt.Sprintf("order_rcpt_%d_%s", order.ID, uuid.NewString()[:8])

	intent, err := s.gateway.CreateIntent(ctx, amount, s.currency, receipt)
	if err != nil {
		logger.Error().Err(err).Msgf("Error creating payment intent for order %d", order.ID)
		return nil, fmt.Errorf("%w: %v", ErrGateway, err)
	}

	_, err = s.repo.CreatePaymentIntent(ctx, s.db, &entity.PaymentIntent{
		OrderID:        order.ID,
		GatewayOrderID: intent.ID,
		Amount:         amount,
		Currency:       s.currency,
		CreatedAt:      time.Now().UTC(),
	})
	if err != nil {
		logger.Error().Err(err).Msgf("Error recording payment intent %s for order %d", intent.ID, order.ID)
		return nil, err
	}

	return &Confirmation{
		Order:          order,
		GatewayOrderID: intent.ID,
		Amount:         amount,
		Currency:       s.currency,
		KeyID:          s.gateway.KeyID(),
	}, nil
}

// VerifyCallback settles a Pending order from a gateway callback. A bad
// signature is not an error: the order ends up Payment Failed. A callback
// for an order that already left Pending returns the order untouched.
func (s *PaymentService) VerifyCallback(ctx context.Context, cb validation.Callback) (*entity.Order, error) {
	order, err := s.repo.GetOrderByID(ctx, s.db, 0, cb.OrderID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("order %d: %w", cb.OrderID, ErrNotFound)
	}
	if err != nil {
		logger.Error().Err(err).Msgf("Error getting order by ID %d", cb.OrderID)
		return nil, err
	}

	if order.IsTerminal() {
		logger.Info().Msgf("Ignoring callback for order %d already %s", order.ID, order.Status)
		return order, nil
	}

	valid, err := s.verify(ctx, order.ID, cb)
	if err != nil {
		return nil, err
	}

	status := entity.OrderStatusPaid
	event := EventOrderPaid
	if !valid {
		status = entity.OrderStatusPaymentFailed
		event = EventOrderPaymentFailed
	}

	updated, err := s.repo.UpdateOrderStatus(ctx, s.db, order.ID, status)
	if err != nil {
		logger.Error().Err(err).Msgf("Error updating status of order %d", order.ID)
		return nil, err
	}
	if !updated {
		// another callback settled it first
		return s.repo.GetOrderByID(ctx, s.db, 0, order.ID)
	}

	order.Status = status
	logger.Info().Msgf("Order %d is now %s (gateway payment %s)", order.ID, status, cb.GatewayPaymentID)
	s.events.publish(ctx, order, event)

	return order, nil
}

// verify checks the signature and, when gateway orders were opened for
// this order, that the callback refers to one of them.
func (s *PaymentService) verify(ctx context.Context, orderID int, cb validation.Callback) (bool, error) {
	if !s.gateway.VerifySignature(cb.GatewayOrderID, cb.GatewayPaymentID, cb.Signature) {
		logger.Warn().Msgf("Signature mismatch for order %d", orderID)
		return false, nil
	}

	intents, err := s.repo.ListPaymentIntents(ctx, s.db, orderID)
	if err != nil {
		logger.Error().Err(err).Msgf("Error listing payment intents of order %d", orderID)
		return false, err
	}
	if len(intents) == 0 {
		return true, nil
	}
	for _, intent := range intents {
		if intent.GatewayOrderID == cb.GatewayOrderID {
			return true, nil
		}
	}

	logger.Warn().Msgf("Gateway order %s was not opened for order %d", cb.GatewayOrderID, orderID)
	return false, nil
}
