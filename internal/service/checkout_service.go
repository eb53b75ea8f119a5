package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"storefront/internal/entity"
	"storefront/internal/repository"
	"storefront/internal/validation"
)

const idempotencyTTL = 24 * time.Hour

// CheckoutService turns a user's cart into an order.
type CheckoutService struct {
	db          repository.DBTX
	tx          repository.Transactor
	cartRepo    CartStore
	billingRepo BillingStore
	orderRepo   OrderStore
	userRepo    UserStore
	rdb         *redis.Client
	events      orderEvents
	clearCart   bool
	now         func() time.Time
}

type CheckoutOptions struct {
	// ClearCart deletes the cart lines in the same transaction that
	// creates the order.
	ClearCart bool
}

func NewCheckoutService(db repository.DBTX, tx repository.Transactor, cartRepo CartStore, billingRepo BillingStore, orderRepo OrderStore, userRepo UserStore, rdb *redis.Client, writer EventWriter, opts CheckoutOptions) *CheckoutService {
	return &CheckoutService{
		db:          db,
		tx:          tx,
		cartRepo:    cartRepo,
		billingRepo: billingRepo,
		orderRepo:   orderRepo,
		userRepo:    userRepo,
		rdb:         rdb,
		events:      orderEvents{writer: writer},
		clearCart:   opts.ClearCart,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// Summary is what the checkout form is shown with.
type Summary struct {
	Cart    *entity.CartView    `json:"cart"`
	Profile *entity.UserProfile `json:"profile,omitempty"`
}

func (s *CheckoutService) Summary(ctx context.Context, userID int) (*Summary, error) {
	lines, err := s.cartRepo.ListLines(ctx, s.db, userID, false)
	if err != nil {
		logger.Error().Err(err).Msgf("Error listing cart of user %d", userID)
		return nil, err
	}
	view := entity.PriceLines(lines)

	profile, err := s.userRepo.GetProfileByUserID(ctx, s.db, userID)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		logger.Error().Err(err).Msgf("Error getting profile of user %d", userID)
		return nil, err
	}

	return &Summary{Cart: &view, Profile: profile}, nil
}

// Checkout validates the billing form and, in one transaction, stores the
// billing record and snapshots the locked cart into an order with one line
// per cart line. An empty cart yields ErrEmptyCart and writes nothing.
// A non-empty idempotencyKey makes a replay of the same submission fail
// with ErrDuplicateRequest.
func (s *CheckoutService) Checkout(ctx context.Context, userID int, form validation.BillingForm, idempotencyKey string) (*entity.Order, error) {
	billing, err := form.Validate()
	if err != nil {
		return nil, err
	}

	var redisKey string
	if idempotencyKey != "" {
		redisKey = fmt.Sprintf("idempotent-key:%d:%s", userID, idempotencyKey)
		ok, err := s.rdb.SetNX(ctx, redisKey, "exists", idempotencyTTL).Result()
		if err != nil {
			logger.Error().Err(err).Msg("Error checking idempotent key")
			return nil, err
		}
		if !ok {
			return nil, ErrDuplicateRequest
		}
	}

	var order *entity.Order
	err = s.tx.WithinTx(ctx, func(q repository.DBTX) error {
		lines, err := s.cartRepo.ListLines(ctx, q, userID, true)
		if err != nil {
			return err
		}
		if len(lines) == 0 {
			return ErrEmptyCart
		}

		billing.UserID = &userID
		stored, err := s.billingRepo.CreateBilling(ctx, q, &billing)
		if err != nil {
			return err
		}

		view := entity.PriceLines(lines)
		order = &entity.Order{
			UserID:        userID,
			BillingID:     stored.ID,
			OrderDate:     s.now(),
			TotalPrice:    view.Total,
			TotalQuantity: view.Quantity,
			Status:        entity.OrderStatusPending,
			Billing:       stored,
		}
		for _, line := range view.Lines {
			order.Lines = append(order.Lines, entity.OrderLine{
				ProductID: line.ProductID,
				Quantity:  line.Quantity,
				Price:     line.Product.Price,
			})
		}

		if _, err := s.orderRepo.CreateOrder(ctx, q, order); err != nil {
			return err
		}

		if s.clearCart {
			return s.cartRepo.Clear(ctx, q, userID)
		}
		return nil
	})
	if err != nil {
		if redisKey != "" {
			// the submission did not go through, so it may be retried, even
			// when it failed because the request was cancelled
			if delErr := s.rdb.Del(context.WithoutCancel(ctx), redisKey).Err(); delErr != nil {
				logger.Warn().Err(delErr).Msg("Error releasing idempotent key")
			}
		}
		if errors.Is(err, ErrEmptyCart) {
			return nil, err
		}
		logger.Error().Err(err).Msgf("Error creating order for user %d", userID)
		return nil, err
	}

	logger.Info().Msgf("Order %d created for user %d: %s over %d items", order.ID, userID, order.TotalPrice.StringFixed(2), order.TotalQuantity)
	s.events.publish(ctx, order, EventOrderCreated)

	return order, nil
}
