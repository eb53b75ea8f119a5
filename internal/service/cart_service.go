package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"storefront/internal/entity"
	"storefront/internal/repository"
)

// CartService keeps the per-user cart ledger. Every operation is scoped to
// the requesting user.
type CartService struct {
	db          repository.DBTX
	cartRepo    CartStore
	productRepo ProductStore
}

func NewCartService(db repository.DBTX, cartRepo CartStore, productRepo ProductStore) *CartService {
	return &CartService{
		db:          db,
		cartRepo:    cartRepo,
		productRepo: productRepo,
	}
}

// Add puts one more of the product into the user's cart, creating the line
// on first add. The product is looked up in the database, not the catalog
// cache, so a product deleted since it was cached is not found.
func (s *CartService) Add(ctx context.Context, userID, productID int) (*entity.CartView, error) {
	_, err := s.productRepo.GetProductByID(ctx, s.db, productID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("product %d: %w", productID, ErrNotFound)
	}
	if err != nil {
		logger.Error().Err(err).Msgf("Error getting product by ID %d", productID)
		return nil, err
	}

	err = s.cartRepo.AddOne(ctx, s.db, userID, productID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("product %d: %w", productID, ErrNotFound)
	}
	if err != nil {
		logger.Error().Err(err).Msgf("Error adding product %d to cart of user %d", productID, userID)
		return nil, err
	}

	return s.List(ctx, userID)
}

// SetQuantity updates a line; a quantity of zero or less removes it.
func (s *CartService) SetQuantity(ctx context.Context, userID, lineID, quantity int) (*entity.CartView, error) {
	if _, err := s.cartRepo.GetLine(ctx, s.db, userID, lineID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("cart line %d: %w", lineID, ErrNotFound)
		}
		logger.Error().Err(err).Msgf("Error getting cart line %d", lineID)
		return nil, err
	}

	if quantity <= 0 {
		return s.Remove(ctx, userID, lineID)
	}

	if err := s.cartRepo.UpdateQuantity(ctx, s.db, userID, lineID, quantity); err != nil {
		logger.Error().Err(err).Msgf("Error updating cart line %d", lineID)
		return nil, err
	}

	return s.List(ctx, userID)
}

func (s *CartService) Remove(ctx context.Context, userID, lineID int) (*entity.CartView, error) {
	err := s.cartRepo.DeleteLine(ctx, s.db, userID, lineID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("cart line %d: %w", lineID, ErrNotFound)
	}
	if err != nil {
		logger.Error().Err(err).Msgf("Error deleting cart line %d", lineID)
		return nil, err
	}

	return s.List(ctx, userID)
}

// List returns the cart priced at current product prices.
func (s *CartService) List(ctx context.Context, userID int) (*entity.CartView, error) {
	lines, err := s.cartRepo.ListLines(ctx, s.db, userID, false)
	if err != nil {
		logger.Error().Err(err).Msgf("Error listing cart of user %d", userID)
		return nil, err
	}

	view := entity.PriceLines(lines)
	return &view, nil
}

func (s *CartService) Clear(ctx context.Context, userID int) error {
	if err := s.cartRepo.Clear(ctx, s.db, userID); err != nil {
		logger.Error().Err(err).Msgf("Error clearing cart of user %d", userID)
		return err
	}
	return nil
}
