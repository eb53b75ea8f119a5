package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"storefront/internal/entity"
	"storefront/internal/repository"
)

// CatalogService serves the read-only product catalog, caching single
// products in redis. The cache is never authoritative: any redis failure
// falls through to the database.
type CatalogService struct {
	db          repository.DBTX
	productRepo ProductStore
	rdb         *redis.Client
	ttl         time.Duration
}

// NewCatalogService creates a new instance of CatalogService.
func NewCatalogService(db repository.DBTX, productRepo ProductStore, rdb *redis.Client, ttl time.Duration) *CatalogService {
	return &CatalogService{
		db:          db,
		productRepo: productRepo,
		rdb:         rdb,
		ttl:         ttl,
	}
}

func productKey(id int) string {
	return fmt.Sprintf("product:%d", id)
}

// ListProducts returns every product, ordered by id.
func (s *CatalogService) ListProducts(ctx context.Context) ([]entity.Product, error) {
	products, err := s.productRepo.GetProducts(ctx, s.db)
	if err != nil {
		logger.Error().Err(err).Msg("Error getting products")
		return nil, err
	}
	return products, nil
}

// GetProduct returns one product, or ErrNotFound.
func (s *CatalogService) GetProduct(ctx context.Context, id int) (*entity.Product, error) {
	key := productKey(id)
	productCache, err := s.rdb.Get(ctx, key).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		logger.Warn().Err(err).Msgf("Error getting product %d from cache", id)
	}

	if productCache != "" {
		var product entity.Product
		if err := json.Unmarshal([]byte(productCache), &product); err == nil {
			return &product, nil
		}
		logger.Warn().Msgf("Discarding unreadable cache entry for product %d", id)
	}

	product, err := s.productRepo.GetProductByID(ctx, s.db, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("product %d: %w", id, ErrNotFound)
	}
	if err != nil {
		logger.Error().Err(err).Msgf("Error getting product by ID %d", id)
		return nil, err
	}

	s.cache(ctx, product)
	return product, nil
}

// PreWarmCache loads every product into the cache.
func (s *CatalogService) PreWarmCache(ctx context.Context) error {
	products, err := s.productRepo.GetProducts(ctx, s.db)
	if err != nil {
		logger.Error().Err(err).Msg("Error getting products")
		return err
	}

	for i := range products {
		s.cache(ctx, &products[i])
	}

	logger.Info().Msgf("Cached %d products", len(products))
	return nil
}

func (s *CatalogService) cache(ctx context.Context, product *entity.Product) {
	data, err := json.Marshal(product)
	if err != nil {
		logger.Error().Err(err).Msgf("Error marshalling product %d", product.ID)
		return
	}

	if err := s.rdb.Set(ctx, productKey(product.ID), data, s.ttl).Err(); err != nil {
		logger.Warn().Err(err).Msgf("Error setting product %d in cache", product.ID)
	}
}
