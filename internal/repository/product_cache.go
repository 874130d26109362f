package repository

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"storefront/internal/model"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const productListKey = "products:all"

func productKey(id int64) string { return "product:" + strconv.FormatInt(id, 10) }

// cachedProductRepository serves product reads from Redis, falling back to
// the wrapped repository on a miss or when Redis is unavailable.
type cachedProductRepository struct {
	next   ProductRepository
	client *redis.Client
	ttl    time.Duration
	logger zerolog.Logger
}

// NewCachedProductRepository wraps next with a Redis cache-aside layer.
func NewCachedProductRepository(next ProductRepository, client *redis.Client, ttl time.Duration, logger zerolog.Logger) ProductRepository {
	return &cachedProductRepository{
		next:   next,
		client: client,
		ttl:    ttl,
		logger: logger.With().Str("repository", "product_cache").Logger(),
	}
}

func (r *cachedProductRepository) GetAll(ctx context.Context) ([]model.Product, error) {
	var products []model.Product
	if r.getJSON(ctx, productListKey, &products) {
		return products, nil
	}

	products, err := r.next.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	r.setJSON(ctx, productListKey, products)
	return products, nil
}

func (r *cachedProductRepository) GetByID(ctx context.Context, id int64) (*model.Product, error) {
	var p model.Product
	if r.getJSON(ctx, productKey(id), &p) {
		return &p, nil
	}

	product, err := r.next.GetByID(ctx, id)
	if err != nil || product == nil {
		return product, err
	}

	r.setJSON(ctx, productKey(id), product)
	return product, nil
}

// UpsertMany writes through to the wrapped repository and drops the cached
// entries it touched.
func (r *cachedProductRepository) UpsertMany(ctx context.Context, products []model.Product) error {
	if err := r.next.UpsertMany(ctx, products); err != nil {
		return err
	}

	keys := make([]string, 0, len(products)+1)
	keys = append(keys, productListKey)
	for _, p := range products {
		keys = append(keys, productKey(p.ID))
	}

	if err := r.client.Del(ctx, keys...).Err(); err != nil {
		r.logger.Warn().Err(err).Int("keys", len(keys)).Msg("failed to invalidate product cache")
	}
	return nil
}

func (r *cachedProductRepository) getJSON(ctx context.Context, key string, dst any) bool {
	data, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			r.logger.Warn().Err(err).Str("key", key).Msg("cache read failed")
		}
		return false
	}

	if err := json.Unmarshal(data, dst); err != nil {
		r.logger.Warn().Err(err).Str("key", key).Msg("discarding corrupt cache entry")
		return false
	}
	return true
}

func (r *cachedProductRepository) setJSON(ctx context.Context, key string, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := r.client.Set(ctx, key, data, r.ttl).Err(); err != nil {
		r.logger.Warn().Err(err).Str("key", key).Msg("cache write failed")
	}
}
