package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache define a interface do cache de leitura de produtos. Falhas de cache
// nunca falham o chamador; o caminho de leitura degrada para o banco.
type Cache interface {
	GetProduct(ctx context.Context, id string) (*Product, error)
	SetProduct(ctx context.Context, product *Product) error
	DeleteProduct(ctx context.Context, id string) error
}

const productCacheTTL = 5 * time.Minute

// RedisCache implementa Cache usando Redis (cache-aside)
type RedisCache struct {
	rdb *redis.Client
}

// NewRedisCache cria uma nova instância de RedisCache
func NewRedisCache(rdb *redis.Client) *RedisCache {
	return &RedisCache{rdb: rdb}
}

func productKey(id string) string {
	return fmt.Sprintf("product:%s", id)
}

func (c *RedisCache) GetProduct(ctx context.Context, id string) (*Product, error) {
	data, err := c.rdb.Get(ctx, productKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var product Product
	if err := json.Unmarshal(data, &product); err != nil {
		return nil, err
	}
	return &product, nil
}

func (c *RedisCache) SetProduct(ctx context.Context, product *Product) error {
	data, err := json.Marshal(product)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, productKey(product.ID), data, productCacheTTL).Err()
}

func (c *RedisCache) DeleteProduct(ctx context.Context, id string) error {
	return c.rdb.Del(ctx, productKey(id)).Err()
}

// NoopCache é usado quando o Redis não está configurado
type NoopCache struct{}

func (NoopCache) GetProduct(ctx context.Context, id string) (*Product, error) { return nil, nil }
func (NoopCache) SetProduct(ctx context.Context, product *Product) error      { return nil }
func (NoopCache) DeleteProduct(ctx context.Context, id string) error          { return nil }
