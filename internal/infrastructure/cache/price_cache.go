package cache

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jhoicas/tienda-erp-api/internal/application/ports"
)

var _ ports.PriceCache = (*PriceCache)(nil)

const priceListPrefix = "portal:pricelist:"

// PriceCache guarda el JSON de cada lista pública bajo portal:pricelist:<id>.
type PriceCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewPriceCache construye el caché. ttl <= 0 usa 5 minutos.
func NewPriceCache(rdb *redis.Client, ttl time.Duration) *PriceCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &PriceCache{rdb: rdb, ttl: ttl}
}

// Key devuelve la clave Redis de la lista.
func Key(listID string) string { return priceListPrefix + listID }

func (c *PriceCache) Get(ctx context.Context, listID string) ([]byte, bool, error) {
	raw, err := c.rdb.Get(ctx, Key(listID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return raw, true, nil
}

func (c *PriceCache) Set(ctx context.Context, listID string, payload []byte) error {
	return c.rdb.Set(ctx, Key(listID), payload, c.ttl).Err()
}

func (c *PriceCache) Invalidate(ctx context.Context, listID string) error {
	return c.rdb.Del(ctx, Key(listID)).Err()
}
