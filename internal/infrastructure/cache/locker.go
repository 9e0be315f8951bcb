package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/bsm/redislock"
	"github.com/redis/go-redis/v9"

	"github.com/jhoicas/tienda-erp-api/internal/application/ports"
	"github.com/jhoicas/tienda-erp-api/pkg/logger"
)

var _ ports.Locker = (*Locker)(nil)

// Locker locks distribuidos con redislock. Si la clave está tomada reintenta
// cada 100 ms hasta el deadline del contexto o 50 intentos.
type Locker struct {
	client *redislock.Client
	log    *logger.Logger
}

// NewLocker construye el locker sobre el cliente Redis.
func NewLocker(rdb *redis.Client, log *logger.Logger) *Locker {
	if log == nil {
		log = logger.Nop()
	}
	return &Locker{client: redislock.New(rdb), log: log.Component("locker")}
}

// Acquire toma el lock "lock:<key>" por ttl. release libera el lock; los errores al liberar solo se registran.
func (l *Locker) Acquire(ctx context.Context, key string, ttl time.Duration) (func(), error) {
	lock, err := l.client.Obtain(ctx, "lock:"+key, ttl, &redislock.Options{
		RetryStrategy: redislock.LimitRetry(redislock.LinearBackoff(100*time.Millisecond), 50),
	})
	if err == redislock.ErrNotObtained {
		return nil, fmt.Errorf("lock %s ocupado: %w", key, err)
	}
	if err != nil {
		return nil, fmt.Errorf("lock %s: %w", key, err)
	}
	return func() {
		// Contexto propio: el de la petición puede estar cancelado al liberar.
		rctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := lock.Release(rctx); err != nil && err != redislock.ErrLockNotHeld {
			l.log.Warn().Err(err).Str("key", key).Msg("no se pudo liberar el lock")
		}
	}, nil
}
