package redis

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/jhoicas/stock-ledger-api/internal/application/inventory"
	"github.com/jhoicas/stock-ledger-api/internal/domain"
)

var _ inventory.IdempotencyStore = (*IdempotencyStore)(nil)

const idempotencyPrefix = "idem:movement:"

// IdempotencyStore reserva claves con SET NX y TTL: la primera alta gana, las repetidas
// dentro del TTL reciben ErrDuplicateRequest.
type IdempotencyStore struct {
	client *goredis.Client
	ttl    time.Duration
}

// NewIdempotencyStore construye el store. ttl <= 0 usa 24h.
func NewIdempotencyStore(client *goredis.Client, ttl time.Duration) *IdempotencyStore {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &IdempotencyStore{client: client, ttl: ttl}
}

// Reserve toma la clave o devuelve ErrDuplicateRequest si ya existe.
func (s *IdempotencyStore) Reserve(ctx context.Context, key string) error {
	ok, err := s.client.SetNX(ctx, idempotencyPrefix+key, time.Now().UTC().Format(time.RFC3339), s.ttl).Result()
	if err != nil {
		return fmt.Errorf("reserve idempotency key: %w", err)
	}
	if !ok {
		return domain.ErrDuplicateRequest
	}
	return nil
}

// Release libera la clave (el alta falló y puede reintentarse).
func (s *IdempotencyStore) Release(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, idempotencyPrefix+key).Err(); err != nil {
		return fmt.Errorf("release idempotency key: %w", err)
	}
	return nil
}
