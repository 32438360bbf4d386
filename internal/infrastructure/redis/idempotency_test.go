package redis

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-ledger-api/internal/domain"
)

func newTestStore(t *testing.T, ttl time.Duration) (*IdempotencyStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewIdempotencyStore(client, ttl), mr
}

func TestReserve_SegundaVezEsDuplicado(t *testing.T) {
	store, mr := newTestStore(t, time.Minute)
	ctx := context.Background()

	require.NoError(t, store.Reserve(ctx, "abc"))
	assert.True(t, mr.Exists(idempotencyPrefix+"abc"))
	assert.ErrorIs(t, store.Reserve(ctx, "abc"), domain.ErrDuplicateRequest)
	require.NoError(t, store.Reserve(ctx, "abc:1"), "claves distintas no chocan")
}

func TestRelease_PermiteReintentar(t *testing.T) {
	store, _ := newTestStore(t, time.Minute)
	ctx := context.Background()

	require.NoError(t, store.Reserve(ctx, "k"))
	require.NoError(t, store.Release(ctx, "k"))
	require.NoError(t, store.Reserve(ctx, "k"))
}

func TestReserve_ExpiraConTTL(t *testing.T) {
	store, mr := newTestStore(t, time.Minute)
	ctx := context.Background()

	require.NoError(t, store.Reserve(ctx, "k"))
	assert.Equal(t, time.Minute, mr.TTL(idempotencyPrefix+"k"))
	mr.FastForward(2 * time.Minute)
	require.NoError(t, store.Reserve(ctx, "k"))
}

func TestReserve_RedisCaido(t *testing.T) {
	store, mr := newTestStore(t, time.Minute)
	mr.Close()

	err := store.Reserve(context.Background(), "k")
	require.Error(t, err)
	assert.Equal(t, domain.KindInternal, domain.KindOf(err))
}
