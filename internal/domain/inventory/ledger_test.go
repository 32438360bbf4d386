package inventory

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
)

func mov(id string, typ entity.MovementType, qty int64, at time.Time, seq int64) *entity.Movement {
	return &entity.Movement{ID: id, Type: typ, Quantity: decimal.NewFromInt(qty), CreatedAt: at, Seq: seq}
}

func dec(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func TestSignedDelta(t *testing.T) {
	assert.True(t, dec(5).Equal(SignedDelta(entity.MovementTypeEntrada, dec(5))))
	assert.True(t, dec(-5).Equal(SignedDelta(entity.MovementTypeSaida, dec(5))))
	assert.True(t, dec(-5).Equal(SignedDelta(entity.MovementTypePerda, dec(5))))
}

func TestRebalance_OrdenCronologicoYCancelados(t *testing.T) {
	t0 := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	a := mov("a", entity.MovementTypeEntrada, 100, t0, 1)
	b := mov("b", entity.MovementTypeSaida, 30, t0.Add(time.Minute), 2)
	c := mov("c", entity.MovementTypePerda, 10, t0.Add(2*time.Minute), 3)
	b.Cancelled = true
	b.BalanceAfter = dec(70)

	// Desordenada a propósito.
	chain := []*entity.Movement{c, a, b}
	res := Rebalance(chain, StockPolicy{})

	assert.True(t, dec(90).Equal(res.Final))
	assert.Nil(t, res.FirstViolator)
	assert.True(t, dec(100).Equal(a.BalanceAfter))
	assert.True(t, dec(70).Equal(b.BalanceAfter), "el cancelado conserva su saldo histórico")
	assert.True(t, dec(90).Equal(c.BalanceAfter))
	assert.Equal(t, "a", chain[0].ID, "la cadena queda ordenada")
}

func TestRebalance_Idempotente(t *testing.T) {
	t0 := time.Now()
	chain := []*entity.Movement{
		mov("a", entity.MovementTypeEntrada, 10, t0, 1),
		mov("b", entity.MovementTypeSaida, 4, t0, 2),
	}
	first := Rebalance(chain, StockPolicy{})
	require.Len(t, first.Changed, 2)

	second := Rebalance(chain, StockPolicy{})
	assert.Empty(t, second.Changed)
	assert.True(t, first.Final.Equal(second.Final))
}

func TestRebalance_DetectaSaldoNegativo(t *testing.T) {
	t0 := time.Now()
	out := mov("out", entity.MovementTypeSaida, 8, t0.Add(time.Second), 2)
	chain := []*entity.Movement{
		mov("in", entity.MovementTypeEntrada, 5, t0, 1),
		out,
	}
	res := Rebalance(chain, StockPolicy{})
	require.NotNil(t, res.FirstViolator)
	assert.Equal(t, "out", res.FirstViolator.ID)

	res = Rebalance(chain, StockPolicy{Allowance: dec(3)})
	assert.Nil(t, res.FirstViolator, "la tolerancia cubre -3")

	res = Rebalance(chain, StockPolicy{AllowNegative: true})
	assert.Nil(t, res.FirstViolator)
}

func TestAudit_NoModificaLaCadena(t *testing.T) {
	t0 := time.Now()
	a := mov("a", entity.MovementTypeEntrada, 10, t0, 1)
	a.BalanceAfter = dec(10)
	b := mov("b", entity.MovementTypeSaida, 3, t0.Add(time.Second), 2)
	b.BalanceAfter = dec(9) // corrupto

	current, mismatches := Audit([]*entity.Movement{b, a})

	assert.True(t, dec(7).Equal(current))
	require.Len(t, mismatches, 1)
	assert.Equal(t, "b", mismatches[0].MovementID)
	assert.True(t, dec(7).Equal(mismatches[0].Expected))
	assert.True(t, dec(9).Equal(b.BalanceAfter))
}

func TestCurrentStock_IgnoraCancelados(t *testing.T) {
	t0 := time.Now()
	c := mov("c", entity.MovementTypeSaida, 50, t0, 2)
	c.Cancelled = true
	chain := []*entity.Movement{mov("a", entity.MovementTypeEntrada, 20, t0, 1), c}
	assert.True(t, dec(20).Equal(CurrentStock(chain)))
}
