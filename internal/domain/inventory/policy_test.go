package inventory_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-ledger-api/internal/domain/inventory"
)

func TestStockPolicy_Permits(t *testing.T) {
	strict := inventory.StockPolicy{}
	assert.True(t, strict.Permits(decimal.Zero))
	assert.False(t, strict.Permits(decimal.NewFromInt(-1)))

	margin := inventory.StockPolicy{Allowance: decimal.NewFromInt(5)}
	assert.True(t, margin.Permits(decimal.NewFromInt(-5)))
	assert.False(t, margin.Permits(decimal.NewFromFloat(-5.01)))

	free := inventory.StockPolicy{AllowNegative: true}
	assert.True(t, free.Permits(decimal.NewFromInt(-1000)))
}

func TestParseStockPolicy(t *testing.T) {
	p, err := inventory.ParseStockPolicy(false, "")
	require.NoError(t, err)
	assert.True(t, p.Allowance.IsZero())

	// El signo del margen no importa: siempre es tolerancia hacia abajo.
	p, err = inventory.ParseStockPolicy(false, "-2.5")
	require.NoError(t, err)
	assert.Equal(t, "2.5", p.Allowance.String())

	_, err = inventory.ParseStockPolicy(false, "dos")
	require.Error(t, err)
}
