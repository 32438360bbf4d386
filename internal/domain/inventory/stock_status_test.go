package inventory

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
)

func TestClassifyStock(t *testing.T) {
	p := &entity.Product{StockMin: dec(10), StockMax: dec(100), AlertPercentage: dec(50)}

	tests := []struct {
		name    string
		current int64
		want    entity.StockStatus
	}{
		{"sobre máximo", 101, entity.StockStatusOverstock},
		{"en máximo", 100, entity.StockStatusOK},
		{"normal", 40, entity.StockStatusOK},
		{"en mínimo", 10, entity.StockStatusLow},
		{"bajo mínimo", 6, entity.StockStatusLow},
		{"crítico", 5, entity.StockStatusCritical},
		{"sin stock", 0, entity.StockStatusCritical},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyStock(dec(tt.current), p))
		})
	}
}

func TestClassifyStock_SinMaximo(t *testing.T) {
	p := &entity.Product{StockMin: dec(5)}
	assert.Equal(t, entity.StockStatusOK, ClassifyStock(dec(1000), p))
	assert.Equal(t, entity.StockStatusCritical, ClassifyStock(decimal.Zero, p))
}

func TestSuggestedOrderQty(t *testing.T) {
	assert.True(t, dec(96).Equal(SuggestedOrderQty(dec(4), &entity.Product{StockMin: dec(10), StockMax: dec(100)})))
	assert.True(t, dec(16).Equal(SuggestedOrderQty(dec(4), &entity.Product{StockMin: dec(10)})))
	assert.True(t, decimal.Zero.Equal(SuggestedOrderQty(dec(40), &entity.Product{StockMin: dec(10)})))
}

func TestWeightedAverageCost(t *testing.T) {
	got := WeightedAverageCost(dec(10), dec(100), dec(10), dec(200))
	assert.True(t, dec(150).Equal(got))

	assert.True(t, decimal.Zero.Equal(WeightedAverageCost(decimal.Zero, decimal.Zero, decimal.Zero, dec(5))))
	assert.True(t, dec(7).Equal(WeightedAverageCost(dec(-3), dec(100), dec(2), dec(7))),
		"un saldo negativo no arrastra costo")
}
