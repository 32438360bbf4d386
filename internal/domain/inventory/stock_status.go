package inventory

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
)

var hundred = decimal.NewFromInt(100)

// ClassifyStock clasifica el stock actual según StockMin, StockMax y AlertPercentage.
//   - OVERSTOCK: StockMax > 0 y stock > StockMax
//   - CRITICAL:  stock <= StockMin * AlertPercentage / 100
//   - LOW:       stock <= StockMin
//   - OK:        resto
func ClassifyStock(current decimal.Decimal, p *entity.Product) entity.StockStatus {
	if p.StockMax.IsPositive() && current.GreaterThan(p.StockMax) {
		return entity.StockStatusOverstock
	}
	critical := p.StockMin.Mul(p.AlertPercentage).Div(hundred)
	if current.LessThanOrEqual(critical) {
		return entity.StockStatusCritical
	}
	if current.LessThanOrEqual(p.StockMin) {
		return entity.StockStatusLow
	}
	return entity.StockStatusOK
}

// SuggestedOrderQty cantidad sugerida para reponer: hasta StockMax, o 2×StockMin si no hay máximo.
func SuggestedOrderQty(current decimal.Decimal, p *entity.Product) decimal.Decimal {
	target := p.StockMax
	if !target.IsPositive() {
		target = p.StockMin.Mul(decimal.NewFromInt(2))
	}
	qty := target.Sub(current)
	if qty.IsNegative() {
		return decimal.Zero
	}
	return qty
}
