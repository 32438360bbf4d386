package inventory

import "github.com/shopspring/decimal"

// WeightedAverageCost implementa el costo promedio ponderado tras una entrada.
// NuevoCosto = ((StockActual * CostoActual) + (CantEntrada * CostoEntrada)) / (StockActual + CantEntrada)
func WeightedAverageCost(stock, currentCost, inQty, inCost decimal.Decimal) decimal.Decimal {
	if stock.IsNegative() {
		// Con saldo negativo el costo anterior no aporta valor.
		stock = decimal.Zero
	}
	sum := stock.Add(inQty)
	if sum.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}
	num := stock.Mul(currentCost).Add(inQty.Mul(inCost))
	return num.Div(sum)
}
