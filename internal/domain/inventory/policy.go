package inventory

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// StockPolicy define si se tolera stock negativo en algún punto de la cadena.
// Por defecto no se permite; Allowance da un margen negativo acotado.
type StockPolicy struct {
	AllowNegative bool
	Allowance     decimal.Decimal
}

// Permits indica si un saldo es aceptable bajo la política.
func (p StockPolicy) Permits(balance decimal.Decimal) bool {
	if p.AllowNegative {
		return true
	}
	return balance.GreaterThanOrEqual(p.Allowance.Abs().Neg())
}

// ParseStockPolicy construye la política desde configuración; allowance vacío equivale a 0.
func ParseStockPolicy(allowNegative bool, allowance string) (StockPolicy, error) {
	p := StockPolicy{AllowNegative: allowNegative}
	if allowance == "" {
		return p, nil
	}
	d, err := decimal.NewFromString(allowance)
	if err != nil {
		return StockPolicy{}, fmt.Errorf("margen negativo inválido %q: %w", allowance, err)
	}
	p.Allowance = d.Abs()
	return p, nil
}
