package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product representa un producto vendido en una tienda.
// No guarda stock: el stock actual siempre se deriva del ledger de movimientos.
type Product struct {
	ID              string
	StoreID         string
	SKU             string
	Name            string
	StockMin        decimal.Decimal
	StockMax        decimal.Decimal // 0 = sin máximo
	AlertPercentage decimal.Decimal // % de StockMin bajo el cual el stock es crítico
	Active          bool
	CreatedAt       time.Time
	UpdatedAt       time.Time
}
