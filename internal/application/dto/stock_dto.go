package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// StockResponse stock actual de un par (producto, tienda).
type StockResponse struct {
	ProductID         string          `json:"product_id"`
	StoreID           string          `json:"store_id"`
	CurrentStock      decimal.Decimal `json:"current_stock"`
	Status            string          `json:"status"`
	StockMin          decimal.Decimal `json:"stock_min"`
	StockMax          decimal.Decimal `json:"stock_max"`
	SuggestedOrderQty decimal.Decimal `json:"suggested_order_qty"`
}

// RecalculateRequest body para POST /api/stock/recalculate.
// Async=true encola el recálculo en el worker en lugar de ejecutarlo en la petición.
type RecalculateRequest struct {
	ProductID string `json:"product_id" validate:"required"`
	StoreID   string `json:"store_id" validate:"required"`
	Async     bool   `json:"async"`
}

// RecalculateResponse resultado del recálculo.
type RecalculateResponse struct {
	ProductID    string           `json:"product_id"`
	StoreID      string           `json:"store_id"`
	CurrentStock *decimal.Decimal `json:"current_stock,omitempty"`
	Queued       bool             `json:"queued"`
	TaskID       string           `json:"task_id,omitempty"`
}

// MismatchResponse saldo guardado distinto del reproducido.
type MismatchResponse struct {
	MovementID string          `json:"movement_id"`
	Stored     decimal.Decimal `json:"stored"`
	Expected   decimal.Decimal `json:"expected"`
}

// StockVerificationResponse auditoría de una cadena.
type StockVerificationResponse struct {
	ProductID    string             `json:"product_id"`
	StoreID      string             `json:"store_id"`
	CurrentStock decimal.Decimal    `json:"current_stock"`
	Movements    int                `json:"movements"`
	Consistent   bool               `json:"consistent"`
	Mismatches   []MismatchResponse `json:"mismatches"`
}

// StockHistoryEntry paso de la reproducción cronológica.
type StockHistoryEntry struct {
	MovementID  string          `json:"movement_id"`
	Type        string          `json:"type"`
	Quantity    decimal.Decimal `json:"quantity"`
	Cancelled   bool            `json:"cancelled"`
	Balance     decimal.Decimal `json:"balance"`
	AverageCost decimal.Decimal `json:"average_cost"`
	CreatedAt   time.Time       `json:"created_at"`
}

// StockHistoryResponse historial de un par.
type StockHistoryResponse struct {
	ProductID string              `json:"product_id"`
	StoreID   string              `json:"store_id"`
	Entries   []StockHistoryEntry `json:"entries"`
}

// LowStockItem producto bajo mínimo.
type LowStockItem struct {
	ProductID         string          `json:"product_id"`
	SKU               string          `json:"sku"`
	ProductName       string          `json:"product_name"`
	CurrentStock      decimal.Decimal `json:"current_stock"`
	StockMin          decimal.Decimal `json:"stock_min"`
	Status            string          `json:"status"`
	Deficit           decimal.Decimal `json:"deficit"`
	SuggestedOrderQty decimal.Decimal `json:"suggested_order_qty"`
}

// LowStockResponse listado de bajo stock de una tienda.
type LowStockResponse struct {
	StoreID string         `json:"store_id"`
	Total   int            `json:"total"`
	Items   []LowStockItem `json:"items"`
}

// AggregateRowResponse total de una clave de dimensión y tipo.
type AggregateRowResponse struct {
	Key      string          `json:"key"`
	Type     string          `json:"type"`
	Count    int             `json:"count"`
	Quantity decimal.Decimal `json:"quantity"`
	Value    decimal.Decimal `json:"value"`
}

// TypeTotalResponse totales por tipo.
type TypeTotalResponse struct {
	Count    int             `json:"count"`
	Quantity decimal.Decimal `json:"quantity"`
	Value    decimal.Decimal `json:"value"`
}

// MovementAnalyticsResponse agregados del ledger.
type MovementAnalyticsResponse struct {
	Totals     map[string]TypeTotalResponse `json:"totals"`
	ByType     []AggregateRowResponse       `json:"by_type"`
	ByMonth    []AggregateRowResponse       `json:"by_month"`
	ByStore    []AggregateRowResponse       `json:"by_store"`
	ByProduct  []AggregateRowResponse       `json:"by_product"`
	BySupplier []AggregateRowResponse       `json:"by_supplier"`
}
