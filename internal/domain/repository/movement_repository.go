package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
)

// MovementFilter filtros de listado del ledger.
type MovementFilter struct {
	StoreID          string
	ProductID        string
	SupplierID       string
	Type             entity.MovementType
	From             *time.Time
	To               *time.Time
	Verified         *bool
	IncludeCancelled bool
	Ascending        bool // por defecto más recientes primero
	Limit            int  // 0 = sin límite
	Offset           int
}

// AggregateDimension dimensión de agrupación para analítica.
type AggregateDimension string

const (
	DimensionType     AggregateDimension = "type"
	DimensionMonth    AggregateDimension = "month"
	DimensionStore    AggregateDimension = "store"
	DimensionProduct  AggregateDimension = "product"
	DimensionSupplier AggregateDimension = "supplier"
)

// AggregateRow total por (clave de dimensión, tipo de movimiento).
type AggregateRow struct {
	Key      string // valor de la dimensión (YYYY-MM para month, "" si sin proveedor)
	Type     entity.MovementType
	Count    int
	Quantity decimal.Decimal
	Value    decimal.Decimal // Σ quantity*price de los movimientos con precio
}

// MovementRepository puerto del ledger de stock. Las implementaciones deben poder atarse a
// una transacción (ver TxRunner) para que lectura de saldo y escritura sean atómicas.
type MovementRepository interface {
	// Create persiste el movimiento y le asigna Seq.
	Create(ctx context.Context, m *entity.Movement) error
	// GetByID devuelve nil, nil si no existe.
	GetByID(ctx context.Context, id string) (*entity.Movement, error)
	// Update reescribe los campos mutables del movimiento salvo BalanceAfter
	// (que solo escriben Create y UpdateBalances).
	Update(ctx context.Context, m *entity.Movement) error
	// UpdateBalances persiste solo BalanceAfter de los movimientos dados.
	UpdateBalances(ctx context.Context, ms []*entity.Movement) error
	Delete(ctx context.Context, id string) error

	// ListChain devuelve la cadena completa (incluye cancelados) en orden (CreatedAt, Seq).
	ListChain(ctx context.Context, productID, storeID string) ([]*entity.Movement, error)
	// LatestInChain último movimiento de la cadena (incluye cancelados); nil si vacía.
	LatestInChain(ctx context.Context, productID, storeID string) (*entity.Movement, error)
	// SumSigned suma con signo de los no cancelados.
	SumSigned(ctx context.Context, productID, storeID string) (decimal.Decimal, error)

	List(ctx context.Context, filter MovementFilter) ([]*entity.Movement, int, error)
	Aggregate(ctx context.Context, filter MovementFilter, dim AggregateDimension) ([]AggregateRow, error)
	// CurrentStockByStore stock derivado de cada producto con movimientos en la tienda.
	CurrentStockByStore(ctx context.Context, storeID string) (map[string]decimal.Decimal, error)
	// ListChainKeys todas las cadenas con al menos un movimiento.
	ListChainKeys(ctx context.Context) ([]entity.ChainKey, error)
}
