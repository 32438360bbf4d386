package inventory

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/jhoicas/stock-ledger-api/internal/domain"
	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
	ledger "github.com/jhoicas/stock-ledger-api/internal/domain/inventory"
	"github.com/jhoicas/stock-ledger-api/internal/domain/repository"
)

// QueryUseCase lado de lectura del ledger. Nunca escribe.
type QueryUseCase struct {
	reads    ReadRepos
	resolver relationResolver
}

// NewQueryUseCase construye el caso de uso de consultas.
func NewQueryUseCase(reads ReadRepos) *QueryUseCase {
	return &QueryUseCase{reads: reads, resolver: relationResolver{reads: reads}}
}

// MovementPage página de movimientos con relaciones.
type MovementPage struct {
	Items  []*MovementDetail
	Total  int
	Limit  int
	Offset int
}

// List lista movimientos con filtros y paginación.
func (uc *QueryUseCase) List(ctx context.Context, filter repository.MovementFilter) (*MovementPage, error) {
	if filter.Type != "" && !filter.Type.Valid() {
		return nil, domain.ErrInvalidMovementType
	}
	items, total, err := uc.reads.Movements.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	details, err := uc.resolver.resolveMany(ctx, items)
	if err != nil {
		return nil, err
	}
	return &MovementPage{Items: details, Total: total, Limit: filter.Limit, Offset: filter.Offset}, nil
}

// GetByID devuelve el movimiento con relaciones o ErrMovementNotFound.
func (uc *QueryUseCase) GetByID(ctx context.Context, id string) (*MovementDetail, error) {
	m, err := uc.reads.Movements.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, domain.ErrMovementNotFound
	}
	return uc.resolver.resolve(ctx, m)
}

// ListByStore movimientos de una tienda.
func (uc *QueryUseCase) ListByStore(ctx context.Context, storeID string, filter repository.MovementFilter) (*MovementPage, error) {
	store, err := uc.reads.Stores.GetByID(ctx, storeID)
	if err != nil {
		return nil, err
	}
	if store == nil {
		return nil, domain.ErrStoreNotFound
	}
	filter.StoreID = storeID
	return uc.List(ctx, filter)
}

// ListByProduct movimientos de un producto.
func (uc *QueryUseCase) ListByProduct(ctx context.Context, productID string, filter repository.MovementFilter) (*MovementPage, error) {
	product, err := uc.reads.Products.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrProductNotFound
	}
	filter.ProductID = productID
	return uc.List(ctx, filter)
}

// ListBySupplier movimientos de un proveedor (activo o no).
func (uc *QueryUseCase) ListBySupplier(ctx context.Context, supplierID string, filter repository.MovementFilter) (*MovementPage, error) {
	supplier, err := uc.reads.Suppliers.GetByID(ctx, supplierID)
	if err != nil {
		return nil, err
	}
	if supplier == nil {
		return nil, domain.ErrSupplierNotFound
	}
	filter.SupplierID = supplierID
	return uc.List(ctx, filter)
}

// HistoryEntry un paso de la reproducción cronológica.
type HistoryEntry struct {
	Movement    *entity.Movement
	Balance     decimal.Decimal // saldo reproducido tras el movimiento
	AverageCost decimal.Decimal // costo promedio ponderado tras el movimiento
}

// StockHistory reproduce la cadena completa en orden y devuelve los pasos dentro del rango.
// La reproducción empieza siempre desde el primer movimiento para que Balance sea exacto
// aunque el rango empiece a mitad de la cadena. Los cancelados aparecen con el saldo sin cambio.
func (uc *QueryUseCase) StockHistory(ctx context.Context, productID, storeID string, from, to *time.Time) ([]HistoryEntry, error) {
	product, err := uc.reads.Products.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if product == nil || product.StoreID != storeID {
		return nil, domain.ErrProductNotFound
	}
	chain, err := uc.reads.Movements.ListChain(ctx, productID, storeID)
	if err != nil {
		return nil, err
	}
	ledger.SortChain(chain)

	out := make([]HistoryEntry, 0, len(chain))
	balance, cost := decimal.Zero, decimal.Zero
	for _, m := range chain {
		if !m.Cancelled {
			if m.Type == entity.MovementTypeEntrada && m.Price != nil {
				cost = ledger.WeightedAverageCost(balance, cost, m.Quantity, *m.Price)
			}
			balance = balance.Add(m.SignedQuantity())
		}
		if from != nil && m.CreatedAt.Before(*from) {
			continue
		}
		if to != nil && m.CreatedAt.After(*to) {
			continue
		}
		out = append(out, HistoryEntry{Movement: m, Balance: balance, AverageCost: cost})
	}
	return out, nil
}

// TypeTotal totales de un tipo de movimiento.
type TypeTotal struct {
	Count    int
	Quantity decimal.Decimal
	Value    decimal.Decimal
}

// Analytics totales agrupados por cada dimensión.
type Analytics struct {
	Totals     map[entity.MovementType]TypeTotal
	ByType     []repository.AggregateRow
	ByMonth    []repository.AggregateRow
	ByStore    []repository.AggregateRow
	ByProduct  []repository.AggregateRow
	BySupplier []repository.AggregateRow
}

// Analytics calcula los agregados en paralelo. Los cancelados no cuentan salvo que el
// filtro los incluya explícitamente.
func (uc *QueryUseCase) Analytics(ctx context.Context, filter repository.MovementFilter) (*Analytics, error) {
	filter.Limit, filter.Offset = 0, 0
	out := &Analytics{}

	g, gctx := errgroup.WithContext(ctx)
	targets := []struct {
		dim  repository.AggregateDimension
		dest *[]repository.AggregateRow
	}{
		{repository.DimensionType, &out.ByType},
		{repository.DimensionMonth, &out.ByMonth},
		{repository.DimensionStore, &out.ByStore},
		{repository.DimensionProduct, &out.ByProduct},
		{repository.DimensionSupplier, &out.BySupplier},
	}
	for _, t := range targets {
		g.Go(func() error {
			rows, err := uc.reads.Movements.Aggregate(gctx, filter, t.dim)
			if err != nil {
				return err
			}
			*t.dest = rows
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out.Totals = map[entity.MovementType]TypeTotal{
		entity.MovementTypeEntrada: {Quantity: decimal.Zero, Value: decimal.Zero},
		entity.MovementTypeSaida:   {Quantity: decimal.Zero, Value: decimal.Zero},
		entity.MovementTypePerda:   {Quantity: decimal.Zero, Value: decimal.Zero},
	}
	for _, r := range out.ByType {
		t := out.Totals[r.Type]
		t.Count += r.Count
		t.Quantity = t.Quantity.Add(r.Quantity)
		t.Value = t.Value.Add(r.Value)
		out.Totals[r.Type] = t
	}
	return out, nil
}
