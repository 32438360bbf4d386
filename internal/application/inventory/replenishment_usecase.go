package inventory

import (
	"context"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger-api/internal/domain"
	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
	ledger "github.com/jhoicas/stock-ledger-api/internal/domain/inventory"
)

// ReplenishmentUseCase detecta productos con stock bajo en una tienda.
// El stock se deriva siempre del ledger; aquí no se guarda nada.
type ReplenishmentUseCase struct {
	reads ReadRepos
}

// NewReplenishmentUseCase construye el caso de uso de reposición.
func NewReplenishmentUseCase(reads ReadRepos) *ReplenishmentUseCase {
	return &ReplenishmentUseCase{reads: reads}
}

// StockStatusItem stock de un producto clasificado frente a su política.
type StockStatusItem struct {
	Product           *entity.Product
	CurrentStock      decimal.Decimal
	Status            entity.StockStatus
	Deficit           decimal.Decimal // StockMin - CurrentStock (0 si no hay déficit)
	SuggestedOrderQty decimal.Decimal
}

// ListLowStock productos activos de la tienda con stock actual <= StockMin,
// ordenados por mayor déficit primero.
func (uc *ReplenishmentUseCase) ListLowStock(ctx context.Context, storeID string) ([]StockStatusItem, error) {
	store, err := uc.reads.Stores.GetByID(ctx, storeID)
	if err != nil {
		return nil, err
	}
	if store == nil {
		return nil, domain.ErrStoreNotFound
	}

	products, err := uc.reads.Products.ListByStore(ctx, storeID)
	if err != nil {
		return nil, err
	}
	stock, err := uc.reads.Movements.CurrentStockByStore(ctx, storeID)
	if err != nil {
		return nil, err
	}

	items := make([]StockStatusItem, 0)
	for _, p := range products {
		if !p.Active {
			continue
		}
		current := stock[p.ID] // sin movimientos = 0
		if current.GreaterThan(p.StockMin) {
			continue
		}
		items = append(items, statusItem(p, current))
	}

	sort.SliceStable(items, func(i, j int) bool {
		if !items[i].Deficit.Equal(items[j].Deficit) {
			return items[i].Deficit.GreaterThan(items[j].Deficit)
		}
		return items[i].Product.SKU < items[j].Product.SKU
	})
	return items, nil
}

// ProductStockStatus stock actual y clasificación de un producto.
func (uc *ReplenishmentUseCase) ProductStockStatus(ctx context.Context, productID, storeID string) (*StockStatusItem, error) {
	p, err := uc.reads.Products.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if p == nil || p.StoreID != storeID {
		return nil, domain.ErrProductNotFound
	}
	current, err := uc.reads.Movements.SumSigned(ctx, productID, storeID)
	if err != nil {
		return nil, err
	}
	item := statusItem(p, current)
	return &item, nil
}

func statusItem(p *entity.Product, current decimal.Decimal) StockStatusItem {
	deficit := p.StockMin.Sub(current)
	if deficit.IsNegative() {
		deficit = decimal.Zero
	}
	return StockStatusItem{
		Product:           p,
		CurrentStock:      current,
		Status:            ledger.ClassifyStock(current, p),
		Deficit:           deficit,
		SuggestedOrderQty: ledger.SuggestedOrderQty(current, p),
	}
}
