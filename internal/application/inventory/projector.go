package inventory

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger-api/internal/domain"
	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
	ledger "github.com/jhoicas/stock-ledger-api/internal/domain/inventory"
	"github.com/jhoicas/stock-ledger-api/internal/domain/repository"
	"github.com/jhoicas/stock-ledger-api/pkg/logger"
)

// StockProjector calcula el stock actual de un par (producto, tienda) a partir del ledger
// y reconstruye los saldos cuando hace falta reparar la cadena.
type StockProjector struct {
	txRunner TxRunner
	reads    ReadRepos
	policy   ledger.StockPolicy
	log      *logger.Logger
}

// NewStockProjector construye el proyector.
func NewStockProjector(txRunner TxRunner, reads ReadRepos, policy ledger.StockPolicy, log *logger.Logger) *StockProjector {
	return &StockProjector{txRunner: txRunner, reads: reads, policy: policy, log: log.Component("stock_projector")}
}

// VerificationReport resultado de auditar una cadena sin modificarla.
type VerificationReport struct {
	ProductID    string
	StoreID      string
	CurrentStock decimal.Decimal
	Movements    int
	Mismatches   []ledger.Mismatch
}

// Consistent indica si todos los saldos guardados coinciden con la reproducción.
func (r VerificationReport) Consistent() bool { return len(r.Mismatches) == 0 }

// GetCurrentStock suma con signo los movimientos no cancelados del par. Solo lectura.
func (p *StockProjector) GetCurrentStock(ctx context.Context, productID, storeID string) (decimal.Decimal, error) {
	if err := p.checkProduct(ctx, productID, storeID); err != nil {
		return decimal.Zero, err
	}
	return p.reads.Movements.SumSigned(ctx, productID, storeID)
}

// Recalculate recorre toda la cadena en orden y reescribe los BalanceAfter que no coincidan,
// en una sola transacción. Es una reparación: no rechaza saldos negativos, solo los reporta.
func (p *StockProjector) Recalculate(ctx context.Context, productID, storeID string) (decimal.Decimal, error) {
	var final decimal.Decimal
	err := p.txRunner.Run(ctx, func(
		movRepo repository.MovementRepository,
		productRepo repository.ProductRepository,
		_ repository.SupplierRepository,
	) error {
		product, err := productRepo.GetForUpdate(ctx, productID)
		if err != nil {
			return err
		}
		if product == nil || product.StoreID != storeID {
			return domain.ErrProductNotFound
		}
		res, err := rebalanceChain(ctx, movRepo, entity.ChainKey{ProductID: productID, StoreID: storeID}, ledger.StockPolicy{AllowNegative: true})
		if err != nil {
			return err
		}
		final = res.Final
		if len(res.Changed) > 0 {
			p.log.Warn().
				Str("product_id", productID).
				Str("store_id", storeID).
				Int("corrected", len(res.Changed)).
				Str("balance", final.String()).
				Msg("saldos corregidos en recálculo")
		}
		if !p.policy.Permits(final) {
			p.log.Warn().
				Str("product_id", productID).
				Str("store_id", storeID).
				Str("balance", final.String()).
				Msg("stock negativo tras recálculo")
		}
		return nil
	})
	if err != nil {
		return decimal.Zero, err
	}
	return final, nil
}

// Verify compara los saldos guardados con la reproducción, sin escribir.
func (p *StockProjector) Verify(ctx context.Context, productID, storeID string) (VerificationReport, error) {
	if err := p.checkProduct(ctx, productID, storeID); err != nil {
		return VerificationReport{}, err
	}
	chain, err := p.reads.Movements.ListChain(ctx, productID, storeID)
	if err != nil {
		return VerificationReport{}, err
	}
	current, mismatches := ledger.Audit(chain)
	return VerificationReport{
		ProductID:    productID,
		StoreID:      storeID,
		CurrentStock: current,
		Movements:    len(chain),
		Mismatches:   mismatches,
	}, nil
}

func (p *StockProjector) checkProduct(ctx context.Context, productID, storeID string) error {
	product, err := p.reads.Products.GetByID(ctx, productID)
	if err != nil {
		return err
	}
	if product == nil || product.StoreID != storeID {
		return domain.ErrProductNotFound
	}
	return nil
}

// rebalanceChain carga la cadena dentro de la tx actual, recalcula y persiste los saldos cambiados.
// El llamador debe tener bloqueada la fila del producto.
func rebalanceChain(ctx context.Context, movRepo repository.MovementRepository, key entity.ChainKey, policy ledger.StockPolicy) (ledger.RebalanceResult, error) {
	chain, err := movRepo.ListChain(ctx, key.ProductID, key.StoreID)
	if err != nil {
		return ledger.RebalanceResult{}, err
	}
	res := ledger.Rebalance(chain, policy)
	if res.FirstViolator != nil {
		return res, nil
	}
	if len(res.Changed) > 0 {
		if err := movRepo.UpdateBalances(ctx, res.Changed); err != nil {
			return res, fmt.Errorf("update balances: %w", err)
		}
	}
	return res, nil
}
