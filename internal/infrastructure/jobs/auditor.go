package jobs

import (
	"context"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/jhoicas/stock-ledger-api/internal/application/inventory"
	"github.com/jhoicas/stock-ledger-api/internal/domain/repository"
	"github.com/jhoicas/stock-ledger-api/pkg/logger"
)

// AuditSummary resultado de auditar todas las cadenas.
type AuditSummary struct {
	Chains       int
	Inconsistent int
	Repaired     int
}

// LedgerAuditor recorre todas las cadenas con movimientos y compara saldos guardados contra
// la reproducción. Con repair=true recalcula las inconsistentes.
type LedgerAuditor struct {
	projector   *inventory.StockProjector
	movements   repository.MovementRepository
	concurrency int
	log         *logger.Logger
}

// NewLedgerAuditor construye el auditor. concurrency <= 0 usa 4.
func NewLedgerAuditor(projector *inventory.StockProjector, movements repository.MovementRepository, concurrency int, log *logger.Logger) *LedgerAuditor {
	if concurrency <= 0 {
		concurrency = 4
	}
	return &LedgerAuditor{projector: projector, movements: movements, concurrency: concurrency, log: log.Component("ledger_auditor")}
}

// AuditAll audita en paralelo (acotado). El primer error cancela el resto.
func (a *LedgerAuditor) AuditAll(ctx context.Context, repair bool) (AuditSummary, error) {
	keys, err := a.movements.ListChainKeys(ctx)
	if err != nil {
		return AuditSummary{}, err
	}

	var inconsistent, repaired atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.concurrency)
	for _, key := range keys {
		key := key
		g.Go(func() error {
			report, err := a.projector.Verify(gctx, key.ProductID, key.StoreID)
			if err != nil {
				return err
			}
			if report.Consistent() {
				return nil
			}
			inconsistent.Add(1)
			a.log.Warn().
				Str("product_id", key.ProductID).
				Str("store_id", key.StoreID).
				Int("mismatches", len(report.Mismatches)).
				Msg("cadena inconsistente")
			if !repair {
				return nil
			}
			if _, err := a.projector.Recalculate(gctx, key.ProductID, key.StoreID); err != nil {
				return err
			}
			repaired.Add(1)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return AuditSummary{}, err
	}

	summary := AuditSummary{
		Chains:       len(keys),
		Inconsistent: int(inconsistent.Load()),
		Repaired:     int(repaired.Load()),
	}
	a.log.Info().
		Int("chains", summary.Chains).
		Int("inconsistent", summary.Inconsistent).
		Int("repaired", summary.Repaired).
		Msg("auditoría del ledger terminada")
	return summary, nil
}
