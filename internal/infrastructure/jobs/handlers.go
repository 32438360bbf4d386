package jobs

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"

	"github.com/jhoicas/stock-ledger-api/internal/application/inventory"
	"github.com/jhoicas/stock-ledger-api/internal/domain"
	"github.com/jhoicas/stock-ledger-api/pkg/logger"
)

// NewRecalculateHandler procesa TaskRecalculateStock. Un par inexistente no se reintenta.
func NewRecalculateHandler(projector *inventory.StockProjector, log *logger.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		var p RecalculatePayload
		if err := json.Unmarshal(t.Payload(), &p); err != nil {
			return fmt.Errorf("payload inválido: %v: %w", err, asynq.SkipRetry)
		}
		stock, err := projector.Recalculate(ctx, p.ProductID, p.StoreID)
		if err != nil {
			if domain.KindOf(err) == domain.KindNotFound {
				return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
			}
			return err
		}
		log.Info().
			Str("product_id", p.ProductID).
			Str("store_id", p.StoreID).
			Str("stock", stock.String()).
			Msg("recálculo en segundo plano terminado")
		return nil
	}
}

// NewAuditHandler procesa TaskAuditLedger.
func NewAuditHandler(auditor *LedgerAuditor) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		var p AuditPayload
		if len(t.Payload()) > 0 {
			if err := json.Unmarshal(t.Payload(), &p); err != nil {
				return fmt.Errorf("payload inválido: %v: %w", err, asynq.SkipRetry)
			}
		}
		_, err := auditor.AuditAll(ctx, p.Repair)
		return err
	}
}
