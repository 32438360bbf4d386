package inventory

import (
	"context"
	"fmt"

	"github.com/jhoicas/stock-ledger-api/internal/domain"
)

// BulkItemResult resultado de un ítem del lote.
type BulkItemResult struct {
	Index    int
	Success  bool
	Movement *MovementDetail
	Error    *domain.Error
}

// BulkResult resumen del lote.
type BulkResult struct {
	SuccessCount int
	FailureCount int
	Results      []BulkItemResult
}

// CreateBulk aplica Create a cada ítem en orden, cada uno en su propia transacción.
// Un ítem fallido no revierte los anteriores ni detiene los siguientes.
// Si un ítem trae IdempotencyKey se usa "clave:índice" para no chocar entre ítems del lote.
func (uc *MovementUseCase) CreateBulk(ctx context.Context, items []MovementInput, actor string) BulkResult {
	out := BulkResult{Results: make([]BulkItemResult, 0, len(items))}
	for i, item := range items {
		if actor != "" && item.UserID == "" {
			item.UserID = actor
		}
		if item.IdempotencyKey != "" {
			item.IdempotencyKey = fmt.Sprintf("%s:%d", item.IdempotencyKey, i)
		}

		res := BulkItemResult{Index: i}
		detail, err := uc.Create(ctx, item)
		if err != nil {
			res.Error = uc.bulkError(i, err)
			out.FailureCount++
			uc.log.Debug().
				Int("index", i).
				Str("code", res.Error.Code).
				Msg("ítem de lote rechazado")
		} else {
			res.Success = true
			res.Movement = detail
			out.SuccessCount++
		}
		out.Results = append(out.Results, res)
	}
	uc.log.Info().
		Int("success", out.SuccessCount).
		Int("failure", out.FailureCount).
		Msg("lote de movimientos procesado")
	return out
}

// bulkError los errores sin tipo (driver, SQL) se registran en log y al cliente solo le llega
// un mensaje genérico, igual que en el alta individual.
func (uc *MovementUseCase) bulkError(index int, err error) *domain.Error {
	if de, ok := domain.AsError(err); ok {
		return de
	}
	uc.log.Error().Err(err).Int("index", index).Msg("error interno en ítem de lote")
	return &domain.Error{Kind: domain.KindInternal, Code: "INTERNAL", Message: "error interno"}
}
