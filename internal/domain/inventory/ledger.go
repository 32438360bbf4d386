package inventory

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
)

// SignedDelta devuelve el efecto de un movimiento sobre el saldo.
func SignedDelta(t entity.MovementType, qty decimal.Decimal) decimal.Decimal {
	if t.Decreases() {
		return qty.Neg()
	}
	return qty
}

// SortChain ordena la cadena en orden cronológico (CreatedAt, Seq).
func SortChain(chain []*entity.Movement) {
	sort.SliceStable(chain, func(i, j int) bool { return chain[i].Before(chain[j]) })
}

// CurrentStock suma con signo los movimientos no cancelados.
func CurrentStock(chain []*entity.Movement) decimal.Decimal {
	total := decimal.Zero
	for _, m := range chain {
		if m.Cancelled {
			continue
		}
		total = total.Add(m.SignedQuantity())
	}
	return total
}

// RebalanceResult resultado de reproducir una cadena.
type RebalanceResult struct {
	Final         decimal.Decimal
	Changed       []*entity.Movement // movimientos cuyo BalanceAfter fue corregido
	FirstViolator *entity.Movement   // primer movimiento cuyo saldo viola la política (nil si ninguno)
}

// Rebalance recorre la cadena en orden y recalcula BalanceAfter de cada movimiento no
// cancelado. Los cancelados conservan el saldo que tenían al cancelarse.
// La cadena se ordena in situ.
func Rebalance(chain []*entity.Movement, policy StockPolicy) RebalanceResult {
	SortChain(chain)
	res := RebalanceResult{Final: decimal.Zero}
	for _, m := range chain {
		if m.Cancelled {
			continue
		}
		res.Final = res.Final.Add(m.SignedQuantity())
		if res.FirstViolator == nil && m.Type.Decreases() && !policy.Permits(res.Final) {
			res.FirstViolator = m
		}
		if !m.BalanceAfter.Equal(res.Final) {
			m.BalanceAfter = res.Final
			res.Changed = append(res.Changed, m)
		}
	}
	return res
}

// Mismatch diferencia entre el saldo guardado y el esperado.
type Mismatch struct {
	MovementID string
	Stored     decimal.Decimal
	Expected   decimal.Decimal
}

// Audit compara los saldos guardados con la reproducción sin modificar la cadena.
func Audit(chain []*entity.Movement) (decimal.Decimal, []Mismatch) {
	ordered := make([]*entity.Movement, len(chain))
	copy(ordered, chain)
	SortChain(ordered)
	running := decimal.Zero
	var out []Mismatch
	for _, m := range ordered {
		if m.Cancelled {
			continue
		}
		running = running.Add(m.SignedQuantity())
		if !m.BalanceAfter.Equal(running) {
			out = append(out, Mismatch{MovementID: m.ID, Stored: m.BalanceAfter, Expected: running})
		}
	}
	return running, out
}
