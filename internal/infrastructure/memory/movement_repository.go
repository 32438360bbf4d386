package memory

import (
	"context"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger-api/internal/domain"
	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
	"github.com/jhoicas/stock-ledger-api/internal/domain/repository"
)

var _ repository.MovementRepository = (*MovementRepo)(nil)

// MovementRepo ledger en memoria.
type MovementRepo struct {
	b binding
}

// Create persiste una copia del movimiento y le asigna Seq.
func (r *MovementRepo) Create(_ context.Context, m *entity.Movement) error {
	var err error
	r.b.write(func(st *state) {
		if _, ok := st.movements[m.ID]; ok {
			err = domain.ErrDuplicateRequest
			return
		}
		st.seq++
		m.Seq = st.seq
		st.movements[m.ID] = copyMovement(m)
	})
	return err
}

// GetByID devuelve nil, nil si no existe.
func (r *MovementRepo) GetByID(_ context.Context, id string) (*entity.Movement, error) {
	var out *entity.Movement
	r.b.read(func(st *state) {
		if m, ok := st.movements[id]; ok {
			out = copyMovement(m)
		}
	})
	return out, nil
}

// Update reescribe los campos mutables; BalanceAfter y Seq se conservan.
func (r *MovementRepo) Update(_ context.Context, m *entity.Movement) error {
	var err error
	r.b.write(func(st *state) {
		cur, ok := st.movements[m.ID]
		if !ok {
			err = domain.ErrMovementNotFound
			return
		}
		c := copyMovement(m)
		c.BalanceAfter = cur.BalanceAfter
		c.Seq = cur.Seq
		c.CreatedAt = cur.CreatedAt
		st.movements[m.ID] = c
	})
	return err
}

// UpdateBalances persiste solo BalanceAfter.
func (r *MovementRepo) UpdateBalances(_ context.Context, ms []*entity.Movement) error {
	var err error
	r.b.write(func(st *state) {
		for _, m := range ms {
			cur, ok := st.movements[m.ID]
			if !ok {
				err = domain.ErrMovementNotFound
				return
			}
			cur.BalanceAfter = m.BalanceAfter
		}
	})
	return err
}

// Delete borra el movimiento.
func (r *MovementRepo) Delete(_ context.Context, id string) error {
	var err error
	r.b.write(func(st *state) {
		if _, ok := st.movements[id]; !ok {
			err = domain.ErrMovementNotFound
			return
		}
		delete(st.movements, id)
	})
	return err
}

// ListChain cadena completa en orden (CreatedAt, Seq).
func (r *MovementRepo) ListChain(_ context.Context, productID, storeID string) ([]*entity.Movement, error) {
	var out []*entity.Movement
	r.b.read(func(st *state) {
		out = chainOf(st, productID, storeID)
	})
	return out, nil
}

// LatestInChain último movimiento de la cadena; nil si vacía.
func (r *MovementRepo) LatestInChain(_ context.Context, productID, storeID string) (*entity.Movement, error) {
	var out *entity.Movement
	r.b.read(func(st *state) {
		chain := chainOf(st, productID, storeID)
		if len(chain) > 0 {
			out = chain[len(chain)-1]
		}
	})
	return out, nil
}

// SumSigned suma con signo de los no cancelados.
func (r *MovementRepo) SumSigned(_ context.Context, productID, storeID string) (decimal.Decimal, error) {
	total := decimal.Zero
	r.b.read(func(st *state) {
		for _, m := range st.movements {
			if m.ProductID == productID && m.StoreID == storeID && !m.Cancelled {
				total = total.Add(m.SignedQuantity())
			}
		}
	})
	return total, nil
}

// List filtra, ordena y pagina.
func (r *MovementRepo) List(_ context.Context, f repository.MovementFilter) ([]*entity.Movement, int, error) {
	var matched []*entity.Movement
	r.b.read(func(st *state) {
		matched = filterMovements(st, f)
	})
	sort.SliceStable(matched, func(i, j int) bool {
		if f.Ascending {
			return matched[i].Before(matched[j])
		}
		return matched[j].Before(matched[i])
	})
	total := len(matched)
	start := max(f.Offset, 0)
	if start > total {
		start = total
	}
	end := total
	if f.Limit > 0 && start+f.Limit < total {
		end = start + f.Limit
	}
	return matched[start:end], total, nil
}

// Aggregate agrupa por (clave de dimensión, tipo).
func (r *MovementRepo) Aggregate(_ context.Context, f repository.MovementFilter, dim repository.AggregateDimension) ([]repository.AggregateRow, error) {
	var matched []*entity.Movement
	r.b.read(func(st *state) {
		matched = filterMovements(st, f)
	})

	type groupKey struct {
		key string
		t   entity.MovementType
	}
	groups := map[groupKey]*repository.AggregateRow{}
	for _, m := range matched {
		k := groupKey{key: dimensionKey(m, dim), t: m.Type}
		row, ok := groups[k]
		if !ok {
			row = &repository.AggregateRow{Key: k.key, Type: k.t, Quantity: decimal.Zero, Value: decimal.Zero}
			groups[k] = row
		}
		row.Count++
		row.Quantity = row.Quantity.Add(m.Quantity)
		if m.Price != nil {
			row.Value = row.Value.Add(m.Quantity.Mul(*m.Price))
		}
	}

	out := make([]repository.AggregateRow, 0, len(groups))
	for _, row := range groups {
		out = append(out, *row)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Key != out[j].Key {
			return out[i].Key < out[j].Key
		}
		return out[i].Type < out[j].Type
	})
	return out, nil
}

// CurrentStockByStore stock derivado por producto de la tienda.
func (r *MovementRepo) CurrentStockByStore(_ context.Context, storeID string) (map[string]decimal.Decimal, error) {
	out := map[string]decimal.Decimal{}
	r.b.read(func(st *state) {
		for _, m := range st.movements {
			if m.StoreID != storeID || m.Cancelled {
				continue
			}
			out[m.ProductID] = out[m.ProductID].Add(m.SignedQuantity())
		}
	})
	return out, nil
}

// ListChainKeys cadenas con al menos un movimiento, ordenadas.
func (r *MovementRepo) ListChainKeys(_ context.Context) ([]entity.ChainKey, error) {
	seen := map[entity.ChainKey]struct{}{}
	r.b.read(func(st *state) {
		for _, m := range st.movements {
			seen[m.ChainKey()] = struct{}{}
		}
	})
	out := make([]entity.ChainKey, 0, len(seen))
	for k := range seen {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].StoreID != out[j].StoreID {
			return out[i].StoreID < out[j].StoreID
		}
		return out[i].ProductID < out[j].ProductID
	})
	return out, nil
}

func chainOf(st *state, productID, storeID string) []*entity.Movement {
	var out []*entity.Movement
	for _, m := range st.movements {
		if m.ProductID == productID && m.StoreID == storeID {
			out = append(out, copyMovement(m))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j]) })
	return out
}

func filterMovements(st *state, f repository.MovementFilter) []*entity.Movement {
	var out []*entity.Movement
	for _, m := range st.movements {
		if !f.IncludeCancelled && m.Cancelled {
			continue
		}
		if f.StoreID != "" && m.StoreID != f.StoreID {
			continue
		}
		if f.ProductID != "" && m.ProductID != f.ProductID {
			continue
		}
		if f.SupplierID != "" && (m.SupplierID == nil || *m.SupplierID != f.SupplierID) {
			continue
		}
		if f.Type != "" && m.Type != f.Type {
			continue
		}
		if f.From != nil && m.CreatedAt.Before(*f.From) {
			continue
		}
		if f.To != nil && m.CreatedAt.After(*f.To) {
			continue
		}
		if f.Verified != nil && m.Verified != *f.Verified {
			continue
		}
		out = append(out, copyMovement(m))
	}
	return out
}

func dimensionKey(m *entity.Movement, dim repository.AggregateDimension) string {
	switch dim {
	case repository.DimensionMonth:
		return m.CreatedAt.UTC().Format("2006-01")
	case repository.DimensionStore:
		return m.StoreID
	case repository.DimensionProduct:
		return m.ProductID
	case repository.DimensionSupplier:
		if m.SupplierID == nil {
			return ""
		}
		return *m.SupplierID
	default:
		return string(m.Type)
	}
}
