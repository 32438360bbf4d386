package memory

import (
	"context"
	"sort"

	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
	"github.com/jhoicas/stock-ledger-api/internal/domain/repository"
)

var (
	_ repository.ProductRepository  = (*ProductRepo)(nil)
	_ repository.StoreRepository    = (*StoreRepo)(nil)
	_ repository.SupplierRepository = (*SupplierRepo)(nil)
	_ repository.UserRepository     = (*UserRepo)(nil)
)

// ProductRepo productos en memoria.
type ProductRepo struct {
	b binding
}

// GetByID devuelve nil, nil si no existe.
func (r *ProductRepo) GetByID(_ context.Context, id string) (*entity.Product, error) {
	var out *entity.Product
	r.b.read(func(st *state) {
		if p, ok := st.products[id]; ok {
			c := *p
			out = &c
		}
	})
	return out, nil
}

// GetForUpdate igual que GetByID: dentro de Store.Run la tx ya es exclusiva.
func (r *ProductRepo) GetForUpdate(ctx context.Context, id string) (*entity.Product, error) {
	return r.GetByID(ctx, id)
}

// ListByStore productos de la tienda ordenados por SKU.
func (r *ProductRepo) ListByStore(_ context.Context, storeID string) ([]*entity.Product, error) {
	var out []*entity.Product
	r.b.read(func(st *state) {
		for _, p := range st.products {
			if p.StoreID == storeID {
				c := *p
				out = append(out, &c)
			}
		}
	})
	sort.Slice(out, func(i, j int) bool { return out[i].SKU < out[j].SKU })
	return out, nil
}

// StoreRepo tiendas en memoria.
type StoreRepo struct {
	b binding
}

// GetByID devuelve nil, nil si no existe.
func (r *StoreRepo) GetByID(_ context.Context, id string) (*entity.Store, error) {
	var out *entity.Store
	r.b.read(func(st *state) {
		if s, ok := st.stores[id]; ok {
			c := *s
			out = &c
		}
	})
	return out, nil
}

// SupplierRepo proveedores en memoria.
type SupplierRepo struct {
	b binding
}

// GetByID devuelve nil, nil si no existe.
func (r *SupplierRepo) GetByID(_ context.Context, id string) (*entity.Supplier, error) {
	var out *entity.Supplier
	r.b.read(func(st *state) {
		if s, ok := st.suppliers[id]; ok {
			c := *s
			out = &c
		}
	})
	return out, nil
}

// UserRepo usuarios en memoria.
type UserRepo struct {
	b binding
}

// GetByID devuelve nil, nil si no existe.
func (r *UserRepo) GetByID(_ context.Context, id string) (*entity.User, error) {
	var out *entity.User
	r.b.read(func(st *state) {
		if u, ok := st.users[id]; ok {
			c := *u
			out = &c
		}
	})
	return out, nil
}
