package inventory

import (
	"context"

	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
)

// MovementDetail movimiento con sus relaciones resueltas (producto, tienda, proveedor, usuario).
type MovementDetail struct {
	*entity.Movement
	Product  *entity.Product
	Store    *entity.Store
	Supplier *entity.Supplier
	User     *entity.User
}

// relationResolver carga las relaciones de los movimientos, memorizando por llamada
// para no repetir lecturas en listados.
type relationResolver struct {
	reads ReadRepos
}

type resolveCache struct {
	products  map[string]*entity.Product
	stores    map[string]*entity.Store
	suppliers map[string]*entity.Supplier
	users     map[string]*entity.User
}

func newResolveCache() *resolveCache {
	return &resolveCache{
		products:  map[string]*entity.Product{},
		stores:    map[string]*entity.Store{},
		suppliers: map[string]*entity.Supplier{},
		users:     map[string]*entity.User{},
	}
}

func (r relationResolver) resolve(ctx context.Context, m *entity.Movement) (*MovementDetail, error) {
	return r.resolveWith(ctx, m, newResolveCache())
}

func (r relationResolver) resolveMany(ctx context.Context, ms []*entity.Movement) ([]*MovementDetail, error) {
	cache := newResolveCache()
	out := make([]*MovementDetail, 0, len(ms))
	for _, m := range ms {
		d, err := r.resolveWith(ctx, m, cache)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, nil
}

func (r relationResolver) resolveWith(ctx context.Context, m *entity.Movement, c *resolveCache) (*MovementDetail, error) {
	d := &MovementDetail{Movement: m}

	p, ok := c.products[m.ProductID]
	if !ok {
		var err error
		if p, err = r.reads.Products.GetByID(ctx, m.ProductID); err != nil {
			return nil, err
		}
		c.products[m.ProductID] = p
	}
	d.Product = p

	s, ok := c.stores[m.StoreID]
	if !ok {
		var err error
		if s, err = r.reads.Stores.GetByID(ctx, m.StoreID); err != nil {
			return nil, err
		}
		c.stores[m.StoreID] = s
	}
	d.Store = s

	if m.SupplierID != nil {
		sup, ok := c.suppliers[*m.SupplierID]
		if !ok {
			var err error
			if sup, err = r.reads.Suppliers.GetByID(ctx, *m.SupplierID); err != nil {
				return nil, err
			}
			c.suppliers[*m.SupplierID] = sup
		}
		d.Supplier = sup
	}

	if m.UserID != nil && r.reads.Users != nil {
		u, ok := c.users[*m.UserID]
		if !ok {
			var err error
			if u, err = r.reads.Users.GetByID(ctx, *m.UserID); err != nil {
				return nil, err
			}
			c.users[*m.UserID] = u
		}
		d.User = u
	}
	return d, nil
}
