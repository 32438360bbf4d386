package repository

import (
	"context"

	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
)

// StoreRepository puerto de lectura de tiendas.
type StoreRepository interface {
	GetByID(ctx context.Context, id string) (*entity.Store, error)
}

// SupplierRepository puerto de lectura de proveedores.
type SupplierRepository interface {
	GetByID(ctx context.Context, id string) (*entity.Supplier, error)
}

// UserRepository puerto de lectura de usuarios (solo para resolver relaciones).
type UserRepository interface {
	GetByID(ctx context.Context, id string) (*entity.User, error)
}
