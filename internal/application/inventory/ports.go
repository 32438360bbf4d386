package inventory

import (
	"context"

	"github.com/jhoicas/stock-ledger-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando repositorios atados a esa tx.
// Garantiza atomicidad para el motor de inventario: o se confirma todo o nada.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		movRepo repository.MovementRepository,
		productRepo repository.ProductRepository,
		supplierRepo repository.SupplierRepository,
	) error) error
}

// IdempotencyStore reserva claves de idempotencia para altas de movimientos.
// Reserve devuelve domain.ErrDuplicateRequest si la clave ya existe.
type IdempotencyStore interface {
	Reserve(ctx context.Context, key string) error
	Release(ctx context.Context, key string) error
}

// ReadRepos repositorios de lectura fuera de transacción (consultas y resolución de relaciones).
type ReadRepos struct {
	Movements repository.MovementRepository
	Products  repository.ProductRepository
	Stores    repository.StoreRepository
	Suppliers repository.SupplierRepository
	Users     repository.UserRepository
}
