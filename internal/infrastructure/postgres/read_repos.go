package postgres

import (
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/stock-ledger-api/internal/application/inventory"
)

// NewReadRepos repositorios de lectura sobre el pool (fuera de transacción).
func NewReadRepos(pool *pgxpool.Pool) inventory.ReadRepos {
	return inventory.ReadRepos{
		Movements: NewMovementRepository(pool),
		Products:  NewProductRepository(pool),
		Stores:    NewStoreRepository(pool),
		Suppliers: NewSupplierRepository(pool),
		Users:     NewUserRepository(pool),
	}
}
