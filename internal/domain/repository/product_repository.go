package repository

import (
	"context"

	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
)

// ProductRepository puerto de lectura de productos. El stock no vive aquí.
type ProductRepository interface {
	// GetByID devuelve nil, nil si no existe.
	GetByID(ctx context.Context, id string) (*entity.Product, error)
	// GetForUpdate obtiene el producto y bloquea su fila (SELECT FOR UPDATE).
	// Como cada producto pertenece a una sola tienda, la fila es el lock del par (producto, tienda).
	GetForUpdate(ctx context.Context, id string) (*entity.Product, error)
	ListByStore(ctx context.Context, storeID string) ([]*entity.Product, error)
}
