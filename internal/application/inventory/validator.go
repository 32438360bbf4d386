package inventory

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger-api/internal/domain"
	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
	ledger "github.com/jhoicas/stock-ledger-api/internal/domain/inventory"
	"github.com/jhoicas/stock-ledger-api/internal/domain/repository"
)

// MovementValidator reglas de negocio previas a cualquier escritura en el ledger.
// No modifica estado; devuelve siempre errores tipados de domain.
type MovementValidator struct {
	policy ledger.StockPolicy
}

// NewMovementValidator construye el validador con la política de stock negativo.
func NewMovementValidator(policy ledger.StockPolicy) *MovementValidator {
	return &MovementValidator{policy: policy}
}

// ValidateShape valida tipo, cantidad e identificadores obligatorios.
func (v *MovementValidator) ValidateShape(t entity.MovementType, qty decimal.Decimal, storeID, productID string) error {
	if !t.Valid() {
		return domain.ErrInvalidMovementType
	}
	if !qty.IsPositive() {
		return domain.ErrInvalidQuantity
	}
	if storeID == "" || productID == "" {
		return domain.ErrInvalidInput
	}
	return nil
}

// ValidateReferences verifica que el producto exista y pertenezca a la tienda, y que el
// proveedor (si viene) exista y esté activo. Un producto de otra tienda se trata como inexistente.
func (v *MovementValidator) ValidateReferences(
	ctx context.Context,
	product *entity.Product,
	storeID string,
	supplierRepo repository.SupplierRepository,
	supplierID *string,
) error {
	if product == nil || product.StoreID != storeID {
		return domain.ErrProductNotFound
	}
	return v.ValidateSupplier(ctx, supplierRepo, supplierID)
}

// ValidateSupplier verifica un proveedor opcional.
func (v *MovementValidator) ValidateSupplier(ctx context.Context, supplierRepo repository.SupplierRepository, supplierID *string) error {
	if supplierID == nil || *supplierID == "" {
		return nil
	}
	supplier, err := supplierRepo.GetByID(ctx, *supplierID)
	if err != nil {
		return err
	}
	if supplier == nil || !supplier.Active {
		return domain.ErrSupplierNotFound
	}
	return nil
}

// ValidateStock exige que una salida o pérdida no deje el saldo por debajo de lo permitido.
func (v *MovementValidator) ValidateStock(current decimal.Decimal, t entity.MovementType, qty decimal.Decimal) error {
	if !t.Decreases() {
		return nil
	}
	if !v.policy.Permits(current.Sub(qty)) {
		return domain.ErrInsufficientStock
	}
	return nil
}
