package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// MovementType tipo de movimiento del ledger de stock.
type MovementType string

// Tipos de movimiento. ENTRADA suma, SAIDA y PERDA restan.
const (
	MovementTypeEntrada MovementType = "ENTRADA" // entrada de mercancía
	MovementTypeSaida   MovementType = "SAIDA"   // salida (venta, consumo)
	MovementTypePerda   MovementType = "PERDA"   // pérdida o merma
)

// Valid indica si el tipo pertenece al enum.
func (t MovementType) Valid() bool {
	switch t {
	case MovementTypeEntrada, MovementTypeSaida, MovementTypePerda:
		return true
	}
	return false
}

// Decreases indica si el tipo descuenta stock.
func (t MovementType) Decreases() bool {
	return t == MovementTypeSaida || t == MovementTypePerda
}

// Movement es una entrada del ledger de stock para un par (producto, tienda).
// BalanceAfter es un valor derivado: siempre debe coincidir con la reproducción cronológica
// de los movimientos no cancelados de la cadena.
type Movement struct {
	ID        string
	Seq       int64 // desempate para CreatedAt iguales
	Type      MovementType
	Quantity  decimal.Decimal
	StoreID   string
	ProductID string

	SupplierID *string
	Batch      *string
	Expiration *time.Time
	Price      *decimal.Decimal
	Note       *string

	BalanceAfter decimal.Decimal

	Verified         bool
	VerifiedAt       *time.Time
	VerifiedBy       *string
	VerificationNote *string

	Cancelled          bool
	CancelledAt        *time.Time
	CancelledBy        *string
	CancellationReason *string

	UserID    *string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// SignedQuantity devuelve la cantidad con el signo de su tipo.
func (m *Movement) SignedQuantity() decimal.Decimal {
	if m.Type.Decreases() {
		return m.Quantity.Neg()
	}
	return m.Quantity
}

// ChainKey identifica la cadena de un movimiento.
func (m *Movement) ChainKey() ChainKey {
	return ChainKey{ProductID: m.ProductID, StoreID: m.StoreID}
}

// Before ordena movimientos dentro de una cadena: CreatedAt ascendente y luego Seq.
func (m *Movement) Before(o *Movement) bool {
	if !m.CreatedAt.Equal(o.CreatedAt) {
		return m.CreatedAt.Before(o.CreatedAt)
	}
	return m.Seq < o.Seq
}

// ChainKey par (producto, tienda) sobre el que se lleva el saldo.
type ChainKey struct {
	ProductID string
	StoreID   string
}
