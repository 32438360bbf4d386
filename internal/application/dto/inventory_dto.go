package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateMovementRequest body para POST /api/movements.
type CreateMovementRequest struct {
	Type       string           `json:"type" validate:"required,oneof=ENTRADA SAIDA PERDA"`
	Quantity   decimal.Decimal  `json:"quantity" validate:"dpositive"`
	StoreID    string           `json:"store_id" validate:"required"`
	ProductID  string           `json:"product_id" validate:"required"`
	SupplierID *string          `json:"supplier_id,omitempty"`
	Batch      *string          `json:"batch,omitempty" validate:"omitempty,max=100"`
	Expiration *time.Time       `json:"expiration,omitempty"`
	Price      *decimal.Decimal `json:"price,omitempty"`
	Note       *string          `json:"note,omitempty" validate:"omitempty,max=500"`
}

// BulkMovementRequest body para POST /api/movements/bulk.
type BulkMovementRequest struct {
	Movements []CreateMovementRequest `json:"movements" validate:"required,min=1,max=500"`
}

// UpdateMovementRequest body para PATCH /api/movements/:id. Campos ausentes no cambian;
// supplier_id, batch y note vacíos limpian el valor.
type UpdateMovementRequest struct {
	Type       *string          `json:"type,omitempty" validate:"omitempty,oneof=ENTRADA SAIDA PERDA"`
	Quantity   *decimal.Decimal `json:"quantity,omitempty"`
	StoreID    *string          `json:"store_id,omitempty" validate:"omitempty,min=1"`
	ProductID  *string          `json:"product_id,omitempty" validate:"omitempty,min=1"`
	SupplierID *string          `json:"supplier_id,omitempty"`
	Batch      *string          `json:"batch,omitempty" validate:"omitempty,max=100"`
	Expiration *time.Time       `json:"expiration,omitempty"`
	Price      *decimal.Decimal `json:"price,omitempty"`
	Note       *string          `json:"note,omitempty" validate:"omitempty,max=500"`
}

// VerifyMovementRequest body para POST /api/movements/:id/verify.
type VerifyMovementRequest struct {
	Verified *bool   `json:"verified" validate:"required"`
	Note     *string `json:"note,omitempty" validate:"omitempty,max=500"`
}

// CancelMovementRequest body para POST /api/movements/:id/cancel.
type CancelMovementRequest struct {
	Reason string `json:"reason" validate:"required,min=3,max=500"`
}

// RefResponse referencia corta a una entidad relacionada.
type RefResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	SKU  string `json:"sku,omitempty"`
}

// MovementResponse salida de un movimiento con relaciones resueltas.
type MovementResponse struct {
	ID                 string           `json:"id"`
	Type               string           `json:"type"`
	Quantity           decimal.Decimal  `json:"quantity"`
	StoreID            string           `json:"store_id"`
	ProductID          string           `json:"product_id"`
	SupplierID         *string          `json:"supplier_id,omitempty"`
	Batch              *string          `json:"batch,omitempty"`
	Expiration         *time.Time       `json:"expiration,omitempty"`
	Price              *decimal.Decimal `json:"price,omitempty"`
	Note               *string          `json:"note,omitempty"`
	BalanceAfter       decimal.Decimal  `json:"balance_after"`
	Verified           bool             `json:"verified"`
	VerifiedAt         *time.Time       `json:"verified_at,omitempty"`
	VerifiedBy         *string          `json:"verified_by,omitempty"`
	VerificationNote   *string          `json:"verification_note,omitempty"`
	Cancelled          bool             `json:"cancelled"`
	CancelledAt        *time.Time       `json:"cancelled_at,omitempty"`
	CancelledBy        *string          `json:"cancelled_by,omitempty"`
	CancellationReason *string          `json:"cancellation_reason,omitempty"`
	UserID             *string          `json:"user_id,omitempty"`
	Product            *RefResponse     `json:"product,omitempty"`
	Store              *RefResponse     `json:"store,omitempty"`
	Supplier           *RefResponse     `json:"supplier,omitempty"`
	User               *RefResponse     `json:"user,omitempty"`
	CreatedAt          time.Time        `json:"created_at"`
	UpdatedAt          time.Time        `json:"updated_at"`
}

// MovementListResponse lista paginada de movimientos.
type MovementListResponse struct {
	Items []MovementResponse `json:"items"`
	Page  PageResponse       `json:"page"`
}

// BulkItemResponse resultado de un ítem del lote.
type BulkItemResponse struct {
	Index    int               `json:"index"`
	Success  bool              `json:"success"`
	Movement *MovementResponse `json:"movement,omitempty"`
	Error    *ErrorResponse    `json:"error,omitempty"`
}

// BulkMovementResponse resumen del lote.
type BulkMovementResponse struct {
	SuccessCount int                `json:"success_count"`
	FailureCount int                `json:"failure_count"`
	Results      []BulkItemResponse `json:"results"`
}
