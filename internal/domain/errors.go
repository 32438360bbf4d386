package domain

import "errors"

// Kind clasifica los errores de dominio para que la capa de transporte los mapee
// de forma determinista (sin comparar mensajes).
type Kind int

const (
	KindInternal Kind = iota
	KindNotFound
	KindValidation
	KindInsufficientStock
	KindAlreadyCancelled
	KindConflict
	KindConcurrency
	KindForbidden
)

// String devuelve el nombre del tipo de error (útil en logs).
func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindValidation:
		return "validation"
	case KindInsufficientStock:
		return "insufficient_stock"
	case KindAlreadyCancelled:
		return "already_cancelled"
	case KindConflict:
		return "conflict"
	case KindConcurrency:
		return "concurrency"
	case KindForbidden:
		return "forbidden"
	default:
		return "internal"
	}
}

// Error es un error de dominio tipado: Kind para el mapeo, Code estable para clientes.
type Error struct {
	Kind    Kind
	Code    string
	Message string
}

func (e *Error) Error() string { return e.Message }

// Retryable indica si el llamador puede reintentar la operación tal cual.
func (e *Error) Retryable() bool { return e.Kind == KindConcurrency }

func newError(kind Kind, code, msg string) *Error {
	return &Error{Kind: kind, Code: code, Message: msg}
}

// Errores de dominio (sin dependencias externas).
var (
	ErrMovementNotFound = newError(KindNotFound, "MOVEMENT_NOT_FOUND", "movimiento no encontrado")
	ErrProductNotFound  = newError(KindNotFound, "PRODUCT_NOT_FOUND", "producto no encontrado en la tienda")
	ErrSupplierNotFound = newError(KindNotFound, "SUPPLIER_NOT_FOUND", "proveedor no encontrado o inactivo")
	ErrStoreNotFound    = newError(KindNotFound, "STORE_NOT_FOUND", "tienda no encontrada")

	ErrInvalidInput        = newError(KindValidation, "VALIDATION", "entrada inválida")
	ErrInvalidMovementType = newError(KindValidation, "INVALID_MOVEMENT_TYPE", "tipo de movimiento inválido (ENTRADA, SAIDA, PERDA)")
	ErrInvalidQuantity     = newError(KindValidation, "INVALID_QUANTITY", "la cantidad debe ser mayor que cero")
	ErrMissingActor        = newError(KindValidation, "MISSING_ACTOR", "usuario requerido para esta operación")
	ErrInvalidReference    = newError(KindValidation, "INVALID_REFERENCE", "referencia inexistente o con formato inválido")

	ErrInsufficientStock             = newError(KindInsufficientStock, "INSUFFICIENT_STOCK", "stock insuficiente")
	ErrCannotDeleteInsufficientStock = newError(KindInsufficientStock, "CANNOT_DELETE_INSUFFICIENT_STOCK", "eliminar el movimiento dejaría stock negativo en movimientos posteriores")
	ErrCannotCancelInsufficientStock = newError(KindInsufficientStock, "CANNOT_CANCEL_INSUFFICIENT_STOCK", "cancelar el movimiento dejaría stock negativo en movimientos posteriores")

	ErrAlreadyCancelled    = newError(KindAlreadyCancelled, "ALREADY_CANCELLED", "el movimiento ya está cancelado")
	ErrDuplicateRequest    = newError(KindConflict, "DUPLICATE_REQUEST", "la solicitud ya fue procesada")
	ErrConcurrencyConflict = newError(KindConcurrency, "CONCURRENCY_CONFLICT", "conflicto de concurrencia, reintente")
	ErrForbidden           = newError(KindForbidden, "FORBIDDEN", "acceso denegado")
)

// KindOf devuelve el Kind del primer *Error en la cadena; KindInternal si no hay ninguno.
func KindOf(err error) Kind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return KindInternal
}

// AsError extrae el *Error de la cadena, si existe.
func AsError(err error) (*Error, bool) {
	var de *Error
	ok := errors.As(err, &de)
	return de, ok
}
