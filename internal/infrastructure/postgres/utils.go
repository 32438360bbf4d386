package postgres

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/jhoicas/stock-ledger-api/internal/domain"
	"github.com/jhoicas/stock-ledger-api/internal/domain/repository"
)

// isUniqueViolation verifica si un error es una violación de constraint único (23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505" // unique_violation
	}
	return strings.Contains(err.Error(), "23505")
}

// isConcurrencyError serialización fallida (40001), deadlock (40P01) o lock_timeout (55P03).
// Son los únicos errores que el llamador puede reintentar tal cual.
func isConcurrencyError(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "40001", "40P01", "55P03":
			return true
		}
	}
	return false
}

// isReferenceError FK inexistente (23503) o valor con formato inválido para la columna (22P02).
func isReferenceError(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23503" || pgErr.Code == "22P02"
	}
	return false
}

// mapTxError traduce errores de concurrencia de PostgreSQL a domain.ErrConcurrencyConflict y
// los de referencia a domain.ErrInvalidReference. Los errores de dominio pasan intactos.
func mapTxError(op string, err error) error {
	if err == nil {
		return nil
	}
	if _, ok := domain.AsError(err); ok {
		return err
	}
	if isConcurrencyError(err) {
		return fmt.Errorf("%s: %w", op, domain.ErrConcurrencyConflict)
	}
	if isReferenceError(err) {
		return fmt.Errorf("%s: %w", op, domain.ErrInvalidReference)
	}
	return fmt.Errorf("%s: %w", op, err)
}

// validID las PK son uuid: un id mal formado no puede existir y consultarlo aborta la transacción (22P02).
func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

// validFilterIDs false si algún id del filtro no es uuid; en ese caso ningún movimiento coincide.
func validFilterIDs(f repository.MovementFilter) bool {
	for _, id := range []string{f.StoreID, f.ProductID, f.SupplierID} {
		if id != "" && !validID(id) {
			return false
		}
	}
	return true
}
