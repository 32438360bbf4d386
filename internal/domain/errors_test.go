package domain_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/stock-ledger-api/internal/domain"
)

func TestKindOf_ErrorEnvuelto(t *testing.T) {
	err := fmt.Errorf("create movement: %w", domain.ErrInsufficientStock)

	assert.Equal(t, domain.KindInsufficientStock, domain.KindOf(err))
	assert.True(t, errors.Is(err, domain.ErrInsufficientStock))
	assert.False(t, errors.Is(err, domain.ErrCannotCancelInsufficientStock),
		"errores del mismo Kind siguen siendo distintos")
}

func TestKindOf_ErrorSinTipo_EsInterno(t *testing.T) {
	assert.Equal(t, domain.KindInternal, domain.KindOf(errors.New("boom")))
	assert.Equal(t, domain.KindInternal, domain.KindOf(nil))
}

func TestRetryable_SoloConcurrencia(t *testing.T) {
	assert.True(t, domain.ErrConcurrencyConflict.Retryable())
	assert.False(t, domain.ErrInsufficientStock.Retryable())
	assert.False(t, domain.ErrMovementNotFound.Retryable())
}
