package entity

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestMovementType_Valid(t *testing.T) {
	assert.True(t, MovementTypeEntrada.Valid())
	assert.True(t, MovementTypeSaida.Valid())
	assert.True(t, MovementTypePerda.Valid())
	assert.False(t, MovementType("AJUSTE").Valid())
	assert.False(t, MovementType("").Valid())
}

func TestMovement_SignedQuantity(t *testing.T) {
	qty := decimal.NewFromInt(7)
	cases := map[MovementType]decimal.Decimal{
		MovementTypeEntrada: decimal.NewFromInt(7),
		MovementTypeSaida:   decimal.NewFromInt(-7),
		MovementTypePerda:   decimal.NewFromInt(-7),
	}
	for typ, want := range cases {
		m := Movement{Type: typ, Quantity: qty}
		assert.True(t, want.Equal(m.SignedQuantity()), "tipo %s", typ)
	}
}

func TestMovement_Before_DesempataPorSeq(t *testing.T) {
	now := time.Now()
	a := &Movement{CreatedAt: now, Seq: 1}
	b := &Movement{CreatedAt: now, Seq: 2}
	c := &Movement{CreatedAt: now.Add(-time.Second), Seq: 3}

	assert.True(t, a.Before(b))
	assert.False(t, b.Before(a))
	assert.True(t, c.Before(a), "CreatedAt manda sobre Seq")
}
