package catalog_test

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-ledger-api/internal/infrastructure/catalog"
	"github.com/jhoicas/stock-ledger-api/internal/infrastructure/memory"
)

const sample = `{
  "stores": [{"id": "s1", "name": "Tienda O'Higgins"}],
  "products": [{"id": "p1", "store_id": "s1", "sku": "A-1", "name": "Arroz", "stock_min": "10", "stock_max": "0", "alert_percentage": "50"}],
  "suppliers": [{"id": "sup1", "name": "Molinos", "active": false}],
  "users": [{"id": "u1", "email": "ana@example.com", "name": "Ana", "role": "gerente"}]
}`

func TestDecode_YApply(t *testing.T) {
	c, err := catalog.Decode(strings.NewReader(sample))
	require.NoError(t, err)

	db := memory.NewStore()
	c.Apply(db, time.Now())

	store, err := db.Stores().GetByID(t.Context(), "s1")
	require.NoError(t, err)
	require.NotNil(t, store)
	assert.True(t, store.Active, "active ausente = activa")

	p, err := db.Products().GetByID(t.Context(), "p1")
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, "10", p.StockMin.String())
}

func TestDecode_Validaciones(t *testing.T) {
	cases := map[string]string{
		"tienda desconocida": `{"stores": [], "products": [{"id": "p1", "store_id": "x", "sku": "A"}]}`,
		"rol inválido":       `{"users": [{"id": "u1", "role": "vendedor"}]}`,
		"sku repetido": `{"stores": [{"id": "s1", "name": "A"}], "products": [
			{"id": "p1", "store_id": "s1", "sku": "A"}, {"id": "p2", "store_id": "s1", "sku": "A"}]}`,
		"campo desconocido": `{"warehouses": []}`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := catalog.Decode(strings.NewReader(body))
			require.Error(t, err)
		})
	}
}

func TestWriteSQL(t *testing.T) {
	c, err := catalog.Decode(strings.NewReader(sample))
	require.NoError(t, err)

	var b strings.Builder
	require.NoError(t, c.WriteSQL(&b))
	sql := b.String()

	assert.Contains(t, sql, "'Tienda O''Higgins'", "comillas escapadas")
	assert.Contains(t, sql, "('sup1', 'Molinos', NULL, false)")
	assert.Contains(t, sql, "('p1', 's1', 'A-1', 'Arroz', 10, 0, 50, true)")
	assert.Equal(t, 4, strings.Count(sql, "ON CONFLICT (id)"))
}
