package catalog

import (
	"fmt"
	"io"
	"strings"
)

// WriteSQL escribe el script de seed idempotente (INSERT ... ON CONFLICT) para PostgreSQL.
func (c *File) WriteSQL(w io.Writer) error {
	var b strings.Builder
	b.WriteString("-- Catálogo de referencia del ledger de stock\n")
	b.WriteString("-- Generado por cmd/seed; re-ejecutable.\n\n")

	if len(c.Stores) > 0 {
		b.WriteString("-- 1. Tiendas\n")
		b.WriteString("INSERT INTO stores (id, name, address, active) VALUES\n")
		for i, s := range c.Stores {
			fmt.Fprintf(&b, "  ('%s', '%s', %s, %t)%s\n",
				escapeSQL(s.ID), escapeSQL(s.Name), nullable(s.Address), active(s.Active), sep(i, len(c.Stores)))
		}
		b.WriteString("ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, address = EXCLUDED.address,\n")
		b.WriteString("  active = EXCLUDED.active, updated_at = now();\n\n")
	}

	if len(c.Suppliers) > 0 {
		b.WriteString("-- 2. Proveedores\n")
		b.WriteString("INSERT INTO suppliers (id, name, tax_id, active) VALUES\n")
		for i, s := range c.Suppliers {
			fmt.Fprintf(&b, "  ('%s', '%s', %s, %t)%s\n",
				escapeSQL(s.ID), escapeSQL(s.Name), nullable(s.TaxID), active(s.Active), sep(i, len(c.Suppliers)))
		}
		b.WriteString("ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, tax_id = EXCLUDED.tax_id,\n")
		b.WriteString("  active = EXCLUDED.active, updated_at = now();\n\n")
	}

	if len(c.Users) > 0 {
		b.WriteString("-- 3. Usuarios\n")
		b.WriteString("INSERT INTO users (id, email, name, role) VALUES\n")
		for i, u := range c.Users {
			fmt.Fprintf(&b, "  ('%s', '%s', '%s', '%s')%s\n",
				escapeSQL(u.ID), escapeSQL(u.Email), escapeSQL(u.Name), escapeSQL(u.Role), sep(i, len(c.Users)))
		}
		b.WriteString("ON CONFLICT (id) DO UPDATE SET email = EXCLUDED.email, name = EXCLUDED.name, role = EXCLUDED.role;\n\n")
	}

	if len(c.Products) > 0 {
		b.WriteString("-- 4. Productos\n")
		b.WriteString("INSERT INTO products (id, store_id, sku, name, stock_min, stock_max, alert_percentage, active) VALUES\n")
		for i, p := range c.Products {
			fmt.Fprintf(&b, "  ('%s', '%s', '%s', '%s', %s, %s, %s, %t)%s\n",
				escapeSQL(p.ID), escapeSQL(p.StoreID), escapeSQL(p.SKU), escapeSQL(p.Name),
				p.StockMin.String(), p.StockMax.String(), p.AlertPercentage.String(), active(p.Active),
				sep(i, len(c.Products)))
		}
		b.WriteString("ON CONFLICT (id) DO UPDATE SET sku = EXCLUDED.sku, name = EXCLUDED.name,\n")
		b.WriteString("  stock_min = EXCLUDED.stock_min, stock_max = EXCLUDED.stock_max,\n")
		b.WriteString("  alert_percentage = EXCLUDED.alert_percentage, active = EXCLUDED.active, updated_at = now();\n")
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func sep(i, n int) string {
	if i < n-1 {
		return ","
	}
	return ""
}

func nullable(s string) string {
	if s == "" {
		return "NULL"
	}
	return "'" + escapeSQL(s) + "'"
}

func escapeSQL(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}
