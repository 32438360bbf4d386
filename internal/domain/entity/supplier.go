package entity

import "time"

// Supplier proveedor referenciado opcionalmente por las entradas.
type Supplier struct {
	ID        string
	Name      string
	TaxID     string
	Active    bool
	CreatedAt time.Time
	UpdatedAt time.Time
}
