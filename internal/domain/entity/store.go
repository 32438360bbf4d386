package entity

import "time"

// Store representa una tienda; es la unidad de aislamiento (tenant) del stock.
type Store struct {
	ID        string
	Name      string
	Address   string
	Active    bool
	CreatedAt time.Time
	UpdatedAt time.Time
}
