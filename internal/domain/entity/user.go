package entity

import "time"

// Roles válidos en los tokens.
const (
	RoleAdmin    = "admin"
	RoleGerente  = "gerente"
	RoleOperador = "operador"
)

// User referencia de solo lectura para resolver quién registró un movimiento.
type User struct {
	ID        string
	Email     string
	Name      string
	Role      string
	CreatedAt time.Time
}
