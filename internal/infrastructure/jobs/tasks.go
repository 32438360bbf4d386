// Package jobs tareas en segundo plano del ledger (asynq sobre Redis): recálculo de una
// cadena y auditoría periódica de todas las cadenas.
package jobs

import (
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault cola por defecto.
	QueueDefault = "default"
	// TaskRecalculateStock recalcula los saldos de un par (producto, tienda).
	TaskRecalculateStock = "stock:recalculate"
	// TaskAuditLedger audita todas las cadenas y opcionalmente las repara.
	TaskAuditLedger = "stock:audit"
)

// RecalculatePayload datos de TaskRecalculateStock.
type RecalculatePayload struct {
	ProductID string `json:"product_id"`
	StoreID   string `json:"store_id"`
}

// AuditPayload datos de TaskAuditLedger.
type AuditPayload struct {
	Repair bool `json:"repair"`
}

// NewRecalculateTask construye la tarea de recálculo.
func NewRecalculateTask(p RecalculatePayload) (*asynq.Task, error) {
	if p.ProductID == "" || p.StoreID == "" {
		return nil, fmt.Errorf("recalculate task: product_id y store_id son obligatorios")
	}
	data, err := json.Marshal(p)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskRecalculateStock, data), nil
}

// NewAuditTask construye la tarea de auditoría.
func NewAuditTask(p AuditPayload) (*asynq.Task, error) {
	data, err := json.Marshal(p)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskAuditLedger, data), nil
}
