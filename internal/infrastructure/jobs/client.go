package jobs

import (
	"context"
	"errors"
	"time"

	"github.com/hibiken/asynq"

	"github.com/jhoicas/stock-ledger-api/internal/domain"
)

// Client encola tareas.
type Client struct {
	client *asynq.Client
}

// NewClient construye el cliente asynq.
func NewClient(redisOpts asynq.RedisClientOpt) *Client {
	return &Client{client: asynq.NewClient(redisOpts)}
}

// EnqueueRecalculate encola el recálculo de un par y devuelve el id de la tarea.
// Una misma cadena no se encola dos veces mientras la anterior siga pendiente.
func (c *Client) EnqueueRecalculate(ctx context.Context, productID, storeID string) (string, error) {
	task, err := NewRecalculateTask(RecalculatePayload{ProductID: productID, StoreID: storeID})
	if err != nil {
		return "", err
	}
	info, err := c.client.EnqueueContext(ctx, task,
		asynq.Queue(QueueDefault),
		asynq.Unique(time.Minute),
		asynq.MaxRetry(5),
	)
	if errors.Is(err, asynq.ErrDuplicateTask) {
		return "", domain.ErrDuplicateRequest
	}
	if err != nil {
		return "", err
	}
	return info.ID, nil
}

// Close libera el cliente.
func (c *Client) Close() error {
	return c.client.Close()
}
