package http

import (
	"context"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/stock-ledger-api/internal/application/dto"
	"github.com/jhoicas/stock-ledger-api/internal/application/inventory"
	"github.com/jhoicas/stock-ledger-api/internal/domain/repository"
	"github.com/jhoicas/stock-ledger-api/pkg/logger"
)

// RecalculateEnqueuer encola recálculos para el worker. Puede ser nil (solo modo síncrono).
type RecalculateEnqueuer interface {
	EnqueueRecalculate(ctx context.Context, productID, storeID string) (string, error)
}

// StockHandler expone el stock derivado del ledger (protegido).
type StockHandler struct {
	projector     *inventory.StockProjector
	movements     *inventory.MovementUseCase
	query         *inventory.QueryUseCase
	replenishment *inventory.ReplenishmentUseCase
	enqueuer      RecalculateEnqueuer
	validate      *validator.Validate
	log           *logger.Logger
}

// NewStockHandler construye el handler.
func NewStockHandler(
	projector *inventory.StockProjector,
	movements *inventory.MovementUseCase,
	query *inventory.QueryUseCase,
	replenishment *inventory.ReplenishmentUseCase,
	enqueuer RecalculateEnqueuer,
	log *logger.Logger,
) *StockHandler {
	return &StockHandler{
		projector:     projector,
		movements:     movements,
		query:         query,
		replenishment: replenishment,
		enqueuer:      enqueuer,
		validate:      newValidator(),
		log:           log.Component("stock_handler"),
	}
}

// pairFromQuery lee product_id y store_id obligatorios y valida el acceso a la tienda.
func pairFromQuery(c *fiber.Ctx) (productID, storeID string, ok bool, err error) {
	productID, storeID = c.Query("product_id"), c.Query("store_id")
	if productID == "" || storeID == "" {
		return "", "", false, badRequest(c, "VALIDATION", "product_id y store_id son obligatorios")
	}
	if !CanAccessStore(c, storeID) {
		return "", "", false, forbiddenStore(c)
	}
	return productID, storeID, true, nil
}

// GetStock godoc
// @Summary      Stock actual
// @Description  Stock derivado del último movimiento no cancelado, con su estado frente a la política del producto.
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        product_id  query  string  true  "Producto"
// @Param        store_id    query  string  true  "Tienda"
// @Success      200  {object}  dto.StockResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/stock [get]
func (h *StockHandler) GetStock(c *fiber.Ctx) error {
	productID, storeID, ok, err := pairFromQuery(c)
	if !ok {
		return err
	}
	item, err := h.replenishment.ProductStockStatus(c.UserContext(), productID, storeID)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.StockResponse{
		ProductID:         productID,
		StoreID:           storeID,
		CurrentStock:      item.CurrentStock,
		Status:            string(item.Status),
		StockMin:          item.Product.StockMin,
		StockMax:          item.Product.StockMax,
		SuggestedOrderQty: item.SuggestedOrderQty,
	})
}

// History godoc
// @Summary      Historial de stock
// @Description  Reproduce la cadena (producto, tienda) con saldo y costo promedio tras cada movimiento.
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        product_id  query  string  true   "Producto"
// @Param        store_id    query  string  true   "Tienda"
// @Param        from        query  string  false  "Desde"
// @Param        to          query  string  false  "Hasta"
// @Success      200  {object}  dto.StockHistoryResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/stock/history [get]
func (h *StockHandler) History(c *fiber.Ctx) error {
	productID, storeID, ok, err := pairFromQuery(c)
	if !ok {
		return err
	}
	from, err := parseTimeQuery(c, "from", false)
	if err != nil {
		return badRequest(c, "VALIDATION", err.Error())
	}
	to, err := parseTimeQuery(c, "to", true)
	if err != nil {
		return badRequest(c, "VALIDATION", err.Error())
	}
	entries, err := h.query.StockHistory(c.UserContext(), productID, storeID, from, to)
	if err != nil {
		return writeError(c, h.log, err)
	}
	out := dto.StockHistoryResponse{ProductID: productID, StoreID: storeID, Entries: make([]dto.StockHistoryEntry, len(entries))}
	for i, e := range entries {
		out.Entries[i] = dto.StockHistoryEntry{
			MovementID:  e.Movement.ID,
			Type:        string(e.Movement.Type),
			Quantity:    e.Movement.Quantity,
			Cancelled:   e.Movement.Cancelled,
			Balance:     e.Balance,
			AverageCost: e.AverageCost,
			CreatedAt:   e.Movement.CreatedAt,
		}
	}
	return c.JSON(out)
}

// Verify godoc
// @Summary      Auditar cadena
// @Description  Compara los saldos guardados con la reproducción sin modificar nada.
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        product_id  query  string  true  "Producto"
// @Param        store_id    query  string  true  "Tienda"
// @Success      200  {object}  dto.StockVerificationResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/stock/verify [get]
func (h *StockHandler) Verify(c *fiber.Ctx) error {
	productID, storeID, ok, err := pairFromQuery(c)
	if !ok {
		return err
	}
	report, err := h.projector.Verify(c.UserContext(), productID, storeID)
	if err != nil {
		return writeError(c, h.log, err)
	}
	out := dto.StockVerificationResponse{
		ProductID:    report.ProductID,
		StoreID:      report.StoreID,
		CurrentStock: report.CurrentStock,
		Movements:    report.Movements,
		Consistent:   report.Consistent(),
		Mismatches:   make([]dto.MismatchResponse, len(report.Mismatches)),
	}
	for i, m := range report.Mismatches {
		out.Mismatches[i] = dto.MismatchResponse{MovementID: m.MovementID, Stored: m.Stored, Expected: m.Expected}
	}
	return c.JSON(out)
}

// Recalculate godoc
// @Summary      Recalcular stock
// @Description  Reescribe los saldos de la cadena en orden cronológico. Con async=true se encola en el worker.
// @Tags         stock
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.RecalculateRequest  true  "Par a recalcular"
// @Success      200  {object}  dto.RecalculateResponse
// @Success      202  {object}  dto.RecalculateResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/stock/recalculate [post]
func (h *StockHandler) Recalculate(c *fiber.Ctx) error {
	var in dto.RecalculateRequest
	if ok, err := parseAndValidate(c, h.validate, &in); !ok {
		return err
	}
	out := dto.RecalculateResponse{ProductID: in.ProductID, StoreID: in.StoreID}
	if in.Async {
		if h.enqueuer == nil {
			return badRequest(c, "ASYNC_DISABLED", "el recálculo asíncrono no está habilitado")
		}
		taskID, err := h.enqueuer.EnqueueRecalculate(c.UserContext(), in.ProductID, in.StoreID)
		if err != nil {
			return writeError(c, h.log, err)
		}
		out.Queued = true
		out.TaskID = taskID
		return c.Status(fiber.StatusAccepted).JSON(out)
	}
	stock, err := h.movements.RecalculateStock(c.UserContext(), in.ProductID, in.StoreID)
	if err != nil {
		return writeError(c, h.log, err)
	}
	out.CurrentStock = &stock
	return c.JSON(out)
}

// LowStock godoc
// @Summary      Productos bajo mínimo
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        store_id  query  string  true  "Tienda"
// @Success      200  {object}  dto.LowStockResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/stock/low [get]
func (h *StockHandler) LowStock(c *fiber.Ctx) error {
	storeID := c.Query("store_id")
	if storeID == "" {
		return badRequest(c, "VALIDATION", "store_id es obligatorio")
	}
	if !CanAccessStore(c, storeID) {
		return forbiddenStore(c)
	}
	items, err := h.replenishment.ListLowStock(c.UserContext(), storeID)
	if err != nil {
		return writeError(c, h.log, err)
	}
	out := dto.LowStockResponse{StoreID: storeID, Total: len(items), Items: make([]dto.LowStockItem, len(items))}
	for i, it := range items {
		out.Items[i] = dto.LowStockItem{
			ProductID:         it.Product.ID,
			SKU:               it.Product.SKU,
			ProductName:       it.Product.Name,
			CurrentStock:      it.CurrentStock,
			StockMin:          it.Product.StockMin,
			Status:            string(it.Status),
			Deficit:           it.Deficit,
			SuggestedOrderQty: it.SuggestedOrderQty,
		}
	}
	return c.JSON(out)
}

// Analytics godoc
// @Summary      Analítica de movimientos
// @Description  Totales por tipo y agregados por mes, tienda, producto y proveedor.
// @Tags         analytics
// @Security     Bearer
// @Produce      json
// @Param        store_id  query  string  false  "Tienda (obligatoria salvo admin)"
// @Param        from      query  string  false  "Desde"
// @Param        to        query  string  false  "Hasta"
// @Success      200  {object}  dto.MovementAnalyticsResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/analytics/movements [get]
func (h *StockHandler) Analytics(c *fiber.Ctx) error {
	filter, err := parseFilter(c)
	if err != nil {
		return badRequest(c, "VALIDATION", err.Error())
	}
	filter.Limit, filter.Offset = 0, 0
	if ok, err := scopeStore(c, &filter); !ok {
		return err
	}
	a, err := h.query.Analytics(c.UserContext(), filter)
	if err != nil {
		return writeError(c, h.log, err)
	}
	out := dto.MovementAnalyticsResponse{
		Totals:     make(map[string]dto.TypeTotalResponse, len(a.Totals)),
		ByType:     aggregateRows(a.ByType),
		ByMonth:    aggregateRows(a.ByMonth),
		ByStore:    aggregateRows(a.ByStore),
		ByProduct:  aggregateRows(a.ByProduct),
		BySupplier: aggregateRows(a.BySupplier),
	}
	for t, tot := range a.Totals {
		out.Totals[string(t)] = dto.TypeTotalResponse{Count: tot.Count, Quantity: tot.Quantity, Value: tot.Value}
	}
	return c.JSON(out)
}

func aggregateRows(rows []repository.AggregateRow) []dto.AggregateRowResponse {
	out := make([]dto.AggregateRowResponse, len(rows))
	for i, r := range rows {
		out[i] = dto.AggregateRowResponse{Key: r.Key, Type: string(r.Type), Count: r.Count, Quantity: r.Quantity, Value: r.Value}
	}
	return out
}
