package http

import (
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/stock-ledger-api/internal/application/dto"
	"github.com/jhoicas/stock-ledger-api/internal/application/inventory"
	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
	"github.com/jhoicas/stock-ledger-api/internal/domain/repository"
	"github.com/jhoicas/stock-ledger-api/pkg/logger"
)

// HeaderIdempotencyKey header opcional para deduplicar altas.
const HeaderIdempotencyKey = "Idempotency-Key"

const maxPageLimit = 100

// MovementHandler maneja las peticiones HTTP del ledger de movimientos (protegido).
type MovementHandler struct {
	uc       *inventory.MovementUseCase
	query    *inventory.QueryUseCase
	validate *validator.Validate
	log      *logger.Logger
}

// NewMovementHandler construye el handler.
func NewMovementHandler(uc *inventory.MovementUseCase, query *inventory.QueryUseCase, log *logger.Logger) *MovementHandler {
	return &MovementHandler{uc: uc, query: query, validate: newValidator(), log: log.Component("movement_handler")}
}

// Create godoc
// @Summary      Registrar movimiento
// @Description  Registra una ENTRADA, SAIDA o PERDA y devuelve el movimiento con su saldo resultante.
// @Tags         movements
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        Idempotency-Key  header  string                     false  "Clave para deduplicar reintentos"
// @Param        body             body    dto.CreateMovementRequest  true   "Movimiento"
// @Success      201  {object}  dto.MovementResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Failure      500  {object}  dto.ErrorResponse
// @Router       /api/movements [post]
func (h *MovementHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateMovementRequest
	if ok, err := parseAndValidate(c, h.validate, &in); !ok {
		return err
	}
	if !CanAccessStore(c, in.StoreID) {
		return forbiddenStore(c)
	}
	out, err := h.uc.CreateFromRequest(c.UserContext(), GetUserID(c), c.Get(HeaderIdempotencyKey), in)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// CreateBulk godoc
// @Summary      Registrar movimientos en lote
// @Description  Procesa cada ítem de forma independiente; los fallos no abortan el lote.
// @Tags         movements
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        Idempotency-Key  header  string                   false  "Clave base; cada ítem usa clave:índice"
// @Param        body             body    dto.BulkMovementRequest  true   "Lote de movimientos"
// @Success      200  {object}  dto.BulkMovementResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Router       /api/movements/bulk [post]
func (h *MovementHandler) CreateBulk(c *fiber.Ctx) error {
	var in dto.BulkMovementRequest
	if ok, err := parseAndValidate(c, h.validate, &in); !ok {
		return err
	}
	for _, m := range in.Movements {
		if m.StoreID != "" && !CanAccessStore(c, m.StoreID) {
			return forbiddenStore(c)
		}
	}
	out := h.uc.CreateBulkFromRequest(c.UserContext(), GetUserID(c), c.Get(HeaderIdempotencyKey), in)
	return c.JSON(out)
}

// List godoc
// @Summary      Listar movimientos
// @Tags         movements
// @Security     Bearer
// @Produce      json
// @Param        store_id           query  string  false  "Tienda (obligatoria salvo admin)"
// @Param        product_id         query  string  false  "Producto"
// @Param        supplier_id        query  string  false  "Proveedor"
// @Param        type               query  string  false  "ENTRADA, SAIDA o PERDA"
// @Param        from               query  string  false  "Desde (RFC3339 o YYYY-MM-DD)"
// @Param        to                 query  string  false  "Hasta (RFC3339 o YYYY-MM-DD)"
// @Param        verified           query  bool    false  "Solo verificados / no verificados"
// @Param        include_cancelled  query  bool    false  "Incluir cancelados"
// @Param        limit              query  int     false  "Máximo 100"
// @Param        offset             query  int     false  "Desplazamiento"
// @Success      200  {object}  dto.MovementListResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Router       /api/movements [get]
func (h *MovementHandler) List(c *fiber.Ctx) error {
	filter, err := parseFilter(c)
	if err != nil {
		return badRequest(c, "VALIDATION", err.Error())
	}
	if ok, err := scopeStore(c, &filter); !ok {
		return err
	}
	page, err := h.query.List(c.UserContext(), filter)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(inventory.ToMovementListResponse(page))
}

// GetByID godoc
// @Summary      Obtener movimiento
// @Tags         movements
// @Security     Bearer
// @Produce      json
// @Param        id   path      string  true  "ID del movimiento"
// @Success      200  {object}  dto.MovementResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/movements/{id} [get]
func (h *MovementHandler) GetByID(c *fiber.Ctx) error {
	d, err := h.query.GetByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	if !CanAccessStore(c, d.StoreID) {
		return forbiddenStore(c)
	}
	return c.JSON(inventory.ToMovementResponse(d))
}

// Update godoc
// @Summary      Actualizar movimiento
// @Description  Cambios de tipo, cantidad, tienda o producto recalculan las cadenas afectadas.
// @Tags         movements
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                     true  "ID del movimiento"
// @Param        body  body  dto.UpdateMovementRequest  true  "Campos a cambiar"
// @Success      200  {object}  dto.MovementResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/movements/{id} [patch]
func (h *MovementHandler) Update(c *fiber.Ctx) error {
	var in dto.UpdateMovementRequest
	if ok, err := parseAndValidate(c, h.validate, &in); !ok {
		return err
	}
	if ok, err := h.checkMovementStore(c); !ok {
		return err
	}
	if in.StoreID != nil && !CanAccessStore(c, *in.StoreID) {
		return forbiddenStore(c)
	}
	out, err := h.uc.UpdateFromRequest(c.UserContext(), c.Params("id"), in)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}

// Delete godoc
// @Summary      Eliminar movimiento
// @Description  Elimina el movimiento y recalcula los saldos posteriores de su cadena.
// @Tags         movements
// @Security     Bearer
// @Param        id   path  string  true  "ID del movimiento"
// @Success      204
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/movements/{id} [delete]
func (h *MovementHandler) Delete(c *fiber.Ctx) error {
	if ok, err := h.checkMovementStore(c); !ok {
		return err
	}
	if err := h.uc.Delete(c.UserContext(), c.Params("id")); err != nil {
		return writeError(c, h.log, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Verify godoc
// @Summary      Verificar movimiento
// @Tags         movements
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                     true  "ID del movimiento"
// @Param        body  body  dto.VerifyMovementRequest  true  "verified y nota opcional"
// @Success      200  {object}  dto.MovementResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/movements/{id}/verify [post]
func (h *MovementHandler) Verify(c *fiber.Ctx) error {
	var in dto.VerifyMovementRequest
	if ok, err := parseAndValidate(c, h.validate, &in); !ok {
		return err
	}
	if ok, err := h.checkMovementStore(c); !ok {
		return err
	}
	d, err := h.uc.Verify(c.UserContext(), c.Params("id"), *in.Verified, in.Note, GetUserID(c))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(inventory.ToMovementResponse(d))
}

// Cancel godoc
// @Summary      Cancelar movimiento
// @Description  Marca el movimiento como cancelado y revierte su efecto sobre el stock.
// @Tags         movements
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                     true  "ID del movimiento"
// @Param        body  body  dto.CancelMovementRequest  true  "Motivo"
// @Success      200  {object}  dto.MovementResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/movements/{id}/cancel [post]
func (h *MovementHandler) Cancel(c *fiber.Ctx) error {
	var in dto.CancelMovementRequest
	if ok, err := parseAndValidate(c, h.validate, &in); !ok {
		return err
	}
	if ok, err := h.checkMovementStore(c); !ok {
		return err
	}
	d, err := h.uc.Cancel(c.UserContext(), c.Params("id"), in.Reason, GetUserID(c))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(inventory.ToMovementResponse(d))
}

// ListByStore godoc
// @Summary      Movimientos de una tienda
// @Tags         movements
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la tienda"
// @Success      200  {object}  dto.MovementListResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/stores/{id}/movements [get]
func (h *MovementHandler) ListByStore(c *fiber.Ctx) error {
	filter, err := parseFilter(c)
	if err != nil {
		return badRequest(c, "VALIDATION", err.Error())
	}
	storeID := c.Params("id")
	if !CanAccessStore(c, storeID) {
		return forbiddenStore(c)
	}
	page, err := h.query.ListByStore(c.UserContext(), storeID, filter)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(inventory.ToMovementListResponse(page))
}

// ListByProduct godoc
// @Summary      Movimientos de un producto
// @Tags         movements
// @Security     Bearer
// @Produce      json
// @Param        id        path   string  true   "ID del producto"
// @Param        store_id  query  string  false  "Tienda (obligatoria salvo admin)"
// @Success      200  {object}  dto.MovementListResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/products/{id}/movements [get]
func (h *MovementHandler) ListByProduct(c *fiber.Ctx) error {
	filter, err := parseFilter(c)
	if err != nil {
		return badRequest(c, "VALIDATION", err.Error())
	}
	if ok, err := scopeStore(c, &filter); !ok {
		return err
	}
	page, err := h.query.ListByProduct(c.UserContext(), c.Params("id"), filter)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(inventory.ToMovementListResponse(page))
}

// ListBySupplier godoc
// @Summary      Movimientos de un proveedor
// @Tags         movements
// @Security     Bearer
// @Produce      json
// @Param        id        path   string  true   "ID del proveedor"
// @Param        store_id  query  string  false  "Tienda (obligatoria salvo admin)"
// @Success      200  {object}  dto.MovementListResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/suppliers/{id}/movements [get]
func (h *MovementHandler) ListBySupplier(c *fiber.Ctx) error {
	filter, err := parseFilter(c)
	if err != nil {
		return badRequest(c, "VALIDATION", err.Error())
	}
	if ok, err := scopeStore(c, &filter); !ok {
		return err
	}
	page, err := h.query.ListBySupplier(c.UserContext(), c.Params("id"), filter)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(inventory.ToMovementListResponse(page))
}

// scopeStore exige store_id accesible para roles distintos de admin.
func scopeStore(c *fiber.Ctx, filter *repository.MovementFilter) (bool, error) {
	if GetRole(c) == entity.RoleAdmin {
		return true, nil
	}
	if filter.StoreID == "" {
		return false, badRequest(c, "STORE_REQUIRED", "store_id es obligatorio")
	}
	if !CanAccessStore(c, filter.StoreID) {
		return false, forbiddenStore(c)
	}
	return true, nil
}

// checkMovementStore verifica que el movimiento :id pertenezca a una tienda accesible.
func (h *MovementHandler) checkMovementStore(c *fiber.Ctx) (bool, error) {
	if GetRole(c) == entity.RoleAdmin {
		return true, nil
	}
	d, err := h.query.GetByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return false, writeError(c, h.log, err)
	}
	if !CanAccessStore(c, d.StoreID) {
		return false, forbiddenStore(c)
	}
	return true, nil
}

// parseFilter lee los filtros de listado desde la query string.
func parseFilter(c *fiber.Ctx) (repository.MovementFilter, error) {
	page := dto.PageRequest{Limit: c.QueryInt("limit"), Offset: c.QueryInt("offset")}
	page.DefaultPage()
	if page.Limit > maxPageLimit {
		page.Limit = maxPageLimit
	}
	f := repository.MovementFilter{
		StoreID:          c.Query("store_id"),
		ProductID:        c.Query("product_id"),
		SupplierID:       c.Query("supplier_id"),
		Type:             entity.MovementType(c.Query("type")),
		IncludeCancelled: c.QueryBool("include_cancelled", false),
		Limit:            page.Limit,
		Offset:           page.Offset,
	}
	var err error
	if f.From, err = parseTimeQuery(c, "from", false); err != nil {
		return f, err
	}
	if f.To, err = parseTimeQuery(c, "to", true); err != nil {
		return f, err
	}
	if v := c.Query("verified"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return f, fiber.NewError(fiber.StatusBadRequest, "verified debe ser true o false")
		}
		f.Verified = &b
	}
	return f, nil
}

// parseTimeQuery acepta RFC3339 o YYYY-MM-DD; vacío devuelve nil. Con endOfDay una fecha sin
// hora cubre el día completo (último instante antes de la medianoche siguiente), porque los
// filtros comparan con <=.
func parseTimeQuery(c *fiber.Ctx, key string, endOfDay bool) (*time.Time, error) {
	v := c.Query(key)
	if v == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return &t, nil
	}
	t, err := time.Parse("2006-01-02", v)
	if err != nil {
		return nil, fiber.NewError(fiber.StatusBadRequest, key+": formato de fecha inválido")
	}
	if endOfDay {
		t = t.AddDate(0, 0, 1).Add(-time.Nanosecond)
	}
	return &t, nil
}
