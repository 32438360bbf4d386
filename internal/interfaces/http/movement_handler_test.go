package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-ledger-api/internal/application/dto"
	"github.com/jhoicas/stock-ledger-api/internal/application/inventory"
	"github.com/jhoicas/stock-ledger-api/internal/domain"
	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
	ledger "github.com/jhoicas/stock-ledger-api/internal/domain/inventory"
	apphttp "github.com/jhoicas/stock-ledger-api/internal/interfaces/http"
	"github.com/jhoicas/stock-ledger-api/internal/infrastructure/memory"
	"github.com/jhoicas/stock-ledger-api/pkg/logger"
	pkgjwt "github.com/jhoicas/stock-ledger-api/pkg/jwt"
)

const (
	apiStore   = "store-1"
	apiOther   = "store-2"
	apiProduct = "prod-1"
)

type apiEnv struct {
	app      *fiber.App
	enqueued []string
}

func (e *apiEnv) EnqueueRecalculate(_ context.Context, productID, storeID string) (string, error) {
	if productID == "dup" {
		return "", domain.ErrDuplicateRequest
	}
	e.enqueued = append(e.enqueued, productID+"/"+storeID)
	return "task-1", nil
}

// newAPI arma la app completa sobre el store en memoria.
func newAPI(t *testing.T) *apiEnv {
	t.Helper()
	db := memory.NewStore()
	db.PutStore(&entity.Store{ID: apiStore, Name: "Centro", Active: true})
	db.PutStore(&entity.Store{ID: apiOther, Name: "Norte", Active: true})
	db.PutProduct(&entity.Product{ID: apiProduct, StoreID: apiStore, SKU: "SKU-1", Name: "Arroz",
		StockMin: decimal.NewFromInt(10), AlertPercentage: decimal.NewFromInt(50), Active: true})
	db.PutUser(&entity.User{ID: testUserID, Name: "Ana", Role: entity.RoleOperador})

	log := logger.Nop()
	reads := db.ReadRepos()
	projector := inventory.NewStockProjector(db, reads, ledger.StockPolicy{}, log)
	uc := inventory.NewMovementUseCase(db, reads, projector, nil, inventory.Config{}, log)
	query := inventory.NewQueryUseCase(reads)
	repl := inventory.NewReplenishmentUseCase(reads)

	env := &apiEnv{}
	app := fiber.New()
	apphttp.Router(app, apphttp.RouterDeps{
		Movements: apphttp.NewMovementHandler(uc, query, log),
		Stock:     apphttp.NewStockHandler(projector, uc, query, repl, env, log),
		JWTSecret: testJWTSecret,
	})
	env.app = app
	return env
}

func (e *apiEnv) do(t *testing.T, method, path, role string, body interface{}) (*http.Response, []byte) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	tok, err := pkgjwt.Generate(testJWTSecret, testUserID, role, []string{apiStore}, testIssuer, testExpMin)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+tok)
	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	resp.Body.Close()
	return resp, raw
}

func movementBody(typ string, qty string) map[string]interface{} {
	return map[string]interface{}{"type": typ, "quantity": qty, "store_id": apiStore, "product_id": apiProduct}
}

func decodeError(t *testing.T, raw []byte) dto.ErrorResponse {
	t.Helper()
	var e dto.ErrorResponse
	require.NoError(t, json.Unmarshal(raw, &e))
	return e
}

// Caso 1: alta, saldo resultante y relaciones en la respuesta.
func TestMovementAPI_CreateYStock(t *testing.T) {
	api := newAPI(t)
	resp, raw := api.do(t, http.MethodPost, "/api/movements", "operador", movementBody("ENTRADA", "20"))
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(raw))

	var m dto.MovementResponse
	require.NoError(t, json.Unmarshal(raw, &m))
	assert.True(t, decimal.NewFromInt(20).Equal(m.BalanceAfter))
	require.NotNil(t, m.Product)
	assert.Equal(t, "SKU-1", m.Product.SKU)
	require.NotNil(t, m.User)
	assert.Equal(t, "Ana", m.User.Name)

	resp, raw = api.do(t, http.MethodPost, "/api/movements", "operador", movementBody("SAIDA", "5"))
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(raw))

	resp, raw = api.do(t, http.MethodGet, "/api/stock?product_id="+apiProduct+"&store_id="+apiStore, "operador", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(raw))
	var s dto.StockResponse
	require.NoError(t, json.Unmarshal(raw, &s))
	assert.True(t, decimal.NewFromInt(15).Equal(s.CurrentStock))
	assert.Equal(t, "OK", s.Status)
}

// Caso 2: errores de dominio mapeados a status y código estables.
func TestMovementAPI_MapeoDeErrores(t *testing.T) {
	api := newAPI(t)

	resp, raw := api.do(t, http.MethodPost, "/api/movements", "operador", movementBody("SAIDA", "1"))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "INSUFFICIENT_STOCK", decodeError(t, raw).Code)

	resp, raw = api.do(t, http.MethodPost, "/api/movements", "operador", movementBody("ENTRADA", "0"))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "VALIDATION", decodeError(t, raw).Code)

	resp, raw = api.do(t, http.MethodPost, "/api/movements", "operador", movementBody("TRASLADO", "1"))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "VALIDATION", decodeError(t, raw).Code)

	body := movementBody("ENTRADA", "1")
	body["product_id"] = "nope"
	resp, raw = api.do(t, http.MethodPost, "/api/movements", "operador", body)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "PRODUCT_NOT_FOUND", decodeError(t, raw).Code)

	resp, _ = api.do(t, http.MethodGet, "/api/movements/nope", "admin", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

// Caso 3: un operador no puede registrar en tiendas fuera de su token.
func TestMovementAPI_AlcancePorTienda(t *testing.T) {
	api := newAPI(t)
	body := movementBody("ENTRADA", "1")
	body["store_id"] = apiOther
	resp, _ := api.do(t, http.MethodPost, "/api/movements", "operador", body)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, raw := api.do(t, http.MethodGet, "/api/movements", "operador", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "STORE_REQUIRED", decodeError(t, raw).Code)

	resp, _ = api.do(t, http.MethodGet, "/api/movements", "admin", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode, "admin lista sin tienda")
}

// Caso 4: cancelar y eliminar requieren gerente o admin.
func TestMovementAPI_RolesEnMutaciones(t *testing.T) {
	api := newAPI(t)
	resp, raw := api.do(t, http.MethodPost, "/api/movements", "operador", movementBody("ENTRADA", "8"))
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(raw))
	var m dto.MovementResponse
	require.NoError(t, json.Unmarshal(raw, &m))

	resp, _ = api.do(t, http.MethodPost, "/api/movements/"+m.ID+"/cancel", "operador", map[string]string{"reason": "error de carga"})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, raw = api.do(t, http.MethodPost, "/api/movements/"+m.ID+"/cancel", "gerente", map[string]string{"reason": "error de carga"})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(raw))
	var cancelled dto.MovementResponse
	require.NoError(t, json.Unmarshal(raw, &cancelled))
	assert.True(t, cancelled.Cancelled)

	resp, raw = api.do(t, http.MethodPost, "/api/movements/"+m.ID+"/cancel", "gerente", map[string]string{"reason": "otra vez"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "ALREADY_CANCELLED", decodeError(t, raw).Code)

	resp, _ = api.do(t, http.MethodDelete, "/api/movements/"+m.ID, "gerente", nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
}

// Caso 5: lote con fallos parciales responde 200 con el detalle por ítem.
func TestMovementAPI_Bulk(t *testing.T) {
	api := newAPI(t)
	resp, raw := api.do(t, http.MethodPost, "/api/movements/bulk", "operador", map[string]interface{}{
		"movements": []map[string]interface{}{
			movementBody("ENTRADA", "3"),
			movementBody("SAIDA", "10"),
			movementBody("SAIDA", "1"),
		},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(raw))
	var out dto.BulkMovementResponse
	require.NoError(t, json.Unmarshal(raw, &out))
	assert.Equal(t, 2, out.SuccessCount)
	assert.Equal(t, 1, out.FailureCount)
	require.Len(t, out.Results, 3)
	require.NotNil(t, out.Results[1].Error)
	assert.Equal(t, "INSUFFICIENT_STOCK", out.Results[1].Error.Code)

	resp, _ = api.do(t, http.MethodPost, "/api/movements/bulk", "operador", map[string]interface{}{"movements": []interface{}{}})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode, "lote vacío")
}

// Caso 6: recálculo síncrono (solo admin) y asíncrono encolado.
func TestStockAPI_Recalculate(t *testing.T) {
	api := newAPI(t)
	resp, raw := api.do(t, http.MethodPost, "/api/movements", "operador", movementBody("ENTRADA", "4"))
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(raw))

	req := map[string]interface{}{"product_id": apiProduct, "store_id": apiStore}
	resp, _ = api.do(t, http.MethodPost, "/api/stock/recalculate", "gerente", req)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, raw = api.do(t, http.MethodPost, "/api/stock/recalculate", "admin", req)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(raw))
	var out dto.RecalculateResponse
	require.NoError(t, json.Unmarshal(raw, &out))
	require.NotNil(t, out.CurrentStock)
	assert.True(t, decimal.NewFromInt(4).Equal(*out.CurrentStock))

	req["async"] = true
	resp, raw = api.do(t, http.MethodPost, "/api/stock/recalculate", "admin", req)
	require.Equal(t, http.StatusAccepted, resp.StatusCode, string(raw))
	require.NoError(t, json.Unmarshal(raw, &out))
	assert.True(t, out.Queued)
	assert.Equal(t, []string{apiProduct + "/" + apiStore}, api.enqueued)

	resp, _ = api.do(t, http.MethodPost, "/api/stock/recalculate", "admin",
		map[string]interface{}{"product_id": "dup", "store_id": apiStore, "async": true})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

// Caso 7: auditoría de la cadena y listado de bajo stock.
func TestStockAPI_VerifyYBajoStock(t *testing.T) {
	api := newAPI(t)
	resp, raw := api.do(t, http.MethodPost, "/api/movements", "operador", movementBody("ENTRADA", "3"))
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(raw))

	resp, raw = api.do(t, http.MethodGet, "/api/stock/verify?product_id="+apiProduct+"&store_id="+apiStore, "gerente", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(raw))
	var v dto.StockVerificationResponse
	require.NoError(t, json.Unmarshal(raw, &v))
	assert.True(t, v.Consistent)
	assert.Equal(t, 1, v.Movements)

	resp, raw = api.do(t, http.MethodGet, "/api/stock/low?store_id="+apiStore, "operador", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(raw))
	var low dto.LowStockResponse
	require.NoError(t, json.Unmarshal(raw, &low))
	require.Equal(t, 1, low.Total)
	assert.Equal(t, "CRITICAL", low.Items[0].Status)
}

// Caso 8: conflicto de concurrencia → 500 reintentable con Retry-After.
func TestWriteError_Concurrencia(t *testing.T) {
	app := fiber.New()
	app.Get("/x", func(c *fiber.Ctx) error {
		return apphttp.WriteErrorForTest(c, domain.ErrConcurrencyConflict)
	})
	app.Get("/y", func(c *fiber.Ctx) error {
		return apphttp.WriteErrorForTest(c, errors.New("pgx: conexión perdida"))
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/x", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Equal(t, "1", resp.Header.Get("Retry-After"))
	raw, _ := io.ReadAll(resp.Body)
	body := decodeError(t, raw)
	assert.Equal(t, "CONCURRENCY_CONFLICT", body.Code)
	assert.True(t, body.Retryable)

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/y", nil), -1)
	require.NoError(t, err)
	raw, _ = io.ReadAll(resp.Body)
	body = decodeError(t, raw)
	assert.Equal(t, "INTERNAL", body.Code)
	assert.NotContains(t, body.Message, "pgx", "el detalle interno no se expone")
	assert.False(t, body.Retryable)
}

// Caso 9: una referencia rota reportada por la base es 400 con código estable, no 500.
func TestWriteError_ReferenciaInvalida(t *testing.T) {
	app := fiber.New()
	app.Get("/x", func(c *fiber.Ctx) error {
		return apphttp.WriteErrorForTest(c, fmt.Errorf("transaction: %w", domain.ErrInvalidReference))
	})
	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/x", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	raw, _ := io.ReadAll(resp.Body)
	assert.Equal(t, "INVALID_REFERENCE", decodeError(t, raw).Code)
}

// Caso 10: "to" con solo fecha incluye los movimientos de todo ese día.
func TestMovementAPI_FiltroHastaFecha(t *testing.T) {
	api := newAPI(t)
	resp, raw := api.do(t, http.MethodPost, "/api/movements", "operador", movementBody("ENTRADA", "4"))
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(raw))

	today := time.Now().UTC().Format("2006-01-02")
	resp, raw = api.do(t, http.MethodGet, "/api/movements?store_id="+apiStore+"&from="+today+"&to="+today, "operador", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(raw))
	var page dto.MovementListResponse
	require.NoError(t, json.Unmarshal(raw, &page))
	assert.Len(t, page.Items, 1)
	assert.Equal(t, 1, page.Page.Total)

	resp, raw = api.do(t, http.MethodGet, "/api/stock/history?product_id="+apiProduct+"&store_id="+apiStore+"&to="+today, "operador", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(raw))
	assert.Contains(t, string(raw), `"balance"`)
}
