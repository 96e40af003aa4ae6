package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventario-ledger/internal/application/dto"
	"github.com/jhoicas/inventario-ledger/internal/application/inventory"
	"github.com/jhoicas/inventario-ledger/internal/application/usecase"
	apphttp "github.com/jhoicas/inventario-ledger/internal/interfaces/http"
	"github.com/jhoicas/inventario-ledger/internal/infrastructure/memory"
)

type apiClient struct {
	t   *testing.T
	app *fiber.App
}

func newAPI(t *testing.T, health func(context.Context) error) *apiClient {
	t.Helper()
	ledger := inventory.NewLedgerUseCase(memory.NewStore())
	app := fiber.New()
	apphttp.Router(app, apphttp.RouterDeps{
		Ledger:    ledger,
		ProductUC: usecase.NewProductUseCase(ledger),
		JWTSecret: testJWTSecret,
		Health:    health,
	})
	return &apiClient{t: t, app: app}
}

// do envía la petición con el rol dado ("" = sin token) y decodifica la respuesta en out.
func (a *apiClient) do(method, path, role string, body any, out any) int {
	a.t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(a.t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if role != "" {
		req.Header.Set("Authorization", tokenForRole(a.t, role))
	}
	resp, err := a.app.Test(req, -1)
	require.NoError(a.t, err)
	defer resp.Body.Close()
	if out != nil && resp.StatusCode != http.StatusNoContent {
		require.NoError(a.t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func (a *apiClient) createProduct(code string, initial int64) dto.ProductResponse {
	a.t.Helper()
	var p dto.ProductResponse
	status := a.do(http.MethodPost, "/api/products", apphttp.RoleBodeguero,
		dto.CreateProductRequest{Code: code, Name: "Producto " + code, StockMin: 2, InitialStock: initial}, &p)
	require.Equal(a.t, http.StatusCreated, status)
	return p
}

func TestHealth(t *testing.T) {
	api := newAPI(t, nil)
	var body map[string]string
	assert.Equal(t, http.StatusOK, api.do(http.MethodGet, "/health", "", nil, &body))
	assert.Equal(t, "ok", body["status"])

	down := newAPI(t, func(context.Context) error { return errors.New("db down") })
	var errBody dto.ErrorResponse
	assert.Equal(t, http.StatusServiceUnavailable, down.do(http.MethodGet, "/health", "", nil, &errBody))
	assert.Equal(t, "UNHEALTHY", errBody.Code)
}

func TestProducts_CRUD(t *testing.T) {
	api := newAPI(t, nil)
	p := api.createProduct("tor-001", 10)
	assert.Equal(t, "TOR-001", p.Code)
	assert.Equal(t, int64(10), p.StockActual)

	var errBody dto.ErrorResponse
	status := api.do(http.MethodPost, "/api/products", apphttp.RoleAdmin,
		dto.CreateProductRequest{Code: "TOR-001", Name: "Repetido"}, &errBody)
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "DUPLICATE", errBody.Code)

	status = api.do(http.MethodPost, "/api/products", apphttp.RoleVendedor,
		dto.CreateProductRequest{Code: "X-1", Name: "X"}, &errBody)
	assert.Equal(t, http.StatusForbidden, status)

	status = api.do(http.MethodPost, "/api/products", apphttp.RoleAdmin, dto.CreateProductRequest{Name: "Sin código"}, &errBody)
	assert.Equal(t, http.StatusBadRequest, status)

	var got dto.ProductResponse
	assert.Equal(t, http.StatusOK, api.do(http.MethodGet, "/api/products/"+p.ID, apphttp.RoleVendedor, nil, &got))
	assert.Equal(t, p.ID, got.ID)

	var list dto.ProductListResponse
	assert.Equal(t, http.StatusOK, api.do(http.MethodGet, "/api/products?code=tor-001", apphttp.RoleVendedor, nil, &list))
	require.Len(t, list.Items, 1)
	assert.Equal(t, p.ID, list.Items[0].ID)

	var updated dto.ProductResponse
	status = api.do(http.MethodPut, "/api/products/"+p.ID+"/thresholds", apphttp.RoleBodeguero,
		dto.UpdateThresholdsRequest{StockMin: 3, StockMax: 50}, &updated)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, int64(50), updated.StockMax)

	status = api.do(http.MethodPut, "/api/products/"+p.ID+"/thresholds", apphttp.RoleBodeguero,
		dto.UpdateThresholdsRequest{StockMin: 60, StockMax: 50}, &errBody)
	assert.Equal(t, http.StatusBadRequest, status)

	assert.Equal(t, http.StatusNotFound, api.do(http.MethodGet, "/api/products/no-existe", apphttp.RoleAdmin, nil, &errBody))
	assert.Equal(t, "UNKNOWN_PRODUCT", errBody.Code)

	assert.Equal(t, http.StatusNoContent, api.do(http.MethodDelete, "/api/products/"+p.ID, apphttp.RoleAdmin, nil, nil))
	assert.Equal(t, http.StatusOK, api.do(http.MethodGet, "/api/products", apphttp.RoleAdmin, nil, &list))
	assert.Empty(t, list.Items)
	assert.Equal(t, http.StatusOK, api.do(http.MethodGet, "/api/products?include_inactive=true", apphttp.RoleAdmin, nil, &list))
	assert.Len(t, list.Items, 1)
}

// Los IDs de la ruta no deben quedar atados al buffer de la petición: tras muchas
// peticiones con otros IDs el producto sigue siendo localizable.
func TestProducts_IDsSobrevivenAOtrasPeticiones(t *testing.T) {
	api := newAPI(t, nil)
	p := api.createProduct("PAR-1", 5)

	var updated dto.ProductResponse
	require.Equal(t, http.StatusOK, api.do(http.MethodPut, "/api/products/"+p.ID+"/thresholds", apphttp.RoleAdmin,
		dto.UpdateThresholdsRequest{StockMin: 1, StockMax: 9}, &updated))
	require.Equal(t, http.StatusOK, api.do(http.MethodPost, "/api/inventory/products/"+p.ID+"/reconcile",
		apphttp.RoleAdmin, nil, nil))

	var errBody dto.ErrorResponse
	for i := 0; i < 50; i++ {
		other := fmt.Sprintf("%036d", i)
		assert.Equal(t, http.StatusNotFound, api.do(http.MethodGet, "/api/products/"+other, apphttp.RoleAdmin, nil, &errBody))
	}

	var list dto.ProductListResponse
	require.Equal(t, http.StatusOK, api.do(http.MethodGet, "/api/products", apphttp.RoleAdmin, nil, &list))
	require.Len(t, list.Items, 1)
	assert.Equal(t, p.ID, list.Items[0].ID)
	assert.Equal(t, int64(9), list.Items[0].StockMax)

	var got dto.ProductResponse
	require.Equal(t, http.StatusOK, api.do(http.MethodGet, "/api/products/"+p.ID, apphttp.RoleAdmin, nil, &got))
	assert.Equal(t, p.ID, got.ID)
	assert.Equal(t, int64(5), got.StockActual)
}

func TestMovements_HTTP(t *testing.T) {
	api := newAPI(t, nil)
	p := api.createProduct("CAB-1", 10)

	var res dto.MovementResultResponse
	status := api.do(http.MethodPost, "/api/inventory/movements", apphttp.RoleBodeguero,
		dto.RegisterMovementRequest{ProductID: p.ID, Type: "out", Quantity: 4, Reason: "venta"}, &res)
	require.Equal(t, http.StatusCreated, status)
	assert.Equal(t, int64(6), res.NewStock)
	assert.Equal(t, "EXIT", res.Movement.Type)
	assert.Equal(t, testActor, res.Movement.Actor)

	var errBody dto.ErrorResponse
	status = api.do(http.MethodPost, "/api/inventory/movements", apphttp.RoleBodeguero,
		dto.RegisterMovementRequest{ProductID: p.ID, Type: "EXIT", Quantity: 7}, &errBody)
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "INSUFFICIENT_STOCK", errBody.Code)

	status = api.do(http.MethodPost, "/api/inventory/movements", apphttp.RoleBodeguero,
		dto.RegisterMovementRequest{ProductID: p.ID, Type: "TRANSFER", Quantity: 1}, &errBody)
	assert.Equal(t, http.StatusBadRequest, status)

	status = api.do(http.MethodPost, "/api/inventory/movements", apphttp.RoleBodeguero,
		dto.RegisterMovementRequest{ProductID: p.ID, Type: "ENTRY", Quantity: 0}, &errBody)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "INVALID_QUANTITY", errBody.Code)

	status = api.do(http.MethodPost, "/api/inventory/movements", apphttp.RoleVendedor,
		dto.RegisterMovementRequest{ProductID: p.ID, Type: "ENTRY", Quantity: 1}, &errBody)
	assert.Equal(t, http.StatusForbidden, status)

	var history dto.MovementListResponse
	status = api.do(http.MethodGet, "/api/inventory/products/"+p.ID+"/movements?order=asc", apphttp.RoleVendedor, nil, &history)
	require.Equal(t, http.StatusOK, status)
	require.Len(t, history.Items, 2)
	assert.Equal(t, "ENTRY", history.Items[0].Type)
	assert.Equal(t, "EXIT", history.Items[1].Type)

	status = api.do(http.MethodGet, "/api/inventory/products/"+p.ID+"/movements?type=EXIT", apphttp.RoleVendedor, nil, &history)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, history.Items, 1)

	status = api.do(http.MethodGet, "/api/inventory/products/"+p.ID+"/movements?from=ayer", apphttp.RoleVendedor, nil, &errBody)
	assert.Equal(t, http.StatusBadRequest, status)

	var av inventory.Availability
	status = api.do(http.MethodGet, "/api/inventory/products/"+p.ID+"/availability", apphttp.RoleVendedor, nil, &av)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, int64(6), av.Available)
}

func TestReservations_HTTP(t *testing.T) {
	api := newAPI(t, nil)
	p := api.createProduct("TUB-1", 10)

	var res dto.ReservationResponse
	status := api.do(http.MethodPost, "/api/inventory/reservations", apphttp.RoleVendedor,
		dto.CreateReservationRequest{ProductID: p.ID, HolderID: "OT-22", Quantity: 6}, &res)
	require.Equal(t, http.StatusCreated, status)
	assert.Equal(t, "ACTIVE", res.State)
	assert.Equal(t, testActor, res.CreatedBy)

	var errBody dto.ErrorResponse
	status = api.do(http.MethodPost, "/api/inventory/reservations", apphttp.RoleVendedor,
		dto.CreateReservationRequest{ProductID: p.ID, HolderID: "OT-23", Quantity: 5}, &errBody)
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "INSUFFICIENT_AVAILABILITY", errBody.Code)

	status = api.do(http.MethodDelete, "/api/products/"+p.ID, apphttp.RoleAdmin, nil, &errBody)
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "ACTIVE_RESERVATIONS", errBody.Code)

	var list dto.ReservationListResponse
	status = api.do(http.MethodGet, "/api/inventory/reservations?state=active&product_id="+p.ID, apphttp.RoleVendedor, nil, &list)
	require.Equal(t, http.StatusOK, status)
	require.Len(t, list.Items, 1)

	var consumed dto.MovementResultResponse
	status = api.do(http.MethodPost, "/api/inventory/reservations/"+res.ID+"/consume", apphttp.RoleBodeguero,
		dto.ConsumeReservationRequest{Quantity: 6}, &consumed)
	require.Equal(t, http.StatusCreated, status)
	assert.Equal(t, int64(4), consumed.NewStock)
	assert.Equal(t, res.ID, consumed.Movement.ReservationID)

	status = api.do(http.MethodPost, "/api/inventory/reservations/"+res.ID+"/release", apphttp.RoleVendedor, nil, &errBody)
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "RESERVATION_CLOSED", errBody.Code)

	var got dto.ReservationResponse
	assert.Equal(t, http.StatusOK, api.do(http.MethodGet, "/api/inventory/reservations/"+res.ID, apphttp.RoleVendedor, nil, &got))
	assert.Equal(t, "CONSUMED", got.State)

	assert.Equal(t, http.StatusNotFound, api.do(http.MethodGet, "/api/inventory/reservations/nope", apphttp.RoleVendedor, nil, &errBody))
	assert.Equal(t, "RESERVATION_NOT_FOUND", errBody.Code)

	var second dto.ReservationResponse
	require.Equal(t, http.StatusCreated, api.do(http.MethodPost, "/api/inventory/reservations", apphttp.RoleVendedor,
		dto.CreateReservationRequest{ProductID: p.ID, HolderID: "OT-24", Quantity: 2}, &second))
	var released dto.ReservationResponse
	status = api.do(http.MethodPost, "/api/inventory/reservations/"+second.ID+"/release", apphttp.RoleVendedor,
		dto.ReleaseReservationRequest{Reason: "proyecto cancelado"}, &released)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "RELEASED", released.State)
	assert.Equal(t, "proyecto cancelado", released.CloseReason)
}

func TestReconcileAndReplenishment_HTTP(t *testing.T) {
	api := newAPI(t, nil)
	p := api.createProduct("VAL-1", 1)

	var errBody dto.ErrorResponse
	assert.Equal(t, http.StatusForbidden,
		api.do(http.MethodPost, "/api/inventory/products/"+p.ID+"/reconcile", apphttp.RoleBodeguero, nil, &errBody))

	var rec inventory.ReconcileResult
	require.Equal(t, http.StatusOK,
		api.do(http.MethodPost, "/api/inventory/products/"+p.ID+"/reconcile", apphttp.RoleAdmin, nil, &rec))
	assert.False(t, rec.Repaired)
	assert.Equal(t, int64(1), rec.Folded)

	var body struct {
		Total          int                                 `json:"total"`
		Replenishments []inventory.ReplenishmentSuggestion `json:"replenishments"`
	}
	require.Equal(t, http.StatusOK, api.do(http.MethodGet, "/api/inventory/replenishment", apphttp.RoleVendedor, nil, &body))
	require.Equal(t, 1, body.Total)
	assert.Equal(t, p.ID, body.Replenishments[0].ProductID)
}

func TestProtectedRoutes_RequireToken(t *testing.T) {
	api := newAPI(t, nil)
	var errBody dto.ErrorResponse
	assert.Equal(t, http.StatusUnauthorized, api.do(http.MethodGet, "/api/products", "", nil, &errBody))
	assert.Equal(t, "MISSING_TOKEN", errBody.Code)
}
