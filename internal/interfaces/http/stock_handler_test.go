package http_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/application/ledger"
	"github.com/jhoicas/stock-ledger/internal/application/reservation"
	"github.com/jhoicas/stock-ledger/internal/application/validation"
	"github.com/jhoicas/stock-ledger/internal/infrastructure/memory"
	apphttp "github.com/jhoicas/stock-ledger/internal/interfaces/http"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

func decFromString(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	require.NoError(t, err)
	return d
}

// buildTestApp construye la aplicación Fiber completa sobre el almacén en
// memoria, con el cableado real de casos de uso.
func buildTestApp() *fiber.App {
	store := memory.NewStore()
	guard := ledger.NewKeyGuard()
	record := ledger.NewRecordTransactionUseCase(store, ledger.NopNotifier{}, guard, false)
	query := ledger.NewQueryUseCase(store.LedgerEntries(), store.StockBalances())
	reservations := reservation.NewUseCase(store, store.StockReservations(), ledger.NopNotifier{}, guard)
	validator := validation.NewStockValidator(query)

	app := fiber.New()
	apphttp.Router(app, apphttp.RouterDeps{
		RecordTransaction: record,
		Query:             query,
		Reservations:      reservations,
		Validator:         validator,
	})
	return app
}

// doJSON lanza una petición con body JSON y devuelve la respuesta.
func doJSON(t *testing.T, app *fiber.App, method, path string, body any) *http.Response {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

// decodeBody decodifica el body JSON de la respuesta en out.
func decodeBody(t *testing.T, resp *http.Response, out any) {
	t.Helper()
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(raw, out), "body: %s", string(raw))
}

// seedTransaction registra una transacción vía HTTP y devuelve el asiento.
func seedTransaction(t *testing.T, app *fiber.App, body map[string]any) dto.LedgerEntryResponse {
	t.Helper()
	resp := doJSON(t, app, http.MethodPost, "/api/stock/transactions", body)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var entry dto.LedgerEntryResponse
	decodeBody(t, resp, &entry)
	return entry
}

// ──────────────────────────────────────────────────────────────────────────────
// Transacciones
// ──────────────────────────────────────────────────────────────────────────────

// Caso 1: Registrar una entrada devuelve 201 con el asiento estampado.
func TestRecordTransaction_Devuelve201ConElAsiento(t *testing.T) {
	app := buildTestApp()

	entry := seedTransaction(t, app, map[string]any{
		"product_id":   "prod-A",
		"warehouse_id": "wh-1",
		"type":         "IN",
		"quantity":     "100",
		"performed_by": "alice",
	})

	assert.NotEmpty(t, entry.ID)
	assert.NotEmpty(t, entry.TransactionID)
	assert.Equal(t, "IN", entry.Type)
	assert.Equal(t, "default", entry.LocationID)
	assert.True(t, entry.PreviousBalance.IsZero())
	assert.True(t, entry.NewBalance.Equal(decFromString(t, "100")))
}

// Caso 2: Un tipo desconocido devuelve 400 con código VALIDATION.
func TestRecordTransaction_TipoDesconocidoDevuelve400(t *testing.T) {
	app := buildTestApp()

	resp := doJSON(t, app, http.MethodPost, "/api/stock/transactions", map[string]any{
		"product_id":   "prod-A",
		"warehouse_id": "wh-1",
		"type":         "BANANA",
		"quantity":     "1",
	})

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	var body dto.ErrorResponse
	decodeBody(t, resp, &body)
	assert.Equal(t, "VALIDATION", body.Code)
}

// Caso 3: Una salida por encima del disponible devuelve 409 INSUFFICIENT_STOCK.
func TestRecordTransaction_InsuficienteDevuelve409(t *testing.T) {
	app := buildTestApp()
	seedTransaction(t, app, map[string]any{
		"product_id":   "prod-A",
		"warehouse_id": "wh-1",
		"type":         "IN",
		"quantity":     "10",
		"performed_by": "alice",
	})

	resp := doJSON(t, app, http.MethodPost, "/api/stock/transactions", map[string]any{
		"product_id":   "prod-A",
		"warehouse_id": "wh-1",
		"type":         "OUT",
		"quantity":     "50",
		"performed_by": "bob",
	})

	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	var body dto.ErrorResponse
	decodeBody(t, resp, &body)
	assert.Equal(t, "INSUFFICIENT_STOCK", body.Code)
}

// Caso 4: Un traslado devuelve 201 con el par de asientos.
func TestTransfer_Devuelve201ConElPar(t *testing.T) {
	app := buildTestApp()
	seedTransaction(t, app, map[string]any{
		"product_id":   "prod-A",
		"warehouse_id": "wh-1",
		"type":         "IN",
		"quantity":     "100",
		"performed_by": "alice",
	})

	resp := doJSON(t, app, http.MethodPost, "/api/stock/transfers", map[string]any{
		"product_id":        "prod-A",
		"from_warehouse_id": "wh-1",
		"to_warehouse_id":   "wh-2",
		"quantity":          "30",
		"performed_by":      "bob",
	})

	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var entries []dto.LedgerEntryResponse
	decodeBody(t, resp, &entries)
	require.Len(t, entries, 2)
	assert.Equal(t, "TRANSFER_OUT", entries[0].Type)
	assert.Equal(t, "TRANSFER_IN", entries[1].Type)
	assert.Equal(t, entries[0].TransactionID, entries[1].TransactionID)
}

// ──────────────────────────────────────────────────────────────────────────────
// Saldos y libro
// ──────────────────────────────────────────────────────────────────────────────

// Caso 5: GET /balance devuelve el saldo de la clave; sin historial, 404.
func TestGetBalance_ConYSinHistorial(t *testing.T) {
	app := buildTestApp()
	seedTransaction(t, app, map[string]any{
		"product_id":   "prod-A",
		"warehouse_id": "wh-1",
		"type":         "IN",
		"quantity":     "100",
		"performed_by": "alice",
	})

	resp := doJSON(t, app, http.MethodGet, "/api/stock/balance?product_id=prod-A&warehouse_id=wh-1", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var balance dto.BalanceResponse
	decodeBody(t, resp, &balance)
	assert.True(t, balance.TotalQuantity.Equal(decFromString(t, "100")))
	assert.True(t, balance.AvailableQuantity.Equal(decFromString(t, "100")))

	resp = doJSON(t, app, http.MethodGet, "/api/stock/balance?product_id=prod-X&warehouse_id=wh-1", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = doJSON(t, app, http.MethodGet, "/api/stock/balance?product_id=prod-A", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode, "warehouse_id es obligatorio")
}

// Caso 6: GET /balance/aggregate suma las ubicaciones de la bodega.
func TestGetAggregateBalance_SumaUbicaciones(t *testing.T) {
	app := buildTestApp()
	seedTransaction(t, app, map[string]any{
		"product_id":   "prod-A",
		"warehouse_id": "wh-1",
		"location_id":  "A-01",
		"type":         "IN",
		"quantity":     "40",
		"performed_by": "alice",
	})
	seedTransaction(t, app, map[string]any{
		"product_id":   "prod-A",
		"warehouse_id": "wh-1",
		"location_id":  "A-02",
		"type":         "IN",
		"quantity":     "10",
		"performed_by": "alice",
	})

	resp := doJSON(t, app, http.MethodGet, "/api/stock/balance/aggregate?product_id=prod-A&warehouse_id=wh-1", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var balance dto.BalanceResponse
	decodeBody(t, resp, &balance)
	assert.True(t, balance.TotalQuantity.Equal(decFromString(t, "50")))
	assert.Empty(t, balance.LocationID)
}

// Caso 7: GET /ledger exige product_id o warehouse_id y devuelve los asientos.
func TestListEntries_PorProducto(t *testing.T) {
	app := buildTestApp()
	seedTransaction(t, app, map[string]any{
		"product_id":   "prod-A",
		"warehouse_id": "wh-1",
		"type":         "IN",
		"quantity":     "100",
		"performed_by": "alice",
	})
	seedTransaction(t, app, map[string]any{
		"product_id":   "prod-A",
		"warehouse_id": "wh-1",
		"type":         "OUT",
		"quantity":     "30",
		"performed_by": "bob",
	})

	resp := doJSON(t, app, http.MethodGet, "/api/stock/ledger?product_id=prod-A", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var body struct {
		Total   int                       `json:"total"`
		Entries []dto.LedgerEntryResponse `json:"entries"`
	}
	decodeBody(t, resp, &body)
	assert.Equal(t, 2, body.Total)

	resp = doJSON(t, app, http.MethodGet, "/api/stock/ledger", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode, "sin filtros no hay listado")

	resp = doJSON(t, app, http.MethodGet, "/api/stock/ledger?product_id=prod-A&from=ayer", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode, "from debe ser RFC3339")
}

// ──────────────────────────────────────────────────────────────────────────────
// Reservas
// ──────────────────────────────────────────────────────────────────────────────

// Caso 8: Ciclo completo de reserva: crear (201), liberar (200) y el doble
// cierre devuelve 409 INVALID_STATE.
func TestReservations_CicloCompleto(t *testing.T) {
	app := buildTestApp()
	seedTransaction(t, app, map[string]any{
		"product_id":   "prod-A",
		"warehouse_id": "wh-1",
		"type":         "IN",
		"quantity":     "100",
		"performed_by": "alice",
	})

	resp := doJSON(t, app, http.MethodPost, "/api/stock/reservations", map[string]any{
		"product_id":   "prod-A",
		"warehouse_id": "wh-1",
		"quantity":     "40",
		"reserved_by":  "alice",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var res dto.ReservationResponse
	decodeBody(t, resp, &res)
	assert.Equal(t, "active", res.Status)

	resp = doJSON(t, app, http.MethodPost, "/api/stock/reservations/"+res.ID+"/release", map[string]any{"by": "alice"})
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = doJSON(t, app, http.MethodPost, "/api/stock/reservations/"+res.ID+"/release", map[string]any{"by": "alice"})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	var body dto.ErrorResponse
	decodeBody(t, resp, &body)
	assert.Equal(t, "INVALID_STATE", body.Code)
}

// Caso 9: Reservar sin disponibilidad devuelve 409; sobre una reserva
// inexistente, 404.
func TestReservations_Errores(t *testing.T) {
	app := buildTestApp()

	resp := doJSON(t, app, http.MethodPost, "/api/stock/reservations", map[string]any{
		"product_id":   "prod-A",
		"warehouse_id": "wh-1",
		"quantity":     "5",
		"reserved_by":  "alice",
	})
	assert.Equal(t, http.StatusConflict, resp.StatusCode, "sin stock no hay reserva")

	resp = doJSON(t, app, http.MethodPost, "/api/stock/reservations/no-existe/release", map[string]any{"by": "alice"})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

// Caso 10: Consumir una reserva descuenta el stock vía su asiento OUT.
func TestReservations_ConsumoDescuentaStock(t *testing.T) {
	app := buildTestApp()
	seedTransaction(t, app, map[string]any{
		"product_id":   "prod-A",
		"warehouse_id": "wh-1",
		"type":         "IN",
		"quantity":     "100",
		"performed_by": "alice",
	})

	resp := doJSON(t, app, http.MethodPost, "/api/stock/reservations", map[string]any{
		"product_id":   "prod-A",
		"warehouse_id": "wh-1",
		"quantity":     "40",
		"reserved_by":  "alice",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var res dto.ReservationResponse
	decodeBody(t, resp, &res)

	resp = doJSON(t, app, http.MethodPost, "/api/stock/reservations/"+res.ID+"/consume", map[string]any{"by": "bob"})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = doJSON(t, app, http.MethodGet, "/api/stock/balance?product_id=prod-A&warehouse_id=wh-1", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var balance dto.BalanceResponse
	decodeBody(t, resp, &balance)
	assert.True(t, balance.TotalQuantity.Equal(decFromString(t, "60")))
	assert.True(t, balance.ReservedQuantity.IsZero())
}

// Caso 11: POST /reservations/expire-due devuelve el conteo de vencidas.
func TestReservations_ExpireDue(t *testing.T) {
	app := buildTestApp()
	seedTransaction(t, app, map[string]any{
		"product_id":   "prod-A",
		"warehouse_id": "wh-1",
		"type":         "IN",
		"quantity":     "100",
		"performed_by": "alice",
	})
	resp := doJSON(t, app, http.MethodPost, "/api/stock/reservations", map[string]any{
		"product_id":   "prod-A",
		"warehouse_id": "wh-1",
		"quantity":     "10",
		"reserved_by":  "alice",
		"expires_at":   "2020-01-01T00:00:00Z",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = doJSON(t, app, http.MethodPost, "/api/stock/reservations/expire-due", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var body struct {
		Expired int `json:"expired"`
	}
	decodeBody(t, resp, &body)
	assert.Equal(t, 1, body.Expired)
}

// ──────────────────────────────────────────────────────────────────────────────
// Validación
// ──────────────────────────────────────────────────────────────────────────────

// Caso 12: POST /validate devuelve el resultado con errores como datos (200).
func TestValidate_DevuelveResultadoComoDatos(t *testing.T) {
	app := buildTestApp()

	resp := doJSON(t, app, http.MethodPost, "/api/stock/validate", map[string]any{
		"product_id":   "prod-A",
		"warehouse_id": "wh-1",
		"operation":    "withdraw",
		"quantity":     "5",
	})

	require.Equal(t, http.StatusOK, resp.StatusCode, "los fallos de negocio no son errores HTTP")
	var result dto.ValidationResult
	decodeBody(t, resp, &result)
	assert.False(t, result.IsValid)
	require.NotEmpty(t, result.Errors)
	assert.Equal(t, "INSUFFICIENT_STOCK", result.Errors[0].Code)
}
