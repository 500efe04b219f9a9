package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/application/ledger"
	"github.com/jhoicas/stock-ledger/internal/application/validation"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// StockHandler maneja las peticiones HTTP del libro de stock: transacciones,
// traslados, saldos y validación previa.
type StockHandler struct {
	record    *ledger.RecordTransactionUseCase
	query     *ledger.QueryUseCase
	validator *validation.StockValidator
}

// NewStockHandler construye el handler.
func NewStockHandler(record *ledger.RecordTransactionUseCase, query *ledger.QueryUseCase, validator *validation.StockValidator) *StockHandler {
	return &StockHandler{record: record, query: query, validator: validator}
}

// RecordTransaction godoc
// @Summary      Registrar transacción de stock
// @Tags         stock
// @Accept       json
// @Produce      json
// @Param        body  body  dto.RecordTransactionRequest  true  "product_id, warehouse_id, type, quantity, performed_by; location_id opcional"
// @Success      201   {object}  dto.LedgerEntryResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/stock/transactions [post]
func (h *StockHandler) RecordTransaction(c *fiber.Ctx) error {
	var in dto.RecordTransactionRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	entry, err := h.record.RecordTransaction(c.Context(), ledger.TransactionInputDTO{
		ProductID:       in.ProductID,
		WarehouseID:     in.WarehouseID,
		LocationID:      in.LocationID,
		Type:            in.Type,
		Quantity:        in.Quantity,
		PerformedBy:     in.PerformedBy,
		Reference:       in.Reference,
		Notes:           in.Notes,
		TransactionDate: in.TransactionDate,
	})
	if err != nil {
		return mapDomainError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.NewLedgerEntryResponse(entry))
}

// Transfer godoc
// @Summary      Registrar traslado entre bodegas/ubicaciones
// @Tags         stock
// @Accept       json
// @Produce      json
// @Param        body  body  dto.TransferRequest  true  "product_id, from/to, quantity, performed_by"
// @Success      201   {array}   dto.LedgerEntryResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/stock/transfers [post]
func (h *StockHandler) Transfer(c *fiber.Ctx) error {
	var in dto.TransferRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	entries, err := h.record.Transfer(c.Context(), ledger.TransferInputDTO{
		ProductID:       in.ProductID,
		FromWarehouseID: in.FromWarehouseID,
		FromLocationID:  in.FromLocationID,
		ToWarehouseID:   in.ToWarehouseID,
		ToLocationID:    in.ToLocationID,
		Quantity:        in.Quantity,
		PerformedBy:     in.PerformedBy,
		Reference:       in.Reference,
		Notes:           in.Notes,
	})
	if err != nil {
		return mapDomainError(c, err)
	}
	out := make([]dto.LedgerEntryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, dto.NewLedgerEntryResponse(e))
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// GetBalance godoc
// @Summary      Consultar saldo de una clave (producto, bodega, ubicación)
// @Tags         stock
// @Produce      json
// @Param        product_id    query  string  true   "Producto"
// @Param        warehouse_id  query  string  true   "Bodega"
// @Param        location_id   query  string  false  "Ubicación; vacío = nivel bodega"
// @Success      200  {object}  dto.BalanceResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/stock/balance [get]
func (h *StockHandler) GetBalance(c *fiber.Ctx) error {
	productID := c.Query("product_id")
	warehouseID := c.Query("warehouse_id")
	if productID == "" || warehouseID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "product_id y warehouse_id son obligatorios"})
	}
	balance, err := h.query.GetBalance(c.Context(), productID, warehouseID, c.Query("location_id"))
	if err != nil {
		return mapDomainError(c, err)
	}
	if balance == nil {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "sin historial para la clave"})
	}
	return c.JSON(dto.NewBalanceResponse(balance))
}

// GetAggregateBalance godoc
// @Summary      Consultar saldo agregado de una bodega (todas las ubicaciones)
// @Tags         stock
// @Produce      json
// @Param        product_id    query  string  true  "Producto"
// @Param        warehouse_id  query  string  true  "Bodega"
// @Success      200  {object}  dto.BalanceResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/stock/balance/aggregate [get]
func (h *StockHandler) GetAggregateBalance(c *fiber.Ctx) error {
	productID := c.Query("product_id")
	warehouseID := c.Query("warehouse_id")
	if productID == "" || warehouseID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "product_id y warehouse_id son obligatorios"})
	}
	balance, err := h.query.GetAggregateBalance(c.Context(), productID, warehouseID)
	if err != nil {
		return mapDomainError(c, err)
	}
	if balance == nil {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "sin historial para la clave"})
	}
	return c.JSON(dto.NewBalanceResponse(balance))
}

// ListEntries godoc
// @Summary      Listar asientos del libro por producto o bodega
// @Tags         stock
// @Produce      json
// @Param        product_id    query  string  false  "Producto (excluyente con warehouse_id)"
// @Param        warehouse_id  query  string  false  "Bodega"
// @Param        from          query  string  false  "Fecha inicial RFC3339"
// @Param        to            query  string  false  "Fecha final RFC3339"
// @Param        limit         query  int     false  "Límite (1-100)"
// @Param        offset        query  int     false  "Offset"
// @Success      200  {array}   dto.LedgerEntryResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/stock/ledger [get]
func (h *StockHandler) ListEntries(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "paginación inválida"})
	}
	page.DefaultPage()

	from, err := parseTimeQuery(c.Query("from"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "from inválido (RFC3339)"})
	}
	to, err := parseTimeQuery(c.Query("to"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "to inválido (RFC3339)"})
	}

	productID := c.Query("product_id")
	warehouseID := c.Query("warehouse_id")

	var entries []dto.LedgerEntryResponse
	switch {
	case productID != "":
		list, err := h.query.ListByProduct(c.Context(), productID, from, to, page.Limit, page.Offset)
		if err != nil {
			return mapDomainError(c, err)
		}
		entries = toEntryList(list)
	case warehouseID != "":
		list, err := h.query.ListByWarehouse(c.Context(), warehouseID, from, to, page.Limit, page.Offset)
		if err != nil {
			return mapDomainError(c, err)
		}
		entries = toEntryList(list)
	default:
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "indicar product_id o warehouse_id"})
	}

	return c.JSON(fiber.Map{"total": len(entries), "entries": entries})
}

// Validate godoc
// @Summary      Validación previa de una operación de stock (no muta estado)
// @Tags         stock
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ValidateStockRequest  true  "operation: withdraw|adjust"
// @Success      200   {object}  dto.ValidationResult
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/stock/validate [post]
func (h *StockHandler) Validate(c *fiber.Ctx) error {
	var in dto.ValidateStockRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	result, err := h.validator.ValidateStockOperation(c.Context(), in.ProductID, in.WarehouseID, in.Quantity, in.Operation, in.LocationID)
	if err != nil {
		return mapDomainError(c, err)
	}
	return c.JSON(result)
}

func toEntryList(list []*entity.LedgerEntry) []dto.LedgerEntryResponse {
	out := make([]dto.LedgerEntryResponse, 0, len(list))
	for _, e := range list {
		out = append(out, dto.NewLedgerEntryResponse(e))
	}
	return out
}

func parseTimeQuery(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
