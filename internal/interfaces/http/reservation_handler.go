package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/application/reservation"
)

// ReservationHandler maneja las peticiones HTTP de reservas de stock.
type ReservationHandler struct {
	uc *reservation.UseCase
}

// NewReservationHandler construye el handler.
func NewReservationHandler(uc *reservation.UseCase) *ReservationHandler {
	return &ReservationHandler{uc: uc}
}

// Reserve godoc
// @Summary      Crear una reserva contra la cantidad disponible
// @Tags         reservations
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ReserveRequest  true  "product_id, warehouse_id, quantity, reserved_by; expires_at opcional"
// @Success      201   {object}  dto.ReservationResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/stock/reservations [post]
func (h *ReservationHandler) Reserve(c *fiber.Ctx) error {
	var in dto.ReserveRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	res, err := h.uc.Reserve(c.Context(), reservation.ReserveInputDTO{
		ProductID:   in.ProductID,
		WarehouseID: in.WarehouseID,
		LocationID:  in.LocationID,
		Quantity:    in.Quantity,
		ReservedBy:  in.ReservedBy,
		ExpiresAt:   in.ExpiresAt,
	})
	if err != nil {
		return mapDomainError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.NewReservationResponse(res))
}

// Release godoc
// @Summary      Liberar una reserva activa
// @Tags         reservations
// @Accept       json
// @Produce      json
// @Param        id    path  string                       true  "ID de la reserva"
// @Param        body  body  dto.CloseReservationRequest  true  "by: quién libera"
// @Success      200   {object}  map[string]string
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/stock/reservations/{id}/release [post]
func (h *ReservationHandler) Release(c *fiber.Ctx) error {
	var in dto.CloseReservationRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if err := h.uc.Release(c.Context(), c.Params("id"), in.By); err != nil {
		return mapDomainError(c, err)
	}
	return c.JSON(fiber.Map{"message": "reserva liberada"})
}

// Consume godoc
// @Summary      Consumir una reserva activa (salida definitiva de stock)
// @Tags         reservations
// @Accept       json
// @Produce      json
// @Param        id    path  string                       true  "ID de la reserva"
// @Param        body  body  dto.CloseReservationRequest  true  "by: quién consume"
// @Success      200   {object}  map[string]string
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/stock/reservations/{id}/consume [post]
func (h *ReservationHandler) Consume(c *fiber.Ctx) error {
	var in dto.CloseReservationRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if err := h.uc.Consume(c.Context(), c.Params("id"), in.By); err != nil {
		return mapDomainError(c, err)
	}
	return c.JSON(fiber.Map{"message": "reserva consumida"})
}

// ExpireDue godoc
// @Summary      Vencer las reservas expiradas (invocable por schedulers externos)
// @Tags         reservations
// @Produce      json
// @Success      200  {object}  map[string]int
// @Router       /api/stock/reservations/expire-due [post]
func (h *ReservationHandler) ExpireDue(c *fiber.Ctx) error {
	count, err := h.uc.ExpireDue(c.Context(), time.Now())
	if err != nil {
		return mapDomainError(c, err)
	}
	return c.JSON(fiber.Map{"expired": count})
}
