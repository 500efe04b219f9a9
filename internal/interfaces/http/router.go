package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/stock-ledger/internal/application/ledger"
	"github.com/jhoicas/stock-ledger/internal/application/reservation"
	"github.com/jhoicas/stock-ledger/internal/application/validation"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	RecordTransaction *ledger.RecordTransactionUseCase
	Query             *ledger.QueryUseCase
	Reservations      *reservation.UseCase
	Validator         *validation.StockValidator
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	stock := api.Group("/stock")
	stockHandler := NewStockHandler(deps.RecordTransaction, deps.Query, deps.Validator)
	stock.Post("/transactions", stockHandler.RecordTransaction)
	stock.Post("/transfers", stockHandler.Transfer)
	stock.Get("/balance", stockHandler.GetBalance)
	stock.Get("/balance/aggregate", stockHandler.GetAggregateBalance)
	stock.Get("/ledger", stockHandler.ListEntries)
	stock.Post("/validate", stockHandler.Validate)

	reservationHandler := NewReservationHandler(deps.Reservations)
	stock.Post("/reservations", reservationHandler.Reserve)
	stock.Post("/reservations/expire-due", reservationHandler.ExpireDue)
	stock.Post("/reservations/:id/release", reservationHandler.Release)
	stock.Post("/reservations/:id/consume", reservationHandler.Consume)
}
