package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de una reserva. active es el único estado inicial; released, expired
// y consumed son terminales (ninguna transición sale de un estado terminal).
const (
	ReservationActive   = "active"
	ReservationReleased = "released"
	ReservationExpired  = "expired"
	ReservationConsumed = "consumed"
)

// StockReservation es una retención temporal contra la cantidad disponible de
// una clave de balance, convertible en salida definitiva (consumed) o liberable.
type StockReservation struct {
	ID          string
	ProductID   string
	WarehouseID string
	LocationID  string
	Quantity    decimal.Decimal
	Status      string
	ReservedBy  string
	ReservedAt  time.Time
	ExpiresAt   *time.Time // nil = sin vencimiento
	ClosedAt    *time.Time // momento de la transición terminal
	ClosedBy    string
}

// Key devuelve la clave de balance de la reserva.
func (r *StockReservation) Key() BalanceKey {
	return NewBalanceKey(r.ProductID, r.WarehouseID, r.LocationID)
}

// IsActive indica si la reserva sigue vigente.
func (r *StockReservation) IsActive() bool {
	return r.Status == ReservationActive
}

// IsExpiredAt indica si una reserva activa ya venció en el instante dado.
func (r *StockReservation) IsExpiredAt(now time.Time) bool {
	return r.IsActive() && r.ExpiresAt != nil && r.ExpiresAt.Before(now)
}

// CanTransitionTo valida la máquina de estados: active -> {released, expired, consumed}.
func (r *StockReservation) CanTransitionTo(status string) bool {
	if r.Status != ReservationActive {
		return false
	}
	switch status {
	case ReservationReleased, ReservationExpired, ReservationConsumed:
		return true
	}
	return false
}

// TransitionTo aplica la transición terminal; el caller debe haberla validado.
func (r *StockReservation) TransitionTo(status string, now time.Time, by string) {
	r.Status = status
	r.ClosedAt = &now
	r.ClosedBy = by
}
