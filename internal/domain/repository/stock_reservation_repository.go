package repository

import (
	"time"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// StockReservationRepository define el puerto de persistencia de reservas.
type StockReservationRepository interface {
	Create(reservation *entity.StockReservation) error
	// GetForUpdate obtiene la reserva bloqueando la fila; nil si no existe.
	GetForUpdate(id string) (*entity.StockReservation, error)
	// Update persiste el estado y los campos de cierre de la reserva.
	Update(reservation *entity.StockReservation) error
	// ListActiveByKey lista reservas activas de una clave de balance.
	ListActiveByKey(key entity.BalanceKey) ([]*entity.StockReservation, error)
	// ListExpired lista reservas activas con vencimiento anterior a now.
	ListExpired(now time.Time) ([]*entity.StockReservation, error)
}
