package reservation

import (
	"context"

	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una sección crítica del almacén con los
// repositorios de reservas, saldos y asientos atados a esa transacción. El par
// verificar-disponibilidad/confirmar-reserva debe ser un único paso atómico.
type TxRunner interface {
	RunReservation(ctx context.Context, fn func(
		reservationRepo repository.StockReservationRepository,
		balanceRepo repository.StockBalanceRepository,
		entryRepo repository.LedgerEntryRepository,
	) error) error
}
