package reservation

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger/internal/application/ledger"
	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

// UseCase gestiona retenciones contra la cantidad disponible: crear la reserva,
// liberarla, consumirla (salida definitiva) y vencer las expiradas. Toda mutación
// de saldo ocurre dentro de la sección crítica del TxRunner; la máquina de estados
// active -> {released, expired, consumed} se aplica sin excepciones.
type UseCase struct {
	txRunner        TxRunner
	reservationRepo repository.StockReservationRepository
	notifier        ledger.Notifier
	guard           *ledger.KeyGuard
}

// NewUseCase construye el gestor de reservas. reservationRepo es el lado de
// lectura (fuera de transacción) usado por el barrido de vencimientos.
func NewUseCase(txRunner TxRunner, reservationRepo repository.StockReservationRepository, notifier ledger.Notifier, guard *ledger.KeyGuard) *UseCase {
	if notifier == nil {
		notifier = ledger.NopNotifier{}
	}
	return &UseCase{
		txRunner:        txRunner,
		reservationRepo: reservationRepo,
		notifier:        notifier,
		guard:           guard,
	}
}

// ReserveInputDTO entrada para crear una reserva.
type ReserveInputDTO struct {
	ProductID   string
	WarehouseID string
	LocationID  string
	Quantity    decimal.Decimal
	ReservedBy  string
	ExpiresAt   *time.Time
}

// Reserve crea una retención si hay disponibilidad suficiente. La verificación
// contra el saldo y el commit de la reserva son un único paso atómico: ningún
// otro caller observa un estado intermedio.
func (uc *UseCase) Reserve(ctx context.Context, input ReserveInputDTO) (*entity.StockReservation, error) {
	key := entity.NewBalanceKey(input.ProductID, input.WarehouseID, input.LocationID)
	if !key.IsComplete() || !input.Quantity.GreaterThan(decimal.Zero) {
		return nil, domain.ErrInvalidInput
	}
	if uc.guard.IsQuarantined(key) {
		return nil, domain.ErrInvariantViolated
	}

	now := time.Now()
	var created *entity.StockReservation
	err := uc.txRunner.RunReservation(ctx, func(
		reservationRepo repository.StockReservationRepository,
		balanceRepo repository.StockBalanceRepository,
		_ repository.LedgerEntryRepository,
	) error {
		balance, err := balanceRepo.GetForUpdate(key)
		if err != nil {
			return err
		}
		if balance.AvailableQuantity.LessThan(input.Quantity) {
			return domain.ErrInsufficientStock
		}

		balance.MoveToReserved(input.Quantity, now, input.ReservedBy)
		if !balance.CheckInvariant() {
			uc.guard.Quarantine(key)
			return domain.ErrInvariantViolated
		}
		if err := balanceRepo.Upsert(balance); err != nil {
			return err
		}

		created = &entity.StockReservation{
			ID:          uuid.New().String(),
			ProductID:   key.ProductID,
			WarehouseID: key.WarehouseID,
			LocationID:  key.LocationID,
			Quantity:    input.Quantity,
			Status:      entity.ReservationActive,
			ReservedBy:  input.ReservedBy,
			ReservedAt:  now,
			ExpiresAt:   input.ExpiresAt,
		}
		return reservationRepo.Create(created)
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// Release libera una reserva activa devolviendo su cantidad a disponible.
// Sobre una reserva en estado terminal devuelve ErrInvalidState sin efectos.
func (uc *UseCase) Release(ctx context.Context, reservationID, releasedBy string) error {
	return uc.close(ctx, reservationID, releasedBy, entity.ReservationReleased, time.Now())
}

// Consume convierte una reserva activa en salida definitiva: lo reservado sale
// del total y se apendiza el asiento OUT correspondiente en la misma transacción.
func (uc *UseCase) Consume(ctx context.Context, reservationID, consumedBy string) error {
	return uc.close(ctx, reservationID, consumedBy, entity.ReservationConsumed, time.Now())
}

// ExpireDue transiciona a expired toda reserva activa con vencimiento anterior a
// now, devolviendo su cantidad a disponible. Una unidad atómica por reserva.
// Pensado para invocarse periódicamente (ticker en cmd/api o scheduler externo).
func (uc *UseCase) ExpireDue(ctx context.Context, now time.Time) (int, error) {
	due, err := uc.reservationRepo.ListExpired(now)
	if err != nil {
		return 0, err
	}

	count := 0
	for _, r := range due {
		err := uc.close(ctx, r.ID, r.ReservedBy, entity.ReservationExpired, now)
		if err != nil {
			// Otra transición ganó la carrera sobre esta reserva: no es un fallo del barrido.
			if err == domain.ErrInvalidState || err == domain.ErrNotFound {
				continue
			}
			return count, err
		}
		count++
	}
	return count, nil
}

// close ejecuta una transición terminal y el movimiento de saldo asociado como
// unidad atómica: released/expired devuelven a disponible, consumed descuenta
// del total y registra el asiento OUT.
func (uc *UseCase) close(ctx context.Context, reservationID, by, status string, now time.Time) error {
	var consumed *entity.LedgerEntry
	err := uc.txRunner.RunReservation(ctx, func(
		reservationRepo repository.StockReservationRepository,
		balanceRepo repository.StockBalanceRepository,
		entryRepo repository.LedgerEntryRepository,
	) error {
		res, err := reservationRepo.GetForUpdate(reservationID)
		if err != nil {
			return err
		}
		if res == nil {
			return domain.ErrNotFound
		}
		if !res.CanTransitionTo(status) {
			return domain.ErrInvalidState
		}

		key := res.Key()
		if uc.guard.IsQuarantined(key) {
			return domain.ErrInvariantViolated
		}
		balance, err := balanceRepo.GetForUpdate(key)
		if err != nil {
			return err
		}

		if status == entity.ReservationConsumed {
			previous := balance.TotalQuantity
			balance.ConsumeReserved(res.Quantity, now, by)
			consumed = &entity.LedgerEntry{
				ID:              uuid.New().String(),
				TransactionID:   uuid.New().String(),
				ProductID:       key.ProductID,
				WarehouseID:     key.WarehouseID,
				LocationID:      key.LocationID,
				Type:            entity.TxTypeOUT,
				Quantity:        res.Quantity,
				PreviousBalance: previous,
				NewBalance:      balance.TotalQuantity,
				PerformedBy:     by,
				TransactionDate: now,
				Reference:       res.ID,
				Notes:           "consumo de reserva",
				CreatedAt:       now,
			}
			if err := entryRepo.Append(consumed); err != nil {
				return err
			}
		} else {
			balance.ReleaseReserved(res.Quantity, now, by)
		}

		if !balance.CheckInvariant() {
			uc.guard.Quarantine(key)
			return domain.ErrInvariantViolated
		}
		if err := balanceRepo.Upsert(balance); err != nil {
			return err
		}

		res.TransitionTo(status, now, by)
		return reservationRepo.Update(res)
	})
	if err != nil {
		return err
	}

	if consumed != nil {
		uc.notifier.Notify(ledger.NewLedgerUpdatedEvent(consumed))
	}
	return nil
}
