package ledger

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

// RecordTransactionUseCase registra transacciones en el libro de stock de forma
// transaccional: leer saldo previo, calcular saldo nuevo, apendizar el asiento y
// actualizar el balance como un único paso indivisible (bloqueo de fila vía TxRunner).
// El libro es el dueño exclusivo de la creación de asientos.
type RecordTransactionUseCase struct {
	txRunner TxRunner
	notifier Notifier
	guard    *KeyGuard
	// allowNegative reproduce el comportamiento permisivo del origen: OUT puede
	// dejar el total negativo y la validación queda a cargo del caller.
	allowNegative bool
}

// NewRecordTransactionUseCase construye el caso de uso. notifier puede ser NopNotifier.
func NewRecordTransactionUseCase(txRunner TxRunner, notifier Notifier, guard *KeyGuard, allowNegative bool) *RecordTransactionUseCase {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	return &RecordTransactionUseCase{
		txRunner:      txRunner,
		notifier:      notifier,
		guard:         guard,
		allowNegative: allowNegative,
	}
}

// TransactionInputDTO entrada para registrar una transacción.
// LocationID vacío significa nivel bodega (se normaliza a "default").
type TransactionInputDTO struct {
	ProductID       string
	WarehouseID     string
	LocationID      string
	Type            string
	Quantity        decimal.Decimal
	PerformedBy     string
	Reference       string
	Notes           string
	TransactionDate *time.Time
}

// RecordTransaction valida la entrada, ejecuta la sección crítica y devuelve el
// asiento confirmado. Errores de entrada no registran nada; la insuficiencia de
// stock es un fallo de negocio recuperable sin efectos parciales.
func (uc *RecordTransactionUseCase) RecordTransaction(ctx context.Context, input TransactionInputDTO) (*entity.LedgerEntry, error) {
	if err := uc.validate(input); err != nil {
		return nil, err
	}

	key := entity.NewBalanceKey(input.ProductID, input.WarehouseID, input.LocationID)
	if uc.guard.IsQuarantined(key) {
		return nil, domain.ErrInvariantViolated
	}

	now := time.Now()
	txDate := now
	if input.TransactionDate != nil {
		txDate = *input.TransactionDate
	}

	var committed *entity.LedgerEntry
	err := uc.txRunner.Run(ctx, func(
		entryRepo repository.LedgerEntryRepository,
		balanceRepo repository.StockBalanceRepository,
	) error {
		entry, err := uc.apply(entryRepo, balanceRepo, key, input, now, txDate, uuid.New().String())
		if err != nil {
			return err
		}
		committed = entry
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Despacho best-effort tras el commit: no puede revertir ni fallar la escritura.
	uc.notifier.Notify(NewLedgerUpdatedEvent(committed))
	return committed, nil
}

// TransferInputDTO entrada para un traslado entre bodegas/ubicaciones.
type TransferInputDTO struct {
	ProductID       string
	FromWarehouseID string
	FromLocationID  string
	ToWarehouseID   string
	ToLocationID    string
	Quantity        decimal.Decimal
	PerformedBy     string
	Reference       string
	Notes           string
}

// Transfer registra un traslado como par TRANSFER_OUT (origen) + TRANSFER_IN
// (destino) en una misma transacción, compartiendo TransactionID.
func (uc *RecordTransactionUseCase) Transfer(ctx context.Context, input TransferInputDTO) ([]*entity.LedgerEntry, error) {
	origin := entity.NewBalanceKey(input.ProductID, input.FromWarehouseID, input.FromLocationID)
	dest := entity.NewBalanceKey(input.ProductID, input.ToWarehouseID, input.ToLocationID)
	if !origin.IsComplete() || !dest.IsComplete() || origin == dest {
		return nil, domain.ErrInvalidInput
	}
	if !input.Quantity.GreaterThan(decimal.Zero) {
		return nil, domain.ErrInvalidInput
	}
	if uc.guard.IsQuarantined(origin) || uc.guard.IsQuarantined(dest) {
		return nil, domain.ErrInvariantViolated
	}

	now := time.Now()
	txID := uuid.New().String()
	base := TransactionInputDTO{
		ProductID:   input.ProductID,
		Quantity:    input.Quantity,
		PerformedBy: input.PerformedBy,
		Reference:   input.Reference,
		Notes:       input.Notes,
	}

	var committed []*entity.LedgerEntry
	err := uc.txRunner.Run(ctx, func(
		entryRepo repository.LedgerEntryRepository,
		balanceRepo repository.StockBalanceRepository,
	) error {
		outInput := base
		outInput.WarehouseID = input.FromWarehouseID
		outInput.LocationID = input.FromLocationID
		outInput.Type = entity.TxTypeTRANSFEROUT
		outEntry, err := uc.apply(entryRepo, balanceRepo, origin, outInput, now, now, txID)
		if err != nil {
			return err
		}

		inInput := base
		inInput.WarehouseID = input.ToWarehouseID
		inInput.LocationID = input.ToLocationID
		inInput.Type = entity.TxTypeTRANSFERIN
		inEntry, err := uc.apply(entryRepo, balanceRepo, dest, inInput, now, now, txID)
		if err != nil {
			return err
		}

		committed = []*entity.LedgerEntry{outEntry, inEntry}
		return nil
	})
	if err != nil {
		return nil, err
	}

	for _, entry := range committed {
		uc.notifier.Notify(NewLedgerUpdatedEvent(entry))
	}
	return committed, nil
}

// validate rechaza entradas malformadas antes de tocar estado.
func (uc *RecordTransactionUseCase) validate(input TransactionInputDTO) error {
	if input.ProductID == "" || input.WarehouseID == "" {
		return domain.ErrInvalidInput
	}
	if !entity.ValidTxType(input.Type) {
		return domain.ErrInvalidInput
	}
	switch input.Type {
	case entity.TxTypeIN, entity.TxTypeOUT, entity.TxTypeTRANSFERIN, entity.TxTypeTRANSFEROUT:
		if !input.Quantity.GreaterThan(decimal.Zero) {
			return domain.ErrInvalidInput
		}
	case entity.TxTypeADJUSTMENT:
		if input.Quantity.IsZero() {
			return domain.ErrInvalidInput
		}
	case entity.TxTypeCOUNT:
		if input.Quantity.IsNegative() {
			return domain.ErrInvalidInput
		}
	}
	return nil
}

// apply ejecuta el núcleo dentro de la sección crítica: bloquea el saldo, calcula
// el total nuevo según el tipo, apendiza el asiento con PreviousBalance/NewBalance
// estampados y actualiza el balance (disponible = total - reservado).
func (uc *RecordTransactionUseCase) apply(
	entryRepo repository.LedgerEntryRepository,
	balanceRepo repository.StockBalanceRepository,
	key entity.BalanceKey,
	input TransactionInputDTO,
	now, txDate time.Time,
	txID string,
) (*entity.LedgerEntry, error) {
	balance, err := balanceRepo.GetForUpdate(key)
	if err != nil {
		return nil, err
	}

	previous := balance.TotalQuantity
	var newTotal decimal.Decimal
	switch input.Type {
	case entity.TxTypeIN, entity.TxTypeTRANSFERIN:
		newTotal = previous.Add(input.Quantity)
	case entity.TxTypeOUT, entity.TxTypeTRANSFEROUT:
		newTotal = previous.Sub(input.Quantity)
		if !uc.allowNegative && newTotal.LessThan(balance.ReservedQuantity) {
			return nil, domain.ErrInsufficientStock
		}
	case entity.TxTypeADJUSTMENT:
		newTotal = previous.Add(input.Quantity)
		if !uc.allowNegative && input.Quantity.IsNegative() && newTotal.LessThan(balance.ReservedQuantity) {
			return nil, domain.ErrInsufficientStock
		}
	case entity.TxTypeCOUNT:
		newTotal = input.Quantity
		// Un conteo por debajo de lo reservado dejaría disponible negativo:
		// liberar reservas primero y volver a contar.
		if newTotal.LessThan(balance.ReservedQuantity) {
			return nil, domain.ErrInsufficientStock
		}
	default:
		return nil, domain.ErrInvalidInput
	}

	entry := &entity.LedgerEntry{
		ID:              uuid.New().String(),
		TransactionID:   txID,
		ProductID:       key.ProductID,
		WarehouseID:     key.WarehouseID,
		LocationID:      key.LocationID,
		Type:            input.Type,
		Quantity:        input.Quantity,
		PreviousBalance: previous,
		NewBalance:      newTotal,
		PerformedBy:     input.PerformedBy,
		TransactionDate: txDate,
		Reference:       input.Reference,
		Notes:           input.Notes,
		CreatedAt:       now,
	}
	if err := entryRepo.Append(entry); err != nil {
		return nil, err
	}

	balance.SetTotal(newTotal, now, input.PerformedBy)
	if !balance.CheckInvariant() {
		uc.guard.Quarantine(key)
		return nil, domain.ErrInvariantViolated
	}
	if err := balanceRepo.Upsert(balance); err != nil {
		return nil, err
	}
	return entry, nil
}
