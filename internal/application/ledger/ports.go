package ledger

import (
	"context"

	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una sección crítica del almacén,
// pasando repositorios atados a esa transacción. Garantiza que leer-calcular-escribir
// sobre una clave de balance sea un paso indivisible frente a callers concurrentes.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		entryRepo repository.LedgerEntryRepository,
		balanceRepo repository.StockBalanceRepository,
	) error) error
}

// Notifier recibe eventos de dominio tras un commit. Best-effort: su fallo o
// lentitud nunca debe revertir ni bloquear la mutación que lo originó.
type Notifier interface {
	Notify(event LedgerUpdatedEvent)
}

// NopNotifier descarta los eventos.
type NopNotifier struct{}

// Notify no hace nada.
func (NopNotifier) Notify(LedgerUpdatedEvent) {}
