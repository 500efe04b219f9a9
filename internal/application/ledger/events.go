package ledger

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// TopicLedgerUpdated tópico del evento emitido tras cada transacción confirmada.
const TopicLedgerUpdated = "stock.ledger.updated"

// LedgerUpdatedEvent notificación de auditoría: el asiento confirmado y el saldo
// antes/después. Se despacha después del commit, nunca dentro de la transacción.
type LedgerUpdatedEvent struct {
	Topic           string
	Entry           *entity.LedgerEntry
	PreviousBalance decimal.Decimal
	NewBalance      decimal.Decimal
	OccurredAt      time.Time
}

// NewLedgerUpdatedEvent construye el evento a partir del asiento confirmado.
func NewLedgerUpdatedEvent(entry *entity.LedgerEntry) LedgerUpdatedEvent {
	return LedgerUpdatedEvent{
		Topic:           TopicLedgerUpdated,
		Entry:           entry,
		PreviousBalance: entry.PreviousBalance,
		NewBalance:      entry.NewBalance,
		OccurredAt:      time.Now(),
	}
}
