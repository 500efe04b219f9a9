package notify

import (
	"github.com/jhoicas/stock-ledger/internal/application/ledger"
	"github.com/jhoicas/stock-ledger/pkg/logger"
)

var _ ledger.Notifier = (*LogNotifier)(nil)

// LogNotifier publica cada evento del libro como línea de auditoría estructurada.
// Consumidor de auditoría por defecto: best-effort, nunca falla la escritura.
type LogNotifier struct {
	log *logger.Logger
}

// NewLogNotifier construye el notificador de auditoría.
func NewLogNotifier(log *logger.Logger) *LogNotifier {
	return &LogNotifier{log: log}
}

// Notify registra el evento con el asiento y el saldo antes/después.
func (n *LogNotifier) Notify(event ledger.LedgerUpdatedEvent) {
	n.log.Info().
		Str("topic", event.Topic).
		Str("entry_id", event.Entry.ID).
		Str("transaction_id", event.Entry.TransactionID).
		Str("product_id", event.Entry.ProductID).
		Str("warehouse_id", event.Entry.WarehouseID).
		Str("location_id", event.Entry.LocationID).
		Str("type", event.Entry.Type).
		Str("quantity", event.Entry.Quantity.String()).
		Str("previous_balance", event.PreviousBalance.String()).
		Str("new_balance", event.NewBalance.String()).
		Str("performed_by", event.Entry.PerformedBy).
		Msg("stock.ledger.updated")
}
