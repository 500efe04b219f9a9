package notify

import (
	"sync/atomic"

	"github.com/jhoicas/stock-ledger/internal/application/ledger"
	"github.com/jhoicas/stock-ledger/pkg/logger"
)

var _ ledger.Notifier = (*ChannelNotifier)(nil)

// ChannelNotifier despacha eventos a consumidores externos a través de un canal
// acotado. Si el buffer está lleno el evento se descarta (y se cuenta): la
// entrega es best-effort y el commit del libro jamás se bloquea en un consumidor
// lento.
type ChannelNotifier struct {
	events  chan ledger.LedgerUpdatedEvent
	log     *logger.Logger
	dropped uint64
}

// NewChannelNotifier construye el notificador con el buffer indicado.
func NewChannelNotifier(buffer int, log *logger.Logger) *ChannelNotifier {
	if buffer <= 0 {
		buffer = 256
	}
	return &ChannelNotifier{
		events: make(chan ledger.LedgerUpdatedEvent, buffer),
		log:    log,
	}
}

// Notify encola el evento sin bloquear; descarta si el buffer está lleno.
func (n *ChannelNotifier) Notify(event ledger.LedgerUpdatedEvent) {
	select {
	case n.events <- event:
	default:
		total := atomic.AddUint64(&n.dropped, 1)
		n.log.Warn().
			Str("entry_id", event.Entry.ID).
			Uint64("dropped_total", total).
			Msg("buffer de eventos lleno, evento descartado")
	}
}

// Events expone el canal de solo lectura para el consumidor.
func (n *ChannelNotifier) Events() <-chan ledger.LedgerUpdatedEvent {
	return n.events
}

// Close cierra el canal; llamar solo cuando no habrá más Notify.
func (n *ChannelNotifier) Close() {
	close(n.events)
}
