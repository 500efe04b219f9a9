package ledger

import (
	"sync"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// KeyGuard pone en cuarentena claves de balance cuya invariante
// (total == disponible + reservado) se detectó rota tras una mutación.
// Una clave en cuarentena no admite más mutaciones; las lecturas siguen
// disponibles. Compartido entre el libro y el gestor de reservas.
type KeyGuard struct {
	mu   sync.RWMutex
	keys map[entity.BalanceKey]bool
}

// NewKeyGuard construye el guard.
func NewKeyGuard() *KeyGuard {
	return &KeyGuard{keys: make(map[entity.BalanceKey]bool)}
}

// Quarantine marca la clave como dañada.
func (g *KeyGuard) Quarantine(key entity.BalanceKey) {
	g.mu.Lock()
	g.keys[key] = true
	g.mu.Unlock()
}

// IsQuarantined indica si la clave está bloqueada para mutaciones.
func (g *KeyGuard) IsQuarantined(key entity.BalanceKey) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.keys[key]
}
