package entity_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

// ──────────────────────────────────────────────────────────────────────────────
// Invariante total == disponible + reservado
// ──────────────────────────────────────────────────────────────────────────────

// Caso 1: Un saldo recién creado está en cero y cumple la invariante.
func TestNewStockBalance_EnCeroYCumpleInvariante(t *testing.T) {
	b := entity.NewStockBalance(entity.NewBalanceKey("prod-1", "wh-1", ""))

	assert.True(t, b.TotalQuantity.IsZero())
	assert.True(t, b.AvailableQuantity.IsZero())
	assert.True(t, b.ReservedQuantity.IsZero())
	assert.True(t, b.CheckInvariant(), "el saldo en cero debe cumplir la invariante")
}

// Caso 2: CheckInvariant detecta un saldo inconsistente.
func TestStockBalance_CheckInvariantDetectaInconsistencia(t *testing.T) {
	b := &entity.StockBalance{
		TotalQuantity:     dec("100"),
		AvailableQuantity: dec("90"),
		ReservedQuantity:  dec("5"),
	}

	assert.False(t, b.CheckInvariant(), "100 != 90 + 5: la invariante está rota")
}

// ──────────────────────────────────────────────────────────────────────────────
// Mutaciones de saldo
// ──────────────────────────────────────────────────────────────────────────────

// Caso 3: SetTotal preserva lo reservado (disponible = total - reservado).
func TestStockBalance_SetTotalPreservaReservado(t *testing.T) {
	now := time.Now()
	b := entity.NewStockBalance(entity.NewBalanceKey("prod-1", "wh-1", ""))
	b.SetTotal(dec("100"), now, "alice")
	b.MoveToReserved(dec("40"), now, "alice")

	b.SetTotal(dec("70"), now, "bob")

	assert.True(t, b.TotalQuantity.Equal(dec("70")))
	assert.True(t, b.ReservedQuantity.Equal(dec("40")), "lo reservado no cambia con SetTotal")
	assert.True(t, b.AvailableQuantity.Equal(dec("30")))
	assert.True(t, b.CheckInvariant())
	assert.Equal(t, "bob", b.LastUpdatedBy)
}

// Caso 4: MoveToReserved traslada de disponible a reservado sin tocar el total.
func TestStockBalance_MoveToReservedNoCambiaTotal(t *testing.T) {
	now := time.Now()
	b := entity.NewStockBalance(entity.NewBalanceKey("prod-1", "wh-1", ""))
	b.SetTotal(dec("100"), now, "alice")

	b.MoveToReserved(dec("40"), now, "alice")

	assert.True(t, b.TotalQuantity.Equal(dec("100")))
	assert.True(t, b.AvailableQuantity.Equal(dec("60")))
	assert.True(t, b.ReservedQuantity.Equal(dec("40")))
	require.True(t, b.CheckInvariant())
}

// Caso 5: ReleaseReserved devuelve a disponible sin tocar el total.
func TestStockBalance_ReleaseReservedDevuelveADisponible(t *testing.T) {
	now := time.Now()
	b := entity.NewStockBalance(entity.NewBalanceKey("prod-1", "wh-1", ""))
	b.SetTotal(dec("100"), now, "alice")
	b.MoveToReserved(dec("40"), now, "alice")

	b.ReleaseReserved(dec("40"), now, "alice")

	assert.True(t, b.TotalQuantity.Equal(dec("100")))
	assert.True(t, b.AvailableQuantity.Equal(dec("100")))
	assert.True(t, b.ReservedQuantity.IsZero())
	require.True(t, b.CheckInvariant())
}

// Caso 6: ConsumeReserved descuenta de reservado y del total.
func TestStockBalance_ConsumeReservedDescuentaDelTotal(t *testing.T) {
	now := time.Now()
	b := entity.NewStockBalance(entity.NewBalanceKey("prod-1", "wh-1", ""))
	b.SetTotal(dec("100"), now, "alice")
	b.MoveToReserved(dec("40"), now, "alice")

	b.ConsumeReserved(dec("40"), now, "alice")

	assert.True(t, b.TotalQuantity.Equal(dec("60")))
	assert.True(t, b.AvailableQuantity.Equal(dec("60")))
	assert.True(t, b.ReservedQuantity.IsZero())
	require.True(t, b.CheckInvariant())
}
