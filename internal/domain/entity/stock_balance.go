package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// StockBalance es el saldo actual de una clave (producto, bodega, ubicación).
// Estado derivado del libro: reconstruible desde los asientos; se crea de forma
// perezosa con la primera transacción y nunca se borra (saldo cero es válido).
// Invariante: TotalQuantity == AvailableQuantity + ReservedQuantity, siempre.
type StockBalance struct {
	ProductID         string
	WarehouseID       string
	LocationID        string
	TotalQuantity     decimal.Decimal
	AvailableQuantity decimal.Decimal
	ReservedQuantity  decimal.Decimal
	LastUpdated       time.Time
	LastUpdatedBy     string
}

// NewStockBalance crea un saldo en cero para la clave.
func NewStockBalance(key BalanceKey) *StockBalance {
	return &StockBalance{
		ProductID:         key.ProductID,
		WarehouseID:       key.WarehouseID,
		LocationID:        key.LocationID,
		TotalQuantity:     decimal.Zero,
		AvailableQuantity: decimal.Zero,
		ReservedQuantity:  decimal.Zero,
	}
}

// Key devuelve la clave de balance.
func (b *StockBalance) Key() BalanceKey {
	return NewBalanceKey(b.ProductID, b.WarehouseID, b.LocationID)
}

// CheckInvariant verifica total == disponible + reservado.
func (b *StockBalance) CheckInvariant() bool {
	return b.TotalQuantity.Equal(b.AvailableQuantity.Add(b.ReservedQuantity))
}

// SetTotal fija el total preservando lo reservado: disponible = total - reservado.
func (b *StockBalance) SetTotal(total decimal.Decimal, now time.Time, by string) {
	b.TotalQuantity = total
	b.AvailableQuantity = total.Sub(b.ReservedQuantity)
	b.LastUpdated = now
	b.LastUpdatedBy = by
}

// MoveToReserved traslada qty de disponible a reservado (el total no cambia).
func (b *StockBalance) MoveToReserved(qty decimal.Decimal, now time.Time, by string) {
	b.AvailableQuantity = b.AvailableQuantity.Sub(qty)
	b.ReservedQuantity = b.ReservedQuantity.Add(qty)
	b.LastUpdated = now
	b.LastUpdatedBy = by
}

// ReleaseReserved devuelve qty de reservado a disponible (el total no cambia).
func (b *StockBalance) ReleaseReserved(qty decimal.Decimal, now time.Time, by string) {
	b.ReservedQuantity = b.ReservedQuantity.Sub(qty)
	b.AvailableQuantity = b.AvailableQuantity.Add(qty)
	b.LastUpdated = now
	b.LastUpdatedBy = by
}

// ConsumeReserved descuenta qty de reservado y del total: el stock retenido sale.
func (b *StockBalance) ConsumeReserved(qty decimal.Decimal, now time.Time, by string) {
	b.ReservedQuantity = b.ReservedQuantity.Sub(qty)
	b.TotalQuantity = b.TotalQuantity.Sub(qty)
	b.LastUpdated = now
	b.LastUpdatedBy = by
}
