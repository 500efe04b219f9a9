package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de transacción del libro de stock.
const (
	TxTypeIN          = "IN"           // entrada
	TxTypeOUT         = "OUT"          // salida
	TxTypeTRANSFERIN  = "TRANSFER_IN"  // entrada por traslado
	TxTypeTRANSFEROUT = "TRANSFER_OUT" // salida por traslado
	TxTypeADJUSTMENT  = "ADJUSTMENT"   // ajuste con signo
	TxTypeCOUNT       = "COUNT"        // conteo físico (reemplazo absoluto)
)

// ValidTxType indica si el tipo de transacción es conocido.
func ValidTxType(t string) bool {
	switch t {
	case TxTypeIN, TxTypeOUT, TxTypeTRANSFERIN, TxTypeTRANSFEROUT, TxTypeADJUSTMENT, TxTypeCOUNT:
		return true
	}
	return false
}

// LedgerEntry es un registro inmutable del libro de stock: una vez creado no se
// modifica ni se borra; las correcciones son nuevos asientos (p. ej. un ADJUSTMENT
// contrario). PreviousBalance/NewBalance quedan estampados al momento del commit.
type LedgerEntry struct {
	ID              string
	TransactionID   string // agrupa asientos de una misma operación (p. ej. un traslado)
	ProductID       string
	WarehouseID     string
	LocationID      string
	Type            string
	Quantity        decimal.Decimal // IN/OUT/TRANSFER_*: positiva; ADJUSTMENT: delta con signo; COUNT: total absoluto
	PreviousBalance decimal.Decimal
	NewBalance      decimal.Decimal
	PerformedBy     string
	TransactionDate time.Time
	Reference       string
	Notes           string
	CreatedAt       time.Time
}

// Key devuelve la clave de balance del asiento.
func (e *LedgerEntry) Key() BalanceKey {
	return NewBalanceKey(e.ProductID, e.WarehouseID, e.LocationID)
}
