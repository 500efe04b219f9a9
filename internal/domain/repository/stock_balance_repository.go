package repository

import "github.com/jhoicas/stock-ledger/internal/domain/entity"

// StockBalanceRepository define el puerto para consultar/actualizar saldos por clave.
// Las mutaciones solo ocurren dentro de secciones críticas (TxRunner).
type StockBalanceRepository interface {
	// Get devuelve el saldo o nil si la clave nunca fue tocada.
	Get(key entity.BalanceKey) (*entity.StockBalance, error)
	// GetForUpdate bloquea la fila para update (SELECT FOR UPDATE); si la clave no
	// existe devuelve un saldo en cero listo para el primer Upsert.
	GetForUpdate(key entity.BalanceKey) (*entity.StockBalance, error)
	Upsert(balance *entity.StockBalance) error
	// ListByProductWarehouse lista los saldos de todas las ubicaciones de una bodega.
	ListByProductWarehouse(productID, warehouseID string) ([]*entity.StockBalance, error)
}
