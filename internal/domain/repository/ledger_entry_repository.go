package repository

import (
	"time"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// LedgerEntryRepository define el puerto de persistencia del libro de stock.
// Colección append-only: no hay Update ni Delete.
type LedgerEntryRepository interface {
	Append(entry *entity.LedgerEntry) error
	GetByID(id string) (*entity.LedgerEntry, error)
	ListByProduct(productID string, from, to *time.Time, limit, offset int) ([]*entity.LedgerEntry, error)
	ListByWarehouse(warehouseID string, from, to *time.Time, limit, offset int) ([]*entity.LedgerEntry, error)
}
