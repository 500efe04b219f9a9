package ledger

import (
	"context"
	"time"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

// QueryUseCase expone las lecturas del libro y de saldos. Lecturas puras:
// repetirlas sin mutación intermedia devuelve resultados idénticos.
type QueryUseCase struct {
	entryRepo   repository.LedgerEntryRepository
	balanceRepo repository.StockBalanceRepository
}

// NewQueryUseCase construye el caso de uso de consulta.
func NewQueryUseCase(entryRepo repository.LedgerEntryRepository, balanceRepo repository.StockBalanceRepository) *QueryUseCase {
	return &QueryUseCase{entryRepo: entryRepo, balanceRepo: balanceRepo}
}

// GetBalance devuelve el saldo de una clave, o nil si nunca fue tocada.
func (uc *QueryUseCase) GetBalance(ctx context.Context, productID, warehouseID, locationID string) (*entity.StockBalance, error) {
	key := entity.NewBalanceKey(productID, warehouseID, locationID)
	if !key.IsComplete() {
		return nil, nil
	}
	return uc.balanceRepo.Get(key)
}

// GetAggregateBalance suma los saldos de todas las ubicaciones de una bodega.
// Cada ubicación aporta su disponible/reservado exactamente una vez; LastUpdated
// es el máximo entre las ubicaciones y LastUpdatedBy el autor de ese máximo.
// Devuelve nil si ninguna ubicación tiene historial. LocationID queda vacío en
// el agregado (no corresponde a una ubicación concreta).
func (uc *QueryUseCase) GetAggregateBalance(ctx context.Context, productID, warehouseID string) (*entity.StockBalance, error) {
	balances, err := uc.balanceRepo.ListByProductWarehouse(productID, warehouseID)
	if err != nil {
		return nil, err
	}
	if len(balances) == 0 {
		return nil, nil
	}

	agg := &entity.StockBalance{ProductID: productID, WarehouseID: warehouseID}
	for _, b := range balances {
		agg.TotalQuantity = agg.TotalQuantity.Add(b.TotalQuantity)
		agg.AvailableQuantity = agg.AvailableQuantity.Add(b.AvailableQuantity)
		agg.ReservedQuantity = agg.ReservedQuantity.Add(b.ReservedQuantity)
		if b.LastUpdated.After(agg.LastUpdated) {
			agg.LastUpdated = b.LastUpdated
			agg.LastUpdatedBy = b.LastUpdatedBy
		}
	}
	return agg, nil
}

// ListByProduct lista asientos de un producto en un rango de fechas.
func (uc *QueryUseCase) ListByProduct(ctx context.Context, productID string, from, to *time.Time, limit, offset int) ([]*entity.LedgerEntry, error) {
	return uc.entryRepo.ListByProduct(productID, from, to, limit, offset)
}

// ListByWarehouse lista asientos de una bodega en un rango de fechas.
func (uc *QueryUseCase) ListByWarehouse(ctx context.Context, warehouseID string, from, to *time.Time, limit, offset int) ([]*entity.LedgerEntry, error) {
	return uc.entryRepo.ListByWarehouse(warehouseID, from, to, limit, offset)
}
