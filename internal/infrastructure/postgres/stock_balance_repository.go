package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

var _ repository.StockBalanceRepository = (*StockBalanceRepo)(nil)

// StockBalanceRepo implementación de StockBalanceRepository sobre PostgreSQL
// (usable con pool o tx).
type StockBalanceRepo struct {
	q Querier
}

// NewStockBalanceRepository construye el adaptador. Pasar pool o tx (Querier).
func NewStockBalanceRepository(q Querier) *StockBalanceRepo {
	return &StockBalanceRepo{q: q}
}

const stockBalanceColumns = `product_id, warehouse_id, location_id, total_quantity,
		available_quantity, reserved_quantity, last_updated, last_updated_by`

// Get obtiene el saldo de una clave; nil si la clave nunca fue tocada.
func (r *StockBalanceRepo) Get(key entity.BalanceKey) (*entity.StockBalance, error) {
	query := `SELECT ` + stockBalanceColumns + `
		FROM stock_balances WHERE product_id = $1 AND warehouse_id = $2 AND location_id = $3`
	b, err := scanStockBalance(r.q.QueryRow(context.Background(), query, key.ProductID, key.WarehouseID, key.LocationID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get stock balance: %w", err)
	}
	return b, nil
}

// GetForUpdate obtiene el saldo bloqueando la fila (SELECT FOR UPDATE). Si la
// clave no existe devuelve un saldo en cero listo para el primer Upsert.
func (r *StockBalanceRepo) GetForUpdate(key entity.BalanceKey) (*entity.StockBalance, error) {
	query := `SELECT ` + stockBalanceColumns + `
		FROM stock_balances WHERE product_id = $1 AND warehouse_id = $2 AND location_id = $3
		FOR UPDATE`
	b, err := scanStockBalance(r.q.QueryRow(context.Background(), query, key.ProductID, key.WarehouseID, key.LocationID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return entity.NewStockBalance(key), nil
		}
		return nil, fmt.Errorf("get stock balance for update: %w", err)
	}
	return b, nil
}

// Upsert inserta o actualiza el saldo por clave.
func (r *StockBalanceRepo) Upsert(balance *entity.StockBalance) error {
	query := `
		INSERT INTO stock_balances (` + stockBalanceColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (product_id, warehouse_id, location_id)
		DO UPDATE SET total_quantity = EXCLUDED.total_quantity,
			available_quantity = EXCLUDED.available_quantity,
			reserved_quantity = EXCLUDED.reserved_quantity,
			last_updated = EXCLUDED.last_updated,
			last_updated_by = EXCLUDED.last_updated_by`
	_, err := r.q.Exec(context.Background(), query,
		balance.ProductID, balance.WarehouseID, balance.LocationID,
		balance.TotalQuantity, balance.AvailableQuantity, balance.ReservedQuantity,
		balance.LastUpdated, balance.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("upsert stock balance: %w", err)
	}
	return nil
}

// ListByProductWarehouse lista los saldos de todas las ubicaciones de una bodega.
func (r *StockBalanceRepo) ListByProductWarehouse(productID, warehouseID string) ([]*entity.StockBalance, error) {
	query := `SELECT ` + stockBalanceColumns + `
		FROM stock_balances WHERE product_id = $1 AND warehouse_id = $2
		ORDER BY location_id`
	rows, err := r.q.Query(context.Background(), query, productID, warehouseID)
	if err != nil {
		return nil, fmt.Errorf("list stock balances: %w", err)
	}
	defer rows.Close()

	var list []*entity.StockBalance
	for rows.Next() {
		b, err := scanStockBalance(rows)
		if err != nil {
			return nil, fmt.Errorf("scan stock balance: %w", err)
		}
		list = append(list, b)
	}
	return list, rows.Err()
}

func scanStockBalance(row pgx.Row) (*entity.StockBalance, error) {
	var b entity.StockBalance
	var lastUpdatedBy *string
	err := row.Scan(
		&b.ProductID, &b.WarehouseID, &b.LocationID,
		&b.TotalQuantity, &b.AvailableQuantity, &b.ReservedQuantity,
		&b.LastUpdated, &lastUpdatedBy,
	)
	if err != nil {
		return nil, err
	}
	if lastUpdatedBy != nil {
		b.LastUpdatedBy = *lastUpdatedBy
	}
	return &b, nil
}
