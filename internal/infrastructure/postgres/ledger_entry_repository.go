package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

var _ repository.LedgerEntryRepository = (*LedgerEntryRepo)(nil)

// LedgerEntryRepo implementación append-only sobre PostgreSQL (usable con pool o tx).
// La tabla ledger_entries no tiene UPDATE ni DELETE en ninguna ruta de código.
type LedgerEntryRepo struct {
	q Querier
}

// NewLedgerEntryRepository construye el adaptador. Pasar pool o tx (Querier).
func NewLedgerEntryRepository(q Querier) *LedgerEntryRepo {
	return &LedgerEntryRepo{q: q}
}

const ledgerEntryColumns = `id, transaction_id, product_id, warehouse_id, location_id, type, quantity,
		previous_balance, new_balance, performed_by, transaction_date, reference, notes, created_at`

// Append persiste un asiento del libro.
func (r *LedgerEntryRepo) Append(entry *entity.LedgerEntry) error {
	query := `
		INSERT INTO ledger_entries (` + ledgerEntryColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`
	_, err := r.q.Exec(context.Background(), query,
		entry.ID, entry.TransactionID, entry.ProductID, entry.WarehouseID, entry.LocationID,
		entry.Type, entry.Quantity, entry.PreviousBalance, entry.NewBalance,
		entry.PerformedBy, entry.TransactionDate, entry.Reference, entry.Notes, entry.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("append ledger entry: %w", err)
	}
	return nil
}

// GetByID obtiene un asiento por ID; nil si no existe.
func (r *LedgerEntryRepo) GetByID(id string) (*entity.LedgerEntry, error) {
	query := `SELECT ` + ledgerEntryColumns + ` FROM ledger_entries WHERE id = $1`
	entry, err := scanLedgerEntry(r.q.QueryRow(context.Background(), query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get ledger entry: %w", err)
	}
	return entry, nil
}

// ListByProduct lista asientos de un producto en un rango de fechas.
func (r *LedgerEntryRepo) ListByProduct(productID string, from, to *time.Time, limit, offset int) ([]*entity.LedgerEntry, error) {
	return r.list("product_id", productID, from, to, limit, offset)
}

// ListByWarehouse lista asientos de una bodega en un rango de fechas.
func (r *LedgerEntryRepo) ListByWarehouse(warehouseID string, from, to *time.Time, limit, offset int) ([]*entity.LedgerEntry, error) {
	return r.list("warehouse_id", warehouseID, from, to, limit, offset)
}

func (r *LedgerEntryRepo) list(column, value string, from, to *time.Time, limit, offset int) ([]*entity.LedgerEntry, error) {
	query := `SELECT ` + ledgerEntryColumns + ` FROM ledger_entries WHERE ` + column + ` = $1`
	args := []any{value}
	pos := 2
	if from != nil {
		query += fmt.Sprintf(" AND transaction_date >= $%d", pos)
		args = append(args, *from)
		pos++
	}
	if to != nil {
		query += fmt.Sprintf(" AND transaction_date <= $%d", pos)
		args = append(args, *to)
		pos++
	}
	query += " ORDER BY transaction_date DESC, created_at DESC"
	// limit <= 0 significa sin límite, igual que el almacén en memoria.
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", pos)
		args = append(args, limit)
		pos++
	}
	query += fmt.Sprintf(" OFFSET $%d", pos)
	args = append(args, offset)

	rows, err := r.q.Query(context.Background(), query, args...)
	if err != nil {
		return nil, fmt.Errorf("list ledger entries: %w", err)
	}
	defer rows.Close()

	var list []*entity.LedgerEntry
	for rows.Next() {
		entry, err := scanLedgerEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scan ledger entry: %w", err)
		}
		list = append(list, entry)
	}
	return list, rows.Err()
}

func scanLedgerEntry(row pgx.Row) (*entity.LedgerEntry, error) {
	var e entity.LedgerEntry
	var performedBy, reference, notes *string
	err := row.Scan(
		&e.ID, &e.TransactionID, &e.ProductID, &e.WarehouseID, &e.LocationID, &e.Type,
		&e.Quantity, &e.PreviousBalance, &e.NewBalance,
		&performedBy, &e.TransactionDate, &reference, &notes, &e.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if performedBy != nil {
		e.PerformedBy = *performedBy
	}
	if reference != nil {
		e.Reference = *reference
	}
	if notes != nil {
		e.Notes = *notes
	}
	return &e, nil
}
