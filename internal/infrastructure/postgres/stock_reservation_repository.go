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

var _ repository.StockReservationRepository = (*StockReservationRepo)(nil)

// StockReservationRepo implementación de StockReservationRepository sobre
// PostgreSQL (usable con pool o tx).
type StockReservationRepo struct {
	q Querier
}

// NewStockReservationRepository construye el adaptador. Pasar pool o tx (Querier).
func NewStockReservationRepository(q Querier) *StockReservationRepo {
	return &StockReservationRepo{q: q}
}

const stockReservationColumns = `id, product_id, warehouse_id, location_id, quantity, status,
		reserved_by, reserved_at, expires_at, closed_at, closed_by`

// Create persiste una reserva nueva.
func (r *StockReservationRepo) Create(reservation *entity.StockReservation) error {
	query := `
		INSERT INTO stock_reservations (` + stockReservationColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	closedBy := (*string)(nil)
	if reservation.ClosedBy != "" {
		closedBy = &reservation.ClosedBy
	}
	_, err := r.q.Exec(context.Background(), query,
		reservation.ID, reservation.ProductID, reservation.WarehouseID, reservation.LocationID,
		reservation.Quantity, reservation.Status, reservation.ReservedBy, reservation.ReservedAt,
		reservation.ExpiresAt, reservation.ClosedAt, closedBy,
	)
	if err != nil {
		return fmt.Errorf("create stock reservation: %w", err)
	}
	return nil
}

// GetForUpdate obtiene la reserva bloqueando la fila; nil si no existe.
func (r *StockReservationRepo) GetForUpdate(id string) (*entity.StockReservation, error) {
	query := `SELECT ` + stockReservationColumns + `
		FROM stock_reservations WHERE id = $1
		FOR UPDATE`
	res, err := scanStockReservation(r.q.QueryRow(context.Background(), query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get stock reservation for update: %w", err)
	}
	return res, nil
}

// Update persiste el estado y los campos de cierre.
func (r *StockReservationRepo) Update(reservation *entity.StockReservation) error {
	query := `
		UPDATE stock_reservations
		SET status = $2, closed_at = $3, closed_by = $4
		WHERE id = $1`
	_, err := r.q.Exec(context.Background(), query,
		reservation.ID, reservation.Status, reservation.ClosedAt, reservation.ClosedBy,
	)
	if err != nil {
		return fmt.Errorf("update stock reservation: %w", err)
	}
	return nil
}

// ListActiveByKey lista reservas activas de una clave de balance.
func (r *StockReservationRepo) ListActiveByKey(key entity.BalanceKey) ([]*entity.StockReservation, error) {
	query := `SELECT ` + stockReservationColumns + `
		FROM stock_reservations
		WHERE product_id = $1 AND warehouse_id = $2 AND location_id = $3 AND status = $4
		ORDER BY reserved_at`
	rows, err := r.q.Query(context.Background(), query,
		key.ProductID, key.WarehouseID, key.LocationID, entity.ReservationActive)
	if err != nil {
		return nil, fmt.Errorf("list active reservations: %w", err)
	}
	return collectReservations(rows)
}

// ListExpired lista reservas activas con vencimiento anterior a now.
func (r *StockReservationRepo) ListExpired(now time.Time) ([]*entity.StockReservation, error) {
	query := `SELECT ` + stockReservationColumns + `
		FROM stock_reservations
		WHERE status = $1 AND expires_at IS NOT NULL AND expires_at < $2
		ORDER BY expires_at`
	rows, err := r.q.Query(context.Background(), query, entity.ReservationActive, now)
	if err != nil {
		return nil, fmt.Errorf("list expired reservations: %w", err)
	}
	return collectReservations(rows)
}

func collectReservations(rows pgx.Rows) ([]*entity.StockReservation, error) {
	defer rows.Close()
	var list []*entity.StockReservation
	for rows.Next() {
		res, err := scanStockReservation(rows)
		if err != nil {
			return nil, fmt.Errorf("scan stock reservation: %w", err)
		}
		list = append(list, res)
	}
	return list, rows.Err()
}

func scanStockReservation(row pgx.Row) (*entity.StockReservation, error) {
	var res entity.StockReservation
	var closedBy *string
	err := row.Scan(
		&res.ID, &res.ProductID, &res.WarehouseID, &res.LocationID,
		&res.Quantity, &res.Status, &res.ReservedBy, &res.ReservedAt,
		&res.ExpiresAt, &res.ClosedAt, &closedBy,
	)
	if err != nil {
		return nil, err
	}
	if closedBy != nil {
		res.ClosedBy = *closedBy
	}
	return &res, nil
}
