package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/jhoicas/stock-ledger/internal/application/ledger"
	"github.com/jhoicas/stock-ledger/internal/application/reservation"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

// Ensure Store implements ledger.TxRunner and reservation.TxRunner.
var _ ledger.TxRunner = (*Store)(nil)
var _ reservation.TxRunner = (*Store)(nil)

// Store es el almacén embebido en memoria: tres colecciones (libro append-only,
// saldos por clave, reservas por id) protegidas por un mutex global que hace de
// sección crítica única. Para el volumen de un proceso embebido o de los tests
// la serialización total es suficiente; el driver postgres es el camino con
// contención por clave.
type Store struct {
	mu           sync.Mutex
	entries      []entity.LedgerEntry
	balances     map[entity.BalanceKey]entity.StockBalance
	reservations map[string]entity.StockReservation
}

// NewStore construye el almacén vacío.
func NewStore() *Store {
	return &Store{
		balances:     make(map[entity.BalanceKey]entity.StockBalance),
		reservations: make(map[string]entity.StockReservation),
	}
}

// snapshot copia el estado para poder restaurarlo si el callback falla:
// una sección crítica fallida no deja efectos parciales.
type snapshot struct {
	entries      []entity.LedgerEntry
	balances     map[entity.BalanceKey]entity.StockBalance
	reservations map[string]entity.StockReservation
}

func (s *Store) take() snapshot {
	snap := snapshot{
		entries:      make([]entity.LedgerEntry, len(s.entries)),
		balances:     make(map[entity.BalanceKey]entity.StockBalance, len(s.balances)),
		reservations: make(map[string]entity.StockReservation, len(s.reservations)),
	}
	copy(snap.entries, s.entries)
	for k, v := range s.balances {
		snap.balances[k] = v
	}
	for k, v := range s.reservations {
		snap.reservations[k] = v
	}
	return snap
}

func (s *Store) restore(snap snapshot) {
	s.entries = snap.entries
	s.balances = snap.balances
	s.reservations = snap.reservations
}

// Run ejecuta fn bajo el mutex del almacén con rollback por snapshot.
func (s *Store) Run(ctx context.Context, fn func(
	entryRepo repository.LedgerEntryRepository,
	balanceRepo repository.StockBalanceRepository,
) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := s.take()
	if err := fn(&ledgerEntryRepo{store: s}, &stockBalanceRepo{store: s}); err != nil {
		s.restore(snap)
		return err
	}
	return nil
}

// RunReservation ejecuta fn bajo el mutex del almacén con rollback por snapshot.
func (s *Store) RunReservation(ctx context.Context, fn func(
	reservationRepo repository.StockReservationRepository,
	balanceRepo repository.StockBalanceRepository,
	entryRepo repository.LedgerEntryRepository,
) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := s.take()
	if err := fn(&stockReservationRepo{store: s}, &stockBalanceRepo{store: s}, &ledgerEntryRepo{store: s}); err != nil {
		s.restore(snap)
		return err
	}
	return nil
}

// LedgerEntries devuelve el repositorio de asientos para lecturas fuera de transacción.
func (s *Store) LedgerEntries() repository.LedgerEntryRepository {
	return &ledgerEntryRepo{store: s, locking: true}
}

// StockBalances devuelve el repositorio de saldos para lecturas fuera de transacción.
func (s *Store) StockBalances() repository.StockBalanceRepository {
	return &stockBalanceRepo{store: s, locking: true}
}

// StockReservations devuelve el repositorio de reservas para lecturas fuera de transacción.
func (s *Store) StockReservations() repository.StockReservationRepository {
	return &stockReservationRepo{store: s, locking: true}
}

// ──────────────────────────────────────────────────────────────────────────────
// Repositorio de asientos
// ──────────────────────────────────────────────────────────────────────────────

type ledgerEntryRepo struct {
	store *Store
	// locking: true cuando el repo se usa fuera de una sección crítica y debe
	// tomar el mutex por operación; dentro del TxRunner el lock ya está tomado.
	locking bool
}

func (r *ledgerEntryRepo) lock() func() {
	if !r.locking {
		return func() {}
	}
	r.store.mu.Lock()
	return r.store.mu.Unlock
}

func (r *ledgerEntryRepo) Append(entry *entity.LedgerEntry) error {
	defer r.lock()()
	r.store.entries = append(r.store.entries, *entry)
	return nil
}

func (r *ledgerEntryRepo) GetByID(id string) (*entity.LedgerEntry, error) {
	defer r.lock()()
	for i := range r.store.entries {
		if r.store.entries[i].ID == id {
			e := r.store.entries[i]
			return &e, nil
		}
	}
	return nil, nil
}

func (r *ledgerEntryRepo) ListByProduct(productID string, from, to *time.Time, limit, offset int) ([]*entity.LedgerEntry, error) {
	defer r.lock()()
	return r.filtered(func(e *entity.LedgerEntry) bool { return e.ProductID == productID }, from, to, limit, offset), nil
}

func (r *ledgerEntryRepo) ListByWarehouse(warehouseID string, from, to *time.Time, limit, offset int) ([]*entity.LedgerEntry, error) {
	defer r.lock()()
	return r.filtered(func(e *entity.LedgerEntry) bool { return e.WarehouseID == warehouseID }, from, to, limit, offset), nil
}

func (r *ledgerEntryRepo) filtered(match func(*entity.LedgerEntry) bool, from, to *time.Time, limit, offset int) []*entity.LedgerEntry {
	var list []*entity.LedgerEntry
	for i := range r.store.entries {
		e := r.store.entries[i]
		if !match(&e) {
			continue
		}
		if from != nil && e.TransactionDate.Before(*from) {
			continue
		}
		if to != nil && e.TransactionDate.After(*to) {
			continue
		}
		list = append(list, &e)
	}
	sort.SliceStable(list, func(i, j int) bool {
		return list[i].TransactionDate.After(list[j].TransactionDate)
	})
	if offset >= len(list) {
		return nil
	}
	list = list[offset:]
	if limit > 0 && limit < len(list) {
		list = list[:limit]
	}
	return list
}

// ──────────────────────────────────────────────────────────────────────────────
// Repositorio de saldos
// ──────────────────────────────────────────────────────────────────────────────

type stockBalanceRepo struct {
	store   *Store
	locking bool
}

func (r *stockBalanceRepo) lock() func() {
	if !r.locking {
		return func() {}
	}
	r.store.mu.Lock()
	return r.store.mu.Unlock
}

func (r *stockBalanceRepo) Get(key entity.BalanceKey) (*entity.StockBalance, error) {
	defer r.lock()()
	b, ok := r.store.balances[key]
	if !ok {
		return nil, nil
	}
	return &b, nil
}

func (r *stockBalanceRepo) GetForUpdate(key entity.BalanceKey) (*entity.StockBalance, error) {
	defer r.lock()()
	b, ok := r.store.balances[key]
	if !ok {
		return entity.NewStockBalance(key), nil
	}
	return &b, nil
}

func (r *stockBalanceRepo) Upsert(balance *entity.StockBalance) error {
	defer r.lock()()
	r.store.balances[balance.Key()] = *balance
	return nil
}

func (r *stockBalanceRepo) ListByProductWarehouse(productID, warehouseID string) ([]*entity.StockBalance, error) {
	defer r.lock()()
	var list []*entity.StockBalance
	for key, b := range r.store.balances {
		if key.ProductID == productID && key.WarehouseID == warehouseID {
			bc := b
			list = append(list, &bc)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].LocationID < list[j].LocationID })
	return list, nil
}

// ──────────────────────────────────────────────────────────────────────────────
// Repositorio de reservas
// ──────────────────────────────────────────────────────────────────────────────

type stockReservationRepo struct {
	store   *Store
	locking bool
}

func (r *stockReservationRepo) lock() func() {
	if !r.locking {
		return func() {}
	}
	r.store.mu.Lock()
	return r.store.mu.Unlock
}

func (r *stockReservationRepo) Create(reservation *entity.StockReservation) error {
	defer r.lock()()
	r.store.reservations[reservation.ID] = *reservation
	return nil
}

func (r *stockReservationRepo) GetForUpdate(id string) (*entity.StockReservation, error) {
	defer r.lock()()
	res, ok := r.store.reservations[id]
	if !ok {
		return nil, nil
	}
	return &res, nil
}

func (r *stockReservationRepo) Update(reservation *entity.StockReservation) error {
	defer r.lock()()
	r.store.reservations[reservation.ID] = *reservation
	return nil
}

func (r *stockReservationRepo) ListActiveByKey(key entity.BalanceKey) ([]*entity.StockReservation, error) {
	defer r.lock()()
	var list []*entity.StockReservation
	for _, res := range r.store.reservations {
		if res.Status == entity.ReservationActive && res.Key() == key {
			rc := res
			list = append(list, &rc)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ReservedAt.Before(list[j].ReservedAt) })
	return list, nil
}

func (r *stockReservationRepo) ListExpired(now time.Time) ([]*entity.StockReservation, error) {
	defer r.lock()()
	var list []*entity.StockReservation
	for _, res := range r.store.reservations {
		if res.IsExpiredAt(now) {
			rc := res
			list = append(list, &rc)
		}
	}
	sort.Slice(list, func(i, j int) bool {
		return list[i].ExpiresAt.Before(*list[j].ExpiresAt)
	})
	return list, nil
}
