package postgres

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

// recordingQuerier captura el SQL y los argumentos de cada Query para verificar
// la construcción de consultas sin una base de datos viva.
type recordingQuerier struct {
	lastSQL  string
	lastArgs []any
}

func (q *recordingQuerier) Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error) {
	q.lastSQL = sql
	q.lastArgs = arguments
	return pgconn.CommandTag{}, nil
}

func (q *recordingQuerier) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	q.lastSQL = sql
	q.lastArgs = args
	return emptyRows{}, nil
}

func (q *recordingQuerier) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	q.lastSQL = sql
	q.lastArgs = args
	return emptyRows{}
}

// emptyRows es un pgx.Rows sin filas, suficiente para recorrer el camino de
// escaneo sin resultados.
type emptyRows struct{}

func (emptyRows) Close()                                       {}
func (emptyRows) Err() error                                   { return nil }
func (emptyRows) CommandTag() pgconn.CommandTag                { return pgconn.CommandTag{} }
func (emptyRows) FieldDescriptions() []pgconn.FieldDescription { return nil }
func (emptyRows) Next() bool                                   { return false }
func (emptyRows) Scan(dest ...any) error                       { return pgx.ErrNoRows }
func (emptyRows) Values() ([]any, error)                       { return nil, nil }
func (emptyRows) RawValues() [][]byte                          { return nil }
func (emptyRows) Conn() *pgx.Conn                              { return nil }

var _ Querier = (*recordingQuerier)(nil)
var _ pgx.Rows = emptyRows{}

// ──────────────────────────────────────────────────────────────────────────────
// Construcción de listados
// ──────────────────────────────────────────────────────────────────────────────

// Caso 1: limit > 0 agrega la cláusula LIMIT con su argumento.
func TestListByProduct_ConLimiteAgregaLimit(t *testing.T) {
	q := &recordingQuerier{}
	repo := NewLedgerEntryRepository(q)

	_, err := repo.ListByProduct("prod-A", nil, nil, 20, 5)
	require.NoError(t, err)

	assert.Contains(t, q.lastSQL, "LIMIT $2")
	assert.Contains(t, q.lastSQL, "OFFSET $3")
	assert.Equal(t, []any{"prod-A", 20, 5}, q.lastArgs)
}

// Caso 2: limit <= 0 significa sin límite, igual que el almacén en memoria:
// la consulta no lleva LIMIT (LIMIT 0 devolvería cero filas).
func TestListByProduct_SinLimiteOmiteLimit(t *testing.T) {
	q := &recordingQuerier{}
	repo := NewLedgerEntryRepository(q)

	_, err := repo.ListByProduct("prod-A", nil, nil, 0, 0)
	require.NoError(t, err)

	assert.NotContains(t, q.lastSQL, "LIMIT")
	assert.Contains(t, q.lastSQL, "OFFSET $2")
	assert.Equal(t, []any{"prod-A", 0}, q.lastArgs)
}

// Caso 3: El rango de fechas desplaza las posiciones de los argumentos.
func TestListByWarehouse_RangoDeFechasDesplazaPosiciones(t *testing.T) {
	q := &recordingQuerier{}
	repo := NewLedgerEntryRepository(q)

	from := time.Now().Add(-24 * time.Hour)
	to := time.Now()
	_, err := repo.ListByWarehouse("wh-1", &from, &to, 10, 0)
	require.NoError(t, err)

	assert.Contains(t, q.lastSQL, "transaction_date >= $2")
	assert.Contains(t, q.lastSQL, "transaction_date <= $3")
	assert.Contains(t, q.lastSQL, "LIMIT $4")
	assert.Contains(t, q.lastSQL, "OFFSET $5")
	assert.Equal(t, []any{"wh-1", from, to, 10, 0}, q.lastArgs)
}

// Caso 4: Los listados nunca emiten UPDATE ni DELETE sobre el libro.
func TestLedgerEntryRepo_SoloSelectEInsert(t *testing.T) {
	q := &recordingQuerier{}
	repo := NewLedgerEntryRepository(q)

	_, err := repo.ListByProduct("prod-A", nil, nil, 0, 0)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(strings.TrimSpace(q.lastSQL), "SELECT"))

	_, err = repo.GetByID("e-1")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(strings.TrimSpace(q.lastSQL), "SELECT"))
}
