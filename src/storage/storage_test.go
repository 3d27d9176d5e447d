package storage

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewBootstrapsSchema(t *testing.T) {
	store, err := New(MemoryPath)
	require.NoError(t, err)
	defer store.Close()

	rows, err := store.DB().Query(
		`SELECT name FROM sqlite_master WHERE type = 'table' ORDER BY name`)
	require.NoError(t, err)
	defer rows.Close()

	var tables []string
	for rows.Next() {
		var name string
		require.NoError(t, rows.Scan(&name))
		tables = append(tables, name)
	}
	require.NoError(t, rows.Err())

	for _, expected := range []string{
		"transactions", "stock_orders", "option_orders", "option_legs",
		"executions", "positions", "transaction_links",
	} {
		assert.Contains(t, tables, expected)
	}
}

func TestNewCreatesParentDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "trading.db")
	store, err := New(path)
	require.NoError(t, err)
	defer store.Close()
	assert.Equal(t, path, store.Path())
}

func TestNewIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trading.db")

	store, err := New(path)
	require.NoError(t, err)
	_, err = store.DB().Exec(
		`INSERT INTO transactions (id, source, source_id, type, created_at, raw_data)
		 VALUES ('t1', 'robinhood', 's1', 'stock', '2025-06-15T10:30:00Z', '{}')`)
	require.NoError(t, err)
	require.NoError(t, store.Close())

	// Reopening must not clobber existing data.
	store, err = New(path)
	require.NoError(t, err)
	defer store.Close()

	var count int
	require.NoError(t, store.DB().QueryRow(`SELECT COUNT(*) FROM transactions`).Scan(&count))
	assert.Equal(t, 1, count)
}

func TestForeignKeysEnforced(t *testing.T) {
	store, err := New(MemoryPath)
	require.NoError(t, err)
	defer store.Close()

	_, err = store.DB().Exec(
		`INSERT INTO option_orders (id, chain_symbol) VALUES ('missing-parent', 'AAPL')`)
	assert.Error(t, err)
}

func TestTransactionRollback(t *testing.T) {
	store, err := New(MemoryPath)
	require.NoError(t, err)
	defer store.Close()

	tx, err := store.Begin()
	require.NoError(t, err)
	_, err = tx.Exec(
		`INSERT INTO transactions (id, source, source_id, type, created_at, raw_data)
		 VALUES ('t1', 'robinhood', 's1', 'stock', '2025-06-15T10:30:00Z', '{}')`)
	require.NoError(t, err)
	require.NoError(t, tx.Rollback())

	var count int
	require.NoError(t, store.DB().QueryRow(`SELECT COUNT(*) FROM transactions`).Scan(&count))
	assert.Equal(t, 0, count)
}

func TestDuplicateSourceIDRejected(t *testing.T) {
	store, err := New(MemoryPath)
	require.NoError(t, err)
	defer store.Close()

	insert := `INSERT INTO transactions (id, source, source_id, type, created_at, raw_data)
	           VALUES (?, 'robinhood', 'dup', 'stock', '2025-06-15T10:30:00Z', '{}')`
	_, err = store.DB().Exec(insert, "t1")
	require.NoError(t, err)
	_, err = store.DB().Exec(insert, "t2")
	assert.Error(t, err)
}

func TestEmptyPathRejected(t *testing.T) {
	_, err := New("")
	assert.Error(t, err)
}
