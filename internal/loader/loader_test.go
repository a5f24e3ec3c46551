package loader

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/confield/confield/internal/store"
)

func writeCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "export.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func openTestStore(t *testing.T) *store.Store {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "import.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	require.NoError(t, st.InitSchema(context.Background()))
	return st
}

func TestLoadCSV(t *testing.T) {
	st := openTestStore(t)
	path := writeCSV(t, "create_date,currency,trader_name\n"+
		"21-Oct-2025,usd 29851455.46,J SMITH\n"+
		",eur 50,\n")

	result, err := LoadCSV(context.Background(), st, path)
	require.NoError(t, err)

	assert.Equal(t, 2, result.Inserted)
	assert.Equal(t, []string{"creation_date", "currency"}, result.Columns)
	assert.Equal(t, []string{"trader_name"}, result.Ignored)

	var creation any
	var currency string
	err = st.DB().QueryRowContext(context.Background(),
		`SELECT creation_date, currency FROM confirmation_data WHERE id = 1`).
		Scan(&creation, &currency)
	require.NoError(t, err)
	assert.Equal(t, "2025-10-21", creation, "date normalized on import")
	assert.Equal(t, "usd 29851455.46", currency)

	// Empty cells land as NULL, not empty strings.
	err = st.DB().QueryRowContext(context.Background(),
		`SELECT creation_date FROM confirmation_data WHERE id = 2`).
		Scan(&creation)
	require.NoError(t, err)
	assert.Nil(t, creation)
}

func TestLoadCSV_UnparseableDateIsNull(t *testing.T) {
	st := openTestStore(t)
	path := writeCSV(t, "settlement_date\nwhen settled\n")

	result, err := LoadCSV(context.Background(), st, path)
	require.NoError(t, err)
	require.Equal(t, 1, result.Inserted)

	var settlement any
	err = st.DB().QueryRowContext(context.Background(),
		`SELECT settlement_date FROM confirmation_data WHERE id = 1`).
		Scan(&settlement)
	require.NoError(t, err)
	assert.Nil(t, settlement)
}

func TestLoadCSV_NoMatchingColumns(t *testing.T) {
	st := openTestStore(t)
	path := writeCSV(t, "trader_name,desk\nJ SMITH,RATES\n")

	_, err := LoadCSV(context.Background(), st, path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no matching columns")
}

func TestLoadCSV_EmptyFile(t *testing.T) {
	st := openTestStore(t)
	path := writeCSV(t, "")

	_, err := LoadCSV(context.Background(), st, path)
	require.Error(t, err)
}

func TestLoadCSV_ShortRows(t *testing.T) {
	st := openTestStore(t)
	path := writeCSV(t, "currency,isin\nusd 100\n")

	result, err := LoadCSV(context.Background(), st, path)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Inserted)

	var isin any
	err = st.DB().QueryRowContext(context.Background(),
		`SELECT isin FROM confirmation_data WHERE id = 1`).Scan(&isin)
	require.NoError(t, err)
	assert.Nil(t, isin)
}
