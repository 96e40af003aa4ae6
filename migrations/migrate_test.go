package migrations

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNames_Ordered(t *testing.T) {
	names, err := Names()
	require.NoError(t, err)
	require.NotEmpty(t, names)
	assert.Equal(t, "001_init.sql", names[0])
	assert.IsIncreasing(t, names)
}

func TestInitMigration_DefinesLedgerTables(t *testing.T) {
	raw, err := migrationFiles.ReadFile("001_init.sql")
	require.NoError(t, err)
	sql := string(raw)
	for _, table := range []string{"products", "stock", "movements", "reservations"} {
		assert.Contains(t, sql, "CREATE TABLE IF NOT EXISTS "+table+" (")
	}
	assert.Contains(t, sql, "UNIQUE (product_id, sequence)")
	assert.Contains(t, sql, "movements_append_only")
}
