package main

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"

	"github.com/jhoicas/inventario-ledger/internal/application/inventory"
	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
	"github.com/jhoicas/inventario-ledger/internal/infrastructure/memory"
)

func TestParseRows_UTF8ConEncabezado(t *testing.T) {
	in := "code;name;min;max;stock\nTOR-001;Tornillo ½ pulgada;5;100;40\nCAB-2; Cable ;0;;7\n"
	rows, err := parseRows(strings.NewReader(in), "auto")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, stockRow{Line: 2, Code: "TOR-001", Name: "Tornillo ½ pulgada", StockMin: 5, StockMax: 100, Stock: 40}, rows[0])
	assert.Equal(t, "Cable", rows[1].Name)
	assert.Equal(t, int64(0), rows[1].StockMax)
}

func TestParseRows_Latin1(t *testing.T) {
	latin1, err := charmap.ISO8859_1.NewEncoder().String("VAL-9;Válvula de presión;1;0;3\n")
	require.NoError(t, err)

	rows, err := parseRows(strings.NewReader(latin1), "auto")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Válvula de presión", rows[0].Name)

	rows, err = parseRows(strings.NewReader(latin1), "latin1")
	require.NoError(t, err)
	assert.Equal(t, "Válvula de presión", rows[0].Name)
}

func TestParseRows_Errores(t *testing.T) {
	_, err := parseRows(strings.NewReader("A;B;1;2;x\n"), "utf8")
	assert.ErrorContains(t, err, "línea 1")

	_, err = parseRows(strings.NewReader("A;B;1;2;-3\n"), "utf8")
	assert.Error(t, err)

	_, err = parseRows(strings.NewReader("A;B;1\n"), "utf8")
	assert.Error(t, err)

	_, err = parseRows(strings.NewReader("A;B;1;2;3\n"), "ebcdic")
	assert.Error(t, err)
}

func TestImportRows(t *testing.T) {
	ctx := context.Background()
	ledger := inventory.NewLedgerUseCase(memory.NewStore())
	existing, err := ledger.CreateProduct(ctx, inventory.CreateProductInput{Code: "TOR-001", Name: "Tornillo", StockMin: 5, InitialStock: 10})
	require.NoError(t, err)
	_, err = ledger.CreateProduct(ctx, inventory.CreateProductInput{Code: "TUE-1", Name: "Tuerca", InitialStock: 3})
	require.NoError(t, err)

	rows := []stockRow{
		{Line: 1, Code: "tor-001", Name: "Tornillo", StockMin: 5, Stock: 4},
		{Line: 2, Code: "CAB-2", Name: "Cable", StockMin: 1, Stock: 7},
		{Line: 3, Code: "TUE-1", Name: "Tuerca", Stock: 3},
		{Line: 4, Code: "", Name: "Sin código", Stock: 1},
	}
	sum, err := importRows(ctx, ledger, rows, "import-test")
	require.Error(t, err, "la fila sin código debe reportarse")
	assert.ErrorContains(t, err, "línea 4")
	assert.Equal(t, importSummary{Created: 1, Adjusted: 1, Unchanged: 1}, sum)

	history, err := ledger.History(ctx, repository.MovementQuery{ProductID: existing.ID, Ascending: true})
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, entity.MovementAdjustment, history[1].Kind)
	assert.Equal(t, int64(-6), history[1].Delta)
	assert.Equal(t, "import-test", history[1].Actor)
	assert.Equal(t, entity.ReasonPhysicalCountImport, history[1].Reason)

	created, err := ledger.GetProductByCode(ctx, "CAB-2")
	require.NoError(t, err)
	assert.Equal(t, int64(7), created.StockActual)

	_, err = ledger.GetProductByCode(ctx, "NO-EXISTE")
	assert.ErrorIs(t, err, domain.ErrUnknownProduct)
}
