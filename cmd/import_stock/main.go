// import_stock carga un inventario físico desde CSV (code;name;min;max;stock).
// Los productos nuevos se crean con su stock inicial; los existentes se ajustan al valor importado.
// Acepta archivos UTF-8 o ISO-8859-1 (exportaciones de hojas de cálculo antiguas).
//
// Uso: go run ./cmd/import_stock [-encoding auto|utf8|latin1] [-actor import-cli] inventario.csv
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/jhoicas/inventario-ledger/internal/application/inventory"
	"github.com/jhoicas/inventario-ledger/internal/infrastructure/events"
	"github.com/jhoicas/inventario-ledger/internal/infrastructure/postgres"
	"github.com/jhoicas/inventario-ledger/pkg/config"
	"github.com/jhoicas/inventario-ledger/pkg/logger"
)

func main() {
	encoding := flag.String("encoding", "auto", "codificación del archivo: auto, utf8 o latin1")
	actor := flag.String("actor", "import-cli", "actor registrado en los movimientos")
	flag.Parse()
	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Uso: import_stock [-encoding auto|utf8|latin1] [-actor nombre] archivo.csv")
		os.Exit(2)
	}

	f, err := os.Open(flag.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Abrir CSV: %v\n", err)
		os.Exit(1)
	}
	defer f.Close()

	rows, err := parseRows(f, *encoding)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Leer CSV: %v\n", err)
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Cargar configuración: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.Log.Level})

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
	defer cancel()

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	ledger := inventory.NewLedgerUseCase(postgres.NewTxRunner(pool),
		inventory.WithLogger(log),
		inventory.WithPublisher(events.NewLogPublisher(log)),
		inventory.WithMaxRetries(cfg.Ledger.MaxRetries),
		inventory.WithRetryBackoff(cfg.Ledger.RetryBackoff()),
	)

	sum, err := importRows(ctx, ledger, rows, *actor)
	fmt.Printf("Importadas %d filas: %d creados, %d ajustados, %d sin cambios\n",
		len(rows), sum.Created, sum.Adjusted, sum.Unchanged)
	if err != nil {
		log.Error().Err(err).Msg("importación con errores")
		os.Exit(1)
	}
}
