// reconcile recalcula el stock de cada producto desde su historial de movimientos y registra
// un ajuste de conciliación donde el agregado se haya desviado.
//
// Uso: go run ./cmd/reconcile [-product <id>] [-actor reconcile-cli]
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
	productID := flag.String("product", "", "conciliar solo este producto (ID)")
	actor := flag.String("actor", "reconcile-cli", "actor registrado en los ajustes")
	flag.Parse()

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

	publisher := events.FanOut{events.NewLogPublisher(log)}
	if cfg.Kafka.Enabled() {
		kafkaPub := events.NewKafkaPublisher(events.KafkaConfig{Brokers: cfg.Kafka.Brokers, Topic: cfg.Kafka.Topic})
		defer kafkaPub.Close()
		publisher = append(publisher, kafkaPub)
	}
	ledger := inventory.NewLedgerUseCase(postgres.NewTxRunner(pool),
		inventory.WithLogger(log),
		inventory.WithPublisher(publisher),
		inventory.WithMaxRetries(cfg.Ledger.MaxRetries),
		inventory.WithRetryBackoff(cfg.Ledger.RetryBackoff()),
	)

	var results []*inventory.ReconcileResult
	if *productID != "" {
		var res *inventory.ReconcileResult
		res, err = ledger.Reconcile(ctx, *productID, *actor)
		if res != nil {
			results = append(results, res)
		}
	} else {
		results, err = ledger.ReconcileAll(ctx, *actor)
	}

	repaired := 0
	for _, r := range results {
		if r.Repaired {
			repaired++
			fmt.Printf("REPARADO  %s  agregado=%d  historial=%d\n", r.ProductID, r.Aggregate, r.Folded)
		}
	}
	fmt.Printf("Conciliados %d productos, %d reparados\n", len(results), repaired)
	if err != nil {
		log.Error().Err(err).Msg("conciliación con errores")
		os.Exit(1)
	}
}
