package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	_ "github.com/jhoicas/inventario-ledger/docs"
	"github.com/jhoicas/inventario-ledger/internal/application/inventory"
	"github.com/jhoicas/inventario-ledger/internal/application/usecase"
	"github.com/jhoicas/inventario-ledger/internal/infrastructure/cache"
	"github.com/jhoicas/inventario-ledger/internal/infrastructure/events"
	"github.com/jhoicas/inventario-ledger/internal/infrastructure/memory"
	"github.com/jhoicas/inventario-ledger/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/inventario-ledger/internal/interfaces/http"
	"github.com/jhoicas/inventario-ledger/migrations"
	"github.com/jhoicas/inventario-ledger/pkg/config"
	"github.com/jhoicas/inventario-ledger/pkg/logger"
)

// @title                       Inventario Ledger API
// @version                     1.0
// @description                 Libro de movimientos de stock y motor de reservas.
// @BasePath                    /
// @securityDefinitions.apikey  Bearer
// @in                          header
// @name                        Authorization
func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.Log.Level,
	})
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("configuración inválida")
	}
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("store", cfg.Ledger.Store).
		Msg("iniciando aplicación")

	ctx := context.Background()

	var (
		txRunner inventory.TxRunner
		health   func(ctx context.Context) error
	)
	if cfg.Ledger.Store == "memory" {
		log.Warn().Msg("almacenamiento en memoria: los datos se pierden al reiniciar")
		txRunner = memory.NewStore()
	} else {
		pool, err := postgres.NewPool(ctx, cfg.DB)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a PostgreSQL")
		}
		defer pool.Close()
		if err := migrations.Apply(ctx, pool); err != nil {
			log.Fatal().Err(err).Msg("aplicar migraciones")
		}
		txRunner = postgres.NewTxRunner(pool)
		health = pool.Ping
	}

	// Eventos: log siempre, Kafka si hay brokers; todo detrás de una cola asíncrona.
	sinks := events.FanOut{events.NewLogPublisher(log)}
	var kafkaPub *events.KafkaPublisher
	if cfg.Kafka.Enabled() {
		kafkaPub = events.NewKafkaPublisher(events.KafkaConfig{Brokers: cfg.Kafka.Brokers, Topic: cfg.Kafka.Topic})
		sinks = append(sinks, kafkaPub)
		log.Info().Strs("brokers", cfg.Kafka.Brokers).Str("topic", cfg.Kafka.Topic).Msg("publicando eventos en Kafka")
	}
	publisher := events.NewAsyncPublisher(sinks, cfg.Ledger.EventBuffer, log)

	opts := []inventory.Option{
		inventory.WithLogger(log),
		inventory.WithPublisher(publisher),
		inventory.WithMaxRetries(cfg.Ledger.MaxRetries),
		inventory.WithRetryBackoff(cfg.Ledger.RetryBackoff()),
	}

	// Caché de lecturas (Redis). Se invalida por producto después de cada commit.
	var (
		cached     *cache.CachedReader
		redisStore *cache.RedisStore
	)
	if cfg.Redis.Enabled() {
		redisStore, err = cache.NewRedisStore(ctx, cache.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			log.Warn().Err(err).Msg("Redis no disponible, se continúa sin caché")
		} else {
			opts = append(opts, inventory.WithCommitHook(func(ctx context.Context, productID string) {
				cached.Invalidate(ctx, productID)
			}))
		}
	}

	ledger := inventory.NewLedgerUseCase(txRunner, opts...)
	var reader inventory.Reader = ledger
	if redisStore != nil {
		cached = cache.NewCachedReader(ledger, redisStore, cfg.Redis.TTL(), log)
		reader = cached
	}
	productUC := usecase.NewProductUseCase(ledger)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
		Immutable:    true,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Inventario Ledger API",
	}))

	httpRouter.Router(app, httpRouter.RouterDeps{
		Ledger:    ledger,
		Reader:    reader,
		ProductUC: productUC,
		JWTSecret: cfg.JWT.Secret,
		Health:    health,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}
	// Drenar eventos pendientes antes de cerrar los sumideros.
	if err := publisher.Close(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("eventos pendientes sin publicar")
	}
	if kafkaPub != nil {
		if err := kafkaPub.Close(); err != nil {
			log.Error().Err(err).Msg("cerrar writer de Kafka")
		}
	}
	if redisStore != nil {
		_ = redisStore.Close()
	}

	log.Info().Msg("aplicación detenida")
}
