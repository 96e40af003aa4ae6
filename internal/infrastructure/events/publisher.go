// Package events sumideros de eventos de dominio (auditoría, notificaciones, refresco de UI).
package events

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"github.com/segmentio/kafka-go"

	"github.com/jhoicas/inventario-ledger/internal/application/inventory"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/pkg/logger"
)

var (
	_ inventory.EventPublisher = (*LogPublisher)(nil)
	_ inventory.EventPublisher = (*KafkaPublisher)(nil)
	_ inventory.EventPublisher = FanOut(nil)
	_ inventory.EventPublisher = (*AsyncPublisher)(nil)
)

// LogPublisher escribe cada evento en el log estructurado.
type LogPublisher struct {
	log *logger.Logger
}

// NewLogPublisher construye el sumidero de log.
func NewLogPublisher(log *logger.Logger) *LogPublisher {
	return &LogPublisher{log: log.Component("events")}
}

func (p *LogPublisher) Publish(_ context.Context, e entity.Event) error {
	payload, err := json.Marshal(e.Payload)
	if err != nil {
		return err
	}
	p.log.Info().
		Str("event_id", e.ID).
		Str("event_type", string(e.Type)).
		Str("product_id", e.ProductID).
		RawJSON("payload", payload).
		Time("event_time", e.Timestamp).
		Msg("evento de inventario")
	return nil
}

// MessageWriter subconjunto de kafka.Writer usado por KafkaPublisher.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaConfig destino de los eventos.
type KafkaConfig struct {
	Brokers []string
	Topic   string
}

// KafkaPublisher publica el sobre JSON del evento con clave productID, de modo que los eventos
// de un mismo producto conserven su orden dentro de la partición.
type KafkaPublisher struct {
	writer MessageWriter
}

// NewKafkaPublisher crea un writer de kafka-go con balanceo por hash de clave.
func NewKafkaPublisher(cfg KafkaConfig) *KafkaPublisher {
	return &KafkaPublisher{writer: &kafka.Writer{
		Addr:                   kafka.TCP(cfg.Brokers...),
		Topic:                  cfg.Topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireOne,
		AllowAutoTopicCreation: true,
	}}
}

// NewKafkaPublisherWithWriter permite inyectar el writer (tests).
func NewKafkaPublisherWithWriter(w MessageWriter) *KafkaPublisher {
	return &KafkaPublisher{writer: w}
}

func (p *KafkaPublisher) Publish(ctx context.Context, e entity.Event) error {
	value, err := json.Marshal(e)
	if err != nil {
		return err
	}
	return p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(e.ProductID),
		Value: value,
		Time:  e.Timestamp,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(e.Type)},
		},
	})
}

// Close cierra el writer.
func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

// FanOut entrega el evento a todos los sumideros; los errores se unen.
type FanOut []inventory.EventPublisher

func (f FanOut) Publish(ctx context.Context, e entity.Event) error {
	var errs []error
	for _, p := range f {
		if err := p.Publish(ctx, e); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// AsyncPublisher desacopla la publicación del camino de la mutación: encola y un worker entrega
// en orden. Si la cola está llena el evento se descarta y se registra; nunca bloquea al motor.
type AsyncPublisher struct {
	next   inventory.EventPublisher
	log    *logger.Logger
	queue  chan entity.Event
	done   chan struct{}
	once   sync.Once
	mu     sync.RWMutex
	closed bool
}

// NewAsyncPublisher arranca el worker con una cola de tamaño buffer.
func NewAsyncPublisher(next inventory.EventPublisher, buffer int, log *logger.Logger) *AsyncPublisher {
	if buffer <= 0 {
		buffer = 1024
	}
	p := &AsyncPublisher{
		next:  next,
		log:   log.Component("events"),
		queue: make(chan entity.Event, buffer),
		done:  make(chan struct{}),
	}
	go p.run()
	return p
}

func (p *AsyncPublisher) run() {
	defer close(p.done)
	for e := range p.queue {
		if err := p.next.Publish(context.Background(), e); err != nil {
			p.log.Error().Err(err).Str("event_id", e.ID).Str("event_type", string(e.Type)).
				Str("product_id", e.ProductID).Msg("fallo del suscriptor")
		}
	}
}

func (p *AsyncPublisher) Publish(_ context.Context, e entity.Event) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		p.log.Warn().Str("event_id", e.ID).Msg("publicador cerrado, evento descartado")
		return nil
	}
	select {
	case p.queue <- e:
	default:
		p.log.Error().Str("event_id", e.ID).Str("event_type", string(e.Type)).Msg("cola de eventos llena, evento descartado")
	}
	return nil
}

// Close deja de aceptar eventos y espera a que se entreguen los encolados o a que ctx expire.
func (p *AsyncPublisher) Close(ctx context.Context) error {
	p.once.Do(func() {
		p.mu.Lock()
		p.closed = true
		close(p.queue)
		p.mu.Unlock()
	})
	select {
	case <-p.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
