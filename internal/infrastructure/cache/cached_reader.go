package cache

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/jhoicas/inventario-ledger/internal/application/inventory"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
	"github.com/jhoicas/inventario-ledger/pkg/logger"
)

var _ inventory.Reader = (*CachedReader)(nil)

const keyPrefix = "ledger"

// CachedReader envuelve las lecturas puras (Available, History) del motor.
// Las claves incluyen una generación por producto; Invalidate la incrementa y las entradas
// anteriores quedan inalcanzables hasta expirar.
type CachedReader struct {
	next  inventory.Reader
	store Store
	ttl   time.Duration
	log   *logger.Logger
	group singleflight.Group
}

// NewCachedReader construye el lector con caché.
func NewCachedReader(next inventory.Reader, store Store, ttl time.Duration, log *logger.Logger) *CachedReader {
	if log == nil {
		log = logger.Nop()
	}
	return &CachedReader{next: next, store: store, ttl: ttl, log: log.Component("cache")}
}

func generationKey(productID string) string {
	return fmt.Sprintf("%s:gen:%s", keyPrefix, productID)
}

// Invalidate se registra como CommitHook del motor.
func (c *CachedReader) Invalidate(ctx context.Context, productID string) {
	if _, err := c.store.Incr(ctx, generationKey(productID)); err != nil {
		c.log.Error().Err(err).Str("product_id", productID).Msg("no se pudo invalidar la caché")
	}
}

func (c *CachedReader) Available(ctx context.Context, productID string) (*inventory.Availability, error) {
	var out inventory.Availability
	err := c.readThrough(ctx, productID, "avail", &out, func() (any, error) {
		return c.next.Available(ctx, productID)
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *CachedReader) History(ctx context.Context, q repository.MovementQuery) ([]*entity.Movement, error) {
	raw, _ := json.Marshal(q)
	sum := sha1.Sum(raw)
	var out []*entity.Movement
	err := c.readThrough(ctx, q.ProductID, "hist:"+hex.EncodeToString(sum[:8]), &out, func() (any, error) {
		return c.next.History(ctx, q)
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// readThrough busca en caché; si falla o no está, carga con load (una sola carga concurrente
// por clave) y guarda el resultado. dst debe ser un puntero.
func (c *CachedReader) readThrough(ctx context.Context, productID, kind string, dst any, load func() (any, error)) error {
	gen, err := c.store.Counter(ctx, generationKey(productID))
	if err != nil {
		c.log.Warn().Err(err).Msg("caché no disponible, leyendo del almacenamiento")
		return c.loadInto(dst, load)
	}
	key := fmt.Sprintf("%s:%s:%s:%d", keyPrefix, kind, productID, gen)

	if data, ok, err := c.store.Get(ctx, key); err == nil && ok {
		if err := json.Unmarshal(data, dst); err == nil {
			return nil
		}
	} else if err != nil {
		c.log.Warn().Err(err).Str("key", key).Msg("lectura de caché fallida")
	}

	v, err, _ := c.group.Do(key, func() (any, error) {
		v, err := load()
		if err != nil {
			return nil, err
		}
		data, err := json.Marshal(v)
		if err != nil {
			return nil, err
		}
		if err := c.store.Set(ctx, key, data, c.ttl); err != nil {
			c.log.Warn().Err(err).Str("key", key).Msg("escritura de caché fallida")
		}
		return data, nil
	})
	if err != nil {
		return err
	}
	return json.Unmarshal(v.([]byte), dst)
}

func (c *CachedReader) loadInto(dst any, load func() (any, error)) error {
	v, err := load()
	if err != nil {
		return err
	}
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, dst)
}
