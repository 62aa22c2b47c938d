package modules

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/jhoicas/erp-core/internal/application/tenancy"
	"github.com/jhoicas/erp-core/internal/domain/repository"
)

// snapshot activación de los módulos de un tenant en un instante.
type snapshot struct {
	active   map[string]bool
	loadedAt time.Time
}

// activationCache guarda por tenant la tabla tenant_modules durante ttl.
// Los fallos de caché concurrentes de un mismo tenant comparten una sola lectura.
type activationCache struct {
	stores repository.StoreProvider
	ttl    time.Duration
	now    func() time.Time

	mu    sync.RWMutex
	byKey map[string]snapshot
	group singleflight.Group
}

func newActivationCache(stores repository.StoreProvider, ttl time.Duration) *activationCache {
	return &activationCache{
		stores: stores,
		ttl:    ttl,
		now:    time.Now,
		byKey:  make(map[string]snapshot),
	}
}

func cacheKey(ctx context.Context) string {
	if t := tenancy.TenantFromContext(ctx); t != nil {
		return t.ID
	}
	return ""
}

// active devuelve el conjunto de módulos activos del tenant del contexto.
func (c *activationCache) active(ctx context.Context) (map[string]bool, error) {
	if c.ttl <= 0 {
		return c.load(ctx)
	}
	key := cacheKey(ctx)
	c.mu.RLock()
	snap, ok := c.byKey[key]
	c.mu.RUnlock()
	if ok && c.now().Sub(snap.loadedAt) < c.ttl {
		return snap.active, nil
	}

	// La lectura compartida no hereda la cancelación del primer llamador; cada uno
	// deja de esperar con su propio ctx.
	shared := context.WithoutCancel(ctx)
	ch := c.group.DoChan(key, func() (any, error) {
		active, err := c.load(shared)
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		c.byKey[key] = snapshot{active: active, loadedAt: c.now()}
		c.mu.Unlock()
		return active, nil
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(map[string]bool), nil
	}
}

func (c *activationCache) load(ctx context.Context) (map[string]bool, error) {
	store, err := c.stores.Store(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := store.Modules().List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listar módulos del tenant: %w", err)
	}
	active := make(map[string]bool, len(rows))
	for _, m := range rows {
		active[m.Module] = m.IsActive
	}
	return active, nil
}

// invalidate descarta la instantánea del tenant del contexto.
func (c *activationCache) invalidate(ctx context.Context) {
	key := cacheKey(ctx)
	c.mu.Lock()
	delete(c.byKey, key)
	c.mu.Unlock()
	c.group.Forget(key)
}
