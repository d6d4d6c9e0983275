// Package gateway memoizes mirrored entity data per (scope, entity type)
// pair. The primary path is the SQLite mirror; single-event scopes fall
// back to the backend API when the mirror has nothing usable, and fallback
// payloads are written through to the mirror. Callers never
// see an error: total failure degrades to an empty slice, and "no data yet"
// is indistinguishable from an empty result set.
package gateway

import (
	"context"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/eventhubx/eventhubx/internal/record"
	"github.com/eventhubx/eventhubx/internal/storage"
)

// Fallback is the secondary per-event data path.
type Fallback interface {
	FetchSubpage(ctx context.Context, eventID string, entityType record.EntityType) ([]record.Record, error)
}

// Gateway caches entity records per (scope, entity type). Entries never
// expire on their own; only Invalidate and InvalidateAll evict.
type Gateway struct {
	store    storage.Store
	fallback Fallback
	logger   *zap.Logger

	// coalesce guards first-time fetches with single-flight. Disabled only
	// to reproduce the historical duplicate-fetch behavior in tests.
	coalesce bool

	mu    sync.RWMutex
	cache map[cacheKey][]record.Record
	group singleflight.Group

	hits   atomic.Uint64
	misses atomic.Uint64
}

type cacheKey struct {
	scope  record.Scope
	entity record.EntityType
}

func (k cacheKey) String() string {
	return string(k.scope) + "/" + string(k.entity)
}

// Option configures a Gateway.
type Option func(*Gateway)

// WithoutCoalescing disables single-flight on cache misses, restoring the
// duplicate-fetch race where the last write to the cache slot wins.
func WithoutCoalescing() Option {
	return func(g *Gateway) { g.coalesce = false }
}

// New creates a Gateway. fallback may be nil when no backend is configured.
func New(store storage.Store, fallback Fallback, logger *zap.Logger, opts ...Option) *Gateway {
	if logger == nil {
		logger = zap.NewNop()
	}
	g := &Gateway{
		store:    store,
		fallback: fallback,
		logger:   logger,
		coalesce: true,
		cache:    make(map[cacheKey][]record.Record),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// normalize maps presentation aliases onto cacheable pairs. Events are not
// scoped by event, so every events request shares the all-scope slot.
func normalize(scope record.Scope, entityType record.EntityType) cacheKey {
	entityType = entityType.Base()
	if entityType == record.Events {
		scope = record.ScopeAll
	}
	return cacheKey{scope: scope, entity: entityType}
}

// Fetch returns the records for (scope, entityType), fetching and caching
// them on first use. At most one fetch populates a given pair for the
// lifetime of the cache.
func (g *Gateway) Fetch(ctx context.Context, scope record.Scope, entityType record.EntityType) []record.Record {
	key := normalize(scope, entityType)

	g.mu.RLock()
	cached, ok := g.cache[key]
	g.mu.RUnlock()
	if ok {
		g.hits.Add(1)
		return cached
	}
	g.misses.Add(1)

	if !g.coalesce {
		records := g.load(ctx, key)
		g.storeResult(key, records)
		return records
	}

	result, _, _ := g.group.Do(key.String(), func() (any, error) {
		records := g.load(ctx, key)
		g.storeResult(key, records)
		return records, nil
	})
	return result.([]record.Record)
}

func (g *Gateway) storeResult(key cacheKey, records []record.Record) {
	g.mu.Lock()
	g.cache[key] = records
	g.mu.Unlock()
}

// load runs the primary lookup and, for single-event scopes, the API
// fallback. Every failure path returns an empty slice.
func (g *Gateway) load(ctx context.Context, key cacheKey) []record.Record {
	records, err := g.primary(ctx, key)
	if err == nil && len(records) > 0 {
		return records
	}
	if err != nil {
		g.logger.Warn("primary lookup failed",
			zap.String("scope", string(key.scope)),
			zap.String("entity", string(key.entity)),
			zap.Error(err))
	}

	// The backend fallback is defined only for single-event subpage
	// scopes. Events and the all scope short-circuit to whatever the
	// primary produced.
	if key.entity == record.Events || key.scope == record.ScopeAll || g.fallback == nil {
		if records == nil {
			records = []record.Record{}
		}
		return records
	}

	fetched, err := g.fallback.FetchSubpage(ctx, string(key.scope), key.entity)
	if err != nil {
		g.logger.Warn("fallback fetch failed",
			zap.String("scope", string(key.scope)),
			zap.String("entity", string(key.entity)),
			zap.Error(err))
		return []record.Record{}
	}

	// Write the fallback payload through to the mirror so the next cold
	// start reads it from the primary path. A write failure only costs the
	// persistence, never the response.
	if len(fetched) > 0 {
		if err := g.store.UpsertSubpage(ctx, string(key.scope), key.entity, fetched); err != nil {
			g.logger.Warn("mirror write-through failed",
				zap.String("scope", string(key.scope)),
				zap.String("entity", string(key.entity)),
				zap.Error(err))
		}
	}
	return fetched
}

func (g *Gateway) primary(ctx context.Context, key cacheKey) ([]record.Record, error) {
	if key.entity == record.Events {
		return g.store.ListEvents(ctx)
	}
	if key.scope == record.ScopeAll {
		return g.store.ScanSubpages(ctx, key.entity)
	}
	return g.store.GetSubpage(ctx, string(key.scope), key.entity)
}

// Invalidate evicts every cached pair for one scope. The events slot is
// evicted too when the all scope is invalidated.
func (g *Gateway) Invalidate(scope record.Scope) {
	g.mu.Lock()
	defer g.mu.Unlock()
	for key := range g.cache {
		if key.scope == scope {
			delete(g.cache, key)
		}
	}
}

// InvalidateAll drops the entire cache.
func (g *Gateway) InvalidateAll() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.cache = make(map[cacheKey][]record.Record)
}

// Counters reports cumulative cache hits and misses.
func (g *Gateway) Counters() (hits, misses uint64) {
	return g.hits.Load(), g.misses.Load()
}
