// Package cache provides an optional in-memory + PostgreSQL-backed cache
// for NPC name lookups, keyed by (id, locale). Wowhead pages change
// rarely; a cache turns repeat synchronization passes over a large addon
// tree into local reads.
package cache

import (
	"context"
	"fmt"
	"sync"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"

	"npc-localizer/internal/locale"
)

const schema = `
CREATE TABLE IF NOT EXISTS npc_names (
	npc_id BIGINT NOT NULL,
	locale TEXT NOT NULL,
	name TEXT NOT NULL,
	PRIMARY KEY (npc_id, locale)
)`

// LookupCache caches localized NPC names in memory and PostgreSQL.
// With a nil pool only the memory tier is active.
type LookupCache struct {
	pool   *pgxpool.Pool
	mu     sync.RWMutex
	memory map[string]string // "id:locale" → name
}

// newMemoryCache creates a memory-only cache.
func newMemoryCache() *LookupCache {
	return &LookupCache{memory: make(map[string]string)}
}

// New creates a cache backed by the given pool and ensures its schema.
func New(ctx context.Context, pool *pgxpool.Pool) (*LookupCache, error) {
	if _, err := pool.Exec(ctx, schema); err != nil {
		return nil, fmt.Errorf("ensure cache schema: %w", err)
	}
	c := newMemoryCache()
	c.pool = pool
	return c, nil
}

func key(id int64, localeCode string) string {
	return fmt.Sprintf("%d:%s", id, localeCode)
}

// Get retrieves a cached name. Returns false on a miss; cache errors are
// treated as misses.
func (c *LookupCache) Get(ctx context.Context, id int64, localeCode string) (string, bool) {
	k := key(id, localeCode)

	c.mu.RLock()
	if v, ok := c.memory[k]; ok {
		c.mu.RUnlock()
		return v, true
	}
	c.mu.RUnlock()

	if c.pool == nil {
		return "", false
	}

	var name string
	err := c.pool.QueryRow(ctx,
		`SELECT name FROM npc_names WHERE npc_id = $1 AND locale = $2`,
		id, localeCode).Scan(&name)
	if err != nil {
		return "", false
	}

	c.mu.Lock()
	c.memory[k] = name
	c.mu.Unlock()

	return name, true
}

// Set stores a name in both tiers.
func (c *LookupCache) Set(ctx context.Context, id int64, localeCode, name string) error {
	c.mu.Lock()
	c.memory[key(id, localeCode)] = name
	c.mu.Unlock()

	if c.pool == nil {
		return nil
	}

	_, err := c.pool.Exec(ctx,
		`INSERT INTO npc_names (npc_id, locale, name) VALUES ($1, $2, $3)
		 ON CONFLICT (npc_id, locale) DO UPDATE SET name = EXCLUDED.name`,
		id, localeCode, name)
	if err != nil {
		return fmt.Errorf("cache set: %w", err)
	}
	return nil
}

// Preload loads all cached names into memory.
func (c *LookupCache) Preload(ctx context.Context) error {
	rows, err := c.pool.Query(ctx, `SELECT npc_id, locale, name FROM npc_names`)
	if err != nil {
		return fmt.Errorf("preload cache: %w", err)
	}
	defer rows.Close()

	c.mu.Lock()
	defer c.mu.Unlock()

	count := 0
	for rows.Next() {
		var (
			id         int64
			localeCode string
			name       string
		)
		if err := rows.Scan(&id, &localeCode, &name); err != nil {
			return fmt.Errorf("preload cache: %w", err)
		}
		c.memory[key(id, localeCode)] = name
		count++
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("preload cache: %w", err)
	}

	log.Info().Int("count", count).Msg("Preloaded name cache")
	return nil
}

// cachingTranslator consults the cache before delegating to the inner
// translator and stores successful lookups.
type cachingTranslator struct {
	inner locale.Translator
	cache *LookupCache
}

// Wrap decorates a translator with this cache. Cache write failures are
// logged, never propagated: the lookup already succeeded.
func (c *LookupCache) Wrap(inner locale.Translator) locale.Translator {
	return &cachingTranslator{inner: inner, cache: c}
}

func (t *cachingTranslator) Lookup(ctx context.Context, id int64, loc locale.Locale) (string, bool, error) {
	if name, ok := t.cache.Get(ctx, id, loc.Code); ok {
		return name, true, nil
	}

	name, ok, err := t.inner.Lookup(ctx, id, loc)
	if err != nil || !ok {
		return name, ok, err
	}

	if err := t.cache.Set(ctx, id, loc.Code, name); err != nil {
		log.Warn().Err(err).Int64("id", id).Str("locale", loc.Code).Msg("Failed to cache name")
	}
	return name, true, nil
}
