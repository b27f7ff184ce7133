package internal

import (
	"context"
	"crypto/md5"
	"encoding/gob"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gnolang/tmin/internal/oracle"
	"github.com/gnolang/tmin/internal/reducer"
)

const (
	cacheFileName = "verdict_cache.gob"

	DefaultCacheMaxAge = 7 * 24 * time.Hour
)

type CacheEntry struct {
	Reproduces bool
	CreatedAt  time.Time
}

// Cache remembers oracle verdicts by oracle fingerprint and candidate
// text. It is safe for concurrent use.
type Cache struct {
	CacheDir string
	entries  map[string]CacheEntry
	mutex    sync.RWMutex
	maxAge   time.Duration
	dirty    bool

	hits   atomic.Int64
	misses atomic.Int64
}

// NewCache opens the cache stored in cacheDir. An empty cacheDir gives a
// cache that lives in memory only.
func NewCache(cacheDir string) (*Cache, error) {
	cache := &Cache{
		CacheDir: cacheDir,
		entries:  make(map[string]CacheEntry),
		maxAge:   DefaultCacheMaxAge,
	}
	if cacheDir == "" {
		return cache, nil
	}

	if err := os.MkdirAll(cacheDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}
	if err := cache.load(); err != nil {
		return nil, fmt.Errorf("failed to load cache: %w", err)
	}

	return cache, nil
}

func (c *Cache) load() error {
	file, err := os.Open(filepath.Join(c.CacheDir, cacheFileName))
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to open cache file: %w", err)
	}
	defer file.Close()

	if err := gob.NewDecoder(file).Decode(&c.entries); err != nil {
		return fmt.Errorf("failed to decode cache file: %w", err)
	}
	return nil
}

// Save writes the cache to its directory if anything changed since the
// last save.
func (c *Cache) Save() error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if c.CacheDir == "" || !c.dirty {
		return nil
	}

	file, err := os.Create(filepath.Join(c.CacheDir, cacheFileName))
	if err != nil {
		return fmt.Errorf("failed to create cache file: %w", err)
	}
	defer file.Close()

	if err := gob.NewEncoder(file).Encode(c.entries); err != nil {
		return fmt.Errorf("failed to encode cache file: %w", err)
	}
	c.dirty = false
	return nil
}

func cacheKey(fingerprint, text string) string {
	return fmt.Sprintf("%x", md5.Sum([]byte(fingerprint+"\x00"+text)))
}

func (c *Cache) Set(fingerprint, text string, reproduces bool) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.entries[cacheKey(fingerprint, text)] = CacheEntry{
		Reproduces: reproduces,
		CreatedAt:  time.Now(),
	}
	c.dirty = true
}

func (c *Cache) Get(fingerprint, text string) (reproduces bool, found bool) {
	key := cacheKey(fingerprint, text)

	c.mutex.Lock()
	defer c.mutex.Unlock()

	entry, exists := c.entries[key]
	if !exists {
		return false, false
	}
	// too old
	if time.Since(entry.CreatedAt) > c.maxAge {
		delete(c.entries, key)
		c.dirty = true
		return false, false
	}
	return entry.Reproduces, true
}

func (c *Cache) SetMaxAge(duration time.Duration) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.maxAge = duration
}

func (c *Cache) Len() int {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	return len(c.entries)
}

func (c *Cache) InvalidateAll() {
	c.mutex.Lock()
	c.entries = make(map[string]CacheEntry)
	c.dirty = true
	c.mutex.Unlock()

	_ = c.Save() // ignore error as this is a manual operation
}

// Hits and Misses count lookups made through wrapped oracles.
func (c *Cache) Hits() int64   { return c.hits.Load() }
func (c *Cache) Misses() int64 { return c.misses.Load() }

// Wrap returns an oracle that answers from the cache when it can. Oracles
// without a fingerprint are returned unwrapped.
func (c *Cache) Wrap(o reducer.Oracle) reducer.Oracle {
	fp := oracle.Fingerprint(o)
	if fp == "" {
		return o
	}
	return &cachedOracle{cache: c, oracle: o, fingerprint: fp}
}

type cachedOracle struct {
	cache       *Cache
	oracle      reducer.Oracle
	fingerprint string
}

func (co *cachedOracle) Reproduces(ctx context.Context, text string) (bool, error) {
	if ok, found := co.cache.Get(co.fingerprint, text); found {
		co.cache.hits.Add(1)
		return ok, nil
	}
	co.cache.misses.Add(1)

	ok, timedOut, err := oracle.Evaluate(ctx, co.oracle, text)
	if err != nil {
		return false, err
	}
	if !timedOut {
		co.cache.Set(co.fingerprint, text, ok)
	}
	return ok, nil
}

func (co *cachedOracle) Fingerprint() string {
	return co.fingerprint
}
