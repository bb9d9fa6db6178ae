package cache

import (
	"crypto/sha256"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/dshills/warndiff/internal/warning"
)

// Bump when Entry changes shape; older entries then read as misses.
const schemaVersion uint16 = 1

const entryExt = ".mp"

// Entry is the on-disk form of one parsed log.
type Entry struct {
	Schema    uint16            `msgpack:"schema"`
	Key       string            `msgpack:"key"`
	Warnings  []warning.Warning `msgpack:"warnings"`
	CreatedAt time.Time         `msgpack:"created_at"`
	TTL       int               `msgpack:"ttl"`
}

// Cache stores parsed warning logs on disk, keyed by a hash of the raw log
// text. Safe for concurrent use.
type Cache struct {
	mu         sync.RWMutex
	dir        string
	ttlSeconds int
	enabled    bool
}

// New creates a new Cache. If dir is empty, uses the default cache directory.
func New(enabled bool, dir string, ttlSeconds int) (*Cache, error) {
	if !enabled {
		return &Cache{enabled: false}, nil
	}
	if dir == "" {
		d, err := DefaultDir()
		if err != nil {
			return nil, err
		}
		dir = d
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating cache directory: %w", err)
	}
	return &Cache{
		dir:        dir,
		ttlSeconds: ttlSeconds,
		enabled:    true,
	}, nil
}

// Get returns the warnings previously stored for content. Unreadable,
// expired or stale-schema entries are misses.
func (c *Cache) Get(content string) ([]warning.Warning, bool) {
	if c == nil || !c.enabled {
		return nil, false
	}
	c.mu.RLock()
	entry, err := c.read(c.entryPath(content))
	c.mu.RUnlock()
	if err != nil || entry.Schema != schemaVersion {
		return nil, false
	}
	if c.expired(entry) {
		c.mu.Lock()
		os.Remove(c.entryPath(content))
		c.mu.Unlock()
		return nil, false
	}
	return entry.Warnings, true
}

// Put stores the parsed warnings for content.
func (c *Cache) Put(content string, ws []warning.Warning) error {
	if c == nil || !c.enabled {
		return nil
	}
	entry := Entry{
		Schema:    schemaVersion,
		Key:       HashKey(content),
		Warnings:  ws,
		CreatedAt: time.Now(),
		TTL:       c.ttlSeconds,
	}
	data, err := msgpack.Marshal(&entry)
	if err != nil {
		return fmt.Errorf("encoding cache entry: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	f, err := os.CreateTemp(c.dir, "tmp-*")
	if err != nil {
		return fmt.Errorf("creating cache entry: %w", err)
	}
	tmp := f.Name()
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("writing cache entry: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("writing cache entry: %w", err)
	}
	if err := os.Rename(tmp, c.entryPath(content)); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("committing cache entry: %w", err)
	}
	return nil
}

// Clear removes all cache entries and returns how many were removed.
func (c *Cache) Clear() (int, error) {
	if c == nil || !c.enabled || c.dir == "" {
		return 0, nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	entries, err := os.ReadDir(c.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("reading cache directory: %w", err)
	}
	var removed int
	for _, e := range entries {
		if filepath.Ext(e.Name()) == entryExt {
			if err := os.Remove(filepath.Join(c.dir, e.Name())); err == nil {
				removed++
			}
		}
	}
	return removed, nil
}

// Prune removes expired, unreadable and old-schema entries and returns how
// many were removed.
func (c *Cache) Prune() (int, error) {
	if c == nil || !c.enabled || c.dir == "" {
		return 0, nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	entries, err := os.ReadDir(c.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("reading cache directory: %w", err)
	}
	var removed int
	for _, e := range entries {
		if filepath.Ext(e.Name()) != entryExt {
			continue
		}
		path := filepath.Join(c.dir, e.Name())
		entry, err := c.read(path)
		if err == nil && entry.Schema == schemaVersion && !c.expired(entry) {
			continue
		}
		if err := os.Remove(path); err == nil {
			removed++
		}
	}
	return removed, nil
}

// Stats returns cache statistics.
type Stats struct {
	Dir        string `json:"dir"`
	Entries    int    `json:"entries"`
	TotalBytes int64  `json:"totalBytes"`
	Expired    int    `json:"expired"`
}

// GetStats returns information about the cache.
func (c *Cache) GetStats() (Stats, error) {
	stats := Stats{Dir: c.dir}
	if !c.enabled || c.dir == "" {
		return stats, nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	entries, err := os.ReadDir(c.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return stats, nil
		}
		return stats, fmt.Errorf("reading cache directory: %w", err)
	}
	for _, e := range entries {
		if filepath.Ext(e.Name()) != entryExt {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		stats.Entries++
		stats.TotalBytes += info.Size()

		entry, err := c.read(filepath.Join(c.dir, e.Name()))
		if err != nil {
			continue
		}
		if entry.Schema != schemaVersion || c.expired(entry) {
			stats.Expired++
		}
	}
	return stats, nil
}

// Dir returns the cache directory path.
func (c *Cache) Dir() string {
	return c.dir
}

// Enabled returns whether caching is enabled.
func (c *Cache) Enabled() bool {
	return c.enabled
}

// HashKey creates a SHA-256 hash of the given key material.
func HashKey(key string) string {
	h := sha256.Sum256([]byte(key))
	return fmt.Sprintf("%x", h)
}

func (c *Cache) read(path string) (Entry, error) {
	var entry Entry
	data, err := os.ReadFile(path)
	if err != nil {
		return entry, err
	}
	if err := msgpack.Unmarshal(data, &entry); err != nil {
		return entry, err
	}
	return entry, nil
}

func (c *Cache) expired(e Entry) bool {
	return c.ttlSeconds > 0 && time.Since(e.CreatedAt) > time.Duration(c.ttlSeconds)*time.Second
}

func (c *Cache) entryPath(content string) string {
	return filepath.Join(c.dir, HashKey(content)+entryExt)
}

// DefaultDir returns the platform cache directory for warndiff.
func DefaultDir() (string, error) {
	if xdg := os.Getenv("XDG_CACHE_HOME"); xdg != "" {
		return filepath.Join(xdg, "warndiff"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(home, "Library", "Caches", "warndiff"), nil
	case "windows":
		if localAppData := os.Getenv("LOCALAPPDATA"); localAppData != "" {
			return filepath.Join(localAppData, "warndiff", "cache"), nil
		}
		return filepath.Join(home, "AppData", "Local", "warndiff", "cache"), nil
	default:
		return filepath.Join(home, ".cache", "warndiff"), nil
	}
}
