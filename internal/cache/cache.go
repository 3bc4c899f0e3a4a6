// Package cache stores generated image renditions on disk so the gallery
// does not re-encode an image that has not changed. Entries are keyed by
// the source content hash and the rendition parameters, tracked in a JSON
// index, and evicted least-recently-used once the size limit is reached.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"
)

const indexVersion = "2"

// Cache is an on-disk rendition cache
type Cache struct {
	mu      sync.RWMutex
	dir     string
	index   *Index
	maxSize int64
	maxAge  time.Duration
	stats   Stats
	log     *zap.Logger
	now     func() time.Time
}

// Index tracks every cached rendition
type Index struct {
	Version string            `json:"version"`
	Entries map[string]*Entry `json:"entries"`
	Updated time.Time         `json:"updated"`
}

// Entry is one cached rendition
type Entry struct {
	Key         string    `json:"key"`
	File        string    `json:"file"`
	Size        int64     `json:"size"`
	ContentType string    `json:"content_type"`
	Width       int       `json:"width"`
	Height      int       `json:"height"`
	Created     time.Time `json:"created"`
	LastAccess  time.Time `json:"last_access"`
	AccessCount int       `json:"access_count"`
}

// Stats reports cache effectiveness
type Stats struct {
	Hits       int64 `json:"hits"`
	Misses     int64 `json:"misses"`
	Evictions  int64 `json:"evictions"`
	TotalSize  int64 `json:"total_size"`
	EntryCount int   `json:"entry_count"`
}

// Config holds cache configuration
type Config struct {
	Dir     string        // default: $HOME/.cache/zoom
	MaxSize int64         // bytes, <= 0 means unlimited (default: 256 MB)
	MaxAge  time.Duration // <= 0 means entries never expire (default: 30 days)
	Logger  *zap.Logger
}

// DefaultConfig returns the default cache configuration
func DefaultConfig() Config {
	homeDir, _ := os.UserHomeDir()
	return Config{
		Dir:     filepath.Join(homeDir, ".cache", "zoom"),
		MaxSize: 256 << 20,
		MaxAge:  30 * 24 * time.Hour,
	}
}

// New opens or creates the cache in cfg.Dir. A missing or corrupt index
// starts an empty cache.
func New(cfg Config) (*Cache, error) {
	if cfg.Dir == "" {
		d := DefaultConfig()
		cfg.Dir = d.Dir
	}
	if err := os.MkdirAll(filepath.Join(cfg.Dir, "renditions"), 0755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}

	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}

	c := &Cache{
		dir:     cfg.Dir,
		maxSize: cfg.MaxSize,
		maxAge:  cfg.MaxAge,
		log:     log.Named("cache"),
		now:     time.Now,
		index:   newIndex(),
	}

	if err := c.loadIndex(); err != nil && !os.IsNotExist(err) {
		c.log.Warn("Discarding unreadable cache index", zap.Error(err))
		c.index = newIndex()
	}
	c.pruneExpired()
	return c, nil
}

func newIndex() *Index {
	return &Index{
		Version: indexVersion,
		Entries: make(map[string]*Entry),
		Updated: time.Now(),
	}
}

// Key derives a cache key from the source image bytes and the rendition
// width
func Key(source []byte, width int) string {
	h := sha256.New()
	h.Write(source)
	h.Write([]byte{0})
	h.Write([]byte(strconv.Itoa(width)))
	return hex.EncodeToString(h.Sum(nil))
}

// Get returns the cached rendition for key
func (c *Cache) Get(key string) ([]byte, Entry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.index.Entries[key]
	if !ok {
		c.stats.Misses++
		return nil, Entry{}, false
	}
	if c.expired(entry) {
		c.deleteLocked(key)
		c.stats.Misses++
		return nil, Entry{}, false
	}

	data, err := os.ReadFile(filepath.Join(c.dir, entry.File))
	if err != nil {
		c.log.Debug("Cached rendition vanished", zap.String("key", key), zap.Error(err))
		c.deleteLocked(key)
		c.stats.Misses++
		return nil, Entry{}, false
	}

	entry.LastAccess = c.now()
	entry.AccessCount++
	c.stats.Hits++
	return data, *entry, true
}

// Put stores a rendition, evicting the least recently used entries when
// the cache would exceed its size limit
func (c *Cache) Put(key string, data []byte, contentType string, width, height int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	size := int64(len(data))
	if c.maxSize > 0 && size > c.maxSize {
		return fmt.Errorf("rendition of %d bytes exceeds cache limit of %d", size, c.maxSize)
	}
	if old, ok := c.index.Entries[key]; ok {
		c.removeFile(old.File)
		c.stats.TotalSize -= old.Size
		delete(c.index.Entries, key)
	}
	c.evictFor(size)

	file := filepath.Join("renditions", key)
	if err := os.WriteFile(filepath.Join(c.dir, file), data, 0644); err != nil {
		return fmt.Errorf("failed to write rendition: %w", err)
	}

	now := c.now()
	c.index.Entries[key] = &Entry{
		Key:         key,
		File:        file,
		Size:        size,
		ContentType: contentType,
		Width:       width,
		Height:      height,
		Created:     now,
		LastAccess:  now,
	}
	c.stats.TotalSize += size
	c.stats.EntryCount = len(c.index.Entries)
	c.index.Updated = now

	return c.saveIndexLocked()
}

// Delete removes key from the cache. Deleting a missing key is not an
// error.
func (c *Cache) Delete(key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.index.Entries[key]; !ok {
		return nil
	}
	c.deleteLocked(key)
	return c.saveIndexLocked()
}

// Clear removes every cached rendition
func (c *Cache) Clear() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	dir := filepath.Join(c.dir, "renditions")
	err := os.RemoveAll(dir)
	err = multierr.Append(err, os.MkdirAll(dir, 0755))

	c.index = newIndex()
	c.stats = Stats{}
	return multierr.Append(err, c.saveIndexLocked())
}

// Stats returns a snapshot of the cache counters
func (c *Cache) Stats() Stats {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.stats
}

// Len returns the number of cached renditions
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.index.Entries)
}

// Close persists the index
func (c *Cache) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.saveIndexLocked()
}

func (c *Cache) loadIndex() error {
	data, err := os.ReadFile(filepath.Join(c.dir, "index.json"))
	if err != nil {
		return err
	}

	var index Index
	if err := json.Unmarshal(data, &index); err != nil {
		return err
	}
	if index.Version != indexVersion {
		return fmt.Errorf("cache index version %q, want %q", index.Version, indexVersion)
	}
	if index.Entries == nil {
		index.Entries = make(map[string]*Entry)
	}
	c.index = &index

	var total int64
	for _, e := range index.Entries {
		total += e.Size
	}
	c.stats.TotalSize = total
	c.stats.EntryCount = len(index.Entries)
	return nil
}

// saveIndexLocked writes the index. Caller must hold mu.
func (c *Cache) saveIndexLocked() error {
	data, err := json.MarshalIndent(c.index, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(c.dir, "index.json"), data, 0644)
}

func (c *Cache) expired(e *Entry) bool {
	if c.maxAge <= 0 {
		return false
	}
	return c.now().Sub(e.Created) > c.maxAge
}

func (c *Cache) pruneExpired() {
	c.mu.Lock()
	defer c.mu.Unlock()

	pruned := 0
	for key, e := range c.index.Entries {
		if c.expired(e) {
			c.deleteLocked(key)
			pruned++
		}
	}
	if pruned > 0 {
		c.log.Debug("Pruned expired renditions", zap.Int("count", pruned))
		if err := c.saveIndexLocked(); err != nil {
			c.log.Warn("Failed to save cache index", zap.Error(err))
		}
	}
}

// evictFor drops least recently used entries until needed more bytes fit
func (c *Cache) evictFor(needed int64) {
	if c.maxSize <= 0 {
		return
	}
	for c.stats.TotalSize+needed > c.maxSize && len(c.index.Entries) > 0 {
		var victim *Entry
		for _, e := range c.index.Entries {
			if victim == nil || e.LastAccess.Before(victim.LastAccess) {
				victim = e
			}
		}
		c.deleteLocked(victim.Key)
		c.stats.Evictions++
	}
}

func (c *Cache) deleteLocked(key string) {
	e, ok := c.index.Entries[key]
	if !ok {
		return
	}
	c.removeFile(e.File)
	delete(c.index.Entries, key)
	c.stats.TotalSize -= e.Size
	c.stats.EntryCount = len(c.index.Entries)
	c.index.Updated = c.now()
}

func (c *Cache) removeFile(file string) {
	if err := os.Remove(filepath.Join(c.dir, file)); err != nil && !os.IsNotExist(err) {
		c.log.Warn("Failed to remove cached rendition", zap.String("file", file), zap.Error(err))
	}
}
