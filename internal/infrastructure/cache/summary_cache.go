package cache

import (
	"encoding/binary"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/damon-houk/expense-tracker/internal/domain/entity"
)

// CacheEntry represents a cached summary with its insertion time
type CacheEntry struct {
	Summary   entity.Summary
	Timestamp time.Time
}

// SummaryCache provides a thread-safe in-memory cache of summaries keyed by
// a content hash of the expenses they were computed from.
type SummaryCache struct {
	cache      map[uint64]CacheEntry
	expiration time.Duration
	mutex      sync.RWMutex
}

// NewSummaryCache creates a new summary cache
func NewSummaryCache() *SummaryCache {
	return &SummaryCache{
		cache:      make(map[uint64]CacheEntry),
		expiration: time.Hour,
	}
}

// Key hashes every field of every expense, in order
func Key(expenses []entity.Expense) uint64 {
	d := xxhash.New()
	var buf [8]byte

	writeString := func(s string) {
		binary.LittleEndian.PutUint64(buf[:], uint64(len(s)))
		d.Write(buf[:])
		d.WriteString(s)
	}

	for _, e := range expenses {
		writeString(e.ID)
		writeString(e.Title)
		writeString(e.Amount.String())
		writeString(e.Category)
		binary.LittleEndian.PutUint64(buf[:], uint64(e.Date.UnixNano()))
		d.Write(buf[:])
		writeString(e.Notes)
	}

	return d.Sum64()
}

// Get retrieves a summary from the cache if available and not expired
func (c *SummaryCache) Get(key uint64) (entity.Summary, bool) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	entry, exists := c.cache[key]
	if !exists || time.Since(entry.Timestamp) > c.expiration {
		return entity.Summary{}, false
	}

	return entry.Summary, true
}

// Put stores a summary in the cache
func (c *SummaryCache) Put(key uint64, summary entity.Summary) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.cache[key] = CacheEntry{
		Summary:   summary,
		Timestamp: time.Now(),
	}
}

// Clear clears all entries from the cache
func (c *SummaryCache) Clear() {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.cache = make(map[uint64]CacheEntry)
}

// SetExpiration sets the cache expiration duration
func (c *SummaryCache) SetExpiration(duration time.Duration) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.expiration = duration
}

// Size returns the number of items in the cache
func (c *SummaryCache) Size() int {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	return len(c.cache)
}

// CleanExpired removes expired entries from the cache
func (c *SummaryCache) CleanExpired() int {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	count := 0
	now := time.Now()

	for key, entry := range c.cache {
		if now.Sub(entry.Timestamp) > c.expiration {
			delete(c.cache, key)
			count++
		}
	}

	return count
}
