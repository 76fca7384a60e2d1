package diet

import (
	"sync"

	"recipe-finder/internal/pkg/common"
)

// Cache 單次分類執行的快取，執行結束即丟棄
type Cache struct {
	mu     sync.RWMutex
	store  map[string]Label
	hits   int64
	misses int64
}

// CacheStats 快取統計
type CacheStats struct {
	Entries int   `json:"entries"`
	Hits    int64 `json:"hits"`
	Misses  int64 `json:"misses"`
}

// NewCache 創建空快取
func NewCache() *Cache {
	return &Cache{store: make(map[string]Label)}
}

// Get 讀取快取並更新統計
func (c *Cache) Get(key string) (Label, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	label, ok := c.store[key]
	if ok {
		c.hits++
		common.LogCacheHit("diet", key)
	} else {
		c.misses++
		common.LogCacheMiss("diet", key)
	}
	return label, ok
}

// peek 讀取快取但不計入統計
func (c *Cache) peek(key string) (Label, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	label, ok := c.store[key]
	return label, ok
}

// Set 寫入快取
func (c *Cache) Set(key string, label Label) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.store[key] = label
}

// Len 快取條目數
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.store)
}

// Stats 獲取快取統計
func (c *Cache) Stats() CacheStats {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return CacheStats{
		Entries: len(c.store),
		Hits:    c.hits,
		Misses:  c.misses,
	}
}
