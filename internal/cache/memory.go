package cache

import (
	"context"
	"encoding/json"
	"sync"

	"go-pdv/internal/sale"
)

// MemorySessionCache is the single-process fallback used when no Redis is
// configured. Snapshots are stored encoded so callers never share state.
type MemorySessionCache struct {
	mu   sync.RWMutex
	data map[string][]byte
}

var _ SessionCache = (*MemorySessionCache)(nil)

func NewMemorySessionCache() *MemorySessionCache {
	return &MemorySessionCache{data: make(map[string][]byte)}
}

func (c *MemorySessionCache) Save(_ context.Context, key string, s sale.Session) error {
	b, err := json.Marshal(s)
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.data[key] = b
	c.mu.Unlock()
	return nil
}

func (c *MemorySessionCache) Load(_ context.Context, key string) (*sale.Session, error) {
	c.mu.RLock()
	b, ok := c.data[key]
	c.mu.RUnlock()
	if !ok {
		return nil, nil
	}
	var s sale.Session
	if err := json.Unmarshal(b, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (c *MemorySessionCache) Clear(_ context.Context, key string) error {
	c.mu.Lock()
	delete(c.data, key)
	c.mu.Unlock()
	return nil
}
