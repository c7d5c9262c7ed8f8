package dex

import (
	"sync"

	"github.com/ethereum/go-ethereum/common"
)

// cache is a concurrency-safe map keyed by contract address.
type cache[V any] struct {
	mu   sync.RWMutex
	data map[common.Address]V
}

func newCache[V any]() *cache[V] {
	return &cache[V]{data: make(map[common.Address]V)}
}

func (c *cache[V]) Get(address common.Address) (V, bool) {
	c.mu.RLock()
	v, ok := c.data[address]
	c.mu.RUnlock()
	return v, ok
}

func (c *cache[V]) Set(address common.Address, v V) {
	c.mu.Lock()
	c.data[address] = v
	c.mu.Unlock()
}
