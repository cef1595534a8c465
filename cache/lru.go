// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package cache provides the read caches used by the query surface.
package cache

import (
	"sync/atomic"

	"github.com/ethereum/go-ethereum/log"
	lru "github.com/hashicorp/golang-lru"
)

// LRU extends golang-lru with load-through reads and hit accounting.
type LRU struct {
	*lru.Cache
	name      string
	hit, miss atomic.Int64
	permille  atomic.Int32 // hit rate seen by the last LogStats
}

// NewLRU creates a LRU cache instance.
// maxSize should be > 0, or an error returned.
func NewLRU(name string, maxSize int) (*LRU, error) {
	cache, err := lru.New(maxSize)
	if err != nil {
		return nil, err
	}
	return &LRU{Cache: cache, name: name}, nil
}

// Loader defines loader to load value.
type Loader func(key any) (any, error)

// GetOrLoad first try to get from cache, do load if missed.
// Failed loads are not cached.
func (l *LRU) GetOrLoad(key any, loader Loader) (any, error) {
	if v, ok := l.Get(key); ok {
		l.hit.Add(1)
		return v, nil
	}
	l.miss.Add(1)
	v, err := loader(key)
	if err != nil {
		return nil, err
	}

	l.Add(key, v)
	return v, nil
}

// Stats returns the hit and miss counters.
func (l *LRU) Stats() (hit, miss int64) {
	return l.hit.Load(), l.miss.Load()
}

// LogStats writes the counters to the debug log when the hit rate moved since the last call.
func (l *LRU) LogStats() bool {
	hit, miss := l.Stats()
	rate := int32(0)
	if hit+miss > 0 {
		rate = int32(hit * 1000 / (hit + miss))
	}
	if l.permille.Swap(rate) == rate {
		return false
	}
	log.Debug("cache stats", "name", l.name, "hit", hit, "miss", miss, "size", l.Len())
	return true
}
