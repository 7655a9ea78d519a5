// Package rendercache memoizes rendered diagrams by the digest of their
// source document. Rendering is deterministic, so a digest hit can be
// served without running the solver again.
package rendercache

import (
	"crypto/sha256"
	"encoding/hex"
	"sync"
	"sync/atomic"

	"github.com/gogpu/geodraw/diagram"
)

// shardCount must be a power of two.
const shardCount = 8

// Key is the SHA-256 digest of a source document and its format.
type Key [sha256.Size]byte

// KeyOf returns the cache key of body decoded as format.
func KeyOf(format diagram.Format, body []byte) Key {
	h := sha256.New()
	h.Write([]byte(format.String()))
	h.Write([]byte{0})
	h.Write(body)
	var k Key
	h.Sum(k[:0])
	return k
}

func (k Key) String() string { return hex.EncodeToString(k[:8]) }

// Entry is a cached render.
type Entry struct {
	SVG      string
	Warnings int
}

// Stats reports cache activity.
type Stats struct {
	Len       int
	Capacity  int
	Hits      uint64
	Misses    uint64
	Evictions uint64
}

// Cache is a sharded LRU of rendered documents. It is safe for
// concurrent use.
type Cache struct {
	shards   [shardCount]shard
	perShard int

	hits      atomic.Uint64
	misses    atomic.Uint64
	evictions atomic.Uint64
}

type shard struct {
	mu    sync.Mutex
	index map[Key]*node
	lru   ring
}

// New creates a cache holding about capacity entries, spread evenly
// over its shards. It returns nil when capacity is not positive; a nil
// *Cache misses every lookup and drops every Put.
func New(capacity int) *Cache {
	if capacity <= 0 {
		return nil
	}
	per := (capacity + shardCount - 1) / shardCount
	c := &Cache{perShard: per}
	for i := range c.shards {
		c.shards[i].index = make(map[Key]*node)
		c.shards[i].lru.init()
	}
	return c
}

func (c *Cache) shardOf(k Key) *shard {
	return &c.shards[k[0]&(shardCount-1)]
}

// Get returns the entry stored under k and marks it recently used.
func (c *Cache) Get(k Key) (Entry, bool) {
	if c == nil {
		return Entry{}, false
	}
	s := c.shardOf(k)
	s.mu.Lock()
	var e Entry
	n, ok := s.index[k]
	if ok {
		s.lru.touch(n)
		e = n.entry
	}
	s.mu.Unlock()
	if !ok {
		c.misses.Add(1)
		return Entry{}, false
	}
	c.hits.Add(1)
	return e, true
}

// Put stores e under k, evicting the shard's least recently used
// entries when it is full.
func (c *Cache) Put(k Key, e Entry) {
	if c == nil {
		return
	}
	s := c.shardOf(k)
	s.mu.Lock()
	defer s.mu.Unlock()
	if n, ok := s.index[k]; ok {
		n.entry = e
		s.lru.touch(n)
		return
	}
	for s.lru.len >= c.perShard {
		old := s.lru.oldest()
		s.lru.remove(old)
		delete(s.index, old.key)
		c.evictions.Add(1)
	}
	n := &node{key: k, entry: e}
	s.lru.insertFront(n)
	s.index[k] = n
}

// Len returns the number of cached entries.
func (c *Cache) Len() int {
	if c == nil {
		return 0
	}
	total := 0
	for i := range c.shards {
		s := &c.shards[i]
		s.mu.Lock()
		total += s.lru.len
		s.mu.Unlock()
	}
	return total
}

// Stats returns a snapshot of the counters.
func (c *Cache) Stats() Stats {
	if c == nil {
		return Stats{}
	}
	return Stats{
		Len:       c.Len(),
		Capacity:  c.perShard * shardCount,
		Hits:      c.hits.Load(),
		Misses:    c.misses.Load(),
		Evictions: c.evictions.Load(),
	}
}
