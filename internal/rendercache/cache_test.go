package rendercache

import (
	"fmt"
	"sync"
	"testing"

	"github.com/gogpu/geodraw/diagram"
)

func TestKeyOf(t *testing.T) {
	a := KeyOf(diagram.FormatJSON, []byte(`{"width": 1}`))
	if a != KeyOf(diagram.FormatJSON, []byte(`{"width": 1}`)) {
		t.Error("KeyOf is not stable")
	}
	if a == KeyOf(diagram.FormatYAML, []byte(`{"width": 1}`)) {
		t.Error("format does not change the key")
	}
	if a == KeyOf(diagram.FormatJSON, []byte(`{"width": 2}`)) {
		t.Error("body does not change the key")
	}
	if got := len(a.String()); got != 16 {
		t.Errorf("len(Key.String()) = %d, want 16", got)
	}
}

func TestGetPut(t *testing.T) {
	c := New(16)
	k := KeyOf(diagram.FormatJSON, []byte("a"))
	if _, ok := c.Get(k); ok {
		t.Fatal("Get on empty cache hit")
	}
	c.Put(k, Entry{SVG: "<svg/>", Warnings: 1})
	e, ok := c.Get(k)
	if !ok || e.SVG != "<svg/>" || e.Warnings != 1 {
		t.Errorf("Get() = %+v, %v", e, ok)
	}
	c.Put(k, Entry{SVG: "<svg></svg>"})
	if e, _ := c.Get(k); e.SVG != "<svg></svg>" {
		t.Errorf("Put did not replace the entry: %+v", e)
	}
	st := c.Stats()
	if st.Len != 1 || st.Hits != 2 || st.Misses != 1 || st.Capacity != 16 {
		t.Errorf("Stats() = %+v", st)
	}
}

// keysInShard returns n distinct keys that all land in one shard.
func keysInShard(n int) []Key {
	var out []Key
	for i := 0; len(out) < n; i++ {
		k := KeyOf(diagram.FormatJSON, []byte(fmt.Sprint(i)))
		if k[0]&(shardCount-1) == 0 {
			out = append(out, k)
		}
	}
	return out
}

func TestEvictsLeastRecentlyUsed(t *testing.T) {
	c := New(2 * shardCount) // two entries per shard
	keys := keysInShard(3)
	c.Put(keys[0], Entry{SVG: "0"})
	c.Put(keys[1], Entry{SVG: "1"})
	c.Get(keys[0])
	c.Put(keys[2], Entry{SVG: "2"})

	if _, ok := c.Get(keys[1]); ok {
		t.Error("least recently used entry survived")
	}
	for _, k := range []Key{keys[0], keys[2]} {
		if _, ok := c.Get(k); !ok {
			t.Errorf("entry %v evicted", k)
		}
	}
	if ev := c.Stats().Evictions; ev != 1 {
		t.Errorf("Evictions = %d, want 1", ev)
	}
}

func TestNilCache(t *testing.T) {
	var c *Cache
	if New(0) != nil {
		t.Error("New(0) != nil")
	}
	k := KeyOf(diagram.FormatJSON, nil)
	c.Put(k, Entry{SVG: "x"})
	if _, ok := c.Get(k); ok || c.Len() != 0 || c.Stats() != (Stats{}) {
		t.Error("nil cache stored an entry")
	}
}

func TestConcurrent(t *testing.T) {
	c := New(64)
	var wg sync.WaitGroup
	for g := range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range 200 {
				k := KeyOf(diagram.FormatJSON, []byte(fmt.Sprint(g, i%50)))
				if _, ok := c.Get(k); !ok {
					c.Put(k, Entry{SVG: fmt.Sprint(i)})
				}
			}
		}()
	}
	wg.Wait()
	if n := c.Len(); n > 64 {
		t.Errorf("Len() = %d, exceeds capacity", n)
	}
}
