package embedding

import (
	"fmt"
	"sync"
	"testing"
)

func TestEmbeddingCache_GetSet(t *testing.T) {
	c := NewEmbeddingCache(2)
	if v, ok := c.Get("t:wool winter coat"); ok || v != nil {
		t.Fatal("expected miss")
	}
	c.Set("t:wool winter coat", []float32{1, 2, 3})
	v, ok := c.Get("t:wool winter coat")
	if !ok || len(v) != 3 || v[0] != 1 {
		t.Errorf("Get: got %v, %v", v, ok)
	}
	c.Set("t:red summer dress", []float32{4, 5})
	c.Set("i:9f86d081", []float32{6}) // evicts the coat
	if _, ok := c.Get("t:wool winter coat"); ok {
		t.Error("expected oldest entry to be evicted")
	}
	if _, ok := c.Get("t:red summer dress"); !ok {
		t.Error("expected text entry to remain")
	}
	if _, ok := c.Get("i:9f86d081"); !ok {
		t.Error("expected image entry to be present")
	}
}

func TestEmbeddingCache_PrefixesKeepModalitiesDistinct(t *testing.T) {
	c := NewEmbeddingCache(4)
	c.Set("t:abc123", []float32{1})
	c.Set("i:abc123", []float32{2})
	tv, _ := c.Get("t:abc123")
	iv, _ := c.Get("i:abc123")
	if len(tv) != 1 || len(iv) != 1 || tv[0] == iv[0] {
		t.Errorf("prefixed keys collided: %v vs %v", tv, iv)
	}
	if c.Len() != 2 {
		t.Errorf("Len = %d, want 2", c.Len())
	}
}

func TestEmbeddingCache_GetRefreshesRecency(t *testing.T) {
	c := NewEmbeddingCache(2)
	c.Set("t:denim jacket", []float32{1})
	c.Set("t:silk scarf", []float32{2})
	c.Get("t:denim jacket")
	c.Set("t:ankle boots", []float32{3}) // evicts the scarf
	if _, ok := c.Get("t:denim jacket"); !ok {
		t.Error("recently read entry should survive eviction")
	}
	if _, ok := c.Get("t:silk scarf"); ok {
		t.Error("least recently used entry should have been evicted")
	}
}

func TestEmbeddingCache_SetUpdatesExisting(t *testing.T) {
	c := NewEmbeddingCache(2)
	c.Set("t:linen shirt", []float32{1})
	c.Set("t:linen shirt", []float32{9, 9})
	v, ok := c.Get("t:linen shirt")
	if !ok || len(v) != 2 || v[0] != 9 {
		t.Errorf("updated value: got %v, %v", v, ok)
	}
	if c.Len() != 1 {
		t.Errorf("Len = %d, want 1", c.Len())
	}
}

func TestEmbeddingCache_Concurrent(t *testing.T) {
	c := NewEmbeddingCache(64)
	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				key := fmt.Sprintf("t:item %d", (g*100+i)%32)
				c.Set(key, []float32{float32(i)})
				c.Get(key)
			}
		}(g)
	}
	wg.Wait()
	if c.Len() > 64 {
		t.Errorf("cache exceeded capacity: %d", c.Len())
	}
}
