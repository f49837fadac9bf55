package service

import (
	"fmt"
	"sync"
	"testing"

	"github.com/ludo-technologies/yieldscan/internal/parser"
)

func TestNewParseCache(t *testing.T) {
	cache := NewParseCache()
	if cache == nil {
		t.Fatal("NewParseCache returned nil")
	}
	if cache.Len() != 0 {
		t.Fatalf("expected empty cache, got %d entries", cache.Len())
	}
}

func TestParseCachePutAndGet(t *testing.T) {
	cache := NewParseCache()
	content := []byte("def gen():\n    yield 1\n")
	hash := ContentHash(content)

	result := &parser.ParseResult{Language: parser.LanguagePython, File: "gen.py"}
	cache.Put("gen.py", hash, result)

	got, ok := cache.Get("gen.py", hash)
	if !ok {
		t.Fatal("expected cache hit for gen.py")
	}
	if got != result {
		t.Fatal("expected the stored parse result")
	}
}

func TestParseCacheStaleContent(t *testing.T) {
	cache := NewParseCache()
	cache.Put("gen.py", ContentHash([]byte("yield 1")), &parser.ParseResult{})

	if _, ok := cache.Get("gen.py", ContentHash([]byte("yield 2"))); ok {
		t.Fatal("expected miss for changed content")
	}
	if _, ok := cache.Get("other.py", ContentHash([]byte("yield 1"))); ok {
		t.Fatal("expected miss for unknown path")
	}

	hits, misses := cache.Stats()
	if hits != 0 || misses != 2 {
		t.Fatalf("unexpected stats: hits=%d misses=%d", hits, misses)
	}
}

func TestContentHashIsStable(t *testing.T) {
	a := ContentHash([]byte("def gen():\n    yield 1\n"))
	b := ContentHash([]byte("def gen():\n    yield 1\n"))
	if a != b {
		t.Fatal("hash differs for identical content")
	}
	if a == ContentHash([]byte("def gen():\n    yield 2\n")) {
		t.Fatal("hash collides for different content")
	}
}

func TestParseCacheConcurrentAccess(t *testing.T) {
	cache := NewParseCache()
	var wg sync.WaitGroup

	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			path := fmt.Sprintf("f%d.py", i%5)
			hash := uint64(i % 5)
			cache.Put(path, hash, &parser.ParseResult{File: path})
			if r, ok := cache.Get(path, hash); ok && r.File != path {
				t.Errorf("got result for %s, want %s", r.File, path)
			}
		}(i)
	}
	wg.Wait()

	if cache.Len() != 5 {
		t.Fatalf("expected 5 entries, got %d", cache.Len())
	}
}
