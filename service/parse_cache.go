package service

import (
	"sync"

	"github.com/cespare/xxhash/v2"

	"github.com/ludo-technologies/yieldscan/internal/parser"
)

// FileParseResult holds the cached parse result for a single file.
type FileParseResult struct {
	Hash        uint64
	ParseResult *parser.ParseResult
}

// ParseCache keeps lowered parse results keyed by file path. An entry is only
// served while the file content hashes to the stored value, so a long-lived
// service (the MCP server) reparses edited files and reuses unchanged ones.
// It is safe for concurrent use.
type ParseCache struct {
	mu      sync.RWMutex
	results map[string]*FileParseResult
	hits    int
	misses  int
}

// NewParseCache creates a new empty ParseCache.
func NewParseCache() *ParseCache {
	return &ParseCache{
		results: make(map[string]*FileParseResult),
	}
}

// ContentHash returns the cache key of file content
func ContentHash(content []byte) uint64 {
	return xxhash.Sum64(content)
}

// Put stores a parse result for content of the given hash.
func (c *ParseCache) Put(filePath string, hash uint64, result *parser.ParseResult) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.results[filePath] = &FileParseResult{Hash: hash, ParseResult: result}
}

// Get returns the cached parse result when the stored hash matches.
func (c *ParseCache) Get(filePath string, hash uint64) (*parser.ParseResult, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	r, ok := c.results[filePath]
	if !ok || r.Hash != hash {
		c.misses++
		return nil, false
	}
	c.hits++
	return r.ParseResult, true
}

// Len returns the number of entries in the cache.
func (c *ParseCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.results)
}

// Stats returns the hit and miss counts
func (c *ParseCache) Stats() (hits, misses int) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.hits, c.misses
}
