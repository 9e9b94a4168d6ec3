package suggest

import (
	"math"
	"sync"

	"github.com/charmbracelet/log"
)

type cachedResults struct {
	snap    *CatalogIndex
	results []Result
}

// ResultCache keeps ranked results of recent queries, bound to the snapshot
// that produced them.
type ResultCache struct {
	entries     map[string]cachedResults
	accessTime  map[string]int64
	accessCount int64
	hits        int64
	maxEntries  int
	mu          sync.Mutex
}

func NewResultCache(maxEntries int) *ResultCache {
	return &ResultCache{
		entries:    make(map[string]cachedResults, maxEntries),
		accessTime: make(map[string]int64, maxEntries),
		maxEntries: maxEntries,
	}
}

// Get returns the cached results for query if they were computed on snap.
func (rc *ResultCache) Get(snap *CatalogIndex, query string) ([]Result, bool) {
	rc.mu.Lock()
	defer rc.mu.Unlock()

	entry, ok := rc.entries[query]
	if !ok || entry.snap != snap {
		return nil, false
	}
	rc.hits++
	rc.markAccessed(query)
	return entry.results, true
}

// Put stores results for query, evicting the least recently used entry when full.
func (rc *ResultCache) Put(snap *CatalogIndex, query string, results []Result) {
	rc.mu.Lock()
	defer rc.mu.Unlock()

	if _, exists := rc.entries[query]; !exists && len(rc.entries) >= rc.maxEntries {
		rc.evictLRU()
	}
	rc.entries[query] = cachedResults{snap: snap, results: results}
	rc.markAccessed(query)
}

// Purge drops every entry.
func (rc *ResultCache) Purge() {
	rc.mu.Lock()
	defer rc.mu.Unlock()

	rc.entries = make(map[string]cachedResults, rc.maxEntries)
	rc.accessTime = make(map[string]int64, rc.maxEntries)
}

func (rc *ResultCache) Stats() map[string]int {
	rc.mu.Lock()
	defer rc.mu.Unlock()

	return map[string]int{
		"cachedQueries":    len(rc.entries),
		"maxCachedQueries": rc.maxEntries,
		"cacheHits":        int(rc.hits),
	}
}

func (rc *ResultCache) markAccessed(query string) {
	rc.accessCount++
	rc.accessTime[query] = rc.accessCount
}

func (rc *ResultCache) evictLRU() {
	var oldestQuery string
	var oldestTime int64 = math.MaxInt64

	for query, accessTime := range rc.accessTime {
		if accessTime < oldestTime {
			oldestTime = accessTime
			oldestQuery = query
		}
	}

	if oldestTime != math.MaxInt64 {
		delete(rc.entries, oldestQuery)
		delete(rc.accessTime, oldestQuery)
		log.Debugf("Evicted query '%s' from result cache", oldestQuery)
	}
}
