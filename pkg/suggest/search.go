package suggest

import (
	"sort"
	"strings"
	"sync/atomic"

	"github.com/bastiangx/emojiserve/pkg/catalog"
	"github.com/charmbracelet/log"
)

// Result is a ranked search hit.
type Result struct {
	Item  catalog.Item `json:"item" msgpack:"item"`
	Score float64      `json:"score" msgpack:"score"`
}

// Search ranks the catalog against a free-text query.
//
// Every query term must prefix-match at least one name token of an item for the
// item to survive (AND semantics). The first term seeds the score with the
// ratio of query length to name length, so shorter names rank higher; every
// later term multiplies into it.
func (idx *CatalogIndex) Search(query string) []Result {
	sanitized := Sanitize(query)
	if sanitized == "" {
		return []Result{}
	}
	queryLen := float64(runeLen(sanitized))

	scores := make(map[uint32]float64)
	for i, term := range strings.Fields(sanitized) {
		termScores := make(map[uint32]float64)
		it := idx.matchPrefix(term).Iterator()
		for it.HasNext() {
			ord := it.Next()
			if i > 0 {
				if _, alive := scores[ord]; !alive {
					continue
				}
			}
			if s := termScore(term, idx.items[ord].tokens); s > 0 {
				termScores[ord] = s
			}
		}

		if i == 0 {
			for ord, s := range termScores {
				scores[ord] = s * queryLen / float64(idx.items[ord].nameLen)
			}
		} else {
			for ord, running := range scores {
				s, ok := termScores[ord]
				if !ok {
					delete(scores, ord)
					continue
				}
				scores[ord] = running * s
			}
		}

		if len(scores) == 0 {
			break
		}
	}

	results := make([]Result, 0, len(scores))
	for ord, score := range scores {
		results = append(results, Result{Item: idx.items[ord].item, Score: score})
	}
	sort.Slice(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	return results
}

// termScore sums, over every name token starting with term, the term weight
// discounted by token position and scaled by how much of the token the term covers.
func termScore(term string, tokens []string) float64 {
	termLen := float64(runeLen(term))
	var score float64
	for pos, token := range tokens {
		if !strings.HasPrefix(token, term) {
			continue
		}
		tokenLen := runeLen(token)
		if tokenLen == 0 {
			log.Errorf("Zero-length token at position %d scored for term %q", pos, term)
			continue
		}
		score += (nameWeight / float64(1+pos)) * (termLen / float64(tokenLen))
	}
	return score
}

// Index is the live search index of one category. SetCollection replaces the
// whole CatalogIndex; readers always see either the old or the new one.
type Index struct {
	current atomic.Pointer[CatalogIndex]
	cache   *ResultCache
}

// NewIndex creates an empty index. cacheSize bounds the memoized query results;
// zero disables the cache.
func NewIndex(cacheSize int) *Index {
	ix := &Index{}
	if cacheSize > 0 {
		ix.cache = NewResultCache(cacheSize)
	}
	ix.current.Store(NewCatalogIndex(nil))
	return ix
}

// SetCollection rebuilds the index from scratch for items.
func (ix *Index) SetCollection(items []catalog.Item) {
	next := NewCatalogIndex(items)
	ix.current.Store(next)
	if ix.cache != nil {
		ix.cache.Purge()
	}
	log.Debugf("Indexed %d items (%d tokens)", next.Len(), next.Tokens())
}

// Snapshot returns the CatalogIndex currently in use.
func (ix *Index) Snapshot() *CatalogIndex {
	return ix.current.Load()
}

// MatchPrefixToEmojis returns the keys of items with a token starting with prefix.
func (ix *Index) MatchPrefixToEmojis(prefix string) []string {
	return ix.Snapshot().MatchPrefixToEmojis(prefix)
}

// Search ranks the current snapshot against query and returns at most limit
// results; limit <= 0 means no limit. Results are copies the caller may modify.
func (ix *Index) Search(query string, limit int) []Result {
	snap := ix.Snapshot()
	key := Sanitize(query)

	var results []Result
	if cached, ok := ix.cacheGet(snap, key); ok {
		results = cached
	} else {
		results = snap.Search(key)
		ix.cachePut(snap, key, results)
	}

	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	out := make([]Result, len(results))
	for i, r := range results {
		out[i] = Result{Item: r.Item.Clone(), Score: r.Score}
	}
	return out
}

func (ix *Index) cacheGet(snap *CatalogIndex, key string) ([]Result, bool) {
	if ix.cache == nil || key == "" {
		return nil, false
	}
	return ix.cache.Get(snap, key)
}

func (ix *Index) cachePut(snap *CatalogIndex, key string, results []Result) {
	if ix.cache == nil || key == "" {
		return
	}
	ix.cache.Put(snap, key, results)
}

// Stats reports index and cache counters.
func (ix *Index) Stats() map[string]int {
	snap := ix.Snapshot()
	stats := map[string]int{
		"items":   snap.Len(),
		"tokens":  snap.Tokens(),
		"skipped": snap.skipped,
	}
	if ix.cache != nil {
		for k, v := range ix.cache.Stats() {
			stats[k] = v
		}
	}
	return stats
}
