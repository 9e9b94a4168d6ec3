package suggest

import (
	"math"
	"sort"
	"testing"

	"github.com/bastiangx/emojiserve/pkg/catalog"
)

func item(key, name string) catalog.Item {
	return catalog.Item{Base: catalog.Emoji{String: key, Name: name}}
}

var testCatalog = []catalog.Item{
	item("😀", "grinning face"),
	item("😄", "grinning face with smiling eyes"),
	item("😺", "grinning cat"),
	item("🐱", "cat face"),
	item("❤️", "red heart"),
	item("", "nameless key"),
	item("🫥", ""),
}

func keysOf(results []Result) []string {
	keys := make([]string, len(results))
	for i, r := range results {
		keys[i] = r.Item.Key()
	}
	return keys
}

func TestSearchGrinOrdering(t *testing.T) {
	idx := NewCatalogIndex([]catalog.Item{
		item("😀", "grinning face"),
		item("😄", "grinning face with smiling eyes"),
	})

	results := idx.Search("grin")
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].Item.Key() != "😀" || results[1].Item.Key() != "😄" {
		t.Errorf("expected grinning face first, got %v", keysOf(results))
	}

	// (1/1 * 4/8) * 4/13
	expected := 0.5 * 4.0 / 13.0
	if math.Abs(results[0].Score-expected) > 1e-12 {
		t.Errorf("score = %v, expected %v", results[0].Score, expected)
	}
}

func TestSearchMultiTermScore(t *testing.T) {
	idx := NewCatalogIndex(testCatalog)

	results := idx.Search("  Grinning  CAT ")
	if len(results) != 1 || results[0].Item.Key() != "😺" {
		t.Fatalf("expected only grinning cat, got %v", keysOf(results))
	}

	// sanitized "grinning  cat" has 13 runes; name "grinning cat" has 12.
	// term "grinning": token 0 full match -> 1. term "cat": token 1 full match -> 1/2.
	expected := (1.0 * 13.0 / 12.0) * 0.5
	if math.Abs(results[0].Score-expected) > 1e-12 {
		t.Errorf("score = %v, expected %v", results[0].Score, expected)
	}
}

func TestSearchANDSemantics(t *testing.T) {
	idx := NewCatalogIndex(testCatalog)

	if len(idx.Search("grinning")) != 3 {
		t.Fatalf("expected 3 results for first term alone")
	}
	if results := idx.Search("grinning zebra"); len(results) != 0 {
		t.Errorf("expected no results when second term matches nothing, got %v", keysOf(results))
	}
	if results := idx.Search("heart grinning"); len(results) != 0 {
		t.Errorf("expected no results when terms match disjoint items, got %v", keysOf(results))
	}
}

func TestSearchEdgeCases(t *testing.T) {
	idx := NewCatalogIndex(testCatalog)

	testCases := []struct {
		query       string
		expected    []string
		description string
	}{
		{"", []string{}, "empty query"},
		{"   ", []string{}, "whitespace query"},
		{"nameless", []string{}, "item without key is not indexed"},
		{"xyz", []string{}, "unknown term"},
		{"face", []string{"🐱", "😀", "😄"}, "matches by later tokens too"},
	}

	for _, tc := range testCases {
		t.Run(tc.description, func(t *testing.T) {
			got := keysOf(idx.Search(tc.query))
			sort.Strings(got)
			expected := append([]string(nil), tc.expected...)
			sort.Strings(expected)
			if !equalStrings(got, expected) {
				t.Errorf("Search(%q) = %v, expected %v", tc.query, got, expected)
			}
		})
	}
}

func TestSearchDeterminism(t *testing.T) {
	idx := NewCatalogIndex(testCatalog)
	first := idx.Search("gr fa")
	scores := make(map[string]float64)
	for _, r := range first {
		scores[r.Item.Key()] = r.Score
	}

	for i := 0; i < 20; i++ {
		again := idx.Search("gr fa")
		if len(again) != len(first) {
			t.Fatalf("run %d: result count changed", i)
		}
		for _, r := range again {
			if scores[r.Item.Key()] != r.Score {
				t.Fatalf("run %d: score of %s changed", i, r.Item.Key())
			}
		}
	}
}

func TestMatchPrefixToEmojis(t *testing.T) {
	idx := NewCatalogIndex(testCatalog)

	got := idx.MatchPrefixToEmojis("gr")
	sort.Strings(got)
	expected := []string{"😀", "😄", "😺"}
	sort.Strings(expected)
	if !equalStrings(got, expected) {
		t.Errorf("MatchPrefixToEmojis(gr) = %v, expected %v", got, expected)
	}

	// "face" appears once per item even though two tokens start with "f"
	idx = NewCatalogIndex([]catalog.Item{item("x", "face face fan")})
	if got := idx.MatchPrefixToEmojis("f"); len(got) != 1 {
		t.Errorf("expected deduplicated candidates, got %v", got)
	}
}

func TestIndexSetCollectionSwapsSnapshot(t *testing.T) {
	ix := NewIndex(8)
	ix.SetCollection(testCatalog)

	before := ix.Snapshot()
	if len(ix.Search("heart", 0)) != 1 {
		t.Fatal("expected heart before swap")
	}

	ix.SetCollection([]catalog.Item{item("💙", "blue heart"), item("💚", "green heart")})
	if ix.Snapshot() == before {
		t.Fatal("SetCollection must install a new snapshot")
	}
	results := ix.Search("heart", 0)
	if len(results) != 2 {
		t.Errorf("expected results from the new catalog only, got %v", keysOf(results))
	}
	if len(before.Search("heart")) != 1 {
		t.Error("old snapshot must remain intact")
	}
}

func TestIndexSearchLimitAndCache(t *testing.T) {
	ix := NewIndex(2)
	ix.SetCollection(testCatalog)

	full := ix.Search("grinning", 0)
	limited := ix.Search("grinning", 2)
	if len(limited) != 2 {
		t.Fatalf("expected 2 limited results, got %d", len(limited))
	}
	for i := range limited {
		if limited[i].Item.Key() != full[i].Item.Key() {
			t.Errorf("limited results must be a prefix of the full ranking")
		}
	}

	limited[0].Score = -1
	if ix.Search("grinning", 0)[0].Score == -1 {
		t.Error("cached results must not be aliased by callers")
	}

	if hits := ix.Stats()["cacheHits"]; hits < 2 {
		t.Errorf("expected cache hits, got %d", hits)
	}
}

func TestIndexSearchReturnsDeepCopies(t *testing.T) {
	ix := NewIndex(4)
	ix.SetCollection([]catalog.Item{{
		Base:       catalog.Emoji{String: "👍", Name: "thumbs up", Keywords: []string{"yes"}},
		Alternates: []catalog.Emoji{{String: "👍🏽", Name: "thumbs up: medium skin tone"}},
	}})

	hits := ix.Search("thumbs", 0)
	if len(hits) != 1 {
		t.Fatalf("expected 1 hit, got %d", len(hits))
	}
	hits[0].Item.Base.Keywords[0] = "mutated"
	hits[0].Item.Alternates[0].String = "mutated"

	again := ix.Search("thumbs", 0)
	if again[0].Item.Base.Keywords[0] != "yes" || again[0].Item.Alternates[0].String != "👍🏽" {
		t.Errorf("cached item was modified through a returned hit: %+v", again[0].Item)
	}
	if ix.Stats()["cacheHits"] < 1 {
		t.Error("second search must be served from the cache")
	}
}

func TestResultCacheEviction(t *testing.T) {
	snap := NewCatalogIndex(nil)
	rc := NewResultCache(2)
	rc.Put(snap, "a", nil)
	rc.Put(snap, "b", nil)
	rc.Get(snap, "a")
	rc.Put(snap, "c", nil)

	if _, ok := rc.Get(snap, "b"); ok {
		t.Error("expected least recently used entry to be evicted")
	}
	if _, ok := rc.Get(snap, "a"); !ok {
		t.Error("expected recently used entry to survive")
	}
	if _, ok := rc.Get(NewCatalogIndex(nil), "a"); ok {
		t.Error("entries from another snapshot must miss")
	}
}
