package suggest

import (
	"github.com/RoaringBitmap/roaring"
	"github.com/bastiangx/emojiserve/pkg/catalog"
	"github.com/charmbracelet/log"
)

// nameWeight is the term weight of the primary name field.
const nameWeight = 1.0

// indexedItem caches the tokenized name next to the item.
type indexedItem struct {
	item    catalog.Item
	tokens  []string
	nameLen int
}

// CatalogIndex is an immutable search index over one catalog snapshot.
// Build a new one instead of mutating; Index swaps them atomically.
type CatalogIndex struct {
	trie     *Trie
	postings map[string]*roaring.Bitmap
	items    []indexedItem
	byKey    map[string]uint32
	skipped  int
}

// NewCatalogIndex indexes every item that has both a key and a name.
// Items missing either are skipped and never searchable.
func NewCatalogIndex(items []catalog.Item) *CatalogIndex {
	idx := &CatalogIndex{
		trie:     NewTrie(),
		postings: make(map[string]*roaring.Bitmap),
		items:    make([]indexedItem, 0, len(items)),
		byKey:    make(map[string]uint32, len(items)),
	}

	for _, item := range items {
		key, name := item.Key(), item.Name()
		if key == "" || name == "" {
			idx.skipped++
			continue
		}
		if _, dup := idx.byKey[key]; dup {
			// first occurrence wins
			idx.skipped++
			continue
		}

		tokens := Tokenize(name)
		if len(tokens) == 0 {
			idx.skipped++
			continue
		}

		ord := uint32(len(idx.items))
		idx.items = append(idx.items, indexedItem{
			item:    item,
			tokens:  tokens,
			nameLen: runeLen(name),
		})
		idx.byKey[key] = ord

		for _, token := range tokens {
			idx.trie.Add(token)
			bm, ok := idx.postings[token]
			if !ok {
				bm = roaring.New()
				idx.postings[token] = bm
			}
			bm.Add(ord)
		}
	}

	if idx.skipped > 0 {
		log.Debugf("Skipped %d catalog items without key or name", idx.skipped)
	}
	return idx
}

// Len returns the number of searchable items.
func (idx *CatalogIndex) Len() int {
	return len(idx.items)
}

// Tokens returns the number of distinct name tokens.
func (idx *CatalogIndex) Tokens() int {
	return idx.trie.Len()
}

// Item looks up an indexed item by its primary key.
func (idx *CatalogIndex) Item(key string) (catalog.Item, bool) {
	ord, ok := idx.byKey[key]
	if !ok {
		return catalog.Item{}, false
	}
	return idx.items[ord].item, true
}

// matchPrefix unions the candidate sets of every token under prefix.
func (idx *CatalogIndex) matchPrefix(prefix string) *roaring.Bitmap {
	tokens := idx.trie.GetKeys(prefix)
	if len(tokens) == 0 {
		return roaring.New()
	}
	sets := make([]*roaring.Bitmap, 0, len(tokens))
	for _, token := range tokens {
		if bm, ok := idx.postings[token]; ok {
			sets = append(sets, bm)
		}
	}
	return roaring.FastOr(sets...)
}

// MatchPrefixToEmojis returns the deduplicated keys of every item with a name
// token starting with prefix.
func (idx *CatalogIndex) MatchPrefixToEmojis(prefix string) []string {
	candidates := idx.matchPrefix(prefix)
	keys := make([]string, 0, candidates.GetCardinality())
	it := candidates.Iterator()
	for it.HasNext() {
		keys = append(keys, idx.items[it.Next()].item.Key())
	}
	return keys
}
