package suggest

import (
	"github.com/charmbracelet/log"
	"github.com/tchap/go-patricia/v2/patricia"
)

// present marks a stored token; patricia skips nodes holding a nil item.
type present struct{}

// Trie is a set of lowercase tokens answering prefix queries.
type Trie struct {
	root *patricia.Trie
	size int
}

func NewTrie() *Trie {
	return &Trie{root: patricia.NewTrie()}
}

// Add inserts token. Repeats and the empty token are no-ops.
func (t *Trie) Add(token string) {
	if token == "" {
		return
	}
	if t.root.Insert(patricia.Prefix(token), present{}) {
		t.size++
	}
}

// GetKeys returns every token starting with prefix, in no particular order.
// The empty prefix enumerates the whole set.
func (t *Trie) GetKeys(prefix string) []string {
	var keys []string
	collect := func(p patricia.Prefix, _ patricia.Item) error {
		keys = append(keys, string(p))
		return nil
	}

	var err error
	if prefix == "" {
		err = t.root.Visit(collect)
	} else {
		err = t.root.VisitSubtree(patricia.Prefix(prefix), collect)
	}
	if err != nil {
		log.Errorf("Error visiting trie subtree: %v", err)
		return nil
	}
	return keys
}

// Has reports whether token was added.
func (t *Trie) Has(token string) bool {
	return t.root.Get(patricia.Prefix(token)) != nil
}

// Len returns the number of distinct tokens.
func (t *Trie) Len() int {
	return t.size
}

// Clear drops every token; the Trie stays usable.
func (t *Trie) Clear() {
	t.root = patricia.NewTrie()
	t.size = 0
}
