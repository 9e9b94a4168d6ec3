// Package suggest is the core, providing the prefix trie, the per-catalog search index and its relevance scoring.
package suggest

import "github.com/bastiangx/emojiserve/pkg/catalog"

// Searcher defines the interface for ranked prefix search over one catalog
type Searcher interface {
	// Search returns ranked results for a free-text query, at most limit of them
	Search(query string, limit int) []Result

	// SetCollection replaces the searchable catalog
	SetCollection(items []catalog.Item)

	// MatchPrefixToEmojis returns the keys of items with a name token starting with prefix
	MatchPrefixToEmojis(prefix string) []string

	// Stats returns statistics about the loaded catalog
	Stats() map[string]int
}

var _ Searcher = (*Index)(nil)
