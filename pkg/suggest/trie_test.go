package suggest

import (
	"sort"
	"testing"
)

func sortedKeys(t *Trie, prefix string) []string {
	keys := t.GetKeys(prefix)
	sort.Strings(keys)
	return keys
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestTrieRoundTrip(t *testing.T) {
	tokens := []string{"grinning", "face", "grin", "smiling", "eyes", "face", "grinning"}
	trie := NewTrie()
	for _, tok := range tokens {
		trie.Add(tok)
	}

	expected := []string{"eyes", "face", "grin", "grinning", "smiling"}
	if got := sortedKeys(trie, ""); !equalStrings(got, expected) {
		t.Errorf("GetKeys(\"\") = %v, expected %v", got, expected)
	}
	if trie.Len() != len(expected) {
		t.Errorf("Len() = %d, expected %d", trie.Len(), len(expected))
	}
}

func TestTriePrefixCorrectness(t *testing.T) {
	tokens := []string{"thumbs", "thunder", "the", "cat", "catalog"}
	trie := NewTrie()
	for _, tok := range tokens {
		trie.Add(tok)
	}

	for _, tok := range tokens {
		for i := 1; i <= len(tok); i++ {
			prefix := tok[:i]
			found := false
			for _, k := range trie.GetKeys(prefix) {
				if k == tok {
					found = true
					break
				}
			}
			if !found {
				t.Errorf("GetKeys(%q) is missing %q", prefix, tok)
			}
		}
	}
}

func TestTrieGetKeys(t *testing.T) {
	trie := NewTrie()
	for _, tok := range []string{"thumbs", "thunder", "the", "cat"} {
		trie.Add(tok)
	}

	testCases := []struct {
		prefix      string
		expected    []string
		description string
	}{
		{"th", []string{"the", "thumbs", "thunder"}, "shared prefix"},
		{"thu", []string{"thumbs", "thunder"}, "narrower prefix"},
		{"the", []string{"the"}, "exact token is returned"},
		{"dog", nil, "no match"},
		{"thumbsup", nil, "prefix longer than token"},
	}

	for _, tc := range testCases {
		t.Run(tc.description, func(t *testing.T) {
			if got := sortedKeys(trie, tc.prefix); !equalStrings(got, tc.expected) {
				t.Errorf("GetKeys(%q) = %v, expected %v", tc.prefix, got, tc.expected)
			}
		})
	}
}

func TestTrieAddEmptyAndClear(t *testing.T) {
	trie := NewTrie()
	trie.Add("")
	if trie.Len() != 0 || len(trie.GetKeys("")) != 0 {
		t.Fatal("empty token must not be stored")
	}

	trie.Add("heart")
	if !trie.Has("heart") {
		t.Fatal("expected heart to be stored")
	}

	trie.Clear()
	if trie.Len() != 0 || len(trie.GetKeys("")) != 0 || trie.Has("heart") {
		t.Error("Clear must empty the trie")
	}

	trie.Add("star")
	if got := trie.GetKeys("s"); !equalStrings(got, []string{"star"}) {
		t.Errorf("trie unusable after Clear, got %v", got)
	}
}
