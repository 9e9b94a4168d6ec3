// Package recent keeps the per-category recently used history and the
// preferred variant of each base item, persisted after every mutation.
package recent

import (
	"encoding/json"
	"reflect"
	"sync"

	"github.com/bastiangx/emojiserve/pkg/catalog"
	"github.com/bastiangx/emojiserve/pkg/storage"
	"github.com/charmbracelet/log"
)

// MaxRecents is the default bound on history length.
const MaxRecents = 10

// StorageKey is the blob key of a category's history. Changing it orphans
// existing user data.
func StorageKey(category catalog.Category) string {
	return string(category) + "-recently-used"
}

// data is the persisted shape; unknown fields are dropped on load.
type data struct {
	History    []catalog.Item    `json:"history"`
	Preference map[string]string `json:"preference"`
}

// Store is the recently used history of one category.
type Store struct {
	mu         sync.Mutex
	category   catalog.Category
	key        string
	blobs      storage.Blobs
	maxRecents int
	data       data
}

// New loads the history of category from blobs. Missing, unreadable or
// malformed data falls back to an empty history. maxRecents <= 0 selects MaxRecents.
func New(category catalog.Category, blobs storage.Blobs, maxRecents int) *Store {
	if maxRecents <= 0 {
		maxRecents = MaxRecents
	}
	s := &Store{
		category:   category,
		key:        StorageKey(category),
		blobs:      blobs,
		maxRecents: maxRecents,
	}
	s.data = s.load()
	return s
}

func (s *Store) load() data {
	empty := data{History: []catalog.Item{}, Preference: map[string]string{}}

	raw, ok, err := s.blobs.LoadBlob(s.key)
	if err != nil {
		log.Warnf("Failed to read %s: %v. Starting with empty history", s.key, err)
		return empty
	}
	if !ok {
		return empty
	}

	var d data
	if err := json.Unmarshal([]byte(raw), &d); err != nil {
		log.Warnf("Corrupt history in %s: %v. Resetting to defaults", s.key, err)
		return empty
	}
	if d.History == nil {
		d.History = []catalog.Item{}
	}
	if len(d.History) > s.maxRecents {
		d.History = d.History[:s.maxRecents]
	}
	if d.Preference == nil {
		d.Preference = map[string]string{}
	}
	for base, chosen := range d.Preference {
		if base == "" || chosen == "" || base == chosen {
			delete(d.Preference, base)
		}
	}
	return d
}

// persist must be called with mu held.
func (s *Store) persist() {
	raw, err := json.Marshal(s.data)
	if err != nil {
		log.Errorf("Failed to encode %s: %v", s.key, err)
		return
	}
	if err := s.blobs.StoreBlob(s.key, string(raw)); err != nil {
		log.Errorf("Failed to persist %s: %v", s.key, err)
	}
}

// Category returns the category the store belongs to.
func (s *Store) Category() catalog.Category {
	return s.category
}

// History returns a copy of the entries, most recent first.
func (s *Store) History() []catalog.Item {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]catalog.Item, len(s.data.History))
	for i, it := range s.data.History {
		out[i] = it.Clone()
	}
	return out
}

// Len returns the number of history entries.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.data.History)
}

// BumpItem moves item to the front of the history, inserting it when absent
// and evicting the oldest entries beyond the bound.
func (s *Store) BumpItem(item catalog.Item) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.data.History = removeIdentity(s.data.History, item.Key())
	s.data.History = append([]catalog.Item{item.Clone()}, s.data.History...)
	if len(s.data.History) > s.maxRecents {
		s.data.History = s.data.History[:s.maxRecents]
	}
	s.persist()
}

// ClearItem removes the entry with item's identity and reports whether one existed.
func (s *Store) ClearItem(item catalog.Item) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	before := len(s.data.History)
	s.data.History = removeIdentity(s.data.History, item.Key())
	if len(s.data.History) == before {
		return false
	}
	s.persist()
	return true
}

// ClearRecents empties the history. Preferences are kept.
func (s *Store) ClearRecents() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.data.History = []catalog.Item{}
	s.persist()
}

// SavePreferredVariant records chosen as the preferred variant of base.
// Choosing the base itself, or nothing, removes the preference. It reports
// whether the mapping changed.
func (s *Store) SavePreferredVariant(base, chosen string) bool {
	if base == "" {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if chosen != "" && chosen != base {
		if s.data.Preference[base] == chosen {
			return false
		}
		s.data.Preference[base] = chosen
		s.persist()
		return true
	}
	if _, ok := s.data.Preference[base]; ok {
		delete(s.data.Preference, base)
		s.persist()
		return true
	}
	return false
}

// PreferenceMapping returns a copy of the base -> preferred variant map.
func (s *Store) PreferenceMapping() map[string]string {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(map[string]string, len(s.data.Preference))
	for k, v := range s.data.Preference {
		out[k] = v
	}
	return out
}

// FillVariantAttributes copies variant information of a catalog item into
// history entries with the same base name, since older stored entries may
// lack it. Grouped alternates get default tone and gender when unset.
func (s *Store) FillVariantAttributes(baseName string, alternates []catalog.Emoji, groupedTone, groupedGender bool) bool {
	if baseName == "" || len(alternates) == 0 || !(groupedTone || groupedGender) {
		return false
	}

	filled := make([]catalog.Emoji, len(alternates))
	for i, a := range alternates {
		filled[i] = a
		if groupedTone && filled[i].Tone == 0 {
			filled[i].Tone = catalog.ToneDefault
		}
		if groupedGender && filled[i].Gender == 0 {
			filled[i].Gender = catalog.GenderDefault
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	updated := false
	for i := range s.data.History {
		entry := &s.data.History[i]
		if entry.Base.Name != baseName {
			continue
		}
		if entry.GroupedTone == groupedTone && entry.GroupedGender == groupedGender &&
			reflect.DeepEqual(entry.Alternates, filled) {
			continue
		}
		entry.Alternates = (catalog.Item{Alternates: filled}).Clone().Alternates
		entry.GroupedTone = groupedTone
		entry.GroupedGender = groupedGender
		updated = true
	}
	if updated {
		s.persist()
	}
	return updated
}

func removeIdentity(history []catalog.Item, identity string) []catalog.Item {
	out := history[:0]
	for _, it := range history {
		if it.Key() != identity {
			out = append(out, it)
		}
	}
	return out
}
