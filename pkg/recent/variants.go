package recent

import (
	"encoding/json"
	"sync"

	"github.com/bastiangx/emojiserve/pkg/catalog"
	"github.com/bastiangx/emojiserve/pkg/storage"
	"github.com/charmbracelet/log"
)

// VariantPreferencesKey is the blob key of the global tone and gender choice.
const VariantPreferencesKey = "emoji-preferences"

// VariantPreference is the tone and gender last chosen across all categories.
// Zero values mean nothing has been chosen yet.
type VariantPreference struct {
	Tone   catalog.Tone   `json:"tone,omitempty" msgpack:"tone,omitempty"`
	Gender catalog.Gender `json:"gender,omitempty" msgpack:"gender,omitempty"`
}

// Preferences persists the global VariantPreference, applied to grouped
// emoji in place of a per-base preferred variant.
type Preferences struct {
	mu    sync.RWMutex
	blobs storage.Blobs
	pref  VariantPreference
}

func NewPreferences(blobs storage.Blobs) *Preferences {
	p := &Preferences{blobs: blobs}

	raw, ok, err := blobs.LoadBlob(VariantPreferencesKey)
	switch {
	case err != nil:
		log.Warnf("Failed to load %s, starting empty: %v", VariantPreferencesKey, err)
	case ok:
		if err := json.Unmarshal([]byte(raw), &p.pref); err != nil {
			log.Warnf("Discarding malformed %s: %v", VariantPreferencesKey, err)
			p.pref = VariantPreference{}
		}
		if p.pref.Tone < 0 {
			p.pref.Tone = 0
		}
		if p.pref.Gender < 0 {
			p.pref.Gender = 0
		}
	}
	return p
}

func (p *Preferences) Get() VariantPreference {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.pref
}

// SetTone records tone and reports whether the stored value changed.
// Non-positive tones are ignored.
func (p *Preferences) SetTone(tone catalog.Tone) bool {
	if tone <= 0 {
		return false
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.pref.Tone == tone {
		return false
	}
	p.pref.Tone = tone
	p.persist()
	return true
}

// SetGender records gender and reports whether the stored value changed.
// Non-positive genders are ignored.
func (p *Preferences) SetGender(gender catalog.Gender) bool {
	if gender <= 0 {
		return false
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.pref.Gender == gender {
		return false
	}
	p.pref.Gender = gender
	p.persist()
	return true
}

// persist must be called with mu held.
func (p *Preferences) persist() {
	raw, err := json.Marshal(p.pref)
	if err != nil {
		log.Errorf("Failed to encode %s: %v", VariantPreferencesKey, err)
		return
	}
	if err := p.blobs.StoreBlob(VariantPreferencesKey, string(raw)); err != nil {
		log.Errorf("Failed to persist %s: %v", VariantPreferencesKey, err)
	}
}
