package recent

import (
	"context"
	"time"

	"github.com/bastiangx/emojiserve/pkg/remote"
	"github.com/bastiangx/emojiserve/pkg/storage"
	"github.com/charmbracelet/log"
)

// Validate drops visual history entries whose content the remote source no
// longer returns, and reports whether anything was removed. Lookup failures
// leave the history untouched.
func (s *Store) Validate(ctx context.Context, lookup remote.BatchLookup) bool {
	s.mu.Lock()
	var ids []string
	for _, it := range s.data.History {
		if it.Base.IsVisual() {
			ids = append(ids, it.Key())
		}
	}
	s.mu.Unlock()

	if len(ids) == 0 {
		return false
	}

	batch, err := lookup.FetchBatchByID(ctx, ids)
	if err != nil {
		log.Warnf("Validating %s history failed: %v", s.category, err)
		return false
	}
	if batch.Status != remote.StatusOK {
		log.Warnf("Validating %s history failed with status %s", s.category, batch.Status)
		return false
	}

	stale := make(map[string]bool, len(ids))
	for _, id := range ids {
		stale[id] = true
	}
	for _, it := range batch.Items {
		delete(stale, it.Key())
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	before := len(s.data.History)
	kept := s.data.History[:0]
	for _, it := range s.data.History {
		// entries bumped while the lookup ran were never asked about
		if !it.Base.IsVisual() || !stale[it.Key()] {
			kept = append(kept, it)
		}
	}
	s.data.History = kept
	if len(kept) == before {
		return false
	}

	log.Debugf("Removed %d stale entries from %s history", before-len(kept), s.category)
	s.persist()
	return true
}

// ValidationDateKey stores the time of the last history validation.
const ValidationDateKey = "gif-validation-date"

// ValidationSchedule throttles history validation to once per interval,
// remembering the last run across restarts.
type ValidationSchedule struct {
	blobs    storage.Blobs
	interval time.Duration
	last     time.Time
	now      func() time.Time
}

// NewValidationSchedule loads the last validation time. Without one the clock
// starts now, so the first validation happens an interval after first use.
func NewValidationSchedule(blobs storage.Blobs, interval time.Duration) *ValidationSchedule {
	return newValidationSchedule(blobs, interval, time.Now)
}

func newValidationSchedule(blobs storage.Blobs, interval time.Duration, now func() time.Time) *ValidationSchedule {
	vs := &ValidationSchedule{
		blobs:    blobs,
		interval: interval,
		now:      now,
	}

	raw, ok, err := blobs.LoadBlob(ValidationDateKey)
	if err != nil {
		log.Warnf("Failed to read last validation time: %v", err)
	} else if ok {
		last, err := time.Parse(time.RFC3339, raw)
		if err == nil {
			vs.last = last
			return vs
		}
		log.Warnf("Ignoring malformed validation time %q: %v", raw, err)
	}

	vs.record()
	return vs
}

func (vs *ValidationSchedule) record() {
	vs.last = vs.now()
	if err := vs.blobs.StoreBlob(ValidationDateKey, vs.last.UTC().Format(time.RFC3339)); err != nil {
		log.Errorf("Failed to persist validation time: %v", err)
	}
}

// Last returns the time of the previous validation, or of first use.
func (vs *ValidationSchedule) Last() time.Time {
	return vs.last
}

// Due reports whether more than interval elapsed since the last validation.
func (vs *ValidationSchedule) Due() bool {
	return vs.now().Sub(vs.last) > vs.interval
}

// Run validates store when due. It reports whether validation ran and whether
// the history changed.
func (vs *ValidationSchedule) Run(ctx context.Context, store *Store, lookup remote.BatchLookup) (ran, updated bool) {
	if store == nil || !vs.Due() {
		return false, false
	}

	updated = store.Validate(ctx, lookup)
	vs.record()
	return true, updated
}
