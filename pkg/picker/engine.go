// Package picker wires search, recents and GIF paging together for every
// category. All collaborators are injected through Options.
package picker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bastiangx/emojiserve/internal/logger"
	"github.com/bastiangx/emojiserve/pkg/catalog"
	"github.com/bastiangx/emojiserve/pkg/paging"
	"github.com/bastiangx/emojiserve/pkg/recent"
	"github.com/bastiangx/emojiserve/pkg/remote"
	"github.com/bastiangx/emojiserve/pkg/storage"
	"github.com/bastiangx/emojiserve/pkg/suggest"
	"github.com/charmbracelet/log"
)

var (
	ErrGIFsDisabled = errors.New("gif backend not configured")
	ErrNotVisual    = errors.New("item has no visual content")
	ErrVisual       = errors.New("visual items are selected with SelectVisual")
)

type Options struct {
	// CacheSize bounds memoized search results per category.
	CacheSize int
	// MaxRecents bounds each category's history.
	MaxRecents int
	// Incognito disables history entirely.
	Incognito bool

	// GIF collaborators; a nil Fetcher disables GIF paging.
	Fetcher            remote.PageFetcher
	Lookup             remote.BatchLookup
	Monitor            remote.NetworkMonitor
	Paging             paging.Options
	ValidationInterval time.Duration
}

// Hit is a search result with the user's preferred variant of the item, if any.
// Grouped items carry the global tone or gender instead. Preferences never
// affect ranking.
type Hit struct {
	Item      catalog.Item   `json:"item" msgpack:"item"`
	Score     float64        `json:"score" msgpack:"score"`
	Preferred string         `json:"preferred,omitempty" msgpack:"preferred,omitempty"`
	Tone      catalog.Tone   `json:"tone,omitempty" msgpack:"tone,omitempty"`
	Gender    catalog.Gender `json:"gender,omitempty" msgpack:"gender,omitempty"`
}

// TextSelection describes an inserted textual item.
type TextSelection struct {
	Text          string          `json:"text" msgpack:"text"`
	BaseEmoji     string          `json:"baseEmoji,omitempty" msgpack:"baseEmoji,omitempty"`
	Name          string          `json:"name,omitempty" msgpack:"name,omitempty"`
	Tone          catalog.Tone    `json:"tone,omitempty" msgpack:"tone,omitempty"`
	Gender        catalog.Gender  `json:"gender,omitempty" msgpack:"gender,omitempty"`
	Alternates    []catalog.Emoji `json:"alternates,omitempty" msgpack:"alternates,omitempty"`
	GroupedTone   bool            `json:"groupedTone,omitempty" msgpack:"groupedTone,omitempty"`
	GroupedGender bool            `json:"groupedGender,omitempty" msgpack:"groupedGender,omitempty"`
}

// Engine serves every category. The per-category maps are fixed at
// construction and only their values mutate.
type Engine struct {
	indexes  map[catalog.Category]*suggest.Index
	recents  map[catalog.Category]*recent.Store
	variants *recent.Preferences
	gifs     *paging.Coordinator
	lookup   remote.BatchLookup
	schedule *recent.ValidationSchedule
	log      *log.Logger
}

func New(blobs storage.Blobs, opts Options) *Engine {
	e := &Engine{
		indexes: make(map[catalog.Category]*suggest.Index, len(catalog.Categories)),
		recents: make(map[catalog.Category]*recent.Store, len(catalog.Categories)),
		lookup:  opts.Lookup,
		log:     logger.New("picker"),
	}

	for _, c := range catalog.Categories {
		e.indexes[c] = suggest.NewIndex(opts.CacheSize)
		if !opts.Incognito {
			e.recents[c] = recent.New(c, blobs, opts.MaxRecents)
		}
	}

	if !opts.Incognito {
		e.variants = recent.NewPreferences(blobs)
	}

	if opts.Fetcher != nil {
		e.gifs = paging.NewCoordinator(opts.Fetcher, opts.Monitor, opts.Paging)
	}
	if opts.Lookup != nil && !opts.Incognito {
		interval := opts.ValidationInterval
		if interval <= 0 {
			interval = 24 * time.Hour
		}
		e.schedule = recent.NewValidationSchedule(blobs, interval)
	}
	return e
}

func (e *Engine) index(category catalog.Category) (*suggest.Index, error) {
	ix, ok := e.indexes[category]
	if !ok {
		return nil, fmt.Errorf("%w: %q", catalog.ErrUnknownCategory, category)
	}
	return ix, nil
}

// store returns nil without error while incognito.
func (e *Engine) store(category catalog.Category) (*recent.Store, error) {
	if _, err := e.index(category); err != nil {
		return nil, err
	}
	return e.recents[category], nil
}

// SetCatalog replaces the searchable items of category and back-fills variant
// information into matching history entries.
func (e *Engine) SetCatalog(category catalog.Category, groups []catalog.Group) error {
	ix, err := e.index(category)
	if err != nil {
		return err
	}
	items := catalog.Flatten(groups)
	ix.SetCollection(items)

	if s := e.recents[category]; s != nil {
		for _, it := range items {
			s.FillVariantAttributes(it.Base.Name, it.Alternates, it.GroupedTone, it.GroupedGender)
		}
	}
	e.log.Debugf("Loaded %d %s items", len(items), category)
	return nil
}

// LoadCatalogs reads every catalog file in dir.
func (e *Engine) LoadCatalogs(dir string) error {
	catalogs, err := catalog.LoadDir(dir)
	if err != nil {
		return err
	}
	for category, groups := range catalogs {
		if err := e.SetCatalog(category, groups); err != nil {
			return err
		}
	}
	return nil
}

// Search ranks the catalog of category against query.
func (e *Engine) Search(category catalog.Category, query string, limit int) ([]Hit, error) {
	ix, err := e.index(category)
	if err != nil {
		return nil, err
	}
	results := ix.Search(query, limit)

	var prefs map[string]string
	if s := e.recents[category]; s != nil {
		prefs = s.PreferenceMapping()
	}

	global := e.VariantPreference()

	hits := make([]Hit, len(results))
	for i, r := range results {
		hits[i] = Hit{Item: r.Item, Score: r.Score, Preferred: prefs[r.Item.Key()]}
		if r.Item.GroupedTone {
			hits[i].Tone = global.Tone
		}
		if r.Item.GroupedGender {
			hits[i].Gender = global.Gender
		}
	}
	return hits, nil
}

// Stats reports index counters per category.
func (e *Engine) Stats() map[catalog.Category]map[string]int {
	out := make(map[catalog.Category]map[string]int, len(e.indexes))
	for c, ix := range e.indexes {
		stats := ix.Stats()
		if s := e.recents[c]; s != nil {
			stats["recents"] = s.Len()
		}
		out[c] = stats
	}
	return out
}

// SelectText records an inserted textual item. Ungrouped variants also update
// the preferred variant of their base; it reports whether that changed. A tone
// or gender on the selection becomes the global choice.
func (e *Engine) SelectText(category catalog.Category, sel TextSelection) (bool, error) {
	if category == catalog.CategoryGIF {
		return false, ErrVisual
	}
	s, err := e.store(category)
	if err != nil || s == nil {
		return false, err
	}

	s.BumpItem(catalog.Item{
		Base: catalog.Emoji{
			String: sel.Text,
			Name:   sel.Name,
			Tone:   sel.Tone,
			Gender: sel.Gender,
		},
		Alternates:    sel.Alternates,
		GroupedTone:   sel.GroupedTone,
		GroupedGender: sel.GroupedGender,
	})

	changed := false
	if !sel.GroupedTone && !sel.GroupedGender {
		changed = s.SavePreferredVariant(sel.BaseEmoji, sel.Text)
	}
	if e.variants != nil {
		e.variants.SetTone(sel.Tone)
		e.variants.SetGender(sel.Gender)
	}
	return changed, nil
}

// SelectVisual records an inserted visual item.
func (e *Engine) SelectVisual(category catalog.Category, item catalog.Item) error {
	if !item.Base.IsVisual() {
		return ErrNotVisual
	}
	s, err := e.store(category)
	if err != nil || s == nil {
		return err
	}
	s.BumpItem(catalog.Item{Base: catalog.Emoji{
		Name:          item.Base.Name,
		VisualContent: item.Base.VisualContent,
	}})
	return nil
}

// Recents returns the history of category, most recent first.
func (e *Engine) Recents(category catalog.Category) ([]catalog.Item, error) {
	s, err := e.store(category)
	if err != nil {
		return nil, err
	}
	if s == nil {
		return []catalog.Item{}, nil
	}
	return s.History(), nil
}

func (e *Engine) ClearRecents(category catalog.Category) error {
	s, err := e.store(category)
	if err != nil || s == nil {
		return err
	}
	s.ClearRecents()
	return nil
}

// ClearItem removes one history entry and reports whether it existed.
func (e *Engine) ClearItem(category catalog.Category, item catalog.Item) (bool, error) {
	s, err := e.store(category)
	if err != nil || s == nil {
		return false, err
	}
	return s.ClearItem(item), nil
}

// VariantPreference returns the global tone and gender, zero while incognito.
func (e *Engine) VariantPreference() recent.VariantPreference {
	if e.variants == nil {
		return recent.VariantPreference{}
	}
	return e.variants.Get()
}

// Preferences returns the preferred variant mapping of category.
func (e *Engine) Preferences(category catalog.Category) (map[string]string, error) {
	s, err := e.store(category)
	if err != nil {
		return nil, err
	}
	if s == nil {
		return map[string]string{}, nil
	}
	return s.PreferenceMapping(), nil
}

// ActivateGIFs switches the GIF list to query.
func (e *Engine) ActivateGIFs(ctx context.Context, query string) (paging.Result, error) {
	if e.gifs == nil {
		return paging.Result{}, ErrGIFsDisabled
	}
	return e.gifs.Activate(ctx, query)
}

// ScrollGIFs forwards a scroll signal and reports whether a page was fetched.
func (e *Engine) ScrollGIFs(ctx context.Context, vp paging.Viewport) (paging.Result, bool, error) {
	if e.gifs == nil {
		return paging.Result{}, false, ErrGIFsDisabled
	}
	res, fetched := e.gifs.OnScroll(ctx, vp)
	return res, fetched, nil
}

// MoreGIFs fetches the next page of query, also serving as retry.
func (e *Engine) MoreGIFs(ctx context.Context, query string) (paging.Result, error) {
	if e.gifs == nil {
		return paging.Result{}, ErrGIFsDisabled
	}
	return e.gifs.FetchMore(ctx, query)
}

// ValidateGIFHistory drops GIFs that no longer exist upstream, at most once per
// validation interval. It reports whether the history changed.
func (e *Engine) ValidateGIFHistory(ctx context.Context) bool {
	if e.schedule == nil {
		return false
	}
	ran, updated := e.schedule.Run(ctx, e.recents[catalog.CategoryGIF], e.lookup)
	if ran {
		e.log.Debugf("Validated GIF history, updated=%v", updated)
	}
	return updated
}
