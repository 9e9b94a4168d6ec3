// Package paging drives infinite-scroll fetching of a remote paged listing:
// one cursor per query, append-only merging, at most one fetch in flight per
// query, and results of superseded queries discarded on arrival.
package paging

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/bastiangx/emojiserve/internal/logger"
	"github.com/bastiangx/emojiserve/pkg/catalog"
	"github.com/bastiangx/emojiserve/pkg/remote"
	"github.com/charmbracelet/log"
	"golang.org/x/time/rate"
)

const (
	// TrendingQuery lists featured content instead of searching.
	TrendingQuery = "trending"
	// RecentlyUsedQuery is served from history and never paginated.
	RecentlyUsedQuery = "recently-used"

	DefaultThreshold = 300
	DefaultTimeout   = 10 * time.Second
)

var (
	ErrNoQuery       = errors.New("no active query")
	ErrNotPaginated  = errors.New("query is not paginated")
	ErrFetchInFlight = errors.New("fetch already in flight for query")
	ErrExhausted     = errors.New("no further pages for query")
)

// Options tunes a Coordinator. Zero fields take defaults.
type Options struct {
	// Threshold is the distance in logical pixels between the content's
	// trailing edge and the viewport's trailing edge that triggers a prefetch.
	Threshold float64
	// Timeout bounds every page fetch.
	Timeout time.Duration
	// ScrollInterval is the minimum spacing of handled scroll signals.
	// Zero handles every signal.
	ScrollInterval time.Duration
}

// Viewport is the geometry reported with a scroll or resize signal.
type Viewport struct {
	ContentBottom  float64 `json:"contentBottom" msgpack:"contentBottom"`
	ViewportBottom float64 `json:"viewportBottom" msgpack:"viewportBottom"`
	ContentHeight  float64 `json:"contentHeight" msgpack:"contentHeight"`
	ViewportHeight float64 `json:"viewportHeight" msgpack:"viewportHeight"`
}

// Result is the outcome of an activation or fetch. Items holds the entries to
// render at Offset in the query's list: the whole list when Offset is 0, a
// freshly appended page otherwise.
type Result struct {
	Query  string         `json:"query" msgpack:"query"`
	Status remote.Status  `json:"status" msgpack:"status"`
	Items  []catalog.Item `json:"items" msgpack:"items"`
	Offset int            `json:"offset" msgpack:"offset"`
	Cursor Cursor         `json:"cursor" msgpack:"cursor"`
	// Stale is set when the active query changed while the fetch ran. Nothing
	// was merged and the cursor was left as it was.
	Stale bool `json:"stale,omitempty" msgpack:"stale,omitempty"`
}

type queryState struct {
	cursor   Cursor
	items    []catalog.Item
	seen     map[string]bool
	fetching bool
	status   remote.Status
}

// Coordinator owns the pagination state of every query seen in a session.
type Coordinator struct {
	fetcher remote.PageFetcher
	monitor remote.NetworkMonitor
	opts    Options
	limiter *rate.Limiter
	log     *log.Logger

	mu      sync.Mutex
	active  string
	queries map[string]*queryState
}

// NewCoordinator creates a coordinator fetching through fetcher. A nil monitor
// assumes the network is always reachable.
func NewCoordinator(fetcher remote.PageFetcher, monitor remote.NetworkMonitor, opts Options) *Coordinator {
	if monitor == nil {
		monitor = remote.AlwaysOnline{}
	}
	if opts.Threshold <= 0 {
		opts.Threshold = DefaultThreshold
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	limit := rate.Inf
	if opts.ScrollInterval > 0 {
		limit = rate.Every(opts.ScrollInterval)
	}
	return &Coordinator{
		fetcher: fetcher,
		monitor: monitor,
		opts:    opts,
		limiter: rate.NewLimiter(limit, 1),
		log:     logger.New("paging"),
		queries: make(map[string]*queryState),
	}
}

// Active returns the current query, empty when none.
func (c *Coordinator) Active() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.active
}

// Activate makes query the active one. A query fetched before in this session
// is served from its cached list; otherwise the first page is fetched.
func (c *Coordinator) Activate(ctx context.Context, query string) (Result, error) {
	query = strings.TrimSpace(query)

	c.mu.Lock()
	c.active = query
	if query == "" {
		c.mu.Unlock()
		return Result{}, ErrNoQuery
	}
	if query == RecentlyUsedQuery {
		c.mu.Unlock()
		return Result{Query: query}, ErrNotPaginated
	}
	if st, ok := c.queries[query]; ok && st.cursor.State != NotFetched {
		res := Result{
			Query:  query,
			Status: st.status,
			Items:  cloneItems(st.items),
			Cursor: st.cursor,
		}
		c.mu.Unlock()
		return res, nil
	}
	c.mu.Unlock()

	return c.fetch(ctx, query)
}

// OnScroll handles a scroll or resize signal for the active query and
// prefetches the next page when the content end is near. It reports whether
// a fetch was issued.
func (c *Coordinator) OnScroll(ctx context.Context, vp Viewport) (Result, bool) {
	if !c.limiter.Allow() {
		return Result{}, false
	}
	// nothing is scrollable until the first page overflows the viewport
	if vp.ContentHeight <= vp.ViewportHeight {
		return Result{}, false
	}
	if vp.ContentBottom-vp.ViewportBottom > c.opts.Threshold {
		return Result{}, false
	}

	query := c.Active()
	if query == "" || query == RecentlyUsedQuery {
		return Result{}, false
	}
	// a failed list stays failed until FetchMore retries it
	if c.Status(query) != remote.StatusOK {
		c.log.Debugf("Scroll for %q ignored, list is in error state", query)
		return Result{}, false
	}

	res, err := c.fetch(ctx, query)
	if err != nil {
		c.log.Debugf("Scroll fetch for %q skipped: %v", query, err)
		return Result{}, false
	}
	return res, true
}

// FetchMore activates query and fetches from its stored cursor. It is the
// explicit retry after a failed fetch.
func (c *Coordinator) FetchMore(ctx context.Context, query string) (Result, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return Result{}, ErrNoQuery
	}
	if query == RecentlyUsedQuery {
		return Result{Query: query}, ErrNotPaginated
	}

	c.mu.Lock()
	c.active = query
	c.mu.Unlock()

	return c.fetch(ctx, query)
}

func (c *Coordinator) fetch(ctx context.Context, query string) (Result, error) {
	c.mu.Lock()
	st, ok := c.queries[query]
	if !ok {
		st = &queryState{seen: make(map[string]bool)}
		c.queries[query] = st
	}
	if st.fetching {
		c.mu.Unlock()
		return Result{Query: query, Cursor: st.cursor}, ErrFetchInFlight
	}
	if st.cursor.State == Exhausted {
		c.mu.Unlock()
		return Result{Query: query, Cursor: st.cursor}, ErrExhausted
	}
	cursor := st.cursor
	st.fetching = true
	c.mu.Unlock()

	page := c.request(ctx, query, cursor.Token)

	c.mu.Lock()
	defer c.mu.Unlock()

	st.fetching = false
	res := Result{Query: query, Status: page.Status, Offset: len(st.items), Cursor: st.cursor}

	if c.active != query {
		c.log.Debugf("Discarding page for %q, active query is %q", query, c.active)
		res.Stale = true
		return res, nil
	}

	st.status = page.Status
	if page.Status != remote.StatusOK {
		c.log.Warnf("Fetching %q failed with status %s", query, page.Status)
		return res, nil
	}

	for _, it := range page.Items {
		key := it.Key()
		if key == "" || st.seen[key] {
			continue
		}
		st.seen[key] = true
		st.items = append(st.items, it.Clone())
		res.Items = append(res.Items, it.Clone())
	}
	st.cursor = advance(page.Next)
	res.Cursor = st.cursor

	c.log.Debugf("Fetched %d items for %q (%s)", len(res.Items), query, st.cursor.State)
	return res, nil
}

// request performs the round trip, turning offline state and transport
// failures into a network error status.
func (c *Coordinator) request(ctx context.Context, query, cursor string) remote.Page {
	if !c.monitor.Online() {
		return remote.Page{Status: remote.StatusNetworkError}
	}

	ctx, cancel := context.WithTimeout(ctx, c.opts.Timeout)
	defer cancel()

	page, err := c.fetcher.FetchPage(ctx, query, cursor)
	if err != nil {
		c.log.Warnf("Fetching %q: %v", query, err)
		return remote.Page{Status: remote.StatusNetworkError}
	}
	if page.Status != remote.StatusOK {
		page.Items = nil
		page.Next = ""
	}
	return page
}

// Items returns a copy of everything merged for query so far.
func (c *Coordinator) Items(query string) []catalog.Item {
	c.mu.Lock()
	defer c.mu.Unlock()
	if st, ok := c.queries[query]; ok {
		return cloneItems(st.items)
	}
	return []catalog.Item{}
}

// Cursor returns the continuation state of query.
func (c *Coordinator) Cursor(query string) Cursor {
	c.mu.Lock()
	defer c.mu.Unlock()
	if st, ok := c.queries[query]; ok {
		return st.cursor
	}
	return Cursor{}
}

// Status returns the outcome of the last fetch applied to query.
func (c *Coordinator) Status(query string) remote.Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	if st, ok := c.queries[query]; ok {
		return st.status
	}
	return remote.StatusOK
}

// Fetching reports whether a fetch for query is outstanding.
func (c *Coordinator) Fetching(query string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	st, ok := c.queries[query]
	return ok && st.fetching
}

// Reset forgets every query and the active one, as at the end of a session.
func (c *Coordinator) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.active = ""
	c.queries = make(map[string]*queryState)
}

func cloneItems(items []catalog.Item) []catalog.Item {
	out := make([]catalog.Item, len(items))
	for i, it := range items {
		out[i] = it.Clone()
	}
	return out
}
