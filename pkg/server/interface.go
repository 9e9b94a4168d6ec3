/*
Package server implements the stdin/stdout IPC of emojiserve.

Clients write one request per message and read one response per request, in
order. Messages are newline-delimited JSON by default, or a msgpack stream when
the server runs with the msgpack codec. Field names are identical in both.

# IPC

Every request names a command and may carry an id that is echoed back:

	{"id": "1", "command": "search", "category": "emoji", "query": "grin", "limit": 8}

Search responses carry ranked hits and the preferred variant of each hit:

	{"id": "1", "category": "emoji", "query": "grin", "hits": [{"item": {...}, "score": 0.3}], "count": 1, "time_us": 42}

Selections are reported back so they land in the recently used history:

	{"command": "select", "category": "emoji", "selection": {"text": "👍🏽", "baseEmoji": "👍"}}
	{"command": "select", "category": "gif", "item": {"base": {"visualContent": {"id": "123"}}}}

GIF lists page through the remote backend. Activation returns the first page or
the list cached for the query, scroll signals prefetch near the end of the
content and gif_more retries or continues explicitly:

	{"command": "gif_activate", "query": "trending"}
	{"command": "gif_scroll", "viewport": {"contentBottom": 900, "viewportBottom": 700, "contentHeight": 900, "viewportHeight": 400}}
	{"command": "gif_more", "query": "cat"}

GIF responses carry a transport status (ok, http_error, network_error) which
clients render as a retry view; they are not errors.

# Commands

	health         status and per-category index counters
	search         ranked prefix search in one category
	select         record a selection in the history
	recents        history of a category, GIFs revalidated at most daily
	clear_recents  drop the history of a category
	clear_item     drop one history entry
	preferences    preferred variant mapping of a category
	gif_activate   switch the GIF list to a query
	gif_scroll     scroll signal for the active GIF query
	gif_more       fetch the next GIF page of a query
	config         read or update limits

Failed requests get an ErrorResponse with an HTTP-like status code.
*/
package server

import (
	"github.com/bastiangx/emojiserve/pkg/catalog"
	"github.com/bastiangx/emojiserve/pkg/paging"
	"github.com/bastiangx/emojiserve/pkg/picker"
)

// Request is the envelope of every command; unused fields are omitted.
type Request struct {
	ID           string                `json:"id,omitempty" msgpack:"id,omitempty"`
	Command      string                `json:"command" msgpack:"command"`
	Category     string                `json:"category,omitempty" msgpack:"category,omitempty"`
	Query        string                `json:"query,omitempty" msgpack:"query,omitempty"`
	Limit        int                   `json:"limit,omitempty" msgpack:"limit,omitempty"`
	Selection    *picker.TextSelection `json:"selection,omitempty" msgpack:"selection,omitempty"`
	Item         *catalog.Item         `json:"item,omitempty" msgpack:"item,omitempty"`
	Viewport     *paging.Viewport      `json:"viewport,omitempty" msgpack:"viewport,omitempty"`
	MaxLimit     *int                  `json:"max_limit,omitempty" msgpack:"max_limit,omitempty"`
	DefaultLimit *int                  `json:"default_limit,omitempty" msgpack:"default_limit,omitempty"`
}

// StatusResponse acknowledges commands without a payload
type StatusResponse struct {
	ID     string                              `json:"id,omitempty" msgpack:"id,omitempty"`
	Status string                              `json:"status" msgpack:"status"`
	Stats  map[catalog.Category]map[string]int `json:"stats,omitempty" msgpack:"stats,omitempty"`
}

// SearchResponse - ranked hits, TimeTaken in microseconds
type SearchResponse struct {
	ID        string       `json:"id,omitempty" msgpack:"id,omitempty"`
	Category  string       `json:"category" msgpack:"category"`
	Query     string       `json:"query" msgpack:"query"`
	Hits      []picker.Hit `json:"hits" msgpack:"hits"`
	Count     int          `json:"count" msgpack:"count"`
	TimeTaken int64        `json:"time_us" msgpack:"time_us"`
}

// SelectResponse reports whether the preferred variant changed
type SelectResponse struct {
	ID                string `json:"id,omitempty" msgpack:"id,omitempty"`
	Status            string `json:"status" msgpack:"status"`
	PreferenceUpdated bool   `json:"preference_updated" msgpack:"preference_updated"`
}

// RecentsResponse - history, most recent first. Removed is set by clear_item.
type RecentsResponse struct {
	ID       string         `json:"id,omitempty" msgpack:"id,omitempty"`
	Category string         `json:"category" msgpack:"category"`
	Items    []catalog.Item `json:"items" msgpack:"items"`
	Removed  bool           `json:"removed,omitempty" msgpack:"removed,omitempty"`
}

// PreferencesResponse carries the per-base mapping of a category and the
// global tone and gender.
type PreferencesResponse struct {
	ID         string            `json:"id,omitempty" msgpack:"id,omitempty"`
	Category   string            `json:"category" msgpack:"category"`
	Preference map[string]string `json:"preference" msgpack:"preference"`
	Tone       catalog.Tone      `json:"tone,omitempty" msgpack:"tone,omitempty"`
	Gender     catalog.Gender    `json:"gender,omitempty" msgpack:"gender,omitempty"`
}

// GIFResponse wraps a paging result. Fetched is false when a scroll signal did
// not lead to a fetch.
type GIFResponse struct {
	ID string `json:"id,omitempty" msgpack:"id,omitempty"`
	paging.Result
	Fetched bool `json:"fetched" msgpack:"fetched"`
}

// ConfigResponse - current limits
type ConfigResponse struct {
	ID           string `json:"id,omitempty" msgpack:"id,omitempty"`
	Status       string `json:"status" msgpack:"status"`
	MaxLimit     int    `json:"max_limit" msgpack:"max_limit"`
	DefaultLimit int    `json:"default_limit" msgpack:"default_limit"`
	MaxQuery     int    `json:"max_query" msgpack:"max_query"`
}

// ErrorResponse represents an API error
type ErrorResponse struct {
	ID     string `json:"id,omitempty" msgpack:"id,omitempty"`
	Error  string `json:"error" msgpack:"error"`
	Status int    `json:"status" msgpack:"status"`
}
