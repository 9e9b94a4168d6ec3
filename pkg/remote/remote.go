// Package remote defines the contracts of the paged content API consumed by
// GIF paging and history validation. Transport outcomes travel as a Status
// value, never as an error, so callers branch on it.
package remote

import (
	"context"

	"github.com/bastiangx/emojiserve/pkg/catalog"
)

// Status is the transport-level outcome of a remote call.
type Status int

const (
	StatusOK Status = iota
	StatusHTTPError
	StatusNetworkError
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusHTTPError:
		return "http_error"
	case StatusNetworkError:
		return "network_error"
	default:
		return "unknown"
	}
}

// MarshalText renders the status by name on the wire.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Page is one page of a paged listing. An empty Next means no further pages.
type Page struct {
	Status Status
	Items  []catalog.Item
	Next   string
}

// Batch is the answer to a lookup by ids.
type Batch struct {
	Status Status
	Items  []catalog.Item
}

// PageFetcher fetches one page of results for query, continuing from cursor
// when it is non-empty. A returned error means the request never completed.
type PageFetcher interface {
	FetchPage(ctx context.Context, query, cursor string) (Page, error)
}

// BatchLookup returns the items that still exist among ids.
type BatchLookup interface {
	FetchBatchByID(ctx context.Context, ids []string) (Batch, error)
}

// NetworkMonitor reports whether the network is reachable before a request is made.
type NetworkMonitor interface {
	Online() bool
}

// AlwaysOnline is a NetworkMonitor that never short-circuits.
type AlwaysOnline struct{}

func (AlwaysOnline) Online() bool { return true }

// NetworkMonitorFunc adapts a function to NetworkMonitor.
type NetworkMonitorFunc func() bool

func (f NetworkMonitorFunc) Online() bool { return f() }
