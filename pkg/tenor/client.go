// Package tenor is the GIF backend: a client for the Tenor v2 API that serves
// paged search, the featured listing and lookups by id.
package tenor

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/bastiangx/emojiserve/pkg/catalog"
	"github.com/bastiangx/emojiserve/pkg/paging"
	"github.com/bastiangx/emojiserve/pkg/remote"
	"github.com/charmbracelet/log"
)

const (
	DefaultBaseURL = "https://tenor.googleapis.com/v2"
	DefaultLimit   = 30

	// maxBatchIDs is the most ids the posts endpoint accepts per request.
	maxBatchIDs = 50
)

type Config struct {
	BaseURL   string
	APIKey    string
	ClientKey string
	Limit     int
	Timeout   time.Duration
}

type Client struct {
	baseURL   string
	apiKey    string
	clientKey string
	limit     int
	client    *http.Client
}

var (
	_ remote.PageFetcher    = (*Client)(nil)
	_ remote.BatchLookup    = (*Client)(nil)
	_ remote.NetworkMonitor = (*Client)(nil)
)

func NewClient(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Limit <= 0 {
		cfg.Limit = DefaultLimit
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &Client{
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:    cfg.APIKey,
		clientKey: cfg.ClientKey,
		limit:     cfg.Limit,
		client:    &http.Client{Timeout: cfg.Timeout},
	}
}

type mediaFormat struct {
	URL  string `json:"url"`
	Dims []int  `json:"dims"`
}

type result struct {
	ID                 string                 `json:"id"`
	ContentDescription string                 `json:"content_description"`
	Tags               []string               `json:"tags"`
	MediaFormats       map[string]mediaFormat `json:"media_formats"`
}

type response struct {
	Results []result `json:"results"`
	Next    string   `json:"next"`
}

// FetchPage searches for query, or lists featured GIFs for the trending
// pseudo-query, continuing from cursor.
func (c *Client) FetchPage(ctx context.Context, query, cursor string) (remote.Page, error) {
	params := url.Values{}
	params.Set("limit", strconv.Itoa(c.limit))
	if cursor != "" {
		params.Set("pos", cursor)
	}

	endpoint := "/search"
	if query == paging.TrendingQuery {
		endpoint = "/featured"
	} else {
		params.Set("q", query)
	}

	var resp response
	status, err := c.get(ctx, endpoint, params, &resp)
	if err != nil || status != remote.StatusOK {
		return remote.Page{Status: status}, err
	}
	return remote.Page{Status: remote.StatusOK, Items: convert(resp.Results), Next: resp.Next}, nil
}

// FetchBatchByID returns the posts among ids that still exist.
func (c *Client) FetchBatchByID(ctx context.Context, ids []string) (remote.Batch, error) {
	batch := remote.Batch{Status: remote.StatusOK, Items: []catalog.Item{}}
	for start := 0; start < len(ids); start += maxBatchIDs {
		end := min(start+maxBatchIDs, len(ids))

		params := url.Values{}
		params.Set("ids", strings.Join(ids[start:end], ","))

		var resp response
		status, err := c.get(ctx, "/posts", params, &resp)
		if err != nil || status != remote.StatusOK {
			return remote.Batch{Status: status}, err
		}
		batch.Items = append(batch.Items, convert(resp.Results)...)
	}
	return batch, nil
}

// Online reports whether the API host resolves.
func (c *Client) Online() bool {
	u, err := url.Parse(c.baseURL)
	if err != nil || u.Hostname() == "" {
		return false
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if _, err := net.DefaultResolver.LookupHost(ctx, u.Hostname()); err != nil {
		log.Debugf("Tenor host %s unreachable: %v", u.Hostname(), err)
		return false
	}
	return true
}

func (c *Client) get(ctx context.Context, endpoint string, params url.Values, out any) (remote.Status, error) {
	params.Set("key", c.apiKey)
	if c.clientKey != "" {
		params.Set("client_key", c.clientKey)
	}
	params.Set("media_filter", "gif,tinygif")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return remote.StatusNetworkError, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "emojiserve/1.0")

	resp, err := c.client.Do(req)
	if err != nil {
		return remote.StatusNetworkError, fmt.Errorf("making request: %w", err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			log.Warnf("Failed to close response body: %v", err)
		}
	}()

	if resp.StatusCode != http.StatusOK {
		log.Warnf("Tenor %s returned status %d", endpoint, resp.StatusCode)
		return remote.StatusHTTPError, nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		log.Warnf("Decoding Tenor %s response: %v", endpoint, err)
		return remote.StatusHTTPError, nil
	}
	return remote.StatusOK, nil
}

func convert(results []result) []catalog.Item {
	items := make([]catalog.Item, 0, len(results))
	for _, r := range results {
		if r.ID == "" {
			continue
		}
		full := r.MediaFormats["gif"]
		preview, ok := r.MediaFormats["tinygif"]
		if !ok {
			preview = full
		}

		vc := &catalog.VisualContent{
			ID:  r.ID,
			URL: catalog.URL{Full: full.URL, Preview: preview.URL},
		}
		if len(preview.Dims) == 2 {
			vc.PreviewSize = catalog.Size{Width: preview.Dims[0], Height: preview.Dims[1]}
		}

		items = append(items, catalog.Item{Base: catalog.Emoji{
			Name:          r.ContentDescription,
			Keywords:      r.Tags,
			VisualContent: vc,
		}})
	}
	return items
}
