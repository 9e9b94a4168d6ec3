package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"
	"unicode/utf8"

	"github.com/bastiangx/emojiserve/internal/logger"
	"github.com/bastiangx/emojiserve/pkg/catalog"
	"github.com/bastiangx/emojiserve/pkg/config"
	"github.com/bastiangx/emojiserve/pkg/paging"
	"github.com/bastiangx/emojiserve/pkg/picker"
	"github.com/charmbracelet/log"
)

// Server handles the IPC for one picker engine
type Server struct {
	engine     *picker.Engine
	config     *config.Config
	configPath string
	codec      codec
	log        *log.Logger
}

// NewServer creates a server speaking the configured codec over stdin/stdout
func NewServer(engine *picker.Engine, cfg *config.Config, configPath string) (*Server, error) {
	return NewServerWithIO(engine, cfg, configPath, os.Stdin, os.Stdout)
}

// NewServerWithIO is NewServer over arbitrary streams
func NewServerWithIO(engine *picker.Engine, cfg *config.Config, configPath string, r io.Reader, w io.Writer) (*Server, error) {
	c, err := newCodec(cfg.Server.Codec, r, w)
	if err != nil {
		return nil, err
	}
	return &Server{
		engine:     engine,
		config:     cfg,
		configPath: configPath,
		codec:      c,
		log:        logger.New("server"),
	}, nil
}

// Start serves requests until the input ends or ctx is cancelled
func (s *Server) Start(ctx context.Context) error {
	s.log.Debug("Starting Server.")

	// Signal that the server is ready
	s.sendResponse(StatusResponse{Status: "ready"})

	for {
		if err := ctx.Err(); err != nil {
			return nil
		}

		var req Request
		err := s.codec.Decode(&req)
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			var malformed *malformedError
			if errors.As(err, &malformed) {
				s.log.Errorf("Unmarshaling request: %v", err)
				s.sendError("", "Invalid request", 400)
				continue
			}
			s.log.Errorf("Reading request: %v", err)
			return err
		}
		s.handleRequest(ctx, req)
	}
}

// handleRequest dispatches one request by command
func (s *Server) handleRequest(ctx context.Context, req Request) {
	switch req.Command {
	case "health":
		s.sendResponse(StatusResponse{ID: req.ID, Status: "ok", Stats: s.engine.Stats()})
	case "search":
		s.handleSearch(req)
	case "select":
		s.handleSelect(req)
	case "recents":
		s.handleRecents(ctx, req)
	case "clear_recents":
		s.handleClearRecents(req)
	case "clear_item":
		s.handleClearItem(req)
	case "preferences":
		s.handlePreferences(req)
	case "gif_activate", "gif_scroll", "gif_more":
		s.handleGIF(ctx, req)
	case "config":
		s.handleConfig(req)
	default:
		s.sendError(req.ID, fmt.Sprintf("Unknown command: %s", req.Command), 400)
	}
}

func (s *Server) sendResponse(response any) {
	if err := s.codec.Encode(response); err != nil {
		s.log.Errorf("Writing response: %v", err)
	}
}

func (s *Server) sendError(id, message string, code int) {
	s.sendResponse(ErrorResponse{ID: id, Error: message, Status: code})
}

// fail reports err with a status derived from its kind
func (s *Server) fail(id string, err error) {
	code := 500
	switch {
	case errors.Is(err, catalog.ErrUnknownCategory),
		errors.Is(err, paging.ErrNoQuery),
		errors.Is(err, paging.ErrNotPaginated),
		errors.Is(err, picker.ErrNotVisual),
		errors.Is(err, picker.ErrVisual):
		code = 400
	case errors.Is(err, paging.ErrFetchInFlight),
		errors.Is(err, paging.ErrExhausted):
		code = 409
	case errors.Is(err, picker.ErrGIFsDisabled):
		code = 503
	}
	s.sendError(id, err.Error(), code)
}

func (s *Server) category(req Request) (catalog.Category, bool) {
	c, err := catalog.ParseCategory(req.Category)
	if err != nil {
		s.fail(req.ID, err)
		return "", false
	}
	return c, true
}

func (s *Server) handleSearch(req Request) {
	category, ok := s.category(req)
	if !ok {
		return
	}
	if req.Query == "" {
		s.sendError(req.ID, "Missing 'query' parameter", 400)
		return
	}
	if maxQuery := s.config.Server.MaxQuery; maxQuery > 0 && utf8.RuneCountInString(req.Query) > maxQuery {
		s.sendError(req.ID, fmt.Sprintf("Query exceeds maximum length of %d characters", maxQuery), 400)
		return
	}

	limit := req.Limit
	if limit < 1 {
		limit = s.config.Search.DefaultLimit
	}
	if maxLimit := s.config.Server.MaxLimit; maxLimit > 0 && limit > maxLimit {
		limit = maxLimit
	}

	start := time.Now()
	hits, err := s.engine.Search(category, req.Query, limit)
	if err != nil {
		s.fail(req.ID, err)
		return
	}

	s.sendResponse(SearchResponse{
		ID:        req.ID,
		Category:  string(category),
		Query:     req.Query,
		Hits:      hits,
		Count:     len(hits),
		TimeTaken: time.Since(start).Microseconds(),
	})
}

func (s *Server) handleSelect(req Request) {
	category, ok := s.category(req)
	if !ok {
		return
	}

	var (
		updated bool
		err     error
	)
	switch {
	case req.Item != nil:
		err = s.engine.SelectVisual(category, *req.Item)
	case req.Selection != nil:
		updated, err = s.engine.SelectText(category, *req.Selection)
	default:
		s.sendError(req.ID, "Missing 'selection' or 'item' parameter", 400)
		return
	}
	if err != nil {
		s.fail(req.ID, err)
		return
	}
	s.sendResponse(SelectResponse{ID: req.ID, Status: "ok", PreferenceUpdated: updated})
}

func (s *Server) handleRecents(ctx context.Context, req Request) {
	category, ok := s.category(req)
	if !ok {
		return
	}
	if category == catalog.CategoryGIF {
		s.engine.ValidateGIFHistory(ctx)
	}
	s.sendRecents(req.ID, category, false)
}

func (s *Server) handleClearRecents(req Request) {
	category, ok := s.category(req)
	if !ok {
		return
	}
	if err := s.engine.ClearRecents(category); err != nil {
		s.fail(req.ID, err)
		return
	}
	s.sendRecents(req.ID, category, false)
}

func (s *Server) handleClearItem(req Request) {
	category, ok := s.category(req)
	if !ok {
		return
	}
	if req.Item == nil {
		s.sendError(req.ID, "Missing 'item' parameter", 400)
		return
	}
	removed, err := s.engine.ClearItem(category, *req.Item)
	if err != nil {
		s.fail(req.ID, err)
		return
	}
	s.sendRecents(req.ID, category, removed)
}

func (s *Server) sendRecents(id string, category catalog.Category, removed bool) {
	items, err := s.engine.Recents(category)
	if err != nil {
		s.fail(id, err)
		return
	}
	s.sendResponse(RecentsResponse{ID: id, Category: string(category), Items: items, Removed: removed})
}

func (s *Server) handlePreferences(req Request) {
	category, ok := s.category(req)
	if !ok {
		return
	}
	prefs, err := s.engine.Preferences(category)
	if err != nil {
		s.fail(req.ID, err)
		return
	}
	global := s.engine.VariantPreference()
	s.sendResponse(PreferencesResponse{
		ID:         req.ID,
		Category:   string(category),
		Preference: prefs,
		Tone:       global.Tone,
		Gender:     global.Gender,
	})
}

func (s *Server) handleGIF(ctx context.Context, req Request) {
	var (
		res     paging.Result
		fetched = true
		err     error
	)
	switch req.Command {
	case "gif_activate":
		res, err = s.engine.ActivateGIFs(ctx, req.Query)
	case "gif_more":
		res, err = s.engine.MoreGIFs(ctx, req.Query)
	case "gif_scroll":
		if req.Viewport == nil {
			s.sendError(req.ID, "Missing 'viewport' parameter", 400)
			return
		}
		res, fetched, err = s.engine.ScrollGIFs(ctx, *req.Viewport)
	}
	if err != nil {
		s.fail(req.ID, err)
		return
	}
	if res.Items == nil {
		res.Items = []catalog.Item{}
	}
	s.sendResponse(GIFResponse{ID: req.ID, Result: res, Fetched: fetched})
}

func (s *Server) handleConfig(req Request) {
	if req.MaxLimit != nil || req.DefaultLimit != nil {
		if err := s.config.Update(s.configPath, req.MaxLimit, req.DefaultLimit); err != nil {
			s.log.Errorf("Saving config: %v", err)
			s.sendError(req.ID, "Failed to save config", 500)
			return
		}
	}
	s.sendResponse(ConfigResponse{
		ID:           req.ID,
		Status:       "ok",
		MaxLimit:     s.config.Server.MaxLimit,
		DefaultLimit: s.config.Search.DefaultLimit,
		MaxQuery:     s.config.Server.MaxQuery,
	})
}
